// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/naka-gawa/github-fork-report/internal/domain"
	"github.com/naka-gawa/github-fork-report/internal/gateway"
	"github.com/naka-gawa/github-fork-report/internal/report"
)

// Reporter is the use case for producing the fork report of an organization.
// It runs the stages one after another: list repositories, pick the most
// forked ones, then for each of them list contributors and count followers.
type Reporter struct {
	fetcher gateway.Fetcher
	files   report.Files
	logger  *zap.Logger
}

// NewReporter creates a new Reporter instance.
func NewReporter(fetcher gateway.Fetcher, files report.Files, logger *zap.Logger) *Reporter {
	return &Reporter{
		fetcher: fetcher,
		files:   files,
		logger:  logger,
	}
}

// Run produces the repository and contributor files for org.
//
// Failing to list repositories or to write a file aborts the run and is
// returned as an error. Failures for a single repository's contributors or a
// single contributor's followers are recorded as skipped outcomes on the
// summary and the run carries on.
func (r *Reporter) Run(ctx context.Context, org string, repoCount, contributorCount int) (summary *domain.RunSummary, err error) {
	r.logger.Debug("Usecase: Starting fork report", zap.String("organization", org))

	repos, err := r.fetcher.FetchRepositories(ctx, org)
	if err != nil {
		return nil, err
	}

	summary = domain.NewRunSummary(org)
	selected := domain.TopForked(repos, repoCount)
	summary.Requested, summary.Selected = repoCount, len(selected)
	if summary.Clamped() {
		r.logger.Warn("Fewer repositories available than requested",
			zap.Int("requested", repoCount), zap.Int("available", len(selected)))
	}

	repoFile, err := r.files.CreateRepositories()
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := repoFile.Close(); closeErr != nil && err == nil {
			summary, err = nil, closeErr
		}
	}()

	for _, repo := range selected {
		if err := repoFile.Write(repo); err != nil {
			return nil, err
		}
		summary.RecordRepository(repo)

		if err := r.reportContributors(ctx, org, repo, contributorCount, summary); err != nil {
			return nil, err
		}
	}

	followerStats, err := SummarizeFollowers(summary)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize follower counts: %w", err)
	}
	summary.Followers = followerStats
	r.logger.Info("Follower statistics",
		zap.Int("contributors", followerStats.Contributors),
		zap.Float64("mean", followerStats.Mean),
		zap.Float64("median", followerStats.Median),
		zap.Float64("max", followerStats.Max))

	r.logger.Debug("Usecase: Fork report complete",
		zap.Int("repositories", len(summary.Repositories)),
		zap.Int("contributors", len(summary.Contributors)),
		zap.Int("skipped", len(summary.Skipped())))
	return summary, nil
}

// reportContributors appends the top contributors of repo to the contributor
// file. The file is opened and closed around each repository so rows of
// finished repositories are on disk before the next one starts.
func (r *Reporter) reportContributors(ctx context.Context, org string, repo domain.Repository, limit int, summary *domain.RunSummary) (err error) {
	contributors, err := r.fetcher.FetchContributors(ctx, org, repo.Name, limit)
	if err != nil {
		r.logger.Warn("Skipping contributors", zap.String("repository", repo.Name), zap.Error(err))
		summary.Skip(repo.Name, "", err)
		return nil
	}
	contributors = domain.FirstContributors(contributors, limit)
	if len(contributors) < limit {
		r.logger.Debug("Fewer contributors available than requested",
			zap.String("repository", repo.Name), zap.Int("requested", limit), zap.Int("available", len(contributors)))
	}

	userFile, err := r.files.OpenContributors()
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := userFile.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	for _, c := range contributors {
		followers, err := r.fetcher.CountFollowers(ctx, c.Username)
		if err != nil {
			r.logger.Warn("Skipping contributor",
				zap.String("repository", repo.Name), zap.String("username", c.Username), zap.Error(err))
			summary.Skip(repo.Name, c.Username, fmt.Errorf("failed to count followers: %w", err))
			continue
		}
		c = c.WithFollowers(followers)
		if err := userFile.Write(c); err != nil {
			return err
		}
		summary.RecordContributor(c)
	}
	return nil
}
