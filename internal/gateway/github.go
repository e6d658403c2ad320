// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"

	"github.com/naka-gawa/github-fork-report/internal/config"
	"github.com/naka-gawa/github-fork-report/internal/domain"
)

const (
	listPageSize      = 100
	followersPageSize = 100
)

// Fetcher defines the behavior of a gateway for fetching information from GitHub.
type Fetcher interface {
	FetchRepositories(ctx context.Context, org string) ([]domain.Repository, error)
	FetchContributors(ctx context.Context, org, repo string, limit int) ([]domain.Contributor, error)
	CountFollowers(ctx context.Context, username string) (int, error)
}

// Options configures NewGitHubGateway.
type Options struct {
	Token      string
	BaseURL    string
	GraphQLURL string

	// WaitOnRateLimit sleeps through secondary rate limits instead of failing.
	WaitOnRateLimit bool
	// GraphQLFollowers reads follower totals from GraphQL instead of paging REST.
	GraphQLFollowers bool
	// MaxFollowerPages bounds the REST follower loop. Zero means
	// config.DefaultMaxFollowerPages.
	MaxFollowerPages int
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
type GitHubGateway struct {
	restClient       *github.Client
	graphqlClient    *githubv4.Client
	maxFollowerPages int
	logger           *zap.Logger
}

// followerCountQuery reads the follower total of one user in a single request.
type followerCountQuery struct {
	User struct {
		Followers struct {
			TotalCount githubv4.Int
		}
	} `graphql:"user(login: $login)"`
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
func NewGitHubGateway(opts Options, logger *zap.Logger) (Fetcher, error) {
	var transport http.RoundTripper = http.DefaultTransport
	if opts.WaitOnRateLimit {
		rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
		if err != nil {
			return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
		}
		transport = rateLimitWaiter
	}
	if opts.Token != "" {
		transport = &oauth2.Transport{
			Base:   transport,
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token}),
		}
	}
	httpClient := &http.Client{Transport: transport}

	restClient := github.NewClient(httpClient)
	if opts.BaseURL != "" {
		baseURL, err := url.Parse(strings.TrimSuffix(opts.BaseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub API URL %q: %w", opts.BaseURL, err)
		}
		restClient.BaseURL = baseURL
	}

	gw := &GitHubGateway{
		restClient:       restClient,
		maxFollowerPages: opts.MaxFollowerPages,
		logger:           logger,
	}
	if opts.GraphQLFollowers {
		if opts.Token == "" {
			return nil, ErrTokenRequired
		}
		gw.graphqlClient = githubv4.NewEnterpriseClient(opts.GraphQLURL, httpClient)
	}
	return gw, nil
}

// FetchRepositories lists every repository of org in the order GitHub returns them.
func (g *GitHubGateway) FetchRepositories(ctx context.Context, org string) ([]domain.Repository, error) {
	g.logger.Debug("Fetching repositories", zap.String("organization", org))
	opts := &github.RepositoryListByOrgOptions{ListOptions: github.ListOptions{PerPage: listPageSize}}
	var repos []domain.Repository
	for {
		page, resp, err := g.restClient.Repositories.ListByOrg(ctx, org, opts)
		if err := classify(resp, err); err != nil {
			return nil, fmt.Errorf("failed to list repositories of %s: %w", org, err)
		}
		for _, r := range page {
			repos = append(repos, domain.Repository{
				Name:        r.GetName(),
				Forks:       r.GetForksCount(),
				URL:         r.GetHTMLURL(),
				Description: r.GetDescription(),
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
		g.logger.Debug("Fetching next page of repositories", zap.Int("page", resp.NextPage))
	}
	if len(repos) == 0 {
		return nil, fmt.Errorf("failed to list repositories of %s: %w", org, ErrNoResults)
	}
	g.logger.Debug("Completed fetching repositories", zap.Int("count", len(repos)))
	return repos, nil
}

// FetchContributors returns up to limit contributors of org/repo. GitHub
// orders contributors by contribution count, and that order is kept.
func (g *GitHubGateway) FetchContributors(ctx context.Context, org, repo string, limit int) ([]domain.Contributor, error) {
	g.logger.Debug("Fetching contributors", zap.String("repository", repo), zap.Int("limit", limit))
	opts := &github.ListContributorsOptions{ListOptions: github.ListOptions{PerPage: min(max(limit, 1), listPageSize)}}
	var contributors []domain.Contributor
	for len(contributors) < limit {
		page, resp, err := g.restClient.Repositories.ListContributors(ctx, org, repo, opts)
		if err := classify(resp, err); err != nil {
			return nil, fmt.Errorf("failed to list contributors of %s/%s: %w", org, repo, err)
		}
		for _, c := range page {
			contributors = append(contributors, domain.Contributor{
				Repository:    repo,
				Username:      c.GetLogin(),
				Contributions: c.GetContributions(),
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	if len(contributors) == 0 {
		return nil, fmt.Errorf("failed to list contributors of %s/%s: %w", org, repo, ErrNoResults)
	}
	return domain.FirstContributors(contributors, limit), nil
}

// CountFollowers returns the number of followers of username.
func (g *GitHubGateway) CountFollowers(ctx context.Context, username string) (int, error) {
	if g.graphqlClient != nil {
		return g.countFollowersGraphQL(ctx, username)
	}
	return g.countFollowersREST(ctx, username)
}

// countFollowersREST pages through the follower list until an empty page.
// A 204 page is empty too. Only page lengths are kept. Any failed page ends
// the loop with an error.
func (g *GitHubGateway) countFollowersREST(ctx context.Context, username string) (int, error) {
	maxPages := g.maxFollowerPages
	if maxPages <= 0 {
		maxPages = config.DefaultMaxFollowerPages
	}
	opts := &github.ListOptions{PerPage: followersPageSize}
	total := 0
	for page := 1; page <= maxPages; page++ {
		opts.Page = page
		followers, resp, err := g.restClient.Users.ListFollowers(ctx, username, opts)
		err = classify(resp, err)
		if err != nil && !errors.Is(err, ErrNoResults) {
			return 0, fmt.Errorf("failed to list followers of %s (page %d): %w", username, page, err)
		}
		if err != nil || len(followers) == 0 {
			g.logger.Debug("Counted followers", zap.String("username", username), zap.Int("count", total), zap.Int("pages", page))
			return total, nil
		}
		total += len(followers)
	}
	return 0, fmt.Errorf("failed to count followers of %s: %w after %d pages", username, ErrPaginationLimit, maxPages)
}

func (g *GitHubGateway) countFollowersGraphQL(ctx context.Context, username string) (int, error) {
	var q followerCountQuery
	variables := map[string]interface{}{"login": githubv4.String(username)}
	if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
		return 0, fmt.Errorf("failed to execute GraphQL query for followers of %s: %w", username, err)
	}
	count := int(q.User.Followers.TotalCount)
	g.logger.Debug("Counted followers", zap.String("username", username), zap.Int("count", count))
	return count, nil
}
