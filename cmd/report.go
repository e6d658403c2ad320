package cmd

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/github-fork-report/internal/config"
	"github.com/naka-gawa/github-fork-report/internal/domain"
	"github.com/naka-gawa/github-fork-report/internal/gateway"
	"github.com/naka-gawa/github-fork-report/internal/logger"
	"github.com/naka-gawa/github-fork-report/internal/report"
	"github.com/naka-gawa/github-fork-report/internal/usecase"
)

var (
	errArgumentCount     = errors.New("expected exactly three arguments")
	errArgumentFormat    = errors.New("counts must be integers")
	errArgumentRange     = errors.New("counts must be positive")
	errEmptyOrganization = errors.New("organization must not be empty")
)

// negativeCount matches the flag parser's complaint about a token such as
// "-1", which is a negative count rather than a shorthand flag.
var negativeCount = regexp.MustCompile(`^unknown shorthand flag: .+ in (-[0-9][0-9.]*)$`)

// countFlagError reports negative counts like parseArgs would.
func countFlagError(_ *cobra.Command, err error) error {
	m := negativeCount.FindStringSubmatch(err.Error())
	if m == nil {
		return err
	}
	if _, convErr := strconv.Atoi(m[1]); convErr != nil {
		return fmt.Errorf("%w: %q", errArgumentFormat, m[1])
	}
	return fmt.Errorf("%w: %s", errArgumentRange, m[1])
}

// invocation is the parsed form of the three positional arguments.
type invocation struct {
	org              string
	repoCount        int
	contributorCount int
}

func parseArgs(args []string) (invocation, error) {
	if len(args) != 3 {
		return invocation{}, fmt.Errorf("%w, got %d", errArgumentCount, len(args))
	}
	org := strings.TrimSpace(args[0])
	if org == "" {
		return invocation{}, errEmptyOrganization
	}
	repoCount, err := strconv.Atoi(args[1])
	if err != nil {
		return invocation{}, fmt.Errorf("%w: %q", errArgumentFormat, args[1])
	}
	contributorCount, err := strconv.Atoi(args[2])
	if err != nil {
		return invocation{}, fmt.Errorf("%w: %q", errArgumentFormat, args[2])
	}
	if repoCount <= 0 || contributorCount <= 0 {
		return invocation{}, fmt.Errorf("%w: %d, %d", errArgumentRange, repoCount, contributorCount)
	}
	return invocation{org: org, repoCount: repoCount, contributorCount: contributorCount}, nil
}

func runReport(cmd *cobra.Command, args []string) error {
	// Arguments are checked before anything touches the network or disk.
	inv, err := parseArgs(args)
	if err != nil {
		return err
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	log := logger.New(verbose)
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if outDir, _ := cmd.Flags().GetString("out-dir"); outDir != "" {
		cfg.OutDir = outDir
	}
	if baseURL, _ := cmd.Flags().GetString("base-url"); baseURL != "" {
		cfg.APIURL = baseURL
	}
	graphqlFollowers, _ := cmd.Flags().GetBool("graphql-followers")
	waitRateLimit, _ := cmd.Flags().GetBool("wait-rate-limit")
	if graphqlFollowers && !cfg.HasToken() {
		return gateway.ErrTokenRequired
	}

	// Inject dependencies and run the main business logic.
	githubGateway, err := gateway.NewGitHubGateway(gateway.Options{
		Token:            cfg.GitHubToken,
		BaseURL:          cfg.APIURL,
		GraphQLURL:       cfg.GraphQLURL,
		WaitOnRateLimit:  waitRateLimit,
		GraphQLFollowers: graphqlFollowers,
		MaxFollowerPages: cfg.MaxFollowerPages,
	}, log)
	if err != nil {
		return err
	}
	files := report.Files{Dir: cfg.OutDir, Organization: inv.org}
	reporter := usecase.NewReporter(githubGateway, files, log)

	summary, err := reporter.Run(cmd.Context(), inv.org, inv.repoCount, inv.contributorCount)
	if err != nil {
		return err
	}

	printSummary(cmd.OutOrStdout(), summary, files)
	return nil
}

// printSummary tells the user about clamped counts, skipped items and follower statistics.
func printSummary(w io.Writer, summary *domain.RunSummary, files report.Files) {
	if summary.Clamped() {
		fmt.Fprintf(w, "Only %d repositories found, reporting all of them.\n", summary.Selected)
	}
	for _, o := range summary.Skipped() {
		if o.Username == "" {
			fmt.Fprintf(w, "Skipped contributors of %s: %s\n", o.Repository, describe(o.Reason))
		} else {
			fmt.Fprintf(w, "Skipped contributor %s of %s: %s\n", o.Username, o.Repository, describe(o.Reason))
		}
	}
	if fs := summary.Followers; fs.Contributors > 0 {
		fmt.Fprintf(w, "Followers: mean %.1f, median %.1f, max %.0f over %d contributors.\n",
			fs.Mean, fs.Median, fs.Max, fs.Contributors)
	}
	fmt.Fprintf(w, "Wrote %d repositories to %s and %d contributors to %s.\n",
		len(summary.Repositories), files.RepositoryPath(), len(summary.Contributors), files.ContributorPath())
}

// describe turns an error into the single line shown to the user.
func describe(err error) string {
	switch {
	case errors.Is(err, errArgumentCount):
		return "Please provide three parameters for organization name, " +
			"number of most forked repositories and top contributors of these repositories respectively."
	case errors.Is(err, errArgumentFormat):
		return "The last two parameters must be numbers!"
	case errors.Is(err, errArgumentRange):
		return "The last two parameters must be positive numbers!"
	case errors.Is(err, errEmptyOrganization):
		return "Organization name must not be empty."
	case errors.Is(err, gateway.ErrUnreachable), errors.Is(err, gateway.ErrMalformedResponse):
		return "There has been an issue while reaching GitHub REST API"
	case errors.Is(err, gateway.ErrNoResults):
		return "No results found from the API request."
	case errors.Is(err, gateway.ErrAccessDenied):
		return "Access denied."
	case errors.Is(err, gateway.ErrNotFound):
		return "Resource not found."
	case errors.Is(err, gateway.ErrPaginationLimit):
		return "Too many follower pages, gave up counting."
	case errors.Is(err, gateway.ErrTokenRequired):
		return "Counting followers through GraphQL requires GITHUB_TOKEN."
	case errors.Is(err, report.ErrWrite):
		return "Failed to write data to csv."
	default:
		return err.Error()
	}
}
