package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naka-gawa/github-fork-report/internal/gateway"
	"github.com/naka-gawa/github-fork-report/internal/report"
)

// executeRoot runs a fresh root command and captures what it prints.
func executeRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	rootCmd := newRootCmd()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestParseArgs(t *testing.T) {
	testCases := []struct {
		name        string
		args        []string
		expected    invocation
		expectedErr error
	}{
		{
			name:     "valid invocation",
			args:     []string{"acme", "2", "3"},
			expected: invocation{org: "acme", repoCount: 2, contributorCount: 3},
		},
		{name: "too few arguments", args: []string{"acme", "2"}, expectedErr: errArgumentCount},
		{name: "too many arguments", args: []string{"acme", "2", "3", "4"}, expectedErr: errArgumentCount},
		{name: "non-numeric repository count", args: []string{"acme", "two", "3"}, expectedErr: errArgumentFormat},
		{name: "non-numeric contributor count", args: []string{"acme", "2", "3.5"}, expectedErr: errArgumentFormat},
		{name: "zero count", args: []string{"acme", "0", "3"}, expectedErr: errArgumentRange},
		{name: "blank organization", args: []string{"  ", "2", "3"}, expectedErr: errEmptyOrganization},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			inv, err := parseArgs(tc.args)

			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.expected, inv)
			}
		})
	}
}

func TestDescribe(t *testing.T) {
	testCases := []struct {
		err      error
		expected string
	}{
		{err: errArgumentCount, expected: "Please provide three parameters for organization name, number of most forked repositories and top contributors of these repositories respectively."},
		{err: fmt.Errorf("%w: %q", errArgumentFormat, "two"), expected: "The last two parameters must be numbers!"},
		{err: fmt.Errorf("listing: %w", gateway.ErrUnreachable), expected: "There has been an issue while reaching GitHub REST API"},
		{err: fmt.Errorf("listing: %w", gateway.ErrNoResults), expected: "No results found from the API request."},
		{err: fmt.Errorf("listing: %w", gateway.ErrAccessDenied), expected: "Access denied."},
		{err: fmt.Errorf("listing: %w", gateway.ErrNotFound), expected: "Resource not found."},
		{err: fmt.Errorf("%w: disk full", report.ErrWrite), expected: "Failed to write data to csv."},
		{err: fmt.Errorf("something else"), expected: "something else"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, describe(tc.err))
		})
	}
}

func TestRootCmd_InvalidArgumentsWriteNothing(t *testing.T) {
	testCases := []struct {
		name        string
		args        []string
		expectedErr error
	}{
		{name: "two arguments", args: []string{"acme", "2"}, expectedErr: errArgumentCount},
		{name: "non-numeric count", args: []string{"acme", "two", "3"}, expectedErr: errArgumentFormat},
		{name: "negative count", args: []string{"acme", "-1", "3"}, expectedErr: errArgumentRange},
		{name: "negative fractional count", args: []string{"acme", "2", "-1.5"}, expectedErr: errArgumentFormat},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()

			_, err := executeRoot(t, append(tc.args, "--out-dir", dir, "--base-url", "http://127.0.0.1:1/")...)

			assert.ErrorIs(t, err, tc.expectedErr)
			assert.Equal(t, describe(tc.expectedErr), describe(err))
			assertEmptyDir(t, dir)
		})
	}
}

// fakeGitHub serves an organization with five repositories whose fork
// counts are 3, 1, 4, 1 and 5.
func fakeGitHub(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/orgs/acme/repos", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[
			{"name": "r3", "forks_count": 3, "html_url": "https://github.com/acme/r3", "description": "three"},
			{"name": "r1", "forks_count": 1, "html_url": "https://github.com/acme/r1", "description": null},
			{"name": "r4", "forks_count": 4, "html_url": "https://github.com/acme/r4", "description": "four"},
			{"name": "r1b", "forks_count": 1, "html_url": "https://github.com/acme/r1b", "description": null},
			{"name": "r5", "forks_count": 5, "html_url": "https://github.com/acme/r5", "description": "five"}
		]`)
	})
	mux.HandleFunc("/repos/acme/r5/contributors", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"login": "alice", "contributions": 50}, {"login": "bob", "contributions": 10}]`)
	})
	mux.HandleFunc("/repos/acme/r4/contributors", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"message": "Forbidden"}`)
	})
	mux.HandleFunc("/users/alice/followers", func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		n := 0
		if page == 1 {
			n = 3
		}
		users := make([]map[string]string, n)
		for i := range users {
			users[i] = map[string]string{"login": "f" + strconv.Itoa(i)}
		}
		require.NoError(t, json.NewEncoder(w).Encode(users))
	})
	return httptest.NewServer(mux)
}

func TestRootCmd_WritesReport(t *testing.T) {
	server := fakeGitHub(t)
	defer server.Close()
	dir := t.TempDir()
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("FORK_REPORT_OUT_DIR", t.TempDir())

	for run := 0; run < 2; run++ {
		out, err := executeRoot(t, "acme", "2", "1", "--out-dir", dir, "--base-url", server.URL)

		require.NoError(t, err)
		assert.Contains(t, out, "Skipped contributors of r4: Access denied.")
		assert.Contains(t, out, "Followers: mean 3.0, median 3.0, max 3 over 1 contributors.")
	}

	repos, err := os.ReadFile(filepath.Join(dir, "acme_repos.csv"))
	require.NoError(t, err)
	assert.Equal(t,
		"Repo;Forks;URL;Description\nr5;5;https://github.com/acme/r5;five\nr4;4;https://github.com/acme/r4;four\n",
		string(repos))

	users, err := os.ReadFile(filepath.Join(dir, "acme_users.csv"))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(users), "Repo;Username;Contributions;Followers"))
	assert.Equal(t,
		"Repo;Username;Contributions;Followers\nr5;alice;50;3\nr5;alice;50;3\n",
		string(users))
}

func TestCountFlagError(t *testing.T) {
	other := fmt.Errorf("unknown shorthand flag: 'x' in -x")

	assert.ErrorIs(t, countFlagError(nil, fmt.Errorf("unknown shorthand flag: '1' in -1")), errArgumentRange)
	assert.ErrorIs(t, countFlagError(nil, fmt.Errorf("unknown shorthand flag: '0' in -0.5")), errArgumentFormat)
	assert.Equal(t, other, countFlagError(nil, other))
}

func TestRootCmd_ClampsRepositoryCount(t *testing.T) {
	server := fakeGitHub(t)
	defer server.Close()
	dir := t.TempDir()
	t.Setenv("GITHUB_TOKEN", "")

	out, err := executeRoot(t, "acme", "9", "1", "--out-dir", dir, "--base-url", server.URL)

	require.NoError(t, err)
	assert.Contains(t, out, "Only 5 repositories found")
	assert.FileExists(t, filepath.Join(dir, "acme_repos.csv"))
}

func TestRootCmd_GraphQLFollowersNeedToken(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("GITHUB_TOKEN", "")

	_, err := executeRoot(t, "acme", "1", "1", "--out-dir", dir, "--graphql-followers")

	assert.ErrorIs(t, err, gateway.ErrTokenRequired)
	assertEmptyDir(t, dir)
}
