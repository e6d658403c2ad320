// Package config loads runtime configuration from the environment.
package config

import (
	"os"
	"strconv"
)

const (
	DefaultAPIURL           = "https://api.github.com/"
	DefaultGraphQLURL       = "https://api.github.com/graphql"
	DefaultOutDir           = "."
	DefaultMaxFollowerPages = 10000
)

// Config holds application configuration.
type Config struct {
	// GitHubToken is optional. Requests are anonymous when it is empty.
	GitHubToken string
	APIURL      string
	GraphQLURL  string

	// OutDir is where the <org>_repos.csv and <org>_users.csv files go.
	OutDir string

	// MaxFollowerPages bounds the follower pagination loop per user.
	MaxFollowerPages int
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	maxPages := DefaultMaxFollowerPages
	if s := os.Getenv("FORK_REPORT_MAX_FOLLOWER_PAGES"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			maxPages = n
		}
	}

	return &Config{
		GitHubToken:      os.Getenv("GITHUB_TOKEN"),
		APIURL:           getEnvOrDefault("GITHUB_API_URL", DefaultAPIURL),
		GraphQLURL:       getEnvOrDefault("GITHUB_GRAPHQL_URL", DefaultGraphQLURL),
		OutDir:           getEnvOrDefault("FORK_REPORT_OUT_DIR", DefaultOutDir),
		MaxFollowerPages: maxPages,
	}, nil
}

// HasToken returns true if a GitHub token is configured.
func (c *Config) HasToken() bool {
	return c.GitHubToken != ""
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
