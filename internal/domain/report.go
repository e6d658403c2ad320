// Package domain contains the core data structures and domain logic for the application.
package domain

import "sort"

// Repository is a single repository of an organization as listed by GitHub.
type Repository struct {
	Name        string `json:"name"`
	Forks       int    `json:"forks"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// Contributor is an account credited with commits to a repository.
// Followers is zero until attached with WithFollowers.
type Contributor struct {
	Repository    string `json:"repository"`
	Username      string `json:"username"`
	Contributions int    `json:"contributions"`
	Followers     int    `json:"followers"`
}

// WithFollowers returns a copy of c carrying the given follower count.
func (c Contributor) WithFollowers(n int) Contributor {
	c.Followers = n
	return c
}

// TopForked returns the k repositories with the most forks, highest first.
// Repositories with equal fork counts keep their original relative order.
// The input slice is not modified. When k exceeds len(repos) the whole
// list is returned; a non-positive k yields an empty result.
func TopForked(repos []Repository, k int) []Repository {
	if k <= 0 {
		return []Repository{}
	}
	sorted := make([]Repository, len(repos))
	copy(sorted, repos)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Forks > sorted[j].Forks
	})
	if k < len(sorted) {
		sorted = sorted[:k]
	}
	return sorted
}

// FirstContributors returns at most m contributors in the order given.
func FirstContributors(contributors []Contributor, m int) []Contributor {
	if m <= 0 {
		return []Contributor{}
	}
	if m < len(contributors) {
		return contributors[:m]
	}
	return contributors
}
