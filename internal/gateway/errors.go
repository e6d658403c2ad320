package gateway

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/go-github/v62/github"
)

var (
	// ErrUnreachable means the request never produced an HTTP response.
	ErrUnreachable = errors.New("GitHub API unreachable")
	// ErrMalformedResponse means a 200 response body could not be decoded.
	ErrMalformedResponse = errors.New("malformed GitHub API response")
	// ErrNoResults is returned for 204 responses and empty listings.
	ErrNoResults = errors.New("no results")
	// ErrAccessDenied is returned for 403 responses.
	ErrAccessDenied = errors.New("access denied")
	// ErrNotFound covers every other non-success status.
	ErrNotFound = errors.New("resource not found")
	// ErrPaginationLimit is returned when follower paging runs past its bound.
	ErrPaginationLimit = errors.New("pagination limit reached")
	// ErrTokenRequired is returned when GraphQL is requested without a token.
	ErrTokenRequired = errors.New("a GitHub token is required for GraphQL queries")
)

// classify maps a go-github call result onto the gateway's error kinds.
// It returns nil for successful responses.
func classify(resp *github.Response, err error) error {
	if resp == nil || resp.Response == nil {
		if err == nil {
			return nil
		}
		return fmt.Errorf("%w: %w", ErrUnreachable, err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		if err != nil {
			return fmt.Errorf("%w: %w", ErrMalformedResponse, err)
		}
		return nil
	case http.StatusNoContent:
		return ErrNoResults
	case http.StatusForbidden:
		return ErrAccessDenied
	default:
		return fmt.Errorf("%w: status %d", ErrNotFound, resp.StatusCode)
	}
}
