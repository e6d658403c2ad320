// Package report writes the semicolon-delimited repository and contributor files.
package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/naka-gawa/github-fork-report/internal/domain"
)

// ErrWrite is returned when an output file cannot be opened, written or closed.
var ErrWrite = errors.New("failed to write report file")

const delimiter = ';'

var (
	repositoryHeader  = []string{"Repo", "Forks", "URL", "Description"}
	contributorHeader = []string{"Repo", "Username", "Contributions", "Followers"}
)

// Files locates the two output files of one organization.
type Files struct {
	Dir          string
	Organization string
}

// RepositoryPath is <dir>/<organization>_repos.csv.
func (f Files) RepositoryPath() string {
	return filepath.Join(f.Dir, f.Organization+"_repos.csv")
}

// ContributorPath is <dir>/<organization>_users.csv.
func (f Files) ContributorPath() string {
	return filepath.Join(f.Dir, f.Organization+"_users.csv")
}

// CreateRepositories truncates (or creates) the repository file and writes its header.
func (f Files) CreateRepositories() (*RepositoryWriter, error) {
	path := f.RepositoryPath()
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("%w: create %s: %w", ErrWrite, path, err)
	}
	w := newRowWriter(path, file)
	if err := w.write(repositoryHeader); err != nil {
		file.Close()
		return nil, err
	}
	return &RepositoryWriter{rowWriter: w}, nil
}

// OpenContributors opens the contributor file for appending. The header is
// written only when the file did not exist yet or is empty, so rows from
// repeated runs accumulate under a single header.
func (f Files) OpenContributors() (*ContributorWriter, error) {
	path := f.ContributorPath()
	needsHeader := false
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		needsHeader = true
	case err != nil:
		return nil, fmt.Errorf("%w: stat %s: %w", ErrWrite, path, err)
	case info.Size() == 0:
		needsHeader = true
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrWrite, path, err)
	}
	w := newRowWriter(path, file)
	if needsHeader {
		if err := w.write(contributorHeader); err != nil {
			file.Close()
			return nil, err
		}
	}
	return &ContributorWriter{rowWriter: w}, nil
}

// RepositoryWriter writes one row per selected repository.
type RepositoryWriter struct {
	*rowWriter
}

func (w *RepositoryWriter) Write(r domain.Repository) error {
	return w.write([]string{r.Name, strconv.Itoa(r.Forks), r.URL, r.Description})
}

// ContributorWriter appends one row per processed contributor.
type ContributorWriter struct {
	*rowWriter
}

func (w *ContributorWriter) Write(c domain.Contributor) error {
	return w.write([]string{c.Repository, c.Username, strconv.Itoa(c.Contributions), strconv.Itoa(c.Followers)})
}

// rowWriter flushes after every row so completed rows reach the file even
// if the run dies later.
type rowWriter struct {
	path   string
	file   *os.File
	csv    *csv.Writer
	closed bool
}

func newRowWriter(path string, file *os.File) *rowWriter {
	w := csv.NewWriter(file)
	w.Comma = delimiter
	return &rowWriter{path: path, file: file, csv: w}
}

func (w *rowWriter) write(row []string) error {
	if err := w.csv.Write(row); err != nil {
		return fmt.Errorf("%w: write %s: %w", ErrWrite, w.path, err)
	}
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		return fmt.Errorf("%w: flush %s: %w", ErrWrite, w.path, err)
	}
	return nil
}

// Close flushes and closes the file. Calling it twice is a no-op.
func (w *rowWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	w.csv.Flush()
	flushErr := w.csv.Error()
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %w", ErrWrite, w.path, err)
	}
	if flushErr != nil {
		return fmt.Errorf("%w: flush %s: %w", ErrWrite, w.path, flushErr)
	}
	return nil
}
