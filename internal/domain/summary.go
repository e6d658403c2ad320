package domain

// OutcomeStatus tells whether an item made it into the report.
type OutcomeStatus int

const (
	OutcomeWritten OutcomeStatus = iota
	OutcomeSkipped
)

func (s OutcomeStatus) String() string {
	switch s {
	case OutcomeWritten:
		return "written"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Outcome records what happened to one repository or contributor during a run.
// Username is empty for repository-level outcomes.
type Outcome struct {
	Repository string
	Username   string
	Status     OutcomeStatus
	Reason     error
}

// RunSummary collects the per-item results of a report run.
type RunSummary struct {
	Organization string
	// Requested is the most-forked count asked for, Selected is how many
	// repositories were actually available to report on.
	Requested    int
	Selected     int
	Repositories []Repository
	Contributors []Contributor
	Outcomes     []Outcome
	Followers    FollowerStats
}

// FollowerStats describes the follower counts of the contributors written in a run.
type FollowerStats struct {
	Contributors int
	Mean         float64
	Median       float64
	Max          float64
}

// NewRunSummary creates an empty summary for org.
func NewRunSummary(org string) *RunSummary {
	return &RunSummary{Organization: org}
}

// RecordRepository marks repo as written to the repository file.
func (s *RunSummary) RecordRepository(repo Repository) {
	s.Repositories = append(s.Repositories, repo)
	s.Outcomes = append(s.Outcomes, Outcome{Repository: repo.Name, Status: OutcomeWritten})
}

// RecordContributor marks c as written to the contributor file.
func (s *RunSummary) RecordContributor(c Contributor) {
	s.Contributors = append(s.Contributors, c)
	s.Outcomes = append(s.Outcomes, Outcome{Repository: c.Repository, Username: c.Username, Status: OutcomeWritten})
}

// Skip records an item that was left out of the report and why.
func (s *RunSummary) Skip(repository, username string, reason error) {
	s.Outcomes = append(s.Outcomes, Outcome{
		Repository: repository,
		Username:   username,
		Status:     OutcomeSkipped,
		Reason:     reason,
	})
}

// Skipped returns the skipped outcomes in the order they happened.
func (s *RunSummary) Skipped() []Outcome {
	var skipped []Outcome
	for _, o := range s.Outcomes {
		if o.Status == OutcomeSkipped {
			skipped = append(skipped, o)
		}
	}
	return skipped
}

// Clamped reports whether fewer repositories were selected than requested.
func (s *RunSummary) Clamped() bool {
	return s.Selected < s.Requested
}
