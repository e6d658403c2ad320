package usecase

import (
	"github.com/montanaflynn/stats"

	"github.com/naka-gawa/github-fork-report/internal/domain"
)

// SummarizeFollowers computes the follower statistics of summary. The zero value is
// returned when no contributor was written.
func SummarizeFollowers(summary *domain.RunSummary) (domain.FollowerStats, error) {
	if summary == nil || len(summary.Contributors) == 0 {
		return domain.FollowerStats{}, nil
	}
	counts := make([]int, len(summary.Contributors))
	for i, c := range summary.Contributors {
		counts[i] = c.Followers
	}
	data := stats.LoadRawData(counts)

	mean, err := stats.Mean(data)
	if err != nil {
		return domain.FollowerStats{}, err
	}
	median, err := stats.Median(data)
	if err != nil {
		return domain.FollowerStats{}, err
	}
	maximum, err := stats.Max(data)
	if err != nil {
		return domain.FollowerStats{}, err
	}
	return domain.FollowerStats{
		Contributors: len(counts),
		Mean:         mean,
		Median:       median,
		Max:          maximum,
	}, nil
}
