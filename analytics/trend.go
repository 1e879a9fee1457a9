package analytics

import (
	"math"
	"time"

	"github.com/formdeck/formdeck/model"
)

// Trend compares the submission count of the current period against
// the period immediately before it.
type Trend struct {
	Range    string `json:"range"`
	Current  int    `json:"current"`
	Previous int    `json:"previous"`
	Growth   int    `json:"growth"` // percent
}

func rangeDays(keyword string) int {
	switch keyword {
	case "7d":
		return 7
	case "30d":
		return 30
	case "90d":
		return 90
	case "1y":
		return 365
	default: // "all" and anything unrecognized
		return 0
	}
}

func analyzeTrend(submissions []model.Submission, timeRange string, now time.Time) Trend {
	trend := Trend{Range: timeRange}
	if trend.Range == "" {
		trend.Range = "all"
	}

	days := rangeDays(timeRange)
	if days == 0 {
		trend.Current = len(submissions)
	} else {
		currentStart := now.AddDate(0, 0, -days)
		previousStart := now.AddDate(0, 0, -2*days)
		for _, s := range submissions {
			switch {
			case s.SubmittedAt.After(now):
				// future timestamps belong to no period
			case s.SubmittedAt.After(currentStart):
				trend.Current++
			case s.SubmittedAt.After(previousStart):
				trend.Previous++
			}
		}
	}

	switch {
	case trend.Previous > 0:
		trend.Growth = int(math.Round(float64(trend.Current-trend.Previous) / float64(trend.Previous) * 100))
	case trend.Current > 0:
		trend.Growth = 100
	}
	return trend
}
