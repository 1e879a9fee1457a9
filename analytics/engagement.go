package analytics

import (
	"sort"
	"strings"

	"github.com/formdeck/formdeck/model"
)

type DeviceBreakdown struct {
	Mobile  int `json:"mobile"`
	Tablet  int `json:"tablet"`
	Desktop int `json:"desktop"`
	Unknown int `json:"unknown"`
}

// ClassifyDevice buckets a user-agent string by substring, in priority
// order: Mobile before Tablet before the Mozilla catch-all.
func ClassifyDevice(userAgent string) string {
	switch {
	case strings.Contains(userAgent, "Mobile"):
		return "mobile"
	case strings.Contains(userAgent, "Tablet"):
		return "tablet"
	case strings.Contains(userAgent, "Mozilla"):
		return "desktop"
	default:
		return "unknown"
	}
}

func classifyDevices(submissions []model.Submission) DeviceBreakdown {
	var out DeviceBreakdown
	for _, s := range submissions {
		switch ClassifyDevice(s.UserAgent) {
		case "mobile":
			out.Mobile++
		case "tablet":
			out.Tablet++
		case "desktop":
			out.Desktop++
		default:
			out.Unknown++
		}
	}
	return out
}

type HourCount struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

type Engagement struct {
	UniqueSubmitters  int         `json:"uniqueSubmitters"`
	RepeatSubmitters  int         `json:"repeatSubmitters"`
	SubmissionsPerDay float64     `json:"submissionsPerDay"`
	PeakHours         []HourCount `json:"peakHours"`
}

func analyzeEngagement(submissions []model.Submission) Engagement {
	var out Engagement
	if len(submissions) == 0 {
		return out
	}

	bySubmitter := make(map[string]int)
	for _, s := range submissions {
		bySubmitter[model.SubmitterOf(s)]++
	}
	out.UniqueSubmitters = len(bySubmitter)
	for _, n := range bySubmitter {
		if n > 1 {
			out.RepeatSubmitters++
		}
	}

	first := submissions[0].SubmittedAt
	last := submissions[0].SubmittedAt
	for _, s := range submissions[1:] {
		if s.SubmittedAt.Before(first) {
			first = s.SubmittedAt
		}
		if s.SubmittedAt.After(last) {
			last = s.SubmittedAt
		}
	}
	days := last.Sub(first).Hours() / 24
	if days < 1 {
		days = 1
	}
	out.SubmissionsPerDay = round2(float64(len(submissions)) / days)

	out.PeakHours = peakHours(submissions, 3)
	return out
}

// peakHours returns the top n submission hours by count. Ties keep the
// order in which the hours were first encountered.
func peakHours(submissions []model.Submission, n int) []HourCount {
	order := make([]int, 0, 24)
	counts := make(map[int]int)
	for _, s := range submissions {
		h := s.SubmittedAt.Hour()
		if _, seen := counts[h]; !seen {
			order = append(order, h)
		}
		counts[h]++
	}

	ranked := make([]HourCount, 0, len(order))
	for _, h := range order {
		ranked = append(ranked, HourCount{Hour: h, Count: counts[h]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
