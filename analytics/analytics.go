package analytics

import (
	"math"
	"time"

	"github.com/formdeck/formdeck/fields"
	"github.com/formdeck/formdeck/model"
)

// Options pins down the inputs that would otherwise make a snapshot
// non-deterministic. Now anchors the trend windows; a zero Now means
// time.Now at the call site.
type Options struct {
	TimeRange string // 7d, 30d, 90d, 1y, all
	Now       time.Time
}

// Snapshot is a derived, immutable view over one submission list and
// one schema. It is recomputed from scratch on every input change and
// never persisted.
type Snapshot struct {
	Overview   Overview              `json:"overview"`
	Fields     map[string]FieldStats `json:"fields"`
	Trend      Trend                 `json:"trend"`
	Dropoff    []DropoffPoint        `json:"dropoff"`
	Devices    DeviceBreakdown       `json:"devices"`
	Engagement Engagement            `json:"engagement"`
}

type Overview struct {
	TotalSubmissions int `json:"totalSubmissions"`
	CompletionRate   int `json:"completionRate"`  // percent
	AbandonmentRate  int `json:"abandonmentRate"` // percent
}

// Analyze computes aggregate statistics over a submission collection.
// It is total: empty or sparse input yields a zeroed snapshot, never
// an error, and malformed values are excluded from numeric aggregates.
func Analyze(submissions []model.Submission, schema []model.FieldDefinition, opts Options) Snapshot {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	completion := completionRate(submissions, schema)

	return Snapshot{
		Overview: Overview{
			TotalSubmissions: len(submissions),
			CompletionRate:   completion,
			AbandonmentRate:  100 - completion,
		},
		Fields:     analyzeFields(submissions, schema),
		Trend:      analyzeTrend(submissions, opts.TimeRange, now),
		Dropoff:    analyzeDropoff(submissions, schema),
		Devices:    classifyDevices(submissions),
		Engagement: analyzeEngagement(submissions),
	}
}

// completionRate is the share of submissions with every required field
// present. With no required fields every submission is complete, so
// the rate is 100 even over an empty collection.
func completionRate(submissions []model.Submission, schema []model.FieldDefinition) int {
	var required []model.FieldDefinition
	for _, f := range schema {
		if f.Required {
			required = append(required, f)
		}
	}
	if len(required) == 0 {
		return 100
	}
	if len(submissions) == 0 {
		return 0
	}

	complete := 0
	for _, s := range submissions {
		ok := true
		for _, f := range required {
			if !fields.IsPresent(s.Data[f.ID], f.Type) {
				ok = false
				break
			}
		}
		if ok {
			complete++
		}
	}
	return roundPercent(complete, len(submissions))
}

// analyzeDropoff counts, for each schema position, the submissions
// that completed every field up to and including it. The resulting
// curve is monotonically non-increasing in schema order.
func analyzeDropoff(submissions []model.Submission, schema []model.FieldDefinition) []DropoffPoint {
	points := make([]DropoffPoint, 0, len(schema))
	for i, f := range schema {
		completed := 0
		for _, s := range submissions {
			ok := true
			for _, upTo := range schema[:i+1] {
				if !fields.IsPresent(s.Data[upTo.ID], upTo.Type) {
					ok = false
					break
				}
			}
			if ok {
				completed++
			}
		}
		points = append(points, DropoffPoint{
			FieldID:   f.ID,
			Label:     f.Label,
			Position:  i,
			Completed: completed,
			Rate:      roundPercent(completed, len(submissions)),
		})
	}
	return points
}

type DropoffPoint struct {
	FieldID   string `json:"fieldId"`
	Label     string `json:"label"`
	Position  int    `json:"position"`
	Completed int    `json:"completed"`
	Rate      int    `json:"rate"` // percent
}

func roundPercent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
