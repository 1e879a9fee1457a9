package filter

import (
	"sort"

	"github.com/formdeck/formdeck/fields"
	"github.com/formdeck/formdeck/model"
)

// Sort returns a new slice ordered by the given key. Ties keep their
// relative input order, and descending order inverts the comparison
// rather than reversing the sorted result, so tie semantics survive.
func Sort(submissions []model.Submission, field string, order model.SortOrder) []model.Submission {
	out := append([]model.Submission(nil), submissions...)

	less := lessFunc(field)
	sort.SliceStable(out, func(i, j int) bool {
		if order == model.Desc {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}

func lessFunc(field string) func(a, b model.Submission) bool {
	switch field {
	case "submittedAt":
		return func(a, b model.Submission) bool {
			return a.SubmittedAt.Before(b.SubmittedAt)
		}
	case "status":
		return func(a, b model.Submission) bool {
			return model.StatusOf(a) < model.StatusOf(b)
		}
	default:
		return func(a, b model.Submission) bool {
			return dataKey(a, field) < dataKey(b, field)
		}
	}
}

func dataKey(s model.Submission, field string) string {
	value, ok := s.Data[field]
	if !ok || value == nil {
		return ""
	}
	return fields.Stringify(value)
}
