package filter

import (
	"strings"
	"time"

	"github.com/formdeck/formdeck/fields"
	"github.com/formdeck/formdeck/model"
)

// Apply narrows a submission list to those matching every criterion.
// It is pure: the input slice is never reordered or mutated, and the
// result is always a fresh slice preserving input order.
func Apply(submissions []model.Submission, criteria model.FilterCriteria) []model.Submission {
	out := searchPass(submissions, criteria.SearchTerm)

	kept := out[:0:0]
	for _, s := range out {
		if matchesCriteria(s, criteria) {
			kept = append(kept, s)
		}
	}
	return kept
}

// searchPass applies the free-text search across all data values,
// independent of per-field filters.
func searchPass(submissions []model.Submission, term string) []model.Submission {
	term = strings.TrimSpace(term)
	if term == "" {
		return append([]model.Submission(nil), submissions...)
	}

	var kept []model.Submission
	for _, s := range submissions {
		for _, value := range s.Data {
			if matchValue(value, term) {
				kept = append(kept, s)
				break
			}
		}
	}
	return kept
}

func matchesCriteria(s model.Submission, criteria model.FilterCriteria) bool {
	if r := criteria.DateRange; r != nil {
		if r.Start != nil && s.SubmittedAt.Before(*r.Start) {
			return false
		}
		if r.End != nil && s.SubmittedAt.After(endOfDay(*r.End)) {
			return false
		}
	}

	if criteria.Status != "" && criteria.Status != "all" {
		if model.StatusOf(s) != criteria.Status {
			return false
		}
	}

	for fieldID, want := range criteria.FieldFilters {
		if want == "" {
			continue // blank filter means no constraint, not "match nothing"
		}
		if !matchValue(s.Data[fieldID], want) {
			return false
		}
	}

	return true
}

// matchValue is the one substring matcher shared by free-text search
// and per-field filters: case-insensitive, and for sequence values a
// match on any element.
func matchValue(value any, term string) bool {
	if value == nil {
		return false
	}
	term = strings.ToLower(term)
	if seq, ok := fields.AsSequence(value); ok {
		for _, v := range seq {
			if strings.Contains(strings.ToLower(fields.Stringify(v)), term) {
				return true
			}
		}
		return false
	}
	return strings.Contains(strings.ToLower(fields.Stringify(value)), term)
}

// endOfDay widens an upper bound to 23:59:59.999, so a range ending on
// a date includes everything submitted during that day.
func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 999e6, t.Location())
}
