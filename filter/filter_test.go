package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/formdeck/formdeck/model"
)

func ts(value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return t
}

func sampleSubmissions() []model.Submission {
	return []model.Submission{
		{
			ID:          "s1",
			Data:        map[string]any{"age": float64(10), "name": "Alice"},
			SubmittedAt: ts("2024-01-01T10:00:00Z"),
			Status:      "submitted",
		},
		{
			ID:          "s2",
			Data:        map[string]any{"age": float64(20), "name": "Bob"},
			SubmittedAt: ts("2024-01-01T23:59:59Z"),
			Status:      "reviewed",
		},
		{
			ID:          "s3",
			Data:        map[string]any{"age": float64(30), "tags": []any{"urgent", "callback"}},
			SubmittedAt: ts("2024-01-02T00:00:01Z"),
		},
	}
}

func ids(subs []model.Submission) []string {
	out := make([]string, len(subs))
	for i, s := range subs {
		out[i] = s.ID
	}
	return out
}

func TestApplyStatus(t *testing.T) {
	subs := sampleSubmissions()

	got := Apply(subs, model.FilterCriteria{Status: "reviewed"})
	assert.Equal(t, []string{"s2"}, ids(got))

	// missing status defaults to submitted
	got = Apply(subs, model.FilterCriteria{Status: "submitted"})
	assert.Equal(t, []string{"s1", "s3"}, ids(got))

	// "all" and empty mean no status filter
	assert.Len(t, Apply(subs, model.FilterCriteria{Status: "all"}), 3)
	assert.Len(t, Apply(subs, model.FilterCriteria{}), 3)
}

func TestApplyDateRangeEndOfDay(t *testing.T) {
	subs := sampleSubmissions()
	day := ts("2024-01-01T00:00:00Z")

	got := Apply(subs, model.FilterCriteria{
		DateRange: &model.DateRange{Start: &day, End: &day},
	})

	// 23:59:59 on the end date is in; 00:00:01 the next day is out
	assert.Equal(t, []string{"s1", "s2"}, ids(got))
}

func TestApplyFieldFilters(t *testing.T) {
	subs := sampleSubmissions()

	got := Apply(subs, model.FilterCriteria{
		FieldFilters: map[string]string{"name": "ali"},
	})
	assert.Equal(t, []string{"s1"}, ids(got))

	t.Run("sequence values match on any element", func(t *testing.T) {
		got := Apply(subs, model.FilterCriteria{
			FieldFilters: map[string]string{"tags": "URGENT"},
		})
		assert.Equal(t, []string{"s3"}, ids(got))
	})

	t.Run("blank filter value is ignored", func(t *testing.T) {
		got := Apply(subs, model.FilterCriteria{
			FieldFilters: map[string]string{"name": ""},
		})
		assert.Len(t, got, 3)
	})
}

func TestApplySearch(t *testing.T) {
	subs := sampleSubmissions()

	got := Apply(subs, model.FilterCriteria{SearchTerm: "bob"})
	assert.Equal(t, []string{"s2"}, ids(got))

	got = Apply(subs, model.FilterCriteria{SearchTerm: "callback"})
	assert.Equal(t, []string{"s3"}, ids(got))

	got = Apply(subs, model.FilterCriteria{SearchTerm: "nothing matches this"})
	assert.Empty(t, got)
}

func TestApplyIsPureAndIdempotent(t *testing.T) {
	subs := sampleSubmissions()
	criteria := model.FilterCriteria{Status: "submitted", SearchTerm: "a"}

	once := Apply(subs, criteria)
	twice := Apply(once, criteria)
	assert.Equal(t, once, twice)

	// input order and content untouched
	assert.Equal(t, []string{"s1", "s2", "s3"}, ids(subs))
}
