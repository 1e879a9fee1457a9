package controller

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formdeck/formdeck/model"
	"github.com/formdeck/formdeck/store"
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
		{ID: "s1", Data: map[string]any{"name": "Alice"}, SubmittedAt: ts("2024-01-01T10:00:00Z")},
		{ID: "s2", Data: map[string]any{"name": "Bob"}, SubmittedAt: ts("2024-01-02T10:00:00Z"), Status: "reviewed"},
		{ID: "s3", Data: map[string]any{"name": "Carol"}, SubmittedAt: ts("2024-01-03T10:00:00Z")},
	}
}

func TestViewPipeline(t *testing.T) {
	c := New("form-1", nil, Config{PageSize: 2})
	c.SetSubmissions(sampleSubmissions())

	view := c.View()
	// default sort: newest first
	assert.Equal(t, "s3", view.Items[0].ID)
	assert.Equal(t, 2, len(view.Items))
	assert.Equal(t, 3, view.Pagination.Total)
	assert.True(t, view.Pagination.HasNextPage)
}

func TestFilterMutationsResetPage(t *testing.T) {
	c := New("form-1", nil, Config{PageSize: 1})
	c.SetSubmissions(sampleSubmissions())

	c.SetPage(3)
	assert.Equal(t, 3, c.View().Pagination.CurrentPage)

	c.SetStatus("reviewed")
	view := c.View()
	assert.Equal(t, 1, view.Pagination.CurrentPage)
	require.Len(t, view.Items, 1)
	assert.Equal(t, "s2", view.Items[0].ID)

	c.SetPage(2)
	c.SetSort("submittedAt", model.Asc)
	assert.Equal(t, 1, c.View().Pagination.CurrentPage)

	c.SetPage(2)
	c.SetFieldFilter("name", "o")
	assert.Equal(t, 1, c.View().Pagination.CurrentPage)
}

func TestDebouncedSearch(t *testing.T) {
	c := New("form-1", nil, Config{Debounce: 20 * time.Millisecond})
	c.SetSubmissions(sampleSubmissions())

	c.SetSearch("ali")
	c.SetSearch("alic")
	c.SetSearch("alice")

	// raw input is immediate, committed criteria lags
	assert.Equal(t, "alice", c.SearchInput())
	assert.Equal(t, "", c.View().Criteria.SearchTerm)
	assert.Equal(t, 3, c.View().Pagination.Total)

	assert.Eventually(t, func() bool {
		return c.View().Criteria.SearchTerm == "alice"
	}, time.Second, 5*time.Millisecond)

	// only the last keystroke was applied
	view := c.View()
	require.Len(t, view.Items, 1)
	assert.Equal(t, "s1", view.Items[0].ID)
}

func TestImmediateSearchWithoutDebounce(t *testing.T) {
	c := New("form-1", nil, Config{})
	c.SetSubmissions(sampleSubmissions())

	c.SetSearch("bob")
	view := c.View()
	assert.Equal(t, "bob", view.Criteria.SearchTerm)
	require.Len(t, view.Items, 1)
	assert.Equal(t, "s2", view.Items[0].ID)
}

func TestPersistedCriteriaRoundTrip(t *testing.T) {
	kv := store.NewMemoryKV()

	first := New("form-1", nil, Config{KV: kv})
	first.SetStatus("reviewed")
	first.SetFieldFilter("name", "bo")

	second := New("form-1", nil, Config{KV: kv})
	assert.Equal(t, "reviewed", second.View().Criteria.Status)
	assert.Equal(t, "bo", second.View().Criteria.FieldFilters["name"])

	// other forms are not affected
	other := New("form-2", nil, Config{KV: kv})
	assert.Equal(t, model.FilterCriteria{}, other.View().Criteria)
}

func TestCorruptPersistedCriteriaFallsBack(t *testing.T) {
	kv := store.NewMemoryKV()
	kv.Set(PersistKey("form-1"), "{not json")

	c := New("form-1", nil, Config{KV: kv})
	assert.Equal(t, model.FilterCriteria{}, c.View().Criteria)
}

func TestOnChangeNotification(t *testing.T) {
	var views []View
	c := New("form-1", nil, Config{OnChange: func(v View) { views = append(views, v) }})

	c.SetSubmissions(sampleSubmissions())
	c.SetStatus("reviewed")

	require.Len(t, views, 2)
	assert.Equal(t, 3, views[0].Pagination.Total)
	assert.Equal(t, 1, views[1].Pagination.Total)
}

func TestSetDateRange(t *testing.T) {
	c := New("form-1", nil, Config{})
	c.SetSubmissions(sampleSubmissions())

	start, end := ts("2024-01-01T00:00:00Z"), ts("2024-01-02T00:00:00Z")
	c.SetDateRange(&model.DateRange{Start: &start, End: &end})
	assert.Equal(t, 2, c.View().Pagination.Total)

	// inverted range is dropped, state unchanged
	c.SetDateRange(&model.DateRange{Start: &end, End: &start})
	assert.Equal(t, 2, c.View().Pagination.Total)
}

func TestClearFilters(t *testing.T) {
	c := New("form-1", nil, Config{})
	c.SetSubmissions(sampleSubmissions())

	c.SetStatus("reviewed")
	c.SetSearch("bob")
	c.ClearFilters()

	view := c.View()
	assert.Equal(t, model.FilterCriteria{}, view.Criteria)
	assert.Equal(t, "", c.SearchInput())
	assert.Equal(t, 3, view.Pagination.Total)
}
