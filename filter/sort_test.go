package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/formdeck/formdeck/model"
)

func TestSortSubmittedAt(t *testing.T) {
	subs := sampleSubmissions()

	asc := Sort(subs, "submittedAt", model.Asc)
	assert.Equal(t, []string{"s1", "s2", "s3"}, ids(asc))

	desc := Sort(subs, "submittedAt", model.Desc)
	assert.Equal(t, []string{"s3", "s2", "s1"}, ids(desc))

	// input untouched
	assert.Equal(t, []string{"s1", "s2", "s3"}, ids(subs))
}

func TestSortStatusDefaultsMissing(t *testing.T) {
	subs := sampleSubmissions() // s3 has no status, defaults to "submitted"

	asc := Sort(subs, "status", model.Asc)
	assert.Equal(t, []string{"s2", "s1", "s3"}, ids(asc))
}

func TestSortDataFieldAsString(t *testing.T) {
	subs := []model.Submission{
		{ID: "a", Data: map[string]any{"city": "Rome"}},
		{ID: "b", Data: map[string]any{}},
		{ID: "c", Data: map[string]any{"city": "Lisbon"}},
	}

	asc := Sort(subs, "city", model.Asc)
	// missing value sorts as empty string, first
	assert.Equal(t, []string{"b", "c", "a"}, ids(asc))
}

func TestSortStableTies(t *testing.T) {
	at := ts("2024-05-01T12:00:00Z")
	subs := []model.Submission{
		{ID: "first", SubmittedAt: at},
		{ID: "second", SubmittedAt: at},
		{ID: "third", SubmittedAt: at},
	}

	// ties keep input order in both directions: desc inverts the
	// comparison instead of reversing the result
	assert.Equal(t, []string{"first", "second", "third"}, ids(Sort(subs, "submittedAt", model.Asc)))
	assert.Equal(t, []string{"first", "second", "third"}, ids(Sort(subs, "submittedAt", model.Desc)))
}

func TestPaginate(t *testing.T) {
	subs := []model.Submission{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	t.Run("last short page", func(t *testing.T) {
		result := Paginate(subs, 2, 2)
		assert.Equal(t, []string{"c"}, ids(result.Items))
		assert.Equal(t, Pagination{
			CurrentPage: 2,
			PageSize:    2,
			Total:       3,
			TotalPages:  2,
			HasNextPage: false,
			HasPrevPage: true,
		}, result.Pagination)
	})

	t.Run("out-of-range page is empty, not clamped", func(t *testing.T) {
		result := Paginate(subs, 5, 2)
		assert.Empty(t, result.Items)
		assert.Equal(t, 5, result.Pagination.CurrentPage)
		assert.Equal(t, 2, result.Pagination.TotalPages)
		assert.False(t, result.Pagination.HasNextPage)
		assert.True(t, result.Pagination.HasPrevPage)
	})

	t.Run("concatenating all pages reconstructs the input", func(t *testing.T) {
		var all []model.Submission
		result := Paginate(subs, 1, 2)
		for page := 1; page <= result.Pagination.TotalPages; page++ {
			all = append(all, Paginate(subs, page, 2).Items...)
		}
		assert.Equal(t, subs, all)
	})

	t.Run("empty input", func(t *testing.T) {
		result := Paginate(nil, 1, 10)
		assert.Empty(t, result.Items)
		assert.Equal(t, 0, result.Pagination.Total)
		assert.Equal(t, 0, result.Pagination.TotalPages)
		assert.False(t, result.Pagination.HasNextPage)
		assert.False(t, result.Pagination.HasPrevPage)
	})
}
