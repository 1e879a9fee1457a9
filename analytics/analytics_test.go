package analytics

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

func TestAnalyzeEmptyInput(t *testing.T) {
	requiredField := []model.FieldDefinition{
		{ID: "age", Type: model.FieldNumber, Label: "Age", Required: true},
	}
	optionalField := []model.FieldDefinition{
		{ID: "notes", Type: model.FieldTextarea, Label: "Notes"},
	}

	snapshot := Analyze(nil, requiredField, Options{})
	assert.Equal(t, 0, snapshot.Overview.TotalSubmissions)
	assert.Equal(t, 0, snapshot.Overview.CompletionRate)

	// with no required fields every submission is complete
	snapshot = Analyze(nil, optionalField, Options{})
	assert.Equal(t, 100, snapshot.Overview.CompletionRate)

	assert.Equal(t, 0, snapshot.Engagement.UniqueSubmitters)
	assert.Empty(t, snapshot.Engagement.PeakHours)
}

func TestAnalyzeNumericField(t *testing.T) {
	schema := []model.FieldDefinition{
		{ID: "age", Type: model.FieldNumber, Label: "Age", Required: true},
	}
	subs := []model.Submission{
		{Data: map[string]any{"age": float64(10)}, Status: "submitted"},
		{Data: map[string]any{"age": float64(20)}, Status: "reviewed"},
	}

	snapshot := Analyze(subs, schema, Options{})

	assert.Equal(t, 100, snapshot.Overview.CompletionRate)

	stats := snapshot.Fields["age"]
	assert.Equal(t, 2, stats.ResponseCount)
	assert.Equal(t, 100, stats.ResponseRate)
	assert.NotNil(t, stats.Numeric)
	assert.Equal(t, 15.0, stats.Numeric.Average)
	assert.Equal(t, 10.0, stats.Numeric.Min)
	assert.Equal(t, 20.0, stats.Numeric.Max)
	assert.Equal(t, 15.0, stats.Numeric.Median)
}

func TestAnalyzeMalformedNumbersExcluded(t *testing.T) {
	schema := []model.FieldDefinition{
		{ID: "age", Type: model.FieldNumber, Label: "Age"},
	}
	subs := []model.Submission{
		{Data: map[string]any{"age": float64(10)}},
		{Data: map[string]any{"age": "not a number"}},
	}

	stats := Analyze(subs, schema, Options{}).Fields["age"]
	// both values are present, only one is usable
	assert.Equal(t, 2, stats.ResponseCount)
	assert.Equal(t, 10.0, stats.Numeric.Average)
	assert.Equal(t, 10.0, stats.Numeric.Median)
}

func TestAnalyzeMedianEvenOdd(t *testing.T) {
	schema := []model.FieldDefinition{
		{ID: "n", Type: model.FieldRating, Label: "N"},
	}
	subs := []model.Submission{
		{Data: map[string]any{"n": float64(3)}},
		{Data: map[string]any{"n": float64(1)}},
		{Data: map[string]any{"n": float64(2)}},
	}

	stats := Analyze(subs, schema, Options{}).Fields["n"]
	assert.Equal(t, 2.0, stats.Numeric.Median)

	subs = append(subs, model.Submission{Data: map[string]any{"n": float64(10)}})
	stats = Analyze(subs, schema, Options{}).Fields["n"]
	assert.Equal(t, 2.5, stats.Numeric.Median)
}

func TestAnalyzeTextField(t *testing.T) {
	schema := []model.FieldDefinition{
		{ID: "name", Type: model.FieldText, Label: "Name"},
	}
	subs := []model.Submission{
		{Data: map[string]any{"name": "Jo"}},
		{Data: map[string]any{"name": "Johanna"}},
		{Data: map[string]any{}},
	}

	stats := Analyze(subs, schema, Options{}).Fields["name"]
	assert.Equal(t, 2, stats.ResponseCount)
	assert.Equal(t, 67, stats.ResponseRate)
	assert.Equal(t, 4.5, stats.Text.AverageLength)
	assert.Equal(t, 2, stats.Text.MinLength)
	assert.Equal(t, 7, stats.Text.MaxLength)
}

func TestAnalyzeChoiceDistribution(t *testing.T) {
	schema := []model.FieldDefinition{
		{ID: "color", Type: model.FieldSelect, Label: "Color", Options: []string{"red", "blue"}},
	}
	subs := []model.Submission{
		{Data: map[string]any{"color": "blue"}},
		{Data: map[string]any{"color": "red"}},
		{Data: map[string]any{"color": "red"}},
		{Data: map[string]any{"color": "blue"}},
	}

	stats := Analyze(subs, schema, Options{}).Fields["color"]
	assert.Equal(t, []OptionCount{
		{Value: "blue", Count: 2},
		{Value: "red", Count: 2},
	}, stats.Choice.Distribution)
	// tie resolves to the first-encountered value
	assert.Equal(t, "blue", stats.Choice.MostCommon)
}

func TestAnalyzeCheckboxField(t *testing.T) {
	schema := []model.FieldDefinition{
		{ID: "tags", Type: model.FieldCheckbox, Label: "Tags"},
	}
	subs := []model.Submission{
		{Data: map[string]any{"tags": []any{"a", "b"}}},
		{Data: map[string]any{"tags": []any{"b"}}},
	}

	stats := Analyze(subs, schema, Options{}).Fields["tags"]
	assert.Equal(t, []OptionCount{
		{Value: "a", Count: 1},
		{Value: "b", Count: 2},
	}, stats.Checkbox.Distribution)
	assert.Equal(t, "b", stats.Checkbox.MostSelected)
	assert.Equal(t, 1.5, stats.Checkbox.AverageSelections)
}

func TestAnalyzeTrend(t *testing.T) {
	now := ts("2024-06-30T12:00:00Z")
	subs := []model.Submission{
		{SubmittedAt: ts("2024-06-29T10:00:00Z")}, // current week
		{SubmittedAt: ts("2024-06-28T10:00:00Z")}, // current week
		{SubmittedAt: ts("2024-06-20T10:00:00Z")}, // previous week
		{SubmittedAt: ts("2024-01-01T10:00:00Z")}, // long gone
	}

	trend := Analyze(subs, nil, Options{TimeRange: "7d", Now: now}).Trend
	assert.Equal(t, 2, trend.Current)
	assert.Equal(t, 1, trend.Previous)
	assert.Equal(t, 100, trend.Growth)

	t.Run("empty previous period", func(t *testing.T) {
		trend := Analyze(subs[:2], nil, Options{TimeRange: "7d", Now: now}).Trend
		assert.Equal(t, 0, trend.Previous)
		assert.Equal(t, 100, trend.Growth)
	})

	t.Run("no submissions at all", func(t *testing.T) {
		trend := Analyze(nil, nil, Options{TimeRange: "7d", Now: now}).Trend
		assert.Equal(t, 0, trend.Growth)
	})

	t.Run("all counts everything as current", func(t *testing.T) {
		trend := Analyze(subs, nil, Options{TimeRange: "all", Now: now}).Trend
		assert.Equal(t, 4, trend.Current)
		assert.Equal(t, 100, trend.Growth)
	})

	t.Run("shrinking period", func(t *testing.T) {
		shrunk := []model.Submission{
			{SubmittedAt: ts("2024-06-20T10:00:00Z")},
			{SubmittedAt: ts("2024-06-21T10:00:00Z")},
		}
		trend := Analyze(shrunk, nil, Options{TimeRange: "7d", Now: now}).Trend
		assert.Equal(t, 0, trend.Current)
		assert.Equal(t, 2, trend.Previous)
		assert.Equal(t, -100, trend.Growth)
	})
}

func TestAnalyzeDropoff(t *testing.T) {
	schema := []model.FieldDefinition{
		{ID: "a", Type: model.FieldText, Label: "A"},
		{ID: "b", Type: model.FieldText, Label: "B"},
		{ID: "c", Type: model.FieldText, Label: "C"},
	}
	subs := []model.Submission{
		{Data: map[string]any{"a": "x", "b": "x", "c": "x"}},
		{Data: map[string]any{"a": "x", "b": "x"}},
		{Data: map[string]any{"a": "x"}},
		{Data: map[string]any{"c": "x"}}, // skipped a: never counts
	}

	dropoff := Analyze(subs, schema, Options{}).Dropoff
	counts := make([]int, len(dropoff))
	for i, point := range dropoff {
		counts[i] = point.Completed
	}
	assert.Equal(t, []int{3, 2, 1}, counts)

	// curve is monotonically non-increasing
	for i := 1; i < len(counts); i++ {
		assert.LessOrEqual(t, counts[i], counts[i-1])
	}
}

func TestClassifyDevice(t *testing.T) {
	tests := []struct {
		userAgent string
		expected  string
	}{
		{"Mozilla/5.0 (iPhone) Mobile Safari", "mobile"},
		{"Mozilla/5.0 (Tablet; rv:68.0)", "tablet"},
		{"Mozilla/5.0 (X11; Linux x86_64)", "desktop"},
		{"curl/8.0", "unknown"},
		{"", "unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ClassifyDevice(tt.userAgent), tt.userAgent)
	}
}

func TestAnalyzeEngagement(t *testing.T) {
	subs := []model.Submission{
		{SubmittedBy: "ada", SubmittedAt: ts("2024-06-01T09:00:00Z")},
		{SubmittedBy: "ada", SubmittedAt: ts("2024-06-02T09:30:00Z")},
		{SubmittedBy: "bob", SubmittedAt: ts("2024-06-03T14:00:00Z")},
		{SubmittedAt: ts("2024-06-05T09:10:00Z")}, // anonymous
	}

	engagement := Analyze(subs, nil, Options{}).Engagement
	assert.Equal(t, 3, engagement.UniqueSubmitters) // ada, bob, anonymous
	assert.Equal(t, 1, engagement.RepeatSubmitters)
	assert.Equal(t, 1.0, engagement.SubmissionsPerDay)

	assert.Equal(t, []HourCount{
		{Hour: 9, Count: 3},
		{Hour: 14, Count: 1},
	}, engagement.PeakHours)
}

func TestAnalyzeEngagementSingleDayFloor(t *testing.T) {
	subs := []model.Submission{
		{SubmittedAt: ts("2024-06-01T09:00:00Z")},
		{SubmittedAt: ts("2024-06-01T10:00:00Z")},
	}

	engagement := Analyze(subs, nil, Options{}).Engagement
	// span under a day uses a 1-day denominator
	assert.Equal(t, 2.0, engagement.SubmissionsPerDay)
}
