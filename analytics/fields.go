package analytics

import (
	"sort"
	"unicode/utf8"

	"github.com/formdeck/formdeck/fields"
	"github.com/formdeck/formdeck/model"
)

// FieldStats carries the per-field aggregates. Exactly one of the
// type-specific blocks is set, matching the field's type.
type FieldStats struct {
	FieldID       string          `json:"fieldId"`
	Label         string          `json:"label"`
	Type          model.FieldType `json:"type"`
	ResponseCount int             `json:"responseCount"`
	ResponseRate  int             `json:"responseRate"` // percent
	Text          *TextStats      `json:"text,omitempty"`
	Numeric       *NumericStats   `json:"numeric,omitempty"`
	Choice        *ChoiceStats    `json:"choice,omitempty"`
	Checkbox      *CheckboxStats  `json:"checkbox,omitempty"`
}

type TextStats struct {
	AverageLength float64 `json:"averageLength"`
	MinLength     int     `json:"minLength"`
	MaxLength     int     `json:"maxLength"`
}

type NumericStats struct {
	Average float64 `json:"average"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Median  float64 `json:"median"`
}

type OptionCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

type ChoiceStats struct {
	Distribution []OptionCount `json:"distribution"`
	MostCommon   string        `json:"mostCommon"`
}

type CheckboxStats struct {
	Distribution      []OptionCount `json:"distribution"`
	AverageSelections float64       `json:"averageSelections"`
	MostSelected      string        `json:"mostSelected"`
}

type aggregator func(values []any, stats *FieldStats)

// aggregators is the per-type stats dispatch table, keyed the same way
// as the fields package behavior registry.
var aggregators = map[model.FieldType]aggregator{
	model.FieldText:     aggregateText,
	model.FieldEmail:    aggregateText,
	model.FieldTextarea: aggregateText,
	model.FieldNumber:   aggregateNumeric,
	model.FieldRating:   aggregateNumeric,
	model.FieldSelect:   aggregateChoice,
	model.FieldRadio:    aggregateChoice,
	model.FieldCheckbox: aggregateCheckbox,
}

func analyzeFields(submissions []model.Submission, schema []model.FieldDefinition) map[string]FieldStats {
	out := make(map[string]FieldStats, len(schema))
	for _, f := range schema {
		var values []any
		for _, s := range submissions {
			if v := s.Data[f.ID]; fields.IsPresent(v, f.Type) {
				values = append(values, v)
			}
		}

		stats := FieldStats{
			FieldID:       f.ID,
			Label:         f.Label,
			Type:          f.Type,
			ResponseCount: len(values),
			ResponseRate:  roundPercent(len(values), len(submissions)),
		}
		if agg, ok := aggregators[f.Type]; ok {
			agg(values, &stats)
		}
		out[f.ID] = stats
	}
	return out
}

func aggregateText(values []any, stats *FieldStats) {
	text := &TextStats{}
	stats.Text = text
	if len(values) == 0 {
		return
	}

	total := 0
	text.MinLength = utf8.RuneCountInString(fields.Stringify(values[0]))
	for _, v := range values {
		n := utf8.RuneCountInString(fields.Stringify(v))
		total += n
		if n < text.MinLength {
			text.MinLength = n
		}
		if n > text.MaxLength {
			text.MaxLength = n
		}
	}
	text.AverageLength = round2(float64(total) / float64(len(values)))
}

func aggregateNumeric(values []any, stats *FieldStats) {
	numeric := &NumericStats{}
	stats.Numeric = numeric

	var nums []float64
	for _, v := range values {
		if n, ok := fields.ParseNumber(v); ok {
			nums = append(nums, n)
		}
	}
	if len(nums) == 0 {
		return
	}

	sum := 0.0
	numeric.Min = nums[0]
	numeric.Max = nums[0]
	for _, n := range nums {
		sum += n
		if n < numeric.Min {
			numeric.Min = n
		}
		if n > numeric.Max {
			numeric.Max = n
		}
	}
	numeric.Average = round2(sum / float64(len(nums)))
	numeric.Median = median(nums)
}

func median(nums []float64) float64 {
	sorted := append([]float64(nil), nums...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// distribution counts values preserving first-encounter order, so ties
// in "most common" resolve to the value seen first.
type distribution struct {
	order  []string
	counts map[string]int
}

func newDistribution() *distribution {
	return &distribution{counts: make(map[string]int)}
}

func (d *distribution) add(value string) {
	if _, seen := d.counts[value]; !seen {
		d.order = append(d.order, value)
	}
	d.counts[value]++
}

func (d *distribution) entries() []OptionCount {
	out := make([]OptionCount, 0, len(d.order))
	for _, v := range d.order {
		out = append(out, OptionCount{Value: v, Count: d.counts[v]})
	}
	return out
}

func (d *distribution) top() string {
	best := ""
	bestCount := 0
	for _, v := range d.order {
		if d.counts[v] > bestCount {
			best = v
			bestCount = d.counts[v]
		}
	}
	return best
}

func aggregateChoice(values []any, stats *FieldStats) {
	dist := newDistribution()
	for _, v := range values {
		dist.add(fields.Stringify(v))
	}
	stats.Choice = &ChoiceStats{
		Distribution: dist.entries(),
		MostCommon:   dist.top(),
	}
}

func aggregateCheckbox(values []any, stats *FieldStats) {
	dist := newDistribution()
	selections := 0
	for _, v := range values {
		seq, ok := fields.AsSequence(v)
		if !ok {
			continue
		}
		selections += len(seq)
		for _, item := range seq {
			dist.add(fields.Stringify(item))
		}
	}

	checkbox := &CheckboxStats{
		Distribution: dist.entries(),
		MostSelected: dist.top(),
	}
	if len(values) > 0 {
		checkbox.AverageSelections = round2(float64(selections) / float64(len(values)))
	}
	stats.Checkbox = checkbox
}
