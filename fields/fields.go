package fields

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/formdeck/formdeck/model"
)

var reEmail = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// behavior bundles the per-type rules for one field type. All type
// dispatch in this package goes through the behaviors table, so adding
// a field type means adding one entry here.
type behavior struct {
	present  func(value any) bool
	validate func(value any, field model.FieldDefinition) []string
}

var behaviors = map[model.FieldType]behavior{
	model.FieldText:     {present: presentText},
	model.FieldEmail:    {present: presentText, validate: validateEmail},
	model.FieldTextarea: {present: presentText},
	model.FieldSelect:   {present: presentText},
	model.FieldRadio:    {present: presentText},
	model.FieldDate:     {present: presentText},
	model.FieldCheckbox: {present: presentSequence, validate: validateCheckbox},
	model.FieldFile:     {present: presentFile},
	model.FieldNumber:   {present: presentScalar, validate: validateNumber},
	model.FieldRating:   {present: presentScalar},
}

// IsPresent reports whether value counts as "filled in" for the given
// field type. Unknown types fall back to the text rule.
func IsPresent(value any, fieldType model.FieldType) bool {
	b, ok := behaviors[fieldType]
	if !ok || b.present == nil {
		return presentText(value)
	}
	return b.present(value)
}

func presentText(value any) bool {
	if value == nil {
		return false
	}
	return strings.TrimSpace(Stringify(value)) != ""
}

func presentSequence(value any) bool {
	seq, ok := AsSequence(value)
	return ok && len(seq) > 0
}

func presentFile(value any) bool {
	if seq, ok := AsSequence(value); ok {
		return len(seq) > 0
	}
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	default:
		return true
	}
}

// presentScalar treats zero as a real answer; only a missing value or
// an empty string counts as absent.
func presentScalar(value any) bool {
	if value == nil {
		return false
	}
	if s, ok := value.(string); ok {
		return s != ""
	}
	return true
}

// Stringify renders a raw submission value for matching and length
// statistics. Sequences are joined so multi-select answers stay
// searchable as a whole.
func Stringify(value any) string {
	if value == nil {
		return ""
	}
	if seq, ok := AsSequence(value); ok {
		parts := make([]string, len(seq))
		for i, v := range seq {
			parts[i] = Stringify(v)
		}
		return strings.Join(parts, ", ")
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", value)
}

// AsSequence unwraps sequence-shaped values. Submission data decoded
// from JSON yields []any; typed slices appear in tests and fixtures.
func AsSequence(value any) ([]any, bool) {
	switch v := value.(type) {
	case []any:
		return v, true
	case []string:
		seq := make([]any, len(v))
		for i, s := range v {
			seq[i] = s
		}
		return seq, true
	default:
		return nil, false
	}
}

// ParseNumber parses a numeric submission value. Malformed values are
// reported, never coerced to zero.
func ParseNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case nil:
		return 0, false
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return n, err == nil
	default:
		n, err := strconv.ParseFloat(Stringify(v), 64)
		return n, err == nil
	}
}

func validateEmail(value any, field model.FieldDefinition) []string {
	if !reEmail.MatchString(strings.TrimSpace(Stringify(value))) {
		return []string{fmt.Sprintf("%s must be a valid email address", field.Label)}
	}
	return nil
}

func validateNumber(value any, field model.FieldDefinition) []string {
	n, ok := ParseNumber(value)
	if !ok {
		return []string{fmt.Sprintf("%s must be a number", field.Label)}
	}

	var errs []string
	if field.Min != nil && n < *field.Min {
		errs = append(errs, fmt.Sprintf("%s must be at least %v", field.Label, *field.Min))
	}
	if field.Max != nil && n > *field.Max {
		errs = append(errs, fmt.Sprintf("%s must be at most %v", field.Label, *field.Max))
	}
	return errs
}

func validateCheckbox(value any, field model.FieldDefinition) []string {
	seq, ok := AsSequence(value)
	if !ok {
		return nil
	}

	var errs []string
	if field.MinSelections != nil && len(seq) < *field.MinSelections {
		errs = append(errs, fmt.Sprintf("%s requires at least %d selections", field.Label, *field.MinSelections))
	}
	if field.MaxSelections != nil && len(seq) > *field.MaxSelections {
		errs = append(errs, fmt.Sprintf("%s allows at most %d selections", field.Label, *field.MaxSelections))
	}
	return errs
}

// ValidateValue checks one raw value against one field definition.
// Absent values are not validated here; required-ness is enforced by
// ValidateSubmission over the whole record.
func ValidateValue(value any, field model.FieldDefinition) []string {
	if !IsPresent(value, field.Type) {
		return nil
	}
	b, ok := behaviors[field.Type]
	if !ok || b.validate == nil {
		return nil
	}
	return b.validate(value, field)
}
