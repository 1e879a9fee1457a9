package fields

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/formdeck/formdeck/model"
)

// Report is the outcome of validating a whole submission against a
// form schema. Warnings flag schema drift (data keys the schema does
// not know about) without rejecting the submission.
type Report struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// ValidateSubmission checks every field of a submission's data against
// the schema. Missing required fields are reported as one combined
// message naming all missing labels, followed by any per-field errors.
func ValidateSubmission(data map[string]any, schema []model.FieldDefinition) Report {
	var result *multierror.Error

	var missing []string
	for _, field := range schema {
		if field.Required && !IsPresent(data[field.ID], field.Type) {
			missing = append(missing, field.Label)
		}
	}
	if len(missing) > 0 {
		result = multierror.Append(result,
			fmt.Errorf("missing required fields: %s", strings.Join(missing, ", ")))
	}

	for _, field := range schema {
		for _, msg := range ValidateValue(data[field.ID], field) {
			result = multierror.Append(result, fmt.Errorf("%s", msg))
		}
	}

	report := Report{Valid: result.ErrorOrNil() == nil}
	if result != nil {
		for _, err := range result.Errors {
			report.Errors = append(report.Errors, err.Error())
		}
	}

	known := make(map[string]bool, len(schema))
	for _, field := range schema {
		known[field.ID] = true
	}
	var drift []string
	for key := range data {
		if !known[key] {
			drift = append(drift, key)
		}
	}
	if len(drift) > 0 {
		sort.Strings(drift)
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("unknown fields ignored: %s", strings.Join(drift, ", ")))
	}

	return report
}
