package model

import "time"

type FieldType string

const (
	FieldText     FieldType = "text"
	FieldEmail    FieldType = "email"
	FieldTextarea FieldType = "textarea"
	FieldSelect   FieldType = "select"
	FieldRadio    FieldType = "radio"
	FieldCheckbox FieldType = "checkbox"
	FieldNumber   FieldType = "number"
	FieldDate     FieldType = "date"
	FieldFile     FieldType = "file"
	FieldRating   FieldType = "rating"
)

type FormStatus string

const (
	FormDraft     FormStatus = "draft"
	FormPublished FormStatus = "published"
	FormArchived  FormStatus = "archived"
)

type Form struct {
	ID      string            `json:"id,omitempty"`
	Version int               `json:"version,omitempty"`
	Title   string            `json:"title"`
	Status  FormStatus        `json:"status"`
	Fields  []FieldDefinition `json:"fields"`
}

// FieldDefinition is read-only schema metadata: once a form version is
// loaded, no component mutates it.
type FieldDefinition struct {
	ID            string    `json:"id"`
	Type          FieldType `json:"type"`
	Label         string    `json:"label"`
	Required      bool      `json:"required"`
	Options       []string  `json:"options,omitempty"`
	Min           *float64  `json:"min,omitempty"`
	Max           *float64  `json:"max,omitempty"`
	MinSelections *int      `json:"minSelections,omitempty"`
	MaxSelections *int      `json:"maxSelections,omitempty"`
	MaxRating     int       `json:"maxRating,omitempty"`
}

// DefaultStatus is the submission status assumed when none was recorded.
const DefaultStatus = "submitted"

// DefaultSubmitter identifies submissions with no submitter on record.
const DefaultSubmitter = "anonymous"

type Submission struct {
	ID          string         `json:"id"`
	FormID      string         `json:"formId"`
	Data        map[string]any `json:"data"`
	SubmittedAt time.Time      `json:"submittedAt"`
	SubmittedBy string         `json:"submittedBy,omitempty"`
	UserAgent   string         `json:"userAgent,omitempty"`
	Status      string         `json:"status,omitempty"`
	Flags       []string       `json:"flags,omitempty"`
}

// StatusOf resolves a submission's status, defaulting when absent.
// Components use this instead of reading Status directly.
func StatusOf(s Submission) string {
	if s.Status == "" {
		return DefaultStatus
	}
	return s.Status
}

// SubmitterOf resolves a submission's submitter identity.
func SubmitterOf(s Submission) string {
	if s.SubmittedBy == "" {
		return DefaultSubmitter
	}
	return s.SubmittedBy
}

type DateRange struct {
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`
}

// FilterCriteria is the transient filter state held by the controller.
// Status "" or "all" means no status filter.
type FilterCriteria struct {
	SearchTerm   string            `json:"searchTerm,omitempty"`
	Status       string            `json:"status,omitempty"`
	DateRange    *DateRange        `json:"dateRange,omitempty"`
	FieldFilters map[string]string `json:"fieldFilters,omitempty"`
}

type SortOrder string

const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

type SortSpec struct {
	Field string    `json:"field"`
	Order SortOrder `json:"order"`
}
