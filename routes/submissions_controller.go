package routes

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/formdeck/formdeck/analytics"
	"github.com/formdeck/formdeck/app"
	"github.com/formdeck/formdeck/filter"
	"github.com/formdeck/formdeck/httpx"
	"github.com/formdeck/formdeck/log"
	"github.com/formdeck/formdeck/model"
	"github.com/formdeck/formdeck/store"
)

// ListSubmissions serves the filtered, sorted, paginated submission
// view of one form. Filtering happens in memory over the full list:
// the collection is read once and every view is derived from it.
//
// Query parameters: search, status, from, to, field.<id>=<substring>,
// sort (submittedAt|status|<field id>), order (asc|desc), page,
// page_size.
func ListSubmissions(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formID := chi.URLParam(r, "id")

		if _, err := app.Forms.Get(r.Context(), formID); err != nil {
			if err == store.ErrNotFound {
				httpx.LogNotFound(w, "get_submissions", formID)
			} else {
				httpx.LogInternalError(w, "db.get_form", err)
			}
			return
		}

		submissions, err := app.Submissions.ListByForm(r.Context(), formID)
		if err != nil {
			httpx.LogInternalError(w, "db.get_submissions", err)
			return
		}

		criteria, err := parseCriteria(r)
		if err != nil {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "request.parse_criteria", "%s", err)
			return
		}

		q := r.URL.Query()
		sortField := q.Get("sort")
		if sortField == "" {
			sortField = "submittedAt"
		}
		order := model.Asc
		if q.Get("order") == "desc" {
			order = model.Desc
		}

		page := intParam(q.Get("page"), 1)
		pageSize := intParam(q.Get("page_size"), 10)

		filtered := filter.Apply(submissions, criteria)
		sorted := filter.Sort(filtered, sortField, order)
		result := filter.Paginate(sorted, page, pageSize)

		render.JSON(w, r, result)
	}
}

// GetFormAnalytics serves the analytics snapshot of one form, over the
// whole submission collection. Query parameter: range (7d, 30d, 90d,
// 1y, all).
func GetFormAnalytics(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formID := chi.URLParam(r, "id")

		form, err := app.Forms.Get(r.Context(), formID)
		if err == store.ErrNotFound {
			httpx.LogNotFound(w, "get_analytics", formID)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_form", err)
			return
		}

		submissions, err := app.Submissions.ListByForm(r.Context(), formID)
		if err != nil {
			httpx.LogInternalError(w, "db.get_submissions", err)
			return
		}

		snapshot := analytics.Analyze(submissions, form.Fields, analytics.Options{
			TimeRange: r.URL.Query().Get("range"),
		})
		render.JSON(w, r, snapshot)
	}
}

func parseCriteria(r *http.Request) (model.FilterCriteria, error) {
	q := r.URL.Query()

	criteria := model.FilterCriteria{
		SearchTerm: q.Get("search"),
		Status:     q.Get("status"),
	}

	from, err := parseDate(q.Get("from"))
	if err != nil {
		return criteria, err
	}
	to, err := parseDate(q.Get("to"))
	if err != nil {
		return criteria, err
	}
	if from != nil || to != nil {
		criteria.DateRange = &model.DateRange{Start: from, End: to}
	}

	for key, values := range q {
		fieldID, ok := strings.CutPrefix(key, "field.")
		if !ok || len(values) == 0 {
			continue
		}
		if criteria.FieldFilters == nil {
			criteria.FieldFilters = map[string]string{}
		}
		criteria.FieldFilters[fieldID] = values[0]
	}

	return criteria, nil
}

func parseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid date %q", value)
}

func intParam(value string, fallback int) int {
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
