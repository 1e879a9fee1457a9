package routes

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/formdeck/formdeck/app"
	"github.com/formdeck/formdeck/controller"
	"github.com/formdeck/formdeck/httpx"
	"github.com/formdeck/formdeck/log"
	"github.com/formdeck/formdeck/model"
)

// GetSavedFilters returns the persisted filter state for a form.
// Missing or corrupt state reads as defaults, never as an error.
func GetSavedFilters(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formID := chi.URLParam(r, "id")

		criteria := model.FilterCriteria{}
		if raw, ok := app.KV.Get(controller.PersistKey(formID)); ok {
			if err := json.Unmarshal([]byte(raw), &criteria); err != nil {
				log.Debugf("get_filters.corrupt: %s", err)
				criteria = model.FilterCriteria{}
			}
		}

		render.JSON(w, r, criteria)
	}
}

// SaveFilters persists filter state under the same key the filter
// state controller reads, so saved state round-trips.
func SaveFilters(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formID := chi.URLParam(r, "id")

		criteria := model.FilterCriteria{}
		err := render.DecodeJSON(r.Body, &criteria)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		if dr := criteria.DateRange; dr != nil && dr.Start != nil && dr.End != nil && dr.End.Before(*dr.Start) {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "request.validate", "date range start must not be after end")
			return
		}

		raw, err := json.Marshal(criteria)
		if err != nil {
			httpx.LogInternalError(w, "kv.save_filters.marshal", err)
			return
		}
		app.KV.Set(controller.PersistKey(formID), string(raw))

		w.WriteHeader(http.StatusNoContent)
	}
}
