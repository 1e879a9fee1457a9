package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/formdeck/formdeck/app"
	"github.com/formdeck/formdeck/fields"
	"github.com/formdeck/formdeck/httpx"
	"github.com/formdeck/formdeck/log"
	"github.com/formdeck/formdeck/model"
	"github.com/formdeck/formdeck/store"
)

// PublicListForms shows the published forms only; the public surface
// never sees drafts or archived forms.
func PublicListForms(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		forms, err := app.Forms.List(r.Context())
		if err != nil {
			httpx.LogInternalError(w, "db.get_forms", err)
			return
		}

		published := []model.Form{}
		for _, form := range forms {
			if form.Status == model.FormPublished {
				published = append(published, form)
			}
		}

		render.JSON(w, r, map[string]any{
			"forms": published,
		})
	}
}

func PublicGetForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formID := chi.URLParam(r, "id")

		form, err := app.Forms.Get(r.Context(), formID)
		if err == store.ErrNotFound {
			httpx.LogNotFound(w, "get_form", formID)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_form", err)
			return
		}
		if form.Status != model.FormPublished {
			httpx.LogNotFound(w, "get_form.unpublished", formID)
			return
		}

		render.JSON(w, r, form)
	}
}

// PublicSubmitForm validates a submission against the form schema and
// saves it. Validation errors reject with the full aggregated list;
// schema-drift warnings are logged but never block intake.
func PublicSubmitForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formID := chi.URLParam(r, "id")

		form, err := app.Forms.Get(r.Context(), formID)
		if err == store.ErrNotFound {
			httpx.LogNotFound(w, "get_form", formID)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_form", err)
			return
		}
		if form.Status != model.FormPublished {
			httpx.LogNotFound(w, "submit_form.unpublished", formID)
			return
		}

		body := struct {
			Data        map[string]any `json:"data"`
			SubmittedBy string         `json:"submittedBy"`
		}{}
		err = render.DecodeJSON(r.Body, &body)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		report := fields.ValidateSubmission(body.Data, form.Fields)
		for _, warning := range report.Warnings {
			log.Warnf("submit_form.schema_drift: %s", warning)
		}
		if !report.Valid {
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, report)
			return
		}

		submission := model.Submission{
			ID:          uuid.New().String(),
			FormID:      formID,
			Data:        body.Data,
			SubmittedAt: time.Now(),
			SubmittedBy: body.SubmittedBy,
			UserAgent:   r.UserAgent(),
			Status:      model.DefaultStatus,
		}

		err = app.Submissions.Save(r.Context(), &submission)
		if err != nil {
			httpx.LogInternalError(w, "db.insert_submission", err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"id": submission.ID,
		})
	}
}
