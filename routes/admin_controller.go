package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/formdeck/formdeck/app"
	"github.com/formdeck/formdeck/httpx"
	"github.com/formdeck/formdeck/log"
	"github.com/formdeck/formdeck/model"
	"github.com/formdeck/formdeck/store"
)

func CreateForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form := model.Form{}
		err := render.DecodeJSON(r.Body, &form)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		form.ID = uuid.New().String()
		if form.Status == "" {
			form.Status = model.FormDraft
		}

		err = app.Forms.Create(r.Context(), &form)
		if err != nil {
			httpx.LogInternalError(w, "db.insert_form", err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"id": form.ID,
		})
	}
}

func ListForms(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		forms, err := app.Forms.List(r.Context())
		if err != nil {
			httpx.LogInternalError(w, "db.get_forms", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"forms": forms,
		})
	}
}

func GetFormByID(app app.App) http.HandlerFunc {
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

		render.JSON(w, r, form)
	}
}

func UpdateForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formID := chi.URLParam(r, "id")

		form := model.Form{}
		err := render.DecodeJSON(r.Body, &form)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		form.ID = formID

		err = app.Forms.Update(r.Context(), &form)
		switch err {
		case nil:
			w.WriteHeader(http.StatusNoContent)
		case store.ErrNotFound:
			httpx.LogNotFound(w, "update_form", formID)
		case store.ErrVersionConflict:
			httpx.LogStatus(w, http.StatusConflict, log.DebugLevel, "db.update_form.verify.conflict")
		default:
			httpx.LogInternalError(w, "db.update_form", err)
		}
	}
}

func DeleteForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formID := chi.URLParam(r, "id")

		err := app.Forms.Delete(r.Context(), formID)
		switch err {
		case nil:
			w.WriteHeader(http.StatusNoContent)
		case store.ErrNotFound:
			httpx.LogNotFound(w, "delete_form", formID)
		default:
			httpx.LogInternalError(w, "db.delete_form", err)
		}
	}
}

// UpdateSubmissionStatus is the one mutation submissions ever see
// after intake: review status and flags.
func UpdateSubmissionStatus(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		submissionID := chi.URLParam(r, "submissionId")

		body := struct {
			Status string   `json:"status"`
			Flags  []string `json:"flags"`
		}{}
		err := render.DecodeJSON(r.Body, &body)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		if body.Status == "" {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "request.validate", "status is required")
			return
		}

		err = app.Submissions.UpdateStatus(r.Context(), submissionID, body.Status, body.Flags)
		switch err {
		case nil:
			w.WriteHeader(http.StatusNoContent)
		case store.ErrNotFound:
			httpx.LogNotFound(w, "update_submission", submissionID)
		default:
			httpx.LogInternalError(w, "db.update_submission", err)
		}
	}
}
