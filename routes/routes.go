package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/formdeck/formdeck/app"
	"github.com/formdeck/formdeck/routes/middlewares"
)

func Wire(app app.App) http.Handler {
	root := chi.NewRouter()
	root.Use(middleware.Logger, middleware.Recoverer)

	root.Mount("/api", apiRouter(app))

	return root
}

func apiRouter(app app.App) http.Handler {
	api := chi.NewRouter()

	// public surface: published forms and submission intake
	api.Get("/forms", PublicListForms(app))
	api.Get("/forms/{id}", PublicGetForm(app))
	api.Post("/forms/{id}/submissions", PublicSubmitForm(app))

	api.Route("/admin", func(r chi.Router) {
		r.Use(middlewares.RequireRole(app.TokenSecret, "admin"))

		// CRUD forms
		r.Post("/forms", CreateForm(app))
		r.Get("/forms", ListForms(app))
		r.Get("/forms/{id}", GetFormByID(app))
		r.Put("/forms/{id}", UpdateForm(app))
		r.Delete("/forms/{id}", DeleteForm(app))

		// submission views
		r.Get("/forms/{id}/submissions", ListSubmissions(app))
		r.Get("/forms/{id}/analytics", GetFormAnalytics(app))
		r.Patch("/submissions/{submissionId}", UpdateSubmissionStatus(app))

		// persisted filter state
		r.Get("/forms/{id}/filters", GetSavedFilters(app))
		r.Put("/forms/{id}/filters", SaveFilters(app))
	})

	api.Post("/login", Login(app))
	api.Post("/refresh", Refresh(app))

	return api
}
