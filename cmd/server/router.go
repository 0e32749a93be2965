package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/atlasprep/atlasprep-api/internal/api"
	apimiddleware "github.com/atlasprep/atlasprep-api/internal/api/middleware"
)

// setupRouter configures the application router with all routes and
// middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apimiddleware.TraceMiddleware)

	authHandler := api.NewAuthHandler(
		app.userStore,
		app.jwtService,
		app.passwordVerifier,
		app.config.Auth,
		app.logger,
	)
	authMiddleware := apimiddleware.NewAuthMiddleware(app.jwtService)

	studyHandler := api.NewStudyHandler(app.studyService, app.logger)
	noteHandler := api.NewNoteHandler(app.studyService, app.logger)
	cardHandler := api.NewFlashcardHandler(app.studyService, app.logger)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.RefreshToken)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			// Session lifecycle
			r.Post("/sessions", studyHandler.StartSession)
			r.Post("/sessions/end", studyHandler.EndSession)

			// Progress and recommendations
			r.Post("/study/answers", studyHandler.SubmitAnswer)
			r.Get("/study/snapshot", studyHandler.GetSnapshot)
			r.Get("/study/streak", studyHandler.GetStreak)
			r.Get("/study/recommendations", studyHandler.GetRecommendations)
			r.Post("/study/quizzes", studyHandler.RecordQuizScore)

			// Notes
			r.Post("/notes", noteHandler.CreateNote)
			r.Get("/notes", noteHandler.ListNotes)
			r.Get("/notes/{id}", noteHandler.GetNote)
			r.Put("/notes/{id}", noteHandler.UpdateNote)
			r.Delete("/notes/{id}", noteHandler.DeleteNote)

			// Flashcards and reviews
			r.Post("/flashcards", cardHandler.CreateFlashcard)
			r.Get("/flashcards", cardHandler.ListFlashcards)
			r.Get("/flashcards/due", cardHandler.GetDueFlashcards)
			r.Get("/flashcards/{id}", cardHandler.GetFlashcard)
			r.Delete("/flashcards/{id}", cardHandler.DeleteFlashcard)
			r.Post("/flashcards/{id}/review", cardHandler.ReviewFlashcard)

			if app.generator != nil {
				generationHandler := api.NewGenerationHandler(
					app.studyService, app.generator, app.logger)
				r.Post("/flashcards/generate", generationHandler.GenerateFlashcards)
			}
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
