package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/lexiloop/lexiloop-api/internal/api"
	apiMiddleware "github.com/lexiloop/lexiloop-api/internal/api/middleware"
)

// setupRouter creates the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))
	if app.config.Server.RequestTimeout > 0 {
		r.Use(middleware.Timeout(app.config.Server.RequestTimeout))
	}

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)
	rateLimiter := apiMiddleware.NewRateLimiter(app.config.Server.RateLimit, app.config.Server.RateBurst)

	var sessionHooks []api.SessionRecordedHook
	if app.prefetcher != nil {
		sessionHooks = append(sessionHooks, app.prefetcher.Prefetch)
	}
	sessionHandler := api.NewSessionHandler(app.processor, app.logger, sessionHooks...)
	reviewHandler := api.NewReviewHandler(app.scheduler, app.logger)
	progressHandler := api.NewProgressHandler(app.statsService, app.tracker, app.logger)
	vocabularyHandler := api.NewVocabularyHandler(app.catalog, app.masteryService, app.logger)
	storyHandler := api.NewStoryHandler(app.storyService, app.logger)

	r.Route("/api", func(r chi.Router) {
		// Public catalog browsing
		r.Get("/vocabulary", vocabularyHandler.ListVocabulary)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Use(rateLimiter.Limit)

			r.Get("/vocabulary/{word}", vocabularyHandler.GetVocabulary)
			r.Post("/sessions", sessionHandler.SubmitSession)
			r.Get("/review-queue", reviewHandler.GetReviewQueue)
			r.Get("/progress/stats", progressHandler.GetStats)
			r.Get("/progress/goals/weekly", progressHandler.GetWeeklyGoals)
			r.Post("/progress/goals/weekly", progressHandler.SetWeeklyGoal)
			r.Post("/stories", storyHandler.GenerateStory)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
