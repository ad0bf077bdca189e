package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/taskapi/internal/api"
	apiMiddleware "github.com/phrazzld/taskapi/internal/api/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const readinessTimeout = 2 * time.Second

// setupRouter creates the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))
	r.Use(apiMiddleware.RequestLogger)
	r.Use(apiMiddleware.Metrics)

	taskHandler := api.NewTaskHandler(app.dispatcher, app.logger)
	healthHandler := api.NewHealthHandler(app.dispatcher, readinessTimeout, app.logger)

	r.Get("/", api.Root)

	r.Route("/tasks", func(r chi.Router) {
		if app.jwtService != nil {
			r.Use(apiMiddleware.NewAuthMiddleware(app.jwtService).Authenticate)
		}
		r.Post("/", taskHandler.SubmitTask)
		r.Get("/{"+api.TaskIDParam+"}", taskHandler.GetTask)
	})

	r.Get("/health", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
