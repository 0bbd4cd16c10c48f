package main

import (
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/studycast/internal/api"
	apiMiddleware "github.com/phrazzld/studycast/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() (http.Handler, error) {
	processHandler, err := api.NewProcessHandler(app.orchestrator, api.DefaultMaxUploadBytes, app.logger)
	if err != nil {
		return nil, fmt.Errorf("process handler: %w", err)
	}
	taskHandler, err := api.NewTaskHandler(app.registry, app.logger)
	if err != nil {
		return nil, fmt.Errorf("task handler: %w", err)
	}
	configHandler, err := api.NewConfigHandler(app.configResponse(), app.ollama, app.logger)
	if err != nil {
		return nil, fmt.Errorf("config handler: %w", err)
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.Trace(app.logger))
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", api.Health)

		r.Group(func(r chi.Router) {
			if app.jwtService != nil {
				r.Use(apiMiddleware.NewAuthMiddleware(app.jwtService).Authenticate)
			}

			r.Post("/process", processHandler.Process)
			r.Get("/task_status/{taskID}", taskHandler.Status)
			r.Post("/tasks/{taskID}/cancel", taskHandler.Cancel)
			r.Get("/config", configHandler.GetConfig)
		})
	})

	staticDir := app.config.Server.StaticDir
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, filepath.Join(staticDir, "frontend", "index.html"))
	})

	return r, nil
}
