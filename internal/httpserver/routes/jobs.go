package routes

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/linkbox/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkbox/internal/httpserver/handlers"
)

func init() { Register(registerJobs, middleware.Timeout(requestTimeout)) }

func registerJobs(r chi.Router, d deps.Deps) {
	g := guarded(r, d)
	g.Post("/api/import/homepage", handlers.TriggerImport(d))
	g.Post("/api/snapshot", handlers.TriggerSnapshot(d))
	g.Get("/api/infra", handlers.Infra(d))
}
