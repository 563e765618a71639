package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/linkbox/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkbox/internal/httpserver/handlers"
)

// No timeout: the stream lives as long as the client stays connected.
func init() { Register(registerEvents) }

func registerEvents(r chi.Router, d deps.Deps) {
	api(r, d).Get("/api/bookmarks/events", handlers.Events(d))
}
