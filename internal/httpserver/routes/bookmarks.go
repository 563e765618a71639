package routes

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/linkbox/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkbox/internal/httpserver/handlers"
)

// requestTimeout bounds every non-streaming route.
const requestTimeout = 10 * time.Second

func init() { Register(registerBookmarks, middleware.Timeout(requestTimeout)) }

func registerBookmarks(r chi.Router, d deps.Deps) {
	read := api(r, d)
	read.Get("/api/bookmarks", handlers.ListBookmarks(d))
	read.Get("/api/bookmarks/search", handlers.SearchBookmarks(d))
	read.Get("/api/categories", handlers.Categories(d))
	read.Get("/api/export", handlers.Export(d))

	write := guarded(r, d)
	write.Post("/api/bookmarks", handlers.AddBookmark(d))
	write.Put("/api/bookmarks", handlers.ReplaceBookmarks(d))
	write.Post("/api/bookmarks/reorder", handlers.ReorderBookmarks(d))
	write.Patch("/api/bookmarks/{id}", handlers.EditBookmark(d))
	write.Delete("/api/bookmarks/{id}", handlers.DeleteBookmark(d))
}
