package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/linkbox/internal/domain"
	"github.com/MrSnakeDoc/linkbox/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkbox/internal/httpserver/respond"
	"github.com/MrSnakeDoc/linkbox/internal/logger"
	"github.com/MrSnakeDoc/linkbox/internal/sources/listfile"
)

// ListBookmarks returns the whole list in display order.
func ListBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, http.StatusOK, d.Live.Bookmarks())
	}
}

// AddBookmark creates a bookmark at the top of the list.
func AddBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var draft domain.Draft
		if err := decodeJSON(w, r, &draft); err != nil {
			respond.Error(w, d.Logger, err)
			return
		}
		if err := d.Validator.Validate(draft); err != nil {
			respond.Error(w, d.Logger, err)
			return
		}

		b, err := d.Live.Add(r.Context(), draft)
		if err != nil {
			respond.Error(w, d.Logger, err)
			return
		}

		d.Logger.Info("bookmark added",
			logger.String("id", b.ID),
			logger.String("url", b.URL))
		w.Header().Set("Location", "/api/bookmarks/"+b.ID)
		respond.JSON(w, http.StatusCreated, b)
	}
}

// ReplaceBookmarks swaps the whole list for the request body.
// The body is a JSON array, or YAML when Content-Type says so.
func ReplaceBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		format := listfile.FormatFromContentType(r.Header.Get("Content-Type"))
		records, err := listfile.Decode(http.MaxBytesReader(w, r.Body, maxBodyBytes), format)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			err = domain.ErrValidation.Withf("request body exceeds %d bytes", tooLarge.Limit)
		}
		if err != nil {
			respond.Error(w, d.Logger, err)
			return
		}

		list, err := d.Live.ReplaceAll(r.Context(), records)
		if err != nil {
			respond.Error(w, d.Logger, err)
			return
		}

		d.Logger.Info("bookmarks replaced",
			logger.Int("count", len(list)),
			logger.String("format", string(format)))
		respond.JSON(w, http.StatusOK, list)
	}
}

// EditBookmark applies a partial update. createTime in the body is ignored.
func EditBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var patch domain.Patch
		if err := decodeJSON(w, r, &patch); err != nil {
			respond.Error(w, d.Logger, err)
			return
		}

		updated, found, err := d.Live.Edit(r.Context(), id, patch)
		if err != nil {
			respond.Error(w, d.Logger, err)
			return
		}
		if !found {
			respond.Error(w, d.Logger, domain.ErrNotFound.Withf("bookmark %s not found", id))
			return
		}

		respond.JSON(w, http.StatusOK, updated)
	}
}

// DeleteBookmark removes a bookmark. Unknown ids succeed too.
func DeleteBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		if _, err := d.Live.Delete(r.Context(), id); err != nil {
			respond.Error(w, d.Logger, err)
			return
		}

		d.Logger.Info("bookmark deleted", logger.String("id", id))
		w.WriteHeader(http.StatusNoContent)
	}
}

type reorderRequest struct {
	OldIndex *int `json:"oldIndex" validate:"required"`
	NewIndex *int `json:"newIndex" validate:"required"`
}

// ReorderBookmarks moves one bookmark to a new position.
func ReorderBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req reorderRequest
		if err := decodeJSON(w, r, &req); err != nil {
			respond.Error(w, d.Logger, err)
			return
		}
		if err := d.Validator.Validate(req); err != nil {
			respond.Error(w, d.Logger, err)
			return
		}

		list, err := d.Live.Reorder(r.Context(), *req.OldIndex, *req.NewIndex)
		if err != nil {
			respond.Error(w, d.Logger, err)
			return
		}

		respond.JSON(w, http.StatusOK, list)
	}
}

// SearchBookmarks ranks bookmarks by title and category against ?q=.
func SearchBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := strings.TrimSpace(r.URL.Query().Get("q"))
		if query == "" {
			respond.Error(w, d.Logger, domain.ErrValidation.Withf("query parameter q is required"))
			return
		}

		results := d.Live.Search(query)
		d.Logger.Debug("search request",
			logger.String("query", query),
			logger.Int("results", len(results)))

		respond.JSON(w, http.StatusOK, results)
	}
}

// Categories returns the distinct categories in first-seen order.
func Categories(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, http.StatusOK, d.Live.Categories())
	}
}

// Export downloads the list as JSON (default) or YAML (?format=yaml).
func Export(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		format, err := listfile.ParseFormat(r.URL.Query().Get("format"))
		if err != nil {
			respond.Error(w, d.Logger, domain.ErrValidation.Withf("%v", err))
			return
		}

		w.Header().Set("Content-Type", format.ContentType())
		w.Header().Set("Content-Disposition", `attachment; filename="bookmarks.`+string(format)+`"`)
		if err := listfile.Encode(w, format, d.Live.Bookmarks()); err != nil {
			d.Logger.Warn("failed to write export", logger.Error(err))
		}
	}
}
