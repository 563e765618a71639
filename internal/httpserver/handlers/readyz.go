package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/linkbox/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkbox/internal/httpserver/respond"
	"github.com/MrSnakeDoc/linkbox/internal/logger"
)

const pingTimeout = 2 * time.Second

type readyzResponse struct {
	Ready   bool   `json:"ready"`
	Storage string `json:"storage"`
	Error   string `json:"error,omitempty"`
}

// Readyz reports ready once the storage backend answers a ping.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := pingStorage(r.Context(), d); err != nil {
			d.Logger.Warn("readiness check failed",
				logger.String("storage", d.StorageName),
				logger.Error(err))
			respond.JSON(w, http.StatusServiceUnavailable, readyzResponse{
				Storage: d.StorageName,
				Error:   err.Error(),
			})
			return
		}

		respond.JSON(w, http.StatusOK, readyzResponse{
			Ready:   true,
			Storage: d.StorageName,
		})
	}
}

func pingStorage(ctx context.Context, d deps.Deps) error {
	if d.Storage == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return d.Storage.Ping(ctx)
}
