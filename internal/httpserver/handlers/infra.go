package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/linkbox/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkbox/internal/httpserver/respond"
)

type componentStatus struct {
	OK      bool   `json:"ok"`
	Enabled *bool  `json:"enabled,omitempty"`
	Mode    string `json:"mode,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Error   string `json:"error,omitempty"`
}

type infraResponse struct {
	Status     string                     `json:"status"`
	Components map[string]componentStatus `json:"components"`
}

// Infra reports the state of each component. Storage failures make the status "degraded".
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storage := componentStatus{OK: true, Mode: d.StorageName}
		if err := pingStorage(r.Context(), d); err != nil {
			storage = componentStatus{OK: false, Mode: d.StorageName, Error: err.Error()}
		}

		count := d.Live.Len()
		categories := len(d.Live.Categories())
		homepage := d.ImportTrigger != nil
		snapshots := d.SnapshotTrigger != nil

		components := map[string]componentStatus{
			"storage":    storage,
			"bookmarks":  {OK: true, Count: &count},
			"categories": {OK: true, Count: &categories},
			"homepage":   {OK: true, Enabled: &homepage},
			"snapshots":  {OK: true, Enabled: &snapshots},
		}

		status := "ok"
		if !storage.OK {
			status = "degraded"
		}

		respond.JSON(w, http.StatusOK, infraResponse{
			Status:     status,
			Components: components,
		})
	}
}
