package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/linkbox/internal/domain"
	"github.com/MrSnakeDoc/linkbox/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkbox/internal/httpserver/respond"
	"github.com/MrSnakeDoc/linkbox/internal/logger"
)

type jobResponse struct {
	Status string `json:"status"`
	Job    string `json:"job"`
}

// TriggerImport asks the homepage importer to run now.
func TriggerImport(d deps.Deps) http.HandlerFunc {
	return trigger(d, d.ImportTrigger, "homepage import")
}

// TriggerSnapshot asks the snapshotter to run now.
func TriggerSnapshot(d deps.Deps) http.HandlerFunc {
	return trigger(d, d.SnapshotTrigger, "snapshot")
}

// trigger does a non-blocking send on ch: 202 when queued, 429 when a run is
// already pending, 503 when the job is not configured.
func trigger(d deps.Deps, ch chan<- struct{}, job string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ch == nil {
			respond.Error(w, d.Logger, domain.ErrUnavailable.Withf("%s is not configured", job))
			return
		}

		select {
		case ch <- struct{}{}:
			d.Logger.Info("manual job triggered via endpoint",
				logger.String("job", job),
				logger.String("remote_ip", r.RemoteAddr))
			respond.JSON(w, http.StatusAccepted, jobResponse{Status: "accepted", Job: job})
		default:
			d.Logger.Warn("job already pending",
				logger.String("job", job),
				logger.String("remote_ip", r.RemoteAddr))
			respond.Error(w, d.Logger, domain.ErrBusy.Withf("%s already pending, please wait", job))
		}
	}
}
