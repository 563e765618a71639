package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/linkbox/internal/domain"
	"github.com/MrSnakeDoc/linkbox/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkbox/internal/logger"
)

const defaultHeartbeat = 30 * time.Second

// Events streams the list as server-sent events: once on connect, then after
// every change. Slow clients only ever receive the latest list.
func Events(d deps.Deps) http.HandlerFunc {
	heartbeat := d.Heartbeat
	if heartbeat <= 0 {
		heartbeat = defaultHeartbeat
	}

	return func(w http.ResponseWriter, r *http.Request) {
		rc := http.NewResponseController(w)
		clientID := uuid.NewString()
		log := d.Logger.With(logger.String("client_id", clientID))

		updates := make(chan []domain.Bookmark, 1)
		cancel := d.Live.Subscribe(func(list []domain.Bookmark) {
			// Never block the mutation: replace whatever is still queued.
			select {
			case <-updates:
			default:
			}
			updates <- list
		})
		defer cancel()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		w.WriteHeader(http.StatusOK)

		log.Debug("event stream opened")
		defer log.Debug("event stream closed")

		seq := 0
		send := func(list []domain.Bookmark) error {
			seq++
			data, err := json.Marshal(list)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintf(w, "id: %d\nevent: bookmarks\ndata: %s\n\n", seq, data); err != nil {
				return err
			}
			return rc.Flush()
		}

		if _, err := fmt.Fprintf(w, "event: hello\ndata: {\"clientId\":%q}\n\n", clientID); err != nil {
			return
		}
		if err := send(d.Live.Bookmarks()); err != nil {
			log.Debug("failed to send initial list", logger.Error(err))
			return
		}

		ticker := time.NewTicker(heartbeat)
		defer ticker.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case list := <-updates:
				if err := send(list); err != nil {
					log.Debug("failed to send update", logger.Error(err))
					return
				}
			case <-ticker.C:
				if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
					return
				}
				if err := rc.Flush(); err != nil {
					return
				}
			}
		}
	}
}
