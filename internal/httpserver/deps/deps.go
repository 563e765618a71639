package deps

import (
	"net/http"
	"time"

	"github.com/MrSnakeDoc/linkbox/internal/bookmarks"
	"github.com/MrSnakeDoc/linkbox/internal/logger"
	"github.com/MrSnakeDoc/linkbox/internal/store"
	"github.com/MrSnakeDoc/linkbox/internal/validation"
)

type Deps struct {
	Logger          logger.Logger
	StartTime       time.Time
	Version         string
	Commit          string
	BuildDate       string
	GoVersion       string
	TimeNow         func() time.Time                  // for testing, defaults to time.Now
	AllowedHosts    []string                          // Host headers allowed to access the server
	AllowedCIDRS    []string                          // IPs allowed to call write and ops endpoints
	TrustProxy      bool                              // true if running behind a trusted reverse proxy (e.g., cloudflared)
	Live            *bookmarks.Live                   // Reactive bookmark list
	Storage         store.Pinger                      // Backend pinged by readyz
	StorageName     string                            // memory | badger | sqlite | redis
	Validator       *validation.Validator             // Request body validation
	ImportTrigger   chan struct{}                     // Channel to trigger a homepage import (nil if homepage disabled)
	SnapshotTrigger chan struct{}                     // Channel to trigger a snapshot (nil if snapshots disabled)
	Heartbeat       time.Duration                     // SSE keep-alive interval
	API             []func(http.Handler) http.Handler // Middlewares for every /api route, set by the server
}
