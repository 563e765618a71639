package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/MrSnakeDoc/linkbox/internal/sources/listfile"
)

// Storage backends selectable through LINKBOX_STORAGE.
const (
	StorageMemory = "memory"
	StorageBadger = "badger"
	StorageSQLite = "sqlite"
	StorageRedis  = "redis"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Storage
	Storage    string // memory | badger | sqlite | redis
	DataDir    string // root for the badger directory and the sqlite file
	StorageKey string // key the bookmark list lives under
	ImportFile string // JSON or YAML list applied over the stored list at startup (optional)

	// Redis (only when Storage == redis)
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts

	// Snapshots
	SnapshotDir      string        // empty = snapshots disabled
	SnapshotInterval time.Duration // 0 = manual only
	SnapshotKeep     int           // newest files kept after each snapshot

	// Homepage import
	HomepageBookmarks string        // path to Homepage bookmarks.yaml (optional)
	HomepageServices  string        // path to Homepage services.yaml (optional)
	HomepageInterval  time.Duration // 0 = manual only

	// HTTP access
	AllowedHosts   []string // optional, restrict access to specific Host headers
	AllowedCIDRS   []string // optional, restrict write routes to specific IPs (e.g. "1.2.3.4, 10.0.0.0/8")
	TrustProxy     bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
	CORSOrigins    []string // allowed CORS origins, "*" for any
	RateLimitRPS   float64  // sustained requests per second per client IP
	RateLimitBurst int      // bucket size per client IP
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("LINKBOX_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("LINKBOX_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("LINKBOX_LOG_LEVEL", "info"),
		PrettyLog: mustBool("LINKBOX_PRETTY_LOG", true),

		// Storage
		Storage:    strings.ToLower(getenv("LINKBOX_STORAGE", StorageBadger)),
		DataDir:    getenv("LINKBOX_DATA_DIR", "/data"),
		StorageKey: getenv("LINKBOX_STORAGE_KEY", "web_bookmarks"),
		ImportFile: getenv("LINKBOX_IMPORT_FILE", ""),

		// Redis settings
		RedisUser:             getenv("LINKBOX_REDIS_USERNAME", ""),
		RedisPasswordRequired: mustBool("LINKBOX_REDIS_PASSWORD_REQUIRED", false),
		RedisPassword:         getenv("LINKBOX_REDIS_PASSWORD", ""),
		RedisDB:               getenvInt("LINKBOX_REDIS_DB", 0),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Snapshots
		SnapshotDir:      getenv("LINKBOX_SNAPSHOT_DIR", ""),
		SnapshotInterval: mustDuration("LINKBOX_SNAPSHOT_INTERVAL", 24*time.Hour),
		SnapshotKeep:     getenvInt("LINKBOX_SNAPSHOT_KEEP", 7),

		// Homepage
		HomepageBookmarks: getenv("LINKBOX_HOMEPAGE_BOOKMARKS", ""),
		HomepageServices:  getenv("LINKBOX_HOMEPAGE_SERVICES", ""),
		HomepageInterval:  mustDuration("LINKBOX_HOMEPAGE_INTERVAL", 0),

		// Access restrictions
		AllowedHosts:   splitAndTrim(getenv("LINKBOX_ALLOWED_HOSTS", "")),
		AllowedCIDRS:   parseAllowedIPs(getenv("LINKBOX_ALLOWED_CIDRS", "")),
		TrustProxy:     mustBool("LINKBOX_TRUST_PROXY", false),
		CORSOrigins:    splitAndTrim(getenv("LINKBOX_CORS_ORIGINS", "*")),
		RateLimitRPS:   getenvFloat("LINKBOX_RATE_LIMIT_RPS", 10),
		RateLimitBurst: getenvInt("LINKBOX_RATE_LIMIT_BURST", 20),
	}

	switch cfg.Storage {
	case StorageMemory, StorageBadger, StorageSQLite:
	case StorageRedis:
		cfg.RedisAddr = requireEnv("LINKBOX_REDIS_ADDR")
		// Validate Redis password configuration
		if cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
			panic("❌ FATAL: LINKBOX_REDIS_PASSWORD is required when LINKBOX_REDIS_PASSWORD_REQUIRED=true")
		}
	default:
		panic(fmt.Sprintf("❌ FATAL: Unknown LINKBOX_STORAGE %q (want memory, badger, sqlite or redis)", cfg.Storage))
	}

	if cfg.ImportFile != "" {
		if _, err := listfile.FormatFromPath(cfg.ImportFile); err != nil {
			panic(fmt.Sprintf("❌ FATAL: LINKBOX_IMPORT_FILE: %v", err))
		}
	}

	if cfg.SnapshotKeep < 1 {
		panic(fmt.Sprintf("❌ FATAL: LINKBOX_SNAPSHOT_KEEP must be >= 1, got %d", cfg.SnapshotKeep))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.RedisPassword = "***REDACTED***"
		if cfg.RedisUser != "" {
			cfgCopy.RedisUser = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// BadgerDir is where the badger backend keeps its files.
func (c *Config) BadgerDir() string { return filepath.Join(c.DataDir, "badger") }

// SQLitePath is the sqlite backend's database file.
func (c *Config) SQLitePath() string { return filepath.Join(c.DataDir, "linkbox.db") }

// HomepageEnabled reports whether at least one Homepage file is configured.
func (c *Config) HomepageEnabled() bool {
	return c.HomepageBookmarks != "" || c.HomepageServices != ""
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
