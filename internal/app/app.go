package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MrSnakeDoc/linkbox/internal/bookmarks"
	"github.com/MrSnakeDoc/linkbox/internal/config"
	"github.com/MrSnakeDoc/linkbox/internal/httpserver"
	"github.com/MrSnakeDoc/linkbox/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linkbox/internal/logger"
	"github.com/MrSnakeDoc/linkbox/internal/scheduler"
	"github.com/MrSnakeDoc/linkbox/internal/sources/homepage"
	"github.com/MrSnakeDoc/linkbox/internal/store"
	badgerstore "github.com/MrSnakeDoc/linkbox/internal/store/badger"
	"github.com/MrSnakeDoc/linkbox/internal/store/memory"
	redisstore "github.com/MrSnakeDoc/linkbox/internal/store/redis"
	sqlitestore "github.com/MrSnakeDoc/linkbox/internal/store/sqlite"
	"github.com/MrSnakeDoc/linkbox/internal/validation"
	"github.com/MrSnakeDoc/linkbox/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	backend     store.Backend
	importer    *scheduler.HomepageImporter
	snapshotter *scheduler.Snapshotter
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Open storage early - fail fast if unavailable
	backend, err := openBackend(context.Background(), cfg, loggerClient)
	if err != nil {
		loggerClient.Errorf("Failed to open %s storage: %v", cfg.Storage, err)
		os.Exit(1)
	}
	loggerClient.Info("storage initialized successfully",
		logger.String("backend", backend.Name()),
		logger.String("key", cfg.StorageKey))

	s := bookmarks.New(backend,
		bookmarks.WithKey(cfg.StorageKey),
		bookmarks.WithLogger(loggerClient))

	live, err := bookmarks.NewLive(context.Background(), s)
	if err != nil {
		loggerClient.Errorf("Failed to load bookmarks: %v", err)
		_ = backend.Close()
		os.Exit(1)
	}
	loggerClient.Info("bookmarks loaded", logger.Int("count", live.Len()))

	// Apply the import file (if configured) over the stored list
	if cfg.ImportFile != "" {
		list, err := live.ImportFile(context.Background(), cfg.ImportFile)
		if err != nil {
			loggerClient.Errorf("Failed to import %s: %v", cfg.ImportFile, err)
			_ = backend.Close()
			os.Exit(1)
		}
		loggerClient.Info("bookmarks imported from file",
			logger.String("file", cfg.ImportFile),
			logger.Int("count", len(list)))
	}

	// Homepage importer (if at least one Homepage file is configured)
	var importer *scheduler.HomepageImporter
	var importTrigger chan struct{}
	if cfg.HomepageEnabled() {
		loggerClient.Info("homepage files configured, initializing importer",
			logger.String("bookmarks", cfg.HomepageBookmarks),
			logger.String("services", cfg.HomepageServices))
		importTrigger = make(chan struct{}, 1)
		importer = scheduler.NewHomepageImporter(
			homepage.NewSource(cfg.HomepageBookmarks, cfg.HomepageServices),
			live,
			loggerClient,
			cfg.HomepageInterval,
			importTrigger,
		)
	} else {
		loggerClient.Info("homepage files not configured, import disabled")
	}

	// Snapshotter (if a snapshot directory is configured)
	var snapshotter *scheduler.Snapshotter
	var snapshotTrigger chan struct{}
	if cfg.SnapshotDir != "" {
		snapshotTrigger = make(chan struct{}, 1)
		snapshotter = scheduler.NewSnapshotter(
			live,
			cfg.SnapshotDir,
			cfg.SnapshotKeep,
			loggerClient,
			cfg.SnapshotInterval,
			snapshotTrigger,
		)
	} else {
		loggerClient.Info("snapshot directory not configured, snapshots disabled")
	}

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:          loggerClient,
		StartTime:       time.Now(),
		Version:         version.Version,
		Commit:          version.Commit,
		BuildDate:       version.BuildDate,
		GoVersion:       version.GoVersion,
		TimeNow:         time.Now,
		AllowedHosts:    cfg.AllowedHosts,
		AllowedCIDRS:    cfg.AllowedCIDRS,
		TrustProxy:      cfg.TrustProxy,
		Live:            live,
		Storage:         backend,
		StorageName:     backend.Name(),
		Validator:       validation.New(),
		ImportTrigger:   importTrigger,
		SnapshotTrigger: snapshotTrigger,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		backend:     backend,
		importer:    importer,
		snapshotter: snapshotter,
	}
}

// openBackend returns the storage selected by cfg.Storage.
func openBackend(ctx context.Context, cfg *config.Config, log logger.Logger) (store.Backend, error) {
	switch cfg.Storage {
	case config.StorageMemory:
		log.Warn("using in-memory storage, bookmarks are lost on restart")
		return memory.New(), nil
	case config.StorageBadger:
		log.Infof("Opening badger at %s", cfg.BadgerDir())
		return badgerstore.Open(badgerstore.Options{Dir: cfg.BadgerDir()})
	case config.StorageSQLite:
		log.Infof("Opening sqlite at %s", cfg.SQLitePath())
		return sqlitestore.Open(cfg.SQLitePath())
	case config.StorageRedis:
		log.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		return redisstore.Connect(ctx, redisstore.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			RedisDB:        cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		}, log)
	default:
		return nil, fmt.Errorf("unknown storage %q", cfg.Storage)
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting linkbox v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("linkbox %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start homepage importer (if enabled)
	if a.importer != nil {
		if err := a.importer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start homepage importer: %w", err)
		}
		a.logger.Info("homepage importer started",
			logger.Duration("interval", a.cfg.HomepageInterval))
	}

	// Start snapshotter (if enabled)
	if a.snapshotter != nil {
		if err := a.snapshotter.Start(ctx); err != nil {
			return fmt.Errorf("failed to start snapshotter: %w", err)
		}
		a.logger.Info("snapshotter started",
			logger.String("dir", a.cfg.SnapshotDir),
			logger.Duration("interval", a.cfg.SnapshotInterval),
			logger.Int("keep", a.cfg.SnapshotKeep))
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	if a.importer != nil {
		a.importer.Stop()
	}
	if a.snapshotter != nil {
		a.snapshotter.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if err := a.backend.Close(); err != nil {
		a.logger.Warnf("failed to close %s storage: %v", a.backend.Name(), err)
	} else {
		a.logger.Infof("✅ %s storage closed cleanly", a.backend.Name())
	}

	a.logger.Info("✅ linkbox stopped cleanly")
	return nil
}
