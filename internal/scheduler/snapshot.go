package scheduler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/MrSnakeDoc/linkbox/internal/domain"
	"github.com/MrSnakeDoc/linkbox/internal/logger"
	"github.com/MrSnakeDoc/linkbox/internal/sources/listfile"
)

const (
	// DefaultSnapshotKeep is how many snapshot files survive pruning when none is configured
	DefaultSnapshotKeep = 7

	snapshotPrefix = "bookmarks-"
	snapshotSuffix = ".json"

	// snapshotStamp sorts lexically in time order
	snapshotStamp = "20060102T150405.000Z"
)

// Lister is the part of bookmarks.Live the snapshotter reads.
type Lister interface {
	Bookmarks() []domain.Bookmark
}

// Snapshotter periodically writes the bookmark list to a JSON file and prunes old ones
type Snapshotter struct {
	live          Lister
	dir           string
	keep          int
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	wg            sync.WaitGroup
	manualTrigger chan struct{}
	now           func() time.Time
}

// NewSnapshotter creates a new snapshotter writing into dir.
// An interval of 0 means snapshots only run on manual trigger.
func NewSnapshotter(
	live Lister,
	dir string,
	keep int,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *Snapshotter {
	if keep <= 0 {
		keep = DefaultSnapshotKeep
	}

	return &Snapshotter{
		live:          live,
		dir:           dir,
		keep:          keep,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
		now:           time.Now,
	}
}

// Start takes a first snapshot and begins the periodic process
func (s *Snapshotter) Start(ctx context.Context) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot dir: %w", err)
	}

	// Run immediately on start
	s.run()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		var tick <-chan time.Time
		if s.interval > 0 {
			ticker := time.NewTicker(s.interval)
			defer ticker.Stop()
			tick = ticker.C
		}

		for {
			select {
			case <-tick:
				s.run()
			case <-s.manualTrigger:
				s.logger.Info("manual snapshot triggered")
				s.run()
			case <-s.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the snapshotter, waiting for a run in progress to finish
func (s *Snapshotter) Stop() {
	close(s.stopCh)
	s.wg.Wait()
}

func (s *Snapshotter) run() {
	if _, err := s.Snapshot(); err != nil {
		s.logger.Error("snapshot failed",
			logger.Error(err))
	}
}

// Snapshot writes the current list and prunes files beyond the keep count.
// It returns the path written.
func (s *Snapshotter) Snapshot() (string, error) {
	list := s.live.Bookmarks()
	name := snapshotPrefix + s.now().UTC().Format(snapshotStamp) + snapshotSuffix
	path := filepath.Join(s.dir, name)

	if err := listfile.Write(path, list); err != nil {
		return "", fmt.Errorf("failed to write snapshot: %w", err)
	}

	s.logger.Info("snapshot written",
		logger.String("path", path),
		logger.Int("count", len(list)))

	deleted, err := s.Prune()
	if err != nil {
		s.logger.Warn("failed to prune snapshots",
			logger.Error(err))
	} else if deleted > 0 {
		s.logger.Debug("pruned old snapshots",
			logger.Int("deleted", deleted))
	}

	return path, nil
}

// Prune removes all but the newest keep snapshot files and reports how many it deleted.
func (s *Snapshotter) Prune() (int, error) {
	files, err := s.Snapshots()
	if err != nil {
		return 0, err
	}
	if len(files) <= s.keep {
		return 0, nil
	}

	deletedCount := 0
	for _, path := range files[:len(files)-s.keep] {
		if err := os.Remove(path); err != nil {
			s.logger.Warn("failed to delete snapshot",
				logger.String("path", path),
				logger.Error(err))
			continue
		}
		deletedCount++
	}

	return deletedCount, nil
}

// Snapshots lists snapshot files, oldest first.
func (s *Snapshotter) Snapshots() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, snapshotPrefix) || !strings.HasSuffix(name, snapshotSuffix) {
			continue
		}
		files = append(files, filepath.Join(s.dir, name))
	}
	sort.Strings(files)

	return files, nil
}
