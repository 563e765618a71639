package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/linkbox/internal/domain"
	"github.com/MrSnakeDoc/linkbox/internal/logger"
)

// RecordSource yields the records an import replaces the list with.
type RecordSource interface {
	Records() ([]domain.ImportRecord, error)
}

// Replacer is the part of bookmarks.Live the importer writes through.
type Replacer interface {
	Bookmarks() []domain.Bookmark
	ReplaceAll(ctx context.Context, records []domain.ImportRecord) ([]domain.Bookmark, error)
}

// HomepageImporter replaces the bookmark list with the content of the Homepage files
type HomepageImporter struct {
	source        RecordSource
	live          Replacer
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	wg            sync.WaitGroup
	manualTrigger chan struct{}
}

// NewHomepageImporter creates a new homepage importer.
// An interval of 0 means imports only run on manual trigger.
func NewHomepageImporter(
	source RecordSource,
	live Replacer,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *HomepageImporter {
	return &HomepageImporter{
		source:        source,
		live:          live,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start begins waiting for triggers and ticks
func (hi *HomepageImporter) Start(ctx context.Context) error {
	hi.wg.Add(1)
	go func() {
		defer hi.wg.Done()

		var tick <-chan time.Time
		if hi.interval > 0 {
			ticker := time.NewTicker(hi.interval)
			defer ticker.Stop()
			tick = ticker.C
		}

		for {
			select {
			case <-tick:
				hi.run(ctx)
			case <-hi.manualTrigger:
				hi.logger.Info("manual homepage import triggered")
				hi.run(ctx)
			case <-hi.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the importer, waiting for a run in progress to finish
func (hi *HomepageImporter) Stop() {
	close(hi.stopCh)
	hi.wg.Wait()
}

func (hi *HomepageImporter) run(ctx context.Context) {
	if _, err := hi.Import(ctx); err != nil {
		hi.logger.Error("failed to import homepage bookmarks",
			logger.Error(err))
	}
}

// Import loads the Homepage files and swaps them in for the whole list.
// Records matching an existing bookmark id keep that bookmark's createTime.
func (hi *HomepageImporter) Import(ctx context.Context) (int, error) {
	hi.logger.Info("importing bookmarks from homepage")

	records, err := hi.source.Records()
	if err != nil {
		return 0, fmt.Errorf("failed to load homepage files: %w", err)
	}

	created := make(map[string]string)
	for _, b := range hi.live.Bookmarks() {
		created[b.ID] = b.CreateTime
	}
	for i := range records {
		if records[i].CreateTime != "" {
			continue
		}
		if ct, ok := created[records[i].ID]; ok {
			records[i].CreateTime = ct
		}
	}

	list, err := hi.live.ReplaceAll(ctx, records)
	if err != nil {
		return 0, fmt.Errorf("failed to replace bookmarks: %w", err)
	}

	hi.logger.Info("imported bookmarks from homepage",
		logger.Int("count", len(list)))

	return len(list), nil
}
