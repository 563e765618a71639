package scheduler

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/linkbox/internal/domain"
	"github.com/MrSnakeDoc/linkbox/internal/logger"
	"github.com/MrSnakeDoc/linkbox/internal/sources/listfile"
)

type staticList []domain.Bookmark

func (l staticList) Bookmarks() []domain.Bookmark { return l }

func testList() staticList {
	return staticList{
		{ID: "a", Title: "A", URL: "https://a.example", Category: "X", CreateTime: "2024-01-01T00:00:00.000Z"},
	}
}

func TestSnapshotter_SnapshotWritesList(t *testing.T) {
	dir := t.TempDir()
	s := NewSnapshotter(testList(), dir, 3, logger.Nop(), 0, nil)
	s.now = func() time.Time { return time.Date(2025, 3, 14, 9, 26, 53, 589_000_000, time.UTC) }

	path, err := s.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "bookmarks-20250314T092653.589Z.json"), path)

	records, err := listfile.Load(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "a", records[0].ID)
}

func TestSnapshotter_PruneKeepsNewest(t *testing.T) {
	dir := t.TempDir()
	s := NewSnapshotter(testList(), dir, 2, logger.Nop(), 0, nil)

	// Files that are not snapshots are left alone
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("keep"), 0o644))

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	var written []string
	for i := range 4 {
		at := base.Add(time.Duration(i) * time.Hour)
		s.now = func() time.Time { return at }
		path, err := s.Snapshot()
		require.NoError(t, err)
		written = append(written, path)
	}

	files, err := s.Snapshots()
	require.NoError(t, err)
	assert.Equal(t, written[2:], files)

	_, err = os.Stat(filepath.Join(dir, "notes.txt"))
	assert.NoError(t, err)
}

func TestSnapshotter_DefaultKeep(t *testing.T) {
	s := NewSnapshotter(testList(), t.TempDir(), 0, logger.Nop(), 0, nil)
	assert.Equal(t, DefaultSnapshotKeep, s.keep)
}

func TestSnapshotter_ManualTrigger(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "snapshots")
	trigger := make(chan struct{}, 1)
	s := NewSnapshotter(testList(), dir, 10, logger.Nop(), 0, trigger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := 0
	s.now = func() time.Time {
		calls++
		return time.Date(2025, 1, 1, 0, 0, calls, 0, time.UTC)
	}

	require.NoError(t, s.Start(ctx))
	defer s.Stop()

	files, err := s.Snapshots()
	require.NoError(t, err)
	assert.Len(t, files, 1, "start should take a first snapshot")

	trigger <- struct{}{}

	assert.Eventually(t, func() bool {
		files, err := s.Snapshots()
		return err == nil && len(files) == 2
	}, 2*time.Second, 10*time.Millisecond)
}

// gatedList blocks Bookmarks once armed, until release is closed.
type gatedList struct {
	armed   atomic.Bool
	started chan struct{}
	release chan struct{}
}

func (g *gatedList) Bookmarks() []domain.Bookmark {
	if g.armed.Load() {
		close(g.started)
		<-g.release
	}
	return testList()
}

func TestSnapshotter_StopWaitsForRunningSnapshot(t *testing.T) {
	list := &gatedList{started: make(chan struct{}), release: make(chan struct{})}
	trigger := make(chan struct{}, 1)
	s := NewSnapshotter(list, t.TempDir(), 10, logger.Nop(), 0, trigger)

	require.NoError(t, s.Start(context.Background()))
	list.armed.Store(true)
	trigger <- struct{}{}

	select {
	case <-list.started:
	case <-time.After(2 * time.Second):
		t.Fatal("snapshot did not start")
	}

	stopped := make(chan struct{})
	go func() {
		s.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned while a snapshot was still running")
	case <-time.After(50 * time.Millisecond):
	}

	close(list.release)
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return after the snapshot finished")
	}
}
