package bookmarks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/linkbox/internal/domain"
	"github.com/MrSnakeDoc/linkbox/internal/store/memory"
)

func newTestLive(t *testing.T) (*Live, *memory.Store) {
	t.Helper()
	s, mem := newTestStore(t)
	seedList(t, mem, abc())

	live, err := NewLive(context.Background(), s)
	require.NoError(t, err)
	return live, mem
}

// recorder collects every list a listener receives.
type recorder struct {
	calls [][]domain.Bookmark
}

func (r *recorder) listen(list []domain.Bookmark) {
	r.calls = append(r.calls, list)
}

func TestNewLive_LoadsOnce(t *testing.T) {
	live, _ := newTestLive(t)

	assert.Equal(t, abc(), live.Bookmarks())
	assert.Equal(t, 3, live.Len())
	assert.Equal(t, []string{"X", "Y"}, live.Categories())
}

func TestNewLive_SeedsEmptyStorage(t *testing.T) {
	s, mem := newTestStore(t)

	live, err := NewLive(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, 2, live.Len())
	assert.Equal(t, 1, mem.Writes())
}

func TestNewLive_PropagatesStorageErrors(t *testing.T) {
	boom := errors.New("disk on fire")

	_, err := NewLive(context.Background(), New(failingStorage{err: boom}))
	assert.ErrorIs(t, err, boom)
}

func TestLive_BookmarksIsSnapshot(t *testing.T) {
	live, _ := newTestLive(t)

	snapshot := live.Bookmarks()
	snapshot[0].Title = "mutated"

	assert.Equal(t, "A", live.Bookmarks()[0].Title)
}

func TestLive_AddNotifiesAndPersists(t *testing.T) {
	ctx := context.Background()
	live, _ := newTestLive(t)
	rec := &recorder{}
	live.Subscribe(rec.listen)

	added, err := live.Add(ctx, domain.Draft{Title: "New", URL: "https://new.example"})
	require.NoError(t, err)
	assert.Equal(t, "id-1", added.ID)

	require.Len(t, rec.calls, 1)
	assert.Equal(t, []string{"id-1", "a", "b", "c"}, ids(rec.calls[0]))
	assert.Equal(t, rec.calls[0], live.Bookmarks())

	persisted, err := live.Store().Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, live.Bookmarks(), persisted)
}

func TestLive_EditKeepsCreateTime(t *testing.T) {
	ctx := context.Background()
	live, _ := newTestLive(t)

	url := "https://changed.example"
	created := "2000-01-01T00:00:00.000Z"
	updated, found, err := live.Edit(ctx, "c", domain.Patch{URL: &url, CreateTime: &created})
	require.NoError(t, err)
	require.True(t, found)

	assert.Equal(t, url, updated.URL)
	assert.Equal(t, abc()[2].CreateTime, updated.CreateTime)
	assert.Equal(t, updated, live.Bookmarks()[2])
}

func TestLive_EditMissDoesNotNotify(t *testing.T) {
	ctx := context.Background()
	live, mem := newTestLive(t)
	rec := &recorder{}
	live.Subscribe(rec.listen)
	writes := mem.Writes()

	title := "X"
	_, found, err := live.Edit(ctx, "missing", domain.Patch{Title: &title})
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, rec.calls)
	assert.Equal(t, writes, mem.Writes())
}

func TestLive_DeleteAndReorder(t *testing.T) {
	ctx := context.Background()
	live, _ := newTestLive(t)
	rec := &recorder{}
	live.Subscribe(rec.listen)

	list, err := live.Reorder(ctx, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c", "a"}, ids(list))

	list, err = live.Delete(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, ids(list))

	require.Len(t, rec.calls, 2)
	assert.Equal(t, []string{"b", "c", "a"}, ids(rec.calls[0]))
	assert.Equal(t, []string{"b", "a"}, ids(rec.calls[1]))
}

func TestLive_ReorderOutOfRangeKeepsCell(t *testing.T) {
	ctx := context.Background()
	live, mem := newTestLive(t)
	rec := &recorder{}
	live.Subscribe(rec.listen)
	writes := mem.Writes()

	_, err := live.Reorder(ctx, 0, 5)
	assert.ErrorIs(t, err, domain.ErrIndexOutOfRange)
	assert.Empty(t, rec.calls)
	assert.Equal(t, writes, mem.Writes())
	assert.Equal(t, abc(), live.Bookmarks())
}

func TestLive_ReplaceAll(t *testing.T) {
	ctx := context.Background()
	live, _ := newTestLive(t)

	title, url := " T ", " U "
	list, err := live.ReplaceAll(ctx, []domain.ImportRecord{{Title: &title, URL: &url}})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "T", list[0].Title)
	assert.Equal(t, []string{domain.DefaultCategory}, live.Categories())

	_, err = live.ReplaceAll(ctx, []domain.ImportRecord{{URL: &url}})
	assert.ErrorIs(t, err, domain.ErrInvalidRecord)
	assert.Equal(t, list, live.Bookmarks())
}

func TestLive_ImportFile(t *testing.T) {
	ctx := context.Background()
	live, mem := newTestLive(t)
	rec := &recorder{}
	live.Subscribe(rec.listen)

	path := filepath.Join(t.TempDir(), "bookmarks.yaml")
	yaml := "- id: b\n  title: B2\n  url: https://b2.example\n- title: New\n  url: https://new.example\n  category: Tools\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	list, err := live.ImportFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "id-1"}, ids(list))
	assert.Equal(t, abc()[1].CreateTime, list[0].CreateTime)
	assert.Equal(t, domain.FormatTime(testNow), list[1].CreateTime)
	assert.Equal(t, list, live.Bookmarks())
	require.Len(t, rec.calls, 1)

	persisted, err := New(mem).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, list, persisted)
}

func TestLive_ImportFileErrorsKeepCell(t *testing.T) {
	ctx := context.Background()
	live, mem := newTestLive(t)
	writes := mem.Writes()
	dir := t.TempDir()

	_, err := live.ImportFile(ctx, filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	invalid := filepath.Join(dir, "invalid.json")
	require.NoError(t, os.WriteFile(invalid, []byte(`[{"title":"no url"}]`), 0o600))
	_, err = live.ImportFile(ctx, invalid)
	assert.ErrorIs(t, err, domain.ErrInvalidRecord)

	assert.Equal(t, abc(), live.Bookmarks())
	assert.Equal(t, writes, mem.Writes())
}

func TestLive_Unsubscribe(t *testing.T) {
	ctx := context.Background()
	live, _ := newTestLive(t)
	first, second := &recorder{}, &recorder{}
	cancel := live.Subscribe(first.listen)
	live.Subscribe(second.listen)

	_, err := live.Delete(ctx, "a")
	require.NoError(t, err)

	cancel()
	cancel()

	_, err = live.Delete(ctx, "b")
	require.NoError(t, err)

	assert.Len(t, first.calls, 1)
	assert.Len(t, second.calls, 2)
}

func TestLive_SaveFailureKeepsCell(t *testing.T) {
	ctx := context.Background()
	mem := memory.New()
	s := New(mem)
	live, err := NewLive(ctx, s)
	require.NoError(t, err)
	before := live.Bookmarks()

	live.store = New(failingStorage{err: errors.New("read-only")})
	rec := &recorder{}
	live.Subscribe(rec.listen)

	_, err = live.Delete(ctx, before[0].ID)
	require.Error(t, err)
	assert.Equal(t, before, live.Bookmarks())
	assert.Empty(t, rec.calls)
}

func TestLive_Search(t *testing.T) {
	live, _ := newTestLive(t)

	results := live.Search("b")
	require.NotEmpty(t, results)
	assert.Equal(t, "b", results[0].Bookmark.ID)
}
