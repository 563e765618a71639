package bookmarks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/linkbox/internal/domain"
	"github.com/MrSnakeDoc/linkbox/internal/store"
	"github.com/MrSnakeDoc/linkbox/internal/store/memory"
)

var testNow = time.Date(2025, 3, 14, 9, 26, 53, 589_000_000, time.UTC)

func sequentialIDs() func(time.Time) (string, error) {
	n := 0
	return func(time.Time) (string, error) {
		n++
		return fmt.Sprintf("id-%d", n), nil
	}
}

func newTestStore(t *testing.T, opts ...Option) (*Store, *memory.Store) {
	t.Helper()
	mem := memory.New()
	base := []Option{
		WithClock(func() time.Time { return testNow }),
		WithIDGenerator(sequentialIDs()),
	}
	return New(mem, append(base, opts...)...), mem
}

// seedList writes list directly to storage, bypassing the store.
func seedList(t *testing.T, mem *memory.Store, list []domain.Bookmark) {
	t.Helper()
	data, err := json.Marshal(list)
	require.NoError(t, err)
	require.NoError(t, mem.Set(context.Background(), DefaultKey, data))
}

func abc() []domain.Bookmark {
	return []domain.Bookmark{
		{ID: "a", Title: "A", URL: "https://a.example", Category: "X", CreateTime: "2024-01-01T00:00:00.000Z"},
		{ID: "b", Title: "B", URL: "https://b.example", Category: "Y", CreateTime: "2024-01-02T00:00:00.000Z"},
		{ID: "c", Title: "C", URL: "https://c.example", Category: "X", CreateTime: "2024-01-03T00:00:00.000Z"},
	}
}

func ids(list []domain.Bookmark) []string {
	out := make([]string, len(list))
	for i, b := range list {
		out[i] = b.ID
	}
	return out
}

func TestLoad_SeedsDefaultsOnFirstAccess(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestStore(t)

	first, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, 1, mem.Writes(), "seed list should be persisted")

	for _, b := range first {
		assert.NotEmpty(t, b.ID)
		assert.NotEmpty(t, b.Title)
		assert.NotEmpty(t, b.URL)
		assert.Equal(t, domain.FormatTime(testNow), b.CreateTime)
	}

	second, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, mem.Writes(), "second load must not reseed")
}

func TestLoad_RecoversFromCorruptValue(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "invalid json", raw: `{not json`},
		{name: "empty value", raw: ``},
		{name: "whitespace", raw: "  \n"},
		{name: "json null", raw: `null`},
		{name: "truncated array", raw: `[{"id":"a","title":"A"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			s, mem := newTestStore(t)
			require.NoError(t, mem.Set(ctx, DefaultKey, []byte(tt.raw)))

			list, err := s.Load(ctx)
			require.NoError(t, err)
			assert.Len(t, list, 2)

			raw, err := mem.Get(ctx, DefaultKey)
			require.NoError(t, err)
			var persisted []domain.Bookmark
			require.NoError(t, json.Unmarshal(raw, &persisted))
			assert.Equal(t, list, persisted)
		})
	}
}

func TestLoad_KeepsDecodableRecordsOnTypeMismatch(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestStore(t)
	raw := `[{"id":"a","title":"Mine","url":"u1","category":"X","createTime":"2024-01-01T00:00:00.000Z"},{"id":2,"title":"Other","url":"u2"}]`
	require.NoError(t, mem.Set(ctx, DefaultKey, []byte(raw)))
	writes := mem.Writes()

	list, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "a", list[0].ID)
	assert.Equal(t, "Mine", list[0].Title)

	stored, err := mem.Get(ctx, DefaultKey)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(stored), "stored value must not be replaced")
	assert.Equal(t, writes, mem.Writes())
}

func TestLoad_RejectsNonArrayWithoutWriting(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestStore(t)
	require.NoError(t, mem.Set(ctx, DefaultKey, []byte(`{"id":"x"}`)))
	writes := mem.Writes()

	_, err := s.Load(ctx)
	assert.ErrorIs(t, err, ErrMalformedList)
	assert.Equal(t, writes, mem.Writes())

	stored, err := mem.Get(ctx, DefaultKey)
	require.NoError(t, err)
	assert.Equal(t, `{"id":"x"}`, string(stored))
}

func TestLoad_EmptyArrayIsNotReseeded(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestStore(t)
	require.NoError(t, mem.Set(ctx, DefaultKey, []byte(`[]`)))

	list, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

type failingStorage struct{ err error }

func (f failingStorage) Get(context.Context, string) ([]byte, error) { return nil, f.err }
func (f failingStorage) Set(context.Context, string, []byte) error  { return f.err }

func TestLoad_PropagatesStorageErrors(t *testing.T) {
	boom := errors.New("connection refused")
	s := New(failingStorage{err: boom})

	_, err := s.Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, store.ErrNotFound)
}

func TestSaveLoad_RoundTripIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestStore(t)
	seedList(t, mem, abc())

	before, err := mem.Get(ctx, DefaultKey)
	require.NoError(t, err)

	list, err := s.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, list))

	after, err := mem.Get(ctx, DefaultKey)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))

	again, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, list, again)
}

func TestSave_NilListIsEmptyArray(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestStore(t)

	require.NoError(t, s.Save(ctx, nil))
	raw, err := mem.Get(ctx, DefaultKey)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(raw))
}

func TestAdd_PrependsWithFreshIdentity(t *testing.T) {
	ctx := context.Background()
	s := New(memory.New())

	_, err := s.Load(ctx)
	require.NoError(t, err)

	added, err := s.Add(ctx, domain.Draft{Title: "Effective Go", URL: "https://go.dev/doc/effective_go", Category: "Docs"})
	require.NoError(t, err)

	list, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, added, list[0])
	assert.NotEmpty(t, list[0].ID)
	_, err = domain.ParseTime(list[0].CreateTime)
	assert.NoError(t, err, "createTime should parse as a timestamp")
	assert.Equal(t, "Effective Go", list[0].Title)
}

func TestAdd_PassesFieldsThroughAsGiven(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestStore(t)
	seedList(t, mem, abc())

	added, err := s.Add(ctx, domain.Draft{Title: "  spaced  ", URL: " u "})
	require.NoError(t, err)

	assert.Equal(t, "  spaced  ", added.Title)
	assert.Equal(t, " u ", added.URL)
	assert.Equal(t, "", added.Category)
	assert.Equal(t, "id-1", added.ID)
}

func TestEdit_ChangesOnlyPatchedFields(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestStore(t)
	seedList(t, mem, abc())

	title := "X"
	otherTime := "1999-12-31T23:59:59.000Z"
	updated, found, err := s.Edit(ctx, "b", domain.Patch{Title: &title, CreateTime: &otherTime})
	require.NoError(t, err)
	require.True(t, found)

	want := abc()[1]
	want.Title = "X"
	assert.Equal(t, want, updated)

	list, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, list[1])
	assert.Equal(t, abc()[0], list[0])
	assert.Equal(t, abc()[2], list[2])
}

func TestEdit_UnknownIDIsNoop(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestStore(t)
	seedList(t, mem, abc())
	writes := mem.Writes()

	title := "X"
	_, found, err := s.Edit(ctx, "missing", domain.Patch{Title: &title})
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, writes, mem.Writes(), "nothing should be written")
}

func TestDelete_RemovesExactlyOne(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestStore(t)
	seedList(t, mem, abc())

	list, err := s.Delete(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, []domain.Bookmark{abc()[0], abc()[2]}, list)

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, list, loaded)
}

func TestDelete_UnknownIDKeepsList(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestStore(t)
	seedList(t, mem, abc())

	list, err := s.Delete(ctx, "missing")
	require.NoError(t, err)
	assert.Equal(t, abc(), list)
}

func TestReorder(t *testing.T) {
	tests := []struct {
		name     string
		oldIndex int
		newIndex int
		want     []string
		wantErr  bool
	}{
		{name: "first to last", oldIndex: 0, newIndex: 2, want: []string{"b", "c", "a"}},
		{name: "last to first", oldIndex: 2, newIndex: 0, want: []string{"c", "a", "b"}},
		{name: "adjacent", oldIndex: 0, newIndex: 1, want: []string{"b", "a", "c"}},
		{name: "same index", oldIndex: 1, newIndex: 1, want: []string{"a", "b", "c"}},
		{name: "negative old", oldIndex: -1, newIndex: 0, wantErr: true},
		{name: "old past end", oldIndex: 3, newIndex: 0, wantErr: true},
		{name: "negative new", oldIndex: 0, newIndex: -1, wantErr: true},
		{name: "new past end", oldIndex: 0, newIndex: 3, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			s, mem := newTestStore(t)
			seedList(t, mem, abc())
			writes := mem.Writes()

			list, err := s.Reorder(ctx, tt.oldIndex, tt.newIndex)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, domain.ErrIndexOutOfRange)
				assert.Equal(t, writes, mem.Writes(), "nothing should be written")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(list))

			loaded, err := s.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(loaded))
		})
	}
}

func TestReplaceAll_Normalizes(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestStore(t)
	seedList(t, mem, abc())

	title, url := " T ", " U "
	list, err := s.ReplaceAll(ctx, []domain.ImportRecord{{Title: &title, URL: &url}})
	require.NoError(t, err)
	require.Len(t, list, 1)

	got := list[0]
	assert.Equal(t, "T", got.Title)
	assert.Equal(t, "U", got.URL)
	assert.Equal(t, domain.DefaultCategory, got.Category)
	assert.Equal(t, "id-1", got.ID)
	assert.Equal(t, domain.FormatTime(testNow), got.CreateTime)

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, list, loaded)
}

func TestReplaceAll_KeepsSuppliedIdentity(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	title, url, blank, cat := "T", "U", "   ", " Reading "
	list, err := s.ReplaceAll(ctx, []domain.ImportRecord{
		{ID: "keep", Title: &title, URL: &url, Category: &cat, CreateTime: "2020-05-05T05:05:05.000Z"},
		{Title: &title, URL: &url, Category: &blank},
	})
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, "keep", list[0].ID)
	assert.Equal(t, "Reading", list[0].Category)
	assert.Equal(t, "2020-05-05T05:05:05.000Z", list[0].CreateTime)
	assert.Equal(t, domain.DefaultCategory, list[1].Category)
}

func TestReplaceAll_RejectsBatchWithMissingFields(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestStore(t)
	seedList(t, mem, abc())
	writes := mem.Writes()

	title := "T"
	_, err := s.ReplaceAll(ctx, []domain.ImportRecord{
		{Title: &title, URL: &title},
		{Title: &title},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidRecord)
	assert.Contains(t, err.Error(), "record 1")
	assert.Equal(t, writes, mem.Writes(), "stored list must be untouched")

	list, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, abc(), list)
}

func TestReplaceAll_EmptyBatchClearsList(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestStore(t)
	seedList(t, mem, abc())

	list, err := s.ReplaceAll(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, list)

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestCategories_DedupedInFirstSeenOrder(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestStore(t)
	seedList(t, mem, []domain.Bookmark{
		{ID: "1", Category: "X"},
		{ID: "2", Category: "Y"},
		{ID: "3", Category: "X"},
		{ID: "4", Category: ""},
	})

	got, err := s.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"X", "Y", domain.DefaultCategory}, got)
}

func TestWithKey(t *testing.T) {
	ctx := context.Background()
	mem := memory.New()
	s := New(mem, WithKey("other"))

	_, err := s.Load(ctx)
	require.NoError(t, err)

	_, err = mem.Get(ctx, "other")
	assert.NoError(t, err)
	_, err = mem.Get(ctx, DefaultKey)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Equal(t, "other", s.Key())
}
