package bookmarks

import (
	"context"
	"sync"

	"github.com/MrSnakeDoc/linkbox/internal/domain"
	"github.com/MrSnakeDoc/linkbox/internal/sources/listfile"
)

// Listener receives a copy of the list after every successful mutation.
type Listener func(list []domain.Bookmark)

// Live is the reactive facade: the list is read once from the Store and then
// kept in memory. Each mutation persists through the Store, replaces the cell
// and notifies listeners.
//
// Mutations are serialized. Listeners run synchronously, in mutation order,
// while the mutation lock is held, so they must not call back into Live.
type Live struct {
	store *Store

	mu        sync.RWMutex
	list      []domain.Bookmark
	listeners map[uint64]Listener
	nextID    uint64
}

// NewLive loads the list once and returns the live view over it.
func NewLive(ctx context.Context, s *Store) (*Live, error) {
	list, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return &Live{
		store:     s,
		list:      list,
		listeners: make(map[uint64]Listener),
	}, nil
}

// Store returns the stateless facade Live persists through.
func (l *Live) Store() *Store { return l.store }

// Bookmarks returns a snapshot of the current list.
func (l *Live) Bookmarks() []domain.Bookmark {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return clone(l.list)
}

// Len returns the number of bookmarks in the cell.
func (l *Live) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.list)
}

// Subscribe registers fn and returns a func that unregisters it.
func (l *Live) Subscribe(fn Listener) (cancel func()) {
	l.mu.Lock()
	defer l.mu.Unlock()

	subID := l.nextID
	l.nextID++
	l.listeners[subID] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			delete(l.listeners, subID)
		})
	}
}

// Add creates a bookmark from d and puts it first.
func (l *Live) Add(ctx context.Context, d domain.Draft) (domain.Bookmark, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, err := l.store.create(d, l.store.now())
	if err != nil {
		return domain.Bookmark{}, err
	}
	if err := l.commit(ctx, prepend(l.list, b)); err != nil {
		return domain.Bookmark{}, err
	}
	return b, nil
}

// Edit merges patch into the bookmark with the given id.
// It reports false, and neither writes nor notifies, when id is unknown.
func (l *Live) Edit(ctx context.Context, id string, patch domain.Patch) (domain.Bookmark, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	next, updated, ok := edit(l.list, id, patch)
	if !ok {
		return domain.Bookmark{}, false, nil
	}
	if err := l.commit(ctx, next); err != nil {
		return domain.Bookmark{}, false, err
	}
	return updated, true, nil
}

// Delete removes the bookmark with the given id and returns the new list.
func (l *Live) Delete(ctx context.Context, id string) ([]domain.Bookmark, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	next := remove(l.list, id)
	if err := l.commit(ctx, next); err != nil {
		return nil, err
	}
	return clone(next), nil
}

// Reorder moves the bookmark at oldIndex to newIndex and returns the new list.
func (l *Live) Reorder(ctx context.Context, oldIndex, newIndex int) ([]domain.Bookmark, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	next, err := move(l.list, oldIndex, newIndex)
	if err != nil {
		return nil, err
	}
	if err := l.commit(ctx, next); err != nil {
		return nil, err
	}
	return clone(next), nil
}

// ReplaceAll normalizes records and swaps them in for the whole list.
func (l *Live) ReplaceAll(ctx context.Context, records []domain.ImportRecord) ([]domain.Bookmark, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	next, err := l.store.normalize(records)
	if err != nil {
		return nil, err
	}
	if err := l.commit(ctx, next); err != nil {
		return nil, err
	}
	return clone(next), nil
}

// ImportFile replaces the list with the records of a JSON or YAML list file.
// Records matching an existing id keep that bookmark's createTime.
func (l *Live) ImportFile(ctx context.Context, path string) ([]domain.Bookmark, error) {
	records, err := listfile.Load(path)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	created := make(map[string]string, len(l.list))
	for _, b := range l.list {
		created[b.ID] = b.CreateTime
	}
	for i := range records {
		if records[i].CreateTime == "" {
			records[i].CreateTime = created[records[i].ID]
		}
	}

	next, err := l.store.normalize(records)
	if err != nil {
		return nil, err
	}
	if err := l.commit(ctx, next); err != nil {
		return nil, err
	}
	return clone(next), nil
}

// Categories returns the distinct categories of the cell in first-seen order.
func (l *Live) Categories() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return domain.Categories(l.list)
}

// Search ranks the cell's bookmarks against query.
func (l *Live) Search(query string) []domain.SearchResult {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return domain.Search(query, l.list)
}

// commit persists next, swaps it into the cell and notifies listeners.
// Callers hold l.mu for writing.
func (l *Live) commit(ctx context.Context, next []domain.Bookmark) error {
	if err := l.store.Save(ctx, next); err != nil {
		return err
	}
	l.list = next
	for _, fn := range l.listeners {
		fn(clone(next))
	}
	return nil
}
