// Package bookmarks persists an ordered bookmark list under a single storage key.
//
// Store is the stateless facade: every call reads the key, mutates a local
// copy and writes the whole list back. Live layers an observable in-memory
// cell on top of the same Store for callers that want change notifications.
package bookmarks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MrSnakeDoc/linkbox/internal/domain"
	"github.com/MrSnakeDoc/linkbox/internal/id"
	"github.com/MrSnakeDoc/linkbox/internal/logger"
	"github.com/MrSnakeDoc/linkbox/internal/store"
	"github.com/MrSnakeDoc/linkbox/internal/validation"
)

// DefaultKey is the storage key used when none is configured.
const DefaultKey = "web_bookmarks"

// ErrMalformedList is returned by Load when the stored value is valid JSON
// but not an array. The value is left untouched.
var ErrMalformedList = errors.New("stored bookmarks value is not a JSON array")

// Store is the stateless bookmark facade. It holds no list between calls.
type Store struct {
	storage   store.Storage
	key       string
	logger    logger.Logger
	validator *validation.Validator
	now       func() time.Time
	newID     func(time.Time) (string, error)
}

// Option customises a Store.
type Option func(*Store)

// WithKey sets the storage key.
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// WithLogger sets the logger used for recovered parse failures.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator replaces id.Generate, for tests.
func WithIDGenerator(gen func(time.Time) (string, error)) Option {
	return func(s *Store) { s.newID = gen }
}

// New creates a Store over storage.
func New(storage store.Storage, opts ...Option) *Store {
	s := &Store{
		storage:   storage,
		key:       DefaultKey,
		logger:    logger.Nop(),
		validator: validation.New(),
		now:       time.Now,
		newID:     id.Generate,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the storage key the list lives under.
func (s *Store) Key() string { return s.key }

// Load returns the persisted list.
//
// A missing, empty, null or syntactically invalid value is replaced by the
// seed list, which is persisted before being returned. Syntax failures are
// logged, never returned.
//
// Valid JSON that does not fit the bookmark shape is never overwritten: a
// non-array value fails with ErrMalformedList, and array elements that do not
// decode are dropped from the returned list and logged. Errors from the
// storage backend itself are returned so that an outage does not overwrite
// real data with the seed list.
func (s *Store) Load(ctx context.Context) ([]domain.Bookmark, error) {
	raw, err := s.storage.Get(ctx, s.key)
	if errors.Is(err, store.ErrNotFound) {
		return s.seed(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read bookmarks: %w", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return s.seed(ctx)
	}
	if !json.Valid(raw) {
		s.logger.Warn("failed to parse bookmarks, using default data",
			logger.String("key", s.key))
		return s.seed(ctx)
	}

	var list []domain.Bookmark
	if err := json.Unmarshal(raw, &list); err == nil {
		if list == nil {
			return s.seed(ctx)
		}
		return list, nil
	}
	return s.salvage(raw)
}

// salvage decodes element by element a value that is valid JSON but not a
// valid bookmark list. Nothing is written.
func (s *Store) salvage(raw []byte) ([]domain.Bookmark, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, fmt.Errorf("%w: key %q: %w", ErrMalformedList, s.key, err)
	}

	list := make([]domain.Bookmark, 0, len(elems))
	for i, elem := range elems {
		var b domain.Bookmark
		if err := json.Unmarshal(elem, &b); err != nil {
			s.logger.Warn("skipping undecodable bookmark",
				logger.String("key", s.key),
				logger.Int("index", i),
				logger.Error(err))
			continue
		}
		list = append(list, b)
	}
	return list, nil
}

// Save overwrites the persisted list with list.
func (s *Store) Save(ctx context.Context, list []domain.Bookmark) error {
	if list == nil {
		list = []domain.Bookmark{}
	}
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("failed to marshal bookmarks: %w", err)
	}
	if err := s.storage.Set(ctx, s.key, data); err != nil {
		return fmt.Errorf("failed to save bookmarks: %w", err)
	}
	return nil
}

// Add creates a bookmark from d, puts it first and persists the list.
// The draft fields are stored as given.
func (s *Store) Add(ctx context.Context, d domain.Draft) (domain.Bookmark, error) {
	list, err := s.Load(ctx)
	if err != nil {
		return domain.Bookmark{}, err
	}
	b, err := s.create(d, s.now())
	if err != nil {
		return domain.Bookmark{}, err
	}
	if err := s.Save(ctx, prepend(list, b)); err != nil {
		return domain.Bookmark{}, err
	}
	return b, nil
}

// Edit merges patch into the bookmark with the given id and persists the list.
// It reports false, and writes nothing, when no bookmark has that id.
func (s *Store) Edit(ctx context.Context, id string, patch domain.Patch) (domain.Bookmark, bool, error) {
	list, err := s.Load(ctx)
	if err != nil {
		return domain.Bookmark{}, false, err
	}
	next, updated, ok := edit(list, id, patch)
	if !ok {
		return domain.Bookmark{}, false, nil
	}
	if err := s.Save(ctx, next); err != nil {
		return domain.Bookmark{}, false, err
	}
	return updated, true, nil
}

// Delete removes the bookmark with the given id, persists and returns the list.
// An unknown id leaves the list as it was.
func (s *Store) Delete(ctx context.Context, id string) ([]domain.Bookmark, error) {
	list, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	next := remove(list, id)
	if err := s.Save(ctx, next); err != nil {
		return nil, err
	}
	return next, nil
}

// Reorder moves the bookmark at oldIndex to newIndex, persists and returns the list.
// Indices outside [0, len) fail with domain.ErrIndexOutOfRange and nothing is written.
func (s *Store) Reorder(ctx context.Context, oldIndex, newIndex int) ([]domain.Bookmark, error) {
	list, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	next, err := move(list, oldIndex, newIndex)
	if err != nil {
		return nil, err
	}
	if err := s.Save(ctx, next); err != nil {
		return nil, err
	}
	return next, nil
}

// ReplaceAll normalizes records and persists them in place of the current list.
// A record without title or url rejects the whole batch (domain.ErrInvalidRecord).
func (s *Store) ReplaceAll(ctx context.Context, records []domain.ImportRecord) ([]domain.Bookmark, error) {
	next, err := s.normalize(records)
	if err != nil {
		return nil, err
	}
	if err := s.Save(ctx, next); err != nil {
		return nil, err
	}
	return next, nil
}

// Categories returns the distinct categories in first-seen order.
func (s *Store) Categories(ctx context.Context) ([]string, error) {
	list, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return domain.Categories(list), nil
}

// seed writes the default list and returns it.
func (s *Store) seed(ctx context.Context) ([]domain.Bookmark, error) {
	list, err := s.defaults(s.now())
	if err != nil {
		return nil, err
	}
	if err := s.Save(ctx, list); err != nil {
		return nil, err
	}
	s.logger.Info("seeded default bookmarks",
		logger.String("key", s.key),
		logger.Int("count", len(list)))
	return list, nil
}

// create stamps a new bookmark with a fresh id and createTime.
func (s *Store) create(d domain.Draft, now time.Time) (domain.Bookmark, error) {
	newID, err := s.newID(now)
	if err != nil {
		return domain.Bookmark{}, fmt.Errorf("failed to generate bookmark id: %w", err)
	}
	return domain.Bookmark{
		ID:         newID,
		Title:      d.Title,
		URL:        d.URL,
		Category:   d.Category,
		CreateTime: domain.FormatTime(now),
	}, nil
}

// normalize turns import records into bookmarks:
// id kept or generated, title/url trimmed, category trimmed or defaulted,
// createTime kept or stamped.
func (s *Store) normalize(records []domain.ImportRecord) ([]domain.Bookmark, error) {
	now := s.now()
	out := make([]domain.Bookmark, 0, len(records))

	for i, rec := range records {
		if err := s.validator.ValidateRecord(i, rec); err != nil {
			return nil, err
		}

		bookmarkID := rec.ID
		if bookmarkID == "" {
			generated, err := s.newID(now)
			if err != nil {
				return nil, fmt.Errorf("failed to generate bookmark id: %w", err)
			}
			bookmarkID = generated
		}

		category := domain.DefaultCategory
		if rec.Category != nil {
			if c := strings.TrimSpace(*rec.Category); c != "" {
				category = c
			}
		}

		createTime := rec.CreateTime
		if createTime == "" {
			createTime = domain.FormatTime(now)
		}

		out = append(out, domain.Bookmark{
			ID:         bookmarkID,
			Title:      strings.TrimSpace(*rec.Title),
			URL:        strings.TrimSpace(*rec.URL),
			Category:   category,
			CreateTime: createTime,
		})
	}

	return out, nil
}
