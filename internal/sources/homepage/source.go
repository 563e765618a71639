package homepage

import (
	"errors"
	"fmt"

	"github.com/MrSnakeDoc/linkbox/internal/domain"
)

// ErrNoFiles is returned by Records when neither file is configured.
var ErrNoFiles = errors.New("no homepage file configured")

// ErrNoRecords is returned by Records when the configured files hold no usable entry.
var ErrNoRecords = errors.New("no valid bookmarks or services found in homepage files")

// Source combines a bookmarks.yaml and a services.yaml. Either path may be empty.
type Source struct {
	bookmarks *Loader
	services  *Loader
	mapper    *Mapper
}

// NewSource creates a source over the given files.
func NewSource(bookmarksPath, servicesPath string) *Source {
	s := &Source{mapper: NewMapper()}
	if bookmarksPath != "" {
		s.bookmarks = NewLoader(bookmarksPath)
	}
	if servicesPath != "" {
		s.services = NewLoader(servicesPath)
	}
	return s
}

// Enabled reports whether at least one file is configured.
func (s *Source) Enabled() bool {
	return s.bookmarks != nil || s.services != nil
}

// Records loads every configured file, bookmarks first.
func (s *Source) Records() ([]domain.ImportRecord, error) {
	if !s.Enabled() {
		return nil, ErrNoFiles
	}

	var records []domain.ImportRecord

	if s.bookmarks != nil {
		config, err := s.bookmarks.LoadBookmarks()
		if err != nil {
			return nil, err
		}
		mapped, err := s.mapper.MapBookmarks(config)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.bookmarks.Path(), err)
		}
		records = append(records, mapped...)
	}

	if s.services != nil {
		config, err := s.services.LoadServices()
		if err != nil {
			return nil, err
		}
		mapped, err := s.mapper.MapServices(config)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.services.Path(), err)
		}
		records = append(records, mapped...)
	}

	if len(records) == 0 {
		return nil, ErrNoRecords
	}
	return dedupe(records), nil
}

// dedupe drops records whose url was already seen, keeping the first.
func dedupe(records []domain.ImportRecord) []domain.ImportRecord {
	seen := make(map[string]struct{}, len(records))
	out := records[:0]
	for _, rec := range records {
		if _, ok := seen[rec.ID]; ok {
			continue
		}
		seen[rec.ID] = struct{}{}
		out = append(out, rec)
	}
	return out
}
