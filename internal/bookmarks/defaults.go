package bookmarks

import (
	"time"

	"github.com/MrSnakeDoc/linkbox/internal/domain"
)

// seedEntries are written the first time the storage key is read and found empty.
var seedEntries = []domain.Draft{
	{
		Title:    "Go documentation",
		URL:      "https://go.dev/doc/",
		Category: "Documentation",
	},
	{
		Title:    "pkg.go.dev",
		URL:      "https://pkg.go.dev/",
		Category: "Libraries",
	},
}

// defaults builds the seed list stamped with now.
func (s *Store) defaults(now time.Time) ([]domain.Bookmark, error) {
	list := make([]domain.Bookmark, 0, len(seedEntries))
	for _, d := range seedEntries {
		b, err := s.create(d, now)
		if err != nil {
			return nil, err
		}
		list = append(list, b)
	}
	return list, nil
}
