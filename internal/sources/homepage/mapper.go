package homepage

import (
	"crypto/sha256"
	"encoding/hex"
	"maps"
	"net/url"
	"slices"
	"strings"

	"github.com/MrSnakeDoc/linkbox/internal/domain"
)

// Mapper converts Homepage config to bookmark import records
type Mapper struct{}

// NewMapper creates a new mapper instance
func NewMapper() *Mapper {
	return &Mapper{}
}

// MapBookmarks converts BookmarksConfig to import records.
// The group name becomes the category.
func (m *Mapper) MapBookmarks(config BookmarksConfig) ([]domain.ImportRecord, error) {
	records := []domain.ImportRecord{}

	for _, group := range config {
		for _, groupName := range slices.Sorted(maps.Keys(group)) {
			for _, bookmarkMap := range group[groupName] {
				for _, name := range slices.Sorted(maps.Keys(bookmarkMap)) {
					entries := bookmarkMap[name]
					// Each bookmark has a list with a single entry
					if len(entries) == 0 || entries[0].Href == "" {
						continue
					}
					entry := entries[0]

					title := strings.TrimSpace(name)
					if title == "" {
						title = entry.Abbr
					}

					records = append(records, newRecord(title, entry.Href, groupName))
				}
			}
		}
	}

	return records, nil
}

// MapServices converts ServicesConfig to import records.
// Services without a usable host are skipped.
func (m *Mapper) MapServices(config ServicesConfig) ([]domain.ImportRecord, error) {
	records := []domain.ImportRecord{}

	for _, groupMap := range config {
		for _, groupName := range slices.Sorted(maps.Keys(groupMap)) {
			for _, serviceMap := range groupMap[groupName] {
				for _, name := range slices.Sorted(maps.Keys(serviceMap)) {
					props := serviceMap[name]
					if props.Href == "" {
						continue
					}

					parsedURL, err := url.Parse(props.Href)
					if err != nil || parsedURL.Hostname() == "" {
						continue
					}

					records = append(records, newRecord(name, props.Href, groupName))
				}
			}
		}
	}

	return records, nil
}

func newRecord(title, href, category string) domain.ImportRecord {
	return domain.ImportRecord{
		ID:       generateBookmarkID(href),
		Title:    &title,
		URL:      &href,
		Category: &category,
	}
}

// generateBookmarkID creates a stable ID from a URL so that re-importing the
// same file keeps bookmark identity even when the title changes
func generateBookmarkID(url string) string {
	hash := sha256.Sum256([]byte(url))
	return hex.EncodeToString(hash[:])[:16]
}
