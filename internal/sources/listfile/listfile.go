// Package listfile reads and writes bookmark lists as JSON or YAML files.
package listfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/linkbox/internal/domain"
)

// Format is a list file encoding.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
)

// ParseFormat accepts "json", "yaml" or "yml", case-insensitive. Empty means JSON.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	default:
		return "", fmt.Errorf("unsupported list format %q", s)
	}
}

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("cannot infer list format from %q", path)
	}
	return ParseFormat(ext)
}

// FormatFromContentType maps a request Content-Type to a format. Unknown types are JSON.
func FormatFromContentType(contentType string) Format {
	ct := strings.ToLower(contentType)
	if strings.Contains(ct, "yaml") || strings.Contains(ct, "yml") {
		return YAML
	}
	return JSON
}

// ContentType returns the MIME type written for f.
func (f Format) ContentType() string {
	if f == YAML {
		return "application/yaml"
	}
	return "application/json"
}

// Decode reads an array of import records.
func Decode(r io.Reader, f Format) ([]domain.ImportRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read list: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []domain.ImportRecord{}, nil
	}

	var records []domain.ImportRecord
	switch f {
	case YAML:
		err = yaml.Unmarshal(data, &records)
	default:
		err = json.Unmarshal(data, &records)
	}
	if err != nil {
		return nil, domain.ErrValidation.Withf("failed to parse %s list", f).WithCause(err)
	}
	if records == nil {
		records = []domain.ImportRecord{}
	}
	return records, nil
}

// Encode writes list as an array in the persisted field layout.
func Encode(w io.Writer, f Format, list []domain.Bookmark) error {
	if list == nil {
		list = []domain.Bookmark{}
	}

	switch f {
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(list); err != nil {
			return fmt.Errorf("failed to encode yaml list: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(list); err != nil {
			return fmt.Errorf("failed to encode json list: %w", err)
		}
		return nil
	}
}

// Load reads import records from path; the extension picks the format.
func Load(path string) ([]domain.ImportRecord, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open list file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return Decode(file, f)
}

// Write stores list at path through a temp file and rename, so readers never
// see a partial file.
func Write(path string, list []domain.Bookmark) error {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".linkbox-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := Encode(tmp, f, list); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move list file into place: %w", err)
	}
	return nil
}
