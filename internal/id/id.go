// Package id generates bookmark identifiers.
package id

import (
	"fmt"
	"strconv"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	// alphabet matches base-36 so the whole ID stays lowercase alphanumeric.
	alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

	// SuffixLength is the number of random characters after the timestamp.
	SuffixLength = 5
)

// Generate returns base-36 Unix milliseconds of now followed by a random suffix.
// Example: "lz3k9q1ab7xe"
//
// Returns an error if the system has insufficient entropy for secure random generation.
func Generate(now time.Time) (string, error) {
	suffix, err := gonanoid.Generate(alphabet, SuffixLength)
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return strconv.FormatInt(now.UnixMilli(), 36) + suffix, nil
}
