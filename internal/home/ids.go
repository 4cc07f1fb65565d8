package home

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateID returns a new unique identifier for rooms and devices.
func GenerateID() string {
	return uuid.New().String()
}

// GenerateSlug converts a display name into a URL-safe slug.
//
// "Living Room" becomes "living-room". Non-alphanumeric characters are
// dropped, runs of whitespace collapse to a single hyphen.
func GenerateSlug(name string) string {
	var b strings.Builder
	lastHyphen := true // suppress leading hyphen

	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteRune('-')
				lastHyphen = true
			}
		}
	}

	return strings.TrimSuffix(b.String(), "-")
}
