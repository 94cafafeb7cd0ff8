/*
Package randx provides functions for generating unique identifiers and validating
externally supplied room slugs.

Connection and message identifiers are standard UUID v4 strings. Room slugs come
from the room URL and are restricted to a conservative character set.
*/
package randx

import (
	"strings"

	"github.com/google/uuid"
)

const (
	// MaxSlugLength is the maximum accepted length of a room slug.
	MaxSlugLength = 32

	// SlugChars defines the character set accepted in room slugs
	// (lowercase alphanumerics plus hyphen and underscore).
	SlugChars = "0123456789abcdefghijklmnopqrstuvwxyz-_"
)

// ConnectionID generates a UUID v4 string to serve as an opaque connection identifier.
func ConnectionID() string {
	return uuid.New().String()
}

// MessageID generates a UUID v4 string to serve as a unique identifier for a message.
func MessageID() string {
	return uuid.New().String()
}

// IsValidRoomSlug checks if the given string is a usable room slug.
// Validity criteria: non-empty, at most MaxSlugLength characters, and all
// characters belong to the SlugChars set.
func IsValidRoomSlug(slug string) bool {
	if slug == "" || len(slug) > MaxSlugLength {
		return false
	}

	for _, char := range slug {
		if !strings.ContainsRune(SlugChars, char) {
			return false
		}
	}

	return true
}
