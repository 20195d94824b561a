// Package id produces resource ids.
package id

import (
	"strings"

	"github.com/google/uuid"
)

// Unique asks the server to generate the id.
func Unique() string {
	return "unique()"
}

// Custom returns a caller-chosen id unchanged.
func Custom(id string) string {
	return id
}

// Generate returns a 20-character id built on the client. Ids are limited to
// 36 characters of [a-zA-Z0-9._-] and may not start with a special character.
func Generate() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:20]
}

// IsValid reports whether s is an acceptable custom id.
func IsValid(s string) bool {
	if s == Unique() {
		return true
	}
	if s == "" || len(s) > 36 {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case (r == '.' || r == '_' || r == '-') && i > 0:
		default:
			return false
		}
	}
	return true
}
