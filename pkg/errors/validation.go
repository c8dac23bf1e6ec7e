package errors

import (
	"strings"
	"unicode"
)

// ValidateDocumentName validates a user-supplied document name for safety.
// Names end up in cache keys, log lines, and storage records, so the rules
// are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path separators or traversal sequences
//   - Maximum length of 200 characters
func ValidateDocumentName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidName, "document name cannot be empty")
	}

	if len(name) > 200 {
		return New(ErrCodeInvalidName, "document name too long (max 200 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "document name contains control characters")
		}
	}

	for _, pattern := range []string{"..", "/", "\\", "\x00"} {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidName, "document name contains invalid sequence %q", pattern)
		}
	}

	return nil
}

// ValidateDocumentID validates a document identifier. IDs are UUID strings
// assigned by the store; anything else is rejected before it reaches a
// storage backend.
func ValidateDocumentID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidID, "document id cannot be empty")
	}
	if len(id) > 64 {
		return New(ErrCodeInvalidID, "document id too long")
	}
	for _, r := range id {
		ok := r == '-' ||
			(r >= '0' && r <= '9') ||
			(r >= 'a' && r <= 'f') ||
			(r >= 'A' && r <= 'F')
		if !ok {
			return New(ErrCodeInvalidID, "document id contains invalid character %q", r)
		}
	}
	return nil
}
