package errors

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// maxItemIDLength bounds item identifiers accepted from documents and requests.
const maxItemIDLength = 256

// ValidateItemID validates an item identifier read from a grid document or an
// API request.
//
// The validation rules are intentionally conservative:
//   - No empty IDs
//   - No control characters or null bytes
//   - Maximum length of 256 characters
func ValidateItemID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidItem, "item id cannot be empty")
	}

	if len(id) > maxItemIDLength {
		return New(ErrCodeInvalidItem, "item id too long (max %d characters)", maxItemIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidItem, "item id contains invalid control characters")
		}
	}

	return nil
}

// ValidateItemSpan validates a requested column span. Zero means "unset" and
// is accepted; the engine treats it as a single column.
func ValidateItemSpan(span int) error {
	if span < 0 {
		return New(ErrCodeInvalidItem, "column span cannot be negative: %d", span)
	}
	return nil
}

// ValidateSessionID validates a grid session identifier.
// Session IDs are UUIDs; anything else is rejected before it reaches a
// storage key.
func ValidateSessionID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidSession, "session id cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return Wrap(ErrCodeInvalidSession, err, "invalid session id %q", id)
	}
	return nil
}

// ValidateDocumentPath validates the extension of a grid document path.
// Only JSON and TOML documents are understood.
func ValidateDocumentPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "document path cannot be empty")
	}
	if strings.ContainsRune(path, '\x00') {
		return New(ErrCodeInvalidInput, "document path contains invalid characters")
	}

	lower := strings.ToLower(path)
	if !strings.HasSuffix(lower, ".json") && !strings.HasSuffix(lower, ".toml") {
		return New(ErrCodeInvalidFormat, "unsupported document type %q (want .json or .toml)", path)
	}
	return nil
}
