package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// maxIDLength bounds layout and item identifiers.
const maxIDLength = 128

// layoutIDRegex matches identifiers safe for file names, Redis keys and URLs.
var layoutIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateLayoutID validates a layout identifier for safety and correctness.
// Layout ids become file names in the file store, so the rules reject
// anything that could be used for path traversal:
//   - No empty ids
//   - No control characters
//   - No path separators or traversal sequences (.., /, \)
//   - Maximum length of 128 characters
func ValidateLayoutID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidID, "layout id cannot be empty")
	}

	if len(id) > maxIDLength {
		return New(ErrCodeInvalidID, "layout id too long (max %d characters)", maxIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidID, "layout id contains invalid control characters")
		}
	}

	if strings.Contains(id, "..") {
		return New(ErrCodeInvalidID, "layout id cannot contain path traversal sequences (..)")
	}

	if !layoutIDRegex.MatchString(id) {
		return New(ErrCodeInvalidID, "invalid layout id: %q", id)
	}

	return nil
}

// hexColorRegex matches #rgb, #rrggbb and #rrggbbaa colors.
var hexColorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

// ValidateColor validates a style color. Empty means "theme default" and is
// accepted.
func ValidateColor(color string) error {
	if color == "" {
		return nil
	}
	if !hexColorRegex.MatchString(color) {
		return New(ErrCodeInvalidInput, "invalid color %q (must be #rgb, #rrggbb or #rrggbbaa)", color)
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
