package validation

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	MaxTitleLength = 255
	MaxEmailLength = 254
)

var (
	// EmailRegex validates email format
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

	// UUIDRegex validates UUID format
	uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
)

// IsValidEmail checks if the string is a valid email format
func IsValidEmail(email string) bool {
	if len(email) > MaxEmailLength {
		return false
	}
	return emailRegex.MatchString(email)
}

// IsValidUUID checks if the string is a valid UUID format
func IsValidUUID(id string) bool {
	return uuidRegex.MatchString(id)
}

func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// CheckTitle returns an error message for a missing or oversized title, or "".
func CheckTitle(title string) string {
	if IsBlank(title) {
		return "This field may not be blank."
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return "Ensure this field has no more than 255 characters."
	}
	return ""
}

// ParseUUIDs parses every entry; ok is false if any entry is malformed.
func ParseUUIDs(raw []string) (ids []uuid.UUID, ok bool) {
	ids = make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		if !IsValidUUID(s) {
			return nil, false
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, false
		}
		ids = append(ids, id)
	}
	return ids, true
}

// SanitizeString removes potentially dangerous characters for display
func SanitizeString(s string) string {
	// Remove null bytes
	s = strings.ReplaceAll(s, "\x00", "")

	// Remove control characters except newlines and tabs
	var result strings.Builder
	for _, r := range s {
		if r == '\n' || r == '\r' || r == '\t' || !unicode.IsControl(r) {
			result.WriteRune(r)
		}
	}

	return result.String()
}
