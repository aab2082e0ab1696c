package dto

import (
	"bytes"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hugh/kanmind/internal/api/validation"
)

type ErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

const (
	msgMembersNotList = "members must be a list of IDs"
	msgMemberInvalid  = "one or more member IDs are invalid"
)

// isNull reports whether a raw field was absent or an explicit null.
func isNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

// parseID decodes a single id field. Absent and null yield a nil id;
// ok is false for anything other than a UUID string.
func parseID(raw json.RawMessage) (id *uuid.UUID, ok bool) {
	if isNull(raw) {
		return nil, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, false
	}
	ids, ok := validation.ParseUUIDs([]string{s})
	if !ok {
		return nil, false
	}
	return &ids[0], true
}

// parseIDList decodes a list of ids, returning a members message when the
// value is not a list or holds a malformed entry.
func parseIDList(raw json.RawMessage) ([]uuid.UUID, string) {
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, msgMembersNotList
	}
	ids, ok := validation.ParseUUIDs(list)
	if !ok {
		return nil, msgMemberInvalid
	}
	return ids, ""
}
