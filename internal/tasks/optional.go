package tasks

import (
	"bytes"
	"encoding/json"

	"github.com/google/uuid"
)

// Optional is a three-state patch field: absent (Set false), explicit null
// (Set true, Value nil) or a value.
type Optional[T any] struct {
	Set   bool
	Value *T
}

// OptionalID patches a nullable user reference.
type OptionalID = Optional[uuid.UUID]

func Clear[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: &v}
}

// UnmarshalJSON is only invoked when the key is present, so reaching it
// always marks the field as set.
func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}
