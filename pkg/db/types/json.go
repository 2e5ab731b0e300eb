package dbtypes

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSON stores a value as a JSON text column. It works on both the Postgres
// and SQLite schemas since the columns are declared TEXT.
type JSON[T any] struct {
	Val T
}

// NewJSON wraps v for storage.
func NewJSON[T any](v T) JSON[T] {
	return JSON[T]{Val: v}
}

func (j *JSON[T]) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		var zero T
		j.Val = zero
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("JSON: unsupported Scan type %T", src)
	}
	if len(raw) == 0 {
		var zero T
		j.Val = zero
		return nil
	}
	if err := json.Unmarshal(raw, &j.Val); err != nil {
		return fmt.Errorf("JSON: decode: %w", err)
	}
	return nil
}

func (j JSON[T]) Value() (driver.Value, error) {
	b, err := json.Marshal(j.Val)
	if err != nil {
		return nil, fmt.Errorf("JSON: encode: %w", err)
	}
	return string(b), nil
}
