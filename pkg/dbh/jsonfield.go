package dbh

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONField stores any JSON-marshalable type in a TEXT column, and marshals
// transparently when the containing record is serialized to JSON.
type JSONField[T any] struct {
	Data T
}

// MakeJSONField is a convenience for populating a *JSONField[T] struct field.
func MakeJSONField[T any](data T) *JSONField[T] {
	return &JSONField[T]{Data: data}
}

func (f *JSONField[T]) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		var zero T
		f.Data = zero
		return nil
	case string:
		return json.Unmarshal([]byte(v), &f.Data)
	case []byte:
		return json.Unmarshal(v, &f.Data)
	}
	return fmt.Errorf("JSONField cannot scan from %T", src)
}

func (f JSONField[T]) Value() (driver.Value, error) {
	b, err := json.Marshal(f.Data)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (f JSONField[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Data)
}

func (f *JSONField[T]) UnmarshalJSON(b []byte) error {
	return json.Unmarshal(b, &f.Data)
}
