package domain

import (
	jsoniter "github.com/json-iterator/go"
)

// Optional tracks JSON key presence for partial-update payloads.
// Three states: absent (Set=false), explicitly null (Set=true, Valid=false),
// and set to a value (Set=true, Valid=true).
type Optional[T any] struct {
	Set   bool
	Valid bool
	Value T
}

// Some builds a present, non-null Optional.
func Some[T any](value T) Optional[T] {
	return Optional[T]{Set: true, Valid: true, Value: value}
}

// Null builds a present but explicitly-null Optional.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

// Ptr returns the value as a pointer, nil when absent or null.
func (o Optional[T]) Ptr() *T {
	if !o.Set || !o.Valid {
		return nil
	}

	v := o.Value

	return &v
}

// UnmarshalJSON is only invoked when the key is present, so Set is always
// true afterwards.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true

	if string(data) == "null" {
		o.Valid = false
		var zero T
		o.Value = zero

		return nil
	}

	if err := jsoniter.ConfigFastest.Unmarshal(data, &o.Value); err != nil {
		return err
	}

	o.Valid = true

	return nil
}

// MarshalJSON renders null for absent or null values.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set || !o.Valid {
		return []byte("null"), nil
	}

	return marshalJSON(o.Value)
}

// IsZero reports absence, so omitzero tags drop unset fields on encode.
func (o Optional[T]) IsZero() bool {
	return !o.Set
}
