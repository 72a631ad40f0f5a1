// Package nullable implements tri-state JSON fields for PATCH bodies: a field
// can be absent (leave stored value alone), explicitly null (clear it) or set.
// Pointer fields alone cannot express the difference between absent and null,
// and a partial update that conflates the two would silently wipe closure
// dates or costs the caller never meant to touch.
package nullable

import "encoding/json"

type Field[T any] struct {
	Present bool // key appeared in the JSON body
	Null    bool // key was an explicit null
	Value   T
}

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Present = true
	if string(data) == "null" {
		f.Null = true
		return nil
	}
	return json.Unmarshal(data, &f.Value)
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.Present || f.Null {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// Set reports whether the field carries a concrete value.
func (f Field[T]) Set() bool { return f.Present && !f.Null }

// Ptr returns the stored value as a pointer, nil when absent or null.
func (f Field[T]) Ptr() *T {
	if !f.Set() {
		return nil
	}
	v := f.Value
	return &v
}

// Apply writes the field onto a nullable destination: no-op when absent,
// nil when null, value otherwise.
func (f Field[T]) Apply(dst **T) {
	if !f.Present {
		return
	}
	if f.Null {
		*dst = nil
		return
	}
	v := f.Value
	*dst = &v
}

// ApplyValue writes onto a non-nullable destination; null is ignored because
// the column cannot be cleared.
func (f Field[T]) ApplyValue(dst *T) {
	if f.Set() {
		*dst = f.Value
	}
}

func Of[T any](v T) Field[T] {
	return Field[T]{Present: true, Value: v}
}

func Null[T any]() Field[T] {
	return Field[T]{Present: true, Null: true}
}
