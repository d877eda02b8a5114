package prediction

import (
	"errors"
	"fmt"
	"strings"
)

// ErrModelUnavailable means the model artifacts were not loaded. The server
// refuses to start in this state, so seeing it on a live request indicates a
// wiring bug rather than a transient condition.
var ErrModelUnavailable = errors.New("prediction model unavailable")

// FieldError describes a single invalid or missing input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError reports every offending field at once so the caller can
// surface all problems in a single round trip.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = f.Field
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(names, ", "))
}

func (e *ValidationError) add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// UnknownCategoryError means a value passed schema validation but is not in
// the encoder's closed category set. Validation and encoding share the same
// sets, so this is a server-side integrity fault, not caller error.
type UnknownCategoryError struct {
	Field string
	Value string
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("unknown category %q for field %q", e.Value, e.Field)
}

// UnmappedKeyError means a training-time lookup table is missing a key for a
// validated value. The artifacts and the schema are out of sync; inference
// must not proceed.
type UnmappedKeyError struct {
	Table string
	Key   string
}

func (e *UnmappedKeyError) Error() string {
	return fmt.Sprintf("no %s mapping for key %q", e.Table, e.Key)
}

// EncodingError wraps a failure to turn a record into a feature vector.
type EncodingError struct {
	Err error
}

func (e *EncodingError) Error() string { return fmt.Sprintf("encoding failed: %v", e.Err) }
func (e *EncodingError) Unwrap() error { return e.Err }
