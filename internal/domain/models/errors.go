package models

import (
	"errors"
	"fmt"
)

// Error taxonomy for the evaluation pipeline. DataUnavailable is always
// recoverable (skip or fall back to cache), SchemaMismatch skips a single
// game loudly, ModelUnavailable aborts the whole run.
var (
	ErrDataUnavailable  = errors.New("data unavailable")
	ErrModelUnavailable = errors.New("model unavailable")
	ErrSchemaMismatch   = errors.New("feature schema mismatch")
)

// SchemaMismatchError carries enough detail to diagnose a feature layout
// drift between the assembled vector and the model's training schema.
type SchemaMismatchError struct {
	Kind     string
	Expected int
	Got      int
	Detail   string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("feature schema mismatch for %s model: expected %d columns, got %d (%s)",
		e.Kind, e.Expected, e.Got, e.Detail)
}

func (e *SchemaMismatchError) Unwrap() error {
	return ErrSchemaMismatch
}
