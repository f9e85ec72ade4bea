package form

import (
	"errors"
	"fmt"
)

var (
	ErrNoForm        = errors.New("document has no interactive form")
	ErrFieldNotFound = errors.New("field not found")
	ErrNotText       = errors.New("field is not a text field")
	ErrFontMissing   = errors.New("appearance font not in form resources")
)

// FieldError ties an error to a fully qualified field name.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %q: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }
