package timeline

import "errors"

var (
	ErrDuplicateName    = errors.New("duplicate name")
	ErrNotFound         = errors.New("not found")
	ErrHasDependents    = errors.New("has dependents")
	ErrValidation       = errors.New("validation error")
	ErrMalformedPayload = errors.New("malformed payload")
)
