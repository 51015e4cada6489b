package apperr

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrUnavailable  = errors.New("unavailable")
	ErrInvalidInput = errors.New("invalid input")
	ErrInvalidQuery = errors.New("invalid query")
)
