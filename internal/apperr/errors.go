package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrEmptyInput    = errors.New("input is empty")
	ErrMissingColumn = errors.New("required column missing")
	ErrNoReport      = errors.New("no run report available")
)
