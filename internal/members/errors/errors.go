package errors

import "errors"

var (
	ErrNotFound = errors.New("member not found")

	ErrInvalidID = errors.New("invalid member ID format")
)
