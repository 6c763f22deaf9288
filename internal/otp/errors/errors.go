package errors

import "errors"

var (
	ErrNotFound = errors.New("no active one-time code for phone")

	ErrInvalidCode = errors.New("one-time code does not match")

	ErrTooManyAttempts = errors.New("too many one-time code attempts")
)
