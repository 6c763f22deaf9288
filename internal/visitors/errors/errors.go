package errors

import "errors"

var (
	ErrNotFound = errors.New("visitor group not found")

	ErrAlreadyCheckedOut = errors.New("visitor group already checked out")

	ErrDuplicateGroupID = errors.New("group id already in use")

	ErrGroupIDExhausted = errors.New("could not allocate a unique group id")
)
