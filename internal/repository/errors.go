package repository

import "errors"

var (
	ErrNotFound = errors.New("not found")
	// unique constraint violated
	ErrDuplicate = errors.New("duplicate key")
	// NOWAIT row lock could not be acquired
	ErrLockNotAvailable = errors.New("row lock not available")
)
