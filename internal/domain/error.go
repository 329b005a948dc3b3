package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrInvalidExecContext = errors.New("invalid executor context for database operation")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
)
