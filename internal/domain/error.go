package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrOperationFailed    = errors.New("operation failed")
	ErrInvalidExecContext = errors.New("invalid execution context")
	ErrForbidden          = errors.New("forbidden")

	// Job applications
	ErrAlreadyApplied = errors.New("user already applied to this job")

	// Conversations
	ErrEmptyMessage  = errors.New("message is empty")
	ErrAwaitingReply = errors.New("conversation is awaiting a reply")
	ErrRateLimited   = errors.New("too many messages, slow down")
)
