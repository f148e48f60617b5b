package integration

import "errors"

var (
	// ErrInvalidTarget indicates a Target is missing fields or has a bad
	// version range.
	ErrInvalidTarget = errors.New("integration: invalid target")

	// ErrInvalidDefinition indicates a Definition without a name or without
	// exactly one of Interceptor and Hook.
	ErrInvalidDefinition = errors.New("integration: invalid definition")

	// ErrDuplicate indicates a Definition name is already registered.
	ErrDuplicate = errors.New("integration: already registered")
)
