package registry

import "errors"

var (
	// ErrNotInitialized is returned when the registry state is read before a successful Initialize.
	ErrNotInitialized = errors.New("registry not initialized")

	// ErrInvalidSnapshot is returned when the raw registries are absent or malformed.
	ErrInvalidSnapshot = errors.New("invalid registry snapshot")
)
