package util

import "errors"

// Sentinel errors for common failure modes
var (
	// ErrUnsupported indicates a file type or operation is not supported
	ErrUnsupported = errors.New("unsupported")

	// ErrCorrupt indicates a file or document could not be decoded
	ErrCorrupt = errors.New("corrupt data")

	// ErrNotFound indicates a required resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidConfig indicates invalid configuration or arguments
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrPermission indicates a permission error
	ErrPermission = errors.New("permission denied")

	// ErrLocked indicates another session holds the state lock
	ErrLocked = errors.New("state is locked by another session")

	// ErrProbeTimeout indicates media metadata did not arrive in time
	ErrProbeTimeout = errors.New("media probe timed out")
)
