package secretstore

import "errors"

var (
	// ErrNotFound is returned when the named secret does not exist.
	ErrNotFound = errors.New("secret not found")

	// ErrAlreadyExists is returned by Create when the name is taken.
	ErrAlreadyExists = errors.New("secret already exists")

	// ErrTransient marks failures worth retrying: throttling, timeouts, internal service errors.
	ErrTransient = errors.New("transient secret store failure")

	// ErrAccessDenied is returned when credentials lack permission for the operation.
	ErrAccessDenied = errors.New("secret store access denied")

	// ErrInvalidName is returned for empty secret names.
	ErrInvalidName = errors.New("invalid secret name")

	// ErrInvalidConfig is returned when a store is constructed with incomplete configuration.
	ErrInvalidConfig = errors.New("invalid secret store configuration")
)

// IsRetryable reports whether err is worth retrying.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransient)
}
