package lease

import "errors"

var (
	// ErrLockHeld is returned when another owner holds a live lease.
	ErrLockHeld = errors.New("lease held by another owner")

	// ErrLeaseLost is returned by release when the lease was taken over after expiry.
	ErrLeaseLost = errors.New("lease lost before release")
)
