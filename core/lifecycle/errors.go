package lifecycle

import (
	"errors"

	"github.com/dmitrymomot/certkeeper/core/secretstore"
	"github.com/dmitrymomot/certkeeper/pkg/letsencrypt"
)

var (
	ErrInvalidConfig = errors.New("invalid lifecycle configuration")
	ErrLookupFailed  = errors.New("certificate secret lookup failed")
	ErrProvisioning  = errors.New("certificate provisioning failed")
	ErrSecretWrite   = errors.New("secret write failed")
	ErrLockHeld      = errors.New("another run holds the renewal lease")
)

// IsRecoverable reports whether a failed run may succeed on a later trigger
// without operator action.
func IsRecoverable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrInvalidConfig) || errors.Is(err, secretstore.ErrAccessDenied) {
		return false
	}
	if errors.Is(err, ErrLockHeld) || errors.Is(err, ErrLookupFailed) {
		return true
	}
	return secretstore.IsRetryable(err) || letsencrypt.IsRetryable(err)
}
