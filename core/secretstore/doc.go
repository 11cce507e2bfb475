// Package secretstore defines the contract certkeeper needs from a managed
// secret store and provides an in-memory implementation.
//
// Secrets are addressed by name and hold opaque text. Implementations must
// return values byte-for-byte as written and report failures through the
// package sentinels so callers can tell a missing secret from a transient
// outage:
//
//	meta, err := store.GetMetadata(ctx, "example.com/certificate")
//	switch {
//	case errors.Is(err, secretstore.ErrNotFound):
//		// first issuance
//	case err != nil:
//		// retry later
//	}
//
// Put is the write path used for certificate material. It updates in place and
// falls back to Create when the secret does not exist yet.
package secretstore
