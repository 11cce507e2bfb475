// Package lease provides mutual exclusion between concurrent certkeeper runs
// using the secret store itself as the coordination point.
//
// A lease is a small JSON secret named <prefix>/<key>:
//
//	{"owner":"3f1c...","expires_at":"2026-10-17T10:15:00Z"}
//
// Acquire first tries a conditional Create. If the secret exists and its
// lease is still live, Acquire fails with ErrLockHeld. An expired or released
// lease is taken over with Update, then read back after a settle delay to
// detect a concurrent takeover.
//
//	locker := lease.NewSecretLocker(store, lease.WithTTL(15*time.Minute))
//	release, err := locker.Acquire(ctx, "example.com")
//	if errors.Is(err, lease.ErrLockHeld) {
//		return nil // another run is issuing
//	}
//	defer release(context.Background())
//
// Secrets Manager has no compare-and-swap on update, so the takeover path is
// best effort: two runs that read the same expired lease and write it more
// than the settle delay apart can both succeed. Set LOCK_BACKEND=redis when
// takeover must be strict. The TTL must exceed the longest expected issuance.
package lease
