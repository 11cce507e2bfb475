package lease_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/certkeeper/core/lease"
	"github.com/dmitrymomot/certkeeper/core/secretstore"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newLocker(store lease.Store, c *clock) *lease.SecretLocker {
	return lease.NewSecretLocker(store,
		lease.WithTTL(10*time.Minute),
		lease.WithSettleDelay(0),
		lease.WithClock(c.now),
	)
}

func TestAcquireExclusion(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := &clock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	store := secretstore.NewMemoryStore()
	locker := newLocker(store, c)

	release, err := locker.Acquire(ctx, "example.com")
	require.NoError(t, err)
	require.NotNil(t, release)

	_, err = locker.Acquire(ctx, "example.com")
	require.ErrorIs(t, err, lease.ErrLockHeld)

	// Other keys are independent.
	other, err := locker.Acquire(ctx, "example.org")
	require.NoError(t, err)
	require.NoError(t, other(ctx))

	require.NoError(t, release(ctx))

	again, err := locker.Acquire(ctx, "example.com")
	require.NoError(t, err)
	require.NoError(t, again(ctx))

	// Lease secrets are reused, never deleted.
	assert.Equal(t, 2, store.Len())
}

func TestAcquireTakesOverExpiredLease(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := &clock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	store := secretstore.NewMemoryStore()
	locker := newLocker(store, c)

	stale, err := locker.Acquire(ctx, "example.com")
	require.NoError(t, err)

	c.advance(11 * time.Minute)

	fresh, err := locker.Acquire(ctx, "example.com")
	require.NoError(t, err)

	err = stale(ctx)
	require.ErrorIs(t, err, lease.ErrLeaseLost)

	require.NoError(t, fresh(ctx))
}

func TestAcquireIgnoresCorruptLease(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := &clock{t: time.Now()}
	store := secretstore.NewMemoryStore()
	locker := newLocker(store, c)
	store.Seed(locker.Name("example.com"), "not json", c.t)

	release, err := locker.Acquire(ctx, "example.com")
	require.NoError(t, err)
	require.NoError(t, release(ctx))
}

// racingStore lets another owner overwrite the lease right after our takeover.
type racingStore struct {
	*secretstore.MemoryStore
}

func (s racingStore) Update(ctx context.Context, name, value string) error {
	if err := s.MemoryStore.Update(ctx, name, value); err != nil {
		return err
	}
	rival, _ := json.Marshal(map[string]any{
		"owner":      "rival",
		"expires_at": time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	return s.MemoryStore.Update(ctx, name, string(rival))
}

func TestAcquireDetectsConcurrentTakeover(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := &clock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	store := racingStore{secretstore.NewMemoryStore()}
	locker := newLocker(store, c)
	store.Seed(locker.Name("example.com"), `{"owner":"old","expires_at":"2025-01-01T00:00:00Z"}`, c.t)

	_, err := locker.Acquire(ctx, "example.com")
	require.ErrorIs(t, err, lease.ErrLockHeld)
}

func TestAcquireValidation(t *testing.T) {
	t.Parallel()

	locker := lease.NewSecretLocker(secretstore.NewMemoryStore())
	_, err := locker.Acquire(context.Background(), "")
	require.Error(t, err)
}

func TestName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "certkeeper/lock/example.com", lease.NewSecretLocker(nil).Name("example.com"))
	assert.Equal(t, "ops/locks/example.com",
		lease.NewSecretLocker(nil, lease.WithPrefix("/ops/locks/")).Name("example.com"))
}

func TestAcquireHonorsContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	locker := lease.NewSecretLocker(secretstore.NewMemoryStore())
	_, err := locker.Acquire(ctx, "example.com")
	require.ErrorIs(t, err, context.Canceled)
}
