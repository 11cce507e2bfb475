package lease

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/certkeeper/core/secretstore"
)

// ReleaseFunc releases a held lease.
type ReleaseFunc func(ctx context.Context) error

// Locker grants exclusive leases keyed by name.
// Acquire fails with ErrLockHeld when another owner holds the key.
type Locker interface {
	Acquire(ctx context.Context, key string) (ReleaseFunc, error)
}

var _ Locker = (*SecretLocker)(nil)

// Store is the subset of secretstore.Store the locker needs.
type Store interface {
	GetValue(ctx context.Context, name string) (string, error)
	Create(ctx context.Context, name, value string) error
	Update(ctx context.Context, name, value string) error
}

type record struct {
	Owner     string    `json:"owner"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SecretLocker implements leases on top of a secret store.
//
// A fresh lease is taken with a conditional Create, which the store makes
// exclusive. Taking over an expired lease is Update followed by a read-back
// after the settle delay; Secrets Manager has no compare-and-swap, so two
// contenders whose writes land more than the settle delay apart can both
// read back their own owner. Use the Redis locker when expired-lease takeover
// must be strictly exclusive.
type SecretLocker struct {
	store       Store
	prefix      string
	ttl         time.Duration
	settleDelay time.Duration
	now         func() time.Time
	newOwner    func() string
}

// Option configures SecretLocker.
type Option func(*SecretLocker)

// WithPrefix sets the secret name prefix. Defaults to "certkeeper/lock".
func WithPrefix(prefix string) Option {
	return func(l *SecretLocker) {
		if prefix = strings.Trim(prefix, "/ "); prefix != "" {
			l.prefix = prefix
		}
	}
}

// WithTTL sets how long a lease stays live without release. Defaults to 15 minutes.
func WithTTL(ttl time.Duration) Option {
	return func(l *SecretLocker) {
		if ttl > 0 {
			l.ttl = ttl
		}
	}
}

// WithSettleDelay sets the wait between a takeover write and its read-back. Defaults to 2 seconds.
func WithSettleDelay(d time.Duration) Option {
	return func(l *SecretLocker) {
		if d >= 0 {
			l.settleDelay = d
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(l *SecretLocker) {
		if now != nil {
			l.now = now
		}
	}
}

// NewSecretLocker creates a SecretLocker.
func NewSecretLocker(store Store, opts ...Option) *SecretLocker {
	l := &SecretLocker{
		store:       store,
		prefix:      "certkeeper/lock",
		ttl:         15 * time.Minute,
		settleDelay: 2 * time.Second,
		now:         time.Now,
		newOwner:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Name returns the secret name used for key.
func (l *SecretLocker) Name(key string) string {
	return l.prefix + "/" + key
}

// Acquire takes the lease for key or fails with ErrLockHeld.
func (l *SecretLocker) Acquire(ctx context.Context, key string) (ReleaseFunc, error) {
	if key == "" {
		return nil, errors.New("lease key is required")
	}

	name := l.Name(key)
	owner := l.newOwner()
	payload, err := l.encode(record{Owner: owner, ExpiresAt: l.now().Add(l.ttl)})
	if err != nil {
		return nil, err
	}

	err = l.store.Create(ctx, name, payload)
	if err == nil {
		return l.releaser(name, owner), nil
	}
	if !errors.Is(err, secretstore.ErrAlreadyExists) {
		return nil, fmt.Errorf("create lease %s: %w", name, err)
	}

	current, err := l.read(ctx, name)
	if err != nil {
		return nil, err
	}
	if current.live(l.now()) {
		return nil, fmt.Errorf("%w: %s until %s", ErrLockHeld, name, current.ExpiresAt.UTC().Format(time.RFC3339))
	}

	if err := l.store.Update(ctx, name, payload); err != nil {
		return nil, fmt.Errorf("take over lease %s: %w", name, err)
	}

	if l.settleDelay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.settleDelay):
		}
	}

	confirmed, err := l.read(ctx, name)
	if err != nil {
		return nil, err
	}
	if confirmed.Owner != owner {
		return nil, fmt.Errorf("%w: %s taken over concurrently", ErrLockHeld, name)
	}

	return l.releaser(name, owner), nil
}

func (l *SecretLocker) releaser(name, owner string) ReleaseFunc {
	return func(ctx context.Context) error {
		current, err := l.read(ctx, name)
		if err != nil {
			return err
		}
		if current.Owner != owner {
			return fmt.Errorf("%w: %s", ErrLeaseLost, name)
		}

		payload, err := l.encode(record{})
		if err != nil {
			return err
		}
		if err := l.store.Update(ctx, name, payload); err != nil {
			return fmt.Errorf("release lease %s: %w", name, err)
		}
		return nil
	}
}

// read returns the current lease. Unparseable content counts as released.
func (l *SecretLocker) read(ctx context.Context, name string) (record, error) {
	raw, err := l.store.GetValue(ctx, name)
	if err != nil {
		return record{}, fmt.Errorf("read lease %s: %w", name, err)
	}
	var rec record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return record{}, nil
	}
	return rec, nil
}

func (l *SecretLocker) encode(rec record) (string, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("encode lease: %w", err)
	}
	return string(data), nil
}

func (r record) live(now time.Time) bool {
	return r.Owner != "" && now.Before(r.ExpiresAt)
}
