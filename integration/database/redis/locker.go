package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/certkeeper/core/lease"
)

// releaseScript deletes the key only if it still holds the caller's token.
const releaseScript = `if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0`

// LockClient is the subset of *goredis.Client used by Locker.
type LockClient interface {
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *goredis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...any) *goredis.Cmd
}

var _ lease.Locker = (*Locker)(nil)

// Locker implements lease.Locker with SET NX PX.
type Locker struct {
	client   LockClient
	prefix   string
	ttl      time.Duration
	newToken func() string
}

// LockerOption configures Locker.
type LockerOption func(*Locker)

// WithKeyPrefix sets the key prefix. Defaults to "certkeeper:lock".
func WithKeyPrefix(prefix string) LockerOption {
	return func(l *Locker) {
		if prefix = strings.TrimSpace(prefix); prefix != "" {
			l.prefix = prefix
		}
	}
}

// WithLockTTL sets the lease lifetime. Defaults to 15 minutes.
func WithLockTTL(ttl time.Duration) LockerOption {
	return func(l *Locker) {
		if ttl > 0 {
			l.ttl = ttl
		}
	}
}

// NewLocker creates a Locker on top of client.
func NewLocker(client LockClient, opts ...LockerOption) (*Locker, error) {
	if client == nil {
		return nil, ErrNilClient
	}
	l := &Locker{
		client:   client,
		prefix:   "certkeeper:lock",
		ttl:      15 * time.Minute,
		newToken: uuid.NewString,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Key returns the Redis key used for name.
func (l *Locker) Key(name string) string {
	return l.prefix + ":" + name
}

// Acquire takes the lease for name or fails with lease.ErrLockHeld.
func (l *Locker) Acquire(ctx context.Context, name string) (lease.ReleaseFunc, error) {
	if name == "" {
		return nil, errors.New("lease key is required")
	}

	key := l.Key(name)
	token := l.newToken()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire %s: %w", key, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", lease.ErrLockHeld, key)
	}

	return func(ctx context.Context) error {
		n, err := l.client.Eval(ctx, releaseScript, []string{key}, token).Int64()
		if err != nil {
			return fmt.Errorf("release %s: %w", key, err)
		}
		if n == 0 {
			return fmt.Errorf("%w: %s", lease.ErrLeaseLost, key)
		}
		return nil
	}, nil
}
