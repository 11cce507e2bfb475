package lifecycle

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/certkeeper/core/lease"
	"github.com/dmitrymomot/certkeeper/core/notify"
)

// Archiver keeps a copy of the public certificate material.
type Archiver interface {
	Archive(ctx context.Context, domain, certificate, chain string) error
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithLocker serializes issuance per domain. Without it runs are not coordinated.
func WithLocker(l lease.Locker) Option {
	return func(c *Coordinator) {
		c.locker = l
	}
}

// WithArchiver copies issued public material after successful writes.
func WithArchiver(a Archiver) Option {
	return func(c *Coordinator) {
		c.archiver = a
	}
}

// WithNotifier reports failed runs.
func WithNotifier(n notify.Notifier) Option {
	return func(c *Coordinator) {
		c.notifier = n
	}
}

// WithClock overrides the time source used for evaluation.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		if now != nil {
			c.now = now
		}
	}
}

// WithWriteRetries sets how many times a transient secret write is retried. Defaults to 3.
func WithWriteRetries(n int) Option {
	return func(c *Coordinator) {
		if n >= 0 {
			c.writeRetries = n
		}
	}
}

// WithRetryBase sets the initial backoff between write retries. Defaults to 500ms.
func WithRetryBase(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.retryBase = d
		}
	}
}

// WithWriteTimeout bounds the write phase, which ignores caller cancellation
// once a certificate has been obtained. Defaults to 2 minutes.
func WithWriteTimeout(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.writeTimeout = d
		}
	}
}
