package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrymomot/certkeeper/core/logger"
)

// Job is a single run, usually a *Coordinator.
type Job interface {
	Run(ctx context.Context) (*Outcome, error)
}

var _ Job = (*Coordinator)(nil)

// Runner repeats a Job on a fixed interval.
type Runner struct {
	job      Job
	interval time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running atomic.Bool

	runs     atomic.Int64
	failures atomic.Int64
}

// RunnerStats reports runner counters.
type RunnerStats struct {
	Runs      int64
	Failures  int64
	IsRunning bool
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithRunnerLogger sets the runner logger. Defaults to a no-op logger.
func WithRunnerLogger(l *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRunner creates a Runner. The interval must be positive.
func NewRunner(job Job, interval time.Duration, opts ...RunnerOption) (*Runner, error) {
	if job == nil {
		return nil, fmt.Errorf("%w: job is required", ErrInvalidConfig)
	}
	if interval <= 0 {
		return nil, fmt.Errorf("%w: check interval must be positive, got %s", ErrInvalidConfig, interval)
	}

	r := &Runner{
		job:      job,
		interval: interval,
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Start runs the job immediately and then on every tick until ctx is done
// or Stop is called. Failed runs are logged; the next tick retries.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.cancel != nil {
		r.mu.Unlock()
		return errors.New("runner already started")
	}
	ctx, r.cancel = context.WithCancel(ctx)
	r.done = make(chan struct{})
	done := r.done
	r.mu.Unlock()

	r.running.Store(true)
	defer func() {
		r.running.Store(false)
		close(done)
	}()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.InfoContext(ctx, "Certificate runner started", slog.Duration("check_interval", r.interval))

	r.runOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			r.logger.InfoContext(context.WithoutCancel(ctx), "Certificate runner stopping")
			return ctx.Err()
		case <-ticker.C:
			r.runOnce(ctx)
		}
	}
}

// Stop cancels the loop and waits for the current run to return.
func (r *Runner) Stop() error {
	r.mu.Lock()
	if r.cancel == nil {
		r.mu.Unlock()
		return errors.New("runner not started")
	}
	r.cancel()
	done := r.done
	r.mu.Unlock()

	<-done
	return nil
}

// Run returns a function suitable for errgroup-style lifecycle management.
func (r *Runner) Run(ctx context.Context) func() error {
	return func() error {
		errCh := make(chan error, 1)
		go func() {
			errCh <- r.Start(ctx)
		}()

		select {
		case <-ctx.Done():
			_ = r.Stop()
			<-errCh
			return nil
		case err := <-errCh:
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}
	}
}

// Stats returns current counters.
func (r *Runner) Stats() RunnerStats {
	return RunnerStats{
		Runs:      r.runs.Load(),
		Failures:  r.failures.Load(),
		IsRunning: r.running.Load(),
	}
}

func (r *Runner) runOnce(ctx context.Context) {
	r.runs.Add(1)
	out, err := r.job.Run(ctx)
	if err == nil {
		return
	}
	if errors.Is(err, ErrLockHeld) || ctx.Err() != nil {
		return
	}
	r.failures.Add(1)

	attrs := []any{logger.Error(err), slog.Bool("recoverable", IsRecoverable(err))}
	if out != nil {
		attrs = append(attrs, logger.RunID(out.RunID))
	}
	r.logger.WarnContext(ctx, "Certificate run failed, retrying on next tick", attrs...)
}
