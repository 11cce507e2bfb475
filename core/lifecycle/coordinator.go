package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/dmitrymomot/certkeeper/core/lease"
	"github.com/dmitrymomot/certkeeper/core/logger"
	"github.com/dmitrymomot/certkeeper/core/notify"
	"github.com/dmitrymomot/certkeeper/core/renewal"
	"github.com/dmitrymomot/certkeeper/core/secretstore"
	"github.com/dmitrymomot/certkeeper/pkg/letsencrypt"
)

// Provisioner obtains certificate material for a domain.
type Provisioner interface {
	Provision(ctx context.Context, req letsencrypt.Request) (*letsencrypt.Material, error)
}

// Coordinator runs the evaluate, provision and persist sequence for one domain.
type Coordinator struct {
	cfg         Config
	store       secretstore.Store
	evaluator   *renewal.Evaluator
	provisioner Provisioner

	locker   lease.Locker
	archiver Archiver
	notifier notify.Notifier
	logger   *slog.Logger
	now      func() time.Time

	writeRetries int
	retryBase    time.Duration
	writeTimeout time.Duration
}

// New creates a Coordinator.
func New(cfg Config, store secretstore.Store, provisioner Provisioner, opts ...Option) (*Coordinator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if store == nil {
		return nil, fmt.Errorf("%w: secret store is required", ErrInvalidConfig)
	}
	if provisioner == nil {
		return nil, fmt.Errorf("%w: provisioner is required", ErrInvalidConfig)
	}

	evaluator, err := renewal.NewEvaluator(store, cfg.Policy)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	c := &Coordinator{
		cfg:          cfg,
		store:        store,
		evaluator:    evaluator,
		provisioner:  provisioner,
		logger:       logger.Nop(),
		now:          time.Now,
		writeRetries: 3,
		retryBase:    500 * time.Millisecond,
		writeTimeout: 2 * time.Minute,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Run performs one coordinator run. The returned Outcome is never nil.
func (c *Coordinator) Run(ctx context.Context) (*Outcome, error) {
	start := time.Now()
	out := &Outcome{RunID: uuid.NewString(), Path: StateEvaluating}
	log := c.logger.With(logger.RunID(out.RunID), logger.Domain(c.cfg.Domain))

	err := c.run(ctx, log, out)
	out.Duration = time.Since(start)

	if errors.Is(err, ErrLockHeld) {
		return out, err
	}
	if err != nil {
		log.ErrorContext(ctx, "Certificate run failed",
			logger.Error(err),
			slog.String("state", out.Path.String()),
			slog.Bool("recoverable", IsRecoverable(err)),
			logger.Duration(out.Duration))
		c.notifyFailure(ctx, log, out, err)
		return out, err
	}

	log.DebugContext(ctx, "Certificate run finished",
		slog.String("state", StateDone.String()),
		logger.Action(out.Decision.Action.String()),
		slog.String("path", out.Path.String()),
		slog.Bool("issued", out.Issued),
		logger.Duration(out.Duration))
	return out, nil
}

func (c *Coordinator) run(ctx context.Context, log *slog.Logger, out *Outcome) error {
	decision, err := c.evaluate(ctx, log)
	out.Decision = decision
	if err != nil {
		return err
	}
	if !decision.NeedsIssuance() {
		out.Path = StateIdle
		return nil
	}
	out.Path = pathFor(decision)

	if c.locker != nil {
		release, err := c.locker.Acquire(ctx, c.cfg.Domain)
		if errors.Is(err, lease.ErrLockHeld) {
			log.InfoContext(ctx, "Renewal lease held by another run", logger.Error(err))
			return fmt.Errorf("%w: %w", ErrLockHeld, err)
		}
		if err != nil {
			return fmt.Errorf("acquire renewal lease: %w", err)
		}
		defer func() {
			if err := release(context.WithoutCancel(ctx)); err != nil {
				log.WarnContext(ctx, "Failed to release renewal lease", logger.Error(err))
			}
		}()

		// Another run may have finished between the first check and the lease.
		decision, err = c.evaluate(ctx, log)
		out.Decision = decision
		if err != nil {
			return err
		}
		if !decision.NeedsIssuance() {
			out.Path = StateIdle
			return nil
		}
		out.Path = pathFor(decision)
	}

	if out.Path == StateCreating {
		log.InfoContext(ctx, "Create new certificate")
	} else {
		log.InfoContext(ctx, "Update new certificate", logger.DaysLeft(decision.DaysLeft))
	}

	material, err := c.provisioner.Provision(ctx, letsencrypt.Request{
		Email:       c.cfg.Email,
		Domain:      c.cfg.Domain,
		Environment: c.cfg.Environment,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrProvisioning, err)
	}

	// The certificate is already issued; finish the writes even if the caller gives up.
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.writeTimeout)
	defer cancel()

	written, err := c.persist(writeCtx, log, material)
	out.Written = written
	if err != nil {
		return err
	}
	out.Issued = true

	log.InfoContext(ctx, "Certificate stored",
		logger.Secret(c.cfg.CertificateName),
		slog.Int("secrets_written", len(written)))

	if c.archiver != nil {
		if err := c.archiver.Archive(writeCtx, c.cfg.Domain, material.Certificate, material.CertificateChain); err != nil {
			log.WarnContext(ctx, "Failed to archive certificate", logger.Error(err))
		}
	}
	return nil
}

func (c *Coordinator) evaluate(ctx context.Context, log *slog.Logger) (renewal.Decision, error) {
	log.DebugContext(ctx, "Evaluating certificate secret",
		slog.String("state", StateEvaluating.String()),
		logger.Secret(c.cfg.CertificateName))

	decision := c.evaluator.Evaluate(ctx, c.cfg.CertificateName, c.now())
	switch decision.Action {
	case renewal.ActionLookupFailed:
		return decision, fmt.Errorf("%w: %w", ErrLookupFailed, decision.Err)
	case renewal.ActionNoActionNeeded:
		log.InfoContext(ctx, "Renewal not needed", logger.DaysLeft(decision.DaysLeft))
	}
	return decision, nil
}

// persist writes the optional chain, then the key, then the certificate.
// The certificate goes last: until it is replaced the next run reissues and
// rewrites everything. A failed certificate write restores the key to its
// prior value.
func (c *Coordinator) persist(ctx context.Context, log *slog.Logger, m *letsencrypt.Material) ([]string, error) {
	var written []string

	switch {
	case c.cfg.ChainName == "":
		log.DebugContext(ctx, "Certificate chain not persisted")
	case m.CertificateChain == "":
		log.WarnContext(ctx, "Issued certificate has no chain", logger.Secret(c.cfg.ChainName))
	default:
		if err := c.put(ctx, log, c.cfg.ChainName, m.CertificateChain); err != nil {
			return written, fmt.Errorf("%w: %s: %w", ErrSecretWrite, c.cfg.ChainName, err)
		}
		written = append(written, c.cfg.ChainName)
	}

	prevKey, hadKey, err := c.snapshot(ctx, c.cfg.KeyName)
	if err != nil {
		return written, fmt.Errorf("%w: read %s: %w", ErrSecretWrite, c.cfg.KeyName, err)
	}

	if err := c.put(ctx, log, c.cfg.KeyName, m.PrivateKey); err != nil {
		return written, fmt.Errorf("%w: %s: %w", ErrSecretWrite, c.cfg.KeyName, err)
	}
	written = append(written, c.cfg.KeyName)

	if err := c.put(ctx, log, c.cfg.CertificateName, m.Certificate); err != nil {
		writeErr := fmt.Errorf("%w: %s: %w", ErrSecretWrite, c.cfg.CertificateName, err)
		if !hadKey {
			log.WarnContext(ctx, "Key secret left without a matching certificate",
				logger.Secret(c.cfg.KeyName))
			return written, writeErr
		}
		if rbErr := c.put(ctx, log, c.cfg.KeyName, prevKey); rbErr != nil {
			return written, errors.Join(writeErr, fmt.Errorf("roll back %s: %w", c.cfg.KeyName, rbErr))
		}
		log.WarnContext(ctx, "Key secret rolled back", logger.Secret(c.cfg.KeyName))
		return written[:len(written)-1], writeErr
	}
	return append(written, c.cfg.CertificateName), nil
}

// snapshot returns the current value of name and whether it existed.
func (c *Coordinator) snapshot(ctx context.Context, name string) (string, bool, error) {
	var (
		value  string
		exists bool
	)
	err := retry.Do(ctx, c.backoff(), func(ctx context.Context) error {
		v, err := c.store.GetValue(ctx, name)
		switch {
		case err == nil:
			value, exists = v, true
			return nil
		case errors.Is(err, secretstore.ErrNotFound):
			return nil
		case secretstore.IsRetryable(err):
			return retry.RetryableError(err)
		default:
			return err
		}
	})
	return value, exists, err
}

// put upserts name, retrying transient failures with exponential backoff.
func (c *Coordinator) put(ctx context.Context, log *slog.Logger, name, value string) error {
	attempt := 0
	return retry.Do(ctx, c.backoff(), func(ctx context.Context) error {
		attempt++
		err := secretstore.Put(ctx, c.store, name, value)
		if err == nil {
			log.DebugContext(ctx, "Secret written", logger.Secret(name))
			return nil
		}
		if secretstore.IsRetryable(err) {
			log.WarnContext(ctx, "Secret write failed, retrying",
				logger.Secret(name),
				logger.RetryCount(attempt),
				logger.Error(err))
			return retry.RetryableError(err)
		}
		return err
	})
}

func (c *Coordinator) backoff() retry.Backoff {
	return retry.WithMaxRetries(uint64(c.writeRetries), retry.NewExponential(c.retryBase))
}

func (c *Coordinator) notifyFailure(ctx context.Context, log *slog.Logger, out *Outcome, err error) {
	if c.notifier == nil {
		return
	}
	nerr := c.notifier.NotifyFailure(context.WithoutCancel(ctx), notify.Failure{
		Domain:     c.cfg.Domain,
		RunID:      out.RunID,
		Stage:      out.Path.String(),
		Err:        err,
		OccurredAt: c.now(),
	})
	if nerr != nil {
		log.WarnContext(ctx, "Failed to send failure notification", logger.Error(nerr))
	}
}

func pathFor(d renewal.Decision) State {
	if d.Action == renewal.ActionCreate {
		return StateCreating
	}
	return StateRenewing
}
