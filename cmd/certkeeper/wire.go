package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dmitrymomot/certkeeper/core/config"
	"github.com/dmitrymomot/certkeeper/core/email"
	"github.com/dmitrymomot/certkeeper/core/lease"
	"github.com/dmitrymomot/certkeeper/core/lifecycle"
	"github.com/dmitrymomot/certkeeper/core/logger"
	"github.com/dmitrymomot/certkeeper/core/notify"
	"github.com/dmitrymomot/certkeeper/core/renewal"
	"github.com/dmitrymomot/certkeeper/core/secretstore"
	"github.com/dmitrymomot/certkeeper/integration/database/redis"
	"github.com/dmitrymomot/certkeeper/integration/email/postmark"
	"github.com/dmitrymomot/certkeeper/integration/secretstore/awssm"
	"github.com/dmitrymomot/certkeeper/integration/storage/s3"
	"github.com/dmitrymomot/certkeeper/pkg/letsencrypt"
)

// build wires the coordinator from cfg. The returned cleanup is never nil.
func build(ctx context.Context, cfg Config, log *slog.Logger) (*lifecycle.Coordinator, func(), error) {
	cleanup := func() {}

	store, err := awssm.New(ctx, cfg.SecretsManager)
	if err != nil {
		return nil, cleanup, fmt.Errorf("secrets manager: %w", err)
	}

	provisioner, err := newProvisioner(cfg, log)
	if err != nil {
		return nil, cleanup, err
	}

	opts := []lifecycle.Option{
		lifecycle.WithLogger(log),
		lifecycle.WithWriteRetries(cfg.WriteRetries),
	}

	locker, closeLocker, err := newLocker(ctx, cfg, store)
	if err != nil {
		return nil, cleanup, err
	}
	cleanup = closeLocker
	if locker != nil {
		opts = append(opts, lifecycle.WithLocker(locker))
	}

	if cfg.Archive.Enabled() {
		archiver, err := s3.New(ctx, cfg.Archive)
		if err != nil {
			return nil, cleanup, fmt.Errorf("archive: %w", err)
		}
		opts = append(opts, lifecycle.WithArchiver(archiver))
	}

	if cfg.NotifyEmail != "" {
		notifier, err := newNotifier(cfg, log)
		if err != nil {
			return nil, cleanup, err
		}
		opts = append(opts, lifecycle.WithNotifier(notifier))
	}

	coord, err := lifecycle.New(lifecycle.Config{
		Domain:          cfg.Domain,
		Email:           cfg.Email,
		Environment:     letsencrypt.EnvironmentFromFlag(cfg.Staging),
		CertificateName: cfg.CertificateName,
		KeyName:         cfg.KeyName,
		ChainName:       cfg.ChainName,
		Policy: renewal.Policy{
			ValidityDays:       cfg.ValidityDays,
			RenewThresholdDays: cfg.RenewThresholdDays,
		},
	}, store, provisioner, opts...)
	if err != nil {
		return nil, cleanup, err
	}
	return coord, cleanup, nil
}

func newProvisioner(cfg Config, log *slog.Logger) (*letsencrypt.Provisioner, error) {
	keyType, err := letsencrypt.ParseKeyType(cfg.KeyType)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", lifecycle.ErrInvalidConfig, err)
	}

	p, err := letsencrypt.NewProvisioner(
		letsencrypt.WithLogger(log.With(logger.Component("letsencrypt"))),
		letsencrypt.WithCertificateKeyType(keyType),
		letsencrypt.WithCADirectoryURL(cfg.ACMEDirectoryURL),
		letsencrypt.WithPropagationTimeout(cfg.DNSPropagationTimeout),
		letsencrypt.WithHostedZoneID(cfg.HostedZoneID),
		letsencrypt.WithRecursiveNameservers(cfg.DNSResolvers...),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", lifecycle.ErrInvalidConfig, err)
	}
	return p, nil
}

func newLocker(ctx context.Context, cfg Config, store secretstore.Store) (lease.Locker, func(), error) {
	noop := func() {}

	switch strings.ToLower(cfg.LockBackend) {
	case lockNone:
		return nil, noop, nil
	case lockSecretStore, "":
		return lease.NewSecretLocker(store,
			lease.WithPrefix(cfg.LockPrefix),
			lease.WithTTL(cfg.LockTTL),
		), noop, nil
	case lockRedis:
		var redisCfg redis.Config
		if err := config.Load(&redisCfg); err != nil {
			return nil, noop, fmt.Errorf("%w: %w", lifecycle.ErrInvalidConfig, err)
		}
		client, err := redis.Connect(ctx, redisCfg)
		if err != nil {
			return nil, noop, err
		}
		locker, err := redis.NewLocker(client,
			redis.WithKeyPrefix(strings.ReplaceAll(cfg.LockPrefix, "/", ":")),
			redis.WithLockTTL(cfg.LockTTL),
		)
		if err != nil {
			_ = client.Close()
			return nil, noop, err
		}
		return locker, func() { _ = client.Close() }, nil
	default:
		return nil, noop, fmt.Errorf("%w: unknown lock backend %q", lifecycle.ErrInvalidConfig, cfg.LockBackend)
	}
}

func newNotifier(cfg Config, log *slog.Logger) (notify.Notifier, error) {
	var sender email.EmailSender
	if cfg.Postmark.Enabled() {
		client, err := postmark.New(cfg.Postmark)
		if err != nil {
			return nil, err
		}
		sender = client
	} else {
		log.Warn("Postmark not configured, failure alerts are written to disk", slog.String("dir", cfg.NotifyDir))
		sender = email.NewDevSender(cfg.NotifyDir)
	}
	return notify.NewEmailNotifier(sender, cfg.NotifyEmail)
}
