package main

import (
	"time"

	"github.com/dmitrymomot/certkeeper/integration/email/postmark"
	"github.com/dmitrymomot/certkeeper/integration/secretstore/awssm"
	"github.com/dmitrymomot/certkeeper/integration/storage/s3"
)

// Lock backends.
const (
	lockSecretStore = "secretstore"
	lockRedis       = "redis"
	lockNone        = "none"
)

// Config is the process configuration, read from the environment and an optional .env file.
type Config struct {
	SecretsManager awssm.Config
	Archive        s3.Config
	Postmark       postmark.Config

	Domain          string `env:"DOMAIN,required"`
	Email           string `env:"EMAIL,required"`
	CertificateName string `env:"CERTIFICATE_NAME,required"`
	KeyName         string `env:"KEY_NAME,required"`
	ChainName       string `env:"CHAIN_NAME"`
	Staging         string `env:"CERTBOT_STAGING,required"`

	LogLevel  string `env:"LOGLEVEL" envDefault:"DEBUG"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"line"`

	ValidityDays       int           `env:"VALIDITY_DAYS" envDefault:"90"`
	RenewThresholdDays int           `env:"RENEW_THRESHOLD_DAYS" envDefault:"21"`
	CheckInterval      time.Duration `env:"CHECK_INTERVAL" envDefault:"0s"`
	WriteRetries       int           `env:"WRITE_RETRIES" envDefault:"3"`

	HostedZoneID          string        `env:"ROUTE53_HOSTED_ZONE_ID"`
	DNSPropagationTimeout time.Duration `env:"DNS_PROPAGATION_TIMEOUT" envDefault:"2m"`
	DNSResolvers          []string      `env:"DNS_RESOLVERS" envSeparator:","`
	ACMEDirectoryURL      string        `env:"ACME_DIRECTORY_URL"`
	KeyType               string        `env:"KEY_TYPE" envDefault:"4096"`

	LockBackend string        `env:"LOCK_BACKEND" envDefault:"secretstore"`
	LockPrefix  string        `env:"LOCK_PREFIX" envDefault:"certkeeper/lock"`
	LockTTL     time.Duration `env:"LOCK_TTL" envDefault:"15m"`

	NotifyEmail string `env:"NOTIFY_EMAIL"`
	NotifyDir   string `env:"NOTIFY_DEV_DIR" envDefault:"./tmp/emails"`
}
