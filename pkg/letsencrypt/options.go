package letsencrypt

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-acme/lego/v4/certcrypto"
	"github.com/go-acme/lego/v4/challenge"
)

// Option configures the provisioner.
type Option func(*config) error

type config struct {
	caDirURL           string
	certificateKeyType certcrypto.KeyType
	workDir            string
	propagationTimeout time.Duration
	pollingInterval    time.Duration
	hostedZoneID       string
	nameservers        []string
	dnsProvider        challenge.Provider
	logger             *slog.Logger
}

// WithCADirectoryURL overrides the ACME directory URL for every environment.
func WithCADirectoryURL(url string) Option {
	return func(cfg *config) error {
		cfg.caDirURL = strings.TrimSpace(url)
		return nil
	}
}

// WithCertificateKeyType overrides the key type used for the issued certificate's private key.
// Defaults to RSA 4096.
func WithCertificateKeyType(keyType certcrypto.KeyType) Option {
	return func(cfg *config) error {
		if keyType != "" {
			cfg.certificateKeyType = keyType
		}
		return nil
	}
}

// ParseKeyType maps a KEY_TYPE value ("2048", "4096", "P256", "ec384"...) to a lego key type.
func ParseKeyType(s string) (certcrypto.KeyType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "4096", "RSA4096":
		return certcrypto.RSA4096, nil
	case "2048", "RSA2048":
		return certcrypto.RSA2048, nil
	case "3072", "RSA3072":
		return certcrypto.RSA3072, nil
	case "8192", "RSA8192":
		return certcrypto.RSA8192, nil
	case "P256", "EC256":
		return certcrypto.EC256, nil
	case "P384", "EC384":
		return certcrypto.EC384, nil
	default:
		return "", fmt.Errorf("unsupported key type %q", s)
	}
}

// WithWorkDir sets the parent of the per-call temporary directory. Defaults to os.TempDir().
func WithWorkDir(dir string) Option {
	return func(cfg *config) error {
		cfg.workDir = strings.TrimSpace(dir)
		return nil
	}
}

// WithPropagationTimeout bounds how long to wait for the challenge record to propagate.
func WithPropagationTimeout(d time.Duration) Option {
	return func(cfg *config) error {
		if d < 0 {
			return errors.New("propagation timeout cannot be negative")
		}
		cfg.propagationTimeout = d
		return nil
	}
}

// WithPollingInterval sets how often propagation is checked.
func WithPollingInterval(d time.Duration) Option {
	return func(cfg *config) error {
		if d < 0 {
			return errors.New("polling interval cannot be negative")
		}
		cfg.pollingInterval = d
		return nil
	}
}

// WithHostedZoneID pins the Route 53 hosted zone instead of discovering it.
func WithHostedZoneID(id string) Option {
	return func(cfg *config) error {
		cfg.hostedZoneID = strings.TrimSpace(id)
		return nil
	}
}

// WithRecursiveNameservers sets the resolvers used for propagation checks (host:port).
func WithRecursiveNameservers(servers ...string) Option {
	return func(cfg *config) error {
		for _, s := range servers {
			if s = strings.TrimSpace(s); s != "" {
				cfg.nameservers = append(cfg.nameservers, s)
			}
		}
		return nil
	}
}

// WithDNSProvider replaces the Route 53 provider with any lego DNS-01 provider.
func WithDNSProvider(p challenge.Provider) Option {
	return func(cfg *config) error {
		if p == nil {
			return errors.New("dns provider cannot be nil")
		}
		cfg.dnsProvider = p
		return nil
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *config) error {
		if l != nil {
			cfg.logger = l
		}
		return nil
	}
}
