package lifecycle

import (
	"fmt"

	"github.com/dmitrymomot/certkeeper/core/renewal"
	"github.com/dmitrymomot/certkeeper/pkg/letsencrypt"
)

// Config identifies the domain and the secrets a Coordinator manages.
type Config struct {
	Domain      string
	Email       string
	Environment letsencrypt.Environment

	CertificateName string
	KeyName         string

	// ChainName is optional. When empty the issuer chain is not persisted.
	ChainName string

	Policy renewal.Policy
}

// Validate checks required fields and that secret names do not collide.
func (c Config) Validate() error {
	switch {
	case c.Domain == "":
		return fmt.Errorf("%w: domain is required", ErrInvalidConfig)
	case c.Email == "":
		return fmt.Errorf("%w: email is required", ErrInvalidConfig)
	case c.CertificateName == "":
		return fmt.Errorf("%w: certificate secret name is required", ErrInvalidConfig)
	case c.KeyName == "":
		return fmt.Errorf("%w: key secret name is required", ErrInvalidConfig)
	case c.CertificateName == c.KeyName:
		return fmt.Errorf("%w: certificate and key must use different secrets", ErrInvalidConfig)
	case c.ChainName != "" && (c.ChainName == c.CertificateName || c.ChainName == c.KeyName):
		return fmt.Errorf("%w: chain must use its own secret", ErrInvalidConfig)
	}
	if err := c.Policy.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
