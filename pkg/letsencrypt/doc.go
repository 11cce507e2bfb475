// Package letsencrypt obtains certificates from an ACME CA using the DNS-01
// challenge.
//
// A Provisioner performs one complete issuance per call: it generates a fresh
// account key, registers with the CA, publishes the challenge record through
// the configured DNS provider (Route 53 by default) and returns the issued
// certificate, private key and issuer chain as PEM text.
//
//	p, err := letsencrypt.NewProvisioner(
//	    letsencrypt.WithPropagationTimeout(3*time.Minute),
//	    letsencrypt.WithLogger(log),
//	)
//	if err != nil {
//	    return err
//	}
//
//	material, err := p.Provision(ctx, letsencrypt.Request{
//	    Email:       "admin@example.com",
//	    Domain:      "example.com",
//	    Environment: letsencrypt.EnvironmentStaging,
//	})
//
// Artifacts are materialized in a private temporary directory, read back and
// deleted before Provision returns. Nothing is left on disk, on failure either.
//
// # Environments
//
// EnvironmentStaging uses the Let's Encrypt staging directory, which issues
// untrusted certificates under much higher rate limits. WithCADirectoryURL
// overrides the directory for both environments.
//
// # Errors
//
// Every failure wraps ErrProvisioning. IsRetryable reports whether the CA or
// network problem behind it is worth retrying later (rate limits, server
// errors, timeouts) as opposed to a validation failure that needs operator
// attention.
package letsencrypt
