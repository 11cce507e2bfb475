package letsencrypt

import (
	"errors"
	"strings"

	"github.com/go-acme/lego/v4/acme"
)

var (
	// ErrProvisioning wraps every failure returned by Provision.
	ErrProvisioning = errors.New("certificate provisioning failed")

	// ErrInvalidDomain is returned when the requested domain is empty or malformed.
	ErrInvalidDomain = errors.New("invalid domain name")

	// ErrEmailRequired is returned when the ACME account email is missing.
	ErrEmailRequired = errors.New("email is required for Let's Encrypt account")

	// ErrEmptyCertificate is returned when the CA response lacks a certificate or key.
	ErrEmptyCertificate = errors.New("empty certificate payload received from ACME server")
)

var retryableProblems = map[string]bool{
	"urn:ietf:params:acme:error:rateLimited":    true,
	"urn:ietf:params:acme:error:serverInternal": true,
	"urn:ietf:params:acme:error:badNonce":       true,
}

var retryablePatterns = []string{
	"connection refused",
	"connection reset",
	"network is unreachable",
	"no such host",
	"timeout",
	"time limit exceeded",
	"rate limit",
	"ratelimited",
	"acme: error: 429",
	"acme: error: 5",
	"status code 429",
	"status code 503",
	"http 503",
	"temporary failure",
}

// IsRetryable reports whether a provisioning failure is transient.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var problem *acme.ProblemDetails
	if errors.As(err, &problem) {
		if retryableProblems[problem.Type] {
			return true
		}
		if problem.HTTPStatus == 429 || problem.HTTPStatus >= 500 {
			return true
		}
		return false
	}

	// lego aggregates per-domain failures into plain errors, so fall back to the message
	msg := strings.ToLower(err.Error())
	for _, pattern := range retryablePatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}
