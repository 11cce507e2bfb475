package letsencrypt

import (
	"context"
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/go-acme/lego/v4/acme"
	"github.com/go-acme/lego/v4/certcrypto"
	"github.com/go-acme/lego/v4/certificate"
	"github.com/go-acme/lego/v4/challenge"
	"github.com/go-acme/lego/v4/challenge/dns01"
	"github.com/go-acme/lego/v4/lego"
	"github.com/go-acme/lego/v4/registration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDNSProvider struct{}

func (stubDNSProvider) Present(domain, token, keyAuth string) error { return nil }
func (stubDNSProvider) CleanUp(domain, token, keyAuth string) error { return nil }

type stubClient struct {
	providerConfigured bool
	registered         bool
	lastRequest        certificate.ObtainRequest
	resource           *certificate.Resource
	obtainErr          error
}

func (s *stubClient) Register(registration.RegisterOptions) (*registration.Resource, error) {
	s.registered = true
	return &registration.Resource{}, nil
}

func (s *stubClient) SetDNS01Provider(challenge.Provider, ...dns01.ChallengeOption) error {
	s.providerConfigured = true
	return nil
}

func (s *stubClient) Obtain(req certificate.ObtainRequest) (*certificate.Resource, error) {
	s.lastRequest = req
	if s.obtainErr != nil {
		return nil, s.obtainErr
	}
	if s.resource != nil {
		return s.resource, nil
	}
	return &certificate.Resource{
		Domain:            req.Domains[0],
		Certificate:       []byte("cert-data\n"),
		PrivateKey:        []byte("key-data\n"),
		IssuerCertificate: []byte("issuer-data\n"),
	}, nil
}

func newTestProvisioner(t *testing.T, stub *stubClient, opts ...Option) (*Provisioner, *lego.Config, string) {
	t.Helper()

	workDir := t.TempDir()
	p, err := NewProvisioner(append([]Option{WithWorkDir(workDir)}, opts...)...)
	require.NoError(t, err)

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	captured := &lego.Config{}
	p.clientFactory = func(cfg *lego.Config) (acmeClient, error) {
		*captured = *cfg
		return stub, nil
	}
	p.dnsProviderFactory = func(config) (challenge.Provider, error) {
		return stubDNSProvider{}, nil
	}
	p.accountKeyMaker = func() (crypto.PrivateKey, error) {
		return key, nil
	}

	return p, captured, workDir
}

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "expected no leftover artifacts in %s", dir)
}

func TestProvisionReturnsMaterial(t *testing.T) {
	stub := &stubClient{}
	p, cfg, workDir := newTestProvisioner(t, stub)

	m, err := p.Provision(context.Background(), Request{
		Email:       "admin@example.com",
		Domain:      "example.com",
		Environment: EnvironmentProduction,
	})
	require.NoError(t, err)

	assert.True(t, stub.providerConfigured, "expected dns-01 provider to be configured")
	assert.True(t, stub.registered, "expected ACME registration to occur")
	assert.Equal(t, []string{"example.com"}, stub.lastRequest.Domains)
	assert.False(t, stub.lastRequest.Bundle)

	assert.Equal(t, "cert-data\n", m.Certificate)
	assert.Equal(t, "key-data\n", m.PrivateKey)
	assert.Equal(t, "issuer-data\n", m.CertificateChain)

	assert.Equal(t, lego.LEDirectoryProduction, cfg.CADirURL)
	assert.Equal(t, certcrypto.RSA4096, cfg.Certificate.KeyType)

	assertEmptyDir(t, workDir)
}

func TestProvisionStagingDirectory(t *testing.T) {
	p, cfg, _ := newTestProvisioner(t, &stubClient{})

	_, err := p.Provision(context.Background(), Request{
		Email:       "admin@example.com",
		Domain:      "example.com",
		Environment: EnvironmentFromFlag("true"),
	})
	require.NoError(t, err)
	assert.Equal(t, lego.LEDirectoryStaging, cfg.CADirURL)
}

func TestProvisionDirectoryOverride(t *testing.T) {
	p, cfg, _ := newTestProvisioner(t, &stubClient{},
		WithCADirectoryURL("https://ca.example.test/directory"),
		WithCertificateKeyType(certcrypto.EC256),
	)

	_, err := p.Provision(context.Background(), Request{
		Email:       "admin@example.com",
		Domain:      "example.com",
		Environment: EnvironmentStaging,
	})
	require.NoError(t, err)
	assert.Equal(t, "https://ca.example.test/directory", cfg.CADirURL)
	assert.Equal(t, certcrypto.EC256, cfg.Certificate.KeyType)
}

func TestProvisionWithoutChain(t *testing.T) {
	stub := &stubClient{resource: &certificate.Resource{
		Certificate: []byte("cert"),
		PrivateKey:  []byte("key"),
	}}
	p, _, workDir := newTestProvisioner(t, stub)

	m, err := p.Provision(context.Background(), Request{Email: "a@example.com", Domain: "example.com"})
	require.NoError(t, err)
	assert.Empty(t, m.CertificateChain)
	assertEmptyDir(t, workDir)
}

func TestProvisionCleansUpPartialArtifacts(t *testing.T) {
	// key is written before the missing certificate is detected
	stub := &stubClient{resource: &certificate.Resource{PrivateKey: []byte("key")}}
	p, _, workDir := newTestProvisioner(t, stub)

	m, err := p.Provision(context.Background(), Request{Email: "a@example.com", Domain: "example.com"})
	require.Error(t, err)
	assert.Nil(t, m)
	assert.ErrorIs(t, err, ErrProvisioning)
	assert.ErrorIs(t, err, ErrEmptyCertificate)

	assertEmptyDir(t, workDir)
}

func TestProvisionObtainFailure(t *testing.T) {
	stub := &stubClient{obtainErr: errors.New("acme: error: 403 :: urn:ietf:params:acme:error:unauthorized")}
	p, _, workDir := newTestProvisioner(t, stub)

	_, err := p.Provision(context.Background(), Request{Email: "a@example.com", Domain: "example.com"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProvisioning)
	assert.False(t, IsRetryable(err))

	assertEmptyDir(t, workDir)
}

func TestProvisionCanceledContext(t *testing.T) {
	stub := &stubClient{}
	p, _, _ := newTestProvisioner(t, stub)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Provision(ctx, Request{Email: "a@example.com", Domain: "example.com"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, stub.registered)
}

func TestRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		wantErr error
	}{
		{"valid", Request{Email: "a@example.com", Domain: "example.com"}, nil},
		{"wildcard", Request{Email: "a@example.com", Domain: "*.example.com"}, nil},
		{"missing email", Request{Domain: "example.com"}, ErrEmailRequired},
		{"missing domain", Request{Email: "a@example.com"}, ErrInvalidDomain},
		{"domain with scheme", Request{Email: "a@example.com", Domain: "https://example.com"}, ErrInvalidDomain},
		{"trailing dot", Request{Email: "a@example.com", Domain: "example.com."}, ErrInvalidDomain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNewProvisionerRejectsBadOptions(t *testing.T) {
	_, err := NewProvisioner(WithPropagationTimeout(-1))
	assert.Error(t, err)

	_, err = NewProvisioner(WithDNSProvider(nil))
	assert.Error(t, err)
}

func TestEnvironmentFromFlag(t *testing.T) {
	assert.Equal(t, EnvironmentStaging, EnvironmentFromFlag("true"))
	assert.Equal(t, EnvironmentProduction, EnvironmentFromFlag("True"))
	assert.Equal(t, EnvironmentProduction, EnvironmentFromFlag("1"))
	assert.Equal(t, EnvironmentProduction, EnvironmentFromFlag(""))
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"rate limited problem", &acme.ProblemDetails{Type: "urn:ietf:params:acme:error:rateLimited", HTTPStatus: 429}, true},
		{"server error problem", &acme.ProblemDetails{Type: "urn:ietf:params:acme:error:serverInternal", HTTPStatus: 500}, true},
		{"unauthorized problem", &acme.ProblemDetails{Type: "urn:ietf:params:acme:error:unauthorized", HTTPStatus: 403}, false},
		{"wrapped problem", fmt.Errorf("%w: %w", ErrProvisioning, &acme.ProblemDetails{HTTPStatus: 503}), true},
		{"propagation timeout", errors.New("time limit exceeded: last error: NXDOMAIN"), true},
		{"dns failure", errors.New("dial tcp: lookup acme-v02.api.letsencrypt.org: no such host"), true},
		{"caa mismatch", errors.New("acme: error: 403 :: urn:ietf:params:acme:error:caa"), false},
		{"flattened rate limit", errors.New("example.com: acme: error: 429 :: POST :: https://acme/new-order"), true},
		{"flattened server error", errors.New("example.com: acme: error: 503 :: POST :: https://acme/finalize"), true},
		{"digits in zone id", errors.New("route53: zone Z1429503ABC: AccessDenied"), false},
		{"digits in port", errors.New("dial tcp 10.0.0.1:5030: permission denied"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestParseKeyType(t *testing.T) {
	t.Parallel()

	tests := map[string]certcrypto.KeyType{
		"":        certcrypto.RSA4096,
		"4096":    certcrypto.RSA4096,
		"2048":    certcrypto.RSA2048,
		"rsa3072": certcrypto.RSA3072,
		"8192":    certcrypto.RSA8192,
		"P256":    certcrypto.EC256,
		"ec384":   certcrypto.EC384,
	}
	for in, want := range tests {
		got, err := ParseKeyType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseKeyType("1024")
	require.Error(t, err)
}
