package letsencrypt

import (
	"context"
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-acme/lego/v4/certcrypto"
	"github.com/go-acme/lego/v4/certificate"
	"github.com/go-acme/lego/v4/challenge"
	"github.com/go-acme/lego/v4/challenge/dns01"
	"github.com/go-acme/lego/v4/lego"
	"github.com/go-acme/lego/v4/registration"

	"github.com/dmitrymomot/certkeeper/core/logger"
)

// Environment selects the CA directory.
type Environment string

const (
	EnvironmentProduction Environment = "production"
	EnvironmentStaging    Environment = "staging"
)

// EnvironmentFromFlag maps a boolean-ish flag to an environment.
// Only the exact string "true" selects staging.
func EnvironmentFromFlag(flag string) Environment {
	if flag == "true" {
		return EnvironmentStaging
	}
	return EnvironmentProduction
}

// DirectoryURL returns the Let's Encrypt directory for env.
func (env Environment) DirectoryURL() string {
	if env == EnvironmentStaging {
		return lego.LEDirectoryStaging
	}
	return lego.LEDirectoryProduction
}

// Request describes a single issuance.
type Request struct {
	Email       string
	Domain      string
	Environment Environment
}

// Validate checks the request fields.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Email) == "" {
		return ErrEmailRequired
	}
	domain := strings.TrimSpace(r.Domain)
	if domain == "" || strings.ContainsAny(domain, " /:") || strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return fmt.Errorf("%w: %q", ErrInvalidDomain, r.Domain)
	}
	return nil
}

// Material is the PEM-encoded output of one issuance.
type Material struct {
	Certificate      string
	PrivateKey       string
	CertificateChain string
}

// Provisioner issues certificates via ACME DNS-01.
type Provisioner struct {
	cfg                config
	clientFactory      clientFactory
	dnsProviderFactory func(config) (challenge.Provider, error)
	accountKeyMaker    func() (crypto.PrivateKey, error)
}

// NewProvisioner creates a Provisioner.
func NewProvisioner(opts ...Option) (*Provisioner, error) {
	cfg := config{
		certificateKeyType: certcrypto.RSA4096,
		workDir:            os.TempDir(),
		logger:             logger.Nop(),
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if cfg.workDir == "" {
		cfg.workDir = os.TempDir()
	}

	return &Provisioner{
		cfg:                cfg,
		clientFactory:      defaultClientFactory,
		dnsProviderFactory: defaultDNSProvider,
		accountKeyMaker: func() (crypto.PrivateKey, error) {
			return ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		},
	}, nil
}

// Provision obtains a certificate for req.Domain. It blocks for the duration of
// the DNS propagation wait and the CA round-trips.
func (p *Provisioner) Provision(ctx context.Context, req Request) (*Material, error) {
	material, err := p.provision(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProvisioning, err)
	}
	return material, nil
}

func (p *Provisioner) provision(ctx context.Context, req Request) (*Material, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	log := p.cfg.logger.With(logger.Domain(req.Domain))
	if req.Environment == EnvironmentStaging {
		log.InfoContext(ctx, "Using the Letsencrypt staging environment")
	}

	accountKey, err := p.accountKeyMaker()
	if err != nil {
		return nil, fmt.Errorf("generate account key: %w", err)
	}

	user := &accountUser{
		email: strings.TrimSpace(req.Email),
		key:   accountKey,
	}

	legoCfg := lego.NewConfig(user)
	legoCfg.CADirURL = req.Environment.DirectoryURL()
	if p.cfg.caDirURL != "" {
		legoCfg.CADirURL = p.cfg.caDirURL
	}
	legoCfg.Certificate.KeyType = p.cfg.certificateKeyType

	client, err := p.clientFactory(legoCfg)
	if err != nil {
		return nil, fmt.Errorf("create acme client: %w", err)
	}

	provider := p.cfg.dnsProvider
	if provider == nil {
		provider, err = p.dnsProviderFactory(p.cfg)
		if err != nil {
			return nil, fmt.Errorf("create dns provider: %w", err)
		}
	}

	var dnsOpts []dns01.ChallengeOption
	if len(p.cfg.nameservers) > 0 {
		dnsOpts = append(dnsOpts, dns01.AddRecursiveNameservers(dns01.ParseNameservers(p.cfg.nameservers)))
	}
	if err := client.SetDNS01Provider(provider, dnsOpts...); err != nil {
		return nil, fmt.Errorf("configure dns-01 provider: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reg, err := client.Register(registration.RegisterOptions{TermsOfServiceAgreed: true})
	if err != nil {
		return nil, fmt.Errorf("register account: %w", err)
	}
	user.registration = reg

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	log.InfoContext(ctx, "Start provisioning certificate", slog.String("ca", legoCfg.CADirURL))
	certRes, err := client.Obtain(certificate.ObtainRequest{
		Domains: []string{strings.TrimSpace(req.Domain)},
		Bundle:  false,
	})
	if err != nil {
		return nil, fmt.Errorf("obtain certificate: %w", err)
	}

	return p.materialize(certRes)
}

// materialize writes the artifacts to a private temp dir and reads them back,
// deleting each file as it goes. The directory is removed on every path.
func (p *Provisioner) materialize(certRes *certificate.Resource) (*Material, error) {
	if certRes == nil {
		return nil, fmt.Errorf("%w: certificate resource is nil", ErrEmptyCertificate)
	}

	if err := os.MkdirAll(p.cfg.workDir, 0o700); err != nil {
		return nil, fmt.Errorf("ensure work directory: %w", err)
	}
	dir, err := os.MkdirTemp(p.cfg.workDir, "certkeeper-*")
	if err != nil {
		return nil, fmt.Errorf("create work directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	paths, err := writeArtifacts(dir, certRes)
	if err != nil {
		return nil, err
	}

	var m Material
	if m.Certificate, err = readAndRemove(paths.certificate); err != nil {
		return nil, err
	}
	if m.PrivateKey, err = readAndRemove(paths.privateKey); err != nil {
		return nil, err
	}
	if paths.chain != "" {
		if m.CertificateChain, err = readAndRemove(paths.chain); err != nil {
			return nil, err
		}
	}

	return &m, nil
}

type artifactPaths struct {
	certificate string
	privateKey  string
	chain       string
}

func writeArtifacts(dir string, certRes *certificate.Resource) (artifactPaths, error) {
	paths := artifactPaths{
		certificate: filepath.Join(dir, "cert.pem"),
		privateKey:  filepath.Join(dir, "privkey.pem"),
	}

	if len(certRes.PrivateKey) == 0 {
		return paths, fmt.Errorf("%w: missing private key", ErrEmptyCertificate)
	}
	if err := os.WriteFile(paths.privateKey, certRes.PrivateKey, 0o600); err != nil {
		return paths, fmt.Errorf("write private key: %w", err)
	}

	if len(certRes.Certificate) == 0 {
		return paths, fmt.Errorf("%w: missing certificate", ErrEmptyCertificate)
	}
	if err := os.WriteFile(paths.certificate, certRes.Certificate, 0o600); err != nil {
		return paths, fmt.Errorf("write certificate: %w", err)
	}

	if len(certRes.IssuerCertificate) > 0 {
		paths.chain = filepath.Join(dir, "chain.pem")
		if err := os.WriteFile(paths.chain, certRes.IssuerCertificate, 0o600); err != nil {
			return paths, fmt.Errorf("write issuer certificate: %w", err)
		}
	}

	return paths, nil
}

func readAndRemove(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	data, readErr := io.ReadAll(f)
	_ = f.Close()
	if rmErr := os.Remove(path); rmErr != nil && readErr == nil {
		return "", fmt.Errorf("remove %s: %w", filepath.Base(path), rmErr)
	}
	if readErr != nil {
		return "", fmt.Errorf("read %s: %w", filepath.Base(path), readErr)
	}
	return string(data), nil
}

type accountUser struct {
	email        string
	registration *registration.Resource
	key          crypto.PrivateKey
}

func (u *accountUser) GetEmail() string {
	return u.email
}

func (u *accountUser) GetRegistration() *registration.Resource {
	return u.registration
}

func (u *accountUser) GetPrivateKey() crypto.PrivateKey {
	return u.key
}
