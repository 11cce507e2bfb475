package letsencrypt

import (
	"github.com/go-acme/lego/v4/certificate"
	"github.com/go-acme/lego/v4/challenge"
	"github.com/go-acme/lego/v4/challenge/dns01"
	"github.com/go-acme/lego/v4/lego"
	"github.com/go-acme/lego/v4/providers/dns/route53"
	"github.com/go-acme/lego/v4/registration"
)

type clientFactory func(*lego.Config) (acmeClient, error)

type acmeClient interface {
	Register(options registration.RegisterOptions) (*registration.Resource, error)
	SetDNS01Provider(provider challenge.Provider, opts ...dns01.ChallengeOption) error
	Obtain(request certificate.ObtainRequest) (*certificate.Resource, error)
}

func defaultClientFactory(cfg *lego.Config) (acmeClient, error) {
	client, err := lego.NewClient(cfg)
	if err != nil {
		return nil, err
	}

	return &legoClientAdapter{client: client}, nil
}

type legoClientAdapter struct {
	client *lego.Client
}

func (l *legoClientAdapter) Register(options registration.RegisterOptions) (*registration.Resource, error) {
	return l.client.Registration.Register(options)
}

func (l *legoClientAdapter) SetDNS01Provider(provider challenge.Provider, opts ...dns01.ChallengeOption) error {
	return l.client.Challenge.SetDNS01Provider(provider, opts...)
}

func (l *legoClientAdapter) Obtain(request certificate.ObtainRequest) (*certificate.Resource, error) {
	return l.client.Certificate.Obtain(request)
}

// defaultDNSProvider builds lego's Route 53 provider. Credentials and region
// come from the standard AWS environment.
func defaultDNSProvider(cfg config) (challenge.Provider, error) {
	r53 := route53.NewDefaultConfig()
	if cfg.propagationTimeout > 0 {
		r53.PropagationTimeout = cfg.propagationTimeout
	}
	if cfg.pollingInterval > 0 {
		r53.PollingInterval = cfg.pollingInterval
	}
	if cfg.hostedZoneID != "" {
		r53.HostedZoneID = cfg.hostedZoneID
	}
	return route53.NewDNSProviderConfig(r53)
}
