package awssm

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	sm "github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"

	"github.com/dmitrymomot/certkeeper/core/secretstore"
)

// Compile-time check that Store implements secretstore.Store.
var _ secretstore.Store = (*Store)(nil)

// Client defines the Secrets Manager operations used by Store.
type Client interface {
	GetSecretValue(ctx context.Context, params *sm.GetSecretValueInput, optFns ...func(*sm.Options)) (*sm.GetSecretValueOutput, error)
	DescribeSecret(ctx context.Context, params *sm.DescribeSecretInput, optFns ...func(*sm.Options)) (*sm.DescribeSecretOutput, error)
	CreateSecret(ctx context.Context, params *sm.CreateSecretInput, optFns ...func(*sm.Options)) (*sm.CreateSecretOutput, error)
	UpdateSecret(ctx context.Context, params *sm.UpdateSecretInput, optFns ...func(*sm.Options)) (*sm.UpdateSecretOutput, error)
}

// Store is a secretstore.Store backed by AWS Secrets Manager.
type Store struct {
	client   Client
	kmsKeyID string
	tags     []types.Tag
}

// Option configures Store.
type Option func(*options)

type options struct {
	client        Client
	httpClient    *http.Client
	configOptions []func(*config.LoadOptions) error
	tags          map[string]string
}

// WithClient sets a pre-configured client. Primarily used for testing.
func WithClient(client Client) Option {
	return func(o *options) {
		o.client = client
	}
}

// WithHTTPClient sets a custom HTTP client for Secrets Manager requests.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithConfigOption adds a custom AWS config option.
func WithConfigOption(option func(*config.LoadOptions) error) Option {
	return func(o *options) {
		o.configOptions = append(o.configOptions, option)
	}
}

// WithTags adds tags to secrets created by this store.
func WithTags(tags map[string]string) Option {
	return func(o *options) {
		if o.tags == nil {
			o.tags = make(map[string]string, len(tags))
		}
		for k, v := range tags {
			o.tags[k] = v
		}
	}
}

// New creates a Store. Without WithClient it loads the default AWS config.
func New(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	client := o.client
	if client == nil {
		var awsOptions []func(*config.LoadOptions) error
		if cfg.Region != "" {
			awsOptions = append(awsOptions, config.WithRegion(cfg.Region))
		}

		// Static credentials when provided, IAM role / env chain otherwise
		if cfg.AccessKeyID != "" && cfg.SecretKey != "" {
			awsOptions = append(awsOptions,
				config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
					cfg.AccessKeyID,
					cfg.SecretKey,
					"",
				)),
			)
		}

		if o.httpClient != nil {
			awsOptions = append(awsOptions, config.WithHTTPClient(o.httpClient))
		}

		awsOptions = append(awsOptions, o.configOptions...)

		awsConfig, err := config.LoadDefaultConfig(ctx, awsOptions...)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to load AWS config: %v", secretstore.ErrInvalidConfig, err)
		}
		if awsConfig.Region == "" {
			return nil, fmt.Errorf("%w: AWS region is required", secretstore.ErrInvalidConfig)
		}

		client = sm.NewFromConfig(awsConfig, func(opts *sm.Options) {
			if cfg.Endpoint != "" {
				opts.BaseEndpoint = aws.String(cfg.Endpoint)
			}
		})
	}

	s := &Store{
		client:   client,
		kmsKeyID: cfg.KMSKeyID,
	}
	for k, v := range o.tags {
		s.tags = append(s.tags, types.Tag{Key: aws.String(k), Value: aws.String(v)})
	}
	return s, nil
}

// GetMetadata returns creation timestamps for the secret and its current version.
func (s *Store) GetMetadata(ctx context.Context, name string) (*secretstore.Metadata, error) {
	if name == "" {
		return nil, secretstore.ErrInvalidName
	}

	value, err := s.client.GetSecretValue(ctx, &sm.GetSecretValueInput{SecretId: aws.String(name)})
	if err != nil {
		return nil, classifyError(err, "get secret value")
	}

	meta := &secretstore.Metadata{
		Name:             name,
		VersionCreatedAt: aws.ToTime(value.CreatedDate),
	}

	desc, err := s.client.DescribeSecret(ctx, &sm.DescribeSecretInput{SecretId: aws.String(name)})
	if err != nil {
		return nil, classifyError(err, "describe secret")
	}
	meta.CreatedAt = aws.ToTime(desc.CreatedDate)
	if meta.VersionCreatedAt.IsZero() {
		meta.VersionCreatedAt = meta.CreatedAt
	}

	return meta, nil
}

// GetValue returns the current string value of the secret.
func (s *Store) GetValue(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "", secretstore.ErrInvalidName
	}

	out, err := s.client.GetSecretValue(ctx, &sm.GetSecretValueInput{SecretId: aws.String(name)})
	if err != nil {
		return "", classifyError(err, "get secret value")
	}
	if out.SecretString == nil {
		return "", fmt.Errorf("secret %s holds binary data", name)
	}
	return *out.SecretString, nil
}

// Create creates a new secret.
func (s *Store) Create(ctx context.Context, name, value string) error {
	if name == "" {
		return secretstore.ErrInvalidName
	}

	input := &sm.CreateSecretInput{
		Name:         aws.String(name),
		SecretString: aws.String(value),
		Tags:         s.tags,
	}
	if s.kmsKeyID != "" {
		input.KmsKeyId = aws.String(s.kmsKeyID)
	}

	if _, err := s.client.CreateSecret(ctx, input); err != nil {
		return classifyError(err, "create secret")
	}
	return nil
}

// Update writes a new version of an existing secret.
func (s *Store) Update(ctx context.Context, name, value string) error {
	if name == "" {
		return secretstore.ErrInvalidName
	}

	_, err := s.client.UpdateSecret(ctx, &sm.UpdateSecretInput{
		SecretId:     aws.String(name),
		SecretString: aws.String(value),
	})
	if err != nil {
		return classifyError(err, "update secret")
	}
	return nil
}
