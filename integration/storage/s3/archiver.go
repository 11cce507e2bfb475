package s3

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	s3aws "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

const pemContentType = "application/x-pem-file"

// S3Client defines the S3 operations used by Archiver.
type S3Client interface {
	PutObject(ctx context.Context, params *s3aws.PutObjectInput, optFns ...func(*s3aws.Options)) (*s3aws.PutObjectOutput, error)
}

// Archiver uploads public certificate material to S3.
type Archiver struct {
	client        S3Client
	bucket        string
	prefix        string
	uploadTimeout time.Duration
}

// Option configures Archiver.
type Option func(*options)

type options struct {
	httpClient      *http.Client
	s3Client        S3Client
	s3ConfigOptions []func(*config.LoadOptions) error
	s3ClientOptions []func(*s3aws.Options)
	uploadTimeout   time.Duration
}

// WithS3Client sets a pre-configured S3 client. Primarily used for testing.
func WithS3Client(client S3Client) Option {
	return func(o *options) {
		o.s3Client = client
	}
}

// WithHTTPClient sets a custom HTTP client for S3 requests.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithS3ConfigOption adds a custom AWS config option.
func WithS3ConfigOption(option func(*config.LoadOptions) error) Option {
	return func(o *options) {
		o.s3ConfigOptions = append(o.s3ConfigOptions, option)
	}
}

// WithS3ClientOption adds a custom S3 client option.
func WithS3ClientOption(option func(*s3aws.Options)) Option {
	return func(o *options) {
		o.s3ClientOptions = append(o.s3ClientOptions, option)
	}
}

// WithUploadTimeout bounds each upload. Without it the caller's deadline applies.
func WithUploadTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.uploadTimeout = timeout
	}
}

// New creates an Archiver.
func New(ctx context.Context, cfg Config, opts ...Option) (*Archiver, error) {
	if cfg.Bucket == "" || (cfg.Region == "" && cfg.Endpoint == "") {
		return nil, ErrInvalidConfig
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	client := o.s3Client
	if client == nil {
		awsOptions := []func(*config.LoadOptions) error{}
		if cfg.Region != "" {
			awsOptions = append(awsOptions, config.WithRegion(cfg.Region))
		}

		// Static credentials if provided, default credential chain otherwise
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

		awsOptions = append(awsOptions, o.s3ConfigOptions...)

		awsConfig, err := config.LoadDefaultConfig(ctx, awsOptions...)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}

		client = s3aws.NewFromConfig(awsConfig, func(so *s3aws.Options) {
			if cfg.Endpoint != "" {
				so.BaseEndpoint = aws.String(cfg.Endpoint)
			}
			so.UsePathStyle = cfg.ForcePathStyle

			for _, opt := range o.s3ClientOptions {
				opt(so)
			}
		})
	}

	return &Archiver{
		client:        client,
		bucket:        cfg.Bucket,
		prefix:        strings.Trim(cfg.Prefix, "/"),
		uploadTimeout: o.uploadTimeout,
	}, nil
}

// Key returns the object key for file under domain.
func (a *Archiver) Key(domain, file string) string {
	return path.Join(a.prefix, domain, file)
}

// Archive uploads cert.pem, chain.pem and fullchain.pem for domain.
func (a *Archiver) Archive(ctx context.Context, domain, certificate, chain string) error {
	if strings.TrimSpace(domain) == "" || strings.ContainsAny(domain, "/\\") {
		return ErrInvalidDomain
	}
	if strings.TrimSpace(certificate) == "" {
		return ErrEmptyCertificate
	}

	objects := []struct {
		name string
		body string
	}{
		{"cert.pem", certificate},
		{"chain.pem", chain},
		{"fullchain.pem", fullChain(certificate, chain)},
	}

	for _, obj := range objects {
		if obj.body == "" {
			continue
		}
		if err := a.put(ctx, a.Key(domain, obj.name), obj.body); err != nil {
			return err
		}
	}
	return nil
}

func (a *Archiver) put(ctx context.Context, key, body string) error {
	if a.uploadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.uploadTimeout)
		defer cancel()
	}

	_, err := a.client.PutObject(ctx, &s3aws.PutObjectInput{
		Bucket:               aws.String(a.bucket),
		Key:                  aws.String(key),
		Body:                 strings.NewReader(body),
		ContentLength:        aws.Int64(int64(len(body))),
		ContentType:          aws.String(pemContentType),
		ServerSideEncryption: types.ServerSideEncryptionAes256,
	})
	return classifyS3Error(err, "put "+key)
}

func fullChain(certificate, chain string) string {
	if chain == "" {
		return certificate
	}
	if !strings.HasSuffix(certificate, "\n") {
		certificate += "\n"
	}
	return certificate + chain
}
