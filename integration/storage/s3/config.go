package s3

// Config contains configuration for the certificate archive.
// Endpoint and ForcePathStyle are for S3-compatible services like MinIO.
type Config struct {
	Bucket         string `env:"ARCHIVE_BUCKET"`
	Region         string `env:"AWS_REGION"`
	Prefix         string `env:"ARCHIVE_PREFIX" envDefault:"certificates"`
	AccessKeyID    string `env:"AWS_ACCESS_KEY_ID"`
	SecretKey      string `env:"AWS_SECRET_ACCESS_KEY"`
	Endpoint       string `env:"ARCHIVE_ENDPOINT"`
	ForcePathStyle bool   `env:"ARCHIVE_FORCE_PATH_STYLE"`
}

// Enabled reports whether an archive bucket is configured.
func (c Config) Enabled() bool {
	return c.Bucket != ""
}
