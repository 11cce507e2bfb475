package awssm

// Config contains configuration for the Secrets Manager client.
type Config struct {
	Region      string `env:"AWS_REGION"`
	AccessKeyID string `env:"AWS_ACCESS_KEY_ID"`
	SecretKey   string `env:"AWS_SECRET_ACCESS_KEY"`
	Endpoint    string `env:"SECRETS_MANAGER_ENDPOINT"` // For LocalStack and similar
	KMSKeyID    string `env:"SECRETS_KMS_KEY_ID"`       // Applied to secrets created by this client
}
