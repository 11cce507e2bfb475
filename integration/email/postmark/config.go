package postmark

// Config holds Postmark credentials and sender identity.
// SupportEmail is optional and becomes the Reply-To header when set.
type Config struct {
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"SENDER_EMAIL"`
	SupportEmail         string `env:"SUPPORT_EMAIL"`
}

// Enabled reports whether a server token is configured.
func (c Config) Enabled() bool {
	return c.PostmarkServerToken != ""
}
