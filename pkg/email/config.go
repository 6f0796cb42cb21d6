package email

// Config holds provider settings. Tokens are only required when Postmark is
// the active provider.
type Config struct {
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"SENDER_EMAIL" envDefault:"noreply@notifyhub.local"`
	SupportEmail         string `env:"SUPPORT_EMAIL"`
	OutputDir            string `env:"EMAIL_OUTPUT_DIR" envDefault:"./tmp/emails"` // OutputDir is used by FileSender.
}
