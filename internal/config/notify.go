package config

type Notify struct {
	WebhookURL string `env:"WEBHOOK_URL,expand"`
}
