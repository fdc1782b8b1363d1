package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Port    string `mapstructure:"PORT"`
	GinMode string `mapstructure:"GIN_MODE"`

	// ClientURL is the dashboard origin allowed by CORS on the admin API.
	ClientURL string `mapstructure:"CLIENT_URL"`

	PaystackSecretKey string        `mapstructure:"PAYSTACK_SECRET_KEY"` // API bearer token and webhook HMAC key
	PaystackBaseURL   string        `mapstructure:"PAYSTACK_BASE_URL"`
	PaystackCacheTTL  time.Duration `mapstructure:"PAYSTACK_CACHE_TTL"`

	AirtableAPIKey             string `mapstructure:"AIRTABLE_API_KEY"`
	AirtableBaseID             string `mapstructure:"AIRTABLE_BASE_ID"`
	AirtableBaseURL            string `mapstructure:"AIRTABLE_BASE_URL"`
	AirtableSubscribersTable   string `mapstructure:"AIRTABLE_SUBSCRIBERS_TABLE"`
	AirtableSubscriptionsTable string `mapstructure:"AIRTABLE_SUBSCRIPTIONS_TABLE"`
	AirtableDonationsTable     string `mapstructure:"AIRTABLE_DONATIONS_TABLE"`

	FirebaseProjectID                string `mapstructure:"FIREBASE_PROJECT_ID"`
	GoogleApplicationCredentials     string `mapstructure:"GOOGLE_APPLICATION_CREDENTIALS"`
	FirebaseServiceAccountJSONBase64 string `mapstructure:"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64"`

	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     string `mapstructure:"SMTP_PORT"`
	SMTPUsername string `mapstructure:"SMTP_USERNAME"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
	MailFrom     string `mapstructure:"MAIL_FROM"`

	RedisAddress  string `mapstructure:"REDIS_ADDRESS"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	RabbitMQURL   string `mapstructure:"RABBITMQ_URL"`
	RabbitMQQueue string `mapstructure:"RABBITMQ_QUEUE"`
}

var envKeys = []string{
	"PORT", "GIN_MODE", "CLIENT_URL",
	"PAYSTACK_SECRET_KEY", "PAYSTACK_BASE_URL", "PAYSTACK_CACHE_TTL",
	"AIRTABLE_API_KEY", "AIRTABLE_BASE_ID", "AIRTABLE_BASE_URL",
	"AIRTABLE_SUBSCRIBERS_TABLE", "AIRTABLE_SUBSCRIPTIONS_TABLE", "AIRTABLE_DONATIONS_TABLE",
	"FIREBASE_PROJECT_ID", "GOOGLE_APPLICATION_CREDENTIALS", "FIREBASE_SERVICE_ACCOUNT_JSON_BASE64",
	"SMTP_HOST", "SMTP_PORT", "SMTP_USERNAME", "SMTP_PASSWORD", "MAIL_FROM",
	"REDIS_ADDRESS", "REDIS_PASSWORD", "REDIS_DB",
	"RABBITMQ_URL", "RABBITMQ_QUEUE",
}

// LoadConfig loads configuration from environment variables using Viper.
// Outside release mode a local .env file is read first, if present.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if !strings.EqualFold(v.GetString("GIN_MODE"), "release") {
		// A missing .env is normal in containers.
		_ = godotenv.Load()
	}

	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("PAYSTACK_BASE_URL", "https://api.paystack.co")
	v.SetDefault("PAYSTACK_CACHE_TTL", "60s")
	v.SetDefault("AIRTABLE_BASE_URL", "https://api.airtable.com/v0")
	v.SetDefault("AIRTABLE_SUBSCRIBERS_TABLE", "Subscribers")
	v.SetDefault("AIRTABLE_SUBSCRIPTIONS_TABLE", "Subscriptions")
	v.SetDefault("AIRTABLE_DONATIONS_TABLE", "Donations")
	v.SetDefault("SMTP_PORT", "2525")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("RABBITMQ_QUEUE", "payments.outcomes")

	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, errors.New("failed to bind env " + key + ": " + err.Error())
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.New("failed to unmarshal config: " + err.Error())
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the fields the service cannot start without.
// A missing PAYSTACK_SECRET_KEY is reported by the webhook per request.
func (c *Config) Validate() error {
	if c.AirtableAPIKey == "" {
		return errors.New("AIRTABLE_API_KEY is required")
	}
	if c.AirtableBaseID == "" {
		return errors.New("AIRTABLE_BASE_ID is required")
	}
	return nil
}

// FirebaseEnabled reports whether the admin API and webhook event log can be set up.
func (c *Config) FirebaseEnabled() bool {
	return c.FirebaseProjectID != ""
}

// MailEnabled reports whether donation confirmation mail can be sent.
func (c *Config) MailEnabled() bool {
	return c.SMTPHost != "" && c.MailFrom != ""
}
