package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	AWS      AWSConfig      `yaml:"aws"`
	JWT      JWTConfig      `yaml:"jwt"`
	Webhook  WebhookConfig  `yaml:"webhook"`
	SMTP     SMTPConfig     `yaml:"smtp"`
	Twilio   TwilioConfig   `yaml:"twilio"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int      `yaml:"port"`
	Host           string   `yaml:"host"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
	Migrate  bool   `yaml:"migrate"`
}

// AWSConfig holds object storage configuration
type AWSConfig struct {
	Region        string `yaml:"region"`
	S3Bucket      string `yaml:"s3_bucket"`
	AccessKey     string `yaml:"access_key"`
	SecretKey     string `yaml:"secret_key"`
	Endpoint      string `yaml:"endpoint"`        // S3-compatible providers
	PublicBaseURL string `yaml:"public_base_url"` // CDN in front of the bucket
}

// JWTConfig holds the secret identity-provider session tokens are signed with
type JWTConfig struct {
	Secret string `yaml:"secret"`
}

// WebhookConfig holds the signing secret of identity-provider webhooks
type WebhookConfig struct {
	Secret string `yaml:"secret"`
}

// SMTPConfig holds outbound email configuration. Empty Host disables email.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	TLS      bool   `yaml:"tls"`
}

// TwilioConfig holds outbound SMS configuration. An empty account SID disables SMS.
type TwilioConfig struct {
	AccountSID string `yaml:"account_sid"`
	APIKey     string `yaml:"api_key"` // optional, SK... key used instead of the account SID
	AuthToken  string `yaml:"auth_token"`
	FromNumber string `yaml:"from_number"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads configuration from a YAML file, then applies overrides from
// the environment (and from a .env file when present)
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML configuration and applies environment overrides
func Parse(data []byte) (*Config, error) {
	cfg := Config{
		Server: ServerConfig{Host: "0.0.0.0", Port: 8080},
		SMTP:   SMTPConfig{Port: 587},
		Log:    LogConfig{Level: "info"},
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnv()
	return &cfg, nil
}

func (c *Config) applyEnv() {
	override(&c.Database.URL, "DATABASE_URL")
	override(&c.JWT.Secret, "JWT_SECRET")
	override(&c.Webhook.Secret, "WEBHOOK_SECRET")
	override(&c.AWS.AccessKey, "AWS_ACCESS_KEY_ID")
	override(&c.AWS.SecretKey, "AWS_SECRET_ACCESS_KEY")
	override(&c.AWS.S3Bucket, "S3_BUCKET_NAME")
	override(&c.SMTP.Password, "SMTP_PASSWORD")
	override(&c.Twilio.AuthToken, "TWILIO_AUTH_TOKEN")
}

func override(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

// Validate reports missing settings the server cannot start without
func (c *Config) Validate() error {
	var errs []error
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("jwt.secret is required"))
	}
	if c.Database.URL == "" && c.Database.Host == "" {
		errs = append(errs, errors.New("database.url or database.host is required"))
	}
	if c.AWS.S3Bucket == "" {
		errs = append(errs, errors.New("aws.s3_bucket is required"))
	}
	return errors.Join(errs...)
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
