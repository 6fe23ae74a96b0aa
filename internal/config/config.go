// Package config loads the application configuration: a YAML file for
// server settings and tunables, environment variables (optionally from a
// .env file) and the system keyring for credentials.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/nhle/mail-triage/internal/credential"
)

// MailConfig holds the IMAP and SMTP server settings.
type MailConfig struct {
	IMAPHost string `mapstructure:"imap_host" yaml:"imap_host"`
	IMAPPort string `mapstructure:"imap_port" yaml:"imap_port"`
	SMTPHost string `mapstructure:"smtp_host" yaml:"smtp_host"`
	SMTPPort string `mapstructure:"smtp_port" yaml:"smtp_port"`

	// TLS selects implicit TLS for IMAP; STARTTLS otherwise. Outbound
	// SMTP always negotiates STARTTLS on the submission port.
	TLS bool `mapstructure:"tls" yaml:"tls"`
}

// AIConfig holds settings for the analysis/drafting service.
type AIConfig struct {
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
	Model   string `mapstructure:"model" yaml:"model"`

	// ThrottleSec is the pause between per-message service calls.
	ThrottleSec int `mapstructure:"throttle_sec" yaml:"throttle_sec"`
}

// AuditConfig holds the audit log and journal locations.
type AuditConfig struct {
	LogPath     string `mapstructure:"log_path" yaml:"log_path"`
	JournalPath string `mapstructure:"journal_path" yaml:"journal_path"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Mail  MailConfig  `mapstructure:"mail" yaml:"mail"`
	AI    AIConfig    `mapstructure:"ai" yaml:"ai"`
	Audit AuditConfig `mapstructure:"audit" yaml:"audit"`
}

// Credentials holds the secrets resolved from the environment or the
// system keyring. They are loaded once at startup and passed by
// reference into each component; nothing mutates them afterward.
type Credentials struct {
	EmailAddress  string
	EmailPassword string
	APIKey        string
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/mailtriage/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "mailtriage", "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Mail: MailConfig{
			IMAPHost: "imap.gmail.com",
			IMAPPort: "993",
			SMTPHost: "smtp.gmail.com",
			SMTPPort: "587",
			TLS:      true,
		},
		AI: AIConfig{
			ThrottleSec: 1,
		},
		Audit: AuditConfig{
			LogPath:     "mailtriage.log",
			JournalPath: "mailtriage.db",
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using
// Viper. If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("mail.imap_host", "imap.gmail.com")
	v.SetDefault("mail.imap_port", "993")
	v.SetDefault("mail.smtp_host", "smtp.gmail.com")
	v.SetDefault("mail.smtp_port", "587")
	v.SetDefault("mail.tls", true)
	v.SetDefault("ai.throttle_sec", 1)
	v.SetDefault("audit.log_path", "mailtriage.log")
	v.SetDefault("audit.journal_path", "mailtriage.db")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// LoadCredentials resolves the mailbox and service credentials.
// Environment variables take precedence (a .env file in the working
// directory is honored); the system keyring is the fallback.
func LoadCredentials() (*Credentials, error) {
	// A missing .env file is fine; explicit env vars still apply.
	_ = godotenv.Load()

	creds := &Credentials{
		EmailAddress:  os.Getenv("EMAIL_ADDRESS"),
		EmailPassword: os.Getenv("EMAIL_PASSWORD"),
		APIKey:        os.Getenv("XAI_API_KEY"),
	}

	if creds.EmailAddress == "" {
		if v, err := credential.Get(credential.KeyEmailAddress); err == nil {
			creds.EmailAddress = v
		}
	}
	if creds.EmailPassword == "" {
		if v, err := credential.Get(credential.KeyEmailPassword); err == nil {
			creds.EmailPassword = v
		}
	}
	if creds.APIKey == "" {
		if v, err := credential.Get(credential.KeyAPIKey); err == nil {
			creds.APIKey = v
		}
	}

	if creds.EmailAddress == "" || creds.EmailPassword == "" {
		return nil, fmt.Errorf(
			"email credentials not set: provide EMAIL_ADDRESS and EMAIL_PASSWORD " +
				"via environment, .env, or the system keyring",
		)
	}
	if creds.APIKey == "" {
		return nil, fmt.Errorf(
			"API key not set: provide XAI_API_KEY via environment, .env, " +
				"or the system keyring",
		)
	}

	return creds, nil
}
