// Package config loads application configuration from a YAML file with
// environment variable overrides.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Database     DatabaseConfig     `yaml:"database"`
	SMS          SMSConfig          `yaml:"sms"`
	SES          SESConfig          `yaml:"ses"`
	Organization OrganizationConfig `yaml:"organization"`
	Activation   ActivationConfig   `yaml:"activation"`
	Validation   ValidationConfig   `yaml:"validation"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host                   string `yaml:"host"`
	Port                   int    `yaml:"port"`
	ShutdownTimeoutSeconds int    `yaml:"shutdown_timeout_seconds"`
}

// Address returns the listen address in host:port form.
func (c ServerConfig) Address() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// ShutdownTimeout returns the graceful shutdown window.
func (c ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// SMSConfig holds SMS gateway client settings.
type SMSConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Sender  string `yaml:"sender"`
}

// SESConfig holds AWS SES credentials and sender identity.
type SESConfig struct {
	AccessKey   string `yaml:"access_key"`
	SecretKey   string `yaml:"secret_key"`
	Region      string `yaml:"region"`
	FromAddress string `yaml:"from_address"`
	FromName    string `yaml:"from_name"`
}

// OrganizationConfig identifies the cooperative in member-facing messages.
type OrganizationConfig struct {
	Name string `yaml:"name"`
}

// ActivationConfig tunes credential delivery and expiry.
type ActivationConfig struct {
	CredentialTTLHours      int `yaml:"credential_ttl_hours"`
	CredentialLength        int `yaml:"credential_length"`
	DispatchWorkers         int `yaml:"dispatch_workers"`
	ExpirySweepIntervalMins int `yaml:"expiry_sweep_interval_minutes"`
}

// CredentialTTL returns the temporary password lifetime.
func (c ActivationConfig) CredentialTTL() time.Duration {
	return time.Duration(c.CredentialTTLHours) * time.Hour
}

// ExpirySweepInterval returns the period between expiry sweeps.
func (c ActivationConfig) ExpirySweepInterval() time.Duration {
	return time.Duration(c.ExpirySweepIntervalMins) * time.Minute
}

// ValidationConfig tunes roster field validation.
type ValidationConfig struct {
	PhonePattern   string `yaml:"phone_pattern"`
	EmailPattern   string `yaml:"email_pattern"`
	MinPhoneDigits int    `yaml:"min_phone_digits"`
}

// Load reads and parses the configuration file. An empty path yields a
// config built entirely from defaults and environment overrides.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	}

	// Set defaults
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ShutdownTimeoutSeconds == 0 {
		cfg.Server.ShutdownTimeoutSeconds = 15
	}
	if cfg.SES.Region == "" {
		cfg.SES.Region = "us-east-1"
	}
	if cfg.Organization.Name == "" {
		cfg.Organization.Name = "Member Cooperative"
	}
	if cfg.Activation.CredentialTTLHours == 0 {
		cfg.Activation.CredentialTTLHours = 24
	}
	if cfg.Activation.CredentialLength == 0 {
		cfg.Activation.CredentialLength = 10
	}
	if cfg.Activation.DispatchWorkers == 0 {
		cfg.Activation.DispatchWorkers = 8
	}
	if cfg.Activation.ExpirySweepIntervalMins == 0 {
		cfg.Activation.ExpirySweepIntervalMins = 15
	}
	if cfg.Validation.MinPhoneDigits == 0 {
		cfg.Validation.MinPhoneDigits = 7
	}

	return &cfg, nil
}

// LoadFromEnv loads configuration with environment variable overrides. A
// .env file, when present, is read first so local secrets stay out of the
// shell environment.
func LoadFromEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("SMS_BASE_URL"); v != "" {
		cfg.SMS.BaseURL = v
	}
	if v := os.Getenv("SMS_API_KEY"); v != "" {
		cfg.SMS.APIKey = v
	}
	if v := os.Getenv("SMS_SENDER"); v != "" {
		cfg.SMS.Sender = v
	}
	if v := os.Getenv("AWS_SES_ACCESS_KEY"); v != "" {
		cfg.SES.AccessKey = v
	}
	if v := os.Getenv("AWS_SES_SECRET_KEY"); v != "" {
		cfg.SES.SecretKey = v
	}
	if v := os.Getenv("AWS_SES_REGION"); v != "" {
		cfg.SES.Region = v
	}
	if v := os.Getenv("SES_FROM_ADDRESS"); v != "" {
		cfg.SES.FromAddress = v
	}
	if v := os.Getenv("SES_FROM_NAME"); v != "" {
		cfg.SES.FromName = v
	}
	if v := os.Getenv("ORGANIZATION_NAME"); v != "" {
		cfg.Organization.Name = v
	}
	if v := os.Getenv("CREDENTIAL_TTL_HOURS"); v != "" {
		if hours, err := strconv.Atoi(v); err == nil {
			cfg.Activation.CredentialTTLHours = hours
		}
	}
	if v := os.Getenv("DISPATCH_WORKERS"); v != "" {
		if workers, err := strconv.Atoi(v); err == nil {
			cfg.Activation.DispatchWorkers = workers
		}
	}

	return cfg, nil
}
