// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	AWS          AWSConfig
	Budget       BudgetConfig
	Jobs         JobsConfig
	Report       ReportConfig
	Logging      LoggingConfig
	Notification NotificationConfig
	DemoMode     bool
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

// AWSConfig holds AWS provider settings.
type AWSConfig struct {
	Enabled       bool
	Region        string
	AccessKeyID   string
	SecretKey     string
	AssumeRoleARN string
	ExternalID    string
}

// BudgetConfig holds the default budget thresholds and the optional path to
// an HCL policy file that overrides them per team.
type BudgetConfig struct {
	WarningLimit float64
	MaximumLimit float64
	PolicyFile   string
}

// JobsConfig holds background job settings.
type JobsConfig struct {
	CostSyncSchedule    string
	ForecastSchedule    string
	BudgetCheckSchedule string
}

// ReportConfig holds cost report export settings.
type ReportConfig struct {
	S3Bucket string
	S3Prefix string
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string
	Format string
}

// NotificationConfig holds notification settings.
type NotificationConfig struct {
	SlackWebhookURL string
	EmailSMTPHost   string
	EmailSMTPPort   int
	EmailFrom       string
	EmailPassword   string
	WebhookURLs     string // comma-separated
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnvInt("DB_PORT", 5432),
			User:         getEnv("DB_USER", "demandops"),
			Password:     getEnv("DB_PASSWORD", ""),
			Name:         getEnv("DB_NAME", "demandops"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  getEnvDuration("DB_MAX_LIFETIME", 5*time.Minute),
		},
		AWS: AWSConfig{
			Enabled:       getEnvBool("AWS_ENABLED", false),
			Region:        getEnv("AWS_REGION", "us-east-1"),
			AccessKeyID:   getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretKey:     getEnv("AWS_SECRET_ACCESS_KEY", ""),
			AssumeRoleARN: getEnv("AWS_ASSUME_ROLE_ARN", ""),
			ExternalID:    getEnv("AWS_EXTERNAL_ID", ""),
		},
		Budget: BudgetConfig{
			WarningLimit: getEnvFloat("BUDGET_WARNING_LIMIT", 80),
			MaximumLimit: getEnvFloat("BUDGET_MAXIMUM_LIMIT", 100),
			PolicyFile:   getEnv("BUDGET_POLICY_FILE", ""),
		},
		Jobs: JobsConfig{
			CostSyncSchedule:    getEnv("JOB_COST_SYNC", "0 */6 * * *"),
			ForecastSchedule:    getEnv("JOB_FORECAST", "0 2 * * *"),
			BudgetCheckSchedule: getEnv("JOB_BUDGET_CHECK", "0 * * * *"),
		},
		Report: ReportConfig{
			S3Bucket: getEnv("REPORT_S3_BUCKET", ""),
			S3Prefix: getEnv("REPORT_S3_PREFIX", "cost-reports"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Notification: NotificationConfig{
			SlackWebhookURL: getEnv("NOTIFICATION_SLACK_WEBHOOK", ""),
			EmailSMTPHost:   getEnv("NOTIFICATION_EMAIL_SMTP_HOST", ""),
			EmailSMTPPort:   getEnvInt("NOTIFICATION_EMAIL_SMTP_PORT", 587),
			EmailFrom:       getEnv("NOTIFICATION_EMAIL_FROM", ""),
			EmailPassword:   getEnv("NOTIFICATION_EMAIL_PASSWORD", ""),
			WebhookURLs:     getEnv("NOTIFICATION_WEBHOOK_URLS", ""),
		},
		DemoMode: getEnvBool("DEMO_MODE", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if !c.DemoMode && c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required unless DEMO_MODE is enabled")
	}
	if c.Budget.WarningLimit < 0 {
		return fmt.Errorf("BUDGET_WARNING_LIMIT must not be negative")
	}
	if c.Budget.MaximumLimit < c.Budget.WarningLimit {
		return fmt.Errorf("BUDGET_MAXIMUM_LIMIT must not be below BUDGET_WARNING_LIMIT")
	}
	return nil
}

// DSN returns the database connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// Helper functions
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
