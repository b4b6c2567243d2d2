package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all runtime configuration, loaded from FETE_* environment
// variables.
type Config struct {
	Port       string        `env:"FETE_PORT" envDefault:"8080"`
	DBPath     string        `env:"FETE_DB_PATH" envDefault:"fete.db"`
	BaseURL    string        `env:"FETE_BASE_URL" envDefault:"http://localhost:8080"`
	LogLevel   string        `env:"FETE_LOG_LEVEL" envDefault:"info"`
	SessionTTL time.Duration `env:"FETE_SESSION_TTL" envDefault:"720h"`

	Email  Email
	Backup Backup
}

// Email configures the Postmark delivery client. Token delivery is skipped
// (and logged) when ServerToken is empty.
type Email struct {
	ServerToken string `env:"FETE_POSTMARK_TOKEN"`
	From        string `env:"FETE_EMAIL_FROM" envDefault:"invites@fete.app"`
}

// Backup configures encrypted snapshots to S3-compatible storage. Backups
// stay disabled until bucket, credentials, and passphrase are all set.
type Backup struct {
	S3Endpoint  string        `env:"FETE_BACKUP_S3_ENDPOINT"`
	S3Bucket    string        `env:"FETE_BACKUP_S3_BUCKET"`
	S3Region    string        `env:"FETE_BACKUP_S3_REGION" envDefault:"auto"`
	S3AccessKey string        `env:"FETE_BACKUP_S3_ACCESS_KEY"`
	S3SecretKey string        `env:"FETE_BACKUP_S3_SECRET_KEY"`
	Passphrase  string        `env:"FETE_BACKUP_PASSPHRASE"`
	Interval    time.Duration `env:"FETE_BACKUP_INTERVAL" envDefault:"24h"`
}

// Load reads configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
