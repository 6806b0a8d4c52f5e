package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	log "github.com/sirupsen/logrus"
)

// Store backends selectable with STORE_BACKEND
const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

type Config struct {
	ServerPort     string        `envconfig:"SERVER_PORT" default:"8080"`
	StoreBackend   string        `envconfig:"STORE_BACKEND" default:"postgres"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"10s"`

	DBHost        string `envconfig:"DB_HOST" default:"localhost"`
	DBPort        int    `envconfig:"DB_PORT" default:"5432"`
	DBUser        string `envconfig:"DB_USER" default:"postgres"`
	DBPassword    string `envconfig:"DB_PASSWORD"`
	DBName        string `envconfig:"DB_NAME" default:"karmafeed"`
	DBSSLMode     string `envconfig:"DB_SSLMODE" default:"disable"`
	DBAutoMigrate bool   `envconfig:"DB_AUTO_MIGRATE" default:"false"`

	// Empty disables the leaderboard bucket cache
	RedisURL string `envconfig:"REDIS_URL"`

	// Empty disables bearer identity
	JWTSecret   string        `envconfig:"JWT_SECRET"`
	TokenMaxAge time.Duration `envconfig:"TOKEN_MAX_AGE" default:"24h"`

	LeaderboardWindow      time.Duration `envconfig:"LEADERBOARD_WINDOW" default:"24h"`
	LeaderboardLimit       int           `envconfig:"LEADERBOARD_LIMIT" default:"5"`
	LeaderboardBucketGrace time.Duration `envconfig:"LEADERBOARD_BUCKET_GRACE" default:"5m"`
	LeaderboardWarmCron    string        `envconfig:"LEADERBOARD_WARM_CRON" default:"5 * * * *"`

	ArchiveEndpoint        string `envconfig:"ARCHIVE_ENDPOINT"`
	ArchiveRegion          string `envconfig:"ARCHIVE_REGION" default:"auto"`
	ArchiveBucket          string `envconfig:"ARCHIVE_BUCKET"`
	ArchiveAccessKeyID     string `envconfig:"ARCHIVE_ACCESS_KEY_ID"`
	ArchiveSecretAccessKey string `envconfig:"ARCHIVE_SECRET_ACCESS_KEY"`
	ArchivePrefix          string `envconfig:"ARCHIVE_PREFIX" default:"ledger"`

	AppLogLevel  string `envconfig:"APP_LOG_LEVEL" default:"info"`
	AppLogFormat string `envconfig:"APP_LOG_FORMAT" default:"text"`
}

// DatabaseDSN returns the PostgreSQL connection string. The session runs in UTC so
// TIMESTAMPTZ values decode without a local offset.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s timezone=UTC",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode)
}

// ArchiveEnabled reports whether a bucket is configured for ledger exports.
func (c *Config) ArchiveEnabled() bool {
	return c.ArchiveBucket != ""
}

func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendPostgres, BackendMemory:
	default:
		return fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", BackendPostgres, BackendMemory, c.StoreBackend)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be > 0")
	}
	if c.LeaderboardWindow <= 0 {
		return fmt.Errorf("LEADERBOARD_WINDOW must be > 0")
	}
	if c.LeaderboardLimit <= 0 {
		return fmt.Errorf("LEADERBOARD_LIMIT must be > 0")
	}
	if c.LeaderboardBucketGrace < 0 {
		return fmt.Errorf("LEADERBOARD_BUCKET_GRACE must not be negative")
	}
	if c.TokenMaxAge <= 0 {
		return fmt.Errorf("TOKEN_MAX_AGE must be > 0")
	}
	return nil
}

// LoadConfig reads .env when present, then the environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug("[Config] No .env file found, relying on environment variables")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg.StoreBackend = strings.ToLower(strings.TrimSpace(cfg.StoreBackend))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ConfigureLogging applies APP_LOG_LEVEL and APP_LOG_FORMAT to the standard logrus logger.
func (c *Config) ConfigureLogging() {
	level, err := log.ParseLevel(c.AppLogLevel)
	if err != nil {
		log.WithError(err).Warn("[Config] Unknown APP_LOG_LEVEL, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if strings.EqualFold(c.AppLogFormat, "json") {
		log.SetFormatter(&log.JSONFormatter{})
		return
	}
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
}
