package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	DB       DBConfig
	S3       S3Config
	Enhancer EnhancerConfig
	OCR      OCRConfig
	Queue    QueueConfig
	CORS     CORSConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// S3Config holds AWS S3 settings for scanned invoice storage.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// EnhancerConfig holds LLM enhancement endpoint settings.
type EnhancerConfig struct {
	APIKey      string `mapstructure:"api_key"`
	Model       string `mapstructure:"model"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

// OCRConfig holds settings for the upstream OCR extraction service.
type OCRConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	APIKey      string `mapstructure:"api_key"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

// QueueConfig holds process queue worker settings.
type QueueConfig struct {
	PollIntervalSecs int `mapstructure:"poll_interval_secs"`
	Concurrency      int `mapstructure:"concurrency"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Load reads configuration from environment variables with the GARAGEBOOK prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("GARAGEBOOK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "garagebook")
	v.SetDefault("db.password", "garagebook_secret")
	v.SetDefault("db.name", "garagebook_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "garagebook-invoices")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.max_file_size_mb", 25)
	v.SetDefault("s3.presign_expiry", 3600)

	// Enhancer defaults (30s timeout; the orchestrator treats a timeout as a
	// generic failure and falls back to the rule engine)
	v.SetDefault("enhancer.api_key", "")
	v.SetDefault("enhancer.model", "gpt-4o")
	v.SetDefault("enhancer.timeout_secs", 30)

	// OCR defaults
	v.SetDefault("ocr.base_url", "http://localhost:9090")
	v.SetDefault("ocr.api_key", "")
	v.SetDefault("ocr.timeout_secs", 60)

	// Queue defaults
	v.SetDefault("queue.poll_interval_secs", 10)
	v.SetDefault("queue.concurrency", 5)

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":             "GARAGEBOOK_SERVER_PORT",
		"server.read_timeout":     "GARAGEBOOK_SERVER_READ_TIMEOUT",
		"server.write_timeout":    "GARAGEBOOK_SERVER_WRITE_TIMEOUT",
		"server.environment":      "GARAGEBOOK_SERVER_ENVIRONMENT",
		"db.host":                 "GARAGEBOOK_DB_HOST",
		"db.port":                 "GARAGEBOOK_DB_PORT",
		"db.user":                 "GARAGEBOOK_DB_USER",
		"db.password":             "GARAGEBOOK_DB_PASSWORD",
		"db.name":                 "GARAGEBOOK_DB_NAME",
		"db.sslmode":              "GARAGEBOOK_DB_SSLMODE",
		"db.max_open":             "GARAGEBOOK_DB_MAX_OPEN",
		"db.max_idle":             "GARAGEBOOK_DB_MAX_IDLE",
		"s3.region":               "GARAGEBOOK_S3_REGION",
		"s3.bucket":               "GARAGEBOOK_S3_BUCKET",
		"s3.endpoint":             "GARAGEBOOK_S3_ENDPOINT",
		"s3.access_key":           "GARAGEBOOK_S3_ACCESS_KEY",
		"s3.secret_key":           "GARAGEBOOK_S3_SECRET_KEY",
		"s3.max_file_size_mb":     "GARAGEBOOK_S3_MAX_FILE_SIZE_MB",
		"s3.presign_expiry":       "GARAGEBOOK_S3_PRESIGN_EXPIRY",
		"enhancer.api_key":        "GARAGEBOOK_ENHANCER_API_KEY",
		"enhancer.model":          "GARAGEBOOK_ENHANCER_MODEL",
		"enhancer.timeout_secs":   "GARAGEBOOK_ENHANCER_TIMEOUT_SECS",
		"ocr.base_url":            "GARAGEBOOK_OCR_BASE_URL",
		"ocr.api_key":             "GARAGEBOOK_OCR_API_KEY",
		"ocr.timeout_secs":        "GARAGEBOOK_OCR_TIMEOUT_SECS",
		"queue.poll_interval_secs": "GARAGEBOOK_QUEUE_POLL_INTERVAL_SECS",
		"queue.concurrency":        "GARAGEBOOK_QUEUE_CONCURRENCY",
		"cors.allowed_origins":     "GARAGEBOOK_CORS_ALLOWED_ORIGINS",
	}
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding env %s: %w", env, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// viper reads comma-separated origins as a single string
	if len(cfg.CORS.AllowedOrigins) == 1 && strings.Contains(cfg.CORS.AllowedOrigins[0], ",") {
		cfg.CORS.AllowedOrigins = strings.Split(cfg.CORS.AllowedOrigins[0], ",")
	}

	return &cfg, nil
}
