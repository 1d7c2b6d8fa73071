package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the Movies API.
type Config struct {
	Server    ServerConfig
	Postgres  PostgresConfig
	Auth      AuthConfig
	Metrics   MetricsConfig
	Sync      SyncConfig
	MinIO     MinIOConfig
	RateLimit RateLimitConfig
}

// ServerConfig parameterizes the HTTP server.
type ServerConfig struct {
	Host         string        `env:"HOST"               envDefault:"0.0.0.0"`
	Port         int           `env:"PORT"               envDefault:"3000"`
	ReadTimeout  time.Duration `env:"API_READ_TIMEOUT"   envDefault:"15s"`
	WriteTimeout time.Duration `env:"API_WRITE_TIMEOUT"  envDefault:"15s"`
	IdleTimeout  time.Duration `env:"API_IDLE_TIMEOUT"   envDefault:"60s"`
}

// Address returns the listen address in host:port form.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// PostgresConfig contains PostgreSQL connection details.
// URL takes precedence over the individual fields when set.
type PostgresConfig struct {
	URL      string `env:"DATABASE_URL"`
	Host     string `env:"POSTGRES_HOST"     envDefault:"localhost"`
	Port     int    `env:"POSTGRES_PORT"     envDefault:"5432"`
	User     string `env:"POSTGRES_USER"     envDefault:"movies_app"`
	Password string `env:"POSTGRES_PASSWORD" envDefault:"change-me"`
	Database string `env:"POSTGRES_DB"       envDefault:"movies"`
	SSLMode  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`
	MaxConns int32  `env:"POSTGRES_MAX_CONNS"`
	// RunMigrations applies the embedded schema on startup.
	RunMigrations bool `env:"RUN_MIGRATIONS_ON_START" envDefault:"true"`
}

// DSN returns the PostgreSQL DSN string.
func (p PostgresConfig) DSN() string {
	if p.URL != "" {
		return p.URL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.Database, strings.ToLower(p.SSLMode))
}

// AuthConfig groups authentication-related settings.
type AuthConfig struct {
	// JWTSecret signs and verifies every token. The process refuses to start without it.
	JWTSecret      string `env:"JWT_SECRET,notEmpty"`
	AccessTokenTTL TTL    `env:"JWT_EXPIRATION_TIME" envDefault:"1d"`
	BcryptCost     int    `env:"BCRYPT_COST"         envDefault:"10"`
}

// MetricsConfig groups observability settings.
type MetricsConfig struct {
	PrometheusPath string `env:"METRICS_PATH" envDefault:"/metrics"`
}

// SyncConfig controls the periodic movie synchronization job.
type SyncConfig struct {
	Enabled       bool          `env:"SYNC_ENABLED"    envDefault:"true"`
	RunOnStart    bool          `env:"SYNC_ON_START"   envDefault:"false"`
	Schedule      string        `env:"SYNC_SCHEDULE"   envDefault:"@every 2h"`
	BaseMoviesURL string        `env:"BASE_MOVIES_URL" envDefault:"https://swapi.dev/api"`
	Timeout       time.Duration `env:"SYNC_TIMEOUT"    envDefault:"30s"`
	// MaxRetries bounds retries of the upstream fetch within one run.
	MaxRetries uint64 `env:"SYNC_MAX_RETRIES" envDefault:"3"`
}

// MinIOConfig carries MinIO connection and bucket information. When disabled
// the sync job does not archive upstream payloads.
type MinIOConfig struct {
	Enabled         bool   `env:"MINIO_ENABLED"       envDefault:"false"`
	Endpoint        string `env:"MINIO_ENDPOINT"      envDefault:"localhost:9000"`
	AccessKeyID     string `env:"MINIO_ROOT_USER"     envDefault:"movies"`
	SecretAccessKey string `env:"MINIO_ROOT_PASSWORD" envDefault:"change-me-strong-password"`
	Bucket          string `env:"MINIO_BUCKET"        envDefault:"movies-sync"`
	UseSSL          bool   `env:"MINIO_USE_SSL"       envDefault:"false"`
	Region          string `env:"MINIO_REGION"`
}

// RateLimitConfig bounds requests per client IP on the auth endpoints.
type RateLimitConfig struct {
	AuthRPS   float64 `env:"AUTH_RATE_LIMIT_RPS"   envDefault:"5"`
	AuthBurst int     `env:"AUTH_RATE_LIMIT_BURST" envDefault:"10"`
}

// Load reads configuration from the process environment, after merging a
// local .env file when one exists.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return parse(env.Options{})
}

// LoadFrom parses configuration from the given variables only.
func LoadFrom(environ map[string]string) (Config, error) {
	return parse(env.Options{Environment: environ})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	if cfg.Auth.BcryptCost < 4 || cfg.Auth.BcryptCost > 31 {
		cfg.Auth.BcryptCost = 10
	}
	if cfg.Sync.Timeout <= 0 {
		cfg.Sync.Timeout = 30 * time.Second
	}
	cfg.Sync.BaseMoviesURL = strings.TrimRight(cfg.Sync.BaseMoviesURL, "/")

	return cfg, nil
}
