package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for namer-engine.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords, API keys) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	BaseURL  string `yaml:"base_url" env:"BASE_URL" env-default:""` // Auto-derived from Port if empty
	Version  string `yaml:"-"`                                      // Set at load time, not from config

	// Authentication configuration
	Auth AuthConfig `yaml:"auth"`

	// Database configuration (PostgreSQL)
	Database DatabaseConfig `yaml:"database"`

	// Redis configuration (cancellation flags; optional)
	Redis RedisConfig `yaml:"redis"`

	// AI provider configuration
	Providers ProviderConfig `yaml:"providers"`

	// Domain availability checker configuration
	Domains DomainsConfig `yaml:"domains"`

	// Blob storage configuration
	Storage StorageConfig `yaml:"storage"`

	// SessionSecret signs the share-unlock cookie session.
	SessionSecret string `yaml:"-" env:"SESSION_SECRET" env-default:"namer-engine-dev-secret"`
}

// AuthConfig holds authentication-related configuration.
type AuthConfig struct {
	// EnableVerification controls whether JWT tokens are validated.
	// Set to false for local development without an auth server.
	EnableVerification bool `yaml:"enable_verification" env:"AUTH_ENABLE_VERIFICATION" env-default:"true"`

	// JWKSURL is the JWKS endpoint used to verify bearer tokens.
	JWKSURL string `yaml:"jwks_url" env:"AUTH_JWKS_URL" env-default:""`

	// Issuer is the expected token issuer. Empty disables the issuer check.
	Issuer string `yaml:"issuer" env:"AUTH_ISSUER" env-default:""`
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"namer"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"namer_engine"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
	MigrationsPath string `yaml:"migrations_path" env:"PGMIGRATIONS_PATH" env-default:"migrations"`
}

// RedisConfig holds Redis configuration. Empty host disables Redis; the
// orchestrator then falls back to database polling for cancellation flags.
type RedisConfig struct {
	Host     string `yaml:"host" env:"REDIS_HOST" env-default:""`
	Port     int    `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password string `yaml:"-" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

// ProviderConfig holds AI provider endpoints and keys.
type ProviderConfig struct {
	// OpenAI-compatible endpoint serving the gpt-family models.
	OpenAIBaseURL string `yaml:"openai_base_url" env:"OPENAI_BASE_URL" env-default:"https://api.openai.com/v1"`
	OpenAIAPIKey  string `yaml:"-" env:"OPENAI_API_KEY"`

	// Anthropic endpoint serving the claude-family models.
	AnthropicAPIKey string `yaml:"-" env:"ANTHROPIC_API_KEY"`

	// Image generation model served over the OpenAI image API.
	ImageModel string `yaml:"image_model" env:"IMAGE_MODEL" env-default:"gpt-image-1"`

	// MaxConcurrent bounds parallel provider calls per dispatch.
	MaxConcurrent int `yaml:"max_concurrent" env:"PROVIDER_MAX_CONCURRENT" env-default:"4"`

	// RequestTimeout applies to a single provider call. No automatic retry
	// happens at this level; failures fall through to the fallback generator.
	RequestTimeout time.Duration `yaml:"request_timeout" env:"PROVIDER_REQUEST_TIMEOUT" env-default:"60s"`
}

// DomainsConfig holds the registrar availability API settings.
type DomainsConfig struct {
	BaseURL string `yaml:"base_url" env:"DOMAINS_BASE_URL" env-default:""`
	APIKey  string `yaml:"-" env:"DOMAINS_API_KEY"`
	// TLDs checked for every generated name.
	TLDs []string `yaml:"tlds" env:"DOMAINS_TLDS" env-default:".com,.io,.co,.net"`
}

// StorageConfig holds blob storage settings.
type StorageConfig struct {
	// Root is the directory holding logo and export files.
	Root string `yaml:"root" env:"STORAGE_ROOT" env-default:"./data"`
}

// Load reads configuration from config.yaml with environment variable overrides.
// The version parameter is injected at build time and set on the returned Config.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		return nil, fmt.Errorf("failed to read config.yaml: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = (&url.URL{
			Scheme: "http",
			Host:   "localhost:" + cfg.Port,
		}).String()
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Auth.EnableVerification && c.Auth.JWKSURL == "" {
		return fmt.Errorf("auth.jwks_url is required when auth verification is enabled")
	}
	if c.Providers.MaxConcurrent < 1 {
		c.Providers.MaxConcurrent = 1
	}
	for i, tld := range c.Domains.TLDs {
		if !strings.HasPrefix(tld, ".") {
			c.Domains.TLDs[i] = "." + tld
		}
	}
	return nil
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// URL returns a postgres:// URL for the pgx pool.
func (c *DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(c.User), url.QueryEscape(c.Password),
		c.Host, c.Port, c.Database, c.SSLMode)
}
