package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for appforge-engine.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (database passwords, vendor API keys) must only come from
// environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8090"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	BaseURL  string `yaml:"base_url" env:"BASE_URL" env-default:""` // Auto-derived from Port if empty
	Version  string `yaml:"-"`                                      // Set at load time, not from config

	// Database configuration (PostgreSQL)
	Database DatabaseConfig `yaml:"database"`

	// Redis configuration (optional, enables the shared rate-limit counter)
	Redis RedisConfig `yaml:"redis"`

	// LLM vendor endpoints
	Anthropic VendorConfig `yaml:"anthropic"`
	OpenAI    VendorConfig `yaml:"openai"`
	Gemini    VendorConfig `yaml:"gemini"`

	// Request limits
	Limits LimitsConfig `yaml:"limits"`
}

// VendorConfig holds the settings for one LLM vendor endpoint.
type VendorConfig struct {
	Model       string  `yaml:"model"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
	APIKey      string  `yaml:"-"` // Secret - env only, bound in Load
}

// DatabaseConfig holds PostgreSQL database configuration. Two credential
// pairs are supported: the anonymous-scoped default user and an elevated
// service user the pipeline writes with.
type DatabaseConfig struct {
	Host            string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port            int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User            string `yaml:"user" env:"PGUSER" env-default:"appforge_anon"`
	Password        string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	ServiceUser     string `yaml:"service_user" env:"PGSERVICE_USER" env-default:""`
	ServicePassword string `yaml:"-" env:"PGSERVICE_PASSWORD"` // Secret - not in YAML
	Database        string `yaml:"database" env:"PGDATABASE" env-default:"appforge"`
	MaxConnections  int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	SSLMode         string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
}

// RedisConfig holds optional Redis settings. Host empty means disabled.
type RedisConfig struct {
	Host     string `yaml:"host" env:"REDIS_HOST" env-default:""`
	Port     int    `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password string `yaml:"-" env:"REDIS_PASSWORD"` // Secret - not in YAML
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

// LimitsConfig holds request validation and rate-limit settings.
type LimitsConfig struct {
	MaxPromptLength  int `yaml:"max_prompt_length" env:"MAX_PROMPT_LENGTH" env-default:"500"`
	RateWindowSecs   int `yaml:"rate_window_secs" env:"RATE_WINDOW_SECS" env-default:"60"`
	RateCeiling      int `yaml:"rate_ceiling" env:"RATE_CEILING" env-default:"10"`
	VendorTimeoutSec int `yaml:"vendor_timeout_secs" env:"VENDOR_TIMEOUT_SECS" env-default:"30"`
}

// Load reads configuration from config.yaml with environment variable
// overrides. The version parameter is injected at build time and set on the
// returned Config.
//
// The Gemini key is required at process start; the Anthropic and OpenAI keys
// are checked lazily at first use, so pipeline-only or generator-only
// deployments can run with a partial key set.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		// Env-only deployments are allowed to run without a config.yaml.
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	cfg.applyVendorDefaults()
	cfg.bindVendorSecrets()

	if cfg.Gemini.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY must be set")
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = (&url.URL{
			Scheme: "http",
			Host:   "localhost:" + cfg.Port,
		}).String()
	}

	return cfg, nil
}

// applyVendorDefaults fills vendor model settings that config.yaml omitted.
func (c *Config) applyVendorDefaults() {
	if c.Anthropic.Model == "" {
		c.Anthropic.Model = "claude-sonnet-4-5-20250929"
	}
	if c.Anthropic.MaxTokens == 0 {
		c.Anthropic.MaxTokens = 4096
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "gpt-4o"
	}
	if c.OpenAI.MaxTokens == 0 {
		c.OpenAI.MaxTokens = 8192
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-2.0-flash"
	}
	if c.Gemini.MaxTokens == 0 {
		c.Gemini.MaxTokens = 8192
	}
}

// bindVendorSecrets pulls vendor keys from the environment. cleanenv cannot
// bind the same struct type to three different variables, so these are read
// directly.
func (c *Config) bindVendorSecrets() {
	c.Anthropic.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	c.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	c.Gemini.APIKey = os.Getenv("GEMINI_API_KEY")
}

// ConnectionString returns the PostgreSQL connection string for the
// anonymous-scoped user.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// ServiceConnectionString returns the connection string for the elevated
// service-scoped user. Falls back to the anonymous user when no service
// credentials are configured.
func (c *DatabaseConfig) ServiceConnectionString() string {
	if c.ServiceUser == "" {
		return c.ConnectionString()
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.ServiceUser, c.ServicePassword, c.Database, c.SSLMode,
	)
}
