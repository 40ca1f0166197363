package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Provider kinds.
const (
	ProviderJService = "jservice"
	ProviderCatalog  = "catalog"
)

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env            string        `mapstructure:"env"`             // local, dev, production
	Port           string        `mapstructure:"port"`            // HTTP listen port
	LogLevel       string        `mapstructure:"log_level"`       // zerolog level name
	ClientOrigin   string        `mapstructure:"client_origin"`   // single CORS origin
	JWTSecret      string        `mapstructure:"jwt_secret"`      // signs session tokens
	SessionDays    int           `mapstructure:"session_days"`    // session token lifetime
	RequestTimeout time.Duration `mapstructure:"request_timeout"` // per HTTP request
	NATSURL        string        `mapstructure:"nats_url"`        // empty = no events
	Provider       Provider      `mapstructure:"provider"`        // clue data source
}

// Provider configures where clues come from and how calls are bounded.
type Provider struct {
	Kind          string        `mapstructure:"kind"`           // jservice | catalog
	BaseURL       string        `mapstructure:"base_url"`       // jservice API root
	CatalogFile   string        `mapstructure:"catalog_file"`   // empty = embedded catalog
	CandidatePool int           `mapstructure:"candidate_pool"` // categories requested per deal
	CallTimeout   time.Duration `mapstructure:"call_timeout"`   // per provider call
	Retries       int           `mapstructure:"retries"`        // extra tries per call
	RetryWait     time.Duration `mapstructure:"retry_wait"`     // pause between tries
}

// Production reports whether the app runs in production mode.
func (c *Config) Production() bool { return c.Env == "production" }

// Load reads configuration from an optional YAML file and environment
// variables. path may be empty, in which case ./config/config.yaml is tried.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
	}

	v.SetDefault("env", "local")
	v.SetDefault("port", "5175")
	v.SetDefault("log_level", "info")
	v.SetDefault("client_origin", "http://localhost:5173")
	v.SetDefault("jwt_secret", "dev_secret_change_me")
	v.SetDefault("session_days", 1)
	v.SetDefault("request_timeout", "30s")
	v.SetDefault("nats_url", "")
	v.SetDefault("provider.kind", ProviderCatalog)
	v.SetDefault("provider.base_url", "http://jservice.io/api")
	v.SetDefault("provider.catalog_file", "")
	v.SetDefault("provider.candidate_pool", 100)
	v.SetDefault("provider.call_timeout", "5s")
	v.SetDefault("provider.retries", 1)
	v.SetDefault("provider.retry_wait", "250ms")

	// provider.base_url <- PROVIDER_BASE_URL, log_level <- LOG_LEVEL, ...
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("env", "APP_ENV")

	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	switch c.Provider.Kind {
	case ProviderJService:
		if c.Provider.BaseURL == "" {
			return errors.New("config: provider.base_url is required for jservice")
		}
	case ProviderCatalog:
	default:
		return fmt.Errorf("config: unknown provider.kind %q", c.Provider.Kind)
	}
	if c.Provider.CandidatePool < 1 {
		return fmt.Errorf("config: provider.candidate_pool must be positive, got %d", c.Provider.CandidatePool)
	}
	if c.Provider.CallTimeout <= 0 {
		return errors.New("config: provider.call_timeout must be positive")
	}
	if c.Provider.Retries < 0 {
		return fmt.Errorf("config: provider.retries must not be negative, got %d", c.Provider.Retries)
	}
	if c.RequestTimeout <= 0 {
		return errors.New("config: request_timeout must be positive")
	}
	if c.SessionDays < 1 {
		return fmt.Errorf("config: session_days must be at least 1, got %d", c.SessionDays)
	}
	if c.Production() && c.JWTSecret == "dev_secret_change_me" {
		return errors.New("config: JWT_SECRET must be set in production")
	}
	return nil
}
