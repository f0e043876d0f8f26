// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	DB      DBConfig      `mapstructure:"db"`
	NewsAPI NewsAPIConfig `mapstructure:"newsapi"`
	Ingest  IngestConfig  `mapstructure:"ingest"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// DBConfig controls access to the relational database.
type DBConfig struct {
	DSN      string `mapstructure:"dsn"`
	MaxConns int32  `mapstructure:"max_conns"`
	MinConns int32  `mapstructure:"min_conns"`
}

// NewsAPIConfig holds access settings for the external article search service.
type NewsAPIConfig struct {
	APIKey         string `mapstructure:"api_key"`
	BaseURL        string `mapstructure:"base_url"`
	Language       string `mapstructure:"language"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// IngestConfig governs the ingestion pipeline.
type IngestConfig struct {
	Keywords   []string `mapstructure:"keywords"`
	WindowDays int      `mapstructure:"window_days"`
}

// AuthConfig defines session token settings.
type AuthConfig struct {
	JWTSecret     string `mapstructure:"jwt_secret"`
	TokenTTLHours int    `mapstructure:"token_ttl_hours"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("NEWSROOM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("db.max_conns", 8)
	v.SetDefault("db.min_conns", 1)
	v.SetDefault("newsapi.base_url", "https://newsapi.org/v2")
	v.SetDefault("newsapi.language", "id")
	v.SetDefault("newsapi.timeout_seconds", 15)
	v.SetDefault("ingest.keywords", []string{
		"korupsi",
		"kasus",
		"keadilan",
		"oknum",
		"penegakan hukum",
		"peradilan",
		"hukum",
	})
	v.SetDefault("ingest.window_days", 7)
	v.SetDefault("auth.token_ttl_hours", 24)
	v.SetDefault("logging.development", true)
}

// validate enforces limits every command shares.
func (c Config) validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.NewsAPI.TimeoutSeconds <= 0 {
		return fmt.Errorf("newsapi.timeout_seconds must be > 0")
	}
	if c.Ingest.WindowDays <= 0 {
		return fmt.Errorf("ingest.window_days must be > 0")
	}
	if len(c.Ingest.Keywords) == 0 {
		return fmt.Errorf("ingest.keywords must not be empty")
	}
	if c.Auth.TokenTTLHours <= 0 {
		return fmt.Errorf("auth.token_ttl_hours must be > 0")
	}
	return nil
}

// ValidateServe checks the values the HTTP server cannot run without.
func (c Config) ValidateServe() error {
	if c.DB.DSN == "" {
		return fmt.Errorf("db.dsn is required")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	return nil
}

// ValidateIngest checks the values the ingestion pipeline cannot run without.
// A missing search-service credential is fatal before any work starts.
func (c Config) ValidateIngest() error {
	if c.DB.DSN == "" {
		return fmt.Errorf("db.dsn is required")
	}
	if c.NewsAPI.APIKey == "" {
		return fmt.Errorf("newsapi.api_key is required")
	}
	return nil
}

// SearchTimeout converts the configured timeout into a duration.
func (c Config) SearchTimeout() time.Duration {
	return time.Duration(c.NewsAPI.TimeoutSeconds) * time.Second
}

// TokenTTL converts the configured session lifetime into a duration.
func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.Auth.TokenTTLHours) * time.Hour
}
