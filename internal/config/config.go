package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"log/slog"

	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Addr         string        `mapstructure:"addr"`
		Mode         string        `mapstructure:"mode"`
		ReadTimeout  time.Duration `mapstructure:"read_timeout"`
		WriteTimeout time.Duration `mapstructure:"write_timeout"`
	} `mapstructure:"server"`

	Auth struct {
		UserPoolID       string        `mapstructure:"user_pool_id"`
		Region           string        `mapstructure:"region"`
		AdminGroup       string        `mapstructure:"admin_group"`
		KeyCacheTTL      time.Duration `mapstructure:"key_cache_ttl"`
		JWKSFetchTimeout time.Duration `mapstructure:"jwks_fetch_timeout"`
	} `mapstructure:"auth"`

	Redis struct {
		URL      string `mapstructure:"url"`
		PoolSize int    `mapstructure:"pool_size"`
	} `mapstructure:"redis"`

	Lookup struct {
		RapidAPIKey string        `mapstructure:"rapidapi_key"`
		CacheTTL    time.Duration `mapstructure:"cache_ttl"`
	} `mapstructure:"lookup"`

	Observability struct {
		TraceEnabled       bool   `mapstructure:"trace_enabled"`
		TracingEndpointURL string `mapstructure:"tracing_endpoint_url"`
		LogLevel           string `mapstructure:"log_level"`
		LogFormat          string `mapstructure:"log_format"`
	} `mapstructure:"observability"`
}

// Issuer is the expected `iss` claim for tokens minted by the configured
// identity pool.
func (c *Config) Issuer() string {
	return fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/%s", c.Auth.Region, c.Auth.UserPoolID)
}

// JWKSURL is where the pool publishes its signing keys.
func (c *Config) JWKSURL() string {
	return c.Issuer() + "/.well-known/jwks.json"
}

// MustLoad reads configuration once at process start. A missing identity pool
// or region is a fatal startup condition, never a per-request error.
func MustLoad() *Config {
	v := viper.New()

	logger := slog.Default()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	v.SetEnvPrefix("HRSPWR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("auth.admin_group", "admin")
	v.SetDefault("auth.key_cache_ttl", 10*time.Minute)
	v.SetDefault("auth.jwks_fetch_timeout", 5*time.Second)
	v.SetDefault("lookup.cache_ttl", 15*time.Minute)
	v.SetDefault("observability.log_level", "info")
	v.SetDefault("observability.log_format", "json")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			logger.Error("Failed to read config", slog.Any("error", err))
			os.Exit(1)
		}
		// Environment-only configuration is fine; the Lambda deployment has
		// no config file at all.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		logger.Error("Failed to unmarshal config", slog.Any("error", err))
		os.Exit(1)
	}

	if cfg.Auth.UserPoolID == "" || cfg.Auth.Region == "" {
		logger.Error("auth.user_pool_id and auth.region must be set")
		os.Exit(1)
	}

	return &cfg
}
