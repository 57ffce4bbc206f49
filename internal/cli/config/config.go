// Package config loads the CLI and dev-server configuration from
// vivjson.yml (or environment variables). This is tooling configuration
// (ports, registry DSNs, cache addresses) and is distinct from the
// embedding Config a host passes to vivjson.Run programmatically.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config represents the VivJson tooling configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Registry RegistryConfig `mapstructure:"registry"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Limits   LimitsConfig   `mapstructure:"limits"`
}

// ServerConfig configures the `vivjson serve` dev console.
type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Host string `mapstructure:"host"`

	// AccessTokenHash, when non-empty, is a bcrypt hash every eval request
	// must present the matching token for.
	AccessTokenHash string `mapstructure:"access_token_hash"`
}

// RegistryConfig selects the module registry backend: the embedded SQLite
// file by default, or a shared Postgres registry when a DSN is set.
type RegistryConfig struct {
	SQLitePath  string `mapstructure:"sqlite_path"`
	PostgresDSN string `mapstructure:"postgres_dsn"`

	// VerifyKey is the shared secret module signatures are checked with.
	// When it is unset, no verifier is built and signatures are not checked.
	VerifyKey string `mapstructure:"verify_key"`
}

// CacheConfig configures the shared module-source cache.
type CacheConfig struct {
	RedisAddr  string `mapstructure:"redis_addr"`
	TTLSeconds int    `mapstructure:"ttl_seconds"`
}

// LimitsConfig carries the resource caps the CLI passes through to the
// evaluator.
type LimitsConfig struct {
	MaxArraySize int `mapstructure:"max_array_size"`
	MaxDepth     int `mapstructure:"max_depth"`
	MaxLoopTimes int `mapstructure:"max_loop_times"`
}

// Load reads vivjson.yml / vivjson.yaml from the working directory, with
// environment variables taking precedence. A missing config file is not an
// error; defaults apply.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", 3799)
	v.SetDefault("server.host", "localhost")
	v.SetDefault("registry.sqlite_path", "vivjson-modules.db")
	v.SetDefault("cache.ttl_seconds", 300)
	v.SetDefault("limits.max_array_size", 1000)
	v.SetDefault("limits.max_depth", 200)
	v.SetDefault("limits.max_loop_times", 1000)

	v.SetConfigName("vivjson")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("VIVJSON")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

func validate(c *Config) error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Limits.MaxArraySize < 1 || c.Limits.MaxDepth < 1 || c.Limits.MaxLoopTimes < 1 {
		return fmt.Errorf("resource limits must be positive")
	}
	return nil
}
