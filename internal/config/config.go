package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. GQLVALIDATE_SERVER_ADDRESS.
const EnvPrefix = "GQLVALIDATE"

// Config is the root configuration of the gqlvalidate server and CLI
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	GraphQL    GraphQLConfig    `mapstructure:"graphql"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Validation ValidationConfig `mapstructure:"validation"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Tracing    TracingConfig    `mapstructure:"tracing"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	BodyLimit       int           `mapstructure:"body_limit"` // Maximum request body size in bytes
}

// Validate validates server configuration
func (sc *ServerConfig) Validate() error {
	if sc.Address == "" {
		return fmt.Errorf("server address is required")
	}
	if sc.BodyLimit < 1 {
		return fmt.Errorf("server body_limit must be at least 1, got: %d", sc.BodyLimit)
	}
	return nil
}

// Load reads configuration from defaults, the optional YAML file at path, a
// .env file in the working directory and GQLVALIDATE_ environment variables,
// in increasing order of precedence.
func Load(path string) (*Config, error) {
	// A missing .env file is fine.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.body_limit", 1024*1024)

	v.SetDefault("graphql.enabled", true)
	v.SetDefault("graphql.path", "/graphql")
	v.SetDefault("graphql.max_query_length", 100000)
	v.SetDefault("graphql.max_depth", 10)
	v.SetDefault("graphql.max_complexity", 1000)
	v.SetDefault("graphql.introspection", true)
	v.SetDefault("graphql.allow_fragments", false)
	v.SetDefault("graphql.max_fields_per_lvl", 50)

	v.SetDefault("rate_limit.enabled", false)
	v.SetDefault("rate_limit.max", 100)
	v.SetDefault("rate_limit.window", "1m")

	v.SetDefault("validation.log_rejections", false)
	v.SetDefault("validation.extension_key", "validationErrors")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("metrics.namespace", "gqlvalidate")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.endpoint", "localhost:4317")
	v.SetDefault("tracing.service_name", "gqlvalidate")
	v.SetDefault("tracing.insecure", true)
	v.SetDefault("tracing.sample_ratio", 1.0)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// Validate validates every section
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.GraphQL.Validate(); err != nil {
		return err
	}
	if err := c.RateLimit.Validate(); err != nil {
		return err
	}
	if err := c.Validation.Validate(); err != nil {
		return err
	}
	if err := c.Metrics.Validate(); err != nil {
		return err
	}
	if err := c.Tracing.Validate(); err != nil {
		return err
	}
	return c.Logging.Validate()
}
