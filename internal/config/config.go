package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

type Config struct {
	Env      string `mapstructure:"HRC_ENV"`
	HTTPAddr string `mapstructure:"HRC_HTTP_ADDR"`

	Database DBConfig       `mapstructure:",squash"`
	Cache    CacheConfig    `mapstructure:",squash"`
	Client   ClientConfig   `mapstructure:",squash"`
	Security SecurityConfig `mapstructure:",squash"`
}

type DBConfig struct {
	Type        string `mapstructure:"HRC_DB_TYPE"` // "memory" or "postgres"
	PostgresDSN string `mapstructure:"HRC_POSTGRES_DSN"`
	Seed        bool   `mapstructure:"HRC_SEED"`
}

type CacheConfig struct {
	Backend  string        `mapstructure:"HRC_CACHE_BACKEND"` // "memory" or "redis"
	RedisURL string        `mapstructure:"HRC_REDIS_URL"`
	TTL      time.Duration `mapstructure:"HRC_CACHE_TTL"`
	Failover bool          `mapstructure:"HRC_CACHE_FAILOVER"`
}

// ClientConfig drives the console when it talks to a remote API server.
type ClientConfig struct {
	APIBaseURL     string        `mapstructure:"HRC_API_BASE_URL"`
	APITimeout     time.Duration `mapstructure:"HRC_API_TIMEOUT"`
	RemoteSearch   bool          `mapstructure:"HRC_REMOTE_SEARCH"`
	SearchDebounce time.Duration `mapstructure:"HRC_SEARCH_DEBOUNCE"`
}

type SecurityConfig struct {
	RateLimitRPM       int      `mapstructure:"HRC_RATE_LIMIT_RPM"`
	CORSAllowedOrigins []string `mapstructure:"HRC_CORS_ALLOWED_ORIGINS"`
}

func loadDotEnvFiles() {
	candidates := []string{
		".env",
		filepath.Join("..", ".env"),
	}

	seen := make(map[string]struct{})
	for _, path := range candidates {
		abs := path
		if resolved, err := filepath.Abs(path); err == nil {
			abs = resolved
		}
		if _, ok := seen[abs]; ok {
			continue
		}
		seen[abs] = struct{}{}

		if _, err := os.Stat(path); err == nil {
			_ = gotenv.Load(path) // env vars already set take precedence
		}
	}
}

// Load reads .env files and HRC_* environment variables into a Config.
func Load() (*Config, error) {
	loadDotEnvFiles()
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("HRC_ENV", "dev")
	v.SetDefault("HRC_HTTP_ADDR", ":8080")
	v.SetDefault("HRC_DB_TYPE", "memory")
	v.SetDefault("HRC_POSTGRES_DSN", "")
	v.SetDefault("HRC_SEED", false)
	v.SetDefault("HRC_CACHE_BACKEND", "memory")
	v.SetDefault("HRC_REDIS_URL", "")
	v.SetDefault("HRC_CACHE_TTL", "30s")
	v.SetDefault("HRC_CACHE_FAILOVER", true)
	v.SetDefault("HRC_API_BASE_URL", "http://localhost:8080")
	v.SetDefault("HRC_API_TIMEOUT", "10s")
	v.SetDefault("HRC_REMOTE_SEARCH", true)
	v.SetDefault("HRC_SEARCH_DEBOUNCE", "300ms")
	v.SetDefault("HRC_RATE_LIMIT_RPM", 300)
	v.SetDefault("HRC_CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")

	// Handle array parsing for comma-separated values
	if origins := v.GetString("HRC_CORS_ALLOWED_ORIGINS"); origins != "" {
		parts := strings.Split(origins, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		v.Set("HRC_CORS_ALLOWED_ORIGINS", parts)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Env {
	case "dev", "test", "prod":
	default:
		return fmt.Errorf("invalid HRC_ENV %q (must be dev, test, or prod)", c.Env)
	}
	switch c.Database.Type {
	case "memory":
	case "postgres":
		if c.Database.PostgresDSN == "" {
			return fmt.Errorf("HRC_POSTGRES_DSN is required when HRC_DB_TYPE is postgres")
		}
	default:
		return fmt.Errorf("invalid HRC_DB_TYPE %q (must be memory or postgres)", c.Database.Type)
	}
	switch c.Cache.Backend {
	case "memory":
	case "redis":
		if c.Cache.RedisURL == "" {
			return fmt.Errorf("HRC_REDIS_URL is required when HRC_CACHE_BACKEND is redis")
		}
	default:
		return fmt.Errorf("invalid HRC_CACHE_BACKEND %q (must be memory or redis)", c.Cache.Backend)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("HRC_CACHE_TTL must be positive")
	}
	if u, err := url.Parse(c.Client.APIBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("HRC_API_BASE_URL %q is not an absolute URL", c.Client.APIBaseURL)
	}
	if c.Client.APITimeout <= 0 {
		return fmt.Errorf("HRC_API_TIMEOUT must be positive")
	}
	if c.Client.SearchDebounce < 0 {
		return fmt.Errorf("HRC_SEARCH_DEBOUNCE must not be negative")
	}
	if c.Security.RateLimitRPM < 0 {
		return fmt.Errorf("HRC_RATE_LIMIT_RPM must not be negative")
	}
	return nil
}

func (c *Config) IsDev() bool {
	return c.Env == "dev"
}

func (c *Config) IsProd() bool {
	return c.Env == "prod"
}
