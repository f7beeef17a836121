package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	App           AppConfig
	Auth          AuthConfig
	TitleFetch    TitleFetchConfig
	Invalidation  InvalidationConfig
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            string        `envconfig:"SERVER_PORT" required:"true"`
	Host            string        `envconfig:"SERVER_HOST" required:"true"`
	BaseURL         string        `envconfig:"SERVER_BASE_URL" required:"true"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" required:"true"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" required:"true"`
	IdleTimeout     time.Duration `envconfig:"SERVER_IDLE_TIMEOUT" required:"true"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" required:"true"`

	// CORSOrigins lists origins allowed to make credentialed requests
	// (the browser extension). Empty means any origin, without credentials.
	CORSOrigins []string `envconfig:"SERVER_CORS_ORIGINS"`
}

// Validate validates the server configuration.
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port cannot be empty")
	}
	if c.Host == "" {
		return fmt.Errorf("host cannot be empty")
	}
	if c.BaseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}
	if c.ReadTimeout <= 0 {
		return fmt.Errorf("read timeout must be positive")
	}
	if c.WriteTimeout <= 0 {
		return fmt.Errorf("write timeout must be positive")
	}
	if c.IdleTimeout <= 0 {
		return fmt.Errorf("idle timeout must be positive")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown timeout must be positive")
	}
	for _, origin := range c.CORSOrigins {
		if origin == "*" {
			return fmt.Errorf("wildcard CORS origin cannot be combined with credentialed requests")
		}
	}
	return nil
}

// DatabaseConfig holds database connection configuration.
type DatabaseConfig struct {
	Host           string `envconfig:"DB_HOST" required:"true"`
	Port           string `envconfig:"DB_PORT" required:"true"`
	User           string `envconfig:"DB_USER" required:"true"`
	Password       string `envconfig:"DB_PASSWORD" required:"true"`
	Name           string `envconfig:"DB_NAME" required:"true"`
	SSLMode        string `envconfig:"DB_SSLMODE" required:"true"`
	MaxConns       int32  `envconfig:"DB_MAX_CONNS" required:"true"`
	MinConns       int32  `envconfig:"DB_MIN_CONNS" required:"true"`
	MigrateOnStart bool   `envconfig:"DB_MIGRATE_ON_START" default:"false"`
}

// Validate validates the database configuration.
func (c *DatabaseConfig) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("host cannot be empty")
	}
	if c.Port == "" {
		return fmt.Errorf("port cannot be empty")
	}
	if c.User == "" {
		return fmt.Errorf("user cannot be empty")
	}
	if c.Password == "" {
		return fmt.Errorf("password cannot be empty")
	}
	if c.Name == "" {
		return fmt.Errorf("database name cannot be empty")
	}
	if c.MaxConns <= 0 {
		return fmt.Errorf("max connections must be positive")
	}
	if c.MinConns <= 0 {
		return fmt.Errorf("min connections must be positive")
	}
	if c.MinConns > c.MaxConns {
		return fmt.Errorf("min connections (%d) cannot be greater than max connections (%d)", c.MinConns, c.MaxConns)
	}

	validSSLModes := map[string]bool{
		"disable":     true,
		"require":     true,
		"verify-ca":   true,
		"verify-full": true,
	}
	if !validSSLModes[c.SSLMode] {
		return fmt.Errorf("invalid SSL mode: %s (must be one of: disable, require, verify-ca, verify-full)", c.SSLMode)
	}
	return nil
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// AppConfig holds application-specific configuration.
type AppConfig struct {
	Environment string `envconfig:"APP_ENV" required:"true"`   // development, staging, production, test
	LogLevel    string `envconfig:"LOG_LEVEL" required:"true"` // debug, info, warn, error
}

// Validate validates the app configuration.
func (c *AppConfig) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
		"test":        true,
	}
	if !validEnvs[c.Environment] {
		return fmt.Errorf("invalid environment: %s (must be one of: development, staging, production, test)", c.Environment)
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}
	return nil
}

// MinJWTSecretLength is the shortest accepted HS256 signing secret, in bytes.
const MinJWTSecretLength = 32

// AuthConfig holds session token configuration.
type AuthConfig struct {
	JWTSecret  string        `envconfig:"AUTH_JWT_SECRET" required:"true"`
	CookieName string        `envconfig:"AUTH_COOKIE_NAME" default:"readit_session"`
	TokenTTL   time.Duration `envconfig:"AUTH_TOKEN_TTL" default:"720h"`
	LoginURL   string        `envconfig:"AUTH_LOGIN_URL" default:"/login"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if len(c.JWTSecret) < MinJWTSecretLength {
		return fmt.Errorf("jwt secret must be at least %d bytes", MinJWTSecretLength)
	}
	if c.CookieName == "" {
		return fmt.Errorf("cookie name cannot be empty")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("token ttl must be positive")
	}
	if c.LoginURL == "" {
		return fmt.Errorf("login url cannot be empty")
	}
	return nil
}

// TitleFetchConfig bounds the outbound request made to resolve a page title.
type TitleFetchConfig struct {
	Timeout  time.Duration `envconfig:"TITLE_FETCH_TIMEOUT" default:"5s"`
	MaxBytes int64         `envconfig:"TITLE_FETCH_MAX_BYTES" default:"1048576"`
}

// Validate validates the title fetch configuration.
func (c *TitleFetchConfig) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxBytes <= 0 {
		return fmt.Errorf("max bytes must be positive")
	}
	return nil
}

// InvalidationConfig selects where view invalidation signals are sent.
// An empty RedisURL keeps signals in the process log only.
type InvalidationConfig struct {
	RedisURL string `envconfig:"REDIS_URL"`
	Channel  string `envconfig:"INVALIDATION_CHANNEL" default:"readit:invalidate"`
}

// Validate validates the invalidation configuration.
func (c *InvalidationConfig) Validate() error {
	if c.RedisURL != "" && c.Channel == "" {
		return fmt.Errorf("channel is required when redis url is set")
	}
	return nil
}

// ObservabilityConfig holds configuration for tracing.
type ObservabilityConfig struct {
	Enabled           bool    `envconfig:"OTEL_ENABLED" required:"true"`
	ServiceName       string  `envconfig:"OTEL_SERVICE_NAME"`
	ServiceVersion    string  `envconfig:"OTEL_SERVICE_VERSION"`
	OTelEndpoint      string  `envconfig:"OTEL_ENDPOINT"`
	OTelInsecure      bool    `envconfig:"OTEL_INSECURE"`
	TracingSampleRate float64 `envconfig:"OTEL_TRACING_SAMPLE_RATE"`
}

// Validate validates the observability configuration.
func (c *ObservabilityConfig) Validate() error {
	if c.TracingSampleRate < 0 || c.TracingSampleRate > 1 {
		return fmt.Errorf("tracing sample rate must be between 0 and 1, got %f", c.TracingSampleRate)
	}

	// Only require these when observability is enabled.
	if c.Enabled {
		if c.ServiceName == "" {
			return fmt.Errorf("service name is required when observability is enabled")
		}
		if c.OTelEndpoint == "" {
			return fmt.Errorf("OTEL endpoint is required when observability is enabled")
		}
		if c.ServiceVersion == "" {
			return fmt.Errorf("service version is required when observability is enabled")
		}
	}

	return nil
}

type section interface {
	Validate() error
}

// Load loads configuration from environment variables only.
// (.env loading for development happens in internal/app, not here.)
func Load() (*Config, error) {
	cfg := &Config{}

	sections := []struct {
		name string
		spec section
	}{
		{"Server", &cfg.Server},
		{"Database", &cfg.Database},
		{"App", &cfg.App},
		{"Auth", &cfg.Auth},
		{"TitleFetch", &cfg.TitleFetch},
		{"Invalidation", &cfg.Invalidation},
		{"Observability", &cfg.Observability},
	}

	for _, s := range sections {
		if err := load(s.name, s.spec); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// LoadDatabase loads only the database section, for tools that do not serve
// HTTP.
func LoadDatabase() (*DatabaseConfig, error) {
	cfg := &DatabaseConfig{}
	if err := load("Database", cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadAuth loads only the auth section.
func LoadAuth() (*AuthConfig, error) {
	cfg := &AuthConfig{}
	if err := load("Auth", cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func load(name string, spec section) error {
	if err := envconfig.Process("", spec); err != nil {
		return fmt.Errorf("failed to load %s config: %w", name, err)
	}
	if err := spec.Validate(); err != nil {
		return fmt.Errorf("invalid %s config: %w", name, err)
	}
	return nil
}
