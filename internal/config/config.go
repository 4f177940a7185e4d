// Package config loads service settings from environment variables with
// defaults, and validates them on startup so misconfiguration fails fast.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Convert  ConvertConfig
	Database DatabaseConfig
	History  HistoryConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// ConvertConfig holds conversion limits and serializer defaults.
type ConvertConfig struct {
	// MaxInputSize is the largest accepted request body. Accepts plain bytes
	// or a KB/MB/GB suffix (default: 5MB)
	MaxInputSize int64 `env:"CONVERT_MAX_INPUT_SIZE" default:"5MB" unit:"bytes"`

	// MaxConcurrent caps conversions running at once (default: 8)
	MaxConcurrent int `env:"CONVERT_MAX_CONCURRENT" default:"8"`

	// MaxWait is how long a request waits for a conversion slot (default: 10s)
	MaxWait time.Duration `env:"CONVERT_MAX_WAIT" default:"10s"`

	SQLTableName string `env:"CONVERT_SQL_TABLE" default:"data"`
	XMLRootTag   string `env:"CONVERT_XML_ROOT" default:"root"`
}

// DatabaseConfig holds the optional history database connection.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string. Empty keeps history in memory.
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	MaxConns        int           `env:"DB_MAX_CONNS" default:"10"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"0"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// HistoryConfig controls the conversion history log.
type HistoryConfig struct {
	// Enabled turns history recording on (default: true)
	Enabled bool `env:"HISTORY_ENABLED" default:"true"`

	// RecentLimit caps rows returned by /api/history (default: 50)
	RecentLimit int `env:"HISTORY_RECENT_LIMIT" default:"50"`

	// MemoryCapacity is the ring size used without a database (default: 500)
	MemoryCapacity int `env:"HISTORY_MEMORY_CAPACITY" default:"500"`
}

// RateLimitConfig holds per-IP rate limits for the API.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`

	// ConvertLimit is requests per minute for convert and extract (default: 30)
	ConvertLimit int `env:"RATE_LIMIT_CONVERT" default:"30"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// RequireAPIKey enforces X-API-Key on /api routes (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted keys
	APIKeys []string `env:"API_KEYS"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// HistoryBackend names the store history will be written to.
func (c *Config) HistoryBackend() string {
	switch {
	case !c.History.Enabled:
		return "disabled"
	case c.Database.URL != "":
		return "postgres"
	default:
		return "memory"
	}
}
