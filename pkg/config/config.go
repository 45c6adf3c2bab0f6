package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Backend names
const (
	BackendSupabase = "supabase"
	BackendPostgres = "postgres"
)

// Config holds all configuration for the application
type Config struct {
	// Server
	Port        string
	Environment string

	// Backend selection
	Backend string

	// Supabase
	SupabaseURL     string
	SupabaseAnonKey string

	// Postgres backend
	DatabaseURL  string
	JWTSecret    string
	JWTExpiresIn string

	// Identity
	AdminEmail string

	// Session
	SessionSecret      string
	SessionIdleTimeout time.Duration
	CookieSecure       string

	// Redis token storage
	RedisAddr     string
	RedisUsername string
	RedisPassword string
	RedisDB       int

	// Remote calls
	RemoteTimeout time.Duration

	// Auth rate limiting
	AuthRateLimit int
	AuthRateBurst int

	// Allowed Origins
	AllowedOrigins string

	// Laundry settings defaults
	LaundryName    string
	LaundryAddress string
	LaundryPhone   string
	LaundryEmail   string
}

// Error is returned when required configuration is missing or malformed.
type Error struct {
	Missing []string
	Invalid []string
}

func (e *Error) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid "+strings.Join(e.Invalid, ", "))
	}
	return "configuration error: " + strings.Join(parts, "; ")
}

// Banner renders a startup failure for the terminal.
func Banner(err error) string {
	var b strings.Builder
	b.WriteString("\n==================== Configuration Error ====================\n")
	var cfgErr *Error
	if errors.As(err, &cfgErr) {
		if len(cfgErr.Missing) > 0 {
			b.WriteString("  Missing: " + strings.Join(cfgErr.Missing, ", ") + "\n")
		}
		if len(cfgErr.Invalid) > 0 {
			b.WriteString("  Invalid: " + strings.Join(cfgErr.Invalid, ", ") + "\n")
		}
		b.WriteString("  Please set these environment variables (or add them to .env).\n")
	} else {
		b.WriteString("  " + err.Error() + "\n")
	}
	b.WriteString("=============================================================\n")
	return b.String()
}

var AppConfig *Config

// LoadConfig loads environment variables into a Config and validates it.
// The returned config is also stored in AppConfig.
func LoadConfig() (*Config, error) {
	// Load .env file if it exists (optional in production)
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found, using environment variables")
	}

	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	AppConfig = cfg
	return cfg, nil
}

// FromEnv reads the configuration without validating it.
func FromEnv() *Config {
	return &Config{
		Port:               getEnv("PORT", "5500"),
		Environment:        getEnv("APP_ENV", "development"),
		Backend:            strings.ToLower(getEnv("BACKEND", BackendSupabase)),
		SupabaseURL:        strings.TrimRight(getEnv("SUPABASE_URL", ""), "/"),
		SupabaseAnonKey:    getEnv("SUPABASE_ANON_KEY", ""),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		JWTExpiresIn:       getEnv("JWT_EXPIRES_IN", "7d"),
		AdminEmail:         strings.ToLower(getEnv("ADMIN_EMAIL", "admin@lavapp.com")),
		SessionSecret:      getEnv("SESSION_SECRET", ""),
		SessionIdleTimeout: getDuration("SESSION_IDLE_TIMEOUT", 30*time.Minute),
		CookieSecure:       getEnv("COOKIE_SECURE", "false"),
		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RedisUsername:      getEnv("REDIS_USERNAME", ""),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            getInt("REDIS_DB", 0),
		RemoteTimeout:      getDuration("REMOTE_TIMEOUT", 15*time.Second),
		AuthRateLimit:      getInt("AUTH_RATE_LIMIT", 5),
		AuthRateBurst:      getInt("AUTH_RATE_BURST", 10),
		AllowedOrigins:     getEnv("ALLOWED_ORIGINS", ""),
		LaundryName:        getEnv("LAUNDRY_NAME", "Lavapp Pro"),
		LaundryAddress:     getEnv("LAUNDRY_ADDRESS", "123 Laundry Lane, Clean City, 12345"),
		LaundryPhone:       getEnv("LAUNDRY_PHONE", "555-0101"),
		LaundryEmail:       getEnv("LAUNDRY_EMAIL", "contact@lavapp.pro"),
	}
}

// Validate checks that the selected backend has its credentials.
func (c *Config) Validate() error {
	cfgErr := &Error{}
	switch c.Backend {
	case BackendSupabase:
		if c.SupabaseURL == "" {
			cfgErr.Missing = append(cfgErr.Missing, "SUPABASE_URL")
		}
		if c.SupabaseAnonKey == "" {
			cfgErr.Missing = append(cfgErr.Missing, "SUPABASE_ANON_KEY")
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			cfgErr.Missing = append(cfgErr.Missing, "DATABASE_URL")
		}
		if c.JWTSecret == "" {
			cfgErr.Missing = append(cfgErr.Missing, "JWT_SECRET")
		}
	default:
		cfgErr.Invalid = append(cfgErr.Invalid, fmt.Sprintf("BACKEND=%q", c.Backend))
	}
	if c.IsProduction() && c.SessionSecret == "" {
		cfgErr.Missing = append(cfgErr.Missing, "SESSION_SECRET")
	}
	if c.RemoteTimeout <= 0 {
		cfgErr.Invalid = append(cfgErr.Invalid, "REMOTE_TIMEOUT")
	}
	if len(cfgErr.Missing) > 0 || len(cfgErr.Invalid) > 0 {
		return cfgErr
	}
	return nil
}

// TokenLifetime parses JWTExpiresIn. Supports day suffixes on top of time.ParseDuration.
func (c *Config) TokenLifetime() time.Duration {
	raw := strings.TrimSpace(c.JWTExpiresIn)
	if strings.HasSuffix(raw, "d") {
		if days, err := strconv.Atoi(strings.TrimSuffix(raw, "d")); err == nil && days > 0 {
			return time.Duration(days) * 24 * time.Hour
		}
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	return 7 * 24 * time.Hour // Default to 7 days
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		logrus.Warnf("⚠️ %s is not an integer, using %d", key, defaultValue)
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		logrus.Warnf("⚠️ %s is not a duration, using %s", key, defaultValue)
	}
	return defaultValue
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == ""
}
