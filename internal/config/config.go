package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
// It is built once at process start and handed to the components that need it.
type Config struct {
	Port      string
	Env       string
	APIPrefix string
	LogLevel  string

	AdminAPIKey     string
	InvalidKeyLimit int
	CORSOrigins     []string

	Session SessionConfig
	DB      DatabaseConfig
	Redis   RedisConfig
}

// SessionConfig controls the anonymous session cookie used by carts and
// customization sessions.
type SessionConfig struct {
	Secret     string
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// DatabaseConfig contains PostgreSQL connection parameters.
// URL, when set, takes precedence over the discrete fields.
type DatabaseConfig struct {
	URL            string
	Host           string
	Port           string
	User           string
	Password       string
	Name           string
	SSLMode        string
	MigrationsPath string
}

// RedisConfig contains Redis connection parameters. An empty Host disables
// the product cache.
type RedisConfig struct {
	Host       string
	Port       string
	Password   string
	DB         int
	ProductTTL time.Duration
}

// Enabled reports whether a Redis host was configured.
func (r RedisConfig) Enabled() bool {
	return r.Host != ""
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads configuration from environment variables. If a .env file exists
// in the working directory, it will be loaded first.
func Load() (*Config, error) {
	// Missing .env is fine; real deployments use the process environment.
	_ = godotenv.Load()

	cfg := &Config{}

	// Server
	cfg.Port = getEnv("PORT", "8080")
	cfg.Env = getEnv("ENV", "development")
	cfg.APIPrefix = getEnv("API_PREFIX", "/api/v1")
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")

	// Admin gate
	cfg.AdminAPIKey = getEnv("ADMIN_API_KEY", "")
	cfg.InvalidKeyLimit = getEnvInt("INVALID_KEY_LIMIT", 5)
	cfg.CORSOrigins = splitList(getEnv("CORS_ORIGINS", "http://localhost:3000"))

	// Session cookie
	cfg.Session = SessionConfig{
		Secret:     getEnv("SESSION_SECRET", ""),
		CookieName: getEnv("SESSION_COOKIE_NAME", "session_id"),
		Secure:     getEnvBool("COOKIE_SECURE", false),
	}

	// Database
	cfg.DB = databaseFromEnv()

	var err error
	if cfg.Session.TTL, err = parseDurationEnv("SESSION_TTL", "720h"); err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}

	// Redis
	redis, err := redisFromEnv()
	if err != nil {
		return nil, err
	}
	cfg.Redis = *redis

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDatabase reads only the database settings. The CLI uses it for
// commands that do not serve HTTP and so need no admin key or session secret.
func LoadDatabase() (*DatabaseConfig, error) {
	_ = godotenv.Load()

	db := databaseFromEnv()
	if err := db.validate(); err != nil {
		return nil, err
	}
	return &db, nil
}

// LoadRedis reads only the Redis settings, for CLI commands that write
// catalog data and must invalidate the product cache of a running server.
func LoadRedis() (*RedisConfig, error) {
	_ = godotenv.Load()
	return redisFromEnv()
}

func redisFromEnv() (*RedisConfig, error) {
	r := &RedisConfig{
		Host:     getEnv("REDIS_HOST", ""),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}
	var err error
	if r.ProductTTL, err = parseDurationEnv("PRODUCT_CACHE_TTL", "5m"); err != nil {
		return nil, fmt.Errorf("invalid PRODUCT_CACHE_TTL: %w", err)
	}
	return r, nil
}

func databaseFromEnv() DatabaseConfig {
	return DatabaseConfig{
		URL:            getEnv("DATABASE_URL", ""),
		Host:           getEnv("DB_HOST", ""),
		Port:           getEnv("DB_PORT", "5432"),
		User:           getEnv("DB_USER", ""),
		Password:       getEnv("DB_PASSWORD", ""),
		Name:           getEnv("DB_NAME", ""),
		SSLMode:        getEnv("DB_SSLMODE", "disable"),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "file://migrations"),
	}
}

func (d *DatabaseConfig) validate() error {
	if d.URL == "" && (d.Host == "" || d.User == "" || d.Name == "") {
		return errors.New("database configuration incomplete: set DATABASE_URL or DB_HOST, DB_USER and DB_NAME")
	}
	return nil
}

func (c *Config) validate() error {
	if err := c.DB.validate(); err != nil {
		return err
	}
	if c.AdminAPIKey == "" {
		return errors.New("ADMIN_API_KEY must be set for admin operations")
	}
	if c.Session.Secret == "" {
		if c.IsProduction() {
			return errors.New("SESSION_SECRET must be set in production")
		}
		c.Session.Secret = "dev-session-secret"
	}
	if c.InvalidKeyLimit <= 0 {
		return errors.New("INVALID_KEY_LIMIT must be positive")
	}
	return nil
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt returns the value of an environment variable as an integer or a default if empty/invalid.
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// parseDurationEnv reads an environment variable and parses it as time.Duration.
// If the variable is empty, it falls back to the provided default value.
func parseDurationEnv(key, def string) (time.Duration, error) {
	raw := getEnv(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
