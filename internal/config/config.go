package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	Port int

	Store      string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	// DBAdminUser and DBAdminPassword are only needed to create the
	// database itself.
	DBAdminUser     string
	DBAdminPassword string

	AccessTokenSecret []byte
	AdminRole         string
	AllowedOrigins    []string
	LogLevel          string
}

// Load reads configuration from the environment after applying any .env
// file in the working directory. Variables already set win over .env.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}

	cfg := &Config{
		Port:       8080,
		Store:      getenv("LEDGER_STORE", StorePostgres),
		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     getenv("DB_PORT", "5432"),
		DBUser:     os.Getenv("DB_USERNAME"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_DATABASE"),
		DBSSLMode:  getenv("DB_SSLMODE", "disable"),
		AdminRole:  getenv("ADMIN_ROLE", "admin"),
		LogLevel:   getenv("LOG_LEVEL", "info"),

		DBAdminUser:     os.Getenv("DB_ADMIN_USER"),
		DBAdminPassword: os.Getenv("DB_ADMIN_PASSWORD"),
	}

	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("PORT must be a number: %w", err)
		}
		cfg.Port = p
	}

	secret := os.Getenv("ACCESS_TOKEN_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("ACCESS_TOKEN_SECRET environment variable is required")
	}
	cfg.AccessTokenSecret = []byte(secret)

	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	}

	switch cfg.Store {
	case StoreMemory:
	case StorePostgres:
		if err := cfg.requireDatabase(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("LEDGER_STORE must be %q or %q, got %q", StorePostgres, StoreMemory, cfg.Store)
	}

	return cfg, nil
}

func (c *Config) requireDatabase() error {
	required := []struct {
		name, value string
	}{
		{"DB_HOST", c.DBHost},
		{"DB_USERNAME", c.DBUser},
		{"DB_PASSWORD", c.DBPassword},
		{"DB_DATABASE", c.DBName},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%s environment variable is required", r.name)
		}
	}
	return nil
}

// DSN is the postgres:// URL for the ledger database.
func (c *Config) DSN() string {
	return c.dsn(url.UserPassword(c.DBUser, c.DBPassword), url.PathEscape(c.DBName))
}

// AdminDSN points at the maintenance database with the admin role.
func (c *Config) AdminDSN() (string, error) {
	if c.DBAdminUser == "" || c.DBAdminPassword == "" {
		return "", fmt.Errorf("DB_ADMIN_USER and DB_ADMIN_PASSWORD environment variables are required")
	}
	return c.dsn(url.UserPassword(c.DBAdminUser, c.DBAdminPassword), "postgres"), nil
}

func (c *Config) dsn(user *url.Userinfo, database string) string {
	return fmt.Sprintf("postgres://%s@%s:%s/%s?sslmode=%s", user.String(), c.DBHost, c.DBPort, database, c.DBSSLMode)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
