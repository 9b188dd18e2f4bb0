package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	// Server
	Port           string
	Environment    string
	AllowedOrigins string

	// Database
	DatabaseDriver  string
	DatabaseURL     string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool

	// JWT
	JWTSecret    string
	JWTExpiresIn time.Duration

	// Image storage
	StorageDriver                string
	UploadDir                    string
	GCPBucketName                string
	GoogleApplicationCredentials string

	// Inventory
	AuditOrderStock bool

	// Seed
	SeedAdminEmail    string
	SeedAdminPassword string
}

// Load reads .env (when present) and the process environment into a Config.
// Missing DATABASE_URL or JWT_SECRET is an error.
func Load() (*Config, error) {
	// .env is optional; real environment variables win over it
	_ = godotenv.Load()
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "5000")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "1h")
	v.SetDefault("DB_AUTO_MIGRATE", true)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_EXPIRES_IN", "24h")
	v.SetDefault("STORAGE_DRIVER", "local")
	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("GCP_BUCKET_NAME", "")
	v.SetDefault("GOOGLE_APPLICATION_CREDENTIALS", "")
	v.SetDefault("AUDIT_ORDER_STOCK", false)
	v.SetDefault("SEED_ADMIN_EMAIL", "admin@example.com")
	v.SetDefault("SEED_ADMIN_PASSWORD", "")
	return v
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	lifetime, err := ParseDuration(v.GetString("DB_CONN_MAX_LIFETIME"))
	if err != nil {
		return nil, fmt.Errorf("DB_CONN_MAX_LIFETIME: %w", err)
	}
	expiresIn, err := ParseDuration(v.GetString("JWT_EXPIRES_IN"))
	if err != nil {
		return nil, fmt.Errorf("JWT_EXPIRES_IN: %w", err)
	}

	cfg := &Config{
		Port:                         v.GetString("PORT"),
		Environment:                  v.GetString("APP_ENV"),
		AllowedOrigins:               v.GetString("ALLOWED_ORIGINS"),
		DatabaseDriver:               strings.ToLower(v.GetString("DB_DRIVER")),
		DatabaseURL:                  v.GetString("DATABASE_URL"),
		MaxOpenConns:                 v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns:                 v.GetInt("DB_MAX_IDLE_CONNS"),
		ConnMaxLifetime:              lifetime,
		AutoMigrate:                  v.GetBool("DB_AUTO_MIGRATE"),
		JWTSecret:                    v.GetString("JWT_SECRET"),
		JWTExpiresIn:                 expiresIn,
		StorageDriver:                strings.ToLower(v.GetString("STORAGE_DRIVER")),
		UploadDir:                    v.GetString("UPLOAD_DIR"),
		GCPBucketName:                v.GetString("GCP_BUCKET_NAME"),
		GoogleApplicationCredentials: v.GetString("GOOGLE_APPLICATION_CREDENTIALS"),
		AuditOrderStock:              v.GetBool("AUDIT_ORDER_STOCK"),
		SeedAdminEmail:               v.GetString("SEED_ADMIN_EMAIL"),
		SeedAdminPassword:            v.GetString("SEED_ADMIN_PASSWORD"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required and enumerated settings
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	switch c.DatabaseDriver {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DatabaseDriver)
	}
	switch c.StorageDriver {
	case "local":
	case "gcs":
		if c.GCPBucketName == "" {
			return errors.New("GCP_BUCKET_NAME is required when STORAGE_DRIVER=gcs")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.StorageDriver)
	}
	if c.JWTExpiresIn <= 0 {
		return errors.New("JWT_EXPIRES_IN must be positive")
	}
	return nil
}

// ParseDuration accepts Go durations ("30m", "24h") and whole days ("1d", "7d").
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == ""
}
