// Package config builds a blog server from environment and programmatic
// settings.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/simple-blog/pkg/blog"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:           "8080",
		Environment:    "development",
		DBSchema:       "blog",
		StorageURL:     "memory://",
		MediaURLPrefix: "/images/uploads",
		MaxUploadBytes: blog.MaxUploadSize,
		JWTSecret:      "development-secret",
		TokenTTL:       24 * time.Hour,
	}
}

// ServerConfig represents server configuration for the blog service.
// The env tags are read by WithEnv.
type ServerConfig struct {
	Port        string `env:"PORT" env-default:"8080"`
	Environment string `env:"ENVIRONMENT" env-default:"development"` // development, production, testing

	// Database configuration. An empty URL or "memory" selects the in-memory store.
	DatabaseURL     string `env:"DATABASE_URL"`
	DBSchema        string `env:"BLOG_DB_SCHEMA" env-default:"blog"`
	BootstrapSchema bool   `env:"BOOTSTRAP_SCHEMA" env-default:"false"`

	// Storage configuration
	//   memory://
	//   file:///var/lib/blog/uploads
	//   s3://bucket?region=us-east-1&endpoint=http://localhost:9000&path_style=true&public_url=https://cdn.example.com
	StorageURL         string `env:"STORAGE_URL" env-default:"memory://"`
	MediaURLPrefix     string `env:"MEDIA_URL_PREFIX" env-default:"/images/uploads"`
	MaxUploadBytes     int64  `env:"MAX_UPLOAD_BYTES" env-default:"5242880"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`

	// Authentication
	JWTSecret string        `env:"JWT_SECRET" env-default:"development-secret"`
	TokenTTL  time.Duration `env:"JWT_TTL" env-default:"24h"`

	// Admin seeding
	AdminUserID string `env:"ADMIN_USER_ID"`
	AdminEmail  string `env:"ADMIN_EMAIL"`
}

// StorageConfig is the parsed form of StorageURL
type StorageConfig struct {
	Type         string // "memory", "fs", "s3"
	BaseDir      string
	Bucket       string
	Region       string
	Endpoint     string
	UsePathStyle bool
	KeyPrefix    string
	PublicURL    string
}

// UsesPostgres reports whether DatabaseURL selects Postgres
func (c *ServerConfig) UsesPostgres() bool {
	return strings.HasPrefix(c.DatabaseURL, "postgres://") || strings.HasPrefix(c.DatabaseURL, "postgresql://")
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	switch {
	case c.DatabaseURL == "", c.DatabaseURL == "memory", c.UsesPostgres():
	default:
		return fmt.Errorf("unsupported DATABASE_URL format: %s (use 'memory' or 'postgresql://...')", c.DatabaseURL)
	}

	if _, err := c.Storage(); err != nil {
		return err
	}

	if c.MaxUploadBytes <= 0 {
		return errors.New("max upload bytes must be positive")
	}

	if c.JWTSecret == "" {
		return errors.New("jwt secret is required")
	}
	if c.Environment == "production" && c.JWTSecret == defaults().JWTSecret {
		return errors.New("JWT_SECRET must be set in production")
	}
	if c.TokenTTL <= 0 {
		return errors.New("token ttl must be positive")
	}

	if c.AdminUserID != "" {
		if _, err := uuid.Parse(c.AdminUserID); err != nil {
			return fmt.Errorf("invalid ADMIN_USER_ID: %w", err)
		}
	} else if c.AdminEmail != "" {
		return errors.New("ADMIN_EMAIL requires ADMIN_USER_ID")
	}

	return nil
}

// AdminID returns the configured admin account, if any
func (c *ServerConfig) AdminID() (uuid.UUID, bool) {
	if c.AdminUserID == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(c.AdminUserID)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// Storage parses StorageURL
func (c *ServerConfig) Storage() (StorageConfig, error) {
	raw := c.StorageURL
	switch {
	case raw == "", raw == "memory", raw == "memory://":
		return StorageConfig{Type: "memory"}, nil

	case strings.HasPrefix(raw, "file://"):
		dir := strings.TrimPrefix(raw, "file://")
		if dir == "" {
			return StorageConfig{}, errors.New("filesystem path cannot be empty in STORAGE_URL")
		}
		return StorageConfig{Type: "fs", BaseDir: dir}, nil

	case strings.HasPrefix(raw, "s3://"):
		u, err := url.Parse(raw)
		if err != nil {
			return StorageConfig{}, fmt.Errorf("invalid STORAGE_URL: %w", err)
		}
		if u.Host == "" {
			return StorageConfig{}, errors.New("S3 bucket name cannot be empty in STORAGE_URL")
		}
		q := u.Query()
		sc := StorageConfig{
			Type:      "s3",
			Bucket:    u.Host,
			Region:    q.Get("region"),
			Endpoint:  q.Get("endpoint"),
			KeyPrefix: strings.Trim(u.Path, "/"),
			PublicURL: q.Get("public_url"),
		}
		if sc.Region == "" {
			sc.Region = "us-east-1"
		}
		if v := q.Get("path_style"); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return StorageConfig{}, fmt.Errorf("invalid path_style in STORAGE_URL: %w", err)
			}
			sc.UsePathStyle = b
		}
		return sc, nil
	}

	return StorageConfig{}, fmt.Errorf("unsupported STORAGE_URL format: %s (use 'memory://', 'file://...', or 's3://...')", raw)
}
