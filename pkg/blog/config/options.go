package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// WithEnv reads the environment into the configuration. Variables that are
// unset fall back to their env-default, so apply WithEnv before options
// meant to override it.
func WithEnv() Option {
	return func(c *ServerConfig) error {
		if err := cleanenv.ReadEnv(c); err != nil {
			return fmt.Errorf("failed to read environment: %w", err)
		}
		return nil
	}
}

// WithPort sets the server port.
func WithPort(port string) Option {
	return func(c *ServerConfig) error {
		c.Port = port
		return nil
	}
}

// WithEnvironment sets the runtime environment name.
func WithEnvironment(env string) Option {
	return func(c *ServerConfig) error {
		c.Environment = env
		return nil
	}
}

// WithDatabase sets the database URL and schema.
func WithDatabase(url, schema string) Option {
	return func(c *ServerConfig) error {
		c.DatabaseURL = url
		if schema != "" {
			c.DBSchema = schema
		}
		return nil
	}
}

// WithBootstrapSchema creates the tables at startup when enabled.
func WithBootstrapSchema(enabled bool) Option {
	return func(c *ServerConfig) error {
		c.BootstrapSchema = enabled
		return nil
	}
}

// WithStorageURL selects the blob store.
func WithStorageURL(storageURL string) Option {
	return func(c *ServerConfig) error {
		c.StorageURL = storageURL
		return nil
	}
}

// WithMediaURLPrefix sets the public path filesystem uploads are served from.
func WithMediaURLPrefix(prefix string) Option {
	return func(c *ServerConfig) error {
		c.MediaURLPrefix = prefix
		return nil
	}
}

// WithMaxUploadBytes sets the media size ceiling.
func WithMaxUploadBytes(n int64) Option {
	return func(c *ServerConfig) error {
		c.MaxUploadBytes = n
		return nil
	}
}

// WithJWT sets the token signing secret and lifetime.
func WithJWT(secret string, ttl time.Duration) Option {
	return func(c *ServerConfig) error {
		c.JWTSecret = secret
		if ttl > 0 {
			c.TokenTTL = ttl
		}
		return nil
	}
}

// WithAdmin seeds the given account with the admin role at startup.
func WithAdmin(userID, email string) Option {
	return func(c *ServerConfig) error {
		c.AdminUserID = userID
		c.AdminEmail = email
		return nil
	}
}
