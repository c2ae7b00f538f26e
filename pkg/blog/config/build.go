package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/simple-blog/pkg/blog"
	"github.com/tendant/simple-blog/pkg/blog/auth"
	identitymemory "github.com/tendant/simple-blog/pkg/blog/identity/memory"
	"github.com/tendant/simple-blog/pkg/blog/repo/memory"
	repopg "github.com/tendant/simple-blog/pkg/blog/repo/postgres"
	fsstorage "github.com/tendant/simple-blog/pkg/blog/storage/fs"
	memorystorage "github.com/tendant/simple-blog/pkg/blog/storage/memory"
	s3storage "github.com/tendant/simple-blog/pkg/blog/storage/s3"
)

// Runtime holds the service built from a configuration and the resources
// it owns.
type Runtime struct {
	Service       blog.Service
	Authenticator *auth.Authenticator
	Storage       StorageConfig

	pool *pgxpool.Pool
}

// Ping checks that the backing database is reachable.
func (rt *Runtime) Ping(ctx context.Context) error {
	if rt.pool == nil {
		return nil
	}
	return rt.pool.Ping(ctx)
}

// Close releases the database pool
func (rt *Runtime) Close() {
	if rt.pool != nil {
		rt.pool.Close()
	}
}

// BuildService creates the service and its collaborators from the configuration
func (c *ServerConfig) BuildService(ctx context.Context) (*Runtime, error) {
	logger := slog.Default()
	rt := &Runtime{}

	storage, err := c.Storage()
	if err != nil {
		return nil, err
	}
	rt.Storage = storage

	authenticator, err := auth.New(c.JWTSecret, c.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to build authenticator: %w", err)
	}
	rt.Authenticator = authenticator

	var (
		repo       blog.Repository
		identities blog.IdentityStore
		seedUser   func(ctx context.Context, user *blog.User) error
	)
	if c.UsesPostgres() {
		pool, err := c.connectPostgres(ctx)
		if err != nil {
			return nil, err
		}
		rt.pool = pool
		if c.BootstrapSchema {
			if err := c.bootstrap(ctx, pool); err != nil {
				pool.Close()
				return nil, fmt.Errorf("failed to bootstrap schema: %w", err)
			}
		}
		repo = repopg.NewWithPool(pool)
		store := repopg.NewIdentityStoreWithPool(pool)
		identities = store
		seedUser = store.UpsertUser
	} else {
		repo = memory.New()
		store := identitymemory.New()
		identities = store
		seedUser = func(_ context.Context, user *blog.User) error {
			store.AddUser(*user)
			return nil
		}
	}

	blobs, err := buildBlobStore(storage, c.MediaURLPrefix, c.AWSAccessKeyID, c.AWSSecretAccessKey)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("failed to build storage backend %s: %w", storage.Type, err)
	}

	svc, err := blog.New(
		blog.WithRepository(repo),
		blog.WithIdentityStore(identities),
		blog.WithIdentityResolver(blog.NewStoreIdentityResolver(blog.NewContextIdentityResolver(), identities)),
		blog.WithBlobStore(storage.Type, blobs),
		blog.WithEventSink(blog.NewLoggingEventSink(logger)),
		blog.WithLogger(logger),
		blog.WithMaxUploadSize(c.MaxUploadBytes),
	)
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.Service = svc

	if adminID, ok := c.AdminID(); ok {
		if err := seedAdmin(ctx, svc, identities, seedUser, adminID, c.AdminEmail); err != nil {
			rt.Close()
			return nil, fmt.Errorf("failed to seed admin: %w", err)
		}
		logger.Info("admin account ready", "user_id", adminID)
	}

	return rt, nil
}

// seedAdmin creates the admin account when missing and grants it the admin role.
func seedAdmin(ctx context.Context, svc blog.Service, identities blog.IdentityStore,
	seedUser func(context.Context, *blog.User) error, adminID uuid.UUID, email string) error {
	_, err := identities.GetUser(ctx, adminID)
	switch {
	case errors.Is(err, blog.ErrNotFound):
		name := email
		if name == "" {
			name = "admin"
		}
		if err := seedUser(ctx, &blog.User{ID: adminID, UserName: name, Email: email}); err != nil {
			return err
		}
	case err != nil:
		return err
	}
	return svc.EnsureAdmin(ctx, adminID)
}

func (c *ServerConfig) connectPostgres(ctx context.Context) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(c.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
	}
	schema := c.DBSchema
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		if schema == "" {
			return nil
		}
		_, err := conn.Exec(ctx, "SET search_path TO "+pgx.Identifier{schema}.Sanitize())
		return err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	return pool, nil
}

// bootstrap creates the configured schema and the blog tables in it.
func (c *ServerConfig) bootstrap(ctx context.Context, pool *pgxpool.Pool) error {
	if c.DBSchema != "" {
		if _, err := pool.Exec(ctx, "CREATE SCHEMA IF NOT EXISTS "+pgx.Identifier{c.DBSchema}.Sanitize()); err != nil {
			return err
		}
	}
	return repopg.Migrate(ctx, pool)
}

// buildBlobStore creates a BlobStore based on the storage configuration
func buildBlobStore(sc StorageConfig, mediaURLPrefix, accessKeyID, secretAccessKey string) (blog.BlobStore, error) {
	switch sc.Type {
	case "memory":
		return memorystorage.New(), nil

	case "fs":
		return fsstorage.New(fsstorage.Config{
			BaseDir:   sc.BaseDir,
			URLPrefix: mediaURLPrefix,
		})

	case "s3":
		return s3storage.New(s3storage.Config{
			Region:          sc.Region,
			Bucket:          sc.Bucket,
			KeyPrefix:       sc.KeyPrefix,
			AccessKeyID:     accessKeyID,
			SecretAccessKey: secretAccessKey,
			Endpoint:        sc.Endpoint,
			UsePathStyle:    sc.UsePathStyle,
			PublicBaseURL:   sc.PublicURL,
		})

	default:
		return nil, fmt.Errorf("unsupported storage backend type: %s", sc.Type)
	}
}
