package postgres

import (
	"context"
	"fmt"
)

// Schema holds the DDL statements for the blog tables. Tables are created
// unqualified; the connection's search_path selects the schema.
//
// Posts reference categories and media files without foreign keys: deleting
// either leaves the reference dangling and reads clear it. Comments restrict
// deletion of their post.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS categories (
		id UUID PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		slug VARCHAR(150) NOT NULL,
		CONSTRAINT categories_slug_key UNIQUE (slug)
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS categories_name_key ON categories (lower(name))`,
	`CREATE TABLE IF NOT EXISTS media_files (
		id UUID PRIMARY KEY,
		file_name VARCHAR(255) NOT NULL,
		object_key VARCHAR(1024) NOT NULL,
		storage_backend VARCHAR(100) NOT NULL DEFAULT '',
		locator TEXT NOT NULL,
		content_type VARCHAR(255) NOT NULL,
		size_bytes BIGINT NOT NULL,
		uploaded_at TIMESTAMPTZ NOT NULL,
		uploader_id UUID,
		CONSTRAINT media_files_object_key_key UNIQUE (storage_backend, object_key)
	)`,
	`CREATE TABLE IF NOT EXISTS posts (
		id UUID PRIMARY KEY,
		title VARCHAR(120) NOT NULL,
		slug VARCHAR(150) NOT NULL,
		introduction VARCHAR(250) NOT NULL,
		content TEXT NOT NULL,
		owner_id UUID NOT NULL,
		category_id UUID,
		featured_image_id UUID,
		is_published BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL,
		published_at TIMESTAMPTZ,
		modified_at TIMESTAMPTZ,
		CONSTRAINT posts_slug_key UNIQUE (slug),
		CONSTRAINT posts_published_at_check CHECK (is_published = (published_at IS NOT NULL))
	)`,
	`CREATE INDEX IF NOT EXISTS posts_owner_id_idx ON posts (owner_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS posts_published_idx ON posts (published_at DESC) WHERE is_published`,
	`CREATE TABLE IF NOT EXISTS comments (
		id UUID PRIMARY KEY,
		post_id UUID NOT NULL REFERENCES posts(id) ON DELETE RESTRICT,
		author_id UUID NOT NULL,
		content VARCHAR(500) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		modified_at TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS comments_post_id_idx ON comments (post_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		user_name VARCHAR(256) NOT NULL UNIQUE,
		email VARCHAR(256) NOT NULL DEFAULT '',
		first_name VARCHAR(100) NOT NULL DEFAULT '',
		last_name VARCHAR(100) NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS roles (
		name VARCHAR(256) PRIMARY KEY
	)`,
	`CREATE TABLE IF NOT EXISTS user_roles (
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		role_name VARCHAR(256) NOT NULL REFERENCES roles(name) ON DELETE CASCADE,
		PRIMARY KEY (user_id, role_name)
	)`,
}

// Migrate creates the blog tables if they do not exist.
func Migrate(ctx context.Context, db DBTX) error {
	for _, stmt := range Schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
