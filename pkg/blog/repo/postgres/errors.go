package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/tendant/simple-blog/pkg/blog"
)

// handlePostgresError maps driver errors onto the blog error kinds.
func handlePostgresError(operation string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "23505": // unique_violation
			switch pgErr.ConstraintName {
			case "posts_slug_key":
				return fmt.Errorf("%s: %w", operation, blog.ErrSlugTaken)
			case "categories_slug_key", "categories_name_key":
				return fmt.Errorf("%s: %w", operation, blog.ErrCategoryNameTaken)
			}
			return fmt.Errorf("%s: duplicate entry %s: %w", operation, pgErr.ConstraintName, blog.ErrConflict)
		case pgErr.Code == "23503": // foreign_key_violation
			if strings.HasPrefix(operation, "delete") && strings.HasPrefix(pgErr.ConstraintName, "comments_post_id") {
				return fmt.Errorf("%s: %w", operation, blog.ErrPostHasComments)
			}
			return fmt.Errorf("%s: %s: %w", operation, pgErr.ConstraintName, blog.ErrReferenceViolated)
		case pgErr.Code == "23502": // not_null_violation
			return &blog.ValidationError{Fields: []blog.FieldError{{Field: pgErr.ColumnName, Rule: "required"}}}
		case pgErr.Code == "23514": // check_violation
			return fmt.Errorf("%s: check %s failed: %w", operation, pgErr.ConstraintName, blog.ErrValidation)
		case pgErr.Code == "42P01": // undefined_table
			return fmt.Errorf("%s: table does not exist - database migration required: %w", operation, blog.ErrStorageUnavailable)
		case strings.HasPrefix(pgErr.Code, "08"), pgErr.Code == "57P01", pgErr.Code == "53300":
			return fmt.Errorf("%s: %w: %w", operation, blog.ErrStorageUnavailable, err)
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) || pgconn.Timeout(err) {
		return fmt.Errorf("%s: %w: %w", operation, blog.ErrStorageUnavailable, err)
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}
