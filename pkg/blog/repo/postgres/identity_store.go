package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/simple-blog/pkg/blog"
)

// IdentityStore implements blog.IdentityStore over the users, roles and
// user_roles tables.
type IdentityStore struct {
	db DBTX
}

var _ blog.IdentityStore = (*IdentityStore)(nil)

// NewIdentityStore creates an identity store on db
func NewIdentityStore(db DBTX) *IdentityStore {
	return &IdentityStore{db: db}
}

// NewIdentityStoreWithPool creates an identity store on a connection pool
func NewIdentityStoreWithPool(pool *pgxpool.Pool) *IdentityStore {
	return &IdentityStore{db: pool}
}

// UpsertUser inserts the account or refreshes its profile fields.
func (s *IdentityStore) UpsertUser(ctx context.Context, user *blog.User) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO users (id, user_name, email, first_name, last_name)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			user_name = EXCLUDED.user_name, email = EXCLUDED.email,
			first_name = EXCLUDED.first_name, last_name = EXCLUDED.last_name`,
		user.ID, user.UserName, user.Email, user.FirstName, user.LastName)
	if err != nil {
		return handlePostgresError("upsert user", err)
	}
	return nil
}

func (s *IdentityStore) GetUser(ctx context.Context, id uuid.UUID) (*blog.User, error) {
	var u blog.User
	err := s.db.QueryRow(ctx,
		`SELECT id, user_name, email, first_name, last_name FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.UserName, &u.Email, &u.FirstName, &u.LastName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, blog.ErrUserNotFound
		}
		return nil, handlePostgresError("get user", err)
	}
	return &u, nil
}

func (s *IdentityStore) ListUsers(ctx context.Context) ([]*blog.User, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, user_name, email, first_name, last_name FROM users ORDER BY lower(user_name)`)
	if err != nil {
		return nil, handlePostgresError("list users", err)
	}
	defer rows.Close()

	users := make([]*blog.User, 0)
	for rows.Next() {
		var u blog.User
		if err := rows.Scan(&u.ID, &u.UserName, &u.Email, &u.FirstName, &u.LastName); err != nil {
			return nil, handlePostgresError("scan user", err)
		}
		users = append(users, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, handlePostgresError("list users", err)
	}
	return users, nil
}

func (s *IdentityStore) queryNames(ctx context.Context, operation, query string, args ...interface{}) ([]string, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, handlePostgresError(operation, err)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, handlePostgresError(operation, err)
	}
	return names, nil
}

func (s *IdentityStore) ListRoleNames(ctx context.Context) ([]string, error) {
	return s.queryNames(ctx, "list roles", `SELECT name FROM roles ORDER BY name`)
}

func (s *IdentityStore) GetUserRoles(ctx context.Context, userID uuid.UUID) ([]string, error) {
	if _, err := s.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.queryNames(ctx, "get user roles",
		`SELECT role_name FROM user_roles WHERE user_id = $1 ORDER BY role_name`, userID)
}

// AddUserToRoles fails with blog.ErrReferenceViolated when a role does not exist.
func (s *IdentityStore) AddUserToRoles(ctx context.Context, userID uuid.UUID, roles []string) error {
	if _, err := s.GetUser(ctx, userID); err != nil {
		return err
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO user_roles (user_id, role_name)
		SELECT $1, unnest($2::text[])
		ON CONFLICT DO NOTHING`, userID, roles)
	if err != nil {
		return handlePostgresError("add user to roles", err)
	}
	return nil
}

func (s *IdentityStore) RemoveUserFromRoles(ctx context.Context, userID uuid.UUID, roles []string) error {
	_, err := s.db.Exec(ctx,
		`DELETE FROM user_roles WHERE user_id = $1 AND role_name = ANY($2)`, userID, roles)
	if err != nil {
		return handlePostgresError("remove user from roles", err)
	}
	return nil
}

func (s *IdentityStore) EnsureRole(ctx context.Context, role string) error {
	_, err := s.db.Exec(ctx, `INSERT INTO roles (name) VALUES ($1) ON CONFLICT DO NOTHING`, role)
	if err != nil {
		return handlePostgresError("ensure role", err)
	}
	return nil
}
