// Package auth turns bearer JWTs into blog identities. Tokens are verified
// with go-chi/jwtauth; the "sub" claim carries the user ID and the "roles"
// claim the role names.
package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/jwtauth"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/tendant/simple-blog/pkg/blog"
)

// RolesClaim is the JWT claim holding the caller's role names.
const RolesClaim = "roles"

// Authenticator verifies and issues HS256 tokens.
type Authenticator struct {
	ja  *jwtauth.JWTAuth
	ttl time.Duration
}

// New creates an authenticator for secret. Tokens it issues expire after ttl.
func New(secret string, ttl time.Duration) (*Authenticator, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Authenticator{
		ja:  jwtauth.New("HS256", []byte(secret), nil),
		ttl: ttl,
	}, nil
}

// IssueToken signs a token for the user with the given roles.
func (a *Authenticator) IssueToken(userID uuid.UUID, roles []string) (string, error) {
	claims := map[string]interface{}{
		"sub":      userID.String(),
		RolesClaim: roles,
	}
	jwtauth.SetIssuedNow(claims)
	jwtauth.SetExpiry(claims, time.Now().Add(a.ttl))

	_, token, err := a.ja.Encode(claims)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

// Middleware verifies the bearer token (header or "jwt" cookie) and places
// the identity on the request context. Requests without a token continue
// anonymously; requests with an invalid token are rejected with 401.
func (a *Authenticator) Middleware() func(http.Handler) http.Handler {
	verify := jwtauth.Verifier(a.ja)
	return func(next http.Handler) http.Handler {
		return verify(identify(next))
	}
}

func identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if errors.Is(err, jwtauth.ErrNoTokenFound) || (err == nil && token == nil) {
			next.ServeHTTP(w, r)
			return
		}
		if err != nil {
			unauthorized(w, r, err)
			return
		}

		id, err := identityFromClaims(token.Subject(), claims)
		if err != nil {
			unauthorized(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(blog.WithIdentity(r.Context(), id)))
	})
}

func unauthorized(w http.ResponseWriter, r *http.Request, err error) {
	slog.Debug("rejected token", "error", err, "path", r.URL.Path)
	render.Status(r, http.StatusUnauthorized)
	render.JSON(w, r, map[string]string{"error": "invalid or expired token"})
}

func identityFromClaims(subject string, claims map[string]interface{}) (blog.Identity, error) {
	userID, err := uuid.Parse(subject)
	if err != nil {
		return blog.Identity{}, fmt.Errorf("invalid subject claim: %w", err)
	}
	if userID == uuid.Nil {
		return blog.Identity{}, errors.New("empty subject claim")
	}
	return blog.Identity{UserID: userID, Roles: rolesFromClaim(claims[RolesClaim])}, nil
}

// rolesFromClaim accepts a JSON array or a single role name.
func rolesFromClaim(v interface{}) []string {
	switch roles := v.(type) {
	case []string:
		return roles
	case []interface{}:
		out := make([]string, 0, len(roles))
		for _, role := range roles {
			if s, ok := role.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		if roles == "" {
			return nil
		}
		return []string{roles}
	}
	return nil
}
