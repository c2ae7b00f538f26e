package blog

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

type identityCtxKey struct{}

// WithIdentity returns a copy of ctx carrying the authenticated identity.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey{}, id)
}

// IdentityFromContext returns the identity stored by WithIdentity.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityCtxKey{}).(Identity)
	return id, ok
}

// ContextIdentityResolver resolves the caller from the request context.
type ContextIdentityResolver struct{}

// NewContextIdentityResolver creates the default identity resolver
func NewContextIdentityResolver() IdentityResolver {
	return ContextIdentityResolver{}
}

// CurrentIdentity returns the identity placed on ctx by the authenticator.
func (ContextIdentityResolver) CurrentIdentity(ctx context.Context) (Identity, error) {
	id, ok := IdentityFromContext(ctx)
	if !ok || id.UserID == uuid.Nil {
		return Identity{}, ErrUnauthenticated
	}
	return id, nil
}

// StoreIdentityResolver refreshes the roles of the resolved caller from the
// identity store, so role changes apply before a token expires. A caller the
// store has no account for keeps the identity and roles the authenticator
// supplied.
type StoreIdentityResolver struct {
	base  IdentityResolver
	store IdentityStore
}

// NewStoreIdentityResolver wraps base with role lookups against store.
func NewStoreIdentityResolver(base IdentityResolver, store IdentityStore) IdentityResolver {
	return &StoreIdentityResolver{base: base, store: store}
}

func (r *StoreIdentityResolver) CurrentIdentity(ctx context.Context) (Identity, error) {
	id, err := r.base.CurrentIdentity(ctx)
	if err != nil {
		return Identity{}, err
	}
	if _, err := r.store.GetUser(ctx, id.UserID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return id, nil
		}
		return Identity{}, err
	}
	roles, err := r.store.GetUserRoles(ctx, id.UserID)
	if err != nil {
		return Identity{}, err
	}
	id.Roles = roles
	return id, nil
}
