package blog

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/exp/slices"
)

// Access administration

func (s *service) ListAllUsers(ctx context.Context) ([]*User, error) {
	if _, err := s.requireAdmin(ctx); err != nil {
		return nil, err
	}
	if err := s.requireIdentityStore(); err != nil {
		return nil, err
	}
	return s.identities.ListUsers(ctx)
}

func (s *service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	if _, err := s.requireAdmin(ctx); err != nil {
		return nil, err
	}
	if err := s.requireIdentityStore(); err != nil {
		return nil, err
	}
	return s.identities.GetUser(ctx, id)
}

func (s *service) ListRoleNames(ctx context.Context) ([]string, error) {
	if _, err := s.requireAdmin(ctx); err != nil {
		return nil, err
	}
	if err := s.requireIdentityStore(); err != nil {
		return nil, err
	}
	return s.identities.ListRoleNames(ctx)
}

func (s *service) GetUserRoles(ctx context.Context, userID uuid.UUID) ([]string, error) {
	if err := s.requireIdentityStore(); err != nil {
		return nil, err
	}
	roles, err := s.identities.GetUserRoles(ctx, userID)
	if err != nil {
		return nil, err
	}
	sort.Strings(roles)
	return roles, nil
}

// SetUserRoles brings the roles of userID in line with desired, adding the
// missing ones and removing the rest. Roles the store does not know are
// rejected before anything changes; a failed removal takes back the grants
// made in the same call.
func (s *service) SetUserRoles(ctx context.Context, userID uuid.UUID, desired []string) error {
	if err := s.requireIdentityStore(); err != nil {
		return err
	}
	current, err := s.identities.GetUserRoles(ctx, userID)
	if err != nil {
		return err
	}

	known, err := s.identities.ListRoleNames(ctx)
	if err != nil {
		return err
	}
	var unknown []FieldError
	for _, role := range desired {
		if !slices.Contains(known, role) {
			unknown = append(unknown, FieldError{Field: "roles", Rule: "oneof", Param: role})
		}
	}
	if len(unknown) > 0 {
		return &ValidationError{Fields: unknown}
	}

	var toAdd, toRemove []string
	for _, role := range desired {
		if !slices.Contains(current, role) && !slices.Contains(toAdd, role) {
			toAdd = append(toAdd, role)
		}
	}
	for _, role := range current {
		if !slices.Contains(desired, role) {
			toRemove = append(toRemove, role)
		}
	}

	if len(toAdd) > 0 {
		if err := s.identities.AddUserToRoles(ctx, userID, toAdd); err != nil {
			return err
		}
	}
	if len(toRemove) > 0 {
		if err := s.identities.RemoveUserFromRoles(ctx, userID, toRemove); err != nil {
			if len(toAdd) > 0 {
				if undoErr := s.identities.RemoveUserFromRoles(ctx, userID, toAdd); undoErr != nil {
					s.logger.ErrorContext(ctx, "failed to revert role grant", "user_id", userID, "roles", toAdd, "error", undoErr)
				}
			}
			return err
		}
	}
	if len(toAdd)+len(toRemove) > 0 {
		s.logger.InfoContext(ctx, "user roles changed", "user_id", userID, "added", toAdd, "removed", toRemove)
	}
	return nil
}

// RemoveUserContent deletes everything a user authored: their comments, the
// comments on their posts, and their posts.
func (s *service) RemoveUserContent(ctx context.Context, userID uuid.UUID) (*RemovalSummary, error) {
	caller, err := s.requireAdmin(ctx)
	if err != nil {
		return nil, err
	}

	summary := &RemovalSummary{UserID: userID}
	err = s.repository.WithTx(ctx, func(tx Repository) error {
		authored, err := tx.DeleteCommentsByAuthor(ctx, userID)
		if err != nil {
			return err
		}
		onPosts, err := tx.DeleteCommentsOnPostsOwnedBy(ctx, userID)
		if err != nil {
			return err
		}
		posts, err := tx.DeletePostsByOwner(ctx, userID)
		if err != nil {
			return err
		}
		summary.CommentsRemoved = authored + onPosts
		summary.PostsRemoved = posts
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user content removed",
		"user_id", userID,
		"posts", summary.PostsRemoved,
		"comments", summary.CommentsRemoved,
		"by", caller.UserID)
	return summary, nil
}

// EnsureAdmin creates the admin role if needed and grants it to userID.
func (s *service) EnsureAdmin(ctx context.Context, userID uuid.UUID) error {
	if err := s.requireIdentityStore(); err != nil {
		return err
	}
	if err := s.identities.EnsureRole(ctx, RoleAdmin); err != nil {
		return err
	}
	roles, err := s.identities.GetUserRoles(ctx, userID)
	if err != nil {
		return err
	}
	if slices.Contains(roles, RoleAdmin) {
		return nil
	}
	return s.identities.AddUserToRoles(ctx, userID, []string{RoleAdmin})
}
