package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/tendant/simple-blog/pkg/blog"
)

// Store implements blog.IdentityStore in memory. It is meant for development
// and tests, where accounts are seeded with AddUser.
type Store struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*blog.User
	roles map[string]map[uuid.UUID]bool
}

// New creates an empty identity store
func New() *Store {
	return &Store{
		users: make(map[uuid.UUID]*blog.User),
		roles: make(map[string]map[uuid.UUID]bool),
	}
}

// AddUser registers or replaces an account
func (s *Store) AddUser(user blog.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = &user
}

// RemoveUser deletes an account and its role memberships
func (s *Store) RemoveUser(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
	for _, members := range s.roles {
		delete(members, id)
	}
}

func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*blog.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.users[id]
	if !exists {
		return nil, blog.ErrUserNotFound
	}
	cp := *user
	return &cp, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]*blog.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*blog.User, 0, len(s.users))
	for _, u := range s.users {
		cp := *u
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool {
		return strings.ToLower(result[i].UserName) < strings.ToLower(result[j].UserName)
	})
	return result, nil
}

func (s *Store) ListRoleNames(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.roles))
	for name := range s.roles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *Store) GetUserRoles(ctx context.Context, userID uuid.UUID) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, exists := s.users[userID]; !exists {
		return nil, blog.ErrUserNotFound
	}
	roles := make([]string, 0)
	for name, members := range s.roles {
		if members[userID] {
			roles = append(roles, name)
		}
	}
	sort.Strings(roles)
	return roles, nil
}

// AddUserToRoles fails with blog.ErrReferenceViolated when a role does not exist.
func (s *Store) AddUserToRoles(ctx context.Context, userID uuid.UUID, roles []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[userID]; !exists {
		return blog.ErrUserNotFound
	}
	for _, role := range roles {
		if _, exists := s.roles[role]; !exists {
			return fmt.Errorf("role %s: %w", role, blog.ErrReferenceViolated)
		}
	}
	for _, role := range roles {
		s.roles[role][userID] = true
	}
	return nil
}

func (s *Store) RemoveUserFromRoles(ctx context.Context, userID uuid.UUID, roles []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[userID]; !exists {
		return blog.ErrUserNotFound
	}
	for _, role := range roles {
		if members, exists := s.roles[role]; exists {
			delete(members, userID)
		}
	}
	return nil
}

func (s *Store) EnsureRole(ctx context.Context, role string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.roles[role]; !exists {
		s.roles[role] = make(map[uuid.UUID]bool)
	}
	return nil
}
