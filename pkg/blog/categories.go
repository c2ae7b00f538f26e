package blog

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
)

// Category operations

func (s *service) ListCategories(ctx context.Context) ([]*Category, error) {
	return s.repository.ListCategories(ctx)
}

func (s *service) CreateCategory(ctx context.Context, req CreateCategoryRequest) (*Category, error) {
	if _, err := s.resolver.CurrentIdentity(ctx); err != nil {
		return nil, err
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	categorySlug, err := slugForCategory(req.Name)
	if err != nil {
		return nil, err
	}

	category := &Category{
		ID:   uuid.New(),
		Name: req.Name,
		Slug: categorySlug,
	}
	if err := s.repository.CreateCategory(ctx, category); err != nil {
		return nil, &CategoryError{CategoryID: category.ID, Op: "create", Err: err}
	}
	return category, nil
}

func (s *service) UpdateCategory(ctx context.Context, req UpdateCategoryRequest) (*Category, error) {
	if _, err := s.resolver.CurrentIdentity(ctx); err != nil {
		return nil, err
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	categorySlug, err := slugForCategory(req.Name)
	if err != nil {
		return nil, err
	}

	category, err := s.repository.GetCategory(ctx, req.CategoryID)
	if err != nil {
		return nil, err
	}
	category.Name = req.Name
	category.Slug = categorySlug
	if err := s.repository.UpdateCategory(ctx, category); err != nil {
		return nil, &CategoryError{CategoryID: category.ID, Op: "update", Err: err}
	}
	return category, nil
}

// DeleteCategory removes a category without touching the posts that
// reference it.
func (s *service) DeleteCategory(ctx context.Context, id uuid.UUID) (bool, error) {
	if _, err := s.resolver.CurrentIdentity(ctx); err != nil {
		return false, err
	}
	if err := s.repository.DeleteCategory(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, &CategoryError{CategoryID: id, Op: "delete", Err: err}
	}
	return true, nil
}

func slugForCategory(name string) (string, error) {
	categorySlug := CategorySlug(name)
	if categorySlug == "" {
		return "", &ValidationError{Fields: []FieldError{{Field: "name", Rule: "slug"}}}
	}
	return categorySlug, nil
}
