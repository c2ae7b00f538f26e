package blog

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Post operations

func (s *service) ListPublishedPosts(ctx context.Context) ([]*Post, error) {
	return s.listPosts(ctx, PostFilter{PublishedOnly: true, OrderBy: OrderByPublishedDesc})
}

func (s *service) ListPublishedPostsByCategory(ctx context.Context, categorySlug string) ([]*Post, error) {
	category, err := s.repository.GetCategoryBySlug(ctx, categorySlug)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return []*Post{}, nil
		}
		return nil, err
	}
	return s.listPosts(ctx, PostFilter{
		CategoryID:    &category.ID,
		PublishedOnly: true,
		OrderBy:       OrderByPublishedDesc,
	})
}

func (s *service) GetPublishedPostBySlug(ctx context.Context, slug string) (*Post, error) {
	post, err := s.repository.GetPostBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !post.IsPublished {
		return nil, ErrPostNotFound
	}
	if err := s.newProjector().post(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *service) ListMyPosts(ctx context.Context) ([]*Post, error) {
	caller, err := s.resolver.CurrentIdentity(ctx)
	if err != nil {
		return nil, err
	}
	return s.listPosts(ctx, PostFilter{OwnerID: &caller.UserID, OrderBy: OrderByCreatedDesc})
}

func (s *service) GetPostForEdit(ctx context.Context, id uuid.UUID) (*Post, error) {
	caller, err := s.resolver.CurrentIdentity(ctx)
	if err != nil {
		return nil, err
	}
	post, err := s.repository.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(caller, post.OwnerID, false); err != nil {
		return nil, &PostError{PostID: id, Op: "edit", Err: err}
	}
	if err := s.newProjector().post(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *service) CreatePost(ctx context.Context, req CreatePostRequest) (*Post, error) {
	caller, err := s.resolver.CurrentIdentity(ctx)
	if err != nil {
		return nil, err
	}
	normalizePostFields(&req.Title, &req.Slug, &req.Introduction)
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	now := s.now()
	post := &Post{
		ID:              uuid.New(),
		Title:           req.Title,
		Slug:            req.Slug,
		Introduction:    req.Introduction,
		Content:         req.Content,
		OwnerID:         caller.UserID,
		CategoryID:      req.CategoryID,
		FeaturedImageID: req.FeaturedImageID,
		CreatedAt:       now,
	}
	post.setPublished(req.Publish, now)

	err = s.repository.WithTx(ctx, func(tx Repository) error {
		if err := checkPostReferences(ctx, tx, post); err != nil {
			return err
		}
		return tx.CreatePost(ctx, post)
	})
	if err != nil {
		return nil, &PostError{PostID: post.ID, Op: "create", Err: err}
	}

	s.notify(ctx, "post_created", s.eventSink.PostCreated(ctx, post))

	if err := s.newProjector().post(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *service) UpdatePost(ctx context.Context, req UpdatePostRequest) (*Post, error) {
	caller, err := s.resolver.CurrentIdentity(ctx)
	if err != nil {
		return nil, err
	}
	normalizePostFields(&req.Title, &req.Slug, &req.Introduction)
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	var post *Post
	err = s.repository.WithTx(ctx, func(tx Repository) error {
		existing, err := tx.GetPost(ctx, req.PostID)
		if err != nil {
			return err
		}
		if err := authorize(caller, existing.OwnerID, false); err != nil {
			return err
		}

		now := s.now()
		existing.Title = req.Title
		existing.Slug = req.Slug
		existing.Introduction = req.Introduction
		existing.Content = req.Content
		existing.CategoryID = req.CategoryID
		existing.FeaturedImageID = req.FeaturedImageID
		existing.setPublished(req.Publish, now)
		existing.ModifiedAt = &now

		if err := checkPostReferences(ctx, tx, existing); err != nil {
			return err
		}
		if err := tx.UpdatePost(ctx, existing); err != nil {
			return err
		}
		post = existing
		return nil
	})
	if err != nil {
		return nil, &PostError{PostID: req.PostID, Op: "update", Err: err}
	}

	s.notify(ctx, "post_updated", s.eventSink.PostUpdated(ctx, post))

	if err := s.newProjector().post(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// DeletePost removes a post together with its comments. A missing post
// reports false without error.
func (s *service) DeletePost(ctx context.Context, id uuid.UUID) (bool, error) {
	caller, err := s.resolver.CurrentIdentity(ctx)
	if err != nil {
		return false, err
	}

	found := true
	var commentsRemoved int64
	err = s.repository.WithTx(ctx, func(tx Repository) error {
		post, err := tx.GetPost(ctx, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				found = false
				return nil
			}
			return err
		}
		if err := authorize(caller, post.OwnerID, true); err != nil {
			return err
		}
		commentsRemoved, err = tx.DeleteCommentsByPost(ctx, id)
		if err != nil {
			return err
		}
		return tx.DeletePost(ctx, id)
	})
	if err != nil {
		return false, &PostError{PostID: id, Op: "delete", Err: err}
	}
	if !found {
		return false, nil
	}

	s.notify(ctx, "post_deleted", s.eventSink.PostDeleted(ctx, id, commentsRemoved))
	return true, nil
}

// DeleteAllPostsOwnedBy removes every post of userID and the comments on them.
func (s *service) DeleteAllPostsOwnedBy(ctx context.Context, userID uuid.UUID) (int64, error) {
	var removed int64
	err := s.repository.WithTx(ctx, func(tx Repository) error {
		if _, err := tx.DeleteCommentsOnPostsOwnedBy(ctx, userID); err != nil {
			return err
		}
		n, err := tx.DeletePostsByOwner(ctx, userID)
		if err != nil {
			return err
		}
		removed = n
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// Admin post views

func (s *service) ListPostsForAdmin(ctx context.Context) ([]*Post, error) {
	if _, err := s.requireAdmin(ctx); err != nil {
		return nil, err
	}
	return s.listPosts(ctx, PostFilter{OrderBy: OrderByCreatedDesc})
}

func (s *service) GetPostByID(ctx context.Context, id uuid.UUID) (*Post, error) {
	if _, err := s.requireAdmin(ctx); err != nil {
		return nil, err
	}
	post, err := s.repository.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.newProjector().post(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *service) ListPostsByUser(ctx context.Context, userID uuid.UUID) ([]*Post, error) {
	if _, err := s.requireAdmin(ctx); err != nil {
		return nil, err
	}
	return s.listPosts(ctx, PostFilter{OwnerID: &userID, OrderBy: OrderByCreatedDesc})
}

func (s *service) listPosts(ctx context.Context, filter PostFilter) ([]*Post, error) {
	posts, err := s.repository.ListPosts(ctx, filter)
	if err != nil {
		return nil, err
	}
	if err := s.newProjector().posts(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// checkPostReferences verifies the category and featured image a post names
// exist at write time.
func checkPostReferences(ctx context.Context, repo Repository, post *Post) error {
	if post.CategoryID != nil {
		if _, err := repo.GetCategory(ctx, *post.CategoryID); err != nil {
			return err
		}
	}
	if post.FeaturedImageID != nil {
		if _, err := repo.GetMediaFile(ctx, *post.FeaturedImageID); err != nil {
			return err
		}
	}
	return nil
}
