package blog

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
)

// Comment operations

// ListComments returns the comments of a post oldest first.
func (s *service) ListComments(ctx context.Context, postID uuid.UUID) ([]*Comment, error) {
	comments, err := s.repository.ListCommentsByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := s.newProjector().comments(ctx, comments); err != nil {
		return nil, err
	}
	return comments, nil
}

func (s *service) AddComment(ctx context.Context, req AddCommentRequest) (*Comment, error) {
	caller, err := s.resolver.CurrentIdentity(ctx)
	if err != nil {
		return nil, err
	}
	req.Content = strings.TrimSpace(req.Content)
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	comment := &Comment{
		ID:        uuid.New(),
		PostID:    req.PostID,
		AuthorID:  caller.UserID,
		Content:   req.Content,
		CreatedAt: s.now(),
	}
	err = s.repository.WithTx(ctx, func(tx Repository) error {
		if _, err := tx.GetPost(ctx, req.PostID); err != nil {
			return err
		}
		return tx.CreateComment(ctx, comment)
	})
	if err != nil {
		return nil, &CommentError{CommentID: comment.ID, Op: "add", Err: err}
	}

	s.notify(ctx, "comment_added", s.eventSink.CommentAdded(ctx, comment))

	if err := s.newProjector().comments(ctx, []*Comment{comment}); err != nil {
		return nil, err
	}
	return comment, nil
}

// UpdateComment replaces the body of a comment. Only the author may edit.
func (s *service) UpdateComment(ctx context.Context, req UpdateCommentRequest) (*Comment, error) {
	caller, err := s.resolver.CurrentIdentity(ctx)
	if err != nil {
		return nil, err
	}
	req.Content = strings.TrimSpace(req.Content)
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	var comment *Comment
	err = s.repository.WithTx(ctx, func(tx Repository) error {
		existing, err := tx.GetComment(ctx, req.CommentID)
		if err != nil {
			return err
		}
		if err := authorize(caller, existing.AuthorID, false); err != nil {
			return err
		}
		now := s.now()
		existing.Content = req.Content
		existing.ModifiedAt = &now
		if err := tx.UpdateComment(ctx, existing); err != nil {
			return err
		}
		comment = existing
		return nil
	})
	if err != nil {
		return nil, &CommentError{CommentID: req.CommentID, Op: "update", Err: err}
	}

	if err := s.newProjector().comments(ctx, []*Comment{comment}); err != nil {
		return nil, err
	}
	return comment, nil
}

// DeleteComment removes a comment. The author or an admin may delete; a
// missing comment reports false.
func (s *service) DeleteComment(ctx context.Context, id uuid.UUID) (bool, error) {
	caller, err := s.resolver.CurrentIdentity(ctx)
	if err != nil {
		return false, err
	}

	found := true
	err = s.repository.WithTx(ctx, func(tx Repository) error {
		comment, err := tx.GetComment(ctx, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				found = false
				return nil
			}
			return err
		}
		if err := authorize(caller, comment.AuthorID, true); err != nil {
			return err
		}
		return tx.DeleteComment(ctx, id)
	})
	if err != nil {
		return false, &CommentError{CommentID: id, Op: "delete", Err: err}
	}
	if !found {
		return false, nil
	}

	s.notify(ctx, "comment_deleted", s.eventSink.CommentDeleted(ctx, id))
	return true, nil
}

// DeleteAllCommentsByUser removes every comment written by userID.
func (s *service) DeleteAllCommentsByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repository.DeleteCommentsByAuthor(ctx, userID)
}
