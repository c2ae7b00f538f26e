package blog

import (
	"io"

	"github.com/google/uuid"
)

// Request DTOs

// CreatePostRequest contains parameters for creating a post
type CreatePostRequest struct {
	Title           string     `json:"title" validate:"required,max=120"`
	Slug            string     `json:"slug" validate:"required,max=150,slug"`
	Introduction    string     `json:"introduction" validate:"required,max=250"`
	Content         string     `json:"content" validate:"required"`
	CategoryID      *uuid.UUID `json:"category_id,omitempty"`
	FeaturedImageID *uuid.UUID `json:"featured_image_id,omitempty"`
	Publish         bool       `json:"is_published"`
}

// UpdatePostRequest replaces the editable fields of a post and runs the
// publish-state transition for Publish.
type UpdatePostRequest struct {
	PostID          uuid.UUID  `json:"id"`
	Title           string     `json:"title" validate:"required,max=120"`
	Slug            string     `json:"slug" validate:"required,max=150,slug"`
	Introduction    string     `json:"introduction" validate:"required,max=250"`
	Content         string     `json:"content" validate:"required"`
	CategoryID      *uuid.UUID `json:"category_id,omitempty"`
	FeaturedImageID *uuid.UUID `json:"featured_image_id,omitempty"`
	Publish         bool       `json:"is_published"`
}

// AddCommentRequest contains parameters for commenting on a post
type AddCommentRequest struct {
	PostID  uuid.UUID `json:"post_id"`
	Content string    `json:"content" validate:"required,max=500"`
}

// UpdateCommentRequest replaces the body of a comment
type UpdateCommentRequest struct {
	CommentID uuid.UUID `json:"id"`
	Content   string    `json:"content" validate:"required,max=500"`
}

// CreateCategoryRequest contains parameters for creating a category
type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// UpdateCategoryRequest renames a category
type UpdateCategoryRequest struct {
	CategoryID uuid.UUID `json:"id"`
	Name       string    `json:"name" validate:"required,max=100"`
}

// UploadMediaRequest contains the stream and metadata of an upload.
// Size is the declared size when known; zero means unknown.
type UploadMediaRequest struct {
	FileName    string    `json:"file_name" validate:"required,max=255"`
	ContentType string    `json:"content_type" validate:"max=255"`
	Size        int64     `json:"size" validate:"gte=0"`
	Reader      io.Reader `json:"-" validate:"-"`
}
