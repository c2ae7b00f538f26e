package blog

import (
	"context"
	"io"

	"github.com/google/uuid"
)

// Service defines the main interface for the blog content service.
//
// Mutating operations resolve the caller before touching storage. Reads of
// published material are anonymous.
type Service interface {
	// Identity
	CurrentIdentity(ctx context.Context) (Identity, error)

	// Post operations
	ListPublishedPosts(ctx context.Context) ([]*Post, error)
	ListPublishedPostsByCategory(ctx context.Context, categorySlug string) ([]*Post, error)
	GetPublishedPostBySlug(ctx context.Context, slug string) (*Post, error)
	ListMyPosts(ctx context.Context) ([]*Post, error)
	GetPostForEdit(ctx context.Context, id uuid.UUID) (*Post, error)
	CreatePost(ctx context.Context, req CreatePostRequest) (*Post, error)
	UpdatePost(ctx context.Context, req UpdatePostRequest) (*Post, error)
	DeletePost(ctx context.Context, id uuid.UUID) (bool, error)
	DeleteAllPostsOwnedBy(ctx context.Context, userID uuid.UUID) (int64, error)

	// Admin post views
	ListPostsForAdmin(ctx context.Context) ([]*Post, error)
	GetPostByID(ctx context.Context, id uuid.UUID) (*Post, error)
	ListPostsByUser(ctx context.Context, userID uuid.UUID) ([]*Post, error)

	// Comment operations
	ListComments(ctx context.Context, postID uuid.UUID) ([]*Comment, error)
	AddComment(ctx context.Context, req AddCommentRequest) (*Comment, error)
	UpdateComment(ctx context.Context, req UpdateCommentRequest) (*Comment, error)
	DeleteComment(ctx context.Context, id uuid.UUID) (bool, error)
	DeleteAllCommentsByUser(ctx context.Context, userID uuid.UUID) (int64, error)

	// Category operations
	ListCategories(ctx context.Context) ([]*Category, error)
	CreateCategory(ctx context.Context, req CreateCategoryRequest) (*Category, error)
	UpdateCategory(ctx context.Context, req UpdateCategoryRequest) (*Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) (bool, error)

	// Media operations
	UploadMedia(ctx context.Context, req UploadMediaRequest) (*MediaFile, error)
	GetMedia(ctx context.Context, id uuid.UUID) (*MediaFile, error)
	ListMedia(ctx context.Context) ([]*MediaFile, error)
	OpenMedia(ctx context.Context, id uuid.UUID) (*MediaFile, io.ReadCloser, error)
	GetMediaURL(ctx context.Context, id uuid.UUID) (string, error)
	DeleteMedia(ctx context.Context, id uuid.UUID) (bool, error)

	// Access administration
	ListAllUsers(ctx context.Context) ([]*User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
	ListRoleNames(ctx context.Context) ([]string, error)
	GetUserRoles(ctx context.Context, userID uuid.UUID) ([]string, error)
	SetUserRoles(ctx context.Context, userID uuid.UUID, roles []string) error
	RemoveUserContent(ctx context.Context, userID uuid.UUID) (*RemovalSummary, error)
	EnsureAdmin(ctx context.Context, userID uuid.UUID) error
}

// RemovalSummary reports what RemoveUserContent deleted.
type RemovalSummary struct {
	UserID          uuid.UUID `json:"user_id"`
	PostsRemoved    int64     `json:"posts_removed"`
	CommentsRemoved int64     `json:"comments_removed"`
}
