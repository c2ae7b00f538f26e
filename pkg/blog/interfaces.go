package blog

import (
	"context"
	"io"

	"github.com/google/uuid"
)

// Repository defines the interface for blog persistence.
//
// Implementations translate storage failures into the package error kinds:
// unique violations surface as ErrConflict (ErrSlugTaken, ErrCategoryNameTaken),
// missing rows as the entity's not-found error, and lost connections as
// ErrStorageUnavailable. The Post to Comment reference is restrictive:
// DeletePost fails with ErrPostHasComments while comments reference the post.
type Repository interface {
	// Post operations
	CreatePost(ctx context.Context, post *Post) error
	GetPost(ctx context.Context, id uuid.UUID) (*Post, error)
	GetPostBySlug(ctx context.Context, slug string) (*Post, error)
	UpdatePost(ctx context.Context, post *Post) error
	DeletePost(ctx context.Context, id uuid.UUID) error
	ListPosts(ctx context.Context, filter PostFilter) ([]*Post, error)
	DeletePostsByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)

	// Comment operations
	CreateComment(ctx context.Context, comment *Comment) error
	GetComment(ctx context.Context, id uuid.UUID) (*Comment, error)
	UpdateComment(ctx context.Context, comment *Comment) error
	DeleteComment(ctx context.Context, id uuid.UUID) error
	ListCommentsByPost(ctx context.Context, postID uuid.UUID) ([]*Comment, error)
	DeleteCommentsByPost(ctx context.Context, postID uuid.UUID) (int64, error)
	DeleteCommentsByAuthor(ctx context.Context, authorID uuid.UUID) (int64, error)
	// DeleteCommentsOnPostsOwnedBy removes every comment on the posts owned by ownerID
	DeleteCommentsOnPostsOwnedBy(ctx context.Context, ownerID uuid.UUID) (int64, error)

	// Category operations
	CreateCategory(ctx context.Context, category *Category) error
	GetCategory(ctx context.Context, id uuid.UUID) (*Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*Category, error)
	UpdateCategory(ctx context.Context, category *Category) error
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	ListCategories(ctx context.Context) ([]*Category, error)

	// Media operations
	CreateMediaFile(ctx context.Context, media *MediaFile) error
	GetMediaFile(ctx context.Context, id uuid.UUID) (*MediaFile, error)
	ListMediaFiles(ctx context.Context) ([]*MediaFile, error)
	DeleteMediaFile(ctx context.Context, id uuid.UUID) error

	// WithTx runs fn inside a single unit of work. If fn returns an error every
	// change made through the supplied Repository is rolled back.
	WithTx(ctx context.Context, fn func(tx Repository) error) error
}

// BlobStore defines the interface for media byte storage
type BlobStore interface {
	// Upload stores the stream and returns a durable locator for it
	Upload(ctx context.Context, reader io.Reader, params UploadParams) (string, error)

	// Download opens the stored bytes
	Download(ctx context.Context, objectKey string) (io.ReadCloser, error)

	// GetDownloadURL returns a URL a client may fetch the bytes from
	GetDownloadURL(ctx context.Context, objectKey string, downloadFilename string) (string, error)

	// Delete removes the stored bytes
	Delete(ctx context.Context, objectKey string) error
}

// UploadParams contains parameters for uploading an object
type UploadParams struct {
	ObjectKey string
	MimeType  string
	Size      int64
}

// IdentityResolver resolves the calling identity from the ambient context.
// It fails with ErrUnauthenticated when no identity is available.
type IdentityResolver interface {
	CurrentIdentity(ctx context.Context) (Identity, error)
}

// IdentityStore is the external account and role store. The service only
// reads users and edits role memberships; credentials are out of its reach.
type IdentityStore interface {
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)
	ListRoleNames(ctx context.Context) ([]string, error)
	GetUserRoles(ctx context.Context, userID uuid.UUID) ([]string, error)
	AddUserToRoles(ctx context.Context, userID uuid.UUID, roles []string) error
	RemoveUserFromRoles(ctx context.Context, userID uuid.UUID, roles []string) error
	// EnsureRole creates the role if it does not exist yet
	EnsureRole(ctx context.Context, role string) error
}

// EventSink defines the interface for event handling
type EventSink interface {
	// PostCreated is fired when a post is created
	PostCreated(ctx context.Context, post *Post) error

	// PostUpdated is fired when a post is updated
	PostUpdated(ctx context.Context, post *Post) error

	// PostDeleted is fired when a post and its comments are removed
	PostDeleted(ctx context.Context, postID uuid.UUID, commentsRemoved int64) error

	// CommentAdded is fired when a comment is created
	CommentAdded(ctx context.Context, comment *Comment) error

	// CommentDeleted is fired when a comment is removed
	CommentDeleted(ctx context.Context, commentID uuid.UUID) error

	// MediaUploaded is fired when a media file is registered
	MediaUploaded(ctx context.Context, media *MediaFile) error
}
