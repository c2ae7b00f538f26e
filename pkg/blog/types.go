package blog

import (
	"time"

	"github.com/google/uuid"
)

// RoleAdmin is the role that grants the admin override.
const RoleAdmin = "Admin"

// MaxUploadSize is the default size ceiling for media uploads (5 MiB).
const MaxUploadSize int64 = 5 << 20

// Post is the central aggregate: an article owned by the user who created it.
//
// IsPublished and PublishedAt move together: PublishedAt is set exactly when
// IsPublished is true.
type Post struct {
	ID              uuid.UUID  `json:"id"`
	Title           string     `json:"title"`
	Slug            string     `json:"slug"`
	Introduction    string     `json:"introduction"`
	Content         string     `json:"content"`
	OwnerID         uuid.UUID  `json:"owner_id"`
	CategoryID      *uuid.UUID `json:"category_id,omitempty"`
	FeaturedImageID *uuid.UUID `json:"featured_image_id,omitempty"`
	IsPublished     bool       `json:"is_published"`
	CreatedAt       time.Time  `json:"created_at"`
	PublishedAt     *time.Time `json:"published_at,omitempty"`
	ModifiedAt      *time.Time `json:"modified_at,omitempty"`

	// Projections (not persisted - populated by service layer)
	Owner         *User      `json:"owner,omitempty"`
	Category      *Category  `json:"category,omitempty"`
	FeaturedImage *MediaFile `json:"featured_image,omitempty"`
}

// setPublished applies the publish-state transition at time now.
// Draft to published stamps PublishedAt, anything to draft clears it, and
// published to published keeps the first publication date.
func (p *Post) setPublished(publish bool, now time.Time) {
	switch {
	case publish && !p.IsPublished:
		p.PublishedAt = &now
	case !publish:
		p.PublishedAt = nil
	}
	p.IsPublished = publish
}

// Category is a taxonomy entry posts may reference.
type Category struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

// Comment is a reader comment scoped to one post and owned by its author.
type Comment struct {
	ID         uuid.UUID  `json:"id"`
	PostID     uuid.UUID  `json:"post_id"`
	AuthorID   uuid.UUID  `json:"author_id"`
	Content    string     `json:"content"`
	CreatedAt  time.Time  `json:"created_at"`
	ModifiedAt *time.Time `json:"modified_at,omitempty"`

	Author *User `json:"author,omitempty"`
}

// MediaFile records an uploaded file. The bytes live in a BlobStore; Locator
// is the durable location returned by that store.
type MediaFile struct {
	ID             uuid.UUID  `json:"id"`
	FileName       string     `json:"file_name"`
	ObjectKey      string     `json:"object_key"`
	StorageBackend string     `json:"storage_backend"`
	Locator        string     `json:"locator"`
	ContentType    string     `json:"content_type"`
	Size           int64      `json:"size"`
	UploadedAt     time.Time  `json:"uploaded_at"`
	UploaderID     *uuid.UUID `json:"uploader_id,omitempty"`
}

// User is the read-only projection of an account held by the identity store.
type User struct {
	ID        uuid.UUID `json:"id"`
	UserName  string    `json:"user_name"`
	Email     string    `json:"email,omitempty"`
	FirstName string    `json:"first_name,omitempty"`
	LastName  string    `json:"last_name,omitempty"`
}

// Identity is the authenticated caller as supplied by the authenticator.
type Identity struct {
	UserID uuid.UUID
	Roles  []string
}

// HasRole reports whether the identity carries the named role.
func (i Identity) HasRole(role string) bool {
	for _, r := range i.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the identity carries the admin role.
func (i Identity) IsAdmin() bool {
	return i.HasRole(RoleAdmin)
}

// PostOrder selects the ordering of ListPosts results.
type PostOrder int

const (
	// OrderByCreatedDesc lists newest-created first
	OrderByCreatedDesc PostOrder = iota
	// OrderByPublishedDesc lists newest-published first
	OrderByPublishedDesc
)

// PostFilter narrows ListPosts.
type PostFilter struct {
	OwnerID       *uuid.UUID
	CategoryID    *uuid.UUID
	PublishedOnly bool
	OrderBy       PostOrder
}
