package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/tendant/simple-blog/pkg/blog"
)

// Repository implements blog.Repository using in-memory storage.
//
// Writes are serialized with any running unit of work; WithTx snapshots the
// maps and restores them when the function fails. Reads never block on a
// unit of work and may observe its uncommitted writes. Calling the outer
// repository from inside WithTx deadlocks: use the supplied one.
type Repository struct {
	s    *store
	inTx bool
}

type store struct {
	txMu sync.Mutex
	mu   sync.RWMutex

	posts      map[uuid.UUID]*blog.Post
	comments   map[uuid.UUID]*blog.Comment
	categories map[uuid.UUID]*blog.Category
	media      map[uuid.UUID]*blog.MediaFile
}

type snapshot struct {
	posts      map[uuid.UUID]*blog.Post
	comments   map[uuid.UUID]*blog.Comment
	categories map[uuid.UUID]*blog.Category
	media      map[uuid.UUID]*blog.MediaFile
}

// New creates a new in-memory repository
func New() blog.Repository {
	return &Repository{
		s: &store{
			posts:      make(map[uuid.UUID]*blog.Post),
			comments:   make(map[uuid.UUID]*blog.Comment),
			categories: make(map[uuid.UUID]*blog.Category),
			media:      make(map[uuid.UUID]*blog.MediaFile),
		},
	}
}

func (r *Repository) write(fn func(s *store) error) error {
	if !r.inTx {
		r.s.txMu.Lock()
		defer r.s.txMu.Unlock()
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return fn(r.s)
}

func (r *Repository) WithTx(ctx context.Context, fn func(tx blog.Repository) error) error {
	if r.inTx {
		return fn(r)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r.s.txMu.Lock()
	defer r.s.txMu.Unlock()

	r.s.mu.RLock()
	snap := r.s.snapshot()
	r.s.mu.RUnlock()

	err := fn(&Repository{s: r.s, inTx: true})
	if err == nil {
		// a context cancelled mid-transaction aborts the commit, as it does in postgres
		err = ctx.Err()
	}
	if err != nil {
		r.s.mu.Lock()
		r.s.restore(snap)
		r.s.mu.Unlock()
		return err
	}
	return nil
}

func (s *store) snapshot() snapshot {
	return snapshot{
		posts:      cloneMap(s.posts),
		comments:   cloneMap(s.comments),
		categories: cloneMap(s.categories),
		media:      cloneMap(s.media),
	}
}

func (s *store) restore(snap snapshot) {
	s.posts = snap.posts
	s.comments = snap.comments
	s.categories = snap.categories
	s.media = snap.media
}

// Stored values are never mutated in place, so a shallow copy of the map is
// enough for a snapshot.
func cloneMap[V any](m map[uuid.UUID]V) map[uuid.UUID]V {
	out := make(map[uuid.UUID]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

func copyPost(p *blog.Post) *blog.Post {
	cp := *p
	cp.CategoryID = cloneID(p.CategoryID)
	cp.FeaturedImageID = cloneID(p.FeaturedImageID)
	if p.PublishedAt != nil {
		t := *p.PublishedAt
		cp.PublishedAt = &t
	}
	if p.ModifiedAt != nil {
		t := *p.ModifiedAt
		cp.ModifiedAt = &t
	}
	cp.Owner = nil
	cp.Category = nil
	cp.FeaturedImage = nil
	return &cp
}

func copyComment(c *blog.Comment) *blog.Comment {
	cp := *c
	if c.ModifiedAt != nil {
		t := *c.ModifiedAt
		cp.ModifiedAt = &t
	}
	cp.Author = nil
	return &cp
}

// Post operations

func (r *Repository) CreatePost(ctx context.Context, post *blog.Post) error {
	return r.write(func(s *store) error {
		if _, exists := s.posts[post.ID]; exists {
			return blog.ErrConflict
		}
		if s.slugTaken(post.Slug, post.ID) {
			return blog.ErrSlugTaken
		}
		s.posts[post.ID] = copyPost(post)
		return nil
	})
}

func (s *store) slugTaken(slug string, except uuid.UUID) bool {
	for id, p := range s.posts {
		if id != except && p.Slug == slug {
			return true
		}
	}
	return false
}

func (r *Repository) GetPost(ctx context.Context, id uuid.UUID) (*blog.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	post, exists := r.s.posts[id]
	if !exists {
		return nil, blog.ErrPostNotFound
	}
	return copyPost(post), nil
}

func (r *Repository) GetPostBySlug(ctx context.Context, slug string) (*blog.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, post := range r.s.posts {
		if post.Slug == slug {
			return copyPost(post), nil
		}
	}
	return nil, blog.ErrPostNotFound
}

func (r *Repository) UpdatePost(ctx context.Context, post *blog.Post) error {
	return r.write(func(s *store) error {
		if _, exists := s.posts[post.ID]; !exists {
			return blog.ErrPostNotFound
		}
		if s.slugTaken(post.Slug, post.ID) {
			return blog.ErrSlugTaken
		}
		s.posts[post.ID] = copyPost(post)
		return nil
	})
}

func (r *Repository) DeletePost(ctx context.Context, id uuid.UUID) error {
	return r.write(func(s *store) error {
		if _, exists := s.posts[id]; !exists {
			return blog.ErrPostNotFound
		}
		for _, c := range s.comments {
			if c.PostID == id {
				return blog.ErrPostHasComments
			}
		}
		delete(s.posts, id)
		return nil
	})
}

func (r *Repository) ListPosts(ctx context.Context, filter blog.PostFilter) ([]*blog.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]*blog.Post, 0)
	for _, post := range r.s.posts {
		if filter.OwnerID != nil && post.OwnerID != *filter.OwnerID {
			continue
		}
		if filter.CategoryID != nil && (post.CategoryID == nil || *post.CategoryID != *filter.CategoryID) {
			continue
		}
		if filter.PublishedOnly && !post.IsPublished {
			continue
		}
		result = append(result, copyPost(post))
	}

	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if filter.OrderBy == blog.OrderByPublishedDesc {
			switch {
			case a.PublishedAt != nil && b.PublishedAt == nil:
				return true
			case a.PublishedAt == nil && b.PublishedAt != nil:
				return false
			case a.PublishedAt != nil && !a.PublishedAt.Equal(*b.PublishedAt):
				return a.PublishedAt.After(*b.PublishedAt)
			}
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	})

	return result, nil
}

func (r *Repository) DeletePostsByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	var removed int64
	err := r.write(func(s *store) error {
		owned := make(map[uuid.UUID]bool)
		for id, p := range s.posts {
			if p.OwnerID == ownerID {
				owned[id] = true
			}
		}
		for _, c := range s.comments {
			if owned[c.PostID] {
				return blog.ErrPostHasComments
			}
		}
		for id := range owned {
			delete(s.posts, id)
		}
		removed = int64(len(owned))
		return nil
	})
	return removed, err
}

// Comment operations

func (r *Repository) CreateComment(ctx context.Context, comment *blog.Comment) error {
	return r.write(func(s *store) error {
		if _, exists := s.posts[comment.PostID]; !exists {
			return blog.ErrReferenceViolated
		}
		if _, exists := s.comments[comment.ID]; exists {
			return blog.ErrConflict
		}
		s.comments[comment.ID] = copyComment(comment)
		return nil
	})
}

func (r *Repository) GetComment(ctx context.Context, id uuid.UUID) (*blog.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	comment, exists := r.s.comments[id]
	if !exists {
		return nil, blog.ErrCommentNotFound
	}
	return copyComment(comment), nil
}

func (r *Repository) UpdateComment(ctx context.Context, comment *blog.Comment) error {
	return r.write(func(s *store) error {
		if _, exists := s.comments[comment.ID]; !exists {
			return blog.ErrCommentNotFound
		}
		s.comments[comment.ID] = copyComment(comment)
		return nil
	})
}

func (r *Repository) DeleteComment(ctx context.Context, id uuid.UUID) error {
	return r.write(func(s *store) error {
		if _, exists := s.comments[id]; !exists {
			return blog.ErrCommentNotFound
		}
		delete(s.comments, id)
		return nil
	})
}

func (r *Repository) ListCommentsByPost(ctx context.Context, postID uuid.UUID) ([]*blog.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]*blog.Comment, 0)
	for _, c := range r.s.comments {
		if c.PostID == postID {
			result = append(result, copyComment(c))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID.String() < result[j].ID.String()
	})
	return result, nil
}

func (r *Repository) deleteComments(match func(c *blog.Comment, s *store) bool) (int64, error) {
	var removed int64
	err := r.write(func(s *store) error {
		for id, c := range s.comments {
			if match(c, s) {
				delete(s.comments, id)
				removed++
			}
		}
		return nil
	})
	return removed, err
}

func (r *Repository) DeleteCommentsByPost(ctx context.Context, postID uuid.UUID) (int64, error) {
	return r.deleteComments(func(c *blog.Comment, _ *store) bool {
		return c.PostID == postID
	})
}

func (r *Repository) DeleteCommentsByAuthor(ctx context.Context, authorID uuid.UUID) (int64, error) {
	return r.deleteComments(func(c *blog.Comment, _ *store) bool {
		return c.AuthorID == authorID
	})
}

func (r *Repository) DeleteCommentsOnPostsOwnedBy(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	return r.deleteComments(func(c *blog.Comment, s *store) bool {
		post, exists := s.posts[c.PostID]
		return exists && post.OwnerID == ownerID
	})
}

// Category operations

func (r *Repository) CreateCategory(ctx context.Context, category *blog.Category) error {
	return r.write(func(s *store) error {
		if _, exists := s.categories[category.ID]; exists {
			return blog.ErrConflict
		}
		if s.categoryTaken(category, category.ID) {
			return blog.ErrCategoryNameTaken
		}
		cp := *category
		s.categories[category.ID] = &cp
		return nil
	})
}

func (s *store) categoryTaken(category *blog.Category, except uuid.UUID) bool {
	for id, c := range s.categories {
		if id == except {
			continue
		}
		if strings.EqualFold(c.Name, category.Name) || c.Slug == category.Slug {
			return true
		}
	}
	return false
}

func (r *Repository) GetCategory(ctx context.Context, id uuid.UUID) (*blog.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	category, exists := r.s.categories[id]
	if !exists {
		return nil, blog.ErrCategoryNotFound
	}
	cp := *category
	return &cp, nil
}

func (r *Repository) GetCategoryBySlug(ctx context.Context, slug string) (*blog.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, category := range r.s.categories {
		if category.Slug == slug {
			cp := *category
			return &cp, nil
		}
	}
	return nil, blog.ErrCategoryNotFound
}

func (r *Repository) UpdateCategory(ctx context.Context, category *blog.Category) error {
	return r.write(func(s *store) error {
		if _, exists := s.categories[category.ID]; !exists {
			return blog.ErrCategoryNotFound
		}
		if s.categoryTaken(category, category.ID) {
			return blog.ErrCategoryNameTaken
		}
		cp := *category
		s.categories[category.ID] = &cp
		return nil
	})
}

// DeleteCategory leaves referencing posts untouched.
func (r *Repository) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return r.write(func(s *store) error {
		if _, exists := s.categories[id]; !exists {
			return blog.ErrCategoryNotFound
		}
		delete(s.categories, id)
		return nil
	})
}

func (r *Repository) ListCategories(ctx context.Context) ([]*blog.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]*blog.Category, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		cp := *c
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := strings.ToLower(result[i].Name), strings.ToLower(result[j].Name)
		if a != b {
			return a < b
		}
		return result[i].Name < result[j].Name
	})
	return result, nil
}

// Media operations

func (r *Repository) CreateMediaFile(ctx context.Context, media *blog.MediaFile) error {
	return r.write(func(s *store) error {
		if _, exists := s.media[media.ID]; exists {
			return blog.ErrConflict
		}
		cp := *media
		cp.UploaderID = cloneID(media.UploaderID)
		s.media[media.ID] = &cp
		return nil
	})
}

func (r *Repository) GetMediaFile(ctx context.Context, id uuid.UUID) (*blog.MediaFile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	media, exists := r.s.media[id]
	if !exists {
		return nil, blog.ErrMediaNotFound
	}
	cp := *media
	cp.UploaderID = cloneID(media.UploaderID)
	return &cp, nil
}

func (r *Repository) ListMediaFiles(ctx context.Context) ([]*blog.MediaFile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]*blog.MediaFile, 0, len(r.s.media))
	for _, m := range r.s.media {
		cp := *m
		cp.UploaderID = cloneID(m.UploaderID)
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].UploadedAt.Equal(result[j].UploadedAt) {
			return result[i].UploadedAt.After(result[j].UploadedAt)
		}
		return result[i].ID.String() < result[j].ID.String()
	})
	return result, nil
}

// DeleteMediaFile leaves posts featuring the file untouched.
func (r *Repository) DeleteMediaFile(ctx context.Context, id uuid.UUID) error {
	return r.write(func(s *store) error {
		if _, exists := s.media[id]; !exists {
			return blog.ErrMediaNotFound
		}
		delete(s.media, id)
		return nil
	})
}
