package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/simple-blog/pkg/blog"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Repository implements blog.Repository using PostgreSQL
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL repository
func New(db DBTX) *Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

// WithTx runs fn in a database transaction. Inside a transaction fn runs on
// the same one.
func (r *Repository) WithTx(ctx context.Context, fn func(tx blog.Repository) error) error {
	if _, ok := r.db.(pgx.Tx); ok {
		return fn(r)
	}
	b, ok := r.db.(beginner)
	if !ok {
		return fmt.Errorf("database handle %T does not support transactions", r.db)
	}

	tx, err := b.Begin(ctx)
	if err != nil {
		return handlePostgresError("begin transaction", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&Repository{db: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return handlePostgresError("commit transaction", err)
	}
	return nil
}

var _ blog.Repository = (*Repository)(nil)

// Post operations

const postColumns = `id, title, slug, introduction, content, owner_id, category_id,
	featured_image_id, is_published, created_at, published_at, modified_at`

func scanPost(row pgx.Row) (*blog.Post, error) {
	var p blog.Post
	err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Introduction, &p.Content, &p.OwnerID,
		&p.CategoryID, &p.FeaturedImageID, &p.IsPublished, &p.CreatedAt, &p.PublishedAt, &p.ModifiedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repository) CreatePost(ctx context.Context, post *blog.Post) error {
	query := `
		INSERT INTO posts (` + postColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.db.Exec(ctx, query,
		post.ID, post.Title, post.Slug, post.Introduction, post.Content, post.OwnerID,
		post.CategoryID, post.FeaturedImageID, post.IsPublished, post.CreatedAt,
		post.PublishedAt, post.ModifiedAt)
	if err != nil {
		return handlePostgresError("create post", err)
	}
	return nil
}

func (r *Repository) GetPost(ctx context.Context, id uuid.UUID) (*blog.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`

	post, err := scanPost(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, blog.ErrPostNotFound
		}
		return nil, handlePostgresError("get post", err)
	}
	return post, nil
}

func (r *Repository) GetPostBySlug(ctx context.Context, slug string) (*blog.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE slug = $1`

	post, err := scanPost(r.db.QueryRow(ctx, query, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, blog.ErrPostNotFound
		}
		return nil, handlePostgresError("get post by slug", err)
	}
	return post, nil
}

func (r *Repository) UpdatePost(ctx context.Context, post *blog.Post) error {
	query := `
		UPDATE posts SET
			title = $2, slug = $3, introduction = $4, content = $5,
			category_id = $6, featured_image_id = $7, is_published = $8,
			published_at = $9, modified_at = $10
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		post.ID, post.Title, post.Slug, post.Introduction, post.Content,
		post.CategoryID, post.FeaturedImageID, post.IsPublished,
		post.PublishedAt, post.ModifiedAt)
	if err != nil {
		return handlePostgresError("update post", err)
	}
	if tag.RowsAffected() == 0 {
		return blog.ErrPostNotFound
	}
	return nil
}

func (r *Repository) DeletePost(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return handlePostgresError("delete post", err)
	}
	if tag.RowsAffected() == 0 {
		return blog.ErrPostNotFound
	}
	return nil
}

func (r *Repository) ListPosts(ctx context.Context, filter blog.PostFilter) ([]*blog.Post, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.OwnerID != nil {
		args = append(args, *filter.OwnerID)
		conds = append(conds, fmt.Sprintf("owner_id = $%d", len(args)))
	}
	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		conds = append(conds, fmt.Sprintf("category_id = $%d", len(args)))
	}
	if filter.PublishedOnly {
		conds = append(conds, "is_published")
	}

	query := `SELECT ` + postColumns + ` FROM posts`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	switch filter.OrderBy {
	case blog.OrderByPublishedDesc:
		query += ` ORDER BY published_at DESC NULLS LAST, created_at DESC, id`
	default:
		query += ` ORDER BY created_at DESC, id`
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, handlePostgresError("list posts", err)
	}
	defer rows.Close()

	posts := make([]*blog.Post, 0)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, handlePostgresError("scan post", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, handlePostgresError("list posts", err)
	}
	return posts, nil
}

func (r *Repository) DeletePostsByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM posts WHERE owner_id = $1`, ownerID)
	if err != nil {
		return 0, handlePostgresError("delete posts by owner", err)
	}
	return tag.RowsAffected(), nil
}

// Comment operations

const commentColumns = `id, post_id, author_id, content, created_at, modified_at`

func scanComment(row pgx.Row) (*blog.Comment, error) {
	var c blog.Comment
	if err := row.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Content, &c.CreatedAt, &c.ModifiedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repository) CreateComment(ctx context.Context, comment *blog.Comment) error {
	query := `INSERT INTO comments (` + commentColumns + `) VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(ctx, query,
		comment.ID, comment.PostID, comment.AuthorID, comment.Content,
		comment.CreatedAt, comment.ModifiedAt)
	if err != nil {
		return handlePostgresError("create comment", err)
	}
	return nil
}

func (r *Repository) GetComment(ctx context.Context, id uuid.UUID) (*blog.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE id = $1`

	comment, err := scanComment(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, blog.ErrCommentNotFound
		}
		return nil, handlePostgresError("get comment", err)
	}
	return comment, nil
}

func (r *Repository) UpdateComment(ctx context.Context, comment *blog.Comment) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE comments SET content = $2, modified_at = $3 WHERE id = $1`,
		comment.ID, comment.Content, comment.ModifiedAt)
	if err != nil {
		return handlePostgresError("update comment", err)
	}
	if tag.RowsAffected() == 0 {
		return blog.ErrCommentNotFound
	}
	return nil
}

func (r *Repository) DeleteComment(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return handlePostgresError("delete comment", err)
	}
	if tag.RowsAffected() == 0 {
		return blog.ErrCommentNotFound
	}
	return nil
}

func (r *Repository) ListCommentsByPost(ctx context.Context, postID uuid.UUID) ([]*blog.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE post_id = $1 ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, query, postID)
	if err != nil {
		return nil, handlePostgresError("list comments", err)
	}
	defer rows.Close()

	comments := make([]*blog.Comment, 0)
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, handlePostgresError("scan comment", err)
		}
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, handlePostgresError("list comments", err)
	}
	return comments, nil
}

func (r *Repository) deleteComments(ctx context.Context, operation, query string, arg uuid.UUID) (int64, error) {
	tag, err := r.db.Exec(ctx, query, arg)
	if err != nil {
		return 0, handlePostgresError(operation, err)
	}
	return tag.RowsAffected(), nil
}

func (r *Repository) DeleteCommentsByPost(ctx context.Context, postID uuid.UUID) (int64, error) {
	return r.deleteComments(ctx, "delete comments by post",
		`DELETE FROM comments WHERE post_id = $1`, postID)
}

func (r *Repository) DeleteCommentsByAuthor(ctx context.Context, authorID uuid.UUID) (int64, error) {
	return r.deleteComments(ctx, "delete comments by author",
		`DELETE FROM comments WHERE author_id = $1`, authorID)
}

func (r *Repository) DeleteCommentsOnPostsOwnedBy(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	return r.deleteComments(ctx, "delete comments on owned posts",
		`DELETE FROM comments WHERE post_id IN (SELECT id FROM posts WHERE owner_id = $1)`, ownerID)
}

// Category operations

func (r *Repository) CreateCategory(ctx context.Context, category *blog.Category) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO categories (id, name, slug) VALUES ($1, $2, $3)`,
		category.ID, category.Name, category.Slug)
	if err != nil {
		return handlePostgresError("create category", err)
	}
	return nil
}

func (r *Repository) getCategory(ctx context.Context, operation, where string, arg interface{}) (*blog.Category, error) {
	var c blog.Category
	err := r.db.QueryRow(ctx, `SELECT id, name, slug FROM categories WHERE `+where, arg).
		Scan(&c.ID, &c.Name, &c.Slug)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, blog.ErrCategoryNotFound
		}
		return nil, handlePostgresError(operation, err)
	}
	return &c, nil
}

func (r *Repository) GetCategory(ctx context.Context, id uuid.UUID) (*blog.Category, error) {
	return r.getCategory(ctx, "get category", "id = $1", id)
}

func (r *Repository) GetCategoryBySlug(ctx context.Context, slug string) (*blog.Category, error) {
	return r.getCategory(ctx, "get category by slug", "slug = $1", slug)
}

func (r *Repository) UpdateCategory(ctx context.Context, category *blog.Category) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE categories SET name = $2, slug = $3 WHERE id = $1`,
		category.ID, category.Name, category.Slug)
	if err != nil {
		return handlePostgresError("update category", err)
	}
	if tag.RowsAffected() == 0 {
		return blog.ErrCategoryNotFound
	}
	return nil
}

func (r *Repository) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return handlePostgresError("delete category", err)
	}
	if tag.RowsAffected() == 0 {
		return blog.ErrCategoryNotFound
	}
	return nil
}

func (r *Repository) ListCategories(ctx context.Context) ([]*blog.Category, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, slug FROM categories ORDER BY lower(name), name`)
	if err != nil {
		return nil, handlePostgresError("list categories", err)
	}
	defer rows.Close()

	categories := make([]*blog.Category, 0)
	for rows.Next() {
		var c blog.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug); err != nil {
			return nil, handlePostgresError("scan category", err)
		}
		categories = append(categories, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, handlePostgresError("list categories", err)
	}
	return categories, nil
}

// Media operations

const mediaColumns = `id, file_name, object_key, storage_backend, locator, content_type,
	size_bytes, uploaded_at, uploader_id`

func scanMedia(row pgx.Row) (*blog.MediaFile, error) {
	var m blog.MediaFile
	err := row.Scan(&m.ID, &m.FileName, &m.ObjectKey, &m.StorageBackend, &m.Locator,
		&m.ContentType, &m.Size, &m.UploadedAt, &m.UploaderID)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *Repository) CreateMediaFile(ctx context.Context, media *blog.MediaFile) error {
	query := `INSERT INTO media_files (` + mediaColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.Exec(ctx, query,
		media.ID, media.FileName, media.ObjectKey, media.StorageBackend, media.Locator,
		media.ContentType, media.Size, media.UploadedAt, media.UploaderID)
	if err != nil {
		return handlePostgresError("create media file", err)
	}
	return nil
}

func (r *Repository) GetMediaFile(ctx context.Context, id uuid.UUID) (*blog.MediaFile, error) {
	query := `SELECT ` + mediaColumns + ` FROM media_files WHERE id = $1`

	media, err := scanMedia(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, blog.ErrMediaNotFound
		}
		return nil, handlePostgresError("get media file", err)
	}
	return media, nil
}

func (r *Repository) ListMediaFiles(ctx context.Context) ([]*blog.MediaFile, error) {
	query := `SELECT ` + mediaColumns + ` FROM media_files ORDER BY uploaded_at DESC, id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, handlePostgresError("list media files", err)
	}
	defer rows.Close()

	files := make([]*blog.MediaFile, 0)
	for rows.Next() {
		media, err := scanMedia(rows)
		if err != nil {
			return nil, handlePostgresError("scan media file", err)
		}
		files = append(files, media)
	}
	if err := rows.Err(); err != nil {
		return nil, handlePostgresError("list media files", err)
	}
	return files, nil
}

func (r *Repository) DeleteMediaFile(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM media_files WHERE id = $1`, id)
	if err != nil {
		return handlePostgresError("delete media file", err)
	}
	if tag.RowsAffected() == 0 {
		return blog.ErrMediaNotFound
	}
	return nil
}
