package blog

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// LoggingEventSink writes every lifecycle event to a structured logger.
type LoggingEventSink struct {
	logger *slog.Logger
}

// NewLoggingEventSink creates an event sink that logs at info level.
func NewLoggingEventSink(logger *slog.Logger) EventSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingEventSink{logger: logger.With("component", "events")}
}

func (l *LoggingEventSink) PostCreated(ctx context.Context, post *Post) error {
	l.logger.InfoContext(ctx, "post created", "post_id", post.ID, "slug", post.Slug, "owner_id", post.OwnerID, "published", post.IsPublished)
	return nil
}

func (l *LoggingEventSink) PostUpdated(ctx context.Context, post *Post) error {
	l.logger.InfoContext(ctx, "post updated", "post_id", post.ID, "slug", post.Slug, "published", post.IsPublished)
	return nil
}

func (l *LoggingEventSink) PostDeleted(ctx context.Context, postID uuid.UUID, commentsRemoved int64) error {
	l.logger.InfoContext(ctx, "post deleted", "post_id", postID, "comments_removed", commentsRemoved)
	return nil
}

func (l *LoggingEventSink) CommentAdded(ctx context.Context, comment *Comment) error {
	l.logger.InfoContext(ctx, "comment added", "comment_id", comment.ID, "post_id", comment.PostID, "author_id", comment.AuthorID)
	return nil
}

func (l *LoggingEventSink) CommentDeleted(ctx context.Context, commentID uuid.UUID) error {
	l.logger.InfoContext(ctx, "comment deleted", "comment_id", commentID)
	return nil
}

func (l *LoggingEventSink) MediaUploaded(ctx context.Context, media *MediaFile) error {
	l.logger.InfoContext(ctx, "media uploaded", "media_id", media.ID, "object_key", media.ObjectKey, "size", media.Size)
	return nil
}
