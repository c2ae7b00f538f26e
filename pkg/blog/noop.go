package blog

import (
	"context"

	"github.com/google/uuid"
)

// NoopEventSink is a no-operation implementation of EventSink
type NoopEventSink struct{}

// NewNoopEventSink creates a new no-operation event sink
func NewNoopEventSink() EventSink {
	return &NoopEventSink{}
}

func (n *NoopEventSink) PostCreated(ctx context.Context, post *Post) error { return nil }

func (n *NoopEventSink) PostUpdated(ctx context.Context, post *Post) error { return nil }

func (n *NoopEventSink) PostDeleted(ctx context.Context, postID uuid.UUID, commentsRemoved int64) error {
	return nil
}

func (n *NoopEventSink) CommentAdded(ctx context.Context, comment *Comment) error { return nil }

func (n *NoopEventSink) CommentDeleted(ctx context.Context, commentID uuid.UUID) error { return nil }

func (n *NoopEventSink) MediaUploaded(ctx context.Context, media *MediaFile) error { return nil }
