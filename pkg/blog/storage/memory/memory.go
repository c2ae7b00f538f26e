package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/tendant/simple-blog/pkg/blog"
)

// Backend is an in-memory implementation of the blog.BlobStore interface
type Backend struct {
	mu        sync.RWMutex
	objects   map[string][]byte
	mimeTypes map[string]string
}

// New creates a new in-memory storage backend
func New() *Backend {
	return &Backend{
		objects:   make(map[string][]byte),
		mimeTypes: make(map[string]string),
	}
}

// Upload stores the content and returns a memory:// locator
func (b *Backend) Upload(ctx context.Context, reader io.Reader, params blog.UploadParams) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.objects[params.ObjectKey] = data
	mimeType := params.MimeType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	b.mimeTypes[params.ObjectKey] = mimeType
	return "memory://" + params.ObjectKey, nil
}

// Download downloads content directly
func (b *Backend) Download(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data, exists := b.objects[objectKey]
	if !exists {
		return nil, fmt.Errorf("object %s: %w", objectKey, blog.ErrNotFound)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// GetDownloadURL is not supported; memory objects are served through Download.
func (b *Backend) GetDownloadURL(ctx context.Context, objectKey string, downloadFilename string) (string, error) {
	return "", fmt.Errorf("direct download required for memory backend")
}

// MimeType returns the content type recorded at upload
func (b *Backend) MimeType(objectKey string) (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	mt, ok := b.mimeTypes[objectKey]
	return mt, ok
}

// Delete deletes content
func (b *Backend) Delete(ctx context.Context, objectKey string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.objects[objectKey]; !exists {
		return fmt.Errorf("object %s: %w", objectKey, blog.ErrNotFound)
	}
	delete(b.objects, objectKey)
	delete(b.mimeTypes, objectKey)
	return nil
}
