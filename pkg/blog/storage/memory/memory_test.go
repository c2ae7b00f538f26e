package memory_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-blog/pkg/blog"
	"github.com/tendant/simple-blog/pkg/blog/storage/memory"
)

func TestBackend_UploadDownloadDelete(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()

	locator, err := backend.Upload(ctx, strings.NewReader("hello"), blog.UploadParams{ObjectKey: "a.txt", MimeType: "text/plain"})
	require.NoError(t, err)
	assert.Equal(t, "memory://a.txt", locator)

	mt, ok := backend.MimeType("a.txt")
	assert.True(t, ok)
	assert.Equal(t, "text/plain", mt)

	rc, err := backend.Download(ctx, "a.txt")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	require.NoError(t, backend.Delete(ctx, "a.txt"))
	_, err = backend.Download(ctx, "a.txt")
	assert.ErrorIs(t, err, blog.ErrNotFound)
	assert.ErrorIs(t, backend.Delete(ctx, "a.txt"), blog.ErrNotFound)
}
