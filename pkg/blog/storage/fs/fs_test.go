package fs

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tendant/simple-blog/pkg/blog"
)

func TestFSBackend_BasicOps(t *testing.T) {
	tmp := t.TempDir()
	backend, err := New(Config{BaseDir: tmp, URLPrefix: "/images/uploads/"})
	if err != nil {
		t.Fatalf("new fs backend: %v", err)
	}

	ctx := context.Background()
	key := "2024/04/file.txt"

	data := []byte("hello fs")
	locator, err := backend.Upload(ctx, bytes.NewReader(data), blog.UploadParams{ObjectKey: key, MimeType: "text/plain"})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if locator != "/images/uploads/"+key {
		t.Fatalf("unexpected locator %q", locator)
	}

	rc, err := backend.Download(ctx, key)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	got, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(got) != string(data) {
		t.Fatalf("download mismatch: %q", string(got))
	}

	if err := backend.Delete(ctx, key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(tmp, key)); !os.IsNotExist(err) {
		t.Fatalf("expected file removed, stat err=%v", err)
	}
	if _, err := os.Stat(filepath.Join(tmp, "2024")); !os.IsNotExist(err) {
		t.Fatalf("expected empty directories removed, stat err=%v", err)
	}
	if _, err := backend.Download(ctx, key); !errors.Is(err, blog.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestFSBackend_RejectsEscapingKeys(t *testing.T) {
	backend, err := New(Config{BaseDir: t.TempDir()})
	if err != nil {
		t.Fatalf("new fs backend: %v", err)
	}
	ctx := context.Background()
	if _, err := backend.Upload(ctx, strings.NewReader("x"), blog.UploadParams{ObjectKey: "../outside.txt"}); err == nil {
		t.Fatalf("expected error for key escaping base dir")
	}
}

func TestFSBackend_URLMethods(t *testing.T) {
	ctx := context.Background()

	noPrefix, err := New(Config{BaseDir: t.TempDir()})
	if err != nil {
		t.Fatalf("new fs backend: %v", err)
	}
	if _, err := noPrefix.GetDownloadURL(ctx, "a.png", ""); err == nil {
		t.Fatalf("expected error without urlPrefix")
	}
	locator, err := noPrefix.Upload(ctx, strings.NewReader("x"), blog.UploadParams{ObjectKey: "a.png"})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if !strings.HasPrefix(locator, "file://") {
		t.Fatalf("expected file locator, got %q", locator)
	}

	withPrefix, err := New(Config{BaseDir: t.TempDir(), URLPrefix: "https://cdn.example.com/media"})
	if err != nil {
		t.Fatalf("new fs backend: %v", err)
	}
	u, err := withPrefix.GetDownloadURL(ctx, "a.png", "my photo.png")
	if err != nil {
		t.Fatalf("download url: %v", err)
	}
	if u != "https://cdn.example.com/media/a.png?filename=my+photo.png" {
		t.Fatalf("unexpected url %q", u)
	}
}
