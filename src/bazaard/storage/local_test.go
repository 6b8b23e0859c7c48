package storage

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/bitswalk/bazaar/src/common/errors"
)

func newTestLocal(t *testing.T) *LocalBackend {
	t.Helper()
	b, err := NewLocal(LocalConfig{BasePath: t.TempDir()})
	if err != nil {
		t.Fatalf("NewLocal failed: %v", err)
	}
	return b
}

func TestLocalUploadDownload(t *testing.T) {
	b := newTestLocal(t)
	ctx := context.Background()
	data := []byte("\x89PNG fake image")

	if err := b.Upload(ctx, "products/12/cover.png", bytes.NewReader(data), int64(len(data)), "image/png"); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	ok, err := b.Exists(ctx, "products/12/cover.png")
	if err != nil || !ok {
		t.Fatalf("Exists = %v, %v", ok, err)
	}

	rc, info, err := b.Download(ctx, "products/12/cover.png")
	if err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	defer rc.Close()
	got, _ := io.ReadAll(rc)
	if !bytes.Equal(got, data) {
		t.Fatalf("Download content = %q", got)
	}
	if info.ContentType != "image/png" || info.Size != int64(len(data)) || info.ETag == "" {
		t.Fatalf("Download info = %+v", info)
	}
}

func TestLocalSizeMismatch(t *testing.T) {
	b := newTestLocal(t)
	err := b.Upload(context.Background(), "a.png", bytes.NewReader([]byte("abc")), 10, "image/png")
	if !errors.Is(err, errors.ErrStorageUploadFailed) {
		t.Fatalf("Upload error = %v, want ErrStorageUploadFailed", err)
	}
	if ok, _ := b.Exists(context.Background(), "a.png"); ok {
		t.Fatal("short upload should have been removed")
	}
}

func TestLocalMissingObject(t *testing.T) {
	b := newTestLocal(t)
	if _, _, err := b.Download(context.Background(), "nope.png"); !errors.Is(err, errors.ErrStorageNotFound) {
		t.Fatalf("Download error = %v, want ErrStorageNotFound", err)
	}
	if err := b.Delete(context.Background(), "nope.png"); err != nil {
		t.Fatalf("Delete of missing key failed: %v", err)
	}
}

func TestLocalKeysStayInsideBase(t *testing.T) {
	b := newTestLocal(t)
	ctx := context.Background()

	if err := b.Upload(ctx, "../../escape.png", bytes.NewReader([]byte("x")), 1, ""); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(b.Location(), "escape.png")); err != nil {
		t.Fatalf("traversal key was not confined to the base directory: %v", err)
	}
	if err := b.Upload(ctx, "..", bytes.NewReader(nil), 0, ""); err == nil {
		t.Fatal("expected error for a key resolving to the base directory")
	}
}

func TestLocalDeleteCleansDirectories(t *testing.T) {
	b := newTestLocal(t)
	ctx := context.Background()

	if err := b.Upload(ctx, "products/3/img.jpg", bytes.NewReader([]byte("x")), 1, ""); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if err := b.Delete(ctx, "products/3/img.jpg"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(b.Location(), "products")); !os.IsNotExist(err) {
		t.Fatalf("empty directories should be removed, stat err = %v", err)
	}
}

func TestNewRejectsUnknownType(t *testing.T) {
	if _, err := New(Config{Type: "ftp"}); err == nil {
		t.Fatal("expected error for unknown storage type")
	}
}
