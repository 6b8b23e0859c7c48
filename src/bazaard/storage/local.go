package storage

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/bitswalk/bazaar/src/common/errors"
	"github.com/bitswalk/bazaar/src/common/paths"
)

// LocalConfig holds the local filesystem storage configuration
type LocalConfig struct {
	BasePath string
}

// LocalBackend stores objects as files below a base directory
type LocalBackend struct {
	basePath string
}

// NewLocal creates the base directory if needed and returns a LocalBackend
func NewLocal(cfg LocalConfig) (*LocalBackend, error) {
	basePath, err := filepath.Abs(paths.Expand(cfg.BasePath))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage directory %s: %w", cfg.BasePath, err)
	}
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	return &LocalBackend{basePath: basePath}, nil
}

// fullPath maps key below basePath. Keys that would escape it are rejected.
func (b *LocalBackend) fullPath(key string) (string, error) {
	clean := filepath.Clean("/" + filepath.FromSlash(key))
	full := filepath.Join(b.basePath, clean)
	if full == b.basePath || !strings.HasPrefix(full, b.basePath+string(filepath.Separator)) {
		return "", errors.ErrValidationFailed.WithMessagef("Invalid storage key %q", key)
	}
	return full, nil
}

// Upload writes reader to key. A short write is removed.
func (b *LocalBackend) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	full, err := b.fullPath(key)
	if err != nil {
		return err
	}
	if err := paths.EnsureDir(full); err != nil {
		return errors.ErrStorageUploadFailed.WithCause(err)
	}

	file, err := os.Create(full)
	if err != nil {
		return errors.ErrStorageUploadFailed.WithCause(err)
	}
	defer file.Close()

	written, err := io.Copy(file, reader)
	if err != nil {
		os.Remove(full)
		return errors.ErrStorageUploadFailed.WithCause(err)
	}
	if size > 0 && written != size {
		os.Remove(full)
		return errors.ErrStorageUploadFailed.WithMessagef("size mismatch: expected %d bytes, wrote %d", size, written)
	}
	return nil
}

// Download opens the file stored under key
func (b *LocalBackend) Download(ctx context.Context, key string) (io.ReadCloser, *ObjectInfo, error) {
	full, err := b.fullPath(key)
	if err != nil {
		return nil, nil, err
	}

	file, err := os.Open(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, errors.ErrStorageNotFound.WithMessagef("Object %s not found", key)
		}
		return nil, nil, fmt.Errorf("failed to open %s: %w", full, err)
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, nil, fmt.Errorf("failed to stat %s: %w", full, err)
	}

	contentType := mime.TypeByExtension(filepath.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	tag := md5.Sum([]byte(fmt.Sprintf("%s-%d-%d", stat.Name(), stat.Size(), stat.ModTime().UnixNano())))

	return file, &ObjectInfo{
		Key:          key,
		Size:         stat.Size(),
		ContentType:  contentType,
		ETag:         `"` + hex.EncodeToString(tag[:]) + `"`,
		LastModified: stat.ModTime(),
	}, nil
}

// Delete removes key and any directories it leaves empty
func (b *LocalBackend) Delete(ctx context.Context, key string) error {
	full, err := b.fullPath(key)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %s: %w", full, err)
	}

	for dir := filepath.Dir(full); dir != b.basePath && strings.HasPrefix(dir, b.basePath); dir = filepath.Dir(dir) {
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			break
		}
		os.Remove(dir)
	}
	return nil
}

// Exists reports whether key is stored
func (b *LocalBackend) Exists(ctx context.Context, key string) (bool, error) {
	full, err := b.fullPath(key)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(full); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat %s: %w", full, err)
	}
	return true, nil
}

// Ping checks that the base directory is reachable
func (b *LocalBackend) Ping(ctx context.Context) error {
	if _, err := os.Stat(b.basePath); err != nil {
		return errors.ErrStorageUnavailable.WithCause(err)
	}
	return nil
}

func (b *LocalBackend) Type() string {
	return "local"
}

func (b *LocalBackend) Location() string {
	return b.basePath
}
