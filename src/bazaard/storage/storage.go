// Package storage keeps product images on the local filesystem or in an
// S3-compatible bucket.
package storage

import (
	"context"
	"fmt"
	"io"
	"time"
)

// Backend is an object store addressed by slash-separated keys
type Backend interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	// Download returns errors.ErrStorageNotFound for unknown keys
	Download(ctx context.Context, key string) (io.ReadCloser, *ObjectInfo, error)
	// Delete succeeds for keys that do not exist
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Ping(ctx context.Context) error
	Type() string
	Location() string
}

// ObjectInfo holds metadata about a stored object
type ObjectInfo struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	ContentType  string    `json:"content_type,omitempty"`
	ETag         string    `json:"etag,omitempty"`
	LastModified time.Time `json:"last_modified"`
}

// Config selects and configures a backend
type Config struct {
	// Type is "local" or "s3"
	Type  string
	Local LocalConfig
	S3    S3Config
}

// DefaultConfig stores images under the user's home directory
func DefaultConfig() Config {
	return Config{
		Type: "local",
		Local: LocalConfig{
			BasePath: "~/.bazaard/images",
		},
	}
}

// New creates the backend named by cfg.Type
func New(cfg Config) (Backend, error) {
	switch cfg.Type {
	case "s3":
		return NewS3(cfg.S3)
	case "local", "":
		return NewLocal(cfg.Local)
	}
	return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
}
