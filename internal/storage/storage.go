package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

var ErrNotFound = errors.New("file not found")

// Storage defines the interface for file storage operations
type Storage interface {
	// Save stores a file under key. size may be -1 when unknown.
	Save(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error

	// Get retrieves a file. Returns ErrNotFound for missing keys.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes a file. Missing keys are not an error.
	Delete(ctx context.Context, key string) error

	Exists(ctx context.Context, key string) (bool, error)

	// URL returns the public URL for the key
	URL(key string) string

	// Key is the inverse of URL; ok is false for URLs not owned by this storage
	Key(url string) (key string, ok bool)
}

// Config holds storage configuration
type Config struct {
	Type       string // local, s3, cloudflare_r2, minio
	BasePath   string // local
	BaseURL    string // public URL prefix
	Bucket     string
	Region     string
	AccessKey  string
	SecretKey  string
	Endpoint   string
	AccountID  string // cloudflare_r2
	UseSSL     bool
	PublicRead bool
}

// NewStorage creates a new storage instance based on configuration
func NewStorage(ctx context.Context, cfg Config) (Storage, error) {
	switch cfg.Type {
	case "", "local":
		return NewLocalStorage(cfg)
	case "s3":
		return NewS3Storage(cfg)
	case "cloudflare_r2":
		return NewCloudflareR2Storage(cfg)
	case "minio":
		return NewMinioStorage(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}

func keyFromURL(base, url string) (string, bool) {
	prefix := strings.TrimRight(base, "/") + "/"
	if url == "" || !strings.HasPrefix(url, prefix) {
		return "", false
	}
	return strings.TrimPrefix(url, prefix), true
}
