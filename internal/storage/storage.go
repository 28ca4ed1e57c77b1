// Package storage puts uploaded media somewhere reachable and hands back its URL.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"bizdir/internal/config"
)

// Storage stores objects by relative path and returns the URL they are served from.
type Storage interface {
	Store(ctx context.Context, r io.Reader, objectPath, contentType string) (string, error)
	Delete(ctx context.Context, objectPath string) error
	Name() string
}

// New picks the backend named by cfg.Type.
func New(ctx context.Context, cfg config.StorageConfig) (Storage, error) {
	switch strings.ToLower(cfg.Type) {
	case "", "local":
		return NewLocalStorage(cfg.MediaDir, cfg.BaseURL)
	case "s3":
		return NewS3Storage(ctx, cfg.S3)
	}
	return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
}

// cleanPath normalizes an object path and refuses anything escaping the root.
func cleanPath(p string) (string, error) {
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.TrimPrefix(path.Clean("/"+p), "/")
	if p == "" || p == "." || strings.Contains(p, "..") {
		return "", fmt.Errorf("invalid object path %q", p)
	}
	return p, nil
}
