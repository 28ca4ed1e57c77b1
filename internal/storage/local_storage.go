package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage writes objects under a directory served by the app at baseURL.
type LocalStorage struct {
	basePath string
	baseURL  string
}

func NewLocalStorage(basePath, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	return &LocalStorage{basePath: basePath, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

func (l *LocalStorage) Name() string { return "local" }

func (l *LocalStorage) Store(_ context.Context, r io.Reader, objectPath, _ string) (string, error) {
	p, err := cleanPath(objectPath)
	if err != nil {
		return "", err
	}
	full := filepath.Join(l.basePath, filepath.FromSlash(p))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create dir: %w", err)
	}
	dst, err := os.Create(full)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(dst, r); err != nil {
		dst.Close()
		os.Remove(full)
		return "", fmt.Errorf("write file: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("close file: %w", err)
	}
	return l.baseURL + "/" + p, nil
}

// Delete is a no-op for objects that are already gone.
func (l *LocalStorage) Delete(_ context.Context, objectPath string) error {
	p, err := cleanPath(objectPath)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(l.basePath, filepath.FromSlash(p))); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}
