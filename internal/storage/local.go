package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Local keeps images on disk for --dev runs. Files are served from the
// directory by the API under the prefix in publicURL.
type Local struct {
	dir       string
	publicURL string
}

func NewLocal(dir, publicURL string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create %s: %w", dir, err)
	}
	return &Local{dir: dir, publicURL: publicURL}, nil
}

func (l *Local) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	path, err := l.path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("local.Upload %s: %w", key, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("local.Upload %s: %w", key, err)
	}
	defer f.Close()
	if _, err := io.Copy(f, body); err != nil {
		return "", fmt.Errorf("local.Upload %s: %w", key, err)
	}
	return CleanURL(fmt.Sprintf(l.publicURL, key)), nil
}

func (l *Local) Delete(ctx context.Context, key string) error {
	path, err := l.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("local.Delete %s: %w", key, err)
	}
	return nil
}

func (l *Local) KeyFromURL(raw string) (string, error) {
	return KeyFromURL(raw, l.publicURL)
}

func (l *Local) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("storage: key %q escapes the upload directory", key)
	}
	return filepath.Join(l.dir, clean), nil
}
