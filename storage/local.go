package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalProvider stores blobs on the local filesystem, served under
// /uploads/ by the static file route.
type LocalProvider struct {
	dir string
}

// NewLocalProvider creates the provider over dir, creating it if needed.
func NewLocalProvider(dir string) (*LocalProvider, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", dir, err)
	}
	return &LocalProvider{dir: dir}, nil
}

// Save writes the blob to dir/objectName.
func (p *LocalProvider) Save(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) (string, error) {
	dst := filepath.Join(p.dir, objectName)
	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", dst, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(dst)
		return "", fmt.Errorf("write %s: %w", dst, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("close %s: %w", dst, err)
	}
	return "/uploads/" + objectName, nil
}

// Remove deletes the blob file.
func (p *LocalProvider) Remove(ctx context.Context, objectName string) error {
	err := os.Remove(filepath.Join(p.dir, objectName))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Dir returns the storage directory for the static file route.
func (p *LocalProvider) Dir() string { return p.dir }
