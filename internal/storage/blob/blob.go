package blob

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Store keeps generated files such as export feeds.
type Store interface {
	// Put writes body under key and returns the public location of the object.
	Put(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}

var (
	_ Store = (*S3Store)(nil)
	_ Store = (*LocalStore)(nil)
)

// LocalStore writes objects below a directory. It is used when no bucket is
// configured.
type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) *LocalStore {
	return &LocalStore{dir: dir}
}

func (s *LocalStore) Put(_ context.Context, key, _ string, body io.Reader) (string, error) {
	// Cleaning the rooted key keeps the object inside dir.
	path := filepath.Join(s.dir, filepath.Clean("/"+key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, body); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return "file://" + path, nil
}
