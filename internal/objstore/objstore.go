package objstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Store is durable external storage for published stage outputs. Upload
// copies a local file under the given object name and returns the locator
// the warehouse should load from.
type Store interface {
	Upload(ctx context.Context, localPath, name string) (string, error)
}

// Local is a filesystem-backed Store for development and tests. The returned
// locator is a plain path, which pairs with the sqlite warehouse.
type Local struct {
	Dir string
}

func NewLocal(dir string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create object dir %s: %w", dir, err)
	}
	return &Local{Dir: dir}, nil
}

func (l *Local) Upload(_ context.Context, localPath, name string) (string, error) {
	src, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", localPath, err)
	}
	defer src.Close()

	dest := filepath.Join(l.Dir, name)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", err
	}
	dst, err := os.Create(dest)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("copy %s to %s: %w", localPath, dest, err)
	}
	return dest, nil
}
