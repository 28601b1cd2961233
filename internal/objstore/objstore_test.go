package objstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalUpload(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocal(filepath.Join(dir, "objects"))
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}

	src := filepath.Join(dir, "src.csv")
	if err := os.WriteFile(src, []byte("a,b\n1,2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	locator, err := store.Upload(context.Background(), src, "products.csv")
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	got, err := os.ReadFile(locator)
	if err != nil {
		t.Fatalf("read locator %s: %v", locator, err)
	}
	if string(got) != "a,b\n1,2\n" {
		t.Errorf("uploaded contents = %q", got)
	}
}

// brokenWriter fails every write and records whether it was closed.
type brokenWriter struct {
	closed bool
}

func (w *brokenWriter) Write([]byte) (int, error) { return 0, errors.New("write refused") }
func (w *brokenWriter) Close() error              { w.closed = true; return nil }

func TestCopyAndCloseClosesOnCopyFailure(t *testing.T) {
	w := &brokenWriter{}
	err := copyAndClose(w, strings.NewReader("payload"))
	if err == nil {
		t.Fatal("copyAndClose returned nil for a failing writer")
	}
	if !w.closed {
		t.Error("writer left open after failed copy")
	}
}

// closeFailWriter accepts writes but fails on Close.
type closeFailWriter struct{}

func (closeFailWriter) Write(p []byte) (int, error) { return len(p), nil }
func (closeFailWriter) Close() error                { return errors.New("close refused") }

func TestCopyAndCloseReportsCloseFailure(t *testing.T) {
	if err := copyAndClose(closeFailWriter{}, strings.NewReader("payload")); err == nil {
		t.Error("copyAndClose swallowed the close error")
	}
}
