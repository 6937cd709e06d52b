// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package blobstore

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/bureau-foundation/bureau-storage/lib/failure"
)

func newTestFileStore(t *testing.T, bufferSize int) *FileStore {
	t.Helper()
	store, err := NewFileStore(FileConfig{
		Root:           filepath.Join(t.TempDir(), "data"),
		ReadBufferSize: bufferSize,
	})
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return store
}

func TestFileStoreLayout(t *testing.T) {
	store := newTestFileStore(t, 0)
	ctx := t.Context()

	if err := store.Save(ctx, 42, "abc", []byte("payload")); err != nil {
		t.Fatalf("Save: %v", err)
	}

	path := filepath.Join(store.Root(), "42", "abc.data")
	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	if string(contents) != "payload" {
		t.Errorf("file contents = %q, want %q", contents, "payload")
	}
	if store.Path(42, "abc") != path {
		t.Errorf("Path() = %q, want %q", store.Path(42, "abc"), path)
	}
}

func TestFileStoreRoundTripSizes(t *testing.T) {
	// Buffer sizes below, equal to, and above the payload size
	// exercise the multi-chunk, exact, and clamped read paths.
	for _, bufferSize := range []int{1, 7, 1024, 1 << 20} {
		store := newTestFileStore(t, bufferSize)
		for index, size := range []int{0, 1, 7, 5000} {
			data := make([]byte, size)
			rand.Read(data)
			contentID := "content-" + string(rune('a'+index))

			if err := store.Save(t.Context(), 1, contentID, data); err != nil {
				t.Fatalf("buffer %d, size %d: Save: %v", bufferSize, size, err)
			}
			got, err := store.Get(t.Context(), 1, contentID)
			if err != nil {
				t.Fatalf("buffer %d, size %d: Get: %v", bufferSize, size, err)
			}
			if !bytes.Equal(got, data) {
				t.Errorf("buffer %d, size %d: got %d bytes back", bufferSize, size, len(got))
			}
		}
	}
}

func TestFileStoreGetAbsent(t *testing.T) {
	store := newTestFileStore(t, 0)

	_, err := store.Get(t.Context(), 9, "missing")
	if !failure.Is(err, failure.ContentNotFound) {
		t.Fatalf("Get(absent) error = %v, want ContentNotFound", err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Error("ContentNotFound should wrap fs.ErrNotExist")
	}
}

func TestFileStoreRefusesOverwrite(t *testing.T) {
	store := newTestFileStore(t, 0)
	ctx := t.Context()

	if err := store.Save(ctx, 1, "same", []byte("first")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	err := store.Save(ctx, 1, "same", []byte("second"))
	if !failure.Is(err, failure.UnexpectedError) {
		t.Fatalf("second Save error = %v, want UnexpectedError", err)
	}

	got, err := store.Get(ctx, 1, "same")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "first" {
		t.Errorf("blob was overwritten: got %q", got)
	}
}

func TestFileStoreDeleteIdempotent(t *testing.T) {
	store := newTestFileStore(t, 0)
	ctx := t.Context()

	if err := store.Save(ctx, 3, "gone", []byte("x")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	for attempt := range 3 {
		if err := store.Delete(ctx, 3, "gone"); err != nil {
			t.Fatalf("Delete attempt %d: %v", attempt, err)
		}
	}
	if err := store.Delete(ctx, 777, "never-existed"); err != nil {
		t.Fatalf("Delete in absent bucket: %v", err)
	}
	if _, err := store.Get(ctx, 3, "gone"); !failure.Is(err, failure.ContentNotFound) {
		t.Errorf("Get after Delete error = %v, want ContentNotFound", err)
	}
}

func TestFileStoreRootIsFile(t *testing.T) {
	root := filepath.Join(t.TempDir(), "occupied")
	if err := os.WriteFile(root, []byte("not a directory"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	_, err := NewFileStore(FileConfig{Root: root})
	if !failure.Is(err, failure.UnexpectedError) {
		t.Fatalf("NewFileStore(file root) error = %v, want UnexpectedError", err)
	}
}

func TestFileStoreBucketPathIsFile(t *testing.T) {
	store := newTestFileStore(t, 0)
	if err := os.WriteFile(filepath.Join(store.Root(), "5"), []byte("squatter"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	err := store.Save(t.Context(), 5, "abc", []byte("payload"))
	if !failure.Is(err, failure.UnexpectedError) {
		t.Fatalf("Save into file-occupied bucket path error = %v, want UnexpectedError", err)
	}
}

func TestFileStoreRejectsUnsafeIDs(t *testing.T) {
	store := newTestFileStore(t, 0)
	for _, contentID := range []string{"", ".", "..", "../escape", "a/b", `a\b`} {
		t.Run(contentID, func(t *testing.T) {
			err := store.Save(t.Context(), 1, contentID, []byte("x"))
			if !failure.Is(err, failure.InvalidArgument) {
				t.Errorf("Save(%q) error = %v, want InvalidArgument", contentID, err)
			}
			if _, err := store.Get(t.Context(), 1, contentID); !failure.Is(err, failure.InvalidArgument) {
				t.Errorf("Get(%q) error = %v, want InvalidArgument", contentID, err)
			}
		})
	}
}

func TestFileStoreCancelledContext(t *testing.T) {
	store := newTestFileStore(t, 0)
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	if err := store.Save(ctx, 1, "abc", []byte("x")); err == nil {
		t.Fatal("Save with cancelled context should fail")
	}
	if _, err := os.Stat(store.Path(1, "abc")); !errors.Is(err, fs.ErrNotExist) {
		t.Error("cancelled Save should not create a file")
	}
}
