// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package storage_test

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bureau-foundation/bureau-storage/lib/blobstore"
	"github.com/bureau-foundation/bureau-storage/lib/clock"
	"github.com/bureau-foundation/bureau-storage/lib/contentcodec"
	"github.com/bureau-foundation/bureau-storage/lib/metadata"
	"github.com/bureau-foundation/bureau-storage/lib/storage"
)

// instrumentedStore wraps a blob store, counts calls and optionally
// injects failures or rewrites stored bytes on read.
type instrumentedStore struct {
	blobstore.Store

	gets    atomic.Int64
	saves   atomic.Int64
	deletes atomic.Int64

	mu        sync.Mutex
	saveErr   error
	deleteErr error
	tamper    func([]byte) []byte
}

func newInstrumentedStore() *instrumentedStore {
	return &instrumentedStore{Store: blobstore.NewMemoryStore()}
}

func (s *instrumentedStore) failSaves(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveErr = err
}

func (s *instrumentedStore) failDeletes(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteErr = err
}

func (s *instrumentedStore) tamperReads(fn func([]byte) []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tamper = fn
}

func (s *instrumentedStore) Get(ctx context.Context, bucketID int64, contentID string) ([]byte, error) {
	s.gets.Add(1)
	data, err := s.Store.Get(ctx, bucketID, contentID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	tamper := s.tamper
	s.mu.Unlock()
	if tamper != nil {
		data = tamper(data)
	}
	return data, nil
}

func (s *instrumentedStore) Save(ctx context.Context, bucketID int64, contentID string, data []byte) error {
	s.saves.Add(1)
	s.mu.Lock()
	err := s.saveErr
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return s.Store.Save(ctx, bucketID, contentID, data)
}

func (s *instrumentedStore) Delete(ctx context.Context, bucketID int64, contentID string) error {
	s.deletes.Add(1)
	s.mu.Lock()
	err := s.deleteErr
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return s.Store.Delete(ctx, bucketID, contentID)
}

type testHarness struct {
	service  *storage.Service
	metadata *metadata.Store
	blobs    *instrumentedStore
	clock    *clock.FakeClock
}

type harnessOption func(*storage.ServiceConfig)

func withFormat(format contentcodec.Format) harnessOption {
	return func(config *storage.ServiceConfig) { config.DefaultFormat = format }
}

// newHarness returns a Service over a temporary SQLite database, an
// instrumented in-memory blob store and a fake clock.
func newHarness(t *testing.T, options ...harnessOption) *testHarness {
	t.Helper()

	store, err := metadata.Open(metadata.Config{
		Path: filepath.Join(t.TempDir(), "metadata.db"),
	})
	if err != nil {
		t.Fatalf("metadata.Open: %v", err)
	}

	harness := &testHarness{
		metadata: store,
		blobs:    newInstrumentedStore(),
		clock:    clock.Fake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)),
	}
	config := storage.ServiceConfig{
		Metadata: store,
		Blobs:    harness.blobs,
		Clock:    harness.clock,
	}
	for _, option := range options {
		option(&config)
	}

	service, err := storage.New(config)
	if err != nil {
		store.Close()
		t.Fatalf("storage.New: %v", err)
	}
	harness.service = service
	t.Cleanup(func() { service.Close() })
	return harness
}

// mustCreateBucket creates a bucket or fails the test.
func (h *testHarness) mustCreateBucket(t *testing.T, code string) {
	t.Helper()
	if err := h.service.CreateBucket(t.Context(), code); err != nil {
		t.Fatalf("CreateBucket(%q): %v", code, err)
	}
}

// mustSave saves content or fails the test.
func (h *testHarness) mustSave(t *testing.T, bucket, name string, attributes map[string]string, data []byte) string {
	t.Helper()
	contentID, err := h.service.SaveContent(t.Context(), bucket, name, attributes, data)
	if err != nil {
		t.Fatalf("SaveContent(%q, %q): %v", bucket, name, err)
	}
	return contentID
}
