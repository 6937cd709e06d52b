// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package blobstore

import (
	"bytes"
	"context"
	"sync"
	"sync/atomic"

	"github.com/bureau-foundation/bureau-storage/lib/failure"
)

// MemoryStore keeps blobs in a two-level concurrent map: bucket id to
// a per-bucket map of content id to bytes. Nothing is persisted. The
// store is created empty and everything is discarded by Close.
//
// Both levels are sync.Map. A bucket's submap is created with
// LoadOrStore, so two goroutines saving into a new bucket at the same
// moment end up sharing one submap.
type MemoryStore struct {
	buckets sync.Map // int64 -> *sync.Map (string -> []byte)
	closed  atomic.Bool
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Kind() Kind { return KindMemory }

func (s *MemoryStore) checkOpen() error {
	if s.closed.Load() {
		return failure.Unexpectedf("in-memory blob store is closed")
	}
	return nil
}

func (s *MemoryStore) bucket(bucketID int64) (*sync.Map, bool) {
	value, ok := s.buckets.Load(bucketID)
	if !ok {
		return nil, false
	}
	return value.(*sync.Map), true
}

// Save stores a private copy of data. A content id already present in
// the bucket fails with failure.UnexpectedError.
func (s *MemoryStore) Save(ctx context.Context, bucketID int64, contentID string, data []byte) error {
	if err := validateContentID(contentID); err != nil {
		return err
	}
	if err := s.checkOpen(); err != nil {
		return err
	}

	value, _ := s.buckets.LoadOrStore(bucketID, &sync.Map{})
	contents := value.(*sync.Map)
	if _, loaded := contents.LoadOrStore(contentID, bytes.Clone(nonNil(data))); loaded {
		return failure.Unexpectedf("blob %s already exists in bucket %d", contentID, bucketID)
	}
	return nil
}

// Get returns a copy of the stored bytes. A bucket that was never
// written to is reported the same as an absent content id.
func (s *MemoryStore) Get(ctx context.Context, bucketID int64, contentID string) ([]byte, error) {
	if err := validateContentID(contentID); err != nil {
		return nil, err
	}
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	contents, ok := s.bucket(bucketID)
	if !ok {
		return nil, failure.ContentNotFoundf("blob %s in bucket %d", contentID, bucketID)
	}
	value, ok := contents.Load(contentID)
	if !ok {
		return nil, failure.ContentNotFoundf("blob %s in bucket %d", contentID, bucketID)
	}
	return bytes.Clone(value.([]byte)), nil
}

// Delete removes a blob. Absent buckets and ids succeed.
func (s *MemoryStore) Delete(ctx context.Context, bucketID int64, contentID string) error {
	if err := validateContentID(contentID); err != nil {
		return err
	}
	if err := s.checkOpen(); err != nil {
		return err
	}

	if contents, ok := s.bucket(bucketID); ok {
		contents.Delete(contentID)
	}
	return nil
}

// Len returns the number of blobs held across all buckets.
func (s *MemoryStore) Len() int {
	count := 0
	s.buckets.Range(func(_, value any) bool {
		value.(*sync.Map).Range(func(_, _ any) bool {
			count++
			return true
		})
		return true
	})
	return count
}

// Close discards every blob. Operations after Close fail with
// failure.UnexpectedError. Close is idempotent.
func (s *MemoryStore) Close() error {
	s.closed.Store(true)
	s.buckets.Clear()
	return nil
}

// nonNil maps a nil slice to an empty one so a stored empty payload
// reads back as empty rather than nil.
func nonNil(data []byte) []byte {
	if data == nil {
		return []byte{}
	}
	return data
}
