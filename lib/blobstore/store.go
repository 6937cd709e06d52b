// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package blobstore

import (
	"context"
	"slices"
	"strings"

	"github.com/bureau-foundation/bureau-storage/lib/failure"
)

// Kind identifies a blob backend. The value is a configuration
// constant (storage.container in the config file).
type Kind string

const (
	// KindFile stores blobs as files under a root directory.
	KindFile Kind = "FILE"

	// KindMemory keeps blobs in process memory for the lifetime of
	// the store.
	KindMemory Kind = "IN_MEMORY"
)

// ParseKind parses a backend tag case-insensitively.
func ParseKind(name string) (Kind, error) {
	switch kind := Kind(strings.ToUpper(strings.TrimSpace(name))); kind {
	case KindFile, KindMemory:
		return kind, nil
	default:
		return "", failure.UnsupportedFormatf("unknown storage container %q", name)
	}
}

// Store is byte storage addressed by (bucket id, content id). It has
// no transactional relationship with the metadata store: callers
// order their metadata and blob mutations so a failure between them
// leaves a detectable orphan.
type Store interface {
	// Kind returns the backend tag.
	Kind() Kind

	// Get returns the stored bytes. An absent blob (or absent bucket)
	// fails with failure.ContentNotFound; any other failure is
	// failure.UnexpectedError.
	Get(ctx context.Context, bucketID int64, contentID string) ([]byte, error)

	// Save stores data under a content id that must not already be
	// in use within the bucket.
	Save(ctx context.Context, bucketID int64, contentID string, data []byte) error

	// Delete removes a blob. Deleting an absent blob succeeds.
	Delete(ctx context.Context, bucketID int64, contentID string) error
}

// Registry maps backend tags to store instances. It is built once at
// startup and read-only afterwards.
type Registry struct {
	stores map[Kind]Store
}

// NewRegistry creates a registry of the given stores. Two stores of
// the same kind is a programming error and panics.
func NewRegistry(stores ...Store) *Registry {
	registry := &Registry{stores: make(map[Kind]Store, len(stores))}
	for _, store := range stores {
		if _, exists := registry.stores[store.Kind()]; exists {
			panic("blobstore: duplicate store registration for " + string(store.Kind()))
		}
		registry.stores[store.Kind()] = store
	}
	return registry
}

// Lookup returns the store registered for kind, or
// failure.UnsupportedFormat.
func (r *Registry) Lookup(kind Kind) (Store, error) {
	store, ok := r.stores[kind]
	if !ok {
		return nil, failure.UnsupportedFormatf("no blob store registered for container %q", kind)
	}
	return store, nil
}

// Kinds returns the registered backend tags in sorted order.
func (r *Registry) Kinds() []Kind {
	kinds := make([]Kind, 0, len(r.stores))
	for kind := range r.stores {
		kinds = append(kinds, kind)
	}
	slices.Sort(kinds)
	return kinds
}

// validateContentID rejects ids that are not a single path element.
// Content ids become file names in the file store; the memory store
// applies the same rule so both backends accept the same ids.
func validateContentID(contentID string) error {
	switch {
	case contentID == "":
		return failure.InvalidArgumentf("content id is empty")
	case contentID == "." || contentID == "..":
		return failure.InvalidArgumentf("content id %q is not a valid name", contentID)
	case strings.ContainsAny(contentID, "/\\\x00"):
		return failure.InvalidArgumentf("content id %q contains a path separator", contentID)
	}
	return nil
}
