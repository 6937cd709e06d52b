// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/bureau-storage/lib/clock"
	"github.com/bureau-foundation/bureau-storage/lib/failure"
	"github.com/bureau-foundation/bureau-storage/lib/metadata"
)

// BucketConfig holds the dependencies of a BucketManager.
type BucketConfig struct {
	// Metadata is the relational store. Required.
	Metadata *metadata.Store

	// Clock stamps created_at and modified_at. Defaults to
	// clock.Real().
	Clock clock.Clock

	// Logger receives lifecycle events. Nil discards them.
	Logger *slog.Logger
}

// BucketManager creates, inspects, toggles and deletes buckets. Each
// operation is one metadata transaction; buckets have no blob-side
// state of their own.
type BucketManager struct {
	metadata *metadata.Store
	clock    clock.Clock
	logger   *slog.Logger
}

// NewBucketManager returns a manager over config.Metadata.
func NewBucketManager(config BucketConfig) (*BucketManager, error) {
	if config.Metadata == nil {
		return nil, fmt.Errorf("bucket manager: Metadata is required")
	}
	manager := &BucketManager{
		metadata: config.Metadata,
		clock:    config.Clock,
		logger:   config.Logger,
	}
	if manager.clock == nil {
		manager.clock = clock.Real()
	}
	if manager.logger == nil {
		manager.logger = slog.New(slog.DiscardHandler)
	}
	return manager, nil
}

// Create ensures a bucket with the given code exists. Creating a code
// that already exists succeeds without modifying the bucket.
func (m *BucketManager) Create(ctx context.Context, code string) error {
	if code == "" {
		return failure.InvalidArgumentf("bucket code is empty")
	}

	var created bool
	err := m.metadata.Update(ctx, func(tx *metadata.Tx) error {
		var err error
		created, err = tx.InsertBucketIfAbsent(code, m.clock.Now().UTC())
		return err
	})
	if err != nil {
		return fmt.Errorf("creating bucket %q: %w", code, err)
	}

	if created {
		m.logger.Info("bucket created", "bucket", code)
	} else {
		m.logger.Debug("bucket already exists", "bucket", code)
	}
	return nil
}

// Get returns the bucket and a description of every content it owns,
// read from one snapshot.
func (m *BucketManager) Get(ctx context.Context, code string) (*Bucket, error) {
	var result *Bucket
	err := m.metadata.View(ctx, func(tx *metadata.Tx) error {
		bucket, err := tx.FindBucketByCode(code)
		if err != nil {
			return err
		}
		if bucket == nil {
			return failure.BucketNotExistsf("bucket %q does not exist", code)
		}

		contents, err := tx.ListContentsByBucket(bucket.ID)
		if err != nil {
			return err
		}
		attributes, err := tx.ListContentMetaByBucket(bucket.ID)
		if err != nil {
			return err
		}

		result = &Bucket{
			Code:       bucket.Code,
			CreatedAt:  bucket.CreatedAt,
			ModifiedAt: bucket.ModifiedAt,
			Readonly:   bucket.Readonly,
			Contents:   make([]ContentDescription, 0, len(contents)),
		}
		for index := range contents {
			result.Contents = append(result.Contents, describe(&contents[index], attributes[contents[index].UID]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SetReadOnly sets the bucket's readonly flag. Setting the flag to
// its current value writes nothing and leaves modified_at unchanged.
func (m *BucketManager) SetReadOnly(ctx context.Context, code string, readonly bool) error {
	var changed bool
	err := m.metadata.Update(ctx, func(tx *metadata.Tx) error {
		bucket, err := tx.FindBucketByCode(code)
		if err != nil {
			return err
		}
		if bucket == nil {
			return failure.BucketNotExistsf("bucket %q does not exist", code)
		}
		if bucket.Readonly == readonly {
			return nil
		}
		bucket.Readonly = readonly
		bucket.ModifiedAt = m.clock.Now().UTC()
		changed = true
		return tx.UpdateBucket(bucket)
	})
	if err != nil {
		return err
	}
	if changed {
		m.logger.Info("bucket readonly changed", "bucket", code, "readonly", readonly)
	}
	return nil
}

// Delete removes an empty bucket. Deleting an unknown code succeeds.
// A bucket that still owns content fails with BucketNotEmpty.
//
// The emptiness check and the delete share one IMMEDIATE transaction,
// and content saves insert under the same write lock. A save racing
// this delete either commits first (the delete then sees it and
// fails) or runs after (and fails with BucketNotExists).
func (m *BucketManager) Delete(ctx context.Context, code string) error {
	var deleted bool
	err := m.metadata.Update(ctx, func(tx *metadata.Tx) error {
		bucket, err := tx.FindBucketByCode(code)
		if err != nil {
			return err
		}
		if bucket == nil {
			return nil
		}
		count, err := tx.CountContentsByBucket(bucket.ID)
		if err != nil {
			return err
		}
		if count > 0 {
			return failure.BucketNotEmptyf("bucket %q still holds %d content(s)", code, count)
		}
		deleted = true
		return tx.DeleteBucket(bucket.ID)
	})
	if err != nil {
		return err
	}
	if deleted {
		m.logger.Info("bucket deleted", "bucket", code)
	}
	return nil
}

// List returns every bucket ordered by code, with content counts.
func (m *BucketManager) List(ctx context.Context) ([]BucketSummary, error) {
	var summaries []BucketSummary
	err := m.metadata.View(ctx, func(tx *metadata.Tx) error {
		buckets, err := tx.ListBuckets()
		if err != nil {
			return err
		}
		summaries = make([]BucketSummary, 0, len(buckets))
		for _, bucket := range buckets {
			count, err := tx.CountContentsByBucket(bucket.ID)
			if err != nil {
				return err
			}
			summaries = append(summaries, BucketSummary{
				Code:         bucket.Code,
				CreatedAt:    bucket.CreatedAt,
				ModifiedAt:   bucket.ModifiedAt,
				Readonly:     bucket.Readonly,
				ContentCount: count,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summaries, nil
}

// describe converts a content row and its attributes into the public
// description. A nil attribute map becomes an empty one.
func describe(content *metadata.Content, attributes map[string]string) ContentDescription {
	if attributes == nil {
		attributes = map[string]string{}
	}
	return ContentDescription{
		ID:         content.UID,
		Name:       content.Name,
		Attributes: attributes,
		Format:     content.StorageFormat,
		Size:       content.Size,
		CreatedAt:  content.CreatedAt,
		ModifiedAt: content.ModifiedAt,
	}
}
