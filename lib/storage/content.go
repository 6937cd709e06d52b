// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/bureau-foundation/bureau-storage/lib/blobstore"
	"github.com/bureau-foundation/bureau-storage/lib/clock"
	"github.com/bureau-foundation/bureau-storage/lib/contentcodec"
	"github.com/bureau-foundation/bureau-storage/lib/failure"
	"github.com/bureau-foundation/bureau-storage/lib/metadata"
)

// ContentConfig holds the dependencies of a ContentManager.
type ContentConfig struct {
	// Metadata is the relational store. Required.
	Metadata *metadata.Store

	// Blobs holds payloads. Required.
	Blobs blobstore.Store

	// Codecs resolves both the write format and the stored format of
	// existing content. Defaults to contentcodec.DefaultRegistry().
	Codecs *contentcodec.Registry

	// DefaultFormat is applied to new writes. Defaults to GZIP. It is
	// not validated here: a format with no registered codec fails
	// each save with UnsupportedFormat.
	DefaultFormat contentcodec.Format

	// Clock stamps created_at and modified_at. Defaults to
	// clock.Real().
	Clock clock.Clock

	// IDs generates content ids. Defaults to random (v4) UUIDs.
	IDs func() string

	// Logger receives lifecycle events and orphan reports. Nil
	// discards them.
	Logger *slog.Logger
}

// ContentManager saves, reads and deletes content, keeping the
// metadata store and the blob store consistent without a shared
// transaction.
//
// Metadata is always committed before the blob is written, and
// deleted before the blob is removed. A failure between the two steps
// therefore leaves either a content row whose blob is missing (reads
// fail with ContentNotFound) or a blob no row points to. Both cases
// are logged at error level with the ids an external sweep needs.
type ContentManager struct {
	metadata      *metadata.Store
	blobs         blobstore.Store
	codecs        *contentcodec.Registry
	defaultFormat contentcodec.Format
	clock         clock.Clock
	ids           func() string
	logger        *slog.Logger
}

// NewContentManager returns a manager over the given stores.
func NewContentManager(config ContentConfig) (*ContentManager, error) {
	if config.Metadata == nil {
		return nil, fmt.Errorf("content manager: Metadata is required")
	}
	if config.Blobs == nil {
		return nil, fmt.Errorf("content manager: Blobs is required")
	}
	manager := &ContentManager{
		metadata:      config.Metadata,
		blobs:         config.Blobs,
		codecs:        config.Codecs,
		defaultFormat: config.DefaultFormat,
		clock:         config.Clock,
		ids:           config.IDs,
		logger:        config.Logger,
	}
	if manager.codecs == nil {
		manager.codecs = contentcodec.DefaultRegistry()
	}
	if manager.defaultFormat == "" {
		manager.defaultFormat = contentcodec.FormatGzip
	}
	if manager.clock == nil {
		manager.clock = clock.Real()
	}
	if manager.ids == nil {
		manager.ids = uuid.NewString
	}
	if manager.logger == nil {
		manager.logger = slog.New(slog.DiscardHandler)
	}
	return manager, nil
}

// Save stores a new content in a writable bucket and returns its id.
//
// The payload is encoded before any store is touched. The content row
// and its attributes are then committed in one transaction that also
// re-checks the bucket, and only after that commit is the blob
// written. If the blob write fails the committed row stays behind as
// an orphan and the blob error is returned.
func (m *ContentManager) Save(ctx context.Context, request SaveRequest) (string, error) {
	codec, err := m.codecs.Lookup(m.defaultFormat)
	if err != nil {
		return "", err
	}
	digest := payloadDigest(request.Data)
	encoded, err := codec.Encode(request.Data)
	if err != nil {
		return "", fmt.Errorf("encoding content as %s: %w", codec.Format(), err)
	}

	var (
		contentID string
		bucketID  int64
	)
	err = m.metadata.Update(ctx, func(tx *metadata.Tx) error {
		bucket, err := tx.FindBucketByCode(request.Bucket)
		if err != nil {
			return err
		}
		if bucket == nil {
			return failure.BucketNotExistsf("bucket %q does not exist", request.Bucket)
		}
		if bucket.Readonly {
			return failure.BucketReadonlyf("bucket %q is readonly", request.Bucket)
		}

		now := m.clock.Now().UTC()
		contentID = m.ids()
		bucketID = bucket.ID
		if err := tx.InsertContent(&metadata.Content{
			UID:           contentID,
			Name:          request.Name,
			BucketID:      bucket.ID,
			StorageFormat: codec.Format(),
			Digest:        digest,
			Size:          int64(len(request.Data)),
			CreatedAt:     now,
			ModifiedAt:    now,
		}); err != nil {
			return err
		}
		return tx.InsertContentMeta(contentID, request.Attributes)
	})
	if err != nil {
		return "", err
	}

	if err := m.blobs.Save(ctx, bucketID, contentID, encoded); err != nil {
		m.logger.Error("content row committed but blob write failed, row is orphaned",
			"bucket", request.Bucket,
			"bucket_id", bucketID,
			"content_id", contentID,
			"backend", m.blobs.Kind(),
			"error", err,
		)
		return "", fmt.Errorf("writing blob for content %s: %w", contentID, err)
	}

	m.logger.Debug("content saved",
		"bucket", request.Bucket,
		"content_id", contentID,
		"format", codec.Format(),
		"size", len(request.Data),
		"stored_size", len(encoded),
	)
	return contentID, nil
}

// load reads a content row and its attributes in one snapshot.
func (m *ContentManager) load(ctx context.Context, contentID string) (*metadata.Content, map[string]string, error) {
	var (
		row        *metadata.Content
		attributes map[string]string
	)
	err := m.metadata.View(ctx, func(tx *metadata.Tx) error {
		var err error
		row, err = tx.FindContent(contentID)
		if err != nil {
			return err
		}
		if row == nil {
			return failure.ContentNotFoundf("content %s does not exist", contentID)
		}
		attributes, err = tx.ListContentMeta(contentID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return row, attributes, nil
}

// Get returns the decoded payload and its description. The payload
// is decoded with the format recorded at save time and checked
// against the recorded digest.
func (m *ContentManager) Get(ctx context.Context, contentID string) (*Content, error) {
	row, attributes, err := m.load(ctx, contentID)
	if err != nil {
		return nil, err
	}

	codec, err := m.codecs.Lookup(row.StorageFormat)
	if err != nil {
		return nil, failure.Wrap(failure.UnexpectedError, err, "content %s", contentID)
	}

	encoded, err := m.blobs.Get(ctx, row.BucketID, contentID)
	if err != nil {
		return nil, fmt.Errorf("reading blob for content %s: %w", contentID, err)
	}

	data, err := codec.Decode(encoded)
	if err != nil {
		return nil, fmt.Errorf("decoding content %s: %w", contentID, err)
	}
	if int64(len(data)) != row.Size || payloadDigest(data) != row.Digest {
		return nil, failure.CorruptedContentf("content %s: decoded payload does not match the recorded digest", contentID)
	}

	return &Content{
		ContentDescription: describe(row, attributes),
		Data:               data,
	}, nil
}

// GetDescription returns the content's description without reading
// its blob.
func (m *ContentManager) GetDescription(ctx context.Context, contentID string) (*ContentDescription, error) {
	row, attributes, err := m.load(ctx, contentID)
	if err != nil {
		return nil, err
	}
	description := describe(row, attributes)
	return &description, nil
}

// Delete removes a content's attributes, its row and then its blob.
// Deleting an unknown id succeeds. Content in a readonly bucket fails
// with BucketReadonly and nothing is removed.
//
// Once the metadata is committed the blob delete is attempted outside
// the transaction. An already-absent blob is success; any other
// failure leaves an orphan blob and returns UnexpectedError.
func (m *ContentManager) Delete(ctx context.Context, contentID string) error {
	var (
		found    bool
		bucketID int64
	)
	err := m.metadata.Update(ctx, func(tx *metadata.Tx) error {
		row, err := tx.FindContent(contentID)
		if err != nil {
			return err
		}
		if row == nil {
			return nil
		}
		bucket, err := tx.FindBucketByID(row.BucketID)
		if err != nil {
			return err
		}
		if bucket != nil && bucket.Readonly {
			return failure.BucketReadonlyf("bucket %q is readonly", bucket.Code)
		}
		if err := tx.DeleteContentMeta(contentID); err != nil {
			return err
		}
		found = true
		bucketID = row.BucketID
		return tx.DeleteContent(contentID)
	})
	if err != nil {
		return err
	}
	if !found {
		return nil
	}

	if err := m.blobs.Delete(ctx, bucketID, contentID); err != nil {
		m.logger.Error("content row deleted but blob delete failed, blob is orphaned",
			"bucket_id", bucketID,
			"content_id", contentID,
			"backend", m.blobs.Kind(),
			"error", err,
		)
		return failure.Wrap(failure.UnexpectedError, err, "deleting blob for content %s", contentID)
	}

	m.logger.Debug("content deleted", "bucket_id", bucketID, "content_id", contentID)
	return nil
}
