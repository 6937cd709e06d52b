// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/bureau-storage/lib/blobstore"
	"github.com/bureau-foundation/bureau-storage/lib/clock"
	"github.com/bureau-foundation/bureau-storage/lib/config"
	"github.com/bureau-foundation/bureau-storage/lib/contentcodec"
	"github.com/bureau-foundation/bureau-storage/lib/metadata"
)

// ServiceConfig assembles a Service from already-constructed parts.
// Open builds one from a config file; tests build one directly to
// inject an instrumented blob store or a fake clock.
type ServiceConfig struct {
	Metadata      *metadata.Store
	Blobs         blobstore.Store
	Codecs        *contentcodec.Registry
	DefaultFormat contentcodec.Format
	Clock         clock.Clock
	IDs           func() string
	Logger        *slog.Logger

	// Closers run on Close after the metadata store is closed, in
	// order. Open registers the in-memory blob store here.
	Closers []func() error
}

// Service is the content repository: bucket and content operations
// over one metadata store and one active blob backend.
type Service struct {
	buckets  *BucketManager
	contents *ContentManager
	metadata *metadata.Store
	closers  []func() error
	logger   *slog.Logger
}

// New returns a Service over the given parts. The Service takes
// ownership of config.Metadata and closes it on Close.
func New(config ServiceConfig) (*Service, error) {
	buckets, err := NewBucketManager(BucketConfig{
		Metadata: config.Metadata,
		Clock:    config.Clock,
		Logger:   config.Logger,
	})
	if err != nil {
		return nil, err
	}
	contents, err := NewContentManager(ContentConfig{
		Metadata:      config.Metadata,
		Blobs:         config.Blobs,
		Codecs:        config.Codecs,
		DefaultFormat: config.DefaultFormat,
		Clock:         config.Clock,
		IDs:           config.IDs,
		Logger:        config.Logger,
	})
	if err != nil {
		return nil, err
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		buckets:  buckets,
		contents: contents,
		metadata: config.Metadata,
		closers:  config.Closers,
		logger:   logger,
	}, nil
}

// Open resolves the codec and blob registries from cfg, opens the
// metadata database and returns a ready Service. Registries are built
// once here; a format or container tag that resolves to nothing fails
// Open rather than the first request.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	codecs := contentcodec.DefaultCodecs()
	if cfg.Encryption.IdentityFile != "" {
		ageCodec, err := contentcodec.LoadAgeCodec(cfg.Encryption.IdentityFile)
		if err != nil {
			return nil, err
		}
		codecs = append(codecs, ageCodec)
		logger.Info("encryption at rest available", "recipient", ageCodec.Recipient())
	}
	codecRegistry := contentcodec.NewRegistry(codecs...)

	defaultFormat, err := contentcodec.ParseFormat(cfg.Storage.Format)
	if err != nil {
		return nil, err
	}
	if _, err := codecRegistry.Lookup(defaultFormat); err != nil {
		return nil, err
	}

	fileStore, err := blobstore.NewFileStore(blobstore.FileConfig{
		Root:           cfg.Storage.Folder,
		ReadBufferSize: cfg.Storage.BufferSize,
		Logger:         logger,
	})
	if err != nil {
		return nil, err
	}
	memoryStore := blobstore.NewMemoryStore()
	blobRegistry := blobstore.NewRegistry(fileStore, memoryStore)

	container, err := blobstore.ParseKind(cfg.Storage.Container)
	if err != nil {
		return nil, err
	}
	blobs, err := blobRegistry.Lookup(container)
	if err != nil {
		return nil, err
	}

	metadataStore, err := metadata.Open(metadata.Config{
		Path:     cfg.DatabasePath(),
		PoolSize: cfg.Database.PoolSize,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}

	service, err := New(ServiceConfig{
		Metadata:      metadataStore,
		Blobs:         blobs,
		Codecs:        codecRegistry,
		DefaultFormat: defaultFormat,
		Logger:        logger,
		Closers:       []func() error{memoryStore.Close},
	})
	if err != nil {
		metadataStore.Close()
		return nil, err
	}

	logger.InfoContext(ctx, "storage service opened",
		"container", container,
		"format", defaultFormat,
		"folder", cfg.Storage.Folder,
		"database", cfg.DatabasePath(),
	)
	return service, nil
}

// Close closes the metadata store and discards in-memory state.
func (s *Service) Close() error {
	errs := []error{s.metadata.Close()}
	for _, closer := range s.closers {
		errs = append(errs, closer())
	}
	return errors.Join(errs...)
}

// CreateBucket ensures a bucket exists. Existing codes are a no-op.
func (s *Service) CreateBucket(ctx context.Context, code string) error {
	return s.buckets.Create(ctx, code)
}

// GetBucket returns a bucket and descriptions of its contents.
func (s *Service) GetBucket(ctx context.Context, code string) (*Bucket, error) {
	return s.buckets.Get(ctx, code)
}

// SetBucketReadOnly sets or clears a bucket's readonly flag.
func (s *Service) SetBucketReadOnly(ctx context.Context, code string, readonly bool) error {
	return s.buckets.SetReadOnly(ctx, code, readonly)
}

// DeleteBucket deletes an empty bucket. Unknown codes succeed.
func (s *Service) DeleteBucket(ctx context.Context, code string) error {
	return s.buckets.Delete(ctx, code)
}

// ListBuckets returns every bucket with its content count.
func (s *Service) ListBuckets(ctx context.Context) ([]BucketSummary, error) {
	return s.buckets.List(ctx)
}

// SaveContent stores a payload in a bucket and returns the new id.
func (s *Service) SaveContent(ctx context.Context, bucket, name string, attributes map[string]string, data []byte) (string, error) {
	return s.contents.Save(ctx, SaveRequest{
		Bucket:     bucket,
		Name:       name,
		Attributes: attributes,
		Data:       data,
	})
}

// GetContent returns a payload and its description.
func (s *Service) GetContent(ctx context.Context, contentID string) (*Content, error) {
	return s.contents.Get(ctx, contentID)
}

// GetContentDescription returns a description without reading the
// payload.
func (s *Service) GetContentDescription(ctx context.Context, contentID string) (*ContentDescription, error) {
	return s.contents.GetDescription(ctx, contentID)
}

// DeleteContent deletes a content and its payload. Unknown ids
// succeed.
func (s *Service) DeleteContent(ctx context.Context, contentID string) error {
	return s.contents.Delete(ctx, contentID)
}
