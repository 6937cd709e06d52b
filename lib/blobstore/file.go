// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package blobstore

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/bureau-foundation/bureau-storage/lib/failure"
)

// DefaultReadBufferSize is the chunk size for file reads when the
// configuration does not set one.
const DefaultReadBufferSize = 1024

// blobExtension is appended to the content id to form the file name.
const blobExtension = ".data"

// FileConfig configures a [FileStore].
type FileConfig struct {
	// Root is the directory holding one subdirectory per bucket.
	// Created if absent. Required.
	Root string

	// ReadBufferSize is the chunk size for reads. Values below 1 use
	// DefaultReadBufferSize. Reads of files smaller than the buffer
	// allocate only the file size.
	ReadBufferSize int

	// DirMode is the permission for created directories. Zero means
	// 0o755.
	DirMode fs.FileMode

	// FileMode is the permission for blob files. Zero means 0o644.
	FileMode fs.FileMode

	// Logger receives debug events for saves and deletes. Nil
	// discards them.
	Logger *slog.Logger
}

// FileStore stores each blob as <root>/<bucketID>/<contentID>.data,
// holding the encoded bytes with no header. It is safe for concurrent
// use; operations on distinct content ids never touch the same file.
type FileStore struct {
	root       string
	bufferSize int
	dirMode    fs.FileMode
	fileMode   fs.FileMode
	logger     *slog.Logger
}

// NewFileStore creates the root directory if needed and returns a
// store rooted there. A root path occupied by a non-directory fails
// with failure.UnexpectedError.
func NewFileStore(config FileConfig) (*FileStore, error) {
	if config.Root == "" {
		return nil, failure.InvalidArgumentf("file store root is required")
	}
	store := &FileStore{
		root:       config.Root,
		bufferSize: config.ReadBufferSize,
		dirMode:    config.DirMode,
		fileMode:   config.FileMode,
		logger:     config.Logger,
	}
	if store.bufferSize < 1 {
		store.bufferSize = DefaultReadBufferSize
	}
	if store.dirMode == 0 {
		store.dirMode = 0o755
	}
	if store.fileMode == 0 {
		store.fileMode = 0o644
	}
	if store.logger == nil {
		store.logger = slog.New(slog.DiscardHandler)
	}
	if err := store.ensureDirectory(store.root); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *FileStore) Kind() Kind { return KindFile }

// Root returns the store's root directory.
func (s *FileStore) Root() string { return s.root }

// Path returns the file path a blob is stored at.
func (s *FileStore) Path(bucketID int64, contentID string) string {
	return filepath.Join(s.bucketDirectory(bucketID), contentID+blobExtension)
}

func (s *FileStore) bucketDirectory(bucketID int64) string {
	return filepath.Join(s.root, strconv.FormatInt(bucketID, 10))
}

// ensureDirectory creates path if absent and verifies it is a
// directory.
func (s *FileStore) ensureDirectory(path string) error {
	info, err := os.Stat(path)
	switch {
	case err == nil:
		if !info.IsDir() {
			return failure.Unexpectedf("%s exists and is not a directory", path)
		}
		return nil
	case !errors.Is(err, fs.ErrNotExist):
		return failure.Wrap(failure.UnexpectedError, err, "checking directory %s", path)
	}
	if err := os.MkdirAll(path, s.dirMode); err != nil {
		return failure.Wrap(failure.UnexpectedError, err, "creating directory %s", path)
	}
	return nil
}

// Save writes data to a new file. An existing file for the same id is
// never overwritten: the create fails and the store reports
// failure.UnexpectedError. A failed write removes the partial file.
func (s *FileStore) Save(ctx context.Context, bucketID int64, contentID string, data []byte) error {
	if err := validateContentID(contentID); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return failure.Wrap(failure.UnexpectedError, err, "saving blob %s", contentID)
	}
	if err := s.ensureDirectory(s.bucketDirectory(bucketID)); err != nil {
		return err
	}

	path := s.Path(bucketID, contentID)
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, s.fileMode)
	if err != nil {
		return failure.Wrap(failure.UnexpectedError, err, "creating blob file")
	}

	written, writeErr := file.Write(data)
	if writeErr == nil && written != len(data) {
		writeErr = io.ErrShortWrite
	}
	closeErr := file.Close()
	if writeErr != nil || closeErr != nil {
		os.Remove(path)
		return failure.Wrap(failure.UnexpectedError, errors.Join(writeErr, closeErr), "writing blob file %s", path)
	}

	s.logger.Debug("blob saved",
		"bucket_id", bucketID,
		"content_id", contentID,
		"size", len(data),
	)
	return nil
}

// Get reads the blob in chunks of the configured buffer size.
func (s *FileStore) Get(ctx context.Context, bucketID int64, contentID string) ([]byte, error) {
	if err := validateContentID(contentID); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, failure.Wrap(failure.UnexpectedError, err, "reading blob %s", contentID)
	}

	path := s.Path(bucketID, contentID)
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, failure.Wrap(failure.ContentNotFound, err, "blob %s in bucket %d", contentID, bucketID)
		}
		return nil, failure.Wrap(failure.UnexpectedError, err, "opening blob file")
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, failure.Wrap(failure.UnexpectedError, err, "stat blob file %s", path)
	}

	bufferSize := s.bufferSize
	if size := info.Size(); size < int64(bufferSize) {
		bufferSize = max(1, int(size))
	}
	buffer := make([]byte, bufferSize)
	data := make([]byte, 0, info.Size())
	for {
		read, err := file.Read(buffer)
		data = append(data, buffer[:read]...)
		if errors.Is(err, io.EOF) {
			return data, nil
		}
		if err != nil {
			return nil, failure.Wrap(failure.UnexpectedError, err, "reading blob file %s", path)
		}
	}
}

// Delete removes the blob file. An absent file is success.
func (s *FileStore) Delete(ctx context.Context, bucketID int64, contentID string) error {
	if err := validateContentID(contentID); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return failure.Wrap(failure.UnexpectedError, err, "deleting blob %s", contentID)
	}

	err := os.Remove(s.Path(bucketID, contentID))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return failure.Wrap(failure.UnexpectedError, err, "deleting blob file")
	}
	if err == nil {
		s.logger.Debug("blob deleted", "bucket_id", bucketID, "content_id", contentID)
	}
	return nil
}
