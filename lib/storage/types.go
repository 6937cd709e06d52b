// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"time"

	"github.com/bureau-foundation/bureau-storage/lib/contentcodec"
)

// Bucket is a bucket together with descriptions of every content it
// owns, as returned by GetBucket.
type Bucket struct {
	Code       string               `json:"code"`
	CreatedAt  time.Time            `json:"created_at"`
	ModifiedAt time.Time            `json:"modified_at"`
	Readonly   bool                 `json:"readonly"`
	Contents   []ContentDescription `json:"contents"`
}

// BucketSummary is one row of ListBuckets.
type BucketSummary struct {
	Code         string    `json:"code"`
	CreatedAt    time.Time `json:"created_at"`
	ModifiedAt   time.Time `json:"modified_at"`
	Readonly     bool      `json:"readonly"`
	ContentCount int64     `json:"content_count"`
}

// ContentDescription is content metadata without the payload.
type ContentDescription struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"`
	Attributes map[string]string   `json:"attributes"`
	Format     contentcodec.Format `json:"format"`
	Size       int64               `json:"size"`
	CreatedAt  time.Time           `json:"created_at"`
	ModifiedAt time.Time           `json:"modified_at"`
}

// Content is a description plus the decoded payload.
type Content struct {
	ContentDescription
	Data []byte `json:"-"`
}

// SaveRequest is the input to SaveContent.
type SaveRequest struct {
	// Bucket is the code of an existing, writable bucket.
	Bucket string

	// Name is a display name. It need not be unique.
	Name string

	// Attributes are stored as content meta rows. May be nil.
	Attributes map[string]string

	// Data is the payload. May be empty.
	Data []byte
}
