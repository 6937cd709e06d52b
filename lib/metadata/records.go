// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package metadata

import (
	"time"

	"github.com/bureau-foundation/bureau-storage/lib/contentcodec"
)

// Bucket is a row of the bucket table.
type Bucket struct {
	// ID is assigned by the store on insert.
	ID int64

	// Code is the caller-chosen unique name.
	Code string

	CreatedAt  time.Time
	ModifiedAt time.Time

	// Readonly blocks content saves and deletes.
	Readonly bool
}

// Content is a row of the content table.
type Content struct {
	// UID is the generated content id. It is also the blob key.
	UID string

	Name     string
	BucketID int64

	// StorageFormat is the codec the blob was encoded with. Fixed at
	// insert; reads decode with this format regardless of the
	// deployment's current default.
	StorageFormat contentcodec.Format

	// Digest is the hex BLAKE3 digest of the decoded payload.
	Digest string

	// Size is the decoded payload length in bytes.
	Size int64

	CreatedAt  time.Time
	ModifiedAt time.Time
}

// ContentMeta is one key/value attribute of a content record.
type ContentMeta struct {
	ID         int64
	ContentUID string
	Key        string
	Value      string
}

func toUnixNano(t time.Time) int64 { return t.UTC().UnixNano() }

func fromUnixNano(nanoseconds int64) time.Time { return time.Unix(0, nanoseconds).UTC() }
