// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package metadata

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/bureau-foundation/bureau-storage/lib/contentcodec"
)

// errReadOnlyTx is returned by write methods called inside View.
var errReadOnlyTx = errors.New("metadata: write attempted in a read-only transaction")

// Tx is a transaction handle passed to Update and View callbacks. It
// is valid only for the duration of the callback and must not be
// shared between goroutines.
type Tx struct {
	conn     *sqlite.Conn
	writable bool
}

func (tx *Tx) exec(query string, args ...any) error {
	if !tx.writable {
		return errReadOnlyTx
	}
	return sqlitex.Execute(tx.conn, query, &sqlitex.ExecOptions{Args: args})
}

// Buckets.

const bucketColumns = "id, code, created_at, modified_at, readonly"

func scanBucket(stmt *sqlite.Stmt) Bucket {
	return Bucket{
		ID:         stmt.ColumnInt64(0),
		Code:       stmt.ColumnText(1),
		CreatedAt:  fromUnixNano(stmt.ColumnInt64(2)),
		ModifiedAt: fromUnixNano(stmt.ColumnInt64(3)),
		Readonly:   stmt.ColumnInt64(4) != 0,
	}
}

func (tx *Tx) findBucket(where string, arg any) (*Bucket, error) {
	var found *Bucket
	err := sqlitex.Execute(tx.conn, "SELECT "+bucketColumns+" FROM bucket WHERE "+where, &sqlitex.ExecOptions{
		Args: []any{arg},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			bucket := scanBucket(stmt)
			found = &bucket
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("querying bucket: %w", err)
	}
	return found, nil
}

// FindBucketByCode returns the bucket with the given code, or nil
// when there is none.
func (tx *Tx) FindBucketByCode(code string) (*Bucket, error) {
	return tx.findBucket("code = ?", code)
}

// FindBucketByID returns the bucket with the given id, or nil.
func (tx *Tx) FindBucketByID(id int64) (*Bucket, error) {
	return tx.findBucket("id = ?", id)
}

// ListBuckets returns every bucket ordered by code.
func (tx *Tx) ListBuckets() ([]Bucket, error) {
	var buckets []Bucket
	err := sqlitex.Execute(tx.conn, "SELECT "+bucketColumns+" FROM bucket ORDER BY code", &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			buckets = append(buckets, scanBucket(stmt))
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("listing buckets: %w", err)
	}
	return buckets, nil
}

// InsertBucketIfAbsent inserts a writable bucket stamped with now.
// An existing bucket with the same code is left untouched and created
// reports false.
func (tx *Tx) InsertBucketIfAbsent(code string, now time.Time) (created bool, err error) {
	err = tx.exec(`INSERT INTO bucket (code, created_at, modified_at, readonly)
		VALUES (?, ?, ?, 0)
		ON CONFLICT (code) DO NOTHING`,
		code, toUnixNano(now), toUnixNano(now))
	if err != nil {
		return false, fmt.Errorf("inserting bucket %q: %w", code, err)
	}
	return tx.conn.Changes() > 0, nil
}

// UpdateBucket writes the mutable columns (readonly, modified_at) of
// an existing bucket.
func (tx *Tx) UpdateBucket(bucket *Bucket) error {
	readonly := 0
	if bucket.Readonly {
		readonly = 1
	}
	err := tx.exec("UPDATE bucket SET readonly = ?, modified_at = ? WHERE id = ?",
		readonly, toUnixNano(bucket.ModifiedAt), bucket.ID)
	if err != nil {
		return fmt.Errorf("updating bucket %d: %w", bucket.ID, err)
	}
	return nil
}

// DeleteBucket removes a bucket row. Content rows are not touched.
func (tx *Tx) DeleteBucket(id int64) error {
	if err := tx.exec("DELETE FROM bucket WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting bucket %d: %w", id, err)
	}
	return nil
}

// Contents.

const contentColumns = "uid, name, bucket_id, storage_format, digest, size, created_at, modified_at"

func scanContent(stmt *sqlite.Stmt) Content {
	return Content{
		UID:           stmt.ColumnText(0),
		Name:          stmt.ColumnText(1),
		BucketID:      stmt.ColumnInt64(2),
		StorageFormat: contentcodec.Format(stmt.ColumnText(3)),
		Digest:        stmt.ColumnText(4),
		Size:          stmt.ColumnInt64(5),
		CreatedAt:     fromUnixNano(stmt.ColumnInt64(6)),
		ModifiedAt:    fromUnixNano(stmt.ColumnInt64(7)),
	}
}

// CountContentsByBucket returns the number of content rows owned by
// the bucket.
func (tx *Tx) CountContentsByBucket(bucketID int64) (int64, error) {
	var count int64
	err := sqlitex.Execute(tx.conn, "SELECT count(*) FROM content WHERE bucket_id = ?", &sqlitex.ExecOptions{
		Args: []any{bucketID},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			count = stmt.ColumnInt64(0)
			return nil
		},
	})
	if err != nil {
		return 0, fmt.Errorf("counting contents of bucket %d: %w", bucketID, err)
	}
	return count, nil
}

// ListContentsByBucket returns the bucket's content rows ordered by
// creation time, ties broken by uid.
func (tx *Tx) ListContentsByBucket(bucketID int64) ([]Content, error) {
	var contents []Content
	err := sqlitex.Execute(tx.conn,
		"SELECT "+contentColumns+" FROM content WHERE bucket_id = ? ORDER BY created_at, uid",
		&sqlitex.ExecOptions{
			Args: []any{bucketID},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				contents = append(contents, scanContent(stmt))
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("listing contents of bucket %d: %w", bucketID, err)
	}
	return contents, nil
}

// FindContent returns the content row with the given uid, or nil.
func (tx *Tx) FindContent(uid string) (*Content, error) {
	var found *Content
	err := sqlitex.Execute(tx.conn, "SELECT "+contentColumns+" FROM content WHERE uid = ?", &sqlitex.ExecOptions{
		Args: []any{uid},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			content := scanContent(stmt)
			found = &content
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("querying content %s: %w", uid, err)
	}
	return found, nil
}

// InsertContent inserts a content row. A duplicate uid is an error.
func (tx *Tx) InsertContent(content *Content) error {
	err := tx.exec("INSERT INTO content ("+contentColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		content.UID,
		content.Name,
		content.BucketID,
		string(content.StorageFormat),
		content.Digest,
		content.Size,
		toUnixNano(content.CreatedAt),
		toUnixNano(content.ModifiedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting content %s: %w", content.UID, err)
	}
	return nil
}

// DeleteContent removes a content row. Its meta rows are not touched.
func (tx *Tx) DeleteContent(uid string) error {
	if err := tx.exec("DELETE FROM content WHERE uid = ?", uid); err != nil {
		return fmt.Errorf("deleting content %s: %w", uid, err)
	}
	return nil
}

// Content meta.

// InsertContentMeta inserts one row per attribute. Keys are inserted
// in sorted order so row ids are deterministic.
func (tx *Tx) InsertContentMeta(uid string, attributes map[string]string) error {
	keys := make([]string, 0, len(attributes))
	for key := range attributes {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	for _, key := range keys {
		err := tx.exec("INSERT INTO content_meta (content_uid, key, value) VALUES (?, ?, ?)",
			uid, key, attributes[key])
		if err != nil {
			return fmt.Errorf("inserting attribute %q of content %s: %w", key, uid, err)
		}
	}
	return nil
}

// ListContentMeta returns the content's attributes. The map is never
// nil.
func (tx *Tx) ListContentMeta(uid string) (map[string]string, error) {
	attributes := make(map[string]string)
	err := sqlitex.Execute(tx.conn, "SELECT key, value FROM content_meta WHERE content_uid = ?", &sqlitex.ExecOptions{
		Args: []any{uid},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			attributes[stmt.ColumnText(0)] = stmt.ColumnText(1)
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("listing attributes of content %s: %w", uid, err)
	}
	return attributes, nil
}

// ListContentMetaByBucket returns the attributes of every content row
// in the bucket, keyed by content uid. Contents without attributes
// are absent from the result.
func (tx *Tx) ListContentMetaByBucket(bucketID int64) (map[string]map[string]string, error) {
	result := make(map[string]map[string]string)
	err := sqlitex.Execute(tx.conn, `SELECT meta.content_uid, meta.key, meta.value
		FROM content_meta AS meta
		JOIN content ON content.uid = meta.content_uid
		WHERE content.bucket_id = ?`,
		&sqlitex.ExecOptions{
			Args: []any{bucketID},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				uid := stmt.ColumnText(0)
				attributes, ok := result[uid]
				if !ok {
					attributes = make(map[string]string)
					result[uid] = attributes
				}
				attributes[stmt.ColumnText(1)] = stmt.ColumnText(2)
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("listing attributes in bucket %d: %w", bucketID, err)
	}
	return result, nil
}

// DeleteContentMeta removes every attribute of the content.
func (tx *Tx) DeleteContentMeta(uid string) error {
	if err := tx.exec("DELETE FROM content_meta WHERE content_uid = ?", uid); err != nil {
		return fmt.Errorf("deleting attributes of content %s: %w", uid, err)
	}
	return nil
}
