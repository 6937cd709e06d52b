// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package metadata

// schema is applied on every new connection. Every statement is
// idempotent; there is no migration history.
//
// Timestamps are unix nanoseconds (UTC). Booleans are 0/1 integers.
// There are no REFERENCES clauses: content rows are owned by a
// bucket and meta rows by a content row, but deletes are sequenced
// explicitly by lib/storage.
const schema = `
CREATE TABLE IF NOT EXISTS bucket (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	code        TEXT    NOT NULL UNIQUE,
	created_at  INTEGER NOT NULL,
	modified_at INTEGER NOT NULL,
	readonly    INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS content (
	uid            TEXT    PRIMARY KEY,
	name           TEXT    NOT NULL,
	bucket_id      INTEGER NOT NULL,
	storage_format TEXT    NOT NULL,
	digest         TEXT    NOT NULL,
	size           INTEGER NOT NULL,
	created_at     INTEGER NOT NULL,
	modified_at    INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS content_bucket_id ON content (bucket_id, created_at);

CREATE TABLE IF NOT EXISTS content_meta (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	content_uid TEXT NOT NULL,
	key         TEXT NOT NULL,
	value       TEXT NOT NULL,
	UNIQUE (content_uid, key)
);
`
