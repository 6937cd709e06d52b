// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sqlitepool provides the SQLite connection pool behind the
// metadata store.
//
// It wraps zombiezen.com/go/sqlite's sqlitex.Pool with fixed pragmas
// and two transaction helpers. Callers either [Pool.Take] and
// [Pool.Put] a connection directly, or hand a function to
// [Pool.Write] (BEGIN IMMEDIATE) or [Pool.Read] (deferred BEGIN),
// which take a connection, run the function inside one transaction,
// and return the connection. Connections are not safe for concurrent
// use; each goroutine holds its own for the duration of its work.
//
// # Pragmas
//
//   - journal_mode=WAL: readers never block the single writer.
//   - synchronous=NORMAL: commits survive process crashes without an
//     fsync per transaction.
//   - busy_timeout: writers wait for the write lock instead of failing
//     with SQLITE_BUSY (default 5 s, see [Config.BusyTimeout]).
//   - foreign_keys=OFF: bucket/content/meta integrity is enforced by
//     the lifecycle managers in lib/storage, the same layer that keeps
//     metadata and blobs consistent.
//   - cache_size=-8192, mmap_size=256 MiB, temp_store=MEMORY.
//
// # Write serialization
//
// Write transactions start with BEGIN IMMEDIATE, taking SQLite's
// write lock before the first statement. Two Write calls never
// interleave, so a read-check-write sequence inside one Write is
// atomic with respect to every other Write.
package sqlitepool
