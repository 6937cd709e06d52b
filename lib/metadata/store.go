// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package metadata

import (
	"context"
	"fmt"
	"log/slog"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/bureau-foundation/bureau-storage/lib/sqlitepool"
)

// Config holds the parameters for opening a metadata store.
type Config struct {
	// Path is the SQLite database file. Parent directories are
	// created.
	Path string

	// PoolSize is the number of connections. Defaults to 4.
	PoolSize int

	// Logger receives pool lifecycle messages. Nil discards them.
	Logger *slog.Logger
}

// Store is the relational side of the content repository: bucket,
// content and content_meta tables in one SQLite database.
//
// All access goes through [Store.Update] or [Store.View], each of
// which scopes exactly one transaction. A logical operation that
// needs read-check-write atomicity performs all of its steps inside
// one Update. Blob I/O never happens inside these callbacks.
type Store struct {
	pool   *sqlitepool.Pool
	logger *slog.Logger
}

// Open opens (creating if needed) the metadata database.
func Open(config Config) (*Store, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	poolSize := config.PoolSize
	if poolSize <= 0 {
		poolSize = 4
	}

	pool, err := sqlitepool.Open(sqlitepool.Config{
		Path:     config.Path,
		PoolSize: poolSize,
		Logger:   logger,
		OnConnect: func(conn *sqlite.Conn) error {
			return sqlitex.ExecuteScript(conn, schema, nil)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("metadata store: %w", err)
	}

	store := &Store{pool: pool, logger: logger}

	// Take one connection now so schema errors surface from Open
	// rather than from the first operation.
	if err := store.View(context.Background(), func(*Tx) error { return nil }); err != nil {
		pool.Close()
		return nil, fmt.Errorf("metadata store: initializing schema: %w", err)
	}
	return store, nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.pool.Close()
}

// Update runs fn in an IMMEDIATE transaction. Updates are serialized
// against each other for their whole duration. The transaction
// commits if fn returns nil and rolls back otherwise; fn's error is
// returned unchanged so failure kinds survive.
func (s *Store) Update(ctx context.Context, fn func(tx *Tx) error) error {
	return s.pool.Write(ctx, func(conn *sqlite.Conn) error {
		return fn(&Tx{conn: conn, writable: true})
	})
}

// View runs fn in a read transaction with a consistent snapshot.
// Write methods on the Tx fail.
func (s *Store) View(ctx context.Context, fn func(tx *Tx) error) error {
	return s.pool.Read(ctx, func(conn *sqlite.Conn) error {
		return fn(&Tx{conn: conn})
	})
}
