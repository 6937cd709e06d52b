// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package metadata stores bucket, content and content attribute
// records in SQLite through lib/sqlitepool.
//
// The package offers repository-style primitives on a transaction
// handle ([Tx]) and leaves sequencing to its callers: each
// [Store.Update] is one IMMEDIATE transaction, and a logical
// operation that must be atomic (check a flag then write, count then
// delete) runs all of its steps inside a single Update.
//
// Bucket creation uses insert-if-absent. A create for an existing
// code changes nothing and reports created=false.
package metadata
