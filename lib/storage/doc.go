// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package storage is the content repository: buckets of named
// payloads with string attributes, metadata in SQLite (lib/metadata)
// and payload bytes in a pluggable blob store (lib/blobstore),
// encoded by a per-deployment codec (lib/contentcodec).
//
// The two stores share no transaction. Consistency comes from
// ordering alone:
//
//   - Save commits the content row, then writes the blob. A failed
//     blob write leaves a row whose reads fail with ContentNotFound.
//   - Delete commits the row removal, then deletes the blob. A failed
//     blob delete leaves a blob no row refers to.
//
// Neither orphan is repaired here. Both are logged at error level
// with bucket and content ids for an external sweep.
//
// Metadata transactions never span blob I/O. Operations that check
// state before writing (readonly checks, the empty check on bucket
// delete) run the check and the write in one IMMEDIATE transaction,
// which SQLite serializes against every other writer.
//
// [Service] is the entry point. [Open] builds one from a
// config.Config; [New] assembles one from explicit parts.
package storage
