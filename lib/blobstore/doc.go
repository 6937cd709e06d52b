// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package blobstore holds content payloads addressed by (bucket id,
// content id). The metadata that gives payloads meaning lives in
// lib/metadata; this package knows nothing about buckets beyond their
// numeric ids.
//
// Two backends are provided:
//
//   - [FileStore] -- one file per blob under a directory per bucket,
//     read in bounded chunks
//   - [MemoryStore] -- a concurrent two-level map for tests and
//     ephemeral deployments
//
// The active backend is chosen per deployment through a [Registry]
// resolved once at startup. Failures are classified with lib/failure:
// an absent blob is always failure.ContentNotFound, distinct from I/O
// faults (failure.UnexpectedError).
package blobstore
