// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Bureau-storage is the operator CLI for a bureau-storage content
// repository. It manages buckets (create, get, list, readonly, delete)
// and contents (put, get, describe, delete) directly against the
// configured metadata database and blob store.
//
// Failures print as "CODE: message" on stderr, where CODE is the
// stable storage failure code (BUCKET_NOT_EXISTS, BUCKET_READ_ONLY,
// ...), and the exit status reflects the failure category.
package main
