// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package contentcodec provides the reversible byte transforms applied
// to content payloads before they reach a blob store.
//
// Each codec is identified by a [Format] tag. The tag is persisted on
// every content record at write time, so the tag values are storage
// constants: renaming one orphans every record written under it.
//
// Key exports:
//
//   - [Codec] -- Encode/Decode/Format strategy interface
//   - [Registry] -- Format to Codec mapping resolved once at startup
//   - [DefaultRegistry] -- BINARY, BASE64, GZIP, ZSTD, LZ4
//   - [NewAgeCodec] / [LoadAgeCodec] -- encryption at rest with an age
//     x25519 identity
//
// All codecs are stateless with respect to callers and safe for
// concurrent use. Decode failures on bytes that were not produced by
// the matching Encode are reported as [failure.CorruptedContent].
package contentcodec
