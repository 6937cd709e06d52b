// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret keeps key material, such as the age identity used
// for encryption at rest, in memory that is mapped outside the Go heap,
// locked into RAM and excluded from core dumps. [Buffer.Close] zeroes
// and releases it.
//
// Linux only (golang.org/x/sys/unix).
package secret
