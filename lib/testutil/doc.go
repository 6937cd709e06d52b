// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers.
//
// [UniqueID] generates monotonically increasing identifiers. Tests
// that share one metadata database use it for bucket codes so
// parallel subtests never collide.
package testutil
