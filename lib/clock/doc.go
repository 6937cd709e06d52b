// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable wall clock.
//
// The storage managers stamp created_at and modified_at from a Clock
// field rather than calling time.Now, so tests can assert exact
// timestamps and prove that a no-op update leaves modified_at alone:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	buckets := storage.NewBucketManager(storage.BucketConfig{Clock: c, ...})
//	c.Advance(time.Minute)
package clock
