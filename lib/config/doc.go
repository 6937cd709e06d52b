// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads bureau-storage configuration.
//
// Configuration comes from a single file named by a --config flag
// (via [LoadFile]) or by the BUREAU_STORAGE_CONFIG environment
// variable (via [Load]). YAML is the native format; files ending in
// .json or .jsonc are accepted as JSON with comments. Environment
// variables never override individual values.
//
// The file may carry development, staging and production sections
// that override the base values when [Config].Environment matches.
// After loading, ${HOME}, ${STORAGE_FOLDER} and ${VAR:-default}
// patterns in path fields are expanded.
//
// Key exports:
//
//   - [Config] -- storage, database and encryption sections
//   - [Default] -- folder "data", 1024-byte reads, GZIP, FILE
//   - [Load] and [LoadFile] -- the two entry points for loading
//   - [Config.Validate] -- rejects unknown format and container tags
package config
