// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli is the command framework for bureau-storage: a tree of
// [Command] values dispatched by name, pflag-based flag parsing with
// typo suggestions, a terminal-aware slog logger, --json output, and
// the mapping from storage failures to exit codes.
package cli
