// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"

	"github.com/bureau-foundation/bureau-storage/lib/failure"
)

// Exit codes. Storage failures map by category so scripts can branch
// on "missing" versus "refused" without parsing text.
const (
	ExitOK        = 0
	ExitInternal  = 1
	ExitUsage     = 2
	ExitNotFound  = 3
	ExitForbidden = 4
	ExitConflict  = 5
)

// ExitError signals a non-zero exit code without printing an extra
// error message. The command is expected to have already written its
// own output.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// ExitCode returns the exit code. main checks for this interface on
// returned errors to distinguish "handled non-zero exit" from
// "unexpected error to display".
func (e *ExitError) ExitCode() int {
	return e.Code
}

// usageError is a command-line mistake: unknown command or flag, wrong
// argument count. It exits with ExitUsage.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

// UsageError creates an error for malformed command lines.
func UsageError(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

// ExitCodeFor maps an error returned by a command to a process exit
// code.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitOK
	}
	var coder interface{ ExitCode() int }
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	var usage *usageError
	if errors.As(err, &usage) {
		return ExitUsage
	}
	var classified *failure.Error
	if !errors.As(err, &classified) {
		return ExitInternal
	}
	switch failure.KindOf(err).Category() {
	case failure.CategoryValidation:
		return ExitUsage
	case failure.CategoryNotFound:
		return ExitNotFound
	case failure.CategoryForbidden:
		return ExitForbidden
	case failure.CategoryConflict:
		return ExitConflict
	default:
		return ExitInternal
	}
}

// FormatError renders an error for stderr. Classified storage failures
// print as "CODE: message" with the stable code first; everything
// else prints as "error: message".
func FormatError(err error) string {
	var classified *failure.Error
	if errors.As(err, &classified) {
		return fmt.Sprintf("%s: %v", failure.KindOf(err).Code(), err)
	}
	return fmt.Sprintf("error: %v", err)
}
