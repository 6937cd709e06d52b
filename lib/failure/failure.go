// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package failure

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a storage failure. Callers branch on the Kind (or
// on its Code) and never on message text.
type Kind string

const (
	// BucketNotExists indicates the referenced bucket code is unknown.
	BucketNotExists Kind = "BucketNotExists"

	// BucketAlreadyExists is reserved. Bucket creation is idempotent
	// and never reports it.
	BucketAlreadyExists Kind = "BucketAlreadyExists"

	// BucketNotEmpty indicates a bucket delete was refused because the
	// bucket still owns at least one content record.
	BucketNotEmpty Kind = "BucketNotEmpty"

	// BucketReadonly indicates a write (save or delete of content)
	// against a bucket whose readonly flag is set.
	BucketReadonly Kind = "BucketReadonly"

	// ContentNotFound indicates the content record or its blob is
	// absent.
	ContentNotFound Kind = "ContentNotFound"

	// UnsupportedFormat indicates a codec or blob backend tag that is
	// not registered in this deployment.
	UnsupportedFormat Kind = "UnsupportedFormat"

	// CorruptedContent indicates stored bytes that could not be
	// decoded, or whose decoded digest does not match the record.
	CorruptedContent Kind = "CorruptedContent"

	// InvalidArgument indicates caller input that can never succeed:
	// an empty bucket code, a content id that is not a single path
	// element.
	InvalidArgument Kind = "InvalidArgument"

	// UnexpectedError covers I/O failures, directory creation
	// failures, and anything not classified above.
	UnexpectedError Kind = "UnexpectedError"
)

// Category groups kinds by the recovery decision a caller makes.
type Category string

const (
	CategoryNotFound   Category = "not_found"
	CategoryForbidden  Category = "forbidden"
	CategoryConflict   Category = "conflict"
	CategoryValidation Category = "validation"
	CategoryInternal   Category = "internal"
)

type kindInfo struct {
	code     string
	status   int
	category Category
}

var kinds = map[Kind]kindInfo{
	BucketNotExists:     {"BUCKET_NOT_EXISTS", http.StatusNotFound, CategoryNotFound},
	BucketAlreadyExists: {"BUCKET_ALREADY_EXISTS", http.StatusConflict, CategoryConflict},
	BucketNotEmpty:      {"BUCKET_NOT_EMPTY", http.StatusForbidden, CategoryForbidden},
	BucketReadonly:      {"BUCKET_READ_ONLY", http.StatusForbidden, CategoryForbidden},
	ContentNotFound:     {"FILE_NOT_FOUND", http.StatusNotFound, CategoryNotFound},
	UnsupportedFormat:   {"UNSUPPORTED_FORMAT", http.StatusInternalServerError, CategoryInternal},
	CorruptedContent:    {"CORRUPTED_CONTENT", http.StatusInternalServerError, CategoryInternal},
	InvalidArgument:     {"INVALID_ARGUMENT", http.StatusBadRequest, CategoryValidation},
	UnexpectedError:     {"UNEXPECTED_ERROR", http.StatusInternalServerError, CategoryInternal},
}

func (k Kind) info() kindInfo {
	if info, ok := kinds[k]; ok {
		return info
	}
	return kinds[UnexpectedError]
}

// Code returns the stable machine-readable code for the kind, e.g.
// "BUCKET_READ_ONLY". Unknown kinds report UNEXPECTED_ERROR.
func (k Kind) Code() string { return k.info().code }

// Status returns the HTTP-equivalent status class for the kind.
func (k Kind) Status() int { return k.info().status }

// Category returns the recovery category for the kind.
func (k Kind) Category() Category { return k.info().category }

// Error is a classified storage failure. It wraps an inner error so
// errors.Is and errors.As walk through to the cause (for example
// fs.ErrNotExist under a ContentNotFound from the filesystem store).
type Error struct {
	Kind Kind
	Err  error
}

// Error returns the underlying message. The kind travels separately
// and is not part of the text.
func (e *Error) Error() string { return e.Err.Error() }

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error { return e.Err }

// New creates a classified error with a formatted message. The
// format may use %w to wrap a cause.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// Wrap classifies err under kind, prefixing the message. Returns nil
// when err is nil.
func Wrap(kind Kind, err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return &Error{Kind: kind, Err: fmt.Errorf("%s: %w", message, err)}
}

// KindOf returns the kind of the outermost classified error in err's
// chain. Unclassified errors report UnexpectedError; nil reports "".
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var classified *Error
	if errors.As(err, &classified) {
		return classified.Kind
	}
	return UnexpectedError
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Per-kind constructors.

func BucketNotExistsf(format string, args ...any) *Error {
	return New(BucketNotExists, format, args...)
}

func BucketAlreadyExistsf(format string, args ...any) *Error {
	return New(BucketAlreadyExists, format, args...)
}

func BucketNotEmptyf(format string, args ...any) *Error {
	return New(BucketNotEmpty, format, args...)
}

func BucketReadonlyf(format string, args ...any) *Error {
	return New(BucketReadonly, format, args...)
}

func ContentNotFoundf(format string, args ...any) *Error {
	return New(ContentNotFound, format, args...)
}

func UnsupportedFormatf(format string, args ...any) *Error {
	return New(UnsupportedFormat, format, args...)
}

func CorruptedContentf(format string, args ...any) *Error {
	return New(CorruptedContent, format, args...)
}

func InvalidArgumentf(format string, args ...any) *Error {
	return New(InvalidArgument, format, args...)
}

func Unexpectedf(format string, args ...any) *Error {
	return New(UnexpectedError, format, args...)
}
