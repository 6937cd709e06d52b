// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package failure

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"testing"
)

func TestKind_CodesAndStatus(t *testing.T) {
	tests := []struct {
		kind     Kind
		code     string
		status   int
		category Category
	}{
		{BucketNotExists, "BUCKET_NOT_EXISTS", http.StatusNotFound, CategoryNotFound},
		{BucketAlreadyExists, "BUCKET_ALREADY_EXISTS", http.StatusConflict, CategoryConflict},
		{BucketNotEmpty, "BUCKET_NOT_EMPTY", http.StatusForbidden, CategoryForbidden},
		{BucketReadonly, "BUCKET_READ_ONLY", http.StatusForbidden, CategoryForbidden},
		{ContentNotFound, "FILE_NOT_FOUND", http.StatusNotFound, CategoryNotFound},
		{UnsupportedFormat, "UNSUPPORTED_FORMAT", http.StatusInternalServerError, CategoryInternal},
		{CorruptedContent, "CORRUPTED_CONTENT", http.StatusInternalServerError, CategoryInternal},
		{InvalidArgument, "INVALID_ARGUMENT", http.StatusBadRequest, CategoryValidation},
		{UnexpectedError, "UNEXPECTED_ERROR", http.StatusInternalServerError, CategoryInternal},
	}
	for _, test := range tests {
		t.Run(string(test.kind), func(t *testing.T) {
			if got := test.kind.Code(); got != test.code {
				t.Errorf("Code() = %q, want %q", got, test.code)
			}
			if got := test.kind.Status(); got != test.status {
				t.Errorf("Status() = %d, want %d", got, test.status)
			}
			if got := test.kind.Category(); got != test.category {
				t.Errorf("Category() = %q, want %q", got, test.category)
			}
		})
	}
}

func TestKind_UnknownFallsBackToUnexpected(t *testing.T) {
	kind := Kind("SomethingNew")
	if kind.Code() != "UNEXPECTED_ERROR" {
		t.Errorf("Code() = %q, want UNEXPECTED_ERROR", kind.Code())
	}
	if kind.Status() != http.StatusInternalServerError {
		t.Errorf("Status() = %d, want 500", kind.Status())
	}
}

func TestKindOf_ThroughWrapping(t *testing.T) {
	inner := BucketReadonlyf("bucket %q is readonly", "photos")
	wrapped := fmt.Errorf("saving content: %w", inner)

	if got := KindOf(wrapped); got != BucketReadonly {
		t.Errorf("KindOf = %q, want %q", got, BucketReadonly)
	}
	if !Is(wrapped, BucketReadonly) {
		t.Error("Is(wrapped, BucketReadonly) = false")
	}
	if Is(wrapped, BucketNotExists) {
		t.Error("Is(wrapped, BucketNotExists) = true")
	}
}

func TestKindOf_Unclassified(t *testing.T) {
	if got := KindOf(errors.New("disk on fire")); got != UnexpectedError {
		t.Errorf("KindOf(plain) = %q, want %q", got, UnexpectedError)
	}
	if got := KindOf(nil); got != "" {
		t.Errorf("KindOf(nil) = %q, want empty", got)
	}
	if Is(nil, UnexpectedError) {
		t.Error("Is(nil, ...) = true")
	}
}

func TestWrap_PreservesCause(t *testing.T) {
	err := Wrap(ContentNotFound, fs.ErrNotExist, "reading blob %s", "abc")

	if !errors.Is(err, fs.ErrNotExist) {
		t.Error("errors.Is(err, fs.ErrNotExist) = false through classified error")
	}
	if KindOf(err) != ContentNotFound {
		t.Errorf("KindOf = %q, want %q", KindOf(err), ContentNotFound)
	}
	want := "reading blob abc: " + fs.ErrNotExist.Error()
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestWrap_NilIsNil(t *testing.T) {
	if err := Wrap(UnexpectedError, nil, "nothing"); err != nil {
		t.Errorf("Wrap(nil) = %v, want nil", err)
	}
}

func TestKindOf_OutermostWins(t *testing.T) {
	inner := UnsupportedFormatf("no codec for %q", "BROTLI")
	outer := Wrap(UnexpectedError, inner, "reading content")

	if got := KindOf(outer); got != UnexpectedError {
		t.Errorf("KindOf = %q, want %q", got, UnexpectedError)
	}
	var classified *Error
	if !errors.As(outer, &classified) || classified.Kind != UnexpectedError {
		t.Fatal("errors.As should find the outer classification first")
	}
	if !errors.As(classified.Err, &classified) || classified.Kind != UnsupportedFormat {
		t.Error("inner classification lost")
	}
}
