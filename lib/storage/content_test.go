// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package storage_test

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bureau-foundation/bureau-storage/lib/contentcodec"
	"github.com/bureau-foundation/bureau-storage/lib/failure"
	"github.com/bureau-foundation/bureau-storage/lib/storage"
)

func TestContentRoundTrip(t *testing.T) {
	formats := []contentcodec.Format{
		contentcodec.FormatBinary,
		contentcodec.FormatBase64,
		contentcodec.FormatGzip,
		contentcodec.FormatZstd,
		contentcodec.FormatLZ4,
	}
	sizes := []int{0, 1, 1024, 3*1024 + 17}

	for _, format := range formats {
		t.Run(string(format), func(t *testing.T) {
			harness := newHarness(t, withFormat(format))
			ctx := t.Context()
			harness.mustCreateBucket(t, "docs")

			for _, size := range sizes {
				data := make([]byte, size)
				for index := range data {
					data[index] = byte(index % 251)
				}
				attributes := map[string]string{"k": "v"}
				contentID := harness.mustSave(t, "docs", fmt.Sprintf("blob-%d", size), attributes, data)

				content, err := harness.service.GetContent(ctx, contentID)
				if err != nil {
					t.Fatalf("GetContent(size %d): %v", size, err)
				}
				if !bytes.Equal(content.Data, data) {
					t.Errorf("size %d: payload mismatch", size)
				}
				if content.ID != contentID {
					t.Errorf("size %d: id = %q, want %q", size, content.ID, contentID)
				}
				if content.Name != fmt.Sprintf("blob-%d", size) {
					t.Errorf("size %d: name = %q", size, content.Name)
				}
				if content.Size != int64(size) {
					t.Errorf("size %d: recorded size = %d", size, content.Size)
				}
				if content.Format != format {
					t.Errorf("size %d: format = %s, want %s", size, content.Format, format)
				}
				if len(content.Attributes) != 1 || content.Attributes["k"] != "v" {
					t.Errorf("size %d: attributes = %v, want {k: v}", size, content.Attributes)
				}
				if !content.CreatedAt.Equal(harness.clock.Now()) {
					t.Errorf("size %d: created_at = %v, want %v", size, content.CreatedAt, harness.clock.Now())
				}
			}
		})
	}
}

func TestSaveContentAssignsDistinctIDs(t *testing.T) {
	harness := newHarness(t)
	harness.mustCreateBucket(t, "docs")

	seen := make(map[string]bool)
	for range 10 {
		contentID := harness.mustSave(t, "docs", "same-name", nil, []byte("same bytes"))
		if seen[contentID] {
			t.Fatalf("duplicate content id %s", contentID)
		}
		seen[contentID] = true
	}
}

func TestSaveContentErrors(t *testing.T) {
	harness := newHarness(t)
	ctx := t.Context()

	_, err := harness.service.SaveContent(ctx, "missing", "x", nil, []byte("x"))
	if !failure.Is(err, failure.BucketNotExists) {
		t.Errorf("save into unknown bucket error = %v, want BUCKET_NOT_EXISTS", err)
	}

	harness.mustCreateBucket(t, "locked")
	if err := harness.service.SetBucketReadOnly(ctx, "locked", true); err != nil {
		t.Fatalf("SetBucketReadOnly: %v", err)
	}
	_, err = harness.service.SaveContent(ctx, "locked", "x", nil, []byte("x"))
	if !failure.Is(err, failure.BucketReadonly) {
		t.Errorf("save into readonly bucket error = %v, want BUCKET_READONLY", err)
	}

	if saves := harness.blobs.saves.Load(); saves != 0 {
		t.Errorf("refused saves wrote %d blobs, want 0", saves)
	}
	bucket, err := harness.service.GetBucket(ctx, "locked")
	if err != nil {
		t.Fatalf("GetBucket: %v", err)
	}
	if len(bucket.Contents) != 0 {
		t.Errorf("readonly bucket holds %d contents after refused save", len(bucket.Contents))
	}
}

func TestSaveContentUnsupportedDefaultFormat(t *testing.T) {
	harness := newHarness(t, withFormat(contentcodec.FormatAge))
	harness.mustCreateBucket(t, "docs")

	_, err := harness.service.SaveContent(t.Context(), "docs", "x", nil, []byte("x"))
	if !failure.Is(err, failure.UnsupportedFormat) {
		t.Fatalf("save with unregistered format error = %v, want UNSUPPORTED_FORMAT", err)
	}
	if saves := harness.blobs.saves.Load(); saves != 0 {
		t.Errorf("wrote %d blobs, want 0", saves)
	}
}

func TestGetContentNotFound(t *testing.T) {
	harness := newHarness(t)
	ctx := t.Context()

	if _, err := harness.service.GetContent(ctx, "no-such-id"); !failure.Is(err, failure.ContentNotFound) {
		t.Errorf("GetContent(unknown) error = %v, want CONTENT_NOT_FOUND", err)
	}
	if _, err := harness.service.GetContentDescription(ctx, "no-such-id"); !failure.Is(err, failure.ContentNotFound) {
		t.Errorf("GetContentDescription(unknown) error = %v, want CONTENT_NOT_FOUND", err)
	}
}

func TestGetContentDescriptionSkipsBlob(t *testing.T) {
	harness := newHarness(t)
	harness.mustCreateBucket(t, "docs")
	contentID := harness.mustSave(t, "docs", "report.pdf", map[string]string{"owner": "ops", "rev": "3"}, []byte("%PDF-1.7"))

	description, err := harness.service.GetContentDescription(t.Context(), contentID)
	if err != nil {
		t.Fatalf("GetContentDescription: %v", err)
	}
	if description.Name != "report.pdf" || description.Size != 8 {
		t.Errorf("description = %+v, want report.pdf of size 8", description)
	}
	if description.Attributes["owner"] != "ops" || description.Attributes["rev"] != "3" {
		t.Errorf("attributes = %v", description.Attributes)
	}
	if gets := harness.blobs.gets.Load(); gets != 0 {
		t.Errorf("GetContentDescription read %d blobs, want 0", gets)
	}
}

func TestGetContentDetectsCorruption(t *testing.T) {
	harness := newHarness(t, withFormat(contentcodec.FormatBinary))
	harness.mustCreateBucket(t, "docs")
	contentID := harness.mustSave(t, "docs", "x", nil, []byte("original payload"))

	harness.blobs.tamperReads(func(data []byte) []byte {
		altered := bytes.Clone(data)
		altered[0] ^= 0xff
		return altered
	})
	if _, err := harness.service.GetContent(t.Context(), contentID); !failure.Is(err, failure.CorruptedContent) {
		t.Errorf("GetContent(flipped byte) error = %v, want CORRUPTED_CONTENT", err)
	}

	harness.blobs.tamperReads(func(data []byte) []byte { return data[:len(data)-1] })
	if _, err := harness.service.GetContent(t.Context(), contentID); !failure.Is(err, failure.CorruptedContent) {
		t.Errorf("GetContent(truncated) error = %v, want CORRUPTED_CONTENT", err)
	}
}

func TestGetContentUndecodableBlob(t *testing.T) {
	harness := newHarness(t, withFormat(contentcodec.FormatGzip))
	harness.mustCreateBucket(t, "docs")
	contentID := harness.mustSave(t, "docs", "x", nil, []byte("compressed payload"))

	harness.blobs.tamperReads(func([]byte) []byte { return []byte("not gzip at all") })
	if _, err := harness.service.GetContent(t.Context(), contentID); !failure.Is(err, failure.CorruptedContent) {
		t.Errorf("GetContent(garbage) error = %v, want CORRUPTED_CONTENT", err)
	}
}

func TestGetContentReadsStoredFormat(t *testing.T) {
	harness := newHarness(t, withFormat(contentcodec.FormatZstd))
	harness.mustCreateBucket(t, "docs")
	contentID := harness.mustSave(t, "docs", "x", nil, []byte("written as zstd"))

	// A second manager over the same stores writes LZ4 by default but
	// must still read the ZSTD content with the format it was stored in.
	manager, err := storage.NewContentManager(storage.ContentConfig{
		Metadata:      harness.metadata,
		Blobs:         harness.blobs,
		DefaultFormat: contentcodec.FormatLZ4,
	})
	if err != nil {
		t.Fatalf("NewContentManager: %v", err)
	}
	content, err := manager.Get(t.Context(), contentID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if content.Format != contentcodec.FormatZstd || string(content.Data) != "written as zstd" {
		t.Errorf("content = %s %q, want ZSTD %q", content.Format, content.Data, "written as zstd")
	}
}

func TestGetContentFormatNoLongerRegistered(t *testing.T) {
	harness := newHarness(t, withFormat(contentcodec.FormatGzip))
	harness.mustCreateBucket(t, "docs")
	contentID := harness.mustSave(t, "docs", "x", nil, []byte("gzip payload"))

	manager, err := storage.NewContentManager(storage.ContentConfig{
		Metadata:      harness.metadata,
		Blobs:         harness.blobs,
		Codecs:        contentcodec.NewRegistry(contentcodec.Binary{}),
		DefaultFormat: contentcodec.FormatBinary,
	})
	if err != nil {
		t.Fatalf("NewContentManager: %v", err)
	}
	_, err = manager.Get(t.Context(), contentID)
	if !failure.Is(err, failure.UnexpectedError) {
		t.Fatalf("Get error = %v, want UNEXPECTED_ERROR", err)
	}
	if inner := failure.KindOf(errors.Unwrap(err)); inner != failure.UnsupportedFormat {
		t.Errorf("Get error wraps %s, want UNSUPPORTED_FORMAT", inner)
	}
}

func TestDeleteContent(t *testing.T) {
	harness := newHarness(t)
	ctx := t.Context()
	harness.mustCreateBucket(t, "docs")
	contentID := harness.mustSave(t, "docs", "x", map[string]string{"a": "1"}, []byte("payload"))

	if err := harness.service.DeleteContent(ctx, contentID); err != nil {
		t.Fatalf("DeleteContent: %v", err)
	}
	if _, err := harness.service.GetContent(ctx, contentID); !failure.Is(err, failure.ContentNotFound) {
		t.Errorf("GetContent after delete error = %v, want CONTENT_NOT_FOUND", err)
	}
	if _, err := harness.blobs.Store.Get(ctx, 1, contentID); !failure.Is(err, failure.ContentNotFound) {
		t.Errorf("blob survived delete: %v", err)
	}

	deletes := harness.blobs.deletes.Load()
	if err := harness.service.DeleteContent(ctx, contentID); err != nil {
		t.Fatalf("second DeleteContent = %v, want nil", err)
	}
	if err := harness.service.DeleteContent(ctx, "never-existed"); err != nil {
		t.Fatalf("DeleteContent(unknown) = %v, want nil", err)
	}
	if got := harness.blobs.deletes.Load(); got != deletes {
		t.Errorf("deleting unknown ids touched the blob store %d times", got-deletes)
	}
}

func TestDeleteContentInReadonlyBucket(t *testing.T) {
	harness := newHarness(t)
	ctx := t.Context()
	harness.mustCreateBucket(t, "docs")
	contentID := harness.mustSave(t, "docs", "x", nil, []byte("keep me"))

	if err := harness.service.SetBucketReadOnly(ctx, "docs", true); err != nil {
		t.Fatalf("SetBucketReadOnly: %v", err)
	}
	if err := harness.service.DeleteContent(ctx, contentID); !failure.Is(err, failure.BucketReadonly) {
		t.Fatalf("DeleteContent(readonly) error = %v, want BUCKET_READONLY", err)
	}
	if deletes := harness.blobs.deletes.Load(); deletes != 0 {
		t.Errorf("refused delete touched the blob store %d times", deletes)
	}

	content, err := harness.service.GetContent(ctx, contentID)
	if err != nil {
		t.Fatalf("content unreadable after refused delete: %v", err)
	}
	if string(content.Data) != "keep me" {
		t.Errorf("payload = %q, want %q", content.Data, "keep me")
	}
}

func TestSaveBlobFailureLeavesOrphanRow(t *testing.T) {
	harness := newHarness(t)
	ctx := t.Context()
	harness.mustCreateBucket(t, "docs")

	injected := errors.New("disk full")
	harness.blobs.failSaves(injected)
	_, err := harness.service.SaveContent(ctx, "docs", "x", nil, []byte("lost"))
	if !errors.Is(err, injected) {
		t.Fatalf("SaveContent error = %v, want the blob store error", err)
	}

	bucket, err := harness.service.GetBucket(ctx, "docs")
	if err != nil {
		t.Fatalf("GetBucket: %v", err)
	}
	if len(bucket.Contents) != 1 {
		t.Fatalf("bucket holds %d contents, want the orphan row", len(bucket.Contents))
	}
	orphan := bucket.Contents[0].ID
	if _, err := harness.service.GetContent(ctx, orphan); !failure.Is(err, failure.ContentNotFound) {
		t.Errorf("GetContent(orphan) error = %v, want CONTENT_NOT_FOUND", err)
	}

	// The orphan row can still be deleted once the store recovers.
	harness.blobs.failSaves(nil)
	if err := harness.service.DeleteContent(ctx, orphan); err != nil {
		t.Fatalf("DeleteContent(orphan): %v", err)
	}
	if err := harness.service.DeleteBucket(ctx, "docs"); err != nil {
		t.Fatalf("DeleteBucket: %v", err)
	}
}

func TestDeleteBlobFailureLeavesOrphanBlob(t *testing.T) {
	harness := newHarness(t)
	ctx := t.Context()
	harness.mustCreateBucket(t, "docs")
	contentID := harness.mustSave(t, "docs", "x", nil, []byte("stays on disk"))

	harness.blobs.failDeletes(errors.New("permission denied"))
	err := harness.service.DeleteContent(ctx, contentID)
	if !failure.Is(err, failure.UnexpectedError) {
		t.Fatalf("DeleteContent error = %v, want UNEXPECTED_ERROR", err)
	}

	if _, err := harness.service.GetContentDescription(ctx, contentID); !failure.Is(err, failure.ContentNotFound) {
		t.Errorf("metadata survived: %v", err)
	}
	if _, err := harness.blobs.Store.Get(ctx, 1, contentID); err != nil {
		t.Errorf("orphan blob missing: %v", err)
	}
}

func TestConcurrentSavesIntoOneBucket(t *testing.T) {
	harness := newHarness(t)
	ctx := t.Context()
	harness.mustCreateBucket(t, "shared")

	const writers = 24
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for index := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			payload := []byte(fmt.Sprintf("payload %d", index))
			_, err := harness.service.SaveContent(ctx, "shared", fmt.Sprintf("item-%d", index), map[string]string{"index": fmt.Sprint(index)}, payload)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent SaveContent: %v", err)
		}
	}

	bucket, err := harness.service.GetBucket(ctx, "shared")
	if err != nil {
		t.Fatalf("GetBucket: %v", err)
	}
	if len(bucket.Contents) != writers {
		t.Fatalf("bucket holds %d contents, want %d", len(bucket.Contents), writers)
	}
	if saves := harness.blobs.saves.Load(); saves != writers {
		t.Errorf("blob store saw %d saves, want %d", saves, writers)
	}
	for _, description := range bucket.Contents {
		content, err := harness.service.GetContent(ctx, description.ID)
		if err != nil {
			t.Fatalf("GetContent(%s): %v", description.ID, err)
		}
		want := "payload " + description.Attributes["index"]
		if string(content.Data) != want {
			t.Errorf("content %s payload = %q, want %q", description.ID, content.Data, want)
		}
	}
}

func TestContentTimestampsFollowClock(t *testing.T) {
	harness := newHarness(t)
	harness.mustCreateBucket(t, "docs")

	harness.clock.Advance(90 * time.Second)
	contentID := harness.mustSave(t, "docs", "x", nil, []byte("x"))
	description, err := harness.service.GetContentDescription(t.Context(), contentID)
	if err != nil {
		t.Fatalf("GetContentDescription: %v", err)
	}
	if !description.CreatedAt.Equal(harness.clock.Now()) || !description.ModifiedAt.Equal(harness.clock.Now()) {
		t.Errorf("timestamps = %v/%v, want %v", description.CreatedAt, description.ModifiedAt, harness.clock.Now())
	}
	if description.CreatedAt.Location() != time.UTC {
		t.Errorf("created_at location = %v, want UTC", description.CreatedAt.Location())
	}
}
