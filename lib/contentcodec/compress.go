// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package contentcodec

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/bureau-foundation/bureau-storage/lib/failure"
)

// Gzip encodes payloads as a single gzip member at the default
// compression level.
type Gzip struct{}

func (Gzip) Format() Format { return FormatGzip }

func (Gzip) Encode(data []byte) ([]byte, error) {
	var buffer bytes.Buffer
	writer := gzip.NewWriter(&buffer)
	if _, err := writer.Write(data); err != nil {
		return nil, failure.Wrap(failure.UnexpectedError, err, "gzip compress")
	}
	if err := writer.Close(); err != nil {
		return nil, failure.Wrap(failure.UnexpectedError, err, "gzip compress")
	}
	return buffer.Bytes(), nil
}

func (Gzip) Decode(data []byte) ([]byte, error) {
	reader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, failure.Wrap(failure.CorruptedContent, err, "gzip header")
	}
	defer reader.Close()

	decoded, err := io.ReadAll(reader)
	if err != nil {
		return nil, failure.Wrap(failure.CorruptedContent, err, "gzip decompress")
	}
	return decoded, nil
}

// zstdEncoder and zstdDecoder are shared by every Zstd value.
// zstd.Encoder.EncodeAll and zstd.Decoder.DecodeAll are safe for
// concurrent use.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedDefault),
	)
	if err != nil {
		panic("contentcodec: zstd encoder initialization failed: " + err.Error())
	}

	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("contentcodec: zstd decoder initialization failed: " + err.Error())
	}
}

// Zstd encodes payloads as a single zstd frame.
type Zstd struct{}

func (Zstd) Format() Format { return FormatZstd }

func (Zstd) Encode(data []byte) ([]byte, error) {
	return zstdEncoder.EncodeAll(data, nil), nil
}

func (Zstd) Decode(data []byte) ([]byte, error) {
	decoded, err := zstdDecoder.DecodeAll(data, nil)
	if err != nil {
		return nil, failure.Wrap(failure.CorruptedContent, err, "zstd decompress")
	}
	return decoded, nil
}

// LZ4 encodes payloads in the LZ4 frame format. Frames carry their
// own magic and end mark, so Decode needs no out-of-band size (block
// mode would).
type LZ4 struct{}

func (LZ4) Format() Format { return FormatLZ4 }

func (LZ4) Encode(data []byte) ([]byte, error) {
	var buffer bytes.Buffer
	writer := lz4.NewWriter(&buffer)
	if _, err := writer.Write(data); err != nil {
		return nil, failure.Wrap(failure.UnexpectedError, err, "lz4 compress")
	}
	if err := writer.Close(); err != nil {
		return nil, failure.Wrap(failure.UnexpectedError, err, "lz4 compress")
	}
	return buffer.Bytes(), nil
}

func (LZ4) Decode(data []byte) ([]byte, error) {
	decoded, err := io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
	if err != nil {
		return nil, failure.Wrap(failure.CorruptedContent, err, "lz4 decompress")
	}
	return decoded, nil
}
