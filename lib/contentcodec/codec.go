// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package contentcodec

import (
	"encoding/base64"
	"strings"

	"github.com/bureau-foundation/bureau-storage/lib/failure"
)

// Format identifies the encoding applied to a stored payload.
type Format string

const (
	// FormatBinary stores payload bytes unchanged.
	FormatBinary Format = "BINARY"

	// FormatBase64 stores the standard-alphabet padded base64 text of
	// the payload.
	FormatBase64 Format = "BASE64"

	// FormatGzip stores a gzip stream. This is the default format for
	// new writes.
	FormatGzip Format = "GZIP"

	// FormatZstd stores a single zstd frame. Better ratio than gzip
	// for text-like payloads at lower CPU cost.
	FormatZstd Format = "ZSTD"

	// FormatLZ4 stores an LZ4 frame. Fastest decode of the
	// compressing formats.
	FormatLZ4 Format = "LZ4"

	// FormatAge stores an age-encrypted file addressed to the
	// deployment's x25519 identity.
	FormatAge Format = "AGE"
)

// String returns the tag text.
func (f Format) String() string { return string(f) }

// ParseFormat parses a format tag case-insensitively. Only tags known
// to this package are accepted; whether a codec is registered for the
// tag is a separate question answered by [Registry.Lookup].
func ParseFormat(name string) (Format, error) {
	switch format := Format(strings.ToUpper(strings.TrimSpace(name))); format {
	case FormatBinary, FormatBase64, FormatGzip, FormatZstd, FormatLZ4, FormatAge:
		return format, nil
	default:
		return "", failure.UnsupportedFormatf("unknown storage format %q", name)
	}
}

// Codec is a reversible byte transform. Decode(Encode(x)) returns x
// for every x, including the empty sequence.
type Codec interface {
	// Format returns the tag recorded on content written with this
	// codec.
	Format() Format

	// Encode transforms payload bytes into their stored form.
	Encode(data []byte) ([]byte, error)

	// Decode reverses Encode. Input that is not a valid encoding
	// fails with failure.CorruptedContent.
	Decode(data []byte) ([]byte, error)
}

// Binary is the identity codec.
type Binary struct{}

func (Binary) Format() Format { return FormatBinary }

func (Binary) Encode(data []byte) ([]byte, error) { return data, nil }

func (Binary) Decode(data []byte) ([]byte, error) { return data, nil }

// Base64 encodes payloads as standard-alphabet padded base64 text.
type Base64 struct{}

func (Base64) Format() Format { return FormatBase64 }

func (Base64) Encode(data []byte) ([]byte, error) {
	encoded := make([]byte, base64.StdEncoding.EncodedLen(len(data)))
	base64.StdEncoding.Encode(encoded, data)
	return encoded, nil
}

func (Base64) Decode(data []byte) ([]byte, error) {
	decoded := make([]byte, base64.StdEncoding.DecodedLen(len(data)))
	written, err := base64.StdEncoding.Decode(decoded, data)
	if err != nil {
		return nil, failure.Wrap(failure.CorruptedContent, err, "base64 decode")
	}
	return decoded[:written], nil
}
