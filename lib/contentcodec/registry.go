// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package contentcodec

import (
	"slices"

	"github.com/bureau-foundation/bureau-storage/lib/failure"
)

// Registry maps format tags to codecs. It is built once at startup
// and read-only afterwards, so lookups need no locking.
type Registry struct {
	codecs map[Format]Codec
}

// NewRegistry creates a registry holding the given codecs. Registering
// two codecs for the same format is a programming error and panics.
func NewRegistry(codecs ...Codec) *Registry {
	registry := &Registry{codecs: make(map[Format]Codec, len(codecs))}
	for _, codec := range codecs {
		format := codec.Format()
		if _, exists := registry.codecs[format]; exists {
			panic("contentcodec: duplicate codec registration for " + string(format))
		}
		registry.codecs[format] = codec
	}
	return registry
}

// DefaultCodecs returns the codecs that need no deployment secrets.
func DefaultCodecs() []Codec {
	return []Codec{Binary{}, Base64{}, Gzip{}, Zstd{}, LZ4{}}
}

// DefaultRegistry returns a registry of [DefaultCodecs].
func DefaultRegistry() *Registry {
	return NewRegistry(DefaultCodecs()...)
}

// Lookup returns the codec registered for format. An unregistered
// format fails with failure.UnsupportedFormat.
func (r *Registry) Lookup(format Format) (Codec, error) {
	codec, ok := r.codecs[format]
	if !ok {
		return nil, failure.UnsupportedFormatf("no codec registered for storage format %q", format)
	}
	return codec, nil
}

// Formats returns the registered formats in sorted order.
func (r *Registry) Formats() []Format {
	formats := make([]Format, 0, len(r.codecs))
	for format := range r.codecs {
		formats = append(formats, format)
	}
	slices.Sort(formats)
	return formats
}
