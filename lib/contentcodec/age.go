// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package contentcodec

import (
	"bytes"
	"fmt"
	"io"

	"filippo.io/age"

	"github.com/bureau-foundation/bureau-storage/lib/failure"
	"github.com/bureau-foundation/bureau-storage/lib/secret"
)

// Age encrypts payloads to a single x25519 identity. The same identity
// decrypts them, so a deployment that loses its identity file loses
// every AGE-format payload.
type Age struct {
	identity  *age.X25519Identity
	recipient *age.X25519Recipient
}

// NewAgeCodec creates an age codec from an identity in
// AGE-SECRET-KEY-1... form.
func NewAgeCodec(identity string) (*Age, error) {
	parsed, err := age.ParseX25519Identity(identity)
	if err != nil {
		return nil, fmt.Errorf("parsing age identity: %w", err)
	}
	return &Age{identity: parsed, recipient: parsed.Recipient()}, nil
}

// LoadAgeCodec reads an identity file in the format written by
// age-keygen (comment lines allowed) and uses the first x25519
// identity it contains.
func LoadAgeCodec(path string) (*Age, error) {
	contents, err := secret.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading age identity file: %w", err)
	}
	defer contents.Close()

	identities, err := age.ParseIdentities(bytes.NewReader(contents.Bytes()))
	if err != nil {
		return nil, fmt.Errorf("parsing age identity file %s: %w", path, err)
	}
	for _, identity := range identities {
		if x25519, ok := identity.(*age.X25519Identity); ok {
			return &Age{identity: x25519, recipient: x25519.Recipient()}, nil
		}
	}
	return nil, fmt.Errorf("age identity file %s contains no x25519 identity", path)
}

// Recipient returns the public key payloads are encrypted to.
func (c *Age) Recipient() string { return c.recipient.String() }

func (c *Age) Format() Format { return FormatAge }

func (c *Age) Encode(data []byte) ([]byte, error) {
	var buffer bytes.Buffer
	writer, err := age.Encrypt(&buffer, c.recipient)
	if err != nil {
		return nil, failure.Wrap(failure.UnexpectedError, err, "creating age encryptor")
	}
	if _, err := writer.Write(data); err != nil {
		return nil, failure.Wrap(failure.UnexpectedError, err, "writing to age encryptor")
	}
	if err := writer.Close(); err != nil {
		return nil, failure.Wrap(failure.UnexpectedError, err, "finalizing age encryption")
	}
	return buffer.Bytes(), nil
}

// Decode decrypts an age file. A wrong identity, a non-age input and
// a truncated or tampered ciphertext all report CorruptedContent.
func (c *Age) Decode(data []byte) ([]byte, error) {
	reader, err := age.Decrypt(bytes.NewReader(data), c.identity)
	if err != nil {
		return nil, failure.Wrap(failure.CorruptedContent, err, "age decrypt")
	}
	plaintext, err := io.ReadAll(reader)
	if err != nil {
		return nil, failure.Wrap(failure.CorruptedContent, err, "age decrypt")
	}
	return plaintext, nil
}
