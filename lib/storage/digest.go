// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// payloadDomainKey keys the BLAKE3 hash of content payloads. The
// bytes are the ASCII domain name zero-padded to 32 bytes. Changing
// it makes every stored digest fail verification.
var payloadDomainKey = [32]byte{
	'b', 'u', 'r', 'e', 'a', 'u', '.', 's', 't', 'o', 'r', 'a', 'g', 'e', '.',
	'p', 'a', 'y', 'l', 'o', 'a', 'd', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// payloadDigest returns the hex keyed BLAKE3 digest of decoded
// payload bytes. It is recorded at save and checked on every read, so
// a blob that decodes cleanly but to the wrong bytes is still caught.
func payloadDigest(data []byte) string {
	hasher, err := blake3.NewKeyed(payloadDomainKey[:])
	if err != nil {
		panic("storage: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(data)
	return hex.EncodeToString(hasher.Sum(nil))
}
