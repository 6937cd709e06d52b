// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"fmt"
	"io"
	"os"
)

// MaxFileSize bounds ReadFile. Identity files are a few hundred bytes.
const MaxFileSize = 64 << 10

// ReadFile reads a key file into a locked buffer. The intermediate
// heap copy is zeroed before returning. Files larger than MaxFileSize
// and empty files are rejected.
func ReadFile(path string) (*Buffer, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxFileSize+1))
	if err != nil {
		Zero(data)
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(data) > MaxFileSize {
		Zero(data)
		return nil, fmt.Errorf("%s exceeds %d bytes", path, MaxFileSize)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%s is empty", path)
	}
	return NewFromBytes(data)
}
