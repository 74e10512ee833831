// Copyright (c) 2025 Niema Moshiri and The Zaparoo Project.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of go-chdtoogg.
//
// go-chdtoogg is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-chdtoogg is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-chdtoogg.  If not, see <https://www.gnu.org/licenses/>.

// Package emptytrack holds the synthetic empty data track: 24 raw MODE1
// sectors carrying a blank ISO 9660 volume, substituted for real data tracks
// when only the audio of a disc is wanted.
package emptytrack

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"sync"

	"github.com/ulikunitz/xz"
)

const (
	// Sectors is the number of raw sectors in the track.
	Sectors = 24

	// Size is the decompressed size of the track in bytes.
	Size = Sectors * 2352
)

//go:embed emptytrack.bin.xz
var compressed []byte

var decode = sync.OnceValues(func() ([]byte, error) {
	reader, err := xz.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("open empty track: %w", err)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("decompress empty track: %w", err)
	}
	if len(data) != Size {
		return nil, fmt.Errorf("empty track is %d bytes, want %d", len(data), Size)
	}
	return data, nil
})

// Bytes returns the decompressed track. It is decoded once per process; the
// returned slice is shared and must not be modified.
func Bytes() ([]byte, error) {
	return decode()
}

// CompressedSize returns the size of the embedded xz stream.
func CompressedSize() int {
	return len(compressed)
}
