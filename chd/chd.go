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

// Package chd reads CD images stored in uncompressed CHD (Compressed Hunks of
// Data) V5 files, as produced by `chdman createcd -c none`.
package chd

import (
	"fmt"
	"io"
	"os"
)

// CHD represents an opened CHD disc image.
type CHD struct {
	reader  io.ReaderAt
	closer  io.Closer
	header  *Header
	hunkMap *HunkMap
	name    string
	tracks  []Track
	size    int64
}

// Open opens a CHD file and parses its header, hunk map and track metadata.
func Open(path string) (*CHD, error) {
	file, err := os.Open(path) //nolint:gosec // Path from user input is expected
	if err != nil {
		return nil, fmt.Errorf("open CHD file: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("stat CHD file: %w", err)
	}

	chd, err := NewReader(file, info.Size(), path)
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	chd.closer = file

	return chd, nil
}

// NewReader parses a CHD image of the given size from reader. name is used in
// diagnostics only. The caller keeps ownership of reader.
func NewReader(reader io.ReaderAt, size int64, name string) (*CHD, error) {
	chd := &CHD{reader: reader, size: size, name: name}
	if err := chd.init(); err != nil {
		return nil, err
	}
	return chd, nil
}

// init initializes the CHD by parsing header, hunk map, and metadata.
func (c *CHD) init() error {
	header, err := parseHeader(c.reader, c.size)
	if err != nil {
		return fmt.Errorf("parse header: %w", err)
	}
	c.header = header

	hunkMap, err := NewHunkMap(c.reader, header, c.size)
	if err != nil {
		return fmt.Errorf("create hunk map: %w", err)
	}
	c.hunkMap = hunkMap

	tracks, err := parseTracks(c.reader, header.MetaOffset, c.size, c.frameCapacity())
	if err != nil {
		return fmt.Errorf("parse metadata: %w", err)
	}
	c.tracks = tracks

	return nil
}

// Close closes the CHD file if it was opened by Open.
func (c *CHD) Close() error {
	if c.closer != nil {
		if err := c.closer.Close(); err != nil {
			return fmt.Errorf("close CHD file: %w", err)
		}
	}
	return nil
}

// Header returns the parsed CHD header.
func (c *CHD) Header() *Header {
	return c.header
}

// HunkMap returns the resolved hunk map.
func (c *CHD) HunkMap() *HunkMap {
	return c.hunkMap
}

// Tracks returns the CD tracks in metadata chain order.
func (c *CHD) Tracks() []Track {
	return c.tracks
}

// Name returns the path or name the image was opened with.
func (c *CHD) Name() string {
	return c.name
}

// FileSize returns the size of the CHD file in bytes.
func (c *CHD) FileSize() int64 {
	return c.size
}
