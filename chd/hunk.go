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

package chd

import (
	"encoding/binary"
	"fmt"
	"io"

	ibinary "github.com/ZaparooProject/go-chdtoogg/internal/binary"
)

// mapEntryBytes is the size of an uncompressed V5 map entry.
const mapEntryBytes = 4

// HunkMap resolves hunk indices to absolute file offsets for an uncompressed CHD.
// An offset of zero marks an unallocated hunk, which reads as all zeros.
type HunkMap struct {
	reader    io.ReaderAt
	offsets   []uint64
	hunkBytes uint32
}

// NewHunkMap loads the uncompressed hunk map described by header.
// Uncompressed V5 map layout: one 32-bit big-endian hunk index per hunk,
// rebased into a file offset by multiplying with the hunk size.
func NewHunkMap(reader io.ReaderAt, header *Header, fileSize int64) (*HunkMap, error) {
	numHunks := header.NumHunks()
	if numHunks > MaxNumHunks {
		return nil, FormatError{Reason: fmt.Sprintf("too many hunks (%d > %d)", numHunks, MaxNumHunks)}
	}

	size := uint64(fileSize) //nolint:gosec // fileSize comes from Stat or a buffer length
	mapLen := numHunks * mapEntryBytes
	if size < header.MapOffset+mapLen {
		return nil, TruncatedFileError{What: "hunk map", Offset: header.MapOffset, Length: mapLen, FileSize: fileSize}
	}

	mapData := make([]byte, mapLen)
	//nolint:gosec // Safe: MapOffset validated against file size during header parsing
	if err := ibinary.ReadAt(reader, int64(header.MapOffset), mapData); err != nil {
		return nil, fmt.Errorf("read hunk map: %w", err)
	}

	hm := &HunkMap{
		reader:    reader,
		offsets:   make([]uint64, numHunks),
		hunkBytes: header.HunkBytes,
	}
	hunkBytes := uint64(header.HunkBytes)
	for i := range hm.offsets {
		offset := uint64(binary.BigEndian.Uint32(mapData[i*mapEntryBytes:])) * hunkBytes
		if offset != 0 && size < offset+hunkBytes {
			return nil, TruncatedFileError{
				What:     fmt.Sprintf("hunk %d", i),
				Offset:   offset,
				Length:   hunkBytes,
				FileSize: fileSize,
			}
		}
		hm.offsets[i] = offset
	}

	return hm, nil
}

// Offset returns the absolute file offset of a hunk, or 0 if it is unallocated.
func (hm *HunkMap) Offset(index uint64) (uint64, error) {
	if index >= uint64(len(hm.offsets)) {
		return 0, FormatError{Reason: fmt.Sprintf("hunk %d outside map of %d hunks", index, len(hm.offsets))}
	}
	return hm.offsets[index], nil
}

// ReadAt reads len(dst) bytes starting offset bytes into a hunk.
// Unallocated hunks read as zeros.
func (hm *HunkMap) ReadAt(index, offset uint64, dst []byte) error {
	base, err := hm.Offset(index)
	if err != nil {
		return err
	}
	if offset > uint64(hm.hunkBytes) || uint64(len(dst)) > uint64(hm.hunkBytes)-offset {
		return FormatError{Reason: fmt.Sprintf("read of %d bytes at %d overruns hunk %d", len(dst), offset, index)}
	}
	if base == 0 {
		clear(dst)
		return nil
	}
	//nolint:gosec // Safe: base+hunkBytes validated against file size in NewHunkMap
	if err := ibinary.ReadAt(hm.reader, int64(base+offset), dst); err != nil {
		return fmt.Errorf("read hunk %d: %w", index, err)
	}
	return nil
}

// IsAllocated reports whether a hunk is backed by file data.
func (hm *HunkMap) IsAllocated(index uint64) bool {
	return index < uint64(len(hm.offsets)) && hm.offsets[index] != 0
}

// NumHunks returns the number of hunks in the map.
func (hm *HunkMap) NumHunks() uint64 {
	return uint64(len(hm.offsets))
}

// HunkBytes returns the size of each hunk.
func (hm *HunkMap) HunkBytes() uint32 {
	return hm.hunkBytes
}
