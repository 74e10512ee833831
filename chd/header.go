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

// CHD format magic word
var chdMagic = [8]byte{'M', 'C', 'o', 'm', 'p', 'r', 'H', 'D'}

const (
	// HeaderSize is the length of a V5 header.
	HeaderSize = 124

	// SupportedVersion is the only CHD version this package reads.
	SupportedVersion = 5

	// SectorSize is the size of a raw CD sector without subchannel data.
	SectorSize = 2352

	// SubcodeSize is the size of the subchannel data stored after each sector.
	SubcodeSize = 96

	// FrameSize is the CHD unit size of a CD image: one raw sector plus subcode.
	FrameSize = SectorSize + SubcodeSize
)

// Header represents a CHD V5 file header.
type Header struct {
	Magic        [8]byte   // "MComprHD"
	HeaderSize   uint32    // Header length in bytes
	Version      uint32    // CHD version
	Compressors  [4]uint32 // Compression codec tags, all zero when uncompressed
	LogicalBytes uint64    // Total uncompressed size
	MapOffset    uint64    // Offset to hunk map
	MetaOffset   uint64    // Offset to metadata
	HunkBytes    uint32    // Bytes per hunk
	UnitBytes    uint32    // Bytes per unit (sector size)
	RawSHA1      [20]byte  // SHA1 of raw data
	SHA1         [20]byte  // SHA1 of raw + metadata
	ParentSHA1   [20]byte  // Parent SHA1 (for delta CHDs)
}

// parseHeader reads and validates a CHD header from the start of reader.
// V5 header layout (124 bytes, big-endian):
//
//	Offset 0x00: Magic (8 bytes)
//	Offset 0x08: Header size (4 bytes)
//	Offset 0x0C: Version (4 bytes)
//	Offset 0x10: Compressors 0-3 (4 x 4 bytes)
//	Offset 0x20: Logical bytes (8 bytes)
//	Offset 0x28: Map offset (8 bytes)
//	Offset 0x30: Meta offset (8 bytes)
//	Offset 0x38: Hunk bytes (4 bytes)
//	Offset 0x3C: Unit bytes (4 bytes)
//	Offset 0x40: Raw SHA1 (20 bytes)
//	Offset 0x54: SHA1 (20 bytes)
//	Offset 0x68: Parent SHA1 (20 bytes)
func parseHeader(reader io.ReaderAt, fileSize int64) (*Header, error) {
	buf := make([]byte, HeaderSize)
	if err := ibinary.ReadAt(reader, 0, buf); err != nil {
		return nil, FormatError{Reason: fmt.Sprintf("read header: %v", err)}
	}

	header := decodeHeader(buf)
	if header.Magic != chdMagic {
		return nil, FormatError{Reason: "bad signature, expected MComprHD"}
	}
	if err := header.validate(fileSize); err != nil {
		return nil, err
	}
	return header, nil
}

// decodeHeader decodes the fixed fields without validating them.
func decodeHeader(buf []byte) *Header {
	var header Header
	copy(header.Magic[:], buf[0x00:0x08])
	header.HeaderSize = binary.BigEndian.Uint32(buf[0x08:0x0C])
	header.Version = binary.BigEndian.Uint32(buf[0x0C:0x10])
	for i := range header.Compressors {
		header.Compressors[i] = binary.BigEndian.Uint32(buf[0x10+4*i:])
	}
	header.LogicalBytes = binary.BigEndian.Uint64(buf[0x20:0x28])
	header.MapOffset = binary.BigEndian.Uint64(buf[0x28:0x30])
	header.MetaOffset = binary.BigEndian.Uint64(buf[0x30:0x38])
	header.HunkBytes = binary.BigEndian.Uint32(buf[0x38:0x3C])
	header.UnitBytes = binary.BigEndian.Uint32(buf[0x3C:0x40])
	copy(header.RawSHA1[:], buf[0x40:0x54])
	copy(header.SHA1[:], buf[0x54:0x68])
	copy(header.ParentSHA1[:], buf[0x68:0x7C])
	return &header
}

// validate applies the version, compression, geometry and bounds rules in that order.
func (h *Header) validate(fileSize int64) error {
	if h.Version != SupportedVersion || h.HeaderSize != HeaderSize {
		return UnsupportedVersionError{Version: h.Version, HeaderSize: h.HeaderSize}
	}
	if h.IsCompressed() {
		return UnsupportedCompressionError{Compressors: h.Compressors}
	}
	if h.UnitBytes != FrameSize || h.HunkBytes == 0 || h.HunkBytes%FrameSize != 0 {
		return UnsupportedGeometryError{UnitBytes: h.UnitBytes, HunkBytes: h.HunkBytes}
	}

	size := uint64(fileSize) //nolint:gosec // fileSize comes from Stat or a buffer length
	if h.MapOffset < HeaderSize || h.MapOffset >= size {
		return FormatError{Reason: fmt.Sprintf("map offset %d outside [%d, %d)", h.MapOffset, HeaderSize, size)}
	}
	if h.MetaOffset < HeaderSize || h.MetaOffset >= size {
		return FormatError{Reason: fmt.Sprintf("metadata offset %d outside [%d, %d)", h.MetaOffset, HeaderSize, size)}
	}
	if h.LogicalBytes == 0 {
		return FormatError{Reason: "logical size is zero"}
	}
	return nil
}

// NumHunks returns the number of hunks covering the logical size.
func (h *Header) NumHunks() uint64 {
	if h.HunkBytes == 0 {
		return 0
	}
	return (h.LogicalBytes + uint64(h.HunkBytes) - 1) / uint64(h.HunkBytes)
}

// FramesPerHunk returns the number of CD frames stored in each hunk.
func (h *Header) FramesPerHunk() uint32 {
	if h.UnitBytes == 0 {
		return 0
	}
	return h.HunkBytes / h.UnitBytes
}

// IsCompressed returns true if any compressor slot is in use.
func (h *Header) IsCompressed() bool {
	for _, tag := range h.Compressors {
		if tag != 0 {
			return true
		}
	}
	return false
}
