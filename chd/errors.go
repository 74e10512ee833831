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
	"errors"
	"fmt"

	"github.com/ZaparooProject/go-chdtoogg/internal/binary"
)

// Allocation limits to prevent DoS from malicious CHD files.
const (
	// MaxNumHunks is the maximum number of hunks (10M = ~200GB of raw frames).
	MaxNumHunks = 10_000_000

	// MaxMetadataLen is the maximum metadata entry size (16MB, matches 24-bit limit).
	MaxMetadataLen = 16 * 1024 * 1024

	// MaxNumTracks is the maximum number of tracks (200, generous for any disc).
	MaxNumTracks = 200

	// MaxMetadataEntries is the maximum metadata chain entries (prevents loops).
	MaxMetadataEntries = 1000

	// MaxTrackFrames is the maximum frame count of one track (1M = ~3.7 hours of audio).
	MaxTrackFrames = 1_000_000
)

// Sentinel errors matched by the typed errors below via errors.Is.
var (
	// ErrFormat indicates the file is not a well-formed CHD.
	ErrFormat = errors.New("invalid CHD file")

	// ErrUnsupportedVersion indicates a CHD version other than 5.
	ErrUnsupportedVersion = errors.New("unsupported CHD version")

	// ErrUnsupportedCompression indicates a CHD whose hunks are compressed.
	ErrUnsupportedCompression = errors.New("unsupported CHD compression")

	// ErrUnsupportedGeometry indicates a CHD that is not a CD image.
	ErrUnsupportedGeometry = errors.New("unsupported CHD geometry")

	// ErrTruncated indicates an offset or length that runs past the end of the file.
	ErrTruncated = errors.New("truncated CHD file")

	// ErrGeometry indicates inconsistent track geometry.
	ErrGeometry = errors.New("invalid track geometry")

	// ErrRead indicates a short read while reconstructing a track.
	ErrRead = errors.New("read from CHD failed")
)

// FormatError indicates a bad signature, header or metadata chain.
type FormatError struct {
	Reason string
}

func (e FormatError) Error() string {
	return fmt.Sprintf("invalid CHD file: %s", e.Reason)
}

func (FormatError) Unwrap() error { return ErrFormat }

// UnsupportedVersionError indicates a header version or length this reader does not handle.
type UnsupportedVersionError struct {
	Version    uint32
	HeaderSize uint32
}

func (e UnsupportedVersionError) Error() string {
	return fmt.Sprintf("unsupported CHD version %d (header length %d), only version 5 is supported",
		e.Version, e.HeaderSize)
}

func (UnsupportedVersionError) Unwrap() error { return ErrUnsupportedVersion }

// UnsupportedCompressionError indicates at least one compressor slot is in use.
type UnsupportedCompressionError struct {
	Compressors [4]uint32
}

func (e UnsupportedCompressionError) Error() string {
	codec := "?"
	for _, tag := range e.Compressors {
		if tag != 0 {
			codec = binary.TagString(tag)
			break
		}
	}
	return fmt.Sprintf("compressed CHD files are not supported (codec %s), "+
		"the CHD file needs to be made with `chdman createcd -c none`", codec)
}

func (UnsupportedCompressionError) Unwrap() error { return ErrUnsupportedCompression }

// UnsupportedGeometryError indicates a unit or hunk size that does not describe a CD.
type UnsupportedGeometryError struct {
	UnitBytes uint32
	HunkBytes uint32
}

func (e UnsupportedGeometryError) Error() string {
	return fmt.Sprintf("unsupported CHD geometry: unit size %d, hunk size %d (want unit size %d and a hunk size multiple of it)",
		e.UnitBytes, e.HunkBytes, FrameSize)
}

func (UnsupportedGeometryError) Unwrap() error { return ErrUnsupportedGeometry }

// TruncatedFileError indicates a structure that does not fit inside the file.
type TruncatedFileError struct {
	What     string
	Offset   uint64
	Length   uint64
	FileSize int64
}

func (e TruncatedFileError) Error() string {
	return fmt.Sprintf("truncated CHD file: %s at offset %d (length %d) exceeds file size %d",
		e.What, e.Offset, e.Length, e.FileSize)
}

func (TruncatedFileError) Unwrap() error { return ErrTruncated }

// GeometryError indicates a track whose pregap is larger than the track itself.
type GeometryError struct {
	Track  int
	Frames int
	Pregap int
}

func (e GeometryError) Error() string {
	return fmt.Sprintf("track %d pregap (%d frames) is larger than total track frame count (%d)",
		e.Track, e.Pregap, e.Frames)
}

func (GeometryError) Unwrap() error { return ErrGeometry }

// ReadError indicates a short read while reconstructing a track.
type ReadError struct {
	Err    error
	Path   string
	Frame  int
	Offset int64
}

func (e ReadError) Error() string {
	return fmt.Sprintf("failed to read frame %d at offset %d from source file %q: %v",
		e.Frame, e.Offset, e.Path, e.Err)
}

func (e ReadError) Unwrap() []error { return []error{ErrRead, e.Err} }
