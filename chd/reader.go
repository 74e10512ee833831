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
	"io"
)

// ReadTrack reconstructs the contiguous payload of a track: Frames sectors of
// DataSize bytes each, taken from the start of every raw frame. Frames inside
// unallocated hunks read as zeros.
func (c *CHD) ReadTrack(track Track) ([]byte, error) {
	if err := c.checkTrackRange(track); err != nil {
		return nil, err
	}
	buf := make([]byte, track.Size())
	if err := c.ReadTrackInto(track, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// ReadTrackInto is like ReadTrack but fills dst, which must hold track.Size() bytes.
func (c *CHD) ReadTrackInto(track Track, dst []byte) error {
	if err := c.checkTrackRange(track); err != nil {
		return err
	}
	if int64(len(dst)) < track.Size() {
		return fmt.Errorf("track %d buffer too small: %d < %d", track.Number, len(dst), track.Size())
	}

	hunkBytes := uint64(c.hunkMap.HunkBytes())
	for i := range track.Frames {
		frame := track.StartFrame + i
		pos := uint64(frame) * FrameSize //nolint:gosec // frame is inside the map, checked above
		hunkIdx, hunkOffset := pos/hunkBytes, pos%hunkBytes
		out := dst[i*track.DataSize : (i+1)*track.DataSize]

		if err := c.hunkMap.ReadAt(hunkIdx, hunkOffset, out); err != nil {
			offset, _ := c.hunkMap.Offset(hunkIdx)
			return ReadError{
				Path:   c.name,
				Frame:  frame,
				Offset: int64(offset + hunkOffset), //nolint:gosec // bounded by file size
				Err:    unwrapRead(err),
			}
		}
	}

	return nil
}

// frameCapacity returns the number of frames the hunk map covers.
func (c *CHD) frameCapacity() uint64 {
	return c.hunkMap.NumHunks() * uint64(c.header.FramesPerHunk())
}

// checkTrackRange rejects tracks whose frames run past the hunk map.
func (c *CHD) checkTrackRange(track Track) error {
	if track.Frames < 0 || track.StartFrame < 0 || track.DataSize <= 0 || track.DataSize > SectorSize {
		return FormatError{Reason: fmt.Sprintf("track %d has invalid geometry", track.Number)}
	}
	return checkFrameRange(track, c.frameCapacity(), c.size)
}

// checkFrameRange reports a TruncatedFileError when the frames of track do
// not fit in the first capacity frames. It never multiplies the frame count,
// so oversized FRAMES values cannot wrap.
func checkFrameRange(track Track, capacity uint64, fileSize int64) error {
	start, frames := uint64(track.StartFrame), uint64(track.Frames) //nolint:gosec // both checked non-negative
	if start <= capacity && frames <= capacity-start {
		return nil
	}
	return TruncatedFileError{
		What:     fmt.Sprintf("track %d frames %d+%d beyond %d mapped frames", track.Number, start, frames, capacity),
		Offset:   capacity * FrameSize,
		Length:   FrameSize,
		FileSize: fileSize,
	}
}

// unwrapRead drops the hunk wrapping so ReadError carries the I/O cause.
func unwrapRead(err error) error {
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
