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
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZaparooProject/go-chdtoogg/internal/chdtest"
)

// failingReaderAt serves reads from data until failAt, then returns err.
type failingReaderAt struct {
	err    error
	data   []byte
	failAt int64
}

func (r *failingReaderAt) ReadAt(p []byte, off int64) (int, error) {
	if off+int64(len(p)) > r.failAt {
		return 0, r.err
	}
	return bytes.NewReader(r.data).ReadAt(p, off)
}

// countingReaderAt records the largest single read.
type countingReaderAt struct {
	r       io.ReaderAt
	largest int
}

func (c *countingReaderAt) ReadAt(p []byte, off int64) (int, error) {
	c.largest = max(c.largest, len(p))
	return c.r.ReadAt(p, off)
}

func openBytes(t *testing.T, data []byte) *CHD {
	t.Helper()
	c, err := NewReader(bytes.NewReader(data), int64(len(data)), "test.chd")
	require.NoError(t, err)
	return c
}

// expectedPayload extracts the first dataSize bytes of each sector.
func expectedPayload(fill func(int, []byte), frames, dataSize int) []byte {
	out := make([]byte, 0, frames*dataSize)
	sector := make([]byte, SectorSize)
	for i := range frames {
		clear(sector)
		fill(i, sector)
		out = append(out, sector[:dataSize]...)
	}
	return out
}

func TestReadTrackPayloads(t *testing.T) {
	t.Parallel()

	fills := []func(int, []byte){chdtest.PatternFill(0x21), chdtest.PatternFill(0x42), chdtest.PatternFill(0x63)}
	img := chdtest.Image{Tracks: []chdtest.Track{
		{Number: 1, Type: "MODE1", Frames: 18, Pregap: 0, Fill: fills[0]},
		{Number: 2, Type: "MODE2_FORM_MIX", Frames: 9, Fill: fills[1]},
		{Number: 3, Type: "AUDIO", Frames: 13, Pregap: 2, Fill: fills[2]},
	}}
	c := openBytes(t, img.Build())

	tracks := c.Tracks()
	require.Len(t, tracks, 3)
	for i, track := range tracks {
		got, err := c.ReadTrack(track)
		require.NoError(t, err, "track %d", track.Number)
		assert.Len(t, got, int(track.Size()))
		assert.Equal(t, expectedPayload(fills[i], track.Frames, track.DataSize), got, "track %d", track.Number)
		if track.DataSize == SectorSize {
			// Pattern bytes are odd, subcode filler is 0xEE (even).
			assert.Equal(t, -1, bytes.IndexByte(got, 0xEE), "track %d payload contains subcode bytes", track.Number)
		}
	}
}

func TestReadTrackUnallocatedHunkIsZero(t *testing.T) {
	t.Parallel()

	img := chdtest.Image{
		Tracks:      []chdtest.Track{{Number: 1, Type: "AUDIO", Frames: 24, Fill: chdtest.PatternFill(0x11)}},
		Unallocated: []int{1},
	}
	c := openBytes(t, img.Build())

	got, err := c.ReadTrack(c.Tracks()[0])
	require.NoError(t, err)

	const frameBytes = DataSizeRaw
	hole := got[8*frameBytes : 16*frameBytes]
	assert.Equal(t, make([]byte, len(hole)), hole, "frames in unallocated hunk 1 should be zero")
	assert.NotEqual(t, make([]byte, frameBytes), got[:frameBytes], "frames in allocated hunk 0 should not be zero")
}

func TestReadTrackReadsOnlySectorPayload(t *testing.T) {
	t.Parallel()

	img := chdtest.Image{
		Tracks:     []chdtest.Track{{Number: 1, Type: "MODE1", Frames: 40, Fill: chdtest.PatternFill(0x35)}},
		HunkFrames: 32,
	}
	data := img.Build()
	reader := &countingReaderAt{r: bytes.NewReader(data)}
	c, err := NewReader(reader, int64(len(data)), "big-hunks.chd")
	require.NoError(t, err)

	reader.largest = 0
	_, err = c.ReadTrack(c.Tracks()[0])
	require.NoError(t, err)
	assert.Equal(t, DataSizeCooked, reader.largest)
}

func TestReadTrackHugeUnallocatedHunk(t *testing.T) {
	t.Parallel()

	// One unallocated hunk of 1.7M frames; reading must not allocate it.
	const hunkFrames = 1_700_000
	img := chdtest.Image{Tracks: []chdtest.Track{{Number: 1, Type: "AUDIO", Frames: 4}}}
	data, layout := img.BuildLayout()
	binary.BigEndian.PutUint32(data[56:], hunkFrames*FrameSize)
	binary.BigEndian.PutUint32(data[layout.MapOffset:], 0)

	c := openBytes(t, data)
	got, err := c.ReadTrack(c.Tracks()[0])
	require.NoError(t, err)
	assert.Equal(t, make([]byte, 4*DataSizeRaw), got)
}

func TestReadTrackShortRead(t *testing.T) {
	t.Parallel()

	img := chdtest.Image{Tracks: []chdtest.Track{{Number: 1, Type: "AUDIO", Frames: 16, Fill: chdtest.PatternFill(1)}}}
	data, layout := img.BuildLayout()
	r := &failingReaderAt{data: data, failAt: int64(layout.HunkOffsets[1]) + 1, err: io.ErrUnexpectedEOF}

	c, err := NewReader(r, int64(len(data)), "broken.chd")
	require.NoError(t, err)
	_, err = c.ReadTrack(c.Tracks()[0])

	var readErr ReadError
	require.ErrorAs(t, err, &readErr)
	assert.ErrorIs(t, err, ErrRead)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Equal(t, "broken.chd", readErr.Path)
	assert.Equal(t, 8, readErr.Frame)
}

func TestReadTrackOutsideMap(t *testing.T) {
	t.Parallel()

	c := openBytes(t, singleTrackImage().Build())

	for _, frames := range []int{1000, 1 << 30, int(^uint(0) >> 1)} {
		track := c.Tracks()[0]
		track.Frames = frames
		_, err := c.ReadTrack(track)
		assert.ErrorIs(t, err, ErrTruncated, "frames %d", frames)
	}

	track := c.Tracks()[0]
	track.StartFrame = int(^uint(0) >> 1)
	_, err := c.ReadTrack(track)
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestReadTrackInto(t *testing.T) {
	t.Parallel()

	c := openBytes(t, singleTrackImage().Build())
	track := c.Tracks()[0]

	require.Error(t, c.ReadTrackInto(track, make([]byte, track.Size()-1)))

	dst := make([]byte, track.Size())
	require.NoError(t, c.ReadTrackInto(track, dst))
	want, err := c.ReadTrack(track)
	require.NoError(t, err)
	assert.Equal(t, want, dst)
}
