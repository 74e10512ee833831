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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZaparooProject/go-chdtoogg/internal/chdtest"
)

func walkTracks(t *testing.T, data []byte) ([]Track, error) {
	t.Helper()
	header, err := parseHeader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	capacity := header.NumHunks() * uint64(header.FramesPerHunk())
	return parseTracks(bytes.NewReader(data), header.MetaOffset, int64(len(data)), capacity)
}

//nolint:funlen // Table of payload variants
func TestScanTrackPayload(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload string
		want    Track
		fields  int
		v2      bool
	}{
		{
			name:    "CHT2 full",
			payload: "TRACK:2 TYPE:AUDIO SUBTYPE:NONE FRAMES:1200 PREGAP:150 PGTYPE:AUDIO PGSUB:RW POSTGAP:0",
			v2:      true,
			want:    Track{Number: 2, Type: "AUDIO", SubType: "NONE", Frames: 1200, Pregap: 150},
			fields:  5,
		},
		{
			name:    "CHTR ignores pregap",
			payload: "TRACK:1 TYPE:MODE1 SUBTYPE:RW FRAMES:300 PREGAP:150",
			want:    Track{Number: 1, Type: "MODE1", SubType: "RW", Frames: 300},
			fields:  4,
		},
		{
			name:    "CHT2 without pregap",
			payload: "TRACK:3 TYPE:MODE2_RAW SUBTYPE:NONE FRAMES:77",
			v2:      true,
			want:    Track{Number: 3, Type: "MODE2_RAW", SubType: "NONE", Frames: 77},
			fields:  4,
		},
		{
			name:    "extra whitespace",
			payload: "TRACK: 4  TYPE:AUDIO\tSUBTYPE:NONE   FRAMES:  9 PREGAP:0",
			v2:      true,
			want:    Track{Number: 4, Type: "AUDIO", SubType: "NONE", Frames: 9},
			fields:  5,
		},
		{
			name:    "missing frames",
			payload: "TRACK:5 TYPE:AUDIO SUBTYPE:NONE",
			v2:      true,
			want:    Track{Number: 5, Type: "AUDIO", SubType: "NONE"},
			fields:  3,
		},
		{
			name:    "non-numeric track",
			payload: "TRACK:x TYPE:AUDIO SUBTYPE:NONE FRAMES:1",
			fields:  0,
		},
		{
			name:    "overlong type",
			payload: "TRACK:6 TYPE:" + strings.Repeat("M", 31) + " SUBTYPE:NONE FRAMES:1",
			want:    Track{Number: 6, Type: strings.Repeat("M", 30)},
			fields:  2,
		},
		{
			name:    "empty",
			payload: "",
			fields:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, fields := scanTrackPayload(tt.payload, tt.v2)
			assert.Equal(t, tt.fields, fields)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTracksAlignment(t *testing.T) {
	t.Parallel()

	img := chdtest.Image{Tracks: []chdtest.Track{
		{Number: 1, Type: "MODE1_RAW", Frames: 10},
		{Number: 2, Type: "AUDIO", Frames: 7, Pregap: 2},
		{Number: 3, Type: "AUDIO", Frames: 5, Tag: chdtest.TagCHTR},
	}}

	tracks, err := walkTracks(t, img.Build())
	require.NoError(t, err)
	require.Len(t, tracks, 3)

	wantStart := []int{0, 12, 20}
	prevEnd := 0
	for i, track := range tracks {
		assert.Equal(t, wantStart[i], track.StartFrame, "track %d", track.Number)
		assert.Zero(t, track.StartFrame%TrackPadding)
		assert.GreaterOrEqual(t, track.StartFrame, prevEnd)
		assert.Less(t, track.StartFrame-prevEnd, TrackPadding)
		prevEnd = track.EndFrame()
	}

	assert.Equal(t, 2, tracks[1].Pregap)
	assert.True(t, tracks[1].IsAudio())
	assert.Equal(t, DataSizeRaw, tracks[1].DataSize)
	assert.Equal(t, uint32(MetaTagCHTR), tracks[2].Tag)
	assert.Zero(t, tracks[2].Pregap)
}

func TestParseTracksDataSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		trackType string
		want      int
	}{
		{"MODE1", 2048},
		{"MODE2_FORM1", 2048},
		{"MODE2_FORM2", 2048},
		{"MODE2", 2336},
		{"MODE2_FORM_MIX", 2336},
		{"MODE1_RAW", 2352},
		{"MODE2_RAW", 2352},
		{"AUDIO", 2352},
		{"SOMETHING_ELSE", 2352},
	}

	for _, tt := range tests {
		t.Run(tt.trackType, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, trackTypeToDataSize(tt.trackType))
		})
	}
}

func TestParseTracksSkipsForeignAndShortRecords(t *testing.T) {
	t.Parallel()

	img := chdtest.Image{
		Extra: []chdtest.Record{
			{Tag: chdtest.TagCHGD, Payload: []byte("not a CD track")},
			{Tag: chdtest.TagCHT2, Payload: []byte("TRACK:9 TYPE:AUDIO\x00")},
		},
		Tracks: []chdtest.Track{
			{Number: 1, Type: "MODE1", Frames: 3},
			{Payload: "garbage", Frames: 5},
			{Number: 2, Type: "AUDIO", Frames: 4},
		},
	}

	tracks, err := walkTracks(t, img.Build())
	require.NoError(t, err)
	require.Len(t, tracks, 2)
	assert.Equal(t, 1, tracks[0].Number)
	assert.Equal(t, 2, tracks[1].Number)
	assert.Equal(t, 4, tracks[1].StartFrame, "skipped records must not advance the frame cursor")
}

func TestParseTracksPregapLargerThanFrames(t *testing.T) {
	t.Parallel()

	img := chdtest.Image{Tracks: []chdtest.Track{{Number: 1, Type: "AUDIO", Frames: 10, Pregap: 11}}}
	_, err := walkTracks(t, img.Build())

	var geomErr GeometryError
	require.ErrorAs(t, err, &geomErr)
	assert.Equal(t, GeometryError{Track: 1, Frames: 10, Pregap: 11}, geomErr)
}

func TestParseTracksRejectsBadNumbers(t *testing.T) {
	t.Parallel()

	for _, payload := range []string{
		"TRACK:0 TYPE:AUDIO SUBTYPE:NONE FRAMES:10",
		"TRACK:1 TYPE:AUDIO SUBTYPE:NONE FRAMES:-10",
	} {
		img := chdtest.Image{Tracks: []chdtest.Track{{Payload: payload, Tag: chdtest.TagCHTR}}}
		_, err := walkTracks(t, img.Build())
		assert.ErrorIs(t, err, ErrFormat, "payload %q", payload)
	}
}

func TestParseTracksBeyondMap(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		frames string
	}{
		{name: "one frame too many", frames: "17"},
		{name: "frame count that overflows byte sizes", frames: "7535434670632988"},
		{name: "largest int", frames: "9223372036854775807"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// Two 8-frame hunks back 16 frames.
			img := chdtest.Image{Tracks: []chdtest.Track{{
				Payload: "TRACK:1 TYPE:AUDIO SUBTYPE:NONE FRAMES:" + tt.frames,
				Frames:  16,
			}}}
			_, err := walkTracks(t, img.Build())

			var truncErr TruncatedFileError
			require.ErrorAs(t, err, &truncErr)
			assert.Contains(t, truncErr.What, "beyond 16 mapped frames")
		})
	}
}

func TestParseTracksExactlyFillsMap(t *testing.T) {
	t.Parallel()

	img := chdtest.Image{Tracks: []chdtest.Track{
		{Number: 1, Type: "MODE1", Frames: 6},
		{Number: 2, Type: "AUDIO", Frames: 8},
	}}
	tracks, err := walkTracks(t, img.Build())
	require.NoError(t, err)
	require.Len(t, tracks, 2)
	assert.Equal(t, 16, tracks[1].EndFrame())
}

func TestParseTracksCycle(t *testing.T) {
	t.Parallel()

	img := chdtest.Image{Tracks: []chdtest.Track{
		{Number: 1, Type: "AUDIO", Frames: 4},
		{Number: 2, Type: "AUDIO", Frames: 4},
	}}
	data, layout := img.BuildLayout()
	last := layout.MetaOffsets[len(layout.MetaOffsets)-1]
	binary.BigEndian.PutUint64(data[last+8:], layout.MetaOffsets[0])

	_, err := walkTracks(t, data)
	require.ErrorIs(t, err, ErrFormat)
	assert.Contains(t, err.Error(), "circular")
}

func TestParseTracksTruncated(t *testing.T) {
	t.Parallel()

	t.Run("payload length past end", func(t *testing.T) {
		t.Parallel()
		data, layout := singleTrackImage().BuildLayout()
		off := layout.MetaOffsets[0]
		data[off+5], data[off+6], data[off+7] = 0xFF, 0xFF, 0xFF
		_, err := walkTracks(t, data)
		assert.ErrorIs(t, err, ErrTruncated)
	})

	t.Run("next entry past end", func(t *testing.T) {
		t.Parallel()
		data, layout := singleTrackImage().BuildLayout()
		off := layout.MetaOffsets[0]
		binary.BigEndian.PutUint64(data[off+8:], uint64(len(data))-8)
		_, err := walkTracks(t, data)
		assert.ErrorIs(t, err, ErrTruncated)
	})

	t.Run("foreign entry with oversized length is skipped", func(t *testing.T) {
		t.Parallel()
		img := singleTrackImage()
		img.Extra = []chdtest.Record{{Tag: chdtest.TagCHGD, Payload: []byte("x")}}
		data, layout := img.BuildLayout()
		off := layout.MetaOffsets[0]
		data[off+5], data[off+6], data[off+7] = 0xFF, 0xFF, 0xFF
		tracks, err := walkTracks(t, data)
		require.NoError(t, err)
		assert.Len(t, tracks, 1)
	})
}
