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

package cue

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMSF(t *testing.T) {
	t.Parallel()

	tests := []struct {
		want   string
		frames int
	}{
		{"00:00:00", 0},
		{"00:00:74", 74},
		{"00:01:00", 75},
		{"00:02:00", 150},
		{"01:00:00", 4500},
		{"59:59:74", 60*4500 - 1},
		{"00:00:00", 60 * 4500},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MSF(tt.frames), "MSF(%d)", tt.frames)
	}
}

func TestParseMSF(t *testing.T) {
	t.Parallel()

	for _, frames := range []int{0, 1, 74, 150, 4499, 123456} {
		got, err := ParseMSF(MSF(frames))
		require.NoError(t, err)
		assert.Equal(t, frames, got)
	}
	for _, bad := range []string{"", "00:00", "00:60:00", "00:00:75", "aa:00:00", "-1:00:00"} {
		_, err := ParseMSF(bad)
		assert.ErrorIs(t, err, ErrSyntax, bad)
	}
}

func TestDataMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		trackType string
		want      string
		dataSize  int
	}{
		{"MODE1", "MODE1/2048", 2048},
		{"MODE1_RAW", "MODE1/2352", 2352},
		{"MODE2", "MODE2/2336", 2336},
		{"MODE2_FORM1", "MODE2/2048", 2048},
		{"MODE2_FORM_MIX", "MODE2/2336", 2336},
		{"MODE2_RAW", "MODE2/2352", 2352},
		{"ODD", "MODE1/2352", 2352},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DataMode(tt.trackType, tt.dataSize), tt.trackType)
	}
}

func TestTrackFileName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		cuePath string
		want    string
		number  int
		audio   bool
	}{
		{"out/game.cue", "out/game (Track 01).bin", 1, false},
		{"out/game.cue", "out/game (Track 02).ogg", 2, true},
		{"game.cue", "game (Track 123).ogg", 123, true},
		{"disc.CUE", "disc (Track 10).bin", 10, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TrackFileName(tt.cuePath, tt.number, tt.audio))
	}
}

func TestStanzas(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		want  string
		track Track
	}{
		{
			name:  "data without pregap",
			track: DataTrack("g (Track 01).bin", "MODE1_RAW", 1, 2352, 0),
			want: "FILE \"g (Track 01).bin\" BINARY\r\n" +
				"  TRACK 01 MODE1/2352\r\n" +
				"    INDEX 01 00:00:00\r\n",
		},
		{
			name:  "data with pregap",
			track: DataTrack("g (Track 03).bin", "MODE2_RAW", 3, 2352, 150),
			want: "FILE \"g (Track 03).bin\" BINARY\r\n" +
				"  TRACK 03 MODE2/2352\r\n" +
				"    INDEX 00 00:00:00\r\n" +
				"    INDEX 01 00:02:00\r\n",
		},
		{
			name:  "audio with pregap",
			track: AudioTrack("g (Track 02).ogg", 2, 150),
			want: "FILE \"g (Track 02).ogg\" MP3\r\n" +
				"  TRACK 02 AUDIO\r\n" +
				"    PREGAP 00:02:00\r\n" +
				"    INDEX 01 00:00:00\r\n",
		},
		{
			name:  "audio without pregap",
			track: AudioTrack("g (Track 04).ogg", 4, 0),
			want: "FILE \"g (Track 04).ogg\" MP3\r\n" +
				"  TRACK 04 AUDIO\r\n" +
				"    INDEX 01 00:00:00\r\n",
		},
		{
			name:  "synthetic data track",
			track: EmptyDataTrack("g (Track 01).bin", 1),
			want: "FILE \"g (Track 01).bin\" BINARY\r\n" +
				"  TRACK 01 MODE1/2352\r\n" +
				"    INDEX 01 00:00:00\r\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.track.String())
		})
	}
}

func TestSheetRoundTrip(t *testing.T) {
	t.Parallel()

	sheet := &Sheet{Tracks: []Track{
		DataTrack("game (Track 01).bin", "MODE1_RAW", 1, 2352, 0),
		AudioTrack("game (Track 02).ogg", 2, 150),
		DataTrack("game (Track 03).bin", "MODE2_RAW", 3, 2352, 225),
	}}

	var buf bytes.Buffer
	n, err := sheet.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)
	assert.Equal(t, strings.Count(buf.String(), "\n"), strings.Count(buf.String(), "\r\n"),
		"every line must end in CRLF")

	parsed, err := Parse(&buf, "")
	require.NoError(t, err)
	assert.Equal(t, sheet.String(), parsed.String())
	assert.True(t, parsed.Tracks[1].IsAudio())
	assert.Equal(t, 150, parsed.Tracks[1].Pregap)
}

func TestParseFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cuePath := filepath.Join(dir, "game.cue")
	content := "REM generated\r\n" +
		"File \"track01.bin\" Binary\r\n" +
		"Track 01 Mode1/2352\r\n" +
		"  Index 01 00:00:00\r\n" +
		"FILE \"track02.ogg\" MP3\r\n" +
		"TRACK 02 AUDIO\r\n" +
		"  INDEX 01 00:00:00\r\n"
	require.NoError(t, os.WriteFile(cuePath, []byte(content), 0o600))

	sheet, err := ParseFile(cuePath)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "track01.bin"), filepath.Join(dir, "track02.ogg")}, sheet.BinFiles())
	assert.Equal(t, "MODE1/2352", sheet.Tracks[0].Mode)
	assert.Equal(t, FileBinary, sheet.Tracks[0].FileType)
	assert.Equal(t, cuePath, sheet.Path)
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	tests := []string{
		"FILE game.bin BINARY\n",
		"TRACK xx AUDIO\n",
		"INDEX 01 00:00:00\n",
		"FILE \"a\" BINARY\nTRACK 01 AUDIO\nINDEX 01 00:99:00\n",
		"FILE \"a\" BINARY\nTRACK 01 AUDIO\nPREGAP 1\n",
	}
	for _, content := range tests {
		_, err := Parse(strings.NewReader(content), "")
		assert.ErrorIs(t, err, ErrSyntax, content)
	}
	_, err := ParseFile(filepath.Join(t.TempDir(), "missing.cue"))
	require.ErrorContains(t, err, "open cue sheet")
}

func TestIsCueFile(t *testing.T) {
	t.Parallel()

	assert.True(t, IsCueFile("a/b.CUE"))
	assert.True(t, IsCueFile("b.cue"))
	assert.False(t, IsCueFile("b.bin"))
	assert.False(t, IsCueFile("cue"))
}
