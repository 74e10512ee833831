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

// Package cue builds and reads the CUE sheets that describe the converted
// tracks: one FILE per track, followed by its TRACK and index lines.
package cue

import (
	"fmt"
	"io"
	"strings"
)

// File types written to FILE lines. Audio tracks keep the MP3 keyword that
// emulators and CUE tools accept for compressed audio files.
const (
	FileBinary = "BINARY"
	FileAudio  = "MP3"
)

// ModeAudio is the TRACK mode of audio tracks.
const ModeAudio = "AUDIO"

// ModeRaw is the TRACK mode of the synthetic empty data track.
const ModeRaw = "MODE1/2352"

// FramesPerSecond is the CD frame rate used by MSF addresses.
const FramesPerSecond = 75

const newline = "\r\n"

// Index is an INDEX line: a number and a frame offset into the file.
type Index struct {
	Number int
	Frame  int
}

// Track is one FILE stanza of a sheet.
type Track struct {
	File     string
	FileType string
	Mode     string
	Indexes  []Index
	Number   int
	// Pregap is the PREGAP length in frames. It is only written for audio.
	Pregap int
}

// IsAudio reports whether the track has the AUDIO mode.
func (t Track) IsAudio() bool {
	return t.Mode == ModeAudio
}

// AudioTrack returns the stanza of an audio track. A pregap is declared with
// PREGAP because the encoded file starts after it.
func AudioTrack(file string, number, pregap int) Track {
	return Track{
		File:     file,
		FileType: FileAudio,
		Mode:     ModeAudio,
		Number:   number,
		Pregap:   pregap,
		Indexes:  []Index{{Number: 1}},
	}
}

// DataTrack returns the stanza of a data track stored with its pregap, which
// is addressed with INDEX 00 at the start of the file.
func DataTrack(file, trackType string, number, dataSize, pregap int) Track {
	t := Track{
		File:     file,
		FileType: FileBinary,
		Mode:     DataMode(trackType, dataSize),
		Number:   number,
	}
	if pregap > 0 {
		t.Indexes = []Index{{Number: 0}, {Number: 1, Frame: pregap}}
	} else {
		t.Indexes = []Index{{Number: 1}}
	}
	return t
}

// EmptyDataTrack returns the stanza of the synthetic data track, which is
// always raw MODE1 and never declares a pregap.
func EmptyDataTrack(file string, number int) Track {
	return Track{
		File:     file,
		FileType: FileBinary,
		Mode:     ModeRaw,
		Number:   number,
		Indexes:  []Index{{Number: 1}},
	}
}

// DataMode returns the TRACK mode token of a data track, built from the mode
// digit of its CHD type and its stored sector size: MODE1 with 2048 bytes
// becomes "MODE1/2048", MODE2_RAW becomes "MODE2/2352".
func DataMode(trackType string, dataSize int) string {
	digit := byte('1')
	if len(trackType) > 4 {
		digit = trackType[4]
	}
	return fmt.Sprintf("MODE%c/%04d", digit, dataSize)
}

// MSF formats a frame count as mm:ss:ff.
func MSF(frames int) string {
	return fmt.Sprintf("%02d:%02d:%02d",
		(frames/(60*FramesPerSecond))%60, (frames/FramesPerSecond)%60, frames%FramesPerSecond)
}

// TrackFileName returns the path of a track file next to the CUE sheet:
// the sheet path without its four-character extension, then " (Track NN)"
// and ".ogg" or ".bin".
func TrackFileName(cuePath string, number int, audio bool) string {
	base := cuePath
	if len(base) >= 4 {
		base = base[:len(base)-4]
	}
	ext := "bin"
	if audio {
		ext = "ogg"
	}
	return fmt.Sprintf("%s (Track %02d).%s", base, number, ext)
}

// String renders the stanza with CRLF line endings.
func (t Track) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "FILE \"%s\" %s%s", t.File, t.FileType, newline)
	fmt.Fprintf(&b, "  TRACK %02d %s%s", t.Number, t.Mode, newline)
	if t.IsAudio() && t.Pregap > 0 {
		fmt.Fprintf(&b, "    PREGAP %s%s", MSF(t.Pregap), newline)
	}
	for _, idx := range t.Indexes {
		fmt.Fprintf(&b, "    INDEX %02d %s%s", idx.Number, MSF(idx.Frame), newline)
	}
	return b.String()
}

// Sheet is a CUE sheet.
type Sheet struct {
	Path   string
	Tracks []Track
}

// String renders every stanza in order.
func (s *Sheet) String() string {
	var b strings.Builder
	for _, t := range s.Tracks {
		b.WriteString(t.String())
	}
	return b.String()
}

// WriteTo writes the rendered sheet to w.
func (s *Sheet) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, s.String())
	if err != nil {
		return int64(n), fmt.Errorf("write cue sheet: %w", err)
	}
	return int64(n), nil
}
