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

// Package report renders the DAT-style XML stanzas that describe each
// converted track: a <rom> element for the written file and a <source>
// child for the track as it was stored in the CHD.
package report

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/ZaparooProject/go-chdtoogg/checksum"
)

// FramesPerSecond is the CD frame rate used by durations.
const FramesPerSecond = 75

// AudioStats are the audio-only <source> attributes.
type AudioStats struct {
	// InZeros and OutZeros count the leading and trailing zero bytes of the
	// whole track, pregap included.
	InZeros  int64
	OutZeros int64
	// TrimmedCRC is the CRC32 of the track between those runs.
	TrimmedCRC uint32
	Quality    int
	// NonSilentPregap is set when the pregap holds audio that was dropped.
	NonSilentPregap bool
}

// Source describes a track as it was stored in the CHD. Audio tracks are
// digested after byte-swapping.
type Source struct {
	Audio  *AudioStats
	Digest checksum.Digest
	Frames int
	Pregap int
}

// Rom describes one written track file.
type Rom struct {
	Name   string
	Source Source
	Digest checksum.Digest
	Number int
}

// Duration formats a frame count as mm:ss:ff with minutes wrapping at 100.
func Duration(frames int) string {
	return fmt.Sprintf("%02d:%02d:%02d",
		(frames/FramesPerSecond/60)%100, (frames/FramesPerSecond)%60, frames%FramesPerSecond)
}

// String renders the stanza, indented for inclusion in a <game> element.
func (r Rom) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "\t\t<rom name=\"%s\" size=\"%d\" crc=\"%s\" md5=\"%s\" sha1=\"%s\">\n",
		escape(r.Name), r.Digest.Size, r.Digest.CRCHex(), r.Digest.MD5Hex(), r.Digest.SHA1Hex())

	s := r.Source
	fmt.Fprintf(&b, "\t\t\t<source frames=\"%d\" pregap=\"%d\" duration=\"%s\" size=\"%d\" crc=\"%s\" md5=\"%s\" sha1=\"%s\"",
		s.Frames, s.Pregap, Duration(s.Frames), s.Digest.Size, s.Digest.CRCHex(), s.Digest.MD5Hex(), s.Digest.SHA1Hex())
	if a := s.Audio; a != nil {
		fmt.Fprintf(&b, " in_zeros=\"%d\" out_zeros=\"%d\" trimmed_crc=\"%08x\" quality=\"%d\"",
			a.InZeros, a.OutZeros, a.TrimmedCRC, a.Quality)
		if a.NonSilentPregap {
			b.WriteString(` non_silence_pregap="1"`)
		}
	}
	b.WriteString("/>\n\t\t</rom>\n")
	return b.String()
}

func escape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// Report collects stanzas and prints them in track order.
type Report struct {
	roms map[int]Rom
}

// New returns an empty report.
func New() *Report {
	return &Report{roms: make(map[int]Rom)}
}

// Add records the stanza of a track, replacing any earlier one with the
// same number.
func (r *Report) Add(rom Rom) {
	r.roms[rom.Number] = rom
}

// Len returns the number of stanzas.
func (r *Report) Len() int {
	return len(r.roms)
}

// WriteTo prints every stanza in ascending track order.
func (r *Report) WriteTo(w io.Writer) (int64, error) {
	numbers := make([]int, 0, len(r.roms))
	for n := range r.roms {
		numbers = append(numbers, n)
	}
	slices.Sort(numbers)

	var total int64
	for _, n := range numbers {
		written, err := io.WriteString(w, r.roms[n].String())
		total += int64(written)
		if err != nil {
			return total, fmt.Errorf("write report for track %d: %w", n, err)
		}
	}
	return total, nil
}
