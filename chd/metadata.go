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
	"strconv"

	ibinary "github.com/ZaparooProject/go-chdtoogg/internal/binary"
)

// Metadata tag constants (as 4-byte big-endian integers)
const (
	// MetaTagCHT2 is the CD Track v2 metadata tag ("CHT2")
	MetaTagCHT2 = 0x43485432

	// MetaTagCHTR is the CD Track v1 metadata tag ("CHTR")
	MetaTagCHTR = 0x43485452

	// metadataHeaderSize is the size of the fixed part of a metadata entry.
	metadataHeaderSize = 16

	// maxTypeLen is the longest TYPE or SUBTYPE token accepted in a track payload.
	maxTypeLen = 30
)

// metadataEntry represents a metadata entry header from the CHD file.
type metadataEntry struct {
	Offset uint64
	Next   uint64
	Tag    uint32
	Length uint32
	Flags  uint8
}

// parseTracks walks the metadata chain starting at offset and returns the CD
// tracks in chain order, each placed at the next 4-frame boundary after the
// previous one. Every track must end within the capacity frames of the map.
func parseTracks(reader io.ReaderAt, offset uint64, fileSize int64, capacity uint64) ([]Track, error) {
	var tracks []Track
	visited := make(map[uint64]bool) // Track visited offsets to detect loops
	cursor := 0

	for entries := 0; offset != 0; entries++ {
		// Detect circular references
		if visited[offset] {
			return nil, FormatError{Reason: fmt.Sprintf("circular metadata chain at offset %d", offset)}
		}
		visited[offset] = true

		// Limit total entries to prevent runaway chains
		if entries >= MaxMetadataEntries {
			return nil, FormatError{Reason: fmt.Sprintf("too many metadata entries (> %d)", MaxMetadataEntries)}
		}

		entry, err := readMetadataEntry(reader, offset, fileSize)
		if err != nil {
			return nil, err
		}
		offset = entry.Next

		if entry.Tag != MetaTagCHTR && entry.Tag != MetaTagCHT2 {
			continue
		}

		track, ok, err := readTrackEntry(reader, entry, fileSize)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if len(tracks) >= MaxNumTracks {
			return nil, FormatError{Reason: fmt.Sprintf("too many tracks (> %d)", MaxNumTracks)}
		}

		track.StartFrame = alignFrame(cursor)
		if err := checkFrameRange(track, capacity, fileSize); err != nil {
			return nil, err
		}
		if track.Frames > MaxTrackFrames {
			return nil, FormatError{Reason: fmt.Sprintf("track %d has too many frames (%d > %d)",
				track.Number, track.Frames, MaxTrackFrames)}
		}
		cursor = track.EndFrame()
		tracks = append(tracks, track)
	}

	return tracks, nil
}

// readMetadataEntry reads a single metadata entry header at the given offset.
// Metadata entry format:
//
//	Offset 0: Tag (4 bytes, big-endian)
//	Offset 4: Flags (1 byte)
//	Offset 5: Length (3 bytes, big-endian)
//	Offset 8: Next offset (8 bytes, big-endian)
//	Offset 16: Data (length bytes)
func readMetadataEntry(reader io.ReaderAt, offset uint64, fileSize int64) (metadataEntry, error) {
	size := uint64(fileSize) //nolint:gosec // fileSize comes from Stat or a buffer length
	if offset > size || size-offset < metadataHeaderSize {
		return metadataEntry{}, TruncatedFileError{
			What: "metadata entry", Offset: offset, Length: metadataHeaderSize, FileSize: fileSize,
		}
	}

	headerBuf := make([]byte, metadataHeaderSize)
	//nolint:gosec // Safe: offset checked against file size above
	if err := ibinary.ReadAt(reader, int64(offset), headerBuf); err != nil {
		return metadataEntry{}, fmt.Errorf("read metadata header at %d: %w", offset, err)
	}

	return metadataEntry{
		Offset: offset,
		Tag:    binary.BigEndian.Uint32(headerBuf[0:4]),
		Flags:  headerBuf[4],
		Length: ibinary.Uint24BE(headerBuf[5:8]),
		Next:   binary.BigEndian.Uint64(headerBuf[8:16]),
	}, nil
}

// readTrackEntry reads and parses the payload of a CHTR or CHT2 entry.
// ok is false when the payload does not carry the four leading track fields.
func readTrackEntry(reader io.ReaderAt, entry metadataEntry, fileSize int64) (track Track, ok bool, err error) {
	size := uint64(fileSize) //nolint:gosec // fileSize comes from Stat or a buffer length
	dataOffset := entry.Offset + metadataHeaderSize
	if size < dataOffset+uint64(entry.Length) {
		return Track{}, false, TruncatedFileError{
			What: "metadata payload", Offset: dataOffset, Length: uint64(entry.Length), FileSize: fileSize,
		}
	}

	data := make([]byte, entry.Length)
	//nolint:gosec // Safe: payload range checked against file size above
	if err := ibinary.ReadAt(reader, int64(dataOffset), data); err != nil {
		return Track{}, false, fmt.Errorf("read metadata payload at %d: %w", dataOffset, err)
	}

	track, fields := scanTrackPayload(ibinary.CleanString(data), entry.Tag == MetaTagCHT2)
	if fields < 4 {
		return Track{}, false, nil
	}
	track.Tag = entry.Tag
	track.DataSize = trackTypeToDataSize(track.Type)

	if track.Number < 1 || track.Number > MaxNumTracks {
		return Track{}, false, FormatError{Reason: fmt.Sprintf("track number %d out of range", track.Number)}
	}
	if track.Frames < 0 || track.Pregap < 0 {
		return Track{}, false, FormatError{
			Reason: fmt.Sprintf("track %d has negative geometry (frames %d, pregap %d)",
				track.Number, track.Frames, track.Pregap),
		}
	}
	if track.Pregap > track.Frames {
		return Track{}, false, GeometryError{Track: track.Number, Frames: track.Frames, Pregap: track.Pregap}
	}
	return track, true, nil
}

// scanTrackPayload matches a track payload against
//
//	TRACK:<n> TYPE:<s> SUBTYPE:<s> FRAMES:<n>[ PREGAP:<n>]
//
// field by field and returns how many fields were converted before the first
// mismatch. PREGAP is only looked for in CHT2 payloads; anything after the
// last field, such as PGTYPE or POSTGAP, is ignored.
func scanTrackPayload(payload string, v2 bool) (Track, int) {
	var track Track
	sc := payloadScanner{s: payload}
	fields := 0

	steps := []func() bool{
		func() bool { return sc.key("TRACK:", true) && sc.number(&track.Number) },
		func() bool { return sc.key("TYPE:", false) && sc.word(&track.Type) },
		func() bool { return sc.key("SUBTYPE:", false) && sc.word(&track.SubType) },
		func() bool { return sc.key("FRAMES:", false) && sc.number(&track.Frames) },
	}
	if v2 {
		steps = append(steps, func() bool { return sc.key("PREGAP:", false) && sc.number(&track.Pregap) })
	}

	for _, step := range steps {
		if !step() {
			break
		}
		fields++
	}
	return track, fields
}

// payloadScanner is a cursor over a metadata payload with scanf-like matching:
// whitespace between fields is optional and repeatable, keys match exactly.
type payloadScanner struct {
	s   string
	pos int
}

func (p *payloadScanner) skipSpace() {
	for p.pos < len(p.s) && isSpace(p.s[p.pos]) {
		p.pos++
	}
}

// key matches a literal key, optionally preceded by whitespace.
func (p *payloadScanner) key(lit string, first bool) bool {
	if !first {
		p.skipSpace()
	}
	if len(p.s)-p.pos < len(lit) || p.s[p.pos:p.pos+len(lit)] != lit {
		return false
	}
	p.pos += len(lit)
	return true
}

// number converts an optionally signed decimal integer.
func (p *payloadScanner) number(dst *int) bool {
	p.skipSpace()
	start := p.pos
	if p.pos < len(p.s) && (p.s[p.pos] == '-' || p.s[p.pos] == '+') {
		p.pos++
	}
	digits := p.pos
	for p.pos < len(p.s) && p.s[p.pos] >= '0' && p.s[p.pos] <= '9' {
		p.pos++
	}
	if p.pos == digits {
		p.pos = start
		return false
	}
	n, err := strconv.Atoi(p.s[start:p.pos])
	if err != nil {
		return false
	}
	*dst = n
	return true
}

// word converts a run of up to maxTypeLen non-space characters.
func (p *payloadScanner) word(dst *string) bool {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.s) && !isSpace(p.s[p.pos]) && p.pos-start < maxTypeLen {
		p.pos++
	}
	if p.pos == start {
		return false
	}
	*dst = p.s[start:p.pos]
	return true
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}
