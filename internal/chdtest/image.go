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

// Package chdtest builds small uncompressed CHD V5 images in memory for tests.
package chdtest

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// Geometry of a CD CHD.
const (
	HeaderSize  = 124
	SectorSize  = 2352
	FrameSize   = 2448
	TagCHT2     = 0x43485432
	TagCHTR     = 0x43485452
	TagCHGD     = 0x43484744
	subcodeFill = 0xEE
)

// Track describes one track of a synthetic image.
type Track struct {
	// Fill writes the raw 2352-byte sector for frame i of the track, in the
	// byte order stored in the CHD. Nil leaves the sector zeroed.
	Fill    func(i int, sector []byte)
	Type    string
	SubType string
	// Payload replaces the generated metadata text when non-empty.
	Payload string
	Number  int
	Frames  int
	Pregap  int
	// Tag defaults to CHT2.
	Tag uint32
}

// Record is an additional metadata entry inserted before the track entries.
type Record struct {
	Payload []byte
	Tag     uint32
}

// Image describes a synthetic CHD.
type Image struct {
	Tracks []Track
	Extra  []Record
	// Unallocated lists hunk indices whose map entry is left at zero.
	Unallocated []int
	// HunkFrames is the number of frames per hunk, 8 when zero.
	HunkFrames int
}

// Layout reports where Build placed each structure.
type Layout struct {
	HunkOffsets []uint64
	MetaOffsets []uint64
	MapOffset   uint64
	DataOffset  uint64
	HunkBytes   uint32
	NumHunks    int
}

// payload returns the metadata text chdman writes for a track.
func (t Track) payload() string {
	if t.Payload != "" {
		return t.Payload
	}
	subType := t.SubType
	if subType == "" {
		subType = "NONE"
	}
	if t.Tag == TagCHTR {
		return fmt.Sprintf("TRACK:%d TYPE:%s SUBTYPE:%s FRAMES:%d", t.Number, t.Type, subType, t.Frames)
	}
	return fmt.Sprintf("TRACK:%d TYPE:%s SUBTYPE:%s FRAMES:%d PREGAP:%d PGTYPE:%s PGSUB:RW POSTGAP:0",
		t.Number, t.Type, subType, t.Frames, t.Pregap, t.Type)
}

// StartFrames returns the first logical frame of every track, 4-frame aligned.
func (img Image) StartFrames() []int {
	starts := make([]int, len(img.Tracks))
	cursor := 0
	for i, t := range img.Tracks {
		cursor = (cursor + 3) / 4 * 4
		starts[i] = cursor
		cursor += t.Frames
	}
	return starts
}

func (img Image) totalFrames() int {
	starts := img.StartFrames()
	if len(starts) == 0 {
		return 1
	}
	last := len(starts) - 1
	return max(starts[last]+img.Tracks[last].Frames, 1)
}

// Build serialises the image and returns its bytes.
func (img Image) Build() []byte {
	data, _ := img.BuildLayout()
	return data
}

// BuildLayout serialises the image and reports its layout.
func (img Image) BuildLayout() ([]byte, Layout) {
	hunkFrames := img.HunkFrames
	if hunkFrames == 0 {
		hunkFrames = 8
	}
	hunkBytes := hunkFrames * FrameSize
	totalFrames := img.totalFrames()
	numHunks := (totalFrames + hunkFrames - 1) / hunkFrames

	// Logical frame data, subcode filled with a marker.
	logical := make([]byte, numHunks*hunkBytes)
	for f := range totalFrames {
		sub := logical[f*FrameSize+SectorSize : (f+1)*FrameSize]
		for i := range sub {
			sub[i] = subcodeFill
		}
	}
	for ti, start := range img.StartFrames() {
		t := img.Tracks[ti]
		if t.Fill == nil {
			continue
		}
		for i := range t.Frames {
			f := start + i
			t.Fill(i, logical[f*FrameSize:f*FrameSize+SectorSize])
		}
	}

	layout := Layout{MapOffset: HeaderSize, HunkBytes: uint32(hunkBytes), NumHunks: numHunks} //nolint:gosec // test sizes

	// Metadata records follow the map.
	records := append([]Record(nil), img.Extra...)
	for _, t := range img.Tracks {
		tag := t.Tag
		if tag == 0 {
			tag = TagCHT2
		}
		records = append(records, Record{Tag: tag, Payload: append([]byte(t.payload()), 0)})
	}
	cursor := uint64(HeaderSize + numHunks*4)
	for _, r := range records {
		layout.MetaOffsets = append(layout.MetaOffsets, cursor)
		cursor += 16 + uint64(len(r.Payload))
	}
	if len(records) == 0 {
		// Keep the metadata offset inside the file with an empty unknown entry.
		records = append(records, Record{Tag: TagCHGD})
		layout.MetaOffsets = append(layout.MetaOffsets, cursor)
		cursor += 16
	}

	// Hunks start on the next hunk-aligned offset, index 0 is never used.
	firstIndex := (cursor + uint64(hunkBytes) - 1) / uint64(hunkBytes)
	layout.DataOffset = firstIndex * uint64(hunkBytes)
	unallocated := make(map[int]bool, len(img.Unallocated))
	for _, h := range img.Unallocated {
		unallocated[h] = true
	}

	size := layout.DataOffset
	index := firstIndex
	layout.HunkOffsets = make([]uint64, numHunks)
	for h := range numHunks {
		if unallocated[h] {
			continue
		}
		layout.HunkOffsets[h] = index * uint64(hunkBytes)
		index++
		size = index * uint64(hunkBytes)
	}

	out := make([]byte, size)
	copy(out[0:8], "MComprHD")
	binary.BigEndian.PutUint32(out[8:], HeaderSize)
	binary.BigEndian.PutUint32(out[12:], 5)
	binary.BigEndian.PutUint64(out[32:], uint64(totalFrames)*FrameSize) //nolint:gosec // test sizes
	binary.BigEndian.PutUint64(out[40:], layout.MapOffset)
	binary.BigEndian.PutUint64(out[48:], layout.MetaOffsets[0])
	binary.BigEndian.PutUint32(out[56:], uint32(hunkBytes)) //nolint:gosec // test sizes
	binary.BigEndian.PutUint32(out[60:], FrameSize)

	for h, off := range layout.HunkOffsets {
		if off == 0 {
			continue
		}
		binary.BigEndian.PutUint32(out[HeaderSize+h*4:], uint32(off/uint64(hunkBytes))) //nolint:gosec // test sizes
		copy(out[off:off+uint64(hunkBytes)], logical[h*hunkBytes:(h+1)*hunkBytes])
	}

	for i, r := range records {
		off := layout.MetaOffsets[i]
		binary.BigEndian.PutUint32(out[off:], r.Tag)
		out[off+4] = 0x01
		n := len(r.Payload)
		out[off+5], out[off+6], out[off+7] = byte(n>>16), byte(n>>8), byte(n)
		if i+1 < len(records) {
			binary.BigEndian.PutUint64(out[off+8:], layout.MetaOffsets[i+1])
		}
		copy(out[off+16:], r.Payload)
	}

	return out, layout
}

// WriteFile builds the image into dir/name and returns its path.
func (img Image) WriteFile(tb testing.TB, dir, name string) string {
	tb.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, img.Build(), 0o600); err != nil {
		tb.Fatalf("write CHD image: %v", err)
	}
	return path
}

// PatternFill fills every sector byte with a value derived from the frame
// index and a seed, never zero.
func PatternFill(seed byte) func(i int, sector []byte) {
	return func(i int, sector []byte) {
		for j := range sector {
			sector[j] = byte(i*7+j) ^ seed | 0x01
		}
	}
}
