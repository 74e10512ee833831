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

// Package ogg writes Ogg bitstream pages (RFC 3533) for a single logical stream.
package ogg

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Page header flags.
const (
	FlagContinued = 0x01
	FlagBOS       = 0x02
	FlagEOS       = 0x04
)

const (
	headerSize  = 27
	maxSegments = 255
	// targetBody is the body size after which a page is flushed.
	targetBody = 8192
	// noGranule marks a page on which no packet completes.
	noGranule = -1
)

// Writer packs packets into Ogg pages with a fixed serial number.
type Writer struct {
	w         io.Writer
	segs      []byte
	body      []byte
	granule   int64
	serial    uint32
	seq       uint32
	continued bool
	completed bool
	closed    bool
}

// NewWriter returns a Writer for the logical stream serial.
func NewWriter(w io.Writer, serial uint32) *Writer {
	return &Writer{
		w:      w,
		serial: serial,
		segs:   make([]byte, 0, maxSegments),
	}
}

// WritePacket appends a packet whose last sample has the given granule
// position. Pages are emitted as they fill up; packets too large for one
// page are continued on the next.
func (o *Writer) WritePacket(packet []byte, granule int64) error {
	if o.closed {
		return fmt.Errorf("ogg: write to closed stream %08x", o.serial)
	}

	lacing := make([]byte, 0, len(packet)/255+1)
	for n := len(packet); ; n -= 255 {
		if n < 255 {
			lacing = append(lacing, byte(n))
			break
		}
		lacing = append(lacing, 255)
	}

	for len(lacing) > 0 {
		take := min(maxSegments-len(o.segs), len(lacing))
		size := 0
		for _, l := range lacing[:take] {
			size += int(l)
		}
		o.segs = append(o.segs, lacing[:take]...)
		o.body = append(o.body, packet[:size]...)
		packet, lacing = packet[size:], lacing[take:]

		if len(lacing) == 0 {
			o.granule = granule
			o.completed = true
		}
		if len(o.segs) == maxSegments || len(o.body) >= targetBody {
			if err := o.flush(0); err != nil {
				return err
			}
			o.continued = len(lacing) > 0
		}
	}
	return nil
}

// Flush emits any pending packets so the next packet starts a new page.
func (o *Writer) Flush() error {
	if len(o.segs) == 0 {
		return nil
	}
	return o.flush(0)
}

// Close emits the final page with the end-of-stream flag set.
func (o *Writer) Close() error {
	if o.closed {
		return nil
	}
	o.closed = true
	return o.flush(FlagEOS)
}

func (o *Writer) flush(flags byte) error {
	if o.continued {
		flags |= FlagContinued
	}
	if o.seq == 0 {
		flags |= FlagBOS
	}
	granule := o.granule
	if !o.completed && flags&FlagEOS == 0 {
		granule = noGranule
	}

	page := make([]byte, headerSize+len(o.segs), headerSize+len(o.segs)+len(o.body))
	copy(page, "OggS")
	page[4] = 0 // stream structure version
	page[5] = flags
	binary.LittleEndian.PutUint64(page[6:], uint64(granule)) //nolint:gosec // -1 encodes as all ones
	binary.LittleEndian.PutUint32(page[14:], o.serial)
	binary.LittleEndian.PutUint32(page[18:], o.seq)
	page[26] = byte(len(o.segs))
	copy(page[headerSize:], o.segs)
	page = append(page, o.body...)
	binary.LittleEndian.PutUint32(page[22:], Checksum(page))

	if _, err := o.w.Write(page); err != nil {
		return fmt.Errorf("ogg: write page %d: %w", o.seq, err)
	}

	o.seq++
	o.segs = o.segs[:0]
	o.body = o.body[:0]
	o.continued = false
	o.completed = false
	return nil
}

// Pages returns the number of pages written.
func (o *Writer) Pages() uint32 {
	return o.seq
}
