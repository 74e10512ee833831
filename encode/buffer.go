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

package encode

// bufferGrowth is the capacity step of Buffer.
const bufferGrowth = 1024 * 1024

// Buffer accumulates encoder output. It grows in fixed 1 MiB steps and its
// Write never fails, so it can be handed to an Encoder as the sink.
type Buffer struct {
	buf    []byte
	chunks int
}

// Write appends p to the buffer.
func (b *Buffer) Write(p []byte) (int, error) {
	if need := len(b.buf) + len(p); need > cap(b.buf) {
		newCap := cap(b.buf)
		for newCap < need {
			newCap += bufferGrowth
		}
		grown := make([]byte, len(b.buf), newCap)
		copy(grown, b.buf)
		b.buf = grown
	}
	b.buf = append(b.buf, p...)
	b.chunks++
	return len(p), nil
}

// Bytes returns the accumulated output. The slice aliases the buffer.
func (b *Buffer) Bytes() []byte {
	return b.buf
}

// Len returns the number of bytes written.
func (b *Buffer) Len() int {
	return len(b.buf)
}

// Chunks returns the number of Write calls received.
func (b *Buffer) Chunks() int {
	return b.chunks
}

// Reset empties the buffer and releases its storage.
func (b *Buffer) Reset() {
	b.buf = nil
	b.chunks = 0
}
