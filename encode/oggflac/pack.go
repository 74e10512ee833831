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

package oggflac

import (
	"encoding/binary"
	"fmt"
	"math/bits"

	"github.com/mewkiz/flac/frame"
	"github.com/mewkiz/flac/meta"
)

// Subframe type codes.
const (
	subframeConstant = 0x00
	subframeVerbatim = 0x01
)

// bitWriter packs MSB-first bit fields into buf. Fields are at most 56 bits.
type bitWriter struct {
	buf   []byte
	acc   uint64
	nbits uint
}

func (w *bitWriter) writeBits(v uint64, n uint) {
	w.acc = w.acc<<n | v&(1<<n-1)
	w.nbits += n
	for w.nbits >= 8 {
		w.nbits -= 8
		w.buf = append(w.buf, byte(w.acc>>w.nbits))
	}
}

func (w *bitWriter) writeBool(b bool) {
	if b {
		w.writeBits(1, 1)
	} else {
		w.writeBits(0, 1)
	}
}

// align zero-pads to the next byte boundary.
func (w *bitWriter) align() {
	if w.nbits > 0 {
		w.writeBits(0, 8-w.nbits)
	}
}

// writeUTF8 stores x in the extended UTF-8 coding FLAC uses for frame
// numbers (up to 36 bits).
func (w *bitWriter) writeUTF8(x uint64) {
	if x < 0x80 {
		w.writeBits(x, 8)
		return
	}
	var n uint
	switch {
	case x < 0x800:
		n = 1
	case x < 0x10000:
		n = 2
	case x < 0x200000:
		n = 3
	case x < 0x4000000:
		n = 4
	case x < 0x80000000:
		n = 5
	default:
		n = 6
	}
	lead := uint64(0xFF<<(7-n)) & 0xFF
	w.writeBits(lead|x>>(6*n), 8)
	for i := n; i > 0; i-- {
		w.writeBits(0x80|x>>(6*(i-1))&0x3F, 8)
	}
}

func (w *bitWriter) writeBlockHeader(last bool, typ meta.Type, length int) {
	w.writeBool(last)
	w.writeBits(uint64(typ), 7)
	w.writeBits(uint64(length), 24) //nolint:gosec // block sizes are small
}

// streamInfoBlock packs a STREAMINFO metadata block, header included.
func streamInfoBlock(info *meta.StreamInfo, last bool) []byte {
	w := bitWriter{buf: make([]byte, 0, blockHeaderSize+streamInfoSize)}
	w.writeBlockHeader(last, meta.TypeStreamInfo, streamInfoSize)
	w.writeBits(uint64(info.BlockSizeMin), 16)
	w.writeBits(uint64(info.BlockSizeMax), 16)
	w.writeBits(uint64(info.FrameSizeMin), 24)
	w.writeBits(uint64(info.FrameSizeMax), 24)
	w.writeBits(uint64(info.SampleRate), 20)
	w.writeBits(uint64(info.NChannels-1), 3)
	w.writeBits(uint64(info.BitsPerSample-1), 5)
	w.writeBits(info.NSamples, 36)
	return append(w.buf, info.MD5sum[:]...)
}

// vorbisCommentBlock packs a VORBIS_COMMENT metadata block. Its fields are
// little-endian, unlike the rest of FLAC.
func vorbisCommentBlock(comment *meta.VorbisComment, last bool) []byte {
	var body []byte
	body = binary.LittleEndian.AppendUint32(body, uint32(len(comment.Vendor))) //nolint:gosec // short strings
	body = append(body, comment.Vendor...)
	body = binary.LittleEndian.AppendUint32(body, uint32(len(comment.Tags))) //nolint:gosec // short list
	for _, tag := range comment.Tags {
		vector := tag[0] + "=" + tag[1]
		body = binary.LittleEndian.AppendUint32(body, uint32(len(vector))) //nolint:gosec // short strings
		body = append(body, vector...)
	}
	w := bitWriter{buf: make([]byte, 0, blockHeaderSize+len(body))}
	w.writeBlockHeader(last, meta.TypeVorbisComment, len(body))
	return append(w.buf, body...)
}

// appendFrame packs f onto dst. Only constant and verbatim subframes with
// independent channels are produced.
func appendFrame(dst []byte, f *frame.Frame) ([]byte, error) {
	start := len(dst)
	w := bitWriter{buf: dst}

	sizeCode, sizeBits := blockSizeCode(f.BlockSize)
	w.writeBits(0x3FFE, 14)
	w.writeBits(0, 1)
	w.writeBool(!f.HasFixedBlockSize)
	w.writeBits(sizeCode, 4)
	w.writeBits(sampleRateCode(f.SampleRate), 4)
	w.writeBits(uint64(f.Channels.Count()-1), 4) //nolint:gosec // 1..8 channels
	w.writeBits(sampleSizeCode(f.BitsPerSample), 3)
	w.writeBits(0, 1)
	w.writeUTF8(f.Num)
	if sizeBits > 0 {
		w.writeBits(uint64(f.BlockSize-1), sizeBits)
	}
	w.writeBits(uint64(crc8(w.buf[start:])), 8)

	bps := uint(f.BitsPerSample)
	for i, sub := range f.Subframes {
		if len(sub.Samples) != int(f.BlockSize) {
			return dst, fmt.Errorf("subframe %d holds %d samples, frame %d", i, len(sub.Samples), f.BlockSize)
		}
		w.writeBits(0, 1)
		switch sub.Pred {
		case frame.PredConstant:
			w.writeBits(subframeConstant, 6)
			w.writeBits(0, 1)
			w.writeBits(uint64(uint32(sub.Samples[0])), bps) //nolint:gosec // two's complement bits
		case frame.PredVerbatim:
			w.writeBits(subframeVerbatim, 6)
			w.writeBits(0, 1)
			for _, s := range sub.Samples {
				w.writeBits(uint64(uint32(s)), bps) //nolint:gosec // two's complement bits
			}
		default:
			return dst, fmt.Errorf("subframe %d: unsupported prediction %v", i, sub.Pred)
		}
	}
	w.align()
	return binary.BigEndian.AppendUint16(w.buf, crc16(w.buf[start:])), nil
}

// blockSizeCode returns the frame header code for n samples and the width of
// the trailing explicit size, if one is needed.
func blockSizeCode(n uint16) (code uint64, suffixBits uint) {
	switch {
	case n == 192:
		return 0x1, 0
	case n == 576 || n == 1152 || n == 2304 || n == 4608:
		return 0x2 + uint64(bits.TrailingZeros16(n/576)), 0
	case n >= 256 && n <= 32768 && n&(n-1) == 0:
		return 0x8 + uint64(bits.TrailingZeros16(n/256)), 0
	case n <= 256:
		return 0x6, 8
	default:
		return 0x7, 16
	}
}

// sampleRateCode returns the frame header code for rate, or 0 to defer to
// STREAMINFO.
func sampleRateCode(rate uint32) uint64 {
	switch rate {
	case 88200:
		return 0x1
	case 176400:
		return 0x2
	case 192000:
		return 0x3
	case 8000:
		return 0x4
	case 16000:
		return 0x5
	case 22050:
		return 0x6
	case 24000:
		return 0x7
	case 32000:
		return 0x8
	case 44100:
		return 0x9
	case 48000:
		return 0xA
	case 96000:
		return 0xB
	}
	return 0
}

// sampleSizeCode returns the frame header code for bps, or 0 to defer to
// STREAMINFO.
func sampleSizeCode(bps uint8) uint64 {
	switch bps {
	case 8:
		return 0x1
	case 12:
		return 0x2
	case 16:
		return 0x4
	case 20:
		return 0x5
	case 24:
		return 0x6
	case 32:
		return 0x7
	}
	return 0
}

// Frame checksums: CRC-8 (poly 0x07) over the header and CRC-16 (poly 0x8005)
// over the whole frame, both MSB-first with a zero initial value.
var (
	crc8Table  = makeCRCTable(8, 0x07)
	crc16Table = makeCRCTable(16, 0x8005)
)

func makeCRCTable(width uint, poly uint16) [256]uint16 {
	var table [256]uint16
	top := uint16(1) << (width - 1)
	mask := uint16(1<<width - 1)
	for i := range table {
		r := uint16(i) << (width - 8) //nolint:gosec // i < 256
		for range 8 {
			if r&top != 0 {
				r = r<<1 ^ poly
			} else {
				r <<= 1
			}
		}
		table[i] = r & mask
	}
	return table
}

func crc8(data []byte) uint8 {
	var crc uint8
	for _, b := range data {
		crc = uint8(crc8Table[crc^b])
	}
	return crc
}

func crc16(data []byte) uint16 {
	var crc uint16
	for _, b := range data {
		crc = crc<<8 ^ crc16Table[byte(crc>>8)^b]
	}
	return crc
}
