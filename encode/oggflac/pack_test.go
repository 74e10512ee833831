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
	"encoding/hex"
	"testing"

	"github.com/mewkiz/flac/frame"
	"github.com/mewkiz/flac/meta"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZaparooProject/go-chdtoogg/encode"
)

func TestFrameCRCs(t *testing.T) {
	t.Parallel()

	// Catalogue check values for CRC-8/SMBUS and CRC-16/BUYPASS.
	assert.Equal(t, uint8(0xF4), crc8([]byte("123456789")))
	assert.Equal(t, uint16(0xFEE8), crc16([]byte("123456789")))
	assert.Zero(t, crc8(nil))
}

func TestWriteUTF8(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   uint64
		want string
	}{
		{0, "00"},
		{0x7F, "7f"},
		{0x80, "c280"},
		{0x7FF, "dfbf"},
		{0x10000, "f0908080"},
		{1<<36 - 1, "febfbfbfbfbfbf"},
	}
	for _, tt := range tests {
		var w bitWriter
		w.writeUTF8(tt.in)
		assert.Equal(t, tt.want, hex.EncodeToString(w.buf), "frame number %#x", tt.in)
	}
}

func TestBlockSizeCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		n          uint16
		code       uint64
		suffixBits uint
	}{
		{192, 0x1, 0},
		{576, 0x2, 0},
		{4608, 0x5, 0},
		{256, 0x8, 0},
		{4096, 0xC, 0},
		{32768, 0xF, 0},
		{16, 0x6, 8},
		{904, 0x7, 16},
	}
	for _, tt := range tests {
		code, bits := blockSizeCode(tt.n)
		assert.Equal(t, tt.code, code, "block size %d", tt.n)
		assert.Equal(t, tt.suffixBits, bits, "block size %d", tt.n)
	}
}

func TestMetadataBlocks(t *testing.T) {
	t.Parallel()

	info := &meta.StreamInfo{
		BlockSizeMin:  BlockSize,
		BlockSizeMax:  BlockSize,
		SampleRate:    encode.SampleRate,
		NChannels:     encode.Channels,
		BitsPerSample: encode.BitsPerSample,
	}
	assert.Equal(t,
		"00000022100010000000000000000ac442f00000000000000000000000000000000000000000",
		hex.EncodeToString(streamInfoBlock(info, false)))
	assert.Equal(t, byte(0x80), streamInfoBlock(info, true)[0])

	comment := &meta.VorbisComment{
		Vendor: Vendor,
		Tags:   [][2]string{{"ENCODER", Vendor}, {"QUALITY", "0.450"}},
	}
	assert.Equal(t,
		"8400003b0b000000676f2d636864746f6f67670200000013000000454e434f4445523d676f2d636864746f6f67670d0000005155414c4954593d302e343530",
		hex.EncodeToString(vorbisCommentBlock(comment, true)))
}

func TestAppendFrameConstant(t *testing.T) {
	t.Parallel()

	f := newFrame(2, make([]float32, 16), []float32{
		0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5,
	})
	got, err := appendFrame([]byte("prefix"), f)
	require.NoError(t, err)
	assert.Equal(t, "prefix", string(got[:6]), "appends after existing bytes")
	assert.Equal(t, "fff86918020fb80000000040000860", hex.EncodeToString(got[6:]))
}

func TestAppendFrameErrors(t *testing.T) {
	t.Parallel()

	f := newFrame(0, []float32{0, 0.5}, []float32{0, 0.5})
	f.Subframes[1].Pred = frame.PredFixed
	_, err := appendFrame(nil, f)
	require.ErrorContains(t, err, "unsupported prediction")

	f = newFrame(0, []float32{0, 0.5}, []float32{0, 0.5})
	f.Subframes[0].Samples = f.Subframes[0].Samples[:1]
	_, err = appendFrame(nil, f)
	require.ErrorContains(t, err, "holds 1 samples")
}
