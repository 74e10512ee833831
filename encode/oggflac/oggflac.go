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

// Package oggflac is the Ogg FLAC encoding engine. Tracks are stored
// losslessly as FLAC frames carried in an Ogg stream, following the
// FLAC-in-Ogg mapping: a 0x7F "FLAC" identification packet wrapping
// STREAMINFO, then the remaining metadata blocks, then one packet per frame.
//
// Metadata and frames are packed by this package from the mewkiz/flac block
// and frame types, so the byte stream depends on nothing outside it and the
// self-test result below holds on every platform.
package oggflac

import (
	"fmt"
	"io"
	"math"

	"github.com/mewkiz/flac/frame"
	"github.com/mewkiz/flac/meta"

	"github.com/ZaparooProject/go-chdtoogg/encode"
	"github.com/ZaparooProject/go-chdtoogg/internal/ogg"
)

const (
	// Name identifies the engine in logs and self-test errors.
	Name = "oggflac"

	// Serial is the Ogg logical stream serial number ("CHD2"). It is fixed so
	// identical input always yields identical files.
	Serial = 0x43484432

	// BlockSize is the number of samples per channel in each FLAC frame.
	BlockSize = 4096

	// Vendor is recorded in the Vorbis comment block.
	Vendor = "go-chdtoogg"

	// SelfTestResult is the fingerprint of the reference signal encoded by
	// this engine. Any change to the byte stream must update it.
	SelfTestResult uint32 = 0x0dfdfab1

	// mappingVersion is the FLAC-in-Ogg mapping version, major then minor.
	mappingMajor = 1
	mappingMinor = 0

	flacSignature   = "fLaC"
	blockHeaderSize = 4
	streamInfoSize  = 34
)

// Engine implements encode.Encoder.
type Engine struct{}

// New returns an Ogg FLAC engine.
func New() *Engine {
	return &Engine{}
}

// Name implements encode.Encoder.
func (*Engine) Name() string {
	return Name
}

// ReferenceFingerprint implements encode.Reference.
func (*Engine) ReferenceFingerprint() uint32 {
	return SelfTestResult
}

// Encode implements encode.Encoder. FLAC is lossless, so quality only ends up
// in the QUALITY comment as the equivalent VBR setting.
func (*Engine) Encode(quality int, src encode.SampleSource, sink io.Writer) error {
	info := &meta.StreamInfo{
		BlockSizeMin:  BlockSize,
		BlockSizeMax:  BlockSize,
		SampleRate:    encode.SampleRate,
		NChannels:     encode.Channels,
		BitsPerSample: encode.BitsPerSample,
	}
	comment := &meta.VorbisComment{
		Vendor: Vendor,
		Tags: [][2]string{
			{"ENCODER", Vendor},
			{"QUALITY", encode.FormatVBR(quality)},
		},
	}

	stream := ogg.NewWriter(sink, Serial)
	if err := stream.WritePacket(identificationPacket(streamInfoBlock(info, false), 1), 0); err != nil {
		return err
	}
	// The identification packet must sit alone on the first page.
	if err := stream.Flush(); err != nil {
		return err
	}
	if err := stream.WritePacket(vorbisCommentBlock(comment, true), 0); err != nil {
		return err
	}
	if err := stream.Flush(); err != nil {
		return err
	}

	left := make([]float32, BlockSize)
	right := make([]float32, BlockSize)
	var packet []byte
	var granule int64
	for num := uint64(0); ; num++ {
		n := fill(src, left, right)
		if n == 0 {
			break
		}
		var err error
		packet, err = appendFrame(packet[:0], newFrame(num, left[:n], right[:n]))
		if err != nil {
			return fmt.Errorf("encode frame %d: %w", num, err)
		}
		granule += int64(n)
		if err := stream.WritePacket(packet, granule); err != nil {
			return err
		}
	}
	return stream.Close()
}

// fill pulls from src until the block is full or the source is drained.
func fill(src encode.SampleSource, left, right []float32) int {
	n := 0
	for n < len(left) {
		got := src.ReadSamples(left[n:], right[n:])
		if got == 0 {
			break
		}
		n += got
	}
	return n
}

// identificationPacket wraps STREAMINFO in the first Ogg FLAC packet.
func identificationPacket(streamInfo []byte, extraHeaders int) []byte {
	packet := make([]byte, 0, 9+len(streamInfo))
	packet = append(packet, 0x7F, 'F', 'L', 'A', 'C', mappingMajor, mappingMinor)
	packet = append(packet, byte(extraHeaders>>8), byte(extraHeaders))
	packet = append(packet, flacSignature...)
	return append(packet, streamInfo...)
}

func newFrame(num uint64, left, right []float32) *frame.Frame {
	return &frame.Frame{
		Header: frame.Header{
			HasFixedBlockSize: true,
			BlockSize:         uint16(len(left)), //nolint:gosec // at most BlockSize
			SampleRate:        encode.SampleRate,
			Channels:          frame.ChannelsLR,
			BitsPerSample:     encode.BitsPerSample,
			Num:               num,
		},
		Subframes: []*frame.Subframe{newSubframe(left), newSubframe(right)},
	}
}

// newSubframe quantises a channel back to 16 bits. Digital silence and other
// flat runs become constant subframes, everything else is stored verbatim.
func newSubframe(channel []float32) *frame.Subframe {
	samples := make([]int32, len(channel))
	constant := true
	for i, x := range channel {
		samples[i] = quantize(x)
		if samples[i] != samples[0] {
			constant = false
		}
	}
	pred := frame.PredVerbatim
	if constant {
		pred = frame.PredConstant
	}
	return &frame.Subframe{
		SubHeader: frame.SubHeader{Pred: pred},
		Samples:   samples,
		NSamples:  len(samples),
	}
}

func quantize(x float32) int32 {
	v := math.Round(float64(x) * 32768)
	return int32(min(max(v, math.MinInt16), math.MaxInt16))
}
