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

// Package encode defines the boundary between track extraction and the audio
// encoder: a pull-based PCM source, a push-based byte sink and the engine
// interface that connects them.
package encode

import (
	"fmt"
	"io"
)

// Quality levels accepted on the command line.
const (
	MinQuality     = 0
	MaxQuality     = 10
	DefaultQuality = 8
)

// CD-DA stream parameters.
const (
	SampleRate    = 44100
	Channels      = 2
	BitsPerSample = 16
	// BytesPerPair is the size of one interleaved stereo sample pair.
	BytesPerPair = Channels * BitsPerSample / 8
)

// SampleSource is pulled by an Encoder for stereo PCM. ReadSamples fills at
// most min(len(left), len(right)) pairs with samples normalised to [-1, 1)
// and returns how many it wrote. A return of 0 signals end of input.
type SampleSource interface {
	ReadSamples(left, right []float32) int
}

// Encoder turns PCM pulled from a SampleSource into a compressed stream.
// Every compressed chunk is pushed to sink with a single Write call, in
// stream order. Encoders must be deterministic: the same samples and quality
// always produce the same chunks.
type Encoder interface {
	Name() string
	Encode(quality int, src SampleSource, sink io.Writer) error
}

// ClampQuality limits a quality level to [MinQuality, MaxQuality].
func ClampQuality(q int) int {
	return min(max(q, MinQuality), MaxQuality)
}

// VBRQuality maps a 0-10 quality level onto the encoder's -0.1..1.0 VBR scale.
func VBRQuality(q int) float32 {
	return -0.1 + float32(ClampQuality(q))*0.11
}

// FormatVBR renders a VBR quality with three decimals for stream comments.
func FormatVBR(q int) string {
	return fmt.Sprintf("%.3f", VBRQuality(q))
}
