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

// PCMSource serves interleaved 16-bit little-endian stereo PCM as normalised
// float samples.
type PCMSource struct {
	// OnProgress, when set, is called after every pull with the number of
	// PCM bytes consumed so far and the total.
	OnProgress func(done, total int64)
	pcm        []byte
	pos        int
}

// NewPCMSource returns a source over pcm. A trailing partial pair is ignored.
func NewPCMSource(pcm []byte) *PCMSource {
	return &PCMSource{pcm: pcm[:len(pcm)/BytesPerPair*BytesPerPair]}
}

// ReadSamples implements SampleSource.
func (s *PCMSource) ReadSamples(left, right []float32) int {
	n := min(len(left), len(right), (len(s.pcm)-s.pos)/BytesPerPair)
	p := s.pcm[s.pos:]
	for i := range n {
		left[i] = float32(int16(uint16(p[4*i])|uint16(p[4*i+1])<<8)) / 32768
		right[i] = float32(int16(uint16(p[4*i+2])|uint16(p[4*i+3])<<8)) / 32768
	}
	s.pos += n * BytesPerPair
	if s.OnProgress != nil {
		s.OnProgress(int64(s.pos), int64(len(s.pcm)))
	}
	return n
}

// Remaining returns the number of sample pairs not yet read.
func (s *PCMSource) Remaining() int {
	return (len(s.pcm) - s.pos) / BytesPerPair
}

// MonoSource serves the same float samples on both channels.
type MonoSource struct {
	samples []float32
	pos     int
}

// NewMonoSource returns a source that duplicates samples onto left and right.
func NewMonoSource(samples []float32) *MonoSource {
	return &MonoSource{samples: samples}
}

// ReadSamples implements SampleSource.
func (s *MonoSource) ReadSamples(left, right []float32) int {
	n := min(len(left), len(right), len(s.samples)-s.pos)
	copy(left, s.samples[s.pos:s.pos+n])
	copy(right, s.samples[s.pos:s.pos+n])
	s.pos += n
	return n
}
