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

package convert

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/schollz/progressbar/v3"

	"github.com/ZaparooProject/go-chdtoogg/checksum"
	"github.com/ZaparooProject/go-chdtoogg/chd"
	"github.com/ZaparooProject/go-chdtoogg/encode"
	"github.com/ZaparooProject/go-chdtoogg/report"
)

// progressThreshold is the PCM size from which encoding progress is shown.
const progressThreshold = 1024 * 1024

// SwapBytes swaps the bytes of every 16-bit word in place. CHD stores CD
// audio big-endian; track files and the encoder expect little-endian.
func SwapBytes(buf []byte) {
	for i := 0; i+1 < len(buf); i += 2 {
		buf[i], buf[i+1] = buf[i+1], buf[i]
	}
}

// SilenceSpan returns the number of leading and trailing zero bytes in buf.
// A buffer of only zeros has leading == len(buf) and trailing == 0.
func SilenceSpan(buf []byte) (leading, trailing int64) {
	n := len(buf)
	i := 0
	for i < n && buf[i] == 0 {
		i++
	}
	if i == n {
		return int64(n), 0
	}
	j := n
	for buf[j-1] == 0 {
		j--
	}
	return int64(i), int64(n - j)
}

// audioResult is an encoded audio track and its report attributes.
type audioResult struct {
	stats   report.AudioStats
	encoded []byte
}

// encodeAudio byte-swaps the reconstructed track in place, measures its
// silence and encodes everything after the pregap.
func (c *converter) encodeAudio(track chd.Track, pcm []byte) (*audioResult, error) {
	SwapBytes(pcm)

	inZeros, outZeros := SilenceSpan(pcm)
	pregapBytes := track.PregapSize()
	nonSilent := pregapBytes > inZeros
	if nonSilent {
		c.log.Warn("pregap contains audio data which will be omitted from the encoded track",
			slog.Int("track", track.Number),
			slog.Int64("pregap_bytes", pregapBytes),
			slog.Int64("leading_zeros", inZeros))
	}

	src := encode.NewPCMSource(pcm[pregapBytes:])
	if bar := c.progressBar(track, int64(len(pcm))-pregapBytes); bar != nil {
		src.OnProgress = func(done, _ int64) { _ = bar.Set64(done) }
		defer func() { _ = bar.Finish() }()
	}

	var out encode.Buffer
	if err := c.encoder.Encode(c.quality, src, &out); err != nil {
		return nil, fmt.Errorf("encode track %d with %s: %w", track.Number, c.encoder.Name(), err)
	}

	return &audioResult{
		encoded: out.Bytes(),
		stats: report.AudioStats{
			InZeros:         inZeros,
			OutZeros:        outZeros,
			TrimmedCRC:      checksum.CRC32(pcm[inZeros : int64(len(pcm))-outZeros]),
			Quality:         c.quality,
			NonSilentPregap: nonSilent,
		},
	}, nil
}

func (c *converter) progressBar(track chd.Track, size int64) *progressbar.ProgressBar {
	if c.progress == nil || size < progressThreshold {
		return nil
	}
	return progressbar.NewOptions64(size,
		progressbar.OptionSetWriter(c.progress),
		progressbar.OptionSetDescription(fmt.Sprintf("Compressing track %d", track.Number)),
		progressbar.OptionShowBytes(true),
		progressbar.OptionOnCompletion(func() { _, _ = io.WriteString(c.progress, "\n") }),
	)
}
