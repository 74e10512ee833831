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

// Package convert turns the tracks of a CHD image into a CUE sheet with one
// BIN file per data track and one Ogg file per audio track.
package convert

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ZaparooProject/go-chdtoogg/checksum"
	"github.com/ZaparooProject/go-chdtoogg/chd"
	"github.com/ZaparooProject/go-chdtoogg/cue"
	"github.com/ZaparooProject/go-chdtoogg/emptytrack"
	"github.com/ZaparooProject/go-chdtoogg/encode"
	"github.com/ZaparooProject/go-chdtoogg/encode/oggflac"
	"github.com/ZaparooProject/go-chdtoogg/logging"
	"github.com/ZaparooProject/go-chdtoogg/metrics"
	"github.com/ZaparooProject/go-chdtoogg/report"
)

// Options configures a conversion.
type Options struct {
	// Encoder compresses audio tracks. Defaults to the Ogg FLAC engine.
	Encoder encode.Encoder

	// ReportWriter receives the XML report when XML is set. Defaults to stdout.
	ReportWriter io.Writer

	// Progress receives encoding progress bars for large audio tracks.
	// Nil disables them.
	Progress io.Writer

	// Logger receives diagnostics. Defaults to a discarding logger.
	Logger *slog.Logger

	// Metrics records per-track counters when set.
	Metrics *metrics.Metrics

	// CuePath is the CUE sheet to write. Track files are created next to it.
	CuePath string

	// Quality is the encoder quality, clamped to [0, 10].
	Quality int

	// SelfTestCRC is the fingerprint the encoder self-test must reproduce.
	// 0 uses the result the encoder publishes.
	SelfTestCRC uint32

	// SelfTestPassed is the fingerprint returned by an earlier CheckEncoder
	// call with these options. When set, Run does not repeat the self-test.
	SelfTestPassed uint32

	// EmptyDataTrack replaces every data track with a blank MODE1 track.
	EmptyDataTrack bool

	// XML prints a DAT stanza per track to ReportWriter.
	XML bool
}

// TrackResult describes one written track file.
type TrackResult struct {
	Path   string
	Kind   string
	Number int
	Size   int64
}

// Result describes a finished conversion.
type Result struct {
	CuePath  string
	Tracks   []TrackResult
	SelfTest uint32
}

type converter struct {
	encoder  encode.Encoder
	log      *slog.Logger
	progress io.Writer
	metrics  *metrics.Metrics
	image    *chd.CHD
	opts     Options
	quality  int
}

// Run converts every track of image. The encoder self-test runs first; any
// error aborts the run before the CUE sheet is written. ctx is checked
// between tracks.
func Run(ctx context.Context, image *chd.CHD, opts Options) (*Result, error) {
	if opts.CuePath == "" {
		return nil, fmt.Errorf("%w: no output CUE path", ErrWrite)
	}
	c := &converter{
		image:    image,
		opts:     opts,
		encoder:  encoderOf(opts),
		log:      opts.Logger,
		progress: opts.Progress,
		metrics:  opts.Metrics,
		quality:  encode.ClampQuality(opts.Quality),
	}
	if c.log == nil {
		c.log = logging.Discard()
	}
	if c.opts.ReportWriter == nil {
		c.opts.ReportWriter = os.Stdout
	}
	return c.run(ctx)
}

// CheckEncoder runs the self-test of the encoder opts selects and returns its
// fingerprint. Callers that check before opening the image pass the result
// to Run as SelfTestPassed.
func CheckEncoder(opts Options) (uint32, error) {
	fingerprint, err := encode.SelfTest(encoderOf(opts), opts.SelfTestCRC)
	if err != nil {
		return 0, fmt.Errorf("encoder self-test: %w", err)
	}
	return fingerprint, nil
}

func encoderOf(opts Options) encode.Encoder {
	if opts.Encoder == nil {
		return oggflac.New()
	}
	return opts.Encoder
}

func (c *converter) run(ctx context.Context) (*Result, error) {
	fingerprint := c.opts.SelfTestPassed
	if fingerprint == 0 {
		var err error
		if fingerprint, err = CheckEncoder(c.opts); err != nil {
			return nil, err
		}
	}
	c.metrics.RecordSelfTest(fingerprint)
	c.log.Debug("encoder self-test passed",
		slog.String("encoder", c.encoder.Name()),
		slog.String("result", fmt.Sprintf("0x%08x", fingerprint)))
	if !cue.IsCueFile(c.opts.CuePath) {
		c.log.Warn("output does not end in .cue; track files drop its last four characters",
			slog.String("path", c.opts.CuePath))
	}

	result := &Result{CuePath: c.opts.CuePath, SelfTest: fingerprint}
	asm := newAssembler()
	rep := report.New()

	for _, track := range c.image.Tracks() {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("conversion interrupted before track %d: %w", track.Number, err)
		}
		if err := asm.reserve(track.Number); err != nil {
			return nil, err
		}

		tr, stanza, rom, err := c.convertTrack(track)
		if err != nil {
			return nil, err
		}
		asm.add(stanza)
		if c.opts.XML {
			rep.Add(*rom)
		}
		result.Tracks = append(result.Tracks, *tr)
	}

	sheet, err := asm.sheet(c.opts.CuePath)
	if err != nil {
		return nil, err
	}
	if c.opts.XML {
		if err := writeReport(c.opts.ReportWriter, rep); err != nil {
			return nil, err
		}
	}

	c.log.Info("writing CUE sheet", slog.String("path", c.opts.CuePath), slog.Int("tracks", len(sheet.Tracks)))
	if err := writeAtomic(c.opts.CuePath, []byte(sheet.String())); err != nil {
		return nil, err
	}
	sizes := make(map[string]int64, len(result.Tracks))
	for _, tr := range result.Tracks {
		sizes[filepath.Base(tr.Path)] = tr.Size
	}
	if err := verifySheet(sheet, sizes); err != nil {
		return nil, err
	}
	return result, nil
}

// convertTrack reads, processes and writes one track and returns its CUE
// stanza and, when reporting, its DAT stanza.
func (c *converter) convertTrack(track chd.Track) (*TrackResult, cue.Track, *report.Rom, error) {
	start := time.Now()
	path := cue.TrackFileName(c.opts.CuePath, track.Number, track.IsAudio())
	name := filepath.Base(path)

	verb := "Writing"
	if track.IsAudio() {
		verb = "Compressing"
	}
	c.log.Info(verb+" track", slog.Int("track", track.Number), slog.String("path", path),
		slog.String("type", track.Type), slog.Int("frames", track.Frames), slog.Int("pregap", track.Pregap))

	source, err := c.image.ReadTrack(track)
	if err != nil {
		return nil, cue.Track{}, nil, fmt.Errorf("read track %d: %w", track.Number, err)
	}

	var (
		out    []byte
		stanza cue.Track
		kind   string
		audio  *report.AudioStats
	)
	switch {
	case track.IsAudio():
		res, err := c.encodeAudio(track, source)
		if err != nil {
			return nil, cue.Track{}, nil, err
		}
		out, audio, kind = res.encoded, &res.stats, metrics.KindAudio
		stanza = cue.AudioTrack(name, track.Number, track.Pregap)
	case c.opts.EmptyDataTrack:
		out, err = emptytrack.Bytes()
		if err != nil {
			return nil, cue.Track{}, nil, err
		}
		kind = metrics.KindEmpty
		stanza = cue.EmptyDataTrack(name, track.Number)
	default:
		out, kind = source, metrics.KindData
		stanza = cue.DataTrack(name, track.Type, track.Number, track.DataSize, track.Pregap)
	}

	if err := writeFile(path, out); err != nil {
		return nil, cue.Track{}, nil, err
	}

	var rom *report.Rom
	if c.opts.XML {
		if rom, err = c.reportTrack(track, path, source, audio); err != nil {
			return nil, cue.Track{}, nil, err
		}
	}

	elapsed := time.Since(start)
	c.metrics.ObserveTrack(kind, int64(len(out)), elapsed)
	c.log.Debug("finished track", slog.Int("track", track.Number), slog.Int("bytes", len(out)),
		slog.Duration("elapsed", elapsed))

	return &TrackResult{Number: track.Number, Path: path, Kind: kind, Size: int64(len(out))}, stanza, rom, nil
}

// reportTrack digests the file as written and the reconstructed source. Data
// tracks written unchanged share one digest.
func (c *converter) reportTrack(track chd.Track, path string, source []byte,
	audio *report.AudioStats,
) (*report.Rom, error) {
	c.log.Debug("calculating checksums", slog.Int("track", track.Number))
	romDigest, err := digestFile(path)
	if err != nil {
		return nil, err
	}
	srcDigest := romDigest
	if audio != nil || c.opts.EmptyDataTrack {
		srcDigest = checksum.Bytes(source)
	}
	return &report.Rom{
		Number: track.Number,
		Name:   filepath.Base(path),
		Digest: romDigest,
		Source: report.Source{
			Frames: track.Frames,
			Pregap: track.Pregap,
			Digest: srcDigest,
			Audio:  audio,
		},
	}, nil
}
