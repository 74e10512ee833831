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

package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ZaparooProject/go-chdtoogg/archive"
	"github.com/ZaparooProject/go-chdtoogg/config"
	"github.com/ZaparooProject/go-chdtoogg/convert"
	"github.com/ZaparooProject/go-chdtoogg/logging"
	"github.com/ZaparooProject/go-chdtoogg/metrics"
)

// Version is injected at build time.
var Version = "dev"

type options struct {
	input       string
	output      string
	configPath  string
	logLevel    string
	logFormat   string
	metricsFile string
	quality     int
	emptyData   bool
	xml         bool
	quiet       bool
}

// newRootCmd builds the chdtoogg command writing the report to stdout and
// diagnostics to stderr.
func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "chdtoogg -i <disc.chd> -o <disc.cue>",
		Short: "Convert uncompressed CD CHD images to CUE/BIN/Ogg",
		Long: `chdtoogg - Extract the tracks of an uncompressed CD CHD image
(chdman createcd -c none) into a CUE sheet, one BIN file per data track
and one Ogg file per audio track.

The input may be a CHD file, an archive holding one (the first .chd is
used), or a path inside an archive such as games.zip/disc.chd.

Examples:
  chdtoogg -i disc.chd -o disc.cue
  chdtoogg -i disc.chd -o disc.cue -q 6 -x > disc.xml
  chdtoogg -i discs.7z/disc.chd -o out/disc.cue -n`,
		Version:       Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, &opts)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.Flags()
	flags.StringVarP(&opts.input, "input", "i", "", "CHD image, archive or archive member to read")
	flags.StringVarP(&opts.output, "output", "o", "", "CUE sheet to write; track files are created next to it")
	flags.IntVarP(&opts.quality, "quality", "q", 0, "audio quality from 0 to 10 (default from config, 8)")
	flags.BoolVarP(&opts.emptyData, "empty-data", "n", false, "replace data tracks with a blank MODE1 track")
	flags.BoolVarP(&opts.xml, "xml", "x", false, "print a DAT stanza for every track file to stdout")
	flags.StringVar(&opts.configPath, "config", "", "configuration file")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error")
	flags.StringVar(&opts.logFormat, "log-format", "", "log format: text or json")
	flags.StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile")
	flags.BoolVar(&opts.quiet, "quiet", false, "disable progress bars")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

// applyFlags overrides configuration values with the flags set on the
// command line.
func applyFlags(flags *pflag.FlagSet, cfg *config.Config, opts *options) {
	if flags.Changed("quality") {
		cfg.Quality = opts.quality
	}
	if flags.Changed("empty-data") {
		cfg.EmptyDataTrack = opts.emptyData
	}
	if flags.Changed("xml") {
		cfg.XML = opts.xml
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if opts.logFormat != "" {
		cfg.Log.Format = opts.logFormat
	}
	if opts.metricsFile != "" {
		cfg.MetricsFile = opts.metricsFile
	}
}

func run(cmd *cobra.Command, opts *options) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyFlags(cmd.Flags(), cfg, opts)

	logger := logging.Setup(cfg.Log, cmd.ErrOrStderr())
	for _, change := range cfg.Normalize() {
		logger.Warn("adjusted setting", slog.String("change", change))
	}

	var m *metrics.Metrics
	if cfg.MetricsFile != "" {
		m = metrics.New()
	}
	var progress io.Writer
	if !opts.quiet {
		progress = cmd.ErrOrStderr()
	}
	convOpts := convert.Options{
		ReportWriter:   cmd.OutOrStdout(),
		Progress:       progress,
		Logger:         logger,
		Metrics:        m,
		CuePath:        opts.output,
		Quality:        cfg.Quality,
		SelfTestCRC:    cfg.SelfTestCRC,
		EmptyDataTrack: cfg.EmptyDataTrack,
		XML:            cfg.XML,
	}

	// The encoder must prove itself before any input is touched.
	if convOpts.SelfTestPassed, err = convert.CheckEncoder(convOpts); err != nil {
		return err //nolint:wrapcheck // already names the encoder
	}

	image, err := archive.OpenCHD(opts.input)
	if err != nil {
		return err //nolint:wrapcheck // archive and chd errors carry the path
	}
	defer func() { _ = image.Close() }()

	result, err := convert.Run(cmd.Context(), image, convOpts)
	if err != nil {
		return err //nolint:wrapcheck // convert errors carry the track and path
	}

	if m != nil {
		if err := m.WriteTextfile(cfg.MetricsFile); err != nil {
			return err //nolint:wrapcheck // metrics wraps with the path
		}
	}

	logger.Info("conversion finished",
		slog.String("cue", result.CuePath),
		slog.Int("tracks", len(result.Tracks)),
		slog.String("selftest", fmt.Sprintf("%08x", result.SelfTest)))
	return nil
}
