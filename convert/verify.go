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
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/ZaparooProject/go-chdtoogg/checksum"
	"github.com/ZaparooProject/go-chdtoogg/cue"
	"github.com/ZaparooProject/go-chdtoogg/report"
)

// verifySheet reads the written CUE sheet back and checks that it describes
// the same tracks as want and that every file it names exists with the size
// that was written.
func verifySheet(want *cue.Sheet, sizes map[string]int64) error {
	got, err := cue.ParseFile(want.Path)
	if err != nil {
		return WriteError{Path: want.Path, Err: err}
	}
	if len(got.Tracks) != len(want.Tracks) {
		return WriteError{Path: want.Path, Err: fmt.Errorf("reads back %d tracks, wrote %d",
			len(got.Tracks), len(want.Tracks))}
	}
	for i, g := range got.Tracks {
		w := want.Tracks[i]
		if !sameTrack(g, w) {
			return WriteError{Path: want.Path, Err: fmt.Errorf("track %d reads back differently", w.Number)}
		}
	}
	for _, file := range got.BinFiles() {
		info, err := os.Stat(file)
		if err != nil {
			return WriteError{Path: file, Err: err}
		}
		if size, ok := sizes[filepath.Base(file)]; ok && info.Size() != size {
			return WriteError{Path: file, Err: fmt.Errorf("holds %d bytes, wrote %d", info.Size(), size)}
		}
	}
	return nil
}

// sameTrack compares a parsed stanza with the one rendered. Frame offsets are
// compared as rendered, since MSF addresses wrap at 60 minutes.
func sameTrack(got, want cue.Track) bool {
	return got.Number == want.Number && got.Mode == want.Mode &&
		filepath.Base(got.File) == want.File &&
		cue.MSF(got.Pregap) == cue.MSF(want.Pregap) &&
		slices.Equal(renderIndexes(got.Indexes), renderIndexes(want.Indexes))
}

func renderIndexes(indexes []cue.Index) []string {
	out := make([]string, len(indexes))
	for i, idx := range indexes {
		out[i] = fmt.Sprintf("%02d %s", idx.Number, cue.MSF(idx.Frame))
	}
	return out
}

// digestFile hashes a track file as it landed on disk.
func digestFile(path string) (checksum.Digest, error) {
	f, err := os.Open(path) //nolint:gosec // file written by this run
	if err != nil {
		return checksum.Digest{}, WriteError{Path: path, Err: err}
	}
	defer func() { _ = f.Close() }()
	d, err := checksum.Reader(f)
	if err != nil {
		return checksum.Digest{}, WriteError{Path: path, Err: err}
	}
	return d, nil
}

// writeReport renders rep, checks that it parses back into one stanza per
// track and only then copies it to w.
func writeReport(w io.Writer, rep *report.Report) error {
	var buf bytes.Buffer
	if _, err := rep.WriteTo(&buf); err != nil {
		return err //nolint:wrapcheck // bytes.Buffer does not fail
	}
	roms, err := report.Parse(bytes.NewReader(buf.Bytes()))
	if err != nil {
		return fmt.Errorf("rendered report: %w", err)
	}
	if len(roms) != rep.Len() {
		return fmt.Errorf("rendered report holds %d stanzas, expected %d", len(roms), rep.Len())
	}
	if _, err := buf.WriteTo(w); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
