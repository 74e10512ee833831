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
	"os"
	"path/filepath"
	"slices"

	"github.com/ZaparooProject/go-chdtoogg/chd"
	"github.com/ZaparooProject/go-chdtoogg/cue"
)

// assembler collects CUE stanzas by track number.
type assembler struct {
	stanzas map[int]cue.Track
}

func newAssembler() *assembler {
	return &assembler{stanzas: make(map[int]cue.Track)}
}

// reserve claims a track number before its file is written.
func (a *assembler) reserve(number int) error {
	if _, ok := a.stanzas[number]; ok {
		return chd.FormatError{Reason: fmt.Sprintf("duplicate track %d in metadata", number)}
	}
	a.stanzas[number] = cue.Track{}
	return nil
}

func (a *assembler) add(t cue.Track) {
	a.stanzas[t.Number] = t
}

// sheet returns the stanzas as a sheet ordered 1..max. A number without a
// complete stanza is reported together with the number after it.
func (a *assembler) sheet(path string) (*cue.Sheet, error) {
	numbers := make([]int, 0, len(a.stanzas))
	for n := range a.stanzas {
		numbers = append(numbers, n)
	}
	if len(numbers) == 0 {
		return nil, chd.FormatError{Reason: "no CD tracks in metadata"}
	}
	last := slices.Max(numbers)

	sheet := &cue.Sheet{Path: path, Tracks: make([]cue.Track, 0, last)}
	for n := 1; n <= last; n++ {
		t, ok := a.stanzas[n]
		if !ok || t.File == "" {
			return nil, MissingTrackError{Missing: n, Next: n + 1}
		}
		sheet.Tracks = append(sheet.Tracks, t)
	}
	return sheet, nil
}

// writeFile writes a track file, replacing any existing one.
func writeFile(path string, data []byte) (err error) {
	f, err := os.Create(path) //nolint:gosec // output path chosen by the user
	if err != nil {
		return WriteError{Path: path, Err: err}
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = WriteError{Path: path, Err: cerr}
		}
	}()
	if _, err := f.Write(data); err != nil {
		return WriteError{Path: path, Err: err}
	}
	return nil
}

// writeAtomic writes data to a temporary file next to path and renames it
// into place, so readers never see a partial file.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return WriteError{Path: path, Err: err}
	}
	tmpPath := tmp.Name()
	cleanup := func(cause error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return WriteError{Path: path, Err: cause}
	}

	if _, err := tmp.Write(data); err != nil {
		return cleanup(err)
	}
	if err := tmp.Close(); err != nil {
		return cleanup(err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil { //nolint:gosec // CUE sheets are not secret
		return cleanup(err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return cleanup(err)
	}
	return nil
}
