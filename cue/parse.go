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

package cue

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrSyntax is returned for lines the reader cannot interpret.
var ErrSyntax = errors.New("cue syntax error")

// ParseFile reads a CUE sheet from disk. File names are resolved against
// the sheet's directory.
func ParseFile(cuePath string) (*Sheet, error) {
	f, err := os.Open(cuePath) //nolint:gosec // user-provided path
	if err != nil {
		return nil, fmt.Errorf("open cue sheet: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet, err := Parse(f, filepath.Dir(cuePath))
	if err != nil {
		return nil, err
	}
	sheet.Path = cuePath
	return sheet, nil
}

// Parse reads the FILE, TRACK, PREGAP and INDEX lines of a sheet. Relative
// file names are joined to dir when it is not empty. Other commands are
// ignored.
func Parse(r io.Reader, dir string) (*Sheet, error) {
	sheet := &Sheet{}
	var file, fileType string
	var cur *Track

	scanner := bufio.NewScanner(r)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := strings.TrimSpace(scanner.Text())
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch strings.ToUpper(fields[0]) {
		case "FILE":
			// Extract filename between quotes
			parts := strings.Split(line, "\"")
			if len(parts) < 3 {
				return nil, fmt.Errorf("%w: line %d: unquoted file name", ErrSyntax, lineNo)
			}
			file = strings.TrimSpace(parts[1])
			if dir != "" && !filepath.IsAbs(file) {
				file = filepath.Join(dir, file)
			}
			fileType = strings.ToUpper(strings.TrimSpace(parts[2]))
		case "TRACK":
			if len(fields) < 3 {
				return nil, fmt.Errorf("%w: line %d: incomplete TRACK", ErrSyntax, lineNo)
			}
			n, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: track number %q", ErrSyntax, lineNo, fields[1])
			}
			sheet.Tracks = append(sheet.Tracks, Track{
				File:     file,
				FileType: fileType,
				Number:   n,
				Mode:     strings.ToUpper(fields[2]),
			})
			cur = &sheet.Tracks[len(sheet.Tracks)-1]
		case "PREGAP":
			if cur == nil || len(fields) < 2 {
				return nil, fmt.Errorf("%w: line %d: PREGAP outside a track", ErrSyntax, lineNo)
			}
			frames, err := ParseMSF(fields[1])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			cur.Pregap = frames
		case "INDEX":
			if cur == nil || len(fields) < 3 {
				return nil, fmt.Errorf("%w: line %d: INDEX outside a track", ErrSyntax, lineNo)
			}
			n, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: index number %q", ErrSyntax, lineNo, fields[1])
			}
			frames, err := ParseMSF(fields[2])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			cur.Indexes = append(cur.Indexes, Index{Number: n, Frame: frames})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read cue sheet: %w", err)
	}
	return sheet, nil
}

// ParseMSF converts an mm:ss:ff address to frames.
func ParseMSF(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("%w: bad MSF %q", ErrSyntax, s)
	}
	var v [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("%w: bad MSF %q", ErrSyntax, s)
		}
		v[i] = n
	}
	if v[1] >= 60 || v[2] >= FramesPerSecond {
		return 0, fmt.Errorf("%w: MSF %q out of range", ErrSyntax, s)
	}
	return (v[0]*60+v[1])*FramesPerSecond + v[2], nil
}

// BinFiles returns the distinct file names referenced by the sheet, in order.
func (s *Sheet) BinFiles() []string {
	var files []string
	seen := make(map[string]bool)
	for _, t := range s.Tracks {
		if !seen[t.File] {
			seen[t.File] = true
			files = append(files, t.File)
		}
	}
	return files
}

// IsCueFile checks if the given path is a CUE file.
func IsCueFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".cue")
}
