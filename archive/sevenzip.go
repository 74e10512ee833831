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

package archive

import (
	"fmt"
	"io"
	"strings"

	"github.com/bodgit/sevenzip"
)

// SevenZipArchive provides access to 7z archives.
type SevenZipArchive struct {
	reader *sevenzip.ReadCloser
	path   string
}

// OpenSevenZip opens a 7z archive.
func OpenSevenZip(path string) (*SevenZipArchive, error) {
	reader, err := sevenzip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open 7z archive: %w", err)
	}

	return &SevenZipArchive{reader: reader, path: path}, nil
}

// Members lists the files in the 7z archive.
func (sza *SevenZipArchive) Members() ([]Member, error) {
	members := make([]Member, 0, len(sza.reader.File))
	for _, file := range sza.reader.File {
		if file.FileInfo().IsDir() {
			continue
		}
		members = append(members, Member{
			Name: file.Name,
			Size: int64(file.UncompressedSize), //nolint:gosec // Safe: bounded by ReadMember
		})
	}
	return members, nil
}

// Open opens a member of the 7z archive. Solid blocks are decompressed
// from their start, so opening a late member can take a while.
func (sza *SevenZipArchive) Open(name string) (io.ReadCloser, int64, error) {
	name = normalize(name)
	for _, file := range sza.reader.File {
		if !strings.EqualFold(file.Name, name) {
			continue
		}
		reader, err := file.Open()
		if err != nil {
			return nil, 0, fmt.Errorf("open %s in 7z: %w", name, err)
		}
		return reader, int64(file.UncompressedSize), nil //nolint:gosec // Safe: bounded by ReadMember
	}

	return nil, 0, MemberNotFoundError{Archive: sza.path, Name: name}
}

// Close closes the 7z archive.
func (sza *SevenZipArchive) Close() error {
	return sza.reader.Close() //nolint:wrapcheck // Close error passthrough is intentional
}
