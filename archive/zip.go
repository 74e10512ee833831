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

	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
)

// ZIPArchive provides access to ZIP archives. Members stored with the
// Zstandard method (93, or the legacy PKWare id 20) are decompressed too.
type ZIPArchive struct {
	reader *zip.ReadCloser
	path   string
}

// OpenZIP opens a ZIP archive.
func OpenZIP(path string) (*ZIPArchive, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open ZIP archive: %w", err)
	}
	reader.RegisterDecompressor(zstd.ZipMethodWinZip, zstd.ZipDecompressor())
	reader.RegisterDecompressor(zstd.ZipMethodPKWare, zstd.ZipDecompressor())

	return &ZIPArchive{
		reader: reader,
		path:   path,
	}, nil
}

// Members lists the files in the ZIP archive.
func (za *ZIPArchive) Members() ([]Member, error) {
	members := make([]Member, 0, len(za.reader.File))
	for _, file := range za.reader.File {
		if file.FileInfo().IsDir() {
			continue
		}
		members = append(members, Member{
			Name: file.Name,
			Size: int64(file.UncompressedSize64), //nolint:gosec // Safe: bounded by ReadMember
		})
	}
	return members, nil
}

// Open opens a member of the ZIP archive.
func (za *ZIPArchive) Open(name string) (io.ReadCloser, int64, error) {
	name = normalize(name)
	for _, file := range za.reader.File {
		if !strings.EqualFold(file.Name, name) {
			continue
		}
		reader, err := file.Open()
		if err != nil {
			return nil, 0, fmt.Errorf("open %s in ZIP: %w", name, err)
		}
		return reader, int64(file.UncompressedSize64), nil //nolint:gosec // Safe: bounded by ReadMember
	}

	return nil, 0, MemberNotFoundError{Archive: za.path, Name: name}
}

// Close closes the ZIP archive.
func (za *ZIPArchive) Close() error {
	return za.reader.Close() //nolint:wrapcheck // Close error passthrough is intentional
}
