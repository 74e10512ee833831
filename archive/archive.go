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

// Package archive opens CHD images stored inside ZIP, 7z and RAR archives.
package archive

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// MaxMemberSize bounds the size of a member buffered in memory.
const MaxMemberSize = 2 << 30

// Member describes a file stored in an archive.
type Member struct {
	Name string // Full path within archive
	Size int64  // Uncompressed size
}

// Archive provides read access to the files within an archive.
type Archive interface {
	// Members lists the files in the archive, skipping directories.
	Members() ([]Member, error)

	// Open opens a member for reading. Names match case-insensitively.
	// Returns the reader and the uncompressed size.
	Open(name string) (io.ReadCloser, int64, error)

	// Close closes the archive.
	Close() error
}

// Open opens an archive file based on its extension.
// Supported formats: .zip, .7z, .rar
func Open(path string) (Archive, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".zip":
		return OpenZIP(path)
	case ".7z":
		return OpenSevenZip(path)
	case ".rar":
		return OpenRAR(path)
	default:
		return nil, FormatError{Format: ext}
	}
}

// IsArchiveExtension checks if an extension is a supported archive format.
func IsArchiveExtension(ext string) bool {
	switch strings.ToLower(ext) {
	case ".zip", ".7z", ".rar":
		return true
	default:
		return false
	}
}

// ReadMember reads a whole member into memory.
func ReadMember(arc Archive, name string) ([]byte, error) {
	reader, size, err := arc.Open(name)
	if err != nil {
		return nil, err
	}
	defer func() { _ = reader.Close() }()

	if size < 0 || size > MaxMemberSize {
		return nil, FormatError{Format: filepath.Ext(name), Reason: fmt.Sprintf("member %s is %d bytes", name, size)}
	}
	data := make([]byte, size)
	if _, err := io.ReadFull(reader, data); err != nil {
		return nil, fmt.Errorf("read %s from archive: %w", name, err)
	}
	return data, nil
}

// normalize converts a member name to the forward-slash form archives use.
func normalize(name string) string {
	return filepath.ToSlash(name)
}
