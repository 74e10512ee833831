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
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nwaples/rardecode/v2"
)

// RARArchive provides access to RAR archives. RAR is a streaming format,
// so every call rescans the archive from its first header.
type RARArchive struct {
	file *os.File
	path string
}

// OpenRAR opens a RAR archive.
func OpenRAR(path string) (*RARArchive, error) {
	file, err := os.Open(path) //nolint:gosec // User-provided path is expected
	if err != nil {
		return nil, fmt.Errorf("open RAR archive: %w", err)
	}

	return &RARArchive{file: file, path: path}, nil
}

// scan walks the archive headers until visit returns true or the
// archive ends. It returns the reader positioned at the matching member.
func (ra *RARArchive) scan(visit func(*rardecode.FileHeader) bool) (*rardecode.Reader, error) {
	if _, err := ra.file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek RAR archive: %w", err)
	}
	reader, err := rardecode.NewReader(ra.file)
	if err != nil {
		return nil, fmt.Errorf("create RAR reader: %w", err)
	}

	for {
		header, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read RAR header: %w", err)
		}
		if !header.IsDir && visit(header) {
			return reader, nil
		}
	}
}

// Members lists the files in the RAR archive.
func (ra *RARArchive) Members() ([]Member, error) {
	var members []Member //nolint:prealloc // RAR file count unknown until full scan
	_, err := ra.scan(func(h *rardecode.FileHeader) bool {
		members = append(members, Member{Name: h.Name, Size: h.UnPackedSize})
		return false
	})
	if err != nil {
		return nil, err
	}
	return members, nil
}

// Open opens a member of the RAR archive.
func (ra *RARArchive) Open(name string) (io.ReadCloser, int64, error) {
	name = normalize(name)
	var size int64
	reader, err := ra.scan(func(h *rardecode.FileHeader) bool {
		size = h.UnPackedSize
		return strings.EqualFold(h.Name, name)
	})
	if err != nil {
		return nil, 0, err
	}
	if reader == nil {
		return nil, 0, MemberNotFoundError{Archive: ra.path, Name: name}
	}
	return io.NopCloser(reader), size, nil
}

// Close closes the RAR archive.
func (ra *RARArchive) Close() error {
	return ra.file.Close() //nolint:wrapcheck // Close error passthrough is intentional
}
