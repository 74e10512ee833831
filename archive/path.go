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
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Path is an input path split at an archive boundary.
type Path struct {
	ArchivePath string // Archive file on disk
	Member      string // Member inside the archive, empty to pick the first CHD
}

// archiveExtensions are the supported archive extensions.
var archiveExtensions = []string{".zip", ".7z", ".rar"}

// ParsePath splits a path that may point into an archive, such as
// "/games/disc.zip/disc.chd" or "/games/disc.7z".
//
// It returns nil without an error when the path does not reference an
// existing archive, so callers fall back to opening it as a plain file.
//
//nolint:nilnil // nil,nil is documented API behavior
func ParsePath(path string) (*Path, error) {
	lower := strings.ToLower(filepath.ToSlash(path))

	for _, ext := range archiveExtensions {
		idx := strings.Index(lower, ext+"/")
		if idx == -1 {
			continue
		}
		archivePath := path[:idx+len(ext)]
		ok, err := isFile(archivePath)
		if err != nil {
			return nil, err
		}
		if ok {
			return &Path{ArchivePath: archivePath, Member: path[idx+len(ext)+1:]}, nil
		}
	}

	if !IsArchiveExtension(filepath.Ext(path)) {
		return nil, nil
	}
	ok, err := isFile(path)
	if err != nil || !ok {
		return nil, err
	}
	return &Path{ArchivePath: path}, nil
}

// IsArchivePath reports whether a path names an archive or a member of
// one, without touching the filesystem.
func IsArchivePath(path string) bool {
	lower := strings.ToLower(filepath.ToSlash(path))
	for _, ext := range archiveExtensions {
		if strings.Contains(lower, ext+"/") {
			return true
		}
	}
	return IsArchiveExtension(filepath.Ext(path))
}

func isFile(path string) (bool, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat archive %s: %w", path, err)
	}
	return !info.IsDir(), nil
}
