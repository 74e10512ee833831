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
	"path/filepath"
	"strings"
)

// IsCHDFile checks if a filename has the .chd extension.
func IsCHDFile(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".chd")
}

// DetectCHD returns the first CHD image listed in an archive.
func DetectCHD(arc Archive, archivePath string) (string, error) {
	members, err := arc.Members()
	if err != nil {
		return "", fmt.Errorf("list archive files: %w", err)
	}

	for _, m := range members {
		if IsCHDFile(m.Name) {
			return m.Name, nil
		}
	}

	return "", NoCHDError{Archive: archivePath}
}
