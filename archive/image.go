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
	"bytes"
	"fmt"

	"github.com/ZaparooProject/go-chdtoogg/chd"
)

// OpenCHD opens a CHD image from a plain file, from the first CHD member
// of an archive, or from an archive member path. Archive members are
// buffered in memory before parsing.
func OpenCHD(path string) (*chd.CHD, error) {
	p, err := ParsePath(path)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return chd.Open(path) //nolint:wrapcheck // chd errors are already descriptive
	}

	arc, err := Open(p.ArchivePath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = arc.Close() }()

	name := p.Member
	if name == "" {
		if name, err = DetectCHD(arc, p.ArchivePath); err != nil {
			return nil, err
		}
	}

	data, err := ReadMember(arc, name)
	if err != nil {
		return nil, err
	}
	image, err := chd.NewReader(bytes.NewReader(data), int64(len(data)), p.ArchivePath+"/"+name)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	return image, nil
}
