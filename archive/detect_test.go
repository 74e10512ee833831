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

package archive_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZaparooProject/go-chdtoogg/archive"
)

func TestIsCHDFile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want bool
	}{
		{"disc.chd", true},
		{"DISC.CHD", true},
		{"folder/disc.Chd", true},
		{"disc.cue", false},
		{"disc.chd.txt", false},
		{"chd", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, archive.IsCHDFile(tt.name), "IsCHDFile(%q)", tt.name)
	}
}

func TestDetectCHD(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	zipPath := createTestZIP(t, tmpDir, "games.zip",
		zipEntry{name: "notes.txt", content: []byte("x")},
		zipEntry{name: "b/Disc 1.CHD", content: []byte("1")},
		zipEntry{name: "a/disc 2.chd", content: []byte("2")},
	)

	arc, err := archive.Open(zipPath)
	require.NoError(t, err)
	defer func() { _ = arc.Close() }()

	name, err := archive.DetectCHD(arc, zipPath)
	require.NoError(t, err)
	assert.Equal(t, "b/Disc 1.CHD", name, "first listed CHD")
}

func TestDetectCHD_None(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	zipPath := createTestZIP(t, tmpDir, "empty.zip", zipEntry{name: "disc.cue", content: []byte("FILE")})

	arc, err := archive.Open(zipPath)
	require.NoError(t, err)
	defer func() { _ = arc.Close() }()

	_, err = archive.DetectCHD(arc, zipPath)
	var noCHD archive.NoCHDError
	require.ErrorAs(t, err, &noCHD)
	assert.Equal(t, zipPath, noCHD.Archive)
}
