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

package report

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// RomEntry is a <rom> stanza as read back from a report.
type RomEntry struct {
	Name   string      `xml:"name,attr"`
	CRC32  string      `xml:"crc,attr"`
	MD5    string      `xml:"md5,attr"`
	SHA1   string      `xml:"sha1,attr"`
	Source SourceEntry `xml:"source"`
	Size   int64       `xml:"size,attr"`
}

// SourceEntry is a <source> element as read back from a report.
type SourceEntry struct {
	Duration        string `xml:"duration,attr"`
	CRC32           string `xml:"crc,attr"`
	MD5             string `xml:"md5,attr"`
	SHA1            string `xml:"sha1,attr"`
	TrimmedCRC      string `xml:"trimmed_crc,attr"`
	NonSilentPregap string `xml:"non_silence_pregap,attr"`
	Size            int64  `xml:"size,attr"`
	InZeros         int64  `xml:"in_zeros,attr"`
	OutZeros        int64  `xml:"out_zeros,attr"`
	Frames          int    `xml:"frames,attr"`
	Pregap          int    `xml:"pregap,attr"`
	Quality         int    `xml:"quality,attr"`
}

type stanzas struct {
	Roms []RomEntry `xml:"rom"`
}

// Parse reads a sequence of <rom> stanzas such as the output of WriteTo.
func Parse(r io.Reader) ([]RomEntry, error) {
	wrapped := io.MultiReader(strings.NewReader("<roms>"), r, strings.NewReader("</roms>"))
	var s stanzas
	if err := xml.NewDecoder(wrapped).Decode(&s); err != nil {
		return nil, fmt.Errorf("parse report: %w", err)
	}
	return s.Roms, nil
}
