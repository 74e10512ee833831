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

package chd

// Sector payload sizes stored in a track file, per track type.
const (
	// DataSizeCooked is the user data of MODE1 and MODE2 form 1 sectors.
	DataSizeCooked = 2048

	// DataSizeMode2 is the MODE2 (formless) payload after sync and header.
	DataSizeMode2 = 2336

	// DataSizeRaw is a full raw sector, used for audio and raw data tracks.
	DataSizeRaw = SectorSize

	// TrackPadding is the frame alignment of each track within a CD CHD.
	TrackPadding = 4

	// FramesPerSecond is the CD frame rate used for MSF timestamps.
	FramesPerSecond = 75
)

// Track represents a CD track in the CHD file.
type Track struct {
	Type       string // Track type from metadata, e.g. MODE1, MODE2_RAW or AUDIO
	SubType    string // Subchannel type from metadata, e.g. NONE or RW
	Tag        uint32 // Metadata tag the track was read from
	Number     int    // TRACK:<n> as stored in metadata
	Frames     int    // Frame count including pregap
	Pregap     int    // Pregap frame count, always <= Frames
	StartFrame int    // First frame in the CHD's logical frame space
	DataSize   int    // Bytes of each sector that belong in the track file
}

// trackTypeToDataSize returns the data size for a track type string.
// MODE2_FORM2 is stored like MODE2_FORM1 because 2324-byte sectors are not
// expressible in a BIN/CUE pair.
func trackTypeToDataSize(trackType string) int {
	switch trackType {
	case "MODE1", "MODE2_FORM1", "MODE2_FORM2":
		return DataSizeCooked
	case "MODE2", "MODE2_FORM_MIX":
		return DataSizeMode2
	default:
		return DataSizeRaw
	}
}

// IsAudio returns true for CD-DA tracks.
func (t *Track) IsAudio() bool {
	return t.Type == "AUDIO"
}

// Size returns the number of bytes the reconstructed track occupies.
func (t *Track) Size() int64 {
	return int64(t.Frames) * int64(t.DataSize)
}

// PregapSize returns the number of bytes of the track that belong to its pregap.
func (t *Track) PregapSize() int64 {
	return int64(t.Pregap) * int64(t.DataSize)
}

// EndFrame returns the frame after the last frame of the track.
func (t *Track) EndFrame() int {
	return t.StartFrame + t.Frames
}

// alignFrame pads a frame cursor forward to the next track boundary.
func alignFrame(frame int) int {
	return (frame + TrackPadding - 1) / TrackPadding * TrackPadding
}
