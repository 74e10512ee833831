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

package convert

import (
	"errors"
	"fmt"
)

var (
	// ErrWrite indicates an output file could not be created or written.
	ErrWrite = errors.New("cannot write output file")

	// ErrMissingTrack indicates a gap in the track numbering.
	ErrMissingTrack = errors.New("missing track")
)

// WriteError reports a failure to create, write or rename an output file.
type WriteError struct {
	Err  error
	Path string
}

func (e WriteError) Error() string {
	return fmt.Sprintf("unable to write output file %s: %v", e.Path, e.Err)
}

func (e WriteError) Unwrap() []error { return []error{ErrWrite, e.Err} }

// MissingTrackError reports a track number absent from the image while a
// higher one is present.
type MissingTrackError struct {
	Missing int
	Next    int
}

func (e MissingTrackError) Error() string {
	return fmt.Sprintf("CHD misses track %d (but has track %d)", e.Missing, e.Next)
}

func (MissingTrackError) Unwrap() error { return ErrMissingTrack }
