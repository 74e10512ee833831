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

package encode

import (
	"errors"
	"fmt"
	"hash/crc32"
)

// Self-test parameters.
const (
	// SelfTestSamples is the length of the reference signal.
	SelfTestSamples = 5000

	// SelfTestQuality is the quality level the reference signal is encoded at.
	SelfTestQuality = 5

	referenceSlope float32 = 0.000188019
)

// ErrSelfTest is matched by SelfTestError.
var ErrSelfTest = errors.New("encoder self-test failed")

// SelfTestError reports an encoder whose output differs from the expected result.
type SelfTestError struct {
	Encoder  string
	Expected uint32
	Got      uint32
}

func (e SelfTestError) Error() string {
	return fmt.Sprintf("encoder %s self-test result mismatch: expected 0x%08x, got 0x%08x",
		e.Encoder, e.Expected, e.Got)
}

func (SelfTestError) Unwrap() error { return ErrSelfTest }

// ReferenceSignal returns the self-test ramp: a sawtooth whose slope shrinks
// towards the end of the buffer and which wraps by -1 once it passes 1.
func ReferenceSignal() []float32 {
	samples := make([]float32, SelfTestSamples)
	var seed float32
	for i := range samples {
		remaining := float32(SelfTestSamples - i)
		if seed > 1 {
			seed--
		} else {
			// The conversion rounds the product, so no platform fuses it
			// into a multiply-add.
			seed += float32(referenceSlope * remaining)
		}
		samples[i] = seed
	}
	return samples
}

// crcSink folds every chunk it receives into a running XOR of chunk CRC32s.
type crcSink struct {
	result uint32
}

func (s *crcSink) Write(p []byte) (int, error) {
	s.result ^= crc32.ChecksumIEEE(p)
	return len(p), nil
}

// Fingerprint encodes the reference signal and returns the XOR of the CRC32
// of every chunk the encoder produced.
func Fingerprint(enc Encoder) (uint32, error) {
	sink := &crcSink{}
	if err := enc.Encode(SelfTestQuality, NewMonoSource(ReferenceSignal()), sink); err != nil {
		return 0, fmt.Errorf("encode reference signal: %w", err)
	}
	return sink.result, nil
}

// Reference is implemented by encoders that publish the fingerprint their
// encode of the reference signal must reproduce.
type Reference interface {
	ReferenceFingerprint() uint32
}

// SelfTest encodes the reference signal twice and checks both fingerprints
// against expected, or against the encoder's published Reference when
// expected is 0. An encoder with neither fails. It returns the fingerprint.
func SelfTest(enc Encoder, expected uint32) (uint32, error) {
	first, err := Fingerprint(enc)
	if err != nil {
		return 0, err
	}
	second, err := Fingerprint(enc)
	if err != nil {
		return 0, err
	}
	if first != second {
		return second, SelfTestError{Encoder: enc.Name(), Expected: first, Got: second}
	}
	if expected == 0 {
		if ref, ok := enc.(Reference); ok {
			expected = ref.ReferenceFingerprint()
		}
	}
	if expected == 0 {
		return first, fmt.Errorf("%w: encoder %s has no reference result", ErrSelfTest, enc.Name())
	}
	if first != expected {
		return first, SelfTestError{Encoder: enc.Name(), Expected: expected, Got: first}
	}
	return first, nil
}
