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

// Package checksum computes the size, CRC32, MD5 and SHA-1 of track files.
package checksum

import (
	"bytes"
	"crypto/md5" //nolint:gosec // MD5 is a DAT identifier, not a security control
	"crypto/sha1" //nolint:gosec // SHA-1 is a DAT identifier, not a security control
	"encoding/hex"
	"fmt"
	"hash"
	"hash/crc32"
	"io"
)

// Digest holds the checksums a DAT file records for one file.
type Digest struct {
	Size  int64
	MD5   [md5.Size]byte
	SHA1  [sha1.Size]byte
	CRC32 uint32
}

// CRCHex returns the CRC32 as eight lowercase hex digits.
func (d Digest) CRCHex() string {
	return fmt.Sprintf("%08x", d.CRC32)
}

// MD5Hex returns the MD5 as lowercase hex.
func (d Digest) MD5Hex() string {
	return hex.EncodeToString(d.MD5[:])
}

// SHA1Hex returns the SHA-1 as lowercase hex.
func (d Digest) SHA1Hex() string {
	return hex.EncodeToString(d.SHA1[:])
}

// Hasher accumulates a Digest over everything written to it.
type Hasher struct {
	crc  hash.Hash32
	md5  hash.Hash
	sha1 hash.Hash
	w    io.Writer
	size int64
}

// NewHasher returns an empty Hasher.
func NewHasher() *Hasher {
	h := &Hasher{
		crc:  crc32.NewIEEE(),
		md5:  md5.New(), //nolint:gosec // see import
		sha1: sha1.New(), //nolint:gosec // see import
	}
	h.w = io.MultiWriter(h.crc, h.md5, h.sha1)
	return h
}

// Write implements io.Writer. It never fails.
func (h *Hasher) Write(p []byte) (int, error) {
	n, err := h.w.Write(p)
	h.size += int64(n)
	return n, err //nolint:wrapcheck // hash writers never fail
}

// Digest returns the checksums of the data written so far.
func (h *Hasher) Digest() Digest {
	d := Digest{Size: h.size, CRC32: h.crc.Sum32()}
	copy(d.MD5[:], h.md5.Sum(nil))
	copy(d.SHA1[:], h.sha1.Sum(nil))
	return d
}

// Bytes computes the digest of a byte slice.
func Bytes(data []byte) Digest {
	d, _ := Reader(bytes.NewReader(data))
	return d
}

// Reader computes the digest of everything read from r.
func Reader(r io.Reader) (Digest, error) {
	h := NewHasher()
	if _, err := io.Copy(h, r); err != nil {
		return Digest{}, fmt.Errorf("hash: %w", err)
	}
	return h.Digest(), nil
}

// CRC32 returns the IEEE CRC32 of data.
func CRC32(data []byte) uint32 {
	return crc32.ChecksumIEEE(data)
}
