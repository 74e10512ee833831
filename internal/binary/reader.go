// Package binary provides utilities for reading fixed-layout binary data from disc images.
package binary

import (
	"encoding/binary"
	"errors"
	"io"
	"strings"
)

// ReadAt reads exactly len(buf) bytes from r at offset.
// A short read is reported as io.ErrUnexpectedEOF.
func ReadAt(r io.ReaderAt, offset int64, buf []byte) error {
	n, err := r.ReadAt(buf, offset)
	if n == len(buf) {
		return nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

// ReadBytesAt reads n bytes from r at offset.
func ReadBytesAt(r io.ReaderAt, offset int64, n int) ([]byte, error) {
	buf := make([]byte, n)
	if err := ReadAt(r, offset, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// ReadUint32BEAt reads a big-endian uint32 from r at offset.
func ReadUint32BEAt(r io.ReaderAt, offset int64) (uint32, error) {
	buf := make([]byte, 4)
	if err := ReadAt(r, offset, buf); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buf), nil
}

// ReadUint64BEAt reads a big-endian uint64 from r at offset.
func ReadUint64BEAt(r io.ReaderAt, offset int64) (uint64, error) {
	buf := make([]byte, 8)
	if err := ReadAt(r, offset, buf); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(buf), nil
}

// Uint24BE decodes a 24-bit big-endian value from the first three bytes of b.
func Uint24BE(b []byte) uint32 {
	_ = b[2]
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
}

// PutUint24BE encodes the low 24 bits of v into the first three bytes of b.
func PutUint24BE(b []byte, v uint32) {
	_ = b[2]
	b[0] = byte(v >> 16)
	b[1] = byte(v >> 8)
	b[2] = byte(v)
}

// CleanString converts bytes to a string, cutting at the first null byte and
// trimming surrounding whitespace.
func CleanString(b []byte) string {
	end := len(b)
	for i, c := range b {
		if c == 0 {
			end = i
			break
		}
	}
	return strings.TrimSpace(string(b[:end]))
}

// TagString renders a four-character code such as a CHD metadata tag.
func TagString(tag uint32) string {
	b := []byte{byte(tag >> 24), byte(tag >> 16), byte(tag >> 8), byte(tag)}
	for i, c := range b {
		if c < 0x20 || c > 0x7E {
			b[i] = '?'
		}
	}
	return string(b)
}
