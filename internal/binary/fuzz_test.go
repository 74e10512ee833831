package binary

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// FuzzCleanString fuzzes the null-terminated string cleanup.
func FuzzCleanString(f *testing.F) {
	f.Add([]byte("TRACK:1 TYPE:MODE1 SUBTYPE:NONE FRAMES:300"))
	f.Add([]byte("TRACK:2\x00junk"))
	f.Add([]byte{})
	f.Add([]byte{0x00})
	f.Add([]byte("   "))

	f.Fuzz(func(t *testing.T, data []byte) {
		got := CleanString(data)

		assert.NotContains(t, got, "\x00", "null byte kept")
		assert.Equal(t, strings.TrimSpace(got), got, "not trimmed")
		assert.True(t, bytes.Contains(data, []byte(got)), "%q is not a substring of %q", got, data)
	})
}

// FuzzReadAt fuzzes exact reads against arbitrary offsets.
func FuzzReadAt(f *testing.F) {
	f.Add([]byte("MComprHD"), int64(0), 8)
	f.Add([]byte("MComprHD"), int64(4), 8)
	f.Add([]byte{}, int64(0), 1)

	f.Fuzz(func(t *testing.T, data []byte, offset int64, n int) {
		if offset < 0 || n < 0 || n > 1<<16 {
			return
		}
		buf := make([]byte, n)
		err := ReadAt(bytes.NewReader(data), offset, buf)
		fits := n == 0 || offset <= int64(len(data)) && int64(n) <= int64(len(data))-offset
		if !fits {
			require.Error(t, err, "off=%d n=%d on %d bytes", offset, n, len(data))
			return
		}
		require.NoError(t, err, "off=%d n=%d on %d bytes", offset, n, len(data))
		if n > 0 {
			assert.Equal(t, data[offset:offset+int64(n)], buf)
		}
	})
}
