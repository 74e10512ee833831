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

package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveTrack(t *testing.T) {
	t.Parallel()

	m := New()
	m.ObserveTrack(KindAudio, 1000, 2*time.Second)
	m.ObserveTrack(KindAudio, 500, time.Second)
	m.ObserveTrack(KindData, 2352, time.Millisecond)

	assert.InDelta(t, 2.0, testutil.ToFloat64(m.tracks.WithLabelValues(KindAudio)), 0)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.tracks.WithLabelValues(KindData)), 0)
	assert.InDelta(t, 1500.0, testutil.ToFloat64(m.trackBytes.WithLabelValues(KindAudio)), 0)
	assert.Equal(t, 2, testutil.CollectAndCount(m.trackSeconds))
}

func TestNilMetrics(t *testing.T) {
	t.Parallel()

	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveTrack(KindEmpty, 1, time.Second)
		m.RecordSelfTest(42)
	})
}

func TestWriteTextfile(t *testing.T) {
	t.Parallel()

	m := New()
	m.ObserveTrack(KindEmpty, 56448, time.Millisecond)
	m.RecordSelfTest(0x1234)

	path := filepath.Join(t.TempDir(), "chdtoogg.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, `chdtoogg_tracks_total{kind="empty"} 1`)
	assert.Contains(t, text, `chdtoogg_track_bytes_total{kind="empty"} 56448`)
	assert.Contains(t, text, "chdtoogg_selftest_result 4660")
	assert.True(t, strings.Contains(text, "chdtoogg_track_seconds_bucket"))

	assert.Error(t, m.WriteTextfile(filepath.Join(t.TempDir(), "missing", "x.prom")))
}
