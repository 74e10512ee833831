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

// Package metrics records per-track conversion counters and exports them as a
// Prometheus textfile for node_exporter's textfile collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Track kinds used as the "kind" label.
const (
	KindAudio = "audio"
	KindData  = "data"
	KindEmpty = "empty"
)

// Metrics holds the collectors of one run on a private registry.
type Metrics struct {
	registry     *prometheus.Registry
	tracks       *prometheus.CounterVec
	trackBytes   *prometheus.CounterVec
	trackSeconds *prometheus.HistogramVec
	selfTest     prometheus.Gauge
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)
	return &Metrics{
		registry: registry,
		tracks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chdtoogg_tracks_total",
			Help: "Total number of tracks written.",
		}, []string{"kind"}),
		trackBytes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chdtoogg_track_bytes_total",
			Help: "Total number of bytes written to track files.",
		}, []string{"kind"}),
		trackSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "chdtoogg_track_seconds",
			Help:    "Time spent reading, processing and writing one track.",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind"}),
		selfTest: factory.NewGauge(prometheus.GaugeOpts{
			Name: "chdtoogg_selftest_result",
			Help: "Fingerprint of the encoder self-test.",
		}),
	}
}

// ObserveTrack records one written track. It is a no-op on a nil receiver.
func (m *Metrics) ObserveTrack(kind string, size int64, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.tracks.WithLabelValues(kind).Inc()
	m.trackBytes.WithLabelValues(kind).Add(float64(size))
	m.trackSeconds.WithLabelValues(kind).Observe(elapsed.Seconds())
}

// RecordSelfTest records the encoder self-test fingerprint. It is a no-op on
// a nil receiver.
func (m *Metrics) RecordSelfTest(result uint32) {
	if m == nil {
		return
	}
	m.selfTest.Set(float64(result))
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes every collector to path in the text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
