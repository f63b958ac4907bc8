/*
 * metrics.go, part of msmcells.
 *
 * Copyright 2021 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rmera/msmcells/cells"
)

// Metrics collects the counters of a run in their own registry, so they can
// be written to a text file for the node exporter.
type Metrics struct {
	reg       *prometheus.Registry
	frames    *prometheus.CounterVec
	unmapped  *prometheus.CounterVec
	samples   *prometheus.CounterVec
	empty     prometheus.Counter
	cells     *prometheus.CounterVec
	entropy   prometheus.Gauge
	durations *prometheus.HistogramVec
}

// NewMetrics returns a Metrics with all the collectors registered.
func NewMetrics() *Metrics {
	M := &Metrics{
		reg: prometheus.NewRegistry(),
		frames: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "msmcells_frames_scanned_total",
			Help: "Frames looked at, by pass.",
		}, []string{"pass"}),
		unmapped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "msmcells_frames_unmapped_total",
			Help: "Frames whose label is not in the model, by pass.",
		}, []string{"pass"}),
		samples: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "msmcells_samples_written_total",
			Help: "Representative structures written, real or duplicated.",
		}, []string{"kind"}),
		empty: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "msmcells_empty_states_total",
			Help: "Macrostates without any frame.",
		}),
		cells: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "msmcells_cells_total",
			Help: "Cells written, by classification.",
		}, []string{"class"}),
		entropy: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "msmcells_population_entropy_nats",
			Help: "Shannon entropy of the macrostate populations.",
		}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "msmcells_stage_duration_seconds",
			Help:    "Wall time of each stage.",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 10),
		}, []string{"stage"}),
	}
	M.reg.MustRegister(M.frames, M.unmapped, M.samples, M.empty, M.cells, M.entropy, M.durations)
	return M
}

// Stage records the duration of a stage that started at start.
func (M *Metrics) Stage(name string, start time.Time) {
	M.durations.WithLabelValues(name).Observe(time.Since(start).Seconds())
}

// Sampled records the result of the representative sampling.
func (M *Metrics) Sampled(R *cells.SampleReport) {
	M.frames.WithLabelValues("sample").Add(float64(R.Scanned))
	M.unmapped.WithLabelValues("sample").Add(float64(R.Unmapped))
	n := 0
	for _, c := range R.Counts {
		n += c
	}
	M.samples.WithLabelValues("real").Add(float64(n))
	M.samples.WithLabelValues("duplicate").Add(float64(R.Duplicates))
	M.empty.Add(float64(len(R.Empty)))
}

// Centered records the result of the center selection.
func (M *Metrics) Centered(R *cells.CenterReport) {
	M.frames.WithLabelValues("centers").Add(float64(R.Scanned))
	M.unmapped.WithLabelValues("centers").Add(float64(R.Unmapped))
}

// Assigned records the classification of the cells.
func (M *Metrics) Assigned(A *cells.Assignment) {
	M.cells.WithLabelValues("folded").Add(float64(len(A.Folded)))
	M.cells.WithLabelValues("unfolded").Add(float64(len(A.Unfolded)))
}

// Entropy sets the population entropy.
func (M *Metrics) Entropy(h float64) {
	M.entropy.Set(h)
}

// Write writes all the metrics, in the Prometheus text format, to the file name.
func (M *Metrics) Write(name string) error {
	return prometheus.WriteToTextfile(name, M.reg)
}
