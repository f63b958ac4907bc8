/*
 * centroid.go, part of msmcells.
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

package cells

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/rmera/msmcells/msm"
	v3 "github.com/rmera/msmcells/v3"
	"gonum.org/v1/gonum/floats"
)

// FrameID identifies a frame in a set of trajectories.
type FrameID struct {
	Traj  int
	Frame int
}

// CenterReport summarizes a Centers run.
type CenterReport struct {
	Best     []FrameID //frame written for each macrostate, {-1, -1} if none
	Distance []float64 //distance of that frame to its centroid, +Inf if none
	Missing  []int     //macrostates without any frame, hence without center
	Scanned  int
	Unmapped int
}

/*Centers writes, for each macrostate, the frame whose reduced coordinate is closest (Euclidean distance)
to the centroid of its own cluster, as Center<s>.<ext> in dir. Frames are visited in the same order
as in Sample and ties go to the first frame found. Macrostates without frames get no file and are
listed in the report. A mapped label without centroid, or a centroid with a different dimension than
the reduced coordinates, is an error.*/
func Centers(mapper *msm.Mapper, labels msm.Assignments, reduced msm.Reduced, centroids [][]float64, frames Frames, dir string, opts *Options) (*CenterReport, error) {
	opts = orDefault(opts)
	log := opts.Logger()
	ext := opts.Format()
	if err := msm.CheckShapes(labels, reduced); err != nil {
		return nil, err
	}
	nstates := mapper.NStates()
	R := &CenterReport{
		Best:     make([]FrameID, nstates),
		Distance: make([]float64, nstates),
	}
	for s := range R.Best {
		R.Best[s] = FrameID{-1, -1}
		R.Distance[s] = math.Inf(1)
	}
	for t, traj := range labels {
		for f, label := range traj {
			R.Scanned++
			s, ok := mapper.State(label)
			if !ok {
				R.Unmapped++
				continue
			}
			if label >= len(centroids) {
				return nil, fmt.Errorf("label %d (trajectory %d, frame %d), %d centroids: %w", label, t, f, len(centroids), ErrNoCentroid)
			}
			c, x := centroids[label], reduced[t][f]
			if len(c) != len(x) {
				return nil, fmt.Errorf("label %d: centroid dimension %d, reduced coordinate %d: %w", label, len(c), len(x), ErrDimension)
			}
			if d := floats.Distance(x, c, 2); d < R.Distance[s] {
				R.Distance[s] = d
				R.Best[s] = FrameID{t, f}
			}
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating center directory: %w", err)
	}
	buf := v3.Zeros(frames.Atoms().Len())
	for s, b := range R.Best {
		if b.Traj < 0 {
			R.Missing = append(R.Missing, s)
			log.Warn("macrostate has no frames, no center written", "state", s)
			continue
		}
		if err := writeFrame(frames, b.Traj, b.Frame, buf, filepath.Join(dir, CenterName(s, ext))); err != nil {
			return nil, fmt.Errorf("center of macrostate %d (trajectory %d, frame %d): %w", s, b.Traj, b.Frame, err)
		}
		log.Debug("center written", "state", s, "traj", b.Traj, "frame", b.Frame, "distance", R.Distance[s])
	}
	log.Info("centroid selection done", "states", nstates, "centers", nstates-len(R.Missing), "missing", len(R.Missing))
	return R, nil
}
