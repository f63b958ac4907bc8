/*
 * sampler.go, part of msmcells.
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
	"io"
	"os"
	"path/filepath"

	chem "github.com/rmera/msmcells"
	"github.com/rmera/msmcells/msm"
	v3 "github.com/rmera/msmcells/v3"
)

// SampleReport summarizes a Sample run.
type SampleReport struct {
	Counts     []int //real samples written per macrostate
	Empty      []int //macrostates without samples
	Padded     []int //macrostates filled with duplicates
	Duplicates int   //total duplicated files
	Scanned    int   //frames looked at
	Unmapped   int   //frames with an unmapped label
}

// StateName returns the file name of the k-th representative of macrostate s.
func StateName(s, k int, ext string) string {
	return fmt.Sprintf("State%d-%d.%s", s, k, ext)
}

// CenterName returns the file name of the center of macrostate s.
func CenterName(s int, ext string) string {
	return fmt.Sprintf("Center%d.%s", s, ext)
}

// writeFrame reads the frame (traj, frame) into buf and writes it to name.
func writeFrame(frames Frames, traj, frame int, buf *v3.Matrix, name string) error {
	if err := frames.Frame(traj, frame, buf); err != nil {
		return err
	}
	return chem.FileWrite(name, buf, frames.Atoms(), nil)
}

// copyFile copies src into dst, byte by byte.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err = io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

/*Sample writes up to n representative structures per macrostate into dir, as State<s>-<k>.<ext>.
Frames are visited in trajectory order, then frame order, and each frame whose label maps to a
macrostate with fewer than n samples is written. Macrostates without any frame are left without
files. Macrostates with less than n frames are padded to n by copying State<s>-0. Both cases are
logged as warnings. Any failure to read or write a frame is fatal.*/
func Sample(mapper *msm.Mapper, labels msm.Assignments, frames Frames, n int, dir string, opts *Options) (*SampleReport, error) {
	opts = orDefault(opts)
	log := opts.Logger()
	ext := opts.Format()
	if n < 1 {
		return nil, fmt.Errorf("%d samples requested: %w", n, ErrSampleCount)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating sample directory: %w", err)
	}
	nstates := mapper.NStates()
	R := &SampleReport{Counts: make([]int, nstates)}
	buf := v3.Zeros(frames.Atoms().Len())
	for t, traj := range labels {
		for f, label := range traj {
			R.Scanned++
			s, ok := mapper.State(label)
			if !ok {
				R.Unmapped++
				continue
			}
			k := R.Counts[s]
			if k >= n {
				continue
			}
			name := filepath.Join(dir, StateName(s, k, ext))
			if err := writeFrame(frames, t, f, buf, name); err != nil {
				return nil, fmt.Errorf("macrostate %d sample %d (trajectory %d, frame %d): %w", s, k, t, f, err)
			}
			R.Counts[s]++
		}
	}
	for s, c := range R.Counts {
		switch {
		case c == 0:
			R.Empty = append(R.Empty, s)
			log.Warn("macrostate has no frames, no samples written", "state", s)
		case c < n:
			R.Padded = append(R.Padded, s)
			log.Warn("macrostate undersampled, padding with copies of the first sample", "state", s, "samples", c, "requested", n)
			src := filepath.Join(dir, StateName(s, 0, ext))
			for k := c; k < n; k++ {
				if err := copyFile(src, filepath.Join(dir, StateName(s, k, ext))); err != nil {
					return nil, fmt.Errorf("macrostate %d sample %d (duplicate): %w", s, k, err)
				}
				R.Duplicates++
			}
		}
	}
	log.Info("representative sampling done", "states", nstates, "frames", R.Scanned,
		"unmapped", R.Unmapped, "empty", len(R.Empty), "padded", len(R.Padded))
	return R, nil
}
