/*
 * dataset.go, part of msmcells.
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

package msm

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/edsrzf/mmap-go"
	"github.com/klauspost/compress/zstd"
)

// Assignments holds the cluster label of each frame, one slice per trajectory.
type Assignments [][]int

// Reduced holds the reduced coordinate of each frame, one slice per trajectory.
type Reduced [][][]float64

// NFrames returns the total number of frames.
func (A Assignments) NFrames() int {
	n := 0
	for _, t := range A {
		n += len(t)
	}
	return n
}

// Dim returns the dimension of the reduced coordinates, or 0 if there are none.
func (R Reduced) Dim() int {
	for _, t := range R {
		if len(t) > 0 {
			return len(t[0])
		}
	}
	return 0
}

// CheckShapes verifies that labels and reduced have the same number of
// trajectories and frames per trajectory, and that all the reduced
// coordinates have the same dimension.
func CheckShapes(labels Assignments, reduced Reduced) error {
	if len(labels) != len(reduced) {
		return fmt.Errorf("%d trajectories of labels, %d of reduced coordinates: %w", len(labels), len(reduced), ErrShape)
	}
	dim := reduced.Dim()
	for i := range labels {
		if len(labels[i]) != len(reduced[i]) {
			return fmt.Errorf("trajectory %d: %d labels, %d reduced coordinates: %w", i, len(labels[i]), len(reduced[i]), ErrShape)
		}
		for j, v := range reduced[i] {
			if len(v) != dim {
				return fmt.Errorf("trajectory %d frame %d: dimension %d, expected %d: %w", i, j, len(v), dim, ErrShape)
			}
		}
	}
	return nil
}

func isZst(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".zst")
}

// withData calls fn with the contents of the file name. Plain files are memory-mapped
// and the slice given to fn is only valid during the call.
func withData(name string, fn func(data []byte) error) error {
	f, err := os.Open(name)
	if err != nil {
		return fmt.Errorf("opening %s: %w", name, err)
	}
	defer f.Close()
	if isZst(name) {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return fmt.Errorf("opening %s: %w", name, err)
		}
		defer dec.Close()
		data, err := io.ReadAll(dec)
		if err != nil {
			return fmt.Errorf("decompressing %s: %w", name, err)
		}
		return fn(data)
	}
	fi, err := f.Stat()
	if err != nil {
		return fmt.Errorf("opening %s: %w", name, err)
	}
	if fi.Size() == 0 {
		return fn(nil)
	}
	mm, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return fmt.Errorf("mapping %s: %w", name, err)
	}
	defer mm.Unmap()
	return fn(mm)
}

// scanRagged goes through a ragged dataset. newTraj is called at the start of each
// trajectory with its number of frames, and frame with each frame line.
func scanRagged(data []byte, name string, newTraj func(nframes int), frame func(line []byte) error) error {
	ntraj := 0
	remaining := 0
	lineno := 0
	for len(data) > 0 {
		var line []byte
		if i := bytes.IndexByte(data, '\n'); i >= 0 {
			line, data = data[:i], data[i+1:]
		} else {
			line, data = data, nil
		}
		lineno++
		line = bytes.TrimSpace(line)
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		if remaining > 0 {
			if err := frame(line); err != nil {
				return fmt.Errorf("%s line %d: %v: %w", name, lineno, err, ErrFormat)
			}
			remaining--
			continue
		}
		fields := strings.Fields(string(line))
		if len(fields) != 3 || fields[0] != "traj" {
			return fmt.Errorf("%s line %d: expected 'traj <index> <nframes>', got %q: %w", name, lineno, line, ErrFormat)
		}
		idx, err := strconv.Atoi(fields[1])
		if err != nil || idx != ntraj {
			return fmt.Errorf("%s line %d: expected trajectory %d, got %q: %w", name, lineno, ntraj, fields[1], ErrFormat)
		}
		nframes, err := strconv.Atoi(fields[2])
		if err != nil || nframes < 0 {
			return fmt.Errorf("%s line %d: invalid number of frames %q: %w", name, lineno, fields[2], ErrFormat)
		}
		//every frame takes at least one character and a newline.
		if nframes > (len(data)+1)/2 {
			return fmt.Errorf("%s line %d: %d frames declared, the rest of the file is too short: %w", name, lineno, nframes, ErrFormat)
		}
		newTraj(nframes)
		ntraj++
		remaining = nframes
	}
	if remaining > 0 {
		return fmt.Errorf("%s: last trajectory is missing %d frames: %w", name, remaining, ErrFormat)
	}
	return nil
}

// ReadAssignments reads a label dataset.
func ReadAssignments(name string) (Assignments, error) {
	var ret Assignments
	err := withData(name, func(data []byte) error {
		return scanRagged(data, name,
			func(n int) { ret = append(ret, make([]int, 0, n)) },
			func(line []byte) error {
				l, err := strconv.Atoi(string(line))
				if err != nil {
					return err
				}
				last := len(ret) - 1
				ret[last] = append(ret[last], l)
				return nil
			})
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// ReadReduced reads a reduced-coordinate dataset.
func ReadReduced(name string) (Reduced, error) {
	var ret Reduced
	err := withData(name, func(data []byte) error {
		return scanRagged(data, name,
			func(n int) { ret = append(ret, make([][]float64, 0, n)) },
			func(line []byte) error {
				fields := strings.Fields(string(line))
				v := make([]float64, len(fields))
				for i, f := range fields {
					var err error
					if v[i], err = strconv.ParseFloat(f, 64); err != nil {
						return err
					}
				}
				last := len(ret) - 1
				ret[last] = append(ret[last], v)
				return nil
			})
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// withWriter calls fn with a buffered writer to the file name, compressed if the
// name ends in .zst, and closes everything afterwards.
func withWriter(name, title string, fn func(w *bufio.Writer) error) (err error) {
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("creating %s: %w", name, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing %s: %w", name, cerr)
		}
	}()
	var out io.Writer = f
	var enc *zstd.Encoder
	if isZst(name) {
		if enc, err = zstd.NewWriter(f); err != nil {
			return fmt.Errorf("creating %s: %w", name, err)
		}
		out = enc
	}
	w := bufio.NewWriter(out)
	fmt.Fprintf(w, "# %s\n", title)
	if err = fn(w); err == nil {
		err = w.Flush()
	}
	if enc != nil {
		if cerr := enc.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

// WriteAssignments writes labels to name.
func WriteAssignments(name string, labels Assignments) error {
	return withWriter(name, "msmcells cluster labels", func(w *bufio.Writer) error {
		for i, t := range labels {
			fmt.Fprintf(w, "traj %d %d\n", i, len(t))
			for _, l := range t {
				w.WriteString(strconv.Itoa(l))
				if err := w.WriteByte('\n'); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// WriteReduced writes reduced coordinates to name.
func WriteReduced(name string, reduced Reduced) error {
	return withWriter(name, "msmcells reduced coordinates", func(w *bufio.Writer) error {
		for i, t := range reduced {
			fmt.Fprintf(w, "traj %d %d\n", i, len(t))
			for _, v := range t {
				for j, c := range v {
					if j > 0 {
						w.WriteByte(' ')
					}
					w.WriteString(strconv.FormatFloat(c, 'g', -1, 64))
				}
				if err := w.WriteByte('\n'); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
