/*
 * check.go, part of msmcells.
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
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// CheckReport is the result of Check.
type CheckReport struct {
	Samples    []int //files per macrostate
	Real       []int //files per macrostate that are not copies of State<s>-0
	Duplicates int
	Cells      int
	Centers    int
	Problems   []string
}

func (C *CheckReport) problem(format string, args ...any) {
	C.Problems = append(C.Problems, fmt.Sprintf(format, args...))
}

var stateRe = regexp.MustCompile(`^State(\d+)-(\d+)\.(\w+)$`)
var centerRe = regexp.MustCompile(`^Center(\d+)\.(\w+)$`)

// cellHeader reads the header of a cell geometry file and counts the lines in its body.
func cellHeader(name string) (ncells, ncoords, body int, err error) {
	f, err := os.Open(name)
	if err != nil {
		return 0, 0, 0, err
	}
	defer f.Close()
	s := bufio.NewScanner(f)
	keys := []string{"ncells", "ncoords", "ndims"}
	vals := make([]int, 3)
	for i, k := range keys {
		if !s.Scan() {
			return 0, 0, 0, fmt.Errorf("%s: truncated header", name)
		}
		key, v, ok := strings.Cut(s.Text(), ":")
		if !ok || strings.TrimSpace(key) != k {
			return 0, 0, 0, fmt.Errorf("%s: expected %q in header, got %q", name, k, s.Text())
		}
		if vals[i], err = strconv.Atoi(strings.TrimSpace(v)); err != nil {
			return 0, 0, 0, fmt.Errorf("%s: %w", name, err)
		}
	}
	if vals[2] != 3 {
		return 0, 0, 0, fmt.Errorf("%s: ndims is %d, not 3", name, vals[2])
	}
	if !s.Scan() || s.Text() != "" {
		return 0, 0, 0, fmt.Errorf("%s: no blank line after the header", name)
	}
	for s.Scan() {
		if _, err := strconv.ParseFloat(s.Text(), 64); err != nil {
			return 0, 0, 0, fmt.Errorf("%s: %w", name, err)
		}
		body++
	}
	return vals[0], vals[1], body, s.Err()
}

func sameContent(a, b string) (bool, error) {
	da, err := os.ReadFile(a)
	if err != nil {
		return false, err
	}
	db, err := os.ReadFile(b)
	if err != nil {
		return false, err
	}
	return bytes.Equal(da, db), nil
}

/*Check verifies the output in layout for a model with nstates macrostates and n samples per macrostate.
Each macrostate must have no representatives or exactly n of them (State<s>-0 to State<s>-(n-1)); the
body of the cell geometry file must match its header; there must be one weight per macrostate; and the
folded and unfolded lists must split the cells between them. A report is always returned. If problems
were found, the error wraps ErrCheck.*/
func Check(layout *Layout, n, nstates int) (*CheckReport, error) {
	R := &CheckReport{Samples: make([]int, nstates), Real: make([]int, nstates)}
	seen := make([]map[int]string, nstates)
	entries, err := os.ReadDir(layout.Samples)
	if err != nil {
		return nil, fmt.Errorf("reading sample directory: %w", err)
	}
	for _, e := range entries {
		m := stateRe.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		s, _ := strconv.Atoi(m[1])
		k, _ := strconv.Atoi(m[2])
		if s >= nstates {
			R.problem("%s: macrostate %d beyond the %d of the model", e.Name(), s, nstates)
			continue
		}
		if seen[s] == nil {
			seen[s] = make(map[int]string)
		}
		seen[s][k] = e.Name()
		R.Samples[s]++
	}
	for s, files := range seen {
		if len(files) == 0 {
			continue
		}
		if len(files) != n {
			R.problem("macrostate %d has %d samples, expected 0 or %d", s, len(files), n)
		}
		first, ok := files[0]
		if !ok {
			R.problem("macrostate %d has no sample 0", s)
			continue
		}
		R.Real[s] = 1
		//copies of sample 0 can only be padding if they close the list.
		trailing := true
		for k := n - 1; k >= 1; k-- {
			name, ok := files[k]
			if !ok {
				R.problem("macrostate %d is missing sample %d", s, k)
				continue
			}
			same, err := sameContent(filepath.Join(layout.Samples, first), filepath.Join(layout.Samples, name))
			if err != nil {
				return nil, err
			}
			if same && trailing {
				R.Duplicates++
				continue
			}
			trailing = false
			R.Real[s]++
		}
	}

	if entries, err = os.ReadDir(layout.Centers); err != nil {
		return nil, fmt.Errorf("reading center directory: %w", err)
	}
	for _, e := range entries {
		if centerRe.MatchString(e.Name()) {
			R.Centers++
		}
	}

	ncells, ncoords, body, err := cellHeader(layout.Cells)
	if err != nil {
		R.problem("cell file: %v", err)
	} else {
		R.Cells = ncells
		natoms := ncoords
		if layout.CellIndices != "" {
			if idx, err := readInts(layout.CellIndices); err == nil {
				natoms = len(idx)
			}
		}
		if body != ncells*natoms*3 {
			R.problem("cell file has %d coordinate lines, expected %d (%d cells, %d atoms)", body, ncells*natoms*3, ncells, natoms)
		}
		if ncells != R.Centers {
			R.problem("cell file has %d cells, but there are %d centers", ncells, R.Centers)
		}
	}

	if w, err := ReadWeights(layout.Weights); err != nil {
		R.problem("weights: %v", err)
	} else if len(w) != nstates {
		R.problem("weights file has %d values, expected %d", len(w), nstates)
	}

	folded, err := readInts(layout.Folded)
	if err != nil {
		R.problem("folded list: %v", err)
	}
	unfolded, err := readInts(layout.Unfolded)
	if err != nil {
		R.problem("unfolded list: %v", err)
	}
	count := make(map[int]int)
	for _, c := range append(folded, unfolded...) {
		count[c]++
	}
	for c := 0; c < R.Cells; c++ {
		if count[c] != 1 {
			R.problem("cell %d appears %d times in the folded and unfolded lists", c, count[c])
		}
		delete(count, c)
	}
	for c := range count {
		R.problem("cell %d in the folded or unfolded lists does not exist", c)
	}
	if len(R.Problems) > 0 {
		return R, fmt.Errorf("%d problems, first: %s: %w", len(R.Problems), R.Problems[0], ErrCheck)
	}
	return R, nil
}
