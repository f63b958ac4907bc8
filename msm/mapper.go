/*
 * mapper.go, part of msmcells.
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

import "fmt"

// Unmapped is the macrostate of a label that the model discarded.
const Unmapped = -1

// Mapper translates raw cluster labels into macrostate indices.
// It is immutable, so it can be shared between goroutines.
type Mapper struct {
	states  []int
	nstates int
}

// NewMapper builds a Mapper from mapping (raw label to macrostate) for a model
// with nstates macrostates. Negative macrostates mean the label is unmapped.
// Negative labels and macrostates >= nstates are errors.
func NewMapper(mapping map[int]int, nstates int) (*Mapper, error) {
	maxlabel := -1
	for k, v := range mapping {
		if k < 0 {
			return nil, fmt.Errorf("label %d: negative labels can't be mapped: %w", k, ErrMappingRange)
		}
		if v >= nstates {
			return nil, fmt.Errorf("label %d mapped to macrostate %d, but there are %d: %w", k, v, nstates, ErrMappingRange)
		}
		if k > maxlabel {
			maxlabel = k
		}
	}
	M := &Mapper{states: make([]int, maxlabel+1), nstates: nstates}
	for i := range M.states {
		M.states[i] = Unmapped
	}
	for k, v := range mapping {
		if v >= 0 {
			M.states[k] = v
		}
	}
	return M, nil
}

// State returns the macrostate for label, and true, or Unmapped and false
// if the label is not mapped to any macrostate.
func (M *Mapper) State(label int) (int, bool) {
	if label < 0 || label >= len(M.states) {
		return Unmapped, false
	}
	s := M.states[label]
	return s, s != Unmapped
}

// NStates returns the number of macrostates.
func (M *Mapper) NStates() int {
	return M.nstates
}

// Labels returns the number of label slots, i.e. the largest mapped label plus one.
func (M *Mapper) Labels() int {
	return len(M.states)
}
