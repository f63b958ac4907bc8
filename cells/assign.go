/*
 * assign.go, part of msmcells.
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
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	chem "github.com/rmera/msmcells"
	v3 "github.com/rmera/msmcells/v3"
)

// Assignment is the result of Assign. Cells are numbered from 0.
type Assignment struct {
	States   []int     //macrostate of each cell
	RMSD     []float64 //RMSD of each cell's center to the reference
	Folded   []int     //folded cells
	Unfolded []int     //unfolded cells
	NCoords  int       //atoms in the reference
	Atoms    []int     //selected atoms
}

// FoldedStates returns the macrostates of the folded cells.
func (A *Assignment) FoldedStates() []int {
	ret := make([]int, len(A.Folded))
	for i, c := range A.Folded {
		ret[i] = A.States[c]
	}
	return ret
}

// findCenters returns the sorted macrostate indexes of the Center<s>.<ext> files in dir.
func findCenters(dir, ext string) ([]int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading center directory: %w", err)
	}
	re := regexp.MustCompile(`^Center(\d+)\.` + regexp.QuoteMeta(ext) + `$`)
	var ret []int
	for _, e := range entries {
		m := re.FindStringSubmatch(e.Name())
		if m == nil || e.IsDir() {
			continue
		}
		s, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		ret = append(ret, s)
	}
	sort.Ints(ret)
	return ret, nil
}

// missing returns the indexes between 0 and the last element of the
// sorted slice found that are not in it.
func missing(found []int) []int {
	var ret []int
	next := 0
	for _, v := range found {
		for ; next < v; next++ {
			ret = append(ret, next)
		}
		next = v + 1
	}
	return ret
}

func selectCoords(coords *v3.Matrix, idx []int) *v3.Matrix {
	ret := v3.Zeros(len(idx))
	ret.SomeVecs(coords, idx)
	return ret
}

/*Assign loads the Center<i> files in dir in increasing order, and compares each, under the atom selection
in opts, with the first frame of reference. Cells with an RMSD (after superposition) under the threshold
in opts are folded, the rest unfolded. The coordinates of the selected atoms of each center are written
to the cell geometry file in layout, after a header with the number of cells, the number of atoms in the
whole reference and the dimensionality (3). The folded and unfolded lists are written, and the selected
atom indexes, and the macrostate of each cell, if layout gives names for them.
Cells are numbered consecutively in the order of the centers found, and the macrostate of each is
given in the CellStates file. Macrostates without a center are skipped with a warning, or, if opts is
strict, make Assign fail with ErrCellGap.*/
func Assign(dir string, reference *chem.Molecule, layout *Layout, opts *Options) (*Assignment, error) {
	opts = orDefault(opts)
	log := opts.Logger()
	ext := opts.Format()
	states, err := findCenters(dir, ext)
	if err != nil {
		return nil, err
	}
	if len(states) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, ErrNoCenters)
	}
	if gaps := missing(states); len(gaps) > 0 {
		if opts.Strict() {
			return nil, fmt.Errorf("no center for macrostates %v: %w", gaps, ErrCellGap)
		}
		log.Warn("macrostates without center, cells renumbered", "missing", gaps)
	}
	sel, err := chem.NewSelection(opts.Selection())
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrSelection)
	}
	refIdx := sel.Indexes(reference)
	if len(refIdx) == 0 {
		return nil, fmt.Errorf("selection %q matches no atom of the reference: %w", opts.Selection(), ErrSelection)
	}
	refSel := selectCoords(reference.Coords[0], refIdx)
	A := &Assignment{
		States:  states,
		RMSD:    make([]float64, len(states)),
		NCoords: reference.Len(),
		Atoms:   refIdx,
	}

	fout, err := os.Create(layout.Cells)
	if err != nil {
		return nil, fmt.Errorf("creating cell file: %w", err)
	}
	defer fout.Close()
	w := bufio.NewWriter(fout)
	fmt.Fprintf(w, "ncells: %d\nncoords: %d\nndims: 3\n\n", len(states), A.NCoords)
	for c, s := range states {
		name := filepath.Join(dir, CenterName(s, ext))
		mol, err := chem.FileRead(name)
		if err != nil {
			return nil, fmt.Errorf("loading center of cell %d: %w", c, err)
		}
		idx := sel.Indexes(mol)
		if len(idx) != len(refIdx) {
			return nil, fmt.Errorf("%s: %d atoms selected, %d in the reference: %w", name, len(idx), len(refIdx), ErrSelectionMismatch)
		}
		csel := selectCoords(mol.Coords[0], idx)
		rmsd, err := chem.SuperRMSD(csel, refSel)
		if err != nil {
			return nil, fmt.Errorf("RMSD of cell %d: %w", c, err)
		}
		A.RMSD[c] = rmsd
		if rmsd < opts.Threshold() {
			A.Folded = append(A.Folded, c)
		} else {
			A.Unfolded = append(A.Unfolded, c)
		}
		log.Debug("cell assigned", "cell", c, "state", s, "rmsd", rmsd, "folded", rmsd < opts.Threshold())
		for i := 0; i < csel.NVecs(); i++ {
			for j := 0; j < 3; j++ {
				w.WriteString(strconv.FormatFloat(csel.At(i, j), 'g', -1, 64))
				w.WriteByte('\n')
			}
		}
	}
	if err := w.Flush(); err != nil {
		return nil, fmt.Errorf("writing cell file: %w", err)
	}
	if err := fout.Close(); err != nil {
		return nil, fmt.Errorf("writing cell file: %w", err)
	}
	lists := []struct {
		name string
		vals []int
	}{
		{layout.Folded, A.Folded},
		{layout.Unfolded, A.Unfolded},
		{layout.CellIndices, A.Atoms},
		{layout.StructureIndices, A.Atoms},
		{layout.CellStates, A.States},
	}
	for _, l := range lists {
		if l.name == "" {
			continue
		}
		if err := writeInts(l.name, l.vals); err != nil {
			return nil, err
		}
	}
	log.Info("cell assignment done", "cells", len(states), "folded", len(A.Folded), "unfolded", len(A.Unfolded),
		"selected", len(refIdx), "threshold", opts.Threshold())
	return A, nil
}

func writeInts(name string, vals []int) error {
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("creating %s: %w", name, err)
	}
	w := bufio.NewWriter(f)
	for _, v := range vals {
		w.WriteString(strconv.Itoa(v))
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

func readInts(name string) ([]int, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var ret []int
	s := bufio.NewScanner(f)
	for s.Scan() {
		if s.Text() == "" {
			continue
		}
		v, err := strconv.Atoi(s.Text())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		ret = append(ret, v)
	}
	return ret, s.Err()
}
