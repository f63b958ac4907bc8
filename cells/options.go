/*
 * options.go, part of msmcells.
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
	"log/slog"
	"path/filepath"
	"strings"

	chem "github.com/rmera/msmcells"
	v3 "github.com/rmera/msmcells/v3"
)

// Frames gives access to trajectory frames by (trajectory, frame).
type Frames interface {
	//Frame puts the coordinates of the frame in dst, which has Atoms().Len() vectors.
	Frame(traj, frame int, dst *v3.Matrix) error
	//Atoms returns the topology shared by all frames.
	Atoms() chem.Atomer
}

// Options contains the settings shared by the functions in this package.
type Options struct {
	format    string
	log       *slog.Logger
	selection string
	threshold float64
	strict    bool
}

// DefaultOptions returns options that write PDB files, log to the default
// slog logger, use all atoms for the RMSD, with a folding threshold of 2 A,
// and number the cells consecutively when some macrostate has no center.
func DefaultOptions() *Options {
	return &Options{
		format:    "pdb",
		log:       slog.Default(),
		selection: "all",
		threshold: 2.0,
	}
}

// Format returns the extension (without the dot) of the structure files written and read,
// and sets it to a new value, if given.
func (O *Options) Format(ext ...string) string {
	if len(ext) > 0 && ext[0] != "" {
		O.format = strings.TrimPrefix(strings.ToLower(ext[0]), ".")
	}
	return O.format
}

// Logger returns the logger for warnings and progress, and sets it to a new value, if given.
func (O *Options) Logger(l ...*slog.Logger) *slog.Logger {
	if len(l) > 0 && l[0] != nil {
		O.log = l[0]
	}
	if O.log == nil {
		return slog.Default()
	}
	return O.log
}

// Selection returns the atom selection used to compare the centers with
// the reference, and sets it to a new value, if given.
func (O *Options) Selection(sel ...string) string {
	if len(sel) > 0 && sel[0] != "" {
		O.selection = sel[0]
	}
	return O.selection
}

// Threshold returns the RMSD, in A, under which a cell is considered folded,
// and sets it to a new value, if given.
func (O *Options) Threshold(t ...float64) float64 {
	if len(t) > 0 && t[0] >= 0 {
		O.threshold = t[0]
	}
	return O.threshold
}

// Strict returns whether Assign rejects gaps in the center indexes, instead of
// numbering the cells consecutively, and sets it to a new value, if given.
func (O *Options) Strict(s ...bool) bool {
	if len(s) > 0 {
		O.strict = s[0]
	}
	return O.strict
}

func orDefault(O *Options) *Options {
	if O == nil {
		return DefaultOptions()
	}
	return O
}

// Layout holds the paths of the output files and directories.
type Layout struct {
	Samples          string //directory with the State<s>-<k> files
	Centers          string //directory with the Center<s> files
	Cells            string //cell geometry file
	Folded           string
	Unfolded         string
	Weights          string
	CellIndices      string //atoms used for the cells, skipped if empty
	StructureIndices string //atoms used for the walkers, skipped if empty
	CellStates       string //macrostate of each cell, skipped if empty
}

// NewLayout returns the default layout, with everything under the directory root.
func NewLayout(root string) *Layout {
	return &Layout{
		Samples:          filepath.Join(root, "States"),
		Centers:          filepath.Join(root, "Centers"),
		Cells:            filepath.Join(root, "cells.dat"),
		Folded:           filepath.Join(root, "folded.dat"),
		Unfolded:         filepath.Join(root, "unfolded.dat"),
		Weights:          filepath.Join(root, "weights.dat"),
		CellIndices:      filepath.Join(root, "CellIndices.dat"),
		StructureIndices: filepath.Join(root, "StructureIndices.dat"),
		CellStates:       filepath.Join(root, "CellStates.dat"),
	}
}
