/*
 * traj.go, part of msmcells.
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

package traj

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	chem "github.com/rmera/msmcells"
	"github.com/rmera/msmcells/traj/amber"
	"github.com/rmera/msmcells/traj/dcd"
	"github.com/rmera/msmcells/traj/stf"
)

var (
	// ErrUnknownFormat is returned for trajectories with an unsupported extension.
	ErrUnknownFormat = errors.New("unknown trajectory format")
	// ErrAtomCount is returned when a trajectory doesn't have the expected number of atoms.
	ErrAtomCount = errors.New("number of atoms in trajectory doesn't match topology")
	// ErrNoMatch is returned when a trajectory pattern matches no file.
	ErrNoMatch = errors.New("pattern matches no file")
)

// Format returns the trajectory format name for the file name, or "" if
// the extension is not supported.
func Format(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".stf", ".sts", ".stz", ".str", ".stl":
		return "stf"
	case ".mdcrd", ".crd", ".trj":
		return "mdcrd"
	case ".dcd":
		return "dcd"
	case ".pdb", ".ent":
		return "pdb"
	case ".xyz":
		return "xyz"
	}
	return ""
}

// Open opens the trajectory name for reading. natoms is the number of atoms
// per frame, and it is checked against the file where the format allows it.
// Multi-model PDB and multi-frame XYZ files are read whole into memory.
func Open(name string, natoms int) (chem.TrajCloser, error) {
	var t chem.TrajCloser
	switch Format(name) {
	case "stf":
		s, _, err := stf.New(name)
		if err != nil {
			return nil, err
		}
		t = s
	case "mdcrd":
		c, err := amber.New(name, natoms)
		if err != nil {
			return nil, err
		}
		t = c
	case "dcd":
		d, err := dcd.New(name)
		if err != nil {
			return nil, err
		}
		t = d
	case "pdb", "xyz":
		mol, err := chem.FileRead(name)
		if err != nil {
			return nil, err
		}
		t = mol
	default:
		return nil, fmt.Errorf("opening %s: %w", name, ErrUnknownFormat)
	}
	if t.Len() != natoms {
		t.Close()
		return nil, fmt.Errorf("opening %s: %w (%d vs %d)", name, ErrAtomCount, t.Len(), natoms)
	}
	return t, nil
}

// Glob expands each pattern in patterns and returns the matching file names.
// The matches of each pattern are sorted, and the patterns keep their order,
// so the position of each trajectory in the returned slice is deterministic.
// A pattern without matches is an error.
func Glob(patterns []string) ([]string, error) {
	var ret []string
	seen := make(map[string]bool)
	for _, p := range patterns {
		m, err := filepath.Glob(p)
		if err != nil {
			return nil, fmt.Errorf("expanding %q: %w", p, err)
		}
		if len(m) == 0 {
			return nil, fmt.Errorf("expanding %q: %w", p, ErrNoMatch)
		}
		for _, v := range m {
			if seen[v] {
				continue
			}
			seen[v] = true
			ret = append(ret, v)
		}
	}
	return ret, nil
}
