/*
 * chem.go, part of msmcells.
 *
 * Copyright 2012 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
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

package chem

import (
	"fmt"

	v3 "github.com/rmera/msmcells/v3"
)

// Atom contains the atoms read except for the coordinates, which will be in a matrix.
type Atom struct {
	Name      string
	ID        int
	Tag       int //Just added this for something that someone might want to keep that is not a float.
	MolName   string
	MolName1  byte //the one letter name for residues and nucleotids
	MolID     int
	Chain     string
	Mass      float64
	Occupancy float64
	Bfactor   float64
	Charge    float64
	Symbol    string
	Het       bool // is hetatm in the pdb file?
}

// Copy returns a copy of the Atom object.
func (N *Atom) Copy() *Atom {
	A := *N
	return &A
}

// Topology contains information about a molecular system, other than the coordinates.
type Topology struct {
	Atoms []*Atom
}

// NewTopology returns a topology with the given atoms. The slice is not copied.
func NewTopology(ats []*Atom) *Topology {
	return &Topology{Atoms: ats}
}

// Atom returns the Atom corresponding to the index i
// of the Atom slice in the Topology. Panics if
// out of range.
func (T *Topology) Atom(i int) *Atom {
	if i >= len(T.Atoms) || i < 0 {
		panic(fmt.Sprintf("Topology.Atom: index %d out of range (%d atoms)", i, len(T.Atoms)))
	}
	return T.Atoms[i]
}

// Len returns the number of atoms in the topology.
func (T *Topology) Len() int {
	return len(T.Atoms)
}

// SomeAtoms returns a new topology with copies of the atoms of T in the
// positions given by atomlist, in that order.
func (T *Topology) SomeAtoms(atomlist []int) *Topology {
	ats := make([]*Atom, 0, len(atomlist))
	for _, v := range atomlist {
		ats = append(ats, T.Atom(v).Copy())
	}
	return NewTopology(ats)
}

// CopyAtoms returns a new Topology with copies of the atoms in A.
func CopyAtoms(A Atomer) *Topology {
	ats := make([]*Atom, A.Len())
	for i := range ats {
		ats[i] = A.Atom(i).Copy()
	}
	return NewTopology(ats)
}

// Molecule contains all the info for a molecule in many states. The info that is expected to change between states,
// Coordinates and b-factors are stored separately from other atomic info.
// A Molecule is also a Traj, reading its frames in order.
type Molecule struct {
	*Topology
	Coords   []*v3.Matrix
	Bfactors [][]float64
	current  int
}

// NewMolecule makes a molecule with ats atoms, coords coordinates, and bfactors b-factors.
// It checks for consistency and returns an error if something does not match. A nil bfactors
// is filled with zeros.
func NewMolecule(top *Topology, coords []*v3.Matrix, bfactors [][]float64) (*Molecule, error) {
	if top == nil {
		return nil, NewError(ErrEmptySet, "NewMolecule")
	}
	if len(coords) == 0 {
		return nil, NewError(ErrNilCoords, "NewMolecule")
	}
	if bfactors == nil {
		bfactors = make([][]float64, len(coords))
	}
	for i, c := range coords {
		if c == nil {
			return nil, NewError(ErrNilCoords, "NewMolecule")
		}
		if c.NVecs() != top.Len() {
			return nil, NewError(fmt.Sprintf("%s: frame %d has %d coordinates, topology %d atoms", ErrCoordsAtoms, i, c.NVecs(), top.Len()), "NewMolecule")
		}
		if bfactors[i] == nil {
			bfactors[i] = make([]float64, top.Len())
		}
	}
	return &Molecule{Topology: top, Coords: coords, Bfactors: bfactors}, nil
}

// NFrames returns the number of frames (models) in the molecule.
func (M *Molecule) NFrames() int {
	return len(M.Coords)
}

// Readable returns true if there are frames left to read with Next.
func (M *Molecule) Readable() bool {
	return M.current < len(M.Coords)
}

// Next puts the next frame of the molecule in V. A nil V skips the frame.
// After the last frame, it returns a LastFrameError.
func (M *Molecule) Next(V *v3.Matrix, box ...[]float64) error {
	if !M.Readable() {
		return newlastFrameError("", "molecule", "Next")
	}
	if V != nil {
		if V.NVecs() != M.Len() {
			return NewError(ErrCoordsAtoms, "Next")
		}
		V.Copy(M.Coords[M.current])
	}
	M.current++
	return nil
}

// Close marks the molecule as fully read.
func (M *Molecule) Close() {
	M.current = len(M.Coords)
}

// InitRead resets the molecule, so it can be read again as a trajectory
// from the first frame.
func (M *Molecule) InitRead() {
	M.current = 0
}
