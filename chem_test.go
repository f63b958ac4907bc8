/*
 * chem_test.go, part of msmcells.
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
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	v3 "github.com/rmera/msmcells/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A small dipeptide with a water, 2 models.
const testPDB = `REMARK test
MODEL        1
ATOM      1  N   ALA A   1      -0.677  -1.230  -0.491  1.00  0.00           N
ATOM      2  CA  ALA A   1      -0.001   0.064  -0.491  1.00  0.00           C
ATOM      3  C   ALA A   1       1.499  -0.110  -0.491  1.00  0.00           C
ATOM      4  O   ALA A   1       2.030  -1.227  -0.502  1.00  0.00           O
ATOM      5  CB  ALA A   1      -0.509   0.856   0.727  1.00  0.00           C
ATOM      6  HA  ALA A   1      -0.260   0.623  -1.399  1.00  0.00           H
ATOM      7  N   GLY A   2       2.201   1.023  -0.480  1.00  0.00           N
ATOM      8  CA  GLY A   2       3.655   1.005  -0.478  1.00  0.00           C
ATOM      9  C   GLY A   2       4.234   2.411  -0.470  1.00  0.00           C
ATOM     10  O   GLY A   2       3.489   3.385  -0.463  1.00  0.00           O
HETATM   11  O   HOH B   3       6.000   6.000   6.000  1.00 10.00           O
ENDMDL
MODEL        2
ATOM      1  N   ALA A   1      -0.577  -1.230  -0.491  1.00  0.00           N
ATOM      2  CA  ALA A   1       0.099   0.064  -0.491  1.00  0.00           C
ATOM      3  C   ALA A   1       1.599  -0.110  -0.491  1.00  0.00           C
ATOM      4  O   ALA A   1       2.130  -1.227  -0.502  1.00  0.00           O
ATOM      5  CB  ALA A   1      -0.409   0.856   0.727  1.00  0.00           C
ATOM      6  HA  ALA A   1      -0.160   0.623  -1.399  1.00  0.00           H
ATOM      7  N   GLY A   2       2.301   1.023  -0.480  1.00  0.00           N
ATOM      8  CA  GLY A   2       3.755   1.005  -0.478  1.00  0.00           C
ATOM      9  C   GLY A   2       4.334   2.411  -0.470  1.00  0.00           C
ATOM     10  O   GLY A   2       3.589   3.385  -0.463  1.00  0.00           O
HETATM   11  O   HOH B   3       6.100   6.000   6.000  1.00 20.00           O
ENDMDL
END
`

func readTestPDB(Te *testing.T) *Molecule {
	mol, err := PDBRead(strings.NewReader(testPDB))
	require.NoError(Te, err)
	return mol
}

func TestPDBRead(Te *testing.T) {
	mol := readTestPDB(Te)
	assert.Equal(Te, 11, mol.Len())
	assert.Equal(Te, 2, mol.NFrames())
	ca := mol.Atom(1)
	assert.Equal(Te, "CA", ca.Name)
	assert.Equal(Te, "ALA", ca.MolName)
	assert.Equal(Te, byte('A'), ca.MolName1)
	assert.Equal(Te, "C", ca.Symbol)
	assert.InDelta(Te, 12.01, ca.Mass, 1e-9)
	w := mol.Atom(10)
	assert.True(Te, w.Het)
	assert.Equal(Te, "B", w.Chain)
	assert.Equal(Te, 3, w.MolID)
	assert.InDelta(Te, 20.0, mol.Bfactors[1][10], 1e-9)
	assert.InDelta(Te, 6.1, mol.Coords[1].At(10, 0), 1e-9)

	//as a trajectory
	c := v3.Zeros(mol.Len())
	require.NoError(Te, mol.Next(nil))
	require.NoError(Te, mol.Next(c))
	assert.InDelta(Te, 0.099, c.At(1, 0), 1e-9)
	assert.True(Te, IsLastFrame(mol.Next(c)))
	mol.InitRead()
	assert.True(Te, mol.Readable())
}

func TestPDBReadErrors(Te *testing.T) {
	_, err := PDBRead(strings.NewReader("REMARK nothing here\nEND\n"))
	assert.Error(Te, err)
	//second model with one atom less
	lines := strings.Split(testPDB, "\n")
	var trunc []string
	for i, l := range lines {
		if i != 25 {
			trunc = append(trunc, l)
		}
	}
	_, err = PDBRead(strings.NewReader(strings.Join(trunc, "\n")))
	assert.Error(Te, err)
	_, err = PDBFileRead(filepath.Join(Te.TempDir(), "missing.pdb"))
	assert.Error(Te, err)
}

func TestPDBWriteRoundTrip(Te *testing.T) {
	mol := readTestPDB(Te)
	name := filepath.Join(Te.TempDir(), "out.pdb")
	require.NoError(Te, FileWrite(name, mol.Coords[1], mol, nil))
	mol2, err := FileRead(name)
	require.NoError(Te, err)
	require.Equal(Te, mol.Len(), mol2.Len())
	assert.Equal(Te, 1, mol2.NFrames())
	for i := 0; i < mol.Len(); i++ {
		assert.Equal(Te, mol.Atom(i).Name, mol2.Atom(i).Name)
		assert.Equal(Te, mol.Atom(i).Chain, mol2.Atom(i).Chain)
		for j := 0; j < 3; j++ {
			assert.InDelta(Te, mol.Coords[1].At(i, j), mol2.Coords[0].At(i, j), 1e-3)
		}
	}
	var b bytes.Buffer
	require.NoError(Te, PDBWrite(&b, mol.Coords[0], mol, nil))
	assert.Contains(Te, b.String(), "\nTER\n")
	assert.Error(Te, PDBWrite(&b, v3.Zeros(2), mol, nil))
}

func TestXYZ(Te *testing.T) {
	mol := readTestPDB(Te)
	name := filepath.Join(Te.TempDir(), "out.xyz")
	require.NoError(Te, FileWrite(name, mol.Coords[0], mol, nil))
	mol2, err := FileRead(name)
	require.NoError(Te, err)
	assert.Equal(Te, mol.Len(), mol2.Len())
	assert.Equal(Te, "H", mol2.Atom(5).Symbol)
	assert.InDelta(Te, 3.655, mol2.Coords[0].At(7, 0), 1e-6)
	_, err = FileRead("structure.gro")
	assert.Error(Te, err)
}

func TestTopology(Te *testing.T) {
	mol := readTestPDB(Te)
	sub := mol.SomeAtoms([]int{1, 7})
	assert.Equal(Te, 2, sub.Len())
	sub.Atom(0).Name = "XX"
	assert.Equal(Te, "CA", mol.Atom(1).Name)
	assert.Panics(Te, func() { mol.Atom(11) })
	cp := CopyAtoms(mol)
	assert.Equal(Te, mol.Len(), cp.Len())
	_, err := NewMolecule(cp, []*v3.Matrix{v3.Zeros(3)}, nil)
	assert.Error(Te, err)
}

func TestErrors(Te *testing.T) {
	err := NewError("something failed", "Inner")
	err.Decorate("Outer")
	assert.True(Te, err.Critical())
	assert.Contains(Te, err.Error(), "something failed")
	assert.Nil(Te, ErrDecorate(nil, "x"))
	assert.False(Te, IsLastFrame(err))
	assert.True(Te, IsLastFrame(newlastFrameError("f", "molecule", "Next")))
}
