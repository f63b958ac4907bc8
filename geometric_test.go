/*
 * geometric_test.go, part of msmcells.
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
	"math"
	"testing"

	v3 "github.com/rmera/msmcells/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// rotated returns A rotated by angle radians around z, then around x, and translated by t.
func rotated(A *v3.Matrix, angle float64, t []float64) *v3.Matrix {
	c, s := math.Cos(angle), math.Sin(angle)
	rz := mat.NewDense(3, 3, []float64{c, -s, 0, s, c, 0, 0, 0, 1})
	rx := mat.NewDense(3, 3, []float64{1, 0, 0, 0, c, -s, 0, s, c})
	var rot mat.Dense
	rot.Mul(rz, rx)
	ret := v3.Zeros(A.NVecs())
	ret.Mul(A, &rot)
	tv, _ := v3.NewMatrix(t)
	ret.AddVec(ret, tv)
	return ret
}

func TestSuperRMSD(Te *testing.T) {
	mol := readTestPDB(Te)
	ref := mol.Coords[0]
	moved := rotated(ref, 0.7, []float64{3, -2, 10})

	raw, err := RMSD(moved, ref)
	require.NoError(Te, err)
	assert.Greater(Te, raw, 1.0)

	rmsd, err := SuperRMSD(moved, ref)
	require.NoError(Te, err)
	assert.InDelta(Te, 0.0, rmsd, 1e-6)

	sup, err := Super(moved, ref)
	require.NoError(Te, err)
	for i := 0; i < ref.NVecs(); i++ {
		for j := 0; j < 3; j++ {
			assert.InDelta(Te, ref.At(i, j), sup.At(i, j), 1e-6)
		}
	}
	//the inputs are not touched
	again, err := RMSD(moved, ref)
	require.NoError(Te, err)
	assert.Equal(Te, raw, again)

	//The two models differ by a rigid translation of 0.1 A in x.
	rmsd, err = SuperRMSD(mol.Coords[1], ref)
	require.NoError(Te, err)
	assert.Less(Te, rmsd, 0.05)
}

func TestSuperNoReflection(Te *testing.T) {
	mol := readTestPDB(Te)
	ref := mol.Coords[0]
	mirror := v3.Zeros(ref.NVecs())
	mirror.Copy(ref)
	for i := 0; i < mirror.NVecs(); i++ {
		mirror.Set(i, 2, -mirror.At(i, 2))
	}
	rmsd, err := SuperRMSD(mirror, ref)
	require.NoError(Te, err)
	assert.Greater(Te, rmsd, 0.1)
}

func TestRMSDErrors(Te *testing.T) {
	_, err := RMSD(v3.Zeros(2), v3.Zeros(3))
	assert.Error(Te, err)
	_, err = Super(nil, v3.Zeros(3))
	assert.Error(Te, err)
	_, err = SuperRMSD(v3.Zeros(4), v3.Zeros(3))
	assert.Error(Te, err)
	c := Centroid(rotated(v3.Zeros(4), 1, []float64{1, 2, 3}))
	assert.InDelta(Te, 2.0, c.At(0, 1), 1e-12)
}
