/*
 * geometric.go, part of msmcells.
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

	v3 "github.com/rmera/msmcells/v3"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Centroid returns a row vector with the geometric center of the coordinates in A.
func Centroid(A *v3.Matrix) *v3.Matrix {
	ret := v3.Zeros(1)
	n := A.NVecs()
	if n == 0 {
		return ret
	}
	for i := 0; i < n; i++ {
		for j := 0; j < 3; j++ {
			ret.Set(0, j, ret.At(0, j)+A.At(i, j))
		}
	}
	ret.Scale(1/float64(n), ret.Dense)
	return ret
}

// RMSD returns the root of the mean square deviation between the coordinates
// in test and templa, without superimposing them first.
func RMSD(test, templa *v3.Matrix) (float64, error) {
	if test == nil || templa == nil {
		return 0, NewError(ErrNilCoords, "RMSD")
	}
	n := templa.NVecs()
	if test.NVecs() != n {
		return 0, NewError(ErrNoCommonSize, "RMSD")
	}
	if n == 0 {
		return 0, NewError(ErrEmptySet, "RMSD")
	}
	var sq float64
	for i := 0; i < n; i++ {
		d := floats.Distance(test.RawRowView(i), templa.RawRowView(i), 2)
		sq += d * d
	}
	return math.Sqrt(sq / float64(n)), nil
}

// Super returns a copy of test, rotated and translated so it is optimally
// superimposed (in the least-squares sense) on templa. Reflections are
// never applied. The input matrices are not modified.
func Super(test, templa *v3.Matrix) (*v3.Matrix, error) {
	if test == nil || templa == nil {
		return nil, NewError(ErrNilCoords, "Super")
	}
	n := templa.NVecs()
	if test.NVecs() != n {
		return nil, NewError(ErrNoCommonSize, "Super")
	}
	if n == 0 {
		return nil, NewError(ErrEmptySet, "Super")
	}
	ctest := Centroid(test)
	ctempla := Centroid(templa)
	P := v3.Zeros(n)
	P.SubVec(test, ctest)
	Q := v3.Zeros(n)
	Q.SubVec(templa, ctempla)

	var H mat.Dense
	H.Mul(P.T(), Q.Dense)
	var svd mat.SVD
	if ok := svd.Factorize(&H, mat.SVDFull); !ok {
		return nil, NewError(ErrSVDFailed, "Super")
	}
	var U, V mat.Dense
	svd.UTo(&U)
	svd.VTo(&V)
	d := 1.0
	if mat.Det(&U)*mat.Det(&V) < 0 {
		d = -1.0
	}
	D := mat.NewDiagDense(3, []float64{1, 1, d})
	var rot, UD mat.Dense
	UD.Mul(&U, D)
	rot.Mul(&UD, V.T())

	ret := v3.Zeros(n)
	ret.Mul(P, &rot)
	ret.AddVec(ret, ctempla)
	return ret, nil
}

// SuperRMSD superimposes test on templa and returns the RMSD between
// the superimposed test and templa. Neither matrix is modified.
func SuperRMSD(test, templa *v3.Matrix) (float64, error) {
	s, err := Super(test, templa)
	if err != nil {
		return 0, ErrDecorate(err, "SuperRMSD")
	}
	return RMSD(s, templa)
}
