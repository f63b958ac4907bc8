/*
 * stf_test.go, part of msmcells.
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

package stf

import (
	"os"
	"path/filepath"
	"testing"

	chem "github.com/rmera/msmcells"
	v3 "github.com/rmera/msmcells/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFrames(nframes, natoms int) []*v3.Matrix {
	ret := make([]*v3.Matrix, nframes)
	for f := range ret {
		ret[f] = v3.Zeros(natoms)
		for i := 0; i < natoms; i++ {
			for j := 0; j < 3; j++ {
				ret[f].Set(i, j, float64(f)+0.25*float64(i)-1.5*float64(j))
			}
		}
	}
	return ret
}

func writeTraj(Te *testing.T, name string, frames []*v3.Matrix, header map[string]string) {
	w, err := NewWriter(name, frames[0].NVecs(), header)
	require.NoError(Te, err)
	box := []float64{10, 0, 0, 0, 10, 0, 0, 0, 10}
	for _, f := range frames {
		require.NoError(Te, w.WNext(f, box))
	}
	require.NoError(Te, w.Close())
}

// Writes and reads back a trajectory with each of the supported compressions.
func TestSTFRoundTrip(Te *testing.T) {
	dir := Te.TempDir()
	frames := testFrames(3, 4)
	for _, ext := range []string{".stf", ".stz", ".str", ".stl"} {
		name := filepath.Join(dir, "traj"+ext)
		writeTraj(Te, name, frames, map[string]string{"title": "test"})
		r, header, err := New(name)
		require.NoError(Te, err, ext)
		assert.Equal(Te, "test", header["title"])
		assert.Equal(Te, "2", header["prec"])
		assert.Equal(Te, 4, r.Len())
		mat := v3.Zeros(r.Len())
		box := make([]float64, 9)
		read := 0
		for {
			err := r.Next(mat, box)
			if err != nil {
				require.True(Te, chem.IsLastFrame(err), err.Error())
				break
			}
			for i := 0; i < 4; i++ {
				for j := 0; j < 3; j++ {
					assert.InDelta(Te, frames[read].At(i, j), mat.At(i, j), 0.006)
				}
			}
			assert.InDelta(Te, 10.0, box[4], 1e-9)
			read++
		}
		assert.Equal(Te, 3, read, ext)
		assert.False(Te, r.Readable())
	}
}

func TestSTFPrecisionAndSkip(Te *testing.T) {
	name := filepath.Join(Te.TempDir(), "prec.stf")
	frames := testFrames(2, 2)
	frames[1].Set(0, 0, 1.23456)
	writeTraj(Te, name, frames, map[string]string{"prec": "4"})
	r, _, err := New(name)
	require.NoError(Te, err)
	defer r.Close()
	require.NoError(Te, r.Next(nil))
	mat := v3.Zeros(2)
	require.NoError(Te, r.Next(mat))
	assert.InDelta(Te, 1.2346, mat.At(0, 0), 1e-9)
	assert.True(Te, chem.IsLastFrame(r.Next(mat)))
}

func TestSTFErrors(Te *testing.T) {
	dir := Te.TempDir()
	_, _, err := New(filepath.Join(dir, "missing.stf"))
	assert.Error(Te, err)

	name := filepath.Join(dir, "short.stf")
	w, err := NewWriter(name, 3, nil)
	require.NoError(Te, err)
	assert.Error(Te, w.WNext(v3.Zeros(2)))
	assert.Error(Te, w.WNext(nil))
	require.NoError(Te, w.Close())
	assert.Error(Te, w.WNext(v3.Zeros(3)))

	//A truncated frame, written by hand with gzip compression.
	bad := filepath.Join(dir, "bad.stz")
	w, err = NewWriter(bad, 2, nil)
	require.NoError(Te, err)
	_, err = w.w.WriteString("1 2 3\n*\n")
	require.NoError(Te, err)
	require.NoError(Te, w.Close())
	r, _, err := New(bad)
	require.NoError(Te, err)
	err = r.Next(v3.Zeros(2))
	require.Error(Te, err)
	assert.False(Te, chem.IsLastFrame(err))
	r.Close()

	plain := filepath.Join(dir, "plain.stf")
	require.NoError(Te, os.WriteFile(plain, []byte("not zstd"), 0o644))
	_, _, err = New(plain)
	assert.Error(Te, err)
}
