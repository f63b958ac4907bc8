/*
 * traj_test.go, part of msmcells.
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
	"os"
	"path/filepath"
	"testing"

	chem "github.com/rmera/msmcells"
	"github.com/rmera/msmcells/traj/dcd"
	"github.com/rmera/msmcells/traj/stf"
	v3 "github.com/rmera/msmcells/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func topology(natoms int) *chem.Topology {
	ats := make([]*chem.Atom, natoms)
	for i := range ats {
		ats[i] = &chem.Atom{Name: "CA", Symbol: "C", MolName: "ALA", MolID: i + 1, ID: i + 1, Chain: "A"}
	}
	return chem.NewTopology(ats)
}

// frame returns coordinates that encode the trajectory and frame index.
func frame(traj, f, natoms int) *v3.Matrix {
	m := v3.Zeros(natoms)
	for i := 0; i < natoms; i++ {
		m.Set(i, 0, float64(traj))
		m.Set(i, 1, float64(f))
		m.Set(i, 2, float64(i))
	}
	return m
}

func writeSTF(Te *testing.T, name string, traj, nframes, natoms int) {
	w, err := stf.NewWriter(name, natoms, nil)
	require.NoError(Te, err)
	for f := 0; f < nframes; f++ {
		require.NoError(Te, w.WNext(frame(traj, f, natoms)))
	}
	require.NoError(Te, w.Close())
}

func TestFrameSet(Te *testing.T) {
	dir := Te.TempDir()
	names := []string{filepath.Join(dir, "t0.stf"), filepath.Join(dir, "t1.stf")}
	writeSTF(Te, names[0], 0, 3, 4)
	writeSTF(Te, names[1], 1, 2, 4)
	fs := NewFrameSet(topology(4), names)
	defer fs.Close()
	opens := 0
	fs.open = func(name string, natoms int) (chem.TrajCloser, error) {
		opens++
		return Open(name, natoms)
	}
	dst := v3.Zeros(4)
	check := func(traj, f int) {
		require.NoError(Te, fs.Frame(traj, f, dst))
		assert.Equal(Te, float64(traj), dst.At(2, 0))
		assert.Equal(Te, float64(f), dst.At(2, 1))
		assert.Equal(Te, 2.0, dst.At(2, 2))
	}
	check(0, 0)
	check(0, 2)
	check(1, 1)
	assert.Equal(Te, 2, opens)
	check(1, 0) //backwards: reopens
	assert.Equal(Te, 3, opens)

	err := fs.Frame(1, 5, dst)
	assert.ErrorIs(Te, err, ErrFrameOutOfRange)
	assert.ErrorIs(Te, fs.Frame(2, 0, dst), ErrFrameOutOfRange)
	assert.Equal(Te, 2, fs.Len())
	assert.Equal(Te, 4, fs.Atoms().Len())
}

func TestOpen(Te *testing.T) {
	dir := Te.TempDir()
	top := topology(3)
	xyz := filepath.Join(dir, "multi.xyz")
	f, err := os.Create(xyz)
	require.NoError(Te, err)
	for i := 0; i < 2; i++ {
		require.NoError(Te, chem.XYZWrite(f, frame(0, i, 3), top))
	}
	require.NoError(Te, f.Close())

	t, err := Open(xyz, 3)
	require.NoError(Te, err)
	dst := v3.Zeros(3)
	require.NoError(Te, t.Next(nil))
	require.NoError(Te, t.Next(dst))
	assert.Equal(Te, 1.0, dst.At(0, 1))
	assert.True(Te, chem.IsLastFrame(t.Next(dst)))
	t.Close()

	_, err = Open(xyz, 4)
	assert.ErrorIs(Te, err, ErrAtomCount)
	_, err = Open(filepath.Join(dir, "traj.xtc"), 3)
	assert.ErrorIs(Te, err, ErrUnknownFormat)

	name := filepath.Join(dir, "traj.dcd")
	w, err := dcd.NewWriter(name, 3, false)
	require.NoError(Te, err)
	require.NoError(Te, w.WNext(frame(2, 7, 3)))
	require.NoError(Te, w.Close())
	t, err = Open(name, 3)
	require.NoError(Te, err)
	require.NoError(Te, t.Next(dst))
	assert.Equal(Te, 7.0, dst.At(1, 1))
	assert.True(Te, chem.IsLastFrame(t.Next(dst)))
	t.Close()
	assert.Equal(Te, "dcd", Format("x/prod.DCD"))
	assert.Equal(Te, "stf", Format("a/b.STZ"))
	assert.Equal(Te, "mdcrd", Format("prod.mdcrd"))
}

func TestGlob(Te *testing.T) {
	dir := Te.TempDir()
	for _, n := range []string{"b.stf", "a.stf", "c.xyz"} {
		require.NoError(Te, os.WriteFile(filepath.Join(dir, n), nil, 0o644))
	}
	names, err := Glob([]string{filepath.Join(dir, "*.stf"), filepath.Join(dir, "*")})
	require.NoError(Te, err)
	assert.Equal(Te, []string{
		filepath.Join(dir, "a.stf"),
		filepath.Join(dir, "b.stf"),
		filepath.Join(dir, "c.xyz"),
	}, names)
	_, err = Glob([]string{filepath.Join(dir, "*.pdb")})
	assert.ErrorIs(Te, err, ErrNoMatch)
}
