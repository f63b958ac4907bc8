/*
 * msm_test.go, part of msmcells.
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

import (
	"bufio"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapper(Te *testing.T) {
	M, err := NewMapper(map[int]int{0: 0, 1: 1, 2: -1, 5: 1}, 2)
	require.NoError(Te, err)
	cases := []struct {
		label, state int
		ok           bool
	}{
		{0, 0, true},
		{1, 1, true},
		{2, Unmapped, false},
		{3, Unmapped, false},
		{5, 1, true},
		{6, Unmapped, false},
		{-1, Unmapped, false},
	}
	for _, c := range cases {
		s, ok := M.State(c.label)
		assert.Equal(Te, c.state, s, "label %d", c.label)
		assert.Equal(Te, c.ok, ok, "label %d", c.label)
	}
	assert.Equal(Te, 2, M.NStates())
	assert.Equal(Te, 6, M.Labels())

	_, err = NewMapper(map[int]int{0: 2}, 2)
	assert.ErrorIs(Te, err, ErrMappingRange)
	_, err = NewMapper(map[int]int{-3: 0}, 2)
	assert.ErrorIs(Te, err, ErrMappingRange)
	empty, err := NewMapper(nil, 0)
	require.NoError(Te, err)
	_, ok := empty.State(0)
	assert.False(Te, ok)
}

func TestModel(Te *testing.T) {
	M := &Model{Mapping: map[int]int{0: 0, 1: 2, 2: -1}}
	assert.Equal(Te, 3, M.NStates())
	M.Populations = []float64{0.5, 0.25, 0.25}
	require.NoError(Te, M.Validate())
	M.Populations = []float64{0.5, 0.5}
	assert.ErrorIs(Te, M.Validate(), ErrMappingRange)
	M.Populations = []float64{0.5, math.NaN(), 0.1}
	assert.ErrorIs(Te, M.Validate(), ErrPopulation)
	assert.ErrorIs(Te, (&Model{}).Validate(), ErrEmptyModel)
}

func TestLoadModel(Te *testing.T) {
	dir := Te.TempDir()
	json := filepath.Join(dir, "msm.json")
	require.NoError(Te, os.WriteFile(json, []byte(`{"mapping_": {"0": 0, "1": 1, "2": -1}, "populations_": [0.75, 0.25], "n_states_": 2}`), 0o644))
	M, err := LoadModel(json)
	require.NoError(Te, err)
	assert.Equal(Te, map[int]int{0: 0, 1: 1, 2: -1}, M.Mapping)
	assert.Equal(Te, []float64{0.75, 0.25}, M.Populations)

	yml := filepath.Join(dir, "msm.yaml")
	require.NoError(Te, WriteModel(yml, M))
	M2, err := LoadModel(yml)
	require.NoError(Te, err)
	assert.Equal(Te, M, M2)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(Te, os.WriteFile(bad, []byte("mapping:\n  0: 3\npopulations: [1.0]\n"), 0o644))
	_, err = LoadModel(bad)
	assert.ErrorIs(Te, err, ErrMappingRange)
	_, err = LoadModel(filepath.Join(dir, "missing.yaml"))
	assert.Error(Te, err)
}

func TestLoadClusterer(Te *testing.T) {
	dir := Te.TempDir()
	name := filepath.Join(dir, "clusterer.json")
	require.NoError(Te, os.WriteFile(name, []byte(`{"cluster_centers_": [[0, 0], [1.5, 1]]}`), 0o644))
	C, err := LoadClusterer(name)
	require.NoError(Te, err)
	assert.Equal(Te, [][]float64{{0, 0}, {1.5, 1}}, C.Centers)
	assert.Equal(Te, 2, C.Dim())

	yml := filepath.Join(dir, "clusterer.yaml")
	C.Centers = append(C.Centers, []float64{1})
	require.NoError(Te, WriteClusterer(yml, C))
	_, err = LoadClusterer(yml)
	assert.ErrorIs(Te, err, ErrShape)
	require.NoError(Te, os.WriteFile(yml, []byte("cluster_centers: []\n"), 0o644))
	_, err = LoadClusterer(yml)
	assert.ErrorIs(Te, err, ErrNoCenters)
}

func TestDatasets(Te *testing.T) {
	dir := Te.TempDir()
	labels := Assignments{{0, 1}, {}, {2, 2, 0}}
	reduced := Reduced{{{0.1, 0.2}, {1e-7, -3}}, {}, {{1, 1}, {2, 2}, {0.5, 0.25}}}
	require.NoError(Te, CheckShapes(labels, reduced))
	assert.Equal(Te, 5, labels.NFrames())
	for _, ext := range []string{".dat", ".dat.zst"} {
		ln := filepath.Join(dir, "labels"+ext)
		rn := filepath.Join(dir, "reduced"+ext)
		require.NoError(Te, WriteAssignments(ln, labels))
		require.NoError(Te, WriteReduced(rn, reduced))
		l2, err := ReadAssignments(ln)
		require.NoError(Te, err, ext)
		r2, err := ReadReduced(rn)
		require.NoError(Te, err, ext)
		assert.Equal(Te, labels, l2, ext)
		assert.Equal(Te, reduced, r2, ext)
	}
	empty := filepath.Join(dir, "empty.dat")
	require.NoError(Te, os.WriteFile(empty, nil, 0o644))
	l, err := ReadAssignments(empty)
	require.NoError(Te, err)
	assert.Len(Te, l, 0)
}

func TestDatasetErrors(Te *testing.T) {
	dir := Te.TempDir()
	for i, content := range []string{
		"traj 0 2\n1\n",
		"traj 1 1\n1\n",
		"1\n2\n",
		"traj 0 1\nx\n",
		"traj 0 -1\n",
		"traj 0 9223372036854775807\n0\n",
		"traj 0 1\n0\ntraj 1 3\n1\n2\n",
	} {
		name := filepath.Join(dir, "bad.dat")
		require.NoError(Te, os.WriteFile(name, []byte(content), 0o644))
		_, err := ReadAssignments(name)
		assert.ErrorIs(Te, err, ErrFormat, "case %d", i)
		_, err = ReadReduced(name)
		assert.ErrorIs(Te, err, ErrFormat, "case %d", i)
	}
	huge := filepath.Join(dir, "huge.dat.zst")
	require.NoError(Te, WriteAssignments(huge, Assignments{{0}}))
	_, err := ReadAssignments(huge)
	require.NoError(Te, err)
	broken := errors.New("broken")
	err = withWriter(huge, "huge", func(w *bufio.Writer) error {
		fmt.Fprintf(w, "traj 0 9223372036854775807\n0\n")
		return broken
	})
	assert.ErrorIs(Te, err, broken)
	require.NoError(Te, withWriter(huge, "huge", func(w *bufio.Writer) error {
		_, err := fmt.Fprintf(w, "traj 0 9223372036854775807\n0\n")
		return err
	}))
	_, err = ReadAssignments(huge)
	assert.ErrorIs(Te, err, ErrFormat)
	assert.ErrorIs(Te, CheckShapes(Assignments{{1}}, Reduced{}), ErrShape)
	assert.ErrorIs(Te, CheckShapes(Assignments{{1, 2}}, Reduced{{{1}}}), ErrShape)
	assert.ErrorIs(Te, CheckShapes(Assignments{{1, 2}}, Reduced{{{1}, {1, 2}}}), ErrShape)
}
