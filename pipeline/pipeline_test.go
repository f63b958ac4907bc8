/*
 * pipeline_test.go, part of msmcells.
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

package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	chem "github.com/rmera/msmcells"
	"github.com/rmera/msmcells/cells"
	"github.com/rmera/msmcells/msm"
	v3 "github.com/rmera/msmcells/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Algorithms that run through sh, registered once for all the tests.
var testAlgorithms = func() map[string]Algorithm {
	copyScript := "cp {in} {out} && echo {model} > {model} && echo ok"
	defs := []struct {
		name   string
		stage  Stage
		script string
	}{
		{"test-featurize", Featurize, copyScript},
		{"test-decompose", Decompose, copyScript},
		{"test-cluster", Cluster, copyScript},
		{"test-msm", FitMSM, "echo fitted > {model}"},
		{"test-fail", Cluster, "echo partial; echo broken >&2; exit 3"},
	}
	ret := make(map[string]Algorithm)
	for _, d := range defs {
		a, err := Register(d.name, d.stage, "sh", "-c", d.script)
		if err != nil {
			panic(err)
		}
		ret[d.name] = a
	}
	return ret
}()

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestRegistry(Te *testing.T) {
	a, err := ParseAlgorithm("kmeans", Cluster)
	require.NoError(Te, err)
	assert.Equal(Te, KMeans, a)
	assert.Equal(Te, "KMeans", a.String())
	_, err = ParseAlgorithm("KMeans", Featurize)
	assert.ErrorIs(Te, err, ErrWrongStage)
	_, err = ParseAlgorithm("SpectralClustering", Cluster)
	assert.ErrorIs(Te, err, ErrUnknownAlgorithm)
	_, err = Register("test-msm", FitMSM, "true")
	assert.Error(Te, err)
	_, err = Register("test-nostage", Stage(7), "true")
	assert.ErrorIs(Te, err, ErrUnknownStage)

	t, ok := TICA.Template()
	require.True(Te, ok)
	assert.Equal(Te, Decompose, t.Stage)
	args := t.Expand(map[string]string{"in": "features", "out": "reduced.dat", "model": "tica.pkl"})
	assert.Equal(Te, []string{"tICA", "--inp", "features", "--transformed", "reduced.dat", "--out", "tica.pkl"}, args)
	_, ok = Algorithm(-1).Template()
	assert.False(Te, ok)

	algs := Algorithms()
	for i := 1; i < len(algs); i++ {
		assert.LessOrEqual(Te, algs[i-1].Stage, algs[i].Stage)
	}
	assert.Equal(Te, testAlgorithms["test-fail"].String(), "test-fail")

	s, err := ParseStage("MSM")
	require.NoError(Te, err)
	assert.Equal(Te, FitMSM, s)
	_, err = ParseStage("simulate")
	assert.ErrorIs(Te, err, ErrUnknownStage)
}

func TestConfig(Te *testing.T) {
	dir := Te.TempDir()
	name := filepath.Join(dir, "config.yaml")
	yml := `topology: top.pdb
trajectories: ["trajs/*.xyz"]
samples: 5
cluster:
  algorithm: KCenters
  output: kc.dat
  model: kc.yaml
`
	require.NoError(Te, os.WriteFile(name, []byte(yml), 0o644))
	C, err := LoadConfig(name)
	require.NoError(Te, err)
	assert.Equal(Te, 5, C.Samples)
	assert.Equal(Te, 2.0, C.RMSD)
	assert.Equal(Te, "tICA", C.Decompose.Algorithm)
	C.Fill()
	assert.Equal(Te, "trajs/*.xyz", C.Featurize.Input)
	assert.Equal(Te, "features", C.Decompose.Input)
	assert.Equal(Te, "reduced.dat", C.Cluster.Input)
	assert.Equal(Te, "kc.dat", C.MSM.Input)
	assert.Equal(Te, "kc.dat", C.Labels)
	assert.Equal(Te, "kc.yaml", C.Clusterer)
	assert.Equal(Te, "msm.yaml", C.Model)
	assert.Equal(Te, "top.pdb", C.Reference)
	assert.Equal(Te, filepath.Join("cells", "metrics.prom"), C.OutputPath(C.Metrics))
	assert.Equal(Te, "/tmp/p.png", C.OutputPath("/tmp/p.png"))
	require.NoError(Te, C.Validate(true))

	C.MSM.Algorithm = "KMeans"
	err = C.Validate(true)
	assert.ErrorIs(Te, err, ErrWrongStage)
	assert.ErrorIs(Te, err, ErrConfig)
	assert.NoError(Te, C.Validate(false))
	C.MSM.Skip = true
	assert.NoError(Te, C.Validate(true))
	C.Samples = 0
	assert.ErrorIs(Te, C.Validate(false), ErrConfig)

	require.NoError(Te, os.WriteFile(name, []byte("samples: 2\nwalkers: 10\n"), 0o644))
	_, err = LoadConfig(name)
	assert.Error(Te, err)
}

// upstreamConfig returns a configuration where all the stages run the test scripts.
func upstreamConfig(Te *testing.T) (*Config, string) {
	dir := Te.TempDir()
	trj := filepath.Join(dir, "traj.xyz")
	require.NoError(Te, os.WriteFile(trj, []byte("frames\n"), 0o644))
	C := DefaultConfig()
	C.Topology = filepath.Join(dir, "top.pdb")
	C.Trajectories = []string{trj}
	C.Samples = 1
	C.LogDir = filepath.Join(dir, "logs")
	for _, s := range Stages {
		st := C.Stage(s)
		st.Algorithm = "test-" + s.String()
		st.Output = filepath.Join(dir, s.String()+".out.dat")
		st.Model = filepath.Join(dir, s.String()+".model")
	}
	C.MSM.Output = ""
	return C, dir
}

func TestUpstream(Te *testing.T) {
	C, dir := upstreamConfig(Te)
	P := New(C, quietLogger())
	require.NoError(Te, C.Validate(true))
	require.NoError(Te, P.Upstream(context.Background()))
	data, err := os.ReadFile(filepath.Join(dir, "cluster.out.dat"))
	require.NoError(Te, err)
	assert.Equal(Te, "frames\n", string(data))
	data, err = os.ReadFile(filepath.Join(dir, "msm.model"))
	require.NoError(Te, err)
	assert.Equal(Te, "fitted\n", string(data))
	out, err := os.ReadFile(filepath.Join(C.LogDir, "decompose.out"))
	require.NoError(Te, err)
	assert.Equal(Te, "ok\n", string(out))
	_, err = os.Stat(filepath.Join(C.LogDir, "msm.err"))
	assert.NoError(Te, err)
}

func TestUpstreamFailure(Te *testing.T) {
	C, dir := upstreamConfig(Te)
	C.Cluster.Algorithm = "test-fail"
	_, err := New(C, quietLogger()).Run(context.Background())
	require.Error(Te, err)
	var serr *StageError
	require.True(Te, errors.As(err, &serr))
	assert.Equal(Te, Cluster, serr.Stage)
	assert.Equal(Te, "sh", serr.Command[0])
	assert.Equal(Te, "broken\n", serr.Stderr)
	assert.Equal(Te, "partial\n", serr.Stdout)
	assert.Contains(Te, err.Error(), "stderr:\nbroken")
	assert.Contains(Te, err.Error(), "stdout:\npartial")
	var exitErr *exec.ExitError
	require.True(Te, errors.As(err, &exitErr))
	assert.Equal(Te, 3, exitErr.ExitCode())
	//nothing after the failing stage runs.
	_, err = os.Stat(filepath.Join(dir, "msm.model"))
	assert.True(Te, errors.Is(err, os.ErrNotExist))
	stderr, err := os.ReadFile(filepath.Join(C.LogDir, "cluster.err"))
	require.NoError(Te, err)
	assert.Equal(Te, "broken\n", string(stderr))
}

var baseCoords = []float64{
	0, 0, 0,
	4, 0, 0,
	0, 4, 0,
	0, 0, 4,
}

// writeXYZ writes a trajectory whose frame f is the base coordinates scaled
// by scale and translated by f along all axes.
func writeXYZ(Te *testing.T, name string, nframes int, scale float64) {
	var b strings.Builder
	for f := 0; f < nframes; f++ {
		fmt.Fprintf(&b, "4\nframe %d\n", f)
		for i := 0; i < 4; i++ {
			x, y, z := baseCoords[3*i]*scale+float64(f), baseCoords[3*i+1]*scale+float64(f), baseCoords[3*i+2]*scale+float64(f)
			fmt.Fprintf(&b, "C %.6f %.6f %.6f\n", x, y, z)
		}
	}
	require.NoError(Te, os.WriteFile(name, []byte(b.String()), 0o644))
}

// extractConfig writes a complete set of extraction inputs, with all the stages skipped.
func extractConfig(Te *testing.T) *Config {
	dir := Te.TempDir()
	C := DefaultConfig()
	for _, s := range Stages {
		C.Stage(s).Skip = true
	}
	ats := make([]*chem.Atom, 4)
	for i := range ats {
		ats[i] = &chem.Atom{Name: "CA", ID: i + 1, MolName: "ALA", MolID: i + 1, Chain: "A", Symbol: "C", Occupancy: 1}
	}
	base, err := v3.NewMatrix(append([]float64(nil), baseCoords...))
	require.NoError(Te, err)
	C.Topology = filepath.Join(dir, "top.pdb")
	require.NoError(Te, chem.PDBFileWrite(C.Topology, base, chem.NewTopology(ats), nil))
	for t := 0; t < 3; t++ {
		writeXYZ(Te, filepath.Join(dir, fmt.Sprintf("traj%d.xyz", t)), 2, float64(1+t))
	}
	C.Trajectories = []string{filepath.Join(dir, "traj*.xyz")}
	C.Model = filepath.Join(dir, "msm.yaml")
	require.NoError(Te, msm.WriteModel(C.Model, &msm.Model{Mapping: map[int]int{0: 0, 1: 1, 2: -1}, Populations: []float64{0.25, 0.75}}))
	C.Labels = filepath.Join(dir, "labels.dat")
	require.NoError(Te, msm.WriteAssignments(C.Labels, msm.Assignments{{0, 1}, {2, 0}, {1, 1}}))
	C.Reduced = filepath.Join(dir, "reduced.dat.zst")
	require.NoError(Te, msm.WriteReduced(C.Reduced, msm.Reduced{{{0.4}, {0.9}}, {{7}, {0.1}}, {{1.2}, {0.8}}}))
	C.Clusterer = filepath.Join(dir, "clusterer.json")
	require.NoError(Te, msm.WriteClusterer(C.Clusterer, &msm.Clusterer{Centers: [][]float64{{0}, {1}, {5}}}))
	C.Samples = 2
	C.Output = filepath.Join(dir, "cells")
	C.LogDir = filepath.Join(dir, "logs")
	return C
}

func TestRunExtract(Te *testing.T) {
	C := extractConfig(Te)
	P := New(C, quietLogger())
	R, err := P.Run(context.Background())
	require.NoError(Te, err)
	assert.Equal(Te, []int{2, 2}, R.Samples.Counts)
	assert.Equal(Te, []cells.FrameID{{Traj: 1, Frame: 1}, {Traj: 0, Frame: 1}}, R.Centers.Best)
	assert.Equal(Te, []int{1}, R.Assignment.Folded)
	assert.Equal(Te, []int{0}, R.Assignment.Unfolded)
	assert.InDelta(Te, 0.5623351446188083, R.Entropy, 1e-9)

	w, err := cells.ReadWeights(R.Layout.Weights)
	require.NoError(Te, err)
	assert.Equal(Te, []float64{0.25, 0.75}, w)
	check, err := cells.Check(R.Layout, 2, 2)
	require.NoError(Te, err)
	assert.Equal(Te, 2, check.Cells)

	info, err := os.Stat(filepath.Join(C.Output, "populations.png"))
	require.NoError(Te, err)
	assert.Greater(Te, info.Size(), int64(0))
	metrics, err := os.ReadFile(filepath.Join(C.Output, "metrics.prom"))
	require.NoError(Te, err)
	assert.Contains(Te, string(metrics), `msmcells_cells_total{class="folded"} 1`)
	assert.Contains(Te, string(metrics), `msmcells_frames_unmapped_total{pass="sample"} 1`)
	assert.Contains(Te, string(metrics), `msmcells_samples_written_total{kind="real"} 4`)
	assert.Contains(Te, string(metrics), `msmcells_stage_duration_seconds_count{stage="assign"} 1`)
}

func TestExtractEmptyState(Te *testing.T) {
	C := extractConfig(Te)
	require.NoError(Te, msm.WriteModel(C.Model, &msm.Model{Mapping: map[int]int{0: 0, 1: 2, 2: -1}, Populations: []float64{0.25, 0, 0.75}}))
	R, err := New(C, quietLogger()).Extract(context.Background())
	require.NoError(Te, err)
	assert.Equal(Te, []int{2, 0, 2}, R.Samples.Counts)
	assert.Equal(Te, []int{1}, R.Centers.Missing)
	assert.Equal(Te, []int{0, 2}, R.Assignment.States)
	assert.Equal(Te, []int{1}, R.Assignment.Folded)
	assert.Equal(Te, []int{2}, R.Assignment.FoldedStates())
	states, err := os.ReadFile(R.Layout.CellStates)
	require.NoError(Te, err)
	assert.Equal(Te, "0\n2\n", string(states))
	_, err = cells.Check(R.Layout, 2, 3)
	require.NoError(Te, err)

	C.Strict = true
	_, err = New(C, quietLogger()).Extract(context.Background())
	assert.ErrorIs(Te, err, cells.ErrCellGap)
}

func TestExtractErrors(Te *testing.T) {
	C := extractConfig(Te)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(C, quietLogger()).Extract(ctx)
	assert.ErrorIs(Te, err, context.Canceled)

	C = extractConfig(Te)
	require.NoError(Te, msm.WriteAssignments(C.Labels, msm.Assignments{{0, 1}, {2, 0}}))
	_, err = New(C, quietLogger()).Extract(context.Background())
	assert.ErrorIs(Te, err, msm.ErrShape)

	C = extractConfig(Te)
	C.Samples = 0
	_, err = New(C, quietLogger()).Extract(context.Background())
	assert.ErrorIs(Te, err, ErrConfig)
}
