/*
 * main_test.go, part of msmcells.
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

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rmera/msmcells/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(Te *testing.T, args ...string) (string, error) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestAlgorithms(Te *testing.T) {
	out, err := execute(Te, "algorithms")
	require.NoError(Te, err)
	assert.Contains(Te, out, "STAGE")
	assert.Contains(Te, out, "MiniBatchKMeans")
	assert.Contains(Te, out, "msmb tICA --inp {in}")
}

func TestCheckCommand(Te *testing.T) {
	_, err := execute(Te, "check", filepath.Join(Te.TempDir(), "nothing"), "--samples", "2", "--states", "2")
	assert.Error(Te, err)
}

func TestBadLogLevel(Te *testing.T) {
	_, err := execute(Te, "extract", "--log-level", "loud")
	assert.ErrorContains(Te, err, "unknown log level")
}

func TestLoadConfig(Te *testing.T) {
	name := filepath.Join(Te.TempDir(), "config.yaml")
	require.NoError(Te, os.WriteFile(name, []byte("samples: 3\nselection: backbone\nrmsd: 1.5\n"), 0o644))
	f := runCmd.Flags()
	require.NoError(Te, f.Parse([]string{"--config", name, "--rmsd", "3", "--traj", "a.stf,b/*.stz", "--skip", "featurize,decompose", "--cluster-alg", "KCenters"}))
	C, err := loadConfig(runCmd)
	require.NoError(Te, err)
	assert.Equal(Te, 3, C.Samples)
	assert.Equal(Te, "backbone", C.Selection)
	assert.Equal(Te, 3.0, C.RMSD)
	assert.Equal(Te, []string{"a.stf", "b/*.stz"}, C.Trajectories)
	assert.True(Te, C.Featurize.Skip)
	assert.True(Te, C.Decompose.Skip)
	assert.False(Te, C.Cluster.Skip)
	assert.Equal(Te, "KCenters", C.Cluster.Algorithm)
	assert.Equal(Te, pipeline.DefaultConfig().MSM.Algorithm, C.MSM.Algorithm)

	require.NoError(Te, f.Set("skip", "simulate"))
	_, err = loadConfig(runCmd)
	assert.ErrorIs(Te, err, pipeline.ErrUnknownStage)
}
