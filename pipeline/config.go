/*
 * config.go, part of msmcells.
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
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrConfig is wrapped by all configuration validation errors.
var ErrConfig = errors.New("invalid configuration")

// StageConfig configures one upstream stage. Input, Output and Model fill the
// {in}, {out} and {model} placeholders of the algorithm's template.
type StageConfig struct {
	Algorithm string `yaml:"algorithm"`
	Input     string `yaml:"input,omitempty"`
	Output    string `yaml:"output,omitempty"`
	Model     string `yaml:"model,omitempty"`
	Skip      bool   `yaml:"skip,omitempty"`
}

// Config holds all the settings of a pipeline run.
type Config struct {
	Topology     string   `yaml:"topology"`
	Trajectories []string `yaml:"trajectories"`
	Reference    string   `yaml:"reference,omitempty"` //defaults to the topology

	Featurize StageConfig `yaml:"featurize"`
	Decompose StageConfig `yaml:"decompose"`
	Cluster   StageConfig `yaml:"cluster"`
	MSM       StageConfig `yaml:"msm"`

	//Inputs of the extraction. When empty, they are taken from the stages.
	Model     string `yaml:"model,omitempty"`
	Labels    string `yaml:"labels,omitempty"`
	Reduced   string `yaml:"reduced,omitempty"`
	Clusterer string `yaml:"clusterer,omitempty"`

	Samples   int     `yaml:"samples"`
	Selection string  `yaml:"selection"`
	RMSD      float64 `yaml:"rmsd"`
	Format    string  `yaml:"format"`
	Strict    bool    `yaml:"strict_cells,omitempty"`

	Output  string `yaml:"output"`
	LogDir  string `yaml:"log_dir"`
	Plot    string `yaml:"plot,omitempty"`    //relative to Output, empty to skip
	Metrics string `yaml:"metrics,omitempty"` //relative to Output, empty to skip
}

// DefaultConfig returns a configuration with the default algorithms, file names
// and extraction settings. Paths to the topology and trajectories, and the number
// of samples, have no default.
func DefaultConfig() *Config {
	return &Config{
		Featurize: StageConfig{Algorithm: "DihedralFeaturizer", Output: "features", Model: "featurizer.pkl"},
		Decompose: StageConfig{Algorithm: "tICA", Output: "reduced.dat", Model: "tica.pkl"},
		Cluster:   StageConfig{Algorithm: "MiniBatchKMeans", Output: "labels.dat", Model: "clusterer.yaml"},
		MSM:       StageConfig{Algorithm: "MarkovStateModel", Model: "msm.yaml"},
		Selection: "all",
		RMSD:      2.0,
		Format:    "pdb",
		Output:    "cells",
		LogDir:    "logs",
		Plot:      "populations.png",
		Metrics:   "metrics.prom",
	}
}

// LoadConfig reads a YAML configuration file on top of the defaults.
// Unknown keys are errors.
func LoadConfig(name string) (*Config, error) {
	C := DefaultConfig()
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("opening configuration: %w", err)
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(C); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return C, nil
}

// Stage returns the configuration of the given stage.
func (C *Config) Stage(s Stage) *StageConfig {
	switch s {
	case Featurize:
		return &C.Featurize
	case Decompose:
		return &C.Decompose
	case Cluster:
		return &C.Cluster
	case FitMSM:
		return &C.MSM
	}
	return nil
}

// Fill sets the paths that are derived from others: each stage reads what
// the previous one wrote, and the extraction reads the stage outputs. The
// featurizer reads the first trajectory pattern.
func (C *Config) Fill() {
	if C.Featurize.Input == "" && len(C.Trajectories) > 0 {
		C.Featurize.Input = C.Trajectories[0]
	}
	prev := C.Featurize.Output
	for _, s := range Stages[1:] {
		st := C.Stage(s)
		if st.Input == "" {
			st.Input = prev
		}
		prev = st.Output
	}
	if C.Reference == "" {
		C.Reference = C.Topology
	}
	if C.Model == "" {
		C.Model = C.MSM.Model
	}
	if C.Labels == "" {
		C.Labels = C.Cluster.Output
	}
	if C.Reduced == "" {
		C.Reduced = C.Decompose.Output
	}
	if C.Clusterer == "" {
		C.Clusterer = C.Cluster.Model
	}
}

// OutputPath returns name relative to the output directory, unless it is absolute or empty.
func (C *Config) OutputPath(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(C.Output, name)
}

// Validate checks the extraction settings and, if upstream is true, the
// stages that are not skipped.
func (C *Config) Validate(upstream bool) error {
	bad := func(format string, args ...any) error {
		return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrConfig)
	}
	if C.Samples < 1 {
		return bad("samples must be at least 1, got %d", C.Samples)
	}
	if C.RMSD < 0 {
		return bad("negative RMSD threshold %g", C.RMSD)
	}
	if C.Topology == "" {
		return bad("no topology given")
	}
	if len(C.Trajectories) == 0 {
		return bad("no trajectories given")
	}
	if C.Output == "" {
		return bad("no output directory given")
	}
	for _, v := range []struct{ what, val string }{
		{"model", C.Model}, {"labels", C.Labels}, {"reduced coordinates", C.Reduced}, {"clusterer", C.Clusterer},
	} {
		if v.val == "" {
			return bad("no %s file given", v.what)
		}
	}
	if !upstream {
		return nil
	}
	for _, s := range Stages {
		st := C.Stage(s)
		if st.Skip {
			continue
		}
		if _, err := ParseAlgorithm(st.Algorithm, s); err != nil {
			return fmt.Errorf("stage %s: %w: %w", s, err, ErrConfig)
		}
		if st.Input == "" || st.Model == "" {
			return bad("stage %s needs input and model paths", s)
		}
	}
	return nil
}
