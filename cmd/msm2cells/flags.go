/*
 * flags.go, part of msmcells.
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
	"fmt"

	"github.com/rmera/msmcells/pipeline"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// addConfigFlags adds the flags that override the configuration file.
func addConfigFlags(f *pflag.FlagSet, upstream bool) {
	d := pipeline.DefaultConfig()
	f.StringP("config", "c", "", "YAML configuration file")
	f.StringP("topology", "t", "", "Topology (PDB or XYZ) shared by all the trajectories")
	f.StringSlice("traj", nil, "Trajectory files or glob patterns, in order")
	f.String("reference", "", "Reference structure for the folded classification (default: the topology)")
	f.String("model", "", "MSM document (YAML or JSON)")
	f.String("labels", "", "Cluster label dataset")
	f.String("reduced", "", "Reduced coordinate dataset")
	f.String("clusterer", "", "Clusterer document with the cluster centroids")
	f.IntP("samples", "n", 0, "Representative structures per macrostate (required)")
	f.String("selection", d.Selection, "Atoms compared with the reference")
	f.Float64("rmsd", d.RMSD, "RMSD threshold (A) under which a cell is folded")
	f.String("format", d.Format, "Format of the structures written (pdb or xyz)")
	f.Bool("strict-cells", false, "Fail if some macrostate has no center, instead of numbering the cells consecutively")
	f.StringP("output", "o", d.Output, "Output directory")
	f.String("plot", d.Plot, "Population plot, relative to the output directory (empty to skip)")
	f.String("metrics", d.Metrics, "Prometheus text metrics file, relative to the output directory (empty to skip)")
	if !upstream {
		return
	}
	f.String("log-dir", d.LogDir, "Directory for the output streams of the upstream tools")
	for _, s := range pipeline.Stages {
		st := d.Stage(s)
		f.String(s.String()+"-alg", st.Algorithm, fmt.Sprintf("Algorithm for the %s stage", s))
		f.String(s.String()+"-out", st.Output, fmt.Sprintf("Output dataset of the %s stage", s))
		f.String(s.String()+"-model", st.Model, fmt.Sprintf("Fitted object of the %s stage", s))
	}
	f.StringSlice("skip", nil, "Upstream stages not to run")
}

// loadConfig reads the configuration file, if given, and applies the flags
// that were set on top of it.
func loadConfig(cmd *cobra.Command) (*pipeline.Config, error) {
	f := cmd.Flags()
	C := pipeline.DefaultConfig()
	if name, _ := f.GetString("config"); name != "" {
		var err error
		if C, err = pipeline.LoadConfig(name); err != nil {
			return nil, err
		}
	}
	str := func(flag string, dst *string) {
		if f.Changed(flag) {
			*dst, _ = f.GetString(flag)
		}
	}
	str("topology", &C.Topology)
	str("reference", &C.Reference)
	str("model", &C.Model)
	str("labels", &C.Labels)
	str("reduced", &C.Reduced)
	str("clusterer", &C.Clusterer)
	str("selection", &C.Selection)
	str("format", &C.Format)
	str("output", &C.Output)
	str("plot", &C.Plot)
	str("metrics", &C.Metrics)
	if f.Changed("traj") {
		C.Trajectories, _ = f.GetStringSlice("traj")
	}
	if f.Changed("samples") {
		C.Samples, _ = f.GetInt("samples")
	}
	if f.Changed("rmsd") {
		C.RMSD, _ = f.GetFloat64("rmsd")
	}
	if f.Changed("strict-cells") {
		C.Strict, _ = f.GetBool("strict-cells")
	}
	if f.Lookup("log-dir") == nil {
		return C, nil
	}
	str("log-dir", &C.LogDir)
	for _, s := range pipeline.Stages {
		st := C.Stage(s)
		str(s.String()+"-alg", &st.Algorithm)
		str(s.String()+"-out", &st.Output)
		str(s.String()+"-model", &st.Model)
	}
	skip, _ := f.GetStringSlice("skip")
	for _, name := range skip {
		s, err := pipeline.ParseStage(name)
		if err != nil {
			return nil, err
		}
		C.Stage(s).Skip = true
	}
	return C, nil
}
