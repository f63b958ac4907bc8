/*
 * pipeline.go, part of msmcells.
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
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	chem "github.com/rmera/msmcells"
	"github.com/rmera/msmcells/cells"
	"github.com/rmera/msmcells/msm"
	"github.com/rmera/msmcells/traj"
	v3 "github.com/rmera/msmcells/v3"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Result gathers the reports of an extraction.
type Result struct {
	Layout     *cells.Layout
	Samples    *cells.SampleReport
	Centers    *cells.CenterReport
	Assignment *cells.Assignment
	Entropy    float64 //of the normalized populations, in nats
}

// Pipeline runs the upstream tools and the extraction of the cells.
type Pipeline struct {
	cfg     *Config
	log     *slog.Logger
	runner  *Runner
	metrics *Metrics
}

// New returns a pipeline for cfg, which is completed with Fill. The configuration
// is validated in Run and Extract, since they need different settings.
func New(cfg *Config, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	cfg.Fill()
	return &Pipeline{cfg: cfg, log: logger, runner: NewRunner(cfg.LogDir, logger), metrics: NewMetrics()}
}

// Metrics returns the metrics collected so far.
func (P *Pipeline) Metrics() *Metrics {
	return P.metrics
}

// Run runs the stages that are not skipped, in order, and then Extract. The first failing
// stage stops the run.
func (P *Pipeline) Run(ctx context.Context) (*Result, error) {
	if err := P.cfg.Validate(true); err != nil {
		return nil, err
	}
	if err := P.Upstream(ctx); err != nil {
		return nil, err
	}
	return P.Extract(ctx)
}

// Upstream runs the stages that are not skipped.
func (P *Pipeline) Upstream(ctx context.Context) error {
	for _, s := range Stages {
		st := P.cfg.Stage(s)
		if st.Skip {
			P.log.Info("stage skipped", "stage", s)
			continue
		}
		alg, err := ParseAlgorithm(st.Algorithm, s)
		if err != nil {
			return err
		}
		t, _ := alg.Template()
		args := t.Expand(map[string]string{"in": st.Input, "out": st.Output, "top": P.cfg.Topology, "model": st.Model})
		start := time.Now()
		if err := P.runner.Run(ctx, s, t.Command, args...); err != nil {
			return err
		}
		P.metrics.Stage(s.String(), start)
	}
	return nil
}

// ctxFrames stops handing out frames once its context is done.
type ctxFrames struct {
	ctx context.Context
	*traj.FrameSet
}

func (C ctxFrames) Frame(t, f int, dst *v3.Matrix) error {
	if err := C.ctx.Err(); err != nil {
		return err
	}
	return C.FrameSet.Frame(t, f, dst)
}

type inputs struct {
	model     *msm.Model
	mapper    *msm.Mapper
	labels    msm.Assignments
	reduced   msm.Reduced
	clusterer *msm.Clusterer
	top       *chem.Molecule
	reference *chem.Molecule
	trajs     []string
}

func (P *Pipeline) load() (*inputs, error) {
	C := P.cfg
	in := new(inputs)
	var err error
	if in.model, err = msm.LoadModel(C.Model); err != nil {
		return nil, err
	}
	if in.mapper, err = in.model.Mapper(); err != nil {
		return nil, err
	}
	if in.labels, err = msm.ReadAssignments(C.Labels); err != nil {
		return nil, err
	}
	if in.reduced, err = msm.ReadReduced(C.Reduced); err != nil {
		return nil, err
	}
	if in.clusterer, err = msm.LoadClusterer(C.Clusterer); err != nil {
		return nil, err
	}
	if in.top, err = chem.FileRead(C.Topology); err != nil {
		return nil, err
	}
	if in.reference, err = chem.FileRead(C.Reference); err != nil {
		return nil, err
	}
	if in.trajs, err = traj.Glob(C.Trajectories); err != nil {
		return nil, err
	}
	if len(in.trajs) != len(in.labels) {
		return nil, fmt.Errorf("%d trajectories but labels for %d: %w", len(in.trajs), len(in.labels), msm.ErrShape)
	}
	P.log.Info("inputs loaded", "states", in.mapper.NStates(), "trajectories", len(in.trajs),
		"frames", in.labels.NFrames(), "clusters", len(in.clusterer.Centers), "atoms", in.top.Len())
	return in, nil
}

func (P *Pipeline) options() *cells.Options {
	o := cells.DefaultOptions()
	o.Logger(P.log)
	o.Format(P.cfg.Format)
	o.Selection(P.cfg.Selection)
	o.Threshold(P.cfg.RMSD)
	o.Strict(P.cfg.Strict)
	return o
}

// Extract loads the model and datasets, writes the representative structures and
// the centers (two independent passes, run concurrently), and then the cells,
// the weights, the population plot and the metrics.
func (P *Pipeline) Extract(ctx context.Context) (*Result, error) {
	C := P.cfg
	if err := C.Validate(false); err != nil {
		return nil, err
	}
	t0 := time.Now()
	in, err := P.load()
	if err != nil {
		return nil, err
	}
	P.metrics.Stage("load", t0)
	layout := cells.NewLayout(C.Output)
	if err := os.MkdirAll(C.Output, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	opts := P.options()
	R := &Result{Layout: layout}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		frames := ctxFrames{gctx, traj.NewFrameSet(in.top, in.trajs)}
		defer frames.Close()
		start := time.Now()
		rep, err := cells.Sample(in.mapper, in.labels, frames, C.Samples, layout.Samples, opts)
		if err != nil {
			return fmt.Errorf("sampling representatives: %w", err)
		}
		R.Samples = rep
		P.metrics.Stage("sample", start)
		return nil
	})
	g.Go(func() error {
		frames := ctxFrames{gctx, traj.NewFrameSet(in.top, in.trajs)}
		defer frames.Close()
		start := time.Now()
		rep, err := cells.Centers(in.mapper, in.labels, in.reduced, in.clusterer.Centers, frames, layout.Centers, opts)
		if err != nil {
			return fmt.Errorf("selecting centers: %w", err)
		}
		R.Centers = rep
		P.metrics.Stage("centers", start)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	P.metrics.Sampled(R.Samples)
	P.metrics.Centered(R.Centers)

	start := time.Now()
	if R.Assignment, err = cells.Assign(layout.Centers, in.reference, layout, opts); err != nil {
		return nil, fmt.Errorf("assigning cells: %w", err)
	}
	P.metrics.Assigned(R.Assignment)
	P.metrics.Stage("assign", start)

	pops := populations(in.model, in.mapper.NStates())
	if err := cells.WriteWeights(layout.Weights, pops); err != nil {
		return nil, err
	}
	R.Entropy = entropy(pops)
	P.metrics.Entropy(R.Entropy)
	if name := C.OutputPath(C.Plot); name != "" {
		if err := cells.PlotPopulations(pops, R.Assignment.FoldedStates(), "Macrostate populations", name); err != nil {
			return nil, err
		}
	}
	if name := C.OutputPath(C.Metrics); name != "" {
		if err := P.metrics.Write(name); err != nil {
			return nil, fmt.Errorf("writing metrics: %w", err)
		}
	}
	P.log.Info("extraction done", "output", C.Output, "cells", len(R.Assignment.States),
		"folded", len(R.Assignment.Folded), "entropy", R.Entropy, "elapsed", time.Since(t0).Round(time.Millisecond))
	return R, nil
}

// populations returns the populations of the model, or uniform ones if the model has none.
func populations(M *msm.Model, nstates int) []float64 {
	if len(M.Populations) > 0 {
		return M.Populations
	}
	ret := make([]float64, nstates)
	for i := range ret {
		ret[i] = 1 / float64(nstates)
	}
	return ret
}

func entropy(pops []float64) float64 {
	sum := floats.Sum(pops)
	if sum == 0 {
		return 0
	}
	p := append([]float64(nil), pops...)
	floats.Scale(1/sum, p)
	return stat.Entropy(p)
}
