/*
 * stages.go, part of msmcells.
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
	"sort"
	"strings"
	"sync"
)

var (
	ErrUnknownStage     = errors.New("unknown stage")
	ErrUnknownAlgorithm = errors.New("unknown algorithm")
	ErrWrongStage       = errors.New("algorithm belongs to another stage")
)

// Stage is one of the upstream steps that build the model.
type Stage int

const (
	Featurize Stage = iota
	Decompose
	Cluster
	FitMSM
)

// Stages lists the upstream stages in the order they run.
var Stages = []Stage{Featurize, Decompose, Cluster, FitMSM}

var stageNames = []string{"featurize", "decompose", "cluster", "msm"}

func (S Stage) String() string {
	if S < 0 || int(S) >= len(stageNames) {
		return fmt.Sprintf("Stage(%d)", int(S))
	}
	return stageNames[S]
}

// ParseStage returns the stage with the given name.
func ParseStage(name string) (Stage, error) {
	for i, v := range stageNames {
		if strings.EqualFold(v, name) {
			return Stage(i), nil
		}
	}
	return -1, fmt.Errorf("%q: %w", name, ErrUnknownStage)
}

// Algorithm identifies an upstream tool invocation.
type Algorithm int

// Built-in algorithms, all run through the msmb command line tool.
const (
	DihedralFeaturizer Algorithm = iota
	AtomPairsFeaturizer
	SuperposeFeaturizer
	RMSDFeaturizer
	TICA
	PCA
	KMeans
	MiniBatchKMeans
	KCenters
	MarkovStateModel
	BayesianMarkovStateModel
)

/*Template describes how an algorithm is invoked. The arguments can contain the
placeholders {in}, {out}, {top} and {model}, which are replaced by the input
dataset, the output dataset, the topology and the fitted object of the stage.*/
type Template struct {
	Name    string
	Stage   Stage
	Command string
	Args    []string
}

// Expand returns the argument list with the placeholders replaced by the values in vars.
func (T Template) Expand(vars map[string]string) []string {
	pairs := make([]string, 0, 2*len(vars))
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	r := strings.NewReplacer(pairs...)
	ret := make([]string, len(T.Args))
	for i, a := range T.Args {
		ret[i] = r.Replace(a)
	}
	return ret
}

func msmb(name string, stage Stage, args ...string) Template {
	return Template{Name: name, Stage: stage, Command: "msmb", Args: append([]string{name}, args...)}
}

var featArgs = []string{"--trjs", "{in}", "--top", "{top}", "--transformed", "{out}", "--out", "{model}"}
var fitArgs = []string{"--inp", "{in}", "--transformed", "{out}", "--out", "{model}"}

var registry = struct {
	sync.RWMutex
	algs []Template
}{algs: []Template{
	DihedralFeaturizer:       msmb("DihedralFeaturizer", Featurize, featArgs...),
	AtomPairsFeaturizer:      msmb("AtomPairsFeaturizer", Featurize, featArgs...),
	SuperposeFeaturizer:      msmb("SuperposeFeaturizer", Featurize, featArgs...),
	RMSDFeaturizer:           msmb("RMSDFeaturizer", Featurize, featArgs...),
	TICA:                     msmb("tICA", Decompose, fitArgs...),
	PCA:                      msmb("PCA", Decompose, fitArgs...),
	KMeans:                   msmb("KMeans", Cluster, fitArgs...),
	MiniBatchKMeans:          msmb("MiniBatchKMeans", Cluster, fitArgs...),
	KCenters:                 msmb("KCenters", Cluster, fitArgs...),
	MarkovStateModel:         msmb("MarkovStateModel", FitMSM, "--inp", "{in}", "--out", "{model}"),
	BayesianMarkovStateModel: msmb("BayesianMarkovStateModel", FitMSM, "--inp", "{in}", "--out", "{model}"),
}}

// Register adds an algorithm to the table, and returns its identifier. Names are
// case insensitive and must be unique.
func Register(name string, stage Stage, command string, args ...string) (Algorithm, error) {
	if stage < Featurize || stage > FitMSM {
		return -1, fmt.Errorf("registering %q: %w", name, ErrUnknownStage)
	}
	registry.Lock()
	defer registry.Unlock()
	for _, t := range registry.algs {
		if strings.EqualFold(t.Name, name) {
			return -1, fmt.Errorf("algorithm %q already registered", name)
		}
	}
	registry.algs = append(registry.algs, Template{Name: name, Stage: stage, Command: command, Args: args})
	return Algorithm(len(registry.algs) - 1), nil
}

// Template returns the invocation template of the algorithm.
func (A Algorithm) Template() (Template, bool) {
	registry.RLock()
	defer registry.RUnlock()
	if A < 0 || int(A) >= len(registry.algs) {
		return Template{}, false
	}
	return registry.algs[A], true
}

func (A Algorithm) String() string {
	if t, ok := A.Template(); ok {
		return t.Name
	}
	return fmt.Sprintf("Algorithm(%d)", int(A))
}

// ParseAlgorithm returns the algorithm with the given name, checking that it
// can be used for stage.
func ParseAlgorithm(name string, stage Stage) (Algorithm, error) {
	registry.RLock()
	defer registry.RUnlock()
	for i, t := range registry.algs {
		if !strings.EqualFold(t.Name, name) {
			continue
		}
		if t.Stage != stage {
			return -1, fmt.Errorf("%s is a %s algorithm, not %s: %w", t.Name, t.Stage, stage, ErrWrongStage)
		}
		return Algorithm(i), nil
	}
	return -1, fmt.Errorf("%q: %w", name, ErrUnknownAlgorithm)
}

// Algorithms returns the templates of all the registered algorithms, by stage and then name.
func Algorithms() []Template {
	registry.RLock()
	ret := append([]Template(nil), registry.algs...)
	registry.RUnlock()
	sort.SliceStable(ret, func(i, j int) bool {
		if ret[i].Stage != ret[j].Stage {
			return ret[i].Stage < ret[j].Stage
		}
		return ret[i].Name < ret[j].Name
	})
	return ret
}
