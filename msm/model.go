/*
 * model.go, part of msmcells.
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
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Model is a macrostate model: the mapping from raw cluster labels to macrostates
// and the equilibrium population of each macrostate.
type Model struct {
	Mapping     map[int]int `mapstructure:"mapping" yaml:"mapping" json:"mapping"`
	Populations []float64   `mapstructure:"populations" yaml:"populations" json:"populations"`
}

// NStates returns the number of macrostates: the number of populations or, if
// there are none, the largest mapped macrostate plus one.
func (M *Model) NStates() int {
	if len(M.Populations) > 0 {
		return len(M.Populations)
	}
	n := 0
	for _, v := range M.Mapping {
		if v+1 > n {
			n = v + 1
		}
	}
	return n
}

// Validate checks that the model has macrostates, that the mapping doesn't go
// beyond them and that the populations are finite and non-negative.
func (M *Model) Validate() error {
	n := M.NStates()
	if n == 0 {
		return ErrEmptyModel
	}
	for k, v := range M.Mapping {
		if v >= n {
			return fmt.Errorf("label %d mapped to macrostate %d, but the model has %d: %w", k, v, n, ErrMappingRange)
		}
	}
	for i, p := range M.Populations {
		if p < 0 || math.IsNaN(p) || math.IsInf(p, 0) {
			return fmt.Errorf("macrostate %d has population %v: %w", i, p, ErrPopulation)
		}
	}
	return nil
}

// Mapper returns a Mapper for the model.
func (M *Model) Mapper() (*Mapper, error) {
	return NewMapper(M.Mapping, M.NStates())
}

// Clusterer holds the centroid of each cluster, indexed by raw label, in the
// reduced space.
type Clusterer struct {
	Centers [][]float64 `mapstructure:"cluster_centers" yaml:"cluster_centers" json:"cluster_centers"`
}

// Dim returns the dimension of the reduced space, or 0 for an empty clusterer.
func (C *Clusterer) Dim() int {
	if len(C.Centers) == 0 {
		return 0
	}
	return len(C.Centers[0])
}

// Validate checks that there are centers, and that all of them have the same dimension.
func (C *Clusterer) Validate() error {
	if len(C.Centers) == 0 || C.Dim() == 0 {
		return ErrNoCenters
	}
	for i, c := range C.Centers {
		if len(c) != C.Dim() {
			return fmt.Errorf("center %d has dimension %d, center 0 has %d: %w", i, len(c), C.Dim(), ErrShape)
		}
	}
	return nil
}

// aliases are the alternative keys accepted in the documents, as written by
// toolkits that mark fitted attributes with a trailing underscore.
var aliases = map[string]string{
	"mapping_":         "mapping",
	"populations_":     "populations",
	"cluster_centers_": "cluster_centers",
}

func readDocument(name string) (map[string]any, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	raw := make(map[string]any)
	if strings.ToLower(filepath.Ext(name)) == ".json" {
		err = json.Unmarshal(data, &raw)
	} else {
		err = yaml.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	for alias, key := range aliases {
		if v, ok := raw[alias]; ok {
			if _, dup := raw[key]; !dup {
				raw[key] = v
			}
			delete(raw, alias)
		}
	}
	return raw, nil
}

// decode puts the generic document raw into out. Weak typing lets labels
// written as JSON object keys (strings) become integers.
func decode(raw map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

// LoadModel reads and validates a model from the YAML or JSON file name.
func LoadModel(name string) (*Model, error) {
	raw, err := readDocument(name)
	if err != nil {
		return nil, err
	}
	M := new(Model)
	if err := decode(raw, M); err != nil {
		return nil, fmt.Errorf("decoding model %s: %w", name, err)
	}
	if err := M.Validate(); err != nil {
		return nil, fmt.Errorf("model %s: %w", name, err)
	}
	return M, nil
}

// LoadClusterer reads and validates the cluster centers from the YAML or JSON file name.
func LoadClusterer(name string) (*Clusterer, error) {
	raw, err := readDocument(name)
	if err != nil {
		return nil, err
	}
	C := new(Clusterer)
	if err := decode(raw, C); err != nil {
		return nil, fmt.Errorf("decoding clusterer %s: %w", name, err)
	}
	if err := C.Validate(); err != nil {
		return nil, fmt.Errorf("clusterer %s: %w", name, err)
	}
	return C, nil
}

func writeDocument(name string, v any) error {
	var data []byte
	var err error
	if strings.ToLower(filepath.Ext(name)) == ".json" {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = yaml.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}
	if err := os.WriteFile(name, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

// WriteModel writes M to name, as JSON if the extension is .json, as YAML otherwise.
func WriteModel(name string, M *Model) error {
	return writeDocument(name, M)
}

// WriteClusterer writes C to name, as JSON if the extension is .json, as YAML otherwise.
func WriteClusterer(name string, C *Clusterer) error {
	return writeDocument(name, C)
}
