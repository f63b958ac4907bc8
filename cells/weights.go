/*
 * weights.go, part of msmcells.
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

package cells

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// WriteWeights writes populations to the file name, one per line, in macrostate order.
// The values are written with the shortest representation that reads back exactly.
func WriteWeights(name string, populations []float64) error {
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("creating weights file: %w", err)
	}
	w := bufio.NewWriter(f)
	for _, p := range populations {
		w.WriteString(strconv.FormatFloat(p, 'g', -1, 64))
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("writing weights file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing weights file: %w", err)
	}
	return nil
}

// ReadWeights reads a file written by WriteWeights.
func ReadWeights(name string) ([]float64, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("opening weights file: %w", err)
	}
	defer f.Close()
	var ret []float64
	s := bufio.NewScanner(f)
	line := 0
	for s.Scan() {
		line++
		t := strings.TrimSpace(s.Text())
		if t == "" {
			continue
		}
		v, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return nil, fmt.Errorf("weights file line %d: %w", line, err)
		}
		ret = append(ret, v)
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("reading weights file: %w", err)
	}
	return ret, nil
}
