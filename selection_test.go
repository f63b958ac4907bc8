/*
 * selection_test.go, part of msmcells.
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

package chem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelection(Te *testing.T) {
	mol := readTestPDB(Te)
	cases := []struct {
		expr string
		want []int
	}{
		{"all", []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10}},
		{"none", []int{}},
		{"protein", []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}},
		{"backbone", []int{0, 1, 2, 3, 6, 7, 8, 9}},
		{"name CA", []int{1, 7}},
		{"name CA CB", []int{1, 4, 7}},
		{"hydrogen", []int{5}},
		{"heavy and protein and not backbone", []int{4}},
		{"resname GLY or water", []int{6, 7, 8, 9, 10}},
		{"resid 2 to 3", []int{6, 7, 8, 9, 10}},
		{"index 0 2 to 3", []int{0, 2, 3}},
		{"chain B", []int{10}},
		{"element O", []int{3, 9, 10}},
		{"NAME CA and (resid 1 or resid 2)", []int{1, 7}},
		{"not (protein or water)", []int{}},
		{"name CA or name N and resid 2", []int{1, 6, 7}},
	}
	for _, c := range cases {
		sel, err := NewSelection(c.expr)
		require.NoError(Te, err, c.expr)
		assert.Equal(Te, c.want, sel.Indexes(mol), c.expr)
		assert.Equal(Te, c.expr, sel.String())
	}
}

func TestSelectionErrors(Te *testing.T) {
	for _, expr := range []string{
		"",
		"name",
		"resid a",
		"resid 1 to",
		"(protein",
		"protein)",
		"protein and",
		"banana",
		"protein backbone",
	} {
		_, err := NewSelection(expr)
		assert.Error(Te, err, expr)
	}
}
