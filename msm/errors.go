/*
 * errors.go, part of msmcells.
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

import "errors"

var (
	ErrEmptyModel   = errors.New("model has no macrostates")
	ErrMappingRange = errors.New("mapping refers to a macrostate beyond the model")
	ErrPopulation   = errors.New("population is negative or not finite")
	ErrNoCenters    = errors.New("clusterer has no cluster centers")
	ErrShape        = errors.New("datasets do not have the same shape")
	ErrFormat       = errors.New("malformed dataset")
)
