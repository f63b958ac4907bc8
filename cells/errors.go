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

package cells

import "errors"

var (
	ErrSampleCount       = errors.New("the number of samples must be at least 1")
	ErrNoCentroid        = errors.New("mapped label has no cluster centroid")
	ErrDimension         = errors.New("reduced coordinate and centroid dimensions differ")
	ErrNoCenters         = errors.New("no center files found")
	ErrCellGap           = errors.New("center files are not contiguous")
	ErrSelection         = errors.New("invalid atom selection")
	ErrSelectionMismatch = errors.New("selection gives different atom counts for center and reference")
	ErrCheck             = errors.New("output directory failed the check")
)
