/*
 * doc.go, part of msmcells.
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

/*
Package msm holds the artifacts produced by the upstream Markov State Model
stages: the macrostate model (label mapping and populations), the clusterer
centroids, and the per-frame datasets (cluster labels and reduced coordinates).

Models and clusterers are YAML or JSON documents. Datasets are ragged text
files, one block per trajectory:

	# comments are allowed
	traj 0 3
	4
	4
	1
	traj 1 2
	...

where each frame line holds a label, or the whitespace-separated components
of a reduced coordinate. Files ending in .zst are z-standard compressed.
*/
package msm
