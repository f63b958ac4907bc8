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
Package cells turns a macrostate model and the frames it was built from into
the cell definitions used to seed an accelerated weighted ensemble run.

Sample writes up to N representative structures per macrostate (State<s>-<k>),
padding undersampled macrostates with copies of their first sample. Centers
writes, per macrostate, the frame closest to the centroid of its own cluster
(Center<s>). Assign compares the centers with a reference structure, splits the
cells in folded and unfolded, and writes the cell geometry file. WriteWeights
writes the macrostate populations. Check verifies a finished output directory.

All the functions in this package are single-threaded. Sample and Centers
only share read-only inputs, so they can run concurrently as long as each
gets its own Frames.
*/
package cells
