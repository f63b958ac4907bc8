/*
 * doc.go, part of msmcells.
 *
 * Copyright 2012 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
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

/*Package chem is the structure layer of msmcells. It provides atom, topology and molecule
structures, reading and writing of the structure files used for the cell definitions,
an atom selection language and RMSD calculations.

	Reads multi-model PDB and multi-frame XYZ files. Writes single-frame PDB and XYZ files.

	Selects atoms with a small selection language ("name CA and resid 1 to 20").

	Superimposes sets of coordinates (Kabsch, no reflections) and calculates
	the RMSD between them, with or without superposition.

	Molecules are trajectories (Traj), so a multi-model PDB can be read like any
	other trajectory.

The coordinates are kept in v3.Matrix objects, (github.com/rmera/msmcells/v3), which wrap
gonum's Dense.

Trajectory formats are implemented in the subpackages of traj.
*/
package chem
