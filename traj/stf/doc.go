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
Package stf implements the simple trajectory format, the raw trajectory format read by msmcells.

An STF file is compressed text. The compression depends on the last letter of the
extension: .stf and .sts use z-standard, .stz gzip, .str deflate and .stl lzw.
Only ASCII symbols are allowed.

The file starts with a header of key=value lines, ending with a line that starts with
the characters "**" followed by one or more spaces and the number of atoms per frame.
The header always contains the precision, for instance:

	prec=2

After the header, the file has one line per atom, per frame, with 3 integers: the x, y and z
coordinates in Angstrom, multiplied by 10 to the power of the precision and rounded.

Each frame ends with a line starting with the character "*", optionally followed by
whitespace and the 9 numbers of the box vectors, in Angstrom.

The "**" sequence is only used to end the header.
*/
package stf
