/*
 * doc.go, part of gogrow.
 *
 * Copyright 2024 Raul Mera <rmeraa{at}academicosdotutadotcl>
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

//Package ctf implements the conformer trajectory format, the archive format
//in which gogrow stores the conformer ensembles of a candidate once they have
//been filtered and scored. The aim is a small file that any program can read
//back with nothing more than a z-standard library, while keeping the numbers
//that matter (candidate identity and conformer energies) attached to the
//coordinates they belong to.

/******************** Format Specification   ***********************************

A CTF file has the extension ctf and is compressed with z-standard (zstd).
Once decompressed, it may only contain ASCII symbols.

The file starts with a header of key=value lines, one pair per line. The
header ends with a line starting with the characters "**", followed by one or
more spaces and the number of atoms per frame. The "**" sequence may not
appear anywhere else in the file.

The keys "id" (an identifier for the molecule the conformers belong to) and
"energies" (the conformer energies in kcal/mol, in frame order, separated by
commas) are recognized by this implementation but not required. The key
"prec" holds the coordinate precision, a positive integer. If absent, a
precision of 3 is assumed.

After the header, the file has one line per atom, per frame. Each line
contains 3 integers: the x, y and z cartesian coordinates in Angstrom,
multiplied by 10 to the power of the precision and rounded. Each frame ends
with a line containing only "*".

*******************************************************************************/

package ctf
