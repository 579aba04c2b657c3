/*
 * doc.go, part of gogrow.
 *
 * Copyright 2024 Raul Mera <rmeraa{at}academicosdotutadotcl
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
/***Dedicated to the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche***/

/*Package grow is the main package of the gogrow library. It provides atom and
molecule structures for small-molecule work, facilities for reading and writing
some files used in computational chemistry, and, at its center, the machinery to
grow new candidate ligands from a molecular scaffold: resolving an attachment
point on the scaffold, replacing it with substituent fragments ("R-groups"),
optionally through two-ended linker fragments, and expanding whole fragment
libraries combinatorially.



	**gogrow capabilities**


    Reads/writes SDF (V2000), XYZ and a subset of PDB.

    Represents a molecule as an atom/bond graph plus any number of
	coordinate sets ("frames"), which double as the conformers of the
	molecule in the later stages of a ligand-growing pipeline.

    Resolves scaffold attachment points, including the case where the
	designated atom divides the molecular graph, with deterministic
	selection of the kept component.

    Merges fragment graphs onto scaffolds, with valence checking and
	support for linker fragments that keep a second, open attachment
	point.

    Expands {linkers} x {R-groups} cross-products into ordered collections
	of built molecules.

    Superimposes conformers and calculates RMSD between them, so redundant
	conformers can be pruned.

    Calls external programs (openbabel, pdbfixer) to protonate ligands
	and repair receptor structures.

The subpackages wrap external engines for conformer generation and
optimization (qm), pose scoring (gnina), provide clash detection against a
receptor (clash), molecular descriptors (props), fragment catalogs (fraglib),
compressed conformer archives (ctf), plotting (growplot), a batch pipeline
manager (chemspace), and persistent storage of results (depot).

gogrow uses its own matrix type for coordinates, v3.Matrix, based on
gonum.org/v1/gonum/mat. Each row of a v3.Matrix represents one point in space.*/
package grow
