/*
 * interfaces.go, part of gogrow.
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

package grow

//Atomer is the basic interface for a set of atoms.
type Atomer interface {

	//Atom returns the Atom corresponding to the index i
	//of the Atom slice in the molecule. Panics if i is out of range.
	Atom(i int) *Atom

	//Len returns the number of atoms in the set.
	Len() int
}

//AtomIndexesFiller is an Atomer that can set the internal indexes
//of its atoms to their current position in the set.
type AtomIndexesFiller interface {
	Atomer
	FillIndexes()
}

//AtomMultiCharger is an Atomer with a defined total charge and multiplicity.
type AtomMultiCharger interface {
	Atomer

	//Charge gets the total charge of the topology
	Charge() int

	//Multi returns the multiplicity of the topology
	Multi() int
}

//Masser can return a slice with the masses of each atom in the set.
type Masser interface {

	//Returns a slice with the masses of all atoms
	Masses() ([]float64, error)
}

//Error is the interface for errors that all packages in this library implement.
//The Decorate method allows to add and retrieve info from the error, without
//changing its type or wrapping it around something else. Each call appends the
//given string (normally the caller's name, plus any relevant information) to
//the decoration slice, and returns the resulting slice. If passed an empty
//string, it just returns the current value.
type Error interface {
	Error() string
	Decorate(string) []string
}
