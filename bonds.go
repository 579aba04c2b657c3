/*
 * bonds.go, part of gogrow.
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

import (
	"fmt"
	"sort"

	v3 "github.com/rmera/gogrow/v3"
)

//constants from DOI:10.1186/1758-2946-3-33
const (
	tooclose = 0.63
	bondtol  = 0.45
	toofar   = 3
)

//Bond connects two atoms of a molecule. The same *Bond is referenced from
//the Bonds slice of both its atoms.
type Bond struct {
	Index int
	At1   *Atom
	At2   *Atom
	Dist  float64
	Order float64 //Order 0 means undetermined
}

//Cross returns the atom of the bond that is not the origin atom given.
//It panics if origin is in neither end of the bond, as that has to be a
//programming error.
func (B *Bond) Cross(origin *Atom) *Atom {
	if origin.Index() == B.At1.Index() {
		return B.At2
	}
	if origin.Index() == B.At2.Index() {
		return B.At1
	}
	panic(ErrBondCrossWrongAtom)
}

//NewBond creates a bond of the given index and order between at1 and at2,
//and adds it to the bond slices of both atoms.
func NewBond(at1, at2 *Atom, index int, order float64) *Bond {
	b := &Bond{Index: index, At1: at1, At2: at2, Order: order}
	at1.Bonds = append(at1.Bonds, b)
	at2.Bonds = append(at2.Bonds, b)
	return b
}

//returns a new *Bond slice with the element id removed
func takefromslice(bonds []*Bond, id int) []*Bond {
	newb := make([]*Bond, 0, len(bonds)-1)
	for _, v := range bonds {
		if v.Index != id {
			newb = append(newb, v)
		}
	}
	return newb
}

//RemoveBond removes the bond b from the bond slices of both its atoms.
//It returns an error if either atom didn't have the bond in its slice.
func RemoveBond(b *Bond) error {
	lenb1 := len(b.At1.Bonds)
	lenb2 := len(b.At2.Bonds)
	b.At1.Bonds = takefromslice(b.At1.Bonds, b.Index)
	b.At2.Bonds = takefromslice(b.At2.Bonds, b.Index)
	msg := fmt.Sprintf("Failed to remove bond Index: %d", b.Index)
	errs := 0
	if len(b.At1.Bonds) == lenb1 {
		msg = msg + fmt.Sprintf(" from atom. Index: %d", b.At1.Index())
		errs++
	}
	if len(b.At2.Bonds) == lenb2 {
		if errs > 0 {
			msg = msg + " and"
		}
		msg = msg + fmt.Sprintf(" from atom. Index: %d", b.At2.Index())
		errs++
	}
	if errs > 0 {
		return &CError{msg, []string{"RemoveBond"}}
	}
	return nil
}

//AssignBonds assigns bonds to a molecule based on a simple distance
//criterium, similar to that described in DOI:10.1186/1758-2946-3-33.
//The bond orders are left undetermined. It is meant for small molecules,
//and might get slow for macromolecules.
func AssignBonds(coord *v3.Matrix, mol AtomIndexesFiller) error {
	var t1, t2 *v3.Matrix
	var at1, at2 *Atom
	mol.FillIndexes()
	t3 := v3.Zeros(1)
	tot := mol.Len()
	var nextIndex int
	for i := 0; i < tot; i++ {
		t1 = coord.VecView(i)
		at1 = mol.Atom(i)
		cov1 := symbolCovrad[at1.Symbol]
		if cov1 == 0 {
			return &CError{fmt.Sprintf("Couldn't find the covalent radii for %s %d", at1.Symbol, i), []string{"AssignBonds"}}
		}
		for j := i + 1; j < tot; j++ {
			t2 = coord.VecView(j)
			at2 = mol.Atom(j)
			cov2 := symbolCovrad[at2.Symbol]
			if cov2 == 0 {
				return &CError{fmt.Sprintf("Couldn't find the covalent radii for %s %d", at2.Symbol, j), []string{"AssignBonds"}}
			}
			t3.Sub(t2, t1)
			d := t3.Norm(2)
			if d < cov1+cov2+bondtol && d > tooclose {
				b := &Bond{Index: nextIndex, Dist: d, At1: at1, At2: at2}
				at1.Bonds = append(at1.Bonds, b)
				at2.Bonds = append(at2.Bonds, b)
				nextIndex++
			}
		}
	}
	//Now we check that no atom has too many bonds.
	for i := 0; i < tot; i++ {
		at := mol.Atom(i)
		max := symbolMaxBonds[at.Symbol]
		if max == 0 { //means there is not a specified number of bonds for this atom.
			continue
		}
		sort.Slice(at.Bonds, func(i, j int) bool { return at.Bonds[i].Dist < at.Bonds[j].Dist })
		for i := len(at.Bonds); i > max; i = len(at.Bonds) {
			err := RemoveBond(at.Bonds[len(at.Bonds)-1]) //we remove the longest bond
			if err != nil {
				return errDecorate(err, "AssignBonds")
			}
		}
	}
	return nil
}

//InRing returns whether the bond b is part of a ring, i.e. whether its two
//atoms remain connected by some path that doesn't cross b itself. It needs
//the indexes of the atoms involved to be filled.
func InRing(b *Bond) bool {
	visited := map[int]bool{b.At1.Index(): true}
	queue := []*Atom{b.At1}
	for len(queue) > 0 {
		at := queue[0]
		queue = queue[1:]
		for _, v := range at.Bonds {
			if v.Index == b.Index {
				continue
			}
			next := v.Cross(at)
			if next.Index() == b.At2.Index() {
				return true
			}
			if !visited[next.Index()] {
				visited[next.Index()] = true
				queue = append(queue, next)
			}
		}
	}
	return false
}
