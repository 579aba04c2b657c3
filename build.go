/*
 * build.go, part of gogrow.
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
	"math"
	"sort"

	v3 "github.com/rmera/gogrow/v3"
)

//Fragment is a molecule meant to be attached to a larger one. It carries
//exactly one open attachment point (an R-group) or two (a linker). In a
//linker, the point labelled 1 joins the scaffold and the point labelled 2
//remains open, for the R-group that comes after.
type Fragment struct {
	*Molecule
	Name  string
	wild1 int //index of the scaffold-joining attachment point
	wild2 int //index of the open attachment point, -1 for R-groups
}

//IsLinker returns whether the fragment has a second, open attachment point.
func (F *Fragment) IsLinker() bool {
	return F.wild2 >= 0
}

//NewFragment wraps a copy of the given molecule as a fragment, after checking
//that it is a connected graph with one or two attachment points, each with
//exactly one bond. If there is only one attachment point its label is set to
//1, whatever it was. If there are two, their labels must be 1 and 2.
func NewFragment(mol *Molecule, name string) (*Fragment, error) {
	if mol == nil || mol.Len() == 0 {
		return nil, &CError{"gogrow: nil or empty molecule given for a fragment", []string{"NewFragment"}}
	}
	m := mol.Copy()
	m.FillIndexes()
	wilds := make([]int, 0, 2)
	for i := 0; i < m.Len(); i++ {
		if m.Atom(i).IsWildcard() {
			wilds = append(wilds, i)
		}
	}
	if len(wilds) == 0 {
		return nil, errDecorate(&UnsupportedAttachmentError{Index: -1, Reason: "the fragment has no open attachment point"}, "NewFragment")
	}
	if len(wilds) > 2 {
		return nil, errDecorate(&UnsupportedAttachmentError{Index: wilds[2], Reason: "the fragment has more than two open attachment points"}, "NewFragment")
	}
	for _, v := range wilds {
		at := m.Atom(v)
		if len(at.Bonds) != 1 {
			return nil, errDecorate(&UnsupportedAttachmentError{Index: v, Reason: fmt.Sprintf("an attachment point needs exactly one bond, this one has %d", len(at.Bonds))}, "NewFragment")
		}
		if at.Bonds[0].Cross(at).IsWildcard() {
			return nil, errDecorate(&UnsupportedAttachmentError{Index: v, Reason: "an attachment point cannot be bonded to another attachment point"}, "NewFragment")
		}
	}
	if comps := components(m, -1); len(comps) > 1 {
		return nil, errDecorate(&UnsupportedAttachmentError{Index: -1, Reason: fmt.Sprintf("the fragment graph is disconnected (%d pieces)", len(comps))}, "NewFragment")
	}
	F := &Fragment{Molecule: m, Name: name, wild1: wilds[0], wild2: -1}
	if len(wilds) == 1 {
		m.Atom(wilds[0]).Wildcard = 1
		return F, nil
	}
	l1, l2 := m.Atom(wilds[0]).Wildcard, m.Atom(wilds[1]).Wildcard
	if l1 == 2 && l2 == 1 {
		F.wild1, F.wild2 = wilds[1], wilds[0]
	} else if l1 == 1 && l2 == 2 {
		F.wild2 = wilds[1]
	} else {
		return nil, errDecorate(&UnsupportedAttachmentError{Index: wilds[0], Reason: fmt.Sprintf("a linker's attachment points must be labelled 1 and 2, got %d and %d", l1, l2)}, "NewFragment")
	}
	return F, nil
}

//WildcardIndex returns the index of the first open attachment point with the
//given label, or -1 if the molecule has none.
func WildcardIndex(mol Atomer, label int) int {
	for i := 0; i < mol.Len(); i++ {
		if mol.Atom(i).Wildcard == label {
			return i
		}
	}
	return -1
}

//components returns the connected components of the bond graph of mol, as
//slices of atom indexes, each sorted. The atom skip (if >= 0) and its bonds
//are left out of the graph. The components come out ordered by their lowest
//atom index. The atom indexes of mol must be filled.
func components(mol Atomer, skip int) [][]int {
	seen := make([]bool, mol.Len())
	if skip >= 0 && skip < mol.Len() {
		seen[skip] = true
	}
	comps := make([][]int, 0, 2)
	for i := 0; i < mol.Len(); i++ {
		if seen[i] {
			continue
		}
		comp := make([]int, 0, mol.Len())
		queue := []int{i}
		seen[i] = true
		for len(queue) > 0 {
			c := queue[0]
			queue = queue[1:]
			comp = append(comp, c)
			at := mol.Atom(c)
			for _, b := range at.Bonds {
				n := b.Cross(at).Index()
				if seen[n] {
					continue
				}
				seen[n] = true
				queue = append(queue, n)
			}
		}
		sort.Ints(comp)
		comps = append(comps, comp)
	}
	return comps
}

//selectComponent chooses which of the given components is kept as the
//scaffold. If a keep index is given, it is the component containing that
//index. Otherwise it is the component with the most atoms, with ties going
//to the one with the lowest atom index, so repeated runs on the same input
//always keep the same component.
func selectComponent(comps [][]int, keep ...int) ([]int, error) {
	if len(keep) > 0 {
		for _, comp := range comps {
			for _, v := range comp {
				if v == keep[0] {
					return comp, nil
				}
			}
		}
		sizes := make([]int, len(comps))
		for i, v := range comps {
			sizes[i] = len(v)
		}
		return nil, &AmbiguousSelectionError{Keep: keep[0], Sizes: sizes}
	}
	best := comps[0] //comps come ordered by their lowest atom index
	for _, v := range comps[1:] {
		if len(v) > len(best) {
			best = v
		}
	}
	return best, nil
}

//Attachment is a resolved growing position on a scaffold: the atom to be
//replaced, the atom that will carry the new fragment, and the atoms that
//survive the replacement. It is produced by ResolveAttachment and consumed
//by Merge.
type Attachment struct {
	Target int   //the atom to be removed
	Anchor int   //the atom that will bond the incoming fragment
	Kept   []int //the indexes of the atoms that stay, sorted. Never includes Target.
}

//ResolveAttachment determines how the molecule grows at the atom with index
//target: the bond to cleave, the anchor that will carry the new fragment, and
//the atoms kept. The target must exist and have only single or undetermined
//bonds. If removing the target disconnects the graph, the kept component is
//chosen with selectComponent, using the keep atom index if one is given.
//Only the first keep index is considered. The resolution is pure computation:
//the molecule is not modified.
func ResolveAttachment(mol AtomIndexesFiller, target int, keep ...int) (*Attachment, error) {
	mol.FillIndexes()
	if target < 0 || target >= mol.Len() {
		return nil, errDecorate(&InvalidIndexError{Index: target, N: mol.Len()}, "ResolveAttachment")
	}
	at := mol.Atom(target)
	if len(at.Bonds) == 0 {
		return nil, errDecorate(&UnsupportedAttachmentError{Index: target, Reason: "the atom has no bonded neighbor to anchor the new fragment"}, "ResolveAttachment")
	}
	for _, b := range at.Bonds {
		if b.Order > 1 {
			return nil, errDecorate(&UnsupportedAttachmentError{Index: target, Reason: fmt.Sprintf("the atom has a bond of order %3.1f, only single or undetermined bonds can be cleaved", b.Order)}, "ResolveAttachment")
		}
	}
	comps := components(mol, target)
	kept := comps[0]
	if len(comps) > 1 {
		var err error
		kept, err = selectComponent(comps, keep...)
		if err != nil {
			return nil, errDecorate(err, "ResolveAttachment")
		}
	}
	keptset := make(map[int]bool, len(kept))
	for _, v := range kept {
		keptset[v] = true
	}
	anchors := make([]int, 0, 1)
	for _, b := range at.Bonds {
		if n := b.Cross(at).Index(); keptset[n] {
			anchors = append(anchors, n)
		}
	}
	if len(anchors) == 0 {
		return nil, errDecorate(&InvalidIndexError{Index: target, N: mol.Len(), Reason: "every bonded neighbor of the atom lies outside the kept component"}, "ResolveAttachment")
	}
	if len(anchors) > 1 {
		return nil, errDecorate(&UnsupportedAttachmentError{Index: target, Reason: fmt.Sprintf("removing the atom would leave %d dangling bonds in the kept component, exactly one is needed", len(anchors))}, "ResolveAttachment")
	}
	return &Attachment{Target: target, Anchor: anchors[0], Kept: kept}, nil
}

//orderSum adds up the bond orders of at, counting undetermined orders as
//single bonds, and leaving out bonds to the atom with index excluded.
func orderSum(at *Atom, excluded int) float64 {
	var sum float64
	for _, b := range at.Bonds {
		if b.Cross(at).Index() == excluded {
			continue
		}
		if b.Order < 1 {
			sum++
		} else {
			sum += b.Order
		}
	}
	return sum
}

//Merge splices the fragment onto the scaffold at the resolved attachment:
//the scaffold keeps only the atoms in att.Kept, the fragment loses its
//scaffold-joining attachment point, and a new bond is made between att.Anchor
//and the fragment atom that was bonded to that point. The new bond keeps the
//order of the cleaved fragment-side bond, counting undetermined orders as
//single. A linker's second attachment point survives in the product, as an
//open position for a later merge. Both inputs are left untouched: the product
//is a new molecule, with the kept scaffold atoms first (in ascending original
//order) and the fragment atoms after them (in their original order), all
//renumbered. The product keeps one frame of coordinates per scaffold frame,
//with the incoming fragment placed rigidly on the vacated position: a
//starting geometry for conformer generation, not a relaxed one. The total
//charge of the product is the sum of both input charges, which the caller
//might need to adjust if a charged component was discarded during
//resolution.
func Merge(scaffold *Molecule, att *Attachment, frag *Fragment) (*Molecule, error) {
	if att == nil {
		return nil, &CError{"gogrow: nil attachment given", []string{"Merge"}}
	}
	if frag == nil {
		return nil, &CError{"gogrow: nil fragment given", []string{"Merge"}}
	}
	scaffold.FillIndexes()
	frag.FillIndexes()
	//the fragment-side bond to cleave
	wAt := frag.Atom(frag.wild1)
	fb := wAt.Bonds[0]
	fnb := fb.Cross(wAt).Index()
	order := fb.Order
	if order < 1 {
		order = 1
	}
	//valence checks on both ends of the bond to come
	anchorAt := scaffold.Atom(att.Anchor)
	if max := symbolMaxBonds[anchorAt.Symbol]; max > 0 {
		if v := orderSum(anchorAt, att.Target) + order; v > float64(max) {
			return nil, errDecorate(&ValenceError{Index: att.Anchor, Symbol: anchorAt.Symbol, Valence: v, Max: max}, "Merge")
		}
	}
	fnbAt := frag.Atom(fnb)
	if max := symbolMaxBonds[fnbAt.Symbol]; max > 0 {
		if v := orderSum(fnbAt, frag.wild1) + order; v > float64(max) {
			return nil, errDecorate(&ValenceError{Index: fnb, Symbol: fnbAt.Symbol, Valence: v, Max: max}, "Merge")
		}
	}
	//the kept scaffold atoms, renumbered
	nats := make([]*Atom, 0, len(att.Kept)+frag.Len()-1)
	smap := make(map[int]int, len(att.Kept)) //old scaffold index to new index
	for i, oi := range att.Kept {
		if oi < 0 || oi >= scaffold.Len() {
			return nil, errDecorate(&InvalidIndexError{Index: oi, N: scaffold.Len()}, "Merge")
		}
		w := new(Atom)
		w.Copy(scaffold.Atom(oi))
		w.Bonds = nil
		w.ID = i + 1
		smap[oi] = i
		nats = append(nats, w)
	}
	if _, ok := smap[att.Target]; ok {
		return nil, &CError{fmt.Sprintf("gogrow: the target atom %d is among the kept atoms", att.Target), []string{"Merge"}}
	}
	if _, ok := smap[att.Anchor]; !ok {
		return nil, errDecorate(&InvalidIndexError{Index: att.Anchor, N: scaffold.Len(), Reason: "the anchor atom is not among the kept atoms"}, "Merge")
	}
	//the fragment atoms, minus the spent attachment point
	fmap := make(map[int]int, frag.Len()-1) //old fragment index to new index
	for i := 0; i < frag.Len(); i++ {
		if i == frag.wild1 {
			continue
		}
		w := new(Atom)
		w.Copy(frag.Atom(i))
		w.Bonds = nil
		w.ID = len(nats) + 1
		fmap[i] = len(nats)
		nats = append(nats, w)
	}
	top := NewTopology(scaffold.Charge()+frag.Charge(), 1, nats)
	//scaffold bonds between kept atoms
	var nb int
	for _, oi := range att.Kept {
		at := scaffold.Atom(oi)
		for _, b := range at.Bonds {
			if b.At1.Index() != oi {
				continue //each bond is visited once, from its first atom
			}
			ni, ok1 := smap[oi]
			nj, ok2 := smap[b.At2.Index()]
			if !ok1 || !ok2 {
				continue //a bond to the target or to a discarded atom
			}
			NewBond(nats[ni], nats[nj], nb, b.Order)
			nb++
		}
	}
	//fragment bonds, minus the cleaved one
	for i := 0; i < frag.Len(); i++ {
		if i == frag.wild1 {
			continue
		}
		at := frag.Atom(i)
		for _, b := range at.Bonds {
			if b.At1.Index() != i {
				continue
			}
			ni, ok1 := fmap[i]
			nj, ok2 := fmap[b.At2.Index()]
			if !ok1 || !ok2 {
				continue
			}
			NewBond(nats[ni], nats[nj], nb, b.Order)
			nb++
		}
	}
	NewBond(nats[smap[att.Anchor]], nats[fmap[fnb]], nb, order)
	//coordinates: the kept scaffold atoms keep theirs, the fragment comes
	//in rigidly, oriented along the cleaved bond.
	coords := make([]*v3.Matrix, 0, scaffold.LenFrames())
	for fr := 0; fr < scaffold.LenFrames(); fr++ {
		c := v3.Zeros(top.Len())
		for i, oi := range att.Kept {
			c.SetMatrix(i, 0, scaffold.Coords[fr].VecView(oi))
		}
		placed := placeFragment(scaffold.Coords[fr], att, frag, fnb)
		for oi, ni := range fmap {
			c.SetMatrix(ni, 0, placed.VecView(oi))
		}
		coords = append(coords, c)
	}
	ret, err := NewMolecule(coords, top, nil)
	if err != nil {
		return nil, errDecorate(err, "Merge")
	}
	return ret, nil
}

//placeFragment maps the fragment coordinates onto one frame of the scaffold:
//the fragment is translated so its spent attachment point falls on the
//anchor, then rotated so the bond to come points from the anchor towards the
//removed atom, leaving the new neighbor at the catalog bond length. The
//returned matrix has one row per fragment atom, in the fragment's own order.
//When either side has no direction to offer (a scaffold without real
//coordinates, say) the translation alone is applied, and a fragment with no
//frames gets all its atoms on the anchor.
func placeFragment(scoord *v3.Matrix, att *Attachment, frag *Fragment, fnb int) *v3.Matrix {
	anchor := v3.Zeros(1)
	anchor.Copy(scoord.VecView(att.Anchor))
	if frag.LenFrames() == 0 {
		ret := v3.Zeros(frag.Len())
		ret.AddVec(ret, anchor)
		return ret
	}
	fc := frag.Coords[0]
	wild := v3.Zeros(1)
	wild.Copy(fc.VecView(frag.wild1))
	//u is the direction the fragment brings, v the one the scaffold needs
	u := v3.Zeros(1)
	u.Sub(fc.VecView(fnb), fc.VecView(frag.wild1))
	v := v3.Zeros(1)
	v.Sub(scoord.VecView(att.Target), scoord.VecView(att.Anchor))
	placed := v3.Zeros(fc.NVecs())
	placed.SubVec(fc, wild)
	un, vn := u.Norm(2), v.Norm(2)
	if un > 0 && vn > 0 {
		var dot float64
		for i := 0; i < 3; i++ {
			dot += u.At(0, i) * v.At(0, i)
		}
		cosang := dot / (un * vn)
		if cosang > 1 {
			cosang = 1
		} else if cosang < -1 {
			cosang = -1
		}
		if angle := math.Acos(cosang); angle > 0 {
			axis := cross(u, v)
			if axis.Norm(2) == 0 {
				axis = perpendicular(u) //u and v are anti-parallel
			}
			placed = Rotate(placed, axis, angle)
		}
	}
	placed.AddVec(placed, anchor)
	return placed
}

//the cross product of the first vecs of a and b
func cross(a, b *v3.Matrix) *v3.Matrix {
	c := v3.Zeros(1)
	c.Cross(a, b)
	return c
}

//a vector perpendicular to the non-zero vector a
func perpendicular(a *v3.Matrix) *v3.Matrix {
	//crossing a with the cardinal axis it leans on the least can't vanish
	least := 0
	min := math.Abs(a.At(0, 0))
	for i := 1; i < 3; i++ {
		if m := math.Abs(a.At(0, i)); m < min {
			min = m
			least = i
		}
	}
	card := v3.Zeros(1)
	card.Set(0, least, 1)
	return cross(a, card)
}

//Built is a molecule put together by BuildMolecules, plus the names and the
//input positions of the pieces that went into it. LinkerIdx is -1 when no
//linker was used.
type Built struct {
	*Molecule
	RGroup    string
	Linker    string
	RGroupIdx int
	LinkerIdx int
}

//BuildMolecules grows the scaffold at the target atom with every given
//R-group, through every given linker, and returns the products in a fixed
//order: linkers in input order on the outside, R-groups in input order on
//the inside, so with N R-groups and M linkers the result has exactly M*N
//molecules, and the product of linker i with R-group j sits at position
//i*N + j. With no linkers there are N products, one per R-group, in input
//order. The optional keep index picks the component to retain if removing
//the target atom disconnects the scaffold. Any failed combination aborts
//the whole batch: no partial result is ever returned.
func BuildMolecules(scaffold *Molecule, target int, rgroups []*Fragment, linkers []*Fragment, keep ...int) ([]*Built, error) {
	if len(rgroups) == 0 {
		return nil, &CError{"gogrow: no R-groups given", []string{"BuildMolecules"}}
	}
	for i, v := range linkers {
		if v == nil || !v.IsLinker() {
			return nil, errDecorate(&UnsupportedAttachmentError{Index: -1, Reason: fmt.Sprintf("linker %d has no open second attachment point", i)}, "BuildMolecules")
		}
	}
	if len(linkers) > 0 && WildcardIndex(scaffold, 2) >= 0 {
		return nil, errDecorate(&UnsupportedAttachmentError{Index: WildcardIndex(scaffold, 2), Reason: "the scaffold already carries an open label-2 attachment point, grow there first"}, "BuildMolecules")
	}
	att, err := ResolveAttachment(scaffold, target, keep...)
	if err != nil {
		return nil, errDecorate(err, "BuildMolecules")
	}
	if len(linkers) == 0 {
		ret := make([]*Built, 0, len(rgroups))
		for j, rg := range rgroups {
			m, err := Merge(scaffold, att, rg)
			if err != nil {
				return nil, errDecorate(err, "BuildMolecules")
			}
			ret = append(ret, &Built{Molecule: m, RGroup: rg.Name, RGroupIdx: j, LinkerIdx: -1})
		}
		return ret, nil
	}
	ret := make([]*Built, 0, len(linkers)*len(rgroups))
	for i, lk := range linkers {
		lm, err := Merge(scaffold, att, lk)
		if err != nil {
			return nil, errDecorate(err, "BuildMolecules")
		}
		open := WildcardIndex(lm, 2)
		if open < 0 {
			return nil, errDecorate(&UnsupportedAttachmentError{Index: -1, Reason: fmt.Sprintf("linker %d lost its open attachment point in the merge", i)}, "BuildMolecules")
		}
		att2, err := ResolveAttachment(lm, open)
		if err != nil {
			return nil, errDecorate(err, "BuildMolecules")
		}
		for j, rg := range rgroups {
			m, err := Merge(lm, att2, rg)
			if err != nil {
				return nil, errDecorate(err, "BuildMolecules")
			}
			ret = append(ret, &Built{Molecule: m, RGroup: rg.Name, RGroupIdx: j, Linker: lk.Name, LinkerIdx: i})
		}
	}
	return ret, nil
}

//BuildMolecule grows the scaffold at the target atom with a single R-group,
//through the given linker if it is not nil.
func BuildMolecule(scaffold *Molecule, target int, rgroup *Fragment, linker *Fragment, keep ...int) (*Built, error) {
	var links []*Fragment
	if linker != nil {
		links = []*Fragment{linker}
	}
	built, err := BuildMolecules(scaffold, target, []*Fragment{rgroup}, links, keep...)
	if err != nil {
		return nil, errDecorate(err, "BuildMolecule")
	}
	return built[0], nil
}
