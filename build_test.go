/*
 * build_test.go, part of gogrow.
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
	"errors"
	"fmt"
	"math"
	"testing"

	v3 "github.com/rmera/gogrow/v3"
)

type tbond struct {
	a, b  int
	order float64
}

//testMol builds a molecule from element symbols and bonds, with one frame of
//coordinates at the origin. wilds marks atoms as open attachment points, by
//index and label.
func testMol(Te *testing.T, symbols []string, wilds map[int]int, bonds []tbond) *Molecule {
	ats := make([]*Atom, 0, len(symbols))
	for i, s := range symbols {
		at := &Atom{Symbol: s, ID: i + 1}
		if w, ok := wilds[i]; ok {
			at.Symbol = "*"
			at.Wildcard = w
		}
		ats = append(ats, at)
	}
	top := NewTopology(0, 1, ats)
	for i, b := range bonds {
		NewBond(top.Atom(b.a), top.Atom(b.b), i, b.order)
	}
	mol, err := NewMolecule([]*v3.Matrix{v3.Zeros(top.Len())}, top, nil)
	if err != nil {
		Te.Fatal(err)
	}
	return mol
}

//a 10-atom butane-like scaffold, with a replaceable hydrogen on the second
//carbon at index 9.
func butaneScaffold(Te *testing.T) *Molecule {
	return testMol(Te,
		[]string{"C", "C", "C", "C", "H", "H", "H", "H", "H", "H"},
		nil,
		[]tbond{{0, 1, 1}, {1, 2, 1}, {2, 3, 1}, {0, 4, 1}, {0, 5, 1}, {0, 6, 1}, {3, 7, 1}, {3, 8, 1}, {1, 9, 1}})
}

//a 4-atom ethanol-like R-group: *-C-C-O.
func ethanolish(Te *testing.T) *Fragment {
	m := testMol(Te, []string{"*", "C", "C", "O"}, map[int]int{0: 1},
		[]tbond{{0, 1, 1}, {1, 2, 1}, {2, 3, 1}})
	f, err := NewFragment(m, "ethanolish")
	if err != nil {
		Te.Fatal(err)
	}
	return f
}

func TestResolveAttachment(Te *testing.T) {
	methane := testMol(Te, []string{"C", "H", "H", "H", "H"}, nil,
		[]tbond{{0, 1, 1}, {0, 2, 1}, {0, 3, 1}, {0, 4, 1}})
	att, err := ResolveAttachment(methane, 2)
	if err != nil {
		Te.Fatal(err)
	}
	if att.Anchor != 0 || att.Target != 2 {
		Te.Errorf("wrong resolution: anchor %d, target %d", att.Anchor, att.Target)
	}
	want := []int{0, 1, 3, 4}
	if len(att.Kept) != len(want) {
		Te.Fatalf("kept %v, want %v", att.Kept, want)
	}
	for i, v := range want {
		if att.Kept[i] != v {
			Te.Errorf("kept %v, want %v", att.Kept, want)
			break
		}
	}
}

func TestMergeAtomCount(Te *testing.T) {
	scaf := butaneScaffold(Te)
	frag := ethanolish(Te)
	att, err := ResolveAttachment(scaf, 9)
	if err != nil {
		Te.Fatal(err)
	}
	built, err := Merge(scaf, att, frag)
	if err != nil {
		Te.Fatal(err)
	}
	if built.Len() != scaf.Len()+frag.Len()-2 {
		Te.Errorf("built molecule has %d atoms, want %d", built.Len(), scaf.Len()+frag.Len()-2)
	}
	if built.Len() != 12 {
		Te.Errorf("built molecule has %d atoms, want 12", built.Len())
	}
	if WildcardIndex(built, 1) >= 0 || WildcardIndex(built, 2) >= 0 {
		Te.Error("an attachment point survived an R-group merge")
	}
	//the new bond joins the old anchor with the fragment atom that was
	//bonded to the spent attachment point.
	anchorNew := -1
	for i, v := range att.Kept {
		if v == att.Anchor {
			anchorNew = i
		}
	}
	fragNew := len(att.Kept) //the fragment's ex-neighbor comes right after the kept atoms
	joined := false
	for _, b := range built.Atom(anchorNew).Bonds {
		if b.Cross(built.Atom(anchorNew)).Index() == fragNew {
			joined = true
			if b.Order != 1 {
				Te.Errorf("new bond has order %3.1f, want 1", b.Order)
			}
		}
	}
	if !joined {
		Te.Error("the anchor did not end up bonded to the fragment")
	}
	//the inputs must come out untouched
	if scaf.Len() != 10 || frag.Len() != 4 {
		Te.Error("merge modified its inputs")
	}
	fmt.Println("merged molecule atoms:", built.Len())
}

func TestNullFragmentRoundTrip(Te *testing.T) {
	methane := testMol(Te, []string{"C", "H", "H", "H", "H"}, nil,
		[]tbond{{0, 1, 1}, {0, 2, 1}, {0, 3, 1}, {0, 4, 1}})
	null := testMol(Te, []string{"*", "H"}, map[int]int{0: 1}, []tbond{{0, 1, 1}})
	frag, err := NewFragment(null, "null")
	if err != nil {
		Te.Fatal(err)
	}
	att, err := ResolveAttachment(methane, 3)
	if err != nil {
		Te.Fatal(err)
	}
	built, err := Merge(methane, att, frag)
	if err != nil {
		Te.Fatal(err)
	}
	if built.Len() != methane.Len() {
		Te.Fatalf("round trip gave %d atoms, want %d", built.Len(), methane.Len())
	}
	var c, h int
	for i := 0; i < built.Len(); i++ {
		switch built.Atom(i).Symbol {
		case "C":
			c++
		case "H":
			h++
		}
	}
	if c != 1 || h != 4 {
		Te.Errorf("round trip gave %d C and %d H, want 1 and 4", c, h)
	}
	carbon := built.Atom(0)
	if len(carbon.Bonds) != 4 {
		Te.Errorf("the carbon ended up with %d bonds, want 4", len(carbon.Bonds))
	}
	for _, b := range carbon.Bonds {
		if b.Order != 1 {
			Te.Errorf("a C-H bond ended up with order %3.1f", b.Order)
		}
	}
}

//divider has a central atom whose removal splits the graph in a 6-atom and a
//9-atom chain: indexes 0-5, the divider at 6, and 7-15.
func divider(Te *testing.T) *Molecule {
	symbols := make([]string, 16)
	for i := range symbols {
		symbols[i] = "C"
	}
	bonds := []tbond{{0, 1, 1}, {1, 2, 1}, {2, 3, 1}, {3, 4, 1}, {4, 5, 1},
		{5, 6, 1}, {6, 7, 1},
		{7, 8, 1}, {8, 9, 1}, {9, 10, 1}, {10, 11, 1}, {11, 12, 1}, {12, 13, 1}, {13, 14, 1}, {14, 15, 1}}
	return testMol(Te, symbols, nil, bonds)
}

func TestComponentSelection(Te *testing.T) {
	mol := divider(Te)
	att, err := ResolveAttachment(mol, 6)
	if err != nil {
		Te.Fatal(err)
	}
	if len(att.Kept) != 9 || att.Anchor != 7 {
		Te.Errorf("default selection kept %d atoms with anchor %d, want 9 and 7", len(att.Kept), att.Anchor)
	}
	att, err = ResolveAttachment(mol, 6, 2)
	if err != nil {
		Te.Fatal(err)
	}
	if len(att.Kept) != 6 || att.Anchor != 5 {
		Te.Errorf("override kept %d atoms with anchor %d, want 6 and 5", len(att.Kept), att.Anchor)
	}
	methyl := testMol(Te, []string{"*", "C"}, map[int]int{0: 1}, []tbond{{0, 1, 1}})
	frag, err := NewFragment(methyl, "methyl")
	if err != nil {
		Te.Fatal(err)
	}
	built, err := Merge(mol, att, frag)
	if err != nil {
		Te.Fatal(err)
	}
	if built.Len() != 7 {
		Te.Errorf("built molecule has %d atoms, want 7", built.Len())
	}
}

func TestComponentTieBreak(Te *testing.T) {
	//two equal-sized components, the lowest-index one must win every time.
	mol := testMol(Te, []string{"C", "C", "C", "C", "C"}, nil,
		[]tbond{{0, 1, 1}, {1, 2, 1}, {2, 3, 1}, {3, 4, 1}})
	for i := 0; i < 5; i++ {
		att, err := ResolveAttachment(mol, 2)
		if err != nil {
			Te.Fatal(err)
		}
		if len(att.Kept) != 2 || att.Kept[0] != 0 || att.Kept[1] != 1 {
			Te.Fatalf("tie break kept %v, want [0 1]", att.Kept)
		}
		if att.Anchor != 1 {
			Te.Errorf("tie break anchor %d, want 1", att.Anchor)
		}
	}
}

func TestLinkerOpenPoint(Te *testing.T) {
	scaf := butaneScaffold(Te)
	ml := testMol(Te, []string{"*", "C", "*"}, map[int]int{0: 1, 2: 2},
		[]tbond{{0, 1, 1}, {1, 2, 1}})
	linker, err := NewFragment(ml, "methylene")
	if err != nil {
		Te.Fatal(err)
	}
	att, err := ResolveAttachment(scaf, 9)
	if err != nil {
		Te.Fatal(err)
	}
	built, err := Merge(scaf, att, linker)
	if err != nil {
		Te.Fatal(err)
	}
	open := 0
	for i := 0; i < built.Len(); i++ {
		if built.Atom(i).IsWildcard() {
			open++
			if built.Atom(i).Wildcard != 2 {
				Te.Errorf("surviving attachment point has label %d, want 2", built.Atom(i).Wildcard)
			}
			if len(built.Atom(i).Bonds) != 1 {
				Te.Errorf("surviving attachment point has %d bonds, want 1", len(built.Atom(i).Bonds))
			}
		}
	}
	if open != 1 {
		Te.Errorf("%d attachment points survived a linker merge, want exactly 1", open)
	}
}

func TestBuildMolecules(Te *testing.T) {
	scaf := butaneScaffold(Te)
	rgroups := make([]*Fragment, 0, 3)
	for _, v := range []struct {
		name    string
		symbols []string
		wilds   map[int]int
		bonds   []tbond
	}{
		{"methyl", []string{"*", "C"}, map[int]int{0: 1}, []tbond{{0, 1, 1}}},
		{"amino", []string{"N", "*"}, map[int]int{1: 1}, []tbond{{0, 1, 1}}},
		{"ethanolish", []string{"*", "C", "C", "O"}, map[int]int{0: 1}, []tbond{{0, 1, 1}, {1, 2, 1}, {2, 3, 1}}},
	} {
		f, err := NewFragment(testMol(Te, v.symbols, v.wilds, v.bonds), v.name)
		if err != nil {
			Te.Fatal(err)
		}
		rgroups = append(rgroups, f)
	}
	linkers := make([]*Fragment, 0, 2)
	for _, v := range []struct {
		name    string
		symbols []string
		wilds   map[int]int
		bonds   []tbond
	}{
		{"methylene", []string{"*", "C", "*"}, map[int]int{0: 1, 2: 2}, []tbond{{0, 1, 1}, {1, 2, 1}}},
		{"ethylene", []string{"*", "C", "C", "*"}, map[int]int{0: 1, 3: 2}, []tbond{{0, 1, 1}, {1, 2, 1}, {2, 3, 1}}},
	} {
		f, err := NewFragment(testMol(Te, v.symbols, v.wilds, v.bonds), v.name)
		if err != nil {
			Te.Fatal(err)
		}
		linkers = append(linkers, f)
	}
	built, err := BuildMolecules(scaf, 9, rgroups, linkers)
	if err != nil {
		Te.Fatal(err)
	}
	if len(built) != len(linkers)*len(rgroups) {
		Te.Fatalf("built %d molecules, want %d", len(built), len(linkers)*len(rgroups))
	}
	for i, lk := range linkers {
		for j, rg := range rgroups {
			b := built[i*len(rgroups)+j]
			if b.Linker != lk.Name || b.RGroup != rg.Name || b.LinkerIdx != i || b.RGroupIdx != j {
				Te.Errorf("molecule %d traces to (%s %d, %s %d), want (%s %d, %s %d)",
					i*len(rgroups)+j, b.Linker, b.LinkerIdx, b.RGroup, b.RGroupIdx, lk.Name, i, rg.Name, j)
			}
			wantAtoms := scaf.Len() + lk.Len() - 2 + rg.Len() - 2
			if b.Len() != wantAtoms {
				Te.Errorf("molecule %d has %d atoms, want %d", i*len(rgroups)+j, b.Len(), wantAtoms)
			}
			if WildcardIndex(b, 1) >= 0 || WildcardIndex(b, 2) >= 0 {
				Te.Errorf("molecule %d still has an open attachment point", i*len(rgroups)+j)
			}
		}
	}
	//without linkers, one product per R-group, in order
	built, err = BuildMolecules(scaf, 9, rgroups, nil)
	if err != nil {
		Te.Fatal(err)
	}
	if len(built) != len(rgroups) {
		Te.Fatalf("built %d molecules without linkers, want %d", len(built), len(rgroups))
	}
	for j, rg := range rgroups {
		if built[j].RGroup != rg.Name || built[j].LinkerIdx != -1 {
			Te.Errorf("molecule %d traces to (%s, linker %d), want (%s, no linker)", j, built[j].RGroup, built[j].LinkerIdx, rg.Name)
		}
	}
	fmt.Println("expanded", len(built), "molecules")
}

func TestBuildErrors(Te *testing.T) {
	methane := testMol(Te, []string{"C", "H", "H", "H", "H"}, nil,
		[]tbond{{0, 1, 1}, {0, 2, 1}, {0, 3, 1}, {0, 4, 1}})
	_, err := ResolveAttachment(methane, 99)
	var ierr *InvalidIndexError
	if !errors.As(err, &ierr) {
		Te.Errorf("out-of-range target gave %v, want an InvalidIndexError", err)
	}
	carbonyl := testMol(Te, []string{"C", "O", "H", "H"}, nil,
		[]tbond{{0, 1, 2}, {0, 2, 1}, {0, 3, 1}})
	_, err = ResolveAttachment(carbonyl, 1)
	var uerr *UnsupportedAttachmentError
	if !errors.As(err, &uerr) {
		Te.Errorf("double-bonded target gave %v, want an UnsupportedAttachmentError", err)
	}
	//a keep index that is not in any component
	mol := divider(Te)
	_, err = ResolveAttachment(mol, 6, 6)
	var aerr *AmbiguousSelectionError
	if !errors.As(err, &aerr) {
		Te.Errorf("bad keep index gave %v, want an AmbiguousSelectionError", err)
	}
	//an order-2 fragment bond onto a carbon that only has one slot left
	oxo := testMol(Te, []string{"*", "O"}, map[int]int{0: 1}, []tbond{{0, 1, 2}})
	frag, err := NewFragment(oxo, "oxo")
	if err != nil {
		Te.Fatal(err)
	}
	att, err := ResolveAttachment(methane, 4)
	if err != nil {
		Te.Fatal(err)
	}
	_, err = Merge(methane, att, frag)
	var verr *ValenceError
	if !errors.As(err, &verr) {
		Te.Errorf("over-valence merge gave %v, want a ValenceError", err)
	}
	//one bad combination aborts the whole batch
	methyl, err := NewFragment(testMol(Te, []string{"*", "C"}, map[int]int{0: 1}, []tbond{{0, 1, 1}}), "methyl")
	if err != nil {
		Te.Fatal(err)
	}
	built, err := BuildMolecules(methane, 4, []*Fragment{methyl, frag}, nil)
	if err == nil {
		Te.Error("a failing combination did not abort the batch")
	}
	if built != nil {
		Te.Error("a failed batch returned a partial result")
	}
}

func TestNewFragmentValidation(Te *testing.T) {
	//no attachment point
	m := testMol(Te, []string{"C", "H"}, nil, []tbond{{0, 1, 1}})
	if _, err := NewFragment(m, "bad"); err == nil {
		Te.Error("a fragment without attachment points was accepted")
	}
	//an attachment point with two bonds
	m = testMol(Te, []string{"C", "*", "C"}, map[int]int{1: 1}, []tbond{{0, 1, 1}, {1, 2, 1}})
	if _, err := NewFragment(m, "bad"); err == nil {
		Te.Error("an attachment point with two bonds was accepted")
	}
	//a disconnected fragment
	m = testMol(Te, []string{"*", "C", "O"}, map[int]int{0: 1}, []tbond{{0, 1, 1}})
	if _, err := NewFragment(m, "bad"); err == nil {
		Te.Error("a disconnected fragment was accepted")
	}
	//bad linker labels
	m = testMol(Te, []string{"*", "C", "*"}, map[int]int{0: 1, 2: 1}, []tbond{{0, 1, 1}, {1, 2, 1}})
	if _, err := NewFragment(m, "bad"); err == nil {
		Te.Error("a linker with two label-1 points was accepted")
	}
	//label order does not matter
	m = testMol(Te, []string{"*", "C", "*"}, map[int]int{0: 2, 2: 1}, []tbond{{0, 1, 1}, {1, 2, 1}})
	f, err := NewFragment(m, "flipped")
	if err != nil {
		Te.Fatal(err)
	}
	if !f.IsLinker() {
		Te.Error("a flipped linker was not recognized as a linker")
	}
	//a single point gets its label normalized to 1
	m = testMol(Te, []string{"*", "C"}, map[int]int{0: 2}, []tbond{{0, 1, 1}})
	f, err = NewFragment(m, "single")
	if err != nil {
		Te.Fatal(err)
	}
	if WildcardIndex(f, 1) != 0 {
		Te.Error("a single attachment point did not get label 1")
	}
}

//a hydroxyl-like fragment with real coordinates: the attachment point at
//wildx on the x axis, the oxygen at the origin and the hydrogen off-plane.
func placedHydroxyl(Te *testing.T, wildx float64) *Fragment {
	m := testMol(Te, []string{"*", "O", "H"}, map[int]int{0: 1},
		[]tbond{{0, 1, 1}, {1, 2, 1}})
	m.Coords[0].Set(0, 0, wildx)
	m.Coords[0].Set(2, 0, 0.32)
	m.Coords[0].Set(2, 1, 0.92)
	f, err := NewFragment(m, "hydroxyl")
	if err != nil {
		Te.Fatal(err)
	}
	return f
}

func TestMergePlacement(Te *testing.T) {
	//a C-H scaffold along x: replacing the hydrogen must leave the incoming
	//oxygen on the same side, at the catalog bond length.
	scaf := testMol(Te, []string{"C", "H"}, nil, []tbond{{0, 1, 1}})
	scaf.Coords[0].Set(1, 0, 1.1)
	att, err := ResolveAttachment(scaf, 1)
	if err != nil {
		Te.Fatal(err)
	}
	ohLen := math.Sqrt(0.32*0.32 + 0.92*0.92)
	for _, wildx := range []float64{-1.41, 1.41} {
		//with the attachment point at -1.41 the fragment already points the
		//right way; at +1.41 it needs a half turn
		built, err := Merge(scaf, att, placedHydroxyl(Te, wildx))
		if err != nil {
			Te.Fatal(err)
		}
		if c := built.Coord(0, 0); c.Norm(2) > 1e-10 {
			Te.Errorf("the scaffold carbon moved to %v", c)
		}
		o := built.Coord(1, 0)
		if math.Abs(o.At(0, 0)-1.41) > 1e-10 || math.Abs(o.At(0, 1)) > 1e-10 || math.Abs(o.At(0, 2)) > 1e-10 {
			Te.Errorf("oxygen placed at %v, want (1.41, 0, 0)", o)
		}
		if d := built.Coord(2, 0).Dist(o); math.Abs(d-ohLen) > 1e-10 {
			Te.Errorf("the O-H distance came out as %f, want %f", d, ohLen)
		}
	}
}
