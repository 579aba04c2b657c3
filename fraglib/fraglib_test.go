package fraglib

import (
	"fmt"
	"testing"

	grow "github.com/rmera/gogrow"
	v3 "github.com/rmera/gogrow/v3"
)

func TestCatalog(Te *testing.T) {
	fmt.Println("catalog categories:", Categories())
	if len(RGroupNames()) < 10 {
		Te.Errorf("only %d R-groups in the catalog", len(RGroupNames()))
	}
	for _, name := range RGroupNames() {
		f, err := RGroup(name)
		if err != nil {
			Te.Fatal(err)
		}
		if f.IsLinker() {
			Te.Errorf("R-group %s has two attachment points", name)
		}
	}
	for _, name := range LinkerNames() {
		f, err := Linker(name)
		if err != nil {
			Te.Fatal(err)
		}
		if !f.IsLinker() {
			Te.Errorf("linker %s doesn't have two attachment points", name)
		}
	}
	if _, err := RGroup("unobtanium"); err == nil {
		Te.Error("an R-group not in the catalog didn't fail")
	}
	if _, err := Linker("methyl"); err == nil {
		Te.Error("a linker lookup found an R-group")
	}
}

func TestCatalogEntries(Te *testing.T) {
	methyl, err := RGroup("methyl")
	if err != nil {
		Te.Fatal(err)
	}
	if methyl.Len() != 5 {
		Te.Errorf("methyl has %d atoms, want 5", methyl.Len())
	}
	nitro, err := RGroup("nitro")
	if err != nil {
		Te.Fatal(err)
	}
	if nitro.Charge() != 0 {
		Te.Errorf("nitro carries net charge %d, want 0", nitro.Charge())
	}
	var plus, minus bool
	for i := 0; i < nitro.Len(); i++ {
		switch nitro.Atom(i).Charge {
		case 1:
			plus = true
		case -1:
			minus = true
		}
	}
	if !plus || !minus {
		Te.Error("nitro lost its formal charges")
	}
	if got := len(RGroups("halogen")); got != 4 {
		Te.Errorf("%d halogen R-groups, want 4", got)
	}
	if got := len(Linkers("")); got != len(LinkerNames()) {
		Te.Errorf("Linkers(\"\") returned %d of %d linkers", got, len(LinkerNames()))
	}
}

func TestCatalogCopies(Te *testing.T) {
	a, err := RGroup("hydroxyl")
	if err != nil {
		Te.Fatal(err)
	}
	a.Atom(0).Symbol = "S"
	b, err := RGroup("hydroxyl")
	if err != nil {
		Te.Fatal(err)
	}
	if b.Atom(0).Symbol != "O" {
		Te.Error("catalog entries share state between calls")
	}
}

//growing an ethane at one of its hydrogens with a catalog methyl
//must give propane.
func TestCatalogAttach(Te *testing.T) {
	symbols := []string{"C", "C", "H", "H", "H", "H", "H", "H"}
	ats := make([]*grow.Atom, len(symbols))
	for i, s := range symbols {
		ats[i] = &grow.Atom{Symbol: s, ID: i + 1}
	}
	top := grow.NewTopology(0, 1, ats)
	grow.NewBond(ats[0], ats[1], 0, 1)
	for i, h := range []int{2, 3, 4} {
		grow.NewBond(ats[0], ats[h], i+1, 1)
	}
	for i, h := range []int{5, 6, 7} {
		grow.NewBond(ats[1], ats[h], i+4, 1)
	}
	ethane, err := grow.NewMolecule([]*v3.Matrix{v3.Zeros(len(ats))}, top, nil)
	if err != nil {
		Te.Fatal(err)
	}
	methyl, err := RGroup("methyl")
	if err != nil {
		Te.Fatal(err)
	}
	built, err := grow.BuildMolecule(ethane, 2, methyl, nil)
	if err != nil {
		Te.Fatal(err)
	}
	if built.Len() != 11 {
		Te.Errorf("propane came out with %d atoms, want 11", built.Len())
	}
	if built.RGroup != "methyl" {
		Te.Errorf("product labeled %q, want methyl", built.RGroup)
	}
}
