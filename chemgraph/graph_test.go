package chemgraph

import (
	"fmt"
	"testing"

	grow "github.com/rmera/gogrow"
	v3 "github.com/rmera/gogrow/v3"
)

//a cyclopropane ring plus a detached ethane
func ringAndEthane(Te *testing.T) *grow.Molecule {
	ats := make([]*grow.Atom, 5)
	for i := range ats {
		ats[i] = &grow.Atom{Symbol: "C", ID: i + 1}
	}
	top := grow.NewTopology(0, 1, ats)
	grow.NewBond(ats[0], ats[1], 0, 1)
	grow.NewBond(ats[1], ats[2], 1, 1)
	grow.NewBond(ats[2], ats[0], 2, 1)
	grow.NewBond(ats[3], ats[4], 3, 1)
	mol, err := grow.NewMolecule([]*v3.Matrix{v3.Zeros(len(ats))}, top, nil)
	if err != nil {
		Te.Fatal(err)
	}
	return mol
}

func TestTopologyFromMol(Te *testing.T) {
	mol := ringAndEthane(Te)
	g := TopologyFromMol(mol, nil, nil)
	if g.Bonds.Len() != 4 {
		Te.Fatalf("graph has %d edges, want 4", g.Bonds.Len())
	}
	if !g.HasEdgeBetween(0, 2) || g.HasEdgeBetween(2, 3) {
		Te.Error("edges of the graph don't match the bonds")
	}
	w, ok := g.Weight(0, 1)
	if !ok || w != 1 {
		Te.Errorf("default weight %v (%v), want 1", w, ok)
	}
	if g.Node(4) == nil || g.Node(7) != nil {
		Te.Error("Node lookup doesn't match the atoms")
	}
	neigh := g.From(0)
	if neigh.Len() != 2 {
		Te.Errorf("atom 0 has %d neighbors in the graph, want 2", neigh.Len())
	}
	for neigh.Next() {
		n := neigh.Node().(*Atom)
		if i := n.Index(); i != 1 && i != 2 {
			Te.Errorf("atom %d is not a neighbor of atom 0", i)
		}
	}
}

func TestComponents(Te *testing.T) {
	mol := ringAndEthane(Te)
	comps := Components(TopologyFromMol(mol, nil, nil))
	fmt.Println("components:", comps)
	if len(comps) != 2 {
		Te.Fatalf("%d components, want 2", len(comps))
	}
	want := [][]int{{0, 1, 2}, {3, 4}}
	for i, w := range want {
		if len(comps[i]) != len(w) {
			Te.Fatalf("component %d is %v, want %v", i, comps[i], w)
		}
		for j := range w {
			if comps[i][j] != w[j] {
				Te.Errorf("component %d is %v, want %v", i, comps[i], w)
				break
			}
		}
	}
}
