package chemgraph

import (
	"fmt"
	"sort"

	grow "github.com/rmera/gogrow"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/topo"
)

type Atom struct {
	*grow.Atom
	Bonds  []*Bond
	IDFunc func(*Atom) int64
}

func (A *Atom) ID() int64 {
	if A.IDFunc == nil {
		return int64(A.Index())
	}
	return A.IDFunc(A)
}

func (A *Atom) AtID() int {
	return A.Atom.ID
}

type Bond struct {
	*grow.Bond
	At1, At2   *Atom
	Weightfunc func(*Bond) float64
}

// the default weight is 1 per bond, i.e. topological distance
func (B *Bond) Weight() float64 {
	if B.Weightfunc == nil {
		return 1
	}
	return B.Weightfunc(B)
}

func (B *Bond) From() graph.Node {
	return B.At1
}

func (B *Bond) To() graph.Node {
	return B.At2
}

// I'll just switch them in place, as bonds are not directional
// look here if you have issues
func (B *Bond) ReversedEdge() graph.Edge {
	B.At1, B.At2 = B.At2, B.At1
	return B
}

type Bonds []*Bond

func (B Bonds) Len() int {
	return len(B)
}

func (B Bonds) Contains(index int) bool {
	for _, b := range B {
		if b.Index == index {
			return true
		}
	}
	return false
}

// Implements gonum.graph.Nodes
type Atoms struct {
	Atoms []*Atom
	curr  int
}

func NewAtoms(ats []*Atom) *Atoms {
	return &Atoms{Atoms: ats, curr: -1}
}

func (A *Atoms) Len() int {
	if A.curr >= len(A.Atoms) {
		return 0
	}
	if A.curr <= 0 {
		return len(A.Atoms)
	}
	return len(A.Atoms) - A.curr
}

func (A *Atoms) Reset() {
	A.curr = -1
}

func (A *Atoms) Next() bool {
	if A.curr+1 < len(A.Atoms) {
		A.curr++
		return true
	}
	A.curr = len(A.Atoms)
	return false
}

func (A *Atoms) Node() graph.Node {
	if A.curr < 0 || A.curr >= len(A.Atoms) {
		return nil
	}
	return A.Atoms[A.curr]
}

// implements the gonum graph.Undirected and graph.Weighted interfaces
type Topology struct {
	*grow.Topology
	Bonds
	atoms []*Atom
}

func (T *Topology) Node(id int64) graph.Node {
	for _, v := range T.atoms {
		if v.ID() == id {
			return v
		}
	}
	return nil
}

// each call returns a fresh iterator, as gonum traversals restart them
func (T *Topology) Nodes() graph.Nodes {
	if len(T.atoms) == 0 {
		panic("Topology has no atoms")
	}
	return NewAtoms(T.atoms)
}

func (T *Topology) From(id int64) graph.Nodes {
	ret := make([]*Atom, 0)
	for _, b := range T.Bonds {
		//undirected graph, so the neighbor is whichever end id is not
		if b.At1.ID() == id {
			ret = append(ret, b.At2)
		} else if b.At2.ID() == id {
			ret = append(ret, b.At1)
		}
	}
	return NewAtoms(ret)
}

func (T *Topology) HasEdgeBetween(id1, id2 int64) bool {
	return T.bond(id1, id2) != nil
}

func (T *Topology) bond(id1, id2 int64) *Bond {
	for _, b := range T.Bonds {
		if (b.At1.ID() == id1 && b.At2.ID() == id2) || (b.At1.ID() == id2 && b.At2.ID() == id1) {
			return b
		}
	}
	return nil
}

func (T *Topology) Edge(id1, id2 int64) graph.Edge {
	if b := T.bond(id1, id2); b != nil {
		return b
	}
	return nil
}

func (T *Topology) EdgeBetween(id1, id2 int64) graph.Edge {
	return T.Edge(id1, id2)
}

func (T *Topology) WeightedEdge(id1, id2 int64) graph.WeightedEdge {
	if b := T.bond(id1, id2); b != nil {
		return b
	}
	return nil
}

func (T *Topology) Weight(id1, id2 int64) (w float64, ok bool) {
	if id1 == id2 {
		return 0.0, true
	}
	b := T.bond(id1, id2)
	if b == nil {
		return -1, false
	}
	return b.Weight(), true
}

// TopologyFromMol builds the graph of a molecule, sharing its atoms and
// bonds. IDFunc and weightfunc replace the default node IDs (the atom
// indexes) and edge weights (1 per bond) when given.
func TopologyFromMol(mol *grow.Molecule, IDFunc func(*Atom) int64, weightfunc func(*Bond) float64) *Topology {
	mol.FillIndexes()
	a := make([]*Atom, mol.Len())
	for i := 0; i < mol.Len(); i++ {
		a[i] = &Atom{Atom: mol.Atom(i), IDFunc: IDFunc}
	}
	b := make([]*Bond, 0, mol.Len())
	for i := 0; i < mol.Len(); i++ {
		for _, v := range mol.Atom(i).Bonds {
			if v.At1.Index() != i {
				continue //every bond shows up twice, take it from At1 only
			}
			if v.At2.Index() < 0 || v.At2.Index() >= mol.Len() {
				panic(fmt.Sprintf("TopologyFromMol: bond %d has at least one non-existent atom", v.Index))
			}
			nb := &Bond{Bond: v, At1: a[i], At2: a[v.At2.Index()], Weightfunc: weightfunc}
			b = append(b, nb)
			a[i].Bonds = append(a[i].Bonds, nb)
			a[v.At2.Index()].Bonds = append(a[v.At2.Index()].Bonds, nb)
		}
	}
	return &Topology{Topology: mol.Topology, Bonds: Bonds(b), atoms: a}
}

// Components returns the connected components of the graph as lists of
// atom indexes. Each list comes sorted, and the lists are ordered by
// their smallest member.
func Components(T *Topology) [][]int {
	cc := topo.ConnectedComponents(T)
	ret := make([][]int, 0, len(cc))
	for _, comp := range cc {
		idx := make([]int, 0, len(comp))
		for _, n := range comp {
			idx = append(idx, n.(*Atom).Index())
		}
		sort.Ints(idx)
		ret = append(ret, idx)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i][0] < ret[j][0] })
	return ret
}
