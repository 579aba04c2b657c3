/*
 * atoms.go, part of gogrow.
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

	v3 "github.com/rmera/gogrow/v3"
)

//Atom contains the atoms read except for the coordinates, which are in a
//separate matrix (m.Coords in a Molecule), and the b-factors, which are in a
//separate slice of float64.
type Atom struct {
	Name      string //PDB name of the atom
	ID        int    //The PDB or SDF serial, 1-based
	index     int    //The place of the atom in the molecule, 0-based
	Tag       int    //Just added this for something that someone might want to keep that is not a float.
	MolName   string //PDB name of the residue or molecule
	MolID     int    //PDB index of the corresponding residue or molecule
	Chain     string //One-letter PDB name of the chain
	Mass      float64
	Occupancy float64
	Vdw       float64
	Charge    float64 //Partial charge
	Symbol    string  //Element symbol, or "*" for an open attachment point
	Het       bool    //is the atom an hetatm in the pdb file?
	Bfactor   float64
	Wildcard  int //0 for a real atom. An open attachment point carries 1
	//(joins the scaffold when merging) or 2 (stays open, to be grown further).
	Bonds []*Bond //The bonds connecting the atom to others
}

//Atom methods

//Copy copies the scalar data of atom B into the receiver. The bonds are not
//copied: the receiver keeps its own, as copied atoms normally get rewired
//into a new molecule.
func (A *Atom) Copy(B *Atom) {
	if B == nil {
		panic(ErrNilAtoms)
	}
	bonds := A.Bonds
	*A = *B
	A.Bonds = bonds
}

//Index returns the place of the atom in the molecule, 0-based.
func (A *Atom) Index() int {
	return A.index
}

//SetIndex sets the place of the atom in the molecule to i.
func (A *Atom) SetIndex(i int) {
	A.index = i
}

//IsWildcard returns whether the atom is not a real atom but an open
//attachment point.
func (A *Atom) IsWildcard() bool {
	return A.Wildcard > 0
}

//Valence returns the sum of the orders of the bonds of the atom. Bonds of
//undetermined order (order 0) count as single bonds.
func (A *Atom) Valence() float64 {
	var v float64
	for _, b := range A.Bonds {
		if b.Order < 1 {
			v++
		} else {
			v += b.Order
		}
	}
	return v
}

//Topology contains information about a molecule which is not expected to
//change in time, i.e. everything except for coordinates and b-factors.
type Topology struct {
	Atoms  []*Atom
	charge int
	multi  int
}

//NewTopology returns a topology with the given total charge, multiplicity
//(unpaired electrons + 1) and atoms. The atom indexes are filled.
func NewTopology(charge, multi int, ats []*Atom) *Topology {
	if ats == nil {
		ats = make([]*Atom, 0, 10)
	}
	T := &Topology{Atoms: ats, charge: charge, multi: multi}
	T.FillIndexes()
	return T
}

//Charge gets the total charge of the topology.
func (T *Topology) Charge() int {
	return T.charge
}

//Multi gets the multiplicity of the topology.
func (T *Topology) Multi() int {
	return T.multi
}

//SetCharge sets the total charge of the topology to i.
func (T *Topology) SetCharge(i int) {
	T.charge = i
}

//SetMulti sets the multiplicity of the topology to i.
func (T *Topology) SetMulti(i int) {
	T.multi = i
}

//Len returns the number of atoms in the topology.
func (T *Topology) Len() int {
	return len(T.Atoms)
}

//Atom returns the Atom corresponding to the index i of the Atom slice in the
//Topology. Panics if out of range.
func (T *Topology) Atom(i int) *Atom {
	if i >= T.Len() || i < 0 {
		panic(ErrAtomOutOfRange)
	}
	return T.Atoms[i]
}

//AddAtom appends an atom at the end of the topology and gives it the
//corresponding index.
func (T *Topology) AddAtom(at *Atom) {
	at.SetIndex(len(T.Atoms))
	T.Atoms = append(T.Atoms, at)
}

//FillIndexes sets the index of each atom in the topology to its current
//position in the atom slice.
func (T *Topology) FillIndexes() {
	for i, v := range T.Atoms {
		v.SetIndex(i)
	}
}

//FillMasses assigns masses to all atoms from their element symbols. It returns
//an error if any atom has an unknown element, but still assigns masses to all
//atoms it can.
func (T *Topology) FillMasses() error {
	unknown := make([]string, 0, 2)
	for _, v := range T.Atoms {
		if m, ok := symbolMass[v.Symbol]; ok {
			v.Mass = m
		} else if !v.IsWildcard() {
			unknown = append(unknown, v.Symbol)
		}
	}
	if len(unknown) > 0 {
		return &CError{fmt.Sprintf("Couldn't find the mass for symbols: %v", unknown), []string{"FillMasses"}}
	}
	return nil
}

//FillVdw assigns van der Waals radii to all atoms from their element symbols.
//It returns an error if any atom has an unknown element, but still assigns
//radii to all atoms it can.
func (T *Topology) FillVdw() error {
	unknown := make([]string, 0, 2)
	for _, v := range T.Atoms {
		if r, ok := symbolVdwrad[v.Symbol]; ok {
			v.Vdw = r
		} else if !v.IsWildcard() {
			unknown = append(unknown, v.Symbol)
		}
	}
	if len(unknown) > 0 {
		return &CError{fmt.Sprintf("Couldn't find the van der Waals radius for symbols: %v", unknown), []string{"FillVdw"}}
	}
	return nil
}

//Masses returns a slice with the masses of all atoms in the topology.
func (T *Topology) Masses() ([]float64, error) {
	if err := T.FillMasses(); err != nil {
		return nil, errDecorate(err, "Masses")
	}
	masses := make([]float64, T.Len())
	for i, v := range T.Atoms {
		masses[i] = v.Mass
	}
	return masses, nil
}

//SomeAtoms returns a new topology with the atoms at the positions given in
//atomlist, in that order. The returned topology shares the atoms with T, so
//changes to them affect the original. The charge and multiplicity are just
//those of T, and are not guaranteed to be correct for the subset.
func (T *Topology) SomeAtoms(atomlist []int) (*Topology, error) {
	ats := make([]*Atom, 0, len(atomlist))
	for _, v := range atomlist {
		if v < 0 || v >= T.Len() {
			return nil, &InvalidIndexError{Index: v, N: T.Len()}
		}
		ats = append(ats, T.Atoms[v])
	}
	return &Topology{Atoms: ats, charge: T.charge, multi: T.multi}, nil
}

//Copy returns a deep copy of the topology: new atoms, and new bonds rewired
//to the new atoms.
func (T *Topology) Copy() *Topology {
	T.FillIndexes()
	ats := make([]*Atom, T.Len())
	for i, v := range T.Atoms {
		w := new(Atom)
		w.Copy(v)
		w.Bonds = nil
		ats[i] = w
	}
	ret := NewTopology(T.charge, T.multi, ats)
	for _, v := range T.Atoms {
		for _, b := range v.Bonds {
			if b.At1.Index() != v.Index() {
				continue //we take each bond only once, from its first atom
			}
			nb := &Bond{Index: b.Index, Dist: b.Dist, Order: b.Order}
			nb.At1 = ats[b.At1.Index()]
			nb.At2 = ats[b.At2.Index()]
			nb.At1.Bonds = append(nb.At1.Bonds, nb)
			nb.At2.Bonds = append(nb.At2.Bonds, nb)
		}
	}
	return ret
}

//Molecule contains all the info for a molecule in many states. The info that
//is expected to change between states, i.e. coordinates and b-factors, is
//stored separately from the rest. The set of coordinate frames of a Molecule
//doubles as its set of conformers.
type Molecule struct {
	*Topology
	Coords   []*v3.Matrix
	Bfactors [][]float64
}

//NewMolecule makes a molecule with the given coordinates, topology and
//b-factors. bfactors can be nil. It checks that the number of coordinates
//in each frame matches the number of atoms.
func NewMolecule(coords []*v3.Matrix, top *Topology, bfactors [][]float64) (*Molecule, error) {
	if top == nil {
		return nil, &CError{"gogrow: nil topology given", []string{"NewMolecule"}}
	}
	M := &Molecule{Topology: top, Coords: coords, Bfactors: bfactors}
	if err := M.Corrupted(); err != nil {
		return nil, errDecorate(err, "NewMolecule")
	}
	return M, nil
}

//Copy returns a deep copy of the molecule, including coordinates.
func (M *Molecule) Copy() *Molecule {
	top := M.Topology.Copy()
	coords := make([]*v3.Matrix, 0, len(M.Coords))
	for _, v := range M.Coords {
		c := v3.Zeros(v.NVecs())
		c.Copy(v)
		coords = append(coords, c)
	}
	var bfacs [][]float64
	if M.Bfactors != nil {
		bfacs = make([][]float64, 0, len(M.Bfactors))
		for _, v := range M.Bfactors {
			b := make([]float64, len(v))
			copy(b, v)
			bfacs = append(bfacs, b)
		}
	}
	ret, _ := NewMolecule(coords, top, bfacs) //M was consistent, so ret is.
	return ret
}

//AddFrame takes a matrix of coordinates and appends it at the end of Coords.
//It returns an error if the number of coordinates does not match the number
//of atoms.
func (M *Molecule) AddFrame(newframe *v3.Matrix) error {
	if newframe == nil {
		return &CError{"gogrow: nil frame given", []string{"AddFrame"}}
	}
	if M.Len() != newframe.NVecs() {
		return &CError{fmt.Sprintf("gogrow: frame has %d coordinates for %d atoms", newframe.NVecs(), M.Len()), []string{"AddFrame"}}
	}
	M.Coords = append(M.Coords, newframe)
	return nil
}

//LenFrames returns the number of frames in the molecule.
func (M *Molecule) LenFrames() int {
	return len(M.Coords)
}

//Coord returns a view of the coordinates for the atom atom in the frame
//frame. Panics if out of range.
func (M *Molecule) Coord(atom, frame int) *v3.Matrix {
	if frame >= M.LenFrames() || frame < 0 {
		panic(ErrFrameOutOfRange)
	}
	if atom >= M.Len() || atom < 0 {
		panic(ErrAtomOutOfRange)
	}
	return M.Coords[frame].VecView(atom)
}

//DelFrame deletes the frame i (and its b-factors, if present) from the
//molecule. Panics if out of range.
func (M *Molecule) DelFrame(i int) {
	if i >= M.LenFrames() || i < 0 {
		panic(ErrFrameOutOfRange)
	}
	M.Coords = append(M.Coords[:i], M.Coords[i+1:]...)
	if M.Bfactors != nil && len(M.Bfactors) > i {
		M.Bfactors = append(M.Bfactors[:i], M.Bfactors[i+1:]...)
	}
}

//KeepFrames reduces the molecule to the frames at the positions given in
//list, in that order. It returns an error if any position is out of range.
func (M *Molecule) KeepFrames(list []int) error {
	coords := make([]*v3.Matrix, 0, len(list))
	var bfacs [][]float64
	if M.Bfactors != nil {
		bfacs = make([][]float64, 0, len(list))
	}
	for _, v := range list {
		if v < 0 || v >= M.LenFrames() {
			return &CError{fmt.Sprintf("gogrow: frame %d does not exist in a %d-frame molecule", v, M.LenFrames()), []string{"KeepFrames"}}
		}
		coords = append(coords, M.Coords[v])
		if bfacs != nil && len(M.Bfactors) > v {
			bfacs = append(bfacs, M.Bfactors[v])
		}
	}
	M.Coords = coords
	M.Bfactors = bfacs
	return nil
}

//Corrupted checks whether the molecule is corrupted, i.e. the coordinates
//don't match the number of atoms, or a frame doesn't have 3 columns.
func (M *Molecule) Corrupted() error {
	for i, v := range M.Coords {
		r, c := v.Dims()
		if r != M.Len() || c != 3 {
			return &CError{fmt.Sprintf("gogrow: frame %d has %dx%d coordinates for %d atoms", i, r, c, M.Len()), []string{"Corrupted"}}
		}
	}
	if M.Bfactors != nil {
		for i, v := range M.Bfactors {
			if len(v) > 0 && len(v) != M.Len() {
				return &CError{fmt.Sprintf("gogrow: frame %d has %d b-factors for %d atoms", i, len(v), M.Len()), []string{"Corrupted"}}
			}
		}
	}
	return nil
}
