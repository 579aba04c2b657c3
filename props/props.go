//Package props computes simple structural descriptors of a molecule from
//its bond graph: weight, hydrogen-bond donors and acceptors, rotatable
//bonds, ring count and an approximate topological polar surface area. The
//numbers feed the drug-likeness report and the featurization used to rank
//candidates.
package props

import (
	"fmt"

	grow "github.com/rmera/gogrow"
	"github.com/rmera/gogrow/chemgraph"
)

//Properties collects the descriptors for one molecule. Wildcard atoms,
//if present, are left out of every count.
type Properties struct {
	MolWeight      float64 `json:"mol_weight"`
	HeavyAtoms     int     `json:"heavy_atoms"`
	HBondDonors    int     `json:"h_bond_donors"`
	HBondAcceptors int     `json:"h_bond_acceptors"`
	RotatableBonds int     `json:"rotatable_bonds"`
	Rings          int     `json:"rings"`
	TPSA           float64 `json:"tpsa"`
}

//Lipinski is a rule-of-five report. No partition coefficient is computed
//here, so until AddLogP supplies one, only the weight, donor and acceptor
//rules are checked and Pass means no violation among those three.
type Lipinski struct {
	MolWeight      float64  `json:"mol_weight"`
	HBondDonors    int      `json:"h_bond_donors"`
	HBondAcceptors int      `json:"h_bond_acceptors"`
	LogP           *float64 `json:"log_p,omitempty"`
	Violations     int      `json:"violations"`
	Pass           bool     `json:"pass"`
}

//Calc returns the descriptors for mol. Bonds must be present (read from an
//SDF or assigned from the geometry) or rotatable bonds, rings and TPSA will
//all come out zero.
func Calc(mol *grow.Molecule) (*Properties, error) {
	if mol == nil || mol.Len() == 0 {
		return nil, fmt.Errorf("props: nil or empty molecule")
	}
	mol.FillIndexes()
	P := new(Properties)
	masses, err := mol.Masses()
	if err != nil {
		return nil, err
	}
	for _, v := range masses {
		P.MolWeight += v
	}
	P.HeavyAtoms = len(grow.HeavyIndexes(mol))
	bonds := 0
	for i := 0; i < mol.Len(); i++ {
		at := mol.Atom(i)
		if at.IsWildcard() {
			continue
		}
		switch at.Symbol {
		case "N", "O":
			P.HBondAcceptors++
			if countH(at) > 0 {
				P.HBondDonors++
			}
		}
		P.TPSA += tpsaContrib(at)
		for _, b := range at.Bonds {
			if b.At1.Index() != i {
				continue //every bond shows up twice, take it from At1 only
			}
			bonds++
			if rotatable(b) {
				P.RotatableBonds++
			}
		}
	}
	//the number of rings is the cycle rank of the graph
	comps := chemgraph.Components(chemgraph.TopologyFromMol(mol, nil, nil))
	P.Rings = bonds - mol.Len() + len(comps)
	return P, nil
}

//Lipinski condenses the properties into a rule-of-five report
//(MW<=500, donors<=5, acceptors<=10).
func (P *Properties) Lipinski() *Lipinski {
	L := &Lipinski{MolWeight: P.MolWeight, HBondDonors: P.HBondDonors, HBondAcceptors: P.HBondAcceptors}
	if L.MolWeight > 500 {
		L.Violations++
	}
	if L.HBondDonors > 5 {
		L.Violations++
	}
	if L.HBondAcceptors > 10 {
		L.Violations++
	}
	L.Pass = L.Violations == 0
	return L
}

//AddLogP completes the report with a partition coefficient, checking the
//remaining rule (logP<=5) and updating the verdict.
func (L *Lipinski) AddLogP(logp float64) {
	L.LogP = &logp
	if logp > 5 {
		L.Violations++
	}
	L.Pass = L.Violations == 0
}

func countH(at *grow.Atom) int {
	h := 0
	for _, b := range at.Bonds {
		if b.Cross(at).Symbol == "H" {
			h++
		}
	}
	return h
}

func heavyDegree(at *grow.Atom) int {
	d := 0
	for _, b := range at.Bonds {
		n := b.Cross(at)
		if n.Symbol != "H" && !n.IsWildcard() {
			d++
		}
	}
	return d
}

func hasOrder(at *grow.Atom, order float64) bool {
	for _, b := range at.Bonds {
		if b.Order == order {
			return true
		}
	}
	return false
}

//a rotatable bond is a single, non-ring bond between two non-terminal
//heavy atoms, leaving out amide C-N bonds, which are planar.
func rotatable(b *grow.Bond) bool {
	if b.Order != 1 {
		return false
	}
	for _, at := range []*grow.Atom{b.At1, b.At2} {
		if at.Symbol == "H" || at.IsWildcard() || heavyDegree(at) < 2 {
			return false
		}
	}
	if amide(b) || grow.InRing(b) {
		return false
	}
	return true
}

func amide(b *grow.Bond) bool {
	var c *grow.Atom
	switch {
	case b.At1.Symbol == "C" && b.At2.Symbol == "N":
		c = b.At1
	case b.At1.Symbol == "N" && b.At2.Symbol == "C":
		c = b.At2
	default:
		return false
	}
	for _, v := range c.Bonds {
		if v.Order == 2 && v.Cross(c).Symbol == "O" {
			return true
		}
	}
	return false
}

//tpsaContrib gives the polar surface contribution of one atom, after the
//fragment values of Ertl, Rohde and Selzer (J Med Chem 43:3714), reduced
//to the classes the bond graph distinguishes. Aromaticity here just means
//a bond of order 1.5 on the atom.
func tpsaContrib(at *grow.Atom) float64 {
	arom := hasOrder(at, 1.5)
	double := hasOrder(at, 2)
	nH := countH(at)
	switch at.Symbol {
	case "O":
		switch {
		case at.Charge < 0:
			return 23.06
		case nH > 0:
			return 20.23
		case arom:
			return 13.14
		case double:
			return 17.07
		default:
			return 9.23
		}
	case "N":
		if at.Charge > 0 {
			switch nH {
			case 0:
				if double {
					return 11.68 //nitro and friends
				}
				return 0.0
			case 1:
				return 4.44
			case 2:
				return 16.61
			default:
				return 27.64
			}
		}
		switch {
		case arom && nH > 0:
			return 15.79
		case arom:
			return 12.89
		case hasOrder(at, 3):
			return 23.79
		case double && nH == 1:
			return 23.85
		case double:
			return 12.36
		case nH == 1:
			return 12.03
		case nH >= 2:
			return 26.02
		default:
			return 3.24
		}
	case "S":
		switch {
		case nH > 0:
			return 38.80
		case double:
			return 32.09
		case arom:
			return 28.24
		default:
			return 25.30
		}
	case "P":
		if double {
			return 9.81
		}
		return 13.59
	}
	return 0
}
