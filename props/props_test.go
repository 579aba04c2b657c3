package props

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	grow "github.com/rmera/gogrow"
	v3 "github.com/rmera/gogrow/v3"
)

type tb struct {
	i, j int
	o    float64
}

func mkmol(t *testing.T, symbols []string, bonds []tb) *grow.Molecule {
	ats := make([]*grow.Atom, len(symbols))
	for i, s := range symbols {
		ats[i] = &grow.Atom{Symbol: s, ID: i + 1}
	}
	top := grow.NewTopology(0, 1, ats)
	for n, b := range bonds {
		grow.NewBond(ats[b.i], ats[b.j], n, b.o)
	}
	mol, err := grow.NewMolecule([]*v3.Matrix{v3.Zeros(len(ats))}, top, nil)
	require.NoError(t, err)
	return mol
}

func hydrogens(n int) []string {
	h := make([]string, n)
	for i := range h {
		h[i] = "H"
	}
	return h
}

func TestButanol(t *testing.T) {
	symbols := append([]string{"C", "C", "C", "C", "O"}, hydrogens(10)...)
	bonds := []tb{{0, 1, 1}, {1, 2, 1}, {2, 3, 1}, {3, 4, 1},
		{0, 5, 1}, {0, 6, 1}, {0, 7, 1}, {1, 8, 1}, {1, 9, 1},
		{2, 10, 1}, {2, 11, 1}, {3, 12, 1}, {3, 13, 1}, {4, 14, 1}}
	P, err := Calc(mkmol(t, symbols, bonds))
	require.NoError(t, err)
	assert.InDelta(t, 74.04, P.MolWeight, 1e-10)
	assert.Equal(t, 5, P.HeavyAtoms)
	assert.Equal(t, 1, P.HBondDonors)
	assert.Equal(t, 1, P.HBondAcceptors)
	assert.Equal(t, 2, P.RotatableBonds, "only the two inner C-C bonds rotate")
	assert.Equal(t, 0, P.Rings)
	assert.InDelta(t, 20.23, P.TPSA, 1e-10)
	L := P.Lipinski()
	assert.True(t, L.Pass)
	assert.Equal(t, 0, L.Violations)
}

func TestAmide(t *testing.T) {
	//N-ethylpropanamide: the C-N amide bond must not count as rotatable
	symbols := append([]string{"C", "C", "C", "O", "N", "C", "C"}, hydrogens(11)...)
	bonds := []tb{{0, 1, 1}, {1, 2, 1}, {2, 3, 2}, {2, 4, 1}, {4, 5, 1}, {5, 6, 1},
		{0, 7, 1}, {0, 8, 1}, {0, 9, 1}, {1, 10, 1}, {1, 11, 1}, {4, 12, 1},
		{5, 13, 1}, {5, 14, 1}, {6, 15, 1}, {6, 16, 1}, {6, 17, 1}}
	P, err := Calc(mkmol(t, symbols, bonds))
	require.NoError(t, err)
	assert.InDelta(t, 101.06, P.MolWeight, 1e-10)
	assert.Equal(t, 7, P.HeavyAtoms)
	assert.Equal(t, 1, P.HBondDonors)
	assert.Equal(t, 2, P.HBondAcceptors)
	assert.Equal(t, 2, P.RotatableBonds)
	assert.Equal(t, 0, P.Rings)
	assert.InDelta(t, 29.10, P.TPSA, 1e-10)
}

func TestNitrobenzene(t *testing.T) {
	symbols := append([]string{"C", "C", "C", "C", "C", "C", "N", "O", "O"}, hydrogens(5)...)
	bonds := []tb{{0, 1, 1.5}, {1, 2, 1.5}, {2, 3, 1.5}, {3, 4, 1.5}, {4, 5, 1.5}, {5, 0, 1.5},
		{0, 6, 1}, {6, 7, 2}, {6, 8, 1},
		{1, 9, 1}, {2, 10, 1}, {3, 11, 1}, {4, 12, 1}, {5, 13, 1}}
	mol := mkmol(t, symbols, bonds)
	mol.Atom(6).Charge = 1
	mol.Atom(8).Charge = -1
	P, err := Calc(mol)
	require.NoError(t, err)
	assert.InDelta(t, 123.07, P.MolWeight, 1e-10)
	assert.Equal(t, 9, P.HeavyAtoms)
	assert.Equal(t, 0, P.HBondDonors)
	assert.Equal(t, 3, P.HBondAcceptors)
	assert.Equal(t, 1, P.RotatableBonds, "the ring-nitro bond")
	assert.Equal(t, 1, P.Rings)
	assert.InDelta(t, 11.68+17.07+23.06, P.TPSA, 1e-10)
}

func TestLipinskiViolations(t *testing.T) {
	P := &Properties{MolWeight: 612.7, HBondDonors: 6, HBondAcceptors: 11}
	L := P.Lipinski()
	assert.Equal(t, 3, L.Violations)
	assert.False(t, L.Pass)
}

func TestLipinskiLogP(t *testing.T) {
	P := &Properties{MolWeight: 320.1, HBondDonors: 1, HBondAcceptors: 4}
	L := P.Lipinski()
	require.True(t, L.Pass)
	L.AddLogP(2.3)
	assert.True(t, L.Pass)
	assert.Equal(t, 0, L.Violations)
	L = P.Lipinski()
	L.AddLogP(6.8)
	assert.False(t, L.Pass)
	assert.Equal(t, 1, L.Violations)
}

func TestCalcBadInput(t *testing.T) {
	_, err := Calc(nil)
	assert.Error(t, err)
}
