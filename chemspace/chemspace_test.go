package chemspace

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	grow "github.com/rmera/gogrow"
	"github.com/rmera/gogrow/ctf"
	"github.com/rmera/gogrow/fraglib"
	"github.com/rmera/gogrow/gnina"
	v3 "github.com/rmera/gogrow/v3"
)

//a methane scaffold with tetrahedral geometry, hydrogens at indexes 1-4
func methane(t *testing.T) *grow.Molecule {
	symbols := []string{"C", "H", "H", "H", "H"}
	ats := make([]*grow.Atom, len(symbols))
	for i, s := range symbols {
		ats[i] = &grow.Atom{Symbol: s, ID: i + 1}
	}
	top := grow.NewTopology(0, 1, ats)
	for i := 1; i < 5; i++ {
		grow.NewBond(ats[0], ats[i], i-1, 1)
	}
	c := v3.Zeros(5)
	d := 0.63 //0.63*sqrt(3) is about the 1.09 A of a C-H bond
	pos := [][3]float64{{0, 0, 0}, {d, d, d}, {-d, -d, d}, {-d, d, -d}, {d, -d, -d}}
	for i, p := range pos {
		c.Set(i, 0, p[0])
		c.Set(i, 1, p[1])
		c.Set(i, 2, p[2])
	}
	mol, err := grow.NewMolecule([]*v3.Matrix{c}, top, nil)
	require.NoError(t, err)
	return mol
}

func rg(t *testing.T, name string) *grow.Fragment {
	f, err := fraglib.RGroup(name)
	require.NoError(t, err)
	return f
}

func lk(t *testing.T, name string) *grow.Fragment {
	f, err := fraglib.Linker(name)
	require.NoError(t, err)
	return f
}

//a one-carbon receptor stand-in at the given position
func carbonAt(t *testing.T, x, y, z float64) *grow.Molecule {
	top := grow.NewTopology(0, 1, []*grow.Atom{{Symbol: "C", ID: 1}})
	c := v3.Zeros(1)
	c.Set(0, 0, x)
	c.Set(0, 1, y)
	c.Set(0, 2, z)
	mol, err := grow.NewMolecule([]*v3.Matrix{c}, top, nil)
	require.NoError(t, err)
	return mol
}

//fakeGen hands back the input geometry plus extra frames shifted 10 A
//further along x each, with made-up energies, worst conformer first.
type fakeGen struct {
	frames int
	calls  int
	failOn map[int]bool //1-based call number
}

func (f *fakeGen) Generate(mol *grow.Molecule, wrkdir string) (*grow.Molecule, []float64, error) {
	f.calls++
	if f.failOn[f.calls] {
		return nil, nil, fmt.Errorf("the fake generator refused")
	}
	ens := mol.Copy()
	base := ens.Coords[0]
	for i := 1; i < f.frames; i++ {
		c := v3.Zeros(base.NVecs())
		c.Copy(base)
		sh := v3.Zeros(1)
		sh.Set(0, 0, 10*float64(i))
		c.AddVec(c, sh)
		if err := ens.AddFrame(c); err != nil {
			return nil, nil, err
		}
	}
	energies := make([]float64, ens.LenFrames())
	for i := range energies {
		energies[i] = float64(len(energies) - i)
	}
	return ens, energies, nil
}

type fakeOpt struct {
	calls  int
	failOn map[int]bool
}

func (f *fakeOpt) Optimize(mol *grow.Molecule, wrkdir string) ([]float64, error) {
	f.calls++
	if f.failOn[f.calls] {
		return nil, fmt.Errorf("the fake optimizer refused")
	}
	energies := make([]float64, mol.LenFrames())
	for i := range energies {
		energies[i] = -12.5 + 0.5*float64(i)
	}
	return energies, nil
}

type fakeScorer struct {
	calls  int
	failOn map[int]bool
}

func (f *fakeScorer) Score(mol *grow.Molecule, wrkdir string) ([]*gnina.Score, error) {
	f.calls++
	if f.failOn[f.calls] {
		return nil, fmt.Errorf("the fake scorer refused")
	}
	return []*gnina.Score{
		{Pose: 0, Affinity: -5.1, CNNScore: 0.62, CNNAffinity: 6.0},
		{Pose: 1, Affinity: -5.8, CNNScore: 0.81, CNNAffinity: 7.2},
	}, nil
}

type fakePart struct {
	calls  int
	failOn map[int]bool
}

func (f *fakePart) LogP(mol *grow.Molecule, wrkdir string) (float64, error) {
	f.calls++
	if f.failOn[f.calls] {
		return 0, fmt.Errorf("the fake partitioner refused")
	}
	return 1.9, nil
}

func TestBuildAll(t *testing.T) {
	sp := NewSpace()
	require.NoError(t, sp.AddScaffold(methane(t), 1))
	sp.AddRGroups(rg(t, "methyl"), rg(t, "hydroxyl"))
	sp.AddLinkers(lk(t, "methylene"), lk(t, "ether"))
	require.NoError(t, sp.BuildAll())
	require.Len(t, sp.Candidates, 4)
	type prov struct {
		RGroup, Linker string
		RI, LI         int
	}
	got := make([]prov, 0, len(sp.Candidates))
	for _, c := range sp.Candidates {
		got = append(got, prov{c.RGroup, c.Linker, c.Mol.RGroupIdx, c.Mol.LinkerIdx})
	}
	want := []prov{
		{"methyl", "methylene", 0, 0},
		{"hydroxyl", "methylene", 1, 0},
		{"methyl", "ether", 0, 1},
		{"hydroxyl", "ether", 1, 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("wrong build order (-want +got):\n%s", diff)
	}
	//methane through CH2 and O bridges: propane, ethanol, dimethyl
	//ether and methyl hydroperoxide
	for i, n := range []int{11, 9, 9, 7} {
		assert.Equal(t, n, sp.Candidates[i].Mol.Len(), "candidate %d", i)
	}
	seen := make(map[string]bool)
	for _, c := range sp.Candidates {
		assert.Len(t, c.ID, 64)
		assert.False(t, seen[c.ID], "duplicated ID %s", c.ID)
		seen[c.ID] = true
		assert.Equal(t, sp.RunID(), c.Run)
		assert.Equal(t, 1, c.Conformers)
		require.NotNil(t, c.Props)
		assert.Greater(t, c.Props.MolWeight, 0.0)
		assert.False(t, c.Missing)
	}
}

func TestBuildAllDirect(t *testing.T) {
	sp := NewSpace()
	sp.SetnCPU(2)
	require.NoError(t, sp.AddScaffold(methane(t), 1))
	sp.AddRGroups(rg(t, "methyl"), rg(t, "hydroxyl"))
	require.NoError(t, sp.BuildAll())
	require.Len(t, sp.Candidates, 2)
	assert.Equal(t, 8, sp.Candidates[0].Mol.Len(), "ethane")
	assert.Equal(t, 6, sp.Candidates[1].Mol.Len(), "methanol")
	assert.Equal(t, -1, sp.Candidates[0].Mol.LinkerIdx)
	assert.Empty(t, sp.Candidates[0].Linker)
}

func TestGraphHash(t *testing.T) {
	mol := methane(t)
	h := GraphHash(mol)
	assert.Len(t, h, 64)
	assert.Equal(t, h, GraphHash(mol.Copy()), "conformers and copies share the ID")
	other := carbonAt(t, 0, 0, 0)
	assert.NotEqual(t, h, GraphHash(other))
}

func TestPipeline(t *testing.T) {
	tmp := t.TempDir()
	sp := NewSpace()
	sp.SetWorkDir(tmp)
	require.NoError(t, sp.AddScaffold(methane(t), 1))
	assert.Equal(t, []int{0, 1, 2, 3}, sp.ScaffoldFrozen())
	sp.AddRGroups(rg(t, "methyl"), rg(t, "hydroxyl"))
	sp.AddReceptor(carbonAt(t, 10, 0, 0), "rec.pdb")
	assert.Equal(t, "rec.pdb", sp.ReceptorFile())
	require.NoError(t, sp.BuildAll())
	require.Len(t, sp.Candidates, 2)

	require.NoError(t, sp.GenerateConformers(&fakeGen{frames: 3}))
	for _, c := range sp.Candidates {
		assert.Equal(t, 3, c.Conformers)
		assert.Equal(t, []float64{3, 2, 1}, c.Energies)
	}
	//the receptor sits right on the second frame of every candidate
	require.NoError(t, sp.RemoveClashing(1.0))
	for _, c := range sp.Candidates {
		assert.Equal(t, 2, c.Conformers)
		assert.Equal(t, []float64{3, 1}, c.Energies)
		assert.False(t, c.Missing)
	}
	require.NoError(t, sp.SortConformers(0))
	for _, c := range sp.Candidates {
		assert.Equal(t, []float64{1, 3}, c.Energies, "most stable conformer first")
	}
	require.NoError(t, sp.Optimize(&fakeOpt{}))
	for _, c := range sp.Candidates {
		require.Len(t, c.Energies, 2)
		assert.InDelta(t, -12.5, c.Energies[0], 1e-10)
	}
	require.NoError(t, sp.ComputeLogP(&fakePart{}))
	for _, c := range sp.Candidates {
		require.NotNil(t, c.LogP)
		assert.InDelta(t, 1.9, *c.LogP, 1e-10)
		require.NotNil(t, c.Lipinski)
		require.NotNil(t, c.Lipinski.LogP, "the rule-of-five report picks the value up")
		assert.True(t, c.Lipinski.Pass)
	}
	require.NoError(t, sp.Score(&fakeScorer{}))
	for _, c := range sp.Candidates {
		require.Len(t, c.Scores, 2)
		best := c.BestScore()
		require.NotNil(t, best)
		assert.InDelta(t, 7.2, best.CNNAffinity, 1e-10)
	}

	repname := filepath.Join(tmp, "report.json")
	require.NoError(t, sp.WriteReport(repname))
	data, err := os.ReadFile(repname)
	require.NoError(t, err)
	var rep Report
	require.NoError(t, json.Unmarshal(data, &rep))
	_, err = uuid.Parse(rep.RunID)
	assert.NoError(t, err, "the run ID is a UUID")
	assert.Equal(t, sp.RunID(), rep.RunID)
	assert.Equal(t, "rec.pdb", rep.Receptor)
	assert.Equal(t, []string{"methyl", "hydroxyl"}, rep.RGroups)
	require.Len(t, rep.Candidates, 2)
	assert.Equal(t, 2, rep.Candidates[0].Conformers)
	require.NotNil(t, rep.Summary)
	assert.Equal(t, 2, rep.Summary.Scored)
	assert.Equal(t, sp.Candidates[0].ID, rep.Summary.BestID)
	assert.InDelta(t, 7.2, rep.Summary.BestCNNAff, 1e-10)
	assert.InDelta(t, 7.2, rep.Summary.MeanCNNAff, 1e-10)
	assert.InDelta(t, 0, rep.Summary.StdCNNAff, 1e-10)

	sdfname := filepath.Join(tmp, "grown.sdf")
	require.NoError(t, sp.WriteSDF(sdfname))
	fi, err := os.Stat(sdfname)
	require.NoError(t, err)
	assert.Greater(t, fi.Size(), int64(0))

	arch := filepath.Join(tmp, "conformers")
	require.NoError(t, sp.ArchiveConformers(arch))
	c := sp.Candidates[0]
	frames, header, err := ctf.ReadAll(filepath.Join(arch, c.ID[:16]+".ctf"))
	require.NoError(t, err)
	assert.Len(t, frames, 2)
	assert.Equal(t, c.Mol.Len(), frames[0].NVecs())
	assert.Equal(t, c.ID, header["id"])
}

func TestStageFailures(t *testing.T) {
	sp := NewSpace()
	sp.SetWorkDir(t.TempDir())
	require.NoError(t, sp.AddScaffold(methane(t), 1))
	sp.AddRGroups(rg(t, "methyl"), rg(t, "hydroxyl"))
	require.NoError(t, sp.BuildAll())

	//a logP failure is not fatal, the candidate just stays without the value
	require.NoError(t, sp.ComputeLogP(&fakePart{failOn: map[int]bool{2: true}}))
	require.NotNil(t, sp.Candidates[0].LogP)
	assert.Nil(t, sp.Candidates[1].LogP)
	assert.False(t, sp.Candidates[1].Missing)

	//one failure flags the candidate but the stage goes on
	err := sp.GenerateConformers(&fakeGen{frames: 2, failOn: map[int]bool{2: true}})
	require.NoError(t, err)
	assert.False(t, sp.Candidates[0].Missing)
	assert.Equal(t, 2, sp.Candidates[0].Conformers)
	require.True(t, sp.Candidates[1].Missing)
	assert.Contains(t, sp.Candidates[1].Note, "refused")

	//later stages skip the tombstone
	opt := &fakeOpt{}
	require.NoError(t, sp.Optimize(opt))
	assert.Equal(t, 1, opt.calls)

	assert.Equal(t, 1, sp.DiscardMissing())
	assert.Len(t, sp.Candidates, 1)
	assert.Len(t, sp.Discarded(), 1)
	rep := sp.Report()
	assert.Len(t, rep.Candidates, 2, "tombstones stay in the report")
	assert.Nil(t, rep.Summary, "nothing scored, nothing to summarize")

	//a stage that fails for everything is an error
	sp2 := NewSpace()
	sp2.SetWorkDir(t.TempDir())
	require.NoError(t, sp2.AddScaffold(methane(t), 1))
	sp2.AddRGroups(rg(t, "methyl"))
	require.NoError(t, sp2.BuildAll())
	err = sp2.ComputeLogP(&fakePart{failOn: map[int]bool{1: true}})
	require.Error(t, err, "every live candidate failing means a broken setup")
	err = sp2.GenerateConformers(&fakeGen{frames: 2, failOn: map[int]bool{1: true}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed for all")
}

func TestSpaceValidation(t *testing.T) {
	sp := NewSpace()
	require.Error(t, sp.BuildAll(), "no scaffold")
	require.Error(t, sp.AddScaffold(methane(t), 99), "no such atom")
	require.NoError(t, sp.AddScaffold(methane(t), 1))
	require.Error(t, sp.BuildAll(), "no R-groups")
	require.Error(t, sp.GenerateConformers(&fakeGen{frames: 1}), "nothing built")
	require.Error(t, sp.RemoveClashing(0), "no receptor")
}
