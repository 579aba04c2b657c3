//Package chemspace drives the growing pipeline: it takes a scaffold, the
//fragments to try and a receptor, builds every product, and pushes the
//survivors through conformer generation, clash pruning, optimization and
//scoring, keeping the records that end up in the report.
package chemspace

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/google/uuid"
	grow "github.com/rmera/gogrow"
	"github.com/rmera/gogrow/clash"
	"github.com/rmera/gogrow/gnina"
	"github.com/rmera/gogrow/props"
)

//Candidate is one product of the combinatorial growth, tracked through the
//pipeline. The names and input positions of the pieces that made it travel
//with it, so a good score can always be traced back.
type Candidate struct {
	ID         string            `json:"id"` //blake3 digest of the bond graph
	Run        string            `json:"-"`  //the run that built it
	RGroup     string            `json:"r_group"`
	Linker     string            `json:"linker,omitempty"`
	Mol        *grow.Built       `json:"-"`
	Props      *props.Properties `json:"properties,omitempty"`
	Lipinski   *props.Lipinski   `json:"lipinski,omitempty"`
	LogP       *float64          `json:"log_p,omitempty"`
	Conformers int               `json:"conformers"`         //frames still alive
	Energies   []float64         `json:"energies,omitempty"` //kcal/mol, one per frame
	Scores     []*gnina.Score    `json:"scores,omitempty"`
	Missing    bool              `json:"missing"`        //nothing left to evaluate
	Note       string            `json:"note,omitempty"` //why, when missing
}

//a candidate that fails a stage stays in the books, flagged
func (C *Candidate) tombstone(why string) {
	C.Missing = true
	C.Note = why
}

//BestScore returns the pose with the highest CNN affinity, or nil for a
//candidate without scores.
func (C *Candidate) BestScore() *gnina.Score {
	var best *gnina.Score
	for _, s := range C.Scores {
		if best == nil || s.CNNAffinity > best.CNNAffinity {
			best = s
		}
	}
	return best
}

//Space is a combinatorial chemical space: one scaffold with one growing
//position, the fragments to put there, and the receptor the products are
//judged against. The zero value is not usable, get one from NewSpace.
type Space struct {
	Candidates []*Candidate
	discarded  []*Candidate
	scaffold   *grow.Molecule
	target     int
	keep       []int
	frozen     int //leading atoms of every product that came from the scaffold
	rgroups    []*grow.Fragment
	linkers    []*grow.Fragment
	receptor   *grow.Molecule
	recfile    string
	runid      string
	wrkdir     string
	ncpu       int
}

//NewSpace returns an empty chemical space with a fresh run ID.
func NewSpace() *Space {
	S := new(Space)
	S.runid = uuid.NewString()
	S.wrkdir = "."
	cpu := runtime.NumCPU() / 2
	if cpu < 1 {
		cpu = 1
	}
	S.ncpu = cpu
	return S
}

//RunID identifies this pipeline run in reports and stored provenance.
func (S *Space) RunID() string {
	return S.runid
}

//SetnCPU sets how many candidates are built concurrently.
func (S *Space) SetnCPU(n int) {
	if n > 0 {
		S.ncpu = n
	}
}

//SetWorkDir sets the directory where the per-candidate scratch directories
//of the external engines are made.
func (S *Space) SetWorkDir(d string) {
	if d != "" {
		S.wrkdir = d
	}
}

//AddScaffold sets the molecule to grow and the index of the atom to
//replace, checking that the position resolves. The optional keep index
//picks the component to retain if removing the atom disconnects the
//scaffold.
func (S *Space) AddScaffold(mol *grow.Molecule, target int, keep ...int) error {
	att, err := grow.ResolveAttachment(mol, target, keep...)
	if err != nil {
		return fmt.Errorf("chemspace: unusable scaffold: %w", err)
	}
	S.scaffold = mol
	S.target = target
	S.keep = keep
	S.frozen = len(att.Kept)
	return nil
}

//AddRGroups appends substituents to try at the growing position.
func (S *Space) AddRGroups(frags ...*grow.Fragment) {
	S.rgroups = append(S.rgroups, frags...)
}

//AddLinkers appends linkers to put between the scaffold and each R-group.
//With no linkers the R-groups bond the scaffold directly.
func (S *Space) AddLinkers(frags ...*grow.Fragment) {
	S.linkers = append(S.linkers, frags...)
}

//AddReceptor sets the receptor the candidates are pruned and scored
//against: the parsed molecule feeds the clash filter, the file name goes to
//the scoring engine.
func (S *Space) AddReceptor(mol *grow.Molecule, pdbname string) {
	S.receptor = mol
	S.recfile = pdbname
}

//ReceptorFile returns the receptor file name given to AddReceptor.
func (S *Space) ReceptorFile() string {
	return S.recfile
}

//ScaffoldFrozen returns the indexes of the atoms every candidate inherits
//from the scaffold. They lead the atom list of each product, so the list
//serves directly as the frozen-atom constraint during conformer generation
//and optimization.
func (S *Space) ScaffoldFrozen() []int {
	ret := make([]int, S.frozen)
	for i := range ret {
		ret[i] = i
	}
	return ret
}

//the builders run concurrently and the merge machinery fills atom indexes
//on its inputs, so every builder gets its own copies
func copyFragment(f *grow.Fragment) *grow.Fragment {
	if f == nil {
		return nil
	}
	nf, err := grow.NewFragment(f.Molecule, f.Name)
	if err != nil {
		//f was a valid fragment already, so this can't really happen
		panic("chemspace: a valid fragment failed to copy: " + err.Error())
	}
	return nf
}

//BuildAll grows the scaffold with every R-group, through every linker if
//any were given, concurrently. The candidates come out in a fixed order,
//linkers in input order on the outside, R-groups in input order on the
//inside, the same order BuildMolecules gives sequentially. Any failed
//combination aborts the whole batch.
func (S *Space) BuildAll() error {
	if S.scaffold == nil {
		return fmt.Errorf("chemspace: no scaffold given")
	}
	if len(S.rgroups) == 0 {
		return fmt.Errorf("chemspace: no R-groups given")
	}
	nr := len(S.rgroups)
	total := nr
	if len(S.linkers) > 0 {
		total *= len(S.linkers)
	}
	cands := make([]*Candidate, total)
	errs := make([]error, total)
	sem := make(chan struct{}, S.ncpu)
	var wg sync.WaitGroup
	build := func(idx, rgIdx, lkIdx int, scaf *grow.Molecule, rg, lk *grow.Fragment) {
		defer wg.Done()
		sem <- struct{}{}
		defer func() { <-sem }()
		b, err := grow.BuildMolecule(scaf, S.target, rg, lk, S.keep...)
		if err != nil {
			errs[idx] = err
			return
		}
		//the single-product call numbers its pieces from its own, one-element
		//lists, so the positions in ours go in by hand
		b.RGroupIdx = rgIdx
		b.LinkerIdx = lkIdx
		c := &Candidate{ID: GraphHash(b.Molecule), Run: S.runid, RGroup: b.RGroup,
			Linker: b.Linker, Mol: b, Conformers: b.LenFrames()}
		if p, err := props.Calc(b.Molecule); err == nil {
			c.Props = p
			c.Lipinski = p.Lipinski()
		} else {
			log.Printf("chemspace: no properties for %s: %v", c.ID[:12], err)
		}
		cands[idx] = c
	}
	if len(S.linkers) == 0 {
		for j, rg := range S.rgroups {
			wg.Add(1)
			go build(j, j, -1, S.scaffold.Copy(), copyFragment(rg), nil)
		}
	} else {
		for i, lk := range S.linkers {
			for j, rg := range S.rgroups {
				wg.Add(1)
				go build(i*nr+j, j, i, S.scaffold.Copy(), copyFragment(rg), copyFragment(lk))
			}
		}
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return fmt.Errorf("chemspace: %w", err)
		}
	}
	S.Candidates = cands
	S.discarded = nil
	return nil
}

//the per-candidate scratch directory for one stage
func (S *Space) stageDir(stage string, c *Candidate) (string, error) {
	d := filepath.Join(S.wrkdir, fmt.Sprintf("%s_%s", stage, c.ID[:12]))
	if err := os.MkdirAll(d, 0755); err != nil {
		return "", fmt.Errorf("chemspace: couldn't make a scratch directory: %w", err)
	}
	return d, nil
}

//a stage that fails for some candidates flags them and moves on; one that
//fails for every candidate it saw is an environment problem
func stageOutcome(stage string, entered, failed int, first error) error {
	if entered > 0 && failed == entered {
		return fmt.Errorf("chemspace: %s failed for all %d candidates, first error: %w", stage, entered, first)
	}
	if failed > 0 {
		log.Printf("chemspace: %s failed for %d of %d candidates, they were flagged as missing", stage, failed, entered)
	}
	return nil
}

//the energies follow their frames through a filter
func pickFloats(vals []float64, kept []int) []float64 {
	if vals == nil {
		return nil
	}
	ret := make([]float64, 0, len(kept))
	for _, k := range kept {
		ret = append(ret, vals[k])
	}
	return ret
}

//GenerateConformers runs the generator on every live candidate, replacing
//its starting geometry with the ensemble and recording the conformer
//energies. A candidate whose generation fails is flagged as missing; the
//stage itself fails only when no candidate gets conformers.
func (S *Space) GenerateConformers(g ConformerGenerator) error {
	if len(S.Candidates) == 0 {
		return fmt.Errorf("chemspace: nothing built to generate conformers for")
	}
	var entered, failed int
	var first error
	for _, c := range S.Candidates {
		if c.Missing {
			continue
		}
		entered++
		dir, err := S.stageDir("confs", c)
		if err != nil {
			return err
		}
		ens, energies, err := g.Generate(c.Mol.Molecule, dir)
		if err == nil && (ens == nil || ens.LenFrames() == 0) {
			err = fmt.Errorf("the generator returned no conformers")
		}
		if err == nil && ens.Len() != c.Mol.Len() {
			err = fmt.Errorf("the generator returned %d atoms for a %d-atom candidate", ens.Len(), c.Mol.Len())
		}
		if err == nil && len(energies) != ens.LenFrames() {
			err = fmt.Errorf("the generator returned %d energies for %d conformers", len(energies), ens.LenFrames())
		}
		if err != nil {
			c.tombstone(err.Error())
			failed++
			if first == nil {
				first = err
			}
			continue
		}
		c.Mol.Coords = ens.Coords
		c.Energies = energies
		c.Conformers = ens.LenFrames()
	}
	return stageOutcome("conformer generation", entered, failed, first)
}

//RemoveClashing drops every conformer that brings a heavy atom closer than
//cutoff (in A, 0 or less means the clash package default) to a receptor
//heavy atom. Candidates left without conformers are flagged as missing.
func (S *Space) RemoveClashing(cutoff float64) error {
	if S.receptor == nil {
		return fmt.Errorf("chemspace: no receptor to clash against")
	}
	for _, c := range S.Candidates {
		if c.Missing {
			continue
		}
		kept := clash.KeptFrames(c.Mol.Molecule, S.receptor, cutoff)
		if len(kept) == 0 {
			c.tombstone("every conformer clashes with the receptor")
			c.Conformers = 0
			continue
		}
		if len(kept) < c.Mol.LenFrames() {
			if err := c.Mol.KeepFrames(kept); err != nil {
				return fmt.Errorf("chemspace: %w", err)
			}
			c.Energies = pickFloats(c.Energies, kept)
		}
		c.Conformers = len(kept)
	}
	return nil
}

//SortConformers orders the frames of every live candidate by energy, most
//stable first, and drops the frames more than window kcal/mol above the
//best one. A window of 0 or less just sorts. Candidates without energies
//are left alone.
func (S *Space) SortConformers(window float64) error {
	for _, c := range S.Candidates {
		if c.Missing || c.Energies == nil {
			continue
		}
		var err error
		if window > 0 {
			c.Energies, err = grow.EnergyWindow(c.Mol.Molecule, c.Energies, window)
		} else {
			c.Energies, err = grow.SortFramesByEnergy(c.Mol.Molecule, c.Energies)
		}
		if err != nil {
			return fmt.Errorf("chemspace: %w", err)
		}
		c.Conformers = c.Mol.LenFrames()
	}
	return nil
}

//Optimize relaxes the conformers of every live candidate in place and
//refreshes their energies. A candidate whose optimization fails is flagged
//as missing.
func (S *Space) Optimize(o Optimizer) error {
	var entered, failed int
	var first error
	for _, c := range S.Candidates {
		if c.Missing {
			continue
		}
		entered++
		dir, err := S.stageDir("opt", c)
		if err != nil {
			return err
		}
		energies, err := o.Optimize(c.Mol.Molecule, dir)
		if err == nil && len(energies) != c.Mol.LenFrames() {
			err = fmt.Errorf("the optimizer returned %d energies for %d frames", len(energies), c.Mol.LenFrames())
		}
		if err != nil {
			c.tombstone(err.Error())
			failed++
			if first == nil {
				first = err
			}
			continue
		}
		c.Energies = energies
	}
	return stageOutcome("optimization", entered, failed, first)
}

//ComputeLogP estimates the partition coefficient of every live candidate
//from its most stable conformer, completing the rule-of-five report where
//there is one. A failure here doesn't kill a candidate, as nothing
//downstream needs the value; the candidate just stays without it.
func (S *Space) ComputeLogP(p Partitioner) error {
	var entered, failed int
	var first error
	for _, c := range S.Candidates {
		if c.Missing || c.Mol.LenFrames() == 0 {
			continue
		}
		entered++
		dir, err := S.stageDir("logp", c)
		if err != nil {
			return err
		}
		v, err := p.LogP(c.Mol.Molecule, dir)
		if err != nil {
			log.Printf("chemspace: no logP for %s: %v", c.ID[:12], err)
			failed++
			if first == nil {
				first = err
			}
			continue
		}
		c.LogP = &v
		if c.Lipinski != nil {
			c.Lipinski.AddLogP(v)
		}
	}
	if entered > 0 && failed == entered {
		return fmt.Errorf("chemspace: logP failed for all %d candidates, first error: %w", entered, first)
	}
	return nil
}

//Score runs the scorer on every live candidate, keeping one score per
//surviving pose. A candidate whose scoring fails is flagged as missing.
func (S *Space) Score(sc Scorer) error {
	var entered, failed int
	var first error
	for _, c := range S.Candidates {
		if c.Missing {
			continue
		}
		entered++
		dir, err := S.stageDir("score", c)
		if err != nil {
			return err
		}
		scores, err := sc.Score(c.Mol.Molecule, dir)
		if err == nil && len(scores) == 0 {
			err = fmt.Errorf("the scorer returned no scores")
		}
		if err != nil {
			c.tombstone(err.Error())
			failed++
			if first == nil {
				first = err
			}
			continue
		}
		c.Scores = scores
	}
	return stageOutcome("scoring", entered, failed, first)
}

//DiscardMissing removes the candidates flagged as missing from the working
//set and returns how many went. The removed candidates still show up in
//the report, as tombstone rows.
func (S *Space) DiscardMissing() int {
	keep := make([]*Candidate, 0, len(S.Candidates))
	for _, c := range S.Candidates {
		if c.Missing {
			S.discarded = append(S.discarded, c)
		} else {
			keep = append(keep, c)
		}
	}
	n := len(S.Candidates) - len(keep)
	S.Candidates = keep
	return n
}

//Discarded returns the candidates dropped by DiscardMissing so far.
func (S *Space) Discarded() []*Candidate {
	return S.discarded
}
