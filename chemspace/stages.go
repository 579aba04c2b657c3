package chemspace

import (
	"fmt"
	"path/filepath"

	grow "github.com/rmera/gogrow"
	"github.com/rmera/gogrow/gnina"
	"github.com/rmera/gogrow/qm"
)

//The stages of the pipeline are pluggable, so a cheap fake can stand in for
//an external engine in tests, and another engine can replace CREST, xtb or
//gnina without touching the drivers.

//A ConformerGenerator produces the conformer ensemble of a candidate.
type ConformerGenerator interface {
	//Generate returns a molecule with one frame per conformer of mol, in
	//the same atom order, plus the energy of each conformer in kcal/mol.
	//wrkdir is a scratch directory reserved for this candidate.
	Generate(mol *grow.Molecule, wrkdir string) (*grow.Molecule, []float64, error)
}

//An Optimizer relaxes the conformers of a candidate, typically inside a
//rigid receptor pocket.
type Optimizer interface {
	//Optimize relaxes every frame of mol in place and returns the final
	//energy of each frame, in kcal/mol.
	Optimize(mol *grow.Molecule, wrkdir string) ([]float64, error)
}

//A Scorer evaluates every frame of a candidate as a binding pose.
type Scorer interface {
	Score(mol *grow.Molecule, wrkdir string) ([]*gnina.Score, error)
}

//A Partitioner estimates the water/octanol partition coefficient of a
//candidate from its first frame.
type Partitioner interface {
	LogP(mol *grow.Molecule, wrkdir string) (float64, error)
}

//CrestGenerator generates conformers with an external CREST run. The zero
//value is usable: GFN-FF, the crest binary from PATH, and the CREST
//defaults for the energy and RMSD windows.
type CrestGenerator struct {
	Calc      *qm.Calc //nil means GFN-FF
	Command   string
	NCPU      int
	EThres    float64 //kcal/mol over the most stable conformer
	RMSDThres float64 //A, conformers closer than this are the same
}

func (G *CrestGenerator) Generate(mol *grow.Molecule, wrkdir string) (*grow.Molecule, []float64, error) {
	run := qm.NewCrestHandle()
	run.SetWorkDir(wrkdir)
	run.SetName("confs")
	if G.Command != "" {
		run.SetCommand(G.Command)
	}
	if G.NCPU > 0 {
		run.SetnCPU(G.NCPU)
	}
	run.EThres = G.EThres
	run.RMSDThres = G.RMSDThres
	calc := G.Calc
	if calc == nil {
		calc = &qm.Calc{Method: "gfnff"}
	}
	if err := run.BuildInput(mol.Coords[0], mol, calc); err != nil {
		return nil, nil, err
	}
	if err := run.Run(true); err != nil {
		return nil, nil, err
	}
	ens, err := run.Conformers()
	if err != nil {
		return nil, nil, err
	}
	energies, err := run.ConformerEnergies()
	if err != nil {
		return nil, nil, err
	}
	return ens, energies, nil
}

//XTBOptimizer relaxes conformers with one external xtb run per frame. The
//frames of one candidate go sequentially: xtb parallelizes internally, and
//it reuses file names, so concurrent runs in one directory would fight.
type XTBOptimizer struct {
	Calc    *qm.Calc //nil means a plain GFN2 optimization
	Command string
	NCPU    int
}

func (G *XTBOptimizer) Optimize(mol *grow.Molecule, wrkdir string) ([]float64, error) {
	var calc qm.Calc
	if G.Calc != nil {
		calc = *G.Calc
	} else {
		calc.Method = "gfn2"
	}
	calc.Optimize = true
	energies := make([]float64, 0, mol.LenFrames())
	for fr := 0; fr < mol.LenFrames(); fr++ {
		run := qm.NewXTBHandle()
		run.SetWorkDir(wrkdir)
		run.SetName(fmt.Sprintf("opt%03d", fr))
		if G.Command != "" {
			run.SetCommand(G.Command)
		}
		if G.NCPU > 0 {
			run.SetnCPU(G.NCPU)
		}
		if err := run.BuildInput(mol.Coords[fr], mol, &calc); err != nil {
			return nil, fmt.Errorf("chemspace: optimizing frame %d: %w", fr, err)
		}
		if err := run.Run(true); err != nil {
			return nil, fmt.Errorf("chemspace: optimizing frame %d: %w", fr, err)
		}
		e, err := run.Energy()
		if err != nil {
			return nil, fmt.Errorf("chemspace: no energy for frame %d: %w", fr, err)
		}
		geo, err := run.OptimizedGeometry(mol)
		if err != nil {
			return nil, fmt.Errorf("chemspace: no geometry for frame %d: %w", fr, err)
		}
		mol.Coords[fr] = geo
		energies = append(energies, e)
	}
	return energies, nil
}

//XTBLogP estimates partition coefficients with a pair of implicit-solvent
//xtb runs, water against wet octanol, on the most stable conformer.
type XTBLogP struct {
	Options *qm.LPOptions //nil means the defaults
	Command string
	NCPU    int
}

func (G *XTBLogP) LogP(mol *grow.Molecule, wrkdir string) (float64, error) {
	var o qm.LPOptions
	if G.Options != nil {
		o = *G.Options
	} else {
		o.SetDefaults()
	}
	o.WorkDir = wrkdir
	if G.Command != "" {
		o.Command = G.Command
	}
	if G.NCPU > 0 {
		o.NCPU = G.NCPU
	}
	return qm.LogP(mol.Coords[0], mol, &o)
}

//GninaScorer rescores poses with gnina --score_only against a fixed
//receptor file.
type GninaScorer struct {
	Receptor string //path to the receptor PDB file
	Command  string
	NCPU     int
}

func (G *GninaScorer) Score(mol *grow.Molecule, wrkdir string) ([]*gnina.Score, error) {
	if G.Receptor == "" {
		return nil, fmt.Errorf("chemspace: the gnina scorer needs a receptor file")
	}
	//gnina runs with wrkdir as its working directory, so the receptor path
	//has to survive the change of directory
	rec, err := filepath.Abs(G.Receptor)
	if err != nil {
		return nil, fmt.Errorf("chemspace: bad receptor path: %w", err)
	}
	run := gnina.NewHandle()
	run.SetWorkDir(wrkdir)
	run.SetName("score")
	if G.Command != "" {
		run.SetCommand(G.Command)
	}
	if G.NCPU > 0 {
		run.SetnCPU(G.NCPU)
	}
	if err := run.BuildInput(mol, rec); err != nil {
		return nil, err
	}
	if err := run.Run(true); err != nil {
		return nil, err
	}
	return run.Scores()
}
