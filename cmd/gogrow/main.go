/*
 * main.go, part of gogrow.
 *
 * Copyright 2024 Raul Mera <rmeraa{at}academicosdotutadotcl>
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

/*To the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche*/

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-wordwrap"
	"github.com/rmera/scu"

	grow "github.com/rmera/gogrow"
	"github.com/rmera/gogrow/al"
	"github.com/rmera/gogrow/chemspace"
	"github.com/rmera/gogrow/depot"
	"github.com/rmera/gogrow/fraglib"
	"github.com/rmera/gogrow/growplot"
	"github.com/rmera/gogrow/qm"
)

var verb int

// If level is larger or equal, prints the d arguments to stderr
// otherwise, does nothing.
func LogV(level int, d ...interface{}) {
	if level <= verb {
		fmt.Fprintln(os.Stderr, d...)
	}
}

// Same as LogV, but to stdout, so results and chatter can be redirected
// to different files.
func PrintV(level int, d ...interface{}) {
	if level <= verb {
		fmt.Println(d...)
	}
}

// gets a file's extension, i.e. whatever is written after the last dot
func getExtension(name string) string {
	fs := strings.Split(name, ".")
	return strings.ToLower(fs[len(fs)-1])
}

const intro = "gogrow grows a scaffold molecule at a chosen position with R-groups from a catalog, optionally through linkers, and pushes the products through conformer generation, receptor clash pruning, optimization and scoring. The scaffold comes from an SDF or XYZ file; the receptor, if given, from a PDB or mmCIF file. Results go to a JSON report, an SDF with the surviving conformers, and, if asked, compressed conformer archives and a neo4j store."

func main() {
	target := flag.Int("target", -1, "Index of the scaffold atom to replace (0-based). Required unless -list")
	keep := flag.Int("keep", -1, "Index of the piece to keep when removing the target disconnects the scaffold. -1 keeps the largest")
	rgroups := flag.String("rgroups", "all", "R-groups to try: comma-separated catalog names, cat:<category>, or all")
	rgroupsfile := flag.String("rgroupsfile", "", "File with additional R-group names, one per line")
	linkers := flag.String("linkers", "", "Linkers between scaffold and R-group: same syntax as -rgroups, empty means direct attachment")
	list := flag.Bool("list", false, "Print the fragment catalog and exit")
	fixrec := flag.Bool("fixrec", false, "Protonate the receptor at the given pH before using it")
	ph := flag.Float64("ph", 7.4, "pH for receptor protonation")
	confs := flag.Bool("confs", true, "Generate conformers with crest")
	method := flag.String("method", "gfnff", "xtb/crest method (gfnff, gfn0, gfn1, gfn2)")
	dielectric := flag.Float64("dielectric", 80.0, "Dielectric constant for the implicit solvent, 0 or less means gas phase")
	frozen := flag.Bool("frozen", true, "Keep the scaffold atoms fixed during conformer generation and optimization")
	rmsd := flag.Float64("rmsd", 0, "Discard generated conformers within this RMSD (A) of a kept one, 0 means the crest default")
	clashcut := flag.Float64("clash", 1.0, "Discard conformers with a heavy atom closer than this (A) to the receptor, 0 skips the check")
	window := flag.Float64("window", 5.0, "Keep only conformers within this many kcal/mol of the most stable one, 0 keeps all")
	opt := flag.Bool("opt", false, "Optimize the surviving conformers with xtb")
	logp := flag.Bool("logp", false, "Estimate each candidate's logP from xtb implicit-solvent runs")
	score := flag.Bool("score", false, "Score the candidates against the receptor with gnina")
	rank := flag.String("rank", "", "Rank candidates with the given boo model before the expensive stages")
	top := flag.Int("top", 0, "With -rank, how many top candidates to keep, 0 means all (rank only reorders)")
	temperature := flag.Float64("T", 0, "With -rank, pick by Boltzmann sampling at this temperature instead of greedily")
	cpus := flag.Int("cpus", 0, "Concurrent builds and engine CPUs, 0 means half the machine")
	wrkdir := flag.String("wrkdir", "gogrow_scratch", "Scratch directory for the external engines")
	report := flag.String("report", "gogrow_report.json", "Report file")
	sdfname := flag.String("sdf", "gogrow_grown.sdf", "Output SDF with the surviving conformers")
	archive := flag.String("archive", "", "Directory for compressed conformer archives, empty skips archiving")
	plotname := flag.String("plot", "", "Bar plot of the best score per candidate (png), empty skips it")
	depoturi := flag.String("depot", "", "neo4j URI to store the run in, empty skips storage")
	depotuser := flag.String("depotuser", "neo4j", "neo4j user")
	depotpass := flag.String("depotpass", "", "neo4j password")
	depotdb := flag.String("depotdb", "", "neo4j database, empty means the server default")
	verbose := flag.Int("v", 1, "Level of verbosity")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage:\n  %s [flags] scaffold.sdf [receptor.pdb]\n\n%s\n\nFlags:\n",
			os.Args[0], wordwrap.WrapString(intro, 80))
		flag.PrintDefaults()
	}
	flag.Parse()
	verb = *verbose

	if *list {
		printCatalog()
		return
	}
	args := flag.Args()
	if len(args) < 1 {
		flag.Usage()
		log.Fatal("gogrow needs at least the scaffold file")
	}
	if *target < 0 {
		log.Fatal("the -target flag is required: the index of the scaffold atom to replace")
	}

	scaffold := readScaffold(args[0])
	sp := chemspace.NewSpace()
	sp.SetWorkDir(*wrkdir)
	if *cpus > 0 {
		sp.SetnCPU(*cpus)
	}
	var keeps []int
	if *keep >= 0 {
		keeps = []int{*keep}
	}
	if err := sp.AddScaffold(scaffold, *target, keeps...); err != nil {
		log.Fatal(err)
	}

	rgs := pickFragments(*rgroups, fraglib.RGroup, fraglib.RGroups)
	rgs = append(rgs, fragmentsFromFile(*rgroupsfile)...)
	if len(rgs) == 0 {
		log.Fatal("no R-groups selected")
	}
	sp.AddRGroups(rgs...)
	if lks := pickFragments(*linkers, fraglib.Linker, fraglib.Linkers); len(lks) > 0 {
		sp.AddLinkers(lks...)
	}

	recname := ""
	if len(args) >= 2 {
		recname = args[1]
		if *fixrec {
			fixed := filepath.Join(filepath.Dir(recname), "fixed_"+filepath.Base(recname))
			LogV(1, "protonating the receptor at pH", *ph)
			scu.QErr(grow.FixReceptor(recname, fixed, *ph))
			recname = fixed
		}
		sp.AddReceptor(readReceptor(recname), recname)
	}

	scu.QErr(sp.BuildAll())
	LogV(1, "built", len(sp.Candidates), "candidates")

	if *rank != "" {
		rankCandidates(sp, *rank, *top, *temperature)
	}
	if *confs {
		gen := &chemspace.CrestGenerator{Calc: newCalc(sp, *method, *dielectric, *frozen), RMSDThres: *rmsd}
		if *cpus > 0 {
			gen.NCPU = *cpus
		}
		scu.QErr(sp.GenerateConformers(gen))
	}
	if recname != "" && *clashcut > 0 {
		scu.QErr(sp.RemoveClashing(*clashcut))
	}
	scu.QErr(sp.SortConformers(*window))
	if *opt {
		o := &chemspace.XTBOptimizer{Calc: newCalc(sp, *method, *dielectric, *frozen)}
		if *cpus > 0 {
			o.NCPU = *cpus
		}
		scu.QErr(sp.Optimize(o))
	}
	if *logp {
		p := &chemspace.XTBLogP{Options: &qm.LPOptions{Method: *method}}
		if *cpus > 0 {
			p.NCPU = *cpus
		}
		scu.QErr(sp.ComputeLogP(p))
	}
	if *score {
		if recname == "" {
			log.Fatal("scoring needs a receptor PDB as the second argument")
		}
		sc := &chemspace.GninaScorer{Receptor: recname}
		if *cpus > 0 {
			sc.NCPU = *cpus
		}
		scu.QErr(sp.Score(sc))
	}
	if n := sp.DiscardMissing(); n > 0 {
		LogV(1, n, "candidates failed along the way, see the report")
	}

	scu.QErr(sp.WriteReport(*report))
	if err := sp.WriteSDF(*sdfname); err != nil {
		LogV(1, "no SDF written:", err)
	}
	if *archive != "" {
		scu.QErr(sp.ArchiveConformers(*archive))
	}
	if *plotname != "" {
		plotScores(sp, *plotname)
	}
	if *depoturi != "" {
		ctx := context.Background()
		st, err := depot.NewStore(ctx, *depoturi, *depotuser, *depotpass, *depotdb)
		scu.QErr(err)
		defer st.Close(ctx)
		scu.QErr(st.SaveRun(ctx, sp.Report()))
		LogV(1, "run stored in", *depoturi)
	}

	PrintV(1, "run", sp.RunID())
	for _, c := range sp.Candidates {
		line := fmt.Sprintf("%s  %-28s %2d conformers", c.ID[:12], label(c), c.Conformers)
		if c.LogP != nil {
			line += fmt.Sprintf("  logP %5.2f", *c.LogP)
		}
		if best := c.BestScore(); best != nil {
			line += fmt.Sprintf("  CNNaffinity %5.2f  Kd %8.3g nM", best.CNNAffinity, best.Kd()*1e9)
		}
		PrintV(1, line)
	}
}

func newCalc(sp *chemspace.Space, method string, dielectric float64, frozen bool) *qm.Calc {
	calc := &qm.Calc{Method: method, Dielectric: dielectric}
	if frozen {
		calc.CConstraints = sp.ScaffoldFrozen()
	}
	return calc
}

func readScaffold(name string) *grow.Molecule {
	switch getExtension(name) {
	case "sdf", "mol":
		mols, names, err := grow.SDFFileRead(name)
		scu.QErr(err)
		if len(mols) > 1 {
			LogV(1, "the scaffold file has", len(mols), "entries, using the first one:", names[0])
		}
		return mols[0]
	default:
		mol, err := grow.XYZFileRead(name)
		scu.QErr(err)
		//xyz brings no bond information
		scu.QErr(grow.AssignBonds(mol.Coords[0], mol))
		return mol
	}
}

func readReceptor(name string) *grow.Molecule {
	var rec *grow.Molecule
	var err error
	switch getExtension(name) {
	case "cif", "mmcif":
		rec, err = grow.PDBXFileRead(name)
	default:
		rec, err = grow.PDBFileRead(name)
	}
	scu.QErr(err)
	return rec
}

//selects fragments by comma-separated names, by cat:<category>, or all
func pickFragments(spec string, byName func(string) (*grow.Fragment, error), byCat func(string) []*grow.Fragment) []*grow.Fragment {
	switch {
	case spec == "":
		return nil
	case spec == "all":
		return byCat("")
	case strings.HasPrefix(spec, "cat:"):
		cat := strings.TrimPrefix(spec, "cat:")
		frags := byCat(cat)
		if len(frags) == 0 {
			log.Fatal("no fragments in category " + cat)
		}
		return frags
	default:
		ret := make([]*grow.Fragment, 0, 4)
		for _, n := range strings.Split(spec, ",") {
			f, err := byName(strings.TrimSpace(n))
			scu.QErr(err)
			ret = append(ret, f)
		}
		return ret
	}
}

func fragmentsFromFile(name string) []*grow.Fragment {
	if name == "" {
		return nil
	}
	fin, err := scu.NewMustReadFile(name)
	scu.QErr(err)
	ret := make([]*grow.Fragment, 0, 10)
	for line := fin.Next(); line != "EOF"; line = fin.Next() {
		n := strings.TrimSpace(line)
		if n == "" || strings.HasPrefix(n, "#") {
			continue
		}
		f, err := fraglib.RGroup(n)
		scu.QErr(err)
		ret = append(ret, f)
	}
	return ret
}

//keeps only the top candidates under the model, in rank order
func rankCandidates(sp *chemspace.Space, model string, top int, temperature float64) {
	m, err := al.LoadModel(model)
	scu.QErr(err)
	ranker := al.NewRanker(m, 0)
	feats := make([][]float64, 0, len(sp.Candidates))
	cands := make([]*chemspace.Candidate, 0, len(sp.Candidates))
	for _, c := range sp.Candidates {
		if c.Props == nil {
			LogV(1, "candidate", c.ID[:12], "has no descriptors so it can't be ranked, dropping it")
			continue
		}
		feats = append(feats, al.Features(c.Props))
		cands = append(cands, c)
	}
	if len(feats) == 0 {
		log.Fatal("no candidate could be ranked")
	}
	//the gain is the probability of the highest activity bin
	ranker.Class = len(ranker.Predict(feats[0])) - 1
	ranked, err := ranker.Rank(feats)
	scu.QErr(err)
	k := top
	if k <= 0 || k > len(ranked) {
		k = len(ranked)
	}
	var sel []int
	if temperature > 0 {
		sel, err = al.Boltzmann(ranked, k, temperature, nil)
		scu.QErr(err)
	} else {
		sel = al.Greedy(ranked, k)
	}
	picked := make([]*chemspace.Candidate, 0, k)
	for _, idx := range sel {
		picked = append(picked, cands[idx])
	}
	LogV(1, "ranking kept", len(picked), "of", len(sp.Candidates), "candidates")
	sp.Candidates = picked
}

func label(c *chemspace.Candidate) string {
	if c.Linker != "" {
		return c.Linker + "-" + c.RGroup
	}
	return c.RGroup
}

func plotScores(sp *chemspace.Space, name string) {
	scores := make([]float64, 0, len(sp.Candidates))
	names := make([]string, 0, len(sp.Candidates))
	for _, c := range sp.Candidates {
		best := c.BestScore()
		if best == nil {
			continue
		}
		scores = append(scores, best.CNNAffinity)
		names = append(names, label(c))
	}
	if len(scores) == 0 {
		LogV(1, "no scores to plot")
		return
	}
	if err := growplot.ScoreBars(scores, names, "CNN affinity per candidate", name); err != nil {
		LogV(1, "couldn't make the plot:", err)
	}
}

func printCatalog() {
	fmt.Println("R-groups:")
	for _, n := range fraglib.RGroupNames() {
		fmt.Println("  " + n)
	}
	fmt.Println("Linkers:")
	for _, n := range fraglib.LinkerNames() {
		fmt.Println("  " + n)
	}
	fmt.Println("Categories: " + strings.Join(fraglib.Categories(), " "))
}
