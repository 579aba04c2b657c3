//Package gnina wraps the gnina molecular docking program as a rescoring
//backend. Conformers of a ligand are written as a multi-entry SDF and scored
//in place against a receptor with the --score_only protocol, which evaluates
//the empirical affinity term plus the CNN pose score and pK prediction for
//each entry. Only scoring is covered, not docking searches.
package gnina

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"os/exec"
	"strconv"
	"strings"

	grow "github.com/rmera/gogrow"
)

//Score collects the numbers gnina reports for one scored pose.
type Score struct {
	Pose        int
	Affinity    float64 //kcal/mol, the empirical term
	CNNScore    float64 //pose probability, 0-1
	CNNAffinity float64 //predicted pK, i.e. -log10(Kd)
}

//Kd returns the predicted dissociation constant, in mol/L.
func (S *Score) Kd() float64 {
	return math.Pow(10, -S.CNNAffinity)
}

//IC50 returns the predicted IC50 in nM, taking IC50~Kd as gnina itself
//does when reporting affinities.
func (S *Score) IC50() float64 {
	return math.Pow(10, 9-S.CNNAffinity)
}

//Handle drives one gnina scoring run. The zero value is not ready to use,
//get one from NewHandle.
type Handle struct {
	command   string
	inputname string
	receptor  string
	wrkdir    string
	nCPU      int
	options   []string
}

func NewHandle() *Handle {
	run := new(Handle)
	run.command = os.ExpandEnv("gnina")
	return run
}

//SetName sets the name for the input/output files produced (name.sdf,
//name.out).
func (O *Handle) SetName(name string) {
	O.inputname = name
}

//SetCommand sets the path to the gnina executable.
func (O *Handle) SetCommand(name string) {
	O.command = name
}

//SetWorkDir sets the directory where the input and output files will live.
func (O *Handle) SetWorkDir(d string) {
	O.wrkdir = d
}

//SetnCPU sets the number of CPUs gnina may use.
func (O *Handle) SetnCPU(n int) {
	O.nCPU = n
}

//BuildInput writes every frame of lig as a pose in an SDF file, to be
//scored against the receptor PDB file given. The receptor is not copied,
//so the path must stay valid until Run.
func (O *Handle) BuildInput(lig *grow.Molecule, receptor string) error {
	if O.wrkdir != "" && !strings.HasSuffix(O.wrkdir, "/") {
		O.wrkdir = O.wrkdir + "/"
	}
	w := O.wrkdir
	if O.inputname == "" {
		O.inputname = "gogrow"
	}
	if lig == nil || lig.LenFrames() == 0 {
		return fmt.Errorf("gnina: no poses to score")
	}
	if _, err := os.Stat(receptor); err != nil {
		return fmt.Errorf("gnina: can't read the receptor file %s: %w", receptor, err)
	}
	O.receptor = receptor
	if err := grow.SDFFileWrite(w+O.inputname+".sdf", lig, O.inputname); err != nil {
		return fmt.Errorf("gnina: can't write the poses file: %w", err)
	}
	O.options = []string{O.command, "--score_only", "-l", O.inputname + ".sdf", "-r", receptor, "--seed", "0", "--stripH", "False"}
	if O.nCPU > 0 {
		O.options = append(O.options, "--cpu", strconv.Itoa(O.nCPU))
	}
	return nil
}

//Run runs the scoring job, if wait is true, it waits for the job to finish.
func (O *Handle) Run(wait bool) error {
	if O.options == nil {
		return fmt.Errorf("gnina: no input was built for this run")
	}
	com := strings.Join(O.options, " ") + fmt.Sprintf(" > %s.out 2>&1", O.inputname)
	if !wait {
		com = "nohup " + com
	}
	command := exec.Command("sh", "-c", com)
	command.Dir = O.wrkdir
	var err error
	if wait {
		err = command.Run()
	} else {
		err = command.Start()
	}
	if err != nil {
		return fmt.Errorf("gnina: run failed: %w", err)
	}
	return nil
}

//Scores parses the output of a finished run and returns one Score per pose,
//in the order the poses were written.
func (O *Handle) Scores() ([]*Score, error) {
	f, err := os.Open(O.wrkdir + O.inputname + ".out")
	if err != nil {
		return nil, fmt.Errorf("gnina: can't open the output file: %w", err)
	}
	defer f.Close()
	scores := make([]*Score, 0, 10)
	var curr *Score
	scan := bufio.NewScanner(f)
	for scan.Scan() {
		l := strings.TrimSpace(scan.Text())
		//each pose block starts with its Affinity line, the CNNaffinity
		//line closes it.
		switch {
		case strings.HasPrefix(l, "Affinity:"):
			curr = &Score{Pose: len(scores)}
			curr.Affinity, err = scorefield(l)
		case curr != nil && strings.HasPrefix(l, "CNNscore:"):
			curr.CNNScore, err = scorefield(l)
		case curr != nil && strings.HasPrefix(l, "CNNaffinity:"):
			curr.CNNAffinity, err = scorefield(l)
			scores = append(scores, curr)
			curr = nil
		}
		if err != nil {
			return nil, fmt.Errorf("gnina: mangled line %q in the output: %w", l, err)
		}
	}
	if err := scan.Err(); err != nil {
		return nil, fmt.Errorf("gnina: can't read the output file: %w", err)
	}
	if len(scores) == 0 {
		return nil, fmt.Errorf("gnina: no scores in %s.out, the run probably failed", O.inputname)
	}
	return scores, nil
}

func scorefield(line string) (float64, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return 0, fmt.Errorf("no value field")
	}
	return strconv.ParseFloat(fields[1], 64)
}
