package chemspace

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	grow "github.com/rmera/gogrow"
	"github.com/rmera/gogrow/ctf"
	"gonum.org/v1/gonum/stat"
)

//Report is the record of one pipeline run: what was tried, against what,
//and how every candidate did. Candidates flagged as missing stay in it even
//after DiscardMissing, so a run never loses track of what it attempted.
type Report struct {
	RunID      string       `json:"run_id"`
	Receptor   string       `json:"receptor,omitempty"`
	RGroups    []string     `json:"r_groups"`
	Linkers    []string     `json:"linkers,omitempty"`
	Summary    *Summary     `json:"summary,omitempty"`
	Candidates []*Candidate `json:"candidates"`
}

//Summary condenses the scored end of a run: how many candidates got a
//score, which did best, and the location and spread of the best CNN
//affinities.
type Summary struct {
	Scored     int     `json:"scored"`
	BestID     string  `json:"best_id"`
	BestCNNAff float64 `json:"best_cnn_affinity"`
	MeanCNNAff float64 `json:"mean_cnn_affinity"`
	StdCNNAff  float64 `json:"stdev_cnn_affinity"`
}

//Summarize gathers the best CNN affinity of every scored candidate into a
//summary, nil if nothing was scored.
func (R *Report) Summarize() *Summary {
	affs := make([]float64, 0, len(R.Candidates))
	sum := new(Summary)
	for _, c := range R.Candidates {
		best := c.BestScore()
		if best == nil {
			continue
		}
		if sum.Scored == 0 || best.CNNAffinity > sum.BestCNNAff {
			sum.BestCNNAff = best.CNNAffinity
			sum.BestID = c.ID
		}
		affs = append(affs, best.CNNAffinity)
		sum.Scored++
	}
	if sum.Scored == 0 {
		return nil
	}
	sum.MeanCNNAff = stat.Mean(affs, nil)
	if sum.Scored > 1 { //StdDev of one sample is NaN, which JSON can't carry
		sum.StdCNNAff = stat.StdDev(affs, nil)
	}
	return sum
}

//Report assembles the current state of the space into a report, discarded
//candidates included.
func (S *Space) Report() *Report {
	R := &Report{RunID: S.runid, Receptor: S.recfile}
	for _, v := range S.rgroups {
		R.RGroups = append(R.RGroups, v.Name)
	}
	for _, v := range S.linkers {
		R.Linkers = append(R.Linkers, v.Name)
	}
	R.Candidates = append(R.Candidates, S.Candidates...)
	R.Candidates = append(R.Candidates, S.discarded...)
	R.Summary = R.Summarize()
	return R
}

//Send marshals the report and writes it to out, with a final newline.
func (R *Report) Send(out io.Writer) error {
	enc := json.NewEncoder(out)
	if err := enc.Encode(R); err != nil {
		return fmt.Errorf("chemspace: couldn't write the report: %w", err)
	}
	return nil
}

//WriteReport writes the report of the run, as JSON, to the named file.
func (S *Space) WriteReport(name string) error {
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("chemspace: %w", err)
	}
	defer f.Close()
	return S.Report().Send(f)
}

//WriteSDF writes the surviving candidates to a single SDF file, one entry
//per conformer, each entry titled with the candidate ID. Candidates flagged
//as missing are skipped.
func (S *Space) WriteSDF(name string) error {
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("chemspace: %w", err)
	}
	defer f.Close()
	written := 0
	for _, c := range S.Candidates {
		if c.Missing {
			continue
		}
		if err := grow.SDFWrite(f, c.Mol.Molecule, c.ID); err != nil {
			return fmt.Errorf("chemspace: writing candidate %s: %w", c.ID[:12], err)
		}
		written++
	}
	if written == 0 {
		return fmt.Errorf("chemspace: no candidates with geometries to write")
	}
	return nil
}

//ArchiveConformers stores the conformers and energies of every surviving
//candidate in the given directory, one compressed trajectory per candidate,
//named by the leading characters of its ID.
func (S *Space) ArchiveConformers(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("chemspace: %w", err)
	}
	for _, c := range S.Candidates {
		if c.Missing {
			continue
		}
		name := filepath.Join(dir, c.ID[:16]+".ctf")
		if err := ctf.WriteAll(name, c.Mol.Molecule, c.ID, c.Energies); err != nil {
			return fmt.Errorf("chemspace: archiving candidate %s: %w", c.ID[:12], err)
		}
	}
	return nil
}
