/*
 * crest.go, part of gogrow.
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

//In order to use this part of the library you need the CREST program from
//Prof. Stefan Grimme's group. Please cite the CREST references if you use it.

package qm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"

	grow "github.com/rmera/gogrow"
	v3 "github.com/rmera/gogrow/v3"
)

//CrestHandle represents a CREST conformer search.
type CrestHandle struct {
	command      string
	inputname    string
	nCPU         int
	options      []string
	wrkdir       string
	RunType      string     //entropy, protonate, deprotonate, search (default)
	Temperatures [3]float64 //initial, final, step
	EThres       float64    //kcal/mol over the most stable conformer
	RMSDThres    float64    //A, conformers closer than this are the same
}

//NewCrestHandle initializes and returns a CREST handle with values set to
//their defaults. Defaults might change as new methods appear, so they are
//not part of the API.
func NewCrestHandle() *CrestHandle {
	run := new(CrestHandle)
	run.SetDefaults()
	return run
}

//CrestHandle methods

//SetnCPU sets the number of CPU to be used
func (O *CrestHandle) SetnCPU(cpu int) {
	O.nCPU = cpu
}

//Command returns the path and name for the CREST executable
func (O *CrestHandle) Command() string {
	return O.command
}

//SetName sets the name for the calculation, which defines the input and
//output file names.
func (O *CrestHandle) SetName(name string) {
	O.inputname = name
}

//SetCommand sets the path and name for the CREST executable
func (O *CrestHandle) SetCommand(name string) {
	O.command = name
}

//SetWorkDir sets the working directory for the calculation.
func (O *CrestHandle) SetWorkDir(d string) {
	O.wrkdir = d
}

//SetDefaults sets the calculation parameters to their defaults.
func (O *CrestHandle) SetDefaults() {
	O.command = os.ExpandEnv("crest")
	cpu := runtime.NumCPU() / 2
	O.nCPU = cpu
}

//BuildInput builds an input for CREST. Only singlets have been tested.
//Frozen atoms in Q.CConstraints go to a constraints file built with the
//xtb machinery, which CREST takes with --cinp: that is how a grown ligand
//is sampled while its scaffold stays put.
func (O *CrestHandle) BuildInput(coords *v3.Matrix, atoms grow.AtomMultiCharger, Q *Calc) error {
	errid := "CrestHandle/BuildInput"
	if O.wrkdir != "" && !strings.HasSuffix(O.wrkdir, "/") {
		O.wrkdir += "/"
	}
	w := O.wrkdir
	if O.inputname == "" {
		O.inputname = "gogrow"
	}
	if atoms == nil || coords == nil {
		return fmt.Errorf("%s: no molecule or coordinates given", errid)
	}
	err := grow.XYZFileWrite(w+O.inputname+".xyz", coords, atoms)
	if err != nil {
		return fmt.Errorf("%s: couldn't write xyz file: %w", errid, err)
	}
	O.options = make([]string, 0, 6)
	O.options = append(O.options, fmt.Sprintf("--chrg %d", atoms.Charge()))
	O.options = append(O.options, fmt.Sprintf("--uhf %d", (atoms.Multi()-1)))
	if O.nCPU > 1 {
		O.options = append(O.options, fmt.Sprintf("-P %d", O.nCPU))
	}
	if !isInString([]string{"gfn1", "gfn2", "gfn0", "gfnff"}, Q.Method) {
		O.options = append(O.options, "--gfn2") //default method
	} else {
		O.options = append(O.options, "--"+Q.Method)
	}
	if Q.Dielectric > 0 && Q.Method != "gfn0" { //gfn0 doesn't support implicit solvation
		solvent, ok := dielectric2Solvent[int(Q.Dielectric)]
		if ok {
			O.options = append(O.options, "--alpb "+solvent)
		}
	}
	o := "--optlev vtight"
	if Q.OptTightness > 0 {
		if Q.OptTightness < 2 {
			o = "--optlev normal"
		}
		if Q.OptTightness == 2 {
			o = "--optlev tight"
		}
	}
	O.options = append(O.options, o)
	//run type. It's your responsibility to set only one of them.
	switch strings.ToLower(O.RunType) {
	case "entropy":
		O.options = append(O.options, "--entropy")
	case "protonate":
		O.options = append(O.options, "--protonate")
	case "deprotonate":
		O.options = append(O.options, "--deprotonate")
	case "tautomerize":
		O.options = append(O.options, "--tautomerize")
	case "":
		//the default conformer search
	default:
		log.Printf("%s: run type %s not available, will do the CREST default", errid, O.RunType)
	}
	ts := O.Temperatures
	if ts == [3]float64{0, 0, 0} {
		ts = [3]float64{298.15, 299.15, 1}
	}
	O.options = append(O.options, fmt.Sprintf("--trange %5.2f %5.2f %5.2f", ts[0], ts[1], ts[2]))
	if O.EThres > 0 { //crest expects this in kcal, so no conversion needed
		O.options = append(O.options, fmt.Sprintf("--ewin %4.1f", O.EThres))
	}
	if O.RMSDThres > 0 {
		O.options = append(O.options, fmt.Sprintf("--rthr %4.1f", O.RMSDThres))
	}
	O.options = append(O.options, fmt.Sprintf("--temp %5.2f", ts[0]))
	if Q.CConstraints != nil {
		xtbh := NewXTBHandle()
		constraintsfile := "constraints"
		xtbh.SetName(constraintsfile)
		xtbh.SetWorkDir(O.wrkdir)
		err = xtbh.BuildInput(coords, atoms, Q)
		if err != nil {
			return fmt.Errorf("%s: couldn't produce the constraints file: %w", errid, err)
		}
		O.options = append(O.options, "--cinp "+constraintsfile+".inp")
	}
	O.options = append(O.options, O.inputname+".xyz")
	return nil
}

//Run runs the CREST search previously set up. It waits or not for the
//result depending on wait. Not waiting for results works only for
//unix-compatible systems, as it uses sh and nohup.
func (O *CrestHandle) Run(wait bool) (err error) {
	errid := "CrestHandle/Run"
	options := strings.Join(O.options, " ")
	com := fmt.Sprintf(" %s > %s.out  2>&1", options, O.inputname)
	if wait {
		command := exec.Command("sh", "-c", O.command+com)
		command.Dir = O.wrkdir
		err = command.Run()
	} else {
		command := exec.Command("sh", "-c", "nohup "+O.command+com)
		command.Dir = O.wrkdir
		err = command.Start()
	}
	if err != nil {
		return fmt.Errorf("%s: %w", errid, err)
	}
	os.Remove(O.wrkdir + "xtbrestart")
	return nil
}

//Checks that a CREST calculation has terminated normally
func (O *CrestHandle) normalTermination() bool {
	inp := O.wrkdir + O.inputname
	return searchBackwards("CREST terminated normally", fmt.Sprintf("%s.out", inp)) != ""
}

//ConformerEnergies returns the energy of each conformer found, in
//kcal/mol, in the order of the ensemble file.
func (O *CrestHandle) ConformerEnergies() ([]float64, error) {
	ei := "CrestHandle/ConformerEnergies"
	if !O.normalTermination() {
		return nil, fmt.Errorf("%s: CREST run didn't finish normally", ei)
	}
	finp, err := os.Open(O.wrkdir + "crest_conformers.xyz")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ei, err)
	}
	defer finp.Close()
	energies := make([]float64, 0, 10)
	fr := bufio.NewReader(finp)
	var line string
	trim := strings.TrimSpace
	var reade bool
	nenergy := 0
	for line, err = fr.ReadString('\n'); err == nil; line, err = fr.ReadString('\n') {
		if _, err2 := strconv.Atoi(trim(line)); err2 == nil {
			//the lines with only an integer are the atom counts, and the
			//energy comes right after each of them
			reade = true
			continue
		}
		if reade {
			e, err := strconv.ParseFloat(trim(line), 64)
			if err != nil {
				return nil, fmt.Errorf("%s: couldn't parse energy %d: %w", ei, nenergy, err)
			}
			energies = append(energies, e*grow.H2Kcal)
			nenergy++
			reade = false
		}
	}
	if errors.Is(err, io.EOF) {
		err = nil
	}
	return energies, err
}

//Conformers returns the whole CREST ensemble as a molecule with one frame
//per conformer.
func (O *CrestHandle) Conformers() (*grow.Molecule, error) {
	ei := "CrestHandle/Conformers"
	if !O.normalTermination() {
		return nil, fmt.Errorf("%s: CREST run didn't finish normally", ei)
	}
	mol, err := grow.XYZFileRead(O.wrkdir + "crest_conformers.xyz")
	if err != nil {
		return nil, fmt.Errorf("%s: failed to retrieve conformers: %w", ei, err)
	}
	return mol, nil
}

//Entropy returns the conformational and vibrational entropies, in
//kcal/mol*K, at the first temperature given in the options (298.15 by
//default). It needs a previous run with RunType "entropy".
func (O *CrestHandle) Entropy() (float64, float64, error) {
	ei := "CrestHandle/Entropy"
	if !O.normalTermination() {
		return 0, 0, fmt.Errorf("%s: CREST run didn't finish normally", ei)
	}
	inp := O.wrkdir + O.inputname
	sconfline := searchBackwards("Sconf   =", fmt.Sprintf("%s.out", inp))
	if sconfline == "" {
		return 0, 0, fmt.Errorf("%s: couldn't find conformational entropy in output", ei)
	}
	split := strings.Fields(sconfline)
	if len(split) < 3 {
		return 0, 0, fmt.Errorf("%s: bad format in conformational entropy line: %s", ei, sconfline)
	}
	sconf, err := strconv.ParseFloat(split[2], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%s: couldn't parse conformational entropy: %s %w", ei, sconfline, err)
	}
	sline := searchBackwards("+ δSrrho  =", fmt.Sprintf("%s.out", inp))
	if sline == "" {
		return 0, 0, fmt.Errorf("%s: couldn't find vibrational entropy in output", ei)
	}
	split = strings.Fields(sline)
	if len(split) < 4 {
		return 0, 0, fmt.Errorf("%s: bad format in vibrational entropy line: %s", ei, sline)
	}
	svib, err := strconv.ParseFloat(split[3], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%s: couldn't parse vibrational entropy: %s %w", ei, sline, err)
	}
	//the entropies come in cal/mol*K, we give them in kcal/mol*K
	return sconf / 1000.0, svib / 1000.0, nil
}
