/*
 * xtb.go, part of gogrow.
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

//In order to use this part of the library you need the xtb program, which
//must be obtained from Prof. Stefan Grimme's group. Please cite the xtb
//references if you use it.

package qm

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"

	grow "github.com/rmera/gogrow"
	v3 "github.com/rmera/gogrow/v3"
)

//Note that the default method is NOT considered part of the API, so it can
//always change.
type XTBHandle struct {
	command   string
	inputname string
	nCPU      int
	options   []string
	gfnff     bool
	wrkdir    string
}

//NewXTBHandle initializes and returns an xtb handle with the default
//settings.
func NewXTBHandle() *XTBHandle {
	run := new(XTBHandle)
	run.SetDefaults()
	return run
}

//XTBHandle methods

//SetnCPU sets the number of CPU to be used
func (O *XTBHandle) SetnCPU(cpu int) {
	O.nCPU = cpu
}

//Command returns the path and name for the xtb executable
func (O *XTBHandle) Command() string {
	return O.command
}

//SetName sets the name for the calculation, which defines the input and
//output file names.
func (O *XTBHandle) SetName(name string) {
	O.inputname = name
}

//SetCommand sets the path and name for the xtb executable
func (O *XTBHandle) SetCommand(name string) {
	O.command = name
}

//SetWorkDir sets the working directory for the calculation. Running
//several calculations in parallel in the same directory fails, as xtb
//always writes the same file names.
func (O *XTBHandle) SetWorkDir(d string) {
	O.wrkdir = d
}

//SetDefaults sets the calculation parameters to their defaults. Defaults
//might change as new methods appear, so they are not part of the API.
func (O *XTBHandle) SetDefaults() {
	O.command = os.ExpandEnv("xtb")
	cpu := runtime.NumCPU() / 2
	O.nCPU = cpu
}

//BuildInput builds an input for xtb. Optimizations with frozen atoms, as
//needed when a ligand is optimized inside a rigid pocket, go through an
//xcontrol file written next to the geometry.
func (O *XTBHandle) BuildInput(coords *v3.Matrix, atoms grow.AtomMultiCharger, Q *Calc) error {
	if O.wrkdir != "" && !strings.HasSuffix(O.wrkdir, "/") {
		O.wrkdir += "/"
	}
	w := O.wrkdir
	if O.inputname == "" {
		O.inputname = "gogrow"
	}
	if atoms == nil || coords == nil {
		return Error{ErrMissingCharges, XTB, O.inputname, "", []string{"BuildInput"}, true}
	}
	err := grow.XYZFileWrite(w+O.inputname+".xyz", coords, atoms)
	if err != nil {
		return Error{ErrCantInput, XTB, O.inputname, err.Error(), []string{"BuildInput"}, true}
	}
	xcontrol, err := os.Create(w + O.inputname + ".inp")
	if err != nil {
		return Error{ErrCantInput, XTB, O.inputname, err.Error(), []string{"BuildInput"}, true}
	}
	O.options = make([]string, 0, 6)
	O.options = append(O.options, O.command)
	if Q.Method == "gfnff" {
		O.gfnff = true
	}
	O.options = append(O.options, O.inputname+".xyz")
	O.options = append(O.options, fmt.Sprintf("-c %d", atoms.Charge()))
	O.options = append(O.options, fmt.Sprintf("-u %d", (atoms.Multi()-1)))
	if O.nCPU > 1 {
		O.options = append(O.options, fmt.Sprintf("-P %d", O.nCPU))
	}
	if !isInString([]string{"gfn1", "gfn2", "gfn0", "gfnff"}, Q.Method) {
		O.options = append(O.options, "--gfn 2") //default method
	} else if Q.Method != "gfnff" {
		m := strings.ReplaceAll(Q.Method, "gfn", "") //so m should be "0", "1" or "2"
		O.options = append(O.options, "--gfn "+m)
	}
	if Q.Dielectric > 0 && Q.Method != "gfn0" { //gfn0 doesn't support implicit solvation
		solvent, ok := dielectric2Solvent[int(Q.Dielectric)]
		if ok {
			O.options = append(O.options, "--alpb "+solvent)
		}
	}
	if Q.CConstraints != nil {
		fixed := "atoms: "
		for _, v := range Q.CConstraints {
			fixed = fixed + strconv.Itoa(v+1) + "," //xtb counts atoms from 1
		}
		fixed = strings.TrimRight(fixed, ",") + "\n"
		xcontrol.Write([]byte("$fix\n"))
		xcontrol.Write([]byte("force constant=10000\n"))
		xcontrol.Write([]byte(fixed))
		xcontrol.Write([]byte("$end\n"))
	}
	if Q.Optimize {
		O.options = append(O.options, "-o normal")
	}
	xcontrol.Close()
	return nil
}

//Run runs the xtb calculation previously set up. It waits or not for the
//result depending on wait. Not waiting for results works only for
//unix-compatible systems, as it uses sh and nohup.
func (O *XTBHandle) Run(wait bool) (err error) {
	var com string
	if O.gfnff {
		com = fmt.Sprintf(" --gfnff %s.xyz  --input %s.inp  %s > %s.out  2>&1", O.inputname, O.inputname, strings.Join(O.options[2:], " "), O.inputname)
	} else {
		com = fmt.Sprintf(" %s.xyz  --input %s.inp  %s > %s.out  2>&1", O.inputname, O.inputname, strings.Join(O.options[2:], " "), O.inputname)
	}
	if wait {
		log.Printf(O.command + com)
		command := exec.Command("sh", "-c", O.command+com)
		command.Dir = O.wrkdir
		err = command.Run()
	} else {
		command := exec.Command("sh", "-c", "nohup "+O.command+com)
		command.Dir = O.wrkdir
		err = command.Start()
	}
	if err != nil {
		return Error{ErrNotRunning, XTB, O.inputname, err.Error(), []string{"Run"}, true}
	}
	os.Remove(O.wrkdir + "xtbrestart")
	return nil
}

//This checks that an xtb calculation has terminated normally
func (O *XTBHandle) normalTermination() bool {
	out := fmt.Sprintf("%s%s.out", O.wrkdir, O.inputname)
	if searchBackwards("normal termination of x", out) != "" || searchBackwards("abnormal termination of x", out) == "" {
		return true
	}
	return false
}

//OptimizedGeometry reads the latest geometry from an xtb optimization. It
//doesn't actually need the Atomer but requires it so XTBHandle fits the
//Handle interface.
func (O *XTBHandle) OptimizedGeometry(atoms grow.Atomer) (*v3.Matrix, error) {
	if !O.normalTermination() {
		return nil, Error{ErrNoGeometry, XTB, O.inputname, "calculation didn't end normally", []string{"OptimizedGeometry"}, true}
	}
	mol, err := grow.XYZFileRead(O.wrkdir + "xtbopt.xyz")
	if err != nil {
		return nil, Error{ErrNoGeometry, XTB, O.inputname, err.Error(), []string{"OptimizedGeometry"}, true}
	}
	return mol.Coords[0], nil
}

//Energy returns the energy of a previous xtb calculation, in kcal/mol.
func (O *XTBHandle) Energy() (float64, error) {
	energyline := searchBackwards("total E       :", fmt.Sprintf("%s%s.out", O.wrkdir, O.inputname))
	if energyline == "" {
		return 0, Error{ErrNoEnergy, XTB, O.inputname, "", []string{"searchBackwards", "Energy"}, true}
	}
	split := strings.Fields(energyline)
	if len(split) < 4 {
		return 0, Error{ErrNoEnergy, XTB, O.inputname, energyline, []string{"Energy"}, true}
	}
	energy, err := strconv.ParseFloat(split[3], 64)
	if err != nil {
		return 0, Error{ErrNoEnergy, XTB, O.inputname, err.Error(), []string{"strconv.ParseFloat", "Energy"}, true}
	}
	return energy * grow.H2Kcal, nil
}
