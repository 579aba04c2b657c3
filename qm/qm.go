/*
 * qm.go, part of gogrow.
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

package qm

import (
	"os"
	"strings"

	grow "github.com/rmera/gogrow"
	v3 "github.com/rmera/gogrow/v3"
)

//This allows to set calculations using different programs.
type Handle interface {

	//Sets the name for the job, used for input
	//and output files. The extensions depend on the program.
	SetName(name string)

	//BuildInput builds an input for the program based on the data in
	//atoms, coords and Q.
	BuildInput(coords *v3.Matrix, atoms grow.AtomMultiCharger, Q *Calc) error

	//Run runs the program for a calculation previously set.
	//It waits or not for the result depending on the value of wait.
	Run(wait bool) (err error)

	//Energy gets the last energy for a calculation by parsing the
	//program's output file, in kcal/mol.
	Energy() (float64, error)

	//OptimizedGeometry reads the optimized geometry from a calculation
	//output.
	OptimizedGeometry(atoms grow.Atomer) (*v3.Matrix, error)
}

type Calc struct {
	Method       string //gfn0, gfn1, gfn2 or gfnff
	Dielectric   float64
	CConstraints []int //Cartesian constraints, i.e. atoms kept frozen
	Optimize     bool
	OptTightness int //0: vtight, 1: normal, 2: tight
}

//Utilities here

//isInInt returns true if test is in container, false otherwise.
func isInInt(container []int, test int) bool {
	if container == nil {
		return false
	}
	for _, i := range container {
		if test == i {
			return true
		}
	}
	return false
}

//Same as the previous, but with strings.
func isInString(container []string, test string) bool {
	if container == nil {
		return false
	}
	for _, i := range container {
		if test == i {
			return true
		}
	}
	return false
}

//Wet n-octanol, the reference solvent for partition coefficients, gets the
//made-up "dielectric" 1000 so it can coexist with dry octanol in the map.
var dielectric2Solvent = map[int]string{
	80:   "h2o",
	5:    "chcl3",
	9:    "ch2cl2",
	21:   "acetone",
	37:   "acetonitrile",
	33:   "methanol",
	2:    "toluene",
	7:    "thf",
	47:   "dmso",
	38:   "dmf",
	10:   "octanol",
	1000: "woctanol",
}

//search a file backwards, i.e., starting from the end, for a string.
//Returns the line that contains the string, or an empty string. The very
//first line of the file is not reachable, which is fine for program
//outputs, where the sought lines come late.
func searchBackwards(str, filename string) string {
	var ini int64 = 0
	var end int64 = 0
	buf := make([]byte, 1)
	f, err := os.Open(filename)
	if err != nil {
		return ""
	}
	defer f.Close()
	var i int64 = 1
	for ; ; i++ {
		if _, err := f.Seek(-1*i, 2); err != nil {
			return ""
		}
		if _, err := f.Read(buf); err != nil {
			return ""
		}
		if buf[0] != byte('\n') {
			continue
		}
		if end == 0 {
			end = i
		} else if ini == 0 {
			ini = i
			f.Seek(-1*(ini), 2)
			bufF := make([]byte, ini-end)
			f.Read(bufF)
			if strings.Contains(string(bufF), str) {
				return string(bufF)
			}
			//the newline that opens this line closes the one before it
			end = ini
			ini = 0
		}
	}
}
