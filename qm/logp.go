/*
 * logp.go, part of gogrow.
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
	"fmt"
	"log"
	"math"

	grow "github.com/rmera/gogrow"
	v3 "github.com/rmera/gogrow/v3"
)

const (
	deflogpmethod = "gfn2"
	deflogptemp   = 298.15
)

//gfn0 is left out as it doesn't support implicit solvation.
var logpmethods = []string{"gfn1", "gfn2", "gfnff"}

//LPOptions sets up a partition coefficient estimation.
type LPOptions struct {
	Method      string  //gfn1, gfn2 or gfnff
	Temperature float64 //K
	Optimize    bool    //relax the geometry in each solvent before taking its energy
	WorkDir     string
	Command     string //path to the xtb executable, empty means xtb from PATH
	NCPU        int
}

//Check replaces empty fields with the defaults, quietly, and invalid ones
//with the defaults, with a complaint to the log.
func (O *LPOptions) Check() {
	if O.Method == "" {
		O.Method = deflogpmethod
	} else if !isInString(logpmethods, O.Method) {
		log.Printf("Method %s not available for logP, will use the default %s", O.Method, deflogpmethod)
		O.Method = deflogpmethod
	}
	if O.Temperature < 0 {
		log.Printf("Invalid temperature %5.1f, will use the default %5.1f", O.Temperature, deflogptemp)
		O.Temperature = deflogptemp
	} else if O.Temperature == 0 {
		O.Temperature = deflogptemp
	}
}

//SetDefaults sets the estimation parameters to their defaults.
func (O *LPOptions) SetDefaults() {
	O.Method = deflogpmethod
	O.Temperature = deflogptemp
}

//LogP estimates the water/n-octanol partition coefficient of a molecule
//as the free energy of transfer between the two solvents, each energy
//taken from an implicit-solvent (ALPB) xtb calculation on the given
//geometry. The gas-phase part cancels in the difference, so what is left
//is the solvation term the ALPB model was fitted for. The geometry should
//be a reasonable minimum, say, the most stable conformer of an ensemble.
func LogP(coords *v3.Matrix, mol grow.AtomMultiCharger, options ...*LPOptions) (float64, error) {
	var o *LPOptions
	if len(options) == 0 || options[0] == nil {
		o = new(LPOptions)
		o.SetDefaults()
	} else {
		o = options[0]
		o.Check()
	}
	if mol.Charge() != 0 {
		log.Printf("LogP is defined for non-ionized molecules! Will proceed regardless")
	}
	Q := &Calc{Method: o.Method, Optimize: o.Optimize}
	solvents := []string{"water", "n-octanol(wet)"}
	tags := []string{"water", "woctanol"}
	//wet octanol goes by the "dielectric" 1000, see dielectric2Solvent
	dielectrics := []float64{80, 1000}
	Gs := make([]float64, 0, 2)
	for i, eps := range dielectrics {
		Q.Dielectric = eps
		xtb := NewXTBHandle()
		xtb.SetWorkDir(o.WorkDir)
		xtb.SetName("logp_" + tags[i])
		if o.Command != "" {
			xtb.SetCommand(o.Command)
		}
		if o.NCPU > 0 {
			xtb.SetnCPU(o.NCPU)
		}
		if err := xtb.BuildInput(coords, mol, Q); err != nil {
			return 0, fmt.Errorf("logP: couldn't build the xtb input for %s: %w", solvents[i], err)
		}
		if err := xtb.Run(true); err != nil {
			return 0, fmt.Errorf("logP: xtb didn't run correctly in %s: %w", solvents[i], err)
		}
		G, err := xtb.Energy()
		if err != nil {
			return 0, fmt.Errorf("logP: couldn't obtain the energy in %s: %w", solvents[i], err)
		}
		Gs = append(Gs, G)
	}
	deltaG := Gs[1] - Gs[0] //transfer from water to octanol, kcal/mol
	P := math.Exp(-deltaG / (grow.R * o.Temperature))
	return math.Log10(P), nil
}
