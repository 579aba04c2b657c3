/*
 * pdb.go, part of gogrow.
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

package grow

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	v3 "github.com/rmera/gogrow/v3"
)

//PDB reading and writing, restricted to the records gogrow needs for
//receptors and ligands: ATOM, HETATM, MODEL, ENDMDL, TER and END.

//symbolFromName tries to guess a chemical element symbol from a PDB atom
//name. Mostly based on AMBER names, plus the halogens common in ligands.
func symbolFromName(name string) (string, error) {
	symbol := ""
	switch {
	case len(name) == 4 || strings.HasPrefix(name, "H"):
		symbol = "H" //I thiiink only Hs can have 4-char names in amber.
	case strings.HasPrefix(name, "C"):
		switch name {
		case "CU":
			symbol = "Cu"
		case "CO":
			symbol = "Co"
		case "CL":
			symbol = "Cl"
		default:
			symbol = "C"
		}
	case strings.HasPrefix(name, "N"):
		if name == "NA" {
			symbol = "Na"
		} else {
			symbol = "N"
		}
	case strings.HasPrefix(name, "O"):
		symbol = "O"
	case strings.HasPrefix(name, "P"):
		symbol = "P"
	case strings.HasPrefix(name, "S"):
		if name == "SE" {
			symbol = "Se"
		} else {
			symbol = "S"
		}
	case strings.HasPrefix(name, "F"):
		if name == "FE" {
			symbol = "Fe"
		} else {
			symbol = "F"
		}
	case strings.HasPrefix(name, "BR"):
		symbol = "Br"
	case strings.HasPrefix(name, "ZN"):
		symbol = "Zn"
	}
	if symbol == "" {
		return symbol, &CError{fmt.Sprintf("gogrow: couldn't guess an element from the PDB name %q", name), []string{"symbolFromName"}}
	}
	return symbol, nil
}

//pdbFullLine parses an ATOM or HETATM line, returning the atom, its
//coordinates and its b-factor. Occupancy, b-factor, element and charge are
//read leniently: files missing them still parse.
func pdbFullLine(line string) (*Atom, [3]float64, float64, error) {
	var coords [3]float64
	var bfac float64
	at := new(Atom)
	if len(line) < 54 {
		return nil, coords, 0, &CError{fmt.Sprintf("gogrow: PDB line too short: %q", strings.TrimRight(line, "\n")), []string{"pdbFullLine"}}
	}
	at.Het = strings.HasPrefix(line, "HETATM")
	var err error
	if at.ID, err = strconv.Atoi(strings.TrimSpace(line[6:11])); err != nil {
		return nil, coords, 0, errDecorate(err, "pdbFullLine serial")
	}
	at.Name = strings.TrimSpace(line[12:16])
	at.MolName = strings.TrimSpace(line[17:20])
	at.Chain = strings.TrimSpace(line[21:22])
	if at.MolID, err = strconv.Atoi(strings.TrimSpace(line[22:26])); err != nil {
		return nil, coords, 0, errDecorate(err, "pdbFullLine residue number")
	}
	for i := 0; i < 3; i++ {
		coords[i], err = strconv.ParseFloat(strings.TrimSpace(line[30+8*i:38+8*i]), 64)
		if err != nil {
			return nil, coords, 0, errDecorate(err, "pdbFullLine coordinates")
		}
	}
	if len(line) >= 60 {
		at.Occupancy, _ = strconv.ParseFloat(strings.TrimSpace(line[54:60]), 64)
	}
	if len(line) >= 66 {
		bfac, _ = strconv.ParseFloat(strings.TrimSpace(line[60:66]), 64)
	}
	if len(line) >= 78 {
		at.Symbol = strings.TrimSpace(line[76:78])
	}
	if len(line) >= 80 {
		if d := line[78]; d >= '0' && d <= '9' {
			at.Charge = float64(d - '0')
			if line[79] == '-' {
				at.Charge *= -1
			}
		}
	}
	if at.Symbol == "" {
		at.Symbol, _ = symbolFromName(at.Name) //a failed guess just leaves it empty
	}
	at.Mass = symbolMass[at.Symbol]
	at.Bfactor = bfac
	return at, coords, bfac, nil
}

//pdbCoordsLine parses only the coordinates and b-factor of an ATOM or HETATM
//line, for the models after the first.
func pdbCoordsLine(line string) ([3]float64, float64, error) {
	var coords [3]float64
	if len(line) < 54 {
		return coords, 0, &CError{fmt.Sprintf("gogrow: PDB line too short: %q", strings.TrimRight(line, "\n")), []string{"pdbCoordsLine"}}
	}
	for i := 0; i < 3; i++ {
		c, err := strconv.ParseFloat(strings.TrimSpace(line[30+8*i:38+8*i]), 64)
		if err != nil {
			return coords, 0, errDecorate(err, "pdbCoordsLine")
		}
		coords[i] = c
	}
	var bfac float64
	if len(line) >= 66 {
		bfac, _ = strconv.ParseFloat(strings.TrimSpace(line[60:66]), 64)
	}
	return coords, bfac, nil
}

//PDBFileRead reads the PDB file with the given name. Several MODELs become
//frames of the same molecule: the atom data other than coordinates and
//b-factors is taken from the first one.
func PDBFileRead(pdbname string) (*Molecule, error) {
	f, err := os.Open(pdbname)
	if err != nil {
		return nil, errDecorate(err, "PDBFileRead")
	}
	defer f.Close()
	mol, err := PDBRead(f)
	if err != nil {
		return nil, errDecorate(err, "PDBFileRead "+pdbname)
	}
	return mol, nil
}

//PDBRead reads a PDB structure from in, which can be a file or the output
//pipe of a structure-preparation program.
func PDBRead(in io.Reader) (*Molecule, error) {
	pdb := bufio.NewReader(in)
	ats := make([]*Atom, 0, 100)
	coords := [][]float64{make([]float64, 0, 300)}
	bfacs := [][]float64{make([]float64, 0, 100)}
	firstModel := true
	for {
		line, err := pdb.ReadString('\n')
		if err != nil && line == "" {
			break
		}
		switch {
		case strings.HasPrefix(line, "ATOM") || strings.HasPrefix(line, "HETATM"):
			if firstModel {
				at, c, bf, err := pdbFullLine(line)
				if err != nil {
					return nil, errDecorate(err, fmt.Sprintf("PDBRead atom %d", len(ats)))
				}
				ats = append(ats, at)
				coords[len(coords)-1] = append(coords[len(coords)-1], c[0], c[1], c[2])
				bfacs[len(bfacs)-1] = append(bfacs[len(bfacs)-1], bf)
			} else {
				c, bf, err := pdbCoordsLine(line)
				if err != nil {
					return nil, errDecorate(err, "PDBRead")
				}
				coords[len(coords)-1] = append(coords[len(coords)-1], c[0], c[1], c[2])
				bfacs[len(bfacs)-1] = append(bfacs[len(bfacs)-1], bf)
			}
		case strings.HasPrefix(line, "MODEL"):
			n := 1
			if len(line) > 6 {
				n, _ = strconv.Atoi(strings.TrimSpace(line[6:]))
			}
			if n > 1 {
				firstModel = false
				coords = append(coords, make([]float64, 0, len(coords[0])))
				bfacs = append(bfacs, make([]float64, 0, len(bfacs[0])))
			}
		case strings.HasPrefix(line, "END"):
			//both END and ENDMDL. The next MODEL record opens the next frame.
		}
		if err != nil {
			break
		}
	}
	if len(ats) == 0 {
		return nil, &CError{"gogrow: no ATOM or HETATM records found", []string{"PDBRead"}}
	}
	mcoords := make([]*v3.Matrix, 0, len(coords))
	for _, v := range coords {
		m, err := v3.NewMatrix(v)
		if err != nil {
			return nil, errDecorate(err, "PDBRead")
		}
		mcoords = append(mcoords, m)
	}
	mol, err := NewMolecule(mcoords, NewTopology(0, 1, ats), bfacs)
	if err != nil {
		return nil, errDecorate(err, "PDBRead")
	}
	return mol, nil
}

//PDBFileWrite writes the given coordinates and atoms as a PDB file with the
//given name. bfact can be nil, in which case the b-factors stored in the
//atoms are used.
func PDBFileWrite(pdbname string, coords *v3.Matrix, mol Atomer, bfact []float64) error {
	f, err := os.Create(pdbname)
	if err != nil {
		return errDecorate(err, "PDBFileWrite")
	}
	defer f.Close()
	if err := PDBWrite(f, coords, mol, bfact); err != nil {
		return errDecorate(err, "PDBFileWrite "+pdbname)
	}
	return nil
}

//PDBStringWrite returns the given coordinates and atoms as PDB-formatted
//text, to feed programs that take structures on standard input.
func PDBStringWrite(coords *v3.Matrix, mol Atomer, bfact []float64) (string, error) {
	var b strings.Builder
	if err := PDBWrite(&b, coords, mol, bfact); err != nil {
		return "", errDecorate(err, "PDBStringWrite")
	}
	return b.String(), nil
}

//PDBWrite writes the given coordinates and atoms in PDB format to out.
func PDBWrite(out io.Writer, coords *v3.Matrix, mol Atomer, bfact []float64) error {
	if coords == nil || mol == nil {
		return &CError{"gogrow: nil coordinates or atoms given", []string{"PDBWrite"}}
	}
	if coords.NVecs() != mol.Len() {
		return &CError{fmt.Sprintf("gogrow: %d coordinates given for %d atoms", coords.NVecs(), mol.Len()), []string{"PDBWrite"}}
	}
	if bfact != nil && len(bfact) != mol.Len() {
		return &CError{fmt.Sprintf("gogrow: %d b-factors given for %d atoms", len(bfact), mol.Len()), []string{"PDBWrite"}}
	}
	fmt.Fprint(out, "REMARK     WRITTEN WITH GOGROW :-)\n")
	chainprev := mol.Atom(0).Chain
	for i := 0; i < mol.Len(); i++ {
		at := mol.Atom(i)
		if at.Chain != chainprev {
			fmt.Fprintln(out, "TER")
			chainprev = at.Chain
		}
		first := "ATOM"
		if at.Het {
			first = "HETATM"
		}
		chain := at.Chain
		if chain == "" {
			chain = " "
		}
		bfac := at.Bfactor
		if bfact != nil {
			bfac = bfact[i]
		}
		var err error
		if len(at.Name) < 4 {
			_, err = fmt.Fprintf(out, "%-6s%5d  %-3s %3s %1s%4d    %8.3f%8.3f%8.3f%6.2f%6.2f          %2s  \n",
				first, at.ID, at.Name, at.MolName, chain, at.MolID,
				coords.At(i, 0), coords.At(i, 1), coords.At(i, 2), at.Occupancy, bfac, at.Symbol)
		} else {
			_, err = fmt.Fprintf(out, "%-6s%5d %4s %3s %1s%4d    %8.3f%8.3f%8.3f%6.2f%6.2f          %2s  \n",
				first, at.ID, at.Name, at.MolName, chain, at.MolID,
				coords.At(i, 0), coords.At(i, 1), coords.At(i, 2), at.Occupancy, bfac, at.Symbol)
		}
		if err != nil {
			return errDecorate(err, "PDBWrite")
		}
	}
	_, err := fmt.Fprint(out, "END\n")
	return err
}
