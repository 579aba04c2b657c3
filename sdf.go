/*
 * sdf.go, part of gogrow.
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

//SDF (V2000) reading and writing. Only the fields gogrow uses are handled:
//coordinates, element symbols, bond block, M CHG and M RGP property lines.
//R# and * atoms become open attachment points, with the label taken from
//M RGP, or 1 if the file gives none. Aromatic bonds (type 4) get order 1.5,
//query bond types get order 0 (undetermined). Data items after M END are
//skipped.

//SDFFileRead reads every entry of the SDF file with the given name. It
//returns one single-frame molecule per entry, plus the entry titles, in
//file order.
func SDFFileRead(sdfname string) ([]*Molecule, []string, error) {
	f, err := os.Open(sdfname)
	if err != nil {
		return nil, nil, errDecorate(err, "SDFFileRead")
	}
	defer f.Close()
	mols, names, err := sdfRead(bufio.NewReader(f))
	if err != nil {
		return nil, nil, errDecorate(err, "SDFFileRead "+sdfname)
	}
	return mols, names, nil
}

//SDFStringRead reads every SDF entry in the given string. It returns one
//single-frame molecule per entry, plus the entry titles, in order.
func SDFStringRead(sdf string) ([]*Molecule, []string, error) {
	mols, names, err := sdfRead(bufio.NewReader(strings.NewReader(sdf)))
	if err != nil {
		return nil, nil, errDecorate(err, "SDFStringRead")
	}
	return mols, names, nil
}

func sdfRead(sdf *bufio.Reader) ([]*Molecule, []string, error) {
	mols := make([]*Molecule, 0, 1)
	names := make([]string, 0, 1)
	for {
		mol, name, err := sdfReadEntry(sdf)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, errDecorate(err, fmt.Sprintf("entry %d", len(mols)))
		}
		mols = append(mols, mol)
		names = append(names, name)
	}
	if len(mols) == 0 {
		return nil, nil, &CError{"gogrow: no SDF entries found", []string{"sdfRead"}}
	}
	return mols, names, nil
}

//sdfReadEntry reads one molecule. It returns io.EOF, with no error wrapping,
//if the reader runs out before any content is seen.
func sdfReadEntry(sdf *bufio.Reader) (*Molecule, string, error) {
	header := make([]string, 4)
	blank := true
	for i := range header {
		line, err := sdf.ReadString('\n')
		if err != nil && line == "" {
			if blank {
				return nil, "", io.EOF
			}
			return nil, "", &CError{"gogrow: truncated SDF entry header", []string{"sdfReadEntry"}}
		}
		header[i] = strings.TrimRight(line, "\n\r")
		if strings.TrimSpace(header[i]) != "" {
			blank = false
		}
	}
	name := strings.TrimSpace(header[0])
	counts := header[3]
	if len(counts) < 6 {
		return nil, "", &CError{fmt.Sprintf("gogrow: malformed SDF counts line %q", counts), []string{"sdfReadEntry"}}
	}
	natoms, err := strconv.Atoi(strings.TrimSpace(counts[0:3]))
	if err != nil {
		return nil, "", errDecorate(err, "sdfReadEntry counts")
	}
	nbonds, err := strconv.Atoi(strings.TrimSpace(counts[3:6]))
	if err != nil {
		return nil, "", errDecorate(err, "sdfReadEntry counts")
	}
	ats := make([]*Atom, 0, natoms)
	coords := make([]float64, 0, natoms*3)
	for i := 0; i < natoms; i++ {
		line, err := sdf.ReadString('\n')
		if err != nil && line == "" {
			return nil, "", &CError{fmt.Sprintf("gogrow: SDF atom block ends at atom %d of %d", i, natoms), []string{"sdfReadEntry"}}
		}
		if len(line) < 34 {
			return nil, "", &CError{fmt.Sprintf("gogrow: malformed SDF atom line %q", strings.TrimRight(line, "\n")), []string{"sdfReadEntry"}}
		}
		var c [3]float64
		for j := 0; j < 3; j++ {
			c[j], err = strconv.ParseFloat(strings.TrimSpace(line[j*10:(j+1)*10]), 64)
			if err != nil {
				return nil, "", errDecorate(err, fmt.Sprintf("sdfReadEntry atom %d", i))
			}
		}
		coords = append(coords, c[0], c[1], c[2])
		at := &Atom{ID: i + 1, MolID: 1, MolName: "UNL", Het: true}
		at.Symbol = strings.TrimSpace(line[31:34])
		if at.Symbol == "*" || at.Symbol == "R#" || at.Symbol == "R" {
			at.Symbol = "*"
			at.Wildcard = 1 //the label, if any, comes later in an M RGP line
		}
		//the old-style charge column, superseded by M CHG if present
		if len(line) >= 39 {
			if code, err := strconv.Atoi(strings.TrimSpace(line[36:39])); err == nil && code != 0 && code != 4 {
				at.Charge = float64(4 - code)
			}
		}
		at.Name = fmt.Sprintf("%s%d", at.Symbol, i+1)
		ats = append(ats, at)
	}
	top := NewTopology(0, 1, ats)
	for i := 0; i < nbonds; i++ {
		line, err := sdf.ReadString('\n')
		if err != nil && line == "" {
			return nil, "", &CError{fmt.Sprintf("gogrow: SDF bond block ends at bond %d of %d", i, nbonds), []string{"sdfReadEntry"}}
		}
		if len(line) < 9 {
			return nil, "", &CError{fmt.Sprintf("gogrow: malformed SDF bond line %q", strings.TrimRight(line, "\n")), []string{"sdfReadEntry"}}
		}
		a1, err1 := strconv.Atoi(strings.TrimSpace(line[0:3]))
		a2, err2 := strconv.Atoi(strings.TrimSpace(line[3:6]))
		code, err3 := strconv.Atoi(strings.TrimSpace(line[6:9]))
		if err1 != nil || err2 != nil || err3 != nil {
			return nil, "", &CError{fmt.Sprintf("gogrow: malformed SDF bond line %q", strings.TrimRight(line, "\n")), []string{"sdfReadEntry"}}
		}
		if a1 < 1 || a1 > natoms || a2 < 1 || a2 > natoms {
			return nil, "", errDecorate(&InvalidIndexError{Index: a1, N: natoms}, "sdfReadEntry bonds")
		}
		var order float64
		switch {
		case code >= 1 && code <= 3:
			order = float64(code)
		case code == 4:
			order = 1.5 //aromatic
		}
		NewBond(top.Atom(a1-1), top.Atom(a2-1), i, order)
	}
	//property block, then data items, until the entry terminator
	mcharges := false
	for {
		line, err := sdf.ReadString('\n')
		if err != nil && line == "" {
			break //a last entry without terminator is accepted
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "$$$$" {
			break
		}
		fields := strings.Fields(trimmed)
		if len(fields) < 3 || fields[0] != "M" {
			continue
		}
		//fields[2] is the pair count, the pairs themselves start at 3
		switch fields[1] {
		case "CHG":
			if !mcharges { //M CHG supersedes the charge column
				for _, at := range top.Atoms {
					at.Charge = 0
				}
				mcharges = true
			}
			for j := 3; j+1 < len(fields); j += 2 {
				idx, err1 := strconv.Atoi(fields[j])
				chg, err2 := strconv.Atoi(fields[j+1])
				if err1 != nil || err2 != nil || idx < 1 || idx > natoms {
					return nil, "", &CError{fmt.Sprintf("gogrow: malformed M CHG line %q", trimmed), []string{"sdfReadEntry"}}
				}
				top.Atom(idx - 1).Charge = float64(chg)
			}
		case "RGP":
			for j := 3; j+1 < len(fields); j += 2 {
				idx, err1 := strconv.Atoi(fields[j])
				label, err2 := strconv.Atoi(fields[j+1])
				if err1 != nil || err2 != nil || idx < 1 || idx > natoms {
					return nil, "", &CError{fmt.Sprintf("gogrow: malformed M RGP line %q", trimmed), []string{"sdfReadEntry"}}
				}
				top.Atom(idx - 1).Wildcard = label
			}
		}
	}
	var totalq int
	for _, at := range top.Atoms {
		totalq += int(at.Charge)
	}
	top.SetCharge(totalq)
	xyz, err := v3.NewMatrix(coords)
	if err != nil {
		return nil, "", errDecorate(err, "sdfReadEntry")
	}
	mol, err := NewMolecule([]*v3.Matrix{xyz}, top, nil)
	if err != nil {
		return nil, "", errDecorate(err, "sdfReadEntry")
	}
	return mol, name, nil
}

//SDFFileWrite writes mol to the file with the given name, as one SDF entry
//per frame, all with the given title. Open attachment points are written as
//R# atoms with their labels in an M RGP line.
func SDFFileWrite(sdfname string, mol *Molecule, name string) error {
	f, err := os.Create(sdfname)
	if err != nil {
		return errDecorate(err, "SDFFileWrite")
	}
	defer f.Close()
	if err := SDFWrite(f, mol, name); err != nil {
		return errDecorate(err, "SDFFileWrite "+sdfname)
	}
	return nil
}

//SDFWrite writes mol to out, as one SDF entry per frame, all with the given
//title.
func SDFWrite(out io.Writer, mol *Molecule, name string) error {
	if mol == nil || mol.Len() == 0 {
		return &CError{"gogrow: nil or empty molecule given", []string{"SDFWrite"}}
	}
	if err := mol.Corrupted(); err != nil {
		return errDecorate(err, "SDFWrite")
	}
	if mol.LenFrames() == 0 {
		return &CError{"gogrow: the molecule has no coordinates to write", []string{"SDFWrite"}}
	}
	for fr := 0; fr < mol.LenFrames(); fr++ {
		if err := sdfWriteEntry(out, mol, fr, name); err != nil {
			return errDecorate(err, "SDFWrite")
		}
	}
	return nil
}

func sdfWriteEntry(out io.Writer, mol *Molecule, frame int, name string) error {
	mol.FillIndexes()
	//bonds are collected once, from their first atom
	bonds := make([]*Bond, 0, mol.Len())
	for i := 0; i < mol.Len(); i++ {
		for _, b := range mol.Atom(i).Bonds {
			if b.At1.Index() == i {
				bonds = append(bonds, b)
			}
		}
	}
	fmt.Fprintf(out, "%s\n  gogrow          3D\n\n", name)
	fmt.Fprintf(out, "%3d%3d  0  0  0  0  0  0  0  0999 V2000\n", mol.Len(), len(bonds))
	for i := 0; i < mol.Len(); i++ {
		at := mol.Atom(i)
		sym := at.Symbol
		if at.IsWildcard() {
			sym = "R#"
		}
		c := mol.Coord(i, frame)
		_, err := fmt.Fprintf(out, "%10.4f%10.4f%10.4f %-3s 0  0  0  0  0  0  0  0  0  0  0  0\n",
			c.At(0, 0), c.At(0, 1), c.At(0, 2), sym)
		if err != nil {
			return err
		}
	}
	for _, b := range bonds {
		order := 1
		switch {
		case b.Order == 1.5:
			order = 4
		case b.Order >= 1:
			order = int(b.Order)
		}
		if _, err := fmt.Fprintf(out, "%3d%3d%3d  0\n", b.At1.Index()+1, b.At2.Index()+1, order); err != nil {
			return err
		}
	}
	charged := make([]int, 0, 2)
	wilds := make([]int, 0, 2)
	for i := 0; i < mol.Len(); i++ {
		at := mol.Atom(i)
		if q := int(at.Charge); q != 0 && float64(q) == at.Charge {
			charged = append(charged, i)
		}
		if at.IsWildcard() {
			wilds = append(wilds, i)
		}
	}
	//M lines carry at most 8 pairs each
	for i := 0; i < len(charged); i += 8 {
		end := i + 8
		if end > len(charged) {
			end = len(charged)
		}
		fmt.Fprintf(out, "M  CHG%3d", end-i)
		for _, v := range charged[i:end] {
			fmt.Fprintf(out, "%4d%4d", v+1, int(mol.Atom(v).Charge))
		}
		fmt.Fprint(out, "\n")
	}
	for i := 0; i < len(wilds); i += 8 {
		end := i + 8
		if end > len(wilds) {
			end = len(wilds)
		}
		fmt.Fprintf(out, "M  RGP%3d", end-i)
		for _, v := range wilds[i:end] {
			fmt.Fprintf(out, "%4d%4d", v+1, mol.Atom(v).Wildcard)
		}
		fmt.Fprint(out, "\n")
	}
	_, err := fmt.Fprint(out, "M  END\n$$$$\n")
	return err
}
