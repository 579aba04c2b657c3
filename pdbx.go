/*
 * pdbx.go, part of gogrow.
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
	"path/filepath"
	"strconv"
	"strings"

	v3 "github.com/rmera/gogrow/v3"
)

//mmCIF (PDBx) reading and writing. The PDB distributes structures in this
//format now, so receptors often arrive as cif files. Only the _atom_site
//loop is interpreted; everything else in the file is skipped.

//the tags of the _atom_site loop go in the column map without their
//category prefix, lowercased
const atomSiteTag = "_atom_site."

//cifFields splits an mmCIF data row. Values containing spaces come quoted,
//so a plain strings.Fields won't do. A quote only closes the value when
//followed by whitespace, which lets primes in atom names through.
func cifFields(s string) []string {
	isSpace := func(b byte) bool {
		return b == ' ' || b == '\t' || b == '\n' || b == '\r'
	}
	fields := make([]string, 0, 16)
	i := 0
	for i < len(s) {
		for i < len(s) && isSpace(s[i]) {
			i++
		}
		if i >= len(s) {
			break
		}
		if s[i] == '\'' || s[i] == '"' {
			q := s[i]
			j := i + 1
			for j < len(s) && !(s[j] == q && (j+1 == len(s) || isSpace(s[j+1]))) {
				j++
			}
			fields = append(fields, s[i+1:j])
			i = j + 1
			continue
		}
		j := i
		for j < len(s) && !isSpace(s[j]) {
			j++
		}
		fields = append(fields, s[i:j])
		i = j
	}
	return fields
}

//pdbxValue returns the value of the first of the given columns present in
//the row, with the mmCIF null placeholders "." and "?" read as absent.
func pdbxValue(fields []string, cols map[string]int, tags ...string) string {
	for _, t := range tags {
		if i, ok := cols[t]; ok && i < len(fields) {
			if v := fields[i]; v != "." && v != "?" {
				return v
			}
		}
	}
	return ""
}

//pdbxAtom builds an atom from one row of the _atom_site loop. The auth_*
//tags are preferred, falling back to the label_* ones, which is all some
//minimal files carry.
func pdbxAtom(fields []string, cols map[string]int) (*Atom, error) {
	at := new(Atom)
	at.Symbol = pdbxValue(fields, cols, "type_symbol")
	at.Name = pdbxValue(fields, cols, "auth_atom_id", "label_atom_id")
	if at.Symbol == "" {
		at.Symbol, _ = symbolFromName(at.Name) //a failed guess just leaves it empty
	}
	at.MolName = pdbxValue(fields, cols, "auth_comp_id", "label_comp_id")
	at.Chain = pdbxValue(fields, cols, "auth_asym_id", "label_asym_id")
	at.Het = pdbxValue(fields, cols, "group_pdb") != "ATOM"
	var err error
	if v := pdbxValue(fields, cols, "id"); v != "" {
		if at.ID, err = strconv.Atoi(v); err != nil {
			return nil, errDecorate(err, "pdbxAtom id")
		}
	}
	if v := pdbxValue(fields, cols, "auth_seq_id", "label_seq_id"); v != "" {
		if at.MolID, err = strconv.Atoi(v); err != nil {
			return nil, errDecorate(err, "pdbxAtom residue number")
		}
	}
	//occupancy and charge are read leniently, files missing them still parse
	if v := pdbxValue(fields, cols, "occupancy"); v != "" {
		at.Occupancy, _ = strconv.ParseFloat(v, 64)
	}
	if v := pdbxValue(fields, cols, "pdbx_formal_charge"); v != "" {
		at.Charge, _ = strconv.ParseFloat(v, 64)
	}
	at.Mass = symbolMass[at.Symbol]
	return at, nil
}

//pdbxCoords extracts the coordinates and b-factor of one row. The
//coordinates are the one thing a usable row can not lack.
func pdbxCoords(fields []string, cols map[string]int) ([3]float64, float64, error) {
	var xyz [3]float64
	for i, tag := range []string{"cartn_x", "cartn_y", "cartn_z"} {
		k, ok := cols[tag]
		if !ok || k >= len(fields) {
			return xyz, 0, &CError{"gogrow: the _atom_site loop misses " + tag, []string{"pdbxCoords"}}
		}
		v, err := strconv.ParseFloat(fields[k], 64)
		if err != nil {
			return xyz, 0, errDecorate(err, "pdbxCoords")
		}
		xyz[i] = v
	}
	var bfac float64
	if k, ok := cols["b_iso_or_equiv"]; ok && k < len(fields) {
		bfac, _ = strconv.ParseFloat(fields[k], 64)
	}
	return xyz, bfac, nil
}

//PDBXFileRead reads the mmCIF file with the given name.
func PDBXFileRead(name string) (*Molecule, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, errDecorate(err, "PDBXFileRead")
	}
	defer f.Close()
	mol, err := PDBXRead(f)
	if err != nil {
		return nil, errDecorate(err, "PDBXFileRead "+name)
	}
	return mol, nil
}

//PDBXRead reads an mmCIF (PDBx) structure from in. As with PDBRead,
//several models become frames of the same molecule, with the atom data
//other than coordinates and b-factors taken from the first one.
func PDBXRead(in io.Reader) (*Molecule, error) {
	buf := bufio.NewReader(in)
	cols := make(map[string]int)
	ats := make([]*Atom, 0, 100)
	coords := [][]float64{make([]float64, 0, 300)}
	bfacs := [][]float64{make([]float64, 0, 100)}
	firstModel := true
	currentModel := 0
	var inHeader, inData bool
reading:
	for {
		line, err := buf.ReadString('\n')
		if err != nil && line == "" {
			break
		}
		t := strings.TrimSpace(line)
		low := strings.ToLower(t)
		switch {
		case t == "" || strings.HasPrefix(t, "#"):
			if inData {
				break reading
			}
		case strings.HasPrefix(low, atomSiteTag):
			if inData {
				break reading //a fresh header after data rows is another category's
			}
			if f := strings.Fields(strings.TrimPrefix(low, atomSiteTag)); len(f) > 0 {
				cols[f[0]] = len(cols)
			}
			inHeader = true
		case strings.HasPrefix(t, "_") || strings.HasPrefix(t, ";") ||
			strings.HasPrefix(low, "loop_") || strings.HasPrefix(low, "data_"):
			//_atom_site_anisotrop and friends end the loop too
			if inHeader || inData {
				break reading
			}
		default:
			if !inHeader && !inData {
				continue //some other category's values
			}
			inHeader, inData = false, true
			fields := cifFields(t)
			if k, ok := cols["pdbx_pdb_model_num"]; ok && k < len(fields) {
				model, err := strconv.Atoi(fields[k])
				if err != nil {
					return nil, &CError{fmt.Sprintf("gogrow: can't read the model number from %q", fields[k]), []string{"PDBXRead"}}
				}
				if currentModel == 0 {
					currentModel = model
				} else if model != currentModel {
					firstModel = false
					coords = append(coords, make([]float64, 0, len(coords[0])))
					bfacs = append(bfacs, make([]float64, 0, len(bfacs[0])))
					currentModel = model
				}
			}
			xyz, bfac, err := pdbxCoords(fields, cols)
			if err != nil {
				return nil, errDecorate(err, "PDBXRead")
			}
			if firstModel {
				at, err := pdbxAtom(fields, cols)
				if err != nil {
					return nil, errDecorate(err, fmt.Sprintf("PDBXRead atom %d", len(ats)+1))
				}
				at.Bfactor = bfac
				ats = append(ats, at)
			}
			c := len(coords) - 1
			coords[c] = append(coords[c], xyz[0], xyz[1], xyz[2])
			bfacs[c] = append(bfacs[c], bfac)
		}
	}
	if len(ats) == 0 {
		return nil, &CError{"gogrow: no _atom_site records found", []string{"PDBXRead"}}
	}
	mcoords := make([]*v3.Matrix, 0, len(coords))
	for _, v := range coords {
		m, err := v3.NewMatrix(v)
		if err != nil {
			return nil, errDecorate(err, "PDBXRead")
		}
		mcoords = append(mcoords, m)
	}
	mol, err := NewMolecule(mcoords, NewTopology(0, 1, ats), bfacs)
	if err != nil {
		return nil, errDecorate(err, "PDBXRead")
	}
	return mol, nil
}

//"." is the mmCIF placeholder for an absent value, and values with odd
//characters need quoting
func cifValue(s string) string {
	switch {
	case s == "":
		return "."
	case strings.Contains(s, "'"):
		return `"` + s + `"`
	case strings.ContainsAny(s, ` "`):
		return "'" + s + "'"
	}
	return s
}

//PDBXFileWrite writes the given frames as an mmCIF file with the given
//name, one model per frame. bfact can be nil, in which case the b-factors
//stored in the atoms are used.
func PDBXFileWrite(name string, coords []*v3.Matrix, mol Atomer, bfact [][]float64) error {
	f, err := os.Create(name)
	if err != nil {
		return errDecorate(err, "PDBXFileWrite")
	}
	defer f.Close()
	block := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	if err := PDBXWrite(f, coords, mol, bfact, block); err != nil {
		return errDecorate(err, "PDBXFileWrite "+name)
	}
	return nil
}

//PDBXWrite writes coordinates and atoms to out as an mmCIF data block with
//the given name, holding a single _atom_site loop with one row per atom
//per frame.
func PDBXWrite(out io.Writer, coords []*v3.Matrix, mol Atomer, bfact [][]float64, name string) error {
	if len(coords) == 0 || mol == nil {
		return &CError{"gogrow: nil coordinates or atoms given", []string{"PDBXWrite"}}
	}
	if name == "" {
		name = "gogrow"
	}
	if _, err := fmt.Fprintf(out, "data_%s\n#\nloop_\n", name); err != nil {
		return errDecorate(err, "PDBXWrite")
	}
	for _, tag := range []string{"group_PDB", "id", "type_symbol", "auth_atom_id",
		"auth_comp_id", "auth_asym_id", "auth_seq_id", "occupancy",
		"pdbx_formal_charge", "B_iso_or_equiv", "pdbx_PDB_model_num",
		"Cartn_x", "Cartn_y", "Cartn_z"} {
		fmt.Fprintf(out, "%s%s\n", atomSiteTag, tag)
	}
	for m, v := range coords {
		if v.NVecs() != mol.Len() {
			return &CError{fmt.Sprintf("gogrow: frame %d has %d coordinates for %d atoms", m, v.NVecs(), mol.Len()), []string{"PDBXWrite"}}
		}
		for i := 0; i < mol.Len(); i++ {
			a := mol.Atom(i)
			het := "ATOM"
			if a.Het {
				het = "HETATM"
			}
			bf := a.Bfactor
			if len(bfact) > m && len(bfact[m]) > i {
				bf = bfact[m][i]
			}
			_, err := fmt.Fprintf(out, "%s %d %s %s %s %s %d %4.2f %3.1f %6.3f %d %8.3f %8.3f %8.3f\n",
				het, a.ID, cifValue(a.Symbol), cifValue(a.Name), cifValue(a.MolName),
				cifValue(a.Chain), a.MolID, a.Occupancy, a.Charge, bf, m+1,
				v.At(i, 0), v.At(i, 1), v.At(i, 2))
			if err != nil {
				return errDecorate(err, "PDBXWrite")
			}
		}
	}
	fmt.Fprint(out, "#\n")
	return nil
}
