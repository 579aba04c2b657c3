/*
 * xyz.go, part of gogrow.
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

//XYZFileRead reads the XYZ file with the given name. Files with several
//concatenated geometries, as conformer generators produce, come out as one
//molecule with one frame per geometry. The atoms are taken from the first
//geometry, the remaining ones only contribute coordinates.
func XYZFileRead(xyzname string) (*Molecule, error) {
	f, err := os.Open(xyzname)
	if err != nil {
		return nil, errDecorate(err, "XYZFileRead")
	}
	defer f.Close()
	xyz := bufio.NewReader(f)
	var ats []*Atom
	coords := make([]*v3.Matrix, 0, 1)
	for {
		frame, symbols, err := xyzReadFrame(xyz)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errDecorate(err, "XYZFileRead "+xyzname)
		}
		if ats == nil {
			ats = make([]*Atom, 0, len(symbols))
			for i, s := range symbols {
				ats = append(ats, &Atom{ID: i + 1, Symbol: s, Mass: symbolMass[s]})
			}
		} else if len(symbols) != len(ats) {
			return nil, &CError{fmt.Sprintf("gogrow: geometry %d of %s has %d atoms, the first had %d", len(coords), xyzname, len(symbols), len(ats)), []string{"XYZFileRead"}}
		}
		coords = append(coords, frame)
	}
	if len(coords) == 0 {
		return nil, &CError{"gogrow: no geometries found in " + xyzname, []string{"XYZFileRead"}}
	}
	mol, err := NewMolecule(coords, NewTopology(0, 1, ats), nil)
	if err != nil {
		return nil, errDecorate(err, "XYZFileRead")
	}
	return mol, nil
}

//xyzReadFrame reads one natoms/comment/coordinates block. It returns io.EOF
//if the reader runs out before a block starts.
func xyzReadFrame(xyz *bufio.Reader) (*v3.Matrix, []string, error) {
	line := ""
	for strings.TrimSpace(line) == "" {
		var err error
		line, err = xyz.ReadString('\n')
		if err != nil && strings.TrimSpace(line) == "" {
			return nil, nil, io.EOF
		}
	}
	natoms, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return nil, nil, &CError{fmt.Sprintf("gogrow: malformed XYZ atom count line %q", strings.TrimSpace(line)), []string{"xyzReadFrame"}}
	}
	if _, err := xyz.ReadString('\n'); err != nil {
		return nil, nil, &CError{"gogrow: XYZ block truncated at the comment line", []string{"xyzReadFrame"}}
	}
	symbols := make([]string, 0, natoms)
	coords := make([]float64, 0, natoms*3)
	for i := 0; i < natoms; i++ {
		line, err := xyz.ReadString('\n')
		if err != nil && strings.TrimSpace(line) == "" {
			return nil, nil, &CError{fmt.Sprintf("gogrow: XYZ block ends at atom %d of %d", i, natoms), []string{"xyzReadFrame"}}
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			return nil, nil, &CError{fmt.Sprintf("gogrow: malformed XYZ line %q", strings.TrimSpace(line)), []string{"xyzReadFrame"}}
		}
		symbols = append(symbols, fields[0])
		for j := 1; j <= 3; j++ {
			c, err := strconv.ParseFloat(fields[j], 64)
			if err != nil {
				return nil, nil, errDecorate(err, fmt.Sprintf("xyzReadFrame atom %d", i))
			}
			coords = append(coords, c)
		}
	}
	frame, err := v3.NewMatrix(coords)
	if err != nil {
		return nil, nil, errDecorate(err, "xyzReadFrame")
	}
	return frame, symbols, nil
}

//XYZFileWrite writes the given coordinates and atoms in XYZ format to a file
//with the given name, which is overwritten if it exists.
func XYZFileWrite(xyzname string, Coords *v3.Matrix, mol Atomer) error {
	f, err := os.Create(xyzname)
	if err != nil {
		return errDecorate(err, "XYZFileWrite")
	}
	defer f.Close()
	if err := XYZWrite(f, Coords, mol); err != nil {
		return errDecorate(err, "XYZFileWrite "+xyzname)
	}
	return nil
}

//XYZWrite writes the given coordinates and atoms in XYZ format to out.
func XYZWrite(out io.Writer, Coords *v3.Matrix, mol Atomer) error {
	if Coords == nil || mol == nil {
		return &CError{"gogrow: nil coordinates or atoms given", []string{"XYZWrite"}}
	}
	if Coords.NVecs() != mol.Len() {
		return &CError{fmt.Sprintf("gogrow: %d coordinates given for %d atoms", Coords.NVecs(), mol.Len()), []string{"XYZWrite"}}
	}
	fmt.Fprintf(out, "%-4d\n\n", mol.Len())
	for i := 0; i < mol.Len(); i++ {
		_, err := fmt.Fprintf(out, "%-2s  %12.6f%12.6f%12.6f\n", mol.Atom(i).Symbol,
			Coords.At(i, 0), Coords.At(i, 1), Coords.At(i, 2))
		if err != nil {
			return errDecorate(err, "XYZWrite")
		}
	}
	return nil
}
