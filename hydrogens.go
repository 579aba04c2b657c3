/*
 * hydrogens.go, part of gogrow.
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
	"os"
	"os/exec"
	"strconv"

	v3 "github.com/rmera/gogrow/v3"
)

//Protonate uses Open Babel (openbabel.org) to add hydrogens to a
//molecule at the given pH. A pH of 0 or less means the physiological
//7.4. Open Babel's messages go to report, or to a file called
//Protonate.log in the current dir if report is nil. The obabel
//executable must be in the PATH. The returned molecule has the
//hydrogens appended and no bond information, so AssignBonds is needed
//if bonds are to be used afterwards.
func Protonate(mol Atomer, coords *v3.Matrix, ph float64, report *bufio.Writer) (*Molecule, error) {
	pdb, err := PDBStringWrite(coords, mol, nil)
	if err != nil {
		return nil, errDecorate(err, "Protonate")
	}
	if ph <= 0 {
		ph = 7.4
	}
	obabel := exec.Command("obabel", "-ipdb", "-opdb", "-p", strconv.FormatFloat(ph, 'f', 1, 64))
	inp, err := obabel.StdinPipe()
	if err != nil {
		return nil, err
	}
	out, err := obabel.StdoutPipe()
	if err != nil {
		return nil, err
	}
	out2, err := obabel.StderrPipe()
	if err != nil {
		return nil, err
	}
	if err := obabel.Start(); err != nil {
		return nil, err
	}
	binp := bufio.NewWriter(inp)
	if _, err := binp.WriteString(pdb); err != nil {
		return nil, err
	}
	if err := binp.Flush(); err != nil {
		return nil, err
	}
	inp.Close()
	if report == nil {
		rep, err := os.Create("Protonate.log")
		if err != nil {
			return nil, err
		}
		defer rep.Close()
		report = bufio.NewWriter(rep)
	}
	mol2, err := PDBRead(out)
	if err != nil {
		return nil, errDecorate(err, "Protonate")
	}
	if _, err := report.ReadFrom(out2); err != nil {
		return mol2, err
	}
	report.Flush()
	//obabel reports the conversion count on stderr and can exit 1 even
	//when the molecule came out fine.
	if err := obabel.Wait(); err != nil && err.Error() != "exit status 1" {
		return nil, err
	}
	return mol2, nil
}

//FixReceptor uses PDBFixer (github.com/openmm/pdbfixer) to prepare a
//protein for the growing run: it completes missing atoms and residues,
//replaces non-standard residues, strips heterogens and protonates at
//the given pH (0 or less means 7.4). It reads the protein from the
//pdbname file and writes the result to fixedname. The pdbfixer
//executable must be in the PATH.
func FixReceptor(pdbname, fixedname string, ph float64) error {
	if ph <= 0 {
		ph = 7.4
	}
	fixer := exec.Command("pdbfixer", pdbname,
		"--output="+fixedname,
		"--add-atoms=all",
		"--replace-nonstandard",
		"--add-residues",
		"--keep-heterogens=none",
		"--ph="+strconv.FormatFloat(ph, 'f', 1, 64))
	out, err := fixer.CombinedOutput()
	if err != nil {
		return &CError{fmt.Sprintf("gogrow: pdbfixer failed: %s: %s", err.Error(), string(out)), []string{"FixReceptor"}}
	}
	return nil
}
