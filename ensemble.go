/*
 * ensemble.go, part of gogrow.
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
	"fmt"
	"sort"
)

//Operations on the frames of a molecule taken as a conformer ensemble.

//HeavyIndexes returns the indexes of the atoms of mol that are neither
//hydrogens nor open attachment points.
func HeavyIndexes(mol Atomer) []int {
	ret := make([]int, 0, mol.Len())
	for i := 0; i < mol.Len(); i++ {
		at := mol.Atom(i)
		if at.Symbol != "H" && !at.IsWildcard() {
			ret = append(ret, i)
		}
	}
	return ret
}

//AlignFrames superimposes every frame of mol on the first one, using the
//atoms in lst for the fitting (nil means all atoms). The usual choice for
//lst is the scaffold atoms, so the grown parts can be compared in a common
//reference.
func AlignFrames(mol *Molecule, lst []int) error {
	for i := 1; i < mol.LenFrames(); i++ {
		r, err := Super(mol.Coords[i], mol.Coords[0], lst, lst)
		if err != nil {
			return errDecorate(err, fmt.Sprintf("AlignFrames, frame %d", i))
		}
		mol.Coords[i] = r
	}
	return nil
}

//FilterConformers removes from mol every frame closer than minRMSD to a
//frame kept before it, comparing the atoms in lst (nil means all atoms).
//The first frame is always kept. It returns the number of frames removed.
//The frames are expected to be in a common reference, as AlignFrames
//leaves them.
func FilterConformers(mol *Molecule, minRMSD float64, lst []int) (int, error) {
	if minRMSD <= 0 || mol.LenFrames() < 2 {
		return 0, nil
	}
	kept := []int{0}
	for i := 1; i < mol.LenFrames(); i++ {
		keep := true
		for _, k := range kept {
			d, err := RMSD(mol.Coords[i], mol.Coords[k], lst)
			if err != nil {
				return 0, errDecorate(err, "FilterConformers")
			}
			if d < minRMSD {
				keep = false
				break
			}
		}
		if keep {
			kept = append(kept, i)
		}
	}
	dropped := mol.LenFrames() - len(kept)
	if dropped > 0 {
		if err := mol.KeepFrames(kept); err != nil {
			return 0, errDecorate(err, "FilterConformers")
		}
	}
	return dropped, nil
}

//SortFramesByEnergy reorders the frames of mol from the lowest to the
//highest of the given energies, which must have one value per frame. It
//returns the energies in the new frame order.
func SortFramesByEnergy(mol *Molecule, energies []float64) ([]float64, error) {
	if len(energies) != mol.LenFrames() {
		return nil, &CError{fmt.Sprintf("gogrow: %d energies given for %d frames", len(energies), mol.LenFrames()), []string{"SortFramesByEnergy"}}
	}
	order := seqlist(len(energies))
	sort.SliceStable(order, func(i, j int) bool { return energies[order[i]] < energies[order[j]] })
	sorted := make([]float64, len(order))
	for i, v := range order {
		sorted[i] = energies[v]
	}
	if err := mol.KeepFrames(order); err != nil {
		return nil, errDecorate(err, "SortFramesByEnergy")
	}
	return sorted, nil
}

//EnergyWindow sorts the frames of mol by energy and discards those more
//than window energy units above the most stable one. It returns the
//energies of the surviving frames, sorted.
func EnergyWindow(mol *Molecule, energies []float64, window float64) ([]float64, error) {
	sorted, err := SortFramesByEnergy(mol, energies)
	if err != nil {
		return nil, errDecorate(err, "EnergyWindow")
	}
	cut := len(sorted)
	for i, v := range sorted {
		if v-sorted[0] > window {
			cut = i
			break
		}
	}
	if cut < len(sorted) {
		if err := mol.KeepFrames(seqlist(cut)); err != nil {
			return nil, errDecorate(err, "EnergyWindow")
		}
		sorted = sorted[:cut]
	}
	return sorted, nil
}
