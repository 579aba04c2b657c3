/*
 * superpose_test.go, part of gogrow.
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
	"math"
	"testing"

	v3 "github.com/rmera/gogrow/v3"
)

//returns a copy of m rotated 90 degrees about the z axis and shifted by
//(dx, dy, dz).
func rotZShift(m *v3.Matrix, dx, dy, dz float64) *v3.Matrix {
	r := v3.Zeros(m.NVecs())
	for i := 0; i < m.NVecs(); i++ {
		x, y, z := m.At(i, 0), m.At(i, 1), m.At(i, 2)
		r.Set(i, 0, -y+dx)
		r.Set(i, 1, x+dy)
		r.Set(i, 2, z+dz)
	}
	return r
}

func TestSuper(Te *testing.T) {
	orig, err := v3.NewMatrix([]float64{
		0, 0, 0,
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	})
	if err != nil {
		Te.Fatal(err)
	}
	moved := rotZShift(orig, 1, 2, 3)
	back, err := Super(moved, orig, nil, nil)
	if err != nil {
		Te.Fatal(err)
	}
	d, err := RMSD(back, orig)
	if err != nil {
		Te.Fatal(err)
	}
	if d > 1e-6 {
		Te.Errorf("superposition left an RMSD of %g", d)
	}
	fmt.Println("RMSD after superposition:", d)
}

func TestRMSD(Te *testing.T) {
	a := v3.Zeros(2)
	b := v3.Zeros(2)
	b.Set(0, 0, 1)
	d, err := RMSD(a, b)
	if err != nil {
		Te.Fatal(err)
	}
	if math.Abs(d-math.Sqrt(0.5)) > 1e-10 {
		Te.Errorf("RMSD %g, want %g", d, math.Sqrt(0.5))
	}
	//restricted to the second atom, the sets are identical
	d, err = RMSD(a, b, []int{1})
	if err != nil {
		Te.Fatal(err)
	}
	if d != 0 {
		Te.Errorf("subset RMSD %g, want 0", d)
	}
	if _, err = RMSD(a, b, []int{0}, []int{0, 1}); err == nil {
		Te.Error("mismatched subsets did not fail")
	}
}

func TestAlignFrames(Te *testing.T) {
	mol := testMol(Te, []string{"C", "C", "C", "C"}, nil, []tbond{{0, 1, 1}, {1, 2, 1}, {2, 3, 1}})
	for i := 0; i < mol.Len(); i++ {
		mol.Coords[0].Set(i, 0, float64(i))
		mol.Coords[0].Set(i, 1, float64(i*i))
	}
	if err := mol.AddFrame(rotZShift(mol.Coords[0], -2, 5, 1)); err != nil {
		Te.Fatal(err)
	}
	if err := AlignFrames(mol, nil); err != nil {
		Te.Fatal(err)
	}
	d, err := RMSD(mol.Coords[1], mol.Coords[0])
	if err != nil {
		Te.Fatal(err)
	}
	if d > 1e-6 {
		Te.Errorf("frames still %g apart after alignment", d)
	}
}

func TestFilterConformers(Te *testing.T) {
	mol := testMol(Te, []string{"C"}, nil, nil)
	for _, x := range []float64{0.1, 1.0, 1.05, 2.0} {
		c := v3.Zeros(1)
		c.Set(0, 0, x)
		if err := mol.AddFrame(c); err != nil {
			Te.Fatal(err)
		}
	}
	dropped, err := FilterConformers(mol, 0.5, nil)
	if err != nil {
		Te.Fatal(err)
	}
	if dropped != 2 || mol.LenFrames() != 3 {
		Te.Fatalf("dropped %d frames leaving %d, want 2 and 3", dropped, mol.LenFrames())
	}
	want := []float64{0, 1.0, 2.0}
	for i, x := range want {
		if got := mol.Coord(0, i).At(0, 0); math.Abs(got-x) > 1e-10 {
			Te.Errorf("frame %d at x=%g, want %g", i, got, x)
		}
	}
}

func TestHeavyIndexes(Te *testing.T) {
	mol := testMol(Te, []string{"C", "H", "O", "H"}, map[int]int{3: 1}, []tbond{{0, 1, 1}, {0, 2, 1}, {0, 3, 1}})
	heavy := HeavyIndexes(mol)
	if len(heavy) != 2 || heavy[0] != 0 || heavy[1] != 2 {
		Te.Errorf("heavy atoms %v, want [0 2]", heavy)
	}
}

func TestEnergyOrdering(Te *testing.T) {
	mol := testMol(Te, []string{"C"}, nil, nil)
	for i := 1; i < 4; i++ {
		c := v3.Zeros(1)
		c.Set(0, 0, float64(i)) //each frame marked by its original position
		if err := mol.AddFrame(c); err != nil {
			Te.Fatal(err)
		}
	}
	energies := []float64{3.0, 0.5, 10.0, 1.2}
	sorted, err := SortFramesByEnergy(mol, energies)
	if err != nil {
		Te.Fatal(err)
	}
	wantE := []float64{0.5, 1.2, 3.0, 10.0}
	wantMark := []float64{1, 3, 0, 2}
	for i := range wantE {
		if sorted[i] != wantE[i] {
			Te.Errorf("sorted energies %v, want %v", sorted, wantE)
			break
		}
		if got := mol.Coord(0, i).At(0, 0); got != wantMark[i] {
			Te.Errorf("frame %d carries marker %g, want %g", i, got, wantMark[i])
		}
	}
	//a 5 kcal/mol window keeps everything but the 10.0 frame
	kept, err := EnergyWindow(mol, sorted, 5)
	if err != nil {
		Te.Fatal(err)
	}
	if len(kept) != 3 || mol.LenFrames() != 3 {
		Te.Fatalf("window kept %d energies and %d frames, want 3 and 3", len(kept), mol.LenFrames())
	}
	if kept[len(kept)-1] != 3.0 {
		Te.Errorf("highest kept energy %g, want 3.0", kept[len(kept)-1])
	}
}
