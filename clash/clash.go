// Package clash finds and prunes ligand conformers that run into the
// receptor.
package clash

import (
	grow "github.com/rmera/gogrow"
	v3 "github.com/rmera/gogrow/v3"
)

// Conformers that get any heavy atom closer than this (in A) to a receptor
// heavy atom are considered clashing.
const DefaultCutoff = 1.0

// LowestDist returns the smallest distance between any point of test and
// any point of clash, and the pair of indexes where it happens.
func LowestDist(test, clash *v3.Matrix) (dist float64, indexes [2]int) {
	dist = 999999999999999
	dvec := v3.Zeros(1)
	dt := 0.0
	var a1, a2 *v3.Matrix
	for i := 0; i < test.NVecs(); i++ {
		for j := 0; j < clash.NVecs(); j++ {
			a1 = test.VecView(i)
			a2 = clash.VecView(j)
			dvec.SubVec(a1, a2)
			dt = dvec.Norm(2)
			if dt < dist {
				dist = dt
				indexes[0] = i
				indexes[1] = j
			}
		}
	}
	return
}

// Clashing returns whether any point of test comes closer than cutoff to a
// point of clash. A cutoff of 0 or less means the default.
func Clashing(test, clash *v3.Matrix, cutoff float64) bool {
	if cutoff <= 0 {
		cutoff = DefaultCutoff
	}
	d, _ := LowestDist(test, clash)
	return d < cutoff
}

// picks the rows of coord for the atoms in list
func someCoords(coord *v3.Matrix, list []int) *v3.Matrix {
	ret := v3.Zeros(len(list))
	ret.SomeVecs(coord, list)
	return ret
}

// KeptFrames returns the frames of lig where no heavy atom comes closer
// than cutoff to a heavy atom of the receptor, using the receptor's first
// frame. A cutoff of 0 or less means the default. Hydrogens and open
// attachment points are ignored on both sides; with no heavy atoms to
// compare on either side every frame is kept. lig is not modified.
func KeptFrames(lig, rec *grow.Molecule, cutoff float64) []int {
	if cutoff <= 0 {
		cutoff = DefaultCutoff
	}
	kept := make([]int, 0, lig.LenFrames())
	ligheavy := grow.HeavyIndexes(lig)
	recheavy := grow.HeavyIndexes(rec)
	if len(ligheavy) == 0 || len(recheavy) == 0 {
		for i := 0; i < lig.LenFrames(); i++ {
			kept = append(kept, i)
		}
		return kept
	}
	reccoord := someCoords(rec.Coords[0], recheavy)
	for i := 0; i < lig.LenFrames(); i++ {
		if !Clashing(someCoords(lig.Coords[i], ligheavy), reccoord, cutoff) {
			kept = append(kept, i)
		}
	}
	return kept
}

// RemoveClashing removes from lig every frame where a heavy atom of the
// ligand comes closer than cutoff to a heavy atom of the receptor, using
// the receptor's first frame. A cutoff of 0 or less means the default.
// It returns the number of frames removed. Hydrogens and open attachment
// points are ignored on both sides.
func RemoveClashing(lig, rec *grow.Molecule, cutoff float64) (int, error) {
	kept := KeptFrames(lig, rec, cutoff)
	dropped := lig.LenFrames() - len(kept)
	if dropped > 0 {
		if err := lig.KeepFrames(kept); err != nil {
			return 0, err
		}
	}
	return dropped, nil
}
