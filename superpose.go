/*
 * superpose.go, part of gogrow.
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

	v3 "github.com/rmera/gogrow/v3"
	"gonum.org/v1/gonum/mat"
)

//centroid returns the center of geometry of m as a 1x3 matrix.
func centroid(m *v3.Matrix) *v3.Matrix {
	c := v3.Zeros(1)
	for i := 0; i < m.NVecs(); i++ {
		//Call through the embedded Dense so gonum sees that the receiver
		//aliases the first argument instead of panicking on the wrapper.
		c.Dense.Add(c.Dense, m.VecView(i).Dense)
	}
	c.Dense.Scale(1.0/float64(m.NVecs()), c.Dense)
	return c
}

func seqlist(n int) []int {
	l := make([]int, n)
	for i := range l {
		l[i] = i
	}
	return l
}

//Super superimposes the molecule in test over the one in templa, using the
//Kabsch algorithm on the atom pairs given by testlst and templalst: the ith
//atom of testlst is matched to the ith atom of templalst. A nil list means
//all the atoms of the corresponding molecule, in order. The whole test
//molecule is rotated and translated by the transformation obtained from the
//pairs, and returned as a new matrix. Neither input is modified.
func Super(test, templa *v3.Matrix, testlst, templalst []int) (*v3.Matrix, error) {
	if testlst == nil {
		testlst = seqlist(test.NVecs())
	}
	if templalst == nil {
		templalst = seqlist(templa.NVecs())
	}
	if len(testlst) != len(templalst) {
		return nil, &CError{fmt.Sprintf("gogrow: %d atoms to superimpose on %d", len(testlst), len(templalst)), []string{"Super"}}
	}
	if len(testlst) == 0 {
		return nil, &CError{"gogrow: no atoms to superimpose", []string{"Super"}}
	}
	n := len(testlst)
	ctest := v3.Zeros(n)
	ctest.SomeVecs(test, testlst)
	ctempla := v3.Zeros(n)
	ctempla.SomeVecs(templa, templalst)
	tc := centroid(ctest)
	qc := centroid(ctempla)
	ctest.SubVec(ctest, tc)
	ctempla.SubVec(ctempla, qc)
	//the covariance of the centered pairs, and its SVD
	H := mat.NewDense(3, 3, nil)
	H.Mul(ctest.T(), ctempla.Dense)
	var svd mat.SVD
	if ok := svd.Factorize(H, mat.SVDFull); !ok {
		return nil, &CError{"gogrow: SVD failed during superposition", []string{"Super"}}
	}
	var U, V mat.Dense
	svd.UTo(&U)
	svd.VTo(&V)
	d := 1.0
	if mat.Det(&U)*mat.Det(&V) < 0 {
		d = -1 //a reflection must not sneak in as a rotation
	}
	UD := mat.NewDense(3, 3, nil)
	UD.Mul(&U, mat.NewDiagDense(3, []float64{1, 1, d}))
	rot := mat.NewDense(3, 3, nil)
	rot.Mul(UD, V.T())
	//rotate the whole test molecule about the centroid of its matched atoms,
	//then bring it to the centroid of the template's.
	full := v3.Zeros(test.NVecs())
	full.SubVec(test, tc)
	rotated := v3.Zeros(test.NVecs())
	rotated.Mul(full, rot)
	rotated.AddVec(rotated, qc)
	return rotated, nil
}

//RMSD returns the root mean square deviation between the coordinates in a
//and b, with no superposition performed. Index lists restrict the comparison
//to subsets: the first list selects from a, the second from b. One list
//selects the same atoms from both. The matched subsets must have the same
//number of atoms.
func RMSD(a, b *v3.Matrix, lists ...[]int) (float64, error) {
	la, lb := a, b
	if len(lists) > 0 && lists[0] != nil {
		la = v3.Zeros(len(lists[0]))
		la.SomeVecs(a, lists[0])
		blist := lists[0]
		if len(lists) > 1 && lists[1] != nil {
			blist = lists[1]
		}
		lb = v3.Zeros(len(blist))
		lb.SomeVecs(b, blist)
	}
	if la.NVecs() != lb.NVecs() {
		return -1, &CError{fmt.Sprintf("gogrow: RMSD between %d and %d atoms", la.NVecs(), lb.NVecs()), []string{"RMSD"}}
	}
	if la.NVecs() == 0 {
		return -1, &CError{"gogrow: no atoms to compare", []string{"RMSD"}}
	}
	t := v3.Zeros(la.NVecs())
	t.Sub(la, lb)
	return t.Norm(2) / math.Sqrt(float64(la.NVecs())), nil
}
