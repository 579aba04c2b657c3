/*
 * gocoords.go, part of gogrow.
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

package v3

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"
)

//METHODS

//NVecs returns the number of vecs in F. Panics if the matrix doesn't have 3 columns.
func (F *Matrix) NVecs() int {
	r, c := F.Dims()
	if c != 3 {
		panic(ErrNotXx3Matrix)
	}
	return r
}

//Len returns the number of vecs in F. It is an alias for NVecs, so Matrix
//can satisfy interfaces that expect a length.
func (F *Matrix) Len() int {
	return F.NVecs()
}

//SomeVecs puts in the receiver a matrix contaning all the ith vectors of matrix A,
//where i are the numbers in clist. The vectors are in the same order
//than the clist.
func (F *Matrix) SomeVecs(A *Matrix, clist []int) {
	ar, ac := A.Dims()
	fr, fc := F.Dims()
	if ac != fc || fr != len(clist) || ar < len(clist) {
		panic(ErrShape)
	}
	for key, val := range clist {
		for j := 0; j < ac; j++ {
			F.Set(key, j, A.At(val, j))
		}
	}
}

//AddVec adds the vector vec to each vector of the matrix A, putting
//the result on the receiver. Panics if matrices are mismatched. It will not
//work if A and vec reference to the same Matrix.
func (F *Matrix) AddVec(A, vec *Matrix) {
	ar, ac := A.Dims()
	rr, rc := vec.Dims()
	fr, fc := F.Dims()
	if ac != rc || rr != 1 || ac != fc || ar != fr {
		panic(ErrShape)
	}
	for i := 0; i < ar; i++ {
		for j := 0; j < 3; j++ {
			F.Set(i, j, A.At(i, j)+vec.At(0, j))
		}
	}
}

//SubVec subtracts the vector vec from each vector of the matrix A, putting
//the result on the receiver. Panics if matrices are mismatched. It will not
//work if A and vec reference to the same Matrix.
func (F *Matrix) SubVec(A, vec *Matrix) {
	//Go through the embedded Dense on both sides so gonum can see that the
	//receiver and the argument are the same matrix; passing the Matrix
	//wrapper hides that and trips the aliasing check, as with Mul.
	vec.Dense.Scale(-1, vec.Dense)
	F.AddVec(A, vec)
	vec.Dense.Scale(-1, vec.Dense)
}

//Norm returns the Frobenius norm of F. The argument is kept for compatibility
//with gonum's mat, but only 0 and 2 (both meaning Frobenius) are supported.
func (F *Matrix) Norm(i float64) float64 {
	if i != 0 && i != 2 {
		panic(ErrNorm)
	}
	return mat.Norm(F.Dense, 2)
}

//Cross puts the cross product of the first vecs of a and b in the first vec
//of the receiver. Panics if any matrix is empty.
func (F *Matrix) Cross(a, b *Matrix) {
	if a.NVecs() < 1 || b.NVecs() < 1 || F.NVecs() < 1 {
		panic(ErrShape)
	}
	x := a.At(0, 1)*b.At(0, 2) - a.At(0, 2)*b.At(0, 1)
	y := a.At(0, 2)*b.At(0, 0) - a.At(0, 0)*b.At(0, 2)
	z := a.At(0, 0)*b.At(0, 1) - a.At(0, 1)*b.At(0, 0)
	F.Set(0, 0, x)
	F.Set(0, 1, y)
	F.Set(0, 2, z)
}

//Dist returns the euclidean distance between the first vectors of A and F.
func (F *Matrix) Dist(A *Matrix) float64 {
	var d float64
	for j := 0; j < 3; j++ {
		t := F.At(0, j) - A.At(0, j)
		d += t * t
	}
	return math.Sqrt(d)
}

//String returns a neat string representation of a Matrix.
func (F *Matrix) String() string {
	r, c := F.Dims()
	v := make([]string, r+2)
	v[0] = "\n["
	v[len(v)-1] = " ]"
	row := make([]float64, c)
	for i := 0; i < r; i++ {
		mat.Row(row, i, F.Dense)
		if i == 0 {
			v[i+1] = fmt.Sprintf("%6.2f %6.2f %6.2f\n", row[0], row[1], row[2])
		} else if i == r-1 {
			v[i+1] = fmt.Sprintf(" %6.2f %6.2f %6.2f", row[0], row[1], row[2])
		} else {
			v[i+1] = fmt.Sprintf(" %6.2f %6.2f %6.2f\n", row[0], row[1], row[2])
		}
	}
	v[len(v)-2] = strings.Replace(v[len(v)-2], "\n", "", 1)
	return strings.Join(v, "")
}
