/*
 * v3_test.go, part of gogrow.
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
	"testing"
)

func TestMatrixBasics(Te *testing.T) {
	a := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9}
	A, err := NewMatrix(a)
	if err != nil {
		Te.Error(err)
	}
	if A.NVecs() != 3 || A.Len() != 3 {
		Te.Errorf("Wrong number of vectors: %d", A.NVecs())
	}
	_, err = NewMatrix([]float64{1, 2, 3, 4})
	if err == nil {
		Te.Error("NewMatrix should fail with a slice of length 4")
	}
	v := A.VecView(1)
	if v.At(0, 0) != 4 || v.At(0, 2) != 6 {
		Te.Errorf("Wrong view for vector 1: %v", v)
	}
	v.Set(0, 0, 40)
	if A.At(1, 0) != 40 {
		Te.Error("Changes in a view should be reflected in the viewed matrix")
	}
	fmt.Println("The matrix so far:", A)
}

func TestStackAndSome(Te *testing.T) {
	A := Zeros(2)
	B := Zeros(3)
	for i := 0; i < 3; i++ {
		A.Set(0, i, 1)
		A.Set(1, i, 2)
		B.Set(0, i, 3)
		B.Set(1, i, 4)
		B.Set(2, i, 5)
	}
	F := Zeros(5)
	F.Stack(A, B)
	if F.At(0, 0) != 1 || F.At(2, 0) != 3 || F.At(4, 2) != 5 {
		Te.Errorf("Wrong stacked matrix: %v", F)
	}
	some := Zeros(2)
	some.SomeVecs(F, []int{0, 4})
	if some.At(0, 0) != 1 || some.At(1, 1) != 5 {
		Te.Errorf("Wrong SomeVecs result: %v", some)
	}
	G := Zeros(5)
	G.SetMatrix(2, 0, A)
	if G.At(2, 0) != 1 || G.At(3, 2) != 2 {
		Te.Errorf("Wrong SetMatrix result: %v", G)
	}
}

func TestVecArithmetic(Te *testing.T) {
	A, _ := NewMatrix([]float64{0, 0, 0, 3, 4, 0})
	vec, _ := NewMatrix([]float64{1, 1, 1})
	R := Zeros(2)
	R.AddVec(A, vec)
	if R.At(0, 0) != 1 || R.At(1, 1) != 5 {
		Te.Errorf("Wrong AddVec result: %v", R)
	}
	R.SubVec(R, vec)
	if R.At(0, 0) != 0 || R.At(1, 1) != 4 {
		Te.Errorf("Wrong SubVec result: %v", R)
	}
	d := A.VecView(1).Dist(A.VecView(0))
	if math.Abs(d-5) > 1e-10 {
		Te.Errorf("Wrong distance, want 5, got %f", d)
	}
	n := A.Norm(2)
	if math.Abs(n-5) > 1e-10 {
		Te.Errorf("Wrong norm, want 5, got %f", n)
	}
}
