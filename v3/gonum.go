/*
 * gonum.go, part of gogrow.
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

//gonum.go contains the Matrix type itself plus everything that deals directly
//with the gonum/mat types and facilities.

package v3

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

//Matrix is a set of vectors in 3D space. The underlying implementation varies.
//Within the package it is understood that a "vector" is a row vector, i.e. the
//cartesian coordinates of a point in 3D space. The name of some functions in
//the library reflect this.
type Matrix struct {
	*mat.Dense
}

//Matrix2Dense returns the gonum Dense matrix underlying A.
func Matrix2Dense(A *Matrix) *mat.Dense {
	return A.Dense
}

//Dense2Matrix returns a Matrix backed by the gonum Dense matrix A.
//It panics if A doesn't have exactly 3 columns.
func Dense2Matrix(A *mat.Dense) *Matrix {
	_, c := A.Dims()
	if c != 3 {
		panic(ErrNotXx3Matrix)
	}
	return &Matrix{A}
}

//NewMatrix generates and returns a Matrix with 3 columns from data.
func NewMatrix(data []float64) (*Matrix, error) {
	const cols int = 3
	l := len(data)
	rows := l / cols
	if l%cols != 0 {
		return nil, Error{fmt.Sprintf("Input slice length %d not divisible by %d: %d", l, cols, l%cols), []string{"NewMatrix"}, true}
	}
	r := mat.NewDense(rows, cols, data)
	return &Matrix{r}, nil
}

//Zeros returns a zero-filled Matrix with vecs vectors and 3 in the other dimension.
func Zeros(vecs int) *Matrix {
	const cols int = 3
	f := make([]float64, cols*vecs)
	return &Matrix{mat.NewDense(vecs, cols, f)}
}

//VecView returns a view of the ith vector of the matrix.
//Changes in the view are reflected in F and vice-versa.
func (F *Matrix) VecView(i int) *Matrix {
	r := F.Dense.Slice(i, i+1, 0, 3).(*mat.Dense)
	return &Matrix{r}
}

//View returns a view of F starting from i,j and spanning r rows and
//c columns. Changes in the view are reflected in F and vice-versa.
//Notice that very little memory allocation happens, only a couple of
//ints and pointers.
func (F *Matrix) View(i, j, r, c int) *Matrix {
	ret := F.Dense.Slice(i, i+r, j, j+c).(*mat.Dense)
	return &Matrix{ret}
}

//SetMatrix puts the matrix A in the receiver, starting from the ith row and
//jth col of the receiver.
func (F *Matrix) SetMatrix(i, j int, A *Matrix) {
	b := F.RawMatrix()
	ar, ac := A.Dims()
	fc := 3
	if ar+i > F.NVecs() || ac+j > fc {
		panic(ErrShape)
	}
	for k := 0; k < ar; k++ {
		r := A.RawRowView(k)
		startpoint := fc*(k+i) + j
		copy(b.Data[startpoint:startpoint+ac], r)
	}
}

//Stack puts A stacked over B in F.
func (F *Matrix) Stack(A, B *Matrix) {
	f := F.RawMatrix()
	ar, _ := A.Dims()
	br, _ := B.Dims()
	if F.NVecs() < ar+br {
		panic(ErrShape)
	}
	for i := 0; i < ar; i++ {
		copy(f.Data[i*3:i*3+3], A.RawRowView(i))
	}
	for i := ar; i < ar+br; i++ {
		copy(f.Data[i*3:i*3+3], B.RawRowView(i-ar))
	}
}

//Mul wraps mat.Mul to take care of the case when one of the
//arguments is also the receiver. The gonum function cannot see that
//internally F.Dense==A, hence the need for this function.
func (F *Matrix) Mul(A, B mat.Matrix) {
	if C, ok := A.(*Matrix); ok {
		A = C.Dense
	}
	if D, ok := B.(*Matrix); ok {
		B = D.Dense
	}
	F.Dense.Mul(A, B)
}

//Errors

//the same as grow.Error but avoids a circular import.
type errorInt interface {
	Error() string
	Critical() bool
	Decorate(string) []string
}

//Error is the v3 implementation of the error-with-decoration used throughout gogrow.
type Error struct {
	message  string
	deco     []string
	critical bool
}

//Error returns a string with an error message.
func (err Error) Error() string {
	return err.message
}

//Decorate will add the dec string to the decoration slice of strings of the error,
//and return the resulting slice.
func (err Error) Decorate(dec string) []string {
	err.deco = append(err.deco, dec)
	return err.deco
}

//Critical returns whether the error is critical or it can be ignored.
func (err Error) Critical() bool { return err.critical }

//PanicMsg is a message used for panics, even though it does satisfy the error interface.
//For errors, use Error.
type PanicMsg string

func (v PanicMsg) Error() string { return string(v) }

const (
	ErrNotXx3Matrix      = PanicMsg("gogrow/v3: A Matrix should have 3 columns")
	ErrNotEnoughElements = PanicMsg("gogrow/v3: not enough elements in Matrix")
	ErrShape             = PanicMsg("gogrow/v3: Dimension mismatch")
	ErrNorm              = PanicMsg("gogrow/v3: Only the Frobenius norm is implemented")
)
