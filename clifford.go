/*
 * clifford.go, part of gogrow.
 *
 * Copyright 2012 Janne Pesonen <janne.pesonen{at}helsinkiDOTfi>
 * and Raul Mera <rmeraa{at}academicosdotutadotcl>
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

/***RM: Dedicated to the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche***/

package grow

import (
	"math"

	v3 "github.com/rmera/gogrow/v3"
)

//Basic Clifford algebra functions, used for rotations. Only Rotate and
//RotateAbout are meant for callers; the paravector machinery supports them.

type paravector struct {
	Real  float64
	Imag  float64
	Vreal *v3.Matrix
	Vimag *v3.Matrix
}

func makeParavector() *paravector {
	R := new(paravector)
	R.Vreal = v3.Zeros(1)
	R.Vimag = v3.Zeros(1)
	return R
}

//Takes a vector and creates a paravector. The vector is copied, so it is not
//affected by later changes to the paravector.
func paravectorFromVector(A *v3.Matrix) *paravector {
	R := makeParavector()
	R.Vreal.Copy(A)
	return R
}

//Returns the reverse of the paravector.
func (P *paravector) Reverse() *paravector {
	R := makeParavector()
	R.Real = P.Real
	R.Imag = -1 * P.Imag
	R.Vreal.Copy(P.Vreal)
	R.Vimag.Scale(-1, P.Vimag)
	return R
}

//Returns the normalized version of P.
func (P *paravector) Normalize() *paravector {
	R := makeParavector()
	norm := math.Pow(P.Real, 2) + math.Pow(P.Imag, 2)
	for i := 0; i < 3; i++ {
		norm += math.Pow(P.Vreal.At(0, i), 2) + math.Pow(P.Vimag.At(0, i), 2)
	}
	norm = math.Sqrt(norm)
	R.Real = P.Real / norm
	R.Imag = P.Imag / norm
	for i := 0; i < 3; i++ {
		R.Vreal.Set(0, i, P.Vreal.At(0, i)/norm)
		R.Vimag.Set(0, i, P.Vimag.At(0, i)/norm)
	}
	return R
}

//Clifford product of 2 paravectors. The imaginary part of the vector result
//is simply set to zero, which is the case when rotating 3D real vectors.
func cliProduct(A, B *paravector) *paravector {
	R := makeParavector()
	R.Real = A.Real*B.Real - A.Imag*B.Imag
	for i := 0; i < 3; i++ {
		R.Real += (A.Vreal.At(0, i)*B.Vreal.At(0, i) - A.Vimag.At(0, i)*B.Vimag.At(0, i))
	}
	R.Imag = A.Real*B.Imag + A.Imag*B.Real
	for i := 0; i < 3; i++ {
		R.Imag += (A.Vreal.At(0, i)*B.Vimag.At(0, i) + A.Vimag.At(0, i)*B.Vreal.At(0, i))
	}
	R.Vreal.Set(0, 0, A.Real*B.Vreal.At(0, 0)+B.Real*A.Vreal.At(0, 0)-A.Imag*B.Vimag.At(0, 0)-B.Imag*A.Vimag.At(0, 0)+
		A.Vimag.At(0, 2)*B.Vreal.At(0, 1)-A.Vimag.At(0, 1)*B.Vreal.At(0, 2)+A.Vreal.At(0, 2)*B.Vimag.At(0, 1)-
		A.Vreal.At(0, 1)*B.Vimag.At(0, 2))
	R.Vreal.Set(0, 1, A.Real*B.Vreal.At(0, 1)+B.Real*A.Vreal.At(0, 1)-A.Imag*B.Vimag.At(0, 1)-B.Imag*A.Vimag.At(0, 1)+
		A.Vimag.At(0, 0)*B.Vreal.At(0, 2)-A.Vimag.At(0, 2)*B.Vreal.At(0, 0)+A.Vreal.At(0, 0)*B.Vimag.At(0, 2)-
		A.Vreal.At(0, 2)*B.Vimag.At(0, 0))
	R.Vreal.Set(0, 2, A.Real*B.Vreal.At(0, 2)+B.Real*A.Vreal.At(0, 2)-A.Imag*B.Vimag.At(0, 2)-B.Imag*A.Vimag.At(0, 2)+
		A.Vimag.At(0, 1)*B.Vreal.At(0, 0)-A.Vimag.At(0, 0)*B.Vreal.At(0, 1)+A.Vreal.At(0, 1)*B.Vimag.At(0, 0)-
		A.Vreal.At(0, 0)*B.Vimag.At(0, 1))
	return R
}

//cliRotation rotates the paravector A by angle radians around axis, which
//must be normalized. Returns the rotated paravector.
func cliRotation(A, axis *paravector, angle float64) *paravector {
	R := makeParavector()
	R.Real = math.Cos(angle / 2.0)
	for i := 0; i < 3; i++ {
		R.Vimag.Set(0, i, math.Sin(angle/2.0)*axis.Vreal.At(0, i))
	}
	return cliProduct(cliProduct(R.Reverse(), A), R)
}

//Rotate returns the rows of Target rotated by angle radians around the axis
//given as a 1x3 vector, which needs not be normalized. The rotation follows
//the right-hand rule and the axis passes through the origin. Target is not
//modified.
func Rotate(Target, axis *v3.Matrix, angle float64) *v3.Matrix {
	paxis := paravectorFromVector(axis).Normalize()
	R := v3.Zeros(Target.NVecs())
	for i := 0; i < Target.NVecs(); i++ {
		tmp := cliRotation(paravectorFromVector(Target.VecView(i)), paxis, angle)
		R.SetMatrix(i, 0, tmp.Vreal)
	}
	return R
}

//RotateAbout returns the coordinates in coordsorig rotated by angle radians
//around the axis going from ax1 to ax2. The original coordinates are not
//modified.
func RotateAbout(coordsorig, ax1, ax2 *v3.Matrix, angle float64) (*v3.Matrix, error) {
	axis := v3.Zeros(1)
	axis.Sub(ax2, ax1)
	if axis.Norm(2) == 0 {
		return nil, &CError{"gogrow: zero-length rotation axis", []string{"RotateAbout"}}
	}
	//ax1 could be a view into coordsorig, and SubVec can't take aliased
	//arguments, so the translation goes through a copy
	translation := v3.Zeros(1)
	translation.Copy(ax1)
	coords := v3.Zeros(coordsorig.NVecs())
	coords.SubVec(coordsorig, translation)
	rot := Rotate(coords, axis, angle)
	rot.AddVec(rot, translation)
	return rot, nil
}
