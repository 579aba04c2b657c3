/*
 * clifford_test.go, part of gogrow.
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
	"math"
	"testing"

	v3 "github.com/rmera/gogrow/v3"
)

func TestRotate(Te *testing.T) {
	x, err := v3.NewMatrix([]float64{1, 0, 0})
	if err != nil {
		Te.Fatal(err)
	}
	//the axis needs no normalization
	z, err := v3.NewMatrix([]float64{0, 0, 2})
	if err != nil {
		Te.Fatal(err)
	}
	r := Rotate(x, z, math.Pi/2)
	want := []float64{0, 1, 0}
	for i, v := range want {
		if math.Abs(r.At(0, i)-v) > 1e-10 {
			Te.Errorf("x rotated half pi around z gave %v, want %v", r, want)
			break
		}
	}
	if x.At(0, 0) != 1 {
		Te.Error("Rotate modified its input")
	}
}

func TestRotateAbout(Te *testing.T) {
	p, err := v3.NewMatrix([]float64{2, 0, 0})
	if err != nil {
		Te.Fatal(err)
	}
	ax1, err := v3.NewMatrix([]float64{1, 0, 0})
	if err != nil {
		Te.Fatal(err)
	}
	ax2, err := v3.NewMatrix([]float64{1, 0, 1})
	if err != nil {
		Te.Fatal(err)
	}
	//pi around a vertical axis through (1,0,0) sends (2,0,0) to the origin
	r, err := RotateAbout(p, ax1, ax2, math.Pi)
	if err != nil {
		Te.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if math.Abs(r.At(0, i)) > 1e-10 {
			Te.Errorf("rotated point %v, want the origin", r)
			break
		}
	}
	if _, err = RotateAbout(p, ax1, ax1, 1); err == nil {
		Te.Error("a zero-length axis should be an error")
	}
}
