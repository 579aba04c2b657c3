/*
 * growplot.go, part of gogrow.
 *
 * Copyright 2024 Raul Mera <rmeraa{at}academicosdotutadotcl>
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

//Package growplot produces the diagnostic figures of a growing run: conformer
//energy profiles, per-candidate score bars, and the energy-against-score map
//used to eyeball whether cheap energies track the docking scores. Everything
//is written as png.
package growplot

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

func basicPlot(title, xlabel, ylabel string) *plot.Plot {
	p := plot.New()
	p.Title.Padding = 3 * vg.Millimeter
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	p.Add(plotter.NewGrid())
	return p
}

//EnergyPlot plots the energy of each conformer of an ensemble, in the frame
//order given. The png extension is added to plotname.
func EnergyPlot(energies []float64, title, plotname string) error {
	if len(energies) == 0 {
		return fmt.Errorf("growplot: no energies to plot")
	}
	p := basicPlot(title, "Conformer", "Energy (kcal/mol)")
	pts := make(plotter.XYs, len(energies))
	for i, v := range energies {
		pts[i].X = float64(i)
		pts[i].Y = v
	}
	l, s, err := plotter.NewLinePoints(pts)
	if err != nil {
		return err
	}
	r, g, b := colors(0, 3)
	l.Color = color.RGBA{R: r, B: b, G: g, A: 255}
	s.GlyphStyle.Color = color.RGBA{R: r, B: b, G: g, A: 255}
	p.Add(l, s)
	return p.Save(5*vg.Inch, 5*vg.Inch, fmt.Sprintf("%s.png", plotname))
}

//ScoreBars plots one bar per candidate with its score. If names is not nil
//it must have one label per score, to be put under the bars.
func ScoreBars(scores []float64, names []string, title, plotname string) error {
	if len(scores) == 0 {
		return fmt.Errorf("growplot: no scores to plot")
	}
	if names != nil && len(names) != len(scores) {
		return fmt.Errorf("growplot: %d labels for %d scores", len(names), len(scores))
	}
	p := basicPlot(title, "", "CNN affinity (pK)")
	bars, err := plotter.NewBarChart(plotter.Values(scores), vg.Points(20))
	if err != nil {
		return err
	}
	r, g, b := colors(1, 4)
	bars.Color = color.RGBA{R: r, B: b, G: g, A: 255}
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	if names != nil {
		p.NominalX(names...)
	}
	return p.Save(5*vg.Inch, 5*vg.Inch, fmt.Sprintf("%s.png", plotname))
}

//EnergyVsScore plots each candidate's best conformer energy against its
//docking score, one color per candidate. Candidates whose index is in tag
//(maximum 4) are highlighted with a distinct glyph shape.
func EnergyVsScore(energies, scores []float64, tag []int, title, plotname string) error {
	if len(energies) == 0 || len(energies) != len(scores) {
		return fmt.Errorf("growplot: %d energies for %d scores", len(energies), len(scores))
	}
	p := basicPlot(title, "Energy (kcal/mol)", "CNN affinity (pK)")
	temp := make(plotter.XYs, 1)
	var tagged int
	for key := range energies {
		temp[0].X = energies[key]
		temp[0].Y = scores[key]
		s, err := plotter.NewScatter(temp)
		if err != nil {
			return err
		}
		if tag != nil && isInInt(tag, key) {
			//past four tags we get the error and the default glyph, which
			//just means the extra candidates go unhighlighted.
			s.GlyphStyle.Shape, _ = getShape(tagged)
			tagged++
		}
		r, g, b := colors(key, len(energies))
		s.GlyphStyle.Color = color.RGBA{R: r, B: b, G: g, A: 255}
		p.Add(s)
	}
	return p.Save(5*vg.Inch, 5*vg.Inch, fmt.Sprintf("%s.png", plotname))
}

func getShape(tagged int) (draw.GlyphDrawer, error) {
	switch tagged {
	case 0:
		return draw.PyramidGlyph{}, nil
	case 1:
		return draw.CircleGlyph{}, nil
	case 2:
		return draw.SquareGlyph{}, nil
	case 3:
		return draw.CrossGlyph{}, nil
	default:
		return draw.RingGlyph{}, fmt.Errorf("maximum number of taggable candidates is 4")
	}
}

//takes hue (0-360), v and s (0-1), returns r,g,b (0-255)
func iHVS2RGB(h, v, s float64) (uint8, uint8, uint8) {
	var i, f, p, q, t float64
	var r, g, b float64
	maxcolor := 255.0
	conversion := maxcolor * v
	if s == 0.0 {
		return uint8(conversion), uint8(conversion), uint8(conversion)
	}
	h = h / 60
	i = math.Floor(h)
	f = h - i
	p = v * (1 - s)
	q = v * (1 - s*f)
	t = v * (1 - s*(1-f))
	switch int(i) {
	case 0:
		r = v
		g = t
		b = p
	case 1:
		r = q
		g = v
		b = p
	case 2:
		r = p
		g = v
		b = t
	case 3:
		r = p
		g = q
		b = v
	case 4:
		r = t
		g = p
		b = v
	default: //case 5
		r = v
		g = p
		b = q
	}
	r = r * conversion
	g = g * conversion
	b = b * conversion
	return uint8(r), uint8(g), uint8(b)
}

func colors(key, steps int) (r, g, b uint8) {
	norm := 260.0 / float64(steps)
	hp := float64(key)*norm + 20.0
	var h float64
	if hp < 55 {
		h = hp - 20.0
	} else {
		h = hp + 20.0
	}
	return iHVS2RGB(h, 1.0, 1.0)
}

func isInInt(container []int, test int) bool {
	for _, i := range container {
		if test == i {
			return true
		}
	}
	return false
}
