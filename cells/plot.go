/*
 * plot.go, part of msmcells.
 *
 * Copyright 2021 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
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

package cells

import (
	"fmt"
	"image/color"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var (
	foldedColor   = color.RGBA{R: 30, G: 120, B: 200, A: 255}
	unfoldedColor = color.RGBA{R: 220, G: 90, B: 40, A: 255}
)

/*PlotPopulations draws a bar chart with the population of each macrostate, with the macrostates
in folded in a different color than the rest, and saves it to name. The format is
given by the extension of name (png, svg, pdf, eps...).*/
func PlotPopulations(populations []float64, folded []int, title, name string) error {
	if len(populations) == 0 {
		return fmt.Errorf("plotting populations: no macrostates")
	}
	isFolded := make([]bool, len(populations))
	for _, s := range folded {
		if s >= 0 && s < len(populations) {
			isFolded[s] = true
		}
	}
	fv := make(plotter.Values, len(populations))
	uv := make(plotter.Values, len(populations))
	labels := make([]string, len(populations))
	for i, p := range populations {
		if isFolded[i] {
			fv[i] = p
		} else {
			uv[i] = p
		}
		labels[i] = strconv.Itoa(i)
	}
	p := plot.New()
	p.Title.Text = title
	p.Title.Padding = vg.Millimeter * 3
	p.X.Label.Text = "Macrostate"
	p.Y.Label.Text = "Population"
	p.Y.Min = 0
	width := vg.Points(12)
	fbars, err := plotter.NewBarChart(fv, width)
	if err != nil {
		return fmt.Errorf("plotting populations: %w", err)
	}
	fbars.Color = foldedColor
	fbars.LineStyle.Width = 0
	ubars, err := plotter.NewBarChart(uv, width)
	if err != nil {
		return fmt.Errorf("plotting populations: %w", err)
	}
	ubars.Color = unfoldedColor
	ubars.LineStyle.Width = 0
	p.Add(plotter.NewGrid(), fbars, ubars)
	p.Legend.Add("folded", fbars)
	p.Legend.Add("unfolded", ubars)
	p.Legend.Top = true
	p.NominalX(labels...)
	w := vg.Length(len(populations))*width*1.5 + 2*vg.Inch
	if w < 4*vg.Inch {
		w = 4 * vg.Inch
	}
	if err := p.Save(w, 3*vg.Inch, name); err != nil {
		return fmt.Errorf("saving population plot: %w", err)
	}
	return nil
}
