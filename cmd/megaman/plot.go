// SPDX-License-Identifier: MIT

package main

import (
	"fmt"

	"github.com/chanhou/megaman/matrix"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// plotSize is the side of the square scatter plot.
const plotSize = 6 * vg.Inch

// savePlot draws the first two embedding columns as a scatter plot; a single
// column is drawn against the row index. The format follows the extension
// of path (png, svg, pdf, ...).
func savePlot(path, title string, m *matrix.Dense) error {
	n := m.Rows()
	pts := make(plotter.XYs, n)
	for i := 0; i < n; i++ {
		row, err := m.Row(i)
		if err != nil {
			return err
		}
		if len(row) >= 2 {
			pts[i].X, pts[i].Y = row[0], row[1]
			continue
		}
		pts[i].X, pts[i].Y = float64(i), row[0]
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "component 1"
	p.Y.Label.Text = "component 2"
	if m.Cols() < 2 {
		p.X.Label.Text = "point"
		p.Y.Label.Text = "component 1"
	}
	s, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("plot: %w", err)
	}
	s.GlyphStyle.Radius = vg.Points(1.5)
	p.Add(s)
	if err = p.Save(plotSize, plotSize, path); err != nil {
		return fmt.Errorf("plot: %w", err)
	}

	return nil
}
