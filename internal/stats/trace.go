// Copyright (C) 2020 Markus L. Noga
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package stats

import (
	"image/color"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Per-frame map statistics over a sequence, for plotting
type Trace struct {
	IDs    []int
	Motion []BasicStats
	QoM    []BasicStats
}

// Appends the statistics of one frame
func (t *Trace) Add(id int, motion, qom *BasicStats) {
	t.IDs = append(t.IDs, id)
	t.Motion = append(t.Motion, *motion)
	t.QoM = append(t.QoM, *qom)
}

// Returns the number of frames in the trace
func (t *Trace) Len() int { return len(t.IDs) }

var traceColors = []color.Color{
	color.RGBA{R: 0x3b, G: 0x0f, B: 0x70, A: 255},
	color.RGBA{R: 0xde, G: 0x49, B: 0x68, A: 255},
	color.RGBA{R: 0xfe, G: 0x9f, B: 0x6d, A: 255},
}

// A labelled line of the trace plot
type traceSeries struct {
	label string
	xys   plotter.XYs
}

// Returns mean and standard deviation of the motion maps, and the share of
// pixels with nonzero motion in percent, over the frame IDs
func (t *Trace) series() []traceSeries {
	mean := make(plotter.XYs, t.Len())
	stdDev := make(plotter.XYs, t.Len())
	active := make(plotter.XYs, t.Len())
	for i, id := range t.IDs {
		x := float64(id)
		mean[i] = plotter.XY{X: x, Y: t.Motion[i].Mean}
		stdDev[i] = plotter.XY{X: x, Y: t.Motion[i].StdDev}
		active[i] = plotter.XY{X: x, Y: 100 * t.Motion[i].Active}
	}
	return []traceSeries{
		{"Motion mean", mean},
		{"Motion stddev", stdDev},
		{"Pixels in motion (%)", active},
	}
}

// Plots the trace series and saves the chart as an image. The format
// follows the file suffix (png, svg, pdf, ...).
func (t *Trace) Plot(fileName string) error {
	if t.Len() == 0 {
		return errors.New("no frames to plot")
	}

	p := plot.New()
	p.Title.Text = "Motion per frame"
	p.X.Label.Text = "Frame"
	p.Y.Label.Text = "Level"
	for i, s := range t.series() {
		line, err := plotter.NewLine(s.xys)
		if err != nil {
			return err
		}
		line.Color = traceColors[i]
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(s.label, line)
	}
	p.Legend.Top = true

	if err := p.Save(10*vg.Inch, 4*vg.Inch, fileName); err != nil {
		return errors.Wrapf(err, "saving plot to %s", fileName)
	}
	return nil
}
