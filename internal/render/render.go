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

// Package render turns motion maps and frames into viewable RGB images for
// diagnostic output and recordings.
package render

import (
	"github.com/lucasb-eyer/go-colorful"
	"github.com/mlnoga/labgenp/internal/frame"
	"github.com/pkg/errors"
)

// Heatmap palette from no motion to maximum motion
var heatmapStops = []string{"#000004", "#3b0f70", "#8c2981", "#de4968", "#fe9f6d", "#fcfdbf"}

// Lookup table of 256 heatmap colors, blended in CIE L*a*b*
var heatmapLUT = buildHeatmapLUT(heatmapStops)

func buildHeatmapLUT(stops []string) (lut [256][3]uint8) {
	colors := make([]colorful.Color, len(stops))
	for i, s := range stops {
		c, err := colorful.Hex(s)
		if err != nil {
			panic(err)
		}
		colors[i] = c
	}
	segments := float64(len(colors) - 1)
	for i := range lut {
		t := float64(i) / 255 * segments
		seg := min(int(t), len(colors)-2)
		c := colors[seg].BlendLab(colors[seg+1], t-float64(seg)).Clamped()
		lut[i][0], lut[i][1], lut[i][2] = c.RGB255()
	}
	return lut
}

// Returns the 8-bit level of v linearly scaled from [lo,hi] to [0,255]
func level(v, lo, hi int32) uint8 {
	if hi <= lo {
		return 0
	}
	if v <= lo {
		return 0
	}
	if v >= hi {
		return 255
	}
	return uint8(int64(v-lo) * 255 / int64(hi-lo))
}

func checkTarget(m *frame.Int32Map, dst *frame.Frame) error {
	if dst.Width != m.Width || dst.Height != m.Height || dst.Channels != 3 {
		return errors.Errorf("render target %s does not match map %dx%dx3", dst.DimensionsToString(), m.Width, m.Height)
	}
	return nil
}

// Renders the map as gray levels, stretched from its minimum to its maximum
func Gray(m *frame.Int32Map, dst *frame.Frame) error {
	if err := checkTarget(m, dst); err != nil {
		return err
	}
	lo, hi := m.MinMax()
	for i, v := range m.Data {
		l := level(v, lo, hi)
		dst.Pix[i*3], dst.Pix[i*3+1], dst.Pix[i*3+2] = l, l, l
	}
	return nil
}

// Renders the map as a heatmap. Values are scaled from zero to the map
// maximum, so a map without motion renders in the coldest color.
func Heatmap(m *frame.Int32Map, dst *frame.Frame) error {
	if err := checkTarget(m, dst); err != nil {
		return err
	}
	_, hi := m.MinMax()
	for i, v := range m.Data {
		c := heatmapLUT[level(v, 0, hi)]
		copy(dst.Pix[i*3:i*3+3], c[:])
	}
	return nil
}

// Places the RGB tiles side by side from left to right into a new frame.
// All tiles must have three channels and the same height.
func Composite(tiles ...*frame.Frame) (*frame.Frame, error) {
	if len(tiles) == 0 {
		return nil, errors.New("composite without tiles")
	}
	height, width := tiles[0].Height, 0
	for i, t := range tiles {
		if t.Height != height || t.Channels != 3 {
			return nil, errors.Errorf("tile %d is %s, want height %d and 3 channels", i, t.DimensionsToString(), height)
		}
		width += t.Width
	}

	dst := frame.New(width, height, 3)
	x0 := 0
	for _, t := range tiles {
		rowBytes := t.Width * 3
		for y := 0; y < height; y++ {
			o := (y*width + x0) * 3
			copy(dst.Pix[o:o+rowBytes], t.Pix[y*rowBytes:(y+1)*rowBytes])
		}
		x0 += t.Width
	}
	return dst, nil
}
