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

// Package sat implements summed area tables, also known as integral images,
// after F. Crow, "Summed-area tables for texture mapping", SIGGRAPH 1984.
// After an O(width*height) build, the sum over any axis-aligned rectangle
// is available in O(1) from four corner lookups.
package sat

import (
	"github.com/pkg/errors"
)

// A summed area table over a single-channel int32 matrix.
// Sums are accumulated in int32, so the total over the largest queried
// rectangle must fit into an int32. For 8-bit absolute differences that
// allows rectangles of up to 2^31/255, i.e. about 8.4 million pixels.
type Table struct {
	Width  int
	Height int
	sum    []int32 // sum[y*Width+x] holds the sum over [0..y]x[0..x]
}

// Creates a summed area table from a row-major matrix with the given width.
// The height is derived from len(data)/width.
func New(data []int32, width int) (*Table, error) {
	if width <= 0 || len(data)%width != 0 {
		return nil, errors.Errorf("invalid matrix with %d elements for width %d", len(data), width)
	}
	t := &Table{Width: width, Height: len(data) / width, sum: make([]int32, len(data))}
	t.build(data)
	return t, nil
}

// Recomputes the table in place from new data with the same dimensions.
// Avoids reallocating the table for every frame.
func (t *Table) Rebuild(data []int32) error {
	if len(data) != len(t.sum) {
		return errors.Errorf("matrix with %d elements does not match table of %dx%d", len(data), t.Width, t.Height)
	}
	t.build(data)
	return nil
}

// Single pass with inclusion-exclusion. The running row sum avoids
// the sum[y][x-1] - sum[y-1][x-1] lookup pair.
func (t *Table) build(data []int32) {
	w := t.Width
	for y := 0; y < t.Height; y++ {
		row := y * w
		rowSum := int32(0)
		for x := 0; x < w; x++ {
			rowSum += data[row+x]
			if y == 0 {
				t.sum[row+x] = rowSum
			} else {
				t.sum[row+x] = rowSum + t.sum[row-w+x]
			}
		}
	}
}

// Returns the sum over the rectangle [0..row]x[0..col]. Out of range
// negative coordinates yield zero.
func (t *Table) At(row, col int) int32 {
	if row < 0 || col < 0 {
		return 0
	}
	return t.sum[row*t.Width+col]
}

// Returns the sum over the inclusive rectangle [minRow..maxRow]x[minCol..maxCol].
// Coordinates must lie within the table, with min<=max.
func (t *Table) RectSum(minRow, maxRow, minCol, maxCol int) int32 {
	return t.At(maxRow, maxCol) - t.At(minRow-1, maxCol) - t.At(maxRow, minCol-1) + t.At(minRow-1, minCol-1)
}
