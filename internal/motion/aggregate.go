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

package motion

import (
	"github.com/mlnoga/labgenp/internal/frame"
	"github.com/mlnoga/labgenp/internal/sat"
	"github.com/pkg/errors"
)

// Returned when the kernel size has a half-width of zero
var ErrInvalidKernel = errors.New("kernel size divided by 2 is zero")

// Returns the odd kernel size (min(height,width)/n)|1 for the
// aggregation parameter n.
func KernelSize(height, width, n int) int {
	return (min(height, width) / n) | 1
}

// Sums the motion map over a square window around each pixel, clamped to
// the image bounds. Border pixels see smaller windows; there is no
// wrapping or mirroring.
type Aggregator struct {
	size  int
	half  int
	table *sat.Table // reused across frames of the same size
}

// Creates an aggregator for the given kernel size
func NewAggregator(size int) (*Aggregator, error) {
	half := size / 2
	if half <= 0 {
		return nil, errors.Wrapf(ErrInvalidKernel, "kernel size %d", size)
	}
	return &Aggregator{size: size, half: half}, nil
}

// Returns the kernel size
func (a *Aggregator) Size() int { return a.size }

// Computes the quantities of motion from the motion map into out, which
// must have the same dimensions.
func (a *Aggregator) Compute(motionMap, out *frame.Int32Map) error {
	if out.Width != motionMap.Width || out.Height != motionMap.Height {
		return errors.Errorf("output %dx%d does not match motion map %dx%d",
			out.Width, out.Height, motionMap.Width, motionMap.Height)
	}

	var err error
	if a.table == nil || a.table.Width != motionMap.Width || a.table.Height != motionMap.Height {
		a.table, err = sat.New(motionMap.Data, motionMap.Width)
	} else {
		err = a.table.Rebuild(motionMap.Data)
	}
	if err != nil {
		return err
	}

	cols, rows, half := motionMap.Width, motionMap.Height, a.half
	for y := 0; y < rows; y++ {
		minRow, maxRow := max(y-half, 0), min(y+half, rows-1)
		line := out.Data[y*cols : (y+1)*cols]
		for x := range line {
			minCol, maxCol := max(x-half, 0), min(x+half, cols-1)
			line[x] = a.table.RectSum(minRow, maxRow, minCol, maxCol)
		}
	}
	return nil
}
