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

package frame

import (
	"fmt"
)

// A dense single-channel map of int32 values in row-major order.
// Used for motion maps and quantities of motion.
type Int32Map struct {
	Width  int
	Height int
	Data   []int32
}

// Creates a zero-filled map with the given dimensions
func NewInt32Map(width, height int) *Int32Map {
	return &Int32Map{Width: width, Height: height, Data: make([]int32, width*height)}
}

func (m *Int32Map) index(x, y int) int {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		panic(fmt.Sprintf("cell (%d,%d) out of bounds for %dx%d map", x, y, m.Width, m.Height))
	}
	return y*m.Width + x
}

// Returns the value at (x,y)
func (m *Int32Map) At(x, y int) int32 { return m.Data[m.index(x, y)] }

// Sets the value at (x,y)
func (m *Int32Map) Set(x, y int, v int32) { m.Data[m.index(x, y)] = v }

// Returns the minimum and maximum value. Zero for empty maps
func (m *Int32Map) MinMax() (min, max int32) {
	if len(m.Data) == 0 {
		return 0, 0
	}
	min, max = m.Data[0], m.Data[0]
	for _, v := range m.Data[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}
