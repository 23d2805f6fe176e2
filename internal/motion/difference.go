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

// Package motion computes per-pixel motion maps by frame differencing,
// and aggregates them into quantities of motion with a box filter.
package motion

import (
	"github.com/mlnoga/labgenp/internal/frame"
	"github.com/pkg/errors"
)

// Stateful frame differencing on the gray channel. Retains the previous
// gray frame, so frames must be presented in temporal order.
type FrameDifference struct {
	prev *frame.Frame // previous gray frame, nil until seeded
	cur  *frame.Frame // scratch buffer for the current gray frame
}

// Creates a frame differencer without a previous frame
func NewFrameDifference() *FrameDifference {
	return &FrameDifference{}
}

// Returns true once a previous frame has been retained
func (d *FrameDifference) Seeded() bool { return d.prev != nil }

// Computes |gray(f) - gray(previous)| per pixel into motionMap and retains
// gray(f) as the new previous frame. Returns false without touching
// motionMap if f is empty, or if this was the seeding call.
func (d *FrameDifference) Compute(f *frame.Frame, motionMap *frame.Int32Map) (bool, error) {
	if f.Empty() {
		return false, nil
	}
	if motionMap.Width != f.Width || motionMap.Height != f.Height {
		return false, errors.Errorf("motion map %dx%d does not match frame %s",
			motionMap.Width, motionMap.Height, f.DimensionsToString())
	}

	if d.cur == nil || d.cur.Width != f.Width || d.cur.Height != f.Height {
		d.cur = frame.New(f.Width, f.Height, 1)
	}
	if err := f.GrayInto(d.cur); err != nil {
		return false, err
	}

	if d.prev == nil {
		d.prev, d.cur = d.cur, nil
		return false, nil
	}
	if !d.prev.SameShape(d.cur) {
		return false, errors.Errorf("frame %s does not match previous frame %s",
			d.cur.DimensionsToString(), d.prev.DimensionsToString())
	}

	for i, c := range d.cur.Pix {
		diff := int32(c) - int32(d.prev.Pix[i])
		if diff < 0 {
			diff = -diff
		}
		motionMap.Data[i] = diff
	}

	d.prev, d.cur = d.cur, d.prev // reuse the old previous frame as next scratch buffer
	return true, nil
}
