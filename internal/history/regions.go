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

package history

import (
	"image"

	"github.com/pkg/errors"
)

// Returns one 1x1 region per pixel, in row-major order
func PixelRegions(width, height int) []image.Rectangle {
	regions := make([]image.Rectangle, 0, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			regions = append(regions, image.Rect(x, y, x+1, y+1))
		}
	}
	return regions
}

// Partitions the frame into segments x segments patches in row-major order.
// If a dimension is not divisible by segments, the remainder is distributed
// one row or column at a time to the first patches. Zero segments yields
// pixel regions.
func PatchRegions(width, height, segments int) ([]image.Rectangle, error) {
	if segments == 0 {
		return PixelRegions(width, height), nil
	}
	if segments < 0 || segments > width || segments > height {
		return nil, errors.Errorf("cannot split %dx%d frame into %d segments per axis", width, height, segments)
	}

	patchWidth, wRemainder := width/segments, width%segments
	patchHeight, hRemainder := height/segments, height%segments

	regions := make([]image.Rectangle, 0, segments*segments)
	y := 0
	for i := 0; i < segments; i++ {
		h := patchHeight
		if i < hRemainder {
			h++
		}
		x := 0
		for j := 0; j < segments; j++ {
			w := patchWidth
			if j < wRemainder {
				w++
			}
			regions = append(regions, image.Rect(x, y, x+w, y+h))
			x += w
		}
		y += h
	}
	return regions, nil
}

// Checks that the regions are non-empty, lie within the frame, do not
// overlap and together cover every pixel
func ValidatePartition(regions []image.Rectangle, width, height int) error {
	bounds := image.Rect(0, 0, width, height)
	covered := make([]bool, width*height)
	for i, r := range regions {
		if r.Empty() || !r.In(bounds) {
			return errors.Errorf("region %d %v is empty or outside of %v", i, r, bounds)
		}
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				if covered[y*width+x] {
					return errors.Errorf("region %d %v overlaps another region at (%d,%d)", i, r, x, y)
				}
				covered[y*width+x] = true
			}
		}
	}
	for i, c := range covered {
		if !c {
			return errors.Errorf("pixel (%d,%d) is not covered by any region", i%width, i/width)
		}
	}
	return nil
}
