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

package render

import (
	"image"

	"github.com/mlnoga/labgenp/internal/frame"
	"golang.org/x/image/draw"
)

// Returns the size of a width x height image scaled to fit into
// maxWidth x maxHeight. A zero bound is derived from the other one so the
// aspect ratio is kept. With keepRatio false, both bounds are used as is.
func FitSize(width, height, maxWidth, maxHeight int, keepRatio bool) (int, int) {
	switch {
	case maxWidth <= 0 && maxHeight <= 0:
		return width, height
	case maxWidth <= 0:
		return max(width*maxHeight/height, 1), maxHeight
	case maxHeight <= 0:
		return maxWidth, max(height*maxWidth/width, 1)
	case !keepRatio:
		return maxWidth, maxHeight
	}
	if width*maxHeight > maxWidth*height {
		return maxWidth, max(height*maxWidth/width, 1)
	}
	return max(width*maxHeight/height, 1), maxHeight
}

// Scales an RGB frame to the given size with Catmull-Rom interpolation.
// With keepRatio, the scaled image is centered and letterboxed in black.
// Returns the source itself if no scaling is needed.
func Fit(src *frame.Frame, width, height int, keepRatio bool) (*frame.Frame, error) {
	if width <= 0 && height <= 0 {
		return src, nil
	}
	w, h := FitSize(src.Width, src.Height, width, height, keepRatio)
	if width <= 0 || height <= 0 {
		width, height = w, h
	}
	if w == src.Width && h == src.Height && width == w && height == h {
		return src, nil
	}

	img, err := src.ToImage()
	if err != nil {
		return nil, err
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	x0, y0 := (width-w)/2, (height-h)/2
	draw.CatmullRom.Scale(dst, image.Rect(x0, y0, x0+w, y0+h), img, img.Bounds(), draw.Src, nil)

	out := frame.FromImage(dst)
	out.ID = src.ID
	if src.Channels == 1 {
		return out.Gray()
	}
	return out, nil
}
