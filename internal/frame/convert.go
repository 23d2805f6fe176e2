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
	"image"
	"image/color"

	"github.com/pkg/errors"
)

// Fixed-point ITU-R BT.601 luma weights with 14 fractional bits,
// matching the integer RGB to gray conversion of common vision libraries.
const (
	lumaShift = 14
	lumaR     = 4899
	lumaG     = 9617
	lumaB     = 1868
	lumaRound = 1 << (lumaShift - 1)
)

// Returns the luma of an 8-bit RGB triple
func Luma(r, g, b uint8) uint8 {
	return uint8((uint32(r)*lumaR + uint32(g)*lumaG + uint32(b)*lumaB + lumaRound) >> lumaShift)
}

// Converts the frame to single-channel gray, writing into dst which must
// be a 1-channel frame of the same width and height. Gray frames are copied.
func (f *Frame) GrayInto(dst *Frame) error {
	if dst.Width != f.Width || dst.Height != f.Height || dst.Channels != 1 {
		return errors.Errorf("gray target %s does not match source %s", dst.DimensionsToString(), f.DimensionsToString())
	}
	switch f.Channels {
	case 1:
		copy(dst.Pix, f.Pix)
	case 3:
		for i, j := 0, 0; i < len(dst.Pix); i, j = i+1, j+3 {
			dst.Pix[i] = Luma(f.Pix[j], f.Pix[j+1], f.Pix[j+2])
		}
	default:
		return errors.Errorf("cannot convert %d-channel frame to gray", f.Channels)
	}
	return nil
}

// Returns a new single-channel gray version of the frame
func (f *Frame) Gray() (*Frame, error) {
	g := New(f.Width, f.Height, 1)
	g.ID = f.ID
	if err := f.GrayInto(g); err != nil {
		return nil, err
	}
	return g, nil
}

// Creates a 3-channel RGB frame from a Go image. Alpha is discarded
func FromImage(img image.Image) *Frame {
	b := img.Bounds()
	f := New(b.Dx(), b.Dy(), 3)

	// fast path for the common decoder outputs
	if rgba, ok := img.(*image.RGBA); ok {
		for y := 0; y < f.Height; y++ {
			src := rgba.Pix[rgba.PixOffset(b.Min.X, b.Min.Y+y):]
			dst := f.Pix[y*f.Width*3:]
			for x := 0; x < f.Width; x++ {
				dst[x*3], dst[x*3+1], dst[x*3+2] = src[x*4], src[x*4+1], src[x*4+2]
			}
		}
		return f
	}

	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			o := (y*f.Width + x) * 3
			f.Pix[o], f.Pix[o+1], f.Pix[o+2] = c.R, c.G, c.B
		}
	}
	return f
}

// Converts the frame into a Go image. Gray frames become *image.Gray,
// RGB frames become *image.RGBA with opaque alpha.
func (f *Frame) ToImage() (image.Image, error) {
	rect := image.Rect(0, 0, f.Width, f.Height)
	switch f.Channels {
	case 1:
		img := image.NewGray(rect)
		copy(img.Pix, f.Pix)
		return img, nil
	case 3:
		img := image.NewRGBA(rect)
		for i, j := 0, 0; i < len(f.Pix); i, j = i+3, j+4 {
			img.Pix[j], img.Pix[j+1], img.Pix[j+2], img.Pix[j+3] = f.Pix[i], f.Pix[i+1], f.Pix[i+2], 255
		}
		return img, nil
	}
	return nil, errors.Errorf("cannot convert %d-channel frame to image", f.Channels)
}
