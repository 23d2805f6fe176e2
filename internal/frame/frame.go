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

// Package frame holds dense 8-bit images and 32-bit integer maps in
// row-major order with interleaved channels.
package frame

import (
	"fmt"

	"github.com/pkg/errors"
)

// A dense 8-bit image with 1 (gray) or 3 (RGB) interleaved channels.
// Pixel (x,y) channel c lives at Pix[(y*Width+x)*Channels+c].
type Frame struct {
	ID       int // Sequential ID number, for log output
	Width    int
	Height   int
	Channels int
	Pix      []uint8
}

// Creates a zero-filled frame with the given dimensions
func New(width, height, channels int) *Frame {
	return &Frame{
		Width:    width,
		Height:   height,
		Channels: channels,
		Pix:      make([]uint8, width*height*channels),
	}
}

// Creates a frame on top of existing pixel data, without copying
func NewFromPix(width, height, channels int, pix []uint8) (*Frame, error) {
	if width < 0 || height < 0 || channels <= 0 {
		return nil, errors.Errorf("invalid frame dimensions %dx%dx%d", width, height, channels)
	}
	if len(pix) != width*height*channels {
		return nil, errors.Errorf("pixel buffer of %d bytes does not match %dx%dx%d", len(pix), width, height, channels)
	}
	return &Frame{Width: width, Height: height, Channels: channels, Pix: pix}, nil
}

// Returns true if the frame is nil or holds no pixels
func (f *Frame) Empty() bool {
	return f == nil || f.Width == 0 || f.Height == 0 || len(f.Pix) == 0
}

// Returns the number of pixels
func (f *Frame) Pixels() int { return f.Width * f.Height }

// Returns the index of the first channel of pixel (x,y) in Pix
func (f *Frame) Offset(x, y int) int {
	if x < 0 || y < 0 || x >= f.Width || y >= f.Height {
		panic(fmt.Sprintf("pixel (%d,%d) out of bounds for %dx%d frame", x, y, f.Width, f.Height))
	}
	return (y*f.Width + x) * f.Channels
}

// Returns the channel samples of pixel (x,y). The slice aliases Pix
func (f *Frame) At(x, y int) []uint8 {
	o := f.Offset(x, y)
	return f.Pix[o : o+f.Channels]
}

// Sets the channel samples of pixel (x,y)
func (f *Frame) Set(x, y int, sample ...uint8) {
	copy(f.At(x, y), sample)
}

// Fills all pixels with the given channel samples
func (f *Frame) Fill(sample ...uint8) {
	for i := 0; i < len(f.Pix); i += f.Channels {
		copy(f.Pix[i:i+f.Channels], sample)
	}
}

// Returns true if both frames have the same width, height and channel count
func (f *Frame) SameShape(o *Frame) bool {
	return f.Width == o.Width && f.Height == o.Height && f.Channels == o.Channels
}

// Returns a human-readable string like 640x480x3
func (f *Frame) DimensionsToString() string {
	return fmt.Sprintf("%dx%dx%d", f.Width, f.Height, f.Channels)
}
