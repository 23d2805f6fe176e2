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
	"testing"

	"github.com/mlnoga/labgenp/internal/frame"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrayStretchesMinToMax(t *testing.T) {
	m := &frame.Int32Map{Width: 3, Height: 1, Data: []int32{10, 20, 30}}
	dst := frame.New(3, 1, 3)
	require.NoError(t, Gray(m, dst))
	assert.Equal(t, []uint8{0, 0, 0, 127, 127, 127, 255, 255, 255}, dst.Pix)
}

func TestGrayOfConstantMapIsBlack(t *testing.T) {
	m := &frame.Int32Map{Width: 2, Height: 1, Data: []int32{7, 7}}
	dst := frame.New(2, 1, 3)
	dst.Fill(1, 2, 3)
	require.NoError(t, Gray(m, dst))
	assert.Equal(t, make([]uint8, 6), dst.Pix)
}

func TestHeatmapEndpoints(t *testing.T) {
	m := &frame.Int32Map{Width: 2, Height: 1, Data: []int32{0, 500}}
	dst := frame.New(2, 1, 3)
	require.NoError(t, Heatmap(m, dst))
	cold, hot := heatmapLUT[0], heatmapLUT[255]
	assert.Equal(t, cold[:], dst.At(0, 0))
	assert.Equal(t, hot[:], dst.At(1, 0))
	assert.Equal(t, [3]uint8{0, 0, 4}, cold)
	assert.Equal(t, [3]uint8{252, 253, 191}, hot)
}

func TestHeatmapIsBrighterForMoreMotion(t *testing.T) {
	prev := -1
	for l := 0; l < 256; l += 15 {
		c := heatmapLUT[l]
		luma := int(frame.Luma(c[0], c[1], c[2]))
		assert.GreaterOrEqual(t, luma, prev, "level %d", l)
		prev = luma
	}
}

func TestBuildHeatmapLUTFromHexStops(t *testing.T) {
	lut := buildHeatmapLUT([]string{"#000000", "#ffffff"})
	assert.Equal(t, [3]uint8{0, 0, 0}, lut[0])
	assert.Equal(t, [3]uint8{255, 255, 255}, lut[255])
	assert.Panics(t, func() { buildHeatmapLUT([]string{"#000000", "white"}) })
}

func TestRenderRejectsWrongTarget(t *testing.T) {
	m := frame.NewInt32Map(2, 2)
	assert.Error(t, Gray(m, frame.New(2, 2, 1)))
	assert.Error(t, Heatmap(m, frame.New(3, 2, 3)))
}

func TestComposite(t *testing.T) {
	a := frame.New(1, 2, 3)
	a.Fill(1, 1, 1)
	b := frame.New(2, 2, 3)
	b.Fill(2, 2, 2)
	c, err := Composite(a, b)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Width)
	assert.Equal(t, 2, c.Height)
	assert.Equal(t, []uint8{1, 1, 1}, c.At(0, 1))
	assert.Equal(t, []uint8{2, 2, 2}, c.At(1, 1))
	assert.Equal(t, []uint8{2, 2, 2}, c.At(2, 0))

	_, err = Composite(a, frame.New(1, 3, 3))
	assert.Error(t, err)
	_, err = Composite()
	assert.Error(t, err)
}

func TestFitSize(t *testing.T) {
	w, h := FitSize(640, 480, 320, 0, true)
	assert.Equal(t, []int{320, 240}, []int{w, h})
	w, h = FitSize(640, 480, 0, 120, false)
	assert.Equal(t, []int{160, 120}, []int{w, h})
	w, h = FitSize(640, 480, 200, 200, true)
	assert.Equal(t, []int{200, 150}, []int{w, h})
	w, h = FitSize(640, 480, 200, 200, false)
	assert.Equal(t, []int{200, 200}, []int{w, h})
	w, h = FitSize(640, 480, 0, 0, true)
	assert.Equal(t, []int{640, 480}, []int{w, h})
}

func TestFitLetterboxes(t *testing.T) {
	src := frame.New(4, 2, 3)
	src.Fill(200, 200, 200)
	src.ID = 9
	dst, err := Fit(src, 4, 4, true)
	require.NoError(t, err)
	assert.Equal(t, 4, dst.Width)
	assert.Equal(t, 4, dst.Height)
	assert.Equal(t, 9, dst.ID)
	assert.Equal(t, []uint8{0, 0, 0}, dst.At(0, 0))
	assert.Equal(t, []uint8{200, 200, 200}, dst.At(1, 1))
	assert.Equal(t, []uint8{0, 0, 0}, dst.At(3, 3))
}

func TestFitWithoutBoundsReturnsSource(t *testing.T) {
	src := frame.New(4, 2, 3)
	dst, err := Fit(src, 0, 0, true)
	require.NoError(t, err)
	assert.Same(t, src, dst)
	dst, err = Fit(src, 4, 2, false)
	require.NoError(t, err)
	assert.Same(t, src, dst)
}
