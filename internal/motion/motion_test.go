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
	"testing"

	"github.com/mlnoga/labgenp/internal/frame"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fastrand"
)

func uniformFrame(width, height int, v uint8) *frame.Frame {
	f := frame.New(width, height, 3)
	f.Fill(v, v, v)
	return f
}

func TestFirstFrameOnlySeeds(t *testing.T) {
	d := NewFrameDifference()
	m := frame.NewInt32Map(2, 2)
	m.Data[0] = 42

	ok, err := d.Compute(uniformFrame(2, 2, 10), m)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, d.Seeded())
	assert.Equal(t, int32(42), m.Data[0], "seeding must leave the map untouched")
}

func TestEmptyFrameIsIgnored(t *testing.T) {
	d := NewFrameDifference()
	ok, err := d.Compute(nil, frame.NewInt32Map(1, 1))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, d.Seeded())
}

func TestIdenticalFramesGiveZeroMotion(t *testing.T) {
	rng := fastrand.RNG{}
	f := frame.New(4, 3, 3)
	for i := range f.Pix {
		f.Pix[i] = uint8(rng.Uint32n(256))
	}

	d := NewFrameDifference()
	m := frame.NewInt32Map(4, 3)
	_, err := d.Compute(f, m)
	require.NoError(t, err)
	same, err := frame.NewFromPix(4, 3, 3, append([]uint8(nil), f.Pix...))
	require.NoError(t, err)
	ok, err := d.Compute(same, m)
	require.NoError(t, err)
	require.True(t, ok)
	for _, v := range m.Data {
		assert.Equal(t, int32(0), v)
	}
}

func TestAbsoluteDifferenceAndRetention(t *testing.T) {
	d := NewFrameDifference()
	m := frame.NewInt32Map(1, 1)
	for _, step := range []struct {
		v    uint8
		want int32
	}{{100, 0}, {40, 60}, {90, 50}, {90, 0}} {
		ok, err := d.Compute(uniformFrame(1, 1, step.v), m)
		require.NoError(t, err)
		if ok {
			assert.Equal(t, step.want, m.Data[0])
		}
	}
}

func TestGrayInputIsAccepted(t *testing.T) {
	d := NewFrameDifference()
	m := frame.NewInt32Map(2, 1)
	a, _ := frame.NewFromPix(2, 1, 1, []uint8{0, 255})
	b, _ := frame.NewFromPix(2, 1, 1, []uint8{255, 0})
	_, err := d.Compute(a, m)
	require.NoError(t, err)
	_, err = d.Compute(b, m)
	require.NoError(t, err)
	assert.Equal(t, []int32{255, 255}, m.Data)
}

func TestDimensionMismatch(t *testing.T) {
	d := NewFrameDifference()
	_, err := d.Compute(uniformFrame(2, 2, 0), frame.NewInt32Map(3, 2))
	assert.Error(t, err)

	m := frame.NewInt32Map(2, 2)
	_, err = d.Compute(uniformFrame(2, 2, 0), m)
	require.NoError(t, err)
	_, err = d.Compute(uniformFrame(3, 3, 0), frame.NewInt32Map(3, 3))
	assert.Error(t, err, "frame size changed after seeding")
}

func TestKernelSize(t *testing.T) {
	assert.Equal(t, 3, KernelSize(2, 2, 1))
	assert.Equal(t, 1, KernelSize(1, 1, 1))
	assert.Equal(t, 161, KernelSize(480, 640, 3))
	assert.Equal(t, 81, KernelSize(240, 320, 3))
}

func TestNewAggregatorRejectsZeroHalf(t *testing.T) {
	_, err := NewAggregator(1)
	assert.ErrorIs(t, err, ErrInvalidKernel)
	_, err = NewAggregator(0)
	assert.ErrorIs(t, err, ErrInvalidKernel)
	a, err := NewAggregator(3)
	require.NoError(t, err)
	assert.Equal(t, 3, a.Size())
}

// naive clamped box sum
func boxSum(m *frame.Int32Map, x, y, half int) int32 {
	sum := int32(0)
	for yy := max(y-half, 0); yy <= min(y+half, m.Height-1); yy++ {
		for xx := max(x-half, 0); xx <= min(x+half, m.Width-1); xx++ {
			sum += m.At(xx, yy)
		}
	}
	return sum
}

func TestAggregatorMatchesNaiveBoxSum(t *testing.T) {
	rng := fastrand.RNG{}
	for _, size := range []int{3, 5, 9, 21} {
		width, height := 1+int(rng.Uint32n(25)), 1+int(rng.Uint32n(25))
		m := frame.NewInt32Map(width, height)
		for i := range m.Data {
			m.Data[i] = int32(rng.Uint32n(256))
		}
		a, err := NewAggregator(size)
		require.NoError(t, err)
		out := frame.NewInt32Map(width, height)
		require.NoError(t, a.Compute(m, out))
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				require.Equal(t, boxSum(m, x, y, size/2), out.At(x, y), "size %d at (%d,%d)", size, x, y)
			}
		}
	}
}

func TestAggregatorSinglePixelClamps(t *testing.T) {
	a, err := NewAggregator(3)
	require.NoError(t, err)
	m := &frame.Int32Map{Width: 1, Height: 1, Data: []int32{17}}
	out := frame.NewInt32Map(1, 1)
	require.NoError(t, a.Compute(m, out))
	assert.Equal(t, int32(17), out.Data[0])
}

func TestAggregatorReusesTableAcrossSizes(t *testing.T) {
	a, err := NewAggregator(3)
	require.NoError(t, err)
	small := &frame.Int32Map{Width: 2, Height: 1, Data: []int32{1, 2}}
	out := frame.NewInt32Map(2, 1)
	require.NoError(t, a.Compute(small, out))
	assert.Equal(t, []int32{3, 3}, out.Data)

	big := &frame.Int32Map{Width: 3, Height: 1, Data: []int32{1, 2, 4}}
	out = frame.NewInt32Map(3, 1)
	require.NoError(t, a.Compute(big, out))
	assert.Equal(t, []int32{3, 7, 6}, out.Data)

	assert.Error(t, a.Compute(big, frame.NewInt32Map(2, 2)))
}
