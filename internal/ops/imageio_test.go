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

package ops

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/mlnoga/labgenp/internal/frame"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fastrand"
)

func randomFrame(width, height, channels int) *frame.Frame {
	f := frame.New(width, height, channels)
	for i := range f.Pix {
		f.Pix[i] = uint8(fastrand.Uint32n(256))
	}
	return f
}

func TestSaveLoadLossless(t *testing.T) {
	dir := t.TempDir()
	for _, suffix := range []string{".png", ".tiff", ".bmp"} {
		f := randomFrame(13, 7, 3)
		fileName := filepath.Join(dir, "frame"+suffix)
		require.NoError(t, SaveFrame(f, fileName), suffix)

		got, err := LoadFrame(fileName, 5)
		require.NoError(t, err, suffix)
		assert.Equal(t, 5, got.ID)
		assert.True(t, f.SameShape(got), suffix)
		assert.Equal(t, f.Pix, got.Pix, suffix)
	}
}

func TestSaveLoadGrayExpandsToRGB(t *testing.T) {
	fileName := filepath.Join(t.TempDir(), "gray.png")
	f := frame.New(3, 2, 1)
	f.Fill(77)
	require.NoError(t, SaveFrame(f, fileName))

	got, err := LoadFrame(fileName, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Channels)
	for i := range got.Pix {
		assert.Equal(t, uint8(77), got.Pix[i])
	}
}

func TestSaveLoadJPEG(t *testing.T) {
	fileName := filepath.Join(t.TempDir(), "frame.jpg")
	f := frame.New(16, 16, 3)
	f.Fill(40, 120, 200)
	require.NoError(t, SaveFrame(f, fileName))

	got, err := LoadFrame(fileName, 0)
	require.NoError(t, err)
	assert.InDelta(t, 40, int(got.Pix[0]), 4)
	assert.InDelta(t, 120, int(got.Pix[1]), 4)
	assert.InDelta(t, 200, int(got.Pix[2]), 4)
}

func TestSaveFrameUnknownSuffix(t *testing.T) {
	fileName := filepath.Join(t.TempDir(), "frame.xyz")
	assert.Error(t, SaveFrame(frame.New(2, 2, 3), fileName))
	_, err := os.Stat(fileName)
	assert.True(t, os.IsNotExist(err))
}

func TestLoadFrameErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadFrame(filepath.Join(dir, "missing.png"), 0)
	assert.Error(t, err)

	garbage := filepath.Join(dir, "garbage.png")
	require.NoError(t, os.WriteFile(garbage, []byte("not an image"), 0644))
	_, err = LoadFrame(garbage, 0)
	assert.Error(t, err)
}

func TestOutputFileName(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, filepath.Join(dir, "output_19_3.png"), OutputFileName(dir, 19, 3))
	assert.Equal(t, filepath.Join("out", "output_5_2.png"), OutputFileName("out/", 5, 2))
	assert.Equal(t, "bg.png", OutputFileName("bg.png", 19, 3))
	assert.Equal(t, "", OutputFileName("", 19, 3))
}

func TestPromiseSource(t *testing.T) {
	var ins []Promise
	for i := 0; i < 7; i++ {
		ins = append(ins, constPromise(i, uint8(i)))
	}
	src := NewPromiseSource(ins, 3)
	defer src.Close()
	for i := 0; i < 7; i++ {
		f, err := src.Next()
		require.NoError(t, err)
		assert.Equal(t, i, f.ID)
	}
	_, err := src.Next()
	assert.Equal(t, io.EOF, err)
}

func TestIsVideoFile(t *testing.T) {
	assert.True(t, IsVideoFile("in.avi"))
	assert.True(t, IsVideoFile("dir/IN.MP4"))
	assert.False(t, IsVideoFile("in.png"))
	assert.False(t, IsVideoFile("avi"))
}

func TestNewRecorderSequence(t *testing.T) {
	dir := t.TempDir()
	_, err := NewRecorder(filepath.Join(dir, "rec.png"), 25, 4, 2)
	assert.Error(t, err)

	r, err := NewRecorder(filepath.Join(dir, "rec_%02d.png"), 25, 4, 2)
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		f := frame.New(4, 2, 3)
		f.ID = 10 + i
		require.NoError(t, r.Write(f))
	}
	require.NoError(t, r.Close())
	for _, name := range []string{"rec_00.png", "rec_01.png"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
}
