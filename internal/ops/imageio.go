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
	"bufio"
	"fmt"
	"image"
	_ "image/gif" // register decoder
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/mlnoga/labgenp/internal/frame"
	"github.com/pkg/errors"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// JPEG quality for saved frames
const jpegQuality = 95

// Loads a frame from an image file in any registered format (PNG, JPEG,
// GIF, TIFF, BMP). Gray images are expanded to RGB.
func LoadFrame(fileName string, id int) (*frame.Frame, error) {
	file, err := os.Open(fileName)
	if err != nil {
		return nil, errors.Wrapf(err, "%d: opening %s", id, fileName)
	}
	defer file.Close()

	img, format, err := image.Decode(bufio.NewReader(file))
	if err != nil {
		return nil, errors.Wrapf(err, "%d: decoding %s", id, fileName)
	}
	f := frame.FromImage(img)
	f.ID = id
	if f.Empty() {
		return nil, errors.Errorf("%d: empty %s image in %s", id, format, fileName)
	}
	return f, nil
}

// Saves a frame to an image file, choosing the format from the suffix
func SaveFrame(f *frame.Frame, fileName string) error {
	img, err := f.ToImage()
	if err != nil {
		return err
	}

	suffix := strings.ToLower(filepath.Ext(fileName))
	switch suffix {
	case ".png", ".jpg", ".jpeg", ".tif", ".tiff", ".bmp":
	default:
		return errors.Errorf("unknown suffix %q for %s", suffix, fileName)
	}

	file, err := os.Create(fileName)
	if err != nil {
		return err
	}
	defer file.Close()
	writer := bufio.NewWriter(file)

	switch suffix {
	case ".png":
		err = png.Encode(writer, img)
	case ".jpg", ".jpeg":
		err = jpeg.Encode(writer, img, &jpeg.Options{Quality: jpegQuality})
	case ".tif", ".tiff":
		err = tiff.Encode(writer, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	case ".bmp":
		err = bmp.Encode(writer, img)
	}
	if err != nil {
		return err
	}
	if err = writer.Flush(); err != nil {
		return err
	}
	return file.Close()
}

// Returns the file name for a background with the given parameters. If out
// is an existing directory or ends in a path separator, the name is
// output_<S>_<N>.png inside it, otherwise out itself.
func OutputFileName(out string, s, n int) string {
	if out == "" {
		return ""
	}
	isDir := strings.HasSuffix(out, "/") || strings.HasSuffix(out, string(filepath.Separator))
	if !isDir {
		if st, err := os.Stat(out); err == nil && st.IsDir() {
			isDir = true
		}
	}
	if isDir {
		return filepath.Join(out, fmt.Sprintf("output_%d_%d.png", s, n))
	}
	return out
}
