//go:build withcv
// +build withcv

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
	"path/filepath"
	"strings"

	"github.com/mlnoga/labgenp/internal/frame"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// Reports whether video containers can be read and written
const VideoSupported = true

// Frame source decoding a video file with OpenCV
type videoSource struct {
	capture *gocv.VideoCapture
	mat     gocv.Mat
	nextID  int
}

// Opens a video file as a frame source
func OpenVideo(fileName string) (FrameSource, error) {
	capture, err := gocv.VideoCaptureFile(fileName)
	if err != nil {
		return nil, errors.Wrapf(err, "opening video %s", fileName)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, errors.Errorf("unable to open video %s", fileName)
	}
	return &videoSource{capture: capture, mat: gocv.NewMat()}, nil
}

func (s *videoSource) Next() (*frame.Frame, error) {
	if ok := s.capture.Read(&s.mat); !ok || s.mat.Empty() {
		return nil, io.EOF
	}
	if s.mat.Type() != gocv.MatTypeCV8UC3 {
		return nil, errors.Errorf("%d: unsupported video frame type %v", s.nextID, s.mat.Type())
	}
	pix := s.mat.ToBytes() // a copy, converted from BGR in place
	for i := 0; i+2 < len(pix); i += 3 {
		pix[i], pix[i+2] = pix[i+2], pix[i]
	}
	f, err := frame.NewFromPix(s.mat.Cols(), s.mat.Rows(), 3, pix)
	if err != nil {
		return nil, errors.Wrapf(err, "%d", s.nextID)
	}
	f.ID = s.nextID
	s.nextID++
	return f, nil
}

func (s *videoSource) Close() error {
	s.mat.Close()
	return s.capture.Close()
}

// Recorder encoding RGB frames into a video file with OpenCV
type videoRecorder struct {
	writer *gocv.VideoWriter
	width  int
	height int
	bgr    []byte
}

// Creates a video recorder with the given frame rate and frame size. The
// codec is chosen from the file suffix.
func NewVideoRecorder(fileName string, fps float64, width, height int) (Recorder, error) {
	codec := "MJPG"
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".mp4", ".m4v":
		codec = "mp4v"
	}
	writer, err := gocv.VideoWriterFile(fileName, codec, fps, width, height, true)
	if err != nil {
		return nil, errors.Wrapf(err, "creating video %s", fileName)
	}
	return &videoRecorder{writer: writer, width: width, height: height}, nil
}

func (r *videoRecorder) Write(f *frame.Frame) error {
	if f.Width != r.width || f.Height != r.height {
		return errors.Errorf("%d: frame %s does not match video %dx%d", f.ID, f.DimensionsToString(), r.width, r.height)
	}
	if f.Channels != 3 {
		return errors.Errorf("%d: cannot record %d-channel frame", f.ID, f.Channels)
	}

	// OpenCV expects BGR byte order
	if cap(r.bgr) < len(f.Pix) {
		r.bgr = make([]byte, len(f.Pix))
	}
	bgr := r.bgr[:len(f.Pix)]
	for i := 0; i < len(f.Pix); i += 3 {
		bgr[i], bgr[i+1], bgr[i+2] = f.Pix[i+2], f.Pix[i+1], f.Pix[i]
	}
	mat, err := gocv.NewMatFromBytes(f.Height, f.Width, gocv.MatTypeCV8UC3, bgr)
	if err != nil {
		return err
	}
	defer mat.Close()
	return r.writer.Write(mat)
}

func (r *videoRecorder) Close() error {
	return r.writer.Close()
}
