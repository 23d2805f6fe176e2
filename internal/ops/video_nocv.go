//go:build !withcv
// +build !withcv

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
	"github.com/pkg/errors"
)

// Reports whether video containers can be read and written
const VideoSupported = false

var errNoVideo = errors.New("video support not enabled: rebuild with -tags=withcv to read and write video files")

// Stub when built without OpenCV
func OpenVideo(fileName string) (FrameSource, error) {
	return nil, errors.Wrap(errNoVideo, fileName)
}

// Stub when built without OpenCV
func NewVideoRecorder(fileName string, fps float64, width, height int) (Recorder, error) {
	return nil, errors.Wrap(errNoVideo, fileName)
}
