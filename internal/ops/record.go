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
	"github.com/mlnoga/labgenp/internal/frame"
	"github.com/pkg/errors"
)

// A sink for visualization frames
type Recorder interface {
	Write(f *frame.Frame) error
	Close() error
}

// Recorder writing each frame to an image file named after a %d pattern
type sequenceRecorder struct {
	pattern string
	next    int
}

func (r *sequenceRecorder) Write(f *frame.Frame) error {
	fileName := expandPattern(r.pattern, r.next)
	r.next++
	if err := SaveFrame(f, fileName); err != nil {
		return errors.Wrapf(err, "%d: recording to %s", f.ID, fileName)
	}
	return nil
}

func (r *sequenceRecorder) Close() error { return nil }

// Creates a recorder for frames of the given size. Video container suffixes
// produce a video, anything else is an image file pattern which must
// contain a %d verb.
func NewRecorder(path string, fps float64, width, height int) (Recorder, error) {
	if IsVideoFile(path) {
		return NewVideoRecorder(path, fps, width, height)
	}
	if !idVerb.MatchString(path) {
		return nil, errors.Errorf("record pattern %s needs a %%d verb or a video suffix", path)
	}
	return &sequenceRecorder{pattern: path}, nil
}
