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
)

// A sequence of frames in temporal order. Next returns io.EOF after the
// last frame.
type FrameSource interface {
	Next() (*frame.Frame, error)
	Close() error
}

// Frame source over promises. Decodes up to batch frames ahead in parallel
// and hands them out in order.
type promiseSource struct {
	promises []Promise
	next     int
	batch    int
	buf      []*frame.Frame
}

// Returns a frame source materializing the promises in order, batch at a time
func NewPromiseSource(promises []Promise, batch int) FrameSource {
	return &promiseSource{promises: promises, batch: max(batch, 1)}
}

func (s *promiseSource) Next() (*frame.Frame, error) {
	if len(s.buf) == 0 {
		if s.next >= len(s.promises) {
			return nil, io.EOF
		}
		end := min(s.next+s.batch, len(s.promises))
		fs, err := MaterializeAll(s.promises[s.next:end], s.batch)
		if err != nil {
			return nil, err
		}
		s.next, s.buf = end, fs
	}
	f := s.buf[0]
	s.buf[0] = nil // release for GC once consumed
	s.buf = s.buf[1:]
	return f, nil
}

func (s *promiseSource) Close() error {
	s.buf, s.promises = nil, nil
	return nil
}

// Video container suffixes handled by the video source and recorder
var videoSuffixes = []string{".avi", ".mp4", ".mkv", ".mov", ".m4v", ".webm", ".mpg", ".mpeg"}

// Returns true if the file name has a video container suffix
func IsVideoFile(fileName string) bool {
	suffix := strings.ToLower(filepath.Ext(fileName))
	for _, s := range videoSuffixes {
		if suffix == s {
			return true
		}
	}
	return false
}
