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

package labgen

import (
	"github.com/mlnoga/labgenp/internal/motion"
	"github.com/pkg/errors"
)

// Default parameter set
const (
	DefaultS = 19
	DefaultN = 3
)

// Returned for parameters that cannot form a working estimator
var ErrInvalidConfiguration = errors.New("invalid configuration")

// Returned when a background is requested before any frame was inserted
// into the histories
var ErrNotReady = errors.New("background not ready, insert at least two frames")

// Returned when a non-empty frame does not match the configured dimensions
var ErrDimensionMismatch = errors.New("frame dimensions do not match estimator")

// Estimator parameters
type Config struct {
	Height     int // frame height in pixels
	Width      int // frame width in pixels
	S          int // history capacity per region, also the median window
	N          int // aggregation parameter, kernel size is (min(Height,Width)/N)|1
	Segments   int // patches per axis, 0 for pixel granularity
	MaxThreads int // goroutines for region fan-out, <=1 runs serially
}

// Returns the aggregation kernel size implied by the configuration
func (c *Config) KernelSize() int {
	if c.N < 1 {
		return 0
	}
	return motion.KernelSize(c.Height, c.Width, c.N)
}

// Checks the configuration, returning an error wrapping
// ErrInvalidConfiguration on failure
func (c *Config) Validate() error {
	if c.Height < 1 || c.Width < 1 {
		return errors.Wrapf(ErrInvalidConfiguration, "frame size %dx%d", c.Width, c.Height)
	}
	if c.S < 1 {
		return errors.Wrapf(ErrInvalidConfiguration, "S=%d must be at least 1", c.S)
	}
	if c.N < 1 {
		return errors.Wrapf(ErrInvalidConfiguration, "N=%d must be at least 1", c.N)
	}
	if k := c.KernelSize(); k/2 < 1 {
		return errors.Wrapf(ErrInvalidConfiguration, "kernel size %d for %dx%d and N=%d has no half-width", k, c.Width, c.Height, c.N)
	}
	if c.Segments < 0 || c.Segments > c.Width || c.Segments > c.Height {
		return errors.Wrapf(ErrInvalidConfiguration, "%d segments for %dx%d frame", c.Segments, c.Width, c.Height)
	}
	return nil
}
