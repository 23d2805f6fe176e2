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

// Package labgen estimates the static background of a video by keeping,
// per pixel or patch, the samples observed with the least local motion and
// taking their median.
package labgen

import (
	"github.com/mlnoga/labgenp/internal/frame"
	"github.com/mlnoga/labgenp/internal/history"
	"github.com/mlnoga/labgenp/internal/motion"
	"github.com/pkg/errors"
)

// Background estimator. Not safe for concurrent use; frames must be
// inserted in temporal order.
type Estimator struct {
	cfg       Config
	diff      *motion.FrameDifference
	agg       *motion.Aggregator
	motionMap *frame.Int32Map
	qom       *frame.Int32Map // quantities of motion
	grid      *history.Grid
	frames    int // frames inserted into the histories
}

// Creates an estimator. All buffers are allocated here and reused for
// every frame.
func New(cfg Config) (*Estimator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	agg, err := motion.NewAggregator(cfg.KernelSize())
	if err != nil {
		return nil, errors.Wrap(ErrInvalidConfiguration, err.Error())
	}
	regions, err := history.PatchRegions(cfg.Width, cfg.Height, cfg.Segments)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidConfiguration, err.Error())
	}
	grid, err := history.NewGrid(cfg.Width, cfg.Height, regions, cfg.S)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidConfiguration, err.Error())
	}
	grid.SetMaxThreads(cfg.MaxThreads)

	return &Estimator{
		cfg:       cfg,
		diff:      motion.NewFrameDifference(),
		agg:       agg,
		motionMap: frame.NewInt32Map(cfg.Width, cfg.Height),
		qom:       frame.NewInt32Map(cfg.Width, cfg.Height),
		grid:      grid,
	}, nil
}

// Returns the configuration
func (e *Estimator) Config() Config { return e.cfg }

// Returns the history capacity S
func (e *Estimator) S() int { return e.cfg.S }

// Returns the aggregation parameter N
func (e *Estimator) N() int { return e.cfg.N }

// Returns the aggregation kernel size
func (e *Estimator) KernelSize() int { return e.agg.Size() }

// Returns true until the first frame has been seen
func (e *Estimator) Seeding() bool { return !e.diff.Seeded() }

// Returns the number of frames inserted into the histories, excluding the
// seed frame
func (e *Estimator) Frames() int { return e.frames }

// Processes the next RGB frame of the sequence. The first frame only seeds
// the frame difference. An empty frame is ignored and leaves the state
// unchanged.
func (e *Estimator) Insert(f *frame.Frame) error {
	if f.Empty() {
		return nil
	}
	if f.Width != e.cfg.Width || f.Height != e.cfg.Height || f.Channels != 3 {
		return errors.Wrapf(ErrDimensionMismatch, "got %s, want %dx%dx3", f.DimensionsToString(), e.cfg.Width, e.cfg.Height)
	}

	ok, err := e.diff.Compute(f, e.motionMap)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	if err := e.agg.Compute(e.motionMap, e.qom); err != nil {
		return err
	}
	if err := e.grid.Insert(e.qom, f); err != nil {
		return err
	}
	e.frames++
	return nil
}

// Returns a new RGB background image, the per-region median over the S
// lowest-motion samples
func (e *Estimator) GenerateBackground() (*frame.Frame, error) {
	dst := frame.New(e.cfg.Width, e.cfg.Height, 3)
	if err := e.GenerateBackgroundInto(dst); err != nil {
		return nil, err
	}
	return dst, nil
}

// Writes the background into dst, which must be an RGB frame of the
// configured size
func (e *Estimator) GenerateBackgroundInto(dst *frame.Frame) error {
	if e.grid.Empty() {
		if e.Seeding() {
			return errors.Wrap(ErrNotReady, "no frame seen")
		}
		return ErrNotReady
	}
	if dst.Width != e.cfg.Width || dst.Height != e.cfg.Height || dst.Channels != 3 {
		return errors.Wrapf(ErrDimensionMismatch, "background %s, want %dx%dx3", dst.DimensionsToString(), e.cfg.Width, e.cfg.Height)
	}
	return e.grid.Median(dst, e.cfg.S)
}

// Returns the motion map of the last inserted frame. The map is owned by
// the estimator and overwritten by the next Insert.
func (e *Estimator) MotionMap() *frame.Int32Map { return e.motionMap }

// Returns the quantities of motion of the last inserted frame. The map is
// owned by the estimator and overwritten by the next Insert.
func (e *Estimator) QuantitiesOfMotion() *frame.Int32Map { return e.qom }
