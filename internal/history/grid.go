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

package history

import (
	"image"
	"math"

	"github.com/mlnoga/labgenp/internal/frame"
	"github.com/pkg/errors"
)

// Below this many regions, work is not split across goroutines
const minParallelRegions = 4096

// One history per region of a partitioned frame. Regions are independent,
// so insertion and median extraction can be spread over several threads.
type Grid struct {
	Width      int
	Height     int
	regions    []image.Rectangle
	histories  []History
	pixelsOnly bool // region i is the 1x1 region of pixel i
	maxThreads int
}

// Creates a grid for an RGB frame of the given size, with the same
// history capacity for every region
func NewGrid(width, height int, regions []image.Rectangle, capacity int) (*Grid, error) {
	capacities := make([]int, len(regions))
	for i := range capacities {
		capacities[i] = capacity
	}
	return NewGridWithCapacities(width, height, regions, capacities)
}

// Creates a grid for an RGB frame of the given size, with individual
// history capacities per region
func NewGridWithCapacities(width, height int, regions []image.Rectangle, capacities []int) (*Grid, error) {
	if len(capacities) != len(regions) {
		return nil, errors.Errorf("%d capacities for %d regions", len(capacities), len(regions))
	}
	if err := ValidatePartition(regions, width, height); err != nil {
		return nil, err
	}

	g := &Grid{
		Width:      width,
		Height:     height,
		regions:    append([]image.Rectangle(nil), regions...),
		histories:  make([]History, len(regions)),
		pixelsOnly: true,
		maxThreads: 1,
	}
	for i, r := range regions {
		if err := g.histories[i].init(capacities[i], r.Dx()*r.Dy()*3); err != nil {
			return nil, errors.Wrapf(err, "region %d", i)
		}
		if r != image.Rect(i%width, i/width, i%width+1, i/width+1) {
			g.pixelsOnly = false
		}
	}
	return g, nil
}

// Sets the maximum number of goroutines used by Insert and Median
func (g *Grid) SetMaxThreads(n int) {
	if n < 1 {
		n = 1
	}
	g.maxThreads = n
}

// Returns the number of regions
func (g *Grid) Len() int { return len(g.histories) }

// Returns true if there are no regions, or if any region has an empty
// history. The background cannot be generated before this turns false.
func (g *Grid) Empty() bool {
	if len(g.histories) == 0 {
		return true
	}
	for i := range g.histories {
		if g.histories[i].Len() == 0 {
			return true
		}
	}
	return false
}

// Inserts the current RGB frame into all region histories, scored by the
// quantities of motion. A region's score is the sum over its pixels,
// saturated to the uint32 range.
func (g *Grid) Insert(qom *frame.Int32Map, f *frame.Frame) error {
	if qom.Width != g.Width || qom.Height != g.Height {
		return errors.Errorf("quantities of motion %dx%d do not match grid %dx%d", qom.Width, qom.Height, g.Width, g.Height)
	}
	if f.Width != g.Width || f.Height != g.Height || f.Channels != 3 {
		return errors.Errorf("frame %s does not match grid %dx%dx3", f.DimensionsToString(), g.Width, g.Height)
	}

	if g.pixelsOnly {
		g.parallel(func(lower, upper int) {
			for i := lower; i < upper; i++ {
				g.histories[i].Insert(clampScore(int64(qom.Data[i])), f.Pix[i*3:i*3+3])
			}
		})
		return nil
	}

	g.parallel(func(lower, upper int) {
		var sample []uint8
		for i := lower; i < upper; i++ {
			r := g.regions[i]
			sample = gatherPatch(sample[:0], f, r)
			g.histories[i].Insert(patchScore(qom, r), sample)
		}
	})
	return nil
}

// Writes the per-region median over at most target lowest-scored entries
// into dst, an RGB frame of the grid's size. Regions with empty histories
// are left unchanged.
func (g *Grid) Median(dst *frame.Frame, target int) error {
	if dst.Width != g.Width || dst.Height != g.Height || dst.Channels != 3 {
		return errors.Errorf("background %s does not match grid %dx%dx3", dst.DimensionsToString(), g.Width, g.Height)
	}

	if g.pixelsOnly {
		g.parallel(func(lower, upper int) {
			var scratch []uint8
			for i := lower; i < upper; i++ {
				h := &g.histories[i]
				if cap(scratch) < h.Len() {
					scratch = make([]uint8, h.capacity)
				}
				h.median(dst.Pix[i*3:i*3+3], target, scratch)
			}
		})
		return nil
	}

	g.parallel(func(lower, upper int) {
		var scratch, patch []uint8
		for i := lower; i < upper; i++ {
			h := &g.histories[i]
			if cap(scratch) < h.Len() {
				scratch = make([]uint8, h.capacity)
			}
			if cap(patch) < h.sampleSize {
				patch = make([]uint8, h.sampleSize)
			}
			patch = patch[:h.sampleSize]
			if h.median(patch, target, scratch) {
				scatterPatch(dst, g.regions[i], patch)
			}
		}
	})
	return nil
}

// Runs fn over batches of region indices, limiting parallelism to maxThreads
func (g *Grid) parallel(fn func(lower, upper int)) {
	n := len(g.histories)
	if g.maxThreads <= 1 || n < minParallelRegions {
		fn(0, n)
		return
	}

	// split into no fewer than 8*maxThreads work packages
	numBatches := 8 * g.maxThreads
	batchSize := (n + numBatches - 1) / numBatches
	sem := make(chan bool, g.maxThreads)
	for lower := 0; lower < n; lower += batchSize {
		upper := min(lower+batchSize, n)
		sem <- true
		go func(lower, upper int) {
			defer func() { <-sem }()
			fn(lower, upper)
		}(lower, upper)
	}
	for i := 0; i < cap(sem); i++ { // wait for goroutines to finish
		sem <- true
	}
}

func clampScore(v int64) uint32 {
	if v < 0 {
		return 0
	}
	if v > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(v)
}

// Sums the quantities of motion over a region
func patchScore(qom *frame.Int32Map, r image.Rectangle) uint32 {
	sum := int64(0)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for _, v := range qom.Data[y*qom.Width+r.Min.X : y*qom.Width+r.Max.X] {
			sum += int64(v)
		}
	}
	return clampScore(sum)
}

// Appends the RGB pixels of a region to buf, row by row
func gatherPatch(buf []uint8, f *frame.Frame, r image.Rectangle) []uint8 {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		buf = append(buf, f.Pix[f.Offset(r.Min.X, y):f.Offset(r.Max.X-1, y)+3]...)
	}
	return buf
}

// Writes the RGB pixels of a region from a row by row patch buffer
func scatterPatch(dst *frame.Frame, r image.Rectangle, patch []uint8) {
	rowBytes := r.Dx() * 3
	for y := r.Min.Y; y < r.Max.Y; y++ {
		o := dst.Offset(r.Min.X, y)
		copy(dst.Pix[o:o+rowBytes], patch[(y-r.Min.Y)*rowBytes:])
	}
}
