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

// Package history keeps, per image region, the color samples observed
// with the lowest quantities of motion, and estimates the background as
// their per-channel median.
package history

import (
	"cmp"
	"slices"

	"github.com/mlnoga/labgenp/internal/qsort"
	"github.com/pkg/errors"
)

// A color sample together with the quantity of motion observed around it
// when it was captured. For pixel regions the sample holds one RGB triple,
// for patch regions the interleaved RGB pixels of the whole patch.
type Entry struct {
	Sample []uint8
	Score  uint32
}

// Orders entry scores ascending. This is the only ordering of entries,
// samples never take part in it
func CompareByScore(a, b uint32) int {
	return cmp.Compare(a, b)
}

// A bounded, ascending-by-score sequence of entries for one region.
// Samples are stored back to back in a single buffer allocated on first
// insertion, so a history of capacity S costs S*(4+sampleSize) bytes.
type History struct {
	capacity   int
	sampleSize int
	scores     []uint32 // ascending, len(scores)<=capacity
	samples    []uint8  // len(scores)*sampleSize bytes
}

// Creates an empty history keeping at most capacity entries of
// sampleSize bytes each
func New(capacity, sampleSize int) (*History, error) {
	h := &History{}
	if err := h.init(capacity, sampleSize); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *History) init(capacity, sampleSize int) error {
	if capacity < 1 {
		return errors.Errorf("history capacity %d must be positive", capacity)
	}
	if sampleSize < 1 {
		return errors.Errorf("history sample size %d must be positive", sampleSize)
	}
	h.capacity, h.sampleSize = capacity, sampleSize
	return nil
}

// Returns the number of kept entries
func (h *History) Len() int { return len(h.scores) }

// Returns the i-th entry in ascending score order. The sample aliases
// internal storage and is only valid until the next insertion
func (h *History) entry(i int) Entry {
	return Entry{Sample: h.samples[i*h.sampleSize : (i+1)*h.sampleSize], Score: h.scores[i]}
}

// Inserts a sample with the given score before the first kept entry whose
// score is greater or equal, so newer samples precede older ones with equal
// scores. When full, the highest-scored entry is evicted. A score above all
// kept scores is discarded when the history is full, as it would be evicted
// right away. Returns true if the sample was kept.
func (h *History) Insert(score uint32, sample []uint8) bool {
	if len(sample) != h.sampleSize {
		panic(errors.Errorf("sample of %d bytes for history with sample size %d", len(sample), h.sampleSize))
	}
	if h.scores == nil {
		h.scores = make([]uint32, 0, h.capacity)
		h.samples = make([]uint8, 0, h.capacity*h.sampleSize)
	}

	n := len(h.scores)
	pos, _ := slices.BinarySearchFunc(h.scores, score, CompareByScore)
	if pos == n && n >= h.capacity {
		return false
	}
	if n < h.capacity {
		n++
		h.scores = h.scores[:n]
		h.samples = h.samples[:n*h.sampleSize]
	}

	// shift the tail up by one, dropping the last entry when full
	ss := h.sampleSize
	copy(h.scores[pos+1:n], h.scores[pos:n-1])
	copy(h.samples[(pos+1)*ss:n*ss], h.samples[pos*ss:(n-1)*ss])
	h.scores[pos] = score
	copy(h.samples[pos*ss:(pos+1)*ss], sample)
	return true
}

// Writes the per-channel median over the min(Len(), target) lowest-scored
// entries into dst, which must hold one sample. A target <= 0 uses
// all entries. For even counts the two central order statistics are
// averaged with truncation. Returns false and leaves dst unchanged if the
// history is empty. Does not modify the history.
func (h *History) Median(dst []uint8, target int) bool {
	return h.median(dst, target, nil)
}

// Like Median, using scratch as temporary storage if it is large enough
func (h *History) median(dst []uint8, target int, scratch []uint8) bool {
	count := len(h.scores)
	if target > 0 && target < count {
		count = target
	}
	if count == 0 {
		return false
	}
	if len(dst) != h.sampleSize {
		panic(errors.Errorf("median target of %d bytes for history with sample size %d", len(dst), h.sampleSize))
	}
	if count == 1 {
		copy(dst, h.entry(0).Sample)
		return true
	}

	if cap(scratch) < count {
		scratch = make([]uint8, count)
	}
	scratch = scratch[:count]
	for c := 0; c < h.sampleSize; c++ {
		for i := range scratch {
			scratch[i] = h.samples[i*h.sampleSize+c]
		}
		dst[c] = qsort.QSelectMedianUint8(scratch)
	}
	return true
}
