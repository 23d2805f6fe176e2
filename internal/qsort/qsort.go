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

package qsort

import (
	"cmp"
)

// Select kth lowest element from a slice, with k counted from 1. Partially reorders the slice.
func QSelect[T cmp.Ordered](a []T, k int) T {
	left, right := 0, len(a)-1
	for left < right {
		// partition
		mid := (left + right) >> 1
		pivot := a[mid]
		l, r := left-1, right+1
		for {
			for {
				l++
				if a[l] >= pivot {
					break
				}
			}
			for {
				r--
				if a[r] <= pivot {
					break
				}
			}
			if l >= r {
				break
			} // index in r
			a[l], a[r] = a[r], a[l]
		}
		index := r

		offset := index - left + 1
		if k <= offset {
			right = index
		} else {
			left = index + 1
			k = k - offset
		}
	}
	return a[left]
}

// Select the median of a slice of 8-bit samples. For even lengths, returns the
// truncated mean of the two central order statistics. Partially reorders the slice.
// Slice must not be empty
func QSelectMedianUint8(a []uint8) uint8 {
	n := len(a)
	middle := n >> 1
	if n&1 != 0 {
		return QSelect(a, middle+1)
	}
	lower := QSelect(a, middle)
	// after selection, all elements from index middle on are >= lower
	upper := a[middle]
	for _, v := range a[middle+1:] {
		if v < upper {
			upper = v
		}
	}
	return uint8((int(lower) + int(upper)) / 2)
}
