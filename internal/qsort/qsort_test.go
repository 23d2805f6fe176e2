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
	"sort"
	"testing"

	"github.com/valyala/fastrand"
)

func TestMedianUint8(t *testing.T) {
	rng := fastrand.RNG{}
	for i := 1; i < 200; i++ {
		arr := make([]uint8, i)
		for j := range arr {
			arr[j] = uint8(rng.Uint32n(256))
		}
		sorted := append([]uint8(nil), arr...)
		sort.Slice(sorted, func(a, b int) bool { return sorted[a] < sorted[b] })

		var expect uint8
		if (i & 1) != 0 {
			expect = sorted[i/2]
		} else {
			expect = uint8((int(sorted[i/2-1]) + int(sorted[i/2])) / 2)
		}

		if res := QSelectMedianUint8(arr); res != expect {
			t.Errorf("median of %v got %d expect %d", sorted, res, expect)
		}
	}
}

func TestMedianUint8Truncates(t *testing.T) {
	if res := QSelectMedianUint8([]uint8{255, 254}); res != 254 {
		t.Errorf("got %d expect 254", res)
	}
	if res := QSelectMedianUint8([]uint8{3, 0, 1, 2}); res != 1 {
		t.Errorf("got %d expect 1", res)
	}
}

func TestSelect(t *testing.T) {
	rng := fastrand.RNG{}
	arr := make([]int32, 300)
	for j := range arr {
		arr[j] = int32(rng.Uint32n(50)) - 25
	}
	sorted := append([]int32(nil), arr...)
	sort.Slice(sorted, func(a, b int) bool { return sorted[a] < sorted[b] })
	for k := 1; k <= len(arr); k += 17 {
		work := append([]int32(nil), arr...)
		if got := QSelect(work, k); got != sorted[k-1] {
			t.Errorf("select k=%d got %d expect %d", k, got, sorted[k-1])
		}
	}
}
