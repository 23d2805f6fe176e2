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

// Package stats computes summary statistics over motion and quantities of
// motion maps, for logging and CSV export.
package stats

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Number of histogram bins used for the noise estimate
const noiseBins = 256

// Basic statistics on a map
type BasicStats struct {
	Min    float64 // Minimum
	Max    float64 // Maximum
	Mean   float64 // Mean (average)
	StdDev float64 // Standard deviation (norm 2, sigma)
	Median float64 // Median
	Active float64 // Fraction of values above zero

	Noise float64 // Noise estimation, not calculated by default (expensive)
}

// Pretty print basic stats to string
func (s *BasicStats) String() string {
	return fmt.Sprintf("Min %.6g Max %.6g Mean %.6g StdDev %.6g Median %.6g Active %.4g Noise %.4g",
		s.Min, s.Max, s.Mean, s.StdDev, s.Median, s.Active, s.Noise)
}

// Pretty print basic stats to CSV header
func (s *BasicStats) ToCSVHeader() string {
	return "Min,Max,Mean,StdDev,Median,Active,Noise"
}

// Pretty print basic stats to CSV line item
func (s *BasicStats) ToCSVLine() string {
	return fmt.Sprintf("%.6g,%.6g,%.6g,%.6g,%.6g,%.4g,%.4g",
		s.Min, s.Max, s.Mean, s.StdDev, s.Median, s.Active, s.Noise)
}

// Calculate basic statistics for a map. Returns zero stats for empty data
func CalcBasicStats(data []int32) *BasicStats {
	s := &BasicStats{}
	if len(data) == 0 {
		return s
	}

	xs := make([]float64, len(data))
	active := 0
	for i, d := range data {
		xs[i] = float64(d)
		if d > 0 {
			active++
		}
	}
	s.Min, s.Max = floats.Min(xs), floats.Max(xs)
	s.Mean, s.StdDev = stat.PopMeanStdDev(xs, nil)
	s.Active = float64(active) / float64(len(xs))

	sort.Float64s(xs)
	s.Median = stat.Quantile(0.5, stat.Empirical, xs, nil)
	return s
}

// Calculates basic statistics plus a noise estimate from a Gaussian fitted
// to the histogram peak. Leaves the noise at NaN if the fit fails.
func CalcExtendedStats(data []int32) *BasicStats {
	s := CalcBasicStats(data)
	if len(data) == 0 || s.Max <= s.Min {
		return s
	}

	bins := make([]int32, noiseBins)
	xs := make([]float64, len(data))
	for i, d := range data {
		xs[i] = float64(d)
	}
	Histogram(xs, s.Min, s.Max, bins)
	_, sigma, err := GetModeStdDevFromHistogram(bins, s.Min, s.Max)
	if err != nil {
		s.Noise = math.NaN()
	} else {
		s.Noise = math.Abs(sigma)
	}
	return s
}
