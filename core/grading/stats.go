package grading

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats summarizes the recorded grades of one assignment. StdDev is the
// population standard deviation. A sample of zero grades yields the zero
// Stats by convention, not an error.
type Stats struct {
	Mean   float64
	Median float64
	Min    float64
	Max    float64
	StdDev float64
	N      int
}

// Statistics is the numeric backend behind Stats. Two implementations must
// agree to within floating-point tolerance: the gonum-backed default and a
// dependency-free fallback.
type Statistics interface {
	Mean(xs []float64) float64
	PopStdDev(xs []float64) float64
	Min(xs []float64) float64
	Max(xs []float64) float64
}

func computeStats(backend Statistics, xs []float64) Stats {
	if len(xs) == 0 {
		return Stats{}
	}
	return Stats{
		Mean:   backend.Mean(xs),
		Median: median(xs),
		Min:    backend.Min(xs),
		Max:    backend.Max(xs),
		StdDev: backend.PopStdDev(xs),
		N:      len(xs),
	}
}

// median is the midpoint of the two middle values for even-sized samples.
// gonum has no midpoint-median helper, so both backends share this one.
func median(xs []float64) float64 {
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// GonumStats computes with gonum/stat; the production default.
type GonumStats struct{}

var _ Statistics = (*GonumStats)(nil)

func (GonumStats) Mean(xs []float64) float64 { return stat.Mean(xs, nil) }

func (GonumStats) PopStdDev(xs []float64) float64 { return stat.PopStdDev(xs, nil) }

func (GonumStats) Min(xs []float64) float64 { return floats.Min(xs) }
func (GonumStats) Max(xs []float64) float64 { return floats.Max(xs) }

// NaiveStats computes with no numeric library at all, for builds that cannot
// carry one. Must stay bit-compatible with GonumStats within floating-point
// tolerance for the operations it supports.
type NaiveStats struct{}

var _ Statistics = (*NaiveStats)(nil)

func (NaiveStats) Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func (s NaiveStats) PopStdDev(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	mean := s.Mean(xs)
	var ss float64
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)))
}

func (NaiveStats) Min(xs []float64) float64 {
	min := xs[0]
	for _, x := range xs[1:] {
		if x < min {
			min = x
		}
	}
	return min
}

func (NaiveStats) Max(xs []float64) float64 {
	max := xs[0]
	for _, x := range xs[1:] {
		if x > max {
			max = x
		}
	}
	return max
}
