package buffer

import (
	"fmt"
	"math"
)

// Stats accumulates the moments and the range of a stream of values in a single pass.
type Stats struct {
	n      int
	total  float64
	lo, hi float64
	mean   float64
	// m2 is the sum of squared deviations from the running mean
	m2 float64
}

// NewStats creates an empty accumulator.
func NewStats() *Stats {
	return &Stats{
		lo: math.Inf(1),
		hi: math.Inf(-1),
	}
}

// Push adds a value with welford's update of the mean and the squared deviations.
func (s *Stats) Push(v float64) {
	s.n++
	s.total += v
	delta := v - s.mean
	s.mean += delta / float64(s.n)
	s.m2 += delta * (v - s.mean)
	s.lo = math.Min(s.lo, v)
	s.hi = math.Max(s.hi, v)
}

func (s Stats) Avg() float64 {
	return s.mean
}

func (s Stats) Sum() float64 {
	return s.total
}

func (s Stats) Count() int {
	return s.n
}

// Min is the smallest value pushed, +Inf if there is none.
func (s Stats) Min() float64 {
	return s.lo
}

// Max is the largest value pushed, -Inf if there is none.
func (s Stats) Max() float64 {
	return s.hi
}

// variance divides the squared deviations by n-ddof, or returns 0 if there are not enough values.
func (s Stats) variance(ddof int) float64 {
	if s.n <= ddof {
		return 0
	}
	return s.m2 / float64(s.n-ddof)
}

// Variance is the population variance.
func (s Stats) Variance() float64 {
	return s.variance(0)
}

// StDev is the population standard deviation.
func (s Stats) StDev() float64 {
	return math.Sqrt(s.variance(0))
}

// SampleVariance is the variance with bessel's correction.
func (s Stats) SampleVariance() float64 {
	return s.variance(1)
}

// SampleStDev is the standard deviation with bessel's correction.
func (s Stats) SampleStDev() float64 {
	return math.Sqrt(s.variance(1))
}

// StatsCollector keeps one Stats per dimension of a stream of vectors,
// e.g. one per feature of the rows in a cluster.
type StatsCollector struct {
	size  int
	stats []*Stats
}

func NewStatsCollector(dim int) *StatsCollector {
	sc := &StatsCollector{
		stats: make([]*Stats, dim),
	}
	for i := range sc.stats {
		sc.stats[i] = NewStats()
	}
	return sc
}

// Push adds a vector. It panics if the vector does not match the dimensions of the collector.
func (sc *StatsCollector) Push(v ...float64) {
	if len(v) != len(sc.stats) {
		panic(fmt.Sprintf("vector of %d values for %d dimensions", len(v), len(sc.stats)))
	}
	for i, x := range v {
		sc.stats[i].Push(x)
	}
	sc.size++
}

func (sc *StatsCollector) Stats() []*Stats {
	return sc.stats
}

// Means returns the average of each dimension.
func (sc *StatsCollector) Means() []float64 {
	means := make([]float64, len(sc.stats))
	for i, s := range sc.stats {
		means[i] = s.Avg()
	}
	return means
}

// Size is the number of vectors pushed.
func (sc *StatsCollector) Size() int {
	return sc.size
}
