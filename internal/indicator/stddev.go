package indicator

import (
	"math"

	"github.com/moznion/go-optional"
)

// StdDev is a streaming sample standard deviation over all points observed so
// far, maintained from running sums. The sample (n-1) denominator is used, so
// the value stays None until two points have been observed.
type StdDev struct {
	count     int
	sum       float64
	sumSquare float64
}

func NewStdDev() *StdDev {
	return &StdDev{
		count:     0,
		sum:       0,
		sumSquare: 0,
	}
}

func (s *StdDev) Allocate(value float64) {
	s.count++
	s.sum += value
	s.sumSquare += value * value
}

func (s *StdDev) Value() optional.Option[float64] {
	if s.count < 2 {
		return optional.None[float64]()
	}

	n := float64(s.count)
	variance := (s.sumSquare - s.sum*s.sum/n) / (n - 1)

	// Floating point cancellation can push a zero variance slightly negative.
	if variance < 0 {
		variance = 0
	}

	return optional.Some(math.Sqrt(variance))
}

// Mean returns the running mean, or None before the first point.
func (s *StdDev) Mean() optional.Option[float64] {
	if s.count == 0 {
		return optional.None[float64]()
	}

	return optional.Some(s.sum / float64(s.count))
}

// Count returns the number of points observed.
func (s *StdDev) Count() int {
	return s.count
}
