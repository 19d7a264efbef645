package indicator

import (
	"github.com/moznion/go-optional"

	"github.com/quantframe-lab/quantframe/pkg/errors"
)

const (
	theilSenResponse      = 0.97
	defaultATRCap         = 0.001
	defaultATRLength      = 14
	defaultATRMultiplier  = 0.5
	minTheilSenWindowSize = 2
)

// TheilSen is a median-slope trend baseline. Each bar it computes the slopes
// from the current close to the last windowLength closes, takes their median,
// caps the median at a multiple of the current ATR, and moves the baseline by
// the response fraction of the capped slope.
type TheilSen struct {
	windowLength  int
	atrMultiplier float64
	closeHistory  []float64
	baseline      optional.Option[float64]
	atr           *ATR
	cachedATR     optional.Option[float64]
	slopes        []float64
}

// NewTheilSen creates a TheilSen baseline. The window length is clamped to a
// minimum of 2.
func NewTheilSen(windowLength, atrLength int, atrMultiplier float64) (*TheilSen, error) {
	if windowLength < minTheilSenWindowSize {
		windowLength = minTheilSenWindowSize
	}

	atr, err := NewATR(atrLength)
	if err != nil {
		return nil, err
	}

	if atrMultiplier <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter,
			"theilsen atr multiplier must be positive, got %g", atrMultiplier)
	}

	return &TheilSen{
		windowLength:  windowLength,
		atrMultiplier: atrMultiplier,
		closeHistory:  make([]float64, 0, windowLength+1),
		baseline:      optional.None[float64](),
		atr:           atr,
		cachedATR:     optional.None[float64](),
		slopes:        make([]float64, 0, windowLength),
	}, nil
}

// NewDefaultTheilSen creates a TheilSen baseline with the standard ATR length
// of 14 and slope cap multiplier of 0.5.
func NewDefaultTheilSen(windowLength int) (*TheilSen, error) {
	return NewTheilSen(windowLength, defaultATRLength, defaultATRMultiplier)
}

func (t *TheilSen) AllocateBar(bar Bar) {
	t.atr.AllocateBar(bar)

	if t.atr.Value().IsSome() {
		t.cachedATR = t.atr.Value()
	}

	t.closeHistory = append(t.closeHistory, bar.Close)
	if len(t.closeHistory) > t.windowLength+1 {
		t.closeHistory = t.closeHistory[1:]
	}

	if len(t.closeHistory) < t.windowLength+1 {
		return
	}

	current := bar.Close
	t.slopes = t.slopes[:0]

	// Slope from each historical close to the current one, weighted by its
	// distance in bars. History index len-2 is one bar back.
	for i := 0; i < t.windowLength; i++ {
		historical := t.closeHistory[len(t.closeHistory)-2-i]
		t.slopes = append(t.slopes, (current-historical)/float64(i+1))
	}

	medianSlope := median(t.slopes)

	slopeCap := t.cachedATR.TakeOr(defaultATRCap) * t.atrMultiplier
	cappedSlope := clamp(medianSlope, -slopeCap, slopeCap)

	previous := t.baseline.TakeOr(current)
	t.baseline = optional.Some(previous + theilSenResponse*cappedSlope)
}

func (t *TheilSen) Value() optional.Option[float64] {
	return t.baseline
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}

	if v > hi {
		return hi
	}

	return v
}

// median partially sorts values in place with quickselect and returns the
// median, averaging the two middle elements for even lengths.
func median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}

	mid := n / 2
	selectNth(values, mid)

	if n%2 == 1 {
		return values[mid]
	}

	selectNth(values[:mid], mid-1)

	return (values[mid-1] + values[mid]) / 2
}

// selectNth rearranges values so that values[n] holds the element that would
// be at index n in sorted order, with smaller elements before it.
func selectNth(values []float64, n int) {
	lo, hi := 0, len(values)-1

	for lo < hi {
		pivot := values[(lo+hi)/2]
		i, j := lo, hi

		for i <= j {
			for values[i] < pivot {
				i++
			}

			for values[j] > pivot {
				j--
			}

			if i <= j {
				values[i], values[j] = values[j], values[i]
				i++
				j--
			}
		}

		if n <= j {
			hi = j
		} else if n >= i {
			lo = i
		} else {
			return
		}
	}
}
