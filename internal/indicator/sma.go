package indicator

import (
	"github.com/moznion/go-optional"

	"github.com/quantframe-lab/quantframe/pkg/errors"
)

// SMA is a streaming simple moving average over a fixed period. It keeps a
// running sum and a bounded window so each update is O(1).
type SMA struct {
	period int
	window []float64
	sum    float64
}

func NewSMA(period int) (*SMA, error) {
	if period < 1 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod,
			"sma period must be at least 1, got %d", period)
	}

	return &SMA{
		period: period,
		window: make([]float64, 0, period),
		sum:    0,
	}, nil
}

func (s *SMA) Allocate(value float64) {
	s.window = append(s.window, value)
	s.sum += value

	if len(s.window) > s.period {
		s.sum -= s.window[0]
		s.window = s.window[1:]
	}
}

func (s *SMA) Value() optional.Option[float64] {
	if len(s.window) < s.period {
		return optional.None[float64]()
	}

	return optional.Some(s.sum / float64(s.period))
}
