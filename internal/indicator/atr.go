package indicator

import (
	"github.com/moznion/go-optional"

	"github.com/quantframe-lab/quantframe/pkg/errors"
)

// ATR is the Wilder average true range. The first `period` true ranges are
// averaged to seed the value; every later bar applies Wilder smoothing:
// atr = ((period-1)*prev + tr) / period.
type ATR struct {
	period  int
	tr      *TR
	seedSum float64
	seen    int
	value   optional.Option[float64]
}

func NewATR(period int) (*ATR, error) {
	if period < 1 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod,
			"atr period must be at least 1, got %d", period)
	}

	return &ATR{
		period:  period,
		tr:      NewTR(),
		seedSum: 0,
		seen:    0,
		value:   optional.None[float64](),
	}, nil
}

func (a *ATR) AllocateBar(bar Bar) {
	a.tr.AllocateBar(bar)
	tr := a.tr.Value().Unwrap()
	a.seen++

	if a.value.IsNone() {
		a.seedSum += tr

		if a.seen == a.period {
			a.value = optional.Some(a.seedSum / float64(a.period))
		}

		return
	}

	prev := a.value.Unwrap()
	a.value = optional.Some((float64(a.period-1)*prev + tr) / float64(a.period))
}

func (a *ATR) Value() optional.Option[float64] {
	return a.value
}
