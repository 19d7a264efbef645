package formula

import (
	"math"

	"github.com/moznion/go-optional"
)

// APR compounds the mean per-trade return over the annualization factor:
// (1 + mean)^factor - 1. The mean is taken over trades rather than calendar
// periods, so the result overstates annualized return when trades span more
// than one period each.
type APR struct {
	sum                 float64
	count               int
	annualizationFactor float64
}

func NewAPR(annualizationFactor float64) *APR {
	return &APR{
		sum:                 0,
		count:               0,
		annualizationFactor: annualizationFactor,
	}
}

func (a *APR) Allocate(returnValue float64) {
	a.sum += returnValue
	a.count++
}

func (a *APR) Value() optional.Option[float64] {
	if a.count == 0 {
		return optional.None[float64]()
	}

	mean := a.sum / float64(a.count)

	return optional.Some(math.Pow(1+mean, a.annualizationFactor) - 1)
}
