package indicator

import (
	"math"

	"github.com/moznion/go-optional"
)

// TR is the streaming true range: the largest of the current bar's range and
// the gaps from the previous close. The first bar has no previous close, so
// its true range is the plain high-low range.
type TR struct {
	value     optional.Option[float64]
	prevClose optional.Option[float64]
}

func NewTR() *TR {
	return &TR{
		value:     optional.None[float64](),
		prevClose: optional.None[float64](),
	}
}

func (t *TR) AllocateBar(bar Bar) {
	tr := bar.High - bar.Low

	if t.prevClose.IsSome() {
		prev := t.prevClose.Unwrap()
		tr = math.Max(tr, math.Max(math.Abs(bar.High-prev), math.Abs(bar.Low-prev)))
	}

	t.value = optional.Some(tr)
	t.prevClose = optional.Some(bar.Close)
}

func (t *TR) Value() optional.Option[float64] {
	return t.value
}
