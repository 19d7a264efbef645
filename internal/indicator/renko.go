package indicator

import (
	"math"

	"github.com/moznion/go-optional"

	"github.com/quantframe-lab/quantframe/pkg/errors"
)

// Renko tracks a fixed-size brick price. The first close seeds the brick;
// afterwards the brick price only moves when the close drifts further than the
// brick size away from it, filtering moves smaller than one brick.
type Renko struct {
	brickSize float64
	lastBrick optional.Option[float64]
}

func NewRenko(brickSize float64) (*Renko, error) {
	if brickSize <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter,
			"renko brick size must be positive, got %g", brickSize)
	}

	return &Renko{
		brickSize: brickSize,
		lastBrick: optional.None[float64](),
	}, nil
}

func (r *Renko) Allocate(value float64) {
	if r.lastBrick.IsNone() {
		r.lastBrick = optional.Some(value)

		return
	}

	if math.Abs(value-r.lastBrick.Unwrap()) > r.brickSize {
		r.lastBrick = optional.Some(value)
	}
}

func (r *Renko) Value() optional.Option[float64] {
	return r.lastBrick
}
