package indicator

import (
	"github.com/moznion/go-optional"

	"github.com/quantframe-lab/quantframe/pkg/errors"
)

// Kalman is a one-dimensional Kalman filter used as a price smoother.
// q is the process noise, r the measurement noise. The first observed point
// seeds the estimate with an initial error variance of 1.
type Kalman struct {
	q        float64
	r        float64
	estimate float64
	p        float64
	seeded   bool
}

func NewKalman(q, r float64) (*Kalman, error) {
	if q <= 0 || r <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter,
			"kalman noise parameters must be positive, got q=%g r=%g", q, r)
	}

	return &Kalman{
		q:        q,
		r:        r,
		estimate: 0,
		p:        1.0,
		seeded:   false,
	}, nil
}

func (k *Kalman) Allocate(value float64) {
	if !k.seeded {
		k.estimate = value
		k.p = 1.0
		k.seeded = true

		return
	}

	// Predict step: the estimate carries over, uncertainty grows by q.
	k.p += k.q

	// Update step.
	gain := k.p / (k.p + k.r)
	k.estimate += gain * (value - k.estimate)
	k.p *= 1 - gain
}

func (k *Kalman) Value() optional.Option[float64] {
	if !k.seeded {
		return optional.None[float64]()
	}

	return optional.Some(k.estimate)
}
