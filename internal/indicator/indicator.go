// Package indicator implements streaming technical indicators. Each indicator
// consumes one data point at a time through Allocate and exposes its current
// value through Value, which stays None until the indicator has observed
// enough points to produce a defined result.
package indicator

import (
	"github.com/moznion/go-optional"
)

// Streaming is the contract for indicators fed with a single scalar per bar,
// typically the close price.
type Streaming interface {
	// Allocate feeds the next data point into the indicator.
	Allocate(value float64)
	// Value returns the current indicator value, or None during warm-up.
	Value() optional.Option[float64]
}

// Bar carries the per-bar fields consumed by range-based indicators.
type Bar struct {
	High  float64
	Low   float64
	Close float64
}

// StreamingHLC is the contract for indicators that need the full bar rather
// than a single scalar.
type StreamingHLC interface {
	AllocateBar(bar Bar)
	Value() optional.Option[float64]
}
