// Package marketdata provides candle storage and retrieval: packed binary
// files, DuckDB-backed parquet/CSV sources, and remote providers.
package marketdata

import (
	"github.com/quantframe-lab/quantframe/internal/types"
	"github.com/quantframe-lab/quantframe/pkg/errors"
)

// CandleSource provides indexed access to time-ordered OHLCV candles.
type CandleSource interface {
	// Len returns the number of candles available.
	Len() int
	// At returns the candle at index i, ordered by ascending timestamp.
	At(i int) (types.Candle, error)
	// Close releases any underlying resources.
	Close() error
}

// SliceSource is an in-memory CandleSource backed by a candle slice.
type SliceSource struct {
	candles []types.Candle
}

func NewSliceSource(candles []types.Candle) *SliceSource {
	return &SliceSource{candles: candles}
}

func (s *SliceSource) Len() int {
	return len(s.candles)
}

func (s *SliceSource) At(i int) (types.Candle, error) {
	if i < 0 || i >= len(s.candles) {
		return types.Candle{}, errors.Newf(errors.ErrCodeCandleIndexOutOfRange,
			"candle index %d out of range [0, %d)", i, len(s.candles))
	}

	return s.candles[i], nil
}

func (s *SliceSource) Close() error {
	return nil
}
