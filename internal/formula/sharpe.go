// Package formula implements streaming performance metrics fed with one
// per-trade return at a time.
package formula

import (
	"math"

	"github.com/moznion/go-optional"

	"github.com/quantframe-lab/quantframe/internal/indicator"
)

// DefaultAnnualizationFactor assumes daily-frequency returns over a trading
// year.
const DefaultAnnualizationFactor = 252.0

// SharpeRatio accumulates per-period returns and reports the annualized
// Sharpe ratio: mean excess return over the sample standard deviation of
// excess returns, scaled by the square root of the annualization factor.
// Undefined until two returns have been observed or while volatility is zero.
type SharpeRatio struct {
	riskFreeRate        float64
	annualizationFactor float64
	stdDev              *indicator.StdDev
}

func NewSharpeRatio(riskFreeRate, annualizationFactor float64) *SharpeRatio {
	return &SharpeRatio{
		riskFreeRate:        riskFreeRate,
		annualizationFactor: annualizationFactor,
		stdDev:              indicator.NewStdDev(),
	}
}

func (s *SharpeRatio) Allocate(returnValue float64) {
	s.stdDev.Allocate(returnValue - s.riskFreeRate)
}

func (s *SharpeRatio) Value() optional.Option[float64] {
	if s.stdDev.Count() < 2 {
		return optional.None[float64]()
	}

	volatility := s.stdDev.Value().Unwrap()
	if volatility == 0 {
		return optional.None[float64]()
	}

	meanExcess := s.stdDev.Mean().Unwrap()

	return optional.Some(meanExcess / volatility * math.Sqrt(s.annualizationFactor))
}

func (s *SharpeRatio) Count() int {
	return s.stdDev.Count()
}
