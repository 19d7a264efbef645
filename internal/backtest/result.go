package backtest

import (
	"time"

	"github.com/quantframe-lab/quantframe/internal/formula"
	"github.com/quantframe-lab/quantframe/internal/indicator"
	"github.com/quantframe-lab/quantframe/internal/types"
)

// Result is the immutable outcome of one finished backtest: the closed
// trades and the aggregate metrics computed once over them.
type Result struct {
	initialCapital float64
	finalCapital   float64
	trades         []*types.Trade
	metrics        types.Metrics
	duration       time.Duration
}

func newResult(m *Manager, duration time.Duration) *Result {
	closed := make([]*types.Trade, 0, len(m.trades))

	for _, trade := range m.trades {
		if trade.IsClosed() {
			closed = append(closed, trade)
		}
	}

	return &Result{
		initialCapital: m.config.InitialCapital,
		finalCapital:   m.availableCapital,
		trades:         closed,
		metrics:        computeMetrics(closed, m.config),
		duration:       duration,
	}
}

func (r *Result) InitialCapital() float64 {
	return r.initialCapital
}

func (r *Result) FinalCapital() float64 {
	return r.finalCapital
}

// Trades returns the closed trades in close order. Callers must not mutate
// the returned slice.
func (r *Result) Trades() []*types.Trade {
	return r.trades
}

func (r *Result) Metrics() types.Metrics {
	return r.metrics
}

// Duration is the wall-clock time of the run, recorded for diagnostics.
func (r *Result) Duration() time.Duration {
	return r.duration
}

// computeMetrics feeds each closed trade's returns through the streaming
// accumulators. Sharpe, APR, and standard deviation work on fractional
// portfolio returns; streaks look only at the sign of the price-move ratio.
// Undefined metrics (too few trades, zero volatility) are omitted from the
// map rather than reported as zero.
func computeMetrics(closed []*types.Trade, config Config) types.Metrics {
	sharpe := formula.NewSharpeRatio(config.RiskFreeRate, config.AnnualizationFactor)
	apr := formula.NewAPR(config.AnnualizationFactor)
	streaks := formula.NewConsecutiveWinsLosses()
	stdDev := indicator.NewStdDev()

	for _, trade := range closed {
		portfolioReturn := trade.PLPortfolio() / 100

		sharpe.Allocate(portfolioReturn)
		apr.Allocate(portfolioReturn)
		stdDev.Allocate(portfolioReturn)
		streaks.Allocate(trade.PLRatio())
	}

	metrics := types.Metrics{
		types.MetricMostConsecutiveWins:   float64(streaks.MostWins()),
		types.MetricMostConsecutiveLosses: float64(streaks.MostLosses()),
	}

	if sharpe.Value().IsSome() {
		metrics[types.MetricSharpeRatio] = sharpe.Value().Unwrap()
	}

	if apr.Value().IsSome() {
		metrics[types.MetricAPR] = apr.Value().Unwrap()
	}

	if stdDev.Value().IsSome() {
		metrics[types.MetricStandardDeviation] = stdDev.Value().Unwrap()
	}

	finalCapital := config.InitialCapital
	for _, trade := range closed {
		finalCapital += trade.PLFixed()
	}

	metrics[types.MetricTotalFixedReturn] = finalCapital - config.InitialCapital

	if config.InitialCapital > 0 {
		metrics[types.MetricTotalRatioReturn] =
			(finalCapital - config.InitialCapital) / config.InitialCapital * 100
	}

	return metrics
}
