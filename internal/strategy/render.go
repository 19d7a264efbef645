package strategy

import (
	"github.com/quantframe-lab/quantframe/internal/backtest"
	"github.com/quantframe-lab/quantframe/internal/types"
)

// RenderEquityGrowth projects the closed trades into a cumulative equity
// curve in dollars, starting at the initial capital.
func RenderEquityGrowth(result *backtest.Result) types.Series {
	series := make(types.Series, 0, len(result.Trades()))
	equity := result.InitialCapital()

	for _, trade := range result.Trades() {
		equity += trade.PLFixed()
		series = append(series, types.SeriesPoint{
			Time:  trade.CloseTimestamp().Unwrap(),
			Value: equity,
		})
	}

	return series
}

// RenderPercentageGrowth projects the closed trades into a cumulative sum of
// per-trade price-move returns in percent.
func RenderPercentageGrowth(result *backtest.Result) types.Series {
	series := make(types.Series, 0, len(result.Trades()))
	cumulative := 0.0

	for _, trade := range result.Trades() {
		cumulative += trade.PLRatio()
		series = append(series, types.SeriesPoint{
			Time:  trade.CloseTimestamp().Unwrap(),
			Value: cumulative,
		})
	}

	return series
}

// RenderPortfolioPercentageGrowth projects the closed trades into a
// cumulative sum of portfolio-relative returns in percent.
func RenderPortfolioPercentageGrowth(result *backtest.Result) types.Series {
	series := make(types.Series, 0, len(result.Trades()))
	cumulative := 0.0

	for _, trade := range result.Trades() {
		cumulative += trade.PLPortfolio()
		series = append(series, types.SeriesPoint{
			Time:  trade.CloseTimestamp().Unwrap(),
			Value: cumulative,
		})
	}

	return series
}
