package types

// Metric identifies one aggregate performance metric of a backtest run.
type Metric string

const (
	MetricSharpeRatio           Metric = "sharpe_ratio"
	MetricAPR                   Metric = "apr"
	MetricMostConsecutiveWins   Metric = "most_consecutive_wins"
	MetricMostConsecutiveLosses Metric = "most_consecutive_losses"
	MetricStandardDeviation     Metric = "standard_deviation"
	MetricTotalFixedReturn      Metric = "total_fixed_return"
	MetricTotalRatioReturn      Metric = "total_ratio_return"
)

// Metrics maps metric kinds to their computed values. Metrics that are
// undefined for a run (for example Sharpe with fewer than two closed trades)
// are simply absent.
type Metrics map[Metric]float64
