package types

// SeriesPoint is one point of a rendered time series.
type SeriesPoint struct {
	Time  int64   `json:"time" yaml:"time"`
	Value float64 `json:"value" yaml:"value"`
}

// Series is an ordered time series rendered from a backtest result.
type Series []SeriesPoint
