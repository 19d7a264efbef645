package strategy

import (
	"github.com/quantframe-lab/quantframe/internal/backtest"
	"github.com/quantframe-lab/quantframe/internal/composition"
	"github.com/quantframe-lab/quantframe/internal/logger"
	"github.com/quantframe-lab/quantframe/internal/marketdata"
)

// NewDefaultRegistry registers every built-in strategy over the given candle
// source. Strategies that only consume closing prices share one composition;
// the Theil-Sen strategy gets a high/low/close composition for its ATR cap.
func NewDefaultRegistry(source marketdata.CandleSource, config backtest.Config, log *logger.Logger) (*Registry, error) {
	closes := composition.NewCloseComposition(
		"candle-closes", "Candle Closes", "timestamped closing prices", source)
	bars := composition.NewHLCComposition(
		"candle-bars", "Candle Bars", "timestamped high/low/close bars", source)

	registry := NewRegistry()

	for _, s := range []Strategy{
		NewSMACrossover(closes, config, log),
		NewSMAPeriodOptimizable(closes, config, log),
		NewDoubleSMACrossover(closes, config, log),
		NewKalmanCrossover(closes, config, log),
		NewTheilSenCrossover(bars, config, log),
		NewRenkoSMACrossover(closes, config, log),
	} {
		if err := registry.Register(s); err != nil {
			return nil, err
		}
	}

	return registry, nil
}
