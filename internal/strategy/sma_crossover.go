package strategy

import (
	"github.com/moznion/go-optional"

	"github.com/quantframe-lab/quantframe/internal/backtest"
	"github.com/quantframe-lab/quantframe/internal/composition"
	"github.com/quantframe-lab/quantframe/internal/indicator"
	"github.com/quantframe-lab/quantframe/internal/logger"
	"github.com/quantframe-lab/quantframe/internal/optimizer"
	"github.com/quantframe-lab/quantframe/internal/types"
)

const smaCrossoverPeriod = 200

// SMACrossover goes LONG while the close is above its 200-period simple
// moving average and SHORT below it, committing the full available capital
// per trade. It has no hyperparameters.
type SMACrossover struct {
	baseStrategy
}

func NewSMACrossover(comp composition.Composition, config backtest.Config, log *logger.Logger) *SMACrossover {
	return &SMACrossover{
		baseStrategy: newBaseStrategy(
			"sma-200-crossover",
			"SMA 200 price crossover",
			"Long above the 200-period simple moving average, short below it.",
			comp, config, log),
	}
}

func (s *SMACrossover) Backtest(_ optional.Option[optimizer.ParameterMap]) (*backtest.Result, error) {
	rows, err := s.ComposedData()
	if err != nil {
		return nil, err
	}

	sma, err := indicator.NewSMA(smaCrossoverPeriod)
	if err != nil {
		return nil, err
	}

	decide := func(_ composition.Row, _ int64, closePrice float64) (optional.Option[types.TradeSide], error) {
		sma.Allocate(closePrice)

		if sma.Value().IsNone() {
			return optional.None[types.TradeSide](), nil
		}

		if closePrice > sma.Value().Unwrap() {
			return optional.Some(types.TradeSideLong), nil
		}

		return optional.Some(types.TradeSideShort), nil
	}

	opts := runOptions{fraction: 1.0, stopOnZeroPortfolio: false}

	return runSimulation(s.newManager(), rows, s.comp.Fields(), opts, decide)
}

func (s *SMACrossover) Optimize() (optional.Option[[]optimizer.OptimizedResult], error) {
	return optional.None[[]optimizer.OptimizedResult](), nil
}

func (s *SMACrossover) OptimizationTarget(result *backtest.Result) float64 {
	return sharpeTarget(result)
}
