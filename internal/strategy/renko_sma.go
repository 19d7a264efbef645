package strategy

import (
	"github.com/moznion/go-optional"

	"github.com/quantframe-lab/quantframe/internal/backtest"
	"github.com/quantframe-lab/quantframe/internal/composition"
	"github.com/quantframe-lab/quantframe/internal/indicator"
	"github.com/quantframe-lab/quantframe/internal/logger"
	"github.com/quantframe-lab/quantframe/internal/optimizer"
	"github.com/quantframe-lab/quantframe/internal/types"
	"github.com/quantframe-lab/quantframe/pkg/errors"
)

// ParamRenkoBrickSize is the Renko brick threshold hyperparameter, in price
// units.
const ParamRenkoBrickSize = "renko_brick_size"

// RenkoSMACrossover filters price noise through fixed-size Renko bricks and
// compares the brick price against a simple moving average of the close:
// LONG while the brick price is above the SMA, SHORT below it. Both the
// brick size and the SMA period are grid-searched.
type RenkoSMACrossover struct {
	baseStrategy
}

func NewRenkoSMACrossover(comp composition.Composition, config backtest.Config, log *logger.Logger) *RenkoSMACrossover {
	return &RenkoSMACrossover{
		baseStrategy: newBaseStrategy(
			"renko-sma-crossover",
			"SMA Renko optimizable period price crossover",
			"Renko brick price against a moving average, both grid-searched.",
			comp, config, log),
	}
}

func (s *RenkoSMACrossover) Backtest(params optional.Option[optimizer.ParameterMap]) (*backtest.Result, error) {
	if params.IsNone() {
		return nil, errors.Newf(errors.ErrCodeMissingParameter,
			"strategy %q requires %q and %q", s.ID(), ParamSMAPeriod, ParamRenkoBrickSize)
	}

	period, err := optimizer.SizeFromMap(params.Unwrap(), ParamSMAPeriod)
	if err != nil {
		return nil, err
	}

	brickSize, err := optimizer.SizeFromMap(params.Unwrap(), ParamRenkoBrickSize)
	if err != nil {
		return nil, err
	}

	rows, err := s.ComposedData()
	if err != nil {
		return nil, err
	}

	sma, err := indicator.NewSMA(period)
	if err != nil {
		return nil, err
	}

	renko, err := indicator.NewRenko(float64(brickSize))
	if err != nil {
		return nil, err
	}

	decide := func(_ composition.Row, _ int64, closePrice float64) (optional.Option[types.TradeSide], error) {
		sma.Allocate(closePrice)
		renko.Allocate(closePrice)

		if sma.Value().IsNone() || renko.Value().IsNone() {
			return optional.None[types.TradeSide](), nil
		}

		if renko.Value().Unwrap() > sma.Value().Unwrap() {
			return optional.Some(types.TradeSideLong), nil
		}

		return optional.Some(types.TradeSideShort), nil
	}

	opts := runOptions{fraction: 0.70, stopOnZeroPortfolio: false}

	return runSimulation(s.newManager(), rows, s.comp.Fields(), opts, decide)
}

func (s *RenkoSMACrossover) Optimize() (optional.Option[[]optimizer.OptimizedResult], error) {
	parameters := []optimizer.Parameter{
		optimizer.Numeric(optimizer.NumericParameter{
			Name: ParamSMAPeriod, Start: 10, End: 200, Step: 30,
		}),
		optimizer.Numeric(optimizer.NumericParameter{
			Name: ParamRenkoBrickSize, Start: 10, End: 400, Step: 30,
		}),
	}

	results, err := s.newOptimizer().Optimize(s, parameters)
	if err != nil {
		return optional.None[[]optimizer.OptimizedResult](), err
	}

	return optional.Some(results), nil
}

func (s *RenkoSMACrossover) OptimizationTarget(result *backtest.Result) float64 {
	return sharpeTarget(result)
}
