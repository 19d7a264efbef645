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

// ParamSMAPeriod is the period hyperparameter shared by the SMA-based
// strategies.
const ParamSMAPeriod = "sma_period"

// SMAPeriodOptimizable is the price/SMA crossover with an optimizable
// period. A grid search supplies the period; Backtest(None) is an error so a
// missing parameter never silently falls back to a default.
type SMAPeriodOptimizable struct {
	baseStrategy
}

func NewSMAPeriodOptimizable(comp composition.Composition, config backtest.Config, log *logger.Logger) *SMAPeriodOptimizable {
	return &SMAPeriodOptimizable{
		baseStrategy: newBaseStrategy(
			"sma-period-optimizable",
			"SMA optimizable period price crossover",
			"Price/SMA crossover with a grid-searched moving average period.",
			comp, config, log),
	}
}

func (s *SMAPeriodOptimizable) Backtest(params optional.Option[optimizer.ParameterMap]) (*backtest.Result, error) {
	if params.IsNone() {
		return nil, errors.Newf(errors.ErrCodeMissingParameter,
			"strategy %q requires a parameter map with %q", s.ID(), ParamSMAPeriod)
	}

	period, err := optimizer.SizeFromMap(params.Unwrap(), ParamSMAPeriod)
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

func (s *SMAPeriodOptimizable) Optimize() (optional.Option[[]optimizer.OptimizedResult], error) {
	parameters := []optimizer.Parameter{
		optimizer.Numeric(optimizer.NumericParameter{
			Name: ParamSMAPeriod, Start: 10, End: 200, Step: 5,
		}),
	}

	results, err := s.newOptimizer().Optimize(s, parameters)
	if err != nil {
		return optional.None[[]optimizer.OptimizedResult](), err
	}

	return optional.Some(results), nil
}

func (s *SMAPeriodOptimizable) OptimizationTarget(result *backtest.Result) float64 {
	return sharpeTarget(result)
}
