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

// ParamTheilSenWindowLength is the TheilSen window hyperparameter.
const ParamTheilSenWindowLength = "theilsen_window_length"

// TheilSenCrossover follows the direction of a Theil-Sen median-slope
// baseline: LONG while the baseline is rising, SHORT while it is falling.
// It reads full bars (the baseline caps its slope with an ATR), commits 30%
// of available capital per trade, and stops early if the portfolio value
// reaches zero.
type TheilSenCrossover struct {
	baseStrategy
}

func NewTheilSenCrossover(comp composition.Composition, config backtest.Config, log *logger.Logger) *TheilSenCrossover {
	return &TheilSenCrossover{
		baseStrategy: newBaseStrategy(
			"theilsen-crossover",
			"TheilSen baseline crossover",
			"Trades the direction of an ATR-capped Theil-Sen median-slope baseline.",
			comp, config, log),
	}
}

func (s *TheilSenCrossover) Backtest(params optional.Option[optimizer.ParameterMap]) (*backtest.Result, error) {
	if params.IsNone() {
		return nil, errors.Newf(errors.ErrCodeMissingParameter,
			"strategy %q requires a parameter map with %q", s.ID(), ParamTheilSenWindowLength)
	}

	windowLength, err := optimizer.SizeFromMap(params.Unwrap(), ParamTheilSenWindowLength)
	if err != nil {
		return nil, err
	}

	rows, err := s.ComposedData()
	if err != nil {
		return nil, err
	}

	theilSen, err := indicator.NewDefaultTheilSen(windowLength)
	if err != nil {
		return nil, err
	}

	fields := s.comp.Fields()
	prevBaseline := optional.None[float64]()

	decide := func(row composition.Row, _ int64, closePrice float64) (optional.Option[types.TradeSide], error) {
		high, low, err := barFromRow(row, fields)
		if err != nil {
			return optional.None[types.TradeSide](), err
		}

		theilSen.AllocateBar(indicator.Bar{High: high, Low: low, Close: closePrice})

		if theilSen.Value().IsNone() {
			return optional.None[types.TradeSide](), nil
		}

		baseline := theilSen.Value().Unwrap()

		if prevBaseline.IsNone() {
			prevBaseline = optional.Some(baseline)

			return optional.None[types.TradeSide](), nil
		}

		side := types.TradeSideShort
		if baseline > prevBaseline.Unwrap() {
			side = types.TradeSideLong
		}

		prevBaseline = optional.Some(baseline)

		return optional.Some(side), nil
	}

	opts := runOptions{fraction: 0.30, stopOnZeroPortfolio: true}

	return runSimulation(s.newManager(), rows, fields, opts, decide)
}

func (s *TheilSenCrossover) Optimize() (optional.Option[[]optimizer.OptimizedResult], error) {
	parameters := []optimizer.Parameter{
		optimizer.Numeric(optimizer.NumericParameter{
			Name: ParamTheilSenWindowLength, Start: 10, End: 200, Step: 5,
		}),
	}

	results, err := s.newOptimizer().Optimize(s, parameters)
	if err != nil {
		return optional.None[[]optimizer.OptimizedResult](), err
	}

	return optional.Some(results), nil
}

func (s *TheilSenCrossover) OptimizationTarget(result *backtest.Result) float64 {
	return compositeTarget(result)
}
