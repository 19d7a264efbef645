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

// Hyperparameters of the double-SMA crossover.
const (
	ParamSMAShortPeriod = "sma_short_period"
	ParamSMALongPeriod  = "sma_long_period"
)

// DoubleSMACrossover trades the crossover of a short and a long simple
// moving average: LONG while the short SMA is above the long one, SHORT
// otherwise. Both periods are grid-searched. A decision is made only after
// both averages have warmed up.
type DoubleSMACrossover struct {
	baseStrategy
}

func NewDoubleSMACrossover(comp composition.Composition, config backtest.Config, log *logger.Logger) *DoubleSMACrossover {
	return &DoubleSMACrossover{
		baseStrategy: newBaseStrategy(
			"double-sma-crossover",
			"Double SMA optimizable period price crossover",
			"Fast/slow simple moving average crossover with grid-searched periods.",
			comp, config, log),
	}
}

func (s *DoubleSMACrossover) Backtest(params optional.Option[optimizer.ParameterMap]) (*backtest.Result, error) {
	if params.IsNone() {
		return nil, errors.Newf(errors.ErrCodeMissingParameter,
			"strategy %q requires %q and %q", s.ID(), ParamSMAShortPeriod, ParamSMALongPeriod)
	}

	shortPeriod, err := optimizer.SizeFromMap(params.Unwrap(), ParamSMAShortPeriod)
	if err != nil {
		return nil, err
	}

	longPeriod, err := optimizer.SizeFromMap(params.Unwrap(), ParamSMALongPeriod)
	if err != nil {
		return nil, err
	}

	rows, err := s.ComposedData()
	if err != nil {
		return nil, err
	}

	shortSMA, err := indicator.NewSMA(shortPeriod)
	if err != nil {
		return nil, err
	}

	longSMA, err := indicator.NewSMA(longPeriod)
	if err != nil {
		return nil, err
	}

	decide := func(_ composition.Row, _ int64, closePrice float64) (optional.Option[types.TradeSide], error) {
		shortSMA.Allocate(closePrice)
		longSMA.Allocate(closePrice)

		if shortSMA.Value().IsNone() || longSMA.Value().IsNone() {
			return optional.None[types.TradeSide](), nil
		}

		if shortSMA.Value().Unwrap() > longSMA.Value().Unwrap() {
			return optional.Some(types.TradeSideLong), nil
		}

		return optional.Some(types.TradeSideShort), nil
	}

	opts := runOptions{fraction: 0.30, stopOnZeroPortfolio: false}

	return runSimulation(s.newManager(), rows, s.comp.Fields(), opts, decide)
}

func (s *DoubleSMACrossover) Optimize() (optional.Option[[]optimizer.OptimizedResult], error) {
	parameters := []optimizer.Parameter{
		optimizer.Numeric(optimizer.NumericParameter{
			Name: ParamSMAShortPeriod, Start: 10, End: 100, Step: 15,
		}),
		optimizer.Numeric(optimizer.NumericParameter{
			Name: ParamSMALongPeriod, Start: 100, End: 200, Step: 15,
		}),
	}

	results, err := s.newOptimizer().Optimize(s, parameters)
	if err != nil {
		return optional.None[[]optimizer.OptimizedResult](), err
	}

	return optional.Some(results), nil
}

// OptimizationTarget favors risk-adjusted return but keeps a weight on raw
// return so flat, low-volatility results do not dominate.
func (s *DoubleSMACrossover) OptimizationTarget(result *backtest.Result) float64 {
	return compositeTarget(result)
}

func compositeTarget(result *backtest.Result) float64 {
	sharpe, hasSharpe := result.Metrics()[types.MetricSharpeRatio]
	ratioReturn, hasReturn := result.Metrics()[types.MetricTotalRatioReturn]

	if !hasSharpe || !hasReturn {
		return WorstScore
	}

	return sharpe*0.8 + ratioReturn*0.2
}
