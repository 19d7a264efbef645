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

// ParamKalmanQIndex is the process-noise hyperparameter of the Kalman
// crossover. The grid enumerates integers; the index divided by 1000 is the
// filter's process noise q.
const ParamKalmanQIndex = "kalman_q_index"

const kalmanQScale = 1000.0

// KalmanCrossover smooths the close with a 1-D Kalman filter and goes LONG
// while the price is above the filtered estimate, SHORT below it.
type KalmanCrossover struct {
	baseStrategy
}

func NewKalmanCrossover(comp composition.Composition, config backtest.Config, log *logger.Logger) *KalmanCrossover {
	return &KalmanCrossover{
		baseStrategy: newBaseStrategy(
			"kalman-crossover",
			"Kalman filter price crossover",
			"Long above a Kalman-filtered price estimate, short below it.",
			comp, config, log),
	}
}

func (s *KalmanCrossover) Backtest(params optional.Option[optimizer.ParameterMap]) (*backtest.Result, error) {
	if params.IsNone() {
		return nil, errors.Newf(errors.ErrCodeMissingParameter,
			"strategy %q requires a parameter map with %q", s.ID(), ParamKalmanQIndex)
	}

	qIndex, err := optimizer.SizeFromMap(params.Unwrap(), ParamKalmanQIndex)
	if err != nil {
		return nil, err
	}

	rows, err := s.ComposedData()
	if err != nil {
		return nil, err
	}

	kalman, err := indicator.NewKalman(float64(qIndex)/kalmanQScale, 1.0)
	if err != nil {
		return nil, err
	}

	decide := func(_ composition.Row, _ int64, closePrice float64) (optional.Option[types.TradeSide], error) {
		if kalman.Value().IsNone() {
			// First point only seeds the filter.
			kalman.Allocate(closePrice)

			return optional.None[types.TradeSide](), nil
		}

		kalman.Allocate(closePrice)

		if closePrice > kalman.Value().Unwrap() {
			return optional.Some(types.TradeSideLong), nil
		}

		return optional.Some(types.TradeSideShort), nil
	}

	opts := runOptions{fraction: 0.50, stopOnZeroPortfolio: false}

	return runSimulation(s.newManager(), rows, s.comp.Fields(), opts, decide)
}

func (s *KalmanCrossover) Optimize() (optional.Option[[]optimizer.OptimizedResult], error) {
	parameters := []optimizer.Parameter{
		optimizer.Numeric(optimizer.NumericParameter{
			Name: ParamKalmanQIndex, Start: 100, End: 2100, Step: 500,
		}),
	}

	results, err := s.newOptimizer().Optimize(s, parameters)
	if err != nil {
		return optional.None[[]optimizer.OptimizedResult](), err
	}

	return optional.Some(results), nil
}

func (s *KalmanCrossover) OptimizationTarget(result *backtest.Result) float64 {
	return sharpeTarget(result)
}
