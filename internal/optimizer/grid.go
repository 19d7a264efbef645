package optimizer

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/moznion/go-optional"
	"go.uber.org/zap"

	"github.com/quantframe-lab/quantframe/internal/backtest"
	"github.com/quantframe-lab/quantframe/internal/composition"
	"github.com/quantframe-lab/quantframe/internal/logger"
	"github.com/quantframe-lab/quantframe/pkg/errors"
)

// maxDefaultWorkers caps the default pool size on large machines.
const maxDefaultWorkers = 8

// Backtester is the slice of the strategy contract the optimizer drives:
// one independent simulation per parameter assignment, scored by the
// strategy's own target function.
type Backtester interface {
	Backtest(params optional.Option[ParameterMap]) (*backtest.Result, error)
	OptimizationTarget(result *backtest.Result) float64
}

// OptimizedResult pairs one combination's backtest outcome with the
// parameter assignment that produced it and its target score.
type OptimizedResult struct {
	Result     *backtest.Result
	Parameters ParameterMap
	Score      float64
}

// ProgressCallback receives search progress as a percentage in [0, 100].
// It may be invoked concurrently from worker goroutines.
type ProgressCallback func(percent float64)

// GridOptimizer evaluates the full Cartesian product of the numeric
// parameters on a bounded worker pool. Each combination runs against a
// private manager and private indicators inside the strategy's Backtest, so
// combinations never share mutable simulation state. Failed combinations are
// dropped rather than failing the search. Results are unordered.
type GridOptimizer struct {
	parallelism int
	logger      *logger.Logger
	onProgress  optional.Option[ProgressCallback]
}

func NewGridOptimizer(parallelism int, log *logger.Logger,
	onProgress optional.Option[ProgressCallback],
) *GridOptimizer {
	if parallelism <= 0 {
		parallelism = runtime.GOMAXPROCS(0)
		if parallelism > maxDefaultWorkers {
			parallelism = maxDefaultWorkers
		}
	}

	return &GridOptimizer{
		parallelism: parallelism,
		logger:      log,
		onProgress:  onProgress,
	}
}

// Optimize enumerates the parameter combinations and runs one backtest per
// combination.
func (o *GridOptimizer) Optimize(strategy Backtester, parameters []Parameter) ([]OptimizedResult, error) {
	numeric, err := numericParameters(parameters)
	if err != nil {
		return nil, err
	}

	if len(numeric) == 0 {
		return nil, errors.New(errors.ErrCodeNoParameters,
			"grid search requires at least one numeric parameter")
	}

	combinations := Combinations(numeric)
	total := len(combinations)

	o.logger.Info("starting grid search",
		zap.Int("combinations", total),
		zap.Int("workers", o.parallelism))

	jobs := make(chan ParameterMap)
	resultCh := make(chan OptimizedResult, total)

	var completed atomic.Int64

	var wg sync.WaitGroup

	for w := 0; w < o.parallelism; w++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for params := range jobs {
				o.runCombination(strategy, params, resultCh)

				done := completed.Add(1)
				o.reportProgress(float64(done) / float64(total) * 100)
			}
		}()
	}

	for _, params := range combinations {
		jobs <- params
	}

	close(jobs)
	wg.Wait()
	close(resultCh)

	results := make([]OptimizedResult, 0, total)
	for result := range resultCh {
		results = append(results, result)
	}

	return results, nil
}

func (o *GridOptimizer) runCombination(strategy Backtester, params ParameterMap,
	resultCh chan<- OptimizedResult,
) {
	result, err := strategy.Backtest(optional.Some(params))
	if err != nil {
		o.logger.Warn("dropping failed combination",
			zap.Any("parameters", params),
			zap.Error(err))

		return
	}

	resultCh <- OptimizedResult{
		Result:     result,
		Parameters: params,
		Score:      strategy.OptimizationTarget(result),
	}
}

func (o *GridOptimizer) reportProgress(percent float64) {
	if o.onProgress.IsNone() {
		return
	}

	o.onProgress.Unwrap()(percent)
}

func numericParameters(parameters []Parameter) ([]NumericParameter, error) {
	var numeric []NumericParameter

	for _, p := range parameters {
		if p.Kind() != KindNumeric {
			continue
		}

		n, err := p.AsNumeric()
		if err != nil {
			return nil, err
		}

		if len(n.Values()) == 0 {
			return nil, errors.Newf(errors.ErrCodeInvalidRange,
				"parameter %q has an empty range [%d, %d) step %d",
				n.Name, n.Start, n.End, n.Step)
		}

		numeric = append(numeric, n)
	}

	return numeric, nil
}

// Combinations builds the Cartesian product of the parameters' ranges. The
// product is exponential in the number of parameters; range sizes are the
// caller's responsibility.
func Combinations(parameters []NumericParameter) []ParameterMap {
	var out []ParameterMap

	current := make(ParameterMap, len(parameters))
	generate(parameters, current, &out)

	return out
}

func generate(remaining []NumericParameter, current ParameterMap, out *[]ParameterMap) {
	if len(remaining) == 0 {
		combination := make(ParameterMap, len(current))
		for name, value := range current {
			combination[name] = value
		}

		*out = append(*out, combination)

		return
	}

	parameter := remaining[0]
	for _, value := range parameter.Values() {
		current[parameter.Name] = composition.Size(value)
		generate(remaining[1:], current, out)
	}

	delete(current, parameter.Name)
}
