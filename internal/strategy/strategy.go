// Package strategy defines the trading-rule contract and the concrete
// crossover strategies. A strategy binds to one composition, drives a private
// backtest manager tick-by-tick, and may declare an optimizable
// hyperparameter space searched by the grid optimizer.
package strategy

import (
	"sync"

	"github.com/moznion/go-optional"

	"github.com/quantframe-lab/quantframe/internal/backtest"
	"github.com/quantframe-lab/quantframe/internal/composition"
	"github.com/quantframe-lab/quantframe/internal/logger"
	"github.com/quantframe-lab/quantframe/internal/optimizer"
	"github.com/quantframe-lab/quantframe/internal/types"
)

// WorstScore is returned by optimization targets when a required metric is
// absent, so the combination stays comparable instead of aborting the batch.
const WorstScore = -1.0

// Strategy is a trading rule bound to a composition.
type Strategy interface {
	ID() string
	Name() string
	Description() string

	// Composition returns the feature table provider this strategy reads.
	Composition() composition.Composition
	// ComposedData returns the materialized rows, composed once and cached.
	ComposedData() ([]composition.Row, error)

	// Backtest runs one full simulation. Optimizable strategies require a
	// parameter map and fail on None rather than silently using defaults.
	Backtest(params optional.Option[optimizer.ParameterMap]) (*backtest.Result, error)

	// Optimize grid-searches the strategy's parameter space, or returns None
	// when the strategy has no hyperparameters.
	Optimize() (optional.Option[[]optimizer.OptimizedResult], error)

	// SetProgressCallback registers a callback invoked with grid-search
	// progress as a percentage in [0, 100].
	SetProgressCallback(cb optimizer.ProgressCallback)

	// OptimizationTarget scores a result for ranking grid-search outcomes.
	OptimizationTarget(result *backtest.Result) float64
}

// baseStrategy carries the metadata, composition binding, and cached rows
// shared by the concrete strategies.
type baseStrategy struct {
	id          string
	name        string
	description string
	comp        composition.Composition
	config      backtest.Config
	logger      *logger.Logger

	composeOnce sync.Once
	rows        []composition.Row
	composeErr  error

	onProgress optional.Option[optimizer.ProgressCallback]
}

func newBaseStrategy(id, name, description string, comp composition.Composition,
	config backtest.Config, log *logger.Logger,
) baseStrategy {
	return baseStrategy{
		id:          id,
		name:        name,
		description: description,
		comp:        comp,
		config:      config,
		logger:      log,
		composeOnce: sync.Once{},
		rows:        nil,
		composeErr:  nil,
		onProgress:  optional.None[optimizer.ProgressCallback](),
	}
}

func (b *baseStrategy) ID() string {
	return b.id
}

func (b *baseStrategy) Name() string {
	return b.name
}

func (b *baseStrategy) Description() string {
	return b.description
}

func (b *baseStrategy) Composition() composition.Composition {
	return b.comp
}

func (b *baseStrategy) ComposedData() ([]composition.Row, error) {
	b.composeOnce.Do(func() {
		b.rows, b.composeErr = b.comp.Compose()
	})

	return b.rows, b.composeErr
}

func (b *baseStrategy) newManager() *backtest.Manager {
	return backtest.NewManager(b.config, b.logger)
}

func (b *baseStrategy) SetProgressCallback(cb optimizer.ProgressCallback) {
	b.onProgress = optional.Some(cb)
}

func (b *baseStrategy) newOptimizer() *optimizer.GridOptimizer {
	return optimizer.NewGridOptimizer(b.config.MaxParallelism, b.logger, b.onProgress)
}

// sharpeTarget is the default optimization target: the Sharpe ratio alone.
func sharpeTarget(result *backtest.Result) float64 {
	sharpe, ok := result.Metrics()[types.MetricSharpeRatio]
	if !ok {
		return WorstScore
	}

	return sharpe
}
