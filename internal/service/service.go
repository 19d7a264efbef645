// Package service exposes the in-process API consumed by the CLI and the
// HTTP wrapper: strategy discovery and backtest/optimization runs with
// render-ready series.
package service

import (
	"github.com/moznion/go-optional"
	"go.uber.org/zap"

	"github.com/quantframe-lab/quantframe/internal/backtest"
	"github.com/quantframe-lab/quantframe/internal/logger"
	"github.com/quantframe-lab/quantframe/internal/optimizer"
	"github.com/quantframe-lab/quantframe/internal/strategy"
	"github.com/quantframe-lab/quantframe/internal/types"
)

// StrategyMetadata is the discovery record for one registered strategy.
type StrategyMetadata struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CombinationResult is the outcome of one parameter combination: the three
// render projections, the metrics, the parameters used, and the score.
type CombinationResult struct {
	EquitySeries           types.Series      `json:"equity_series"`
	PercentSeries          types.Series      `json:"percent_series"`
	PortfolioPercentSeries types.Series      `json:"portfolio_percent_series"`
	Metrics                types.Metrics     `json:"metrics"`
	Parameters             map[string]string `json:"parameters,omitempty"`
	Score                  float64           `json:"score"`
}

// BacktestResponse is the full answer to one run request.
type BacktestResponse struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Results     []CombinationResult `json:"results"`
}

// Service wires the strategy registry to callers.
type Service struct {
	registry *strategy.Registry
	logger   *logger.Logger
	config   backtest.Config
}

func NewService(registry *strategy.Registry, config backtest.Config, log *logger.Logger) *Service {
	return &Service{
		registry: registry,
		logger:   log,
		config:   config,
	}
}

// ListStrategies returns metadata for every registered strategy in
// registration order.
func (s *Service) ListStrategies() []StrategyMetadata {
	strategies := s.registry.List()
	out := make([]StrategyMetadata, 0, len(strategies))

	for _, strat := range strategies {
		out = append(out, StrategyMetadata{
			ID:          strat.ID(),
			Name:        strat.Name(),
			Description: strat.Description(),
		})
	}

	return out
}

// RunBacktest runs the identified strategy. With a parameter map it runs the
// single combination given; without one it grid-searches the strategy's
// parameter space, or runs a plain backtest when the strategy has no
// hyperparameters.
func (s *Service) RunBacktest(strategyID string, params optional.Option[optimizer.ParameterMap]) (*BacktestResponse, error) {
	strat, err := s.registry.Get(strategyID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("running backtest",
		zap.String("strategy", strategyID),
		zap.Bool("explicit_parameters", params.IsSome()))

	response := &BacktestResponse{
		ID:          strat.ID(),
		Name:        strat.Name(),
		Description: strat.Description(),
		Results:     nil,
	}

	if params.IsSome() {
		result, err := strat.Backtest(params)
		if err != nil {
			return nil, err
		}

		response.Results = []CombinationResult{
			combinationResult(result, params.Unwrap(), strat.OptimizationTarget(result)),
		}

		return response, nil
	}

	optimized, err := strat.Optimize()
	if err != nil {
		return nil, err
	}

	if optimized.IsNone() {
		result, err := strat.Backtest(optional.None[optimizer.ParameterMap]())
		if err != nil {
			return nil, err
		}

		response.Results = []CombinationResult{
			combinationResult(result, nil, strat.OptimizationTarget(result)),
		}

		return response, nil
	}

	for _, item := range optimized.Unwrap() {
		response.Results = append(response.Results,
			combinationResult(item.Result, item.Parameters, item.Score))
	}

	return response, nil
}

func combinationResult(result *backtest.Result, params optimizer.ParameterMap, score float64) CombinationResult {
	var parameters map[string]string

	if len(params) > 0 {
		parameters = make(map[string]string, len(params))
		for name, value := range params {
			parameters[name] = value.String()
		}
	}

	return CombinationResult{
		EquitySeries:           strategy.RenderEquityGrowth(result),
		PercentSeries:          strategy.RenderPercentageGrowth(result),
		PortfolioPercentSeries: strategy.RenderPortfolioPercentageGrowth(result),
		Metrics:                result.Metrics(),
		Parameters:             parameters,
		Score:                  score,
	}
}
