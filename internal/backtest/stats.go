package backtest

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/quantframe-lab/quantframe/internal/types"
	"github.com/quantframe-lab/quantframe/pkg/errors"
)

// RunStats is the serializable summary of one backtest run.
type RunStats struct {
	StrategyID     string            `yaml:"strategy_id"`
	StrategyName   string            `yaml:"strategy_name"`
	Parameters     map[string]string `yaml:"parameters,omitempty"`
	InitialCapital float64           `yaml:"initial_capital"`
	FinalCapital   float64           `yaml:"final_capital"`
	TradeCount     int               `yaml:"trade_count"`
	Metrics        types.Metrics     `yaml:"metrics"`
	Duration       time.Duration     `yaml:"duration"`
}

// NewRunStats summarizes a finished result for serialization.
func NewRunStats(strategyID, strategyName string, parameters map[string]string, result *Result) RunStats {
	return RunStats{
		StrategyID:     strategyID,
		StrategyName:   strategyName,
		Parameters:     parameters,
		InitialCapital: result.InitialCapital(),
		FinalCapital:   result.FinalCapital(),
		TradeCount:     len(result.Trades()),
		Metrics:        result.Metrics(),
		Duration:       result.Duration(),
	}
}

// WriteStats writes run summaries to a YAML file at path.
func WriteStats(path string, stats []RunStats) error {
	data, err := yaml.Marshal(stats)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeMarketDataWriteFailed, err,
			"failed to marshal run stats")
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(errors.ErrCodeMarketDataWriteFailed, err,
			"failed to write run stats to %q", path)
	}

	return nil
}
