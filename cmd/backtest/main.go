package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/moznion/go-optional"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"

	"github.com/quantframe-lab/quantframe/internal/backtest"
	"github.com/quantframe-lab/quantframe/internal/composition"
	"github.com/quantframe-lab/quantframe/internal/logger"
	"github.com/quantframe-lab/quantframe/internal/marketdata"
	"github.com/quantframe-lab/quantframe/internal/optimizer"
	"github.com/quantframe-lab/quantframe/internal/strategy"
)

// openSource picks a candle source from the data file extension: parquet and
// csv files go through DuckDB, anything else is treated as a packed candle
// file and memory-mapped.
func openSource(path string, log *logger.Logger) (marketdata.CandleSource, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet", ".csv":
		return marketdata.NewDuckDBSource(path, log)
	default:
		return marketdata.OpenMmapSource(path)
	}
}

func loadConfig(path string) (backtest.Config, error) {
	if path == "" {
		return backtest.DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return backtest.Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	return backtest.ParseConfig(data)
}

// parseParams turns repeated name=value flags into a parameter map. All
// strategy hyperparameters are integer-valued.
func parseParams(pairs []string) (optional.Option[optimizer.ParameterMap], error) {
	if len(pairs) == 0 {
		return optional.None[optimizer.ParameterMap](), nil
	}

	params := make(optimizer.ParameterMap, len(pairs))

	for _, pair := range pairs {
		name, raw, found := strings.Cut(pair, "=")
		if !found {
			return nil, fmt.Errorf("invalid parameter %q, expected name=value", pair)
		}

		value, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid value for parameter %q: %w", name, err)
		}

		params[name] = composition.Size(value)
	}

	return optional.Some(params), nil
}

func listAction(_ context.Context, cmd *cli.Command) error {
	log := logger.NewNopLogger()

	source, err := openSource(cmd.String("data"), log)
	if err != nil {
		return err
	}
	defer source.Close()

	registry, err := strategy.NewDefaultRegistry(source, backtest.DefaultConfig(), log)
	if err != nil {
		return err
	}

	for _, s := range registry.List() {
		fmt.Printf("%-28s %s\n", s.ID(), s.Description())
	}

	return nil
}

func runAction(_ context.Context, cmd *cli.Command) error {
	log, err := logger.NewLogger()
	if err != nil {
		return err
	}

	config, err := loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	params, err := parseParams(cmd.StringSlice("param"))
	if err != nil {
		return err
	}

	source, err := openSource(cmd.String("data"), log)
	if err != nil {
		return err
	}
	defer source.Close()

	registry, err := strategy.NewDefaultRegistry(source, config, log)
	if err != nil {
		return err
	}

	strat, err := registry.Get(cmd.String("strategy"))
	if err != nil {
		return err
	}

	stats, err := runStrategy(strat, params)
	if err != nil {
		return err
	}

	for _, s := range stats {
		fmt.Printf("%s params=%v final=%.2f trades=%d\n",
			s.StrategyID, s.Parameters, s.FinalCapital, s.TradeCount)
	}

	if output := cmd.String("output"); output != "" {
		if err := backtest.WriteStats(output, stats); err != nil {
			return err
		}

		fmt.Printf("wrote %d result(s) to %s\n", len(stats), output)
	}

	return nil
}

// runStrategy runs the single combination named by params when one is given.
// Without parameters it sweeps the strategy's grid, falling back to a plain
// backtest for strategies that have no hyperparameters.
func runStrategy(strat strategy.Strategy, params optional.Option[optimizer.ParameterMap]) ([]backtest.RunStats, error) {
	if params.IsSome() {
		result, err := strat.Backtest(params)
		if err != nil {
			return nil, err
		}

		return []backtest.RunStats{
			backtest.NewRunStats(strat.ID(), strat.Name(), formatParams(params.Unwrap()), result),
		}, nil
	}

	bar := progressbar.Default(100, "optimizing "+strat.ID())
	strat.SetProgressCallback(func(percent float64) {
		_ = bar.Set(int(percent))
	})

	optimized, err := strat.Optimize()

	_ = bar.Finish()

	if err != nil {
		return nil, err
	}

	if optimized.IsNone() {
		result, err := strat.Backtest(optional.None[optimizer.ParameterMap]())
		if err != nil {
			return nil, err
		}

		return []backtest.RunStats{
			backtest.NewRunStats(strat.ID(), strat.Name(), nil, result),
		}, nil
	}

	results := optimized.Unwrap()
	stats := make([]backtest.RunStats, 0, len(results))

	for _, item := range results {
		stats = append(stats,
			backtest.NewRunStats(strat.ID(), strat.Name(), formatParams(item.Parameters), item.Result))
	}

	return stats, nil
}

func formatParams(params optimizer.ParameterMap) map[string]string {
	if len(params) == 0 {
		return nil
	}

	out := make(map[string]string, len(params))
	for name, value := range params {
		out[name] = value.String()
	}

	return out
}

func schemaAction(_ context.Context, _ *cli.Command) error {
	config := backtest.DefaultConfig()

	schema, err := config.GenerateSchemaJSON()
	if err != nil {
		return err
	}

	fmt.Println(schema)

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "backtest",
		Usage: "Run trading strategy backtests and parameter sweeps",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List registered strategies",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "Path to candle data (packed binary, parquet, or csv)",
						Required: true,
					},
				},
				Action: listAction,
			},
			{
				Name:  "run",
				Usage: "Backtest a strategy, sweeping its parameter space unless --param is given",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "strategy",
						Aliases:  []string{"s"},
						Usage:    "Strategy ID (see the list command)",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "Path to candle data (packed binary, parquet, or csv)",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to a YAML backtest config",
					},
					&cli.StringSliceFlag{
						Name:    "param",
						Aliases: []string{"p"},
						Usage:   "Strategy parameter as name=value, repeatable",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write run stats to this YAML file",
					},
				},
				Action: runAction,
			},
			{
				Name:   "schema",
				Usage:  "Print the JSON schema for the backtest config file",
				Action: schemaAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
