package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/quantframe-lab/quantframe/internal/backtest"
	"github.com/quantframe-lab/quantframe/internal/logger"
	"github.com/quantframe-lab/quantframe/internal/marketdata"
	"github.com/quantframe-lab/quantframe/internal/server"
	"github.com/quantframe-lab/quantframe/internal/service"
	"github.com/quantframe-lab/quantframe/internal/strategy"
)

func openSource(path string, log *logger.Logger) (marketdata.CandleSource, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet", ".csv":
		return marketdata.NewDuckDBSource(path, log)
	default:
		return marketdata.OpenMmapSource(path)
	}
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	log, err := logger.NewLogger()
	if err != nil {
		return err
	}

	config := backtest.DefaultConfig()

	if path := cmd.String("config"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read config %s: %w", path, err)
		}

		config, err = backtest.ParseConfig(data)
		if err != nil {
			return err
		}
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

	srv := server.NewServer(service.NewService(registry, config, log), log)

	if err := srv.Start(cmd.String("address")); err != nil {
		return err
	}

	waitCtx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()
	<-waitCtx.Done()

	return srv.Stop()
}

func main() {
	cmd := &cli.Command{
		Name:  "server",
		Usage: "Serve the strategy backtest API over HTTP",
		Flags: []cli.Flag{
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
			&cli.StringFlag{
				Name:    "address",
				Aliases: []string{"a"},
				Usage:   "Listen address",
				Value:   ":8080",
			},
		},
		Action: serveAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
