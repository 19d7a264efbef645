package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/moznion/go-optional"
	"github.com/polygon-io/client-go/rest/models"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"

	"github.com/quantframe-lab/quantframe/internal/marketdata"
)

const (
	providerBinance = "binance"
	providerPolygon = "polygon"
)

func timespanFromFlag(name string) (models.Timespan, error) {
	switch name {
	case "minute":
		return models.Minute, nil
	case "hour":
		return models.Hour, nil
	case "day":
		return models.Day, nil
	case "week":
		return models.Week, nil
	case "month":
		return models.Month, nil
	default:
		return "", fmt.Errorf("unknown timespan %q", name)
	}
}

func providerFromFlag(name string) (marketdata.Provider, error) {
	switch name {
	case providerBinance:
		return marketdata.NewBinanceProvider(), nil
	case providerPolygon:
		return marketdata.NewPolygonProvider(os.Getenv("POLYGON_API_KEY"))
	default:
		return nil, fmt.Errorf("unknown provider %q", name)
	}
}

func downloadAction(ctx context.Context, cmd *cli.Command) error {
	ticker := cmd.String("ticker")
	start := cmd.Timestamp("start")
	end := cmd.Timestamp("end")
	output := cmd.String("output")

	timespan, err := timespanFromFlag(cmd.String("timespan"))
	if err != nil {
		return err
	}

	provider, err := providerFromFlag(cmd.String("provider"))
	if err != nil {
		return err
	}

	bar := progressbar.Default(100, "downloading "+ticker)
	onProgress := marketdata.ProgressCallback(func(percent float64, message string) {
		_ = bar.Set(int(percent))
		bar.Describe(message)
	})

	err = provider.Download(ctx, ticker, start, end, int(cmd.Int("multiplier")),
		timespan, output, optional.Some(onProgress))

	_ = bar.Finish()

	if err != nil {
		return err
	}

	fmt.Printf("downloaded %s candles to %s\n", ticker, output)

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "download",
		Usage: "Download historical candles into a packed candle file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "ticker",
				Aliases:  []string{"t"},
				Usage:    "Ticker or trading pair symbol",
				Required: true,
			},
			&cli.TimestampFlag{
				Name:    "start",
				Aliases: []string{"s"},
				Usage:   "Start date in `YYYY-MM-DD` format",
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02"},
				},
				Required: true,
			},
			&cli.TimestampFlag{
				Name:    "end",
				Aliases: []string{"e"},
				Usage:   "End date in `YYYY-MM-DD` format, defaults to today",
				Value:   time.Now(),
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02"},
				},
			},
			&cli.StringFlag{
				Name:    "provider",
				Aliases: []string{"p"},
				Usage:   fmt.Sprintf("Data provider (%s or %s)", providerBinance, providerPolygon),
				Value:   providerBinance,
			},
			&cli.StringFlag{
				Name:  "timespan",
				Usage: "Candle timespan (minute, hour, day, week, month)",
				Value: "minute",
			},
			&cli.IntFlag{
				Name:    "multiplier",
				Aliases: []string{"m"},
				Usage:   "Timespan multiplier, e.g. 5 with timespan minute for 5m candles",
				Value:   1,
			},
			&cli.StringFlag{
				Name:     "output",
				Aliases:  []string{"o"},
				Usage:    "Path of the packed candle file to write",
				Required: true,
			},
		},
		Action: downloadAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
