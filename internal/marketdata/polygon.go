package marketdata

import (
	"context"
	"fmt"
	"time"

	"github.com/moznion/go-optional"
	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"

	"github.com/quantframe-lab/quantframe/internal/types"
	"github.com/quantframe-lab/quantframe/pkg/errors"
)

// PolygonProvider downloads historical aggregates from Polygon and writes
// them as packed candle records.
type PolygonProvider struct {
	client *polygon.Client
}

func NewPolygonProvider(apiKey string) (*PolygonProvider, error) {
	if apiKey == "" {
		return nil, errors.New(errors.ErrCodeInvalidParameter,
			"polygon api key is required")
	}

	return &PolygonProvider{
		client: polygon.New(apiKey),
	}, nil
}

func (p *PolygonProvider) Download(ctx context.Context, ticker string, start, end time.Time,
	multiplier int, timespan models.Timespan, outputPath string,
	onProgress optional.Option[ProgressCallback],
) error {
	writer, err := NewPackedWriter(outputPath)
	if err != nil {
		return err
	}
	defer writer.Close()

	//nolint:exhaustruct // third-party struct with many optional fields
	params := models.ListAggsParams{
		Ticker:     ticker,
		Multiplier: multiplier,
		Timespan:   timespan,
		From:       models.Millis(start),
		To:         models.Millis(end),
	}.WithLimit(50000)

	iter := p.client.ListAggs(ctx, params)

	rangeMillis := end.Sub(start).Milliseconds()
	processed := 0

	for iter.Next() {
		agg := iter.Item()
		aggTime := time.Time(agg.Timestamp)

		candle := types.Candle{
			Timestamp: aggTime.Unix(),
			Open:      float32(agg.Open),
			High:      float32(agg.High),
			Low:       float32(agg.Low),
			Close:     float32(agg.Close),
			Volume:    float32(agg.Volume),
		}

		if err := writer.Write(candle); err != nil {
			return err
		}

		processed++
		if processed%1000 == 0 && rangeMillis > 0 {
			percent := float64(aggTime.Sub(start).Milliseconds()) / float64(rangeMillis) * 100
			reportProgress(onProgress, percent, fmt.Sprintf("downloading %s aggregates", ticker))
		}
	}

	if iter.Err() != nil {
		return errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, iter.Err(),
			"failed to iterate %s aggregates from polygon", ticker)
	}

	reportProgress(onProgress, 100,
		fmt.Sprintf("downloaded %d aggregates for %s", processed, ticker))

	return nil
}
