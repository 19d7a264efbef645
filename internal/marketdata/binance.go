package marketdata

import (
	"context"
	"fmt"
	"strconv"
	"time"

	binance "github.com/adshao/go-binance/v2"
	"github.com/moznion/go-optional"
	"github.com/polygon-io/client-go/rest/models"

	"github.com/quantframe-lab/quantframe/internal/types"
	"github.com/quantframe-lab/quantframe/pkg/errors"
)

// binancePageSize is the maximum number of klines Binance returns per request.
const binancePageSize = 500

// BinanceProvider downloads historical klines from Binance and writes them as
// packed candle records.
type BinanceProvider struct {
	client *binance.Client
}

func NewBinanceProvider() *BinanceProvider {
	return &BinanceProvider{
		client: binance.NewClient("", ""),
	}
}

// Download fetches klines page by page and writes one candle per kline,
// keyed by the kline open time in seconds.
func (p *BinanceProvider) Download(ctx context.Context, ticker string, start, end time.Time,
	multiplier int, timespan models.Timespan, outputPath string,
	onProgress optional.Option[ProgressCallback],
) error {
	interval, err := binanceInterval(timespan, multiplier)
	if err != nil {
		return err
	}

	writer, err := NewPackedWriter(outputPath)
	if err != nil {
		return err
	}
	defer writer.Close()

	// Binance API timestamps are milliseconds.
	startMillis := start.UnixMilli()
	endMillis := end.UnixMilli()
	currentStart := startMillis

	for {
		klines, err := p.client.NewKlinesService().
			Symbol(ticker).
			Interval(interval).
			StartTime(currentStart).
			EndTime(endMillis).
			Do(ctx)
		if err != nil {
			return errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err,
				"failed to fetch %s klines from binance", ticker)
		}

		if err := writeKlines(writer, klines); err != nil {
			return err
		}

		percent := float64(currentStart-startMillis) / float64(endMillis-startMillis) * 100
		reportProgress(onProgress, percent, fmt.Sprintf("downloading %s klines", ticker))

		// A short page means the range is exhausted.
		if len(klines) < binancePageSize {
			break
		}

		// Resume after the close time of the last kline to avoid duplicates.
		currentStart = klines[len(klines)-1].CloseTime + 1
		if currentStart >= endMillis {
			break
		}
	}

	reportProgress(onProgress, 100, fmt.Sprintf("downloaded %s klines", ticker))

	return nil
}

func writeKlines(writer *PackedWriter, klines []*binance.Kline) error {
	for _, k := range klines {
		open, err := strconv.ParseFloat(k.Open, 32)
		if err != nil {
			return errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err,
				"failed to parse kline open price %q", k.Open)
		}

		high, err := strconv.ParseFloat(k.High, 32)
		if err != nil {
			return errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err,
				"failed to parse kline high price %q", k.High)
		}

		low, err := strconv.ParseFloat(k.Low, 32)
		if err != nil {
			return errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err,
				"failed to parse kline low price %q", k.Low)
		}

		closePrice, err := strconv.ParseFloat(k.Close, 32)
		if err != nil {
			return errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err,
				"failed to parse kline close price %q", k.Close)
		}

		volume, err := strconv.ParseFloat(k.Volume, 32)
		if err != nil {
			return errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err,
				"failed to parse kline volume %q", k.Volume)
		}

		candle := types.Candle{
			Timestamp: k.OpenTime / 1000,
			Open:      float32(open),
			High:      float32(high),
			Low:       float32(low),
			Close:     float32(closePrice),
			Volume:    float32(volume),
		}

		if err := writer.Write(candle); err != nil {
			return err
		}
	}

	return nil
}

// binanceInterval maps a timespan and multiplier to a Binance interval string
// (1m, 1h, 4h, 1d, 1w, 1M).
func binanceInterval(timespan models.Timespan, multiplier int) (string, error) {
	switch timespan {
	case models.Minute:
		return fmt.Sprintf("%dm", multiplier), nil
	case models.Hour:
		return fmt.Sprintf("%dh", multiplier), nil
	case models.Day:
		return fmt.Sprintf("%dd", multiplier), nil
	case models.Week:
		if multiplier == 1 {
			return "1w", nil
		}

		return "", errors.Newf(errors.ErrCodeInvalidParameter,
			"unsupported weekly multiplier for binance: %d", multiplier)
	case models.Month:
		if multiplier == 1 {
			return "1M", nil
		}

		return "", errors.Newf(errors.ErrCodeInvalidParameter,
			"unsupported monthly multiplier for binance: %d", multiplier)
	default:
		return "", errors.Newf(errors.ErrCodeInvalidParameter,
			"unsupported timespan for binance: %s", timespan)
	}
}
