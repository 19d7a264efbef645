package marketdata

import (
	"context"
	"time"

	"github.com/moznion/go-optional"
	"github.com/polygon-io/client-go/rest/models"
)

// ProgressCallback receives download progress as a percentage in [0, 100].
type ProgressCallback func(percent float64, message string)

// Provider downloads historical candles from a remote market data service and
// writes them to a packed candle file at outputPath.
type Provider interface {
	Download(ctx context.Context, ticker string, start, end time.Time,
		multiplier int, timespan models.Timespan, outputPath string,
		onProgress optional.Option[ProgressCallback]) error
}

func reportProgress(onProgress optional.Option[ProgressCallback], percent float64, message string) {
	if onProgress.IsNone() {
		return
	}

	if percent > 100 {
		percent = 100
	}

	onProgress.Unwrap()(percent, message)
}
