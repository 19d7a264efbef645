package marketdata

import (
	"bufio"
	"os"

	"github.com/quantframe-lab/quantframe/internal/types"
	"github.com/quantframe-lab/quantframe/pkg/errors"
)

// PackedWriter appends candles to a file in the packed binary layout read by
// MmapSource. Callers must write candles in ascending timestamp order.
type PackedWriter struct {
	file *os.File
	buf  *bufio.Writer
}

func NewPackedWriter(path string) (*PackedWriter, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeMarketDataWriteFailed, err,
			"failed to create candle file %q", path)
	}

	return &PackedWriter{
		file: file,
		buf:  bufio.NewWriter(file),
	}, nil
}

func (w *PackedWriter) Write(candle types.Candle) error {
	record := make([]byte, types.CandleRecordSize)
	types.EncodeCandle(candle, record)

	if _, err := w.buf.Write(record); err != nil {
		return errors.Wrapf(errors.ErrCodeMarketDataWriteFailed, err,
			"failed to write candle record")
	}

	return nil
}

func (w *PackedWriter) Close() error {
	if err := w.buf.Flush(); err != nil {
		w.file.Close()

		return errors.Wrapf(errors.ErrCodeMarketDataWriteFailed, err,
			"failed to flush candle file")
	}

	return w.file.Close()
}
