package marketdata

import (
	"golang.org/x/exp/mmap"

	"github.com/quantframe-lab/quantframe/internal/types"
	"github.com/quantframe-lab/quantframe/pkg/errors"
)

// MmapSource reads packed candle records from a memory-mapped file. Records
// are fixed-width (types.CandleRecordSize bytes) and stored in ascending
// timestamp order, so candle i lives at byte offset i*CandleRecordSize.
type MmapSource struct {
	reader *mmap.ReaderAt
	count  int
}

// OpenMmapSource memory-maps the packed candle file at path. The file size
// must be an exact multiple of the record size.
func OpenMmapSource(path string) (*MmapSource, error) {
	reader, err := mmap.Open(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeResourceUnavailable, err,
			"failed to mmap candle file %q", path)
	}

	if reader.Len()%types.CandleRecordSize != 0 {
		size := reader.Len()

		if closeErr := reader.Close(); closeErr != nil {
			return nil, errors.Wrapf(errors.ErrCodeTruncatedCandleFile, closeErr,
				"candle file %q has size %d, not a multiple of %d, and failed to close",
				path, size, types.CandleRecordSize)
		}

		return nil, errors.Newf(errors.ErrCodeTruncatedCandleFile,
			"candle file %q has size %d, not a multiple of %d",
			path, size, types.CandleRecordSize)
	}

	return &MmapSource{
		reader: reader,
		count:  reader.Len() / types.CandleRecordSize,
	}, nil
}

func (s *MmapSource) Len() int {
	return s.count
}

func (s *MmapSource) At(i int) (types.Candle, error) {
	if i < 0 || i >= s.count {
		return types.Candle{}, errors.Newf(errors.ErrCodeCandleIndexOutOfRange,
			"candle index %d out of range [0, %d)", i, s.count)
	}

	buf := make([]byte, types.CandleRecordSize)

	if _, err := s.reader.ReadAt(buf, int64(i)*types.CandleRecordSize); err != nil {
		return types.Candle{}, errors.Wrapf(errors.ErrCodeResourceUnavailable, err,
			"failed to read candle record %d", i)
	}

	return types.DecodeCandle(buf), nil
}

func (s *MmapSource) Close() error {
	return s.reader.Close()
}
