package marketdata

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"go.uber.org/zap"

	"github.com/quantframe-lab/quantframe/internal/logger"
	"github.com/quantframe-lab/quantframe/internal/types"
	"github.com/quantframe-lab/quantframe/pkg/errors"
)

// DuckDBSource loads candles from parquet or CSV files through an in-memory
// DuckDB instance. The whole result set is materialized up front so that At
// is a plain slice lookup.
type DuckDBSource struct {
	db      *sql.DB
	logger  *logger.Logger
	sq      squirrel.StatementBuilderType
	candles []types.Candle
}

// NewDuckDBSource opens an in-memory DuckDB database, creates a view over the
// data file at path (parquet or CSV by extension), and loads all candles
// ordered by ascending timestamp. The file must expose timestamp, open, high,
// low, close, and volume columns.
func NewDuckDBSource(path string, log *logger.Logger) (*DuckDBSource, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeResourceUnavailable, err,
			"failed to open duckdb")
	}

	source := &DuckDBSource{
		db:      db,
		logger:  log,
		sq:      squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		candles: nil,
	}

	if err := source.load(path); err != nil {
		db.Close()

		return nil, err
	}

	return source, nil
}

func (s *DuckDBSource) load(path string) error {
	s.logger.Debug("loading candles from duckdb", zap.String("path", path))

	readFn := "read_parquet"
	if strings.HasSuffix(strings.ToLower(path), ".csv") {
		readFn = "read_csv_auto"
	}

	// Squirrel does not support CREATE VIEW, so this stays raw SQL.
	query := fmt.Sprintf(`
		CREATE VIEW candles AS
		SELECT * FROM %s('%s');
	`, readFn, path)

	if _, err := s.db.Exec(query); err != nil {
		return errors.Wrapf(errors.ErrCodeQueryFailed, err,
			"failed to create candle view over %q", path)
	}

	selectQuery, args, err := s.sq.
		Select("timestamp", "open", "high", "low", "close", "volume").
		From("candles").
		OrderBy("timestamp ASC").
		ToSql()
	if err != nil {
		return errors.Wrapf(errors.ErrCodeQueryFailed, err,
			"failed to build candle query")
	}

	rows, err := s.db.Query(selectQuery, args...)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeQueryFailed, err,
			"failed to query candles")
	}
	defer rows.Close()

	for rows.Next() {
		var candle types.Candle

		err := rows.Scan(&candle.Timestamp, &candle.Open, &candle.High,
			&candle.Low, &candle.Close, &candle.Volume)
		if err != nil {
			return errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err,
				"failed to scan candle row")
		}

		s.candles = append(s.candles, candle)
	}

	if err := rows.Err(); err != nil {
		return errors.Wrapf(errors.ErrCodeQueryFailed, err,
			"candle row iteration failed")
	}

	s.logger.Debug("loaded candles", zap.Int("count", len(s.candles)))

	return nil
}

func (s *DuckDBSource) Len() int {
	return len(s.candles)
}

func (s *DuckDBSource) At(i int) (types.Candle, error) {
	if i < 0 || i >= len(s.candles) {
		return types.Candle{}, errors.Newf(errors.ErrCodeCandleIndexOutOfRange,
			"candle index %d out of range [0, %d)", i, len(s.candles))
	}

	return s.candles[i], nil
}

func (s *DuckDBSource) Close() error {
	return s.db.Close()
}
