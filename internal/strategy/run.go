package strategy

import (
	"github.com/moznion/go-optional"

	"github.com/quantframe-lab/quantframe/internal/backtest"
	"github.com/quantframe-lab/quantframe/internal/composition"
	"github.com/quantframe-lab/quantframe/internal/types"
	"github.com/quantframe-lab/quantframe/pkg/errors"
)

// decideFunc inspects one composed row after the clock has advanced and
// returns the desired trade side, or None while indicators warm up.
type decideFunc func(row composition.Row, timestamp int64, closePrice float64) (optional.Option[types.TradeSide], error)

// runOptions tune the shared simulation loop.
type runOptions struct {
	// fraction of available capital committed per trade.
	fraction float64
	// stopOnZeroPortfolio aborts the loop once the marked portfolio value
	// drops to zero or below.
	stopOnZeroPortfolio bool
}

// runSimulation folds the composed rows through the manager: advance the
// clock, ask the strategy for a side, flip the open trade when the side
// changes, open a new trade when none is open. Rows without a decision are
// skipped. Returns the sealed result.
func runSimulation(manager *backtest.Manager, rows []composition.Row,
	fields map[string]int, opts runOptions, decide decideFunc,
) (*backtest.Result, error) {
	timestampIdx, err := composition.FieldIndex(fields, composition.FieldTimestamp)
	if err != nil {
		return nil, err
	}

	closeIdx, err := composition.FieldIndex(fields, composition.FieldClose)
	if err != nil {
		return nil, err
	}

	var openTrade *types.Trade

	for _, row := range rows {
		timestamp, err := row[timestampIdx].AsInt()
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeMalformedComposition, err,
				"timestamp field is not an integer")
		}

		closePrice, err := row[closeIdx].AsFloat()
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeMalformedComposition, err,
				"close field is not a float")
		}

		manager.UpdatePrice(timestamp, closePrice)

		desired, err := decide(row, timestamp, closePrice)
		if err != nil {
			return nil, err
		}

		if desired.IsNone() {
			continue
		}

		side := desired.Unwrap()

		if openTrade != nil && openTrade.Side() != side {
			manager.CloseTrade(openTrade)
			openTrade = nil
		}

		if openTrade == nil {
			allocation := opts.fraction * manager.AvailableCapital()
			if allocation > 0 {
				trade := types.NewTrade(types.TradeOptions{
					Side:              side,
					CapitalAllocation: allocation,
					Leverage:          optional.None[float64](),
				})

				manager.OpenTrade(trade)

				if trade.IsOpened() {
					openTrade = trade
				}
			}
		}

		if opts.stopOnZeroPortfolio && manager.PortfolioValue() <= 0 {
			break
		}
	}

	return manager.End(), nil
}

// barFromRow reads the high/low/close fields for indicators that consume
// full bars.
func barFromRow(row composition.Row, fields map[string]int) (high, low float64, err error) {
	highIdx, err := composition.FieldIndex(fields, composition.FieldHigh)
	if err != nil {
		return 0, 0, err
	}

	lowIdx, err := composition.FieldIndex(fields, composition.FieldLow)
	if err != nil {
		return 0, 0, err
	}

	high, err = row[highIdx].AsFloat()
	if err != nil {
		return 0, 0, errors.Wrapf(errors.ErrCodeMalformedComposition, err,
			"high field is not a float")
	}

	low, err = row[lowIdx].AsFloat()
	if err != nil {
		return 0, 0, errors.Wrapf(errors.ErrCodeMalformedComposition, err,
			"low field is not a float")
	}

	return high, low, nil
}
