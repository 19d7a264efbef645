package types

import (
	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"
)

// TradeSide is the direction of a trade.
type TradeSide string

const (
	TradeSideLong  TradeSide = "LONG"
	TradeSideShort TradeSide = "SHORT"
)

// Trade represents one open/close position lifecycle.
//
// A trade is created pending, opened once by the backtest manager (which
// freezes the open price, open timestamp and the portfolio value at open),
// and closed once (which freezes the close price and timestamp and computes
// the three P&L figures). Freezing is set-once: a frozen field is never
// overwritten, so a double open or double close cannot corrupt accounting.
type Trade struct {
	id                   uuid.UUID
	side                 TradeSide
	capitalAllocation    float64
	leverage             float64
	openTimestamp        optional.Option[int64]
	closeTimestamp       optional.Option[int64]
	openPrice            optional.Option[float64]
	closePrice           optional.Option[float64]
	portfolioValueAtOpen optional.Option[float64]
	closed               bool
	plRatio              float64
	plFixed              float64
	plPortfolio          float64
}

// TradeOptions configures a new trade. Leverage defaults to 1.0 when None.
type TradeOptions struct {
	Side              TradeSide
	CapitalAllocation float64
	Leverage          optional.Option[float64]
}

// NewTrade creates a pending trade with a fresh unique id. No open fields are
// set until the backtest manager accepts the trade.
func NewTrade(opts TradeOptions) *Trade {
	leverage := 1.0
	if opts.Leverage.IsSome() {
		leverage = opts.Leverage.Unwrap()
	}

	return &Trade{
		id:                   uuid.New(),
		side:                 opts.Side,
		capitalAllocation:    opts.CapitalAllocation,
		leverage:             leverage,
		openTimestamp:        optional.None[int64](),
		closeTimestamp:       optional.None[int64](),
		openPrice:            optional.None[float64](),
		closePrice:           optional.None[float64](),
		portfolioValueAtOpen: optional.None[float64](),
		closed:               false,
		plRatio:              0,
		plFixed:              0,
		plPortfolio:          0,
	}
}

// ID returns the trade's unique id.
func (t *Trade) ID() uuid.UUID {
	return t.id
}

// Side returns the trade direction.
func (t *Trade) Side() TradeSide {
	return t.side
}

// CapitalAllocation returns the dollar amount committed to this trade.
func (t *Trade) CapitalAllocation() float64 {
	return t.capitalAllocation
}

// Leverage returns the leverage multiplier.
func (t *Trade) Leverage() float64 {
	return t.leverage
}

// OpenTimestamp returns the frozen open timestamp, if the trade has opened.
func (t *Trade) OpenTimestamp() optional.Option[int64] {
	return t.openTimestamp
}

// CloseTimestamp returns the frozen close timestamp, if the trade has closed.
func (t *Trade) CloseTimestamp() optional.Option[int64] {
	return t.closeTimestamp
}

// OpenPrice returns the frozen open price, if the trade has opened.
func (t *Trade) OpenPrice() optional.Option[float64] {
	return t.openPrice
}

// ClosePrice returns the frozen close price, if the trade has closed.
func (t *Trade) ClosePrice() optional.Option[float64] {
	return t.closePrice
}

// PortfolioValueAtOpen returns the portfolio value frozen when the trade opened.
func (t *Trade) PortfolioValueAtOpen() optional.Option[float64] {
	return t.portfolioValueAtOpen
}

// IsOpened reports whether the trade's open fields have been frozen.
func (t *Trade) IsOpened() bool {
	return t.openPrice.IsSome()
}

// IsClosed reports whether the trade has been closed.
func (t *Trade) IsClosed() bool {
	return t.closed
}

// PLRatio is the leveraged price-move return in percent. Fixed after close.
func (t *Trade) PLRatio() float64 {
	return t.plRatio
}

// PLFixed is the realized P&L in dollars. Fixed after close.
func (t *Trade) PLFixed() float64 {
	return t.plFixed
}

// PLPortfolio is the realized P&L as a percent of the portfolio value at open.
// Fixed after close.
func (t *Trade) PLPortfolio() float64 {
	return t.plPortfolio
}

// FreezeOpen sets the open price, open timestamp and portfolio value at open.
// Each field is set-once: a second call leaves the first values intact.
func (t *Trade) FreezeOpen(price float64, timestamp int64, portfolioValue float64) {
	if t.openPrice.IsNone() {
		t.openPrice = optional.Some(price)
	}

	if t.openTimestamp.IsNone() {
		t.openTimestamp = optional.Some(timestamp)
	}

	if t.portfolioValueAtOpen.IsNone() {
		t.portfolioValueAtOpen = optional.Some(portfolioValue)
	}
}

// Close freezes the close price and timestamp and computes the three P&L
// figures. A second call is a no-op.
func (t *Trade) Close(price float64, timestamp int64) {
	if t.closed {
		return
	}

	t.closePrice = optional.Some(price)
	t.closeTimestamp = optional.Some(timestamp)

	if t.openPrice.IsSome() {
		ratio := t.priceChangeRatio(price)
		t.plRatio, t.plFixed, t.plPortfolio = t.computePL(ratio)
	}

	t.closed = true
}

// UnrealizedFixedPL computes the dollar P&L the trade would realize if closed
// at currentPrice, without closing it. Returns 0 for a trade that has not
// opened yet.
func (t *Trade) UnrealizedFixedPL(currentPrice float64) float64 {
	if t.openPrice.IsNone() {
		return 0
	}

	ratio := t.priceChangeRatio(currentPrice)
	_, fixed, _ := t.computePL(ratio)

	return fixed
}

func (t *Trade) priceChangeRatio(exitPrice float64) float64 {
	openPrice := t.openPrice.Unwrap()

	switch t.side {
	case TradeSideShort:
		return (openPrice - exitPrice) / openPrice
	default:
		return (exitPrice - openPrice) / openPrice
	}
}

func (t *Trade) computePL(priceChangeRatio float64) (ratio, fixed, portfolio float64) {
	ratioDec := decimal.NewFromFloat(priceChangeRatio)
	leverageDec := decimal.NewFromFloat(t.leverage)
	leveraged := ratioDec.Mul(leverageDec)

	ratio, _ = leveraged.Mul(decimal.NewFromInt(100)).Float64()
	fixed, _ = leveraged.Mul(decimal.NewFromFloat(t.capitalAllocation)).Float64()

	if t.portfolioValueAtOpen.IsSome() && t.portfolioValueAtOpen.Unwrap() != 0 {
		portfolioDec := leveraged.
			Mul(decimal.NewFromFloat(t.capitalAllocation)).
			Div(decimal.NewFromFloat(t.portfolioValueAtOpen.Unwrap())).
			Mul(decimal.NewFromInt(100))
		portfolio, _ = portfolioDec.Float64()
	}

	return ratio, fixed, portfolio
}
