// Package backtest implements the event-driven simulation core: a clock and
// capital ledger driven tick-by-tick by a strategy, producing an immutable
// result with aggregate metrics when the run ends.
package backtest

import (
	"time"

	"go.uber.org/zap"

	"github.com/quantframe-lab/quantframe/internal/logger"
	"github.com/quantframe-lab/quantframe/internal/types"
)

// Manager is the simulation clock and capital ledger for one strategy run.
// It is the sole authority on available capital and trade state. Callers must
// feed prices in non-decreasing timestamp order; the manager does not
// re-sort. All mutating operations become no-ops once the run has ended.
type Manager struct {
	config           Config
	logger           *logger.Logger
	currentTimestamp int64
	currentPrice     float64
	availableCapital float64
	trades           []*types.Trade
	ended            bool
	result           *Result
	startedAt        time.Time
}

func NewManager(config Config, log *logger.Logger) *Manager {
	return &Manager{
		config:           config,
		logger:           log,
		currentTimestamp: 0,
		currentPrice:     0,
		availableCapital: config.InitialCapital,
		trades:           nil,
		ended:            false,
		result:           nil,
		startedAt:        time.Now(),
	}
}

// UpdatePrice advances the simulation clock to the given timestamp and price.
func (m *Manager) UpdatePrice(timestamp int64, price float64) {
	if m.ended {
		return
	}

	m.currentTimestamp = timestamp
	m.currentPrice = price
}

// AvailableCapital returns the uncommitted cash.
func (m *Manager) AvailableCapital() float64 {
	return m.availableCapital
}

func (m *Manager) InitialCapital() float64 {
	return m.config.InitialCapital
}

func (m *Manager) CurrentPrice() float64 {
	return m.currentPrice
}

func (m *Manager) CurrentTimestamp() int64 {
	return m.currentTimestamp
}

// PortfolioValue is the available capital plus the open trades' allocations
// marked to the current price.
func (m *Manager) PortfolioValue() float64 {
	value := m.availableCapital

	for _, trade := range m.trades {
		if trade.IsOpened() && !trade.IsClosed() {
			value += trade.CapitalAllocation() + trade.UnrealizedFixedPL(m.currentPrice)
		}
	}

	return value
}

// OpenTrade freezes the trade's open fields at the current price, timestamp,
// and portfolio value, deducts its allocation, and takes ownership of it.
// An allocation beyond the available capital is rejected silently: the trade
// stays pending and the ledger is untouched. Strategies that care should
// check AvailableCapital or PortfolioValue before opening.
func (m *Manager) OpenTrade(trade *types.Trade) {
	if m.ended {
		return
	}

	if m.availableCapital < trade.CapitalAllocation() {
		m.logger.Debug("open rejected, insufficient capital",
			zap.Float64("allocation", trade.CapitalAllocation()),
			zap.Float64("available", m.availableCapital))

		return
	}

	trade.FreezeOpen(m.currentPrice, m.currentTimestamp, m.PortfolioValue())
	m.availableCapital -= trade.CapitalAllocation()
	m.trades = append(m.trades, trade)
}

// CloseTrade closes the trade with the given trade's id at the current price
// and timestamp, crediting the allocation plus realized P&L back to the
// ledger. The passed handle may be a stale copy; the lookup goes by id.
func (m *Manager) CloseTrade(trade *types.Trade) {
	if m.ended {
		return
	}

	for _, owned := range m.trades {
		if owned.ID() != trade.ID() {
			continue
		}

		if !owned.IsOpened() || owned.IsClosed() {
			return
		}

		owned.Close(m.currentPrice, m.currentTimestamp)
		m.availableCapital += owned.CapitalAllocation() + owned.PLFixed()

		return
	}
}

// End force-closes any still-open trades at the final price, seals the
// manager, and builds the result. Calling End again returns the same result.
func (m *Manager) End() *Result {
	if m.ended {
		return m.result
	}

	for _, trade := range m.trades {
		if trade.IsOpened() && !trade.IsClosed() {
			trade.Close(m.currentPrice, m.currentTimestamp)
			m.availableCapital += trade.CapitalAllocation() + trade.PLFixed()
		}
	}

	m.ended = true
	m.result = newResult(m, time.Since(m.startedAt))

	return m.result
}
