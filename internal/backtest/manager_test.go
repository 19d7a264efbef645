package backtest

import (
	"testing"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/suite"

	"github.com/quantframe-lab/quantframe/internal/logger"
	"github.com/quantframe-lab/quantframe/internal/types"
)

type ManagerTestSuite struct {
	suite.Suite
	manager *Manager
}

func TestManagerSuite(t *testing.T) {
	suite.Run(t, new(ManagerTestSuite))
}

func (suite *ManagerTestSuite) SetupTest() {
	suite.manager = NewManager(TestConfig(1000), logger.NewNopLogger())
}

func newLongTrade(allocation float64) *types.Trade {
	return types.NewTrade(types.TradeOptions{
		Side:              types.TradeSideLong,
		CapitalAllocation: allocation,
		Leverage:          optional.None[float64](),
	})
}

func (suite *ManagerTestSuite) TestOpenTradeDeductsAllocation() {
	suite.manager.UpdatePrice(1, 100)

	trade := newLongTrade(400)
	suite.manager.OpenTrade(trade)

	suite.True(trade.IsOpened())
	suite.InDelta(600.0, suite.manager.AvailableCapital(), 1e-9)
	suite.InDelta(100.0, trade.OpenPrice().Unwrap(), 1e-9)
	suite.InDelta(1000.0, trade.PortfolioValueAtOpen().Unwrap(), 1e-9)
}

func (suite *ManagerTestSuite) TestCapitalConservation() {
	suite.manager.UpdatePrice(1, 100)

	before := suite.manager.AvailableCapital()

	trade := newLongTrade(500)
	suite.manager.OpenTrade(trade)

	suite.manager.UpdatePrice(2, 110)
	suite.manager.CloseTrade(trade)

	suite.InDelta(before+trade.PLFixed(), suite.manager.AvailableCapital(), 1e-9)
}

func (suite *ManagerTestSuite) TestInsufficientCapitalIsSilentNoOp() {
	suite.manager.UpdatePrice(1, 100)

	trade := newLongTrade(1500)
	suite.manager.OpenTrade(trade)

	suite.False(trade.IsOpened())
	suite.True(trade.OpenPrice().IsNone())
	suite.InDelta(1000.0, suite.manager.AvailableCapital(), 1e-9)
}

func (suite *ManagerTestSuite) TestPortfolioValueMarksToMarket() {
	suite.manager.UpdatePrice(1, 100)

	trade := newLongTrade(500)
	suite.manager.OpenTrade(trade)

	suite.manager.UpdatePrice(2, 110)

	// 500 cash + 500 allocation + 50 unrealized
	suite.InDelta(1050.0, suite.manager.PortfolioValue(), 1e-9)
}

func (suite *ManagerTestSuite) TestCloseTradeByStaleHandle() {
	suite.manager.UpdatePrice(1, 100)

	trade := newLongTrade(500)
	suite.manager.OpenTrade(trade)
	suite.manager.UpdatePrice(2, 120)

	// A fresh handle with a different id must not close anything.
	stranger := newLongTrade(500)
	suite.manager.CloseTrade(stranger)
	suite.False(trade.IsClosed())

	suite.manager.CloseTrade(trade)
	suite.True(trade.IsClosed())
	suite.InDelta(120.0, trade.ClosePrice().Unwrap(), 1e-9)
}

func (suite *ManagerTestSuite) TestDoubleCloseDoesNotDoubleCredit() {
	suite.manager.UpdatePrice(1, 100)

	trade := newLongTrade(500)
	suite.manager.OpenTrade(trade)
	suite.manager.UpdatePrice(2, 110)
	suite.manager.CloseTrade(trade)

	after := suite.manager.AvailableCapital()
	suite.manager.CloseTrade(trade)

	suite.InDelta(after, suite.manager.AvailableCapital(), 1e-9)
}

func (suite *ManagerTestSuite) TestEndForceClosesOpenTrades() {
	suite.manager.UpdatePrice(1, 100)

	trade := newLongTrade(500)
	suite.manager.OpenTrade(trade)
	suite.manager.UpdatePrice(2, 90)

	result := suite.manager.End()

	suite.True(trade.IsClosed())
	suite.Require().Len(result.Trades(), 1)
	suite.InDelta(-50.0, result.Trades()[0].PLFixed(), 1e-9)
	suite.InDelta(950.0, result.FinalCapital(), 1e-9)
}

func (suite *ManagerTestSuite) TestEndIsIdempotent() {
	suite.manager.UpdatePrice(1, 100)

	first := suite.manager.End()
	second := suite.manager.End()

	suite.Same(first, second)
}

func (suite *ManagerTestSuite) TestEndedManagerIsImmutable() {
	suite.manager.UpdatePrice(1, 100)
	suite.manager.End()

	suite.manager.UpdatePrice(2, 200)
	suite.InDelta(100.0, suite.manager.CurrentPrice(), 1e-9)

	trade := newLongTrade(100)
	suite.manager.OpenTrade(trade)
	suite.False(trade.IsOpened())
	suite.InDelta(1000.0, suite.manager.AvailableCapital(), 1e-9)
}

func (suite *ManagerTestSuite) TestResultExcludesPendingTrades() {
	suite.manager.UpdatePrice(1, 100)

	rejected := newLongTrade(5000)
	suite.manager.OpenTrade(rejected)

	opened := newLongTrade(500)
	suite.manager.OpenTrade(opened)

	result := suite.manager.End()

	suite.Len(result.Trades(), 1)
	suite.Equal(opened.ID(), result.Trades()[0].ID())
}

func (suite *ManagerTestSuite) TestMetricsComputedOverClosedTrades() {
	suite.manager.UpdatePrice(1, 100)

	winner := newLongTrade(300)
	suite.manager.OpenTrade(winner)
	suite.manager.UpdatePrice(2, 110)
	suite.manager.CloseTrade(winner)

	loser := newLongTrade(300)
	suite.manager.OpenTrade(loser)
	suite.manager.UpdatePrice(3, 99)
	suite.manager.CloseTrade(loser)

	result := suite.manager.End()
	metrics := result.Metrics()

	suite.Equal(1.0, metrics[types.MetricMostConsecutiveWins])
	suite.Equal(1.0, metrics[types.MetricMostConsecutiveLosses])
	suite.Contains(metrics, types.MetricSharpeRatio)
	suite.Contains(metrics, types.MetricAPR)
	suite.Contains(metrics, types.MetricStandardDeviation)
	suite.InDelta(result.FinalCapital()-result.InitialCapital(),
		metrics[types.MetricTotalFixedReturn], 1e-9)
}

func (suite *ManagerTestSuite) TestSharpeOmittedForSingleTrade() {
	suite.manager.UpdatePrice(1, 100)

	trade := newLongTrade(500)
	suite.manager.OpenTrade(trade)
	suite.manager.UpdatePrice(2, 110)
	suite.manager.CloseTrade(trade)

	metrics := suite.manager.End().Metrics()

	suite.NotContains(metrics, types.MetricSharpeRatio)
	suite.NotContains(metrics, types.MetricStandardDeviation)
}
