package strategy

import (
	"testing"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/suite"

	"github.com/quantframe-lab/quantframe/internal/backtest"
	"github.com/quantframe-lab/quantframe/internal/composition"
	"github.com/quantframe-lab/quantframe/internal/logger"
	"github.com/quantframe-lab/quantframe/internal/marketdata"
	"github.com/quantframe-lab/quantframe/internal/optimizer"
	"github.com/quantframe-lab/quantframe/internal/types"
	"github.com/quantframe-lab/quantframe/pkg/errors"
)

func closesComposition(id string, closes []float64) composition.Composition {
	candles := make([]types.Candle, len(closes))
	for i, c := range closes {
		candles[i] = types.Candle{
			Timestamp: int64(i + 1),
			Open:      float32(c),
			High:      float32(c),
			Low:       float32(c),
			Close:     float32(c),
			Volume:    1,
		}
	}

	return composition.NewCloseComposition(id, id, "", marketdata.NewSliceSource(candles))
}

func barsComposition(id string, closes []float64) composition.Composition {
	candles := make([]types.Candle, len(closes))
	for i, c := range closes {
		candles[i] = types.Candle{
			Timestamp: int64(i + 1),
			Open:      float32(c),
			High:      float32(c + 1),
			Low:       float32(c - 1),
			Close:     float32(c),
			Volume:    1,
		}
	}

	return composition.NewHLCComposition(id, id, "", marketdata.NewSliceSource(candles))
}

func paramMap(values map[string]int) optional.Option[optimizer.ParameterMap] {
	params := make(optimizer.ParameterMap, len(values))
	for name, value := range values {
		params[name] = composition.Size(value)
	}

	return optional.Some(params)
}

type StrategyTestSuite struct {
	suite.Suite
	config backtest.Config
	logger *logger.Logger
}

func TestStrategySuite(t *testing.T) {
	suite.Run(t, new(StrategyTestSuite))
}

func (suite *StrategyTestSuite) SetupTest() {
	suite.config = backtest.TestConfig(1000)
	suite.logger = logger.NewNopLogger()
}

func (suite *StrategyTestSuite) TestSMAScenario() {
	comp := closesComposition("scenario", []float64{1, 2, 3, 4, 5, 6, 100, 1, 1, 1})
	strat := NewSMAPeriodOptimizable(comp, suite.config, suite.logger)

	result, err := strat.Backtest(paramMap(map[string]int{ParamSMAPeriod: 3}))
	suite.Require().NoError(err)

	trades := result.Trades()
	suite.Require().Len(trades, 2)

	for _, trade := range trades {
		suite.True(trade.IsClosed())
	}

	// The long opens at the first defined SMA (close 3) and flips to short
	// on the crash to 1, losing 2/3 of its allocation.
	long := trades[0]
	suite.Equal(types.TradeSideLong, long.Side())
	suite.InDelta(3.0, long.OpenPrice().Unwrap(), 1e-6)
	suite.InDelta(1.0, long.ClosePrice().Unwrap(), 1e-6)
	suite.Less(long.PLFixed(), 0.0)

	short := trades[1]
	suite.Equal(types.TradeSideShort, short.Side())
	suite.InDelta(1.0, short.OpenPrice().Unwrap(), 1e-6)
	suite.InDelta(0.0, short.PLFixed(), 1e-6)

	suite.InDelta(1000.0/3.0, result.FinalCapital(), 1e-3)
}

func (suite *StrategyTestSuite) TestBacktestIsIdempotent() {
	comp := closesComposition("idempotent", []float64{1, 2, 3, 4, 5, 6, 100, 1, 1, 1})
	strat := NewSMAPeriodOptimizable(comp, suite.config, suite.logger)
	params := paramMap(map[string]int{ParamSMAPeriod: 3})

	first, err := strat.Backtest(params)
	suite.Require().NoError(err)

	second, err := strat.Backtest(params)
	suite.Require().NoError(err)

	suite.Equal(first.Metrics(), second.Metrics())
	suite.Equal(first.FinalCapital(), second.FinalCapital())
	suite.Len(second.Trades(), len(first.Trades()))
}

func (suite *StrategyTestSuite) TestOptimizableRejectsMissingParameters() {
	comp := closesComposition("missing", []float64{1, 2, 3})

	strategies := []Strategy{
		NewSMAPeriodOptimizable(comp, suite.config, suite.logger),
		NewDoubleSMACrossover(comp, suite.config, suite.logger),
		NewKalmanCrossover(comp, suite.config, suite.logger),
		NewRenkoSMACrossover(comp, suite.config, suite.logger),
	}

	for _, strat := range strategies {
		_, err := strat.Backtest(optional.None[optimizer.ParameterMap]())
		suite.Require().Error(err, strat.ID())
		suite.True(errors.HasCode(err, errors.ErrCodeMissingParameter), strat.ID())
	}
}

func (suite *StrategyTestSuite) TestFixedSMAHasNoParameterSpace() {
	comp := closesComposition("fixed", []float64{1, 2, 3})
	strat := NewSMACrossover(comp, suite.config, suite.logger)

	results, err := strat.Optimize()
	suite.Require().NoError(err)
	suite.True(results.IsNone())
}

func (suite *StrategyTestSuite) TestDoubleSMAWaitsForBothAverages() {
	// Rising closes: short SMA(2) defined from row 1, long SMA(4) from row 3.
	comp := closesComposition("both", []float64{1, 2, 3, 4, 5, 6, 7, 8})
	strat := NewDoubleSMACrossover(comp, suite.config, suite.logger)

	result, err := strat.Backtest(paramMap(map[string]int{
		ParamSMAShortPeriod: 2,
		ParamSMALongPeriod:  4,
	}))
	suite.Require().NoError(err)

	trades := result.Trades()
	suite.Require().Len(trades, 1)

	// First decision happens once the long SMA warms up at timestamp 4.
	suite.Equal(int64(4), trades[0].OpenTimestamp().Unwrap())
	suite.Equal(types.TradeSideLong, trades[0].Side())
}

func (suite *StrategyTestSuite) TestKalmanCrossoverRuns() {
	comp := closesComposition("kalman", []float64{100, 101, 102, 103, 104, 103, 102, 101, 100, 99})
	strat := NewKalmanCrossover(comp, suite.config, suite.logger)

	result, err := strat.Backtest(paramMap(map[string]int{ParamKalmanQIndex: 600}))
	suite.Require().NoError(err)
	suite.NotEmpty(result.Trades())
}

func (suite *StrategyTestSuite) TestTheilSenCrossoverRuns() {
	closes := make([]float64, 0, 40)
	price := 100.0

	for i := 0; i < 20; i++ {
		closes = append(closes, price)
		price += 3
	}

	for i := 0; i < 20; i++ {
		closes = append(closes, price)
		price -= 3
	}

	comp := barsComposition("theilsen", closes)
	strat := NewTheilSenCrossover(comp, suite.config, suite.logger)

	result, err := strat.Backtest(paramMap(map[string]int{ParamTheilSenWindowLength: 10}))
	suite.Require().NoError(err)
	suite.NotEmpty(result.Trades())

	for _, trade := range result.Trades() {
		suite.True(trade.IsClosed())
	}
}

func (suite *StrategyTestSuite) TestRenkoSMACrossoverFiltersNoise() {
	closes := []float64{100, 101, 100, 102, 101, 100, 150, 151, 152, 150, 151, 149}
	comp := closesComposition("renko", closes)
	strat := NewRenkoSMACrossover(comp, suite.config, suite.logger)

	result, err := strat.Backtest(paramMap(map[string]int{
		ParamSMAPeriod:      3,
		ParamRenkoBrickSize: 10,
	}))
	suite.Require().NoError(err)
	suite.NotNil(result)
}

func (suite *StrategyTestSuite) TestComposedDataIsCached() {
	comp := closesComposition("cache", []float64{1, 2, 3})
	strat := NewSMACrossover(comp, suite.config, suite.logger)

	first, err := strat.ComposedData()
	suite.Require().NoError(err)

	second, err := strat.ComposedData()
	suite.Require().NoError(err)

	// Same backing slice, not a recompose.
	suite.Equal(len(first), len(second))
	suite.Same(&first[0], &second[0])
}

func (suite *StrategyTestSuite) TestCompositeTargetSentinel() {
	// An ended empty run has no Sharpe metric.
	manager := backtest.NewManager(suite.config, suite.logger)
	manager.UpdatePrice(1, 100)
	result := manager.End()

	suite.Equal(WorstScore, compositeTarget(result))
	suite.Equal(WorstScore, sharpeTarget(result))
}

func (suite *StrategyTestSuite) TestOptimizeGridSearch() {
	comp := closesComposition("grid", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 9, 8, 7, 6, 5})

	config := backtest.TestConfig(1000)
	config.MaxParallelism = 2

	strat := NewDoubleSMACrossover(comp, config, suite.logger)

	results, err := strat.Optimize()
	suite.Require().NoError(err)
	suite.Require().True(results.IsSome())
	suite.Len(results.Unwrap(), 42)
}

type RegistryTestSuite struct {
	suite.Suite
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistryTestSuite))
}

func (suite *RegistryTestSuite) TestRegisterAndGet() {
	registry := NewRegistry()
	comp := closesComposition("reg", []float64{1, 2, 3})
	strat := NewSMACrossover(comp, backtest.TestConfig(1000), logger.NewNopLogger())

	suite.Require().NoError(registry.Register(strat))

	got, err := registry.Get(strat.ID())
	suite.Require().NoError(err)
	suite.Equal(strat.ID(), got.ID())

	suite.Len(registry.List(), 1)
}

func (suite *RegistryTestSuite) TestDuplicateRegistrationFails() {
	registry := NewRegistry()
	comp := closesComposition("dup", []float64{1, 2, 3})

	suite.Require().NoError(registry.Register(NewSMACrossover(comp, backtest.TestConfig(1000), logger.NewNopLogger())))

	err := registry.Register(NewSMACrossover(comp, backtest.TestConfig(1000), logger.NewNopLogger()))
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeStrategyAlreadyRegistered))
}

func (suite *RegistryTestSuite) TestUnknownStrategy() {
	registry := NewRegistry()

	_, err := registry.Get("nope")
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeStrategyNotFound))
}

type RenderTestSuite struct {
	suite.Suite
}

func TestRenderSuite(t *testing.T) {
	suite.Run(t, new(RenderTestSuite))
}

func (suite *RenderTestSuite) TestRenderProjections() {
	comp := closesComposition("render", []float64{1, 2, 3, 4, 5, 6, 100, 1, 1, 1})
	strat := NewSMAPeriodOptimizable(comp, backtest.TestConfig(1000), logger.NewNopLogger())

	result, err := strat.Backtest(paramMap(map[string]int{ParamSMAPeriod: 3}))
	suite.Require().NoError(err)

	equity := RenderEquityGrowth(result)
	suite.Require().Len(equity, len(result.Trades()))
	suite.InDelta(result.FinalCapital(), equity[len(equity)-1].Value, 1e-6)

	percent := RenderPercentageGrowth(result)
	suite.Require().Len(percent, len(result.Trades()))

	portfolioPercent := RenderPortfolioPercentageGrowth(result)
	suite.Require().Len(portfolioPercent, len(result.Trades()))

	// Series are ordered by close time.
	for i := 1; i < len(equity); i++ {
		suite.LessOrEqual(equity[i-1].Time, equity[i].Time)
	}
}
