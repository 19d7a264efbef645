package optimizer

import (
	"sync"
	"testing"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/suite"

	"github.com/quantframe-lab/quantframe/internal/backtest"
	"github.com/quantframe-lab/quantframe/internal/logger"
	"github.com/quantframe-lab/quantframe/pkg/errors"
)

type ParameterTestSuite struct {
	suite.Suite
}

func TestParameterSuite(t *testing.T) {
	suite.Run(t, new(ParameterTestSuite))
}

func (suite *ParameterTestSuite) TestNumericValues() {
	param := NumericParameter{Name: "period", Start: 10, End: 100, Step: 15}

	suite.Equal([]int{10, 25, 40, 55, 70, 85}, param.Values())
}

func (suite *ParameterTestSuite) TestNumericValuesExcludeEnd() {
	param := NumericParameter{Name: "period", Start: 1, End: 4, Step: 1}

	suite.Equal([]int{1, 2, 3}, param.Values())
}

func (suite *ParameterTestSuite) TestInvalidStepYieldsNoValues() {
	param := NumericParameter{Name: "period", Start: 1, End: 10, Step: 0}

	suite.Empty(param.Values())
}

func (suite *ParameterTestSuite) TestTaggedUnionExtraction() {
	numeric := Numeric(NumericParameter{Name: "period", Start: 1, End: 2, Step: 1})
	categoric := Categoric(CategoricParameter{Name: "mode", Categories: []string{"a", "b"}})

	n, err := numeric.AsNumeric()
	suite.Require().NoError(err)
	suite.Equal("period", n.Name)

	_, err = numeric.AsCategoric()
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeParameterKindMissing))

	c, err := categoric.AsCategoric()
	suite.Require().NoError(err)
	suite.Equal([]string{"a", "b"}, c.Categories)

	suite.Equal("mode", categoric.Name())
}

func (suite *ParameterTestSuite) TestSizeFromMap() {
	params := Combinations([]NumericParameter{
		{Name: "period", Start: 5, End: 6, Step: 1},
	})
	suite.Require().Len(params, 1)

	value, err := SizeFromMap(params[0], "period")
	suite.Require().NoError(err)
	suite.Equal(5, value)

	_, err = SizeFromMap(params[0], "missing")
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeMissingParameter))
}

type GridOptimizerTestSuite struct {
	suite.Suite
}

func TestGridOptimizerSuite(t *testing.T) {
	suite.Run(t, new(GridOptimizerTestSuite))
}

// countingBacktester records every parameter map it sees and scores each
// combination by the sum of its parameter values.
type countingBacktester struct {
	mu       sync.Mutex
	seen     []ParameterMap
	failures map[int]bool
}

func (b *countingBacktester) Backtest(params optional.Option[ParameterMap]) (*backtest.Result, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	paramMap := params.Unwrap()

	short, err := SizeFromMap(paramMap, "sma_short_period")
	if err != nil {
		return nil, err
	}

	if b.failures[short] {
		return nil, errors.New(errors.ErrCodeBacktestFailed, "combination failed")
	}

	b.seen = append(b.seen, paramMap)

	manager := backtest.NewManager(backtest.TestConfig(1000), logger.NewNopLogger())
	manager.UpdatePrice(1, 100)

	return manager.End(), nil
}

func (b *countingBacktester) OptimizationTarget(result *backtest.Result) float64 {
	return result.FinalCapital()
}

func (suite *GridOptimizerTestSuite) TestFortyTwoCombinations() {
	parameters := []Parameter{
		Numeric(NumericParameter{Name: "sma_short_period", Start: 10, End: 100, Step: 15}),
		Numeric(NumericParameter{Name: "sma_long_period", Start: 100, End: 200, Step: 15}),
	}

	tester := &countingBacktester{failures: nil}
	optimizer := NewGridOptimizer(4, logger.NewNopLogger(), optional.None[ProgressCallback]())

	results, err := optimizer.Optimize(tester, parameters)
	suite.Require().NoError(err)
	suite.Len(results, 42)

	// Every combination must be a distinct pair.
	distinct := make(map[[2]int]bool)
	for _, result := range results {
		short, err := SizeFromMap(result.Parameters, "sma_short_period")
		suite.Require().NoError(err)

		long, err := SizeFromMap(result.Parameters, "sma_long_period")
		suite.Require().NoError(err)

		distinct[[2]int{short, long}] = true
	}

	suite.Len(distinct, 42)
}

func (suite *GridOptimizerTestSuite) TestFailedCombinationsAreDropped() {
	parameters := []Parameter{
		Numeric(NumericParameter{Name: "sma_short_period", Start: 1, End: 5, Step: 1}),
	}

	tester := &countingBacktester{failures: map[int]bool{2: true, 4: true}}
	optimizer := NewGridOptimizer(2, logger.NewNopLogger(), optional.None[ProgressCallback]())

	results, err := optimizer.Optimize(tester, parameters)
	suite.Require().NoError(err)
	suite.Len(results, 2)
}

func (suite *GridOptimizerTestSuite) TestProgressReachesOneHundred() {
	parameters := []Parameter{
		Numeric(NumericParameter{Name: "sma_short_period", Start: 1, End: 4, Step: 1}),
	}

	var mu sync.Mutex

	var percents []float64

	callback := ProgressCallback(func(percent float64) {
		mu.Lock()
		defer mu.Unlock()

		percents = append(percents, percent)
	})

	tester := &countingBacktester{failures: nil}
	optimizer := NewGridOptimizer(1, logger.NewNopLogger(), optional.Some(callback))

	_, err := optimizer.Optimize(tester, parameters)
	suite.Require().NoError(err)

	suite.Require().NotEmpty(percents)
	suite.InDelta(100.0, percents[len(percents)-1], 1e-9)
}

func (suite *GridOptimizerTestSuite) TestEmptyRangeIsAnError() {
	parameters := []Parameter{
		Numeric(NumericParameter{Name: "period", Start: 10, End: 10, Step: 1}),
	}

	optimizer := NewGridOptimizer(1, logger.NewNopLogger(), optional.None[ProgressCallback]())

	_, err := optimizer.Optimize(&countingBacktester{failures: nil}, parameters)
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidRange))
}

func (suite *GridOptimizerTestSuite) TestNoNumericParametersIsAnError() {
	parameters := []Parameter{
		Categoric(CategoricParameter{Name: "mode", Categories: []string{"fast"}}),
	}

	optimizer := NewGridOptimizer(1, logger.NewNopLogger(), optional.None[ProgressCallback]())

	_, err := optimizer.Optimize(&countingBacktester{failures: nil}, parameters)
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeNoParameters))
}
