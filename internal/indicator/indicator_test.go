package indicator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/quantframe-lab/quantframe/pkg/errors"
)

type SMATestSuite struct {
	suite.Suite
}

func TestSMASuite(t *testing.T) {
	suite.Run(t, new(SMATestSuite))
}

func (suite *SMATestSuite) TestWarmUpReturnsNone() {
	sma, err := NewSMA(3)
	suite.Require().NoError(err)

	sma.Allocate(1)
	suite.True(sma.Value().IsNone())

	sma.Allocate(2)
	suite.True(sma.Value().IsNone())

	sma.Allocate(3)
	suite.True(sma.Value().IsSome())
	suite.InDelta(2.0, sma.Value().Unwrap(), 1e-9)
}

func (suite *SMATestSuite) TestSlidingWindow() {
	sma, err := NewSMA(3)
	suite.Require().NoError(err)

	for _, v := range []float64{1, 2, 3, 4, 5} {
		sma.Allocate(v)
	}

	suite.InDelta(4.0, sma.Value().Unwrap(), 1e-9)
}

func (suite *SMATestSuite) TestPeriodOne() {
	sma, err := NewSMA(1)
	suite.Require().NoError(err)

	sma.Allocate(42)
	suite.InDelta(42.0, sma.Value().Unwrap(), 1e-9)
}

func (suite *SMATestSuite) TestInvalidPeriod() {
	_, err := NewSMA(0)
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidPeriod))
}

type StdDevTestSuite struct {
	suite.Suite
}

func TestStdDevSuite(t *testing.T) {
	suite.Run(t, new(StdDevTestSuite))
}

func (suite *StdDevTestSuite) TestUndefinedUnderTwoPoints() {
	sd := NewStdDev()
	suite.True(sd.Value().IsNone())

	sd.Allocate(5)
	suite.True(sd.Value().IsNone())

	sd.Allocate(7)
	suite.True(sd.Value().IsSome())
}

func (suite *StdDevTestSuite) TestSampleStdDev() {
	sd := NewStdDev()
	for _, v := range []float64{2, 4, 6, 8, 10} {
		sd.Allocate(v)
	}

	suite.InDelta(math.Sqrt(10), sd.Value().Unwrap(), 1e-9)
	suite.InDelta(6.0, sd.Mean().Unwrap(), 1e-9)
	suite.Equal(5, sd.Count())
}

func (suite *StdDevTestSuite) TestConstantSeriesIsZero() {
	sd := NewStdDev()
	for i := 0; i < 10; i++ {
		sd.Allocate(3.5)
	}

	suite.InDelta(0.0, sd.Value().Unwrap(), 1e-9)
}

type KalmanTestSuite struct {
	suite.Suite
}

func TestKalmanSuite(t *testing.T) {
	suite.Run(t, new(KalmanTestSuite))
}

func (suite *KalmanTestSuite) TestFirstPointSeedsEstimate() {
	k, err := NewKalman(0.01, 1.0)
	suite.Require().NoError(err)

	suite.True(k.Value().IsNone())

	k.Allocate(100)
	suite.InDelta(100.0, k.Value().Unwrap(), 1e-9)
}

func (suite *KalmanTestSuite) TestEstimateMovesTowardMeasurement() {
	k, err := NewKalman(0.01, 1.0)
	suite.Require().NoError(err)

	k.Allocate(100)
	k.Allocate(110)

	estimate := k.Value().Unwrap()
	suite.Greater(estimate, 100.0)
	suite.Less(estimate, 110.0)
}

func (suite *KalmanTestSuite) TestSmallProcessNoiseSmoothsMore() {
	smooth, err := NewKalman(0.001, 1.0)
	suite.Require().NoError(err)
	reactive, err := NewKalman(1.0, 1.0)
	suite.Require().NoError(err)

	for _, v := range []float64{100, 110, 120, 130} {
		smooth.Allocate(v)
		reactive.Allocate(v)
	}

	suite.Less(smooth.Value().Unwrap(), reactive.Value().Unwrap())
}

func (suite *KalmanTestSuite) TestInvalidNoise() {
	_, err := NewKalman(0, 1)
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
}

type TRATRTestSuite struct {
	suite.Suite
}

func TestTRATRSuite(t *testing.T) {
	suite.Run(t, new(TRATRTestSuite))
}

func (suite *TRATRTestSuite) TestFirstBarUsesHighLowRange() {
	tr := NewTR()
	tr.AllocateBar(Bar{High: 12, Low: 9, Close: 11})

	suite.InDelta(3.0, tr.Value().Unwrap(), 1e-9)
}

func (suite *TRATRTestSuite) TestGapUpDominates() {
	tr := NewTR()
	tr.AllocateBar(Bar{High: 12, Low: 9, Close: 10})
	tr.AllocateBar(Bar{High: 20, Low: 18, Close: 19})

	// |high - prev close| = 10 exceeds the bar range of 2.
	suite.InDelta(10.0, tr.Value().Unwrap(), 1e-9)
}

func (suite *TRATRTestSuite) TestATRSeedsWithSimpleAverage() {
	atr, err := NewATR(3)
	suite.Require().NoError(err)

	atr.AllocateBar(Bar{High: 12, Low: 10, Close: 11})
	suite.True(atr.Value().IsNone())

	atr.AllocateBar(Bar{High: 13, Low: 9, Close: 10})
	suite.True(atr.Value().IsNone())

	atr.AllocateBar(Bar{High: 12, Low: 9, Close: 11})
	suite.Require().True(atr.Value().IsSome())

	// TRs: 2, 4 (13-9), 3 (12-9 vs gaps) -> seed (2+4+3)/3.
	suite.InDelta(3.0, atr.Value().Unwrap(), 1e-9)
}

func (suite *TRATRTestSuite) TestWilderSmoothingAfterSeed() {
	atr, err := NewATR(2)
	suite.Require().NoError(err)

	atr.AllocateBar(Bar{High: 12, Low: 10, Close: 11})
	atr.AllocateBar(Bar{High: 13, Low: 11, Close: 12})
	seed := atr.Value().Unwrap()

	atr.AllocateBar(Bar{High: 16, Low: 12, Close: 14})

	// tr = 4, atr = ((2-1)*seed + 4) / 2
	suite.InDelta((seed+4)/2, atr.Value().Unwrap(), 1e-9)
}

type TheilSenTestSuite struct {
	suite.Suite
}

func TestTheilSenSuite(t *testing.T) {
	suite.Run(t, new(TheilSenTestSuite))
}

func (suite *TheilSenTestSuite) TestWarmUpRequiresWindowPlusOne() {
	ts, err := NewDefaultTheilSen(3)
	suite.Require().NoError(err)

	for i := 0; i < 3; i++ {
		ts.AllocateBar(Bar{High: 11, Low: 9, Close: 10})
		suite.True(ts.Value().IsNone())
	}

	ts.AllocateBar(Bar{High: 11, Low: 9, Close: 10})
	suite.True(ts.Value().IsSome())
}

func (suite *TheilSenTestSuite) TestFlatSeriesKeepsBaseline() {
	ts, err := NewDefaultTheilSen(2)
	suite.Require().NoError(err)

	for i := 0; i < 10; i++ {
		ts.AllocateBar(Bar{High: 10, Low: 10, Close: 10})
	}

	suite.InDelta(10.0, ts.Value().Unwrap(), 1e-9)
}

func (suite *TheilSenTestSuite) TestRisingSeriesLiftsBaseline() {
	ts, err := NewDefaultTheilSen(2)
	suite.Require().NoError(err)

	price := 100.0
	for i := 0; i < 20; i++ {
		ts.AllocateBar(Bar{High: price + 1, Low: price - 1, Close: price})
		price += 2
	}

	baseline := ts.Value().Unwrap()
	suite.Greater(baseline, 100.0)
	suite.Less(baseline, price)
}

func (suite *TheilSenTestSuite) TestWindowClampedToMinimum() {
	ts, err := NewDefaultTheilSen(0)
	suite.Require().NoError(err)

	// Clamped to window 2: needs 3 closes before producing a value.
	ts.AllocateBar(Bar{High: 10, Low: 10, Close: 10})
	ts.AllocateBar(Bar{High: 10, Low: 10, Close: 10})
	suite.True(ts.Value().IsNone())

	ts.AllocateBar(Bar{High: 10, Low: 10, Close: 10})
	suite.True(ts.Value().IsSome())
}

type MedianTestSuite struct {
	suite.Suite
}

func TestMedianSuite(t *testing.T) {
	suite.Run(t, new(MedianTestSuite))
}

func (suite *MedianTestSuite) TestOddLength() {
	suite.InDelta(3.0, median([]float64{5, 1, 3, 2, 4}), 1e-9)
}

func (suite *MedianTestSuite) TestEvenLength() {
	suite.InDelta(2.5, median([]float64{4, 1, 3, 2}), 1e-9)
}

func (suite *MedianTestSuite) TestSingleElement() {
	suite.InDelta(7.0, median([]float64{7}), 1e-9)
}

type RenkoTestSuite struct {
	suite.Suite
}

func TestRenkoSuite(t *testing.T) {
	suite.Run(t, new(RenkoTestSuite))
}

func (suite *RenkoTestSuite) TestFirstCloseSeedsBrick() {
	renko, err := NewRenko(5)
	suite.Require().NoError(err)

	suite.True(renko.Value().IsNone())

	renko.Allocate(100)
	suite.InDelta(100.0, renko.Value().Unwrap(), 1e-9)
}

func (suite *RenkoTestSuite) TestSmallMovesAreFiltered() {
	renko, err := NewRenko(5)
	suite.Require().NoError(err)

	renko.Allocate(100)
	renko.Allocate(104)
	suite.InDelta(100.0, renko.Value().Unwrap(), 1e-9)

	renko.Allocate(105)
	suite.InDelta(100.0, renko.Value().Unwrap(), 1e-9)
}

func (suite *RenkoTestSuite) TestLargeMoveUpdatesBrick() {
	renko, err := NewRenko(5)
	suite.Require().NoError(err)

	renko.Allocate(100)
	renko.Allocate(106)
	suite.InDelta(106.0, renko.Value().Unwrap(), 1e-9)

	renko.Allocate(99)
	suite.InDelta(99.0, renko.Value().Unwrap(), 1e-9)
}

func (suite *RenkoTestSuite) TestInvalidBrickSize() {
	_, err := NewRenko(0)
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
}
