package indicator

import (
	"github.com/markcheno/go-talib"
	"github.com/tufyaa/yahoo-talib/internal/types"
)

// MA implements the single-output families computed from close alone. Besides
// the moving averages it backs ROC and MOM.
type MA struct {
	periodIndicator
	calculate func(in []float64, period int) []float64
	lookback  func(period int) int
}

// NewSMA creates the simple moving average family.
func NewSMA() Indicator {
	return &MA{
		periodIndicator: periodIndicator{name: types.IndicatorTypeSMA, inputs: closeInputs},
		calculate:       talib.Sma,
		lookback:        func(period int) int { return period - 1 },
	}
}

// NewWMA creates the weighted moving average family.
func NewWMA() Indicator {
	return &MA{
		periodIndicator: periodIndicator{name: types.IndicatorTypeWMA, inputs: closeInputs},
		calculate:       talib.Wma,
		lookback:        func(period int) int { return period - 1 },
	}
}

// NewKAMA creates Kaufman's adaptive moving average family.
func NewKAMA() Indicator {
	return &MA{
		periodIndicator: periodIndicator{name: types.IndicatorTypeKAMA, inputs: closeInputs},
		calculate:       talib.Kama,
		lookback:        func(period int) int { return period },
	}
}

// Lookback returns the warm-up length for the period.
func (m *MA) Lookback(period int) int {
	return m.lookback(period)
}

// Calculate runs the moving average over the close series.
func (m *MA) Calculate(inputs [][]float64, period int) [][]float64 {
	return [][]float64{m.calculate(inputs[0], period)}
}
