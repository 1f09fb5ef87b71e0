package indicator

import (
	"github.com/markcheno/go-talib"
	"github.com/tufyaa/yahoo-talib/internal/types"
)

// PriceRange implements the families computed from high, low and close
// (ATR here, ADX and CCI in trend.go).
type PriceRange struct {
	periodIndicator
	calculate func(high, low, close []float64, period int) []float64
	lookback  func(period int) int
}

// NewATR creates the Average True Range family.
func NewATR() Indicator {
	return &PriceRange{
		periodIndicator: periodIndicator{name: types.IndicatorTypeATR, inputs: hlcInputs},
		calculate:       talib.Atr,
		lookback:        func(period int) int { return period },
	}
}

func (p *PriceRange) Lookback(period int) int {
	return p.lookback(period)
}

// Calculate expects inputs in High, Low, Close order.
func (p *PriceRange) Calculate(inputs [][]float64, period int) [][]float64 {
	return [][]float64{p.calculate(inputs[0], inputs[1], inputs[2], period)}
}
