package indicator

import (
	"github.com/markcheno/go-talib"
	"github.com/tufyaa/yahoo-talib/internal/types"
)

// NewEMA creates the exponential moving average family.
func NewEMA() Indicator {
	return &MA{
		periodIndicator: periodIndicator{name: types.IndicatorTypeEMA, inputs: closeInputs},
		calculate:       talib.Ema,
		lookback:        func(period int) int { return period - 1 },
	}
}

// NewDEMA creates the double exponential moving average family.
// Each smoothing pass adds period-1 rows of warm-up.
func NewDEMA() Indicator {
	return &MA{
		periodIndicator: periodIndicator{name: types.IndicatorTypeDEMA, inputs: closeInputs},
		calculate:       talib.Dema,
		lookback:        func(period int) int { return 2 * (period - 1) },
	}
}

// NewTEMA creates the triple exponential moving average family.
func NewTEMA() Indicator {
	return &MA{
		periodIndicator: periodIndicator{name: types.IndicatorTypeTEMA, inputs: closeInputs},
		calculate:       talib.Tema,
		lookback:        func(period int) int { return 3 * (period - 1) },
	}
}
