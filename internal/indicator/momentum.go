package indicator

import (
	"github.com/markcheno/go-talib"
	"github.com/tufyaa/yahoo-talib/internal/types"
)

// NewROC creates the Rate of Change family.
func NewROC() Indicator {
	return &MA{
		periodIndicator: periodIndicator{name: types.IndicatorTypeROC, inputs: closeInputs},
		calculate:       talib.Roc,
		lookback:        func(period int) int { return period },
	}
}

// NewMOM creates the Momentum family.
func NewMOM() Indicator {
	return &MA{
		periodIndicator: periodIndicator{name: types.IndicatorTypeMOM, inputs: closeInputs},
		calculate:       talib.Mom,
		lookback:        func(period int) int { return period },
	}
}
