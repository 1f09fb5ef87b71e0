package indicator

import (
	"github.com/markcheno/go-talib"
	"github.com/tufyaa/yahoo-talib/internal/types"
)

// NewADX creates the Average Directional Index family.
// The directional movement and its smoothing each take a period.
func NewADX() Indicator {
	return &PriceRange{
		periodIndicator: periodIndicator{name: types.IndicatorTypeADX, inputs: hlcInputs},
		calculate:       talib.Adx,
		lookback:        func(period int) int { return 2*period - 1 },
	}
}

// NewCCI creates the Commodity Channel Index family.
func NewCCI() Indicator {
	return &PriceRange{
		periodIndicator: periodIndicator{name: types.IndicatorTypeCCI, inputs: hlcInputs},
		calculate:       talib.Cci,
		lookback:        func(period int) int { return period - 1 },
	}
}
