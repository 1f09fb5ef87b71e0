package indicator

import (
	"github.com/markcheno/go-talib"
	"github.com/tufyaa/yahoo-talib/internal/types"
)

// BollingerBandsStdDev is the band width in standard deviations, both sides.
const BollingerBandsStdDev = 2.0

// BollingerBands implements BBANDS over close prices with a simple moving
// average middle band.
type BollingerBands struct{}

// NewBollingerBands creates the BBANDS family.
func NewBollingerBands() Indicator {
	return &BollingerBands{}
}

// Name returns the name of the indicator.
func (bb *BollingerBands) Name() types.IndicatorType {
	return types.IndicatorTypeBBANDS
}

func (bb *BollingerBands) ParameterKind() types.ParameterKind {
	return types.ParameterKindPeriod
}

func (bb *BollingerBands) Inputs() []string {
	return closeInputs
}

// Outputs returns the upper, middle and lower band names for the period.
func (bb *BollingerBands) Outputs(period int) []string {
	return []string{
		periodColumn("BBANDS_upper", period),
		periodColumn("BBANDS_middle", period),
		periodColumn("BBANDS_lower", period),
	}
}

func (bb *BollingerBands) Lookback(period int) int {
	return period - 1
}

func (bb *BollingerBands) Calculate(inputs [][]float64, period int) [][]float64 {
	upper, middle, lower := talib.BBands(inputs[0], period, BollingerBandsStdDev, BollingerBandsStdDev, talib.SMA)

	return [][]float64{upper, middle, lower}
}
