package indicator

import (
	"github.com/markcheno/go-talib"
	"github.com/tufyaa/yahoo-talib/internal/types"
)

// RSIPeriod is the fixed lookback used for the RSI column.
const RSIPeriod = 14

// RSI implements the Relative Strength Index over close prices.
type RSI struct{}

// NewRSI creates the RSI family.
func NewRSI() Indicator {
	return &RSI{}
}

// Name returns the name of the indicator.
func (r *RSI) Name() types.IndicatorType {
	return types.IndicatorTypeRSI
}

func (r *RSI) ParameterKind() types.ParameterKind {
	return types.ParameterKindNone
}

func (r *RSI) Inputs() []string {
	return closeInputs
}

func (r *RSI) Outputs(_ int) []string {
	return []string{string(types.IndicatorTypeRSI)}
}

func (r *RSI) Lookback(_ int) int {
	return RSIPeriod
}

// Calculate runs a 14 period RSI.
func (r *RSI) Calculate(inputs [][]float64, _ int) [][]float64 {
	return [][]float64{talib.Rsi(inputs[0], RSIPeriod)}
}
