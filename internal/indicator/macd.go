package indicator

import (
	"github.com/markcheno/go-talib"
	"github.com/tufyaa/yahoo-talib/internal/types"
)

// MACD periods.
const (
	MACDFastPeriod   = 12
	MACDSlowPeriod   = 26
	MACDSignalPeriod = 9
)

// MACD implements Moving Average Convergence Divergence with the standard
// 12/26/9 periods. It produces the MACD line, the signal line and the histogram.
type MACD struct{}

// NewMACD creates the MACD family.
func NewMACD() Indicator {
	return &MACD{}
}

// Name returns the name of the indicator.
func (m *MACD) Name() types.IndicatorType {
	return types.IndicatorTypeMACD
}

func (m *MACD) ParameterKind() types.ParameterKind {
	return types.ParameterKindNone
}

func (m *MACD) Inputs() []string {
	return closeInputs
}

func (m *MACD) Outputs(_ int) []string {
	return []string{"MACD", "MACD_signal", "MACD_hist"}
}

// Lookback is the slow EMA warm-up plus the signal EMA warm-up.
func (m *MACD) Lookback(_ int) int {
	return (MACDSlowPeriod - 1) + (MACDSignalPeriod - 1)
}

func (m *MACD) Calculate(inputs [][]float64, _ int) [][]float64 {
	macd, signal, hist := talib.Macd(inputs[0], MACDFastPeriod, MACDSlowPeriod, MACDSignalPeriod)

	return [][]float64{macd, signal, hist}
}
