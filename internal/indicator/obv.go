package indicator

import (
	"github.com/markcheno/go-talib"
	"github.com/tufyaa/yahoo-talib/internal/types"
)

// OBV implements On Balance Volume.
type OBV struct{}

// NewOBV creates the OBV family.
func NewOBV() Indicator {
	return &OBV{}
}

func (o *OBV) Name() types.IndicatorType {
	return types.IndicatorTypeOBV
}

func (o *OBV) ParameterKind() types.ParameterKind {
	return types.ParameterKindNone
}

func (o *OBV) Inputs() []string {
	return []string{types.ColumnClose, types.ColumnVolume}
}

func (o *OBV) Outputs(_ int) []string {
	return []string{string(types.IndicatorTypeOBV)}
}

func (o *OBV) Lookback(_ int) int {
	return 0
}

func (o *OBV) Calculate(inputs [][]float64, _ int) [][]float64 {
	return [][]float64{talib.Obv(inputs[0], inputs[1])}
}
