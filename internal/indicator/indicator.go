package indicator

import (
	"fmt"

	"github.com/tufyaa/yahoo-talib/internal/types"
)

// Indicator is one indicator family. Implementations are stateless and safe
// for concurrent use.
type Indicator interface {
	// Name returns the family name used in request tokens
	Name() types.IndicatorType
	// ParameterKind reports whether the family takes a lookback period
	ParameterKind() types.ParameterKind
	// Inputs returns the table columns the family reads, in Calculate order
	Inputs() []string
	// Outputs returns the output column names for a period (ignored by families without one)
	Outputs(period int) []string
	// Lookback returns the number of leading rows without a defined value
	Lookback(period int) int
	// Calculate runs the numerical library. It returns one series per output.
	Calculate(inputs [][]float64, period int) [][]float64
}

// periodColumn embeds the period in a column name, e.g. SMA_20.
func periodColumn(name string, period int) string {
	return fmt.Sprintf("%s_%d", name, period)
}

// periodIndicator carries the shared bits of the single-output families that
// require a period.
type periodIndicator struct {
	name   types.IndicatorType
	inputs []string
}

func (p periodIndicator) Name() types.IndicatorType {
	return p.name
}

func (p periodIndicator) ParameterKind() types.ParameterKind {
	return types.ParameterKindPeriod
}

func (p periodIndicator) Inputs() []string {
	return p.inputs
}

func (p periodIndicator) Outputs(period int) []string {
	return []string{periodColumn(string(p.name), period)}
}

var (
	closeInputs = []string{types.ColumnClose}
	hlcInputs   = []string{types.ColumnHigh, types.ColumnLow, types.ColumnClose}
)
