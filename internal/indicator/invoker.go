package indicator

import (
	"math"

	"github.com/tufyaa/yahoo-talib/internal/table"
	"github.com/tufyaa/yahoo-talib/pkg/errors"
)

// Output is one named series aligned one-to-one with the rows it was computed from.
type Output struct {
	Name   string
	Values []float64
}

// Apply computes a resolved request over one instrument's rows.
//
// Rows inside the family's warm-up are NaN. When the series is no longer than
// the warm-up, the numerical library is not called and every value is NaN.
func Apply(request Request, series *table.Table) ([]Output, error) {
	indicator := request.Indicator
	period := request.period()

	inputs := make([][]float64, 0, len(indicator.Inputs()))
	for _, name := range indicator.Inputs() {
		values, ok := series.Column(name)
		if !ok {
			return nil, errors.Newf(errors.ErrCodeMissingInputColumn, "indicator %s requires column %q", request.Token, name)
		}

		inputs = append(inputs, values)
	}

	names := indicator.Outputs(period)
	rows := series.Len()
	lookback := indicator.Lookback(period)

	outputs := make([]Output, 0, len(names))

	if rows <= lookback {
		for _, name := range names {
			outputs = append(outputs, Output{Name: name, Values: table.NaNs(rows)})
		}

		return outputs, nil
	}

	raw, err := calculate(request, inputs, period)
	if err != nil {
		return nil, err
	}

	if len(raw) != len(names) {
		return nil, errors.Newf(errors.ErrCodeIndicatorCalculation, "indicator %s returned %d series, expected %d", request.Token, len(raw), len(names))
	}

	for i, values := range raw {
		if len(values) != rows {
			return nil, errors.Newf(errors.ErrCodeIndicatorCalculation, "indicator %s returned %d values for %d rows", request.Token, len(values), rows)
		}

		out := make([]float64, rows)
		copy(out, values)

		for j := 0; j < lookback; j++ {
			out[j] = math.NaN()
		}

		outputs = append(outputs, Output{Name: names[i], Values: out})
	}

	return outputs, nil
}

// calculate hands copies of the inputs to the library and turns its panics into errors.
func calculate(request Request, inputs [][]float64, period int) (raw [][]float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf(errors.ErrCodeIndicatorCalculation, "indicator %s failed: %v", request.Token, r)
		}
	}()

	copied := make([][]float64, len(inputs))
	for i, values := range inputs {
		copied[i] = append([]float64(nil), values...)
	}

	return request.Indicator.Calculate(copied, period), nil
}
