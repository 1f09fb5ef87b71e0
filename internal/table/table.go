// Package table implements the columnar Bar Table shared by retrieval, the
// indicator engine and persistence.
package table

import (
	"math"
	"time"

	"github.com/tufyaa/yahoo-talib/internal/types"
	"github.com/tufyaa/yahoo-talib/pkg/errors"
)

// Table is an ordered sequence of rows keyed by ticker and Date, with an
// ordered set of float64 columns. Missing values are NaN.
//
// Cells are never written through: SetColumn replaces a column's slice, so a
// Clone can share storage with the table it came from.
type Table struct {
	tickers []string
	dates   []time.Time
	names   []string
	columns map[string][]float64
}

// Partition is the set of rows belonging to one ticker, in table order.
type Partition struct {
	Ticker string
	Rows   []int
}

// New returns an empty table carrying the standard price columns.
func New() *Table {
	t := &Table{
		tickers: []string{},
		dates:   []time.Time{},
		names:   make([]string, 0, len(types.PriceColumns)),
		columns: make(map[string][]float64, len(types.PriceColumns)),
	}

	for _, name := range types.PriceColumns {
		t.names = append(t.names, name)
		t.columns[name] = []float64{}
	}

	return t
}

// FromMarketData builds a table from bars, one row per bar, in slice order.
func FromMarketData(bars []types.MarketData) *Table {
	t := New()
	t.tickers = make([]string, len(bars))
	t.dates = make([]time.Time, len(bars))

	for _, name := range types.PriceColumns {
		t.columns[name] = make([]float64, len(bars))
	}

	for i, bar := range bars {
		t.tickers[i] = bar.Symbol
		t.dates[i] = bar.Time

		for _, name := range types.PriceColumns {
			value, _ := bar.Value(name)
			t.columns[name][i] = value
		}
	}

	return t
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.tickers)
}

// Ticker returns the instrument of row i.
func (t *Table) Ticker(i int) string {
	return t.tickers[i]
}

// Date returns the timestamp of row i.
func (t *Table) Date(i int) time.Time {
	return t.dates[i]
}

// Columns returns the full header: ticker, Date, then every value column in order.
func (t *Table) Columns() []string {
	header := make([]string, 0, len(t.names)+2)
	header = append(header, types.ColumnTicker, types.ColumnDate)

	return append(header, t.names...)
}

// ValueColumns returns the float64 column names in order.
func (t *Table) ValueColumns() []string {
	names := make([]string, len(t.names))
	copy(names, t.names)

	return names
}

// Column returns the values of a float64 column. The slice must not be modified.
func (t *Table) Column(name string) ([]float64, bool) {
	values, ok := t.columns[name]

	return values, ok
}

// HasColumn reports whether the table carries a float64 column with this name.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.columns[name]

	return ok
}

// SetColumn appends a new column or replaces an existing one in place, keeping
// its position in the column order.
func (t *Table) SetColumn(name string, values []float64) error {
	if name == types.ColumnTicker || name == types.ColumnDate {
		return errors.Newf(errors.ErrCodeDuplicateColumn, "column %q is a key column", name)
	}

	if len(values) != t.Len() {
		return errors.Newf(errors.ErrCodeColumnLength, "column %q has %d values, table has %d rows", name, len(values), t.Len())
	}

	if _, exists := t.columns[name]; !exists {
		t.names = append(t.names, name)
	}

	t.columns[name] = values

	return nil
}

// Clone returns a table with its own column order and column map. Cell storage is shared.
func (t *Table) Clone() *Table {
	clone := &Table{
		tickers: t.tickers,
		dates:   t.dates,
		names:   make([]string, len(t.names)),
		columns: make(map[string][]float64, len(t.columns)),
	}

	copy(clone.names, t.names)

	for name, values := range t.columns {
		clone.columns[name] = values
	}

	return clone
}

// Take returns a new table holding the given rows in the given order.
func (t *Table) Take(rows []int) *Table {
	out := &Table{
		tickers: make([]string, len(rows)),
		dates:   make([]time.Time, len(rows)),
		names:   make([]string, len(t.names)),
		columns: make(map[string][]float64, len(t.columns)),
	}

	copy(out.names, t.names)

	for i, row := range rows {
		out.tickers[i] = t.tickers[row]
		out.dates[i] = t.dates[row]
	}

	for name, values := range t.columns {
		taken := make([]float64, len(rows))
		for i, row := range rows {
			taken[i] = values[row]
		}

		out.columns[name] = taken
	}

	return out
}

// Partition groups rows by ticker in first-seen order.
func (t *Table) Partition() []Partition {
	index := make(map[string]int)
	partitions := []Partition{}

	for row, ticker := range t.tickers {
		i, ok := index[ticker]
		if !ok {
			i = len(partitions)
			index[ticker] = i
			partitions = append(partitions, Partition{Ticker: ticker, Rows: []int{}})
		}

		partitions[i].Rows = append(partitions[i].Rows, row)
	}

	return partitions
}

// Row returns row i as a bar. Price columns the table lacks are NaN.
func (t *Table) Row(i int) types.MarketData {
	bar := types.MarketData{
		Symbol: t.tickers[i],
		Time:   t.dates[i],
	}

	bar.Open = t.valueAt(types.ColumnOpen, i)
	bar.High = t.valueAt(types.ColumnHigh, i)
	bar.Low = t.valueAt(types.ColumnLow, i)
	bar.Close = t.valueAt(types.ColumnClose, i)
	bar.AdjClose = t.valueAt(types.ColumnAdjClose, i)
	bar.Volume = t.valueAt(types.ColumnVolume, i)

	return bar
}

func (t *Table) valueAt(name string, i int) float64 {
	values, ok := t.columns[name]
	if !ok {
		return math.NaN()
	}

	return values[i]
}

// NaNs returns a column of n NaN values.
func NaNs(n int) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = math.NaN()
	}

	return values
}
