package types

import "time"

// Column names of a Bar Table, in persisted order.
const (
	ColumnTicker   = "ticker"
	ColumnDate     = "Date"
	ColumnOpen     = "Open"
	ColumnHigh     = "High"
	ColumnLow      = "Low"
	ColumnClose    = "Close"
	ColumnAdjClose = "Adj Close"
	ColumnVolume   = "Volume"
)

// PriceColumns lists the numeric bar columns every Bar Table carries.
var PriceColumns = []string{
	ColumnOpen,
	ColumnHigh,
	ColumnLow,
	ColumnClose,
	ColumnAdjClose,
	ColumnVolume,
}

// MarketData is one bar of one instrument at one timestamp.
// Missing values are NaN.
type MarketData struct {
	Symbol   string    `csv:"ticker"`
	Time     time.Time `csv:"Date"`
	Open     float64   `csv:"Open"`
	High     float64   `csv:"High"`
	Low      float64   `csv:"Low"`
	Close    float64   `csv:"Close"`
	AdjClose float64   `csv:"Adj Close"`
	Volume   float64   `csv:"Volume"`
}

// Value returns the bar's value for a price column name.
func (m MarketData) Value(column string) (float64, bool) {
	switch column {
	case ColumnOpen:
		return m.Open, true
	case ColumnHigh:
		return m.High, true
	case ColumnLow:
		return m.Low, true
	case ColumnClose:
		return m.Close, true
	case ColumnAdjClose:
		return m.AdjClose, true
	case ColumnVolume:
		return m.Volume, true
	default:
		return 0, false
	}
}
