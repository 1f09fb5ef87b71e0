package pipeline

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/olekukonko/tablewriter"
	"github.com/tufyaa/yahoo-talib/internal/table"
	"github.com/tufyaa/yahoo-talib/internal/types"
)

// TickerSummary describes one ticker's rows in a table.
type TickerSummary struct {
	Ticker    string
	Rows      int
	First     time.Time
	Last      time.Time
	CloseMean float64
	CloseMin  float64
	CloseMax  float64
}

// Summarize returns one summary per ticker, in first-seen order. Close
// statistics skip missing values and are NaN when a ticker has none.
func Summarize(tbl *table.Table) []TickerSummary {
	closes, _ := tbl.Column(types.ColumnClose)
	summaries := []TickerSummary{}

	for _, partition := range tbl.Partition() {
		summary := TickerSummary{
			Ticker:    partition.Ticker,
			Rows:      len(partition.Rows),
			First:     tbl.Date(partition.Rows[0]),
			Last:      tbl.Date(partition.Rows[len(partition.Rows)-1]),
			CloseMean: math.NaN(),
			CloseMin:  math.NaN(),
			CloseMax:  math.NaN(),
		}

		values := stats.Float64Data{}
		for _, row := range partition.Rows {
			if closes != nil && !math.IsNaN(closes[row]) {
				values = append(values, closes[row])
			}
		}

		if len(values) > 0 {
			summary.CloseMean, _ = stats.Mean(values)
			summary.CloseMin, _ = stats.Min(values)
			summary.CloseMax, _ = stats.Max(values)
		}

		summaries = append(summaries, summary)
	}

	return summaries
}

// RenderSummary writes the summaries as a text table.
func RenderSummary(w io.Writer, summaries []TickerSummary) {
	out := tablewriter.NewWriter(w)
	out.SetHeader([]string{"Ticker", "Rows", "First", "Last", "Close Mean", "Close Min", "Close Max"})
	out.SetAlignment(tablewriter.ALIGN_RIGHT)

	for _, summary := range summaries {
		out.Append([]string{
			summary.Ticker,
			fmt.Sprintf("%d", summary.Rows),
			summary.First.UTC().Format(time.DateOnly),
			summary.Last.UTC().Format(time.DateOnly),
			formatStat(summary.CloseMean),
			formatStat(summary.CloseMin),
			formatStat(summary.CloseMax),
		})
	}

	out.Render()
}

func formatStat(value float64) string {
	if math.IsNaN(value) {
		return "-"
	}

	return fmt.Sprintf("%.2f", value)
}
