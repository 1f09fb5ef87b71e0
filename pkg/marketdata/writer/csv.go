package writer

import (
	"encoding/csv"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/tufyaa/yahoo-talib/internal/logger"
	"github.com/tufyaa/yahoo-talib/internal/table"
	"github.com/tufyaa/yahoo-talib/pkg/errors"
)

// DateLayout is used for the Date column when every row falls on midnight UTC.
const DateLayout = "2006-01-02"

// CSVWriter writes a table as comma separated values with a header row.
// Missing values are written as empty fields.
type CSVWriter struct {
	logger *logger.Logger
}

func NewCSVWriter(log *logger.Logger) *CSVWriter {
	return &CSVWriter{logger: log}
}

func (w *CSVWriter) Extension() string {
	return string(FormatCSV)
}

func (w *CSVWriter) Write(tbl *table.Table, path string) error {
	err := writeAtomic(path, func(tmpPath string) error {
		return w.writeFile(tbl, tmpPath)
	})
	if err != nil {
		return err
	}

	logWritten(w.logger, tbl, path)

	return nil
}

func (w *CSVWriter) writeFile(tbl *table.Table, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeMarketDataWriteFailed, err, "failed to create %s", path)
	}
	defer file.Close()

	out := csv.NewWriter(file)

	if err := out.Write(tbl.Columns()); err != nil {
		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to write header", err)
	}

	valueColumns := tbl.ValueColumns()
	values := make([][]float64, len(valueColumns))

	for i, name := range valueColumns {
		values[i], _ = tbl.Column(name)
	}

	dateOnly := datesAreMidnightUTC(tbl)
	record := make([]string, 2+len(valueColumns))

	for row := 0; row < tbl.Len(); row++ {
		record[0] = tbl.Ticker(row)
		record[1] = FormatDate(tbl.Date(row), dateOnly)

		for i := range valueColumns {
			record[2+i] = FormatValue(values[i][row])
		}

		if err := out.Write(record); err != nil {
			return errors.Wrapf(errors.ErrCodeMarketDataWriteFailed, err, "failed to write row %d", row)
		}
	}

	out.Flush()

	if err := out.Error(); err != nil {
		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to flush csv", err)
	}

	if err := file.Sync(); err != nil {
		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to sync csv", err)
	}

	return nil
}

// FormatValue renders a cell using the shortest representation that round
// trips. NaN renders as the empty string.
func FormatValue(value float64) string {
	if math.IsNaN(value) {
		return ""
	}

	return strconv.FormatFloat(value, 'f', -1, 64)
}

// FormatDate renders a Date cell. Date-only output is used for daily and
// longer bars.
func FormatDate(date time.Time, dateOnly bool) string {
	if dateOnly {
		return date.UTC().Format(DateLayout)
	}

	return date.UTC().Format(time.RFC3339)
}

func datesAreMidnightUTC(tbl *table.Table) bool {
	for i := 0; i < tbl.Len(); i++ {
		date := tbl.Date(i).UTC()
		if date.Hour() != 0 || date.Minute() != 0 || date.Second() != 0 || date.Nanosecond() != 0 {
			return false
		}
	}

	return true
}
