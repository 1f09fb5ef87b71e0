package writer

import (
	"database/sql"
	"fmt"
	"math"
	"strings"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/tufyaa/yahoo-talib/internal/logger"
	"github.com/tufyaa/yahoo-talib/internal/table"
	"github.com/tufyaa/yahoo-talib/internal/types"
	"github.com/tufyaa/yahoo-talib/pkg/errors"
	"go.uber.org/multierr"
)

// insertBatchSize bounds the rows sent in one INSERT statement.
const insertBatchSize = 500

const tableName = "bars"

// DuckDBWriter writes tables as Parquet by loading them into an in-memory
// DuckDB database and exporting with COPY.
type DuckDBWriter struct {
	logger *logger.Logger
	sq     squirrel.StatementBuilderType

	db *sql.DB
	tx *sql.Tx
}

// NewDuckDBWriter creates a new DuckDBWriter.
func NewDuckDBWriter(log *logger.Logger) *DuckDBWriter {
	return &DuckDBWriter{
		logger: log,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}
}

func (w *DuckDBWriter) Extension() string {
	return string(FormatParquet)
}

// Write loads tbl into a fresh database and exports it to path.
func (w *DuckDBWriter) Write(tbl *table.Table, path string) error {
	err := writeAtomic(path, func(tmpPath string) (err error) {
		if err := w.initialize(tbl.ValueColumns()); err != nil {
			return err
		}

		defer func() {
			err = multierr.Append(err, w.Close())
		}()

		if err := w.insert(tbl); err != nil {
			return err
		}

		return w.finalize(tmpPath)
	})
	if err != nil {
		return err
	}

	logWritten(w.logger, tbl, path)

	return nil
}

// initialize opens the database, creates the bars table and begins a transaction.
func (w *DuckDBWriter) initialize(valueColumns []string) (err error) {
	w.db, err = sql.Open("duckdb", ":memory:")
	if err != nil {
		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to open DuckDB connection", err)
	}

	definitions := make([]string, 0, 2+len(valueColumns))
	definitions = append(definitions,
		quoteIdentifier(types.ColumnTicker)+" TEXT",
		quoteIdentifier(types.ColumnDate)+" TIMESTAMP",
	)

	for _, name := range valueColumns {
		definitions = append(definitions, quoteIdentifier(name)+" DOUBLE")
	}

	_, err = w.db.Exec(fmt.Sprintf("CREATE TABLE %s (%s)", tableName, strings.Join(definitions, ", ")))
	if err != nil {
		w.db.Close()
		w.db = nil

		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to create table", err)
	}

	w.tx, err = w.db.Begin()
	if err != nil {
		w.db.Close()
		w.db = nil

		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to begin transaction", err)
	}

	return nil
}

// insert copies every row of tbl in batches. NaN cells are stored as NULL.
func (w *DuckDBWriter) insert(tbl *table.Table) error {
	if w.tx == nil {
		return errors.New(errors.ErrCodeMarketDataWriteFailed, "writer not initialized or transaction is nil")
	}

	valueColumns := tbl.ValueColumns()
	columnNames := make([]string, 0, 2+len(valueColumns))
	columnNames = append(columnNames, quoteIdentifier(types.ColumnTicker), quoteIdentifier(types.ColumnDate))

	values := make([][]float64, len(valueColumns))
	for i, name := range valueColumns {
		columnNames = append(columnNames, quoteIdentifier(name))
		values[i], _ = tbl.Column(name)
	}

	for start := 0; start < tbl.Len(); start += insertBatchSize {
		end := min(start+insertBatchSize, tbl.Len())
		query := w.sq.Insert(tableName).Columns(columnNames...)

		for row := start; row < end; row++ {
			record := make([]any, 0, len(columnNames))
			record = append(record, tbl.Ticker(row), tbl.Date(row).UTC())

			for i := range valueColumns {
				record = append(record, nullable(values[i][row]))
			}

			query = query.Values(record...)
		}

		if _, err := query.RunWith(w.tx).Exec(); err != nil {
			return errors.Wrapf(errors.ErrCodeMarketDataWriteFailed, err, "failed to insert rows %d-%d", start, end-1)
		}
	}

	return nil
}

// finalize commits the transaction and exports the table to a Parquet file.
func (w *DuckDBWriter) finalize(outputPath string) error {
	if w.tx == nil {
		return errors.New(errors.ErrCodeMarketDataWriteFailed, "writer not initialized or transaction is nil")
	}

	if err := w.tx.Commit(); err != nil {
		w.tx = nil

		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to commit transaction", err)
	}

	w.tx = nil

	_, err := w.db.Exec(fmt.Sprintf("COPY %s TO %s (FORMAT PARQUET)", tableName, quoteLiteral(outputPath)))
	if err != nil {
		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to export to Parquet", err)
	}

	return nil
}

// Close rolls back any open transaction and closes the database.
func (w *DuckDBWriter) Close() error {
	var err error

	if w.tx != nil {
		if rollbackErr := w.tx.Rollback(); rollbackErr != nil {
			err = multierr.Append(err, fmt.Errorf("failed to rollback transaction: %w", rollbackErr))
		}

		w.tx = nil
	}

	if w.db != nil {
		if closeErr := w.db.Close(); closeErr != nil {
			err = multierr.Append(err, fmt.Errorf("failed to close db connection: %w", closeErr))
		}

		w.db = nil
	}

	return err
}

func nullable(value float64) any {
	if math.IsNaN(value) {
		return nil
	}

	return value
}

func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func quoteLiteral(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}
