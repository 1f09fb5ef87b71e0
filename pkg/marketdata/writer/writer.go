// Package writer persists bar tables to disk.
package writer

import (
	"os"
	"path/filepath"

	"github.com/tufyaa/yahoo-talib/internal/logger"
	"github.com/tufyaa/yahoo-talib/internal/table"
	"github.com/tufyaa/yahoo-talib/pkg/errors"
	"go.uber.org/zap"
)

// Format is an output file format.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatParquet Format = "parquet"
)

// TableWriter writes a whole table to a file.
type TableWriter interface {
	// Write persists the table at path, replacing any existing file.
	// The file is either written completely or left untouched.
	Write(tbl *table.Table, path string) error
	// Extension returns the file extension, without the dot.
	Extension() string
}

// NewTableWriter returns the writer for the given format.
func NewTableWriter(format Format, log *logger.Logger) (TableWriter, error) {
	switch format {
	case FormatCSV:
		return NewCSVWriter(log), nil
	case FormatParquet:
		return NewDuckDBWriter(log), nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "unsupported output format: %s", format)
	}
}

// writeAtomic creates path's parent directory, lets write fill a temporary
// file next to path and renames it into place once write succeeds.
func writeAtomic(path string, write func(tmpPath string) error) error {
	if path == "" {
		return errors.New(errors.ErrCodeMissingOutputPath, "output path is required")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(errors.ErrCodeMarketDataWriteFailed, err, "failed to create directory %s", dir)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to create temporary file", err)
	}

	tmpPath := tmp.Name()
	// the writer reopens the path itself
	_ = tmp.Close()

	if err := write(tmpPath); err != nil {
		_ = os.Remove(tmpPath)

		return err
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)

		return errors.Wrapf(errors.ErrCodeMarketDataWriteFailed, err, "failed to move output into %s", path)
	}

	return nil
}

func logWritten(log *logger.Logger, tbl *table.Table, path string) {
	if log == nil {
		return
	}

	log.Info("Wrote table",
		zap.String("path", path),
		zap.Int("rows", tbl.Len()),
		zap.Int("columns", len(tbl.Columns())),
	)
}
