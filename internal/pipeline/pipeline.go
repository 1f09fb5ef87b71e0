// Package pipeline runs the end-to-end flow: retrieve bars, persist them,
// append indicator columns and persist the enriched table.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/tufyaa/yahoo-talib/internal/logger"
	"github.com/tufyaa/yahoo-talib/internal/table"
	"github.com/tufyaa/yahoo-talib/pkg/errors"
	"github.com/tufyaa/yahoo-talib/pkg/marketdata"
	"github.com/tufyaa/yahoo-talib/pkg/marketdata/writer"
	"go.uber.org/zap"
)

const (
	// RawFileName is the base name of the table as retrieved.
	RawFileName = "prices"
	// EnrichedFileName is the base name of the table with indicator columns.
	EnrichedFileName = "prices_with_indicators"
)

// Fetcher retrieves a Bar Table. *marketdata.Client implements it.
type Fetcher interface {
	Fetch(ctx context.Context, params marketdata.FetchParams) (*table.Table, error)
}

// IndicatorComputer appends indicator columns. *indicator.Engine implements it.
type IndicatorComputer interface {
	ComputeIndicators(tbl *table.Table, tokens []string) (*table.Table, error)
}

// Params describes one run.
type Params struct {
	Tickers    []string `validate:"min=1"`
	Start      optional.Option[time.Time]
	End        optional.Option[time.Time]
	Interval   string
	Indicators []string
	OutputDir  string `validate:"required"`
}

// Result describes what a run produced.
type Result struct {
	RunID        string
	RawPath      string
	EnrichedPath string
	Rows         int
	Tickers      int
	Columns      []string
	// Table is the enriched table, kept for summaries.
	Table *table.Table
}

// Pipeline wires the retrieval, indicator and persistence collaborators.
type Pipeline struct {
	fetcher  Fetcher
	engine   IndicatorComputer
	writer   writer.TableWriter
	logger   *logger.Logger
	validate *validator.Validate
}

func New(fetcher Fetcher, engine IndicatorComputer, tableWriter writer.TableWriter, log *logger.Logger) *Pipeline {
	return &Pipeline{
		fetcher:  fetcher,
		engine:   engine,
		writer:   tableWriter,
		logger:   log,
		validate: validator.New(),
	}
}

// Run fetches, writes the raw table, computes the indicators and writes the
// enriched table. The raw file is kept when a later step fails.
func (p *Pipeline) Run(ctx context.Context, params Params) (Result, error) {
	if err := p.validate.Struct(params); err != nil {
		return Result{}, errors.Wrap(errors.ErrCodeInvalidParameter, "invalid pipeline parameters", err)
	}

	runID := uuid.New().String()
	log := p.logger.With(zap.String("run_id", runID))

	log.Info("Starting pipeline run",
		zap.Strings("tickers", params.Tickers),
		zap.Strings("indicators", params.Indicators),
		zap.String("output_dir", params.OutputDir),
	)

	if err := os.MkdirAll(params.OutputDir, 0755); err != nil {
		return Result{}, errors.Wrapf(errors.ErrCodeMarketDataWriteFailed, err, "failed to create output directory %s", params.OutputDir)
	}

	raw, err := p.fetcher.Fetch(ctx, marketdata.FetchParams{
		Tickers:  params.Tickers,
		Start:    params.Start,
		End:      params.End,
		Interval: params.Interval,
	})
	if err != nil {
		return Result{}, fmt.Errorf("failed to fetch market data: %w", err)
	}

	rawPath := p.outputPath(params.OutputDir, RawFileName)
	if err := p.writer.Write(raw, rawPath); err != nil {
		return Result{}, fmt.Errorf("failed to write %s: %w", rawPath, err)
	}

	enriched := raw
	if len(params.Indicators) > 0 {
		enriched, err = p.engine.ComputeIndicators(raw, params.Indicators)
		if err != nil {
			return Result{RunID: runID, RawPath: rawPath}, fmt.Errorf("failed to compute indicators: %w", err)
		}
	}

	enrichedPath := p.outputPath(params.OutputDir, EnrichedFileName)
	if err := p.writer.Write(enriched, enrichedPath); err != nil {
		return Result{RunID: runID, RawPath: rawPath}, fmt.Errorf("failed to write %s: %w", enrichedPath, err)
	}

	result := Result{
		RunID:        runID,
		RawPath:      rawPath,
		EnrichedPath: enrichedPath,
		Rows:         enriched.Len(),
		Tickers:      len(enriched.Partition()),
		Columns:      enriched.Columns(),
		Table:        enriched,
	}

	log.Info("Pipeline run finished",
		zap.String("raw_path", rawPath),
		zap.String("enriched_path", enrichedPath),
		zap.Int("rows", result.Rows),
		zap.Int("tickers", result.Tickers),
		zap.Int("columns", len(result.Columns)),
	)

	return result, nil
}

func (p *Pipeline) outputPath(dir string, name string) string {
	return filepath.Join(dir, name+"."+p.writer.Extension())
}
