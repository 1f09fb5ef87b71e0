package indicator

import (
	"fmt"

	"github.com/tufyaa/yahoo-talib/internal/logger"
	"github.com/tufyaa/yahoo-talib/internal/table"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Engine applies indicator tokens to a multi-instrument Bar Table, one
// instrument at a time.
type Engine struct {
	registry IndicatorRegistry
	logger   *logger.Logger
	workers  int
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithRegistry replaces the default registry.
func WithRegistry(registry IndicatorRegistry) EngineOption {
	return func(e *Engine) {
		e.registry = registry
	}
}

// WithWorkers sets how many instruments are computed concurrently.
// Values below 1 mean 1.
func WithWorkers(workers int) EngineOption {
	return func(e *Engine) {
		e.workers = max(workers, 1)
	}
}

// NewEngine creates an engine backed by the default registry.
func NewEngine(log *logger.Logger, opts ...EngineOption) *Engine {
	e := &Engine{
		registry: DefaultRegistry(),
		logger:   log,
		workers:  1,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// outputColumn is a pre-sized result column filled at original row positions.
type outputColumn struct {
	name   string
	values []float64
}

// ComputeIndicators returns tbl with one set of columns appended per token.
//
// An empty table is returned as is without looking at the tokens, and an empty
// token list is a no-op. Otherwise every token is resolved before any work is
// done, and any failure aborts the whole call with no columns added. Rows keep
// their input order. Repeating a token overwrites its columns.
func (e *Engine) ComputeIndicators(tbl *table.Table, tokens []string) (*table.Table, error) {
	if tbl.Len() == 0 || len(tokens) == 0 {
		return tbl, nil
	}

	requests := make([]Request, 0, len(tokens))
	for _, token := range tokens {
		request, err := e.registry.Resolve(token)
		if err != nil {
			return nil, err
		}

		requests = append(requests, request)
	}

	columns := []outputColumn{}
	index := make(map[string]int)

	for _, request := range requests {
		for _, name := range request.Columns() {
			if _, exists := index[name]; exists {
				continue
			}

			index[name] = len(columns)
			columns = append(columns, outputColumn{name: name, values: table.NaNs(tbl.Len())})
		}
	}

	partitions := tbl.Partition()
	errs := make([]error, len(partitions))

	g := new(errgroup.Group)
	g.SetLimit(e.workers)

	for i, partition := range partitions {
		g.Go(func() error {
			errs[i] = e.computePartition(tbl, partition, requests, columns, index)

			return errs[i]
		})
	}

	if err := g.Wait(); err != nil {
		// report the first failing instrument in table order
		for _, partitionErr := range errs {
			if partitionErr != nil {
				return nil, partitionErr
			}
		}
	}

	enriched := tbl.Clone()
	for _, column := range columns {
		if err := enriched.SetColumn(column.name, column.values); err != nil {
			return nil, err
		}
	}

	e.logger.Debug("Computed indicators",
		zap.Int("rows", tbl.Len()),
		zap.Int("instruments", len(partitions)),
		zap.Strings("tokens", tokens),
	)

	return enriched, nil
}

// computePartition writes only to the partition's own rows of each column.
func (e *Engine) computePartition(
	tbl *table.Table,
	partition table.Partition,
	requests []Request,
	columns []outputColumn,
	index map[string]int,
) error {
	series := tbl.Take(partition.Rows)

	for _, request := range requests {
		outputs, err := Apply(request, series)
		if err != nil {
			return fmt.Errorf("failed to compute %s for %s: %w", request.Token, partition.Ticker, err)
		}

		for _, output := range outputs {
			dst := columns[index[output.Name]].values
			for j, row := range partition.Rows {
				dst[row] = output.Values[j]
			}
		}
	}

	return nil
}
