// Package marketdata retrieves historical bars for a set of tickers into one
// Bar Table.
package marketdata

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"
	"github.com/schollz/progressbar/v3"
	"github.com/tufyaa/yahoo-talib/internal/logger"
	"github.com/tufyaa/yahoo-talib/internal/table"
	"github.com/tufyaa/yahoo-talib/internal/types"
	"github.com/tufyaa/yahoo-talib/pkg/errors"
	"github.com/tufyaa/yahoo-talib/pkg/marketdata/provider"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// DefaultLookback is the window fetched when no start date is given.
const DefaultLookback = 30 * 24 * time.Hour

// ClientConfig holds the configuration for the market data client.
type ClientConfig struct {
	ProviderType  provider.ProviderType `validate:"required,oneof=yahoo polygon binance csv"`
	PolygonApiKey string                `validate:"required_if=ProviderType polygon"`
	Source        string                `validate:"required_if=ProviderType csv"`
	BaseURL       string                `validate:"omitempty,url"`
	// MaxRetries is the number of retries per ticker after the first attempt.
	MaxRetries int `validate:"gte=0"`
	// RequestsPerSecond paces provider calls across all tickers. Zero disables pacing.
	RequestsPerSecond float64 `validate:"gte=0"`
	// Concurrency is the number of tickers fetched at once. Zero means one.
	Concurrency int `validate:"gte=0"`
}

// FetchParams holds the parameters for a fetch request.
type FetchParams struct {
	Tickers []string
	// Start defaults to DefaultLookback before End.
	Start optional.Option[time.Time]
	// End is exclusive and defaults to now.
	End optional.Option[time.Time]
	// Interval defaults to DefaultTimespan.
	Interval string
}

// Client is the market data client responsible for fetching bars from a
// provider and assembling them into a table.
type Client struct {
	provider   provider.Provider
	config     ClientConfig
	logger     *logger.Logger
	limiter    *rate.Limiter
	progress   io.Writer
	newBackOff func() backoff.BackOff
	now        func() time.Time
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithProgressWriter renders a per-ticker progress bar to w.
func WithProgressWriter(w io.Writer) ClientOption {
	return func(c *Client) {
		c.progress = w
	}
}

// WithBackOff replaces the exponential backoff used between retries.
func WithBackOff(newBackOff func() backoff.BackOff) ClientOption {
	return func(c *Client) {
		c.newBackOff = newBackOff
	}
}

// WithClock replaces the clock used to default the end date.
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) {
		c.now = now
	}
}

// NewClient creates a new market data client with the given configuration.
func NewClient(config ClientConfig, log *logger.Logger, opts ...ClientOption) (*Client, error) {
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid client configuration", err)
	}

	marketProvider, err := provider.NewMarketDataProvider(config.ProviderType, provider.Options{
		PolygonAPIKey: config.PolygonApiKey,
		Source:        config.Source,
		BaseURL:       config.BaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s provider: %w", config.ProviderType, err)
	}

	return NewClientWithProvider(marketProvider, config, log, opts...), nil
}

// NewClientWithProvider creates a client on top of an existing provider.
func NewClientWithProvider(marketProvider provider.Provider, config ClientConfig, log *logger.Logger, opts ...ClientOption) *Client {
	limit := rate.Inf
	if config.RequestsPerSecond > 0 {
		limit = rate.Limit(config.RequestsPerSecond)
	}

	client := &Client{
		provider: marketProvider,
		config:   config,
		logger:   log,
		limiter:  rate.NewLimiter(limit, 1),
		newBackOff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff()
		},
		now: time.Now,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Fetch retrieves bars for every ticker and returns them as one table, tickers
// in requested order and each ticker's rows in ascending time. Blank and
// repeated tickers are dropped. Tickers without data contribute no rows, and
// when no ticker has data the result is an empty table.
func (c *Client) Fetch(ctx context.Context, params FetchParams) (*table.Table, error) {
	tickers := NormalizeTickers(params.Tickers)
	if len(tickers) == 0 {
		return table.New(), nil
	}

	timespan, err := ParseTimespan(params.Interval)
	if err != nil {
		return nil, err
	}

	start, end, err := c.resolveRange(params.Start, params.End)
	if err != nil {
		return nil, err
	}

	c.logger.Info("Fetching market data",
		zap.String("provider", string(c.config.ProviderType)),
		zap.Strings("tickers", tickers),
		zap.Time("start", start),
		zap.Time("end", end),
		zap.String("interval", string(timespan)),
	)

	bar := c.newProgressBar(len(tickers))
	results := make([][]types.MarketData, len(tickers))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(max(c.config.Concurrency, 1))

	for i, ticker := range tickers {
		group.Go(func() error {
			bars, err := c.fetchTicker(groupCtx, ticker, start, end, timespan)
			if err != nil {
				return fetchError(ticker, err)
			}

			results[i] = PrepareBars(ticker, bars, start, end)
			_ = bar.Add(1)

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	_ = bar.Finish()

	var all []types.MarketData

	for i, ticker := range tickers {
		if len(results[i]) == 0 {
			c.logger.Warn("No data returned for ticker", zap.String("ticker", ticker))

			continue
		}

		c.logger.Debug("Fetched ticker", zap.String("ticker", ticker), zap.Int("rows", len(results[i])))
		all = append(all, results[i]...)
	}

	return table.FromMarketData(all), nil
}

// fetchTicker calls the provider with rate limiting and retries.
func (c *Client) fetchTicker(ctx context.Context, ticker string, start, end time.Time, timespan Timespan) ([]types.MarketData, error) {
	policy := backoff.WithContext(backoff.WithMaxRetries(c.newBackOff(), uint64(c.config.MaxRetries)), ctx)

	operation := func() ([]types.MarketData, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, backoff.Permanent(err)
		}

		bars, err := c.provider.Fetch(ctx, ticker, start, end, timespan.Multiplier(), timespan.Timespan())
		if err != nil && !isRetryable(err) {
			return nil, backoff.Permanent(err)
		}

		return bars, err
	}

	notify := func(err error, wait time.Duration) {
		c.logger.Warn("Retrying fetch",
			zap.String("ticker", ticker),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	}

	return backoff.RetryNotifyWithData(operation, policy, notify)
}

func (c *Client) resolveRange(startOption, endOption optional.Option[time.Time]) (time.Time, time.Time, error) {
	end := c.now().UTC()
	if endOption.IsSome() {
		end = endOption.Unwrap()
	}

	start := end.Add(-DefaultLookback)
	if startOption.IsSome() {
		start = startOption.Unwrap()
	}

	if start.After(end) {
		return time.Time{}, time.Time{}, errors.Newf(errors.ErrCodeInvalidDateRange,
			"start date %s is after end date %s", start.Format(time.DateOnly), end.Format(time.DateOnly))
	}

	return start, end, nil
}

func (c *Client) newProgressBar(total int) *progressbar.ProgressBar {
	if c.progress == nil {
		return progressbar.DefaultSilent(int64(total))
	}

	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(c.progress),
		progressbar.OptionSetDescription(fmt.Sprintf("Fetching %d tickers", total)),
		progressbar.OptionShowCount(),
	)
}

// NormalizeTickers trims tickers and drops blanks and repeats, keeping the
// first occurrence order.
func NormalizeTickers(tickers []string) []string {
	normalized := make([]string, 0, len(tickers))

	for _, ticker := range tickers {
		ticker = strings.TrimSpace(ticker)
		if ticker == "" || slices.Contains(normalized, ticker) {
			continue
		}

		normalized = append(normalized, ticker)
	}

	return normalized
}

// PrepareBars keeps the bars inside [start, end), tags them with ticker and
// sorts them by time. Of several bars sharing a timestamp the first is kept.
func PrepareBars(ticker string, bars []types.MarketData, start, end time.Time) []types.MarketData {
	prepared := make([]types.MarketData, 0, len(bars))

	for _, bar := range bars {
		if bar.Time.Before(start) || !bar.Time.Before(end) {
			continue
		}

		bar.Symbol = ticker
		prepared = append(prepared, bar)
	}

	slices.SortStableFunc(prepared, func(a, b types.MarketData) int {
		return a.Time.Compare(b.Time)
	})

	return slices.CompactFunc(prepared, func(a, b types.MarketData) bool {
		return a.Time.Equal(b.Time)
	})
}

// isRetryable reports whether a provider error may succeed on another attempt.
func isRetryable(err error) bool {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidTimespan,
		errors.ErrCodeMarketDataParseFailed,
		errors.ErrCodeMissingParameter,
		errors.ErrCodeDataNotFound,
		errors.ErrCodeInvalidProvider:
		return false
	default:
		return true
	}
}

// fetchError adds the ticker to err, keeping any code the provider set.
func fetchError(ticker string, err error) error {
	if errors.GetCode(err) == errors.ErrCodeUnknown {
		return errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "failed to fetch %s", ticker)
	}

	return fmt.Errorf("failed to fetch %s: %w", ticker, err)
}
