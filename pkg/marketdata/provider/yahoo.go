package provider

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/polygon-io/client-go/rest/models"
	"github.com/tufyaa/yahoo-talib/internal/types"
	"github.com/tufyaa/yahoo-talib/pkg/errors"
)

// DefaultYahooBaseURL is the Yahoo Finance chart API host.
const DefaultYahooBaseURL = "https://query1.finance.yahoo.com"

const (
	yahooChartPath = "/v8/finance/chart/{ticker}"
	yahooTimeout   = 30 * time.Second
	// Yahoo rejects requests without a browser-like user agent.
	yahooUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
)

type yahooChartResponse struct {
	Chart struct {
		Result []yahooChartResult `json:"result"`
		Error  *yahooChartError   `json:"error"`
	} `json:"chart"`
}

type yahooChartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type yahooChartResult struct {
	Meta struct {
		Symbol    string `json:"symbol"`
		GMTOffset int64  `json:"gmtoffset"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Open   []*float64 `json:"open"`
			High   []*float64 `json:"high"`
			Low    []*float64 `json:"low"`
			Close  []*float64 `json:"close"`
			Volume []*float64 `json:"volume"`
		} `json:"quote"`
		AdjClose []struct {
			AdjClose []*float64 `json:"adjclose"`
		} `json:"adjclose"`
	} `json:"indicators"`
}

// YahooClient fetches bars from the Yahoo Finance chart API.
type YahooClient struct {
	client *resty.Client
}

// NewYahooClient creates a YahooClient. An empty baseURL selects DefaultYahooBaseURL.
func NewYahooClient(baseURL string) *YahooClient {
	if baseURL == "" {
		baseURL = DefaultYahooBaseURL
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(yahooTimeout).
		SetHeader("User-Agent", yahooUserAgent).
		SetHeader("Accept", "application/json")

	return &YahooClient{
		client: client,
	}
}

// Fetch requests the chart for ticker. Daily and longer bars are keyed by the
// exchange-local trading date at midnight UTC; intraday bars keep their instant.
func (c *YahooClient) Fetch(ctx context.Context, ticker string, startDate time.Time, endDate time.Time, multiplier int, timespan models.Timespan) ([]types.MarketData, error) {
	interval, err := convertTimespanToYahooInterval(timespan, multiplier)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidTimespan, "failed to convert timespan to Yahoo interval", err)
	}

	var chart yahooChartResponse

	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("ticker", ticker).
		SetQueryParams(map[string]string{
			"period1":              strconv.FormatInt(startDate.Unix(), 10),
			"period2":              strconv.FormatInt(endDate.Unix(), 10),
			"interval":             interval,
			"includeAdjustedClose": "true",
			"events":               "div,splits",
		}).
		SetResult(&chart).
		SetError(&chart).
		Get(yahooChartPath)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "failed to request Yahoo chart for %s", ticker)
	}

	// unknown or delisted symbols
	if resp.StatusCode() == http.StatusNotFound {
		return nil, nil
	}

	if resp.IsError() {
		return nil, errors.Newf(errors.ErrCodeMarketDataFetchFailed, "Yahoo chart request for %s failed with status %d: %s", ticker, resp.StatusCode(), chartErrorMessage(chart))
	}

	if chart.Chart.Error != nil {
		return nil, errors.Newf(errors.ErrCodeMarketDataFetchFailed, "Yahoo chart error for %s: %s", ticker, chartErrorMessage(chart))
	}

	if len(chart.Chart.Result) == 0 {
		return nil, nil
	}

	return convertYahooChart(ticker, chart.Chart.Result[0], isDateBased(timespan))
}

func convertYahooChart(ticker string, result yahooChartResult, dateBased bool) ([]types.MarketData, error) {
	if len(result.Timestamp) == 0 {
		return nil, nil
	}

	if len(result.Indicators.Quote) == 0 {
		return nil, errors.Newf(errors.ErrCodeMarketDataParseFailed, "Yahoo chart for %s has timestamps but no quotes", ticker)
	}

	quote := result.Indicators.Quote[0]

	var adjClose []*float64
	if len(result.Indicators.AdjClose) > 0 {
		adjClose = result.Indicators.AdjClose[0].AdjClose
	}

	bars := make([]types.MarketData, len(result.Timestamp))

	for i, timestamp := range result.Timestamp {
		bars[i] = types.MarketData{
			Symbol:   ticker,
			Time:     yahooBarTime(timestamp, result.Meta.GMTOffset, dateBased),
			Open:     valueAt(quote.Open, i),
			High:     valueAt(quote.High, i),
			Low:      valueAt(quote.Low, i),
			Close:    valueAt(quote.Close, i),
			AdjClose: valueAt(adjClose, i),
			Volume:   valueAt(quote.Volume, i),
		}
	}

	return bars, nil
}

func yahooBarTime(timestamp int64, gmtOffset int64, dateBased bool) time.Time {
	if !dateBased {
		return time.Unix(timestamp, 0).UTC()
	}

	local := time.Unix(timestamp+gmtOffset, 0).UTC()

	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// valueAt returns NaN for null or missing entries.
func valueAt(values []*float64, i int) float64 {
	if i >= len(values) || values[i] == nil {
		return math.NaN()
	}

	return *values[i]
}

func chartErrorMessage(chart yahooChartResponse) string {
	if chart.Chart.Error == nil {
		return "unknown error"
	}

	return fmt.Sprintf("%s (%s)", chart.Chart.Error.Description, chart.Chart.Error.Code)
}

func isDateBased(timespan models.Timespan) bool {
	switch timespan {
	case models.Day, models.Week, models.Month:
		return true
	default:
		return false
	}
}

// convertTimespanToYahooInterval converts the polygon timespan and multiplier to a Yahoo interval string.
// Yahoo intervals: 1m, 2m, 5m, 15m, 30m, 60m, 90m, 1h, 1d, 5d, 1wk, 1mo, 3mo
func convertTimespanToYahooInterval(timespan models.Timespan, multiplier int) (string, error) {
	switch {
	case timespan == models.Minute && (multiplier == 1 || multiplier == 2 || multiplier == 5 || multiplier == 15 || multiplier == 30 || multiplier == 90):
		return fmt.Sprintf("%dm", multiplier), nil
	case timespan == models.Hour && multiplier == 1:
		return "1h", nil
	case timespan == models.Day && (multiplier == 1 || multiplier == 5):
		return fmt.Sprintf("%dd", multiplier), nil
	case timespan == models.Week && multiplier == 1:
		return "1wk", nil
	case timespan == models.Month && (multiplier == 1 || multiplier == 3):
		return fmt.Sprintf("%dmo", multiplier), nil
	default:
		return "", fmt.Errorf("unsupported interval for Yahoo: %d %s", multiplier, timespan)
	}
}
