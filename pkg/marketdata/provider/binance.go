package provider

import (
	"context"
	"fmt"
	"strconv"
	"time"

	binance "github.com/adshao/go-binance/v2"
	"github.com/polygon-io/client-go/rest/models"
	"github.com/tufyaa/yahoo-talib/internal/types"
	"github.com/tufyaa/yahoo-talib/pkg/errors"
)

// binancePageLimit is the maximum number of klines Binance returns per request.
const binancePageLimit = 1000

// BinanceKlinesService is the subset of the klines service used here.
type BinanceKlinesService interface {
	Symbol(symbol string) BinanceKlinesService
	Interval(interval string) BinanceKlinesService
	Limit(limit int) BinanceKlinesService
	StartTime(startTime int64) BinanceKlinesService
	EndTime(endTime int64) BinanceKlinesService
	Do(ctx context.Context) ([]*binance.Kline, error)
}

// BinanceAPIClient abstracts the Binance client so tests can replace it.
type BinanceAPIClient interface {
	NewKlinesService() BinanceKlinesService
}

type binanceAPIAdapter struct {
	client *binance.Client
}

func (a *binanceAPIAdapter) NewKlinesService() BinanceKlinesService {
	return &binanceKlinesAdapter{service: a.client.NewKlinesService()}
}

type binanceKlinesAdapter struct {
	service *binance.KlinesService
}

func (a *binanceKlinesAdapter) Symbol(symbol string) BinanceKlinesService {
	a.service = a.service.Symbol(symbol)

	return a
}

func (a *binanceKlinesAdapter) Interval(interval string) BinanceKlinesService {
	a.service = a.service.Interval(interval)

	return a
}

func (a *binanceKlinesAdapter) Limit(limit int) BinanceKlinesService {
	a.service = a.service.Limit(limit)

	return a
}

func (a *binanceKlinesAdapter) StartTime(startTime int64) BinanceKlinesService {
	a.service = a.service.StartTime(startTime)

	return a
}

func (a *binanceKlinesAdapter) EndTime(endTime int64) BinanceKlinesService {
	a.service = a.service.EndTime(endTime)

	return a
}

func (a *binanceKlinesAdapter) Do(ctx context.Context) ([]*binance.Kline, error) {
	return a.service.Do(ctx)
}

// BinanceClient fetches spot klines from Binance. Crypto prices have no
// corporate actions, so Adj Close equals Close.
type BinanceClient struct {
	apiClient BinanceAPIClient
}

func NewBinanceClient() (Provider, error) {
	return NewBinanceClientWithAPI(&binanceAPIAdapter{client: binance.NewClient("", "")}), nil
}

// NewBinanceClientWithAPI creates a BinanceClient on top of the given API client.
func NewBinanceClientWithAPI(apiClient BinanceAPIClient) *BinanceClient {
	return &BinanceClient{
		apiClient: apiClient,
	}
}

// Fetch pages through the klines between startDate and endDate. The end is exclusive.
func (c *BinanceClient) Fetch(ctx context.Context, ticker string, startDate time.Time, endDate time.Time, multiplier int, timespan models.Timespan) ([]types.MarketData, error) {
	interval, err := convertTimespanToBinanceInterval(timespan, multiplier)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidTimespan, "failed to convert timespan to Binance interval", err)
	}

	// Binance API uses milliseconds for timestamps, both bounds inclusive
	currentStartTime := startDate.UnixMilli()
	endTimeMillis := endDate.UnixMilli() - 1

	var bars []types.MarketData

	for currentStartTime <= endTimeMillis {
		klines, err := c.apiClient.NewKlinesService().
			Symbol(ticker).
			Interval(interval).
			Limit(binancePageLimit).
			StartTime(currentStartTime).
			EndTime(endTimeMillis).
			Do(ctx)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "failed to fetch klines from Binance for %s", ticker)
		}

		page, err := processKlines(ticker, klines)
		if err != nil {
			return nil, err
		}

		bars = append(bars, page...)

		// a short page is the last one
		if len(klines) < binancePageLimit {
			break
		}

		// Use the close time of the last kline + 1ms to avoid duplicates
		currentStartTime = klines[len(klines)-1].CloseTime + 1
	}

	return bars, nil
}

// processKlines converts Binance kline data to bars.
func processKlines(ticker string, klines []*binance.Kline) ([]types.MarketData, error) {
	bars := make([]types.MarketData, 0, len(klines))

	for _, k := range klines {
		values := make([]float64, 5)

		for i, raw := range []string{k.Open, k.High, k.Low, k.Close, k.Volume} {
			value, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err, "invalid kline value %q for %s", raw, ticker)
			}

			values[i] = value
		}

		bars = append(bars, types.MarketData{
			Symbol:   ticker,
			Time:     time.UnixMilli(k.OpenTime).UTC(), // Using OpenTime as the timestamp for the bar
			Open:     values[0],
			High:     values[1],
			Low:      values[2],
			Close:    values[3],
			AdjClose: values[3],
			Volume:   values[4],
		})
	}

	return bars, nil
}

// convertTimespanToBinanceInterval converts the polygon timespan and multiplier to a Binance interval string.
// Binance intervals: 1m, 3m, 5m, 15m, 30m, 1h, 2h, 4h, 6h, 8h, 12h, 1d, 3d, 1w, 1M
// Ref: https://binance-docs.github.io/apidocs/spot/en/#kline-candlestick-data
func convertTimespanToBinanceInterval(timespan models.Timespan, multiplier int) (string, error) {
	var supported []int

	var unit string

	switch timespan {
	case models.Minute:
		supported, unit = []int{1, 3, 5, 15, 30}, "m"
	case models.Hour:
		supported, unit = []int{1, 2, 4, 6, 8, 12}, "h"
	case models.Day:
		supported, unit = []int{1, 3}, "d"
	case models.Week:
		supported, unit = []int{1}, "w"
	case models.Month:
		supported, unit = []int{1}, "M"
	default:
		return "", fmt.Errorf("unsupported timespan for Binance: %s", timespan)
	}

	for _, m := range supported {
		if m == multiplier {
			return fmt.Sprintf("%d%s", multiplier, unit), nil
		}
	}

	return "", fmt.Errorf("unsupported %s multiplier for Binance: %d", timespan, multiplier)
}
