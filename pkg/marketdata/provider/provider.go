package provider

import (
	"context"
	"time"

	"github.com/polygon-io/client-go/rest/models"
	"github.com/tufyaa/yahoo-talib/internal/types"
	"github.com/tufyaa/yahoo-talib/pkg/errors"
)

// ProviderType defines the type of market data provider.
type ProviderType string

const (
	ProviderYahoo   ProviderType = "yahoo"
	ProviderPolygon ProviderType = "polygon"
	ProviderBinance ProviderType = "binance"
	ProviderCSV     ProviderType = "csv"
)

// Provider retrieves historical bars for one ticker.
type Provider interface {
	// Fetch returns the bars for ticker between startDate and endDate at the given
	// sampling interval. Bars carry the ticker as Symbol. A ticker the provider
	// knows nothing about yields no bars and no error.
	// example:
	// Fetch(ctx, "AAPL", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), 1, models.Day)
	Fetch(ctx context.Context, ticker string, startDate time.Time, endDate time.Time, multiplier int, timespan models.Timespan) ([]types.MarketData, error)
}

// Options carries the provider specific settings.
type Options struct {
	// PolygonAPIKey is required by the polygon provider.
	PolygonAPIKey string
	// Source is the file read by the csv provider.
	Source string
	// BaseURL overrides the Yahoo chart API host.
	BaseURL string
}

// NewMarketDataProvider creates a new market data provider based on the provider type.
func NewMarketDataProvider(providerType ProviderType, options Options) (Provider, error) {
	switch providerType {
	case ProviderYahoo:
		return NewYahooClient(options.BaseURL), nil
	case ProviderBinance:
		return NewBinanceClient()
	case ProviderPolygon:
		return NewPolygonClient(options.PolygonAPIKey)
	case ProviderCSV:
		return NewCSVClient(options.Source)
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported market data provider: %s", providerType)
	}
}
