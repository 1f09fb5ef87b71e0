package provider

import (
	"context"
	"math"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/polygon-io/client-go/rest/models"
	"github.com/tufyaa/yahoo-talib/internal/types"
	"github.com/tufyaa/yahoo-talib/pkg/errors"
)

// csvRow mirrors the price columns of a persisted table. Extra columns, such
// as indicator outputs, are ignored. Values stay strings so empty cells can
// become NaN.
type csvRow struct {
	Ticker   string `csv:"ticker"`
	Date     string `csv:"Date"`
	Open     string `csv:"Open"`
	High     string `csv:"High"`
	Low      string `csv:"Low"`
	Close    string `csv:"Close"`
	AdjClose string `csv:"Adj Close"`
	Volume   string `csv:"Volume"`
}

// CSVClient serves bars from a CSV file previously written by the pipeline.
// The file is read once, on the first Fetch. Its sampling is used as is, so
// the requested interval is ignored.
type CSVClient struct {
	path string

	once sync.Once
	bars map[string][]types.MarketData
	err  error
}

func NewCSVClient(path string) (Provider, error) {
	if path == "" {
		return nil, errors.New(errors.ErrCodeMissingParameter, "source file is required for the csv provider")
	}

	return &CSVClient{path: path}, nil
}

func (c *CSVClient) Fetch(ctx context.Context, ticker string, startDate time.Time, endDate time.Time, _ int, _ models.Timespan) ([]types.MarketData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.once.Do(func() {
		c.bars, c.err = loadCSV(c.path)
	})

	if c.err != nil {
		return nil, c.err
	}

	var bars []types.MarketData

	for _, bar := range c.bars[ticker] {
		if bar.Time.Before(startDate) || !bar.Time.Before(endDate) {
			continue
		}

		bars = append(bars, bar)
	}

	return bars, nil
}

func loadCSV(path string) (map[string][]types.MarketData, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataNotFound, err, "failed to open %s", path)
	}
	defer file.Close()

	var rows []csvRow
	if err := gocsv.UnmarshalFile(file, &rows); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err, "failed to parse %s", path)
	}

	bars := make(map[string][]types.MarketData)

	for i, row := range rows {
		bar, err := row.toMarketData()
		if err != nil {
			// header is line 1
			return nil, errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err, "%s line %d", path, i+2)
		}

		bars[bar.Symbol] = append(bars[bar.Symbol], bar)
	}

	return bars, nil
}

func (r csvRow) toMarketData() (types.MarketData, error) {
	date, err := parseDate(r.Date)
	if err != nil {
		return types.MarketData{}, err
	}

	bar := types.MarketData{
		Symbol: r.Ticker,
		Time:   date,
	}

	fields := []struct {
		raw    string
		target *float64
	}{
		{r.Open, &bar.Open},
		{r.High, &bar.High},
		{r.Low, &bar.Low},
		{r.Close, &bar.Close},
		{r.AdjClose, &bar.AdjClose},
		{r.Volume, &bar.Volume},
	}

	for _, field := range fields {
		if *field.target, err = parseValue(field.raw); err != nil {
			return types.MarketData{}, err
		}
	}

	return bar, nil
}

// parseDate accepts the date-only and RFC3339 layouts the CSV writer produces.
func parseDate(value string) (time.Time, error) {
	if date, err := time.Parse(time.DateOnly, value); err == nil {
		return date, nil
	}

	date, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, errors.Newf(errors.ErrCodeMarketDataParseFailed, "invalid date %q", value)
	}

	return date.UTC(), nil
}

func parseValue(value string) (float64, error) {
	if value == "" {
		return math.NaN(), nil
	}

	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, errors.Newf(errors.ErrCodeMarketDataParseFailed, "invalid number %q", value)
	}

	return parsed, nil
}
