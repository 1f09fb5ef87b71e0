package provider

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/polygon-io/client-go/rest/models"
	"github.com/stretchr/testify/suite"
	"github.com/tufyaa/yahoo-talib/pkg/errors"
)

const pricesCSV = `ticker,Date,Open,High,Low,Close,Adj Close,Volume,SMA_2
AAPL,2024-01-02,187.15,188.44,183.89,185.64,184.73,82488700,
AAPL,2024-01-03,184.22,185.88,183.43,184.25,183.35,58414500,184.945
AAPL,2024-01-04,182.15,183.09,180.88,181.91,,71983600,183.08
MSFT,2024-01-02,373.86,375.9,366.77,370.87,368.4,25258600,
`

type CSVClientTestSuite struct {
	suite.Suite
	dir string
}

func TestCSVClientSuite(t *testing.T) {
	suite.Run(t, new(CSVClientTestSuite))
}

func (suite *CSVClientTestSuite) SetupTest() {
	suite.dir = suite.T().TempDir()
}

func (suite *CSVClientTestSuite) writeFile(content string) string {
	path := filepath.Join(suite.dir, "prices.csv")
	suite.Require().NoError(os.WriteFile(path, []byte(content), 0644))

	return path
}

func (suite *CSVClientTestSuite) fetch(client Provider, ticker string, start, end time.Time) ([]time.Time, error) {
	bars, err := client.Fetch(context.Background(), ticker, start, end, 1, models.Day)

	dates := make([]time.Time, len(bars))
	for i, bar := range bars {
		dates[i] = bar.Time
	}

	return dates, err
}

func (suite *CSVClientTestSuite) TestNewCSVClientRequiresSource() {
	client, err := NewCSVClient("")
	suite.Error(err)
	suite.Nil(client)
	suite.Equal(errors.ErrCodeMissingParameter, errors.GetCode(err))
}

func (suite *CSVClientTestSuite) TestFetchTicker() {
	client, err := NewCSVClient(suite.writeFile(pricesCSV))
	suite.Require().NoError(err)

	bars, err := client.Fetch(context.Background(), "AAPL",
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		1, models.Day)
	suite.Require().NoError(err)
	suite.Require().Len(bars, 3)

	suite.Equal("AAPL", bars[0].Symbol)
	suite.Equal(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), bars[0].Time)
	suite.Equal(187.15, bars[0].Open)
	suite.Equal(184.73, bars[0].AdjClose)
	suite.Equal(82488700.0, bars[0].Volume)
	suite.True(math.IsNaN(bars[2].AdjClose))
}

func (suite *CSVClientTestSuite) TestFetchFiltersDateRange() {
	client, err := NewCSVClient(suite.writeFile(pricesCSV))
	suite.Require().NoError(err)

	// the end bound is exclusive
	dates, err := suite.fetch(client, "AAPL",
		time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC))
	suite.Require().NoError(err)
	suite.Equal([]time.Time{time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)}, dates)
}

func (suite *CSVClientTestSuite) TestFetchUnknownTicker() {
	client, err := NewCSVClient(suite.writeFile(pricesCSV))
	suite.Require().NoError(err)

	dates, err := suite.fetch(client, "GOOG", time.Time{}, time.Now())
	suite.NoError(err)
	suite.Empty(dates)
}

func (suite *CSVClientTestSuite) TestFileIsReadOnce() {
	path := suite.writeFile(pricesCSV)
	client, err := NewCSVClient(path)
	suite.Require().NoError(err)

	_, err = suite.fetch(client, "AAPL", time.Time{}, time.Now())
	suite.Require().NoError(err)

	suite.Require().NoError(os.Remove(path))

	dates, err := suite.fetch(client, "MSFT", time.Time{}, time.Now())
	suite.NoError(err)
	suite.Len(dates, 1)
}

func (suite *CSVClientTestSuite) TestRFC3339Dates() {
	client, err := NewCSVClient(suite.writeFile("ticker,Date,Open,High,Low,Close,Adj Close,Volume\n" +
		"BTCUSDT,2024-01-02T01:00:00Z,1,2,0.5,1.5,1.5,10\n"))
	suite.Require().NoError(err)

	dates, err := suite.fetch(client, "BTCUSDT", time.Time{}, time.Now())
	suite.Require().NoError(err)
	suite.Equal([]time.Time{time.Date(2024, 1, 2, 1, 0, 0, 0, time.UTC)}, dates)
}

func (suite *CSVClientTestSuite) TestFetchErrors() {
	testCases := []struct {
		name    string
		content string
		missing bool
		code    errors.ErrorCode
	}{
		{name: "missing file", missing: true, code: errors.ErrCodeDataNotFound},
		{name: "bad date", content: "ticker,Date,Close\nAAPL,01/02/2024,1\n", code: errors.ErrCodeMarketDataParseFailed},
		{name: "bad number", content: "ticker,Date,Close\nAAPL,2024-01-02,abc\n", code: errors.ErrCodeMarketDataParseFailed},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			path := filepath.Join(suite.dir, "absent.csv")
			if !tc.missing {
				path = suite.writeFile(tc.content)
			}

			client, err := NewCSVClient(path)
			suite.Require().NoError(err)

			_, err = suite.fetch(client, "AAPL", time.Time{}, time.Now())
			suite.Error(err)
			suite.Equal(tc.code, errors.GetCode(err))
		})
	}
}

func (suite *CSVClientTestSuite) TestFetchCancelledContext() {
	client, err := NewCSVClient(suite.writeFile(pricesCSV))
	suite.Require().NoError(err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = client.Fetch(ctx, "AAPL", time.Time{}, time.Now(), 1, models.Day)
	suite.ErrorIs(err, context.Canceled)
}
