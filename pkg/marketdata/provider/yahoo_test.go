package provider

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/polygon-io/client-go/rest/models"
	"github.com/stretchr/testify/suite"
	"github.com/tufyaa/yahoo-talib/internal/types"
	"github.com/tufyaa/yahoo-talib/pkg/errors"
)

const yahooDailyChart = `{
  "chart": {
    "result": [{
      "meta": {"symbol": "AAPL", "gmtoffset": -18000},
      "timestamp": [1704205800, 1704292200, 1704378600],
      "indicators": {
        "quote": [{
          "open": [187.15, 184.22, null],
          "high": [188.44, 185.88, 183.09],
          "low": [183.89, 183.43, 180.88],
          "close": [185.64, 184.25, 181.91],
          "volume": [82488700, 58414500, 71983600]
        }],
        "adjclose": [{"adjclose": [184.73, 183.35, 181.02]}]
      }
    }],
    "error": null
  }
}`

type YahooClientTestSuite struct {
	suite.Suite
	server   *httptest.Server
	requests []*http.Request
	status   int
	body     string
}

func TestYahooClientSuite(t *testing.T) {
	suite.Run(t, new(YahooClientTestSuite))
}

func (suite *YahooClientTestSuite) SetupTest() {
	suite.requests = nil
	suite.status = http.StatusOK
	suite.body = yahooDailyChart

	suite.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		suite.requests = append(suite.requests, r)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(suite.status)
		_, _ = w.Write([]byte(suite.body))
	}))
}

func (suite *YahooClientTestSuite) TearDownTest() {
	suite.server.Close()
}

func (suite *YahooClientTestSuite) fetch(timespan models.Timespan) ([]types.MarketData, error) {
	client := NewYahooClient(suite.server.URL)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)

	return client.Fetch(context.Background(), "AAPL", start, end, 1, timespan)
}

func (suite *YahooClientTestSuite) TestNewYahooClientDefaultBaseURL() {
	client := NewYahooClient("")
	suite.Equal(DefaultYahooBaseURL, client.client.BaseURL)
}

func (suite *YahooClientTestSuite) TestFetchDaily() {
	client := NewYahooClient(suite.server.URL)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)

	bars, err := client.Fetch(context.Background(), "AAPL", start, end, 1, models.Day)
	suite.Require().NoError(err)
	suite.Require().Len(bars, 3)

	// 14:30 UTC market open maps to the exchange date at midnight UTC
	suite.Equal(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), bars[0].Time)
	suite.Equal(time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC), bars[2].Time)
	suite.Equal("AAPL", bars[0].Symbol)
	suite.Equal(187.15, bars[0].Open)
	suite.Equal(185.64, bars[0].Close)
	suite.Equal(184.73, bars[0].AdjClose)
	suite.Equal(82488700.0, bars[0].Volume)
	suite.True(math.IsNaN(bars[2].Open))

	suite.Require().Len(suite.requests, 1)
	request := suite.requests[0]
	suite.Equal("/v8/finance/chart/AAPL", request.URL.Path)
	suite.Equal("1704067200", request.URL.Query().Get("period1"))
	suite.Equal("1704412800", request.URL.Query().Get("period2"))
	suite.Equal("1d", request.URL.Query().Get("interval"))
	suite.Equal("true", request.URL.Query().Get("includeAdjustedClose"))
	suite.NotEmpty(request.Header.Get("User-Agent"))
}

func (suite *YahooClientTestSuite) TestFetchIntradayKeepsInstant() {
	client := NewYahooClient(suite.server.URL)

	bars, err := client.Fetch(context.Background(), "AAPL", time.Unix(0, 0), time.Now(), 1, models.Hour)
	suite.Require().NoError(err)
	suite.Require().Len(bars, 3)
	suite.Equal(time.Date(2024, 1, 2, 14, 30, 0, 0, time.UTC), bars[0].Time)
	suite.Equal("1h", suite.requests[0].URL.Query().Get("interval"))
}

func (suite *YahooClientTestSuite) TestFetchMissingAdjClose() {
	suite.body = `{"chart":{"result":[{"meta":{"gmtoffset":0},"timestamp":[1704153600],"indicators":{"quote":[{"open":[1],"high":[2],"low":[0.5],"close":[1.5],"volume":[null]}]}}],"error":null}}`

	bars, err := suite.fetch(models.Day)
	suite.Require().NoError(err)
	suite.Require().Len(bars, 1)
	suite.Equal(1.5, bars[0].Close)
	suite.True(math.IsNaN(bars[0].AdjClose))
	suite.True(math.IsNaN(bars[0].Volume))
}

func (suite *YahooClientTestSuite) TestFetchNotFoundYieldsNoBars() {
	suite.status = http.StatusNotFound
	suite.body = `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`

	bars, err := suite.fetch(models.Day)
	suite.NoError(err)
	suite.Empty(bars)
}

func (suite *YahooClientTestSuite) TestFetchEmptyResult() {
	suite.body = `{"chart":{"result":[{"meta":{"gmtoffset":0},"indicators":{"quote":[{}]}}],"error":null}}`

	bars, err := suite.fetch(models.Day)
	suite.NoError(err)
	suite.Empty(bars)
}

func (suite *YahooClientTestSuite) TestFetchErrors() {
	testCases := []struct {
		name   string
		status int
		body   string
		code   errors.ErrorCode
	}{
		{
			name:   "server error",
			status: http.StatusInternalServerError,
			body:   `{"chart":{"result":null,"error":{"code":"Internal","description":"boom"}}}`,
			code:   errors.ErrCodeMarketDataFetchFailed,
		},
		{
			name:   "too many requests",
			status: http.StatusTooManyRequests,
			body:   `{}`,
			code:   errors.ErrCodeMarketDataFetchFailed,
		},
		{
			name:   "chart error with ok status",
			status: http.StatusOK,
			body:   `{"chart":{"result":null,"error":{"code":"Bad Request","description":"Invalid input"}}}`,
			code:   errors.ErrCodeMarketDataFetchFailed,
		},
		{
			name:   "timestamps without quotes",
			status: http.StatusOK,
			body:   `{"chart":{"result":[{"meta":{},"timestamp":[1704153600],"indicators":{"quote":[]}}],"error":null}}`,
			code:   errors.ErrCodeMarketDataParseFailed,
		},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			suite.status = tc.status
			suite.body = tc.body

			_, err := suite.fetch(models.Day)
			suite.Error(err)
			suite.Equal(tc.code, errors.GetCode(err))
		})
	}
}

func (suite *YahooClientTestSuite) TestFetchUnsupportedInterval() {
	_, err := suite.fetch(models.Second)
	suite.Error(err)
	suite.Equal(errors.ErrCodeInvalidTimespan, errors.GetCode(err))
	suite.Empty(suite.requests)
}

func (suite *YahooClientTestSuite) TestConvertTimespanToYahooInterval() {
	testCases := []struct {
		timespan   models.Timespan
		multiplier int
		expected   string
		expectErr  bool
	}{
		{models.Minute, 1, "1m", false},
		{models.Minute, 2, "2m", false},
		{models.Minute, 30, "30m", false},
		{models.Minute, 3, "", true},
		{models.Hour, 1, "1h", false},
		{models.Hour, 4, "", true},
		{models.Day, 1, "1d", false},
		{models.Day, 3, "", true},
		{models.Week, 1, "1wk", false},
		{models.Month, 1, "1mo", false},
		{models.Month, 3, "3mo", false},
		{models.Second, 1, "", true},
	}

	for _, tc := range testCases {
		interval, err := convertTimespanToYahooInterval(tc.timespan, tc.multiplier)
		if tc.expectErr {
			suite.Error(err, "%d %s", tc.multiplier, tc.timespan)
		} else {
			suite.NoError(err)
			suite.Equal(tc.expected, interval)
		}
	}
}
