package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/tufyaa/yahoo-talib/internal/config"
	"github.com/tufyaa/yahoo-talib/internal/logger"
	"github.com/tufyaa/yahoo-talib/internal/table"
	"github.com/tufyaa/yahoo-talib/mocks"
	"github.com/tufyaa/yahoo-talib/pkg/errors"
	"github.com/tufyaa/yahoo-talib/pkg/marketdata/writer"
	"go.uber.org/zap"
)

type PipelineCmdTestSuite struct {
	suite.Suite
	tempDir string
	source  string
	output  string
	stdout  *bytes.Buffer
	stderr  *bytes.Buffer
}

func TestPipelineCmdSuite(t *testing.T) {
	suite.Run(t, new(PipelineCmdTestSuite))
}

func (suite *PipelineCmdTestSuite) SetupTest() {
	suite.tempDir = suite.T().TempDir()
	suite.output = filepath.Join(suite.tempDir, "out")
	suite.source = filepath.Join(suite.tempDir, "source", "prices.csv")
	suite.stdout = &bytes.Buffer{}
	suite.stderr = &bytes.Buffer{}

	loggerConfig := zap.NewDevelopmentConfig()
	loggerConfig.OutputPaths = []string{}
	loggerConfig.ErrorOutputPaths = []string{}
	zapLogger, err := loggerConfig.Build()
	suite.Require().NoError(err)

	generatorConfig := mocks.DefaultConfig()
	generatorConfig.Count = 60
	bars := mocks.NewDataGenerator(42).GenerateMultiSymbol([]string{"AAPL", "MSFT"}, generatorConfig)

	csvWriter := writer.NewCSVWriter(&logger.Logger{Logger: zapLogger})
	suite.Require().NoError(csvWriter.Write(table.FromMarketData(bars), suite.source))
}

// run executes the command offline against the csv source.
func (suite *PipelineCmdTestSuite) run(args ...string) error {
	base := []string{
		"pipeline",
		"--provider", "csv",
		"--source", suite.source,
		"--output", suite.output,
		"--log-level", "error",
	}

	return newCommand(suite.stdout, suite.stderr).Run(context.Background(), append(base, args...))
}

func (suite *PipelineCmdTestSuite) readLines(name string) []string {
	data, err := os.ReadFile(filepath.Join(suite.output, name))
	suite.Require().NoError(err)

	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func (suite *PipelineCmdTestSuite) TestRunWritesBothFiles() {
	err := suite.run(
		"--tickers", "AAPL, MSFT",
		"--start", "2024-01-01",
		"--end", "2024-02-01",
		"--indicators", "SMA_5, RSI,MACD",
	)
	suite.Require().NoError(err)

	raw := suite.readLines("prices.csv")
	suite.Equal("ticker,Date,Open,High,Low,Close,Adj Close,Volume", raw[0])
	// 31 days per ticker plus the header
	suite.Len(raw, 63)

	enriched := suite.readLines("prices_with_indicators.csv")
	suite.Equal("ticker,Date,Open,High,Low,Close,Adj Close,Volume,SMA_5,RSI,MACD,MACD_signal,MACD_hist", enriched[0])
	suite.Len(enriched, 63)
	suite.True(strings.HasPrefix(enriched[1], "AAPL,2024-01-01,"))
	suite.True(strings.HasPrefix(enriched[32], "MSFT,2024-01-01,"))
}

func (suite *PipelineCmdTestSuite) TestRunPrintsSummary() {
	err := suite.run(
		"--tickers", "MSFT",
		"--start", "2024-01-01",
		"--end", "2024-01-11",
		"--indicators", "EMA_3",
		"--summary",
	)
	suite.Require().NoError(err)
	suite.Contains(suite.stdout.String(), "MSFT")
	suite.Contains(suite.stdout.String(), "2024-01-10")
}

func (suite *PipelineCmdTestSuite) TestEmptyIndicatorListCopiesRawTable() {
	err := suite.run(
		"--tickers", "AAPL",
		"--start", "2024-01-01",
		"--end", "2024-01-11",
		"--indicators", "",
	)
	suite.Require().NoError(err)
	suite.Equal(suite.readLines("prices.csv"), suite.readLines("prices_with_indicators.csv"))
}

func (suite *PipelineCmdTestSuite) TestIndicatorErrors() {
	testCases := []struct {
		name        string
		indicators  string
		unsupported bool
	}{
		{name: "unsupported family", indicators: "SMA_5,FOO", unsupported: true},
		{name: "malformed period", indicators: "SMA_x"},
		{name: "missing period", indicators: "SMA"},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			suite.Require().NoError(os.RemoveAll(suite.output))

			err := suite.run(
				"--tickers", "AAPL",
				"--start", "2024-01-01",
				"--end", "2024-01-11",
				"--indicators", tc.indicators,
			)
			suite.Require().Error(err)
			suite.Equal(tc.unsupported, errors.IsUnsupportedIndicator(err))
			suite.Equal(!tc.unsupported, errors.IsMalformedToken(err))

			// the raw file is kept, the enriched file is never written
			suite.FileExists(filepath.Join(suite.output, "prices.csv"))
			suite.NoFileExists(filepath.Join(suite.output, "prices_with_indicators.csv"))
		})
	}
}

func (suite *PipelineCmdTestSuite) TestInvalidArguments() {
	testCases := []struct {
		name string
		args []string
		code errors.ErrorCode
	}{
		{
			name: "missing tickers",
			args: []string{"--start", "2024-01-01", "--end", "2024-02-01", "--indicators", "RSI"},
			code: errors.ErrCodeMissingParameter,
		},
		{
			name: "missing indicators",
			args: []string{"--tickers", "AAPL", "--start", "2024-01-01", "--end", "2024-02-01"},
			code: errors.ErrCodeMissingParameter,
		},
		{
			name: "bad start date",
			args: []string{"--tickers", "AAPL", "--start", "01/02/2024", "--end", "2024-02-01", "--indicators", "RSI"},
			code: errors.ErrCodeInvalidParameter,
		},
		{
			name: "start after end",
			args: []string{"--tickers", "AAPL", "--start", "2024-03-01", "--end", "2024-02-01", "--indicators", "RSI"},
			code: errors.ErrCodeInvalidDateRange,
		},
		{
			name: "blank tickers",
			args: []string{"--tickers", " , ", "--start", "2024-01-01", "--end", "2024-02-01", "--indicators", "RSI"},
			code: errors.ErrCodeInvalidParameter,
		},
		{
			name: "unknown format",
			args: []string{"--tickers", "AAPL", "--start", "2024-01-01", "--end", "2024-02-01", "--indicators", "RSI", "--format", "xlsx"},
			code: errors.ErrCodeInvalidConfiguration,
		},
		{
			name: "zero workers",
			args: []string{"--tickers", "AAPL", "--start", "2024-01-01", "--end", "2024-02-01", "--indicators", "RSI", "--workers", "0"},
			code: errors.ErrCodeInvalidConfiguration,
		},
	}

	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			err := suite.run(tc.args...)
			suite.Require().Error(err)
			suite.Equal(tc.code, errors.GetCode(err))
		})
	}
}

func (suite *PipelineCmdTestSuite) TestFlagsOverrideConfigFile() {
	configPath := filepath.Join(suite.tempDir, "pipeline.yaml")
	suite.Require().NoError(os.WriteFile(configPath, []byte(`
output:
  dir: `+filepath.Join(suite.tempDir, "from-config")+`
engine:
  workers: 2
`), 0644))

	err := suite.run(
		"--config", configPath,
		"--tickers", "AAPL,MSFT",
		"--start", "2024-01-01",
		"--end", "2024-01-11",
		"--indicators", "ATR_3",
	)
	suite.Require().NoError(err)

	// --output wins over output.dir
	suite.FileExists(filepath.Join(suite.output, "prices_with_indicators.csv"))
	suite.NoDirExists(filepath.Join(suite.tempDir, "from-config"))
}

func (suite *PipelineCmdTestSuite) TestIndicatorsCommand() {
	err := newCommand(suite.stdout, suite.stderr).Run(context.Background(), []string{"pipeline", "indicators"})
	suite.Require().NoError(err)

	output := suite.stdout.String()
	suite.Contains(output, "SMA_14")
	suite.Contains(output, "BBANDS_upper_14")
	suite.Contains(output, "MACD_signal")
	suite.Contains(output, "OBV")
}

func (suite *PipelineCmdTestSuite) TestProvidersCommand() {
	err := newCommand(suite.stdout, suite.stderr).Run(context.Background(), []string{"pipeline", "providers"})
	suite.Require().NoError(err)

	output := suite.stdout.String()
	for _, name := range []string{"yahoo", "polygon", "binance", "csv"} {
		suite.Contains(output, name)
	}
}

func (suite *PipelineCmdTestSuite) TestSchemaCommand() {
	err := newCommand(suite.stdout, suite.stderr).Run(context.Background(), []string{"pipeline", "schema"})
	suite.Require().NoError(err)

	var schema map[string]any
	suite.Require().NoError(json.Unmarshal(suite.stdout.Bytes(), &schema))
	suite.Equal("pipeline-config", schema["title"])
}

func (suite *PipelineCmdTestSuite) TestSchemaCommandSample() {
	err := newCommand(suite.stdout, suite.stderr).Run(context.Background(), []string{"pipeline", "schema", "--sample"})
	suite.Require().NoError(err)
	suite.Contains(suite.stdout.String(), "$schema="+config.SchemaFileName)
}

func (suite *PipelineCmdTestSuite) TestSchemaCommandWritesFiles() {
	dir := filepath.Join(suite.tempDir, "config")

	err := newCommand(suite.stdout, suite.stderr).Run(context.Background(), []string{"pipeline", "schema", "--dir", dir})
	suite.Require().NoError(err)
	suite.FileExists(filepath.Join(dir, config.SchemaFileName))
	suite.FileExists(filepath.Join(dir, config.SampleFileName))
}
