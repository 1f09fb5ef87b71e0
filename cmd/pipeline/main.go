package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/tufyaa/yahoo-talib/internal/config"
	"github.com/tufyaa/yahoo-talib/internal/indicator"
	"github.com/tufyaa/yahoo-talib/internal/logger"
	"github.com/tufyaa/yahoo-talib/internal/pipeline"
	"github.com/tufyaa/yahoo-talib/internal/types"
	"github.com/tufyaa/yahoo-talib/internal/version"
	"github.com/tufyaa/yahoo-talib/pkg/errors"
	"github.com/tufyaa/yahoo-talib/pkg/marketdata"
	"github.com/tufyaa/yahoo-talib/pkg/marketdata/provider"
	"github.com/tufyaa/yahoo-talib/pkg/marketdata/writer"
	"github.com/tufyaa/yahoo-talib/pkg/utils"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// examplePeriod is the period used when describing period based families.
const examplePeriod = 14

// dotenvFile is read for secrets missing from the config file.
const dotenvFile = ".env"

// requiredFlags must be present on a pipeline run. They are checked in the
// action so that subcommands do not inherit them.
var requiredFlags = []string{"tickers", "start", "end", "indicators"}

func runAction(ctx context.Context, cmd *cli.Command) error {
	for _, name := range requiredFlags {
		if !cmd.IsSet(name) {
			return errors.Newf(errors.ErrCodeMissingParameter, "missing required flag --%s", name)
		}
	}

	start, err := utils.ParseDate(cmd.String("start"))
	if err != nil {
		return err
	}

	end, err := utils.ParseDate(cmd.String("end"))
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log, err := logger.NewLoggerWithOptions(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to create logger", err)
	}

	defer func() { _ = log.Sync() }()

	client, err := marketdata.NewClient(marketdata.ClientConfig{
		ProviderType:      provider.ProviderType(cfg.Provider.Name),
		PolygonApiKey:     cfg.Provider.PolygonAPIKey,
		Source:            cfg.Provider.Source,
		BaseURL:           cfg.Provider.BaseURL,
		MaxRetries:        cfg.Provider.MaxRetries,
		RequestsPerSecond: cfg.Provider.RequestsPerSecond,
		Concurrency:       cfg.Provider.Concurrency,
	}, log, marketdata.WithProgressWriter(cmd.Root().ErrWriter))
	if err != nil {
		return err
	}

	tableWriter, err := writer.NewTableWriter(writer.Format(cfg.Output.Format), log)
	if err != nil {
		return err
	}

	engine := indicator.NewEngine(log, indicator.WithWorkers(cfg.Engine.Workers))

	result, err := pipeline.New(client, engine, tableWriter, log).Run(ctx, pipeline.Params{
		Tickers:    utils.ParseList(cmd.String("tickers")),
		Start:      start,
		End:        end,
		Interval:   cmd.String("interval"),
		Indicators: utils.ParseList(cmd.String("indicators")),
		OutputDir:  cfg.Output.Dir,
	})
	if err != nil {
		log.Error("Pipeline failed", zap.Error(err))

		return err
	}

	if cmd.Bool("summary") {
		pipeline.RenderSummary(cmd.Root().Writer, pipeline.Summarize(result.Table))
	}

	return nil
}

// loadConfig reads the config file and applies flag overrides, then the
// environment, then validates.
func loadConfig(cmd *cli.Command) (config.Config, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return config.Config{}, err
	}

	if cmd.IsSet("output") {
		cfg.Output.Dir = cmd.String("output")
	}

	if cmd.IsSet("format") {
		cfg.Output.Format = cmd.String("format")
	}

	if cmd.IsSet("provider") {
		cfg.Provider.Name = cmd.String("provider")
	}

	if cmd.IsSet("source") {
		cfg.Provider.Source = cmd.String("source")
	}

	if cmd.IsSet("workers") {
		cfg.Engine.Workers = int(cmd.Int("workers"))
	}

	if cmd.IsSet("log-level") {
		cfg.Log.Level = cmd.String("log-level")
	}

	if cmd.IsSet("log-format") {
		cfg.Log.Format = cmd.String("log-format")
	}

	if err := cfg.ApplyEnv(dotenvFile); err != nil {
		return config.Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}

	return cfg, nil
}

func indicatorsAction(_ context.Context, cmd *cli.Command) error {
	registry := indicator.DefaultRegistry()

	out := tablewriter.NewWriter(cmd.Root().Writer)
	out.SetHeader([]string{"Indicator", "Parameter", "Inputs", "Columns"})

	for _, name := range registry.ListIndicators() {
		definition, err := registry.GetIndicator(name)
		if err != nil {
			return err
		}

		period := 0
		if definition.ParameterKind() == types.ParameterKindPeriod {
			period = examplePeriod
		}

		out.Append([]string{
			string(name),
			string(definition.ParameterKind()),
			strings.Join(definition.Inputs(), ", "),
			strings.Join(definition.Outputs(period), ", "),
		})
	}

	out.Render()

	return nil
}

func providersAction(_ context.Context, cmd *cli.Command) error {
	out := tablewriter.NewWriter(cmd.Root().Writer)
	out.SetHeader([]string{"Provider", "Name", "Auth", "Adj Close", "Description"})

	for _, name := range marketdata.GetSupportedProviders() {
		info, err := marketdata.GetProviderInfo(name)
		if err != nil {
			return err
		}

		out.Append([]string{
			info.Name,
			info.DisplayName,
			yesNo(info.RequiresAuth),
			yesNo(info.HasAdjClose),
			info.Description,
		})
	}

	out.Render()

	return nil
}

func schemaAction(_ context.Context, cmd *cli.Command) error {
	stdout := cmd.Root().Writer

	if dir := cmd.String("dir"); dir != "" {
		schemaPath, samplePath, err := config.WriteSchemaFiles(dir)
		if err != nil {
			return err
		}

		fmt.Fprintf(stdout, "Schema written to %s\nSample config at %s\n", schemaPath, samplePath)

		return nil
	}

	if cmd.Bool("sample") {
		sample, err := config.SampleYAML()
		if err != nil {
			return err
		}

		_, err = stdout.Write(sample)

		return err
	}

	schemaJSON, err := config.GenerateSchemaJSON()
	if err != nil {
		return err
	}

	fmt.Fprintln(stdout, schemaJSON)

	return nil
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}

	return "no"
}

func newCommand(stdout io.Writer, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "pipeline",
		Usage:     "Download OHLCV bars and compute TA-Lib indicators per ticker",
		Version:   version.GetVersion(),
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "tickers",
				Aliases: []string{"t"},
				Usage:   "Comma separated tickers (e.g., AAPL,MSFT,SPY)",
			},
			&cli.StringFlag{
				Name:    "start",
				Aliases: []string{"s"},
				Usage:   "Start date in YYYY-MM-DD format",
			},
			&cli.StringFlag{
				Name:    "end",
				Aliases: []string{"e"},
				Usage:   "End date in YYYY-MM-DD format (exclusive)",
			},
			&cli.StringFlag{
				Name:    "interval",
				Aliases: []string{"i"},
				Usage:   "Bar interval (e.g., 1m, 1h, 1d, 1w)",
				Value:   string(marketdata.DefaultTimespan),
			},
			&cli.StringFlag{
				Name:  "indicators",
				Usage: "Comma separated indicator tokens (e.g., SMA_20,RSI,MACD,BBANDS_20)",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a pipeline config file",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output directory (overrides output.dir)",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: csv or parquet (overrides output.format)",
			},
			&cli.StringFlag{
				Name:    "provider",
				Aliases: []string{"p"},
				Usage:   "Market data provider: yahoo, polygon, binance or csv (overrides provider.name)",
			},
			&cli.StringFlag{
				Name:  "source",
				Usage: "Input file for the csv provider (overrides provider.source)",
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"w"},
				Usage:   "Tickers computed concurrently (overrides engine.workers)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level: debug, info, warn or error (overrides log.level)",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "Log format: json or console (overrides log.format)",
			},
			&cli.BoolFlag{
				Name:  "summary",
				Usage: "Print a per-ticker summary of the enriched table",
			},
		},
		Action: runAction,
		Commands: []*cli.Command{
			{
				Name:   "indicators",
				Usage:  "List the supported indicator families",
				Action: indicatorsAction,
			},
			{
				Name:   "providers",
				Usage:  "List the supported market data providers",
				Action: providersAction,
			},
			{
				Name:  "schema",
				Usage: "Print the config JSON schema",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "sample",
						Usage: "Print a sample config instead of the schema",
					},
					&cli.StringFlag{
						Name:  "dir",
						Usage: "Write the schema and a sample config into this directory",
					},
				},
				Action: schemaAction,
			},
		},
	}
}

func main() {
	if err := newCommand(os.Stdout, os.Stderr).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
