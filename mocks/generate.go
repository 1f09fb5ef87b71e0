package mocks

//go:generate mockgen -destination=./mock_provider.go -package=mocks github.com/tufyaa/yahoo-talib/pkg/marketdata/provider Provider
//go:generate mockgen -destination=./mock_writer.go -package=mocks github.com/tufyaa/yahoo-talib/pkg/marketdata/writer TableWriter
