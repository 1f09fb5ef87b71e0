package mocks

import (
	"hash/fnv"
	"math"
	"math/rand"
	"time"

	"github.com/tufyaa/yahoo-talib/internal/types"
)

// DataGenerator generates realistic daily bars for tests.
type DataGenerator struct {
	seed int64
	rng  *rand.Rand
}

// NewDataGenerator creates a new DataGenerator with the given seed.
// Use a fixed seed for reproducible results in tests.
func NewDataGenerator(seed int64) *DataGenerator {
	return &DataGenerator{
		seed: seed,
		rng:  rand.New(rand.NewSource(seed)),
	}
}

// GeneratorConfig configures how market data is generated.
type GeneratorConfig struct {
	// Symbol is the ticker (e.g., "AAPL", "SPY")
	Symbol string
	// StartTime is the beginning of the data series
	StartTime time.Time
	// Interval is the duration between each bar
	Interval time.Duration
	// Count is the number of bars to generate
	Count int
	// InitialPrice is the starting price
	InitialPrice float64
	// Volatility controls price movement (0.01 = 1% typical daily volatility)
	Volatility float64
	// Trend is the drift factor (-0.01 to 0.01 for bearish to bullish)
	Trend float64
	// AdjustmentFactor scales Close into Adj Close (1.0 = no dividends or splits)
	AdjustmentFactor float64
	// VolumeBase is the average volume per bar
	VolumeBase float64
	// VolumeVariance is the variance in volume (0.0 to 1.0)
	VolumeVariance float64
}

// DefaultConfig returns a year of daily bars starting 2024-01-01 at midnight UTC.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Symbol:           "TEST",
		StartTime:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Interval:         24 * time.Hour,
		Count:            250,
		InitialPrice:     100.0,
		Volatility:       0.02,
		Trend:            0.0,
		AdjustmentFactor: 0.98,
		VolumeBase:       1_000_000,
		VolumeVariance:   0.3,
	}
}

// Generate creates bars for one symbol.
// Prices follow a geometric Brownian motion so indicators see realistic movement.
func (g *DataGenerator) Generate(config GeneratorConfig) []types.MarketData {
	return generate(g.rng, config)
}

// GenerateMultiSymbol generates contiguous bars for each symbol in order. Each
// symbol's series depends only on the seed and the symbol, so removing a symbol
// does not change the others.
func (g *DataGenerator) GenerateMultiSymbol(symbols []string, baseConfig GeneratorConfig) []types.MarketData {
	var allData []types.MarketData

	for _, symbol := range symbols {
		rng := rand.New(rand.NewSource(g.seed ^ symbolSeed(symbol)))

		config := baseConfig
		config.Symbol = symbol
		// Vary initial price and volatility slightly per symbol
		config.InitialPrice = baseConfig.InitialPrice * (0.8 + rng.Float64()*0.4)
		config.Volatility = baseConfig.Volatility * (0.8 + rng.Float64()*0.4)

		allData = append(allData, generate(rng, config)...)
	}

	return allData
}

func generate(rng *rand.Rand, config GeneratorConfig) []types.MarketData {
	data := make([]types.MarketData, config.Count)
	currentPrice := config.InitialPrice
	currentTime := config.StartTime

	adjustment := config.AdjustmentFactor
	if adjustment == 0 {
		adjustment = 1
	}

	for i := 0; i < config.Count; i++ {
		open := currentPrice

		// Box-Muller transform for a normal draw
		u1 := 1 - rng.Float64()
		u2 := rng.Float64()
		z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)

		priceChange := config.Volatility * z
		drift := config.Trend / float64(config.Count)

		closePrice := open * (1 + priceChange + drift)
		if closePrice <= 0 {
			closePrice = open * 0.99
		}

		highExtension := math.Abs(rng.Float64() * config.Volatility * open * 0.5)
		lowExtension := math.Abs(rng.Float64() * config.Volatility * open * 0.5)

		high := math.Max(open, closePrice) + highExtension
		low := math.Min(open, closePrice) - lowExtension
		if low <= 0 {
			low = math.Min(open, closePrice) * 0.99
		}

		volumeVariation := 1.0 + (rng.Float64()*2-1)*config.VolumeVariance
		volume := config.VolumeBase * volumeVariation
		if volume < 0 {
			volume = config.VolumeBase * 0.1
		}

		data[i] = types.MarketData{
			Symbol:   config.Symbol,
			Time:     currentTime,
			Open:     roundToDecimals(open, 4),
			High:     roundToDecimals(high, 4),
			Low:      roundToDecimals(low, 4),
			Close:    roundToDecimals(closePrice, 4),
			AdjClose: roundToDecimals(closePrice*adjustment, 4),
			Volume:   math.Round(volume),
		}

		currentPrice = closePrice
		currentTime = currentTime.Add(config.Interval)
	}

	return data
}

func symbolSeed(symbol string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(symbol))

	return int64(h.Sum64())
}

// roundToDecimals rounds a float64 to the specified number of decimal places.
func roundToDecimals(val float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))

	return math.Round(val*pow) / pow
}
