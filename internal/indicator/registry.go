package indicator

import (
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/moznion/go-optional"
	"github.com/tufyaa/yahoo-talib/internal/types"
	"github.com/tufyaa/yahoo-talib/pkg/errors"
)

// TokenSeparator joins a family name and its period in a request token.
const TokenSeparator = "_"

// Request is a resolved indicator token.
type Request struct {
	Token     string
	Indicator Indicator
	Period    optional.Option[int]
}

// period returns the requested period, or 0 for families without one.
func (r Request) period() int {
	if r.Period.IsSome() {
		return r.Period.Unwrap()
	}

	return 0
}

// Columns returns the output column names the request produces.
func (r Request) Columns() []string {
	return r.Indicator.Outputs(r.period())
}

// IndicatorRegistry resolves request tokens to indicator families.
// Registries are immutable once built.
type IndicatorRegistry interface {
	GetIndicator(name types.IndicatorType) (Indicator, error)
	ListIndicators() []types.IndicatorType
	Resolve(token string) (Request, error)
}

// IndicatorRegistryV1 is a lookup table keyed by family name.
type IndicatorRegistryV1 struct {
	indicators map[types.IndicatorType]Indicator
}

// NewIndicatorRegistry builds a registry from the given families.
func NewIndicatorRegistry(indicators ...Indicator) (IndicatorRegistry, error) {
	registry := &IndicatorRegistryV1{
		indicators: make(map[types.IndicatorType]Indicator, len(indicators)),
	}

	for _, indicator := range indicators {
		name := indicator.Name()
		if _, exists := registry.indicators[name]; exists {
			return nil, errors.Newf(errors.ErrCodeIndicatorAlreadyExists, "indicator with name %s already registered", name)
		}

		registry.indicators[name] = indicator
	}

	return registry, nil
}

// DefaultIndicators returns every supported family.
func DefaultIndicators() []Indicator {
	return []Indicator{
		NewSMA(),
		NewEMA(),
		NewWMA(),
		NewDEMA(),
		NewTEMA(),
		NewKAMA(),
		NewATR(),
		NewADX(),
		NewCCI(),
		NewROC(),
		NewMOM(),
		NewRSI(),
		NewOBV(),
		NewMACD(),
		NewBollingerBands(),
	}
}

var defaultRegistry = sync.OnceValue(func() IndicatorRegistry {
	registry, err := NewIndicatorRegistry(DefaultIndicators()...)
	if err != nil {
		panic(err)
	}

	return registry
})

// DefaultRegistry returns the process-wide registry of supported families.
func DefaultRegistry() IndicatorRegistry {
	return defaultRegistry()
}

// GetIndicator retrieves a family by name.
func (r *IndicatorRegistryV1) GetIndicator(name types.IndicatorType) (Indicator, error) {
	indicator, exists := r.indicators[name]
	if !exists {
		return nil, errors.Newf(errors.ErrCodeIndicatorNotFound, "indicator with name %s not found", name)
	}

	return indicator, nil
}

// ListIndicators returns the registered family names in sorted order.
func (r *IndicatorRegistryV1) ListIndicators() []types.IndicatorType {
	names := make([]types.IndicatorType, 0, len(r.indicators))
	for name := range r.indicators {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// Resolve parses a token such as RSI or SMA_20. The family is looked up first,
// so an unknown family is reported as unsupported even when its period is invalid.
func (r *IndicatorRegistryV1) Resolve(token string) (Request, error) {
	family, periodText, hasPeriod := strings.Cut(token, TokenSeparator)

	indicator, exists := r.indicators[types.IndicatorType(family)]
	if !exists {
		return Request{}, errors.Newf(errors.ErrCodeUnsupportedIndicator, "unsupported indicator: %s", token)
	}

	if indicator.ParameterKind() == types.ParameterKindNone {
		if hasPeriod {
			return Request{}, errors.Newf(errors.ErrCodeMalformedToken, "indicator %s does not take a period: %q", family, token)
		}

		return Request{Token: token, Indicator: indicator, Period: optional.None[int]()}, nil
	}

	if !hasPeriod {
		return Request{}, errors.Newf(errors.ErrCodeMalformedToken, "indicator %s requires a period, e.g. %s%s20: %q", family, family, TokenSeparator, token)
	}

	period, err := parsePeriod(periodText)
	if err != nil {
		return Request{}, errors.Wrapf(errors.ErrCodeMalformedToken, err, "invalid period in %q", token)
	}

	return Request{Token: token, Indicator: indicator, Period: optional.Some(period)}, nil
}

// parsePeriod accepts base-10 digits only and rejects zero.
func parsePeriod(text string) (int, error) {
	if text == "" {
		return 0, errors.New(errors.ErrCodeInvalidPeriod, "period is empty")
	}

	for _, c := range text {
		if c < '0' || c > '9' {
			return 0, errors.Newf(errors.ErrCodeInvalidPeriod, "period %q is not a positive integer", text)
		}
	}

	period, err := strconv.Atoi(text)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrCodeInvalidPeriod, err, "period %q is out of range", text)
	}

	if period <= 0 {
		return 0, errors.Newf(errors.ErrCodeInvalidPeriod, "period must be a positive integer, got %d", period)
	}

	return period, nil
}
