package types

// IndicatorType is an indicator family name as it appears in request tokens.
type IndicatorType string

const (
	IndicatorTypeSMA    IndicatorType = "SMA"
	IndicatorTypeEMA    IndicatorType = "EMA"
	IndicatorTypeWMA    IndicatorType = "WMA"
	IndicatorTypeDEMA   IndicatorType = "DEMA"
	IndicatorTypeTEMA   IndicatorType = "TEMA"
	IndicatorTypeKAMA   IndicatorType = "KAMA"
	IndicatorTypeATR    IndicatorType = "ATR"
	IndicatorTypeADX    IndicatorType = "ADX"
	IndicatorTypeCCI    IndicatorType = "CCI"
	IndicatorTypeROC    IndicatorType = "ROC"
	IndicatorTypeMOM    IndicatorType = "MOM"
	IndicatorTypeRSI    IndicatorType = "RSI"
	IndicatorTypeOBV    IndicatorType = "OBV"
	IndicatorTypeMACD   IndicatorType = "MACD"
	IndicatorTypeBBANDS IndicatorType = "BBANDS"
)

// ParameterKind describes whether a family takes a lookback period.
type ParameterKind string

const (
	ParameterKindNone   ParameterKind = "none"
	ParameterKindPeriod ParameterKind = "period"
)
