package indicator

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/tufyaa/yahoo-talib/internal/types"
	"github.com/tufyaa/yahoo-talib/pkg/errors"
)

type RegistryTestSuite struct {
	suite.Suite
	registry IndicatorRegistry
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistryTestSuite))
}

func (suite *RegistryTestSuite) SetupTest() {
	suite.registry = DefaultRegistry()
}

func (suite *RegistryTestSuite) TestDefaultRegistryListsAllFamilies() {
	suite.Equal([]types.IndicatorType{
		"ADX", "ATR", "BBANDS", "CCI", "DEMA", "EMA", "KAMA", "MACD",
		"MOM", "OBV", "ROC", "RSI", "SMA", "TEMA", "WMA",
	}, suite.registry.ListIndicators())
}

func (suite *RegistryTestSuite) TestNewIndicatorRegistryRejectsDuplicates() {
	registry, err := NewIndicatorRegistry(NewSMA(), NewRSI(), NewSMA())
	suite.Error(err)
	suite.Nil(registry)
	suite.Equal(errors.ErrCodeIndicatorAlreadyExists, errors.GetCode(err))
}

func (suite *RegistryTestSuite) TestGetIndicator() {
	indicator, err := suite.registry.GetIndicator(types.IndicatorTypeOBV)
	suite.NoError(err)
	suite.Equal(types.IndicatorTypeOBV, indicator.Name())

	_, err = suite.registry.GetIndicator("FOO")
	suite.Error(err)
	suite.Equal(errors.ErrCodeIndicatorNotFound, errors.GetCode(err))
}

func (suite *RegistryTestSuite) TestResolveValidTokens() {
	testCases := []struct {
		token    string
		family   types.IndicatorType
		period   int
		columns  []string
		noPeriod bool
	}{
		{token: "RSI", family: types.IndicatorTypeRSI, noPeriod: true, columns: []string{"RSI"}},
		{token: "OBV", family: types.IndicatorTypeOBV, noPeriod: true, columns: []string{"OBV"}},
		{token: "MACD", family: types.IndicatorTypeMACD, noPeriod: true, columns: []string{"MACD", "MACD_signal", "MACD_hist"}},
		{token: "SMA_20", family: types.IndicatorTypeSMA, period: 20, columns: []string{"SMA_20"}},
		{token: "EMA_9", family: types.IndicatorTypeEMA, period: 9, columns: []string{"EMA_9"}},
		{token: "WMA_5", family: types.IndicatorTypeWMA, period: 5, columns: []string{"WMA_5"}},
		{token: "DEMA_10", family: types.IndicatorTypeDEMA, period: 10, columns: []string{"DEMA_10"}},
		{token: "TEMA_10", family: types.IndicatorTypeTEMA, period: 10, columns: []string{"TEMA_10"}},
		{token: "KAMA_30", family: types.IndicatorTypeKAMA, period: 30, columns: []string{"KAMA_30"}},
		{token: "ATR_14", family: types.IndicatorTypeATR, period: 14, columns: []string{"ATR_14"}},
		{token: "ADX_14", family: types.IndicatorTypeADX, period: 14, columns: []string{"ADX_14"}},
		{token: "CCI_20", family: types.IndicatorTypeCCI, period: 20, columns: []string{"CCI_20"}},
		{token: "ROC_10", family: types.IndicatorTypeROC, period: 10, columns: []string{"ROC_10"}},
		{token: "MOM_10", family: types.IndicatorTypeMOM, period: 10, columns: []string{"MOM_10"}},
		{token: "BBANDS_20", family: types.IndicatorTypeBBANDS, period: 20, columns: []string{"BBANDS_upper_20", "BBANDS_middle_20", "BBANDS_lower_20"}},
		{token: "SMA_020", family: types.IndicatorTypeSMA, period: 20, columns: []string{"SMA_20"}},
	}

	for _, tc := range testCases {
		suite.Run(tc.token, func() {
			request, err := suite.registry.Resolve(tc.token)
			suite.Require().NoError(err)
			suite.Equal(tc.token, request.Token)
			suite.Equal(tc.family, request.Indicator.Name())
			suite.Equal(tc.columns, request.Columns())

			if tc.noPeriod {
				suite.True(request.Period.IsNone())
			} else {
				suite.True(request.Period.IsSome())
				suite.Equal(tc.period, request.Period.Unwrap())
			}
		})
	}
}

func (suite *RegistryTestSuite) TestResolveErrors() {
	testCases := []struct {
		token       string
		unsupported bool
	}{
		{token: "FOO", unsupported: true},
		{token: "FOO_x", unsupported: true},
		{token: "FOO_20", unsupported: true},
		{token: "sma_20", unsupported: true},
		{token: "", unsupported: true},
		{token: "_20", unsupported: true},
		{token: "SMA_x"},
		{token: "SMA_"},
		{token: "SMA"},
		{token: "SMA_0"},
		{token: "SMA_-3"},
		{token: "SMA_+3"},
		{token: "SMA_2.5"},
		{token: "SMA_20_5"},
		{token: "SMA_99999999999999999999999"},
		{token: "BBANDS"},
		{token: "RSI_14"},
		{token: "MACD_9"},
		{token: "OBV_"},
	}

	for _, tc := range testCases {
		suite.Run(tc.token, func() {
			_, err := suite.registry.Resolve(tc.token)
			suite.Require().Error(err)

			if tc.unsupported {
				suite.True(errors.IsUnsupportedIndicator(err))
				suite.False(errors.IsMalformedToken(err))
				suite.Contains(err.Error(), tc.token)
			} else {
				suite.True(errors.IsMalformedToken(err))
				suite.False(errors.IsUnsupportedIndicator(err))
			}
		})
	}
}

func (suite *RegistryTestSuite) TestRequiredInputs() {
	testCases := []struct {
		family types.IndicatorType
		inputs []string
	}{
		{family: types.IndicatorTypeSMA, inputs: []string{"Close"}},
		{family: types.IndicatorTypeRSI, inputs: []string{"Close"}},
		{family: types.IndicatorTypeMACD, inputs: []string{"Close"}},
		{family: types.IndicatorTypeBBANDS, inputs: []string{"Close"}},
		{family: types.IndicatorTypeATR, inputs: []string{"High", "Low", "Close"}},
		{family: types.IndicatorTypeADX, inputs: []string{"High", "Low", "Close"}},
		{family: types.IndicatorTypeCCI, inputs: []string{"High", "Low", "Close"}},
		{family: types.IndicatorTypeOBV, inputs: []string{"Close", "Volume"}},
	}

	for _, tc := range testCases {
		suite.Run(string(tc.family), func() {
			indicator, err := suite.registry.GetIndicator(tc.family)
			suite.Require().NoError(err)
			suite.Equal(tc.inputs, indicator.Inputs())
		})
	}
}

func (suite *RegistryTestSuite) TestLookbacks() {
	testCases := []struct {
		family   types.IndicatorType
		period   int
		lookback int
	}{
		{family: types.IndicatorTypeSMA, period: 20, lookback: 19},
		{family: types.IndicatorTypeEMA, period: 20, lookback: 19},
		{family: types.IndicatorTypeDEMA, period: 10, lookback: 18},
		{family: types.IndicatorTypeTEMA, period: 10, lookback: 27},
		{family: types.IndicatorTypeKAMA, period: 30, lookback: 30},
		{family: types.IndicatorTypeATR, period: 14, lookback: 14},
		{family: types.IndicatorTypeADX, period: 14, lookback: 27},
		{family: types.IndicatorTypeCCI, period: 20, lookback: 19},
		{family: types.IndicatorTypeROC, period: 10, lookback: 10},
		{family: types.IndicatorTypeMOM, period: 10, lookback: 10},
		{family: types.IndicatorTypeBBANDS, period: 20, lookback: 19},
		{family: types.IndicatorTypeRSI, lookback: 14},
		{family: types.IndicatorTypeMACD, lookback: 33},
		{family: types.IndicatorTypeOBV, lookback: 0},
	}

	for _, tc := range testCases {
		suite.Run(string(tc.family), func() {
			indicator, err := suite.registry.GetIndicator(tc.family)
			suite.Require().NoError(err)
			suite.Equal(tc.lookback, indicator.Lookback(tc.period))
		})
	}
}
