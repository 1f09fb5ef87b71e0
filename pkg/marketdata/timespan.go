package marketdata

import (
	"strings"

	"github.com/polygon-io/client-go/rest/models"
	"github.com/tufyaa/yahoo-talib/pkg/errors"
)

// Timespan is a sampling interval such as "1d" or "15m".
type Timespan string

const (
	TimespanOneSecond      Timespan = "1s"
	TimespanOneMinute      Timespan = "1m"
	TimespanTwoMinutes     Timespan = "2m"
	TimespanThreeMinutes   Timespan = "3m"
	TimespanFiveMinutes    Timespan = "5m"
	TimespanFifteenMinutes Timespan = "15m"
	TimespanThirtyMinutes  Timespan = "30m"
	TimespanOneHour        Timespan = "1h"
	TimespanTwoHours       Timespan = "2h"
	TimespanFourHours      Timespan = "4h"
	TimespanSixHours       Timespan = "6h"
	TimespanEightHours     Timespan = "8h"
	TimespanTwelveHours    Timespan = "12h"
	TimespanOneDay         Timespan = "1d"
	TimespanThreeDays      Timespan = "3d"
	TimespanOneWeek        Timespan = "1w"
	TimespanOneMonth       Timespan = "1M"
)

// DefaultTimespan is used when no interval is given.
const DefaultTimespan = TimespanOneDay

// timespanAliases maps Yahoo style spellings to their canonical timespan.
var timespanAliases = map[string]Timespan{
	"60m": TimespanOneHour,
	"1wk": TimespanOneWeek,
	"1mo": TimespanOneMonth,
}

// SupportedTimespans lists every canonical timespan, shortest first.
func SupportedTimespans() []Timespan {
	return []Timespan{
		TimespanOneSecond,
		TimespanOneMinute,
		TimespanTwoMinutes,
		TimespanThreeMinutes,
		TimespanFiveMinutes,
		TimespanFifteenMinutes,
		TimespanThirtyMinutes,
		TimespanOneHour,
		TimespanTwoHours,
		TimespanFourHours,
		TimespanSixHours,
		TimespanEightHours,
		TimespanTwelveHours,
		TimespanOneDay,
		TimespanThreeDays,
		TimespanOneWeek,
		TimespanOneMonth,
	}
}

// ParseTimespan parses an interval string. Surrounding whitespace is ignored,
// an empty string yields DefaultTimespan and "60m", "1wk" and "1mo" are
// accepted as aliases. Matching is case-sensitive since "1m" and "1M" differ.
func ParseTimespan(value string) (Timespan, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return DefaultTimespan, nil
	}

	if alias, ok := timespanAliases[value]; ok {
		return alias, nil
	}

	for _, timespan := range SupportedTimespans() {
		if string(timespan) == value {
			return timespan, nil
		}
	}

	return "", errors.Newf(errors.ErrCodeInvalidTimespan, "unsupported interval: %s", value)
}

func (t Timespan) Multiplier() int {
	switch t {
	case TimespanTwoMinutes, TimespanTwoHours:
		return 2
	case TimespanThreeMinutes, TimespanThreeDays:
		return 3
	case TimespanFiveMinutes:
		return 5
	case TimespanFifteenMinutes:
		return 15
	case TimespanThirtyMinutes:
		return 30
	case TimespanFourHours:
		return 4
	case TimespanSixHours:
		return 6
	case TimespanEightHours:
		return 8
	case TimespanTwelveHours:
		return 12
	default:
		return 1
	}
}

func (t Timespan) Timespan() models.Timespan {
	switch t {
	case TimespanOneSecond:
		return models.Second
	case TimespanOneMinute, TimespanTwoMinutes, TimespanThreeMinutes, TimespanFiveMinutes, TimespanFifteenMinutes, TimespanThirtyMinutes:
		return models.Minute
	case TimespanOneHour, TimespanTwoHours, TimespanFourHours, TimespanSixHours, TimespanEightHours, TimespanTwelveHours:
		return models.Hour
	case TimespanOneDay, TimespanThreeDays:
		return models.Day
	case TimespanOneWeek:
		return models.Week
	case TimespanOneMonth:
		return models.Month
	default:
		return models.Day
	}
}
