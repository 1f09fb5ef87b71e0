// Package utils holds small parsing helpers shared by the command line tools.
package utils

import (
	"strings"
	"time"

	"github.com/moznion/go-optional"
	"github.com/tufyaa/yahoo-talib/pkg/errors"
)

// ParseList splits a comma separated list, trimming whitespace around each
// item and dropping empty items. An empty or blank string yields an empty list.
func ParseList(value string) []string {
	items := []string{}

	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}

		items = append(items, item)
	}

	return items
}

// ParseDate parses a YYYY-MM-DD date at midnight UTC. A blank value yields None.
func ParseDate(value string) (optional.Option[time.Time], error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return optional.None[time.Time](), nil
	}

	date, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return optional.None[time.Time](), errors.Wrapf(errors.ErrCodeInvalidParameter, err, "invalid date %q, expected YYYY-MM-DD", value)
	}

	return optional.Some(date), nil
}
