package util

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

const layout = "2006-01-02"

var marketLocation *time.Location

func init() {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		panic(fmt.Errorf("failed to load market timezone: %w", err))
	}
	marketLocation = loc
}

// MarketLocation is the exchange timezone. Session dates are evaluated here,
// not in UTC
func MarketLocation() *time.Location {
	return marketLocation
}

// MarketDate truncates t to midnight of its exchange-local calendar day
func MarketDate(t time.Time) time.Time {
	local := t.In(marketLocation)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, marketLocation)
}

func IsWeekend(t time.Time) bool {
	wd := t.In(marketLocation).Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func SameDate(t1, t2 time.Time) bool {
	return t1.Format(layout) == t2.Format(layout)
}

func FormatDate(t time.Time) string {
	return t.Format(layout)
}

func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(layout, s, marketLocation)
}
