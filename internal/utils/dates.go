package utils

import (
	"fmt"
	"time"

	black76 "github.com/jwaldner/black76/black76_lib"
)

const dateLayout = "2006-01-02"

// ParseExpiration parses a YYYY-MM-DD expiration date as end of day UTC.
func ParseExpiration(date string) (time.Time, error) {
	d, err := time.Parse(dateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid expiration date format: %w", err)
	}
	return d.Add(24*time.Hour - time.Second), nil
}

// TimeToMaturity returns the year fraction between now and expiry using
// black76.DaysPerYear. It is not positive once expiry has passed.
func TimeToMaturity(now, expiry time.Time) float64 {
	days := expiry.Sub(now).Hours() / 24
	return days / black76.DaysPerYear
}

// NextThirdFriday returns the third Friday of the month after now when now
// is in or past this month's expiration week, otherwise this month's.
func NextThirdFriday(now time.Time) time.Time {
	third := thirdFriday(now.Year(), now.Month(), now.Location())
	weekStart := third.AddDate(0, 0, -7)
	if now.After(weekStart) || now.Equal(weekStart) {
		next := time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, now.Location())
		return thirdFriday(next.Year(), next.Month(), now.Location())
	}
	return third
}

func thirdFriday(year int, month time.Month, loc *time.Location) time.Time {
	firstFriday := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	for firstFriday.Weekday() != time.Friday {
		firstFriday = firstFriday.AddDate(0, 0, 1)
	}
	return firstFriday.AddDate(0, 0, 14)
}
