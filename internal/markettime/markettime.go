// Package markettime evaluates market windows in India Standard Time,
// whatever the host's local zone. Malformed times read as "unavailable".
package markettime

import (
	"strconv"
	"strings"
	"time"

	"matka/internal/models"
)

// IST is fixed at UTC+5:30 so cutoffs never depend on tzdata.
var IST = time.FixedZone("IST", 5*3600+30*60)

type Session string

const (
	SessionOpen   Session = "open"
	SessionClose  Session = "close"
	SessionClosed Session = "closed"
)

// ParseClock accepts "HH:MM" or "HH:MM:SS".
func ParseClock(s string) (time.Duration, bool) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, false
	}
	limits := []int{23, 59, 59}
	var vals [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n > limits[i] || len(p) > 2 {
			return 0, false
		}
		vals[i] = n
	}
	return time.Duration(vals[0])*time.Hour + time.Duration(vals[1])*time.Minute + time.Duration(vals[2])*time.Second, true
}

// StartOfDay is IST midnight of the day containing now.
func StartOfDay(now time.Time) time.Time {
	t := now.In(IST)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, IST)
}

// Today returns the IST calendar date as YYYY-MM-DD.
func Today(now time.Time) string {
	return now.In(IST).Format("2006-01-02")
}

func openingInstant(m models.Market, now time.Time) (time.Time, bool) {
	d, ok := ParseClock(m.StartingTime)
	if !ok {
		return time.Time{}, false
	}
	return StartOfDay(now).Add(d), true
}

// ClosingInstant is today's closing time in IST. Only a closing time at
// midnight rolls over to the next calendar day.
func ClosingInstant(m models.Market, now time.Time) (time.Time, bool) {
	d, ok := ParseClock(m.ClosingTime)
	if !ok {
		return time.Time{}, false
	}
	day := StartOfDay(now)
	closing := day.Add(d)
	if !closing.After(day) {
		return closing.AddDate(0, 0, 1), true
	}
	return closing, true
}

// IsMarketOpen reports whether now lies in [midnight, closing).
func IsMarketOpen(m models.Market, now time.Time) bool {
	closing, ok := ClosingInstant(m, now)
	if !ok {
		return false
	}
	return !now.Before(StartOfDay(now)) && now.Before(closing)
}

func IsPastClosingTime(m models.Market, now time.Time) bool {
	closing, ok := ClosingInstant(m, now)
	if !ok {
		return false
	}
	return !now.Before(closing)
}

// IsPastOpeningTime reports whether the opening leg no longer takes bets,
// either because its cutoff passed or because the opening number is declared.
func IsPastOpeningTime(m models.Market, now time.Time) bool {
	if m.Opening() != "" {
		return true
	}
	opening, ok := openingInstant(m, now)
	if !ok {
		return false
	}
	return !now.Before(opening)
}

func GetMarketSession(m models.Market, now time.Time) Session {
	opening, ok := openingInstant(m, now)
	if !ok {
		return SessionClosed
	}
	closing, ok := ClosingInstant(m, now)
	if !ok {
		return SessionClosed
	}
	switch {
	case !now.Before(closing):
		return SessionClosed
	case now.Before(opening):
		return SessionOpen
	default:
		return SessionClose
	}
}

// GetTimeUntilOpen is the wait until the opening cutoff; ok is false once it has passed.
func GetTimeUntilOpen(m models.Market, now time.Time) (time.Duration, bool) {
	opening, ok := openingInstant(m, now)
	if !ok || !now.Before(opening) {
		return 0, false
	}
	return opening.Sub(now), true
}

func GetTimeUntilClose(m models.Market, now time.Time) (time.Duration, bool) {
	closing, ok := ClosingInstant(m, now)
	if !ok || !now.Before(closing) {
		return 0, false
	}
	return closing.Sub(now), true
}

// Status derives open/running/closed from declared numbers and the clock.
func Status(m models.Market, now time.Time) models.MarketStatus {
	switch {
	case m.Opening() != "" && m.Closing() != "":
		return models.MarketClosed
	case IsPastClosingTime(m, now):
		return models.MarketClosed
	case m.Opening() != "":
		return models.MarketRunning
	case IsMarketOpen(m, now):
		return models.MarketOpen
	default:
		return models.MarketClosed
	}
}

// IsFutureDate reports whether date (YYYY-MM-DD) is after today in IST.
// Unparseable dates are treated as today.
func IsFutureDate(date string, now time.Time) bool {
	d, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(date), IST)
	if err != nil {
		return false
	}
	return d.After(StartOfDay(now))
}
