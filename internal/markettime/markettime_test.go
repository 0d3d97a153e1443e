package markettime

import (
	"testing"
	"time"

	"matka/internal/models"
)

func at(hour, min int) time.Time {
	return time.Date(2026, 3, 14, hour, min, 0, 0, IST)
}

func strPtr(s string) *string { return &s }

func TestSessionTransitions(t *testing.T) {
	m := models.Market{StartingTime: "11:30", ClosingTime: "17:30"}
	if got := GetMarketSession(m, at(11, 0)); got != SessionOpen {
		t.Fatalf("11:00 session = %s, want open", got)
	}
	if got := GetMarketSession(m, at(12, 0)); got != SessionClose {
		t.Fatalf("12:00 session = %s, want close", got)
	}
	if got := GetMarketSession(m, at(18, 0)); got != SessionClosed {
		t.Fatalf("18:00 session = %s, want closed", got)
	}
	if !IsPastClosingTime(m, at(18, 0)) {
		t.Fatalf("18:00 should be past closing")
	}
	if IsPastClosingTime(m, at(17, 29)) {
		t.Fatalf("17:29 should not be past closing")
	}
}

func TestEvaluationIgnoresCallerZone(t *testing.T) {
	m := models.Market{StartingTime: "11:30", ClosingTime: "17:30"}
	utc := at(11, 0).UTC() // 05:30 UTC
	if got := GetMarketSession(m, utc); got != SessionOpen {
		t.Fatalf("session from UTC instant = %s, want open", got)
	}
	ny, err := time.LoadLocation("America/New_York")
	if err == nil {
		if got := GetMarketSession(m, at(12, 0).In(ny)); got != SessionClose {
			t.Fatalf("session from NY instant = %s, want close", got)
		}
	}
}

func TestIsMarketOpen(t *testing.T) {
	m := models.Market{StartingTime: "11:30", ClosingTime: "17:30"}
	if !IsMarketOpen(m, at(0, 0)) {
		t.Fatalf("midnight should be inside the window")
	}
	if IsMarketOpen(m, at(17, 30)) {
		t.Fatalf("closing instant is excluded")
	}
	midnight := models.Market{StartingTime: "22:00", ClosingTime: "00:00"}
	if !IsMarketOpen(midnight, at(23, 59)) {
		t.Fatalf("midnight closing should span into the next day")
	}
}

func TestClosingBeforeStartDoesNotRollOver(t *testing.T) {
	m := models.Market{StartingTime: "22:00", ClosingTime: "02:00"}
	if !IsMarketOpen(m, at(1, 0)) || GetMarketSession(m, at(1, 0)) != SessionOpen {
		t.Fatalf("01:00 should be inside the window")
	}
	now := at(3, 0)
	if IsMarketOpen(m, now) || !IsPastClosingTime(m, now) {
		t.Fatalf("03:00 should be past closing")
	}
	if s := GetMarketSession(m, now); s != SessionClosed {
		t.Fatalf("session at 03:00 = %s", s)
	}
	if Status(m, now) != models.MarketClosed {
		t.Fatalf("status at 03:00 = %s", Status(m, now))
	}
}

func TestMalformedTimesDegrade(t *testing.T) {
	bad := []models.Market{
		{StartingTime: "", ClosingTime: ""},
		{StartingTime: "25:00", ClosingTime: "xx"},
		{StartingTime: "11:30", ClosingTime: "17"},
	}
	for _, m := range bad {
		if IsMarketOpen(m, at(12, 0)) {
			t.Errorf("%+v should not be open", m)
		}
		if IsPastClosingTime(m, at(12, 0)) {
			t.Errorf("%+v should not be past closing", m)
		}
		if GetMarketSession(m, at(12, 0)) != SessionClosed {
			t.Errorf("%+v should be closed", m)
		}
		if _, ok := GetTimeUntilClose(m, at(12, 0)); ok {
			t.Errorf("%+v should have no time until close", m)
		}
	}
}

func TestTimeUntil(t *testing.T) {
	m := models.Market{StartingTime: "11:30", ClosingTime: "17:30"}
	d, ok := GetTimeUntilOpen(m, at(11, 0))
	if !ok || d != 30*time.Minute {
		t.Fatalf("until open = %v, %v", d, ok)
	}
	if _, ok := GetTimeUntilOpen(m, at(12, 0)); ok {
		t.Fatalf("until open should be absent after opening")
	}
	d, ok = GetTimeUntilClose(m, at(12, 0))
	if !ok || d != 5*time.Hour+30*time.Minute {
		t.Fatalf("until close = %v, %v", d, ok)
	}
}

func TestIsPastOpeningTime(t *testing.T) {
	m := models.Market{StartingTime: "11:30", ClosingTime: "17:30"}
	if IsPastOpeningTime(m, at(11, 0)) {
		t.Fatalf("11:00 is before opening")
	}
	if !IsPastOpeningTime(m, at(11, 30)) {
		t.Fatalf("11:30 is past opening")
	}
	m.OpeningNumber = strPtr("347")
	if !IsPastOpeningTime(m, at(9, 0)) {
		t.Fatalf("declared opening number locks the open leg")
	}
}

func TestStatus(t *testing.T) {
	m := models.Market{StartingTime: "11:30", ClosingTime: "17:30"}
	if got := Status(m, at(10, 0)); got != models.MarketOpen {
		t.Fatalf("status = %s, want open", got)
	}
	m.OpeningNumber = strPtr("347")
	if got := Status(m, at(13, 0)); got != models.MarketRunning {
		t.Fatalf("status = %s, want running", got)
	}
	m.ClosingNumber = strPtr("129")
	if got := Status(m, at(13, 0)); got != models.MarketClosed {
		t.Fatalf("status = %s, want closed", got)
	}
}

func TestIsFutureDate(t *testing.T) {
	now := at(23, 0)
	if IsFutureDate("2026-03-14", now) {
		t.Fatalf("today is not a future date")
	}
	if !IsFutureDate("2026-03-15", now) {
		t.Fatalf("tomorrow is a future date")
	}
	if IsFutureDate("garbage", now) {
		t.Fatalf("garbage should read as today")
	}
}
