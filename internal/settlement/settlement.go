// Package settlement projects a display-only win/loss for past bets from the
// declared market result. The backend settles authoritatively; this never
// errors and answers "pending" whenever something it needs is missing.
package settlement

import (
	"strings"

	"github.com/shopspring/decimal"

	"matka/internal/models"
	"matka/internal/panarules"
)

type Kind string

const (
	KindDigit           Kind = "digit"
	KindJodi            Kind = "jodi"
	KindPanna           Kind = "panna"
	KindHalfSangamOpen  Kind = "half-sangam-open"
	KindHalfSangamClose Kind = "half-sangam-close"
	KindFullSangam      Kind = "full-sangam"
	KindUnknown         Kind = "unknown"
)

type State string

const (
	Pending State = "pending"
	Won     State = "won"
	Lost    State = "lost"
)

type Bet struct {
	BetType   string
	BetNumber string
	Amount    int64
	Session   string // OPEN/CLOSE or open/close
}

type Prediction struct {
	State      State           `json:"state"`
	Kind       Kind            `json:"kind"`
	Winning    string          `json:"winning,omitempty"`
	Multiplier decimal.Decimal `json:"multiplier"`
	Payout     decimal.Decimal `json:"payout"`
}

// DefaultRates apply until the rates table has been fetched.
var DefaultRates = models.Rates{
	Single:      decimal.RequireFromString("9.5"),
	Jodi:        decimal.NewFromInt(95),
	SinglePatti: decimal.NewFromInt(150),
	DoublePatti: decimal.NewFromInt(300),
	TriplePatti: decimal.NewFromInt(1000),
	HalfSangam:  decimal.NewFromInt(1000),
	FullSangam:  decimal.NewFromInt(10000),
}

func InferBetKind(number string) Kind {
	number = strings.TrimSpace(number)
	if left, right, ok := strings.Cut(number, "-"); ok {
		switch {
		case isPanaShape(left) && panarules.IsValidSingleDigit(right):
			return KindHalfSangamOpen
		case panarules.IsValidSingleDigit(left) && isPanaShape(right):
			return KindHalfSangamClose
		case isPanaShape(left) && isPanaShape(right):
			return KindFullSangam
		}
		return KindUnknown
	}
	switch {
	case panarules.IsValidSingleDigit(number):
		return KindDigit
	case panarules.IsValidJodi(number):
		return KindJodi
	case isPanaShape(number):
		return KindPanna
	}
	return KindUnknown
}

func isPanaShape(s string) bool {
	return panarules.SumDigitOf(s) >= 0
}

func isClose(session string) bool {
	return strings.EqualFold(strings.TrimSpace(session), "close")
}

func orDefault(v, def decimal.Decimal) decimal.Decimal {
	if v.IsPositive() {
		return v
	}
	return def
}

// Multiplier picks the payout rate for a bet; panna rates depend on the
// pana class. A nil table falls back to DefaultRates.
func Multiplier(kind Kind, number string, rates *models.Rates) decimal.Decimal {
	r := DefaultRates
	if rates != nil {
		r = models.Rates{
			Single:      orDefault(rates.Single, DefaultRates.Single),
			Jodi:        orDefault(rates.Jodi, DefaultRates.Jodi),
			SinglePatti: orDefault(rates.SinglePatti, DefaultRates.SinglePatti),
			DoublePatti: orDefault(rates.DoublePatti, DefaultRates.DoublePatti),
			TriplePatti: orDefault(rates.TriplePatti, DefaultRates.TriplePatti),
			HalfSangam:  orDefault(rates.HalfSangam, DefaultRates.HalfSangam),
			FullSangam:  orDefault(rates.FullSangam, DefaultRates.FullSangam),
		}
	}
	switch kind {
	case KindDigit:
		return r.Single
	case KindJodi:
		return r.Jodi
	case KindPanna:
		switch panarules.Classify(strings.TrimSpace(number)) {
		case panarules.TriplePana:
			return r.TriplePatti
		case panarules.DoublePana:
			return r.DoublePatti
		default:
			return r.SinglePatti
		}
	case KindHalfSangamOpen, KindHalfSangamClose:
		return r.HalfSangam
	case KindFullSangam:
		return r.FullSangam
	}
	return decimal.Zero
}

func ank(pana string) string {
	d := panarules.SumDigitOf(pana)
	if d < 0 {
		return ""
	}
	return string(rune('0' + d))
}

// winningValue returns the number that wins for kind, and false while the
// legs it depends on are undeclared.
func winningValue(kind Kind, session string, result models.MarketResult) (string, bool) {
	opening := strings.TrimSpace(result.OpeningNumber)
	closing := strings.TrimSpace(result.ClosingNumber)
	openDigit, closeDigit := ank(opening), ank(closing)
	switch kind {
	case KindDigit:
		if isClose(session) {
			return closeDigit, closeDigit != ""
		}
		return openDigit, openDigit != ""
	case KindJodi:
		return openDigit + closeDigit, openDigit != "" && closeDigit != ""
	case KindPanna:
		if isClose(session) {
			return closing, closeDigit != ""
		}
		return opening, openDigit != ""
	case KindFullSangam:
		return opening + "-" + closing, openDigit != "" && closeDigit != ""
	case KindHalfSangamOpen:
		return opening + "-" + openDigit, openDigit != ""
	case KindHalfSangamClose:
		return openDigit + "-" + closing, openDigit != "" && closeDigit != ""
	}
	return "", false
}

// Predict compares a bet against the declared result.
func Predict(bet Bet, result *models.MarketResult, rates *models.Rates) Prediction {
	number := strings.TrimSpace(bet.BetNumber)
	kind := InferBetKind(number)
	p := Prediction{State: Pending, Kind: kind, Multiplier: decimal.Zero, Payout: decimal.Zero}
	if kind == KindUnknown || result == nil {
		return p
	}
	winning, declared := winningValue(kind, bet.Session, *result)
	if !declared {
		return p
	}
	p.Winning = winning
	if number != winning {
		p.State = Lost
		return p
	}
	p.State = Won
	p.Multiplier = Multiplier(kind, number, rates)
	p.Payout = decimal.NewFromInt(bet.Amount).Mul(p.Multiplier)
	return p
}
