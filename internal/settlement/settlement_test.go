package settlement

import (
	"testing"

	"github.com/shopspring/decimal"

	"matka/internal/models"
)

func TestInferBetKind(t *testing.T) {
	cases := map[string]Kind{
		"5":       KindDigit,
		"57":      KindJodi,
		"347":     KindPanna,
		"129-2":   KindHalfSangamOpen,
		"2-129":   KindHalfSangamClose,
		"129-347": KindFullSangam,
		"12-3":    KindUnknown,
		"abc":     KindUnknown,
		"":        KindUnknown,
		"1234":    KindUnknown,
	}
	for in, want := range cases {
		if got := InferBetKind(in); got != want {
			t.Errorf("InferBetKind(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestPannaWinUsesSinglePattiRate(t *testing.T) {
	rates := &models.Rates{SinglePatti: decimal.NewFromInt(140)}
	p := Predict(Bet{BetNumber: "347", Amount: 10, Session: "OPEN"}, &models.MarketResult{OpeningNumber: "347"}, rates)
	if p.State != Won || p.Kind != KindPanna {
		t.Fatalf("prediction = %+v", p)
	}
	if !p.Payout.Equal(decimal.NewFromInt(1400)) {
		t.Fatalf("payout = %s, want 1400", p.Payout)
	}
}

func TestPannaRateByClass(t *testing.T) {
	if m := Multiplier(KindPanna, "550", nil); !m.Equal(DefaultRates.DoublePatti) {
		t.Fatalf("550 multiplier = %s", m)
	}
	if m := Multiplier(KindPanna, "777", nil); !m.Equal(DefaultRates.TriplePatti) {
		t.Fatalf("777 multiplier = %s", m)
	}
	if m := Multiplier(KindUnknown, "x", nil); !m.IsZero() {
		t.Fatalf("unknown multiplier = %s", m)
	}
}

func TestPredictOutcomes(t *testing.T) {
	declared := &models.MarketResult{OpeningNumber: "129", ClosingNumber: "347"} // 2 and 4
	openOnly := &models.MarketResult{OpeningNumber: "129"}
	cases := []struct {
		name   string
		bet    Bet
		result *models.MarketResult
		state  State
	}{
		{"digit open win", Bet{BetNumber: "2", Session: "OPEN"}, openOnly, Won},
		{"digit close pending", Bet{BetNumber: "4", Session: "CLOSE"}, openOnly, Pending},
		{"digit close win", Bet{BetNumber: "4", Session: "close"}, declared, Won},
		{"digit lost", Bet{BetNumber: "3", Session: "OPEN"}, declared, Lost},
		{"jodi pending", Bet{BetNumber: "24"}, openOnly, Pending},
		{"jodi win", Bet{BetNumber: "24"}, declared, Won},
		{"jodi lost", Bet{BetNumber: "42"}, declared, Lost},
		{"panna close win", Bet{BetNumber: "347", Session: "CLOSE"}, declared, Won},
		{"full sangam win", Bet{BetNumber: "129-347"}, declared, Won},
		{"half open win", Bet{BetNumber: "129-2"}, declared, Won},
		{"half open settles on opening leg", Bet{BetNumber: "129-2"}, openOnly, Won},
		{"half open lost on opening leg", Bet{BetNumber: "129-3"}, openOnly, Lost},
		{"half close pending", Bet{BetNumber: "2-347"}, openOnly, Pending},
		{"half close win", Bet{BetNumber: "2-347"}, declared, Won},
		{"half close lost", Bet{BetNumber: "4-347"}, declared, Lost},
		{"no result", Bet{BetNumber: "2"}, nil, Pending},
		{"unknown shape", Bet{BetNumber: "12-3"}, declared, Pending},
		{"garbage result", Bet{BetNumber: "2"}, &models.MarketResult{OpeningNumber: "1x9"}, Pending},
	}
	for _, tc := range cases {
		tc.bet.Amount = 10
		p := Predict(tc.bet, tc.result, nil)
		if p.State != tc.state {
			t.Errorf("%s: state = %s, want %s", tc.name, p.State, tc.state)
		}
		if p.State != Won && !p.Payout.IsZero() {
			t.Errorf("%s: payout %s on non-win", tc.name, p.Payout)
		}
	}
}

func TestHalfSangamPayoutUsesDefaultRate(t *testing.T) {
	p := Predict(Bet{BetNumber: "129-2", Amount: 5}, &models.MarketResult{OpeningNumber: "129", ClosingNumber: "347"}, &models.Rates{})
	if !p.Payout.Equal(decimal.NewFromInt(5000)) {
		t.Fatalf("payout = %s, want 5000", p.Payout)
	}
}
