package panarules

import (
	"fmt"
	"testing"
)

func TestDoublePanaTruthTable(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"550", true},  // a==b, c==0
		{"551", false}, // c < a
		{"100", true},  // b==0, c==0
		{"500", true},
		{"112", true}, // c > a
		{"122", true}, // b==c, c > a
		{"211", false},
		{"990", true},
		{"899", true},
		{"001", false}, // leading zero
		{"000", false},
		{"111", false}, // triple
		{"123", false}, // no repeat
		{"121", false}, // repeat not adjacent
		{"12", false},
		{"1a1", false},
	}
	for _, tc := range cases {
		if got := IsValidDoublePana(tc.in); got != tc.want {
			t.Errorf("IsValidDoublePana(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestClassificationIsExclusive(t *testing.T) {
	counts := map[PanaClass]int{}
	for i := 0; i < 1000; i++ {
		s := fmt.Sprintf("%03d", i)
		hits := 0
		for _, ok := range []bool{IsValidSinglePana(s), IsValidDoublePana(s), IsValidTriplePana(s)} {
			if ok {
				hits++
			}
		}
		if hits > 1 {
			t.Fatalf("%s matches %d classes", s, hits)
		}
		if IsValidAnyPana(s) != (hits == 1) {
			t.Fatalf("IsValidAnyPana(%s) disagrees with predicates", s)
		}
		counts[Classify(s)]++
	}
	if counts[SinglePana] != 120 || counts[DoublePana] != 90 || counts[TriplePana] != 10 {
		t.Fatalf("unexpected class counts: %v", counts)
	}
	if Classify("111") != TriplePana {
		t.Fatalf("111 should be triple")
	}
}

func TestSinglePanaChart(t *testing.T) {
	if !IsValidSinglePana("127") {
		t.Fatalf("127 should be a chart number")
	}
	if IsValidSinglePana("721") {
		t.Fatalf("721 is not a chart number")
	}
	for g := 0; g < 10; g++ {
		for _, n := range SinglePanaGroup(g) {
			if SumDigitOf(n) != g {
				t.Fatalf("%s listed under group %d", n, g)
			}
		}
	}
	if SinglePanaGroup(10) != nil {
		t.Fatalf("out of range group should be nil")
	}
}

func TestSumDigitOf(t *testing.T) {
	if got := SumDigitOf("678"); got != 1 {
		t.Fatalf("SumDigitOf(678) = %d, want 1", got)
	}
	if got := SumDigitOf("12"); got != -1 {
		t.Fatalf("SumDigitOf(12) = %d, want -1", got)
	}
}

func TestFindPanaBySumMatchesRawAndUnitDigit(t *testing.T) {
	got := FindPanaBySum([]string{"124", "179", "890", "123", "bad"}, 7)
	want := []string{"124", "179", "890"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
	if n := len(FindPanaBySum(SinglePanas(), 7)); n != 12 {
		t.Fatalf("sum 7 single panas = %d, want 12", n)
	}
}

func TestComposition(t *testing.T) {
	hs, err := HalfSangamOpen("129", "")
	if err != nil || hs != "129-2" {
		t.Fatalf("HalfSangamOpen = %q, %v", hs, err)
	}
	hc, err := HalfSangamClose("4", "347")
	if err != nil || hc != "4-347" {
		t.Fatalf("HalfSangamClose = %q, %v", hc, err)
	}
	if _, err := HalfSangamOpen("129", "x"); err != ErrInvalidAnk {
		t.Fatalf("expected ErrInvalidAnk, got %v", err)
	}
	if _, err := FullSangam("129", "721"); err != ErrInvalidPana {
		t.Fatalf("expected ErrInvalidPana, got %v", err)
	}
	jodi, err := JodiOf("129", "678")
	if err != nil || jodi != "21" {
		t.Fatalf("JodiOf = %q, %v", jodi, err)
	}
}

func TestValidFor(t *testing.T) {
	cases := []struct {
		betType, number string
		want            bool
	}{
		{BetSingle, "5", true},
		{BetSingle, "55", false},
		{BetJodi, "07", true},
		{BetPanna, "550", true},
		{BetPanna, "551", false},
		{BetHalfSangam, "129-2", true},
		{BetHalfSangam, "2-129", true},
		{BetHalfSangam, "129-22", false},
		{BetFullSangam, "129-347", true},
		{BetFullSangam, "129-34", false},
		{"unknown", "1", false},
	}
	for _, tc := range cases {
		if got := ValidFor(tc.betType, tc.number); got != tc.want {
			t.Errorf("ValidFor(%s, %s) = %v, want %v", tc.betType, tc.number, got, tc.want)
		}
	}
}
