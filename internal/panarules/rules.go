// Package panarules classifies bet numbers and derives jodi, ank and sangam
// values from declared panas.
package panarules

import (
	"errors"
	"strings"
)

// Bet types as the placement API names them.
const (
	BetSingle     = "single"
	BetJodi       = "jodi"
	BetPanna      = "panna"
	BetHalfSangam = "half-sangam"
	BetFullSangam = "full-sangam"
)

type PanaClass int

const (
	NotPana PanaClass = iota
	SinglePana
	DoublePana
	TriplePana
)

func (c PanaClass) String() string {
	switch c {
	case SinglePana:
		return "single"
	case DoublePana:
		return "double"
	case TriplePana:
		return "triple"
	default:
		return "invalid"
	}
}

var (
	ErrInvalidPana   = errors.New("invalid pana")
	ErrInvalidAnk    = errors.New("invalid ank")
	ErrInvalidNumber = errors.New("invalid bet number")
)

func isDigits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for i := 0; i < n; i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func IsValidSingleDigit(s string) bool {
	return isDigits(s, 1)
}

func IsValidJodi(s string) bool {
	return isDigits(s, 2)
}

// IsValidSinglePana reports membership in the fixed single pana chart. Distinct
// digits alone are not enough: "721" is not a chart number, "127" is.
func IsValidSinglePana(s string) bool {
	return isDigits(s, 3) && singlePanaSet[s]
}

// IsValidDoublePana applies the historical double pana rule. The branch order
// matters: 550 passes on the trailing zero branch, 551 fails all three.
func IsValidDoublePana(s string) bool {
	if !isDigits(s, 3) {
		return false
	}
	a, b, c := s[0]-'0', s[1]-'0', s[2]-'0'
	hasConsecutiveSame := a == b || b == c
	if !hasConsecutiveSame || a == 0 {
		return false
	}
	return (b == 0 && c == 0) || (a == b && c == 0) || c > a
}

func IsValidTriplePana(s string) bool {
	return isDigits(s, 3) && s[0] == s[1] && s[1] == s[2]
}

func IsValidAnyPana(s string) bool {
	return Classify(s) != NotPana
}

func Classify(s string) PanaClass {
	switch {
	case IsValidTriplePana(s):
		return TriplePana
	case IsValidDoublePana(s):
		return DoublePana
	case IsValidSinglePana(s):
		return SinglePana
	default:
		return NotPana
	}
}

func digitSum(s string) int {
	sum := 0
	for i := 0; i < len(s); i++ {
		sum += int(s[i] - '0')
	}
	return sum
}

// SumDigitOf returns the unit digit of the digit sum, or -1 when s is not three digits.
func SumDigitOf(pana string) int {
	if !isDigits(pana, 3) {
		return -1
	}
	return digitSum(pana) % 10
}

// FindPanaBySum keeps numbers whose raw digit sum or its unit digit equals
// target, so a "7" bucket catches panas summing to 7 and to 17.
func FindPanaBySum(universe []string, target int) []string {
	out := make([]string, 0)
	for _, n := range universe {
		if !isDigits(n, 3) {
			continue
		}
		sum := digitSum(n)
		if sum == target || sum%10 == target {
			out = append(out, n)
		}
	}
	return out
}

// ValidFor reports whether number is well formed for the API bet type.
func ValidFor(betType, number string) bool {
	number = strings.TrimSpace(number)
	switch betType {
	case BetSingle:
		return IsValidSingleDigit(number)
	case BetJodi:
		return IsValidJodi(number)
	case BetPanna:
		return IsValidAnyPana(number)
	case BetHalfSangam:
		_, _, ok := SplitHalfSangam(number)
		return ok
	case BetFullSangam:
		_, _, ok := SplitFullSangam(number)
		return ok
	default:
		return false
	}
}
