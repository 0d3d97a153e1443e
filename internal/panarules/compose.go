package panarules

import (
	"strconv"
	"strings"
)

// AnkOf is the single digit a declared pana contributes to the jodi.
func AnkOf(pana string) (string, error) {
	d := SumDigitOf(pana)
	if d < 0 {
		return "", ErrInvalidPana
	}
	return strconv.Itoa(d), nil
}

// JodiOf joins the open and close ank of two declared panas.
func JodiOf(openPana, closePana string) (string, error) {
	open, err := AnkOf(openPana)
	if err != nil {
		return "", err
	}
	cl, err := AnkOf(closePana)
	if err != nil {
		return "", err
	}
	return open + cl, nil
}

// HalfSangamOpen builds "<pana>-<ank>". An empty ank is derived from the pana.
func HalfSangamOpen(pana, ank string) (string, error) {
	pana = strings.TrimSpace(pana)
	if !IsValidAnyPana(pana) {
		return "", ErrInvalidPana
	}
	ank = strings.TrimSpace(ank)
	if ank == "" {
		ank, _ = AnkOf(pana)
	}
	if !IsValidSingleDigit(ank) {
		return "", ErrInvalidAnk
	}
	return pana + "-" + ank, nil
}

// HalfSangamClose builds "<ank>-<pana>". An empty ank is derived from the pana.
func HalfSangamClose(ank, pana string) (string, error) {
	pana = strings.TrimSpace(pana)
	if !IsValidAnyPana(pana) {
		return "", ErrInvalidPana
	}
	ank = strings.TrimSpace(ank)
	if ank == "" {
		ank, _ = AnkOf(pana)
	}
	if !IsValidSingleDigit(ank) {
		return "", ErrInvalidAnk
	}
	return ank + "-" + pana, nil
}

func FullSangam(openPana, closePana string) (string, error) {
	openPana = strings.TrimSpace(openPana)
	closePana = strings.TrimSpace(closePana)
	if !IsValidAnyPana(openPana) || !IsValidAnyPana(closePana) {
		return "", ErrInvalidPana
	}
	return openPana + "-" + closePana, nil
}

// SplitHalfSangam accepts either "AAA-B" or "B-AAA" and returns the pana and ank.
func SplitHalfSangam(s string) (pana, ank string, ok bool) {
	left, right, found := strings.Cut(strings.TrimSpace(s), "-")
	if !found {
		return "", "", false
	}
	switch {
	case IsValidAnyPana(left) && IsValidSingleDigit(right):
		return left, right, true
	case IsValidSingleDigit(left) && IsValidAnyPana(right):
		return right, left, true
	}
	return "", "", false
}

func SplitFullSangam(s string) (open, closePana string, ok bool) {
	left, right, found := strings.Cut(strings.TrimSpace(s), "-")
	if !found || !IsValidAnyPana(left) || !IsValidAnyPana(right) {
		return "", "", false
	}
	return left, right, true
}
