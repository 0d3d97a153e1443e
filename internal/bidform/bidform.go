// Package bidform drives every bid-entry form from one declarative catalog:
// which input a game type takes, how its number is validated or composed,
// whether it supports keypad bulk entry, and when it stops being biddable.
package bidform

import (
	_ "embed"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"matka/internal/cart"
	"matka/internal/markettime"
	"matka/internal/models"
	"matka/internal/panarules"
)

//go:embed catalog.yaml
var defaultCatalog []byte

const (
	InputDigit      = "digit"
	InputJodi       = "jodi"
	InputSinglePana = "single-pana"
	InputDoublePana = "double-pana"
	InputTriplePana = "triple-pana"
	InputHalfSangam = "half-sangam"
	InputFullSangam = "full-sangam"

	BulkDigits  = "digits"
	BulkJodiRow = "jodi-row"
	BulkSum     = "sum"
)

var (
	ErrUnknownGameType = errors.New("unknown game type")
	ErrBulkUnsupported = errors.New("game type has no bulk entry")
	ErrInvalidBulk     = errors.New("invalid bulk selection")
)

type GameType struct {
	Key      string `yaml:"key" json:"key"`
	Label    string `yaml:"label" json:"label"`
	BetType  string `yaml:"bet_type" json:"betType"`
	Input    string `yaml:"input" json:"input"`
	Bulk     string `yaml:"bulk,omitempty" json:"bulk,omitempty"`
	BothLegs bool   `yaml:"both_legs,omitempty" json:"bothLegs"`
}

type Catalog struct {
	types []GameType
	byKey map[string]GameType
}

// RawEntry is one row of a bid form before validation. Composite games fill
// the part fields instead of Number.
type RawEntry struct {
	Number    string `json:"number"`
	Points    string `json:"points"`
	Session   string `json:"session"`
	Pana      string `json:"pana,omitempty"`
	Ank       string `json:"ank,omitempty"`
	Side      string `json:"side,omitempty"` // half sangam: "open" => pana-ank, "close" => ank-pana
	OpenPana  string `json:"openPana,omitempty"`
	ClosePana string `json:"closePana,omitempty"`
}

// BulkRequest is a keypad selection expanded into one entry per number.
type BulkRequest struct {
	Digits  []int  `json:"digits,omitempty"` // single digit bulk
	Row     string `json:"row,omitempty"`    // jodi row: "3x" or "x3"
	Sum     *int   `json:"sum,omitempty"`    // pana bulk
	Points  string `json:"points"`
	Session string `json:"session"`
}

func LoadCatalog(data []byte) (*Catalog, error) {
	var doc struct {
		GameTypes []GameType `yaml:"game_types"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	c := &Catalog{byKey: make(map[string]GameType, len(doc.GameTypes))}
	for _, gt := range doc.GameTypes {
		if gt.Key == "" || gt.BetType == "" {
			return nil, fmt.Errorf("catalog entry %q: key and bet_type are required", gt.Key)
		}
		if _, dup := c.byKey[gt.Key]; dup {
			return nil, fmt.Errorf("catalog entry %q: duplicate key", gt.Key)
		}
		if validatorFor(gt.Input) == nil {
			return nil, fmt.Errorf("catalog entry %q: unknown input %q", gt.Key, gt.Input)
		}
		c.types = append(c.types, gt)
		c.byKey[gt.Key] = gt
	}
	return c, nil
}

// Default returns the embedded catalog.
func Default() *Catalog {
	c, err := LoadCatalog(defaultCatalog)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalog) All() []GameType {
	return append([]GameType(nil), c.types...)
}

func (c *Catalog) Get(key string) (GameType, error) {
	gt, ok := c.byKey[strings.TrimSpace(key)]
	if !ok {
		return GameType{}, ErrUnknownGameType
	}
	return gt, nil
}

// Available lists the game types a market accepts at now. Types needing both
// legs disappear once the opening leg has passed.
func (c *Catalog) Available(m models.Market, now time.Time) []GameType {
	if markettime.Status(m, now) == models.MarketClosed {
		return nil
	}
	pastOpen := markettime.IsPastOpeningTime(m, now)
	out := make([]GameType, 0, len(c.types))
	for _, gt := range c.types {
		if gt.BothLegs && pastOpen {
			continue
		}
		out = append(out, gt)
	}
	return out
}

// Sessions lists the sides still open for new bets on m.
func Sessions(m models.Market, now time.Time) []models.Session {
	if markettime.Status(m, now) == models.MarketClosed {
		return nil
	}
	if markettime.IsPastOpeningTime(m, now) {
		return []models.Session{models.SessionClose}
	}
	return []models.Session{models.SessionOpen, models.SessionClose}
}

func validatorFor(input string) func(string) bool {
	switch input {
	case InputDigit:
		return panarules.IsValidSingleDigit
	case InputJodi:
		return panarules.IsValidJodi
	case InputSinglePana:
		return panarules.IsValidSinglePana
	case InputDoublePana:
		return panarules.IsValidDoublePana
	case InputTriplePana:
		return panarules.IsValidTriplePana
	case InputHalfSangam:
		return func(s string) bool { return panarules.ValidFor(panarules.BetHalfSangam, s) }
	case InputFullSangam:
		return func(s string) bool { return panarules.ValidFor(panarules.BetFullSangam, s) }
	}
	return nil
}

// compose fills Number for composite inputs from their parts.
func compose(gt GameType, raw RawEntry) (string, error) {
	number := strings.TrimSpace(raw.Number)
	switch gt.Input {
	case InputHalfSangam:
		if number != "" {
			return number, nil
		}
		if strings.EqualFold(strings.TrimSpace(raw.Side), "close") {
			return panarules.HalfSangamClose(raw.Ank, raw.Pana)
		}
		return panarules.HalfSangamOpen(raw.Pana, raw.Ank)
	case InputFullSangam:
		if number != "" {
			return number, nil
		}
		return panarules.FullSangam(raw.OpenPana, raw.ClosePana)
	}
	return number, nil
}

func allowedSession(session string, sessions []models.Session) (models.Session, bool) {
	s := models.Session(strings.ToUpper(strings.TrimSpace(session)))
	if s == "" {
		if len(sessions) == 0 {
			return "", false
		}
		s = sessions[0]
	}
	for _, allowed := range sessions {
		if s == allowed {
			return s, true
		}
	}
	return "", false
}

// Prepare validates raw rows for gt and returns the cart entries that pass.
// Rows with a bad number, a closed session or non-positive points are dropped
// and counted in rejected.
func Prepare(gt GameType, raws []RawEntry, sessions []models.Session) (entries []cart.Entry, rejected int) {
	valid := validatorFor(gt.Input)
	if gt.BothLegs {
		sessions = onlyOpen(sessions)
	}
	for _, raw := range raws {
		number, err := compose(gt, raw)
		if err != nil || valid == nil || !valid(number) {
			rejected++
			continue
		}
		if gt.BothLegs {
			raw.Session = ""
		}
		session, ok := allowedSession(raw.Session, sessions)
		if !ok {
			rejected++
			continue
		}
		if pts, err := strconv.ParseInt(strings.TrimSpace(raw.Points), 10, 64); err != nil || pts <= 0 {
			rejected++
			continue
		}
		entries = append(entries, cart.Entry{Number: number, Points: raw.Points, Session: string(session)})
	}
	return entries, rejected
}

func onlyOpen(sessions []models.Session) []models.Session {
	for _, s := range sessions {
		if s == models.SessionOpen {
			return []models.Session{models.SessionOpen}
		}
	}
	return nil
}

// universe is the number pool a pana bulk keypad draws from.
func universe(gt GameType) []string {
	switch gt.Input {
	case InputSinglePana:
		return panarules.SinglePanas()
	case InputDoublePana:
		return panarules.DoublePanas()
	case InputTriplePana:
		return panarules.TriplePanas()
	}
	return nil
}

// ExpandBulk turns a keypad selection into raw rows ready for Prepare.
func ExpandBulk(gt GameType, req BulkRequest) ([]RawEntry, error) {
	var numbers []string
	switch gt.Bulk {
	case BulkDigits:
		if len(req.Digits) == 0 {
			return nil, ErrInvalidBulk
		}
		seen := make(map[int]bool, len(req.Digits))
		for _, d := range req.Digits {
			if d < 0 || d > 9 {
				return nil, ErrInvalidBulk
			}
			if seen[d] {
				continue
			}
			seen[d] = true
			numbers = append(numbers, strconv.Itoa(d))
		}
	case BulkJodiRow:
		row := strings.ToLower(strings.TrimSpace(req.Row))
		if len(row) != 2 {
			return nil, ErrInvalidBulk
		}
		switch {
		case row[1] == 'x' && row[0] >= '0' && row[0] <= '9':
			for d := byte('0'); d <= '9'; d++ {
				numbers = append(numbers, string([]byte{row[0], d}))
			}
		case row[0] == 'x' && row[1] >= '0' && row[1] <= '9':
			for d := byte('0'); d <= '9'; d++ {
				numbers = append(numbers, string([]byte{d, row[1]}))
			}
		default:
			return nil, ErrInvalidBulk
		}
	case BulkSum:
		if req.Sum == nil || *req.Sum < 0 || *req.Sum > 27 {
			return nil, ErrInvalidBulk
		}
		numbers = panarules.FindPanaBySum(universe(gt), *req.Sum)
	default:
		return nil, ErrBulkUnsupported
	}
	raws := make([]RawEntry, 0, len(numbers))
	for _, n := range numbers {
		raws = append(raws, RawEntry{Number: n, Points: req.Points, Session: req.Session})
	}
	return raws, nil
}
