package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Market struct {
	ID            string  `json:"_id"`
	MarketName    string  `json:"marketName"`
	StartingTime  string  `json:"startingTime"` // HH:MM, IST
	ClosingTime   string  `json:"closingTime"`  // HH:MM, IST
	OpeningNumber *string `json:"openingNumber"`
	ClosingNumber *string `json:"closingNumber"`
	IsActive      *bool   `json:"isActive,omitempty"`
}

func (m Market) Opening() string {
	if m.OpeningNumber == nil {
		return ""
	}
	return *m.OpeningNumber
}

func (m Market) Closing() string {
	if m.ClosingNumber == nil {
		return ""
	}
	return *m.ClosingNumber
}

type MarketStatus string

const (
	MarketOpen    MarketStatus = "open"
	MarketRunning MarketStatus = "running"
	MarketClosed  MarketStatus = "closed"
)

type Session string

const (
	SessionOpen  Session = "OPEN"
	SessionClose Session = "CLOSE"
)

type BetLineItem struct {
	ID            string  `json:"id"`
	GameType      string  `json:"gameType"`
	GameTypeLabel string  `json:"gameTypeLabel"`
	BetType       string  `json:"betType"`
	Number        string  `json:"number"`
	Points        int64   `json:"points"`
	Session       Session `json:"session"`
}

type PlacedBet struct {
	BetType   string `json:"betType"`
	BetNumber string `json:"betNumber"`
	Amount    int64  `json:"amount"`
	BetOn     string `json:"betOn"`
}

type BetPlacementPayload struct {
	UserID        string      `json:"userId,omitempty"`
	MarketID      string      `json:"marketId"`
	Bets          []PlacedBet `json:"bets"`
	ScheduledDate string      `json:"scheduledDate,omitempty"`
}

type MarketResult struct {
	MarketID      string `json:"marketId,omitempty"`
	MarketName    string `json:"marketName,omitempty"`
	OpeningNumber string `json:"openingNumber,omitempty"`
	ClosingNumber string `json:"closingNumber,omitempty"`
}

type Rates struct {
	Single      decimal.Decimal `json:"single"`
	Jodi        decimal.Decimal `json:"jodi"`
	SinglePatti decimal.Decimal `json:"singlePatti"`
	DoublePatti decimal.Decimal `json:"doublePatti"`
	TriplePatti decimal.Decimal `json:"triplePatti"`
	HalfSangam  decimal.Decimal `json:"halfSangam"`
	FullSangam  decimal.Decimal `json:"fullSangam"`
}

type Player struct {
	ID       string          `json:"_id"`
	Username string          `json:"username"`
	Phone    string          `json:"phone,omitempty"`
	Balance  decimal.Decimal `json:"balance"`
	IsActive bool            `json:"isActive"`
}

// BetRecord is a placed bet. ScheduledDate is set on bets placed for a
// later IST day.
type BetRecord struct {
	ID            string    `json:"_id"`
	MarketID      string    `json:"marketId"`
	MarketName    string    `json:"marketName,omitempty"`
	BetType       string    `json:"betType"`
	BetNumber     string    `json:"betNumber"`
	Amount        int64     `json:"amount"`
	BetOn         string    `json:"betOn"`
	CreatedAt     time.Time `json:"createdAt"`
	ScheduledDate string    `json:"scheduledDate,omitempty"`
}

type Transaction struct {
	ID          string          `json:"_id"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	Bet         *BetRecord      `json:"bet,omitempty"`
}
