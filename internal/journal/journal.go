// Package journal keeps a local MySQL record of every slip the backend
// confirmed, so an operator can see what each panel submitted.
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"matka/internal/logger"
	"matka/internal/submit"
)

const Schema = `CREATE TABLE IF NOT EXISTS bet_slips (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	actor_id VARCHAR(64) NOT NULL,
	player_id VARCHAR(64) NOT NULL DEFAULT '',
	bookie TINYINT(1) NOT NULL DEFAULT 0,
	market_id VARCHAR(64) NOT NULL,
	bet_count INT NOT NULL,
	total_points BIGINT NOT NULL,
	payload JSON NOT NULL,
	new_balance VARCHAR(32) NULL,
	scheduled_date VARCHAR(10) NOT NULL DEFAULT '',
	created_at DATETIME(3) NOT NULL,
	KEY idx_actor_created (actor_id, created_at)
)`

type Slip struct {
	ID            int64           `json:"id"`
	ActorID       string          `json:"actorId"`
	PlayerID      string          `json:"playerId,omitempty"`
	Bookie        bool            `json:"bookie"`
	MarketID      string          `json:"marketId"`
	Count         int             `json:"count"`
	Total         int64           `json:"total"`
	Payload       json.RawMessage `json:"payload"`
	NewBalance    string          `json:"newBalance,omitempty"`
	ScheduledDate string          `json:"scheduledDate,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

type Journal struct {
	DB  *sql.DB
	log *logger.Entry
}

func New(db *sql.DB) *Journal {
	return &Journal{DB: db, log: logger.GetLogger().WithComponent("journal")}
}

func (j *Journal) Migrate(ctx context.Context) error {
	if j == nil || j.DB == nil {
		return nil
	}
	_, err := j.DB.ExecContext(ctx, Schema)
	return err
}

// FromReceipt maps a confirmed submission to its journal row.
func FromReceipt(r submit.Receipt) (Slip, error) {
	payload, err := json.Marshal(r.Payload)
	if err != nil {
		return Slip{}, err
	}
	slip := Slip{
		ActorID:       r.ActorID,
		PlayerID:      r.PlayerID,
		Bookie:        r.Bookie,
		MarketID:      r.Payload.MarketID,
		Count:         r.Count,
		Total:         r.Total,
		Payload:       payload,
		ScheduledDate: r.Payload.ScheduledDate,
		CreatedAt:     r.PlacedAt,
	}
	if r.NewBalance != nil {
		slip.NewBalance = r.NewBalance.String()
	}
	return slip, nil
}

func (j *Journal) Record(ctx context.Context, slip Slip) (int64, error) {
	var balance sql.NullString
	if slip.NewBalance != "" {
		balance = sql.NullString{String: slip.NewBalance, Valid: true}
	}
	res, err := j.DB.ExecContext(ctx, `INSERT INTO bet_slips (actor_id, player_id, bookie, market_id, bet_count, total_points, payload, new_balance, scheduled_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		slip.ActorID, slip.PlayerID, slip.Bookie, slip.MarketID, slip.Count, slip.Total, string(slip.Payload), balance, slip.ScheduledDate, slip.CreatedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Placed records a confirmed submission. Failures are logged, never surfaced:
// the bets are already placed.
func (j *Journal) Placed(ctx context.Context, r submit.Receipt) {
	if j == nil || j.DB == nil {
		return
	}
	slip, err := FromReceipt(r)
	if err == nil {
		_, err = j.Record(ctx, slip)
	}
	if err != nil {
		j.log.WithError(err).WithFields(logger.Fields{
			"actor_id":  r.ActorID,
			"market_id": r.Payload.MarketID,
		}).Error("journal write failed")
	}
}

func (j *Journal) List(ctx context.Context, actorID string, limit int) ([]Slip, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := j.DB.QueryContext(ctx, `SELECT id, actor_id, player_id, bookie, market_id, bet_count, total_points, payload, new_balance, scheduled_date, created_at
		FROM bet_slips WHERE actor_id=? ORDER BY id DESC LIMIT ?`, actorID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := make([]Slip, 0)
	for rows.Next() {
		var s Slip
		var payload string
		var balance sql.NullString
		if err := rows.Scan(&s.ID, &s.ActorID, &s.PlayerID, &s.Bookie, &s.MarketID, &s.Count, &s.Total, &payload, &balance, &s.ScheduledDate, &s.CreatedAt); err != nil {
			return nil, err
		}
		s.Payload = json.RawMessage(payload)
		s.NewBalance = balance.String
		list = append(list, s)
	}
	return list, rows.Err()
}
