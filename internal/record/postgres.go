package record

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/park285/chess-arena/internal/arena"
)

// Repository persists match rows to Postgres. Expected schema:
//
//	CREATE TABLE matches (
//	    match_id        TEXT PRIMARY KEY,
//	    room_id         TEXT NOT NULL,
//	    variant         TEXT,
//	    rated           BOOLEAN NOT NULL DEFAULT FALSE,
//	    games_count     INTEGER NOT NULL DEFAULT 1,
//	    color_mode      TEXT,
//	    white_id        TEXT NOT NULL,
//	    black_id        TEXT NOT NULL,
//	    white_time      INTEGER, white_increment INTEGER,
//	    black_time      INTEGER, black_increment INTEGER,
//	    result          TEXT,
//	    result_reason   TEXT,
//	    winner          TEXT,
//	    moves_uci       TEXT,
//	    started_at      TIMESTAMPTZ,
//	    ended_at        TIMESTAMPTZ,
//	    duration_ms     BIGINT
//	);
type Repository struct {
	db *sql.DB
}

func NewRepository(databaseURL string) (*Repository, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(8)
	db.SetConnMaxLifetime(30 * time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *Repository) RecordMatchStart(ctx context.Context, m arena.MatchStart) error {
	if r == nil || r.db == nil {
		return nil
	}
	q := `INSERT INTO matches (
	    match_id, room_id, variant, rated, games_count, color_mode,
	    white_id, black_id,
	    white_time, white_increment, black_time, black_increment,
	    started_at
	  ) VALUES (
	    $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13
	  ) ON CONFLICT (match_id) DO NOTHING`
	_, err := r.db.ExecContext(ctx, q,
		m.MatchID, m.RoomID, m.Variant, m.Rated, m.GamesCount, m.ColorMode,
		m.WhiteID, m.BlackID,
		m.WhiteClock.Base, m.WhiteClock.Increment, m.BlackClock.Base, m.BlackClock.Increment,
		m.StartedAt,
	)
	return err
}

func (r *Repository) RecordResult(ctx context.Context, m arena.MatchResult) error {
	if r == nil || r.db == nil {
		return nil
	}
	movesRaw, _ := json.Marshal(m.MovesUCI)
	q := `UPDATE matches SET
	    result = $2,
	    result_reason = $3,
	    winner = $4,
	    moves_uci = $5,
	    ended_at = $6,
	    duration_ms = GREATEST(0, EXTRACT(EPOCH FROM ($6::timestamptz - started_at)) * 1000)::bigint
	  WHERE match_id = $1`
	res, err := r.db.ExecContext(ctx, q,
		m.MatchID, resultToken(m), strings.TrimSpace(m.Reason), m.Winner, string(movesRaw), m.FinishedAt,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("match %s not recorded", m.MatchID)
	}
	return nil
}

// resultToken collapses the terminal reason into win/draw for reporting.
func resultToken(m arena.MatchResult) string {
	if strings.TrimSpace(m.Winner) != "" {
		return "win"
	}
	return "draw"
}
