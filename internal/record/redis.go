package record

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/park285/chess-arena/internal/arena"
)

const ttlMatch = 24 * time.Hour

// RedisStore archives match metadata as JSON with a TTL, indexed per
// participant and per room.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(redisURL string) (*RedisStore, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, fmt.Errorf("REDIS_URL required for match store")
	}
	opts, err := parseRedisURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisStore{rdb: rdb}, nil
}

func (s *RedisStore) Close() error {
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.Close()
}

// matchRecord is the stored shape of one match.
type matchRecord struct {
	MatchID        string    `json:"match_id"`
	RoomID         string    `json:"room_id"`
	Variant        string    `json:"variant"`
	Rated          bool      `json:"rated"`
	GamesCount     int       `json:"games_count"`
	ColorMode      string    `json:"color_mode"`
	WhiteID        string    `json:"white_id"`
	BlackID        string    `json:"black_id"`
	WhiteTime      int       `json:"white_time"`
	WhiteIncrement int       `json:"white_increment"`
	BlackTime      int       `json:"black_time"`
	BlackIncrement int       `json:"black_increment"`
	Status         string    `json:"status"`
	Reason         string    `json:"reason,omitempty"`
	Winner         string    `json:"winner,omitempty"`
	MovesUCI       []string  `json:"moves_uci,omitempty"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at,omitzero"`
}

func (s *RedisStore) RecordMatchStart(ctx context.Context, m arena.MatchStart) error {
	rec := matchRecord{
		MatchID:        m.MatchID,
		RoomID:         m.RoomID,
		Variant:        m.Variant,
		Rated:          m.Rated,
		GamesCount:     m.GamesCount,
		ColorMode:      m.ColorMode,
		WhiteID:        m.WhiteID,
		BlackID:        m.BlackID,
		WhiteTime:      m.WhiteClock.Base,
		WhiteIncrement: m.WhiteClock.Increment,
		BlackTime:      m.BlackClock.Base,
		BlackIncrement: m.BlackClock.Increment,
		Status:         "started",
		StartedAt:      m.StartedAt,
	}
	if err := s.save(ctx, &rec); err != nil {
		return err
	}
	return s.indexParticipants(ctx, rec.MatchID, rec.WhiteID, rec.BlackID)
}

func (s *RedisStore) RecordResult(ctx context.Context, m arena.MatchResult) error {
	rec, err := s.MatchByID(ctx, m.MatchID)
	if err != nil {
		return err
	}
	if rec == nil {
		rec = &matchRecord{MatchID: m.MatchID, RoomID: m.RoomID}
	}
	rec.Status = "finished"
	rec.Reason = m.Reason
	rec.Winner = m.Winner
	rec.MovesUCI = append([]string(nil), m.MovesUCI...)
	rec.FinishedAt = m.FinishedAt
	return s.save(ctx, rec)
}

// MatchByID returns the archived match, or nil when unknown or expired.
func (s *RedisStore) MatchByID(ctx context.Context, matchID string) (*matchRecord, error) {
	raw, err := s.rdb.Get(ctx, matchKey(matchID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var rec matchRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// MatchIDsByUser returns the ids of matches the user participated in.
func (s *RedisStore) MatchIDsByUser(ctx context.Context, userID string) ([]string, error) {
	return s.rdb.SMembers(ctx, idxUserKey(userID)).Result()
}

func (s *RedisStore) save(ctx context.Context, rec *matchRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, matchKey(rec.MatchID), raw, ttlMatch).Err()
}

func (s *RedisStore) indexParticipants(ctx context.Context, matchID string, ids ...string) error {
	for _, id := range ids {
		if strings.TrimSpace(id) == "" {
			continue
		}
		key := idxUserKey(id)
		if err := s.rdb.SAdd(ctx, key, matchID).Err(); err != nil {
			return err
		}
		// keep the index TTL aligned with the match TTL so entries don't pile up
		_ = s.rdb.Expire(ctx, key, ttlMatch).Err()
	}
	return nil
}

func matchKey(id string) string   { return "match:" + strings.TrimSpace(id) }
func idxUserKey(id string) string { return "match:index:user:" + strings.TrimSpace(id) }

func parseRedisURL(raw string) (*redis.Options, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "redis" && u.Scheme != "rediss" {
		return nil, fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	db := 0
	if p := strings.TrimPrefix(u.Path, "/"); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			db = n
		}
	}
	pass, _ := u.User.Password()
	return &redis.Options{Addr: u.Host, Password: pass, DB: db}, nil
}
