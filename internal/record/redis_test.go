package record

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/park285/chess-arena/internal/arena"
)

func newTestStore(t *testing.T) *RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	s, err := NewRedisStore("redis://" + mr.Addr())
	if err != nil {
		t.Fatalf("NewRedisStore: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleStart() arena.MatchStart {
	return arena.MatchStart{
		MatchID:    "m-1",
		RoomID:     "RM-ABC123",
		Variant:    "blitz",
		GamesCount: 1,
		ColorMode:  "white",
		WhiteID:    "alice",
		BlackID:    "bob",
		WhiteClock: arena.TimeControl{Base: 180, Increment: 2},
		BlackClock: arena.TimeControl{Base: 180, Increment: 2},
		StartedAt:  time.Now().UTC(),
	}
}

func TestRecordMatchStartAndResult(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.RecordMatchStart(ctx, sampleStart()); err != nil {
		t.Fatalf("RecordMatchStart: %v", err)
	}
	rec, err := s.MatchByID(ctx, "m-1")
	if err != nil {
		t.Fatalf("MatchByID: %v", err)
	}
	if rec == nil || rec.Status != "started" || rec.WhiteID != "alice" {
		t.Fatalf("stored record wrong: %+v", rec)
	}

	result := arena.MatchResult{
		MatchID:    "m-1",
		RoomID:     "RM-ABC123",
		Reason:     "checkmate",
		Winner:     "bob",
		MovesUCI:   []string{"f2f3", "e7e5", "g2g4", "d8h4"},
		FinishedAt: time.Now().UTC(),
	}
	if err := s.RecordResult(ctx, result); err != nil {
		t.Fatalf("RecordResult: %v", err)
	}
	rec, err = s.MatchByID(ctx, "m-1")
	if err != nil {
		t.Fatalf("MatchByID after result: %v", err)
	}
	if rec.Status != "finished" || rec.Winner != "bob" || rec.Reason != "checkmate" {
		t.Fatalf("result not applied: %+v", rec)
	}
	if len(rec.MovesUCI) != 4 {
		t.Fatalf("moves not archived: %v", rec.MovesUCI)
	}
	// the start metadata survives the result update
	if rec.Variant != "blitz" || rec.BlackID != "bob" {
		t.Fatalf("start metadata lost: %+v", rec)
	}
}

func TestParticipantIndex(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.RecordMatchStart(ctx, sampleStart()); err != nil {
		t.Fatalf("RecordMatchStart: %v", err)
	}
	for _, user := range []string{"alice", "bob"} {
		ids, err := s.MatchIDsByUser(ctx, user)
		if err != nil {
			t.Fatalf("MatchIDsByUser(%s): %v", user, err)
		}
		if !slices.Contains(ids, "m-1") {
			t.Fatalf("%s index missing m-1: %v", user, ids)
		}
	}
}

func TestResultForUnknownMatch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// a result can arrive after the start record expired; keep what we have
	result := arena.MatchResult{MatchID: "m-late", RoomID: "RM-XYZ789", Reason: "stalemate"}
	if err := s.RecordResult(ctx, result); err != nil {
		t.Fatalf("RecordResult: %v", err)
	}
	rec, err := s.MatchByID(ctx, "m-late")
	if err != nil || rec == nil {
		t.Fatalf("late result not stored: %v", err)
	}
	if rec.Status != "finished" || rec.Reason != "stalemate" {
		t.Fatalf("late result wrong: %+v", rec)
	}
}

func TestMatchByIDUnknown(t *testing.T) {
	s := newTestStore(t)
	rec, err := s.MatchByID(context.Background(), "nope")
	if err != nil || rec != nil {
		t.Fatalf("unknown match: rec=%+v err=%v", rec, err)
	}
}
