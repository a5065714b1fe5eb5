package arena

import (
	"context"
	"time"
)

// Status is the room lifecycle state. Transitions only move forward:
// pending → connected → finished, or pending/connected → removed.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConnected Status = "connected"
	StatusFinished  Status = "finished"
	StatusRemoved   Status = "removed"
)

// Color identifies a seat.
type Color string

const (
	White Color = "white"
	Black Color = "black"
)

func (c Color) Opposite() Color {
	if c == White {
		return Black
	}
	return White
}

// ColorMode controls seat assignment when the second participant joins.
type ColorMode string

const (
	// ModeWhite and ModeBlack fix the creator's color; the joiner takes the
	// other seat. ModeRandom flips an unbiased coin between the two orderings.
	ModeWhite  ColorMode = "white"
	ModeBlack  ColorMode = "black"
	ModeRandom ColorMode = "random"
)

// ParseColorMode normalizes a textual mode. The comparison is done once here
// so the rest of the core only ever sees the typed value.
func ParseColorMode(s string) (ColorMode, error) {
	switch ColorMode(s) {
	case ModeWhite, ModeBlack, ModeRandom:
		return ColorMode(s), nil
	case "":
		return ModeRandom, nil
	}
	return "", ErrInvalidColorMode
}

// TimeControl is clock bookkeeping in seconds. The core records it and hands
// it to clients and the recorder; it does not enforce clocks.
type TimeControl struct {
	Base      int `json:"time"`
	Increment int `json:"increment"`
}

// MoveRecord is one applied move; the log is append-only.
type MoveRecord struct {
	UCI      string
	SAN      string
	Color    Color
	PlayedAt time.Time
}

// CreateParams describes an explicit create request. Zero clock values fall
// back to the variant defaults.
type CreateParams struct {
	Variant       string
	Rated         bool
	GamesCount    int
	Armageddon    bool
	ColorMode     ColorMode
	CreatorClock  TimeControl
	OpponentClock TimeControl
	StartFEN      string
}

type staticErr string

func (e staticErr) Error() string { return string(e) }

var (
	ErrRoomNotFound     = staticErr("room not found")
	ErrUnknownVariant   = staticErr("unknown game variant")
	ErrInvalidColorMode = staticErr("invalid color assignment mode")
	ErrOwnRoom          = staticErr("cannot join own pending room")
	ErrInvalidIdentity  = staticErr("identity required")
)

// RejectError is a move-path rejection delivered to the acting identity only.
// It carries the authoritative position so the client can resynchronize; the
// room state did not change.
type RejectError struct {
	Reason  string // arenadto.Reason* token
	Message string
	FEN     string
}

func (e *RejectError) Error() string { return e.Message }

// MatchStart is handed to the Recorder when a room is seated.
type MatchStart struct {
	MatchID    string
	RoomID     string
	Variant    string
	Rated      bool
	GamesCount int
	ColorMode  string
	WhiteID    string
	BlackID    string
	WhiteClock TimeControl
	BlackClock TimeControl
	StartedAt  time.Time
}

// MatchResult is handed to the Recorder when a room reaches a terminal state.
// Winner is empty for draws.
type MatchResult struct {
	MatchID    string
	RoomID     string
	Reason     string
	Winner     string
	MovesUCI   []string
	FinishedAt time.Time
}

// Recorder is the external persistence collaborator. Calls are fire-and-forget
// from the room's perspective: failures are logged by the registry and never
// rolled back into room state.
type Recorder interface {
	RecordMatchStart(ctx context.Context, m MatchStart) error
	RecordResult(ctx context.Context, m MatchResult) error
}
