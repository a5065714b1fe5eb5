package arena

import (
	"crypto/rand"
	"math/big"
	"sync"
	"time"

	"github.com/park285/chess-arena/pkg/arenadto"
)

// Room is the per-match entity: seats, clocks, move history and status.
// All fields below mu are guarded by it; the registry locks the room around
// every transition so mutations on one room never interleave.
type Room struct {
	mu sync.Mutex

	ID         string
	Status     Status
	Variant    string
	Rated      bool
	GamesCount int
	Armageddon bool
	ColorMode  ColorMode
	CreatorID  string
	MatchID    string

	// Seats are assigned once, at seating, and never reassigned afterwards.
	Seats map[Color]string
	// Clocks holds each seated identity's time control.
	Clocks map[string]TimeControl
	// OpponentClock is the clock configured at creation for whoever joins.
	OpponentClock TimeControl

	StartFEN string
	FEN      string
	MoveLog  []MoveRecord

	CreatedAt time.Time
	UpdatedAt time.Time
}

func newRoom(id, creator string, p CreateParams, startFEN string) *Room {
	now := time.Now()
	r := &Room{
		ID:            id,
		Status:        StatusPending,
		Variant:       p.Variant,
		Rated:         p.Rated,
		GamesCount:    p.GamesCount,
		Armageddon:    p.Armageddon,
		ColorMode:     p.ColorMode,
		CreatorID:     creator,
		Seats:         make(map[Color]string, 2),
		Clocks:        map[string]TimeControl{creator: p.CreatorClock},
		OpponentClock: p.OpponentClock,
		StartFEN:      startFEN,
		FEN:           startFEN,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if r.GamesCount < 1 {
		r.GamesCount = 1
	}
	return r
}

// sideToMove derives turn from move-log parity: white when even.
func (r *Room) sideToMove() Color {
	if len(r.MoveLog)%2 == 0 {
		return White
	}
	return Black
}

func (r *Room) seated(identity string) bool {
	_, ok := r.colorOf(identity)
	return ok
}

func (r *Room) colorOf(identity string) (Color, bool) {
	for _, c := range []Color{White, Black} {
		if r.Seats[c] == identity && identity != "" {
			return c, true
		}
	}
	return "", false
}

func (r *Room) opponentOf(identity string) string {
	if c, ok := r.colorOf(identity); ok {
		return r.Seats[c.Opposite()]
	}
	return ""
}

// seatSnapshot copies the seated identities for dispatch outside the lock.
func (r *Room) seatSnapshot() []string {
	out := make([]string, 0, 2)
	for _, c := range []Color{White, Black} {
		if id := r.Seats[c]; id != "" {
			out = append(out, id)
		}
	}
	return out
}

// assignSeats fills both seats according to ColorMode. The joiner's clock is
// the room's configured opponent clock; the creator keeps the clock it set.
func (r *Room) assignSeats(joiner string) {
	creatorColor := White
	switch r.ColorMode {
	case ModeWhite:
		creatorColor = White
	case ModeBlack:
		creatorColor = Black
	default:
		if coinFlip() {
			creatorColor = Black
		}
	}
	r.Seats[creatorColor] = r.CreatorID
	r.Seats[creatorColor.Opposite()] = joiner
	r.Clocks[joiner] = r.OpponentClock
}

func coinFlip() bool {
	n, err := rand.Int(rand.Reader, big.NewInt(2))
	if err != nil {
		return time.Now().UnixNano()%2 == 0
	}
	return n.Int64() == 1
}

func (r *Room) appendMove(uci, san string, color Color, fen string) MoveRecord {
	rec := MoveRecord{UCI: uci, SAN: san, Color: color, PlayedAt: time.Now()}
	r.MoveLog = append(r.MoveLog, rec)
	r.FEN = fen
	r.UpdatedAt = rec.PlayedAt
	return rec
}

func (r *Room) movesUCI() []string {
	out := make([]string, len(r.MoveLog))
	for i, m := range r.MoveLog {
		out[i] = m.UCI
	}
	return out
}

func (r *Room) moveViews() []arenadto.MoveView {
	out := make([]arenadto.MoveView, len(r.MoveLog))
	for i, m := range r.MoveLog {
		out[i] = arenadto.MoveView{Move: m.UCI, Color: string(m.Color), PlayedAt: m.PlayedAt.Unix()}
	}
	return out
}

// viewFor renders the room for one participant. Before seating it is the
// preview (empty opponent, configured opponent clock); after seating it
// carries the opponent identity, clock and the viewer's color.
func (r *Room) viewFor(identity string) arenadto.GameView {
	v := arenadto.GameView{
		RoomID:        r.ID,
		ConnectStatus: string(r.Status),
		Variant:       r.Variant,
		Rated:         r.Rated,
		GamesCount:    r.GamesCount,
		Armageddon:    r.Armageddon,
		ActiveBoard: arenadto.BoardView{
			FEN:   r.FEN,
			Moves: r.moveViews(),
		},
	}
	if tc, ok := r.Clocks[identity]; ok {
		v.PlayerTime = tc.Base
		v.PlayerIncrement = tc.Increment
	}
	if c, ok := r.colorOf(identity); ok {
		v.ActiveBoard.PlayerColor = string(c)
	}
	if opp := r.opponentOf(identity); opp != "" {
		v.OpponentID = opp
		if tc, ok := r.Clocks[opp]; ok {
			v.OpponentTime = tc.Base
			v.OpponentIncrement = tc.Increment
		}
	} else {
		v.OpponentTime = r.OpponentClock.Base
		v.OpponentIncrement = r.OpponentClock.Increment
	}
	return v
}
