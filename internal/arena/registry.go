package arena

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/park285/chess-arena/internal/obslog"
	"github.com/park285/chess-arena/internal/push"
	"github.com/park285/chess-arena/internal/rules"
	"github.com/park285/chess-arena/internal/variant"
	"github.com/park285/chess-arena/pkg/arenadto"
)

const recorderTimeout = 5 * time.Second

// defaultClock applies when a create names neither a variant nor explicit
// time controls.
var defaultClock = TimeControl{Base: 300, Increment: 0}

// errPendingExists reports that the creator already holds a pending room;
// Create retries the eviction.
var errPendingExists = staticErr("pending room exists")

// Registry owns the room collection. It guarantees at most one concurrent
// mutating operation per room: every transition locks the target room's
// mutex, so two near-simultaneous joins cannot double-seat a room and a move
// cannot race a remove. Operations on distinct rooms proceed independently.
//
// Lock order where both are held: room.mu first, then Registry.mu. Lookups
// release the registry lock before locking a room.
type Registry struct {
	mu               sync.RWMutex
	rooms            map[string]*Room
	pendingByCreator map[string]string
	index            *matchIndex

	engine   rules.Engine
	bus      *push.Dispatcher
	variants *variant.Catalog
	recorder Recorder

	pendingTTL  time.Duration
	finishedTTL time.Duration
}

func NewRegistry(engine rules.Engine, bus *push.Dispatcher, variants *variant.Catalog) *Registry {
	return &Registry{
		rooms:            make(map[string]*Room),
		pendingByCreator: make(map[string]string),
		index:            newMatchIndex(),
		engine:           engine,
		bus:              bus,
		variants:         variants,
	}
}

// AttachRecorder wires the persistence collaborator. Optional; without it
// matches simply go unrecorded.
func (r *Registry) AttachRecorder(rec Recorder) {
	if r != nil {
		r.recorder = rec
	}
}

// SetIdlePolicy configures the sweeper TTLs. A zero TTL disables the
// corresponding eviction.
func (r *Registry) SetIdlePolicy(pendingTTL, finishedTTL time.Duration) {
	r.pendingTTL = pendingTTL
	r.finishedTTL = finishedTTL
}

// Create allocates a pending room for the creator. Any prior pending room
// owned by the same identity is evicted first: one identity holds at most one
// pending room. The creator receives a preview; nobody is seated yet.
func (r *Registry) Create(ctx context.Context, identity string, p CreateParams) error {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return ErrInvalidIdentity
	}
	if p.ColorMode == "" {
		p.ColorMode = ModeRandom
	}
	if p.Variant != "" {
		defaults, ok := r.variants.Lookup(p.Variant)
		if !ok {
			return ErrUnknownVariant
		}
		if p.CreatorClock == (TimeControl{}) {
			p.CreatorClock = TimeControl{Base: defaults.Time, Increment: defaults.Increment}
		}
		if p.OpponentClock == (TimeControl{}) {
			p.OpponentClock = TimeControl{Base: defaults.Time, Increment: defaults.Increment}
		}
	} else {
		if p.CreatorClock == (TimeControl{}) {
			p.CreatorClock = defaultClock
		}
		if p.OpponentClock == (TimeControl{}) {
			p.OpponentClock = defaultClock
		}
	}
	startFEN, err := r.engine.ValidateFEN(p.StartFEN)
	if err != nil {
		return err
	}

	// Evict-then-insert can race another create by the same identity: both
	// could observe no pending room before either inserts. insertRoom
	// re-checks under the registry lock and we retry the eviction, so at
	// most one pending room per identity survives.
	var room *Room
	for attempt := 0; ; attempt++ {
		if prior := r.pendingRoomOf(identity); prior != "" {
			r.evictPending(prior, "recreate")
		}
		room, err = r.insertRoom(identity, p, startFEN)
		if err == nil {
			break
		}
		if !errors.Is(err, errPendingExists) || attempt >= 3 {
			return err
		}
	}

	obslog.L().Info("room_create",
		zap.String("room_id", room.ID),
		zap.String("creator", identity),
		zap.String("variant", p.Variant),
		zap.String("color_mode", string(p.ColorMode)),
		zap.Bool("rated", p.Rated),
	)

	room.mu.Lock()
	view := room.viewFor(identity)
	room.mu.Unlock()
	r.bus.PushTo(ctx, identity, arenadto.NewCreated(fmt.Sprintf("Created new room %s", room.ID), view))
	return nil
}

// Search joins the first pending room of the variant, or creates one with the
// variant defaults when none is open.
func (r *Registry) Search(ctx context.Context, identity, variantName string) error {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return ErrInvalidIdentity
	}
	defaults, ok := r.variants.Lookup(variantName)
	if !ok {
		return ErrUnknownVariant
	}

	// A found room can vanish between the index lookup and the join (remove
	// or disconnect racing us); retry a couple of times before creating.
	for attempt := 0; attempt < 3; attempt++ {
		r.mu.RLock()
		roomID := r.index.findPending(variantName, identity)
		r.mu.RUnlock()
		if roomID == "" {
			break
		}
		err := r.Join(ctx, identity, roomID)
		if errors.Is(err, ErrRoomNotFound) || errors.Is(err, ErrOwnRoom) {
			continue
		}
		return err
	}

	tc := TimeControl{Base: defaults.Time, Increment: defaults.Increment}
	return r.Create(ctx, identity, CreateParams{
		Variant:       variantName,
		GamesCount:    1,
		ColorMode:     ModeRandom,
		CreatorClock:  tc,
		OpponentClock: tc,
	})
}

// Join seats the joining identity into a pending room, or re-sends the full
// view when the identity already occupies a seat (reconnection; no state
// change). Seating assigns colors, fixes the joiner's clock from the room's
// configured opponent clock, transitions pending → connected, drops the room
// from the matchmaking index and notifies both seats. Match metadata is
// persisted fire-and-forget.
func (r *Registry) Join(ctx context.Context, identity, roomID string) error {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return ErrInvalidIdentity
	}
	room := r.room(roomID)
	if room == nil {
		return ErrRoomNotFound
	}

	room.mu.Lock()
	if room.seated(identity) {
		view := room.viewFor(identity)
		room.mu.Unlock()
		r.bus.PushTo(ctx, identity, arenadto.NewConnected(fmt.Sprintf("Reconnected to room %s", roomID), view))
		return nil
	}
	if room.Status != StatusPending {
		room.mu.Unlock()
		return ErrRoomNotFound
	}
	if identity == room.CreatorID {
		room.mu.Unlock()
		return ErrOwnRoom
	}

	room.assignSeats(identity)
	room.Status = StatusConnected
	room.UpdatedAt = time.Now()
	room.MatchID = uuid.NewString()

	start := MatchStart{
		MatchID:    room.MatchID,
		RoomID:     room.ID,
		Variant:    room.Variant,
		Rated:      room.Rated,
		GamesCount: room.GamesCount,
		ColorMode:  string(room.ColorMode),
		WhiteID:    room.Seats[White],
		BlackID:    room.Seats[Black],
		WhiteClock: room.Clocks[room.Seats[White]],
		BlackClock: room.Clocks[room.Seats[Black]],
		StartedAt:  room.UpdatedAt,
	}
	seats := room.seatSnapshot()
	views := make(map[string]arenadto.GameView, len(seats))
	for _, id := range seats {
		views[id] = room.viewFor(id)
	}
	creator := room.CreatorID
	room.mu.Unlock()

	r.mu.Lock()
	if r.pendingByCreator[creator] == roomID {
		delete(r.pendingByCreator, creator)
	}
	r.index.unregister(start.Variant, roomID)
	r.mu.Unlock()

	obslog.L().Info("room_join",
		zap.String("room_id", roomID),
		zap.String("match_id", start.MatchID),
		zap.String("white_id", start.WhiteID),
		zap.String("black_id", start.BlackID),
		zap.String("variant", start.Variant),
	)

	msg := fmt.Sprintf("Initialized room %s", roomID)
	for _, id := range seats {
		r.bus.PushTo(ctx, id, arenadto.NewConnected(msg, views[id]))
	}

	if r.recorder != nil {
		go func() {
			rctx, cancel := context.WithTimeout(context.Background(), recorderTimeout)
			defer cancel()
			if err := r.recorder.RecordMatchStart(rctx, start); err != nil {
				obslog.L().Warn("match_record_error",
					zap.String("room_id", start.RoomID),
					zap.String("match_id", start.MatchID),
					zap.Error(err))
			}
		}()
	}
	return nil
}

// Move applies one move for the acting identity. Rejections (not started,
// wrong turn, illegal, malformed) return a *RejectError carrying the current
// position and mutate nothing; a legal move appends to the log, updates the
// position and is broadcast to all seats together with the terminal reason
// (empty while the game continues).
func (r *Registry) Move(ctx context.Context, identity, roomID, notation string) error {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return ErrInvalidIdentity
	}
	room := r.room(roomID)
	if room == nil {
		return ErrRoomNotFound
	}

	room.mu.Lock()
	if room.Status != StatusConnected {
		reject := &RejectError{Reason: arenadto.ReasonNotStarted, FEN: room.FEN}
		if room.Status == StatusPending {
			reject.Message = "Game not started. Waiting for player."
		} else {
			reject.Message = "Game is over."
		}
		room.mu.Unlock()
		return reject
	}

	side := room.sideToMove()
	if occupant := room.Seats[side]; identity != occupant {
		reject := &RejectError{Reason: arenadto.ReasonWrongTurn, Message: "Not your turn!", FEN: room.FEN}
		room.mu.Unlock()
		return reject
	}

	res, err := r.engine.Apply(room.StartFEN, room.movesUCI(), notation)
	if err != nil {
		var reject *RejectError
		switch {
		case errors.Is(err, rules.ErrInvalidNotation):
			reject = &RejectError{Reason: arenadto.ReasonInvalidFormat, Message: "Invalid move format. Use UCI (e.g., e2e4).", FEN: room.FEN}
		case errors.Is(err, rules.ErrIllegalMove):
			reject = &RejectError{Reason: arenadto.ReasonIllegalMove, Message: "Illegal move!", FEN: room.FEN}
		default:
			room.mu.Unlock()
			return fmt.Errorf("apply move: %w", err)
		}
		room.mu.Unlock()
		return reject
	}

	room.appendMove(res.UCI, res.SAN, side, res.FEN)
	var result *MatchResult
	if res.Terminal != "" {
		room.Status = StatusFinished
		winner := ""
		if res.Terminal == rules.TerminalCheckmate {
			winner = identity
		}
		result = &MatchResult{
			MatchID:    room.MatchID,
			RoomID:     room.ID,
			Reason:     res.Terminal,
			Winner:     winner,
			MovesUCI:   room.movesUCI(),
			FinishedAt: room.UpdatedAt,
		}
	}
	event := arenadto.NewMoveApplied(
		fmt.Sprintf("Moved %s", res.FEN),
		res.FEN,
		room.moveViews(),
		res.Terminal,
		string(room.Status),
	)
	seats := room.seatSnapshot()
	moveCount := len(room.MoveLog)
	room.mu.Unlock()

	obslog.L().Info("room_move",
		zap.String("room_id", roomID),
		zap.String("actor", identity),
		zap.String("uci", res.UCI),
		zap.Int("move_count", moveCount),
		zap.String("terminal", res.Terminal),
	)

	r.bus.Publish(ctx, seats, event)

	if result != nil && r.recorder != nil {
		res := *result
		go func() {
			rctx, cancel := context.WithTimeout(context.Background(), recorderTimeout)
			defer cancel()
			if err := r.recorder.RecordResult(rctx, res); err != nil {
				obslog.L().Warn("result_record_error",
					zap.String("room_id", res.RoomID),
					zap.String("match_id", res.MatchID),
					zap.Error(err))
			}
		}()
	}
	return nil
}

// Remove cancels a room from any non-terminal state, broadcasts the
// cancellation and drops the room from the registry and the index. Removing
// a finished room is a no-op.
func (r *Registry) Remove(ctx context.Context, roomID string) error {
	room := r.room(roomID)
	if room == nil {
		return ErrRoomNotFound
	}

	room.mu.Lock()
	if room.Status == StatusFinished || room.Status == StatusRemoved {
		room.mu.Unlock()
		return nil
	}
	wasPending := room.Status == StatusPending
	room.Status = StatusRemoved
	room.UpdatedAt = time.Now()
	targets := room.seatSnapshot()
	if wasPending {
		// nobody is seated yet; the creator still deserves the notice
		targets = append(targets, room.CreatorID)
	}
	creator := room.CreatorID
	variantName := room.Variant
	room.mu.Unlock()

	r.deregister(roomID, variantName, creator)

	obslog.L().Info("room_remove", zap.String("room_id", roomID), zap.Bool("was_pending", wasPending))
	r.bus.Publish(ctx, targets, arenadto.NewRemoved("Game Canceled"))
	return nil
}

// Disconnect handles a participant's channel going away. A pending room owned
// by the identity is deleted outright (no opponent yet, no broadcast); a
// connected room is left intact so the seat stays reserved for reconnection.
// The Connection Directory entry is the caller's to clear.
func (r *Registry) Disconnect(ctx context.Context, identity string) {
	if roomID := r.pendingRoomOf(identity); roomID != "" {
		if r.evictPending(roomID, "disconnect") {
			obslog.L().Info("room_evict", zap.String("room_id", roomID), zap.String("reason", "disconnect"))
		}
	}
}

// Sweep applies the idle policy once: pending rooms idle past pendingTTL are
// evicted silently, finished rooms past finishedTTL are garbage-collected.
// Connected rooms are never swept; seats stay reserved for reconnection.
func (r *Registry) Sweep(now time.Time) int {
	r.mu.RLock()
	snapshot := make([]*Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		snapshot = append(snapshot, room)
	}
	r.mu.RUnlock()

	evicted := 0
	for _, room := range snapshot {
		room.mu.Lock()
		status, idle := room.Status, now.Sub(room.UpdatedAt)
		id, variantName, creator := room.ID, room.Variant, room.CreatorID
		room.mu.Unlock()

		switch {
		case status == StatusPending && r.pendingTTL > 0 && idle > r.pendingTTL:
			if r.evictPending(id, "idle") {
				evicted++
			}
		case status == StatusFinished && r.finishedTTL > 0 && idle > r.finishedTTL:
			r.deregister(id, variantName, creator)
			evicted++
			obslog.L().Info("room_evict", zap.String("room_id", id), zap.String("reason", "finished_ttl"))
		}
	}
	return evicted
}

// StartSweeper runs Sweep on an interval until ctx is done.
func (r *Registry) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				if n := r.Sweep(now); n > 0 {
					obslog.L().Debug("room_sweep", zap.Int("evicted", n))
				}
			}
		}
	}()
}

// Room returns the room by id, for inspection. May be nil.
func (r *Registry) Room(id string) *Room { return r.room(id) }

// PendingRoomFor reports the variant's first open room id, if any.
func (r *Registry) PendingRoomFor(variantName, exclude string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.index.findPending(variantName, exclude)
}

func (r *Registry) room(id string) *Room {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rooms[strings.TrimSpace(id)]
}

func (r *Registry) pendingRoomOf(identity string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.pendingByCreator[identity]
}

func (r *Registry) insertRoom(creator string, p CreateParams, startFEN string) (*Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pendingByCreator[creator] != "" {
		return nil, errPendingExists
	}
	for i := 0; i < 5; i++ {
		id, err := roomCode()
		if err != nil {
			return nil, err
		}
		if _, taken := r.rooms[id]; taken {
			continue
		}
		room := newRoom(id, creator, p, startFEN)
		r.rooms[id] = room
		r.pendingByCreator[creator] = id
		if p.Variant != "" {
			r.index.register(p.Variant, id, creator)
		}
		return room, nil
	}
	return nil, fmt.Errorf("failed to allocate room id")
}

// evictPending removes a pending room without notice. The status check runs
// under the room lock, so a join that won the race (room now connected) makes
// this a no-op.
func (r *Registry) evictPending(roomID, reason string) bool {
	room := r.room(roomID)
	if room == nil {
		return false
	}
	room.mu.Lock()
	if room.Status != StatusPending {
		room.mu.Unlock()
		return false
	}
	room.Status = StatusRemoved
	room.UpdatedAt = time.Now()
	variantName, creator := room.Variant, room.CreatorID
	room.mu.Unlock()

	r.deregister(roomID, variantName, creator)
	if reason != "disconnect" {
		obslog.L().Debug("room_evict", zap.String("room_id", roomID), zap.String("reason", reason))
	}
	return true
}

func (r *Registry) deregister(roomID, variantName, creator string) {
	r.mu.Lock()
	delete(r.rooms, roomID)
	r.index.unregister(variantName, roomID)
	if r.pendingByCreator[creator] == roomID {
		delete(r.pendingByCreator, creator)
	}
	r.mu.Unlock()
}

// roomCode returns `RM-` + 6 upper alnum.
func roomCode() (string, error) {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	for i := range b {
		b[i] = letters[int(b[i])%len(letters)]
	}
	return "RM-" + string(b), nil
}
