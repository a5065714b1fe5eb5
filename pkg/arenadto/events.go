package arenadto

// Op tags an outbound event frame.
type Op string

const (
	OpCreated   Op = "created"
	OpConnected Op = "connected"
	OpMove      Op = "move"
	OpRemoved   Op = "removed"
	OpError     Op = "error"
)

// Reject reasons used by MoveRejected.
const (
	ReasonNotStarted    = "not_started"
	ReasonWrongTurn     = "wrong_turn"
	ReasonIllegalMove   = "illegal_move"
	ReasonInvalidFormat = "invalid_format"
)

// Created is sent to the creator only, carrying the room preview.
type Created struct {
	Op      Op       `json:"op"`
	Message string   `json:"message"`
	Game    GameView `json:"game"`
}

// Connected is sent to both seats on seating and to a single seat on
// reconnection; the view is rendered per recipient.
type Connected struct {
	Op      Op       `json:"op"`
	Message string   `json:"message"`
	Game    GameView `json:"game"`
}

// MoveApplied is broadcast to all seats after a legal move.
// GameOverReason is empty while the game continues.
type MoveApplied struct {
	Op             Op         `json:"op"`
	Message        string     `json:"message"`
	FEN            string     `json:"fen"`
	Moves          []MoveView `json:"moves"`
	GameOverReason string     `json:"gameOverReason"`
	ConnectStatus  string     `json:"connectStatus"`
}

// MoveRejected goes to the acting identity only. FEN is the authoritative
// position so the client can resynchronize; the move log is not included
// because it did not change.
type MoveRejected struct {
	Op      Op     `json:"op"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
	FEN     string `json:"fen,omitempty"`
}

// Removed is the cancellation notice broadcast to seated participants.
type Removed struct {
	Op            Op     `json:"op"`
	Message       string `json:"message"`
	ConnectStatus string `json:"connectStatus"`
}

// Fault reports a protocol-level problem (malformed frame, unknown room or
// variant) to the sender only.
type Fault struct {
	Op      Op     `json:"op"`
	Message string `json:"message"`
}

func NewCreated(msg string, game GameView) Created {
	return Created{Op: OpCreated, Message: msg, Game: game}
}

func NewConnected(msg string, game GameView) Connected {
	return Connected{Op: OpConnected, Message: msg, Game: game}
}

func NewMoveApplied(msg, fen string, moves []MoveView, reason, status string) MoveApplied {
	return MoveApplied{Op: OpMove, Message: msg, FEN: fen, Moves: moves, GameOverReason: reason, ConnectStatus: status}
}

func NewMoveRejected(reason, msg, fen string) MoveRejected {
	return MoveRejected{Op: OpMove, Reason: reason, Message: msg, FEN: fen}
}

func NewRemoved(msg string) Removed {
	return Removed{Op: OpRemoved, Message: msg, ConnectStatus: "removed"}
}

func NewFault(msg string) Fault {
	return Fault{Op: OpError, Message: msg}
}
