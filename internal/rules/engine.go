package rules

// Terminal reasons, checked in this order: checkmate, stalemate,
// insufficient material, fifty-move claim, threefold-repetition claim.
const (
	TerminalCheckmate            = "checkmate"
	TerminalStalemate            = "stalemate"
	TerminalInsufficientMaterial = "insufficient_material"
	TerminalFiftyMoveRule        = "fifty_move_rule"
	TerminalThreefoldRepetition  = "threefold_repetition"
)

// Result of applying a legal move.
type Result struct {
	FEN      string
	SAN      string
	UCI      string
	Terminal string // empty while the game continues
}

type staticErr string

func (e staticErr) Error() string { return string(e) }

var (
	// ErrInvalidNotation means the input is not UCI at all (client protocol
	// fault), as opposed to a well-formed but illegal move.
	ErrInvalidNotation = staticErr("invalid move notation")
	ErrIllegalMove     = staticErr("illegal move")
	ErrInvalidFEN      = staticErr("invalid starting position")
)

// Engine validates moves and detects terminal outcomes. The arena core never
// implements chess rules itself; everything goes through this interface.
type Engine interface {
	// StartingFEN returns the standard initial position.
	StartingFEN() string
	// ValidateFEN checks a custom starting position and returns it normalized.
	ValidateFEN(fen string) (string, error)
	// Apply replays history (UCI) from startFEN, then applies notation.
	// Returns ErrInvalidNotation for malformed input, ErrIllegalMove for a
	// well-formed move the position does not allow.
	Apply(startFEN string, history []string, notation string) (*Result, error)
}
