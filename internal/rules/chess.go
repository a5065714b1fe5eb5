package rules

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	nchess "github.com/corentings/chess/v2"
)

// uciRe matches plain UCI coordinate moves with an optional promotion piece.
var uciRe = regexp.MustCompile(`^[a-h][1-8][a-h][1-8][qrbn]?$`)

// ChessEngine implements Engine on corentings/chess.
//
// The library's FEN decoder writes into a package-global scratch buffer, so
// game construction is not safe from concurrent goroutines even for distinct
// games. The registry only serializes per room; mu serializes the library
// calls across rooms.
type ChessEngine struct {
	mu sync.Mutex
}

func NewChessEngine() *ChessEngine { return &ChessEngine{} }

func (e *ChessEngine) StartingFEN() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return nchess.NewGame().FEN()
}

func (e *ChessEngine) ValidateFEN(fen string) (string, error) {
	fen = strings.TrimSpace(fen)
	e.mu.Lock()
	defer e.mu.Unlock()
	if fen == "" {
		return nchess.NewGame().FEN(), nil
	}
	opt, err := nchess.FEN(fen)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidFEN, err)
	}
	return nchess.NewGame(opt).FEN(), nil
}

func (e *ChessEngine) Apply(startFEN string, history []string, notation string) (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	game, err := e.reconstruct(startFEN, history)
	if err != nil {
		return nil, err
	}

	uci := strings.ToLower(strings.TrimSpace(notation))
	if !uciRe.MatchString(uci) {
		return nil, ErrInvalidNotation
	}

	pos := game.Position()
	mv, err := nchess.UCINotation{}.Decode(pos, uci)
	if err != nil {
		return nil, ErrIllegalMove
	}
	san := nchess.AlgebraicNotation{}.Encode(pos, mv)
	if err := game.Move(mv, nil); err != nil {
		return nil, ErrIllegalMove
	}

	return &Result{
		FEN:      game.FEN(),
		SAN:      san,
		UCI:      uci,
		Terminal: terminalReason(game),
	}, nil
}

func (e *ChessEngine) reconstruct(startFEN string, history []string) (*nchess.Game, error) {
	var game *nchess.Game
	if strings.TrimSpace(startFEN) == "" {
		game = nchess.NewGame()
	} else {
		opt, err := nchess.FEN(startFEN)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFEN, err)
		}
		game = nchess.NewGame(opt)
	}
	for _, mv := range history {
		if err := game.PushNotationMove(mv, nchess.UCINotation{}, nil); err != nil {
			return nil, fmt.Errorf("replay %q: %w", mv, err)
		}
	}
	return game, nil
}

// terminalReason maps the library's outcome onto the contracted reason order.
// Fifty-move and threefold repetition are claim-based: a claimable position
// ends the game, matching the reference behavior.
func terminalReason(game *nchess.Game) string {
	switch game.Method() {
	case nchess.Checkmate:
		return TerminalCheckmate
	case nchess.Stalemate:
		return TerminalStalemate
	case nchess.InsufficientMaterial:
		return TerminalInsufficientMaterial
	case nchess.SeventyFiveMoveRule, nchess.FiftyMoveRule:
		return TerminalFiftyMoveRule
	case nchess.FivefoldRepetition, nchess.ThreefoldRepetition:
		return TerminalThreefoldRepetition
	}
	draws := game.EligibleDraws()
	for _, d := range draws {
		if d == nchess.FiftyMoveRule {
			return TerminalFiftyMoveRule
		}
	}
	for _, d := range draws {
		if d == nchess.ThreefoldRepetition {
			return TerminalThreefoldRepetition
		}
	}
	return ""
}
