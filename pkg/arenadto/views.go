package arenadto

// MoveView is one entry of a room's move log as sent to clients.
type MoveView struct {
	Move     string `json:"move"`
	Color    string `json:"color"`
	PlayedAt int64  `json:"time"`
}

// BoardView carries the live position for one viewer.
type BoardView struct {
	FEN         string     `json:"fen"`
	PlayerColor string     `json:"playerColor,omitempty"`
	Moves       []MoveView `json:"moves"`
}

// GameView is the room state rendered for a single participant.
// A preview (pre-seating) has empty opponent fields; a full view carries
// the opponent identity, clock and the viewer's assigned color.
type GameView struct {
	RoomID            string    `json:"roomId"`
	ConnectStatus     string    `json:"connectStatus"`
	Variant           string    `json:"type"`
	Rated             bool      `json:"isRating"`
	GamesCount        int       `json:"gamesCount"`
	Armageddon        bool      `json:"withArmaghedon"`
	PlayerTime        int       `json:"playerTime"`
	PlayerIncrement   int       `json:"playerIncrement"`
	OpponentID        string    `json:"opponentId"`
	OpponentTime      int       `json:"opponentTime"`
	OpponentIncrement int       `json:"opponentIncrement"`
	ActiveBoard       BoardView `json:"activeBoard"`
}
