package gateway

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Frame is one inbound client message. A single shape covers all operations;
// required() enforces the per-operation fields.
type Frame struct {
	Op string `json:"op" validate:"required,oneof=create search join remove move"`

	RoomID  string `json:"room_id,omitempty"`
	Variant string `json:"game_type,omitempty"`
	Move    string `json:"move,omitempty"`

	Rated             bool   `json:"is_rating,omitempty"`
	Armageddon        bool   `json:"with_armaghedon,omitempty"`
	GamesCount        int    `json:"games_count,omitempty" validate:"omitempty,min=1"`
	PlayerTime        int    `json:"player_time,omitempty" validate:"omitempty,min=0"`
	PlayerIncrement   int    `json:"player_increment,omitempty" validate:"omitempty,min=0"`
	OpponentTime      int    `json:"opponent_time,omitempty" validate:"omitempty,min=0"`
	OpponentIncrement int    `json:"opponent_increment,omitempty" validate:"omitempty,min=0"`
	ColorMode         string `json:"color_attach_mode,omitempty" validate:"omitempty,oneof=white black random"`
	FEN               string `json:"fen,omitempty"`
}

// check validates the frame structurally and per operation. A failure is a
// protocol fault: rejected to the sender only, no state change.
func (f *Frame) check() error {
	if err := validate.Struct(f); err != nil {
		return fmt.Errorf("invalid message format: %w", err)
	}
	switch f.Op {
	case "search":
		if f.Variant == "" {
			return fmt.Errorf("invalid message format: 'game_type' is required for search")
		}
	case "join", "remove":
		if f.RoomID == "" {
			return fmt.Errorf("invalid message format: 'room_id' is required for %s", f.Op)
		}
	case "move":
		if f.RoomID == "" || f.Move == "" {
			return fmt.Errorf("invalid message format: 'move' and 'room_id' are required")
		}
	}
	return nil
}
