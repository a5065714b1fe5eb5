package arena

import "testing"

func TestAssignSeatsFixedModes(t *testing.T) {
	for _, tc := range []struct {
		mode         ColorMode
		creatorColor Color
	}{
		{ModeWhite, White},
		{ModeBlack, Black},
	} {
		p := CreateParams{
			ColorMode:     tc.mode,
			CreatorClock:  TimeControl{Base: 300, Increment: 0},
			OpponentClock: TimeControl{Base: 60, Increment: 1},
		}
		r := newRoom("RM-TEST01", "alice", p, "startpos")
		r.assignSeats("bob")

		if r.Seats[tc.creatorColor] != "alice" {
			t.Fatalf("mode %s: creator not on %s", tc.mode, tc.creatorColor)
		}
		if r.Seats[tc.creatorColor.Opposite()] != "bob" {
			t.Fatalf("mode %s: joiner not on %s", tc.mode, tc.creatorColor.Opposite())
		}
		if r.Clocks["bob"] != p.OpponentClock {
			t.Fatalf("joiner clock %+v, want the room's opponent clock", r.Clocks["bob"])
		}
		if r.Clocks["alice"] != p.CreatorClock {
			t.Fatalf("creator clock changed: %+v", r.Clocks["alice"])
		}
	}
}

func TestAssignSeatsRandomFillsBoth(t *testing.T) {
	r := newRoom("RM-TEST02", "alice", CreateParams{ColorMode: ModeRandom}, "startpos")
	r.assignSeats("bob")
	if r.Seats[White] == r.Seats[Black] {
		t.Fatalf("both colors map to %q", r.Seats[White])
	}
	if !r.seated("alice") || !r.seated("bob") {
		t.Fatalf("seating incomplete: %+v", r.Seats)
	}
}

func TestSideToMoveParity(t *testing.T) {
	r := newRoom("RM-TEST03", "alice", CreateParams{}, "startpos")
	if r.sideToMove() != White {
		t.Fatalf("white moves first")
	}
	r.appendMove("e2e4", "e4", White, "fen1")
	if r.sideToMove() != Black {
		t.Fatalf("black moves second")
	}
	r.appendMove("e7e5", "e5", Black, "fen2")
	if r.sideToMove() != White {
		t.Fatalf("turn must alternate")
	}
}

func TestViewForPreviewAndSeatedViews(t *testing.T) {
	p := CreateParams{
		Variant:       "blitz",
		Armageddon:    true,
		ColorMode:     ModeWhite,
		CreatorClock:  TimeControl{Base: 180, Increment: 2},
		OpponentClock: TimeControl{Base: 120, Increment: 1},
	}
	r := newRoom("RM-TEST04", "alice", p, "startpos")

	preview := r.viewFor("alice")
	if preview.OpponentID != "" {
		t.Fatalf("preview names an opponent: %q", preview.OpponentID)
	}
	if preview.OpponentTime != 120 || preview.OpponentIncrement != 1 {
		t.Fatalf("preview must show the configured opponent clock: %d+%d", preview.OpponentTime, preview.OpponentIncrement)
	}
	if preview.ActiveBoard.PlayerColor != "" {
		t.Fatalf("no color before seating, got %q", preview.ActiveBoard.PlayerColor)
	}
	if !preview.Armageddon {
		t.Fatalf("armageddon flag dropped from the view")
	}

	r.assignSeats("bob")
	va, vb := r.viewFor("alice"), r.viewFor("bob")
	if va.OpponentID != "bob" || vb.OpponentID != "alice" {
		t.Fatalf("opponent ids wrong: %q / %q", va.OpponentID, vb.OpponentID)
	}
	if va.ActiveBoard.PlayerColor != string(White) || vb.ActiveBoard.PlayerColor != string(Black) {
		t.Fatalf("colors wrong: %q / %q", va.ActiveBoard.PlayerColor, vb.ActiveBoard.PlayerColor)
	}
	if vb.PlayerTime != 120 || va.OpponentTime != 120 {
		t.Fatalf("joiner clock not reflected in views")
	}
}
