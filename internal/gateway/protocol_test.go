package gateway

import (
	"encoding/json"
	"testing"
)

func TestFrameCheck(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		ok   bool
	}{
		{"create minimal", `{"op":"create"}`, true},
		{"create full", `{"op":"create","game_type":"blitz","is_rating":true,"player_time":180,"player_increment":2,"opponent_time":180,"opponent_increment":2,"color_attach_mode":"white"}`, true},
		{"search", `{"op":"search","game_type":"blitz"}`, true},
		{"search without variant", `{"op":"search"}`, false},
		{"join", `{"op":"join","room_id":"RM-ABC123"}`, true},
		{"join without room", `{"op":"join"}`, false},
		{"remove without room", `{"op":"remove"}`, false},
		{"move", `{"op":"move","room_id":"RM-ABC123","move":"e2e4"}`, true},
		{"move without move", `{"op":"move","room_id":"RM-ABC123"}`, false},
		{"move without room", `{"op":"move","move":"e2e4"}`, false},
		{"unknown op", `{"op":"teleport"}`, false},
		{"missing op", `{}`, false},
		{"bad color mode", `{"op":"create","color_attach_mode":"green"}`, false},
		{"negative clock", `{"op":"create","player_time":-1}`, false},
	}
	for _, tc := range cases {
		var f Frame
		if err := json.Unmarshal([]byte(tc.raw), &f); err != nil {
			t.Fatalf("%s: unmarshal: %v", tc.name, err)
		}
		err := f.check()
		if tc.ok && err != nil {
			t.Fatalf("%s: unexpected reject: %v", tc.name, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%s: frame accepted", tc.name)
		}
	}
}
