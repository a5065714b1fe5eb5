package arena

// matchIndex maps a game variant to the pending rooms seeking an opponent.
// It is owned by the Registry and mutated only under the registry lock,
// always after the authoritative room status change: a room is never
// matchable before it is actually pending, and is dropped as soon as its
// status leaves pending.
type matchIndex struct {
	byVariant map[string]map[string]string // variant → room id → creator
}

func newMatchIndex() *matchIndex {
	return &matchIndex{byVariant: make(map[string]map[string]string)}
}

func (x *matchIndex) register(variant, roomID, creator string) {
	if variant == "" || roomID == "" {
		return
	}
	m := x.byVariant[variant]
	if m == nil {
		m = make(map[string]string)
		x.byVariant[variant] = m
	}
	m[roomID] = creator
}

func (x *matchIndex) unregister(variant, roomID string) {
	if m := x.byVariant[variant]; m != nil {
		delete(m, roomID)
		if len(m) == 0 {
			delete(x.byVariant, variant)
		}
	}
}

// findPending returns the first pending room for the variant, skipping rooms
// created by exclude. First-found policy: iteration order is arbitrary and no
// fairness is guaranteed.
func (x *matchIndex) findPending(variant, exclude string) string {
	for roomID, creator := range x.byVariant[variant] {
		if creator != exclude {
			return roomID
		}
	}
	return ""
}
