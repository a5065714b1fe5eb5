package push

import (
	"context"
	"sync"
)

// Pusher is one participant's live outbound channel.
type Pusher interface {
	Push(ctx context.Context, event any) error
}

// Directory maps a participant identity to its currently-live channel.
// At most one channel per identity: a new Bind supersedes the old one.
// The directory never notifies rooms of disconnection; callers propagate
// that themselves.
type Directory struct {
	mu    sync.RWMutex
	conns map[string]Pusher
}

func NewDirectory() *Directory {
	return &Directory{conns: make(map[string]Pusher)}
}

// Bind replaces any prior channel for identity.
func (d *Directory) Bind(identity string, p Pusher) {
	d.mu.Lock()
	d.conns[identity] = p
	d.mu.Unlock()
}

// Unbind removes the channel for identity unconditionally.
func (d *Directory) Unbind(identity string) {
	d.mu.Lock()
	delete(d.conns, identity)
	d.mu.Unlock()
}

// Release removes the binding only while p is still the bound channel, so a
// stale connection tearing down cannot evict its successor.
func (d *Directory) Release(identity string, p Pusher) {
	d.mu.Lock()
	if cur, ok := d.conns[identity]; ok && cur == p {
		delete(d.conns, identity)
	}
	d.mu.Unlock()
}

// Lookup returns the live channel for identity, or nil.
func (d *Directory) Lookup(identity string) Pusher {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.conns[identity]
}
