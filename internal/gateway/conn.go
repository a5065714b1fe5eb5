package gateway

import (
	"context"
	"sync"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// wsPusher adapts one websocket connection to push.Pusher. Broadcasts arrive
// from other participants' connection goroutines, so writes are serialized
// with a mutex; each write gets a bounded deadline to prevent a stalled peer
// from blocking the room.
type wsPusher struct {
	mu      sync.Mutex
	conn    *websocket.Conn
	timeout time.Duration
}

func newPusher(conn *websocket.Conn, timeout time.Duration) *wsPusher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &wsPusher{conn: conn, timeout: timeout}
}

func (p *wsPusher) Push(ctx context.Context, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	dctx := ctx
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		dctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	return wsjson.Write(dctx, p.conn, event)
}
