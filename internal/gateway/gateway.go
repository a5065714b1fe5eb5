package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/park285/chess-arena/internal/arena"
	"github.com/park285/chess-arena/internal/auth"
	"github.com/park285/chess-arena/internal/obslog"
	"github.com/park285/chess-arena/internal/push"
	"github.com/park285/chess-arena/pkg/arenadto"
)

// Gateway runs one goroutine per live client connection. It establishes the
// identity via the Verifier, binds the outbound channel in the Connection
// Directory, then feeds inbound frames to the Room Registry. On disconnect it
// propagates to the registry first, then clears the directory entry.
type Gateway struct {
	verifier     auth.Verifier
	registry     *arena.Registry
	dir          *push.Directory
	bus          *push.Dispatcher
	writeTimeout time.Duration
}

func New(verifier auth.Verifier, registry *arena.Registry, dir *push.Directory, bus *push.Dispatcher, writeTimeout time.Duration) *Gateway {
	return &Gateway{
		verifier:     verifier,
		registry:     registry,
		dir:          dir,
		bus:          bus,
		writeTimeout: writeTimeout,
	}
}

// Handler returns the HTTP mux: websocket endpoint plus a liveness probe.
func (g *Gateway) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", g.serveWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

func (g *Gateway) serveWS(w http.ResponseWriter, r *http.Request) {
	identity, err := g.verifier.Verify(r.Context(), bearerToken(r))
	if err != nil {
		obslog.L().Warn("conn_auth_failed", zap.Error(err))
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		CompressionMode: websocket.CompressionNoContextTakeover,
	})
	if err != nil {
		obslog.L().Warn("conn_accept_failed", zap.String("identity", identity), zap.Error(err))
		return
	}

	ctx := r.Context()
	p := newPusher(conn, g.writeTimeout)
	g.dir.Bind(identity, p)
	obslog.L().Info("conn_open", zap.String("identity", identity))

	defer func() {
		g.registry.Disconnect(ctx, identity)
		g.dir.Release(identity, p)
		_ = conn.Close(websocket.StatusNormalClosure, "bye")
		obslog.L().Info("conn_close", zap.String("identity", identity))
	}()

	for {
		var f Frame
		if err := wsjson.Read(ctx, conn, &f); err != nil {
			return
		}
		g.handle(ctx, identity, &f)
	}
}

func (g *Gateway) handle(ctx context.Context, identity string, f *Frame) {
	if err := f.check(); err != nil {
		g.bus.PushTo(ctx, identity, arenadto.NewFault(err.Error()))
		return
	}

	var err error
	switch f.Op {
	case "create":
		var mode arena.ColorMode
		mode, err = arena.ParseColorMode(f.ColorMode)
		if err == nil {
			err = g.registry.Create(ctx, identity, arena.CreateParams{
				Variant:       f.Variant,
				Rated:         f.Rated,
				GamesCount:    f.GamesCount,
				Armageddon:    f.Armageddon,
				ColorMode:     mode,
				CreatorClock:  arena.TimeControl{Base: f.PlayerTime, Increment: f.PlayerIncrement},
				OpponentClock: arena.TimeControl{Base: f.OpponentTime, Increment: f.OpponentIncrement},
				StartFEN:      f.FEN,
			})
		}
	case "search":
		err = g.registry.Search(ctx, identity, f.Variant)
	case "join":
		err = g.registry.Join(ctx, identity, f.RoomID)
	case "remove":
		err = g.registry.Remove(ctx, f.RoomID)
	case "move":
		err = g.registry.Move(ctx, identity, f.RoomID, f.Move)
	}
	if err != nil {
		g.reply(ctx, identity, f, err)
	}
}

// reply translates a registry error into a sender-only notice. Rejections on
// the move path carry the authoritative position for client resync.
func (g *Gateway) reply(ctx context.Context, identity string, f *Frame, err error) {
	var reject *arena.RejectError
	if errors.As(err, &reject) {
		g.bus.PushTo(ctx, identity, arenadto.NewMoveRejected(reject.Reason, reject.Message, reject.FEN))
		return
	}
	var msg string
	switch {
	case errors.Is(err, arena.ErrRoomNotFound):
		msg = fmt.Sprintf("Room %s is not available.", f.RoomID)
	case errors.Is(err, arena.ErrUnknownVariant):
		msg = fmt.Sprintf("Unknown game type %q.", f.Variant)
	default:
		msg = err.Error()
	}
	obslog.L().Debug("op_rejected",
		zap.String("identity", identity),
		zap.String("op", f.Op),
		zap.Error(err))
	g.bus.PushTo(ctx, identity, arenadto.NewFault(msg))
}

func bearerToken(r *http.Request) string {
	if t := strings.TrimSpace(r.URL.Query().Get("token")); t != "" {
		return t
	}
	h := r.Header.Get("Authorization")
	return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
}
