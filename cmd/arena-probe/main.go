package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"os"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/park285/chess-arena/internal/auth"
)

// arena-probe opens one authenticated connection, creates a room and prints
// every event the server pushes for a short window. Useful as a deploy smoke
// test and for watching a live room from the terminal.
func main() {
	wsURL := os.Getenv("ARENA_WS_URL")
	if wsURL == "" {
		wsURL = "ws://127.0.0.1:8080/ws"
	}
	identity := os.Getenv("ARENA_IDENTITY")
	if identity == "" {
		identity = "probe"
	}
	variant := os.Getenv("ARENA_VARIANT")
	if variant == "" {
		variant = "blitz"
	}

	token := identity
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		t, err := auth.NewJWTVerifier(secret).GenerateToken(identity, 10*time.Minute)
		if err != nil {
			log.Fatalf("token: %v", err)
		}
		token = t
	}

	u, err := url.Parse(wsURL)
	if err != nil {
		log.Fatalf("ARENA_WS_URL: %v", err)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, u.String(), nil)
	if err != nil {
		log.Fatalf("dial: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "done")
	log.Printf("connected as %s", identity)

	create := map[string]any{"op": "create", "game_type": variant}
	if err := wsjson.Write(ctx, conn, create); err != nil {
		log.Fatalf("send create: %v", err)
	}

	// observe for a short window
	deadline := time.After(15 * time.Second)
	for {
		rctx, rcancel := context.WithTimeout(context.Background(), 15*time.Second)
		var event map[string]any
		err := wsjson.Read(rctx, conn, &event)
		rcancel()
		if err != nil {
			log.Printf("read: %v", err)
			return
		}
		raw, _ := json.Marshal(event)
		fmt.Printf("event: %s\n", raw)

		select {
		case <-deadline:
			return
		default:
		}
	}
}
