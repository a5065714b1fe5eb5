package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"ARENA_ADDR", "JWT_SECRET", "REDIS_URL", "DATABASE_URL", "VARIANTS_DIR",
		"ROOM_SWEEP_INTERVAL", "ROOM_PENDING_TTL", "ROOM_FINISHED_TTL",
		"WS_WRITE_TIMEOUT", "ROOM_PENDING_TTL_SEC",
	} {
		t.Setenv(key, "")
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != ":8080" {
		t.Fatalf("default addr: %q", cfg.ListenAddr)
	}
	if cfg.SweepInterval != 30*time.Second {
		t.Fatalf("default sweep interval: %v", cfg.SweepInterval)
	}
	if cfg.PendingTTL != 0 || cfg.FinishedTTL != 0 {
		t.Fatalf("TTLs must default to disabled: %v / %v", cfg.PendingTTL, cfg.FinishedTTL)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("ARENA_ADDR", " :9090 ")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("ROOM_PENDING_TTL", "10m")
	t.Setenv("ROOM_FINISHED_TTL", "1h")
	t.Setenv("WS_WRITE_TIMEOUT", "2s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != ":9090" {
		t.Fatalf("addr not trimmed: %q", cfg.ListenAddr)
	}
	if cfg.JWTSecret != "s3cret" {
		t.Fatalf("secret: %q", cfg.JWTSecret)
	}
	if cfg.PendingTTL != 10*time.Minute || cfg.FinishedTTL != time.Hour {
		t.Fatalf("TTLs: %v / %v", cfg.PendingTTL, cfg.FinishedTTL)
	}
	if cfg.WriteTimeout != 2*time.Second {
		t.Fatalf("write timeout: %v", cfg.WriteTimeout)
	}
}

func TestLoadLegacyPendingTTL(t *testing.T) {
	t.Setenv("ROOM_PENDING_TTL", "")
	t.Setenv("ROOM_PENDING_TTL_SEC", "90")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PendingTTL != 90*time.Second {
		t.Fatalf("legacy TTL: %v", cfg.PendingTTL)
	}
}
