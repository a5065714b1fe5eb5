package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type AppConfig struct {
	ListenAddr string

	JWTSecret string

	RedisURL    string
	DatabaseURL string

	VariantsDir string

	// Idle-room sweeper. Zero TTLs disable the corresponding eviction.
	SweepInterval time.Duration
	PendingTTL    time.Duration
	FinishedTTL   time.Duration

	WriteTimeout time.Duration
}

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		ListenAddr:    ":8080",
		SweepInterval: 30 * time.Second,
		WriteTimeout:  5 * time.Second,
	}

	if v := strings.TrimSpace(os.Getenv("ARENA_ADDR")); v != "" {
		cfg.ListenAddr = v
	}
	cfg.JWTSecret = strings.TrimSpace(os.Getenv("JWT_SECRET"))
	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	cfg.VariantsDir = strings.TrimSpace(os.Getenv("VARIANTS_DIR"))

	if v := strings.TrimSpace(os.Getenv("ROOM_SWEEP_INTERVAL")); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.SweepInterval = d
		}
	}
	if v := strings.TrimSpace(os.Getenv("ROOM_PENDING_TTL")); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.PendingTTL = d
		}
	}
	if v := strings.TrimSpace(os.Getenv("ROOM_FINISHED_TTL")); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.FinishedTTL = d
		}
	}
	if v := strings.TrimSpace(os.Getenv("WS_WRITE_TIMEOUT")); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.WriteTimeout = d
		}
	}

	// legacy integer form (seconds) kept for older deployments
	if cfg.PendingTTL == 0 {
		if v := strings.TrimSpace(os.Getenv("ROOM_PENDING_TTL_SEC")); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				cfg.PendingTTL = time.Duration(n) * time.Second
			}
		}
	}

	return cfg, nil
}
