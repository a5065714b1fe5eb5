package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/park285/chess-arena/internal/arena"
	"github.com/park285/chess-arena/internal/auth"
	appcfg "github.com/park285/chess-arena/internal/config"
	"github.com/park285/chess-arena/internal/gateway"
	"github.com/park285/chess-arena/internal/obslog"
	"github.com/park285/chess-arena/internal/push"
	"github.com/park285/chess-arena/internal/record"
	"github.com/park285/chess-arena/internal/rules"
	"github.com/park285/chess-arena/internal/variant"
)

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("log init error: %v", err)
	}

	catalog, err := variant.New(cfg.VariantsDir)
	if err != nil {
		log.Fatalf("variant catalog error: %v", err)
	}

	dir := push.NewDirectory()
	bus := push.NewDispatcher(dir)
	registry := arena.NewRegistry(rules.NewChessEngine(), bus, catalog)
	registry.SetIdlePolicy(cfg.PendingTTL, cfg.FinishedTTL)

	var recorders record.Multi
	var store *record.RedisStore
	var repo *record.Repository
	if cfg.RedisURL != "" {
		store, err = record.NewRedisStore(cfg.RedisURL)
		if err != nil {
			log.Fatalf("match store init error: %v", err)
		}
		recorders = append(recorders, store)
	}
	if cfg.DatabaseURL != "" {
		repo, err = record.NewRepository(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("match repo init error: %v", err)
		}
		recorders = append(recorders, repo)
	}
	switch len(recorders) {
	case 0:
		obslog.L().Warn("recorder_disabled")
	case 1:
		registry.AttachRecorder(recorders[0])
	default:
		registry.AttachRecorder(recorders)
	}

	var verifier auth.Verifier
	if cfg.JWTSecret != "" {
		verifier = auth.NewJWTVerifier(cfg.JWTSecret)
	} else {
		obslog.L().Warn("auth_insecure_mode")
		verifier = auth.InsecureVerifier{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	registry.StartSweeper(ctx, cfg.SweepInterval)

	gw := gateway.New(verifier, registry, dir, bus, cfg.WriteTimeout)
	srv := &http.Server{Addr: cfg.ListenAddr, Handler: gw.Handler()}

	go func() {
		obslog.L().Info("server_listen",
			zap.String("addr", cfg.ListenAddr),
			zap.Strings("variants", catalog.Names()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("serve error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	obslog.L().Info("server_shutdown")
	cancel()
	sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer scancel()
	_ = srv.Shutdown(sctx)
	if store != nil {
		_ = store.Close()
	}
	if repo != nil {
		_ = repo.Close()
	}
}
