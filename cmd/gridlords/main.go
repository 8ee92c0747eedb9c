// Command gridlords runs the game server: a lobby of concurrent
// matches exposed over HTTP and websocket, with results persisted to
// SQLite.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/maroulf/gridlords/internal/config"
	"github.com/maroulf/gridlords/internal/event"
	"github.com/maroulf/gridlords/internal/lobby"
	"github.com/maroulf/gridlords/internal/server"
	"github.com/maroulf/gridlords/internal/store"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// a missing .env just means the environment is already set
	_ = godotenv.Load()

	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	dbPath := os.Getenv("GRIDLORDS_DB")
	if dbPath == "" {
		dbPath = "data/gridlords.db"
	}
	os.MkdirAll(filepath.Dir(dbPath), 0755)
	db, err := store.Open(dbPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", dbPath)

	var srv *server.Server
	onResult := func(gameID string, result event.Result, aborted bool) {
		if err := db.SaveResult(gameID, result, aborted); err != nil {
			slog.Error("persist result", "game", gameID, "error", err)
		}
		srv.CloseRoom(gameID)
	}

	games := lobby.NewManager(cfg, onResult)
	srv = server.New(games, db)

	addr := os.Getenv("GRIDLORDS_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	httpSrv := &http.Server{Addr: addr, Handler: srv.Handler()}

	go func() {
		slog.Info("server listening", "addr", addr, "dim", cfg.Dim)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server", "error", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info("received signal, shutting down", "signal", sig)

	// abort live games first so their results reach the store; results
	// are delivered one end-game delay after the abort
	games.Shutdown()
	time.Sleep(cfg.EndGameDelay + 100*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		slog.Warn("http shutdown", "error", err)
	}
	slog.Info("goodbye")
}
