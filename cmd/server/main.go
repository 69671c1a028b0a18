package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/xtding233/sticker-gacha/internal/config"
	"github.com/xtding233/sticker-gacha/internal/game"
	"github.com/xtding233/sticker-gacha/internal/logger"
	"github.com/xtding233/sticker-gacha/internal/rpc"
	"github.com/xtding233/sticker-gacha/internal/server"
	"github.com/xtding233/sticker-gacha/internal/session"
	"github.com/xtding233/sticker-gacha/internal/storage/sqlite"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger.InitLogger(logger.Config{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		ServiceName: logger.DefaultServiceName,
		Version:     cfg.ServiceVersion,
		Environment: cfg.Environment,
	})
	slog.Info("Starting sticker gacha server",
		"http_addr", cfg.HTTPAddr,
		"grpc_addr", cfg.GRPCAddr,
		"game", cfg.Game,
		"event", cfg.Event)

	games, err := game.NewProvider(game.NewLoader(cfg.ConfigDir), cfg.Game, cfg.Event)
	if err != nil {
		return err
	}
	slog.Info("Game config loaded", "version", games.Current().Version, "files", games.Files())

	store, err := sqlite.Open(cfg.SQLitePath)
	if err != nil {
		return err
	}
	defer store.Close()

	sessions := session.NewManager(games, store, session.Options{
		TTL:        cfg.SessionTTL,
		MaxEntries: cfg.SessionCacheMax,
	})
	defer sessions.Close()

	httpServer := server.NewServer(cfg.HTTPAddr, server.Deps{
		Sessions:        sessions,
		Games:           games,
		StartingBalance: cfg.StartingBalance,
		Store:           store,
	})
	grpcServer, err := rpc.NewServer(cfg.GRPCAddr, sessions)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("HTTP server listening", "addr", cfg.HTTPAddr)
		if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Stop(shutdownCtx)
	})
	g.Go(func() error { return grpcServer.Serve(ctx) })
	g.Go(func() error {
		watcher := game.NewFileWatcher(games.Files(), cfg.WatchInterval, func([]string) {
			_ = games.Reload()
		})
		watcher.Run(ctx)
		return nil
	})
	g.Go(func() error {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				// stored sessions idle for a week are dropped
				n, err := store.DeleteExpired(ctx, time.Now().Add(-7*24*time.Hour))
				if err != nil {
					slog.Warn("Session cleanup failed", "error", err)
					continue
				}
				slog.Debug("Session cleanup finished", "deleted", n)
			}
		}
	})

	err = g.Wait()
	slog.Info("Server stopped")
	return err
}
