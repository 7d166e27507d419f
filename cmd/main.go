package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"damper/internal/config"
	"damper/internal/damper"
	"damper/internal/engine"
	"damper/internal/handlers"
	"damper/internal/logger"
	"damper/internal/repository"
	"damper/internal/repository/db"
	"damper/internal/server"
	"damper/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load("configs")
	if err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}
	log := logger.Get(cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	conn, err := db.InitDB(cfg.DBPath)
	if err != nil {
		log.Fatalw("failed to init sqlite", "path", cfg.DBPath, "err", err)
	}
	defer closeDB(conn, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// wire dependencies
	repos := repository.NewRepository(conn)
	session := engine.NewSession(damper.NewSchema(), engine.Options{
		FrameRate:       cfg.Engine.FrameRate,
		MaxReplayFrames: cfg.Engine.MaxReplayFrames,
		MaxCachedFrames: cfg.Engine.MaxCachedFrames,
	})
	source, err := service.Restore(ctx, session, repos, cfg.NodePreset, log)
	if err != nil {
		log.Fatalw("failed to restore node parameters", "err", err)
	}
	log.Infow("node restored", "source", source)

	services := service.NewService(repos, session, cfg, log)
	apiHandler := handlers.NewHandler(services, log)

	go services.Playback.Run(ctx, cfg.Playback.Tick)

	srv := server.New(cfg.Port, apiHandler.InitRoutes())
	go func() {
		log.Infow("http server listening", "addr", srv.Addr())
		if err := srv.Run(); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()

	waitForShutdown(cancel, srv, log)
}

func closeDB(conn *sql.DB, log *logger.Logger) {
	if err := conn.Close(); err != nil {
		log.Errorw("failed to close sqlite", "err", err)
	}
}

// waitForShutdown blocks until SIGINT/SIGTERM, then stops playback and drains the server.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")
	cancel()

	ctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
