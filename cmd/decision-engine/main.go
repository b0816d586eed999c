package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"leasing_hub/internal/app"
	"leasing_hub/internal/config"
	"leasing_hub/internal/lib/logger/sl"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)
	log.Info("starting decision engine", slog.String("env", cfg.Env))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	application, err := app.New(ctx, log, cfg)
	if err != nil {
		log.Error("failed to init application", sl.Err(err))
		os.Exit(1)
	}
	defer application.Close()

	go application.GRPCServer.MustRun()
	go application.HTTPServer.MustRun()

	if cfg.Scheduler.Enabled {
		go application.Runner.Start(ctx, cfg.Scheduler.Interval, cfg.Scheduler.RunOnStart)
	}

	reload := make(chan os.Signal, 1)
	signal.Notify(reload, syscall.SIGHUP)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)

	for {
		select {
		case <-reload:
			if err := application.Rules.Reload(); err != nil {
				log.Error("failed to reload decision rules", sl.Err(err))
				continue
			}
			log.Info("decision rules reloaded")
		case sign := <-stop:
			log.Info("stopping application", slog.String("signal", sign.String()))
			cancel()

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
			application.HTTPServer.Stop(shutdownCtx)
			if err := application.Runner.Drain(shutdownCtx); err != nil {
				log.Warn("decision engine run still in progress at shutdown", sl.Err(err))
			}
			shutdownCancel()
			application.GRPCServer.Stop()

			log.Info("application stopped")
			return
		}
	}
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}

