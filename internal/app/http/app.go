package httpapp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"leasing_hub/internal/config"
	"leasing_hub/internal/lib/logger/sl"
)

type App struct {
	log    *slog.Logger
	server *http.Server
	port   int
}

func New(log *slog.Logger, cfg config.HTTPConfig, handler http.Handler) *App {
	return &App{
		log:  log,
		port: cfg.Port,
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
	}
}

func (a *App) MustRun() {
	if err := a.Run(); err != nil {
		panic(err)
	}
}

// Run блокируется до остановки сервера. Штатная остановка ошибкой не считается.
func (a *App) Run() error {
	const op = "httpapp.Run"

	a.log.Info("http server started", slog.String("addr", a.server.Addr))

	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		a.log.Error("http server stopped", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (a *App) Stop(ctx context.Context) {
	const op = "httpapp.Stop"

	log := a.log.With(slog.String("op", op))
	log.Info("stopping http server", slog.Int("port", a.port))

	if err := a.server.Shutdown(ctx); err != nil {
		log.Error("http server shutdown failed", sl.Err(err))
	}
}
