// Package server assembles the daterange HTTP application.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/goliatone/go-daterange/components/daterange"
	"github.com/goliatone/go-daterange/internal/config"
	"github.com/goliatone/go-daterange/internal/sl"
)

type App struct {
	server          *http.Server
	logger          *slog.Logger
	shutdownTimeout time.Duration
}

// New wires the router and the date range component. A nil searcher logs
// accepted ranges.
func New(cfg *config.Config, logger *slog.Logger, searcher daterange.Searcher) (*App, error) {
	if cfg == nil {
		return nil, errors.New("server: config is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if searcher == nil {
		searcher = LogSearcher(logger)
	}

	router := chi.NewRouter()
	if err := RegisterRoutes(router, cfg, logger, searcher); err != nil {
		return nil, fmt.Errorf("server: register routes: %w", err)
	}

	srv := &http.Server{
		Addr:         cfg.Address,
		Handler:      router,
		ReadTimeout:  cfg.RequestTimeout,
		WriteTimeout: cfg.RequestTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:          srv,
		logger:          logger,
		shutdownTimeout: cfg.ShutdownTimeout,
	}, nil
}

// Handler exposes the router.
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeout := a.shutdownTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		timeoutCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		if err := a.server.Shutdown(timeoutCtx); err != nil {
			a.logger.Error("shutdown failed", sl.Err(err))
			return err
		}
		return nil
	}
}

// LogSearcher accepts every range and records it.
func LogSearcher(logger *slog.Logger) daterange.Searcher {
	return daterange.SearcherFunc(func(ctx context.Context, query daterange.Query) error {
		logger.InfoContext(ctx, "date range search",
			slog.String("start_date", query.StartDate),
			slog.String("end_date", query.EndDate),
			slog.Int("days", int(query.End.Sub(query.Start).Hours()/24)+1),
		)
		return nil
	})
}
