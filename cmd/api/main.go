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

	"github.com/01moynul/storefront-golang/internal/auth"
	"github.com/01moynul/storefront-golang/internal/config"
	"github.com/01moynul/storefront-golang/internal/database"
	"github.com/01moynul/storefront-golang/internal/email"
	"github.com/01moynul/storefront-golang/internal/handlers"
	"github.com/01moynul/storefront-golang/internal/media"
	"github.com/01moynul/storefront-golang/internal/payment"
	"github.com/01moynul/storefront-golang/internal/routes"
	"github.com/01moynul/storefront-golang/internal/store"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	// 0. --- Load Configuration (.env + environment) ---
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. --- Main Database Connection ---
	db, err := database.OpenDB(ctx, cfg.DSN)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(ctx, db, database.MySQL); err != nil {
		return err
	}

	// 2. --- Payment Provider (optional) ---
	var payments payment.Provider
	if sp, err := payment.NewStripeProvider(cfg.Payment, nil); err == nil {
		payments = sp
	} else {
		logger.Warn("payments disabled", slog.Any("error", err))
	}

	// --- Application Setup ---
	app := &handlers.Handlers{
		Store:    store.New(db),
		Tokens:   auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL),
		Media:    media.LocalStorage{Dir: cfg.MediaDir, BaseURL: cfg.BaseURL},
		Mailer:   email.LogSender{Logger: logger},
		Payments: payments,
		Pricing:  cfg.Pricing,
		Pages:    handlers.PageConfig{Default: cfg.PageSize, Max: cfg.MaxPageSize},
		Currency: cfg.Payment.Currency,
		Logger:   logger,
	}

	// --- Router Setup ---
	router := routes.SetupRouter(app, routes.Options{
		CORSOrigins: cfg.CORSOrigins,
		MediaDir:    cfg.MediaDir,
	})

	// --- Start Server ---
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting storefront API server", slog.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
