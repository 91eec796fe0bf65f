package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/thirdeyegames/coinflip/internal/api"
	"github.com/thirdeyegames/coinflip/internal/auth"
	"github.com/thirdeyegames/coinflip/internal/game"
	"github.com/thirdeyegames/coinflip/internal/infra/logging"
	"github.com/thirdeyegames/coinflip/internal/infra/pgutils"
	"github.com/thirdeyegames/coinflip/internal/mail"
	"github.com/thirdeyegames/coinflip/internal/services/accounts"
	"github.com/thirdeyegames/coinflip/internal/services/wager"
	"github.com/thirdeyegames/coinflip/pkg/shutdownqueue"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error running api: %v", err)
		//nolint:gocritic
		os.Exit(1)
	}
}

func run(ctx context.Context) (retErr error) {
	_ = godotenv.Load()

	cfg := new(apiConfig)

	err := env.Parse(cfg)
	if err != nil {
		return fmt.Errorf("init config: %w", err)
	}

	logging.SetupJSON(cfg.LogLevel)

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		serr := shutdownqueue.Shutdown(shutdownCtx)
		if serr != nil {
			retErr = errors.Join(retErr, serr)
		}
	}()

	// --- Infra ---
	db, err := pgutils.OpenDB(ctx, cfg.Postgres.DSN)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}

	db.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
	db.SetConnMaxIdleTime(cfg.Postgres.ConnMaxIdleTime)
	db.SetConnMaxLifetime(cfg.Postgres.ConnMaxLifetime)

	shutdownqueue.Add(func(context.Context) error {
		slog.Info("Close db pool")
		return db.Close()
	})

	// --- Services ---
	tokens := auth.NewTokenManager(cfg.Auth)
	mailer := mail.New(cfg.Mail)

	accountsSrv := accounts.New(db, tokens, mailer)
	wagerSrv := wager.New(db, game.CryptoSource{})

	// --- HTTP server ---
	srv := api.NewServer(cfg.Port, accountsSrv, wagerSrv)

	// Register HTTP server graceful shutdown
	shutdownqueue.Add(func(c context.Context) error {
		slog.Info("Shut down server")

		err := srv.Shutdown(c)
		if err != nil {
			return fmt.Errorf("shutdown srv: %w", err)
		}

		return nil
	})

	// Run server
	errCh := make(chan error, 1)

	go func() {
		serr := srv.ListenAndServe()
		// http.ErrServerClosed is the normal path during Shutdown
		if serr != nil && !errors.Is(serr, http.ErrServerClosed) {
			errCh <- serr
			return
		}

		errCh <- nil
	}()

	slog.Info("API started", "port", cfg.Port)

	// --- Wait until either context cancels or server errors out ---
	select {
	case <-ctx.Done():
		// graceful path; deferred shutdownqueue.Shutdown will run
		return nil
	case serr := <-errCh:
		if serr != nil {
			return fmt.Errorf("server error: %w", serr)
		}

		return nil
	}
}
