package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/jeopardy/internal/httpserver"
	"github.com/robalobadob/jeopardy/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the board page and game API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(ctx context.Context) error {
	dealer, err := newSampler(cfg)
	if err != nil {
		return err
	}
	pub := newPublisher(cfg)
	defer func() {
		if err := pub.Close(); err != nil {
			log.Error().Err(err).Msg("error closing publisher")
		}
	}()

	// Games outlive their last token by at most one sweep interval.
	sessionTTL := time.Duration(cfg.SessionDays) * 24 * time.Hour
	games := store.NewMemoryStore()
	go store.RunJanitor(ctx, games, sessionTTL, time.Minute)

	srv, err := httpserver.New(games, dealer, pub, httpserver.Options{
		ClientOrigin:   cfg.ClientOrigin,
		JWTSecret:      cfg.JWTSecret,
		SessionTTL:     sessionTTL,
		RequestTimeout: cfg.RequestTimeout,
		SecureCookies:  cfg.Production(),
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting jeopardy server")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server exited")
			return err
		}
		return nil
	case <-ctx.Done():
		log.Info().Msg("received signal, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
		return err
	}
	log.Info().Msg("shutdown complete")
	return nil
}
