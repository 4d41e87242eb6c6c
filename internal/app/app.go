package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/dsamate/dsamate/internal/config"
	"github.com/dsamate/dsamate/internal/db/repository"
	"github.com/dsamate/dsamate/internal/identity"
	"github.com/dsamate/dsamate/internal/identity/jwt"
	"github.com/dsamate/dsamate/internal/logging"
	"github.com/dsamate/dsamate/internal/question"
	"github.com/dsamate/dsamate/internal/server"
)

// Application aggregates shared infrastructure (DB pools, HTTP server).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	appPool      *pgxpool.Pool
	identityPool *pgxpool.Pool
	http         *http.Server
}

// New bootstraps config, logger, both Postgres pools and the HTTP server.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env)
	logger.Info().Msg("starting application bootstrap")

	appPool, err := pgxpool.New(ctx, cfg.Postgres.DSN())
	if err != nil {
		return nil, fmt.Errorf("connect application store: %w", err)
	}

	identityPool, err := pgxpool.New(ctx, cfg.Identity.DSN())
	if err != nil {
		appPool.Close()
		return nil, fmt.Errorf("connect identity store: %w", err)
	}

	tokenMgr, err := jwt.NewManager(jwt.Config{
		Secret:   []byte(cfg.Security.JWTSecret),
		Issuer:   cfg.Security.JWTIssuer,
		Audience: cfg.Security.JWTAudience,
	})
	if err != nil {
		appPool.Close()
		identityPool.Close()
		return nil, fmt.Errorf("configure token issuer: %w", err)
	}

	userRepo := repository.NewUsers(identityPool)
	questionRepo := repository.NewQuestions(appPool)
	statusRepo := repository.NewStatuses(appPool)

	identitySvc := identity.NewService(userRepo, tokenMgr, logger)
	authHandlers := identity.NewHTTPHandlers(identitySvc, logger)

	questionSvc := question.NewService(questionRepo, statusRepo, logger)
	questionHandlers := question.NewHTTPHandlers(questionSvc, logger)

	apiServer := server.NewHTTPServer(
		cfg,
		logger,
		authHandlers,
		questionHandlers,
		identity.Middleware(identitySvc, logger),
	)

	return &Application{
		cfg:          cfg,
		logger:       logger,
		appPool:      appPool,
		identityPool: identityPool,
		http:         apiServer,
	}, nil
}

// Run starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}

	a.appPool.Close()
	a.identityPool.Close()

	a.logger.Info().Msg("shutdown complete")
	return nil
}
