package app

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aussiebroadwan/lobby/internal/devserver/domain"
	httpapi "github.com/aussiebroadwan/lobby/internal/devserver/http"
	"github.com/aussiebroadwan/lobby/internal/devserver/service"
	"github.com/aussiebroadwan/lobby/internal/devserver/store"
	"github.com/aussiebroadwan/lobby/pkg/idx"
	"github.com/aussiebroadwan/lobby/pkg/jwtx"
	"github.com/aussiebroadwan/lobby/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application is the dev server with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	lobby  *service.LobbyService
	server *http.Server
	router *httpapi.Router
}

// New builds the dev server. Signing keys are generated per process, so
// tokens do not survive a restart.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "lobby-devserver",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate signing key: %w", err)
	}
	signer, err := jwtx.NewEdDSASigner(idx.New().String(), priv)
	if err != nil {
		return nil, fmt.Errorf("failed to create signer: %w", err)
	}

	app.lobby = &service.LobbyService{
		Store:    store.NewMemory(),
		Signer:   signer,
		Issuer:   cfg.Issuer,
		TokenTTL: cfg.TokenTTL,
		Logger:   app.logger,
	}

	if err := app.seed(context.Background()); err != nil {
		return nil, err
	}

	app.router = httpapi.NewRouter(jwtx.NewEdDSAVerifier(signer.Public(), cfg.Issuer), BuildVersion, app.lobby, app.logger)
	app.router.ApplyRoutes()

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           app.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return app, nil
}

func (app *Application) seed(ctx context.Context) error {
	if app.cfg.SeedUsername == "" {
		return nil
	}

	var vip *time.Time
	if app.cfg.SeedVIPDays > 0 {
		t := time.Now().Add(time.Duration(app.cfg.SeedVIPDays) * 24 * time.Hour)
		vip = &t
	}

	_, err := app.lobby.CreateUser(ctx, service.NewUser{
		Username: app.cfg.SeedUsername,
		Password: app.cfg.SeedPassword,
		Email:    app.cfg.SeedEmail,
		Group:    app.cfg.SeedGroup,
		VIPUntil: vip,
		Tunnels: map[string]domain.Tunnel{
			"minecraft": {Link: "127.0.0.1:25565", NodeName: "local"},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to seed user: %w", err)
	}

	app.logger.Info("seeded user", "username", app.cfg.SeedUsername)
	return nil
}

// Handler exposes the router, mainly for tests.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the server and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.logger.Info("lobby dev server starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully stops the server.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down lobby dev server...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
		return err
	}

	app.logger.Info("lobby dev server stopped")
	return nil
}
