package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aussiebroadwan/lobby/pkg/credstore"
	"github.com/aussiebroadwan/lobby/pkg/credstore/sqlite"
	"github.com/aussiebroadwan/lobby/pkg/cryptox"
	"github.com/aussiebroadwan/lobby/pkg/guard"
	"github.com/aussiebroadwan/lobby/pkg/lobbysdk"
	"github.com/aussiebroadwan/lobby/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// ErrUnknownStoreMode is returned for a LOBBY_STORE_MODE other than file or memory.
var ErrUnknownStoreMode = errors.New("unknown store mode")

// Application is the interactive lobby client with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	store  credstore.Store
	closer io.Closer

	Client    *lobbysdk.Client
	Session   *lobbysdk.Session
	Guard     *guard.Guard
	Navigator *guard.MemoryNavigator
}

// New wires the credential store, request pipeline, session and guard.
// Logs go to logOut (stderr when nil) so they stay clear of the prompt.
func New(ctx context.Context, cfg Config, logOut io.Writer) (*Application, error) {
	if logOut == nil {
		logOut = os.Stderr
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "lobby",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
			Output:  logOut,
		}),
	}

	if err := app.openStore(ctx); err != nil {
		return nil, err
	}

	app.Client = lobbysdk.NewClient(cfg.APIURL, app.store, app.logger)
	if cfg.RequestTimeout > 0 {
		app.Client.HTTPClient.Timeout = cfg.RequestTimeout
	}
	app.Client.SetRateLimit(cfg.RateLimitRPS)

	app.Session = lobbysdk.NewSession(app.Client, app.logger)
	if cfg.AvatarURL != "" {
		app.Session.AvatarBaseURL = cfg.AvatarURL
	}

	nav, err := guard.NewMemoryNavigator(cfg.AppURL)
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("failed to create navigator: %w", err)
	}
	app.Navigator = nav

	routes := guard.DefaultConfig(cfg.AuthURL)
	routes.LoginPath = cfg.LoginPath
	routes.LandingPath = cfg.LandingPath
	routes.Aliases = map[string]string{"/": cfg.LandingPath}

	app.Guard, err = guard.New(routes, app.Session, nav, app.logger)
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("failed to create guard: %w", err)
	}

	// Registered after the session so the session is already cleared when
	// the guard moves the user to the login form.
	app.Client.OnUnauthorized(app.Guard.HandleUnauthorized)

	return app, nil
}

func (app *Application) openStore(ctx context.Context) error {
	switch app.cfg.StoreMode {
	case StoreMemory, "":
		app.store = credstore.NewMemory()
		return nil
	case StoreFile:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStoreMode, app.cfg.StoreMode)
	}

	db, err := sqlite.Open(ctx, app.cfg.StoreFile)
	if err != nil {
		return fmt.Errorf("failed to open credential store: %w", err)
	}
	app.closer = db

	sealer, err := cryptox.LoadSealer(app.cfg.MasterKeyPath, app.cfg.MasterKey)
	switch {
	case errors.Is(err, cryptox.ErrNoMasterKey):
		app.logger.Warn("no master key configured, credentials are stored unencrypted", "file", app.cfg.StoreFile)
		app.store = db
	case err != nil:
		_ = db.Close()
		return fmt.Errorf("failed to load master key: %w", err)
	default:
		app.store = credstore.NewSealed(db, sealer)
	}

	app.logger.Debug("credential store opened", "file", app.cfg.StoreFile, "sealed", err == nil)
	return nil
}

// Logger returns the application logger.
func (app *Application) Logger() *slog.Logger { return app.logger }

// Config returns the configuration the application was built with.
func (app *Application) Config() Config { return app.cfg }

// Start performs the initial page load at initialURL (a path or an absolute
// URL under AppURL; empty means the landing route). A remembered token is
// probed first, then the guard decides where the user ends up.
func (app *Application) Start(ctx context.Context, initialURL string) (guard.Decision, error) {
	if initialURL == "" {
		initialURL = app.cfg.LandingPath
	}
	if err := app.Navigator.Load(initialURL); err != nil {
		return guard.Decision{}, err
	}

	current := app.Navigator.Current()
	if !current.Query().Has(guard.TokenParam) {
		if app.Session.AutoLogin(ctx) {
			if u := app.Session.User(); u != nil {
				app.logger.Info("restored remembered session", "user", u.Username)
			}
		}
	}

	return app.Guard.Navigate(ctx, current.RequestURI())
}

// Close releases the credential store.
func (app *Application) Close() error {
	if app.closer == nil {
		return nil
	}
	return app.closer.Close()
}
