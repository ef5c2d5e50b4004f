// Package guard decides, before every in-app navigation, whether the
// destination may be shown, and otherwise where to send the user instead.
//
// Protected routes are gated by single sign-on: an anonymous user is first
// given the chance to sign in from a token handed back in the URL, then from
// a remembered token, and is otherwise redirected to the external auth page
// with a return URL. The local login form is a public route.
package guard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"slices"
)

// TokenParam is the query parameter single sign-on hands the token back in.
const TokenParam = "token"

// maxAliasHops bounds alias chains so a cycle cannot loop forever.
const maxAliasHops = 8

var (
	ErrNoAuthURL     = errors.New("guard: auth url is required")
	ErrLoginLanding  = errors.New("guard: landing path must differ from login path")
	ErrAliasCycle    = errors.New("guard: route alias cycle")
	ErrBadLocation   = errors.New("guard: invalid destination")
	ErrNoNavigator   = errors.New("guard: navigator is required")
	ErrNoSessionLink = errors.New("guard: session is required")
)

// Session is what the guard needs from the session manager.
type Session interface {
	IsAuthenticated() bool
	AutoLogin(ctx context.Context) bool
	AdoptToken(ctx context.Context, token string) bool
}

// Config describes the route table.
type Config struct {
	// AuthURL is the external single sign-on page.
	AuthURL string

	// LoginPath is the local login form. Always public.
	LoginPath string

	// LandingPath is where an authenticated user visiting LoginPath goes.
	LandingPath string

	// PublicPaths are reachable without a session, in addition to LoginPath.
	PublicPaths []string

	// Aliases map a path to the route that serves it, e.g. "/" to "/lobby".
	Aliases map[string]string
}

// DefaultConfig returns the lobby route table with the given SSO page.
func DefaultConfig(authURL string) Config {
	return Config{
		AuthURL:     authURL,
		LoginPath:   "/login",
		LandingPath: "/lobby",
		Aliases:     map[string]string{"/": "/lobby"},
	}
}

// Action is what the guard wants done with a navigation.
type Action int

const (
	// Allow shows the destination.
	Allow Action = iota

	// Redirect navigates in-app to Target instead.
	Redirect

	// External leaves the application for Target.
	External
)

func (a Action) String() string {
	switch a {
	case Allow:
		return "allow"
	case Redirect:
		return "redirect"
	case External:
		return "external"
	default:
		return "unknown"
	}
}

// Decision is the outcome for one navigation.
type Decision struct {
	Action Action
	Target string
}

// Guard evaluates navigations against the session.
type Guard struct {
	cfg     Config
	authURL *url.URL
	session Session
	nav     Navigator
	logger  *slog.Logger
}

// New validates cfg and returns a guard over session and nav.
func New(cfg Config, session Session, nav Navigator, logger *slog.Logger) (*Guard, error) {
	if session == nil {
		return nil, ErrNoSessionLink
	}
	if nav == nil {
		return nil, ErrNoNavigator
	}
	if cfg.AuthURL == "" {
		return nil, ErrNoAuthURL
	}
	authURL, err := url.Parse(cfg.AuthURL)
	if err != nil {
		return nil, fmt.Errorf("guard: invalid auth url: %w", err)
	}
	if cfg.LoginPath == "" {
		cfg.LoginPath = "/login"
	}
	if cfg.LandingPath == "" {
		cfg.LandingPath = "/lobby"
	}
	if cfg.LoginPath == cfg.LandingPath {
		return nil, ErrLoginLanding
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Guard{
		cfg:     cfg,
		authURL: authURL,
		session: session,
		nav:     nav,
		logger:  logger.With("component", "guard"),
	}, nil
}

// Before decides what should happen for a navigation to dest, a path with
// optional query. It may sign the user in from a handed-over or remembered
// token, and rewrites the current location when it consumes one.
func (g *Guard) Before(ctx context.Context, dest string) (Decision, error) {
	target, err := g.resolve(dest)
	if err != nil {
		return Decision{}, err
	}

	authenticated := g.session.IsAuthenticated()

	if target.Path == g.cfg.LoginPath && authenticated {
		return Decision{Action: Redirect, Target: g.cfg.LandingPath}, nil
	}
	if authenticated || !g.isProtected(target.Path) {
		return Decision{Action: Allow, Target: target.RequestURI()}, nil
	}

	current := g.nav.Current()
	if token := current.Query().Get(TokenParam); token != "" {
		if g.session.AdoptToken(ctx, token) {
			g.nav.Replace(withoutToken(current).String())
			g.logger.Info("signed in from handed-over token", "path", target.Path)
			return Decision{Action: Allow, Target: withoutToken(target).RequestURI()}, nil
		}
		g.logger.Warn("handed-over token rejected", "path", target.Path)
	} else if g.session.AutoLogin(ctx) {
		return Decision{Action: Allow, Target: target.RequestURI()}, nil
	}

	return Decision{Action: External, Target: g.ssoURL(withoutToken(current))}, nil
}

// Navigate runs Before and applies the decision to the navigator.
func (g *Guard) Navigate(ctx context.Context, dest string) (Decision, error) {
	d, err := g.Before(ctx, dest)
	if err != nil {
		return Decision{}, err
	}

	switch d.Action {
	case Allow:
		g.nav.Push(d.Target)
	case Redirect:
		return g.Navigate(ctx, d.Target)
	case External:
		g.logger.Info("redirecting to single sign-on", "dest", dest)
		g.nav.Redirect(d.Target)
	}
	return d, nil
}

// HandleUnauthorized sends the user to the login form. It is meant to be
// registered with lobbysdk.Client.OnUnauthorized.
func (g *Guard) HandleUnauthorized(context.Context) {
	g.logger.Info("session rejected, returning to login")
	g.nav.Push(g.cfg.LoginPath)
}

// LoginPath returns the login entry point.
func (g *Guard) LoginPath() string { return g.cfg.LoginPath }

// LandingPath returns the landing route.
func (g *Guard) LandingPath() string { return g.cfg.LandingPath }

func (g *Guard) isProtected(path string) bool {
	return path != g.cfg.LoginPath && !slices.Contains(g.cfg.PublicPaths, path)
}

// resolve parses dest as an in-app location and follows route aliases.
func (g *Guard) resolve(dest string) (*url.URL, error) {
	u, err := url.Parse(dest)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadLocation, err)
	}
	if u.IsAbs() || u.Host != "" {
		return nil, fmt.Errorf("%w: %q is not an in-app path", ErrBadLocation, dest)
	}
	if u.Path == "" {
		u.Path = "/"
	}

	for range maxAliasHops {
		next, ok := g.cfg.Aliases[u.Path]
		if !ok {
			return u, nil
		}
		u.Path = next
	}
	return nil, fmt.Errorf("%w at %q", ErrAliasCycle, dest)
}

func (g *Guard) ssoURL(returnTo *url.URL) string {
	u := *g.authURL
	q := u.Query()
	q.Set("return", returnTo.String())
	u.RawQuery = q.Encode()
	return u.String()
}

// withoutToken returns a copy of u minus the token query parameter. Path and
// other parameters are kept.
func withoutToken(u *url.URL) *url.URL {
	c := *u
	q := c.Query()
	if !q.Has(TokenParam) {
		return &c
	}
	q.Del(TokenParam)
	c.RawQuery = q.Encode()
	return &c
}
