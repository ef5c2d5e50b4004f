package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"

	lobbyapp "github.com/aussiebroadwan/lobby/internal/lobby/app"
	"github.com/aussiebroadwan/lobby/pkg/guard"
	"github.com/aussiebroadwan/lobby/pkg/lobbysdk"
)

// App runs the interactive lobby client over a wired Application.
type App struct {
	session *lobbysdk.Session
	client  *lobbysdk.Client
	guard   *guard.Guard
	nav     *guard.MemoryNavigator
	start   func(ctx context.Context, initialURL string) (guard.Decision, error)

	reader *bufio.Reader
	out    io.Writer
}

// NewApp builds the REPL over application, reading commands from in and
// writing results to out.
func NewApp(application *lobbyapp.Application, in io.Reader, out io.Writer) *App {
	a := &App{
		session: application.Session,
		client:  application.Client,
		guard:   application.Guard,
		nav:     application.Navigator,
		start:   application.Start,
		reader:  bufio.NewReader(in),
		out:     out,
	}

	a.nav.OnRedirect = func(target string) {
		fmt.Fprintf(a.out, "Sign in at:\n  %s\nthen run: open <the link you are sent back to>\n", target)
	}

	return a
}

// Run performs the initial page load and then reads commands until exit.
func (a *App) Run(ctx context.Context, initialURL string) {
	d, err := a.start(ctx, initialURL)
	if err != nil {
		fmt.Fprintln(a.out, "Error:", describe(err))
	} else {
		a.report(d)
	}

	runREPL(ctx, a, a.status, a.reader)
}

func (a *App) isLoggedIn() bool {
	return a.session.IsAuthenticated()
}

// status is shown in the prompt: user@path, or the bare path when anonymous.
func (a *App) status() string {
	path := a.nav.Current().Path
	if u := a.session.User(); u != nil && a.session.IsAuthenticated() {
		return u.Username + "@" + path
	}
	return path
}

// report prints what the guard did with a navigation. External redirects
// are printed by the navigator hook.
func (a *App) report(d guard.Decision) {
	if d.Action == guard.Allow {
		fmt.Fprintln(a.out, "At", a.nav.Current().RequestURI())
	}
}

// Open loads target as a fresh page, which is how a token handed back by
// single sign-on reaches the client.
func (a *App) Open(ctx context.Context, target string) error {
	if err := a.nav.Load(target); err != nil {
		return err
	}
	d, err := a.guard.Navigate(ctx, a.nav.Current().RequestURI())
	if err != nil {
		return err
	}
	a.report(d)
	return nil
}

// Go navigates within the app.
func (a *App) Go(ctx context.Context, path string) error {
	d, err := a.guard.Navigate(ctx, path)
	if err != nil {
		return err
	}
	a.report(d)
	return nil
}

// Where prints the current location and the pending external redirect, if any.
func (a *App) Where(context.Context) error {
	fmt.Fprintln(a.out, "Location:", a.nav.Current().String())
	if ext := a.nav.External(); ext != "" {
		fmt.Fprintln(a.out, "Pending sign-in:", ext)
	}
	fmt.Fprintln(a.out, "Session:", a.session.State())
	return nil
}
