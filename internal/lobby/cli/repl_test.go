package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/lobby/pkg/lobbysdk"
)

type fakeExec struct {
	loggedIn bool
	calls    []string
	err      error
}

func (f *fakeExec) record(call string) error {
	f.calls = append(f.calls, call)
	return f.err
}

func (f *fakeExec) isLoggedIn() bool {
	return f.loggedIn
}

func (f *fakeExec) Open(_ context.Context, target string) error {
	return f.record("open " + target)
}

func (f *fakeExec) Go(_ context.Context, path string) error {
	return f.record("go " + path)
}

func (f *fakeExec) Where(context.Context) error {
	return f.record("where")
}

func (f *fakeExec) Login(_ context.Context, username string) error {
	return f.record("login " + username)
}

func (f *fakeExec) Logout(context.Context) error {
	return f.record("logout")
}

func (f *fakeExec) WhoAmI(context.Context) error {
	return f.record("whoami")
}

func (f *fakeExec) Rooms(context.Context) error {
	return f.record("rooms")
}

func (f *fakeExec) Tunnels(context.Context) error {
	return f.record("tunnels")
}

func (f *fakeExec) Create(_ context.Context, name string, maxPlayers int) error {
	return f.record(fmt.Sprintf("create %s %d", name, maxPlayers))
}

func (f *fakeExec) Join(_ context.Context, id string) error {
	return f.record("join " + id)
}

func (f *fakeExec) Verify(_ context.Context, id string) error {
	return f.record("verify " + id)
}

func (f *fakeExec) Delete(_ context.Context, id string) error {
	return f.record("delete " + id)
}

// captureOutput swaps the print seams and returns everything printed.
func captureOutput(t *testing.T) *strings.Builder {
	t.Helper()
	var sb strings.Builder
	oldLn, oldPrint := printlnFn, printFn
	t.Cleanup(func() { printlnFn, printFn = oldLn, oldPrint })
	printlnFn = func(a ...any) (int, error) { return fmt.Fprintln(&sb, a...) }
	printFn = func(a ...any) (int, error) { return fmt.Fprint(&sb, a...) }
	return &sb
}

func TestREPLDispatch(t *testing.T) {
	out := captureOutput(t)
	f := &fakeExec{loggedIn: true}

	input := strings.Join([]string{
		"",
		"open http://app.example/lobby?token=abc",
		"go /lobby",
		"where",
		"login alice",
		"login",
		"whoami",
		"rooms",
		"create den 6",
		"create den",
		"join r1",
		"verify r2",
		"delete r3",
		"tunnels",
		"logout",
		"exit",
		"rooms",
	}, "\n") + "\n"

	runREPL(t.Context(), f, func() string { return "alice@/lobby" }, rdr(input))

	require.Equal(t, []string{
		"open http://app.example/lobby?token=abc",
		"go /lobby",
		"where",
		"login alice",
		"login ",
		"whoami",
		"rooms",
		"create den 6",
		"create den 0",
		"join r1",
		"verify r2",
		"delete r3",
		"tunnels",
		"logout",
	}, f.calls)
	require.Contains(t, out.String(), "lobby alice@/lobby> ")
	require.Contains(t, out.String(), "Bye!")
}

func TestREPLUsageAndUnknown(t *testing.T) {
	out := captureOutput(t)
	f := &fakeExec{loggedIn: true}

	runREPL(t.Context(), f, func() string { return "/" }, rdr("open\njoin\ncreate den lots\nlogin a b\ndance\nhelp\n"))

	require.Empty(t, f.calls)
	s := out.String()
	require.Contains(t, s, "usage: open <url|path>")
	require.Contains(t, s, "usage: join <roomId>")
	require.Contains(t, s, "usage: create <name> [maxPlayers]")
	require.Contains(t, s, "usage: login [username]")
	require.Contains(t, s, "Unknown command: dance")
	require.Contains(t, s, "Available commands:")
}

func TestREPLRequiresLoginForLobbyCommands(t *testing.T) {
	out := captureOutput(t)
	f := &fakeExec{}

	runREPL(t.Context(), f, func() string { return "/login" }, rdr("rooms\njoin r1\ntunnels\nwhoami\n"))

	require.Equal(t, []string{"whoami"}, f.calls)
	require.Equal(t, 3, strings.Count(out.String(), errNotLoggedIn.Error()))
}

func TestREPLPrintsCommandErrors(t *testing.T) {
	out := captureOutput(t)
	f := &fakeExec{loggedIn: true, err: &lobbysdk.DomainError{Code: 403, Msg: "room is password protected"}}

	runREPL(t.Context(), f, func() string { return "/" }, rdr("join r1\n"))

	require.Contains(t, out.String(), "Error: room is password protected")
}

func TestREPLStopsOnCancelledContext(t *testing.T) {
	captureOutput(t)
	f := &fakeExec{loggedIn: true}

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	runREPL(ctx, f, func() string { return "/" }, rdr("rooms\n"))

	require.Empty(t, f.calls)
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&lobbysdk.LoginFailedError{Msg: "wrong password"}, "login failed: wrong password"},
		{&lobbysdk.LoginFailedError{Msg: lobbysdk.DefaultLoginMessage}, "login failed"},
		{fmt.Errorf("list: %w", lobbysdk.ErrUnauthorized), "your session has expired, please log in again"},
		{&lobbysdk.DomainError{Code: 409, Msg: "room is full"}, "room is full"},
		{fmt.Errorf("send: %w", context.DeadlineExceeded), "the lobby service did not answer in time"},
		{errors.New("plain"), "plain"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, describe(tt.err))
	}
}
