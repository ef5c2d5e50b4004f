package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// printlnFn and printFn are test seams for user-facing output.
var (
	printlnFn = fmt.Println
	printFn   = fmt.Print
)

const helpText = `Available commands:
  open <url|path>          load a location as a fresh page (accepts ?token=)
  go <path>                navigate within the app
  where                    show the current location
  login [username]         sign in with username and password
  logout                   sign out and forget remembered credentials
  whoami                   show the signed-in user
  rooms                    list game rooms
  create <name> [max]      create a room, optionally password protected
  join <roomId>            join a room
  verify <roomId>          unlock a password protected room
  delete <roomId>          delete a room you own
  tunnels                  list your tunnels
  help                     show this help
  exit | quit              leave the program`

// execIface is the command surface the REPL dispatches to. App satisfies
// it; tests provide a stub.
type execIface interface {
	isLoggedIn() bool
	Open(ctx context.Context, target string) error
	Go(ctx context.Context, path string) error
	Where(ctx context.Context) error
	Login(ctx context.Context, username string) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Rooms(ctx context.Context) error
	Create(ctx context.Context, name string, maxPlayers int) error
	Join(ctx context.Context, roomID string) error
	Verify(ctx context.Context, roomID string) error
	Delete(ctx context.Context, roomID string) error
	Tunnels(ctx context.Context) error
}

// errUsage reports a command invoked with the wrong arguments.
type errUsage string

func (e errUsage) Error() string { return "usage: " + string(e) }

// runREPL reads commands from reader until EOF, exit or ctx is done. The
// prompt shows statusFn. Command errors are printed and the loop goes on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}

		printFn(fmt.Sprintf("lobby %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			printlnFn()
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		if quit := dispatch(ctx, a, parts[0], parts[1:]); quit {
			printlnFn("Bye!")
			return
		}
	}
}

func dispatch(ctx context.Context, a execIface, cmd string, args []string) bool {
	var err error

	switch cmd {
	case "help", "?":
		printlnFn(helpText)

	case "open":
		if len(args) != 1 {
			err = errUsage("open <url|path>")
			break
		}
		err = a.Open(ctx, args[0])

	case "go":
		if len(args) != 1 {
			err = errUsage("go <path>")
			break
		}
		err = a.Go(ctx, args[0])

	case "where":
		err = a.Where(ctx)

	case "login":
		if len(args) > 1 {
			err = errUsage("login [username]")
			break
		}
		var username string
		if len(args) == 1 {
			username = args[0]
		}
		err = a.Login(ctx, username)

	case "logout":
		err = a.Logout(ctx)

	case "whoami":
		err = a.WhoAmI(ctx)

	case "rooms", "ls":
		err = requireLogin(a, func() error { return a.Rooms(ctx) })

	case "create":
		name, maxPlayers, perr := parseCreate(args)
		if perr != nil {
			err = perr
			break
		}
		err = requireLogin(a, func() error { return a.Create(ctx, name, maxPlayers) })

	case "join", "verify", "delete":
		if len(args) != 1 {
			err = errUsage(cmd + " <roomId>")
			break
		}
		roomID := args[0]
		err = requireLogin(a, func() error {
			switch cmd {
			case "join":
				return a.Join(ctx, roomID)
			case "verify":
				return a.Verify(ctx, roomID)
			default:
				return a.Delete(ctx, roomID)
			}
		})

	case "tunnels":
		err = requireLogin(a, func() error { return a.Tunnels(ctx) })

	case "exit", "quit":
		return true

	default:
		printlnFn("Unknown command:", cmd, "(try help)")
	}

	if err != nil {
		printlnFn("Error:", describe(err))
	}
	return false
}

var errNotLoggedIn = errors.New("not signed in, use login first")

func requireLogin(a execIface, fn func() error) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}
	return fn()
}

func parseCreate(args []string) (string, int, error) {
	usage := errUsage("create <name> [maxPlayers]")
	switch len(args) {
	case 1:
		return args[0], 0, nil
	case 2:
		n, err := strconv.Atoi(args[1])
		if err != nil || n <= 0 {
			return "", 0, usage
		}
		return args[0], n, nil
	default:
		return "", 0, usage
	}
}
