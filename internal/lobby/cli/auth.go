package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/aussiebroadwan/lobby/pkg/lobbysdk"
)

// getSimpleText, getPassword and getConfirm are indirections so tests can
// script prompts.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	getConfirm    = GetConfirm
)

// Login prompts for anything not supplied and signs in. On success the user
// is taken to the landing route.
func (a *App) Login(ctx context.Context, username string) error {
	var err error
	if username == "" {
		if username, err = getSimpleText(a.reader, "Username", a.out); err != nil {
			return err
		}
	}

	password, err := getPassword(a.reader, "Password", a.out)
	if err != nil {
		return err
	}

	remember, err := getConfirm(a.reader, "Remember me", a.out)
	if err != nil {
		return err
	}

	creds := lobbysdk.Credentials{Username: username, Password: password, RememberMe: remember}
	if err := a.session.Login(ctx, creds); err != nil {
		return err
	}

	fmt.Fprintln(a.out, welcomeLine(a.session.Snapshot()))
	return a.Go(ctx, a.guard.LandingPath())
}

// welcomeLine greets the signed-in user. The session may already have been
// cleared by a concurrent 401 by the time it is read.
func welcomeLine(snap lobbysdk.Snapshot) string {
	if snap.User == nil {
		return "Signed in."
	}
	return fmt.Sprintf("Welcome, %s!", snap.User.Username)
}

// Logout signs out and returns to the login route. Remembered credentials
// are cleared even when the session is already anonymous.
func (a *App) Logout(ctx context.Context) error {
	wasAuthenticated := a.session.IsAuthenticated()
	a.session.Logout(ctx)

	if wasAuthenticated {
		fmt.Fprintln(a.out, "Signed out.")
	} else {
		fmt.Fprintln(a.out, "Not signed in. Remembered credentials cleared.")
	}
	return a.Go(ctx, a.guard.LoginPath())
}

// WhoAmI prints the signed-in user's profile.
func (a *App) WhoAmI(context.Context) error {
	snap := a.session.Snapshot()
	if !snap.Authenticated || snap.User == nil {
		fmt.Fprintln(a.out, "Not signed in.")
		return nil
	}

	u := snap.User
	fmt.Fprintln(a.out, "Username:", u.Username)
	fmt.Fprintln(a.out, "Email:   ", u.Email)
	fmt.Fprintln(a.out, "Group:   ", u.Group)
	if u.RegistrationTime != "" {
		fmt.Fprintln(a.out, "Joined:  ", u.RegistrationTime)
	}
	if vip := a.session.VIPExpiry(); vip != nil {
		fmt.Fprintln(a.out, "VIP until", vip.Local().Format(time.DateTime))
	} else {
		fmt.Fprintln(a.out, "VIP:      no")
	}
	if avatar := a.session.AvatarURL(); avatar != "" {
		fmt.Fprintln(a.out, "Avatar:  ", avatar)
	}
	return nil
}
