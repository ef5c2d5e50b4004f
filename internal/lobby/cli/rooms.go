package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/aussiebroadwan/lobby/pkg/lobbysdk"
)

// Rooms lists the game rooms as a table.
func (a *App) Rooms(ctx context.Context) error {
	rooms, err := a.client.ListRooms(ctx)
	if err != nil {
		return err
	}
	if len(rooms) == 0 {
		fmt.Fprintln(a.out, "No rooms yet. Create one with: create <name>")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tOWNER\tPLAYERS\tLOCKED")
	for _, r := range rooms {
		locked := ""
		if r.HasPassword {
			locked = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d/%d\t%s\n", r.ID, r.Name, r.Owner, r.Players, r.MaxPlayers, locked)
	}
	return tw.Flush()
}

// Create asks for an optional room password and creates the room.
func (a *App) Create(ctx context.Context, name string, maxPlayers int) error {
	password, err := getPassword(a.reader, "Room password (empty for none)", a.out)
	if err != nil {
		return err
	}

	room, err := a.client.CreateRoom(ctx, lobbysdk.CreateRoomRequest{
		Name:       name,
		Password:   password,
		MaxPlayers: maxPlayers,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Created room %s (%s)\n", room.Name, room.ID)
	return nil
}

// Join joins a room. Protected rooms must be unlocked with verify first.
func (a *App) Join(ctx context.Context, roomID string) error {
	room, err := a.client.JoinRoom(ctx, roomID)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Joined %s (%d/%d players)\n", room.Name, room.Players, room.MaxPlayers)
	return nil
}

// Verify prompts for a room password and unlocks the room for this user.
func (a *App) Verify(ctx context.Context, roomID string) error {
	password, err := getPassword(a.reader, "Room password", a.out)
	if err != nil {
		return err
	}
	if err := a.client.VerifyRoomPassword(ctx, roomID, password); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Password accepted, you can now join", roomID)
	return nil
}

// Delete removes a room owned by the user.
func (a *App) Delete(ctx context.Context, roomID string) error {
	if err := a.client.DeleteRoom(ctx, roomID); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Deleted", roomID)
	return nil
}

// Tunnels lists the user's tunnels.
func (a *App) Tunnels(ctx context.Context) error {
	tunnels, err := a.client.GetUserTunnels(ctx)
	if err != nil {
		return err
	}
	if len(tunnels) == 0 {
		fmt.Fprintln(a.out, "No tunnels.")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PROXY\tLINK\tNODE")
	for _, t := range tunnels {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", t.ProxyName, t.Link, t.NodeName)
	}
	return tw.Flush()
}
