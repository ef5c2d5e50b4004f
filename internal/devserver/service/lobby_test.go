package service

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/lobby/internal/devserver/domain"
	"github.com/aussiebroadwan/lobby/internal/devserver/store"
	"github.com/aussiebroadwan/lobby/pkg/jwtx"
	"github.com/aussiebroadwan/lobby/pkg/slogx"
)

func newTestService(t *testing.T) (*LobbyService, *jwtx.EdDSAVerifier) {
	t.Helper()

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	signer, err := jwtx.NewEdDSASigner("test", priv)
	require.NoError(t, err)

	svc := &LobbyService{
		Store:    store.NewMemory(),
		Signer:   signer,
		Issuer:   "lobby-test",
		TokenTTL: time.Hour,
		Logger:   slogx.Discard(),
	}
	return svc, jwtx.NewEdDSAVerifier(signer.Public(), "lobby-test")
}

func mustUser(t *testing.T, svc *LobbyService, username string) domain.User {
	t.Helper()
	u, err := svc.CreateUser(t.Context(), NewUser{Username: username, Password: "pw-" + username, Email: username + "@example.com"})
	require.NoError(t, err)
	return u
}

func TestCreateUser(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)

	u := mustUser(t, svc, "alice")
	require.NotEmpty(t, u.ID)
	require.Equal(t, "player", u.Group)
	require.NotEqual(t, "pw-alice", u.PasswordHash)

	_, err := svc.CreateUser(t.Context(), NewUser{Username: "ALICE", Password: "x"})
	require.ErrorIs(t, err, domain.ErrUserExists)

	_, err = svc.CreateUser(t.Context(), NewUser{Username: " ", Password: "x"})
	require.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestLogin(t *testing.T) {
	t.Parallel()

	svc, verifier := newTestService(t)
	alice := mustUser(t, svc, "alice")

	t.Run("valid credentials mint a verifiable token", func(t *testing.T) {
		token, u, err := svc.Login(t.Context(), "alice", "pw-alice")
		require.NoError(t, err)
		require.Equal(t, alice.ID, u.ID)

		claims, err := verifier.Verify(token)
		require.NoError(t, err)
		require.Equal(t, alice.ID, claims.Subject)
		require.Equal(t, "alice", claims.Username)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := svc.Login(t.Context(), "alice", "nope")
		require.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, _, err := svc.Login(t.Context(), "mallory", "pw")
		require.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})
}

func TestRoomLifecycle(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	alice := mustUser(t, svc, "alice")
	bob := mustUser(t, svc, "bob")
	carol := mustUser(t, svc, "carol")

	_, err := svc.CreateRoom(t.Context(), alice.ID, "  ", "", 0)
	require.ErrorIs(t, err, domain.ErrRoomNameRequired)

	room, err := svc.CreateRoom(t.Context(), alice.ID, "duel", "", 1)
	require.NoError(t, err)
	require.Equal(t, MinPlayers, room.MaxPlayers)
	require.Equal(t, []string{alice.ID}, room.Members)

	room, err = svc.JoinRoom(t.Context(), bob.ID, room.ID)
	require.NoError(t, err)
	require.Len(t, room.Members, 2)

	// Rejoining is a no-op even when full
	_, err = svc.JoinRoom(t.Context(), bob.ID, room.ID)
	require.NoError(t, err)

	_, err = svc.JoinRoom(t.Context(), carol.ID, room.ID)
	require.ErrorIs(t, err, domain.ErrRoomFull)

	require.ErrorIs(t, svc.DeleteRoom(t.Context(), bob.ID, room.ID), domain.ErrNotRoomOwner)
	require.NoError(t, svc.DeleteRoom(t.Context(), alice.ID, room.ID))
	require.ErrorIs(t, svc.DeleteRoom(t.Context(), alice.ID, room.ID), domain.ErrRoomNotFound)

	_, err = svc.JoinRoom(t.Context(), bob.ID, room.ID)
	require.ErrorIs(t, err, domain.ErrRoomNotFound)
}

func TestProtectedRoom(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	alice := mustUser(t, svc, "alice")
	bob := mustUser(t, svc, "bob")

	room, err := svc.CreateRoom(t.Context(), alice.ID, "secret", "open-sesame", 0)
	require.NoError(t, err)
	require.True(t, room.HasPassword())
	require.Equal(t, DefaultMaxPlayers, room.MaxPlayers)

	_, err = svc.JoinRoom(t.Context(), bob.ID, room.ID)
	require.ErrorIs(t, err, domain.ErrRoomLocked)

	require.ErrorIs(t, svc.VerifyRoomPassword(t.Context(), bob.ID, room.ID, "wrong"), domain.ErrRoomPassword)
	require.NoError(t, svc.VerifyRoomPassword(t.Context(), bob.ID, room.ID, "open-sesame"))

	room, err = svc.JoinRoom(t.Context(), bob.ID, room.ID)
	require.NoError(t, err)
	require.True(t, room.IsMember(bob.ID))
}

func TestListRoomsOldestFirst(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := base
	svc.Now = func() time.Time { tick = tick.Add(time.Minute); return tick }

	alice := mustUser(t, svc, "alice")
	for _, name := range []string{"first", "second", "third"} {
		_, err := svc.CreateRoom(t.Context(), alice.ID, name, "", 0)
		require.NoError(t, err)
	}

	rooms, err := svc.ListRooms(t.Context())
	require.NoError(t, err)
	require.Len(t, rooms, 3)
	require.Equal(t, "first", rooms[0].Name)
	require.Equal(t, "third", rooms[2].Name)
}

func TestTunnels(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	u, err := svc.CreateUser(t.Context(), NewUser{
		Username: "alice",
		Password: "pw",
		Tunnels:  map[string]domain.Tunnel{"mc": {Link: "mc.example:25565", NodeName: "syd-1"}},
	})
	require.NoError(t, err)

	tunnels, err := svc.Tunnels(t.Context(), u.ID)
	require.NoError(t, err)
	require.Equal(t, "syd-1", tunnels["mc"].NodeName)

	_, err = svc.Tunnels(t.Context(), "missing")
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}
