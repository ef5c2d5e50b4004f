package lobbysdk

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/lobby/pkg/credstore"
)

func TestRoomGateways(t *testing.T) {
	t.Parallel()

	room := map[string]any{
		"roomId":      "01J0ROOM",
		"name":        "friday night",
		"owner":       "alice",
		"players":     1,
		"maxPlayers":  4,
		"hasPassword": true,
	}

	client, store, svc := newTestClient(t, map[string]http.HandlerFunc{
		"/CreateGameRoom": ok(room),
		"/JoinGameRoom":   ok(room),
		"/GetGameRooms":   ok([]any{room}),
		"/DeleteGameRoom": ok(nil),
		"/VerifyRoomPassword": func(w http.ResponseWriter, r *http.Request) {
			writeEnvelope(w, http.StatusOK, 403, "wrong room password", nil)
		},
	})
	require.NoError(t, store.Set(t.Context(), credstore.KeyToken, "tok"))

	t.Run("create", func(t *testing.T) {
		got, err := client.CreateRoom(t.Context(), CreateRoomRequest{Name: "friday night", Password: "pw", MaxPlayers: 4})
		require.NoError(t, err)
		require.Equal(t, "01J0ROOM", got.ID)
		require.True(t, got.HasPassword)
	})

	t.Run("join", func(t *testing.T) {
		got, err := client.JoinRoom(t.Context(), "01J0ROOM")
		require.NoError(t, err)
		require.Equal(t, 4, got.MaxPlayers)
	})

	t.Run("list", func(t *testing.T) {
		got, err := client.ListRooms(t.Context())
		require.NoError(t, err)
		require.Len(t, got, 1)
		require.Equal(t, "friday night", got[0].Name)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, client.DeleteRoom(t.Context(), "01J0ROOM"))
	})

	t.Run("verify wrong password", func(t *testing.T) {
		err := client.VerifyRoomPassword(t.Context(), "01J0ROOM", "nope")
		var domainErr *DomainError
		require.ErrorAs(t, err, &domainErr)
		require.Equal(t, "wrong room password", domainErr.Msg)
	})

	for _, call := range svc.Calls() {
		require.Equal(t, http.MethodPost, call.Method)
		require.Equal(t, "tok", call.Body["token"], call.Path)
	}
}

func TestListRoomsEmpty(t *testing.T) {
	t.Parallel()

	client, _, _ := newTestClient(t, map[string]http.HandlerFunc{
		"/GetGameRooms": ok(nil),
	})

	rooms, err := client.ListRooms(t.Context())
	require.NoError(t, err)
	require.NotNil(t, rooms)
	require.Empty(t, rooms)
}

func TestGetUserTunnels(t *testing.T) {
	t.Parallel()

	client, _, _ := newTestClient(t, map[string]http.HandlerFunc{
		"/GetUserTunnel": func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{
				"code": 200,
				"msg": "ok",
				"tunnel": {
					"zeta": {"link": "zeta.example:7000", "node_name": "syd-1"},
					"alpha": {"link": "alpha.example:7001", "node_name": "mel-2"}
				}
			}`))
		},
	})

	tunnels, err := client.GetUserTunnels(t.Context())
	require.NoError(t, err)
	require.Equal(t, []Tunnel{
		{ProxyName: "alpha", Link: "alpha.example:7001", NodeName: "mel-2"},
		{ProxyName: "zeta", Link: "zeta.example:7000", NodeName: "syd-1"},
	}, tunnels)
}
