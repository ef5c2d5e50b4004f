package lobbysdk

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/lobby/pkg/credstore"
	"github.com/aussiebroadwan/lobby/pkg/jwtx"
	"github.com/aussiebroadwan/lobby/pkg/slogx"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestSession(t *testing.T, handlers map[string]http.HandlerFunc) (*Session, *credstore.Memory, *fakeService) {
	t.Helper()

	client, store, svc := newTestClient(t, handlers)
	session := NewSession(client, slogx.Discard())
	session.Now = func() time.Time { return testNow }
	return session, store, svc
}

func aliceProfile(extra map[string]any) map[string]any {
	data := map[string]any{
		"email":    "Alice@Example.com",
		"username": "alice",
		"group":    "player",
		"regTime":  "2024-01-01",
		"vipTime":  testNow.Add(48 * time.Hour).Format(time.RFC3339),
	}
	for k, v := range extra {
		data[k] = v
	}
	return data
}

func TestLoginRememberMePersists(t *testing.T) {
	t.Parallel()

	session, store, svc := newTestSession(t, map[string]http.HandlerFunc{
		"/login": ok(aliceProfile(map[string]any{"token": "tok-1"})),
	})

	err := session.Login(t.Context(), Credentials{Username: "alice", Password: "pw", RememberMe: true})
	require.NoError(t, err)

	snap := session.Snapshot()
	require.True(t, snap.Authenticated)
	require.Equal(t, "tok-1", snap.Token)
	require.Equal(t, "alice", snap.User.Username)
	require.Equal(t, StateAuthenticated, session.State())

	requireStored(t, store, credstore.KeyToken, "tok-1")
	remembered, found := session.RememberedUser(t.Context())
	require.True(t, found)
	require.Equal(t, "alice", remembered.Username)

	calls := svc.Calls()
	require.Len(t, calls, 1)
	require.Equal(t, "alice", calls[0].Body["username"])
	require.Equal(t, "pw", calls[0].Body["password"])
	require.Equal(t, true, calls[0].Body["rememberMe"])
}

func TestLoginWithoutRememberMeLeavesStoreEmpty(t *testing.T) {
	t.Parallel()

	session, store, svc := newTestSession(t, map[string]http.HandlerFunc{
		"/login":        ok(aliceProfile(map[string]any{"token": "tok-1"})),
		"/GetGameRooms": ok([]any{}),
	})

	err := session.Login(t.Context(), Credentials{Username: "alice", Password: "pw"})
	require.NoError(t, err)
	require.True(t, session.IsAuthenticated())
	require.Zero(t, store.Len())

	// Later calls still carry the in-memory token.
	_, err = session.client.ListRooms(t.Context())
	require.NoError(t, err)

	calls := svc.Calls()
	require.Len(t, calls, 2)
	require.Equal(t, "Bearer tok-1", calls[1].Auth)
	require.Equal(t, "tok-1", calls[1].Body["token"])
}

func TestLoginWithoutRememberMeForgetsPreviousIdentity(t *testing.T) {
	t.Parallel()

	session, store, _ := newTestSession(t, map[string]http.HandlerFunc{
		"/login": ok(aliceProfile(map[string]any{"token": "tok-new"})),
	})
	require.NoError(t, store.Set(t.Context(), credstore.KeyToken, "tok-old"))
	require.NoError(t, store.Set(t.Context(), credstore.KeyUser, `{"username":"bob"}`))

	require.NoError(t, session.Login(t.Context(), Credentials{Username: "alice", Password: "pw"}))
	require.Zero(t, store.Len())
	require.Equal(t, "tok-new", session.Token())
}

func TestLoginFailure(t *testing.T) {
	t.Parallel()

	t.Run("domain failure carries service message", func(t *testing.T) {
		t.Parallel()

		session, store, _ := newTestSession(t, map[string]http.HandlerFunc{
			"/login": func(w http.ResponseWriter, _ *http.Request) {
				writeEnvelope(w, http.StatusOK, 401, "wrong password", nil)
			},
		})

		err := session.Login(t.Context(), Credentials{Username: "alice", Password: "bad", RememberMe: true})

		var loginErr *LoginFailedError
		require.ErrorAs(t, err, &loginErr)
		require.Equal(t, "wrong password", loginErr.Msg)

		var domainErr *DomainError
		require.ErrorAs(t, err, &domainErr)

		require.Equal(t, StateAnonymous, session.State())
		require.Zero(t, store.Len())
	})

	t.Run("transport failure carries status text", func(t *testing.T) {
		t.Parallel()

		session, _, _ := newTestSession(t, map[string]http.HandlerFunc{
			"/login": func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			},
		})

		err := session.Login(t.Context(), Credentials{Username: "alice", Password: "pw"})

		var loginErr *LoginFailedError
		require.ErrorAs(t, err, &loginErr)
		require.Equal(t, http.StatusText(http.StatusServiceUnavailable), loginErr.Msg)
		require.ErrorIs(t, err, ErrServer)
		require.False(t, session.IsAuthenticated())
	})

	t.Run("missing token", func(t *testing.T) {
		t.Parallel()

		session, _, _ := newTestSession(t, map[string]http.HandlerFunc{
			"/login": ok(aliceProfile(nil)),
		})

		err := session.Login(t.Context(), Credentials{Username: "alice", Password: "pw"})

		var loginErr *LoginFailedError
		require.ErrorAs(t, err, &loginErr)
		require.Equal(t, DefaultLoginMessage, loginErr.Msg)
		require.False(t, session.IsAuthenticated())
	})
}

func TestAutoLoginWithoutToken(t *testing.T) {
	t.Parallel()

	session, _, svc := newTestSession(t, nil)

	require.False(t, session.AutoLogin(t.Context()))
	require.Empty(t, svc.Calls())
	require.Equal(t, StateAnonymous, session.State())
}

func TestAutoLoginSuccess(t *testing.T) {
	t.Parallel()

	session, store, svc := newTestSession(t, map[string]http.HandlerFunc{
		"/GetUserInfo": ok(aliceProfile(nil)),
	})
	require.NoError(t, store.Set(t.Context(), credstore.KeyToken, "tok-1"))

	require.True(t, session.AutoLogin(t.Context()))

	snap := session.Snapshot()
	require.True(t, snap.Authenticated)
	require.Equal(t, "tok-1", snap.Token)
	require.Equal(t, "alice", snap.User.Username)
	requireStored(t, store, credstore.KeyToken, "tok-1")

	raw, found, err := store.Get(t.Context(), credstore.KeyUser)
	require.NoError(t, err)
	require.True(t, found)
	var persisted Profile
	require.NoError(t, json.Unmarshal([]byte(raw), &persisted))
	require.Equal(t, "Alice@Example.com", persisted.Email)

	calls := svc.Calls()
	require.Len(t, calls, 1)
	require.Equal(t, "/GetUserInfo", calls[0].Path)
	require.Equal(t, "tok-1", calls[0].Body["token"])
}

func TestAutoLoginFailureClearsEverything(t *testing.T) {
	t.Parallel()

	tests := map[string]http.HandlerFunc{
		"unauthorized": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		},
		"domain error": func(w http.ResponseWriter, _ *http.Request) {
			writeEnvelope(w, http.StatusOK, 403, "banned", nil)
		},
		"server error": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		},
	}

	for name, handler := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			session, store, _ := newTestSession(t, map[string]http.HandlerFunc{
				"/GetUserInfo": handler,
			})
			require.NoError(t, store.Set(t.Context(), credstore.KeyToken, "tok-1"))
			require.NoError(t, store.Set(t.Context(), credstore.KeyUser, `{"username":"alice"}`))

			require.False(t, session.AutoLogin(t.Context()))
			require.Equal(t, StateAnonymous, session.State())
			require.Equal(t, Snapshot{}, session.Snapshot())
			require.Zero(t, store.Len())
		})
	}
}

func TestAutoLoginExpiredJWTSkipsNetwork(t *testing.T) {
	t.Parallel()

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	signer, err := jwtx.NewEdDSASigner("k1", priv)
	require.NoError(t, err)
	token, err := signer.Sign(jwtx.NewClaims("u1", "alice", "player", "lobby", time.Hour, testNow.Add(-2*time.Hour)))
	require.NoError(t, err)

	session, store, svc := newTestSession(t, map[string]http.HandlerFunc{
		"/GetUserInfo": ok(aliceProfile(nil)),
	})
	require.NoError(t, store.Set(t.Context(), credstore.KeyToken, token))

	require.False(t, session.AutoLogin(t.Context()))
	require.Empty(t, svc.Calls())
	requireNotStored(t, store, credstore.KeyToken)
}

func TestLogoutClears(t *testing.T) {
	t.Parallel()

	session, store, _ := newTestSession(t, map[string]http.HandlerFunc{
		"/login": ok(aliceProfile(map[string]any{"token": "tok-1"})),
	})
	require.NoError(t, session.Login(t.Context(), Credentials{Username: "alice", Password: "pw", RememberMe: true}))

	session.Logout(t.Context())

	require.Equal(t, Snapshot{}, session.Snapshot())
	require.Equal(t, StateAnonymous, session.State())
	require.Zero(t, store.Len())

	// Idempotent
	session.Logout(t.Context())
	require.False(t, session.IsAuthenticated())
}

func TestUnauthorizedClearsSessionBeforeCallerSeesError(t *testing.T) {
	t.Parallel()

	session, store, _ := newTestSession(t, map[string]http.HandlerFunc{
		"/login": ok(aliceProfile(map[string]any{"token": "tok-1"})),
		"/GetGameRooms": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		},
	})
	require.NoError(t, session.Login(t.Context(), Credentials{Username: "alice", Password: "pw", RememberMe: true}))

	var storeLenInHook int
	session.client.OnUnauthorized(func(context.Context) { storeLenInHook = store.Len() })

	_, err := session.client.ListRooms(t.Context())
	require.ErrorIs(t, err, ErrUnauthorized)

	require.Zero(t, storeLenInHook, "session hook runs before later hooks")
	require.False(t, session.IsAuthenticated())
	requireNotStored(t, store, credstore.KeyToken)
}

func TestAutoLoginDiscardedAfterLogout(t *testing.T) {
	t.Parallel()

	arrived := make(chan struct{})
	release := make(chan struct{})

	session, store, _ := newTestSession(t, map[string]http.HandlerFunc{
		"/GetUserInfo": func(w http.ResponseWriter, r *http.Request) {
			close(arrived)
			<-release
			ok(aliceProfile(nil))(w, r)
		},
	})
	require.NoError(t, store.Set(t.Context(), credstore.KeyToken, "tok-1"))

	result := make(chan bool, 1)
	go func() { result <- session.AutoLogin(context.Background()) }()

	<-arrived
	require.Equal(t, StateAuthenticating, session.State())

	session.Logout(t.Context())
	close(release)

	require.False(t, <-result)
	require.Equal(t, StateAnonymous, session.State())
	require.Zero(t, store.Len(), "late response must not write the user record")
}

func TestAdoptToken(t *testing.T) {
	t.Parallel()

	t.Run("accepted", func(t *testing.T) {
		t.Parallel()

		session, store, svc := newTestSession(t, map[string]http.HandlerFunc{
			"/GetUserInfo": ok(aliceProfile(nil)),
		})

		require.True(t, session.AdoptToken(t.Context(), " sso-tok "))
		require.True(t, session.IsAuthenticated())
		requireStored(t, store, credstore.KeyToken, "sso-tok")
		require.Equal(t, "sso-tok", svc.Calls()[0].Body["token"])
	})

	t.Run("rejected", func(t *testing.T) {
		t.Parallel()

		session, store, _ := newTestSession(t, map[string]http.HandlerFunc{
			"/GetUserInfo": func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			},
		})

		require.False(t, session.AdoptToken(t.Context(), "bad"))
		require.False(t, session.IsAuthenticated())
		require.Zero(t, store.Len())
	})

	t.Run("empty", func(t *testing.T) {
		t.Parallel()

		session, _, svc := newTestSession(t, nil)
		require.False(t, session.AdoptToken(t.Context(), ""))
		require.Empty(t, svc.Calls())
	})
}

func TestSessionAvatarAndVIP(t *testing.T) {
	t.Parallel()

	session, _, _ := newTestSession(t, map[string]http.HandlerFunc{
		"/login": ok(aliceProfile(map[string]any{"token": "tok-1"})),
	})
	require.Empty(t, session.Avatar())
	require.Nil(t, session.VIPExpiry())

	require.NoError(t, session.Login(t.Context(), Credentials{Username: "alice", Password: "pw"}))

	require.Equal(t, AvatarHash("alice@example.com"), session.Avatar())
	require.Contains(t, session.AvatarURL(), DefaultAvatarBaseURL+"/"+session.Avatar())

	vip := session.VIPExpiry()
	require.NotNil(t, vip)
	require.True(t, vip.Equal(testNow.Add(48*time.Hour)))

	session.Now = func() time.Time { return testNow.Add(72 * time.Hour) }
	require.Nil(t, session.VIPExpiry())
}

func TestStateString(t *testing.T) {
	t.Parallel()

	require.Equal(t, "anonymous", StateAnonymous.String())
	require.Equal(t, "authenticating", StateAuthenticating.String())
	require.Equal(t, "authenticated", StateAuthenticated.String())
	require.Equal(t, "unknown", State(9).String())
}
