package app

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := LoadConfig()
		require.Equal(t, "lobby-devserver", cfg.Issuer)
		require.Equal(t, 12*time.Hour, cfg.TokenTTL)
		require.Equal(t, 8080, cfg.Port)
		require.Equal(t, "demo", cfg.SeedUsername)
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("PORT", "9090")
		t.Setenv("DEVSERVER_TOKEN_TTL", "90")
		t.Setenv("DEVSERVER_SEED_USERNAME", "alice")
		t.Setenv("DEVSERVER_SEED_VIP_DAYS", "not-a-number")

		cfg := LoadConfig()
		require.Equal(t, 9090, cfg.Port)
		require.Equal(t, 90*time.Minute, cfg.TokenTTL)
		require.Equal(t, "alice", cfg.SeedUsername)
		require.Equal(t, 30, cfg.SeedVIPDays)
	})
}

func TestNewSeedsUser(t *testing.T) {
	cfg := LoadConfig()
	cfg.LogLevel = "error"

	app, err := New(cfg)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"username":"demo","password":"demo"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"token"`)
	require.Contains(t, rec.Body.String(), `"code":200`)
}
