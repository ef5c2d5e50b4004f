package http

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/aussiebroadwan/lobby/internal/devserver/domain"
	"github.com/aussiebroadwan/lobby/internal/devserver/service"
	"github.com/aussiebroadwan/lobby/pkg/httpx"
	"github.com/aussiebroadwan/lobby/pkg/slogx"
)

// SSOHandler is a minimal single sign-on page. The client sends anonymous
// users here with ?return=<url>; a successful form login redirects back to
// that URL with the token appended.
type SSOHandler struct {
	Lobby *service.LobbyService
}

// HandleGet reports that credentials are required, echoing the return URL.
func (h *SSOHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	returnTo, ok := parseReturn(r.URL.Query().Get("return"))
	if !ok {
		writeError(w, r, domain.ErrInvalidRequest)
		return
	}

	httpx.WriteJSON(w, http.StatusUnauthorized, map[string]any{
		"error":             "login_required",
		"error_description": "post username and password to this page",
		"return":            returnTo.String(),
	})
}

// HandlePost signs the user in from form fields and redirects to the return
// URL carrying ?token=.
func (h *SSOHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	log := slogx.FromContext(r.Context())

	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "application/x-www-form-urlencoded") {
		writeError(w, r, domain.ErrInvalidRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, r, domain.ErrInvalidRequest)
		return
	}

	returnTo, ok := parseReturn(r.Form.Get("return"))
	if !ok {
		writeError(w, r, domain.ErrInvalidRequest)
		return
	}

	username := strings.TrimSpace(r.Form.Get("username"))
	token, u, err := h.Lobby.Login(r.Context(), username, r.Form.Get("password"))
	if err != nil {
		log.Info("sso login failed", "username", username, "err", err)
		writeError(w, r, err)
		return
	}

	q := returnTo.Query()
	q.Set("token", token)
	returnTo.RawQuery = q.Encode()

	log.Info("sso login", "user_id", u.ID, "return_host", returnTo.Host)
	http.Redirect(w, r, returnTo.String(), http.StatusFound)
}

// parseReturn accepts absolute http(s) URLs only.
func parseReturn(raw string) (*url.URL, bool) {
	if raw == "" {
		return nil, false
	}
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, false
	}
	return u, true
}
