package http

import (
	"net/http"

	"github.com/aussiebroadwan/lobby/internal/devserver/domain"
	"github.com/aussiebroadwan/lobby/internal/devserver/service"
	"github.com/aussiebroadwan/lobby/pkg/httpx"
	"github.com/aussiebroadwan/lobby/pkg/slogx"
)

type LoginHandler struct {
	Lobby *service.LobbyService
}

type loginRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

type loginResponse struct {
	Token string `json:"token"`
	userView
}

// ServeHTTP handles POST /login. Bad credentials are a business failure,
// not a transport 401, so the caller's session is not torn down.
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := slogx.FromContext(r.Context())

	var req loginRequest
	if err := decodeBody(r, &req); err != nil || req.Username == "" || req.Password == "" {
		writeError(w, r, domain.ErrInvalidRequest)
		return
	}

	token, u, err := h.Lobby.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		log.Info("login failed", "username", req.Username, "err", err)
		writeError(w, r, err)
		return
	}

	log.Info("login", "user_id", u.ID, "remember", req.RememberMe)
	httpx.WriteOK(w, loginResponse{Token: token, userView: newUserView(u)})
}

type UserInfoHandler struct {
	Lobby *service.LobbyService
}

// ServeHTTP handles /GetUserInfo for the token's subject.
func (h *UserInfoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u, err := h.Lobby.UserByID(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteOK(w, newUserView(u))
}
