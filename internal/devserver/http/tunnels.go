package http

import (
	"net/http"

	"github.com/aussiebroadwan/lobby/internal/devserver/service"
	"github.com/aussiebroadwan/lobby/pkg/httpx"
)

type TunnelsHandler struct {
	Lobby *service.LobbyService
}

type tunnelView struct {
	Link     string `json:"link"`
	NodeName string `json:"node_name"`
}

// tunnelsResponse carries the tunnel map beside the envelope fields rather
// than under data.
type tunnelsResponse struct {
	Code   int                   `json:"code"`
	Msg    string                `json:"msg"`
	Tunnel map[string]tunnelView `json:"tunnel"`
}

func (h *TunnelsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	tunnels, err := h.Lobby.Tunnels(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := tunnelsResponse{
		Code:   http.StatusOK,
		Msg:    "ok",
		Tunnel: make(map[string]tunnelView, len(tunnels)),
	}
	for name, t := range tunnels {
		resp.Tunnel[name] = tunnelView{Link: t.Link, NodeName: t.NodeName}
	}
	httpx.WriteJSON(w, http.StatusOK, resp)
}
