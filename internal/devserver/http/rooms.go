package http

import (
	"net/http"

	"github.com/aussiebroadwan/lobby/internal/devserver/domain"
	"github.com/aussiebroadwan/lobby/internal/devserver/service"
	"github.com/aussiebroadwan/lobby/pkg/httpx"
)

type RoomsHandler struct {
	Lobby *service.LobbyService
}

type createRoomRequest struct {
	Name       string `json:"name"`
	Password   string `json:"password"`
	MaxPlayers int    `json:"maxPlayers"`
}

type roomRequest struct {
	RoomID   string `json:"roomId"`
	Password string `json:"password"`
}

func (h *RoomsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, domain.ErrInvalidRequest)
		return
	}

	room, err := h.Lobby.CreateRoom(r.Context(), userID(r), req.Name, req.Password, req.MaxPlayers)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteOK(w, newRoomView(room))
}

func (h *RoomsHandler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRoomRequest(w, r)
	if !ok {
		return
	}

	room, err := h.Lobby.JoinRoom(r.Context(), userID(r), req.RoomID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteOK(w, newRoomView(room))
}

func (h *RoomsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.Lobby.ListRooms(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	views := make([]roomView, 0, len(rooms))
	for _, room := range rooms {
		views = append(views, newRoomView(room))
	}
	httpx.WriteOK(w, views)
}

func (h *RoomsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRoomRequest(w, r)
	if !ok {
		return
	}

	if err := h.Lobby.DeleteRoom(r.Context(), userID(r), req.RoomID); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteOK(w, nil)
}

func (h *RoomsHandler) HandleVerifyPassword(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRoomRequest(w, r)
	if !ok {
		return
	}

	if err := h.Lobby.VerifyRoomPassword(r.Context(), userID(r), req.RoomID, req.Password); err != nil {
		writeError(w, r, err)
		return
	}
	httpx.WriteOK(w, nil)
}

func decodeRoomRequest(w http.ResponseWriter, r *http.Request) (roomRequest, bool) {
	var req roomRequest
	if err := decodeBody(r, &req); err != nil || req.RoomID == "" {
		writeError(w, r, domain.ErrInvalidRequest)
		return roomRequest{}, false
	}
	return req, true
}
