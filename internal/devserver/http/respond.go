package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/aussiebroadwan/lobby/internal/devserver/domain"
	"github.com/aussiebroadwan/lobby/pkg/httpx"
	"github.com/aussiebroadwan/lobby/pkg/slogx"
)

const maxBodyBytes = 64 << 10

const (
	regTimeLayout = "2006-01-02"
	vipTimeLayout = "2006-01-02 15:04:05"
)

// decodeBody reads a JSON request body into v. An empty body leaves v zero.
func decodeBody(r *http.Request, v any) error {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, v)
}

// writeError maps domain errors to envelope failures and anything else to a
// transport 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var domainErr *domain.Error
	if errors.As(err, &domainErr) {
		httpx.WriteFailure(w, domainErr.Code, domainErr.Msg)
		return
	}

	slogx.FromContext(r.Context()).Error("request failed", "err", err)
	httpx.WriteEnvelope(w, http.StatusInternalServerError, http.StatusInternalServerError, "internal error", nil)
}

// userID is the authenticated subject. AuthnMiddleware guarantees it.
func userID(r *http.Request) string {
	id, _ := r.Context().Value(httpx.CtxKeyUserID).(string)
	return id
}

type userView struct {
	Email    string  `json:"email"`
	Username string  `json:"username"`
	Group    string  `json:"group"`
	RegTime  string  `json:"regTime"`
	VIPTime  *string `json:"vipTime"`
}

func newUserView(u domain.User) userView {
	v := userView{
		Email:    u.Email,
		Username: u.Username,
		Group:    u.Group,
		RegTime:  u.CreatedAt.Format(regTimeLayout),
	}
	if u.VIPUntil != nil {
		s := u.VIPUntil.Local().Format(vipTimeLayout)
		v.VIPTime = &s
	}
	return v
}

type roomView struct {
	ID          string    `json:"roomId"`
	Name        string    `json:"name"`
	Owner       string    `json:"owner"`
	Players     int       `json:"players"`
	MaxPlayers  int       `json:"maxPlayers"`
	HasPassword bool      `json:"hasPassword"`
	CreatedAt   time.Time `json:"createdAt"`
}

func newRoomView(r domain.Room) roomView {
	return roomView{
		ID:          r.ID,
		Name:        r.Name,
		Owner:       r.OwnerName,
		Players:     len(r.Members),
		MaxPlayers:  r.MaxPlayers,
		HasPassword: r.HasPassword(),
		CreatedAt:   r.CreatedAt,
	}
}
