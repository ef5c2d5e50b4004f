package lobbysdk

import (
	"encoding/json"
)

// ============================================================================
// Envelope
// ============================================================================

// Envelope is the service's response wrapper. Code 200 means success; any
// other value is a domain failure even when HTTP said 200.
type Envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data,omitempty"`

	// Raw is the full response body. A few endpoints return payload fields
	// beside data rather than inside it.
	Raw json.RawMessage `json:"-"`
}

// DecodeData unmarshals the data field into target. A missing data field
// leaves target untouched.
func (e *Envelope) DecodeData(target any) error {
	if len(e.Data) == 0 || string(e.Data) == "null" {
		return nil
	}
	return json.Unmarshal(e.Data, target)
}

// ============================================================================
// Authentication
// ============================================================================

// Credentials are what the user types into the login form.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`

	// RememberMe persists the token (and profile) so the next process start
	// can sign in silently. It is sent to the service as well.
	RememberMe bool `json:"rememberMe"`
}

// loginData is the data object of a successful /login.
type loginData struct {
	Token string `json:"token"`
	profileWire
}

// profileWire is the profile as the service sends it.
type profileWire struct {
	Email    string          `json:"email"`
	Username string          `json:"username"`
	Group    string          `json:"group"`
	RegTime  string          `json:"regTime"`
	VIPTime  json.RawMessage `json:"vipTime"`
}

// ============================================================================
// Rooms
// ============================================================================

// Room is a game room as listed by the service.
type Room struct {
	ID          string `json:"roomId"`
	Name        string `json:"name"`
	Owner       string `json:"owner,omitempty"`
	Players     int    `json:"players"`
	MaxPlayers  int    `json:"maxPlayers"`
	HasPassword bool   `json:"hasPassword"`
}

// CreateRoomRequest is the payload of /CreateGameRoom.
type CreateRoomRequest struct {
	Name       string `json:"name"`
	Password   string `json:"password,omitempty"`
	MaxPlayers int    `json:"maxPlayers,omitempty"`
}

type roomRef struct {
	RoomID string `json:"roomId"`
}

type verifyRoomPasswordRequest struct {
	RoomID   string `json:"roomId"`
	Password string `json:"password"`
}

// ============================================================================
// Tunnels
// ============================================================================

// Tunnel is one of the user's proxy tunnels.
type Tunnel struct {
	ProxyName string `json:"proxy_name"`
	Link      string `json:"link"`
	NodeName  string `json:"node_name"`
}

// tunnelsResponse is the /GetUserTunnel body; tunnels sit beside data,
// keyed by proxy name.
type tunnelsResponse struct {
	Tunnel map[string]struct {
		Link     string `json:"link"`
		NodeName string `json:"node_name"`
	} `json:"tunnel"`
}
