package domain

import (
	"slices"
	"time"
)

type Room struct {
	ID           string
	Name         string
	OwnerID      string
	OwnerName    string
	PasswordHash string // empty for open rooms
	MaxPlayers   int
	Members      []string // user ids, owner first
	Admitted     []string // user ids that passed the password check
	CreatedAt    time.Time
}

// HasPassword reports whether joining requires the room password.
func (r Room) HasPassword() bool { return r.PasswordHash != "" }

// IsMember reports whether userID has joined.
func (r Room) IsMember(userID string) bool { return slices.Contains(r.Members, userID) }

// IsAdmitted reports whether userID may join a protected room.
func (r Room) IsAdmitted(userID string) bool {
	return r.OwnerID == userID || slices.Contains(r.Admitted, userID)
}

// Clone returns a copy that shares no slices with r.
func (r Room) Clone() Room {
	r.Members = slices.Clone(r.Members)
	r.Admitted = slices.Clone(r.Admitted)
	return r
}
