package domain

import "time"

type User struct {
	ID           string
	Username     string
	Email        string
	Group        string
	PasswordHash string     // argon2 encoded
	VIPUntil     *time.Time // nil when the user never had VIP
	Tunnels      map[string]Tunnel
	CreatedAt    time.Time
}

// Tunnel is a proxy tunnel keyed by proxy name on the owning user.
type Tunnel struct {
	Link     string
	NodeName string
}
