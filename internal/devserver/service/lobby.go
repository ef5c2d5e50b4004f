package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/lobby/internal/devserver/domain"
	"github.com/aussiebroadwan/lobby/internal/devserver/store"
	"github.com/aussiebroadwan/lobby/pkg/cryptox"
	"github.com/aussiebroadwan/lobby/pkg/idx"
	"github.com/aussiebroadwan/lobby/pkg/jwtx"
)

// LobbyService implements accounts, tokens and rooms for the dev server.
type LobbyService struct {
	Store    store.Store
	Signer   jwtx.Signer
	Issuer   string
	TokenTTL time.Duration
	Logger   *slog.Logger

	// Now defaults to time.Now.
	Now func() time.Time
}

func (s *LobbyService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// NewUser describes an account to create.
type NewUser struct {
	Username string
	Password string
	Email    string
	Group    string
	VIPUntil *time.Time
	Tunnels  map[string]domain.Tunnel
}

// CreateUser hashes the password and stores the account.
func (s *LobbyService) CreateUser(ctx context.Context, nu NewUser) (domain.User, error) {
	if strings.TrimSpace(nu.Username) == "" || nu.Password == "" {
		return domain.User{}, domain.ErrInvalidRequest
	}

	hash, err := cryptox.HashPassword(nu.Password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	group := nu.Group
	if group == "" {
		group = "player"
	}

	u := domain.User{
		ID:           idx.New().String(),
		Username:     strings.TrimSpace(nu.Username),
		Email:        nu.Email,
		Group:        group,
		PasswordHash: hash,
		VIPUntil:     nu.VIPUntil,
		Tunnels:      nu.Tunnels,
		CreatedAt:    s.now(),
	}
	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return domain.User{}, domain.ErrUserExists
		}
		return domain.User{}, err
	}
	return u, nil
}

// Login checks credentials and mints a token. Unknown users and wrong
// passwords fail the same way.
func (s *LobbyService) Login(ctx context.Context, username, password string) (string, domain.User, error) {
	u, err := s.Store.Users().GetUserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		// Burn comparable time so unknown usernames are not distinguishable.
		_, _ = cryptox.HashPassword(password)
		return "", domain.User{}, domain.ErrInvalidCredentials
	}
	if err != nil {
		return "", domain.User{}, err
	}

	if err := cryptox.VerifyPassword(password, u.PasswordHash); err != nil {
		return "", domain.User{}, domain.ErrInvalidCredentials
	}

	token, err := s.Signer.Sign(jwtx.NewClaims(u.ID, u.Username, u.Group, s.Issuer, s.TokenTTL, s.now()))
	if err != nil {
		return "", domain.User{}, fmt.Errorf("sign token: %w", err)
	}
	return token, u, nil
}

// UserByID loads the account behind a verified token.
func (s *LobbyService) UserByID(ctx context.Context, id string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, domain.ErrUserNotFound
	}
	return u, err
}
