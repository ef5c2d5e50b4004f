package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/aussiebroadwan/lobby/internal/devserver/domain"
	"github.com/aussiebroadwan/lobby/internal/devserver/store"
	"github.com/aussiebroadwan/lobby/pkg/cryptox"
	"github.com/aussiebroadwan/lobby/pkg/idx"
)

const (
	DefaultMaxPlayers = 4
	MinPlayers        = 2
	MaxPlayers        = 16
)

// CreateRoom opens a room with the caller as owner and first member.
func (s *LobbyService) CreateRoom(ctx context.Context, ownerID, name, password string, maxPlayers int) (domain.Room, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Room{}, domain.ErrRoomNameRequired
	}

	owner, err := s.UserByID(ctx, ownerID)
	if err != nil {
		return domain.Room{}, err
	}

	if maxPlayers == 0 {
		maxPlayers = DefaultMaxPlayers
	}
	maxPlayers = min(max(maxPlayers, MinPlayers), MaxPlayers)

	var hash string
	if password != "" {
		if hash, err = cryptox.HashPassword(password); err != nil {
			return domain.Room{}, fmt.Errorf("hash room password: %w", err)
		}
	}

	r := domain.Room{
		ID:           idx.New().String(),
		Name:         name,
		OwnerID:      owner.ID,
		OwnerName:    owner.Username,
		PasswordHash: hash,
		MaxPlayers:   maxPlayers,
		Members:      []string{owner.ID},
		CreatedAt:    s.now(),
	}
	if err := s.Store.Rooms().CreateRoom(ctx, r); err != nil {
		return domain.Room{}, err
	}

	s.Logger.Info("room created", "room_id", r.ID, "owner", owner.Username)
	return r, nil
}

// JoinRoom adds the caller to a room. Protected rooms require a prior
// VerifyRoomPassword. Joining twice is a no-op.
func (s *LobbyService) JoinRoom(ctx context.Context, userID, roomID string) (domain.Room, error) {
	var joined domain.Room
	err := s.Store.Rooms().UpdateRoom(ctx, roomID, func(r *domain.Room) error {
		if r.IsMember(userID) {
			joined = r.Clone()
			return nil
		}
		if r.HasPassword() && !r.IsAdmitted(userID) {
			return domain.ErrRoomLocked
		}
		if len(r.Members) >= r.MaxPlayers {
			return domain.ErrRoomFull
		}
		r.Members = append(r.Members, userID)
		joined = r.Clone()
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return domain.Room{}, domain.ErrRoomNotFound
	}
	return joined, err
}

// ListRooms returns every room, oldest first.
func (s *LobbyService) ListRooms(ctx context.Context) ([]domain.Room, error) {
	return s.Store.Rooms().ListRooms(ctx)
}

// DeleteRoom removes a room. Only its owner may.
func (s *LobbyService) DeleteRoom(ctx context.Context, userID, roomID string) error {
	r, err := s.Store.Rooms().GetRoom(ctx, roomID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.ErrRoomNotFound
	}
	if err != nil {
		return err
	}
	if r.OwnerID != userID {
		return domain.ErrNotRoomOwner
	}

	if err := s.Store.Rooms().DeleteRoom(ctx, roomID); err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	s.Logger.Info("room deleted", "room_id", roomID)
	return nil
}

// VerifyRoomPassword checks password and, on success, admits the caller.
// Open rooms accept any password.
func (s *LobbyService) VerifyRoomPassword(ctx context.Context, userID, roomID, password string) error {
	r, err := s.Store.Rooms().GetRoom(ctx, roomID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.ErrRoomNotFound
	}
	if err != nil {
		return err
	}
	if !r.HasPassword() {
		return nil
	}
	if err := cryptox.VerifyPassword(password, r.PasswordHash); err != nil {
		return domain.ErrRoomPassword
	}

	err = s.Store.Rooms().UpdateRoom(ctx, roomID, func(r *domain.Room) error {
		if !slices.Contains(r.Admitted, userID) {
			r.Admitted = append(r.Admitted, userID)
		}
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return domain.ErrRoomNotFound
	}
	return err
}

// Tunnels returns the caller's proxy tunnels keyed by proxy name.
func (s *LobbyService) Tunnels(ctx context.Context, userID string) (map[string]domain.Tunnel, error) {
	u, err := s.UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.Tunnels == nil {
		return map[string]domain.Tunnel{}, nil
	}
	return u.Tunnels, nil
}
