package store

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/lobby/internal/devserver/domain"
)

var (
	ErrNotFound = errors.New("store: not found")
	ErrConflict = errors.New("store: conflict")
)

// Store is the dev server's persistence. Values returned are copies.
type Store interface {
	Users() UserRepo
	Rooms() RoomRepo
}

type UserRepo interface {
	CreateUser(ctx context.Context, u domain.User) error
	GetUserByID(ctx context.Context, id string) (domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)
}

type RoomRepo interface {
	CreateRoom(ctx context.Context, r domain.Room) error
	GetRoom(ctx context.Context, id string) (domain.Room, error)
	ListRooms(ctx context.Context) ([]domain.Room, error)
	// UpdateRoom applies fn to the stored room atomically. An error from fn
	// aborts the update and is returned as is.
	UpdateRoom(ctx context.Context, id string, fn func(*domain.Room) error) error
	DeleteRoom(ctx context.Context, id string) error
}
