package store

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/aussiebroadwan/lobby/internal/devserver/domain"
)

// Memory is an in-process Store. Everything is lost on restart.
type Memory struct {
	mu         sync.RWMutex
	users      map[string]domain.User // by id
	byUsername map[string]string      // lower-cased username -> id
	rooms      map[string]domain.Room
}

func NewMemory() *Memory {
	return &Memory{
		users:      make(map[string]domain.User),
		byUsername: make(map[string]string),
		rooms:      make(map[string]domain.Room),
	}
}

func (m *Memory) Users() UserRepo { return (*memoryUsers)(m) }
func (m *Memory) Rooms() RoomRepo { return (*memoryRooms)(m) }

type memoryUsers Memory

func (m *memoryUsers) CreateUser(_ context.Context, u domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(u.Username)
	if _, taken := m.byUsername[key]; taken {
		return ErrConflict
	}
	if _, taken := m.users[u.ID]; taken {
		return ErrConflict
	}
	m.users[u.ID] = cloneUser(u)
	m.byUsername[key] = u.ID
	return nil
}

func (m *memoryUsers) GetUserByID(_ context.Context, id string) (domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return domain.User{}, ErrNotFound
	}
	return cloneUser(u), nil
}

func (m *memoryUsers) GetUserByUsername(_ context.Context, username string) (domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byUsername[strings.ToLower(username)]
	if !ok {
		return domain.User{}, ErrNotFound
	}
	return cloneUser(m.users[id]), nil
}

func cloneUser(u domain.User) domain.User {
	u.Tunnels = maps.Clone(u.Tunnels)
	if u.VIPUntil != nil {
		t := *u.VIPUntil
		u.VIPUntil = &t
	}
	return u
}

type memoryRooms Memory

func (m *memoryRooms) CreateRoom(_ context.Context, r domain.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, taken := m.rooms[r.ID]; taken {
		return ErrConflict
	}
	m.rooms[r.ID] = r.Clone()
	return nil
}

func (m *memoryRooms) GetRoom(_ context.Context, id string) (domain.Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.rooms[id]
	if !ok {
		return domain.Room{}, ErrNotFound
	}
	return r.Clone(), nil
}

// ListRooms returns rooms oldest first.
func (m *memoryRooms) ListRooms(_ context.Context) ([]domain.Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rooms := make([]domain.Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		rooms = append(rooms, r.Clone())
	}
	slices.SortFunc(rooms, func(a, b domain.Room) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return rooms, nil
}

func (m *memoryRooms) UpdateRoom(_ context.Context, id string, fn func(*domain.Room) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.rooms[id]
	if !ok {
		return ErrNotFound
	}
	working := r.Clone()
	if err := fn(&working); err != nil {
		return err
	}
	m.rooms[id] = working
	return nil
}

func (m *memoryRooms) DeleteRoom(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.rooms[id]; !ok {
		return ErrNotFound
	}
	delete(m.rooms, id)
	return nil
}
