package lobbysdk

import (
	"context"
	"fmt"
	"net/http"
)

// CreateRoom opens a new game room owned by the signed-in user.
func (c *Client) CreateRoom(ctx context.Context, req CreateRoomRequest) (*Room, error) {
	env, err := c.Send(ctx, "/CreateGameRoom", http.MethodPost, req)
	if err != nil {
		return nil, err
	}

	var room Room
	if err := env.DecodeData(&room); err != nil {
		return nil, fmt.Errorf("failed to decode room: %w", err)
	}
	return &room, nil
}

// JoinRoom joins the room with the given id.
func (c *Client) JoinRoom(ctx context.Context, roomID string) (*Room, error) {
	env, err := c.Send(ctx, "/JoinGameRoom", http.MethodPost, roomRef{RoomID: roomID})
	if err != nil {
		return nil, err
	}

	var room Room
	if err := env.DecodeData(&room); err != nil {
		return nil, fmt.Errorf("failed to decode room: %w", err)
	}
	return &room, nil
}

// ListRooms returns every open room.
func (c *Client) ListRooms(ctx context.Context) ([]Room, error) {
	env, err := c.Send(ctx, "/GetGameRooms", http.MethodPost, nil)
	if err != nil {
		return nil, err
	}

	var rooms []Room
	if err := env.DecodeData(&rooms); err != nil {
		return nil, fmt.Errorf("failed to decode rooms: %w", err)
	}
	if rooms == nil {
		rooms = []Room{}
	}
	return rooms, nil
}

// DeleteRoom removes a room the signed-in user owns.
func (c *Client) DeleteRoom(ctx context.Context, roomID string) error {
	_, err := c.Send(ctx, "/DeleteGameRoom", http.MethodPost, roomRef{RoomID: roomID})
	return err
}

// VerifyRoomPassword checks password against a protected room. A wrong
// password comes back as a *DomainError.
func (c *Client) VerifyRoomPassword(ctx context.Context, roomID, password string) error {
	_, err := c.Send(ctx, "/VerifyRoomPassword", http.MethodPost, verifyRoomPasswordRequest{
		RoomID:   roomID,
		Password: password,
	})
	return err
}
