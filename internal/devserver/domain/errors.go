package domain

import "fmt"

// Error is a business failure. Code travels in the response envelope with
// HTTP 200; it is not an HTTP status.
type Error struct {
	Code int
	Msg  string
}

func (e *Error) Error() string { return fmt.Sprintf("%d: %s", e.Code, e.Msg) }

var (
	ErrInvalidCredentials = &Error{Code: 401, Msg: "invalid username or password"}
	ErrUserNotFound       = &Error{Code: 404, Msg: "user not found"}
	ErrUserExists         = &Error{Code: 409, Msg: "username already taken"}
	ErrRoomNotFound       = &Error{Code: 404, Msg: "room not found"}
	ErrRoomFull           = &Error{Code: 409, Msg: "room is full"}
	ErrRoomNameRequired   = &Error{Code: 400, Msg: "room name is required"}
	ErrRoomPassword       = &Error{Code: 403, Msg: "wrong room password"}
	ErrRoomLocked         = &Error{Code: 403, Msg: "room password must be verified first"}
	ErrNotRoomOwner       = &Error{Code: 403, Msg: "only the owner can delete a room"}
	ErrInvalidRequest     = &Error{Code: 400, Msg: "invalid request"}
)
