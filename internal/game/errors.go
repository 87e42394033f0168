package game

import "errors"

var (
	ErrRoomNotFound      = errors.New("room not found")
	ErrRoomFull          = errors.New("room is full")
	ErrDuplicateMember   = errors.New("already joined this room")
	ErrMemberNotFound    = errors.New("player not found in room")
	ErrInvalidRoleConfig = errors.New("role counts must sum to capacity minus one")
	ErrNoAvailableRooms  = errors.New("no room codes available")
	ErrRoleCountMismatch = errors.New("role count does not match player count")
)
