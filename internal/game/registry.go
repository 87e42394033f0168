package game

import (
	"math/rand"
	"sync"
)

// codeSpace bounds room codes to [0, codeSpace). The allocation probe
// limit must equal the space size so allocation always terminates.
const codeSpace = 10000

// Registry is the process-wide map from room code to live Room. Its
// lock covers only map insert/delete/lookup; each Room serializes its
// own member mutation independently.
type Registry struct {
	mu    sync.RWMutex
	rooms map[int]*Room
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[int]*Room)}
}

// CreateRoom validates the role configuration against capacity, then
// allocates a fresh code and registers an empty room.
func (reg *Registry) CreateRoom(capacity int, roles RoleConfig) (*Room, error) {
	if !roles.Validate(capacity) {
		return nil, ErrInvalidRoleConfig
	}
	reg.mu.Lock()
	defer reg.mu.Unlock()
	code, err := reg.allocateCode()
	if err != nil {
		return nil, err
	}
	room := NewRoom(code, capacity, roles.clone())
	reg.rooms[code] = room
	return room, nil
}

// allocateCode picks a random candidate and linearly probes forward
// until a free code turns up, at most codeSpace attempts. Caller
// holds reg.mu.
func (reg *Registry) allocateCode() (int, error) {
	code := rand.Intn(codeSpace)
	for i := 0; i < codeSpace; i++ {
		if _, taken := reg.rooms[code]; !taken {
			return code, nil
		}
		code = (code + 1) % codeSpace
	}
	return 0, ErrNoAvailableRooms
}

func (reg *Registry) Lookup(code int) (*Room, error) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	room := reg.rooms[code]
	if room == nil {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

// Delete drops the room under code. Deleting an absent code is a
// no-op.
func (reg *Registry) Delete(code int) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	delete(reg.rooms, code)
}

func (reg *Registry) Count() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.rooms)
}
