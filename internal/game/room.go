package game

import "sync"

// Room is a lobby identified by a short numeric code, bounding a
// fixed-capacity set of players. Members are kept in join order; the
// first member is the host. Every operation validates and mutates
// under a single acquisition of mu, so a capacity check can never be
// interleaved with another connection's join.
type Room struct {
	mu       sync.Mutex
	code     int
	capacity int
	roles    RoleConfig
	members  []*Player
}

func NewRoom(code, capacity int, roles RoleConfig) *Room {
	return &Room{code: code, capacity: capacity, roles: roles}
}

func (r *Room) Code() int     { return r.code }
func (r *Room) Capacity() int { return r.capacity }

// Roles returns a copy of the room's role configuration.
func (r *Room) Roles() RoleConfig { return r.roles.clone() }

// AddMember seats a player. The member list never exceeds capacity
// and never holds two seats for the same connection.
func (r *Room) AddMember(p *Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.members) >= r.capacity {
		return ErrRoomFull
	}
	for _, m := range r.members {
		if m.connID == p.connID {
			return ErrDuplicateMember
		}
	}
	r.members = append(r.members, p)
	return nil
}

// RemoveMember unseats the player holding connID. If the host leaves
// a room that is not emptied by the departure, the earliest-joined
// remaining member becomes host.
func (r *Room) RemoveMember(connID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ix := -1
	for i, m := range r.members {
		if m.connID == connID {
			ix = i
			break
		}
	}
	if ix < 0 {
		return ErrMemberNotFound
	}
	wasHost := r.members[ix].seat == SeatHost
	r.members = append(r.members[:ix], r.members[ix+1:]...)
	if wasHost && len(r.members) > 0 {
		r.members[0].seat = SeatHost
	}
	return nil
}

func (r *Room) IsEmpty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members) == 0
}

func (r *Room) MemberCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

// Snapshot is the room-wide view: every seat, roles omitted. Safe to
// broadcast.
func (r *Room) Snapshot() []PlayerInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]PlayerInfo, 0, len(r.members))
	for _, m := range r.members {
		out = append(out, m.info(false))
	}
	return out
}

// HostView is the full member list with assigned roles. Dispatched to
// the host connection only, never broadcast.
func (r *Room) HostView() []PlayerInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]PlayerInfo, 0, len(r.members))
	for _, m := range r.members {
		out = append(out, m.info(true))
	}
	return out
}

// MarkConnected flips the liveness flag of the member holding connID
// without unseating them.
func (r *Room) MarkConnected(connID string, connected bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.members {
		if m.connID == connID {
			m.connected = connected
			return nil
		}
	}
	return ErrMemberNotFound
}

// Resume hands the seat identified by token over to a new connection,
// preserving seat role and assigned game role. Fails if the token
// matches no member or if the new connection already holds a seat.
func (r *Room) Resume(token, newConnID string) (PlayerInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var seat *Player
	for _, m := range r.members {
		if m.token == token {
			seat = m
			break
		}
	}
	if seat == nil {
		return PlayerInfo{}, ErrMemberNotFound
	}
	for _, m := range r.members {
		if m != seat && m.connID == newConnID {
			return PlayerInfo{}, ErrDuplicateMember
		}
	}
	seat.connID = newConnID
	seat.connected = true
	return seat.info(true), nil
}

// nonHostMembers returns the participants in join order. Caller must
// hold r.mu.
func (r *Room) nonHostMembers() []*Player {
	out := make([]*Player, 0, len(r.members))
	for _, m := range r.members {
		if m.seat != SeatHost {
			out = append(out, m)
		}
	}
	return out
}
