package game

import (
	"time"

	"github.com/google/uuid"
)

type SeatRole string

const (
	SeatHost        SeatRole = "host"
	SeatParticipant SeatRole = "participant"
)

// Player is one seat in a room. All fields are unexported; every
// mutation after construction happens through the owning Room so the
// room lock covers it.
type Player struct {
	connID    string
	token     string
	name      string
	seat      SeatRole
	role      string
	alive     bool
	connected bool

	// Reserved for the in-round engine; the lobby never touches these.
	vote           string
	nightAction    string
	potionSaveUsed bool
	potionKillUsed bool
	markedByPyro   bool

	joinedAt time.Time
}

// NewPlayer seats a connection. The token is the player's resume
// credential; it is returned to the owning client once and never
// broadcast.
func NewPlayer(connID, name string, seat SeatRole) *Player {
	return &Player{
		connID:    connID,
		token:     uuid.NewString(),
		name:      name,
		seat:      seat,
		alive:     true,
		connected: true,
		joinedAt:  time.Now().UTC(),
	}
}

func (p *Player) ConnectionID() string { return p.connID }
func (p *Player) Token() string        { return p.token }
func (p *Player) Name() string         { return p.name }
func (p *Player) Seat() SeatRole       { return p.seat }
func (p *Player) IsHost() bool         { return p.seat == SeatHost }
func (p *Player) Role() string         { return p.role }

// PlayerInfo is a broadcast-safe snapshot of a seat. Role is only
// filled in views built for the member itself or for the host.
type PlayerInfo struct {
	Name      string    `json:"name"`
	Seat      SeatRole  `json:"seat"`
	Role      string    `json:"role,omitempty"`
	Alive     bool      `json:"alive"`
	Connected bool      `json:"connected"`
	JoinedAt  time.Time `json:"joinedAt"`
}

// Info is the player's own view of their seat, role included. Valid
// for a freshly constructed player or a snapshot handed out by a Room.
func (p *Player) Info() PlayerInfo { return p.info(true) }

func (p *Player) info(withRole bool) PlayerInfo {
	pi := PlayerInfo{
		Name:      p.name,
		Seat:      p.seat,
		Alive:     p.alive,
		Connected: p.connected,
		JoinedAt:  p.joinedAt,
	}
	if withRole {
		pi.Role = p.role
	}
	return pi
}
