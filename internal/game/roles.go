package game

import (
	"math/rand"
	"sort"
)

// RoleConfig maps a role name to the number of players that should
// receive it.
type RoleConfig map[string]int

// Validate reports whether the configuration fills every non-host
// seat exactly once: all counts non-negative, summing to capacity-1
// (the host seat receives no role).
func (rc RoleConfig) Validate(capacity int) bool {
	if capacity < 1 {
		return false
	}
	sum := 0
	for _, n := range rc {
		if n < 0 {
			return false
		}
		sum += n
	}
	return sum == capacity-1
}

func (rc RoleConfig) clone() RoleConfig {
	out := make(RoleConfig, len(rc))
	for name, n := range rc {
		out[name] = n
	}
	return out
}

// flatten expands the config into one entry per seat. Role names are
// sorted so the pre-shuffle sequence is deterministic.
func (rc RoleConfig) flatten() []string {
	names := make([]string, 0, len(rc))
	for name := range rc {
		names = append(names, name)
	}
	sort.Strings(names)
	var out []string
	for _, name := range names {
		for i := 0; i < rc[name]; i++ {
			out = append(out, name)
		}
	}
	return out
}

// RoleGrant records which connection was dealt which role, so the
// gateway can dispatch each member's role privately.
type RoleGrant struct {
	ConnID string
	Name   string
	Seat   SeatRole
	Role   string
}

// AssignRoles deals the room's role configuration to the non-host
// members in join order after a uniform shuffle. The count check and
// the deal run under one lock acquisition, so membership cannot shift
// between room creation's validation being re-checked and the roles
// landing.
func (r *Room) AssignRoles() ([]RoleGrant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	deck := r.roles.flatten()
	players := r.nonHostMembers()
	if len(deck) != len(players) {
		return nil, ErrRoleCountMismatch
	}
	rand.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
	for i, p := range players {
		p.role = deck[i]
	}
	grants := make([]RoleGrant, 0, len(r.members))
	for _, m := range r.members {
		grants = append(grants, RoleGrant{ConnID: m.connID, Name: m.name, Seat: m.seat, Role: m.role})
	}
	return grants, nil
}

// Catalog lists the role names this server knows how to deal, for the
// host's game-start view.
func Catalog() []string {
	return []string{"werewolf", "villager", "seer", "witch", "hunter", "pyromaniac"}
}
