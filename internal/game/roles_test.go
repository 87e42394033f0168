package game

import (
	"fmt"
	"reflect"
	"sort"
	"testing"
)

func TestRoleConfigValidate(t *testing.T) {
	cases := []struct {
		roles    RoleConfig
		capacity int
		want     bool
	}{
		{RoleConfig{"werewolf": 1, "villager": 2}, 4, true},
		{RoleConfig{"villager": 1}, 2, true},
		{RoleConfig{}, 1, true}, // host alone
		{RoleConfig{"villager": 1}, 3, false},
		{RoleConfig{"werewolf": 2, "villager": 2}, 4, false},
		{RoleConfig{"villager": -1, "werewolf": 2}, 2, false},
		{RoleConfig{"villager": 1}, 0, false},
	}
	for i, c := range cases {
		if got := c.roles.Validate(c.capacity); got != c.want {
			t.Fatalf("case %d: Validate(%v, %d) = %v, want %v", i, c.roles, c.capacity, got, c.want)
		}
	}
}

func TestFlattenIsDeterministic(t *testing.T) {
	rc := RoleConfig{"werewolf": 2, "villager": 3, "seer": 1}
	want := []string{"seer", "villager", "villager", "villager", "werewolf", "werewolf"}
	if got := rc.flatten(); !reflect.DeepEqual(got, want) {
		t.Fatalf("flatten() = %v, want %v", got, want)
	}
}

func TestAssignRolesCoversEveryParticipant(t *testing.T) {
	rc := RoleConfig{"werewolf": 2, "villager": 4, "seer": 1}
	room := NewRoom(1, 8, rc)
	room.AddMember(NewPlayer("conn-host", "Host", SeatHost))
	for i := 0; i < 7; i++ {
		room.AddMember(NewPlayer(fmt.Sprintf("conn-%d", i), fmt.Sprintf("Player %d", i), SeatParticipant))
	}

	grants, err := room.AssignRoles()
	if err != nil {
		t.Fatalf("should be able to assign roles: %v", err)
	}

	var dealt []string
	for _, g := range grants {
		if g.Seat == SeatHost {
			if g.Role != "" {
				t.Fatalf("host must not receive a role, got %q", g.Role)
			}
			continue
		}
		if g.Role == "" {
			t.Fatalf("participant %s received no role", g.Name)
		}
		dealt = append(dealt, g.Role)
	}

	// multiset of dealt roles must equal the configuration
	sort.Strings(dealt)
	want := rc.flatten()
	if !reflect.DeepEqual(dealt, want) {
		t.Fatalf("dealt roles %v do not match configuration %v", dealt, want)
	}
}

func TestAssignRolesCountMismatch(t *testing.T) {
	room := NewRoom(1, 4, RoleConfig{"werewolf": 1, "villager": 2})
	room.AddMember(NewPlayer("conn-host", "Host", SeatHost))
	room.AddMember(NewPlayer("conn-1", "Bob", SeatParticipant))

	// only one participant for three configured roles
	if _, err := room.AssignRoles(); err != ErrRoleCountMismatch {
		t.Fatalf("expected ErrRoleCountMismatch, got %v", err)
	}

	// nobody should have been dealt anything
	for _, p := range room.HostView() {
		if p.Role != "" {
			t.Fatalf("failed assignment must not leave roles behind, %s has %q", p.Name, p.Role)
		}
	}
}

func TestAssignRolesAfterHostSuccession(t *testing.T) {
	room := NewRoom(1, 3, RoleConfig{"werewolf": 1, "villager": 1})
	room.AddMember(NewPlayer("conn-1", "Alice", SeatHost))
	room.AddMember(NewPlayer("conn-2", "Bob", SeatParticipant))
	room.AddMember(NewPlayer("conn-3", "Carol", SeatParticipant))

	// Alice leaves, Bob inherits the host seat; only Carol is dealt to,
	// so the configured two roles no longer fit.
	room.RemoveMember("conn-1")
	if _, err := room.AssignRoles(); err != ErrRoleCountMismatch {
		t.Fatalf("expected ErrRoleCountMismatch after membership changed, got %v", err)
	}
}

func TestCatalogContainsConfiguredRoles(t *testing.T) {
	known := make(map[string]bool)
	for _, name := range Catalog() {
		known[name] = true
	}
	for _, name := range []string{"werewolf", "villager"} {
		if !known[name] {
			t.Fatalf("catalog should list %q", name)
		}
	}
}
