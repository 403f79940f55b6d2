package room

import (
	"net/netip"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Member is a roster entry: a client endpoint currently present in the room.
// The endpoint is the identity key; display names may repeat across members.
type Member struct {
	// Endpoint is the client's (host, port) pair.
	Endpoint netip.AddrPort
	// Name is the display name the client joined with.
	Name string
	// SessionID correlates this occupancy in logs; it is never sent on the
	// wire and changes on every rejoin.
	SessionID uuid.UUID
}

// State is the in-memory representation of one room: description, item
// multiset, and connected-player roster. All methods are safe for concurrent
// use; the receive loop is the only writer during normal operation, with the
// shutdown path reading the roster from outside it.
type State struct {
	name        string
	description string

	mu     sync.RWMutex
	items  []string
	roster map[netip.AddrPort]Member
}

// NewState creates a room with the given initial item multiset.
//
// Precondition: name must be non-empty and match the room's registry key.
func NewState(name, description string, items []string) *State {
	s := &State{
		name:        name,
		description: description,
		items:       make([]string, len(items)),
		roster:      make(map[netip.AddrPort]Member),
	}
	copy(s.items, items)
	return s
}

// Name returns the room's globally unique identifier.
func (s *State) Name() string { return s.name }

// Description returns the room's display text.
func (s *State) Description() string { return s.description }

// TakeItem removes one instance of an item from the room.
//
// Postcondition: Returns true and removes exactly one instance if present,
// false with no mutation otherwise.
func (s *State) TakeItem(item string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, have := range s.items {
		if have == item {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return true
		}
	}
	return false
}

// AddItem appends one instance of an item to the room. It never fails;
// duplicates are allowed.
func (s *State) AddItem(item string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, item)
}

// Items returns a copy of the room's item multiset.
func (s *State) Items() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]string, len(s.items))
	copy(items, s.items)
	return items
}

// Join adds or overwrites the roster entry for an endpoint. Rejoining from
// the same endpoint replaces the previous entry and session id.
//
// Postcondition: Returns the created Member.
func (s *State) Join(ep netip.AddrPort, name string) Member {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := Member{Endpoint: ep, Name: name, SessionID: uuid.New()}
	s.roster[ep] = m
	return m
}

// Leave removes the roster entry for an endpoint.
//
// Postcondition: Returns (member, true) if an entry was removed, or
// (Member{}, false) if the endpoint was not in the roster.
func (s *State) Leave(ep netip.AddrPort) (Member, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.roster[ep]
	if !ok {
		return Member{}, false
	}
	delete(s.roster, ep)
	return m, true
}

// Member returns the roster entry for an endpoint.
func (s *State) Member(ep netip.AddrPort) (Member, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.roster[ep]
	return m, ok
}

// Members returns all roster entries in no particular order.
func (s *State) Members() []Member {
	s.mu.RLock()
	defer s.mu.RUnlock()
	members := make([]Member, 0, len(s.roster))
	for _, m := range s.roster {
		members = append(members, m)
	}
	return members
}

// Others returns all roster entries except the given endpoint, in no
// particular order. It is the broadcast fan-out set.
func (s *State) Others(ep netip.AddrPort) []Member {
	s.mu.RLock()
	defer s.mu.RUnlock()
	members := make([]Member, 0, len(s.roster))
	for _, m := range s.roster {
		if m.Endpoint != ep {
			members = append(members, m)
		}
	}
	return members
}

// RosterSize returns the number of connected players.
func (s *State) RosterSize() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.roster)
}

// Describe renders the room header shown by "look": name, description, and
// the item list.
func (s *State) Describe() string {
	var b strings.Builder
	b.WriteString(s.name)
	b.WriteString("\n\n")
	b.WriteString(s.description)
	b.WriteString("\n\n")
	b.WriteString("In this room, there are:\n")

	items := s.Items()
	if len(items) == 0 {
		b.WriteString("The room is empty.\n")
		return b.String()
	}
	for _, item := range items {
		b.WriteString("\t")
		b.WriteString(item)
		b.WriteString("\n")
	}
	return b.String()
}
