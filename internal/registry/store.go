// Package registry implements the discovery registry: an in-memory mapping
// from symbolic server name to network address, and the datagram service
// that exposes it.
package registry

import (
	"sync"

	"github.com/roomnet/roomnet/internal/protocol"
)

// Store maps symbolic server names to network addresses. It is the only
// mutable state of the discovery service; all mutation and query goes
// through Register, Deregister, and Lookup. All methods are safe for
// concurrent use.
type Store struct {
	mu      sync.RWMutex
	entries map[string]protocol.Address
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{entries: make(map[string]protocol.Address)}
}

// Register stores or overwrites the address for a name. Re-registering an
// existing name is accepted silently: last writer wins, with no ownership
// check.
//
// Postcondition: Lookup(name) returns addr. Returns true if an existing
// entry was overwritten.
func (s *Store) Register(name string, addr protocol.Address) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, existed := s.entries[name]
	s.entries[name] = addr
	return existed
}

// Deregister removes the entry for a name.
//
// Postcondition: Returns true if an entry was removed, false if the name
// was absent.
func (s *Store) Deregister(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[name]; !ok {
		return false
	}
	delete(s.entries, name)
	return true
}

// Lookup returns the address registered for a name.
//
// Postcondition: Returns (addr, true) if present, or (Address{}, false).
func (s *Store) Lookup(name string) (protocol.Address, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	addr, ok := s.entries[name]
	return addr, ok
}

// Count returns the number of registered names.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
