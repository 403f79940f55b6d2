// Package client implements the thin terminal player client: local
// inventory, command parsing, and the datagram session with a room server.
// The client holds no authoritative state; rooms trust it only as far as
// the wire contract requires.
package client

import (
	"strings"
	"sync"
)

// Player holds the client-side state: a display name and the local
// inventory. Rooms never see the inventory; it exists only on this side of
// the wire.
type Player struct {
	name string

	mu        sync.Mutex
	inventory []string
}

// NewPlayer creates a player with an empty inventory.
//
// Precondition: name must be non-empty.
func NewPlayer(name string) *Player {
	return &Player{name: name}
}

// Name returns the display name sent on join and exit.
func (p *Player) Name() string { return p.name }

// AddItem puts one instance of an item into the inventory.
func (p *Player) AddItem(item string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.inventory = append(p.inventory, item)
}

// RemoveItem removes one instance of an item from the inventory.
//
// Postcondition: Returns true and removes exactly one instance if held,
// false with no mutation otherwise.
func (p *Player) RemoveItem(item string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, have := range p.inventory {
		if have == item {
			p.inventory = append(p.inventory[:i], p.inventory[i+1:]...)
			return true
		}
	}
	return false
}

// Items returns a copy of the inventory.
func (p *Player) Items() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	items := make([]string, len(p.inventory))
	copy(items, p.inventory)
	return items
}

// DescribeInventory renders the inventory for display.
func (p *Player) DescribeInventory() string {
	var b strings.Builder
	b.WriteString("You are holding:\n")

	items := p.Items()
	if len(items) == 0 {
		b.WriteString("\tInventory is empty.\n")
		return b.String()
	}
	for _, item := range items {
		b.WriteString("\t")
		b.WriteString(item)
		b.WriteString("\n")
	}
	return b.String()
}
