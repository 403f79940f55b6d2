// Package room implements a single game location: its state, the YAML world
// file it is defined in, and the datagram server that owns it.
package room

import "fmt"

// Direction is one of the six travel directions out of a room.
type Direction string

// The six travel directions.
const (
	North Direction = "north"
	East  Direction = "east"
	South Direction = "south"
	West  Direction = "west"
	Up    Direction = "up"
	Down  Direction = "down"
)

// Directions contains all six travel directions in display order.
var Directions = []Direction{North, South, East, West, Up, Down}

// ParseDirection reports whether s names a travel direction.
//
// Precondition: s should already be lowercased.
// Postcondition: Returns (direction, true) if s is a direction, else ("", false).
func ParseDirection(s string) (Direction, bool) {
	switch Direction(s) {
	case North, East, South, West, Up, Down:
		return Direction(s), true
	default:
		return "", false
	}
}

// ExitSentence returns the line shown by "look" for an open exit in this
// direction.
func (d Direction) ExitSentence() string {
	switch d {
	case Up:
		return "A latch on the roof leads away from the room above."
	case Down:
		return "A latch on the ground leads away from the room below."
	default:
		return fmt.Sprintf("A doorway leads away from the room to the %s.", d)
	}
}

// DepartureNotice returns the broadcast sent to remaining players when
// someone leaves through this direction.
func (d Direction) DepartureNotice(name string) string {
	return fmt.Sprintf("%s left the room, heading %s.", name, d)
}
