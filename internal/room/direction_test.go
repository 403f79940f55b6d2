package room

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDirection_Valid(t *testing.T) {
	for _, dir := range Directions {
		got, ok := ParseDirection(string(dir))
		assert.True(t, ok, "direction %q", dir)
		assert.Equal(t, dir, got)
	}
}

func TestParseDirection_Invalid(t *testing.T) {
	for _, in := range []string{"", "northeast", "North", "sideways", "look"} {
		_, ok := ParseDirection(in)
		assert.False(t, ok, "input %q", in)
	}
}

func TestExitSentence(t *testing.T) {
	assert.Equal(t, "A doorway leads away from the room to the north.", North.ExitSentence())
	assert.Equal(t, "A doorway leads away from the room to the west.", West.ExitSentence())
	assert.Equal(t, "A latch on the roof leads away from the room above.", Up.ExitSentence())
	assert.Equal(t, "A latch on the ground leads away from the room below.", Down.ExitSentence())
}

func TestDepartureNotice(t *testing.T) {
	assert.Equal(t, "bob left the room, heading east.", East.DepartureNotice("bob"))
	assert.Equal(t, "bob left the room, heading up.", Up.DepartureNotice("bob"))
}
