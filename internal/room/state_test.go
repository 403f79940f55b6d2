package room

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func ep(port uint16) netip.AddrPort {
	return netip.AddrPortFrom(netip.MustParseAddr("127.0.0.1"), port)
}

func TestState_TakeItemRemovesOneInstance(t *testing.T) {
	s := NewState("cellar", "A damp cellar.", []string{"apple", "apple", "torch"})

	assert.True(t, s.TakeItem("apple"))
	assert.Equal(t, []string{"apple", "torch"}, s.Items())

	assert.True(t, s.TakeItem("apple"))
	assert.False(t, s.TakeItem("apple"))
	assert.Equal(t, []string{"torch"}, s.Items())
}

func TestState_TakeMissingItem(t *testing.T) {
	s := NewState("cellar", "A damp cellar.", nil)
	assert.False(t, s.TakeItem("apple"))
}

func TestState_AddItemNeverFails(t *testing.T) {
	s := NewState("cellar", "A damp cellar.", nil)
	s.AddItem("apple")
	s.AddItem("apple")
	assert.Equal(t, []string{"apple", "apple"}, s.Items())
}

func TestState_ItemsReturnsCopy(t *testing.T) {
	s := NewState("cellar", "A damp cellar.", []string{"apple"})
	items := s.Items()
	items[0] = "changed"
	assert.Equal(t, []string{"apple"}, s.Items())
}

func TestState_JoinAndLeave(t *testing.T) {
	s := NewState("cellar", "A damp cellar.", nil)

	m := s.Join(ep(5000), "bob")
	assert.Equal(t, "bob", m.Name)
	assert.Equal(t, 1, s.RosterSize())

	got, ok := s.Member(ep(5000))
	require.True(t, ok)
	assert.Equal(t, m, got)

	left, ok := s.Leave(ep(5000))
	require.True(t, ok)
	assert.Equal(t, "bob", left.Name)
	assert.Equal(t, 0, s.RosterSize())

	_, ok = s.Leave(ep(5000))
	assert.False(t, ok)
}

func TestState_RejoinOverwritesEntry(t *testing.T) {
	s := NewState("cellar", "A damp cellar.", nil)

	first := s.Join(ep(5000), "bob")
	second := s.Join(ep(5000), "robert")

	assert.Equal(t, 1, s.RosterSize())
	got, ok := s.Member(ep(5000))
	require.True(t, ok)
	assert.Equal(t, "robert", got.Name)
	assert.NotEqual(t, first.SessionID, second.SessionID)
}

func TestState_DuplicateNamesDistinctEndpoints(t *testing.T) {
	// Names are not identity; two bobs from different endpoints coexist.
	s := NewState("cellar", "A damp cellar.", nil)
	s.Join(ep(5000), "bob")
	s.Join(ep(5001), "bob")
	assert.Equal(t, 2, s.RosterSize())
}

func TestState_OthersExcludesEndpoint(t *testing.T) {
	s := NewState("cellar", "A damp cellar.", nil)
	s.Join(ep(5000), "alice")
	s.Join(ep(5001), "bob")
	s.Join(ep(5002), "carol")

	others := s.Others(ep(5000))
	assert.Len(t, others, 2)
	for _, m := range others {
		assert.NotEqual(t, ep(5000), m.Endpoint)
	}
}

func TestState_DescribeEmptyRoom(t *testing.T) {
	s := NewState("cellar", "A damp cellar.", nil)
	assert.Equal(t, "cellar\n\nA damp cellar.\n\nIn this room, there are:\nThe room is empty.\n", s.Describe())
}

func TestState_DescribeWithItems(t *testing.T) {
	s := NewState("cellar", "A damp cellar.", []string{"apple", "torch"})
	assert.Equal(t, "cellar\n\nA damp cellar.\n\nIn this room, there are:\n\tapple\n\ttorch\n", s.Describe())
}

// take succeeds exactly as many times as instances exist, regardless of
// interleaved drops.
func TestPropertyTakeDropConservation(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		initial := rapid.IntRange(0, 10).Draw(t, "initial")
		items := make([]string, initial)
		for i := range items {
			items[i] = "apple"
		}
		s := NewState("cellar", "A damp cellar.", items)

		count := initial
		steps := rapid.IntRange(0, 30).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			if rapid.Bool().Draw(t, "drop") {
				s.AddItem("apple")
				count++
			} else {
				took := s.TakeItem("apple")
				if took != (count > 0) {
					t.Fatalf("take returned %v with %d instances present", took, count)
				}
				if took {
					count--
				}
			}
		}

		if got := len(s.Items()); got != count {
			t.Fatalf("room holds %d items, expected %d", got, count)
		}
	})
}
