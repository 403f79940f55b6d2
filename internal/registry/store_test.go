package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/roomnet/roomnet/internal/protocol"
)

func addr(port int) protocol.Address {
	return protocol.Address{Scheme: "room", Host: "localhost", Port: port}
}

func TestStore_RegisterLookup(t *testing.T) {
	s := NewStore()
	replaced := s.Register("cellar", addr(4500))
	assert.False(t, replaced)

	got, ok := s.Lookup("cellar")
	assert.True(t, ok)
	assert.Equal(t, addr(4500), got)
	assert.Equal(t, 1, s.Count())
}

func TestStore_LookupMissing(t *testing.T) {
	s := NewStore()
	_, ok := s.Lookup("attic")
	assert.False(t, ok)
}

func TestStore_RegisterOverwritesLastWriterWins(t *testing.T) {
	s := NewStore()
	s.Register("cellar", addr(4500))
	replaced := s.Register("cellar", addr(4600))
	assert.True(t, replaced)

	got, ok := s.Lookup("cellar")
	assert.True(t, ok)
	assert.Equal(t, addr(4600), got)
	assert.Equal(t, 1, s.Count())
}

func TestStore_Deregister(t *testing.T) {
	s := NewStore()
	s.Register("cellar", addr(4500))

	assert.True(t, s.Deregister("cellar"))
	_, ok := s.Lookup("cellar")
	assert.False(t, ok)
	assert.Equal(t, 0, s.Count())

	assert.False(t, s.Deregister("cellar"))
}

// The store must agree with a plain map under any sequence of register,
// deregister, and lookup operations.
func TestPropertyStoreMatchesModel(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := NewStore()
		model := make(map[string]protocol.Address)
		names := rapid.SampledFrom([]string{"cellar", "attic", "hall", "vault", "garden"})

		steps := rapid.IntRange(1, 50).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			name := names.Draw(t, "name")
			switch rapid.IntRange(0, 2).Draw(t, "op") {
			case 0:
				a := addr(rapid.IntRange(1024, 65535).Draw(t, "port"))
				s.Register(name, a)
				model[name] = a
			case 1:
				removed := s.Deregister(name)
				_, inModel := model[name]
				if removed != inModel {
					t.Fatalf("deregister %q returned %v, model had entry: %v", name, removed, inModel)
				}
				delete(model, name)
			case 2:
				got, ok := s.Lookup(name)
				want, inModel := model[name]
				if ok != inModel || (ok && got != want) {
					t.Fatalf("lookup %q returned (%v, %v), model has (%v, %v)", name, got, ok, want, inModel)
				}
			}
		}

		if s.Count() != len(model) {
			t.Fatalf("store has %d entries, model has %d", s.Count(), len(model))
		}
	})
}
