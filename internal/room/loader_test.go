package room

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleWorld = `
world:
  rooms:
    - name: hall
      description: A long hall with a vaulted ceiling.
      items: [torch, key]
      exits:
        east: cellar
        up: attic
    - name: cellar
      description: A damp cellar.
      items: [apple, apple]
      exits:
        west: hall
    - name: attic
      description: A dusty attic.
      exits:
        down: hall
`

func TestLoadWorldFromBytes_Valid(t *testing.T) {
	defs, err := LoadWorldFromBytes([]byte(sampleWorld))
	require.NoError(t, err)
	require.Len(t, defs, 3)

	hall, err := FindRoom(defs, "hall")
	require.NoError(t, err)
	assert.Equal(t, "A long hall with a vaulted ceiling.", hall.Description)
	assert.Equal(t, []string{"torch", "key"}, hall.Items)
	assert.Equal(t, map[Direction]string{East: "cellar", Up: "attic"}, hall.Neighbors)

	attic, err := FindRoom(defs, "attic")
	require.NoError(t, err)
	assert.Empty(t, attic.Items)
}

func TestLoadWorldFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "world.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleWorld), 0o644))

	defs, err := LoadWorldFromFile(path)
	require.NoError(t, err)
	assert.Len(t, defs, 3)
}

func TestLoadWorldFromFile_Missing(t *testing.T) {
	_, err := LoadWorldFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadWorldFromBytes_Empty(t *testing.T) {
	_, err := LoadWorldFromBytes([]byte("world:\n  rooms: []\n"))
	assert.Error(t, err)
}

func TestLoadWorldFromBytes_DuplicateRoom(t *testing.T) {
	_, err := LoadWorldFromBytes([]byte(`
world:
  rooms:
    - name: hall
      description: One hall.
    - name: hall
      description: Another hall.
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate room name")
}

func TestLoadWorldFromBytes_UnknownDirection(t *testing.T) {
	_, err := LoadWorldFromBytes([]byte(`
world:
  rooms:
    - name: hall
      description: A hall.
      exits:
        sideways: cellar
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown direction")
}

func TestLoadWorldFromBytes_DirectionsCaseInsensitive(t *testing.T) {
	defs, err := LoadWorldFromBytes([]byte(`
world:
  rooms:
    - name: hall
      description: A hall.
      exits:
        North: cellar
`))
	require.NoError(t, err)
	assert.Equal(t, "cellar", defs[0].Neighbors[North])
}

func TestDefinitionValidate(t *testing.T) {
	valid := Definition{Name: "hall", Description: "A hall."}
	assert.NoError(t, valid.Validate())

	noName := Definition{Description: "A hall."}
	assert.Error(t, noName.Validate())

	spacedName := Definition{Name: "great hall", Description: "A hall."}
	assert.Error(t, spacedName.Validate())

	emptyNeighbor := Definition{Name: "hall", Description: "A hall.", Neighbors: map[Direction]string{North: ""}}
	assert.Error(t, emptyNeighbor.Validate())
}

func TestFindRoom_Missing(t *testing.T) {
	defs, err := LoadWorldFromBytes([]byte(sampleWorld))
	require.NoError(t, err)

	_, err = FindRoom(defs, "dungeon")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dungeon")
}
