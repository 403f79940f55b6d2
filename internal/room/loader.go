package room

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Definition is the static configuration of one room: everything a room
// server needs besides its network socket. Neighbors map directions to the
// symbolic names of adjacent rooms; names are resolved to addresses once at
// server startup.
type Definition struct {
	Name        string
	Description string
	Items       []string
	Neighbors   map[Direction]string
}

// Validate checks the definition invariants.
//
// Postcondition: Returns nil if the definition is valid.
func (d Definition) Validate() error {
	var errs []string
	if d.Name == "" {
		errs = append(errs, "room name must not be empty")
	}
	if strings.ContainsAny(d.Name, " \t") {
		errs = append(errs, fmt.Sprintf("room name %q must not contain whitespace", d.Name))
	}
	if d.Description == "" {
		errs = append(errs, fmt.Sprintf("room %q: description must not be empty", d.Name))
	}
	for dir, target := range d.Neighbors {
		if _, ok := ParseDirection(string(dir)); !ok {
			errs = append(errs, fmt.Sprintf("room %q: unknown direction %q", d.Name, dir))
		}
		if target == "" {
			errs = append(errs, fmt.Sprintf("room %q: empty neighbor name for %q", d.Name, dir))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// yamlWorldFile is the top-level YAML structure for world files.
type yamlWorldFile struct {
	World yamlWorld `yaml:"world"`
}

// yamlWorld is the YAML representation of the room graph.
type yamlWorld struct {
	Rooms []yamlRoom `yaml:"rooms"`
}

// yamlRoom is the YAML representation of one room.
type yamlRoom struct {
	Name        string            `yaml:"name"`
	Description string            `yaml:"description"`
	Items       []string          `yaml:"items"`
	Exits       map[string]string `yaml:"exits"`
}

// LoadWorldFromFile reads and validates a world YAML file.
//
// Precondition: path must point to a valid YAML world file.
// Postcondition: Returns the validated room definitions or a non-nil error.
func LoadWorldFromFile(path string) ([]Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading world file %s: %w", path, err)
	}
	return LoadWorldFromBytes(data)
}

// LoadWorldFromBytes parses and validates room definitions from YAML bytes.
//
// Postcondition: Returns validated definitions with unique room names, or a
// non-nil error.
func LoadWorldFromBytes(data []byte) ([]Definition, error) {
	var file yamlWorldFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing world YAML: %w", err)
	}
	if len(file.World.Rooms) == 0 {
		return nil, fmt.Errorf("world file defines no rooms")
	}

	seen := make(map[string]bool, len(file.World.Rooms))
	defs := make([]Definition, 0, len(file.World.Rooms))
	for _, yr := range file.World.Rooms {
		def := Definition{
			Name:        yr.Name,
			Description: yr.Description,
			Items:       yr.Items,
			Neighbors:   make(map[Direction]string, len(yr.Exits)),
		}
		for dir, target := range yr.Exits {
			def.Neighbors[Direction(strings.ToLower(dir))] = target
		}
		if err := def.Validate(); err != nil {
			return nil, fmt.Errorf("validating room: %w", err)
		}
		if seen[def.Name] {
			return nil, fmt.Errorf("duplicate room name %q", def.Name)
		}
		seen[def.Name] = true
		defs = append(defs, def)
	}
	return defs, nil
}

// FindRoom selects a room definition by name. Each room server process
// serves exactly one room out of the shared world file.
//
// Postcondition: Returns (definition, nil) if found, or an error naming the
// available rooms.
func FindRoom(defs []Definition, name string) (Definition, error) {
	names := make([]string, 0, len(defs))
	for _, def := range defs {
		if def.Name == name {
			return def, nil
		}
		names = append(names, def.Name)
	}
	return Definition{}, fmt.Errorf("room %q not in world file (have: %s)", name, strings.Join(names, ", "))
}
