package atlas

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed tables.yaml
var defaultTables []byte

// Tables holds the static seed and the canonical name tables.
type Tables struct {
	Countries []string            `yaml:"countries"`
	States    map[string][]string `yaml:"states"`
	Aliases   struct {
		Country map[string]string            `yaml:"country"`
		State   map[string]map[string]string `yaml:"state"`
	} `yaml:"aliases"`

	stateAliases map[string]map[string]string
}

// DefaultTables returns the tables compiled into the binary.
func DefaultTables() *Tables {
	t, err := ParseTables(defaultTables)
	if err != nil {
		panic(fmt.Sprintf("atlas: embedded tables: %v", err))
	}
	return t
}

// LoadTables reads tables from a YAML file.
func LoadTables(path string) (*Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("atlas: failed to read tables: %w", err)
	}
	return ParseTables(data)
}

// ParseTables decodes YAML tables and indexes the state aliases.
func ParseTables(data []byte) (*Tables, error) {
	var t Tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("atlas: failed to parse tables: %w", err)
	}
	t.index()
	return &t, nil
}

// index registers the implicit CODE and Name aliases of every seeded
// "CODE-Name" state, then layers the explicit aliases on top.
func (t *Tables) index() {
	t.stateAliases = make(map[string]map[string]string)
	for country, states := range t.States {
		m := t.stateTable(country)
		for _, s := range states {
			code, name, ok := strings.Cut(s, "-")
			if !ok {
				continue
			}
			m[code] = s
			m[name] = s
		}
	}
	for country, aliases := range t.Aliases.State {
		m := t.stateTable(country)
		for alias, canonical := range aliases {
			m[alias] = canonical
		}
	}
}

func (t *Tables) stateTable(country string) map[string]string {
	m, ok := t.stateAliases[country]
	if !ok {
		m = make(map[string]string)
		t.stateAliases[country] = m
	}
	return m
}

// CountryAlias returns the canonical country for an alias.
func (t *Tables) CountryAlias(alias string) (string, bool) {
	c, ok := t.Aliases.Country[alias]
	return c, ok
}

// StateAlias returns the canonical state of country for an alias.
func (t *Tables) StateAlias(country, alias string) (string, bool) {
	if t.stateAliases == nil {
		t.index()
	}
	s, ok := t.stateAliases[country][alias]
	return s, ok
}
