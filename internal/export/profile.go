package export

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed profile.yaml
var defaultProfile []byte

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Profile lists the reference tables to export and how each row is shaped.
type Profile struct {
	Tables []TableSpec `yaml:"tables"`
}

// TableSpec shapes the rows of one exported table.
type TableSpec struct {
	Name    string            `yaml:"name"`
	Columns []string          `yaml:"columns"`
	Rename  map[string]string `yaml:"rename"`
	Drop    []string          `yaml:"drop"`
	Idents  map[string]string `yaml:"idents"`
}

// DefaultProfile returns the built-in profile.
func DefaultProfile() (Profile, error) {
	return ParseProfile(defaultProfile)
}

// LoadProfile reads a profile from a YAML file. An empty path returns the
// built-in profile.
func LoadProfile(path string) (Profile, error) {
	if path == "" {
		return DefaultProfile()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("read export profile: %w", err)
	}
	return ParseProfile(data)
}

// ParseProfile decodes and validates a YAML profile. Table names are used
// in SQL and file names, so only identifier characters are accepted.
func ParseProfile(data []byte) (Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("parse export profile: %w", err)
	}
	if len(p.Tables) == 0 {
		return Profile{}, errors.New("export profile lists no tables")
	}

	seen := make(map[string]bool, len(p.Tables))
	for _, t := range p.Tables {
		if !tableNamePattern.MatchString(t.Name) {
			return Profile{}, fmt.Errorf("export profile: invalid table name %q", t.Name)
		}
		if seen[t.Name] {
			return Profile{}, fmt.Errorf("export profile: table %s listed twice", t.Name)
		}
		seen[t.Name] = true
	}
	return p, nil
}

// sortedKeys gives rename and ident rules a fixed application order.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
