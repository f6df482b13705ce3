package manifest

import (
	"encoding/json"
	"log/slog"
	"sort"
)

type packageJSON struct {
	Dependencies         map[string]string `json:"dependencies"`
	DevDependencies      map[string]string `json:"devDependencies"`
	PeerDependencies     map[string]string `json:"peerDependencies"`
	OptionalDependencies map[string]string `json:"optionalDependencies"`
}

// ParsePackageJSON extracts npm dependencies from package.json content.
// All four dependency sections are read; the section name becomes the
// dependency's Type.
func ParsePackageJSON(content string) []Dependency {
	var data packageJSON
	if err := json.Unmarshal([]byte(content), &data); err != nil {
		slog.Warn("failed to parse package.json", "error", err)
		return nil
	}

	sections := []struct {
		name string
		deps map[string]string
	}{
		{"dependencies", data.Dependencies},
		{"devDependencies", data.DevDependencies},
		{"peerDependencies", data.PeerDependencies},
		{"optionalDependencies", data.OptionalDependencies},
	}

	var deps []Dependency
	for _, section := range sections {
		for _, name := range sortedKeys(section.deps) {
			deps = append(deps, Dependency{
				Name:      name,
				Version:   cleanVersion(section.deps[name]),
				Type:      section.name,
				Ecosystem: EcosystemNPM,
			})
		}
	}
	return deps
}

// sortedKeys keeps parser output deterministic; JSON objects have no
// order once unmarshalled into a map.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
