package manifest

import (
	"log/slog"

	"github.com/pelletier/go-toml/v2"
)

// ParsePipfile extracts PyPI dependencies from Pipfile content. Both the
// [packages] and [dev-packages] tables are read. A value is either a
// version string or an inline table with a "version" key; "*" means
// unpinned.
func ParsePipfile(content string) []Dependency {
	var data map[string]any
	if err := toml.Unmarshal([]byte(content), &data); err != nil {
		slog.Warn("failed to parse Pipfile", "error", err)
		return nil
	}

	var deps []Dependency
	for _, section := range []string{"packages", "dev-packages"} {
		table, ok := data[section].(map[string]any)
		if !ok {
			continue
		}
		for _, name := range sortedAnyKeys(table) {
			deps = append(deps, Dependency{
				Name:      name,
				Version:   cleanVersion(tomlVersion(table[name])),
				Type:      section,
				Ecosystem: EcosystemPyPI,
			})
		}
	}
	return deps
}

// tomlVersion unwraps a Pipfile/Poetry version value, which may be a
// plain string or an inline table carrying a "version" key.
func tomlVersion(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case map[string]any:
		if s, ok := val["version"].(string); ok {
			return s
		}
	}
	return "*"
}
