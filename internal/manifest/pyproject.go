package manifest

import (
	"log/slog"
	"regexp"

	"github.com/pelletier/go-toml/v2"
)

// Matches a PEP 508-ish requirement string such as "flask>=2.0,<3" or
// "requests[security]==2.28.1". Extras are matched but discarded.
var pep508Re = regexp.MustCompile(`^([a-zA-Z0-9_-]+)(?:\[[^\]]+\])?([=<>!~]+)?(.+)?$`)

// ParsePyProject extracts PyPI dependencies from pyproject.toml content.
// Three layouts are supported: PEP 517/518 build requirements, the Poetry
// dependency tables (skipping the "python" pseudo-dependency) and PEP 621
// project dependencies including each optional-dependency group.
func ParsePyProject(content string) []Dependency {
	var data map[string]any
	if err := toml.Unmarshal([]byte(content), &data); err != nil {
		slog.Warn("failed to parse pyproject.toml", "error", err)
		return nil
	}

	var deps []Dependency
	deps = append(deps, pyprojectBuildRequires(data)...)
	deps = append(deps, pyprojectPoetry(data)...)
	deps = append(deps, pyprojectProject(data)...)
	return deps
}

// [build-system] requires = ["meson-python>=0.18.0", ...]
func pyprojectBuildRequires(data map[string]any) []Dependency {
	buildSystem, ok := data["build-system"].(map[string]any)
	if !ok {
		return nil
	}
	requires, ok := buildSystem["requires"].([]any)
	if !ok {
		return nil
	}

	var deps []Dependency
	for _, entry := range requires {
		s, ok := entry.(string)
		if !ok {
			continue
		}
		if d, ok := parseRequirementString(s, "build-requires"); ok {
			deps = append(deps, d)
		}
	}
	return deps
}

// [tool.poetry.dependencies] / [tool.poetry.dev-dependencies]
func pyprojectPoetry(data map[string]any) []Dependency {
	tool, ok := data["tool"].(map[string]any)
	if !ok {
		return nil
	}
	poetry, ok := tool["poetry"].(map[string]any)
	if !ok {
		return nil
	}

	var deps []Dependency
	for _, section := range []string{"dependencies", "dev-dependencies"} {
		table, ok := poetry[section].(map[string]any)
		if !ok {
			continue
		}
		for _, name := range sortedAnyKeys(table) {
			// The python entry pins the runtime, not a package.
			if name == "python" || name == "Python" {
				continue
			}
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

// [project] dependencies / optional-dependencies (PEP 621)
func pyprojectProject(data map[string]any) []Dependency {
	project, ok := data["project"].(map[string]any)
	if !ok {
		return nil
	}

	var deps []Dependency
	if main, ok := project["dependencies"].([]any); ok {
		for _, entry := range main {
			s, ok := entry.(string)
			if !ok {
				continue
			}
			if d, ok := parseRequirementString(s, "dependencies"); ok {
				deps = append(deps, d)
			}
		}
	}

	optional, ok := project["optional-dependencies"].(map[string]any)
	if !ok {
		return deps
	}
	for _, group := range sortedAnyKeys(optional) {
		entries, ok := optional[group].([]any)
		if !ok {
			continue
		}
		for _, entry := range entries {
			s, ok := entry.(string)
			if !ok {
				continue
			}
			if d, ok := parseRequirementString(s, "optional-"+group); ok {
				deps = append(deps, d)
			}
		}
	}
	return deps
}

func parseRequirementString(s, depType string) (Dependency, bool) {
	m := pep508Re.FindStringSubmatch(s)
	if m == nil || m[1] == "" {
		return Dependency{}, false
	}
	version := "latest"
	if m[3] != "" {
		version = cleanVersion(m[3])
	}
	return Dependency{
		Name:      m[1],
		Version:   version,
		Type:      depType,
		Ecosystem: EcosystemPyPI,
	}, true
}
