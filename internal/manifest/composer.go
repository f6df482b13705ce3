package manifest

import (
	"encoding/json"
	"log/slog"
	"strings"
)

type composerJSON struct {
	Require    map[string]string `json:"require"`
	RequireDev map[string]string `json:"require-dev"`
}

// ParseComposerJSON extracts Packagist dependencies from composer.json
// content. Entries naming the PHP runtime itself or an extension
// ("php", "php-64bit", "ext-*") are platform requirements, not packages.
func ParseComposerJSON(content string) []Dependency {
	var data composerJSON
	if err := json.Unmarshal([]byte(content), &data); err != nil {
		slog.Warn("failed to parse composer.json", "error", err)
		return nil
	}

	var deps []Dependency
	for _, section := range []struct {
		name string
		reqs map[string]string
	}{
		{"require", data.Require},
		{"require-dev", data.RequireDev},
	} {
		for _, name := range sortedKeys(section.reqs) {
			if name == "php" || strings.HasPrefix(name, "php-") || strings.HasPrefix(name, "ext-") {
				continue
			}
			deps = append(deps, Dependency{
				Name:      name,
				Version:   cleanVersion(section.reqs[name]),
				Type:      section.name,
				Ecosystem: EcosystemPackagist,
			})
		}
	}
	return deps
}
