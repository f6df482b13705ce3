package manifest

import (
	"regexp"
	"strings"
)

// Matches "package", "package==1.0", "package>=1.0,<2.0" and similar.
var requirementRe = regexp.MustCompile(`^([a-zA-Z0-9_-]+)([=<>!]+)?(.+)?$`)

// ParseRequirements extracts PyPI dependencies from requirements.txt
// content. Comments, blank lines and pip flags (-r, -e, --hash) are
// skipped. A bare package name yields the version "latest".
func ParseRequirements(content string) []Dependency {
	var deps []Dependency
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
			continue
		}

		m := requirementRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		version := "latest"
		if m[3] != "" {
			version = cleanVersion(m[3])
		}
		deps = append(deps, Dependency{
			Name:      m[1],
			Version:   version,
			Type:      "dependencies",
			Ecosystem: EcosystemPyPI,
		})
	}
	return deps
}
