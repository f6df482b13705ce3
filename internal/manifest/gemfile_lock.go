package manifest

import (
	"regexp"
	"strings"
)

// Resolved gems sit under "specs:" with exactly four spaces of indent,
// in the form "    name (version)". Deeper indents are the gem's own
// dependency constraints and are not versions we can check.
var gemSpecRe = regexp.MustCompile(`^\s{4}([a-zA-Z0-9_-]+)\s+\(([^)]+)\)`)

// ParseGemfileLock extracts RubyGems dependencies from Gemfile.lock
// content.
func ParseGemfileLock(content string) []Dependency {
	var deps []Dependency
	inSpecs := false

	for _, line := range strings.Split(content, "\n") {
		if strings.Contains(line, "specs:") {
			inSpecs = true
			continue
		}
		if !inSpecs {
			continue
		}
		// A non-indented line ends the specs block.
		if line != "" && !strings.HasPrefix(line, " ") {
			inSpecs = false
			continue
		}

		if m := gemSpecRe.FindStringSubmatch(line); m != nil {
			deps = append(deps, Dependency{
				Name:      m[1],
				Version:   m[2],
				Type:      "dependencies",
				Ecosystem: EcosystemRubyGems,
			})
		}
	}
	return deps
}
