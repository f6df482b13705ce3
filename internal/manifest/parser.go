package manifest

import (
	"sort"
	"strings"
)

// ParseFunc turns raw manifest content into a list of dependencies.
// Parsers never fail past their own boundary: malformed input is logged
// and yields an empty list.
type ParseFunc func(content string) []Dependency

var parsers = map[string]ParseFunc{
	"package.json":     ParsePackageJSON,
	"requirements.txt": ParseRequirements,
	"Pipfile":          ParsePipfile,
	"pyproject.toml":   ParsePyProject,
	"Gemfile.lock":     ParseGemfileLock,
	"go.mod":           ParseGoMod,
	"composer.json":    ParseComposerJSON,
}

// ParserFor returns the parser registered for a manifest filename, or
// nil when the filename is not a recognized manifest.
func ParserFor(filename string) ParseFunc {
	return parsers[filename]
}

// Longest operators first so ">=" is not consumed as ">" + "=".
var versionOps = []string{">=", "<=", "==", "!=", "~=", "^", "~", ">", "<", "="}

// cleanVersion strips a single leading range operator and keeps only the
// first clause of a comma- or space-separated range. This is lossy for
// complex ranges on purpose: the vulnerability query treats any declared
// version as exact-or-omitted, so the lower bound is all that matters.
func cleanVersion(v string) string {
	v = strings.TrimSpace(v)
	for _, op := range versionOps {
		if strings.HasPrefix(v, op) {
			v = strings.TrimSpace(strings.TrimPrefix(v, op))
			break
		}
	}
	if i := strings.IndexByte(v, ','); i >= 0 {
		v = strings.TrimSpace(v[:i])
	}
	if i := strings.IndexByte(v, ' '); i >= 0 {
		v = v[:i]
	}
	if v == "" || v == "*" {
		return "latest"
	}
	return v
}

func sortedAnyKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
